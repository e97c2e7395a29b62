package rest

import (
	"net/http"

	"github.com/dfryer1193/tusitala/api"
	"github.com/dfryer1193/tusitala/blog/application"
	"github.com/gin-gonic/gin"
)

func (h *handlers) UploadImage(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "No file provided", err.Error())
		return
	}

	content, err := readFormFile(header)
	if err != nil {
		respondError(c, "Failed to read uploaded file", err)
		return
	}

	asset, err := h.assets.Upload(c.Request.Context(), application.AssetUpload{
		OwnerID:      c.PostForm("userId"),
		OriginalName: header.Filename,
		Content:      content,
		AltText:      c.PostForm("altText"),
		Caption:      c.PostForm("caption"),
	})
	if err != nil {
		respondError(c, "Failed to upload image", err)
		return
	}

	c.JSON(http.StatusOK, api.FromAsset(asset))
}

func (h *handlers) GetImages(c *gin.Context) {
	assets, err := h.assets.List(c.Request.Context(), c.Query("userId"))
	if err != nil {
		respondError(c, "Failed to fetch images", err)
		return
	}

	images := make([]api.Image, 0, len(assets))
	for _, a := range assets {
		images = append(images, api.FromAsset(a))
	}
	c.JSON(http.StatusOK, gin.H{"images": images})
}

func (h *handlers) DeleteImage(c *gin.Context) {
	if err := h.assets.Delete(c.Request.Context(), c.Param("id"), c.Query("userId")); err != nil {
		respondError(c, "Failed to delete image", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
