package rest

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/dfryer1193/tusitala/api"
	"github.com/dfryer1193/tusitala/blog/domain"
	"github.com/dfryer1193/tusitala/shared/wordpress"
	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const recentPostCount = 5

func (h *handlers) PublishDraft(c *gin.Context) {
	req := &api.PublishRequest{}
	if err := c.ShouldBindJSON(req); err != nil {
		badRequest(c, "invalid publish request", err.Error())
		return
	}

	result, err := h.publisher.Publish(c.Request.Context(), req.ToDraft())
	if err != nil {
		respondError(c, "Failed to publish post", err)
		return
	}

	c.JSON(http.StatusOK, api.NewPublishResponse(result))
}

func (h *handlers) GetStatus(c *gin.Context) {
	ctx := c.Request.Context()
	if !h.wp.TestConnection(ctx) {
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{
			"error":     "Failed to connect to WordPress site",
			"connected": false,
		})
		return
	}

	var (
		posts      []domain.RemotePost
		categories []domain.Term
		tags       []domain.Term
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		posts, err = h.wp.GetPosts(gctx, wordpress.PostListOptions{PerPage: 10})
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = h.wp.GetCategories(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		tags, err = h.wp.GetTags(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		respondError(c, "Failed to get WordPress status", err)
		return
	}

	recent := make([]api.RecentPost, 0, recentPostCount)
	for i, p := range posts {
		if i == recentPostCount {
			break
		}
		recent = append(recent, api.RecentPost{ID: p.ID, Title: p.Title, Status: string(p.Status), Date: p.Date})
	}

	c.JSON(http.StatusOK, api.BlogStatus{
		Connected:   true,
		Posts:       len(posts),
		Categories:  len(categories),
		Tags:        len(tags),
		RecentPosts: recent,
	})
}

func (h *handlers) TestConnection(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"connected": h.wp.TestConnection(c.Request.Context())})
}

func (h *handlers) GetCategories(c *gin.Context) {
	terms, err := h.wp.GetCategories(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to fetch categories from WordPress", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "categories": toTerms(terms)})
}

func (h *handlers) CreateCategory(c *gin.Context) {
	req := &api.TermRequest{}
	if err := c.ShouldBindJSON(req); err != nil {
		badRequest(c, "Category name is required", err.Error())
		return
	}

	term, err := h.wp.CreateCategory(c.Request.Context(), strings.TrimSpace(req.Name), req.Slug, req.Description, req.Parent)
	if err != nil {
		respondError(c, "Failed to create category", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "category": api.FromTerm(*term)})
}

func (h *handlers) GetTags(c *gin.Context) {
	terms, err := h.wp.GetTags(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to fetch tags from WordPress", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "tags": toTerms(terms)})
}

func (h *handlers) CreateTag(c *gin.Context) {
	req := &api.TermRequest{}
	if err := c.ShouldBindJSON(req); err != nil {
		badRequest(c, "Tag name is required", err.Error())
		return
	}

	term, err := h.wp.CreateTag(c.Request.Context(), strings.TrimSpace(req.Name), req.Slug, req.Description)
	if err != nil {
		respondError(c, "Failed to create tag", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "tag": api.FromTerm(*term)})
}

func (h *handlers) GetMediaLibrary(c *gin.Context) {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		badRequest(c, "page must be a positive integer", err.Error())
		return
	}
	perPage, err := queryInt(c, "per_page", 20)
	if err != nil {
		badRequest(c, "per_page must be a positive integer", err.Error())
		return
	}

	items, err := h.wp.GetMediaLibrary(c.Request.Context(), page, perPage)
	if err != nil {
		respondError(c, "Failed to fetch media library", err)
		return
	}
	if items == nil {
		items = []wordpress.MediaItem{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "media": items})
}

func (h *handlers) UploadMedia(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "No file provided", err.Error())
		return
	}
	if header.Size > h.maxMediaBytes {
		badRequest(c, "File size must be less than "+humanize.IBytes(uint64(h.maxMediaBytes)), "")
		return
	}

	content, err := readFormFile(header)
	if err != nil {
		respondError(c, "Failed to read uploaded file", err)
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = mimetype.Detect(content).String()
	}
	if !strings.HasPrefix(mimeType, "image/") {
		badRequest(c, "Only image files are allowed", mimeType)
		return
	}

	media, err := h.wp.UploadMedia(c.Request.Context(), domain.MediaUpload{
		Content:  content,
		Filename: header.Filename,
		MimeType: mimeType,
		Title:    c.PostForm("title"),
		AltText:  c.PostForm("altText"),
	})
	if err != nil {
		respondError(c, "Failed to upload media to WordPress", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "media": gin.H{
		"id":    media.ID,
		"url":   media.URL,
		"title": media.Title,
	}})
}

func toTerms(terms []domain.Term) []api.Term {
	out := make([]api.Term, 0, len(terms))
	for _, t := range terms {
		out = append(out, api.FromTerm(t))
	}
	return out
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errors.New(key + " cannot be negative")
	}
	return n, nil
}

func readFormFile(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := &bytes.Buffer{}
	if _, err := io.Copy(buf, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
