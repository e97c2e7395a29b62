package rest

import (
	"net/http"
	"strings"

	"github.com/dfryer1193/tusitala/api"
	"github.com/gin-gonic/gin"
)

func (h *handlers) GetPublications(c *gin.Context) {
	owner := strings.TrimSpace(c.Query("userId"))
	if owner == "" {
		badRequest(c, "User ID required", "")
		return
	}
	limit, err := queryInt(c, "limit", 20)
	if err != nil {
		badRequest(c, "limit must be a positive integer", err.Error())
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		badRequest(c, "offset must be a positive integer", err.Error())
		return
	}

	pubs, err := h.publications.ListPublications(c.Request.Context(), owner, limit, offset)
	if err != nil {
		respondError(c, "Failed to fetch publications", err)
		return
	}

	out := make([]api.Publication, 0, len(pubs))
	for _, p := range pubs {
		out = append(out, api.FromPublication(p))
	}
	c.JSON(http.StatusOK, gin.H{"publications": out})
}
