package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dfryer1193/tusitala/blog/domain"
)

// TagList accepts tag names and numeric tag ids in the same array.
type TagList []string

func (t *TagList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("tags must be an array: %w", err)
	}

	out := make(TagList, 0, len(raw))
	for _, item := range raw {
		item = bytes.TrimSpace(item)
		if len(item) > 0 && item[0] == '"' {
			var s string
			if err := json.Unmarshal(item, &s); err != nil {
				return err
			}
			out = append(out, s)
			continue
		}
		var n int
		if err := json.Unmarshal(item, &n); err != nil {
			return fmt.Errorf("tag %s is neither a name nor an id", item)
		}
		out = append(out, strconv.Itoa(n))
	}
	*t = out
	return nil
}

// Status is a requested post status, trimmed and lowercased as it is decoded
// so validation sees the canonical form.
type Status string

func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("status must be a string: %w", err)
	}
	*s = Status(strings.ToLower(strings.TrimSpace(raw)))
	return nil
}

// PublishRequest is the JSON body of a publish call.
type PublishRequest struct {
	Title           string     `json:"title"`
	Content         string     `json:"content"`
	Status          Status     `json:"status" binding:"omitempty,oneof=draft publish scheduled future pending private"`
	ScheduledAt     *time.Time `json:"scheduledAt"`
	Categories      []int      `json:"categories" binding:"omitempty,dive,gt=0"`
	Tags            TagList    `json:"tags"`
	Excerpt         string     `json:"excerpt"`
	Slug            string     `json:"slug"`
	MetaDescription string     `json:"metaDescription"`
	FocusKeyphrase  string     `json:"focusKeyphrase"`
	UserID          string     `json:"userId"`

	FeaturedMediaID   int    `json:"featuredMediaId" binding:"gte=0"`
	FeaturedImagePath string `json:"featuredImagePath"`
	FeaturedImageAlt  string `json:"featuredImageAlt"`
}

// ToDraft maps the request onto the publish pipeline input.
func (r *PublishRequest) ToDraft() domain.Draft {
	draft := domain.Draft{
		Title:           r.Title,
		Content:         r.Content,
		Status:          domain.PostStatus(r.Status),
		ScheduledAt:     r.ScheduledAt,
		CategoryIDs:     r.Categories,
		Tags:            r.Tags,
		Excerpt:         r.Excerpt,
		Slug:            r.Slug,
		MetaDescription: r.MetaDescription,
		FocusKeyphrase:  r.FocusKeyphrase,
		OwnerID:         r.UserID,
	}

	if r.FeaturedMediaID > 0 || r.FeaturedImagePath != "" {
		draft.FeaturedImage = &domain.FeaturedImage{
			MediaID:   r.FeaturedMediaID,
			AssetPath: r.FeaturedImagePath,
			AltText:   r.FeaturedImageAlt,
		}
	}

	return draft
}

type PostSummary struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	Status        string `json:"status"`
	URL           string `json:"url"`
	Link          string `json:"link,omitempty"`
	FeaturedMedia int    `json:"featuredMedia,omitempty"`
}

type PublishResponse struct {
	Success bool                    `json:"success"`
	Post    PostSummary             `json:"post"`
	Images  []domain.ImageMigration `json:"images"`
}

func NewPublishResponse(result *domain.PublishResult) PublishResponse {
	images := result.Images
	if images == nil {
		images = []domain.ImageMigration{}
	}
	return PublishResponse{
		Success: true,
		Post: PostSummary{
			ID:            result.RemoteID,
			Title:         result.Title,
			Status:        string(result.Status),
			URL:           result.URL,
			Link:          result.Link,
			FeaturedMedia: result.FeaturedMediaID,
		},
		Images: images,
	}
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
