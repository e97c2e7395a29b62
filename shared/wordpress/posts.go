package wordpress

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dfryer1193/tusitala/blog/domain"
)

type postPayload struct {
	Title         rawText           `json:"title"`
	Content       rawText           `json:"content"`
	Status        string            `json:"status,omitempty"`
	Categories    []int             `json:"categories,omitempty"`
	Tags          []int             `json:"tags,omitempty"`
	FeaturedMedia int               `json:"featured_media,omitempty"`
	Excerpt       *rawText          `json:"excerpt,omitempty"`
	Slug          string            `json:"slug,omitempty"`
	Meta          map[string]string `json:"meta,omitempty"`
	Date          string            `json:"date,omitempty"`
}

type postResponse struct {
	ID     int          `json:"id"`
	Title  renderedText `json:"title"`
	Status string       `json:"status"`
	Link   string       `json:"link"`
	Date   string       `json:"date"`
}

func (p postResponse) toDomain() *domain.RemotePost {
	return &domain.RemotePost{
		ID:     p.ID,
		Title:  p.Title.Rendered,
		Status: domain.PostStatus(p.Status),
		Link:   p.Link,
		Date:   p.Date,
	}
}

// CreatePost creates a post. Optional fields left at their zero value are not
// sent.
func (c *Client) CreatePost(ctx context.Context, post *domain.RemotePostInput) (*domain.RemotePost, error) {
	if post == nil {
		return nil, fmt.Errorf("wordpress: post cannot be nil")
	}

	payload := postPayload{
		Title:         rawText{Raw: post.Title},
		Content:       rawText{Raw: post.Content},
		Status:        string(post.Status),
		Categories:    post.CategoryIDs,
		Tags:          post.TagIDs,
		FeaturedMedia: post.FeaturedMediaID,
		Slug:          post.Slug,
		Meta:          post.Meta,
	}
	if post.Excerpt != "" {
		payload.Excerpt = &rawText{Raw: post.Excerpt}
	}
	if post.Date != nil {
		payload.Date = post.Date.Format(time.RFC3339)
	}

	var created postResponse
	if err := c.doJSON(ctx, "create post", http.MethodPost, "/posts", payload, &created); err != nil {
		return nil, err
	}

	return created.toDomain(), nil
}

// GetPost fetches a single post by id.
func (c *Client) GetPost(ctx context.Context, id int) (*domain.RemotePost, error) {
	op := fmt.Sprintf("get post %d", id)
	var post postResponse
	if err := c.doJSON(ctx, op, http.MethodGet, "/posts/"+strconv.Itoa(id), nil, &post); err != nil {
		return nil, err
	}
	return post.toDomain(), nil
}

// PostListOptions filters GetPosts. Zero values are not sent.
type PostListOptions struct {
	Page    int
	PerPage int
	Status  string
	Author  int
}

// GetPosts lists posts, newest first.
func (c *Client) GetPosts(ctx context.Context, opts PostListOptions) ([]domain.RemotePost, error) {
	params := url.Values{}
	if opts.Page > 0 {
		params.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.PerPage > 0 {
		params.Set("per_page", strconv.Itoa(opts.PerPage))
	}
	if opts.Status != "" {
		params.Set("status", opts.Status)
	}
	if opts.Author > 0 {
		params.Set("author", strconv.Itoa(opts.Author))
	}

	path := "/posts"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var payload []postResponse
	if err := c.doJSON(ctx, "list posts", http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}

	posts := make([]domain.RemotePost, 0, len(payload))
	for _, p := range payload {
		posts = append(posts, *p.toDomain())
	}
	return posts, nil
}
