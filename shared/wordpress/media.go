package wordpress

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/dfryer1193/tusitala/blog/domain"
)

type mediaResponse struct {
	ID        int          `json:"id"`
	SourceURL string       `json:"source_url"`
	Title     renderedText `json:"title"`
	AltText   string       `json:"alt_text"`
	Caption   renderedText `json:"caption"`
	Date      string       `json:"date"`
	MimeType  string       `json:"mime_type"`
}

// MediaItem is an entry of the site's media library.
type MediaItem struct {
	ID       int    `json:"id"`
	URL      string `json:"url"`
	Title    string `json:"title"`
	AltText  string `json:"alt"`
	Caption  string `json:"caption"`
	Date     string `json:"date"`
	MimeType string `json:"mimeType"`
}

// UploadMedia uploads a binary to the media library as a multipart form with
// file, title and alt_text fields.
func (c *Client) UploadMedia(ctx context.Context, upload domain.MediaUpload) (*domain.RemoteMedia, error) {
	if len(upload.Content) == 0 {
		return nil, fmt.Errorf("wordpress: media content cannot be empty")
	}
	if upload.Filename == "" {
		return nil, fmt.Errorf("wordpress: media filename cannot be empty")
	}

	title := upload.Title
	if title == "" {
		title = upload.Filename
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(upload.Filename)))
	contentType := upload.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := form.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("wordpress: upload media: create file part: %w", err)
	}
	if _, err := part.Write(upload.Content); err != nil {
		return nil, fmt.Errorf("wordpress: upload media: write file part: %w", err)
	}
	if err := form.WriteField("title", title); err != nil {
		return nil, fmt.Errorf("wordpress: upload media: write title: %w", err)
	}
	if err := form.WriteField("alt_text", upload.AltText); err != nil {
		return nil, fmt.Errorf("wordpress: upload media: write alt text: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("wordpress: upload media: close form: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/media", &body)
	if err != nil {
		return nil, fmt.Errorf("wordpress: upload media: build request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	var media mediaResponse
	if err := c.do(req, "upload media", &media); err != nil {
		return nil, err
	}

	return &domain.RemoteMedia{
		ID:    media.ID,
		URL:   media.SourceURL,
		Title: media.Title.Rendered,
	}, nil
}

// GetMediaLibrary lists media items, newest first.
func (c *Client) GetMediaLibrary(ctx context.Context, page, perPage int) ([]MediaItem, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}

	path := fmt.Sprintf("/media?page=%d&per_page=%d&orderby=date&order=desc", page, perPage)
	var payload []mediaResponse
	if err := c.doJSON(ctx, "list media", http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}

	items := make([]MediaItem, 0, len(payload))
	for _, m := range payload {
		items = append(items, MediaItem{
			ID:       m.ID,
			URL:      m.SourceURL,
			Title:    m.Title.Rendered,
			AltText:  m.AltText,
			Caption:  m.Caption.Rendered,
			Date:     m.Date,
			MimeType: m.MimeType,
		})
	}
	return items, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
