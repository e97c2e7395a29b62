package api

import (
	"time"

	"github.com/dfryer1193/tusitala/blog/domain"
)

type Image struct {
	ID            string    `json:"id"`
	URL           string    `json:"url"`
	Filename      string    `json:"filename"`
	OriginalName  string    `json:"originalName"`
	MimeType      string    `json:"mimeType"`
	Size          int64     `json:"size"`
	Width         *int      `json:"width"`
	Height        *int      `json:"height"`
	AltText       string    `json:"altText,omitempty"`
	Caption       string    `json:"caption,omitempty"`
	RemoteMediaID *int      `json:"wpMediaId,omitempty"`
	RemoteURL     string    `json:"wordpressUrl,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

func FromAsset(a *domain.Asset) Image {
	return Image{
		ID:            a.ID,
		URL:           a.StoragePath,
		Filename:      a.Filename,
		OriginalName:  a.OriginalName,
		MimeType:      a.MimeType,
		Size:          a.Size,
		Width:         a.Width,
		Height:        a.Height,
		AltText:       a.AltText,
		Caption:       a.Caption,
		RemoteMediaID: a.RemoteMediaID,
		RemoteURL:     a.RemoteURL,
		CreatedAt:     a.CreatedAt,
	}
}

type Publication struct {
	ID              int        `json:"id"`
	Title           string     `json:"title"`
	Status          string     `json:"status"`
	URL             string     `json:"url"`
	FeaturedMediaID int        `json:"featuredMedia,omitempty"`
	ScheduledAt     *time.Time `json:"scheduledAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func FromPublication(p *domain.Publication) Publication {
	out := Publication{
		ID:              p.RemoteID,
		Title:           p.Title,
		Status:          string(p.Status),
		URL:             p.URL,
		FeaturedMediaID: p.FeaturedMediaID,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
	if !p.ScheduledAt.IsZero() {
		scheduled := p.ScheduledAt
		out.ScheduledAt = &scheduled
	}
	return out
}

type Term struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Count       int    `json:"count"`
	Parent      int    `json:"parent,omitempty"`
}

func FromTerm(t domain.Term) Term {
	return Term{
		ID:          t.ID,
		Name:        t.Name,
		Slug:        t.Slug,
		Description: t.Description,
		Count:       t.Count,
		Parent:      t.Parent,
	}
}

// TermRequest creates a category or tag. Parent is ignored for tags.
type TermRequest struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Parent      int    `json:"parent" binding:"gte=0"`
}

type RecentPost struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`
	Date   string `json:"date"`
}

// BlogStatus summarizes the connected remote blog.
type BlogStatus struct {
	Connected   bool         `json:"connected"`
	Posts       int          `json:"posts"`
	Categories  int          `json:"categories"`
	Tags        int          `json:"tags"`
	RecentPosts []RecentPost `json:"recentPosts"`
}
