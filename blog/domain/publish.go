package domain

import "time"

// PostStatus is the status sent to the remote blog.
type PostStatus string

const (
	StatusDraft   PostStatus = "draft"
	StatusPublish PostStatus = "publish"
	StatusFuture  PostStatus = "future"
	StatusPending PostStatus = "pending"
	StatusPrivate PostStatus = "private"

	// StatusScheduled is only accepted as a requested status. It resolves to
	// StatusFuture when the scheduled time is ahead, StatusPublish otherwise.
	StatusScheduled PostStatus = "scheduled"
)

// FeaturedImage is the cover image of a draft. Exactly one of MediaID,
// AssetPath or Content is expected to be set; MediaID wins when present.
type FeaturedImage struct {
	MediaID   int
	AssetPath string
	Content   []byte
	Filename  string
	MimeType  string
	AltText   string
}

// Draft is an in-progress post handed to the publish pipeline.
type Draft struct {
	Title           string
	Content         string
	Status          PostStatus
	ScheduledAt     *time.Time
	FeaturedImage   *FeaturedImage
	CategoryIDs     []int
	Tags            []string
	Excerpt         string
	Slug            string
	MetaDescription string
	FocusKeyphrase  string
	OwnerID         string
}

// ImageMigration records one in-body image moved to the remote blog.
type ImageMigration struct {
	OriginalSrc   string `json:"originalSrc"`
	RemoteSrc     string `json:"wordpressSrc"`
	RemoteMediaID int    `json:"wpMediaId"`
}

type PublishResult struct {
	RemoteID        int
	Title           string
	Status          PostStatus
	URL             string
	Link            string
	FeaturedMediaID int
	Images          []ImageMigration
}
