package domain

import (
	"context"
	"time"
)

// RemotePostInput is the payload for creating a post on the remote blog.
// Zero-valued optional fields are not sent.
type RemotePostInput struct {
	Title           string
	Content         string
	Status          PostStatus
	CategoryIDs     []int
	TagIDs          []int
	FeaturedMediaID int
	Excerpt         string
	Slug            string
	Meta            map[string]string
	Date            *time.Time
}

type RemotePost struct {
	ID     int
	Title  string
	Status PostStatus
	Link   string
	Date   string
}

type RemoteMedia struct {
	ID    int
	URL   string
	Title string
}

type MediaUpload struct {
	Content  []byte
	Filename string
	MimeType string
	Title    string
	AltText  string
}

// Term is a category or tag on the remote blog.
type Term struct {
	ID          int
	Name        string
	Slug        string
	Description string
	Count       int
	Parent      int
}

// MediaUploader uploads binaries to the remote blog.
type MediaUploader interface {
	UploadMedia(ctx context.Context, upload MediaUpload) (*RemoteMedia, error)
}

// TagResolver maps tag names to remote terms, creating the missing ones.
// The returned terms carry the requested name, in request order.
type TagResolver interface {
	GetOrCreateTagTerms(ctx context.Context, names []string) ([]Term, error)
}

// RemoteBlog is the subset of the remote blog API the publish pipeline uses.
type RemoteBlog interface {
	MediaUploader
	TagResolver
	CreatePost(ctx context.Context, post *RemotePostInput) (*RemotePost, error)
	PostURL(id int) string
}
