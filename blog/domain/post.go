package domain

import (
	"context"
	"time"
)

// Publication is the local record of a draft that was successfully created on
// the remote blog.
type Publication struct {
	RemoteID        int
	OwnerID         string
	Title           string
	Status          PostStatus
	URL             string
	FeaturedMediaID int
	ScheduledAt     time.Time
	UpdatedAt       time.Time
	CreatedAt       time.Time
}

type PublicationRepository interface {
	UpsertPublication(ctx context.Context, p *Publication) error
	GetPublication(ctx context.Context, remoteID int) (*Publication, error)
	ListPublications(ctx context.Context, ownerID string, limit int, offset int) ([]*Publication, error)
}
