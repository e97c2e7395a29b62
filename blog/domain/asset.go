package domain

import (
	"context"
	"time"
)

// Asset is an uploaded image kept under a per-user temporary path until it is
// migrated to the remote blog.
type Asset struct {
	ID            string
	StoragePath   string
	Filename      string
	OriginalName  string
	MimeType      string
	Size          int64
	Width         *int
	Height        *int
	AltText       string
	Caption       string
	Hash          string
	OwnerID       string
	RemoteMediaID *int
	RemoteURL     string
	UpdatedAt     time.Time
	CreatedAt     time.Time
}

// Migrated reports whether the asset has already been uploaded to the remote blog.
func (a *Asset) Migrated() bool {
	return a.RemoteMediaID != nil && a.RemoteURL != ""
}

type AssetRepository interface {
	// SaveAsset saves the asset row and its binary content together
	SaveAsset(ctx context.Context, a *Asset, content []byte) error

	// FindByPathAndOwner returns an *AssetNotFoundError when no row matches
	FindByPathAndOwner(ctx context.Context, path string, ownerID string) (*Asset, error)

	GetAsset(ctx context.Context, id string) (*Asset, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*Asset, error)

	// AttachRemote records the remote media id and URL once the asset is migrated
	AttachRemote(ctx context.Context, id string, mediaID int, url string) error

	// DeleteAsset removes both the row and the stored binary
	DeleteAsset(ctx context.Context, id string, ownerID string) error
}

// AssetStorage reads and writes asset binaries by their stored path.
type AssetStorage interface {
	Read(ctx context.Context, path string) ([]byte, error)
	Write(ctx context.Context, path string, content []byte) error
	Remove(ctx context.Context, path string) error
}
