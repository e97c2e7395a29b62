package application

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"time"

	"github.com/dfryer1193/tusitala/blog/domain"
	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/webp"
)

// DefaultMaxAssetSize is the largest image accepted into the asset store.
const DefaultMaxAssetSize int64 = 10 << 20

// ownerForbiddenChars would escape the owner directory or break the src
// attribute the stored path ends up in.
const ownerForbiddenChars = "/\\\"'<>` \t\r\n"

var allowedAssetTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

// AssetUpload is an image received from an editor before publishing.
type AssetUpload struct {
	OwnerID      string
	OriginalName string
	Content      []byte
	AltText      string
	Caption      string
}

// AssetService stores uploaded images under the owner's temporary path.
type AssetService struct {
	repo    domain.AssetRepository
	maxSize int64
	now     func() time.Time
}

func NewAssetService(repo domain.AssetRepository, maxSize int64) *AssetService {
	if maxSize <= 0 {
		maxSize = DefaultMaxAssetSize
	}
	return &AssetService{
		repo:    repo,
		maxSize: maxSize,
		now:     time.Now,
	}
}

// Upload validates and stores an image, returning the recorded asset.
func (s *AssetService) Upload(ctx context.Context, upload AssetUpload) (*domain.Asset, error) {
	owner := strings.TrimSpace(upload.OwnerID)
	if owner == "" {
		return nil, &domain.ValidationError{Field: "userId", Message: "user ID required"}
	}
	if strings.ContainsAny(owner, ownerForbiddenChars) || owner == "." || owner == ".." {
		return nil, &domain.ValidationError{Field: "userId", Message: "user ID contains invalid characters"}
	}
	if len(upload.Content) == 0 {
		return nil, &domain.ValidationError{Field: "file", Message: "no file provided"}
	}
	if int64(len(upload.Content)) > s.maxSize {
		return nil, &domain.ValidationError{
			Field:   "file",
			Message: fmt.Sprintf("file too large, maximum size is %s", humanize.IBytes(uint64(s.maxSize))),
		}
	}

	mtype := mimetype.Detect(upload.Content)
	if !mimetype.EqualsAny(mtype.String(), allowedAssetTypes...) {
		return nil, &domain.ValidationError{
			Field:   "file",
			Message: "invalid file type, only JPEG, PNG, WebP, and GIF are allowed",
		}
	}

	// The client's filename is kept as metadata only.
	ext := mtype.Extension()

	now := s.now().UTC()
	id := uuid.NewString()
	filename := fmt.Sprintf("%d-%s%s", now.UnixMilli(), strings.SplitN(uuid.NewString(), "-", 2)[0], ext)

	originalName := upload.OriginalName
	if originalName == "" {
		originalName = filename
	}

	asset := &domain.Asset{
		ID:           id,
		StoragePath:  fmt.Sprintf("/uploads/temp/%s/%s", owner, filename),
		Filename:     filename,
		OriginalName: originalName,
		MimeType:     mtype.String(),
		Size:         int64(len(upload.Content)),
		AltText:      upload.AltText,
		Caption:      upload.Caption,
		Hash:         calculateHash(upload.Content),
		OwnerID:      owner,
		CreatedAt:    now,
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(upload.Content))
	if err != nil {
		log.Warn().Err(err).Str("filename", originalName).Msg("Could not get image dimensions")
	} else {
		asset.Width = &cfg.Width
		asset.Height = &cfg.Height
	}

	if err := s.repo.SaveAsset(ctx, asset, upload.Content); err != nil {
		return nil, fmt.Errorf("failed to save asset: %w", err)
	}

	log.Info().
		Str("asset_id", asset.ID).
		Str("owner_id", owner).
		Str("path", asset.StoragePath).
		Str("size", humanize.IBytes(uint64(asset.Size))).
		Msg("Stored image")

	return asset, nil
}

// List returns the owner's assets, newest first.
func (s *AssetService) List(ctx context.Context, ownerID string) ([]*domain.Asset, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, &domain.ValidationError{Field: "userId", Message: "user ID required"}
	}
	return s.repo.ListByOwner(ctx, ownerID)
}

// Delete removes one of the owner's assets along with its file.
func (s *AssetService) Delete(ctx context.Context, id string, ownerID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return &domain.ValidationError{Field: "userId", Message: "user ID required"}
	}
	if strings.TrimSpace(id) == "" {
		return &domain.ValidationError{Field: "id", Message: "image ID required"}
	}
	return s.repo.DeleteAsset(ctx, id, ownerID)
}

// calculateHash returns the hex sha256 of content.
func calculateHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
