package application

import (
	"context"
	"errors"
	"net/url"
	"regexp"
	"strings"

	"github.com/dfryer1193/tusitala/blog/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const defaultMigrationConcurrency = 4

// localTempImagePattern matches an <img> tag whose src points at a local
// temporary upload. Group 1 is the src value.
var localTempImagePattern = regexp.MustCompile(`(?i)<img\b[^>]*?\ssrc\s*=\s*["']([^"']*/uploads/temp/[^"']*)["'][^>]*>`)

// RewriteResult is the rewritten content and one migration per rewritten
// image tag, in document order.
type RewriteResult struct {
	Content string
	Images  []domain.ImageMigration
}

// imageOccurrence is one matched <img> tag and the span of its src value.
type imageOccurrence struct {
	src      string
	srcStart int
	srcEnd   int
}

// ContentRewriter moves locally stored images referenced by HTML content to
// the remote blog and points the tags at their new URLs.
type ContentRewriter struct {
	assets      domain.AssetRepository
	storage     domain.AssetStorage
	uploader    domain.MediaUploader
	concurrency int
}

func NewContentRewriter(assets domain.AssetRepository, storage domain.AssetStorage, uploader domain.MediaUploader, concurrency int) *ContentRewriter {
	if concurrency <= 0 {
		concurrency = defaultMigrationConcurrency
	}
	return &ContentRewriter{
		assets:      assets,
		storage:     storage,
		uploader:    uploader,
		concurrency: concurrency,
	}
}

// HasLocalTempImages reports whether content references any local temporary upload.
func HasLocalTempImages(content string) bool {
	return localTempImagePattern.MatchString(content)
}

func findLocalTempImages(content string) []imageOccurrence {
	matches := localTempImagePattern.FindAllStringSubmatchIndex(content, -1)
	occurrences := make([]imageOccurrence, 0, len(matches))
	for _, m := range matches {
		occurrences = append(occurrences, imageOccurrence{
			src:      content[m[2]:m[3]],
			srcStart: m[2],
			srcEnd:   m[3],
		})
	}
	return occurrences
}

// Rewrite uploads every distinct local temporary image in content once and
// replaces the src of each tag that references it. An image that cannot be
// migrated is logged and its tags are left untouched. Only cancellation of
// ctx is returned as an error.
func (r *ContentRewriter) Rewrite(ctx context.Context, content string, ownerID string) (*RewriteResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	occurrences := findLocalTempImages(content)
	if len(occurrences) == 0 {
		return &RewriteResult{Content: content, Images: []domain.ImageMigration{}}, nil
	}

	var distinct []string
	index := make(map[string]int)
	for _, occ := range occurrences {
		if _, ok := index[occ.src]; !ok {
			index[occ.src] = len(distinct)
			distinct = append(distinct, occ.src)
		}
	}

	migrated := make([]*domain.RemoteMedia, len(distinct))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, src := range distinct {
		g.Go(func() error {
			media, err := r.migrate(gctx, src, ownerID)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				logMigrationFailure(err, src, ownerID)
				return nil
			}
			migrated[i] = media
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var b strings.Builder
	b.Grow(len(content))
	images := make([]domain.ImageMigration, 0, len(occurrences))
	last := 0
	for _, occ := range occurrences {
		media := migrated[index[occ.src]]
		if media == nil {
			continue
		}
		b.WriteString(content[last:occ.srcStart])
		b.WriteString(media.URL)
		last = occ.srcEnd

		images = append(images, domain.ImageMigration{
			OriginalSrc:   occ.src,
			RemoteSrc:     media.URL,
			RemoteMediaID: media.ID,
		})
	}
	b.WriteString(content[last:])

	return &RewriteResult{Content: b.String(), Images: images}, nil
}

func (r *ContentRewriter) migrate(ctx context.Context, src string, ownerID string) (*domain.RemoteMedia, error) {
	asset, err := r.assets.FindByPathAndOwner(ctx, assetPathFromSrc(src), ownerID)
	if err != nil {
		return nil, err
	}

	if asset.Migrated() {
		log.Debug().Str("src", src).Int("media_id", *asset.RemoteMediaID).Msg("Image already migrated, reusing remote media")
		return &domain.RemoteMedia{ID: *asset.RemoteMediaID, URL: asset.RemoteURL, Title: asset.Filename}, nil
	}

	content, err := r.storage.Read(ctx, asset.StoragePath)
	if err != nil {
		return nil, &domain.AssetReadError{Path: asset.StoragePath, Err: err}
	}

	media, err := r.uploader.UploadMedia(ctx, domain.MediaUpload{
		Content:  content,
		Filename: asset.Filename,
		MimeType: asset.MimeType,
		Title:    asset.Filename,
		AltText:  asset.AltText,
	})
	if err != nil {
		return nil, err
	}

	if err := r.assets.AttachRemote(ctx, asset.ID, media.ID, media.URL); err != nil {
		return nil, err
	}

	log.Info().
		Str("src", src).
		Int("media_id", media.ID).
		Str("remote_url", media.URL).
		Msg("Migrated image to remote blog")

	return media, nil
}

// assetPathFromSrc returns the stored path for src. Absolute URLs are reduced
// to their path.
func assetPathFromSrc(src string) string {
	if !strings.Contains(src, "://") && !strings.HasPrefix(src, "//") {
		return src
	}
	u, err := url.Parse(src)
	if err != nil || u.Path == "" {
		return src
	}
	return u.Path
}

func logMigrationFailure(err error, src, ownerID string) {
	var notFound *domain.AssetNotFoundError
	if errors.As(err, &notFound) {
		log.Warn().Str("src", src).Str("owner_id", ownerID).Msg("Image not found in asset store, leaving reference as is")
		return
	}
	log.Error().Err(err).Str("src", src).Str("owner_id", ownerID).Msg("Failed to migrate image, leaving reference as is")
}
