package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dfryer1193/tusitala/blog/domain"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"
)

// SEO plugin meta keys written for a draft's description and focus keyphrase.
var (
	metaDescriptionKeys = []string{"description", "_yoast_wpseo_metadesc", "rank_math_description"}
	focusKeyphraseKeys  = []string{"_yoast_wpseo_focuskw", "rank_math_focus_keyword"}
)

// PublishService turns drafts into posts on the remote blog.
type PublishService struct {
	remote       domain.RemoteBlog
	assets       domain.AssetRepository
	storage      domain.AssetStorage
	publications domain.PublicationRepository
	rewriter     *ContentRewriter
	taxonomy     *TaxonomyResolver
	markdown     MarkdownRenderer
	now          func() time.Time
	concurrency  int
}

type PublishOption func(*PublishService)

// WithClock replaces time.Now for scheduling decisions.
func WithClock(now func() time.Time) PublishOption {
	return func(s *PublishService) {
		s.now = now
	}
}

// WithPublicationRepository records every successful publish.
func WithPublicationRepository(repo domain.PublicationRepository) PublishOption {
	return func(s *PublishService) {
		s.publications = repo
	}
}

// WithMigrationConcurrency bounds how many in-body images upload at once.
func WithMigrationConcurrency(n int) PublishOption {
	return func(s *PublishService) {
		s.concurrency = n
	}
}

func NewPublishService(remote domain.RemoteBlog, assets domain.AssetRepository, storage domain.AssetStorage, opts ...PublishOption) *PublishService {
	s := &PublishService{
		remote:   remote,
		assets:   assets,
		storage:  storage,
		markdown: NewMarkdownRenderer(),
		taxonomy: NewTaxonomyResolver(remote),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.rewriter = NewContentRewriter(assets, storage, remote, s.concurrency)
	return s
}

// Publish validates the draft, uploads its featured image, resolves tags,
// migrates in-body images and creates the post. Tag resolution and image
// migration degrade on failure; validation, featured image upload and post
// creation failures are returned.
func (s *PublishService) Publish(ctx context.Context, draft domain.Draft) (*domain.PublishResult, error) {
	title := strings.TrimSpace(draft.Title)
	if err := validateDraft(title, draft); err != nil {
		return nil, err
	}

	status, date := resolveSchedule(draft.Status, draft.ScheduledAt, s.now())

	featuredMediaID, err := s.resolveFeaturedImage(ctx, draft.FeaturedImage, draft.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to upload featured image: %w", err)
	}

	var tagIDs []int
	if len(draft.Tags) > 0 {
		tagIDs, err = s.taxonomy.Resolve(ctx, draft.Tags)
		if err != nil {
			log.Warn().Err(err).Ints("tag_ids", tagIDs).Msg("Tag resolution failed, continuing with numeric tags only")
		}
	}

	content := draft.Content
	var images []domain.ImageMigration
	if HasLocalTempImages(content) {
		rewritten, err := s.rewriter.Rewrite(ctx, content, draft.OwnerID)
		if err != nil {
			log.Error().Err(err).Msg("Image migration failed, publishing original content")
		} else {
			content = rewritten.Content
			images = rewritten.Images
		}
	}
	if images == nil {
		images = []domain.ImageMigration{}
	}

	content, snippet := s.formatContent(content)

	excerpt := draft.Excerpt
	if strings.TrimSpace(excerpt) == "" {
		excerpt = snippet
	}

	input := &domain.RemotePostInput{
		Title:           title,
		Content:         content,
		Status:          status,
		CategoryIDs:     draft.CategoryIDs,
		TagIDs:          tagIDs,
		FeaturedMediaID: featuredMediaID,
		Excerpt:         excerpt,
		Slug:            draft.Slug,
		Meta:            buildSEOMeta(draft.MetaDescription, draft.FocusKeyphrase),
		Date:            date,
	}

	post, err := s.remote.CreatePost(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	result := &domain.PublishResult{
		RemoteID:        post.ID,
		Title:           post.Title,
		Status:          post.Status,
		URL:             s.remote.PostURL(post.ID),
		Link:            post.Link,
		FeaturedMediaID: featuredMediaID,
		Images:          images,
	}
	if result.Title == "" {
		result.Title = title
	}
	if result.Status == "" {
		result.Status = status
	}

	log.Info().
		Int("post_id", result.RemoteID).
		Str("status", string(result.Status)).
		Int("images", len(images)).
		Msg("Published post")

	s.recordPublication(ctx, draft.OwnerID, result, date)

	return result, nil
}

func validateDraft(title string, draft domain.Draft) error {
	if title == "" {
		return &domain.ValidationError{Field: "title", Message: "title is required"}
	}
	if strings.TrimSpace(draft.Content) == "" {
		return &domain.ValidationError{Field: "content", Message: "content is required"}
	}

	switch draft.Status {
	case "", domain.StatusDraft, domain.StatusPublish, domain.StatusScheduled,
		domain.StatusFuture, domain.StatusPending, domain.StatusPrivate:
	default:
		return &domain.ValidationError{Field: "status", Message: fmt.Sprintf("unsupported status %q", draft.Status)}
	}

	if img := draft.FeaturedImage; img != nil && img.MediaID <= 0 && img.AssetPath == "" && len(img.Content) == 0 {
		return &domain.ValidationError{Field: "featuredImage", Message: "featured image needs a media ID, an asset path or content"}
	}

	return nil
}

// resolveSchedule maps the requested status to the remote status. A publish
// request with a scheduled time strictly after now becomes a future post
// dated at that time; otherwise the time is ignored and the post goes out
// now, with a warning when a schedule was asked for.
func resolveSchedule(requested domain.PostStatus, scheduledAt *time.Time, now time.Time) (domain.PostStatus, *time.Time) {
	switch requested {
	case "":
		return domain.StatusDraft, nil
	case domain.StatusPublish, domain.StatusScheduled, domain.StatusFuture:
		if scheduledAt != nil && scheduledAt.After(now) {
			at := *scheduledAt
			return domain.StatusFuture, &at
		}
		if requested != domain.StatusPublish {
			event := log.Warn().Str("requested_status", string(requested))
			if scheduledAt != nil {
				event = event.Time("scheduled_at", *scheduledAt)
			}
			event.Msg("Scheduled time is missing or not in the future, publishing now")
		}
		return domain.StatusPublish, nil
	default:
		return requested, nil
	}
}

func (s *PublishService) resolveFeaturedImage(ctx context.Context, img *domain.FeaturedImage, ownerID string) (int, error) {
	if img == nil {
		return 0, nil
	}
	if img.MediaID > 0 {
		return img.MediaID, nil
	}

	if img.AssetPath != "" {
		return s.uploadFeaturedAsset(ctx, img, ownerID)
	}

	filename := img.Filename
	if filename == "" {
		filename = "featured-image" + mimetype.Detect(img.Content).Extension()
	}
	mimeType := img.MimeType
	if mimeType == "" {
		mimeType = mimetype.Detect(img.Content).String()
	}

	media, err := s.remote.UploadMedia(ctx, domain.MediaUpload{
		Content:  img.Content,
		Filename: filename,
		MimeType: mimeType,
		Title:    filename,
		AltText:  img.AltText,
	})
	if err != nil {
		return 0, err
	}
	return media.ID, nil
}

func (s *PublishService) uploadFeaturedAsset(ctx context.Context, img *domain.FeaturedImage, ownerID string) (int, error) {
	asset, err := s.assets.FindByPathAndOwner(ctx, assetPathFromSrc(img.AssetPath), ownerID)
	if err != nil {
		return 0, err
	}

	if asset.Migrated() {
		return *asset.RemoteMediaID, nil
	}

	content, err := s.storage.Read(ctx, asset.StoragePath)
	if err != nil {
		return 0, &domain.AssetReadError{Path: asset.StoragePath, Err: err}
	}

	altText := img.AltText
	if altText == "" {
		altText = asset.AltText
	}

	media, err := s.remote.UploadMedia(ctx, domain.MediaUpload{
		Content:  content,
		Filename: asset.Filename,
		MimeType: asset.MimeType,
		Title:    asset.Filename,
		AltText:  altText,
	})
	if err != nil {
		return 0, err
	}

	if err := s.assets.AttachRemote(ctx, asset.ID, media.ID, media.URL); err != nil {
		log.Warn().Err(err).Str("asset_id", asset.ID).Msg("Failed to record featured image migration")
	}

	return media.ID, nil
}

// formatContent converts markdown to HTML and gives every image the
// responsive style. For markdown it also returns the first paragraph, used
// as the excerpt when the draft has none.
func (s *PublishService) formatContent(content string) (string, string) {
	var snippet string
	if !looksLikeHTML(content) {
		rendered, err := s.markdown.Render([]byte(content))
		if err != nil {
			log.Error().Err(err).Msg("Failed to render markdown, sending content as is")
		} else {
			content = string(rendered.HTMLContent)
			snippet = rendered.Snippet
		}
	}
	return normalizeImages(content), snippet
}

func buildSEOMeta(description, keyphrase string) map[string]string {
	description = strings.TrimSpace(description)
	keyphrase = strings.TrimSpace(keyphrase)
	if description == "" && keyphrase == "" {
		return nil
	}

	meta := make(map[string]string, len(metaDescriptionKeys)+len(focusKeyphraseKeys))
	if description != "" {
		for _, k := range metaDescriptionKeys {
			meta[k] = description
		}
	}
	if keyphrase != "" {
		for _, k := range focusKeyphraseKeys {
			meta[k] = keyphrase
		}
	}
	return meta
}

func (s *PublishService) recordPublication(ctx context.Context, ownerID string, result *domain.PublishResult, date *time.Time) {
	if s.publications == nil {
		return
	}

	now := s.now().UTC()
	pub := &domain.Publication{
		RemoteID:        result.RemoteID,
		OwnerID:         ownerID,
		Title:           result.Title,
		Status:          result.Status,
		URL:             result.URL,
		FeaturedMediaID: result.FeaturedMediaID,
		UpdatedAt:       now,
		CreatedAt:       now,
	}
	if date != nil {
		pub.ScheduledAt = *date
	}

	if err := s.publications.UpsertPublication(ctx, pub); err != nil {
		log.Error().Err(err).Int("post_id", result.RemoteID).Msg("Failed to record publication")
	}
}
