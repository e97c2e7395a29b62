package rest

import (
	"context"
	"fmt"
	"sync"

	"github.com/dfryer1193/tusitala/blog/application"
	"github.com/dfryer1193/tusitala/blog/domain"
	"github.com/dfryer1193/tusitala/shared/wordpress"
)

type fakePublisher struct {
	drafts []domain.Draft
	result *domain.PublishResult
	err    error
}

func (p *fakePublisher) Publish(ctx context.Context, draft domain.Draft) (*domain.PublishResult, error) {
	p.drafts = append(p.drafts, draft)
	if p.err != nil {
		return nil, p.err
	}
	return p.result, nil
}

type fakeAssets struct {
	mu      sync.Mutex
	uploads []application.AssetUpload
	assets  map[string][]*domain.Asset
	err     error
}

func (a *fakeAssets) Upload(ctx context.Context, upload application.AssetUpload) (*domain.Asset, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return nil, a.err
	}
	a.uploads = append(a.uploads, upload)
	asset := &domain.Asset{
		ID:           fmt.Sprintf("asset-%d", len(a.uploads)),
		StoragePath:  "/uploads/temp/" + upload.OwnerID + "/" + upload.OriginalName,
		Filename:     upload.OriginalName,
		OriginalName: upload.OriginalName,
		MimeType:     "image/png",
		Size:         int64(len(upload.Content)),
		AltText:      upload.AltText,
		OwnerID:      upload.OwnerID,
	}
	return asset, nil
}

func (a *fakeAssets) List(ctx context.Context, ownerID string) ([]*domain.Asset, error) {
	if ownerID == "" {
		return nil, &domain.ValidationError{Field: "userId", Message: "user id is required"}
	}
	return a.assets[ownerID], nil
}

func (a *fakeAssets) Delete(ctx context.Context, id string, ownerID string) error {
	for _, asset := range a.assets[ownerID] {
		if asset.ID == id {
			return nil
		}
	}
	return fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
}

type fakeWordPress struct {
	connected  bool
	posts      []domain.RemotePost
	categories []domain.Term
	tags       []domain.Term
	media      []wordpress.MediaItem
	listErr    error
	createErr  error

	uploads     []domain.MediaUpload
	mediaPage   int
	mediaPer    int
	createdTerm []string
}

func (w *fakeWordPress) TestConnection(ctx context.Context) bool { return w.connected }

func (w *fakeWordPress) GetPosts(ctx context.Context, opts wordpress.PostListOptions) ([]domain.RemotePost, error) {
	return w.posts, w.listErr
}

func (w *fakeWordPress) GetCategories(ctx context.Context) ([]domain.Term, error) {
	return w.categories, w.listErr
}

func (w *fakeWordPress) GetTags(ctx context.Context) ([]domain.Term, error) {
	return w.tags, w.listErr
}

func (w *fakeWordPress) CreateCategory(ctx context.Context, name, slug, description string, parent int) (*domain.Term, error) {
	if w.createErr != nil {
		return nil, w.createErr
	}
	w.createdTerm = append(w.createdTerm, "category:"+name)
	return &domain.Term{ID: 31, Name: name, Slug: wordpress.Slugify(name), Description: description, Parent: parent}, nil
}

func (w *fakeWordPress) CreateTag(ctx context.Context, name, slug, description string) (*domain.Term, error) {
	if w.createErr != nil {
		return nil, w.createErr
	}
	w.createdTerm = append(w.createdTerm, "tag:"+name)
	return &domain.Term{ID: 41, Name: name, Slug: wordpress.Slugify(name), Description: description}, nil
}

func (w *fakeWordPress) GetMediaLibrary(ctx context.Context, page, perPage int) ([]wordpress.MediaItem, error) {
	w.mediaPage, w.mediaPer = page, perPage
	return w.media, w.listErr
}

func (w *fakeWordPress) UploadMedia(ctx context.Context, upload domain.MediaUpload) (*domain.RemoteMedia, error) {
	if w.createErr != nil {
		return nil, w.createErr
	}
	w.uploads = append(w.uploads, upload)
	return &domain.RemoteMedia{ID: 900, URL: "https://blog.example.com/wp-content/uploads/" + upload.Filename, Title: upload.Title}, nil
}

type fakePublications struct {
	pubs       []*domain.Publication
	err        error
	lastOwner  string
	lastLimit  int
	lastOffset int
}

func (p *fakePublications) UpsertPublication(ctx context.Context, pub *domain.Publication) error {
	p.pubs = append(p.pubs, pub)
	return nil
}

func (p *fakePublications) GetPublication(ctx context.Context, remoteID int) (*domain.Publication, error) {
	for _, pub := range p.pubs {
		if pub.RemoteID == remoteID {
			return pub, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (p *fakePublications) ListPublications(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Publication, error) {
	p.lastOwner, p.lastLimit, p.lastOffset = ownerID, limit, offset
	return p.pubs, p.err
}
