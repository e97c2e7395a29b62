package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dfryer1193/tusitala/blog/domain"
)

// fakeAssetRepo is an in-memory domain.AssetRepository.
type fakeAssetRepo struct {
	mu        sync.Mutex
	assets    map[string]*domain.Asset
	saved     map[string][]byte
	attachErr error
	attached  map[string]int
}

func newFakeAssetRepo(assets ...*domain.Asset) *fakeAssetRepo {
	r := &fakeAssetRepo{
		assets:   make(map[string]*domain.Asset),
		saved:    make(map[string][]byte),
		attached: make(map[string]int),
	}
	for _, a := range assets {
		r.assets[a.ID] = a
	}
	return r
}

func (r *fakeAssetRepo) SaveAsset(ctx context.Context, a *domain.Asset, content []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assets[a.ID] = a
	r.saved[a.StoragePath] = content
	return nil
}

func (r *fakeAssetRepo) FindByPathAndOwner(ctx context.Context, path string, ownerID string) (*domain.Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.assets {
		if a.StoragePath == path && a.OwnerID == ownerID {
			copied := *a
			return &copied, nil
		}
	}
	return nil, &domain.AssetNotFoundError{Path: path, OwnerID: ownerID}
}

func (r *fakeAssetRepo) GetAsset(ctx context.Context, id string) (*domain.Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.assets[id]; ok {
		return a, nil
	}
	return nil, domain.ErrNotFound
}

func (r *fakeAssetRepo) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Asset
	for _, a := range r.assets {
		if a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAssetRepo) AttachRemote(ctx context.Context, id string, mediaID int, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.attachErr != nil {
		return r.attachErr
	}
	a, ok := r.assets[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.RemoteMediaID = &mediaID
	a.RemoteURL = url
	r.attached[id] = mediaID
	return nil
}

func (r *fakeAssetRepo) DeleteAsset(ctx context.Context, id string, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assets[id]
	if !ok || a.OwnerID != ownerID {
		return domain.ErrNotFound
	}
	delete(r.assets, id)
	return nil
}

// fakeStorage is an in-memory domain.AssetStorage.
type fakeStorage struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{files: make(map[string][]byte)}
}

func (s *fakeStorage) Read(ctx context.Context, path string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, ok := s.files[path]
	if !ok {
		return nil, fmt.Errorf("no such file: %s", path)
	}
	return content, nil
}

func (s *fakeStorage) Write(ctx context.Context, path string, content []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = content
	return nil
}

func (s *fakeStorage) Remove(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, path)
	return nil
}

// fakeRemote is a recording domain.RemoteBlog.
type fakeRemote struct {
	mu sync.Mutex

	nextMediaID int
	uploads     []domain.MediaUpload
	failUpload  map[string]bool

	posts     []*domain.RemotePostInput
	createErr error

	tags     map[string]int
	nextTag  int
	tagCalls [][]string
	tagErr   error
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		nextMediaID: 100,
		failUpload:  make(map[string]bool),
		tags:        make(map[string]int),
		nextTag:     500,
	}
}

func (f *fakeRemote) UploadMedia(ctx context.Context, upload domain.MediaUpload) (*domain.RemoteMedia, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, upload)
	if f.failUpload[upload.Filename] {
		return nil, &domain.RemoteAPIError{Op: "upload media", StatusCode: 500, Body: "boom"}
	}
	f.nextMediaID++
	return &domain.RemoteMedia{
		ID:    f.nextMediaID,
		URL:   "https://blog.example.com/wp-content/uploads/" + upload.Filename,
		Title: upload.Title,
	}, nil
}

func (f *fakeRemote) GetOrCreateTagTerms(ctx context.Context, names []string) ([]domain.Term, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tagCalls = append(f.tagCalls, names)
	if f.tagErr != nil {
		return nil, f.tagErr
	}
	terms := make([]domain.Term, 0, len(names))
	for _, n := range names {
		key := strings.ToLower(n)
		id, ok := f.tags[key]
		if !ok {
			f.nextTag++
			id = f.nextTag
			f.tags[key] = id
		}
		terms = append(terms, domain.Term{ID: id, Name: n})
	}
	return terms, nil
}

func (f *fakeRemote) CreatePost(ctx context.Context, post *domain.RemotePostInput) (*domain.RemotePost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts = append(f.posts, post)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &domain.RemotePost{
		ID:     42,
		Title:  post.Title,
		Status: post.Status,
		Link:   "https://blog.example.com/" + strings.ToLower(post.Title),
	}, nil
}

func (f *fakeRemote) PostURL(id int) string {
	return fmt.Sprintf("https://blog.example.com/?p=%d", id)
}

func (f *fakeRemote) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.uploads) + len(f.posts) + len(f.tagCalls)
}

// fakePublications is an in-memory domain.PublicationRepository.
type fakePublications struct {
	mu   sync.Mutex
	pubs map[int]*domain.Publication
	err  error
}

func (p *fakePublications) UpsertPublication(ctx context.Context, pub *domain.Publication) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	if p.pubs == nil {
		p.pubs = make(map[int]*domain.Publication)
	}
	p.pubs[pub.RemoteID] = pub
	return nil
}

func (p *fakePublications) GetPublication(ctx context.Context, remoteID int) (*domain.Publication, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pub, ok := p.pubs[remoteID]; ok {
		return pub, nil
	}
	return nil, domain.ErrNotFound
}

func (p *fakePublications) ListPublications(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Publication, error) {
	return nil, errors.New("not implemented")
}

// seedAsset registers an asset owned by owner at path with some content.
func seedAsset(repo *fakeAssetRepo, storage *fakeStorage, id, owner, path string) {
	parts := strings.Split(path, "/")
	repo.assets[id] = &domain.Asset{
		ID:          id,
		StoragePath: path,
		Filename:    parts[len(parts)-1],
		MimeType:    "image/png",
		OwnerID:     owner,
	}
	storage.files[path] = []byte("png:" + id)
}
