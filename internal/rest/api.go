package rest

import (
	"context"
	"net/http"

	"github.com/dfryer1193/tusitala/blog/application"
	"github.com/dfryer1193/tusitala/blog/domain"
	"github.com/dfryer1193/tusitala/shared/wordpress"
	"github.com/gin-gonic/gin"
)

// DefaultMaxMediaBytes caps direct uploads to the remote media library.
const DefaultMaxMediaBytes int64 = 5 << 20

type Publisher interface {
	Publish(ctx context.Context, draft domain.Draft) (*domain.PublishResult, error)
}

type AssetManager interface {
	Upload(ctx context.Context, upload application.AssetUpload) (*domain.Asset, error)
	List(ctx context.Context, ownerID string) ([]*domain.Asset, error)
	Delete(ctx context.Context, id string, ownerID string) error
}

// WordPress is the remote blog surface exposed through the API.
type WordPress interface {
	TestConnection(ctx context.Context) bool
	GetPosts(ctx context.Context, opts wordpress.PostListOptions) ([]domain.RemotePost, error)
	GetCategories(ctx context.Context) ([]domain.Term, error)
	GetTags(ctx context.Context) ([]domain.Term, error)
	CreateCategory(ctx context.Context, name, slug, description string, parent int) (*domain.Term, error)
	CreateTag(ctx context.Context, name, slug, description string) (*domain.Term, error)
	GetMediaLibrary(ctx context.Context, page, perPage int) ([]wordpress.MediaItem, error)
	UploadMedia(ctx context.Context, upload domain.MediaUpload) (*domain.RemoteMedia, error)
}

var _ WordPress = (*wordpress.Client)(nil)

type Dependencies struct {
	Publisher     Publisher
	Assets        AssetManager
	WordPress     WordPress
	Publications  domain.PublicationRepository
	MaxMediaBytes int64
}

type handlers struct {
	publisher     Publisher
	assets        AssetManager
	wp            WordPress
	publications  domain.PublicationRepository
	maxMediaBytes int64
}

func NewApi(router *gin.Engine, deps Dependencies) {
	h := &handlers{
		publisher:     deps.Publisher,
		assets:        deps.Assets,
		wp:            deps.WordPress,
		publications:  deps.Publications,
		maxMediaBytes: deps.MaxMediaBytes,
	}
	if h.maxMediaBytes <= 0 {
		h.maxMediaBytes = DefaultMaxMediaBytes
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	wordpressGroup := router.Group("api/wordpress")
	{
		wordpressGroup.GET("", h.GetStatus)
		wordpressGroup.POST("/publish", h.PublishDraft)
		wordpressGroup.POST("/test-connection", h.TestConnection)
		wordpressGroup.GET("/categories", h.GetCategories)
		wordpressGroup.POST("/categories", h.CreateCategory)
		wordpressGroup.GET("/tags", h.GetTags)
		wordpressGroup.POST("/tags", h.CreateTag)
		wordpressGroup.GET("/media", h.GetMediaLibrary)
		wordpressGroup.POST("/media", h.UploadMedia)
	}

	imagesGroup := router.Group("api/images")
	{
		imagesGroup.POST("/upload", h.UploadImage)
		imagesGroup.GET("", h.GetImages)
		imagesGroup.DELETE("/:id", h.DeleteImage)
	}

	router.GET("/api/publications", h.GetPublications)
}
