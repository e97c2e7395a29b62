package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dfryer1193/tusitala/blog/domain"
	"github.com/dfryer1193/tusitala/shared/db"
)

var _ domain.PublicationRepository = (*SQLitePublicationRepository)(nil)

// SQLitePublicationRepository implements domain.PublicationRepository using SQLite
type SQLitePublicationRepository struct {
	db *sql.DB
}

func NewPublicationRepository(db *sql.DB) *SQLitePublicationRepository {
	return &SQLitePublicationRepository{
		db: db,
	}
}

const upsertPublicationQuery = `
	INSERT INTO publications (remote_id, owner_id, title, status, url, featured_media_id, scheduled_at, updated_at, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(remote_id) DO UPDATE SET
		owner_id = excluded.owner_id,
		title = excluded.title,
		status = excluded.status,
		url = excluded.url,
		featured_media_id = excluded.featured_media_id,
		scheduled_at = excluded.scheduled_at,
		updated_at = excluded.updated_at,
		created_at = COALESCE(publications.created_at, excluded.created_at)
`

// UpsertPublication records a published draft, keyed by its remote post id
func (r *SQLitePublicationRepository) UpsertPublication(ctx context.Context, p *domain.Publication) error {
	if p == nil {
		return fmt.Errorf("publication cannot be nil")
	}
	if p.RemoteID <= 0 {
		return fmt.Errorf("publication remote ID must be positive")
	}

	var scheduledAt, updatedAt any
	if !p.ScheduledAt.IsZero() {
		scheduledAt = p.ScheduledAt
	}
	if !p.UpdatedAt.IsZero() {
		updatedAt = p.UpdatedAt
	}

	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := db.GetExecutor(ctx, r.db).ExecContext(ctx, upsertPublicationQuery,
		p.RemoteID,
		p.OwnerID,
		p.Title,
		string(p.Status),
		p.URL,
		p.FeaturedMediaID,
		scheduledAt,
		updatedAt,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert publication: %w", err)
	}

	return nil
}

const getPublicationQuery = `
	SELECT remote_id, owner_id, title, status, url, featured_media_id, scheduled_at, updated_at, created_at
	FROM publications
	WHERE remote_id = ?
`

func (r *SQLitePublicationRepository) GetPublication(ctx context.Context, remoteID int) (*domain.Publication, error) {
	var row publicationRow
	err := db.GetExecutor(ctx, r.db).QueryRowContext(ctx, getPublicationQuery, remoteID).Scan(
		&row.RemoteID,
		&row.OwnerID,
		&row.Title,
		&row.Status,
		&row.URL,
		&row.FeaturedMediaID,
		&row.ScheduledAt,
		&row.UpdatedAt,
		&row.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("publication %d: %w", remoteID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get publication: %w", err)
	}

	return row.toDomain(), nil
}

const listPublicationsQuery = `
	SELECT remote_id, owner_id, title, status, url, featured_media_id, scheduled_at, updated_at, created_at
	FROM publications
	WHERE owner_id = ?
	ORDER BY created_at DESC
	LIMIT ? OFFSET ?
`

// ListPublications returns an owner's publications, newest first
func (r *SQLitePublicationRepository) ListPublications(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Publication, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := db.GetExecutor(ctx, r.db).QueryContext(ctx, listPublicationsQuery, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list publications: %w", err)
	}
	defer rows.Close()

	publications := make([]*domain.Publication, 0)
	for rows.Next() {
		var row publicationRow
		err := rows.Scan(
			&row.RemoteID,
			&row.OwnerID,
			&row.Title,
			&row.Status,
			&row.URL,
			&row.FeaturedMediaID,
			&row.ScheduledAt,
			&row.UpdatedAt,
			&row.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan publication row: %w", err)
		}
		publications = append(publications, row.toDomain())
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating publication rows: %w", err)
	}

	return publications, nil
}

type publicationRow struct {
	RemoteID        int          `db:"remote_id"`
	OwnerID         string       `db:"owner_id"`
	Title           string       `db:"title"`
	Status          string       `db:"status"`
	URL             string       `db:"url"`
	FeaturedMediaID int          `db:"featured_media_id"`
	ScheduledAt     sql.NullTime `db:"scheduled_at"`
	UpdatedAt       sql.NullTime `db:"updated_at"`
	CreatedAt       sql.NullTime `db:"created_at"`
}

func (pr *publicationRow) toDomain() *domain.Publication {
	p := &domain.Publication{
		RemoteID:        pr.RemoteID,
		OwnerID:         pr.OwnerID,
		Title:           pr.Title,
		Status:          domain.PostStatus(pr.Status),
		URL:             pr.URL,
		FeaturedMediaID: pr.FeaturedMediaID,
	}

	if pr.ScheduledAt.Valid {
		p.ScheduledAt = pr.ScheduledAt.Time
	}
	if pr.UpdatedAt.Valid {
		p.UpdatedAt = pr.UpdatedAt.Time
	}
	if pr.CreatedAt.Valid {
		p.CreatedAt = pr.CreatedAt.Time
	}

	return p
}
