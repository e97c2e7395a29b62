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

var _ domain.AssetRepository = (*SQLiteAssetRepository)(nil)

// SQLiteAssetRepository implements domain.AssetRepository on SQLite, keeping
// binaries in an AssetStorage.
type SQLiteAssetRepository struct {
	db      *sql.DB
	storage domain.AssetStorage
}

func NewAssetRepository(sqlDB *sql.DB, storage domain.AssetStorage) *SQLiteAssetRepository {
	return &SQLiteAssetRepository{
		db:      sqlDB,
		storage: storage,
	}
}

const assetColumns = `
	id, storage_path, filename, original_name, mime_type, size, width, height,
	alt_text, caption, hash, owner_id, remote_media_id, remote_url, updated_at, created_at
`

const insertAssetQuery = `
	INSERT INTO assets (` + assetColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// SaveAsset inserts the asset row and writes its content in one transaction.
// The row is rolled back when the file cannot be written.
func (r *SQLiteAssetRepository) SaveAsset(ctx context.Context, a *domain.Asset, content []byte) error {
	if a == nil {
		return fmt.Errorf("asset cannot be nil")
	}
	if a.ID == "" {
		return fmt.Errorf("asset ID cannot be empty")
	}
	if a.StoragePath == "" {
		return fmt.Errorf("asset storage path cannot be empty")
	}
	if a.OwnerID == "" {
		return fmt.Errorf("asset owner cannot be empty")
	}

	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	return db.RunInTransaction(ctx, r.db, func(txCtx context.Context) error {
		row := assetRowFromDomain(a)

		executor := db.GetExecutor(txCtx, r.db)
		_, err := executor.ExecContext(txCtx, insertAssetQuery,
			row.ID,
			row.StoragePath,
			row.Filename,
			row.OriginalName,
			row.MimeType,
			row.Size,
			row.Width,
			row.Height,
			row.AltText,
			row.Caption,
			row.Hash,
			row.OwnerID,
			row.RemoteMediaID,
			row.RemoteURL,
			row.UpdatedAt,
			row.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert asset record: %w", err)
		}

		if err := r.storage.Write(txCtx, a.StoragePath, content); err != nil {
			return fmt.Errorf("failed to store asset content: %w", err)
		}

		return nil
	})
}

const findAssetByPathQuery = `
	SELECT ` + assetColumns + `
	FROM assets
	WHERE storage_path = ? AND owner_id = ?
`

// FindByPathAndOwner looks up the asset stored at path for the given owner
func (r *SQLiteAssetRepository) FindByPathAndOwner(ctx context.Context, path string, ownerID string) (*domain.Asset, error) {
	if path == "" {
		return nil, fmt.Errorf("asset path cannot be empty")
	}

	row, err := scanAsset(db.GetExecutor(ctx, r.db).QueryRowContext(ctx, findAssetByPathQuery, path, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.AssetNotFoundError{Path: path, OwnerID: ownerID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find asset: %w", err)
	}

	return row.toDomain(), nil
}

const getAssetQuery = `
	SELECT ` + assetColumns + `
	FROM assets
	WHERE id = ?
`

func (r *SQLiteAssetRepository) GetAsset(ctx context.Context, id string) (*domain.Asset, error) {
	if id == "" {
		return nil, fmt.Errorf("asset ID cannot be empty")
	}

	row, err := scanAsset(db.GetExecutor(ctx, r.db).QueryRowContext(ctx, getAssetQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}

	return row.toDomain(), nil
}

const listAssetsByOwnerQuery = `
	SELECT ` + assetColumns + `
	FROM assets
	WHERE owner_id = ?
	ORDER BY created_at DESC
`

// ListByOwner returns the owner's assets, newest first
func (r *SQLiteAssetRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Asset, error) {
	rows, err := db.GetExecutor(ctx, r.db).QueryContext(ctx, listAssetsByOwnerQuery, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	assets := make([]*domain.Asset, 0)
	for rows.Next() {
		row, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset row: %w", err)
		}
		assets = append(assets, row.toDomain())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating asset rows: %w", err)
	}

	return assets, nil
}

const attachRemoteQuery = `
	UPDATE assets
	SET remote_media_id = ?, remote_url = ?, updated_at = ?
	WHERE id = ?
`

// AttachRemote records where the asset now lives on the remote blog
func (r *SQLiteAssetRepository) AttachRemote(ctx context.Context, id string, mediaID int, url string) error {
	if id == "" {
		return fmt.Errorf("asset ID cannot be empty")
	}

	result, err := db.GetExecutor(ctx, r.db).ExecContext(ctx, attachRemoteQuery, mediaID, url, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to attach remote media: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to attach remote media: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

const (
	getAssetPathQuery = `SELECT storage_path FROM assets WHERE id = ? AND owner_id = ?`
	deleteAssetQuery  = `DELETE FROM assets WHERE id = ?`
)

// DeleteAsset removes the asset row and its file within a transaction
func (r *SQLiteAssetRepository) DeleteAsset(ctx context.Context, id string, ownerID string) error {
	if id == "" {
		return fmt.Errorf("asset ID cannot be empty")
	}

	return db.RunInTransaction(ctx, r.db, func(txCtx context.Context) error {
		executor := db.GetExecutor(txCtx, r.db)

		var storagePath string
		err := executor.QueryRowContext(txCtx, getAssetPathQuery, id, ownerID).Scan(&storagePath)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to look up asset: %w", err)
		}

		if _, err := executor.ExecContext(txCtx, deleteAssetQuery, id); err != nil {
			return fmt.Errorf("failed to delete asset record: %w", err)
		}

		if err := r.storage.Remove(txCtx, storagePath); err != nil {
			return fmt.Errorf("failed to remove asset content: %w", err)
		}

		return nil
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

// assetRow mirrors the assets table, nullable columns included
type assetRow struct {
	ID            string         `db:"id"`
	StoragePath   string         `db:"storage_path"`
	Filename      string         `db:"filename"`
	OriginalName  string         `db:"original_name"`
	MimeType      string         `db:"mime_type"`
	Size          int64          `db:"size"`
	Width         sql.NullInt64  `db:"width"`
	Height        sql.NullInt64  `db:"height"`
	AltText       string         `db:"alt_text"`
	Caption       string         `db:"caption"`
	Hash          string         `db:"hash"`
	OwnerID       string         `db:"owner_id"`
	RemoteMediaID sql.NullInt64  `db:"remote_media_id"`
	RemoteURL     sql.NullString `db:"remote_url"`
	UpdatedAt     sql.NullTime   `db:"updated_at"`
	CreatedAt     sql.NullTime   `db:"created_at"`
}

func scanAsset(s rowScanner) (*assetRow, error) {
	var row assetRow
	err := s.Scan(
		&row.ID,
		&row.StoragePath,
		&row.Filename,
		&row.OriginalName,
		&row.MimeType,
		&row.Size,
		&row.Width,
		&row.Height,
		&row.AltText,
		&row.Caption,
		&row.Hash,
		&row.OwnerID,
		&row.RemoteMediaID,
		&row.RemoteURL,
		&row.UpdatedAt,
		&row.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func assetRowFromDomain(a *domain.Asset) *assetRow {
	row := &assetRow{
		ID:           a.ID,
		StoragePath:  a.StoragePath,
		Filename:     a.Filename,
		OriginalName: a.OriginalName,
		MimeType:     a.MimeType,
		Size:         a.Size,
		AltText:      a.AltText,
		Caption:      a.Caption,
		Hash:         a.Hash,
		OwnerID:      a.OwnerID,
		RemoteURL:    sql.NullString{String: a.RemoteURL, Valid: a.RemoteURL != ""},
		UpdatedAt:    sql.NullTime{Time: a.UpdatedAt, Valid: !a.UpdatedAt.IsZero()},
		CreatedAt:    sql.NullTime{Time: a.CreatedAt, Valid: !a.CreatedAt.IsZero()},
	}

	if a.Width != nil {
		row.Width = sql.NullInt64{Int64: int64(*a.Width), Valid: true}
	}
	if a.Height != nil {
		row.Height = sql.NullInt64{Int64: int64(*a.Height), Valid: true}
	}
	if a.RemoteMediaID != nil {
		row.RemoteMediaID = sql.NullInt64{Int64: int64(*a.RemoteMediaID), Valid: true}
	}

	return row
}

// toDomain converts an assetRow to a domain.Asset, handling nullable columns
func (ar *assetRow) toDomain() *domain.Asset {
	a := &domain.Asset{
		ID:           ar.ID,
		StoragePath:  ar.StoragePath,
		Filename:     ar.Filename,
		OriginalName: ar.OriginalName,
		MimeType:     ar.MimeType,
		Size:         ar.Size,
		AltText:      ar.AltText,
		Caption:      ar.Caption,
		Hash:         ar.Hash,
		OwnerID:      ar.OwnerID,
	}

	if ar.Width.Valid {
		w := int(ar.Width.Int64)
		a.Width = &w
	}
	if ar.Height.Valid {
		h := int(ar.Height.Int64)
		a.Height = &h
	}
	if ar.RemoteMediaID.Valid {
		id := int(ar.RemoteMediaID.Int64)
		a.RemoteMediaID = &id
	}
	if ar.RemoteURL.Valid {
		a.RemoteURL = ar.RemoteURL.String
	}
	if ar.UpdatedAt.Valid {
		a.UpdatedAt = ar.UpdatedAt.Time
	}
	if ar.CreatedAt.Valid {
		a.CreatedAt = ar.CreatedAt.Time
	}

	return a
}
