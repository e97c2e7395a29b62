package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAssetNotFound = errors.New("asset not found")
)

// ValidationError reports a missing or malformed publish field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// RemoteAPIError is a non-2xx response from the remote blog.
type RemoteAPIError struct {
	Op         string
	StatusCode int
	Body       string
	// Code is the remote error code from the response body, when present
	Code string
}

func (e *RemoteAPIError) Error() string {
	return fmt.Sprintf("wordpress: %s failed with status %d: %s", e.Op, e.StatusCode, e.Body)
}

type AssetNotFoundError struct {
	Path    string
	OwnerID string
}

func (e *AssetNotFoundError) Error() string {
	return fmt.Sprintf("asset not found: %s (owner %s)", e.Path, e.OwnerID)
}

func (e *AssetNotFoundError) Is(target error) bool {
	return target == ErrAssetNotFound
}

type AssetReadError struct {
	Path string
	Err  error
}

func (e *AssetReadError) Error() string {
	return fmt.Sprintf("failed to read asset %s: %v", e.Path, e.Err)
}

func (e *AssetReadError) Unwrap() error {
	return e.Err
}

type TaxonomyCreationError struct {
	Name string
	Err  error
}

func (e *TaxonomyCreationError) Error() string {
	return fmt.Sprintf("failed to create tag %q: %v", e.Name, e.Err)
}

func (e *TaxonomyCreationError) Unwrap() error {
	return e.Err
}
