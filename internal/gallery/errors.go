package gallery

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPath indicates a path that does not match the gallery path
	// grammar. Returned synchronously from machine entry points; it signals a
	// caller bug, not a server-side failure.
	ErrInvalidPath = errors.New("invalid gallery path")

	// ErrNotFound indicates a 404 from the server. This is a valid, expected
	// outcome (the album simply doesn't exist), not an error-level event.
	ErrNotFound = errors.New("not found")

	// ErrAlbumAlreadyExists is returned synchronously from Create when the
	// target path is already loaded or loading.
	ErrAlbumAlreadyExists = errors.New("album already exists")

	// ErrNotLoaded indicates an operation that requires the target to be
	// loaded first (e.g. rename).
	ErrNotLoaded = errors.New("album is not loaded")

	// ErrMissingVersionToken indicates an upload PUT succeeded but the
	// response carried no version token header. Hard failure for that one
	// item only.
	ErrMissingVersionToken = errors.New("upload response missing version token")

	// ErrSessionExpired indicates a 401 that survived the one-shot
	// re-authentication retry.
	ErrSessionExpired = errors.New("session expired")

	// ErrNotAuthorized indicates the current session lacks mutation
	// privileges.
	ErrNotAuthorized = errors.New("not authorized")
)

// ServerError represents a non-2xx, non-404 response from the gallery server.
// Message carries the server-supplied error message when present, else the
// HTTP status text.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server error (%d)", e.StatusCode)
}

// UnknownItemTypeError indicates a server record whose itemType/mediaType
// discriminators match no known combination. Fatal for that record, not for
// sibling records in the same batch.
type UnknownItemTypeError struct {
	ItemType  string
	MediaType string
}

func (e *UnknownItemTypeError) Error() string {
	return fmt.Sprintf("unknown item type %q (mediaType %q)", e.ItemType, e.MediaType)
}
