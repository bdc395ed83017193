package gallery

import "io"

// Client is the remote gallery API. Read calls bypass any HTTP-level cache:
// when a machine decides to go to the network it really goes to the network;
// caching is entirely this layer's job.
//
// Mutation calls are authenticated; implementations perform a one-shot
// re-authentication retry on HTTP 401 and surface ErrSessionExpired when the
// retry fails. 404 on reads is reported as ErrNotFound; other non-2xx
// responses as *ServerError.
type Client interface {
	// GetAlbum fetches the album record at path.
	GetAlbum(path string) (*Record, error)

	// AlbumExists probes existence via HEAD, without transferring the record.
	AlbumExists(path string) (bool, error)

	// CreateAlbum creates an empty album at path.
	CreateAlbum(path string) error

	// DeleteItem deletes the album or media item at path.
	DeleteItem(path string) error

	// RenameItem renames the item at path to newName within its parent.
	RenameItem(path, newName string) error

	// PatchAlbum applies a partial content update (draft save) to the album
	// or media item at path.
	PatchAlbum(path string, fields map[string]any) error

	// SetAlbumThumbnail sets mediaPath as albumPath's thumbnail.
	SetAlbumThumbnail(albumPath, mediaPath string) error

	// SetCrop sets the thumbnail crop rectangle of the media item.
	SetCrop(mediaPath string, crop Rect) error

	// PresignUploads requests direct-to-storage upload URLs for the given
	// media paths under albumPath. The result maps each path to its URL.
	PresignUploads(albumPath string, paths []string) (map[string]string, error)

	// Search runs a paginated search. page is zero-based.
	Search(terms string, page, pageSize int) (*SearchPage, error)
}

// SearchPage is one page of raw search results from the server.
type SearchPage struct {
	Total int64    `json:"total"`
	Items []Record `json:"items"`
}

// Uploader performs the direct-to-storage PUT of one file to a presigned
// URL and returns the opaque version token from the response header. An
// empty token is reported as ErrMissingVersionToken (the storage CORS policy
// must expose the header).
type Uploader interface {
	Upload(url string, contentType string, body io.Reader, size int64) (versionID string, err error)
}

// Session answers whether the current user may mutate the gallery. Machines
// consult it before accepting write operations.
type Session interface {
	IsAdmin() bool
}

// StaticSession is a Session with a fixed answer. Use in tests.
type StaticSession bool

func (s StaticSession) IsAdmin() bool { return bool(s) }
