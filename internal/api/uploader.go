package api

import (
	"fmt"
	"io"
	"net/http"

	"gallery-go/internal/gallery"
)

// versionHeader carries the object-storage version token on upload
// responses. The storage bucket's CORS policy must expose it; a response
// without it is a hard failure for that one item.
const versionHeader = "x-amz-version-id"

// StorageUploader PUTs file content directly to presigned storage URLs and
// returns the version token from the response header. No credentials are
// attached: the URL itself is the authorization.
type StorageUploader struct {
	http *http.Client
}

// NewStorageUploader creates a StorageUploader.
func NewStorageUploader() *StorageUploader {
	return &StorageUploader{http: &http.Client{}}
}

var _ gallery.Uploader = (*StorageUploader)(nil)

// Upload PUTs body to the presigned url and returns the version token.
func (u *StorageUploader) Upload(url string, contentType string, body io.Reader, size int64) (string, error) {
	req, err := http.NewRequest(http.MethodPut, url, body)
	if err != nil {
		return "", fmt.Errorf("building upload request: %w", err)
	}
	req.ContentLength = size
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := u.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("uploading to storage: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &gallery.ServerError{StatusCode: resp.StatusCode, Message: "storage upload failed"}
	}

	versionID := resp.Header.Get(versionHeader)
	if versionID == "" {
		return "", gallery.ErrMissingVersionToken
	}
	return versionID, nil
}
