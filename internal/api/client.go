package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"gallery-go/internal/gallery"
)

// HTTPClient implements the gallery.Client interface against the remote
// album server. Read requests always hit the network (Cache-Control:
// no-cache); caching lives in the state layer, never in the transport.
// Requests that come back 401 get a one-shot re-authentication retry through
// the token store; a second 401 surfaces as ErrSessionExpired.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	tokens  *TokenStore
	logger  gallery.Logger
}

// NewHTTPClient creates a client for the server at baseURL (no trailing
// slash). tokens may be a fresh, unauthenticated store for read-only use.
func NewHTTPClient(baseURL string, tokens *TokenStore, logger gallery.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{},
		tokens:  tokens,
		logger:  logger,
	}
}

var _ gallery.Client = (*HTTPClient)(nil)

// GetAlbum fetches the album record at path.
func (c *HTTPClient) GetAlbum(path string) (*gallery.Record, error) {
	resp, err := c.do(http.MethodGet, "/album"+path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}

	var rec gallery.Record
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return nil, fmt.Errorf("decoding album %q: %w", path, err)
	}
	return &rec, nil
}

// AlbumExists probes existence via HEAD without transferring the record.
func (c *HTTPClient) AlbumExists(path string) (bool, error) {
	resp, err := c.do(http.MethodHead, "/album"+path, nil)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return true, nil
	default:
		return false, &gallery.ServerError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
}

// CreateAlbum creates an empty album at path.
func (c *HTTPClient) CreateAlbum(path string) error {
	return c.mutate(http.MethodPut, "/album"+path, nil)
}

// DeleteItem deletes the album or media item at path.
func (c *HTTPClient) DeleteItem(path string) error {
	return c.mutate(http.MethodDelete, path, nil)
}

// RenameItem renames the item at path to newName within its parent.
func (c *HTTPClient) RenameItem(path, newName string) error {
	return c.mutate(http.MethodPost, "/rename"+path, map[string]any{"newName": newName})
}

// PatchAlbum applies a partial content update to the item at path.
func (c *HTTPClient) PatchAlbum(path string, fields map[string]any) error {
	return c.mutate(http.MethodPatch, "/album"+path, fields)
}

// SetAlbumThumbnail sets mediaPath as albumPath's thumbnail.
func (c *HTTPClient) SetAlbumThumbnail(albumPath, mediaPath string) error {
	return c.mutate(http.MethodPatch, "/thumbnail"+albumPath, map[string]any{"path": mediaPath})
}

// SetCrop sets the thumbnail crop rectangle of the media item.
func (c *HTTPClient) SetCrop(mediaPath string, crop gallery.Rect) error {
	return c.mutate(http.MethodPatch, "/crop"+mediaPath, crop)
}

// PresignUploads requests direct-to-storage upload URLs for paths.
func (c *HTTPClient) PresignUploads(albumPath string, paths []string) (map[string]string, error) {
	var urls map[string]string
	err := c.mutateInto(http.MethodPost, "/presigned-upload"+albumPath, paths, &urls)
	if err != nil {
		return nil, err
	}
	return urls, nil
}

// Search runs a paginated search. page is zero-based.
func (c *HTTPClient) Search(terms string, page, pageSize int) (*gallery.SearchPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(pageSize))

	resp, err := c.do(http.MethodPost, "/search/"+url.PathEscape(terms)+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}

	var result gallery.SearchPage
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding search results: %w", err)
	}
	return &result, nil
}

// mutate performs an authenticated write with the one-shot 401 retry.
func (c *HTTPClient) mutate(method, path string, body any) error {
	return c.mutateInto(method, path, body, nil)
}

// mutateInto is mutate plus JSON-decoding the response into out (when out
// is non-nil).
func (c *HTTPClient) mutateInto(method, path string, body any, out any) error {
	resp, err := c.do(method, path, body)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()

		// One-shot re-authentication, then retry the call once.
		if rerr := c.tokens.Refresh(c.baseURL, c.http); rerr != nil {
			c.logger.Warn("re-authentication failed", "error", rerr)
			return gallery.ErrSessionExpired
		}
		resp, err = c.do(method, path, body)
		if err != nil {
			return err
		}
		if resp.StatusCode == http.StatusUnauthorized {
			resp.Body.Close()
			return gallery.ErrSessionExpired
		}
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return err
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// do builds and sends one request with the standard headers.
func (c *HTTPClient) do(method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokens.AccessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s %s: %w", method, path, err)
	}
	return resp, nil
}

// checkStatus converts a non-2xx response into the error taxonomy: 404 maps
// to ErrNotFound, everything else to a ServerError carrying the
// server-supplied message when present, else the status text.
func (c *HTTPClient) checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode == http.StatusNotFound {
		return gallery.ErrNotFound
	}

	msg := http.StatusText(resp.StatusCode)
	var body struct {
		ErrorMessage string `json:"errorMessage"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.ErrorMessage != "" {
		msg = body.ErrorMessage
	}
	return &gallery.ServerError{StatusCode: resp.StatusCode, Message: msg}
}
