package testutil

import (
	"fmt"
	"io"
	"sync"

	"gallery-go/internal/gallery"
)

// RenameCall records one RenameItem invocation.
type RenameCall struct {
	Path    string
	NewName string
}

// PatchCall records one PatchAlbum invocation.
type PatchCall struct {
	Path   string
	Fields map[string]any
}

// CropCall records one SetCrop invocation.
type CropCall struct {
	Path string
	Crop gallery.Rect
}

// SearchCall records one Search invocation.
type SearchCall struct {
	Terms    string
	Page     int
	PageSize int
}

// StubClient is an in-memory gallery.Client. Reads serve from the Albums
// map; writes record their arguments and return the injected error for that
// method, if any. All methods are safe for concurrent use.
type StubClient struct {
	mu sync.Mutex

	// Albums maps path to the record GetAlbum returns. A missing path
	// yields gallery.ErrNotFound. Records are cloned on the way out.
	Albums map[string]*gallery.Record

	// GetGate, when non-nil, makes GetAlbum block until the gate receives a
	// value. Used to hold a fetch in flight while the test pokes the state.
	GetGate chan struct{}

	// GetQueue, when non-empty, overrides Albums: each GetAlbum call pops
	// the front record. A nil element yields gallery.ErrNotFound. Used to
	// script what successive polls observe.
	GetQueue []*gallery.Record

	// PatchGate, when non-nil, makes PatchAlbum block until the gate
	// receives a value. Used to hold a draft save in flight.
	PatchGate chan struct{}

	GetErr       error
	ExistsErr    error
	CreateErr    error
	DeleteErr    error
	RenameErr    error
	PatchErr     error
	ThumbnailErr error
	CropErr      error
	PresignErr   error
	SearchErr    error

	// UploadURLs maps media path to the presigned URL PresignUploads hands
	// out. Paths not in the map get "https://storage.test" + path.
	UploadURLs map[string]string

	// SearchPages are returned in order, one per Search call.
	SearchPages []*gallery.SearchPage

	GetCalls       []string
	ExistsCalls    []string
	CreateCalls    []string
	DeleteCalls    []string
	RenameCalls    []RenameCall
	PatchCalls     []PatchCall
	ThumbnailCalls []RenameCall // Path = album, NewName = media
	CropCalls      []CropCall
	PresignCalls   [][]string
	SearchCalls    []SearchCall
}

// NewStubClient creates a StubClient serving the given records, keyed by
// their Path.
func NewStubClient(records ...*gallery.Record) *StubClient {
	c := &StubClient{Albums: make(map[string]*gallery.Record)}
	for _, rec := range records {
		c.Albums[rec.Path] = rec
	}
	return c
}

// SetAlbum installs or replaces the record served at its path.
func (c *StubClient) SetAlbum(rec *gallery.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Albums[rec.Path] = rec
}

func (c *StubClient) GetAlbum(path string) (*gallery.Record, error) {
	c.mu.Lock()
	c.GetCalls = append(c.GetCalls, path)
	gate := c.GetGate
	c.mu.Unlock()

	if gate != nil {
		<-gate
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.GetErr != nil {
		return nil, c.GetErr
	}
	if len(c.GetQueue) > 0 {
		rec := c.GetQueue[0]
		c.GetQueue = c.GetQueue[1:]
		if rec == nil {
			return nil, gallery.ErrNotFound
		}
		return rec.Clone(), nil
	}
	rec, ok := c.Albums[path]
	if !ok {
		return nil, gallery.ErrNotFound
	}
	return rec.Clone(), nil
}

func (c *StubClient) AlbumExists(path string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ExistsCalls = append(c.ExistsCalls, path)
	if c.ExistsErr != nil {
		return false, c.ExistsErr
	}
	_, ok := c.Albums[path]
	return ok, nil
}

func (c *StubClient) CreateAlbum(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CreateCalls = append(c.CreateCalls, path)
	if c.CreateErr != nil {
		return c.CreateErr
	}
	if _, ok := c.Albums[path]; !ok {
		c.Albums[path] = &gallery.Record{Path: path, ItemType: "album"}
	}
	return nil
}

func (c *StubClient) DeleteItem(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.DeleteCalls = append(c.DeleteCalls, path)
	if c.DeleteErr != nil {
		return c.DeleteErr
	}
	delete(c.Albums, path)
	return nil
}

func (c *StubClient) RenameItem(path, newName string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.RenameCalls = append(c.RenameCalls, RenameCall{Path: path, NewName: newName})
	return c.RenameErr
}

func (c *StubClient) PatchAlbum(path string, fields map[string]any) error {
	c.mu.Lock()
	c.PatchCalls = append(c.PatchCalls, PatchCall{Path: path, Fields: fields})
	gate := c.PatchGate
	err := c.PatchErr
	c.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return err
}

func (c *StubClient) SetAlbumThumbnail(albumPath, mediaPath string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ThumbnailCalls = append(c.ThumbnailCalls, RenameCall{Path: albumPath, NewName: mediaPath})
	return c.ThumbnailErr
}

func (c *StubClient) SetCrop(mediaPath string, crop gallery.Rect) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CropCalls = append(c.CropCalls, CropCall{Path: mediaPath, Crop: crop})
	return c.CropErr
}

func (c *StubClient) PresignUploads(albumPath string, paths []string) (map[string]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.PresignCalls = append(c.PresignCalls, append([]string(nil), paths...))
	if c.PresignErr != nil {
		return nil, c.PresignErr
	}
	urls := make(map[string]string, len(paths))
	for _, p := range paths {
		if u, ok := c.UploadURLs[p]; ok {
			urls[p] = u
		} else {
			urls[p] = "https://storage.test" + p
		}
	}
	return urls, nil
}

func (c *StubClient) Search(terms string, page, pageSize int) (*gallery.SearchPage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SearchCalls = append(c.SearchCalls, SearchCall{Terms: terms, Page: page, PageSize: pageSize})
	if c.SearchErr != nil {
		return nil, c.SearchErr
	}
	if page >= len(c.SearchPages) {
		return &gallery.SearchPage{}, nil
	}
	return c.SearchPages[page], nil
}

var _ gallery.Client = (*StubClient)(nil)

// UploadRequest records one Upload invocation against a StubUploader.
type UploadRequest struct {
	URL         string
	ContentType string
	Size        int64
	Body        []byte
}

// StubUploader records uploads and mints sequential version tokens
// ("version-1", "version-2", ...). Set Err to fail every upload, or map a
// URL in VersionIDs to control the token it returns.
type StubUploader struct {
	mu sync.Mutex

	Err        error
	VersionIDs map[string]string

	Requests []UploadRequest
	counter  int
}

func NewStubUploader() *StubUploader {
	return &StubUploader{VersionIDs: make(map[string]string)}
}

func (u *StubUploader) Upload(url string, contentType string, body io.Reader, size int64) (string, error) {
	content, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	u.Requests = append(u.Requests, UploadRequest{URL: url, ContentType: contentType, Size: size, Body: content})
	if u.Err != nil {
		return "", u.Err
	}
	if id, ok := u.VersionIDs[url]; ok {
		return id, nil
	}
	u.counter++
	return fmt.Sprintf("version-%d", u.counter), nil
}

var _ gallery.Uploader = (*StubUploader)(nil)
