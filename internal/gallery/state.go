package gallery

import "sync"

// AlbumEntry is the cache entry for one path. Entries are value types:
// writers replace the whole entry atomically under the state lock, never
// individual fields in place.
type AlbumEntry struct {
	Path         string
	Status       AlbumStatus
	Album        *Album
	NewPath      string // set when Status is RENAMED
	ErrorMessage string // set when Status is an *_ERRORED variant
}

// UploadEntry is the ephemeral per-item record of an in-flight upload,
// keyed by destination media path. Created at operation start, deleted on
// completion either way.
type UploadEntry struct {
	Path              string // destination media path
	FileName          string // name of the uploaded file
	VersionID         string // token returned by the storage PUT
	PreviousVersionID string // token the destination held before a replacement
	Uploaded          bool   // PUT finished, now waiting on server processing
}

// RenameEntry is the ephemeral record of an in-flight rename.
type RenameEntry struct {
	Path    string
	NewPath string
}

// CropEntry is the ephemeral record of an in-flight crop.
type CropEntry struct {
	Path string
	Crop Rect
}

// DeleteEntry is the ephemeral record of an in-flight media delete.
type DeleteEntry struct {
	Path string
}

// SaveEntry is the ephemeral record of an in-flight media draft save, keyed
// by the media path under mutation. Album saves surface through the album's
// own SAVING status instead.
type SaveEntry struct {
	Path string
}

// GalleryState holds the per-path status maps shared by all machines. It is
// the only shared mutable resource: every transition method takes the lock,
// runs to completion without I/O, and replaces whole entry values, so two
// transitions on the same path can never interleave mid-update. Different
// paths are fully independent; no ordering is guaranteed across paths.
//
// Background I/O routines are tracked so callers (CLI, tests) can wait for
// quiescence; machine entry points themselves never block on I/O.
type GalleryState struct {
	mu sync.Mutex
	wg sync.WaitGroup

	albums  map[string]AlbumEntry
	reloads map[string]ReloadStatus
	uploads map[string]UploadEntry
	renames map[string]RenameEntry
	crops   map[string]CropEntry
	deletes map[string]DeleteEntry
	saves   map[string]SaveEntry
}

// NewGalleryState creates an empty state container.
func NewGalleryState() *GalleryState {
	return &GalleryState{
		albums:  make(map[string]AlbumEntry),
		reloads: make(map[string]ReloadStatus),
		uploads: make(map[string]UploadEntry),
		renames: make(map[string]RenameEntry),
		crops:   make(map[string]CropEntry),
		deletes: make(map[string]DeleteEntry),
		saves:   make(map[string]SaveEntry),
	}
}

// run fires a background routine and tracks it for Wait. The routine must
// catch its own errors; nothing observes its completion except the status
// maps it updates.
func (s *GalleryState) run(fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
}

// Wait blocks until all background routines started so far have finished.
func (s *GalleryState) Wait() {
	s.wg.Wait()
}

// AlbumEntry returns the entry for path, synthesizing a NOT_LOADED entry for
// paths never touched. The returned value is a copy.
func (s *GalleryState) AlbumEntry(path string) AlbumEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entryLocked(path)
}

// entryLocked returns the entry for path, synthesizing NOT_LOADED if absent.
// Callers must hold s.mu.
func (s *GalleryState) entryLocked(path string) AlbumEntry {
	if e, ok := s.albums[path]; ok {
		return e
	}
	return AlbumEntry{Path: path, Status: NotLoaded}
}

// Reload returns the reload status for path.
func (s *GalleryState) Reload(path string) ReloadStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.reloads[path]; ok {
		return r
	}
	return NotReloading
}

// Upload returns the in-flight upload entry for a destination path, if any.
func (s *GalleryState) Upload(path string) (UploadEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.uploads[path]
	return e, ok
}

// PendingUploads returns all in-flight upload entries.
func (s *GalleryState) PendingUploads() []UploadEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]UploadEntry, 0, len(s.uploads))
	for _, e := range s.uploads {
		out = append(out, e)
	}
	return out
}

// Rename returns the in-flight rename entry for path, if any.
func (s *GalleryState) Rename(path string) (RenameEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.renames[path]
	return e, ok
}

// Crop returns the in-flight crop entry for path, if any.
func (s *GalleryState) Crop(path string) (CropEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.crops[path]
	return e, ok
}

// Delete returns the in-flight media delete entry for path, if any.
func (s *GalleryState) Delete(path string) (DeleteEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.deletes[path]
	return e, ok
}

// Save returns the in-flight media draft-save entry for path, if any.
func (s *GalleryState) Save(path string) (SaveEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.saves[path]
	return e, ok
}
