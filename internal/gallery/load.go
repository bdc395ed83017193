package gallery

import (
	"errors"
	"fmt"
)

// LoadMachine orchestrates the three-tier read path for albums: memory,
// disk cache, network. Reads are never blocked or corrupted by a concurrent
// background refresh; a failed refresh leaves stale-but-valid data visible.
type LoadMachine struct {
	state  *GalleryState
	cache  DiskCache
	api    Client
	logger Logger
}

// NewLoadMachine creates a LoadMachine over the shared state.
func NewLoadMachine(state *GalleryState, cache DiskCache, api Client, logger Logger) *LoadMachine {
	return &LoadMachine{state: state, cache: cache, api: api, logger: logger}
}

type fetchAction int

const (
	fetchNone   fetchAction = iota // a fetch for this path is already in flight
	fetchCold                      // disk then network
	fetchReload                    // network only
)

// Fetch loads the album at path. The call validates the path and performs
// the status transition synchronously, then fires the I/O in the background;
// completion is observed via the state maps.
//
// A path that is already LOADING, or already reloading, is a no-op;
// concurrent fetches for the same path de-duplicate to one network call.
// For a LOADED path, refetch=true starts a background network refresh that
// skips the disk tier (disk is only consulted on cold start); refetch=false
// is a no-op.
func (m *LoadMachine) Fetch(path string, refetch bool) error {
	if _, err := parseAlbumPath(path); err != nil {
		return err
	}

	switch m.beginFetch(path, refetch) {
	case fetchCold:
		m.state.run(func() { m.loadCold(path) })
	case fetchReload:
		m.state.run(func() { m.loadNetwork(path) })
	}
	return nil
}

// beginFetch decides and applies the synchronous transition for one Fetch
// call. It runs under the state lock with no suspension points, so two
// concurrent Fetch calls for the same path cannot both start I/O.
func (m *LoadMachine) beginFetch(path string, refetch bool) fetchAction {
	s := m.state
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reloads[path] == Reloading {
		return fetchNone
	}

	e := s.entryLocked(path)
	switch e.Status {
	case Loading:
		return fetchNone
	case Loaded:
		if !refetch {
			return fetchNone
		}
		s.reloads[path] = Reloading
		return fetchReload
	case NotLoaded, LoadErrored, DoesNotExist, CreateErrored:
		s.albums[path] = AlbumEntry{Path: path, Status: Loading}
		return fetchCold
	default:
		// A mutation is in flight on this path; its machine owns the
		// status and will trigger its own reloads.
		return fetchNone
	}
}

// loadCold runs the cold read path: a disk hit populates LOADED immediately
// (possibly stale), then the network runs unconditionally. The disk result
// is provisional, the network is authoritative.
func (m *LoadMachine) loadCold(path string) {
	rec, err := m.cache.Get(path)
	if err != nil {
		m.logger.Warn("disk cache read failed", "path", path, "error", err)
	}
	if rec != nil {
		album, err := NewAlbum(rec)
		if err != nil {
			m.logger.Warn("discarding malformed disk cache entry", "path", path, "error", err)
		} else {
			m.finishDiskLoad(path, album)
		}
	}

	m.loadNetwork(path)
}

// loadNetwork fetches path from the server and finalizes the entry.
func (m *LoadMachine) loadNetwork(path string) {
	rec, err := m.api.GetAlbum(path)
	switch {
	case errors.Is(err, ErrNotFound):
		// Expected outcome, not an error: the album is gone. Evict the
		// disk copy so the next cold start doesn't resurrect it.
		if derr := m.cache.Delete(path); derr != nil {
			m.logger.Warn("disk cache eviction failed", "path", path, "error", derr)
		}
		m.setDoesNotExist(path)
	case err != nil:
		m.failLoad(path, err)
	default:
		album, merr := NewAlbum(rec)
		if merr != nil {
			m.failLoad(path, fmt.Errorf("mapping album record: %w", merr))
			return
		}
		m.finishLoad(path, album)
		if serr := m.cache.Set(path, rec); serr != nil {
			m.logger.Warn("disk cache write-through failed", "path", path, "error", serr)
		}
	}
}

// finishDiskLoad promotes a disk hit to LOADED while the same cold fetch's
// network leg is still pending. The reload marker is set so a concurrent
// Fetch observes the in-flight refresh and does not start a second network
// call; the network leg clears it when it finalizes.
func (m *LoadMachine) finishDiskLoad(path string, album *Album) {
	s := m.state
	s.mu.Lock()
	defer s.mu.Unlock()
	s.albums[path] = AlbumEntry{Path: path, Status: Loaded, Album: album}
	s.reloads[path] = Reloading
}

// finishLoad transitions path to LOADED with the given album and clears any
// reload marker.
func (m *LoadMachine) finishLoad(path string, album *Album) {
	s := m.state
	s.mu.Lock()
	defer s.mu.Unlock()
	s.albums[path] = AlbumEntry{Path: path, Status: Loaded, Album: album}
	delete(s.reloads, path)
}

// failLoad finalizes a failed network fetch. If the path is LOADED this was
// a background refresh: keep the good data visible and only mark the reload
// as errored. Otherwise the path has nothing to show and goes to
// LOAD_ERRORED with the message preserved for retry UI.
func (m *LoadMachine) failLoad(path string, err error) {
	m.logger.Error("album fetch failed", "path", path, "error", err)

	s := m.state
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entryLocked(path)
	if e.Status == Loaded {
		s.reloads[path] = ErrorReloading
		return
	}
	s.albums[path] = AlbumEntry{Path: path, Status: LoadErrored, ErrorMessage: err.Error()}
	delete(s.reloads, path)
}

// setDoesNotExist transitions path to DOES_NOT_EXIST.
func (m *LoadMachine) setDoesNotExist(path string) {
	s := m.state
	s.mu.Lock()
	defer s.mu.Unlock()
	s.albums[path] = AlbumEntry{Path: path, Status: DoesNotExist}
	delete(s.reloads, path)
}

// refresh re-fetches path from the network inline, in the caller's
// goroutine. Mutation machines call it after a confirmed server-side change
// so parent/child lists reflect the mutation; running inline keeps their
// reload ordering deterministic.
func (m *LoadMachine) refresh(path string) {
	switch m.beginFetch(path, true) {
	case fetchCold:
		m.loadCold(path)
	case fetchReload:
		m.loadNetwork(path)
	}
}

// AlbumExists is a best-effort existence probe, not a cache-filling read:
// memory answers first (LOADED/LOADING means yes, DOES_NOT_EXIST means no),
// then disk, then a network HEAD. Any tier confirming is sufficient.
func (m *LoadMachine) AlbumExists(path string) (bool, error) {
	if _, err := parseAlbumPath(path); err != nil {
		return false, err
	}

	switch m.state.AlbumEntry(path).Status {
	case Loaded, Loading:
		return true, nil
	case DoesNotExist:
		return false, nil
	}

	rec, err := m.cache.Get(path)
	if err != nil {
		m.logger.Warn("disk cache read failed", "path", path, "error", err)
	}
	if rec != nil {
		return true, nil
	}

	return m.api.AlbumExists(path)
}

// RemoveFromMemoryAndDisk evicts path from both cache tiers. The disk
// deletion completes before the call returns, so callers needing certainty
// get it; callers favoring UI responsiveness run it in the background.
func (m *LoadMachine) RemoveFromMemoryAndDisk(path string) error {
	if _, err := ParsePath(path); err != nil {
		return err
	}

	s := m.state
	s.mu.Lock()
	delete(s.albums, path)
	delete(s.reloads, path)
	s.mu.Unlock()

	return m.cache.Delete(path)
}

// UpdateAlbumEntry writes an optimistic local patch: the entry replaces the
// in-memory value and, when it carries an album, its record is re-persisted
// to disk. No network I/O happens; the caller must already have server
// confirmation for the corresponding change.
func (m *LoadMachine) UpdateAlbumEntry(e AlbumEntry) error {
	if _, err := ParsePath(e.Path); err != nil {
		return err
	}

	s := m.state
	s.mu.Lock()
	s.albums[e.Path] = e
	s.mu.Unlock()

	if e.Album != nil {
		return m.cache.Set(e.Path, e.Album.Record())
	}
	return nil
}

// parseAlbumPath parses path and additionally requires an album path.
func parseAlbumPath(path string) (*Path, error) {
	p, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	if !p.IsAlbum() {
		return nil, fmt.Errorf("%w: %q: not an album path", ErrInvalidPath, path)
	}
	return p, nil
}
