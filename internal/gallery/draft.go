package gallery

import "fmt"

// DraftMachine saves edited fields (title, summary, tags, published) of an
// album or media item. After the server accepts the patch, the cached data
// is patched locally by shallow-merging the accepted fields and
// re-persisting to disk. No full reload, because the server accepts back
// exactly what was sent.
type DraftMachine struct {
	state    *GalleryState
	api      Client
	load     *LoadMachine
	session  Session
	notifier Notifier
	idgen    IDGenerator
	logger   Logger
}

// NewDraftMachine creates a DraftMachine over the shared state.
func NewDraftMachine(state *GalleryState, api Client, load *LoadMachine, session Session, notifier Notifier, idgen IDGenerator, logger Logger) *DraftMachine {
	return &DraftMachine{state: state, api: api, load: load, session: session, notifier: notifier, idgen: idgen, logger: logger}
}

// SaveDraft patches the given fields of the album or media item at path.
// For albums the album itself must be LOADED; for media its containing
// album must be.
func (d *DraftMachine) SaveDraft(path string, fields map[string]any) error {
	p, err := ParsePath(path)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return fmt.Errorf("no fields to save for %q", path)
	}
	if !d.session.IsAdmin() {
		return ErrNotAuthorized
	}

	if err := d.beginSave(p); err != nil {
		return err
	}

	d.state.run(func() { d.saveAsync(p, fields) })
	return nil
}

// targetAlbumPath returns the path whose AlbumEntry holds the data being
// edited: the album itself, or the containing album for media.
func targetAlbumPath(p *Path) string {
	if p.IsMedia() {
		return p.Parent().String()
	}
	return p.String()
}

func (d *DraftMachine) beginSave(p *Path) error {
	s := d.state
	s.mu.Lock()
	defer s.mu.Unlock()

	target := targetAlbumPath(p)
	e := s.entryLocked(target)
	if e.Status != Loaded {
		return fmt.Errorf("%w: %q", ErrNotLoaded, target)
	}

	if p.IsMedia() {
		s.saves[p.String()] = SaveEntry{Path: p.String()}
	} else {
		s.albums[target] = AlbumEntry{Path: target, Status: Saving, Album: e.Album}
	}
	return nil
}

// clearSave removes the ephemeral media save entry. Album saves have no
// entry to clear; their status lives on the AlbumEntry itself.
func (d *DraftMachine) clearSave(p *Path) {
	if !p.IsMedia() {
		return
	}
	s := d.state
	s.mu.Lock()
	delete(s.saves, p.String())
	s.mu.Unlock()
}

func (d *DraftMachine) saveAsync(p *Path, fields map[string]any) {
	path := p.String()

	if err := d.api.PatchAlbum(path, fields); err != nil {
		d.failSave(p, err)
		return
	}

	if err := d.applyLocally(p, fields); err != nil {
		// The server accepted the patch; a local patch failure only means
		// the cache is stale until the next reload.
		d.logger.Warn("local draft patch failed", "path", path, "error", err)
		d.restoreLoaded(targetAlbumPath(p))
		d.load.refresh(targetAlbumPath(p))
	}
	d.clearSave(p)
}

// applyLocally patches the in-memory album (or the media child inside it)
// on a cloned record, then replaces the entry and re-persists it to disk.
func (d *DraftMachine) applyLocally(p *Path, fields map[string]any) error {
	target := targetAlbumPath(p)

	s := d.state
	s.mu.Lock()
	e := s.entryLocked(target)
	s.mu.Unlock()

	if e.Album == nil {
		return fmt.Errorf("%w: %q", ErrNotLoaded, target)
	}

	rec := e.Album.Record().Clone()
	if p.IsMedia() {
		patched := false
		for i := range rec.Children {
			if rec.Children[i].Path == p.String() {
				applyDraftFields(&rec.Children[i], fields)
				patched = true
				break
			}
		}
		if !patched {
			return fmt.Errorf("%w: %q not in album %q", ErrNotFound, p.String(), target)
		}
	} else {
		applyDraftFields(rec, fields)
	}

	album, err := NewAlbum(rec)
	if err != nil {
		return fmt.Errorf("mapping patched record: %w", err)
	}
	return d.load.UpdateAlbumEntry(AlbumEntry{Path: target, Status: Loaded, Album: album})
}

// restoreLoaded drops a SAVING marker back to LOADED so the follow-up
// refresh is not refused.
func (d *DraftMachine) restoreLoaded(target string) {
	s := d.state
	s.mu.Lock()
	e := s.entryLocked(target)
	if e.Status == Saving {
		s.albums[target] = AlbumEntry{Path: target, Status: Loaded, Album: e.Album}
	}
	s.mu.Unlock()
}

func (d *DraftMachine) failSave(p *Path, err error) {
	path := p.String()
	d.logger.Error("draft save failed", "path", path, "error", err)
	d.clearSave(p)

	target := targetAlbumPath(p)
	if !p.IsMedia() {
		s := d.state
		s.mu.Lock()
		e := s.entryLocked(target)
		s.albums[target] = AlbumEntry{Path: target, Status: SaveErrored, Album: e.Album, ErrorMessage: err.Error()}
		s.mu.Unlock()
	}

	d.notifier.Notify(Notification{
		ID:       d.idgen.New(),
		Severity: SeverityError,
		Message:  fmt.Sprintf("Failed to save [%s]: %s", path, err),
	})
}

// applyDraftFields shallow-merges accepted draft fields into rec. Unknown
// keys are ignored; the server already validated the patch.
func applyDraftFields(rec *Record, fields map[string]any) {
	for k, v := range fields {
		switch k {
		case "title":
			if s, ok := v.(string); ok {
				rec.Title = s
			}
		case "summary":
			if s, ok := v.(string); ok {
				rec.Summary = s
			}
		case "published":
			if b, ok := v.(bool); ok {
				rec.Published = b
			}
		case "tags":
			switch t := v.(type) {
			case []string:
				rec.Tags = append([]string(nil), t...)
			case []any:
				var tags []string
				for _, it := range t {
					if s, ok := it.(string); ok {
						tags = append(tags, s)
					}
				}
				rec.Tags = tags
			}
		}
	}
}
