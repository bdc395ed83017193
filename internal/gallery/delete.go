package gallery

import "fmt"

// DeleteMachine models deletion of albums and media items. Deletion is
// permitted regardless of the target's prior load status (the only
// precondition is a valid, non-root path), so an album stuck in
// LOAD_ERRORED can still be deleted.
type DeleteMachine struct {
	state    *GalleryState
	api      Client
	load     *LoadMachine
	session  Session
	notifier Notifier
	idgen    IDGenerator
	logger   Logger
}

// NewDeleteMachine creates a DeleteMachine over the shared state.
func NewDeleteMachine(state *GalleryState, api Client, load *LoadMachine, session Session, notifier Notifier, idgen IDGenerator, logger Logger) *DeleteMachine {
	return &DeleteMachine{state: state, api: api, load: load, session: session, notifier: notifier, idgen: idgen, logger: logger}
}

// Delete deletes the album or media item at path. On confirmed server-side
// deletion the path is evicted from both cache tiers and the parent album is
// reloaded so its child list reflects the removal.
func (d *DeleteMachine) Delete(path string) error {
	p, err := ParsePath(path)
	if err != nil {
		return err
	}
	if p.Kind() == PathRoot {
		return fmt.Errorf("%w: %q: cannot delete the root album", ErrInvalidPath, path)
	}
	if !d.session.IsAdmin() {
		return ErrNotAuthorized
	}

	d.beginDelete(p)
	d.state.run(func() { d.deleteAsync(p) })
	return nil
}

// beginDelete is the synchronous transition: albums go to DELETING on their
// entry, media deletions get an ephemeral DeleteEntry.
func (d *DeleteMachine) beginDelete(p *Path) {
	s := d.state
	s.mu.Lock()
	defer s.mu.Unlock()

	path := p.String()
	if p.IsMedia() {
		s.deletes[path] = DeleteEntry{Path: path}
		return
	}
	e := s.entryLocked(path)
	s.albums[path] = AlbumEntry{Path: path, Status: Deleting, Album: e.Album}
}

func (d *DeleteMachine) deleteAsync(p *Path) {
	path := p.String()

	if err := d.api.DeleteItem(path); err != nil {
		d.failDelete(p, err)
		return
	}

	d.finishDelete(p)

	if err := d.load.RemoveFromMemoryAndDisk(path); err != nil {
		d.logger.Warn("evicting deleted path failed", "path", path, "error", err)
	}
	d.load.refresh(p.Parent().String())

	d.notifier.Notify(Notification{
		ID:       d.idgen.New(),
		Severity: SeverityInfo,
		Message:  fmt.Sprintf("Deleted [%s]", path),
	})
}

func (d *DeleteMachine) failDelete(p *Path, err error) {
	path := p.String()
	d.logger.Error("delete failed", "path", path, "error", err)

	s := d.state
	s.mu.Lock()
	if p.IsMedia() {
		delete(s.deletes, path)
	} else {
		e := s.entryLocked(path)
		s.albums[path] = AlbumEntry{Path: path, Status: DeleteErrored, Album: e.Album, ErrorMessage: err.Error()}
	}
	s.mu.Unlock()

	d.notifier.Notify(Notification{
		ID:       d.idgen.New(),
		Severity: SeverityError,
		Message:  fmt.Sprintf("Failed to delete [%s]: %s", path, err),
	})
}

// finishDelete clears the ephemeral media entry; for albums the entry itself
// is removed right after via RemoveFromMemoryAndDisk.
func (d *DeleteMachine) finishDelete(p *Path) {
	if !p.IsMedia() {
		return
	}
	s := d.state
	s.mu.Lock()
	delete(s.deletes, p.String())
	s.mu.Unlock()
}
