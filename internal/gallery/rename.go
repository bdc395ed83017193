package gallery

import "fmt"

// RenameMachine models renaming of day albums and media items. Renames
// require the affected album to be LOADED first: for a day album that is the
// album itself, for a media item its containing album.
//
// On success the old path is evicted and the parent reloaded, but the entry
// point has long since returned, and the UI is free to navigate away from the
// now-stale page immediately. The parent is a different key, so the
// background reload cannot race the caller's own transitions.
type RenameMachine struct {
	state    *GalleryState
	api      Client
	load     *LoadMachine
	session  Session
	notifier Notifier
	idgen    IDGenerator
	logger   Logger
}

// NewRenameMachine creates a RenameMachine over the shared state.
func NewRenameMachine(state *GalleryState, api Client, load *LoadMachine, session Session, notifier Notifier, idgen IDGenerator, logger Logger) *RenameMachine {
	return &RenameMachine{state: state, api: api, load: load, session: session, notifier: notifier, idgen: idgen, logger: logger}
}

// Rename renames the item at path to newName within its parent. newName is
// the new leaf only: "02-14" for a day album, "sunset.jpg" for media.
func (r *RenameMachine) Rename(path, newName string) error {
	p, err := ParsePath(path)
	if err != nil {
		return err
	}

	newPath, err := renamedPath(p, newName)
	if err != nil {
		return err
	}
	if !r.session.IsAdmin() {
		return ErrNotAuthorized
	}

	if err := r.beginRename(p, newPath); err != nil {
		return err
	}

	r.state.run(func() { r.renameAsync(p, newName, newPath) })
	return nil
}

// renamedPath computes and validates the post-rename path. Only day albums
// and media items are renamable; the new path must stay at the same level.
func renamedPath(p *Path, newName string) (string, error) {
	switch p.Kind() {
	case PathDay:
		newPath, err := ParsePath(p.Parent().String() + newName + "/")
		if err != nil {
			return "", fmt.Errorf("%w: new name %q", ErrInvalidPath, newName)
		}
		return newPath.String(), nil
	case PathMedia:
		newPath, err := ParsePath(p.Parent().String() + newName)
		if err != nil || !newPath.IsMedia() {
			return "", fmt.Errorf("%w: new name %q", ErrInvalidPath, newName)
		}
		return newPath.String(), nil
	default:
		return "", fmt.Errorf("%w: %q: only day albums and media can be renamed", ErrInvalidPath, p.String())
	}
}

// beginRename is the synchronous transition to RENAMING plus the ephemeral
// RenameEntry.
func (r *RenameMachine) beginRename(p *Path, newPath string) error {
	s := r.state
	s.mu.Lock()
	defer s.mu.Unlock()

	path := p.String()
	if p.IsMedia() {
		parent := s.entryLocked(p.Parent().String())
		if parent.Status != Loaded {
			return fmt.Errorf("%w: %q", ErrNotLoaded, p.Parent().String())
		}
	} else {
		e := s.entryLocked(path)
		if e.Status != Loaded {
			return fmt.Errorf("%w: %q", ErrNotLoaded, path)
		}
		s.albums[path] = AlbumEntry{Path: path, Status: Renaming, Album: e.Album}
	}
	s.renames[path] = RenameEntry{Path: path, NewPath: newPath}
	return nil
}

func (r *RenameMachine) renameAsync(p *Path, newName, newPath string) {
	path := p.String()

	if err := r.api.RenameItem(path, newName); err != nil {
		r.failRename(p, err)
		return
	}

	r.finishRename(p)

	// The old path no longer exists anywhere; its entry is destroyed and the
	// new path materializes through the load machine on the parent reload.
	if err := r.load.RemoveFromMemoryAndDisk(path); err != nil {
		r.logger.Warn("evicting renamed path failed", "path", path, "error", err)
	}
	r.load.refresh(p.Parent().String())

	r.notifier.Notify(Notification{
		ID:       r.idgen.New(),
		Severity: SeverityInfo,
		Message:  fmt.Sprintf("Renamed [%s] to [%s]", path, newPath),
	})
}

func (r *RenameMachine) failRename(p *Path, err error) {
	path := p.String()
	r.logger.Error("rename failed", "path", path, "error", err)

	s := r.state
	s.mu.Lock()
	delete(s.renames, path)
	if !p.IsMedia() {
		e := s.entryLocked(path)
		s.albums[path] = AlbumEntry{Path: path, Status: RenameErrored, Album: e.Album, ErrorMessage: err.Error()}
	}
	s.mu.Unlock()

	r.notifier.Notify(Notification{
		ID:       r.idgen.New(),
		Severity: SeverityError,
		Message:  fmt.Sprintf("Failed to rename [%s]: %s", path, err),
	})
}

func (r *RenameMachine) finishRename(p *Path) {
	s := r.state
	s.mu.Lock()
	delete(s.renames, p.String())
	s.mu.Unlock()
}
