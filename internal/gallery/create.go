package gallery

import "fmt"

// CreateMachine models album creation. The public entry point validates and
// transitions synchronously; the server call and follow-up reloads run in
// the background.
type CreateMachine struct {
	state    *GalleryState
	api      Client
	load     *LoadMachine
	session  Session
	notifier Notifier
	idgen    IDGenerator
	logger   Logger
}

// NewCreateMachine creates a CreateMachine over the shared state.
func NewCreateMachine(state *GalleryState, api Client, load *LoadMachine, session Session, notifier Notifier, idgen IDGenerator, logger Logger) *CreateMachine {
	return &CreateMachine{state: state, api: api, load: load, session: session, notifier: notifier, idgen: idgen, logger: logger}
}

// Create creates the album at path. The path must be a year or day album
// path whose current status allows creation; a path that already holds (or
// is fetching) an album fails synchronously with ErrAlbumAlreadyExists;
// that is a caller bug, not a server failure.
func (c *CreateMachine) Create(path string) error {
	p, err := parseAlbumPath(path)
	if err != nil {
		return err
	}
	if p.Kind() == PathRoot {
		return fmt.Errorf("%w: %q: cannot create the root album", ErrInvalidPath, path)
	}
	if !c.session.IsAdmin() {
		return ErrNotAuthorized
	}

	if err := c.beginCreate(path); err != nil {
		return err
	}

	c.state.run(func() { c.createAsync(p) })
	return nil
}

// beginCreate is the synchronous transition to CREATING.
func (c *CreateMachine) beginCreate(path string) error {
	s := c.state
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entryLocked(path)
	if !e.Status.CanCreate() {
		return fmt.Errorf("%w: %q (status %s)", ErrAlbumAlreadyExists, path, e.Status)
	}
	s.albums[path] = AlbumEntry{Path: path, Status: Creating}
	return nil
}

func (c *CreateMachine) createAsync(p *Path) {
	path := p.String()

	if err := c.api.CreateAlbum(path); err != nil {
		c.failCreate(path, err)
		return
	}

	c.notifier.Notify(Notification{
		ID:       c.idgen.New(),
		Severity: SeverityInfo,
		Message:  fmt.Sprintf("Album [%s] created", path),
	})

	// Hand the path back to the load machine, then reload the new album
	// and its parent so both child lists reflect the creation.
	c.resetEntry(path)
	c.load.refresh(path)
	c.load.refresh(p.Parent().String())
}

// failCreate transitions to CREATE_ERRORED and notifies. The errored state
// remains retryable.
func (c *CreateMachine) failCreate(path string, err error) {
	c.logger.Error("album create failed", "path", path, "error", err)

	s := c.state
	s.mu.Lock()
	s.albums[path] = AlbumEntry{Path: path, Status: CreateErrored, ErrorMessage: err.Error()}
	s.mu.Unlock()

	c.notifier.Notify(Notification{
		ID:       c.idgen.New(),
		Severity: SeverityError,
		Message:  fmt.Sprintf("Failed to create album [%s]: %s", path, err),
	})
}

// resetEntry drops the CREATING entry so the follow-up fetch starts clean.
func (c *CreateMachine) resetEntry(path string) {
	s := c.state
	s.mu.Lock()
	delete(s.albums, path)
	s.mu.Unlock()
}
