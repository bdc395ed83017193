package gallery

import "fmt"

// ThumbnailMachine sets which media item serves as an album's thumbnail.
// After the server accepts the change both the album and its parent are
// reloaded: the changed thumbnail may also be the parent's displayed
// thumbnail for this album.
type ThumbnailMachine struct {
	state    *GalleryState
	api      Client
	load     *LoadMachine
	session  Session
	notifier Notifier
	idgen    IDGenerator
	logger   Logger
}

// NewThumbnailMachine creates a ThumbnailMachine over the shared state.
func NewThumbnailMachine(state *GalleryState, api Client, load *LoadMachine, session Session, notifier Notifier, idgen IDGenerator, logger Logger) *ThumbnailMachine {
	return &ThumbnailMachine{state: state, api: api, load: load, session: session, notifier: notifier, idgen: idgen, logger: logger}
}

// SetAlbumThumbnail makes mediaPath the thumbnail of albumPath.
func (t *ThumbnailMachine) SetAlbumThumbnail(albumPath, mediaPath string) error {
	ap, err := parseAlbumPath(albumPath)
	if err != nil {
		return err
	}
	if ap.Kind() == PathRoot {
		return fmt.Errorf("%w: %q: root album has no thumbnail", ErrInvalidPath, albumPath)
	}
	mp, err := ParsePath(mediaPath)
	if err != nil {
		return err
	}
	if !mp.IsMedia() {
		return fmt.Errorf("%w: %q: thumbnail must be a media path", ErrInvalidPath, mediaPath)
	}
	if !t.session.IsAdmin() {
		return ErrNotAuthorized
	}

	t.state.run(func() { t.setAsync(ap, mp) })
	return nil
}

func (t *ThumbnailMachine) setAsync(ap, mp *Path) {
	albumPath := ap.String()

	if err := t.api.SetAlbumThumbnail(albumPath, mp.String()); err != nil {
		t.logger.Error("thumbnail set failed", "album", albumPath, "media", mp.String(), "error", err)
		t.notifier.Notify(Notification{
			ID:       t.idgen.New(),
			Severity: SeverityError,
			Message:  fmt.Sprintf("Failed to set thumbnail of [%s]: %s", albumPath, err),
		})
		return
	}

	t.load.refresh(albumPath)
	t.load.refresh(ap.Parent().String())
}
