package gallery

import "fmt"

// CropMachine sets the thumbnail crop rectangle of a media item. The media
// record lives inside its containing album's record, so the follow-up reload
// targets the album.
type CropMachine struct {
	state    *GalleryState
	api      Client
	load     *LoadMachine
	session  Session
	notifier Notifier
	idgen    IDGenerator
	logger   Logger
}

// NewCropMachine creates a CropMachine over the shared state.
func NewCropMachine(state *GalleryState, api Client, load *LoadMachine, session Session, notifier Notifier, idgen IDGenerator, logger Logger) *CropMachine {
	return &CropMachine{state: state, api: api, load: load, session: session, notifier: notifier, idgen: idgen, logger: logger}
}

// SetCrop applies crop to the media item at mediaPath.
func (c *CropMachine) SetCrop(mediaPath string, crop Rect) error {
	p, err := ParsePath(mediaPath)
	if err != nil {
		return err
	}
	if !p.IsMedia() {
		return fmt.Errorf("%w: %q: crop applies to media only", ErrInvalidPath, mediaPath)
	}
	if crop.Width <= 0 || crop.Height <= 0 || crop.X < 0 || crop.Y < 0 {
		return fmt.Errorf("invalid crop rectangle %+v", crop)
	}
	if !c.session.IsAdmin() {
		return ErrNotAuthorized
	}

	c.beginCrop(mediaPath, crop)
	c.state.run(func() { c.cropAsync(p, crop) })
	return nil
}

func (c *CropMachine) beginCrop(path string, crop Rect) {
	s := c.state
	s.mu.Lock()
	s.crops[path] = CropEntry{Path: path, Crop: crop}
	s.mu.Unlock()
}

func (c *CropMachine) cropAsync(p *Path, crop Rect) {
	path := p.String()
	defer c.endCrop(path)

	if err := c.api.SetCrop(path, crop); err != nil {
		c.logger.Error("crop failed", "path", path, "error", err)
		c.notifier.Notify(Notification{
			ID:       c.idgen.New(),
			Severity: SeverityError,
			Message:  fmt.Sprintf("Failed to crop [%s]: %s", path, err),
		})
		return
	}

	c.load.refresh(p.Parent().String())
}

// endCrop removes the ephemeral entry; it never outlives the operation.
func (c *CropMachine) endCrop(path string) {
	s := c.state
	s.mu.Lock()
	delete(s.crops, path)
	s.mu.Unlock()
}
