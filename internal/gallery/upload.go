package gallery

import (
	"bytes"
	"fmt"
	"image"
	"strings"
	"sync"
	"time"

	// Registered decoders for the upload check-load. Formats the platform
	// cannot decode (HEIC, video) are exempt and trusted to the server.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// UploadPolicy tunes the post-upload polling loop. Videos get a much larger
// attempt budget than images; transcoding is slow.
type UploadPolicy struct {
	PollInterval  time.Duration
	ImageAttempts int
	VideoAttempts int
}

// DefaultUploadPolicy bounds image processing at roughly 15 seconds and
// video at roughly 180 seconds.
func DefaultUploadPolicy() UploadPolicy {
	return UploadPolicy{
		PollInterval:  3 * time.Second,
		ImageAttempts: 5,
		VideoAttempts: 60,
	}
}

// UploadFile is one file in an upload batch: the source file name, the
// destination media path, and the content bytes.
type UploadFile struct {
	Name    string
	Path    string
	Content []byte
}

var (
	imageExts = map[string]bool{
		"jpg": true, "jpeg": true, "png": true, "gif": true,
		"heic": true, "heif": true,
	}
	videoExts = map[string]bool{
		"mp4": true, "mov": true, "avi": true,
	}

	// decodeExempt lists formats the platform image decoder cannot load;
	// their content check is skipped and left to the server.
	decodeExempt = map[string]bool{
		"heic": true, "heif": true,
		"mp4": true, "mov": true, "avi": true,
	}

	// reencodedExts lists formats the server may re-encode, storing the item
	// under a rewritten extension with a server-assigned version token.
	reencodedExts = map[string]bool{
		"heic": true, "heif": true,
	}

	uploadContentTypes = map[string]string{
		"jpg": "image/jpeg", "jpeg": "image/jpeg",
		"png": "image/png", "gif": "image/gif",
		"heic": "image/heic", "heif": "image/heif",
		"mp4": "video/mp4", "mov": "video/quicktime", "avi": "video/x-msvideo",
	}
)

// UploadMachine uploads batches of media files: per-file validation,
// presigned URL request, parallel direct-to-storage PUTs, then a bounded
// polling loop against the parent album until the server has processed every
// item. Failures are isolated per item; one bad file never aborts its
// siblings. An exhausted polling budget forcibly clears the remaining
// entries so no path is ever left stuck in-progress.
type UploadMachine struct {
	state    *GalleryState
	api      Client
	uploader Uploader
	load     *LoadMachine
	session  Session
	notifier Notifier
	idgen    IDGenerator
	clock    Clock
	logger   Logger
	policy   UploadPolicy
}

// NewUploadMachine creates an UploadMachine over the shared state.
func NewUploadMachine(state *GalleryState, api Client, uploader Uploader, load *LoadMachine, session Session, notifier Notifier, idgen IDGenerator, clock Clock, logger Logger, policy UploadPolicy) *UploadMachine {
	return &UploadMachine{
		state: state, api: api, uploader: uploader, load: load,
		session: session, notifier: notifier, idgen: idgen,
		clock: clock, logger: logger, policy: policy,
	}
}

// Upload uploads a batch of files into the day album at albumPath. Files
// that fail validation are skipped with a per-file notification and the rest
// of the batch proceeds. The call returns after the synchronous validation
// and transitions; upload and polling run in the background.
func (u *UploadMachine) Upload(albumPath string, files []UploadFile) error {
	ap, err := parseAlbumPath(albumPath)
	if err != nil {
		return err
	}
	if ap.Kind() != PathDay {
		return fmt.Errorf("%w: %q: uploads go into day albums", ErrInvalidPath, albumPath)
	}
	if !u.session.IsAdmin() {
		return ErrNotAuthorized
	}

	accepted := u.filterBatch(ap, files)
	if len(accepted) == 0 {
		return nil
	}

	u.beginUploads(albumPath, accepted)
	u.state.run(func() { u.uploadAsync(albumPath, accepted) })
	return nil
}

// filterBatch validates each file, reporting skips without aborting the
// batch.
func (u *UploadMachine) filterBatch(ap *Path, files []UploadFile) []UploadFile {
	var accepted []UploadFile
	for _, f := range files {
		if reason := u.validateFile(ap, f); reason != "" {
			u.notifier.Notify(Notification{
				ID:       u.idgen.New(),
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("Skipped [%s]: %s", f.Name, reason),
			})
			continue
		}
		accepted = append(accepted, f)
	}
	return accepted
}

// validateFile returns a human-readable skip reason, or "" if the file is
// acceptable.
func (u *UploadMachine) validateFile(ap *Path, f UploadFile) string {
	p, err := ParsePath(f.Path)
	if err != nil || !p.IsMedia() {
		return fmt.Sprintf("invalid destination path %q", f.Path)
	}
	if p.Parent().String() != ap.String() {
		return fmt.Sprintf("destination %q is outside album %q", f.Path, ap.String())
	}

	ext := extOf(f.Name)
	if !imageExts[ext] && !videoExts[ext] {
		return fmt.Sprintf("unsupported file type %q", ext)
	}
	if len(f.Content) == 0 {
		return "empty file"
	}

	// Check-load raster content through the platform decoder so corrupt
	// files fail fast instead of after a round trip.
	if !decodeExempt[ext] {
		if _, _, err := image.DecodeConfig(bytes.NewReader(f.Content)); err != nil {
			return fmt.Sprintf("not a loadable image: %s", err)
		}
	}
	return ""
}

// beginUploads is the synchronous transition: one ephemeral UploadEntry per
// surviving file, capturing the pre-replacement version token when the
// destination already exists in the loaded album.
func (u *UploadMachine) beginUploads(albumPath string, files []UploadFile) {
	s := u.state
	s.mu.Lock()
	defer s.mu.Unlock()

	parent := s.entryLocked(albumPath)
	for _, f := range files {
		prev := ""
		if parent.Album != nil {
			if m := parent.Album.MediaAt(f.Path); m != nil {
				prev = m.VersionID()
			}
		}
		s.uploads[f.Path] = UploadEntry{Path: f.Path, FileName: f.Name, PreviousVersionID: prev}
	}
}

func (u *UploadMachine) uploadAsync(albumPath string, files []UploadFile) {
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}

	urls, err := u.api.PresignUploads(albumPath, paths)
	if err != nil {
		u.logger.Error("presign request failed", "album", albumPath, "error", err)
		for _, f := range files {
			u.clearUpload(f.Path)
		}
		u.notifier.Notify(Notification{
			ID:       u.idgen.New(),
			Severity: SeverityError,
			Message:  fmt.Sprintf("Upload to [%s] failed: %s", albumPath, err),
		})
		return
	}

	pending := u.putAll(files, urls)
	u.pollUntilProcessed(albumPath, pending)
}

// pendingUpload tracks one item through the polling loop.
type pendingUpload struct {
	file         UploadFile
	attemptsLeft int
}

// putAll PUTs every file to its presigned URL in parallel and returns the
// items that now await server-side processing.
func (u *UploadMachine) putAll(files []UploadFile, urls map[string]string) []*pendingUpload {
	var (
		mu      sync.Mutex
		pending []*pendingUpload
		wg      sync.WaitGroup
	)

	for _, f := range files {
		url, ok := urls[f.Path]
		if !ok {
			u.clearUpload(f.Path)
			u.notifier.Notify(Notification{
				ID:       u.idgen.New(),
				Severity: SeverityError,
				Message:  fmt.Sprintf("Upload failed [%s]: no upload URL issued", f.Name),
			})
			continue
		}

		wg.Add(1)
		go func(f UploadFile, url string) {
			defer wg.Done()

			ext := extOf(f.Name)
			versionID, err := u.uploader.Upload(url, uploadContentTypes[ext], bytes.NewReader(f.Content), int64(len(f.Content)))
			if err != nil {
				u.logger.Error("storage upload failed", "path", f.Path, "error", err)
				u.clearUpload(f.Path)
				u.notifier.Notify(Notification{
					ID:       u.idgen.New(),
					Severity: SeverityError,
					Message:  fmt.Sprintf("Upload failed [%s]: %s", f.Name, err),
				})
				return
			}

			u.markUploaded(f.Path, versionID)

			attempts := u.policy.ImageAttempts
			if videoExts[ext] {
				attempts = u.policy.VideoAttempts
			}
			mu.Lock()
			pending = append(pending, &pendingUpload{file: f, attemptsLeft: attempts})
			mu.Unlock()
		}(f, url)
	}

	wg.Wait()
	return pending
}

// pollUntilProcessed reloads the parent album until every pending item shows
// up processed, shrinking the pending set as items complete. Items whose
// attempt budget runs out are forcibly cleared, so the operation never hangs.
func (u *UploadMachine) pollUntilProcessed(albumPath string, pending []*pendingUpload) {
	for len(pending) > 0 {
		u.clock.Sleep(u.policy.PollInterval)
		u.load.refresh(albumPath)

		entry := u.state.AlbumEntry(albumPath)

		var remaining []*pendingUpload
		for _, item := range pending {
			if entry.Status == Loaded && u.itemProcessed(entry.Album, item.file) {
				u.clearUpload(item.file.Path)
				u.notifier.Notify(Notification{
					ID:       u.idgen.New(),
					Severity: SeverityInfo,
					Message:  fmt.Sprintf("Uploaded [%s]", item.file.Name),
				})
				continue
			}

			item.attemptsLeft--
			if item.attemptsLeft <= 0 {
				u.clearUpload(item.file.Path)
				u.notifier.Notify(Notification{
					ID:       u.idgen.New(),
					Severity: SeverityWarning,
					Message:  fmt.Sprintf("[%s] is still processing; refresh later", item.file.Name),
				})
				continue
			}
			remaining = append(remaining, item)
		}
		pending = remaining
	}
}

// itemProcessed decides whether the server has finished processing one
// uploaded item, from the freshly reloaded album.
//
// The item may materialize under a rewritten extension when the upload's
// extension differs from the destination's (e.g. HEIC replacing JPG) or when
// the server re-encodes the format. For a plain upload the version token at
// the destination must equal the token the PUT returned; for a re-encoded
// format presence under the rewritten extension is enough. A replacement is
// complete only when the token at the rewritten path differs from the token
// the old content had: an unchanged token means the server hasn't processed
// the replacement yet, even if a record already exists there.
func (u *UploadMachine) itemProcessed(album *Album, f UploadFile) bool {
	e, ok := u.state.Upload(f.Path)
	if !ok {
		return true // already cleared elsewhere
	}

	destPath, err := ParsePath(f.Path)
	if err != nil {
		return true
	}
	uploadExt := extOf(f.Name)

	target := destPath
	if uploadExt != destPath.Ext() {
		if rewritten, err := destPath.WithExt(uploadExt); err == nil {
			target = rewritten
		}
	}

	child := album.MediaAt(target.String())
	if child == nil {
		return false
	}

	if e.PreviousVersionID != "" {
		return child.VersionID() != e.PreviousVersionID
	}
	if reencodedExts[uploadExt] {
		return true
	}
	return child.VersionID() == e.VersionID
}

// markUploaded records the PUT's version token on the ephemeral entry.
func (u *UploadMachine) markUploaded(path, versionID string) {
	s := u.state
	s.mu.Lock()
	if e, ok := s.uploads[path]; ok {
		e.VersionID = versionID
		e.Uploaded = true
		s.uploads[path] = e
	}
	s.mu.Unlock()
}

// clearUpload removes the ephemeral entry for one item.
func (u *UploadMachine) clearUpload(path string) {
	s := u.state
	s.mu.Lock()
	delete(s.uploads, path)
	s.mu.Unlock()
}

// extOf returns the lowercased extension of a file name, without the dot.
func extOf(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return strings.ToLower(name[i+1:])
	}
	return ""
}
