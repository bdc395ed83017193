package app

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"gallery-go/internal/api"
	"gallery-go/internal/cache"
	"gallery-go/internal/config"
	"gallery-go/internal/encryption"
	"gallery-go/internal/gallery"
)

// GalleryApp is the application context: every machine and store,
// constructed once at startup and passed to whatever needs it. There is no
// hidden package-level state; single-instance-per-process semantics come
// from building exactly one GalleryApp.
type GalleryApp struct {
	cfg     *config.Config
	state   *gallery.GalleryState
	cache   gallery.DiskCache
	tokens  *api.TokenStore
	logFile *os.File

	Load      *gallery.LoadMachine
	Create    *gallery.CreateMachine
	Delete    *gallery.DeleteMachine
	Rename    *gallery.RenameMachine
	Thumbnail *gallery.ThumbnailMachine
	Crop      *gallery.CropMachine
	Draft     *gallery.DraftMachine
	Upload    *gallery.UploadMachine
	Search    *gallery.SearchMachine
}

// NewGalleryApp creates a fully wired GalleryApp from the given config.
// operation identifies the CLI command being run (e.g. "Fetch", "Upload").
// The caller must call Close when done.
func NewGalleryApp(cfg *config.Config, operation string) (*GalleryApp, error) {
	if cfg.ServerURL == "" {
		return nil, fmt.Errorf("no server_url configured")
	}

	codec, err := encryption.NewCodecFromConfig(cfg.Encryption)
	if err != nil {
		return nil, fmt.Errorf("creating cache codec: %w", err)
	}

	diskCache, err := cache.NewCacheFromConfig(cfg.Cache, codec)
	if err != nil {
		return nil, fmt.Errorf("creating disk cache: %w", err)
	}

	tokens, err := api.NewTokenStore(filepath.Join(cfg.BaseDir, "session.json"))
	if err != nil {
		closeCache(diskCache)
		return nil, fmt.Errorf("loading session: %w", err)
	}

	opID := fmt.Sprintf("%s-%s", operation, time.Now().UTC().Format("20060102T150405Z"))
	slogger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		closeCache(diskCache)
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}

	client := api.NewHTTPClient(cfg.ServerURL, tokens, logger)
	uploader := api.NewStorageUploader()
	notifier := NewTerminalNotifier(os.Stdout)
	idgen := gallery.UUIDGenerator{}
	clock := gallery.RealClock{}

	state := gallery.NewGalleryState()
	load := gallery.NewLoadMachine(state, diskCache, client, logger)

	a := &GalleryApp{
		cfg:     cfg,
		state:   state,
		cache:   diskCache,
		tokens:  tokens,
		logFile: logFile,

		Load:      load,
		Create:    gallery.NewCreateMachine(state, client, load, tokens, notifier, idgen, logger),
		Delete:    gallery.NewDeleteMachine(state, client, load, tokens, notifier, idgen, logger),
		Rename:    gallery.NewRenameMachine(state, client, load, tokens, notifier, idgen, logger),
		Thumbnail: gallery.NewThumbnailMachine(state, client, load, tokens, notifier, idgen, logger),
		Crop:      gallery.NewCropMachine(state, client, load, tokens, notifier, idgen, logger),
		Draft:     gallery.NewDraftMachine(state, client, load, tokens, notifier, idgen, logger),
		Upload:    gallery.NewUploadMachine(state, client, uploader, load, tokens, notifier, idgen, clock, logger, uploadPolicy(cfg.Upload)),
		Search:    gallery.NewSearchMachine(client, cfg.Search.PageSize, logger),
	}
	return a, nil
}

// uploadPolicy builds the polling policy from config, falling back to the
// defaults for unset values.
func uploadPolicy(cfg config.UploadConfig) gallery.UploadPolicy {
	p := gallery.DefaultUploadPolicy()
	if cfg.PollIntervalSeconds > 0 {
		p.PollInterval = time.Duration(cfg.PollIntervalSeconds) * time.Second
	}
	if cfg.ImageAttempts > 0 {
		p.ImageAttempts = cfg.ImageAttempts
	}
	if cfg.VideoAttempts > 0 {
		p.VideoAttempts = cfg.VideoAttempts
	}
	return p
}

// State exposes the shared status maps for read-side inspection.
func (a *GalleryApp) State() *gallery.GalleryState { return a.state }

// Tokens exposes the session token store (login/logout).
func (a *GalleryApp) Tokens() *api.TokenStore { return a.tokens }

// HTTP returns a plain HTTP client for auth endpoints.
func (a *GalleryApp) HTTP() *http.Client { return &http.Client{} }

// ServerURL returns the configured server URL.
func (a *GalleryApp) ServerURL() string { return a.cfg.ServerURL }

// PurgeCache wipes the persistent cache tier. Memory state is untouched;
// a purge is for reclaiming disk or discarding another account's data.
func (a *GalleryApp) PurgeCache() error {
	if purger, ok := a.cache.(interface{ Purge() error }); ok {
		return purger.Purge()
	}
	return fmt.Errorf("cache backend does not support purge")
}

// Wait blocks until all fire-and-forget routines started by the machines
// have finished. The CLI calls it before exiting so background reloads and
// upload polls complete.
func (a *GalleryApp) Wait() { a.state.Wait() }

// Close waits for background work and releases resources.
func (a *GalleryApp) Close() error {
	a.state.Wait()

	var firstErr error
	if err := closeCache(a.cache); err != nil {
		firstErr = fmt.Errorf("closing cache: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}

// closeCache closes the cache when the implementation holds resources.
func closeCache(c gallery.DiskCache) error {
	if closer, ok := c.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
