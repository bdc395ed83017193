package gallery_test

import (
	"errors"
	"testing"
	"time"

	"gallery-go/internal/gallery"
	"gallery-go/internal/testutil"
)

func newLoadMachine(api gallery.Client) (*gallery.GalleryState, gallery.DiskCache, *gallery.LoadMachine) {
	state := gallery.NewGalleryState()
	cache := testutil.NewMemoryCache()
	load := gallery.NewLoadMachine(state, cache, api, gallery.NewNopLogger())
	return state, cache, load
}

func TestLoadMachine_Fetch(t *testing.T) {
	t.Run("cold fetch loads from the network and writes through to disk", func(t *testing.T) {
		api := testutil.NewStubClient(testutil.AlbumRecord("/2024/01-31/",
			testutil.ImageRecord("/2024/01-31/a.jpg", "v1", 4000, 3000),
		))
		state, cache, load := newLoadMachine(api)

		if err := load.Fetch("/2024/01-31/", false); err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		state.Wait()

		entry := state.AlbumEntry("/2024/01-31/")
		if entry.Status != gallery.Loaded {
			t.Fatalf("Status = %s, want LOADED", entry.Status)
		}
		if len(entry.Album.Media()) != 1 {
			t.Errorf("len(Media()) = %d, want 1", len(entry.Album.Media()))
		}

		rec, err := cache.Get("/2024/01-31/")
		if err != nil {
			t.Fatalf("cache.Get() error = %v", err)
		}
		if rec == nil {
			t.Error("cache.Get() = nil, want the fetched record written through")
		}
	})

	t.Run("rejects invalid and media paths synchronously", func(t *testing.T) {
		api := testutil.NewStubClient()
		_, _, load := newLoadMachine(api)

		if err := load.Fetch("not-a-path", false); !errors.Is(err, gallery.ErrInvalidPath) {
			t.Errorf("Fetch(invalid) error = %v, want ErrInvalidPath", err)
		}
		if err := load.Fetch("/2024/01-31/photo.jpg", false); !errors.Is(err, gallery.ErrInvalidPath) {
			t.Errorf("Fetch(media path) error = %v, want ErrInvalidPath", err)
		}
		if len(api.GetCalls) != 0 {
			t.Errorf("GetCalls = %v, want none", api.GetCalls)
		}
	})

	t.Run("disk hit shows provisional data but the network still runs", func(t *testing.T) {
		api := testutil.NewStubClient(testutil.AlbumRecord("/2024/01-31/",
			testutil.ImageRecord("/2024/01-31/fresh.jpg", "v2", 0, 0),
		))
		state, cache, load := newLoadMachine(api)

		stale := testutil.AlbumRecord("/2024/01-31/",
			testutil.ImageRecord("/2024/01-31/stale.jpg", "v1", 0, 0),
		)
		if err := cache.Set("/2024/01-31/", stale); err != nil {
			t.Fatalf("cache.Set() error = %v", err)
		}

		if err := load.Fetch("/2024/01-31/", false); err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		state.Wait()

		entry := state.AlbumEntry("/2024/01-31/")
		if entry.Status != gallery.Loaded {
			t.Fatalf("Status = %s, want LOADED", entry.Status)
		}
		// The network answer is authoritative over the disk copy.
		if entry.Album.MediaAt("/2024/01-31/fresh.jpg") == nil {
			t.Error("entry shows the stale disk copy, want the network result")
		}
		if got := len(api.GetCalls); got != 1 {
			t.Errorf("GetCalls = %d, want 1", got)
		}
	})

	t.Run("concurrent fetches for one path de-duplicate to one network call", func(t *testing.T) {
		api := testutil.NewStubClient(testutil.AlbumRecord("/2024/01-31/"))
		api.GetGate = make(chan struct{}, 1)
		state, _, load := newLoadMachine(api)

		if err := load.Fetch("/2024/01-31/", false); err != nil {
			t.Fatalf("first Fetch() error = %v", err)
		}
		// The first fetch is now in flight (LOADING); a second is a no-op.
		if err := load.Fetch("/2024/01-31/", false); err != nil {
			t.Fatalf("second Fetch() error = %v", err)
		}
		if err := load.Fetch("/2024/01-31/", true); err != nil {
			t.Fatalf("third Fetch() error = %v", err)
		}

		api.GetGate <- struct{}{}
		state.Wait()

		if got := len(api.GetCalls); got != 1 {
			t.Errorf("GetCalls = %d, want 1", got)
		}
		if s := state.AlbumEntry("/2024/01-31/").Status; s != gallery.Loaded {
			t.Errorf("Status = %s, want LOADED", s)
		}
	})

	t.Run("fetch during a cold fetch's network leg does not double the call", func(t *testing.T) {
		api := testutil.NewStubClient(testutil.AlbumRecord("/2024/01-31/",
			testutil.ImageRecord("/2024/01-31/fresh.jpg", "v2", 0, 0),
		))
		api.GetGate = make(chan struct{}, 1)
		state, cache, load := newLoadMachine(api)

		stale := testutil.AlbumRecord("/2024/01-31/",
			testutil.ImageRecord("/2024/01-31/stale.jpg", "v1", 0, 0),
		)
		if err := cache.Set("/2024/01-31/", stale); err != nil {
			t.Fatalf("cache.Set() error = %v", err)
		}

		if err := load.Fetch("/2024/01-31/", false); err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}

		// Wait for the disk hit to promote the entry; the network leg of the
		// same fetch is still held at the gate.
		deadline := time.Now().Add(time.Second)
		for state.AlbumEntry("/2024/01-31/").Status != gallery.Loaded {
			if time.Now().After(deadline) {
				t.Fatal("disk copy never promoted to LOADED")
			}
			time.Sleep(time.Millisecond)
		}
		if r := state.Reload("/2024/01-31/"); r != gallery.Reloading {
			t.Fatalf("Reload() = %s, want RELOADING while the network leg is pending", r)
		}

		// A refetch now must not start a second network call.
		if err := load.Fetch("/2024/01-31/", true); err != nil {
			t.Fatalf("refetch error = %v", err)
		}

		api.GetGate <- struct{}{}
		state.Wait()

		if got := len(api.GetCalls); got != 1 {
			t.Errorf("GetCalls = %d, want 1", got)
		}
		entry := state.AlbumEntry("/2024/01-31/")
		if entry.Album == nil || entry.Album.MediaAt("/2024/01-31/fresh.jpg") == nil {
			t.Error("entry shows the stale disk copy, want the network result")
		}
		if r := state.Reload("/2024/01-31/"); r != gallery.NotReloading {
			t.Errorf("Reload() = %s, want NOT_RELOADING after the leg finished", r)
		}
	})

	t.Run("network failure without prior data goes to LOAD_ERRORED", func(t *testing.T) {
		api := testutil.NewStubClient()
		api.GetErr = &gallery.ServerError{StatusCode: 500, Message: "boom"}
		state, _, load := newLoadMachine(api)

		if err := load.Fetch("/2024/01-31/", false); err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		state.Wait()

		entry := state.AlbumEntry("/2024/01-31/")
		if entry.Status != gallery.LoadErrored {
			t.Fatalf("Status = %s, want LOAD_ERRORED", entry.Status)
		}
		if entry.ErrorMessage == "" {
			t.Error("ErrorMessage is empty, want the failure preserved for retry")
		}
	})

	t.Run("failed refresh keeps stale data visible", func(t *testing.T) {
		api := testutil.NewStubClient(testutil.AlbumRecord("/2024/01-31/",
			testutil.ImageRecord("/2024/01-31/a.jpg", "v1", 0, 0),
		))
		state, _, load := newLoadMachine(api)

		if err := load.Fetch("/2024/01-31/", false); err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		state.Wait()

		api.GetErr = &gallery.ServerError{StatusCode: 502}
		if err := load.Fetch("/2024/01-31/", true); err != nil {
			t.Fatalf("refetch error = %v", err)
		}
		state.Wait()

		entry := state.AlbumEntry("/2024/01-31/")
		if entry.Status != gallery.Loaded {
			t.Errorf("Status = %s, want LOADED (stale preferred over error)", entry.Status)
		}
		if entry.Album == nil || entry.Album.MediaAt("/2024/01-31/a.jpg") == nil {
			t.Error("stale album data was dropped")
		}
		if r := state.Reload("/2024/01-31/"); r != gallery.ErrorReloading {
			t.Errorf("Reload() = %s, want ERROR_RELOADING", r)
		}
	})

	t.Run("successful refresh clears the reload marker", func(t *testing.T) {
		api := testutil.NewStubClient(testutil.AlbumRecord("/2024/01-31/"))
		state, _, load := newLoadMachine(api)

		load.Fetch("/2024/01-31/", false)
		state.Wait()
		load.Fetch("/2024/01-31/", true)
		state.Wait()

		if r := state.Reload("/2024/01-31/"); r != gallery.NotReloading {
			t.Errorf("Reload() = %s, want NOT_RELOADING", r)
		}
		if got := len(api.GetCalls); got != 2 {
			t.Errorf("GetCalls = %d, want 2", got)
		}
	})

	t.Run("refetch false on a loaded path is a no-op", func(t *testing.T) {
		api := testutil.NewStubClient(testutil.AlbumRecord("/2024/01-31/"))
		state, _, load := newLoadMachine(api)

		load.Fetch("/2024/01-31/", false)
		state.Wait()
		load.Fetch("/2024/01-31/", false)
		state.Wait()

		if got := len(api.GetCalls); got != 1 {
			t.Errorf("GetCalls = %d, want 1", got)
		}
	})

	t.Run("404 sets DOES_NOT_EXIST and evicts the disk copy", func(t *testing.T) {
		api := testutil.NewStubClient()
		state, cache, load := newLoadMachine(api)

		// A disk copy left behind by a since-deleted album.
		if err := cache.Set("/2024/01-31/", testutil.AlbumRecord("/2024/01-31/")); err != nil {
			t.Fatalf("cache.Set() error = %v", err)
		}

		load.Fetch("/2024/01-31/", false)
		state.Wait()

		if s := state.AlbumEntry("/2024/01-31/").Status; s != gallery.DoesNotExist {
			t.Fatalf("Status = %s, want DOES_NOT_EXIST", s)
		}
		rec, _ := cache.Get("/2024/01-31/")
		if rec != nil {
			t.Error("disk copy survived a 404, want eviction")
		}
	})
}

func TestLoadMachine_AlbumExists(t *testing.T) {
	t.Run("memory answers first", func(t *testing.T) {
		api := testutil.NewStubClient(testutil.AlbumRecord("/2024/01-31/"))
		state, _, load := newLoadMachine(api)

		load.Fetch("/2024/01-31/", false)
		state.Wait()
		api.GetErr = errors.New("network down")

		ok, err := load.AlbumExists("/2024/01-31/")
		if err != nil || !ok {
			t.Errorf("AlbumExists() = %v, %v, want true, nil", ok, err)
		}
		if len(api.ExistsCalls) != 0 {
			t.Errorf("ExistsCalls = %v, want none", api.ExistsCalls)
		}
	})

	t.Run("DOES_NOT_EXIST answers no without network", func(t *testing.T) {
		api := testutil.NewStubClient()
		state, _, load := newLoadMachine(api)

		load.Fetch("/2024/01-31/", false)
		state.Wait()

		ok, err := load.AlbumExists("/2024/01-31/")
		if err != nil || ok {
			t.Errorf("AlbumExists() = %v, %v, want false, nil", ok, err)
		}
		if len(api.ExistsCalls) != 0 {
			t.Errorf("ExistsCalls = %v, want none", api.ExistsCalls)
		}
	})

	t.Run("disk answers second", func(t *testing.T) {
		api := testutil.NewStubClient()
		_, cache, load := newLoadMachine(api)

		cache.Set("/2024/01-31/", testutil.AlbumRecord("/2024/01-31/"))

		ok, err := load.AlbumExists("/2024/01-31/")
		if err != nil || !ok {
			t.Errorf("AlbumExists() = %v, %v, want true, nil", ok, err)
		}
		if len(api.ExistsCalls) != 0 {
			t.Errorf("ExistsCalls = %v, want none", api.ExistsCalls)
		}
	})

	t.Run("falls through to a network HEAD", func(t *testing.T) {
		api := testutil.NewStubClient(testutil.AlbumRecord("/2024/01-31/"))
		_, _, load := newLoadMachine(api)

		ok, err := load.AlbumExists("/2024/01-31/")
		if err != nil || !ok {
			t.Errorf("AlbumExists() = %v, %v, want true, nil", ok, err)
		}
		if len(api.ExistsCalls) != 1 {
			t.Errorf("ExistsCalls = %v, want one HEAD", api.ExistsCalls)
		}
	})
}

func TestLoadMachine_RemoveFromMemoryAndDisk(t *testing.T) {
	api := testutil.NewStubClient(testutil.AlbumRecord("/2024/01-31/"))
	state, cache, load := newLoadMachine(api)

	load.Fetch("/2024/01-31/", false)
	state.Wait()

	if err := load.RemoveFromMemoryAndDisk("/2024/01-31/"); err != nil {
		t.Fatalf("RemoveFromMemoryAndDisk() error = %v", err)
	}

	if s := state.AlbumEntry("/2024/01-31/").Status; s != gallery.NotLoaded {
		t.Errorf("Status after eviction = %s, want NOT_LOADED", s)
	}
	rec, _ := cache.Get("/2024/01-31/")
	if rec != nil {
		t.Error("disk copy survived eviction")
	}
}
