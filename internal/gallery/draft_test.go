package gallery_test

import (
	"errors"
	"testing"

	"gallery-go/internal/gallery"
	"gallery-go/internal/testutil"
)

type draftFixture struct {
	api      *testutil.StubClient
	state    *gallery.GalleryState
	cache    gallery.DiskCache
	load     *gallery.LoadMachine
	notifier *testutil.RecorderNotifier
	draft    *gallery.DraftMachine
}

func newDraftFixture(records ...*gallery.Record) *draftFixture {
	api := testutil.NewStubClient(records...)
	state := gallery.NewGalleryState()
	cache := testutil.NewMemoryCache()
	load := gallery.NewLoadMachine(state, cache, api, gallery.NewNopLogger())
	notifier := testutil.NewRecorderNotifier()
	draft := gallery.NewDraftMachine(state, api, load, gallery.StaticSession(true), notifier, testutil.NewStubIDGenerator(), gallery.NewNopLogger())
	return &draftFixture{api: api, state: state, cache: cache, load: load, notifier: notifier, draft: draft}
}

func TestDraftMachine_SaveDraft(t *testing.T) {
	t.Run("patches album fields locally without a reload", func(t *testing.T) {
		f := newDraftFixture(testutil.AlbumRecord("/2024/01-31/"))
		f.load.Fetch("/2024/01-31/", false)
		f.state.Wait()
		getsBefore := len(f.api.GetCalls)

		fields := map[string]any{"title": "Ski trip", "summary": "Fresh powder", "published": true}
		if err := f.draft.SaveDraft("/2024/01-31/", fields); err != nil {
			t.Fatalf("SaveDraft() error = %v", err)
		}
		f.state.Wait()

		if len(f.api.PatchCalls) != 1 || f.api.PatchCalls[0].Path != "/2024/01-31/" {
			t.Fatalf("PatchCalls = %v, want one for the album", f.api.PatchCalls)
		}

		entry := f.state.AlbumEntry("/2024/01-31/")
		if entry.Status != gallery.Loaded {
			t.Fatalf("Status = %s, want LOADED", entry.Status)
		}
		if entry.Album.Title() != "Ski trip" {
			t.Errorf("Title() = %q, want the patched title", entry.Album.Title())
		}
		if entry.Album.Summary() != "Fresh powder" {
			t.Errorf("Summary() = %q, want the patched summary", entry.Album.Summary())
		}
		if !entry.Album.Published() {
			t.Error("Published() = false, want true")
		}

		// The accepted patch is applied locally, not refetched.
		if got := len(f.api.GetCalls); got != getsBefore {
			t.Errorf("GetCalls grew to %d, want no reload", got)
		}

		// And re-persisted to disk.
		rec, err := f.cache.Get("/2024/01-31/")
		if err != nil || rec == nil {
			t.Fatalf("cache.Get() = %v, %v, want the patched record", rec, err)
		}
		if rec.Title != "Ski trip" {
			t.Errorf("disk Title = %q, want the patched title", rec.Title)
		}
	})

	t.Run("patches a media child inside its album entry", func(t *testing.T) {
		f := newDraftFixture(testutil.AlbumRecord("/2024/01-31/",
			testutil.ImageRecord("/2024/01-31/a.jpg", "v1", 0, 0),
		))
		f.load.Fetch("/2024/01-31/", false)
		f.state.Wait()

		fields := map[string]any{"title": "Sunset", "tags": []any{"beach", "golden hour"}}
		if err := f.draft.SaveDraft("/2024/01-31/a.jpg", fields); err != nil {
			t.Fatalf("SaveDraft() error = %v", err)
		}
		f.state.Wait()

		if len(f.api.PatchCalls) != 1 || f.api.PatchCalls[0].Path != "/2024/01-31/a.jpg" {
			t.Fatalf("PatchCalls = %v, want one for the media item", f.api.PatchCalls)
		}

		entry := f.state.AlbumEntry("/2024/01-31/")
		m := entry.Album.MediaAt("/2024/01-31/a.jpg")
		if m == nil {
			t.Fatal("patched media missing from album")
		}
		if m.Title() != "Sunset" {
			t.Errorf("Title() = %q, want the patched title", m.Title())
		}
		tags := m.Tags()
		if len(tags) != 2 || tags[0] != "beach" || tags[1] != "golden hour" {
			t.Errorf("Tags() = %v, want the patched tags", tags)
		}
	})

	t.Run("media save is observable while the patch is in flight", func(t *testing.T) {
		f := newDraftFixture(testutil.AlbumRecord("/2024/01-31/",
			testutil.ImageRecord("/2024/01-31/a.jpg", "v1", 0, 0),
		))
		f.load.Fetch("/2024/01-31/", false)
		f.state.Wait()

		f.api.PatchGate = make(chan struct{}, 1)
		if err := f.draft.SaveDraft("/2024/01-31/a.jpg", map[string]any{"title": "Sunset"}); err != nil {
			t.Fatalf("SaveDraft() error = %v", err)
		}

		// The patch is held at the gate; the entry must already be visible.
		if e, ok := f.state.Save("/2024/01-31/a.jpg"); !ok || e.Path != "/2024/01-31/a.jpg" {
			t.Fatalf("Save() = %v, %v, want the in-flight entry", e, ok)
		}
		// The parent album keeps its own status untouched.
		if s := f.state.AlbumEntry("/2024/01-31/").Status; s != gallery.Loaded {
			t.Errorf("parent Status = %s, want LOADED", s)
		}

		f.api.PatchGate <- struct{}{}
		f.state.Wait()

		if _, ok := f.state.Save("/2024/01-31/a.jpg"); ok {
			t.Error("Save() entry survived completion, want it cleared")
		}
	})

	t.Run("media save failure clears the entry", func(t *testing.T) {
		f := newDraftFixture(testutil.AlbumRecord("/2024/01-31/",
			testutil.ImageRecord("/2024/01-31/a.jpg", "v1", 0, 0),
		))
		f.load.Fetch("/2024/01-31/", false)
		f.state.Wait()

		f.api.PatchErr = &gallery.ServerError{StatusCode: 422, Message: "bad field"}
		if err := f.draft.SaveDraft("/2024/01-31/a.jpg", map[string]any{"title": "x"}); err != nil {
			t.Fatalf("SaveDraft() error = %v", err)
		}
		f.state.Wait()

		if _, ok := f.state.Save("/2024/01-31/a.jpg"); ok {
			t.Error("Save() entry survived a failed patch, want it cleared")
		}
		notes := f.notifier.Notifications()
		if len(notes) != 1 || notes[0].Severity != gallery.SeverityError {
			t.Errorf("Notifications() = %v, want one error toast", notes)
		}
	})

	t.Run("requires the target album to be loaded", func(t *testing.T) {
		f := newDraftFixture()
		err := f.draft.SaveDraft("/2024/01-31/", map[string]any{"title": "x"})
		if !errors.Is(err, gallery.ErrNotLoaded) {
			t.Errorf("SaveDraft() error = %v, want ErrNotLoaded", err)
		}
	})

	t.Run("rejects empty field sets", func(t *testing.T) {
		f := newDraftFixture(testutil.AlbumRecord("/2024/01-31/"))
		f.load.Fetch("/2024/01-31/", false)
		f.state.Wait()

		if err := f.draft.SaveDraft("/2024/01-31/", nil); err == nil {
			t.Error("SaveDraft(nil fields) error = nil, want error")
		}
	})

	t.Run("server failure goes to SAVE_ERRORED keeping the album", func(t *testing.T) {
		f := newDraftFixture(testutil.AlbumRecord("/2024/01-31/"))
		f.load.Fetch("/2024/01-31/", false)
		f.state.Wait()

		f.api.PatchErr = &gallery.ServerError{StatusCode: 422, Message: "bad field"}
		if err := f.draft.SaveDraft("/2024/01-31/", map[string]any{"title": "x"}); err != nil {
			t.Fatalf("SaveDraft() error = %v", err)
		}
		f.state.Wait()

		entry := f.state.AlbumEntry("/2024/01-31/")
		if entry.Status != gallery.SaveErrored {
			t.Fatalf("Status = %s, want SAVE_ERRORED", entry.Status)
		}
		if entry.Album == nil {
			t.Error("Album dropped on failed save, want it kept visible")
		}
		notes := f.notifier.Notifications()
		if len(notes) != 1 || notes[0].Severity != gallery.SeverityError {
			t.Errorf("Notifications() = %v, want one error toast", notes)
		}
	})
}
