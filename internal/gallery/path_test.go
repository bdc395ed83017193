package gallery_test

import (
	"errors"
	"testing"
	"time"

	"gallery-go/internal/gallery"
)

func TestParsePath(t *testing.T) {
	t.Run("parses the root path", func(t *testing.T) {
		p, err := gallery.ParsePath("/")
		if err != nil {
			t.Fatalf("ParsePath() error = %v", err)
		}
		if p.Kind() != gallery.PathRoot {
			t.Errorf("Kind() = %v, want PathRoot", p.Kind())
		}
		if !p.IsAlbum() || p.IsMedia() {
			t.Errorf("IsAlbum() = %v, IsMedia() = %v, want true, false", p.IsAlbum(), p.IsMedia())
		}
	})

	t.Run("parses a year path", func(t *testing.T) {
		p, err := gallery.ParsePath("/2024/")
		if err != nil {
			t.Fatalf("ParsePath() error = %v", err)
		}
		if p.Kind() != gallery.PathYear {
			t.Errorf("Kind() = %v, want PathYear", p.Kind())
		}
		if p.Year() != 2024 {
			t.Errorf("Year() = %d, want 2024", p.Year())
		}
		if p.Base() != "2024" {
			t.Errorf("Base() = %q, want %q", p.Base(), "2024")
		}
	})

	t.Run("parses a day path with its date", func(t *testing.T) {
		p, err := gallery.ParsePath("/2024/01-31/")
		if err != nil {
			t.Fatalf("ParsePath() error = %v", err)
		}
		if p.Kind() != gallery.PathDay {
			t.Errorf("Kind() = %v, want PathDay", p.Kind())
		}
		date, ok := p.Date()
		if !ok {
			t.Fatal("Date() ok = false, want true")
		}
		want := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
		if !date.Equal(want) {
			t.Errorf("Date() = %v, want %v", date, want)
		}
		if p.Base() != "01-31" {
			t.Errorf("Base() = %q, want %q", p.Base(), "01-31")
		}
	})

	t.Run("parses a media path", func(t *testing.T) {
		p, err := gallery.ParsePath("/2024/01-31/sunset.JPG")
		if err != nil {
			t.Fatalf("ParsePath() error = %v", err)
		}
		if p.Kind() != gallery.PathMedia {
			t.Errorf("Kind() = %v, want PathMedia", p.Kind())
		}
		if p.Base() != "sunset.JPG" {
			t.Errorf("Base() = %q, want %q", p.Base(), "sunset.JPG")
		}
		if p.Ext() != "jpg" {
			t.Errorf("Ext() = %q, want %q", p.Ext(), "jpg")
		}
	})

	t.Run("rejects paths outside the grammar", func(t *testing.T) {
		for _, raw := range []string{
			"",
			"2024/",
			"/2024",
			"/24/",
			"/2024/1-31/",
			"/2024/01-31",
			"/2024/01-31/sub/photo.jpg",
			"/2024/01-31/noextension",
			"/abcd/",
		} {
			if _, err := gallery.ParsePath(raw); !errors.Is(err, gallery.ErrInvalidPath) {
				t.Errorf("ParsePath(%q) error = %v, want ErrInvalidPath", raw, err)
			}
		}
	})

	t.Run("rejects impossible calendar dates", func(t *testing.T) {
		for _, raw := range []string{
			"/2024/02-30/",
			"/2023/02-29/",
			"/2024/13-01/",
			"/2024/00-10/",
			"/2024/02-30/photo.jpg",
		} {
			if _, err := gallery.ParsePath(raw); !errors.Is(err, gallery.ErrInvalidPath) {
				t.Errorf("ParsePath(%q) error = %v, want ErrInvalidPath", raw, err)
			}
		}
	})

	t.Run("accepts leap day on a leap year", func(t *testing.T) {
		if _, err := gallery.ParsePath("/2024/02-29/"); err != nil {
			t.Errorf("ParsePath(/2024/02-29/) error = %v", err)
		}
	})
}

func TestPath_Parent(t *testing.T) {
	cases := []struct {
		path   string
		parent string
	}{
		{"/2024/", "/"},
		{"/2024/01-31/", "/2024/"},
		{"/2024/01-31/photo.jpg", "/2024/01-31/"},
	}
	for _, tc := range cases {
		p, err := gallery.ParsePath(tc.path)
		if err != nil {
			t.Fatalf("ParsePath(%q) error = %v", tc.path, err)
		}
		if got := p.Parent().String(); got != tc.parent {
			t.Errorf("Parent(%q) = %q, want %q", tc.path, got, tc.parent)
		}
	}

	t.Run("root has no parent", func(t *testing.T) {
		p, _ := gallery.ParsePath("/")
		if p.Parent() != nil {
			t.Errorf("Parent(/) = %v, want nil", p.Parent())
		}
	})
}

func TestPath_WithExt(t *testing.T) {
	t.Run("replaces a media extension", func(t *testing.T) {
		p, _ := gallery.ParsePath("/2024/01-31/photo.jpg")
		rewritten, err := p.WithExt("heic")
		if err != nil {
			t.Fatalf("WithExt() error = %v", err)
		}
		if rewritten.String() != "/2024/01-31/photo.heic" {
			t.Errorf("WithExt() = %q, want %q", rewritten.String(), "/2024/01-31/photo.heic")
		}
	})

	t.Run("refuses album paths", func(t *testing.T) {
		p, _ := gallery.ParsePath("/2024/01-31/")
		if _, err := p.WithExt("jpg"); !errors.Is(err, gallery.ErrInvalidPath) {
			t.Errorf("WithExt() error = %v, want ErrInvalidPath", err)
		}
	})
}
