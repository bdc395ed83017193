package gallery

import (
	"fmt"
	"strings"
	"time"
)

// Album is an immutable read view over an album Record. All derived fields
// (title, date, children, sibling navigation) are computed from the record;
// constructing an Album never mutates the record it wraps. "Mutation" of a
// cached album is always produce-a-new-Album-and-replace-the-entry.
type Album struct {
	rec  *Record
	path *Path
}

// NewAlbum maps an album Record to its domain object. The record must
// classify as an album and carry a valid album path.
func NewAlbum(rec *Record) (*Album, error) {
	kind, err := rec.Classify()
	if err != nil {
		return nil, err
	}
	if kind != ItemAlbum {
		return nil, fmt.Errorf("record at %q is %s, not an album", rec.Path, kind)
	}
	p, err := ParsePath(rec.Path)
	if err != nil {
		return nil, err
	}
	if !p.IsAlbum() {
		return nil, fmt.Errorf("%w: %q: media path on album record", ErrInvalidPath, rec.Path)
	}
	return &Album{rec: rec, path: p}, nil
}

// Record returns the underlying server record. Callers must treat it as
// read-only; use Record.Clone before modifying.
func (a *Album) Record() *Record { return a.rec }

// Path returns the canonical album path.
func (a *Album) Path() string { return a.rec.Path }

// ParsedPath returns the parsed path.
func (a *Album) ParsedPath() *Path { return a.path }

// Title returns the custom title when set, else the path's leaf name
// ("2024" for a year, "01-31" for a day, "/" for the root).
func (a *Album) Title() string {
	if a.rec.Title != "" {
		return a.rec.Title
	}
	return a.path.Base()
}

// Summary returns the album summary, possibly empty.
func (a *Album) Summary() string { return a.rec.Summary }

// Published reports whether the album is publicly visible.
func (a *Album) Published() bool { return a.rec.Published }

// Thumbnail returns the path of the media item used as this album's
// thumbnail, or "" when none is set.
func (a *Album) Thumbnail() string { return a.rec.Thumbnail }

// Date returns the album's calendar date. ok is false for root and year
// albums.
func (a *Album) Date() (time.Time, bool) { return a.path.Date() }

// NextPath returns the path of the next sibling album, or "" at the end.
func (a *Album) NextPath() string {
	if a.rec.Next == nil {
		return ""
	}
	return a.rec.Next.Path
}

// PrevPath returns the path of the previous sibling album, or "" at the
// start.
func (a *Album) PrevPath() string {
	if a.rec.Prev == nil {
		return ""
	}
	return a.rec.Prev.Path
}

// Albums returns the child albums in server order. Children that are media
// are skipped; a child with unrecognized discriminators is skipped rather
// than failing the whole album (it already passed mapping once server-side).
func (a *Album) Albums() []*Album {
	var out []*Album
	for i := range a.rec.Children {
		child := &a.rec.Children[i]
		kind, err := child.Classify()
		if err != nil || kind != ItemAlbum {
			continue
		}
		sub, err := NewAlbum(child)
		if err != nil {
			continue
		}
		out = append(out, sub)
	}
	return out
}

// Media returns the child media items in server order, each carrying a
// back-reference to this album for sibling navigation. The back-reference is
// non-owning: it exists only so next/prev can be computed positionally.
func (a *Album) Media() []*Media {
	var out []*Media
	for i := range a.rec.Children {
		child := &a.rec.Children[i]
		kind, err := child.Classify()
		if err != nil || kind == ItemAlbum {
			continue
		}
		m, err := newMedia(child, a, kind)
		if err != nil {
			continue
		}
		out = append(out, m)
	}
	return out
}

// MediaAt returns the child media item with the given path, or nil.
func (a *Album) MediaAt(path string) *Media {
	for _, m := range a.Media() {
		if m.Path() == path {
			return m
		}
	}
	return nil
}

// titleFromFilename derives a display title from a media file name by
// stripping the extension.
func titleFromFilename(name string) string {
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		return name[:i]
	}
	return name
}
