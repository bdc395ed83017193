package gallery

import (
	"fmt"
	"math"
	"time"
)

// detailMaxSide is the longer-side size of the detail view image (and video
// poster). Content already at or below this is never upscaled.
const detailMaxSide = 1024

// Media is an immutable read view over an image or video Record, plus a
// non-owning back-reference to the containing Album used only to compute
// positional sibling navigation. A Media constructed from search results has
// no parent and therefore no navigation.
type Media struct {
	rec    *Record
	path   *Path
	parent *Album
	kind   ItemKind
}

// NewMedia maps a media Record to its domain object. parent may be nil for
// standalone contexts (search results).
func NewMedia(rec *Record, parent *Album) (*Media, error) {
	kind, err := rec.Classify()
	if err != nil {
		return nil, err
	}
	if kind == ItemAlbum {
		return nil, fmt.Errorf("record at %q is an album, not media", rec.Path)
	}
	return newMedia(rec, parent, kind)
}

func newMedia(rec *Record, parent *Album, kind ItemKind) (*Media, error) {
	p, err := ParsePath(rec.Path)
	if err != nil {
		return nil, err
	}
	if !p.IsMedia() {
		return nil, fmt.Errorf("%w: %q: album path on media record", ErrInvalidPath, rec.Path)
	}
	return &Media{rec: rec, path: p, parent: parent, kind: kind}, nil
}

// Record returns the underlying server record (read-only).
func (m *Media) Record() *Record { return m.rec }

// Path returns the canonical media path.
func (m *Media) Path() string { return m.rec.Path }

// ParsedPath returns the parsed path.
func (m *Media) ParsedPath() *Path { return m.path }

// Kind returns ItemImage or ItemVideo.
func (m *Media) Kind() ItemKind { return m.kind }

// IsVideo reports whether this item is a video.
func (m *Media) IsVideo() bool { return m.kind == ItemVideo }

// Title returns the custom title when set, else the file name without its
// extension.
func (m *Media) Title() string {
	if m.rec.Title != "" {
		return m.rec.Title
	}
	return titleFromFilename(m.path.Base())
}

// VersionID returns the opaque content version token assigned by the
// object-storage backend.
func (m *Media) VersionID() string { return m.rec.VersionID }

// Tags returns the media tags, possibly nil.
func (m *Media) Tags() []string { return m.rec.Tags }

// Crop returns the thumbnail crop rectangle, or nil when uncropped.
func (m *Media) Crop() *Rect { return m.rec.Crop }

// Date returns the calendar date embedded in the media path.
func (m *Media) Date() time.Time {
	t, _ := m.path.Date()
	return t
}

// Dimensions returns the source pixel dimensions; zero values mean unknown.
func (m *Media) Dimensions() Dimensions {
	if m.rec.Dimensions == nil {
		return Dimensions{}
	}
	return *m.rec.Dimensions
}

// DetailDimensions returns the dimensions at which the detail view renders
// this item (or its poster, for video).
func (m *Media) DetailDimensions() Dimensions {
	d := m.Dimensions()
	w, h := DetailDimensions(d.Width, d.Height)
	return Dimensions{Width: w, Height: h}
}

// Next returns the item immediately after this one in the parent album's
// media list (server order), or nil at the end or when parentless.
func (m *Media) Next() *Media {
	return m.sibling(1)
}

// Prev returns the item immediately before this one in the parent album's
// media list, or nil at the start or when parentless.
func (m *Media) Prev() *Media {
	return m.sibling(-1)
}

func (m *Media) sibling(offset int) *Media {
	if m.parent == nil {
		return nil
	}
	siblings := m.parent.Media()
	for i, s := range siblings {
		if s.Path() == m.Path() {
			j := i + offset
			if j < 0 || j >= len(siblings) {
				return nil
			}
			return siblings[j]
		}
	}
	return nil
}

// DetailDimensions scales source dimensions for the detail view: the longer
// side becomes exactly detailMaxSide, preserving aspect ratio and rounding to
// the nearest pixel. Content whose longer side is already at or below the
// limit is returned unscaled. An unknown (zero) dimension falls back to
// detailMaxSide with the other side untouched.
func DetailDimensions(width, height int64) (int64, int64) {
	if width <= 0 || height <= 0 {
		if width <= 0 {
			width = detailMaxSide
		}
		if height <= 0 {
			height = detailMaxSide
		}
		return width, height
	}

	if width <= detailMaxSide && height <= detailMaxSide {
		return width, height
	}

	if width >= height {
		scaled := math.Round(float64(height) * detailMaxSide / float64(width))
		return detailMaxSide, int64(scaled)
	}
	scaled := math.Round(float64(width) * detailMaxSide / float64(height))
	return int64(scaled), detailMaxSide
}
