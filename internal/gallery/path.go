package gallery

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// PathKind identifies which level of the gallery hierarchy a path addresses.
type PathKind int

const (
	PathRoot  PathKind = iota // "/"
	PathYear                  // "/2024/"
	PathDay                   // "/2024/01-31/"
	PathMedia                 // "/2024/01-31/photo.jpg"
)

var (
	yearPathRE  = regexp.MustCompile(`^/(\d{4})/$`)
	dayPathRE   = regexp.MustCompile(`^/(\d{4})/(\d{2})-(\d{2})/$`)
	mediaPathRE = regexp.MustCompile(`^/(\d{4})/(\d{2})-(\d{2})/([^/]+\.\w+)$`)
)

// Path is a validated, parsed gallery path. Paths are case-sensitive,
// slash-delimited, and canonical: every entity is addressed by exactly one
// Path. Day and media paths embed a calendar date decodable without I/O.
// Path objects are created by ParsePath, which validates the grammar and the
// embedded date.
type Path struct {
	raw   string
	kind  PathKind
	year  int
	month int
	day   int
	base  string // media file name, including extension
}

// ParsePath validates and parses a gallery path. It returns ErrInvalidPath
// (wrapped, with the offending path) for anything outside the grammar:
// root "/", year "/YYYY/", day "/YYYY/MM-DD/", media "/YYYY/MM-DD/name.ext".
func ParsePath(raw string) (*Path, error) {
	if raw == "/" {
		return &Path{raw: raw, kind: PathRoot}, nil
	}

	if m := yearPathRE.FindStringSubmatch(raw); m != nil {
		year, _ := strconv.Atoi(m[1])
		return &Path{raw: raw, kind: PathYear, year: year}, nil
	}

	if m := dayPathRE.FindStringSubmatch(raw); m != nil {
		p := &Path{raw: raw, kind: PathDay}
		if err := p.setDate(m[1], m[2], m[3]); err != nil {
			return nil, err
		}
		return p, nil
	}

	if m := mediaPathRE.FindStringSubmatch(raw); m != nil {
		p := &Path{raw: raw, kind: PathMedia, base: m[4]}
		if err := p.setDate(m[1], m[2], m[3]); err != nil {
			return nil, err
		}
		return p, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrInvalidPath, raw)
}

// setDate parses and validates the embedded calendar date.
func (p *Path) setDate(year, month, day string) error {
	p.year, _ = strconv.Atoi(year)
	p.month, _ = strconv.Atoi(month)
	p.day, _ = strconv.Atoi(day)

	// Reject dates the calendar round-trips differently (e.g. 02-30).
	t := time.Date(p.year, time.Month(p.month), p.day, 0, 0, 0, 0, time.UTC)
	if t.Year() != p.year || int(t.Month()) != p.month || t.Day() != p.day {
		return fmt.Errorf("%w: %q: invalid date", ErrInvalidPath, p.raw)
	}
	return nil
}

// String returns the canonical path string.
func (p *Path) String() string { return p.raw }

// Kind returns which level of the hierarchy this path addresses.
func (p *Path) Kind() PathKind { return p.kind }

// IsAlbum returns true for root, year and day paths.
func (p *Path) IsAlbum() bool { return p.kind != PathMedia }

// IsMedia returns true for media paths.
func (p *Path) IsMedia() bool { return p.kind == PathMedia }

// Base returns the leaf name: the file name for media paths, the year or
// MM-DD segment for albums, and "/" for the root.
func (p *Path) Base() string {
	switch p.kind {
	case PathRoot:
		return "/"
	case PathYear:
		return fmt.Sprintf("%04d", p.year)
	case PathDay:
		return fmt.Sprintf("%02d-%02d", p.month, p.day)
	default:
		return p.base
	}
}

// Ext returns the lowercased media file extension without the dot, or ""
// for album paths.
func (p *Path) Ext() string {
	if p.kind != PathMedia {
		return ""
	}
	i := strings.LastIndexByte(p.base, '.')
	return strings.ToLower(p.base[i+1:])
}

// Parent returns the containing album's path, or nil for the root.
func (p *Path) Parent() *Path {
	switch p.kind {
	case PathRoot:
		return nil
	case PathYear:
		return &Path{raw: "/", kind: PathRoot}
	case PathDay:
		return &Path{
			raw:  fmt.Sprintf("/%04d/", p.year),
			kind: PathYear,
			year: p.year,
		}
	default:
		return &Path{
			raw:   fmt.Sprintf("/%04d/%02d-%02d/", p.year, p.month, p.day),
			kind:  PathDay,
			year:  p.year,
			month: p.month,
			day:   p.day,
		}
	}
}

// Date returns the embedded calendar date in UTC. ok is false for root and
// year paths, which carry no full date.
func (p *Path) Date() (t time.Time, ok bool) {
	if p.kind != PathDay && p.kind != PathMedia {
		return time.Time{}, false
	}
	return time.Date(p.year, time.Month(p.month), p.day, 0, 0, 0, 0, time.UTC), true
}

// Year returns the year segment, or 0 for the root.
func (p *Path) Year() int { return p.year }

// WithExt returns this media path with its extension replaced. Used to
// compute the path the server stores re-encoded uploads under.
func (p *Path) WithExt(ext string) (*Path, error) {
	if p.kind != PathMedia {
		return nil, fmt.Errorf("%w: %q: not a media path", ErrInvalidPath, p.raw)
	}
	i := strings.LastIndexByte(p.base, '.')
	newBase := p.base[:i+1] + ext
	return ParsePath(p.Parent().String() + newBase)
}
