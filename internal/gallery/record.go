package gallery

// This file defines the flat, server-shape records. The server stores albums
// and media as flat JSON documents; the gallery hierarchy is reassembled
// client-side from the Children and Prev/Next fields. Records are never
// mutated here; domain objects (Album, Media) are read views computed fresh
// from a Record.

// ItemKind is the classification of a Record after resolving the
// itemType/mediaType discriminator pair.
type ItemKind int

const (
	ItemAlbum ItemKind = iota
	ItemImage
	ItemVideo
)

func (k ItemKind) String() string {
	switch k {
	case ItemAlbum:
		return "album"
	case ItemImage:
		return "image"
	case ItemVideo:
		return "video"
	default:
		return "unknown"
	}
}

// Dimensions holds pixel dimensions of a media item. Zero means unknown.
type Dimensions struct {
	Width  int64 `json:"width"`
	Height int64 `json:"height"`
}

// Rect is a crop rectangle over a media item, in source pixels.
type Rect struct {
	X      int64 `json:"x"`
	Y      int64 `json:"y"`
	Width  int64 `json:"width"`
	Height int64 `json:"height"`
}

// NavRef is a sibling-navigation stub attached to album records: the path of
// the previous/next album at the same level, nothing more.
type NavRef struct {
	Path string `json:"path"`
}

// Record is the flat server representation of one album or media item.
//
// Album records use Published, Summary, Thumbnail, Children and Prev/Next.
// Media records use VersionID, Dimensions, Crop, Tags and MediaType.
// Title is shared. The ItemType discriminator carries a legacy wrinkle that
// must be preserved: itemType may be the legacy values "image"/"album" or the
// migrated values "media"/"album"; for the media family, mediaType
// disambiguates image vs video, with absence (or "image") meaning image.
type Record struct {
	Path      string   `json:"path"`
	ItemType  string   `json:"itemType"`
	MediaType string   `json:"mediaType,omitempty"`
	Title     string   `json:"title,omitempty"`

	// Album fields
	Published bool     `json:"published,omitempty"`
	Summary   string   `json:"summary,omitempty"`
	Thumbnail string   `json:"thumbnail,omitempty"` // path of the media item shown as album thumb
	Children  []Record `json:"children,omitempty"`
	Prev      *NavRef  `json:"prev,omitempty"`
	Next      *NavRef  `json:"next,omitempty"`

	// Media fields
	VersionID  string      `json:"versionId,omitempty"`
	Dimensions *Dimensions `json:"dimensions,omitempty"`
	Crop       *Rect       `json:"crop,omitempty"`
	Tags       []string    `json:"tags,omitempty"`
}

// Classify resolves the discriminator pair to an ItemKind. It returns an
// *UnknownItemTypeError for any unrecognized combination; malformed server
// data must never silently default.
func (r *Record) Classify() (ItemKind, error) {
	switch r.ItemType {
	case "album":
		return ItemAlbum, nil
	case "image", "media":
		// Media family. mediaType disambiguates; absence historically meant
		// image and still does.
		switch r.MediaType {
		case "", "image":
			return ItemImage, nil
		case "video":
			return ItemVideo, nil
		default:
			return 0, &UnknownItemTypeError{ItemType: r.ItemType, MediaType: r.MediaType}
		}
	default:
		return 0, &UnknownItemTypeError{ItemType: r.ItemType, MediaType: r.MediaType}
	}
}

// IsMediaRecord reports whether the record is in the media family without
// caring about the image/video split.
func (r *Record) IsMediaRecord() bool {
	return r.ItemType == "image" || r.ItemType == "media"
}

// Clone returns a deep copy of the record. Machines that locally patch
// cached data (draft save) operate on a clone and replace the whole entry,
// never mutating a record another reader may hold.
func (r *Record) Clone() *Record {
	c := *r
	if r.Dimensions != nil {
		d := *r.Dimensions
		c.Dimensions = &d
	}
	if r.Crop != nil {
		cr := *r.Crop
		c.Crop = &cr
	}
	if r.Prev != nil {
		p := *r.Prev
		c.Prev = &p
	}
	if r.Next != nil {
		n := *r.Next
		c.Next = &n
	}
	if r.Tags != nil {
		c.Tags = append([]string(nil), r.Tags...)
	}
	if r.Children != nil {
		c.Children = make([]Record, len(r.Children))
		for i := range r.Children {
			c.Children[i] = *r.Children[i].Clone()
		}
	}
	return &c
}
