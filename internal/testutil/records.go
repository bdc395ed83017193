package testutil

import "gallery-go/internal/gallery"

// AlbumRecord builds an album record at path with the given children.
func AlbumRecord(path string, children ...gallery.Record) *gallery.Record {
	return &gallery.Record{
		Path:     path,
		ItemType: "album",
		Children: children,
	}
}

// ImageRecord builds a migrated-format image record.
func ImageRecord(path, versionID string, width, height int64) gallery.Record {
	return gallery.Record{
		Path:       path,
		ItemType:   "media",
		MediaType:  "image",
		VersionID:  versionID,
		Dimensions: &gallery.Dimensions{Width: width, Height: height},
	}
}

// LegacyImageRecord builds a legacy-format image record: itemType "image",
// no mediaType.
func LegacyImageRecord(path, versionID string, width, height int64) gallery.Record {
	return gallery.Record{
		Path:       path,
		ItemType:   "image",
		VersionID:  versionID,
		Dimensions: &gallery.Dimensions{Width: width, Height: height},
	}
}

// VideoRecord builds a video record.
func VideoRecord(path, versionID string, width, height int64) gallery.Record {
	return gallery.Record{
		Path:       path,
		ItemType:   "media",
		MediaType:  "video",
		VersionID:  versionID,
		Dimensions: &gallery.Dimensions{Width: width, Height: height},
	}
}
