package gallery

import "strings"

// AlbumStatus is the load/mutation state of one path. Exactly one status
// exists per path at any time. Related states share a name prefix so
// sub-state checks can test the group with HasPrefix.
//
// Transitions:
//
//	NOT_LOADED     → LOADING | LOAD_ERRORED
//	LOADING        → LOADED | DOES_NOT_EXIST | LOAD_ERRORED
//	LOADED         → SAVING | RENAMING | DELETING
//	DOES_NOT_EXIST → CREATING | CREATE_ERRORED
//
// RENAMED and DELETED are terminal (the entry is removed). *_ERRORED states
// remain interactively retryable.
type AlbumStatus string

const (
	NotLoaded    AlbumStatus = "NOT_LOADED"
	Loading      AlbumStatus = "LOADING"
	Loaded       AlbumStatus = "LOADED"
	LoadErrored  AlbumStatus = "LOAD_ERRORED"
	DoesNotExist AlbumStatus = "DOES_NOT_EXIST"

	Creating      AlbumStatus = "CREATING"
	CreateErrored AlbumStatus = "CREATE_ERRORED"

	Saving      AlbumStatus = "SAVING"
	SaveErrored AlbumStatus = "SAVE_ERRORED"

	Renaming      AlbumStatus = "RENAMING"
	Renamed       AlbumStatus = "RENAMED"
	RenameErrored AlbumStatus = "RENAME_ERRORED"

	Deleting      AlbumStatus = "DELETING"
	Deleted       AlbumStatus = "DELETED"
	DeleteErrored AlbumStatus = "DELETE_ERRORED"
)

// InGroup reports whether the status belongs to the named group, e.g.
// Loading.InGroup("LOAD") and LoadErrored.InGroup("LOAD") are both true.
func (s AlbumStatus) InGroup(prefix string) bool {
	return strings.HasPrefix(string(s), prefix)
}

// IsErrored reports whether the status is any of the *_ERRORED variants.
func (s AlbumStatus) IsErrored() bool {
	return strings.HasSuffix(string(s), "_ERRORED")
}

// CanCreate reports whether a create may start from this status: the path
// must not hold (or be fetching) a live album.
func (s AlbumStatus) CanCreate() bool {
	return s == NotLoaded || s == DoesNotExist || s == CreateErrored
}

// ReloadStatus tracks a background refresh of an already-loaded path. It is
// orthogonal to AlbumStatus so a refresh in flight never clobbers visible
// content, and a failed refresh never demotes LOADED to an error state:
// stale-but-valid data stays on screen.
type ReloadStatus string

const (
	NotReloading   ReloadStatus = "NOT_RELOADING"
	Reloading      ReloadStatus = "RELOADING"
	ErrorReloading ReloadStatus = "ERROR_RELOADING"
)
