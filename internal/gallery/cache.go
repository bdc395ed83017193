package gallery

// DiskCache is the persistent key-value store backing the second cache tier,
// keyed by canonical path. It holds server records verbatim so a cold start
// can show an album before the network answers. The network result is always
// authoritative and overwrites whatever the cache held.
type DiskCache interface {
	// Get returns the cached record for path, or (nil, nil) on a miss.
	Get(path string) (*Record, error)

	// Set stores the record for path, replacing any previous value.
	Set(path string, rec *Record) error

	// Delete removes the record for path. Deleting an absent key is a no-op.
	Delete(path string) error
}
