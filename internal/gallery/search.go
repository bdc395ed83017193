package gallery

import "fmt"

// Thumbable is anything presentable as a thumbnail tile: albums and media.
type Thumbable interface {
	Path() string
	Title() string
}

var (
	_ Thumbable = (*Album)(nil)
	_ Thumbable = (*Media)(nil)
)

// SearchResults accumulates a paginated search: the query, the server's
// total hit count, and the domain objects fetched so far in server order.
// LoadMore appends the next page in place.
type SearchResults struct {
	Terms string
	Total int64
	Items []Thumbable

	nextPage int
	pageSize int
}

// Exhausted reports whether every hit has been fetched.
func (r *SearchResults) Exhausted() bool {
	return int64(len(r.Items)) >= r.Total
}

// SearchMachine runs paginated searches against the server and assembles
// the raw records into domain objects. Media found through search carries no
// parent album, so it has no sibling navigation.
type SearchMachine struct {
	api      Client
	pageSize int
	logger   Logger
}

// NewSearchMachine creates a SearchMachine fetching pageSize hits per call.
func NewSearchMachine(api Client, pageSize int, logger Logger) *SearchMachine {
	if pageSize <= 0 {
		pageSize = 30
	}
	return &SearchMachine{api: api, pageSize: pageSize, logger: logger}
}

// Search fetches the first page of results for terms.
func (s *SearchMachine) Search(terms string) (*SearchResults, error) {
	res := &SearchResults{Terms: terms, pageSize: s.pageSize}
	if err := s.fetchPage(res); err != nil {
		return nil, err
	}
	return res, nil
}

// LoadMore appends the next page to res. It reports whether more hits
// remain after the append.
func (s *SearchMachine) LoadMore(res *SearchResults) (bool, error) {
	if res.Exhausted() && res.nextPage > 0 {
		return false, nil
	}
	if err := s.fetchPage(res); err != nil {
		return !res.Exhausted(), err
	}
	return !res.Exhausted(), nil
}

func (s *SearchMachine) fetchPage(res *SearchResults) error {
	page, err := s.api.Search(res.Terms, res.nextPage, res.pageSize)
	if err != nil {
		return fmt.Errorf("searching %q: %w", res.Terms, err)
	}
	res.Total = page.Total
	res.nextPage++

	for i := range page.Items {
		item, err := mapSearchHit(&page.Items[i])
		if err != nil {
			// Malformed record: fatal for this hit only, not the page.
			s.logger.Warn("skipping malformed search hit", "path", page.Items[i].Path, "error", err)
			continue
		}
		res.Items = append(res.Items, item)
	}
	return nil
}

func mapSearchHit(rec *Record) (Thumbable, error) {
	kind, err := rec.Classify()
	if err != nil {
		return nil, err
	}
	if kind == ItemAlbum {
		return NewAlbum(rec)
	}
	return NewMedia(rec, nil)
}
