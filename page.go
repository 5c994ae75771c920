package fauna

import "encoding/json"

// Page is one page of a paginated set.
//
// A nil After marks the last page; otherwise After is an opaque cursor that
// must be sent back unchanged to fetch the next page.
type Page[E any] struct {
	Data  []E     `json:"data"`
	After *string `json:"after"`
}

// HasNext reports whether another page follows this one.
func (p *Page[E]) HasNext() bool {
	return p != nil && p.After != nil
}

// RawPage is a page whose elements are still encoded.
type RawPage struct {
	// Data is the JSON array of elements.
	Data  json.RawMessage
	After *string
}

func newPage[E any](data []E, after *string) *Page[E] {
	if data == nil {
		data = []E{}
	}

	return &Page[E]{Data: data, After: after}
}
