package fauna

import "time"

// Document holds the fields every document carries. Embed it in a struct
// to decode documents of a collection:
//
//	type User struct {
//		fauna.Document
//		Name    string         `json:"name"`
//		Manager fauna.TaggedRef `json:"manager"`
//		Team    fauna.PlainRef  `json:"team"`
//	}
type Document struct {
	ID         string     `json:"id,omitempty"`
	Collection string     `json:"coll,omitempty"`
	Timestamp  *time.Time `json:"ts,omitempty"`
}

// Ref returns the reference to this document.
func (d Document) Ref() DocumentReference {
	return DocumentReference{Collection: d.Collection, ID: d.ID}
}
