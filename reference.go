package fauna

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

var jsonNull = []byte("null")

const (
	refTag          = "@ref"
	refSeparator    = "/"
	refMapstructTag = "json"
)

// DocumentReference points at a document by collection and id.
//
// A reference is written in one of two encodings and the encoding is chosen
// by the field that holds it, never by inspecting the value. Use
// [fauna.TaggedRef] for fields carrying `{"@ref": {...}}` objects and
// [fauna.PlainRef] for fields carrying `"collection/id"` strings.
type DocumentReference struct {
	Collection string
	ID         string
}

// String returns the reference in its plain "collection/id" form.
func (r DocumentReference) String() string {
	return r.Collection + refSeparator + r.ID
}

// IsZero reports whether neither field is set.
func (r DocumentReference) IsZero() bool {
	return r.Collection == "" && r.ID == ""
}

type taggedRefBody struct {
	ID   string `json:"id"`
	Coll string `json:"coll"`
}

type taggedRefWire struct {
	Ref taggedRefBody `json:"@ref"`
}

// EncodeTaggedRef encodes ref as `{"@ref":{"id":"<id>","coll":"<collection>"}}`.
func EncodeTaggedRef(ref DocumentReference) ([]byte, error) {
	return json.Marshal(taggedRefWire{Ref: taggedRefBody{ID: ref.ID, Coll: ref.Collection}})
}

// DecodeTaggedRef decodes the tagged reference form. The outer object must
// hold the single key "@ref"; unknown keys inside it are ignored.
func DecodeTaggedRef(data []byte) (DocumentReference, error) {
	var ref DocumentReference

	decoder := json.NewDecoder(bytes.NewReader(data))
	malformed := func(reason string) error {
		return &ErrMalformedReference{Value: string(data), Reason: reason}
	}

	if token, err := decoder.Token(); err != nil || token != json.Delim('{') {
		return ref, malformed("expected an object")
	}

	if token, err := decoder.Token(); err != nil || token != refTag {
		return ref, malformed("expected " + refTag + " as the first key")
	}

	var inner any
	if err := decoder.Decode(&inner); err != nil {
		return ref, malformed(err.Error())
	}

	innerMap, isMap := inner.(map[string]any)
	if !isMap {
		return ref, malformed(refTag + " must hold an object")
	}

	if token, err := decoder.Token(); err != nil || token != json.Delim('}') {
		return ref, malformed("unexpected key after " + refTag)
	}

	for _, key := range []string{"id", "coll"} {
		if _, isString := innerMap[key].(string); !isString {
			return ref, malformed(refTag + " needs a string " + key)
		}
	}

	var body taggedRefBody
	mapDecoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     refMapstructTag,
		Result:      &body,
		ErrorUnused: false,
		ErrorUnset:  true,
	})
	if err != nil {
		return ref, err
	}

	if err := mapDecoder.Decode(innerMap); err != nil {
		return ref, malformed(err.Error())
	}

	ref.Collection = body.Coll
	ref.ID = body.ID
	return ref, nil
}

// EncodePlainRef encodes ref as "collection/id". A nil or zero reference
// encodes as null.
func EncodePlainRef(ref *DocumentReference) ([]byte, error) {
	if ref == nil || ref.IsZero() {
		return []byte("null"), nil
	}

	return json.Marshal(ref.String())
}

// DecodePlainRef decodes the "collection/id" form. Null and the empty string
// decode to a nil reference.
func DecodePlainRef(data []byte) (*DocumentReference, error) {
	var value *string
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, &ErrMalformedReference{Value: string(data), Reason: "expected a string"}
	}

	if value == nil || *value == "" {
		return nil, nil
	}

	parts := strings.Split(*value, refSeparator)
	if len(parts) != 2 {
		return nil, &ErrMalformedReference{
			Value:  *value,
			Reason: fmt.Sprintf("expected collection%sid, found %d parts", refSeparator, len(parts)),
		}
	}

	if parts[0] == "" || parts[1] == "" {
		return nil, &ErrMalformedReference{Value: *value, Reason: "collection and id must not be empty"}
	}

	return &DocumentReference{Collection: parts[0], ID: parts[1]}, nil
}

// TaggedRef is a [fauna.DocumentReference] field encoded in the tagged
// `{"@ref": {...}}` form.
type TaggedRef DocumentReference

// Reference returns r as a [fauna.DocumentReference].
func (r TaggedRef) Reference() DocumentReference {
	return DocumentReference(r)
}

func (r TaggedRef) MarshalJSON() ([]byte, error) {
	return EncodeTaggedRef(DocumentReference(r))
}

func (r *TaggedRef) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, jsonNull) {
		return nil
	}

	ref, err := DecodeTaggedRef(data)
	if err != nil {
		return err
	}

	*r = TaggedRef(ref)
	return nil
}

// PlainRef is a [fauna.DocumentReference] field encoded as a
// "collection/id" string. The zero value is an absent reference.
type PlainRef DocumentReference

// Reference returns r as a [fauna.DocumentReference], or nil when absent.
func (r PlainRef) Reference() *DocumentReference {
	if DocumentReference(r).IsZero() {
		return nil
	}

	ref := DocumentReference(r)
	return &ref
}

func (r PlainRef) MarshalJSON() ([]byte, error) {
	return EncodePlainRef(r.Reference())
}

func (r *PlainRef) UnmarshalJSON(data []byte) error {
	ref, err := DecodePlainRef(data)
	if err != nil {
		return err
	}

	if ref == nil {
		*r = PlainRef{}
		return nil
	}

	*r = PlainRef(*ref)
	return nil
}
