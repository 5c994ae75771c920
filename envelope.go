package fauna

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
)

// EnvelopeKind is the shape a query result was recognized as.
type EnvelopeKind int

const (
	// KindValue is a bare value: a document, a scalar or anything without
	// a wrapper shape.
	KindValue EnvelopeKind = iota
	// KindDocumentArray is a one-element array wrapping `{"data": ...}`.
	KindDocumentArray
	// KindPage is an object holding exactly "data" and "after".
	KindPage
	// KindError is a response carrying an error object.
	KindError
)

func (k EnvelopeKind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindDocumentArray:
		return "document_array"
	case KindPage:
		return "page"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

const (
	envelopeData  = "data"
	envelopeAfter = "after"
)

// Envelope is the result of classifying a query result.
type Envelope struct {
	Kind EnvelopeKind
	// Payload is the canonical payload, nil when there is none.
	Payload []byte
	// After is the continuation cursor of a page, nil at the end of a set.
	After *string
}

// shapeInput is a query result decoded one level deep.
type shapeInput struct {
	raw    json.RawMessage
	qErr   *QueryError
	object map[string]json.RawMessage
	array  []json.RawMessage
}

type envelopeShape struct {
	kind    EnvelopeKind
	matches func(in *shapeInput) bool
	extract func(in *shapeInput) (Envelope, error)
}

// envelopeShapes is evaluated top to bottom, the first match wins.
var envelopeShapes = []envelopeShape{
	{kind: KindError, matches: isErrorEnvelope, extract: extractError},
	{kind: KindDocumentArray, matches: isDocumentArray, extract: extractDocumentArray},
	{kind: KindPage, matches: isPage, extract: extractPage},
	{kind: KindValue, matches: func(*shapeInput) bool { return true }, extract: extractValue},
}

// Classify recognizes the shape of data, the value of the response "data"
// field, and extracts its canonical payload. A non-nil qErr classifies the
// result as [fauna.KindError] regardless of data.
func Classify(data json.RawMessage, qErr *QueryError) (Envelope, error) {
	in, err := newShapeInput(data, qErr)
	if err != nil {
		return Envelope{}, err
	}

	for _, shape := range envelopeShapes {
		if !shape.matches(in) {
			continue
		}

		env, extractErr := shape.extract(in)
		if extractErr != nil {
			return Envelope{}, extractErr
		}

		env.Kind = shape.kind
		return env, nil
	}

	return Envelope{Kind: KindValue}, nil
}

// pageEnvelope runs the page shape alone against payload.
func pageEnvelope(payload []byte) (Envelope, bool, error) {
	in, err := newShapeInput(payload, nil)
	if err != nil {
		return Envelope{}, false, err
	}

	if !isPage(in) {
		return Envelope{}, false, nil
	}

	env, err := extractPage(in)
	if err != nil {
		return Envelope{}, false, err
	}

	env.Kind = KindPage
	return env, true, nil
}

func newShapeInput(data json.RawMessage, qErr *QueryError) (*shapeInput, error) {
	in := &shapeInput{raw: data, qErr: qErr}
	if qErr != nil {
		return in, nil
	}

	switch jsonKind(data) {
	case '{':
		if err := json.Unmarshal(data, &in.object); err != nil {
			return nil, &ErrMalformedEnvelope{Reason: "invalid object", Err: err}
		}
	case '[':
		if err := json.Unmarshal(data, &in.array); err != nil {
			return nil, &ErrMalformedEnvelope{Reason: "invalid array", Err: err}
		}
	}

	return in, nil
}

func isErrorEnvelope(in *shapeInput) bool {
	return in.qErr != nil
}

func extractError(*shapeInput) (Envelope, error) {
	return Envelope{}, nil
}

func isDocumentArray(in *shapeInput) bool {
	if len(in.array) != 1 || jsonKind(in.array[0]) != '{' {
		return false
	}

	_, hasData := documentArrayElement(in)
	return hasData
}

func documentArrayElement(in *shapeInput) (json.RawMessage, bool) {
	var element map[string]json.RawMessage
	if err := json.Unmarshal(in.array[0], &element); err != nil {
		return nil, false
	}

	data, hasData := element[envelopeData]
	return data, hasData
}

func extractDocumentArray(in *shapeInput) (Envelope, error) {
	data, _ := documentArrayElement(in)
	payload, err := canonical(data)
	if err != nil {
		return Envelope{}, err
	}

	return Envelope{Payload: payload}, nil
}

func isPage(in *shapeInput) bool {
	if len(in.object) != 2 {
		return false
	}

	_, hasData := in.object[envelopeData]
	_, hasAfter := in.object[envelopeAfter]
	return hasData && hasAfter
}

func extractPage(in *shapeInput) (Envelope, error) {
	var after *string
	if err := json.Unmarshal(in.object[envelopeAfter], &after); err != nil {
		return Envelope{}, &ErrMalformedEnvelope{Reason: "page cursor must be a string or null", Err: err}
	}

	data := in.object[envelopeData]
	if jsonKind(data) != '"' {
		payload, err := canonical(data)
		if err != nil {
			return Envelope{}, err
		}

		return Envelope{Payload: payload, After: after}, nil
	}

	var encoded string
	if err := json.Unmarshal(data, &encoded); err != nil {
		return Envelope{}, &ErrMalformedEnvelope{Reason: "invalid page data", Err: err}
	}

	payload, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return Envelope{}, &ErrMalformedEnvelope{Reason: "page data is not base64", Err: err}
	}

	return Envelope{Payload: payload, After: after}, nil
}

func extractValue(in *shapeInput) (Envelope, error) {
	payload, err := canonical(in.raw)
	if err != nil {
		return Envelope{}, err
	}

	return Envelope{Payload: payload}, nil
}

// canonical compacts raw, returning nil for an absent or null value.
func canonical(raw json.RawMessage) ([]byte, error) {
	if kind := jsonKind(raw); kind == 0 || kind == 'n' {
		return nil, nil
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, &ErrMalformedEnvelope{Reason: "invalid payload", Err: err}
	}

	return buf.Bytes(), nil
}

// jsonKind returns the first significant byte of raw, 0 when empty.
func jsonKind(raw []byte) byte {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 {
		return 0
	}

	return trimmed[0]
}
