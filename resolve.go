package fauna

import (
	"encoding/json"
	"fmt"
	"reflect"

	gojson "github.com/goccy/go-json"
)

// UnmarshalFn decodes JSON data into v.
type UnmarshalFn func(data []byte, v any) error

type decodeOptions struct {
	strict    bool
	unmarshal UnmarshalFn
	logger    Logger
}

// DecodeOptFn function to set options on [fauna.Decode] and [fauna.DecodePage]
type DecodeOptFn func(opts *decodeOptions)

// Strict makes a payload that does not fit the requested type an
// [fauna.ErrTypeMismatch] instead of the type's zero value.
func Strict() DecodeOptFn {
	return func(opts *decodeOptions) { opts.strict = true }
}

// Unmarshaler replaces the JSON decoder used for payloads.
func Unmarshaler(fn UnmarshalFn) DecodeOptFn {
	return func(opts *decodeOptions) {
		if fn != nil {
			opts.unmarshal = fn
		}
	}
}

// DecodeLogger sets the [fauna.Logger] told about payloads that were
// replaced by a zero value.
func DecodeLogger(logger Logger) DecodeOptFn {
	return func(opts *decodeOptions) { opts.logger = logger }
}

func newDecodeOptions(optFns []DecodeOptFn) *decodeOptions {
	opts := &decodeOptions{
		unmarshal: gojson.Unmarshal,
	}

	for _, optFn := range optFns {
		optFn(opts)
	}

	return opts
}

// Decode decodes the payload of res as a T.
//
// A failed response returns an [fauna.ErrQueryFailure] before anything is
// decoded. An empty payload yields the zero T. A payload that is not a T
// also yields the zero T, unless [fauna.Strict] is set.
func Decode[T any](res *Response, optFns ...DecodeOptFn) (T, error) {
	var result T
	if err := res.Err(); err != nil {
		return result, err
	}

	if len(res.Payload) == 0 {
		return result, nil
	}

	opts := newDecodeOptions(optFns)
	if err := opts.unmarshal(res.Payload, &result); err != nil {
		var zero T
		return zero, opts.mismatch(reflect.TypeOf(&result).Elem(), err)
	}

	return result, nil
}

// DecodePage decodes the payload of res as a page of E.
//
// A result classified as a page keeps its cursor. Any other payload goes
// through the page path again: a page-shaped payload is unwrapped, an array
// becomes the page data and a single value becomes a one element page.
func DecodePage[E any](res *Response, optFns ...DecodeOptFn) (*Page[E], error) {
	raw, err := res.RawPage()
	if err != nil {
		return nil, err
	}

	if len(raw.Data) == 0 {
		return newPage[E](nil, raw.After), nil
	}

	opts := newDecodeOptions(optFns)

	var data []E
	if err := opts.unmarshal(raw.Data, &data); err != nil {
		if mismatch := opts.mismatch(reflect.TypeOf(&data).Elem(), err); mismatch != nil {
			return nil, mismatch
		}

		return newPage[E](nil, raw.After), nil
	}

	return newPage(data, raw.After), nil
}

// RawPage returns the encoded element array and cursor of res.
func (r *Response) RawPage() (*RawPage, error) {
	if err := r.Err(); err != nil {
		return nil, err
	}

	if len(r.Payload) == 0 {
		return &RawPage{After: r.After}, nil
	}

	if r.Kind == KindPage {
		return &RawPage{Data: asElementArray(r.Payload), After: r.After}, nil
	}

	env, isPage, err := pageEnvelope(r.Payload)
	if err != nil {
		return nil, err
	}

	if isPage {
		return &RawPage{Data: asElementArray(env.Payload), After: env.After}, nil
	}

	return &RawPage{Data: asElementArray(r.Payload), After: r.After}, nil
}

// asElementArray wraps a non-array payload into a one element array.
func asElementArray(payload []byte) json.RawMessage {
	switch jsonKind(payload) {
	case 0, 'n':
		return nil
	case '[':
		return payload
	}

	wrapped := make([]byte, 0, len(payload)+2)
	wrapped = append(wrapped, '[')
	wrapped = append(wrapped, payload...)
	return append(wrapped, ']')
}

// mismatch returns the error to report for a payload that did not decode,
// nil when running lenient.
func (opts *decodeOptions) mismatch(target reflect.Type, err error) error {
	if opts.strict {
		return &ErrTypeMismatch{Target: target.String(), Err: err}
	}

	if opts.logger == nil {
		opts.logger = DefaultLogger()
	}

	opts.logger.Warn("payload replaced by zero value",
		"target", target.String(),
		"error", fmt.Sprint(err))
	return nil
}
