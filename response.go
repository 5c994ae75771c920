package fauna

import (
	"bytes"
	"encoding/json"
	"time"

	gojson "github.com/goccy/go-json"
)

const (
	// ticksPerMicrosecond converts txn_ts to 100ns ticks.
	ticksPerMicrosecond = 10
	tickDuration        = 100 * time.Nanosecond
)

var unixEpoch = time.Unix(0, 0).UTC()

// Stats represents the metrics returned in a Response
type Stats struct {
	ComputeOps        int64
	ReadOps           int64
	WriteOps          int64
	QueryTimeMs       int32
	ContentionRetries int32
	StorageBytesRead  int32
	StorageBytesWrite int32
}

// QueryTime returns the reported query time as a [time.Duration].
func (s *Stats) QueryTime() time.Duration {
	return time.Duration(s.QueryTimeMs) * time.Millisecond
}

type wireStats struct {
	ComputeOps        int64 `json:"compute_ops"`
	ReadOps           int64 `json:"read_ops"`
	WriteOps          int64 `json:"write_ops"`
	QueryTimeMs       int32 `json:"query_time_ms"`
	ContentionRetries int32 `json:"contention_retries"`
	StorageBytesRead  int32 `json:"storage_bytes_read"`
	StorageBytesWrite int32 `json:"storage_bytes_write"`
}

type wireResponse struct {
	Data          json.RawMessage `json:"data"`
	After         *string         `json:"after"`
	Summary       string          `json:"summary"`
	TxnTs         int64           `json:"txn_ts"`
	Stats         *wireStats      `json:"stats"`
	SchemaVersion int64           `json:"schema_version"`
	Error         *QueryError     `json:"error"`
}

// Response is a parsed query response. It is read-only once built.
type Response struct {
	// Payload is the canonical payload, nil when the query returned nothing.
	Payload []byte
	// After is the continuation cursor when the result is a page.
	After *string
	// Kind is the shape the result was recognized as.
	Kind          EnvelopeKind
	Summary       string
	Timestamp     time.Time
	Stats         *Stats
	SchemaVersion int64
	Error         *QueryError

	txnTs  int64
	status int
}

// ParseResponse builds a [fauna.Response] from a query response body.
func ParseResponse(body []byte) (*Response, error) {
	var wire wireResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, &ErrMalformedEnvelope{Reason: "response body is not a query response", Err: err}
	}

	env, err := Classify(wire.Data, wire.Error)
	if err != nil {
		return nil, err
	}

	after := env.After
	if after == nil && env.Kind != KindError {
		after = wire.After
	}

	return &Response{
		Payload:       env.Payload,
		After:         after,
		Kind:          env.Kind,
		Summary:       wire.Summary,
		Timestamp:     txnTimestamp(wire.TxnTs),
		Stats:         extractStats(wire.Stats),
		SchemaVersion: wire.SchemaVersion,
		Error:         wire.Error,
		txnTs:         wire.TxnTs,
	}, nil
}

func extractStats(wire *wireStats) *Stats {
	if wire == nil {
		return nil
	}

	return &Stats{
		ComputeOps:        wire.ComputeOps,
		ReadOps:           wire.ReadOps,
		WriteOps:          wire.WriteOps,
		QueryTimeMs:       wire.QueryTimeMs,
		ContentionRetries: wire.ContentionRetries,
		StorageBytesRead:  wire.StorageBytesRead,
		StorageBytesWrite: wire.StorageBytesWrite,
	}
}

// txnTimestamp converts microseconds since the epoch to 100ns ticks added
// to the Unix epoch.
func txnTimestamp(micros int64) time.Time {
	return unixEpoch.Add(time.Duration(micros*ticksPerMicrosecond) * tickDuration)
}

// IsFailure reports whether the query failed.
func (r *Response) IsFailure() bool {
	return r.Error != nil
}

// Err returns the query failure, or nil when the query succeeded. When the
// response came from a [fauna.Client] the error type reflects the HTTP
// status, see [fauna.GetServiceError].
func (r *Response) Err() error {
	if r.Error == nil {
		return nil
	}

	return GetServiceError(r.status, r.Summary, r.Error)
}

// Unmarshal decodes the payload into the value pointed at by into. Unlike
// [fauna.Decode], a payload that does not fit into is an error.
func (r *Response) Unmarshal(into any) error {
	if err := r.Err(); err != nil {
		return err
	}

	if len(r.Payload) == 0 {
		return nil
	}

	return gojson.Unmarshal(r.Payload, into)
}

// ToJSON renders the payload as indented JSON.
func (r *Response) ToJSON() (string, error) {
	if len(r.Payload) == 0 {
		return "null", nil
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, r.Payload, "", "  "); err != nil {
		return "", err
	}

	return buf.String(), nil
}
