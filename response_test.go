package fauna

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResponse(t *testing.T) {
	body := []byte(`{
		"data": {"id": "1", "coll": "Users"},
		"summary": "",
		"txn_ts": 1700000000000000,
		"stats": {
			"compute_ops": 1,
			"read_ops": 2,
			"write_ops": 3,
			"query_time_ms": 4,
			"contention_retries": 5,
			"storage_bytes_read": 6,
			"storage_bytes_write": 7
		},
		"schema_version": 17
	}`)

	res, err := ParseResponse(body)
	require.NoError(t, err)

	assert.False(t, res.IsFailure())
	assert.NoError(t, res.Err())
	assert.Equal(t, KindValue, res.Kind)
	assert.Equal(t, `{"id":"1","coll":"Users"}`, string(res.Payload))
	assert.Equal(t, int64(17), res.SchemaVersion)
	assert.True(t, time.UnixMicro(1700000000000000).Equal(res.Timestamp))
	assert.Equal(t, time.UTC, res.Timestamp.Location())

	require.NotNil(t, res.Stats)
	assert.Equal(t, Stats{
		ComputeOps:        1,
		ReadOps:           2,
		WriteOps:          3,
		QueryTimeMs:       4,
		ContentionRetries: 5,
		StorageBytesRead:  6,
		StorageBytesWrite: 7,
	}, *res.Stats)
	assert.Equal(t, 4*time.Millisecond, res.Stats.QueryTime())
}

func TestParseResponseStats(t *testing.T) {
	t.Run("absent stats stay absent", func(t *testing.T) {
		res, err := ParseResponse([]byte(`{"data":1}`))
		require.NoError(t, err)
		assert.Nil(t, res.Stats)
	})

	t.Run("empty stats are zero", func(t *testing.T) {
		res, err := ParseResponse([]byte(`{"data":1,"stats":{}}`))
		require.NoError(t, err)
		if assert.NotNil(t, res.Stats) {
			assert.Equal(t, Stats{}, *res.Stats)
		}
	})
}

func TestTxnTimestamp(t *testing.T) {
	testCases := []struct {
		micros int64
		want   time.Time
	}{
		{0, time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)},
		{1, time.Date(1970, 1, 1, 0, 0, 0, 1000, time.UTC)},
		{1700000000000000, time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC)},
		{1677607810000010, time.Date(2023, 2, 28, 18, 10, 10, 10000, time.UTC)},
	}

	for _, tc := range testCases {
		got := txnTimestamp(tc.micros)
		assert.True(t, tc.want.Equal(got), "txn_ts %d: want %s, got %s", tc.micros, tc.want, got)
	}
}

func TestParseResponseCursor(t *testing.T) {
	t.Run("classified cursor", func(t *testing.T) {
		res, err := ParseResponse([]byte(`{"data":{"data":[],"after":"a"},"after":"b"}`))
		require.NoError(t, err)
		require.NotNil(t, res.After)
		assert.Equal(t, "a", *res.After)
	})

	t.Run("top level cursor", func(t *testing.T) {
		res, err := ParseResponse([]byte(`{"data":[1],"after":"b"}`))
		require.NoError(t, err)
		require.NotNil(t, res.After)
		assert.Equal(t, "b", *res.After)
	})

	t.Run("no cursor", func(t *testing.T) {
		res, err := ParseResponse([]byte(`{"data":[1]}`))
		require.NoError(t, err)
		assert.Nil(t, res.After)
	})
}

func TestParseResponseMalformed(t *testing.T) {
	testCases := map[string]string{
		"not json":         `<html>bad gateway</html>`,
		"array body":       `[1,2]`,
		"bad page cursor":  `{"data":{"data":[],"after":1}}`,
		"truncated":        `{"data":`,
		"bad page content": `{"data":{"data":"%%%","after":null}}`,
	}

	for name, body := range testCases {
		t.Run(name, func(t *testing.T) {
			res, err := ParseResponse([]byte(body))
			assert.Nil(t, res)

			var malformed *ErrMalformedEnvelope
			assert.ErrorAs(t, err, &malformed)
		})
	}
}

func TestResponseErrUsesStatus(t *testing.T) {
	res, err := ParseResponse([]byte(`{"error":{"code":"unauthorized","message":"bad key"}}`))
	require.NoError(t, err)

	res.status = http.StatusUnauthorized

	var authErr *ErrAuthentication
	if assert.ErrorAs(t, res.Err(), &authErr) {
		assert.Equal(t, "unauthorized", authErr.Code)
	}

	var failure *ErrQueryFailure
	assert.ErrorAs(t, res.Err(), &failure)
}

func TestResponseToJSON(t *testing.T) {
	res, err := ParseResponse([]byte(`{"data":{"a":[1,2]}}`))
	require.NoError(t, err)

	out, err := res.ToJSON()
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": [\n    1,\n    2\n  ]\n}", out)

	empty, err := ParseResponse([]byte(`{}`))
	require.NoError(t, err)

	out, err = empty.ToJSON()
	require.NoError(t, err)
	assert.Equal(t, "null", out)
}
