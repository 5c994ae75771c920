package fauna

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLastTxn(t *testing.T) {
	txn := lastTxn{}
	require.Equal(t, int64(0), txn.load())
	require.Equal(t, "", txn.header())

	txn.advance(42) // move forward
	require.Equal(t, int64(42), txn.load())
	require.Equal(t, "42", txn.header())

	txn.advance(32) // don't move back
	require.Equal(t, int64(42), txn.load())
	require.Equal(t, "42", txn.header())

	require.True(t, time.UnixMicro(42).Equal(txn.time()))
}

func BenchmarkLastTxn(b *testing.B) {
	txn := lastTxn{}
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			now := time.Now()
			txn.advance(now.UnixMicro())
		}
	})
}
