package fauna

import (
	"strconv"
	"sync/atomic"
	"time"
)

// lastTxn is the newest transaction timestamp a client has observed, in
// microseconds since the epoch. It never moves backwards.
type lastTxn struct {
	micros atomic.Int64
}

func (l *lastTxn) load() int64 {
	return l.micros.Load()
}

func (l *lastTxn) advance(micros int64) {
	for {
		seen := l.micros.Load()
		if micros <= seen || l.micros.CompareAndSwap(seen, micros) {
			return
		}
	}
}

// header renders the timestamp for the last-txn header, empty until one
// has been observed.
func (l *lastTxn) header() string {
	if seen := l.micros.Load(); seen > 0 {
		return strconv.FormatInt(seen, 10)
	}

	return ""
}

func (l *lastTxn) time() time.Time {
	return txnTimestamp(l.micros.Load())
}
