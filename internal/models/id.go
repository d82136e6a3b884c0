package models

import (
	"sync/atomic"
	"time"
)

var lastID int64

// NextID returns a unique millisecond-timestamp identifier. IDs issued in the
// same millisecond are bumped so the sequence stays strictly increasing.
func NextID() int64 {
	for {
		id := time.Now().UnixMilli()
		last := atomic.LoadInt64(&lastID)
		if id <= last {
			id = last + 1
		}
		if atomic.CompareAndSwapInt64(&lastID, last, id) {
			return id
		}
	}
}
