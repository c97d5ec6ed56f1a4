package syncell

import (
	"fmt"

	"github.com/unkn0wn-root/syncell/store"
)

// FlushError reports a failed write-back. The cache stays dirty, so a later
// Flush retries the write.
type FlushError struct {
	Key store.Key
	Err error
}

func (e *FlushError) Error() string {
	return fmt.Sprintf("flush slot %s failed: %v", e.Key, e.Err)
}

func (e *FlushError) Unwrap() error { return e.Err }
