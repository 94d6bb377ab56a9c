// Package batch implements the word-path-edge batch buffer (C8): a bounded
// queue flushed transactionally and idempotently on threshold or explicit
// drain, with bounded exponential backoff retry on retryable errors. There
// is no word-insert or hash-insert queue; words and hashes are resolved by
// direct synchronous calls against internal/storage. Grounded on the original batch
// operations classes and the retry idiom from the teacher's retryable
// extraction client.
package batch

import (
	"strings"
	"time"
)

// retryableSubstrings mirrors the error-handling design's substring match
// list for the Transient error kind.
var retryableSubstrings = []string{
	"connection", "timeout", "locked", "busy", "deadlock", "network", "temporary",
}

// IsRetryable reports whether err's message matches the retryable-error
// substring list.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, s := range retryableSubstrings {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

const MaxRetries = 3

// Backoff returns the fixed schedule from the error-handling design:
// 100ms, 200ms, 400ms for attempts 0, 1, 2.
func Backoff(attempt int) time.Duration {
	base := 100 * time.Millisecond
	return base << uint(attempt)
}
