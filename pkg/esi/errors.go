package esi

import "fmt"

// RateLimitedError aborts the whole pipeline. It is raised when ESI answers
// 429 or 420 on a detail fetch or a name-resolution chunk; the caller should
// back off before retrying, no automatic retry is built in.
type RateLimitedError struct {
	Status int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("ESI rate limit triggered (status %d)", e.Status)
}

// isRateLimitStatus reports whether a status code is one of the ESI
// rate-limit signals (429 Too Many Requests, 420 legacy error-limited).
func isRateLimitStatus(status int) bool {
	return status == 429 || status == 420
}
