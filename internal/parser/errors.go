package parser

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// defaultRetryAfter applies when a provider throttles without saying for how long.
const defaultRetryAfter = 60 * time.Second

// RateLimitError reports that an extraction provider throttled the request.
type RateLimitError struct {
	Provider   string
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited (retry after %s): %v", e.Provider, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// NewRateLimitError creates a RateLimitError. A non-positive retryAfterSecs means 60s.
func NewRateLimitError(provider string, err error, retryAfterSecs int) *RateLimitError {
	retryAfter := time.Duration(retryAfterSecs) * time.Second
	if retryAfter <= 0 {
		retryAfter = defaultRetryAfter
	}
	return &RateLimitError{Provider: provider, RetryAfter: retryAfter, Err: err}
}

// RetryAfterOf returns the backoff of the first RateLimitError in err's chain.
func RetryAfterOf(err error) (time.Duration, bool) {
	var rlErr *RateLimitError
	if !errors.As(err, &rlErr) {
		return 0, false
	}
	return rlErr.RetryAfter, true
}

// ParseRetryAfterHeader reads a Retry-After value given as delay-seconds or as
// an HTTP-date. It returns 0 for empty, malformed or past values.
func ParseRetryAfterHeader(val string) int {
	return parseRetryAfter(val, time.Now())
}

func parseRetryAfter(val string, now time.Time) int {
	val = strings.TrimSpace(val)
	if val == "" {
		return 0
	}
	if secs, err := strconv.Atoi(val); err == nil {
		if secs < 0 {
			return 0
		}
		return secs
	}
	at, err := http.ParseTime(val)
	if err != nil || !at.After(now) {
		return 0
	}
	// round up so a sub-second remainder still waits
	return int((at.Sub(now) + time.Second - 1) / time.Second)
}
