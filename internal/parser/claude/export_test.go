package claude

import "time"

// SetRetryBackoff shortens the retry delay for tests and returns a restore func.
func SetRetryBackoff(d time.Duration) func() {
	prev := retryBackoff
	retryBackoff = d
	return func() { retryBackoff = prev }
}
