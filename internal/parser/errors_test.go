package parser_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tradelens/internal/parser"
)

func TestRateLimitError_ErrorString(t *testing.T) {
	rlErr := parser.NewRateLimitError("claude", fmt.Errorf("rate limited"), 30)

	assert.Contains(t, rlErr.Error(), "claude")
	assert.Contains(t, rlErr.Error(), "rate limited")
	assert.Contains(t, rlErr.Error(), "30s")
}

func TestRateLimitError_Unwrap(t *testing.T) {
	underlying := fmt.Errorf("underlying error")
	rlErr := parser.NewRateLimitError("claude", underlying, 60)

	assert.Equal(t, underlying, errors.Unwrap(rlErr))
}

func TestRateLimitError_ErrorsAs(t *testing.T) {
	wrapped := fmt.Errorf("extract failed: %w", parser.NewRateLimitError("claude", fmt.Errorf("rate limited"), 30))

	var target *parser.RateLimitError
	assert.True(t, errors.As(wrapped, &target))
	assert.Equal(t, "claude", target.Provider)
	assert.Equal(t, 30*time.Second, target.RetryAfter)
}

func TestNewRateLimitError_DefaultRetryAfter(t *testing.T) {
	assert.Equal(t, 60*time.Second, parser.NewRateLimitError("claude", fmt.Errorf("err"), 0).RetryAfter)
	assert.Equal(t, 60*time.Second, parser.NewRateLimitError("claude", fmt.Errorf("err"), -5).RetryAfter)
}

func TestParseRetryAfterHeader(t *testing.T) {
	assert.Equal(t, 0, parser.ParseRetryAfterHeader(""))
	assert.Equal(t, 30, parser.ParseRetryAfterHeader("30"))
	assert.Equal(t, 0, parser.ParseRetryAfterHeader("invalid"))
	assert.Equal(t, 120, parser.ParseRetryAfterHeader("120"))
}

func TestRetryAfterOf(t *testing.T) {
	d, ok := parser.RetryAfterOf(fmt.Errorf("outer: %w", parser.NewRateLimitError("claude", errors.New("429"), 15)))
	assert.True(t, ok)
	assert.Equal(t, 15*time.Second, d)

	_, ok = parser.RetryAfterOf(errors.New("plain"))
	assert.False(t, ok)
}
