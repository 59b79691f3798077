package llm

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFatalAPI marks provider errors that retrying cannot fix
	// (bad credentials, exhausted billing or quota, rejected requests).
	ErrFatalAPI = errors.New("fatal model API error")

	// ErrTimeout indicates a model call exceeded its deadline. Callers may retry.
	ErrTimeout = errors.New("model call timed out")

	// ErrEmptyResponse indicates the model returned only whitespace.
	ErrEmptyResponse = errors.New("empty model response")
)

// fatalPatterns are lowercase substrings of provider error messages that
// identify non-retryable failures.
var fatalPatterns = []string{
	"credit balance",
	"quota",
	"billing",
	"invalid api key",
	"incorrect api key",
	"authentication",
	"unauthorized",
	"invalid_request_error",
	"401",
	"403",
}

// isFatalAPIError reports whether err is a provider failure that should not be retried.
func isFatalAPIError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, p := range fatalPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// wrapFatalError tags fatal errors with ErrFatalAPI and returns others unchanged.
func wrapFatalError(err error) error {
	if !isFatalAPIError(err) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrFatalAPI, err)
}
