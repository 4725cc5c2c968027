package ai

import "fmt"

// NotConfiguredError indicates the external text-generation client is not
// configured (no API key) and strict mode is on.
type NotConfiguredError struct{}

func (e *NotConfiguredError) Error() string {
	return "AI service is not configured: set GEMINI_API_KEY"
}

// UpstreamError indicates the external call failed or returned content that
// could not be parsed into the operation's response shape.
type UpstreamError struct {
	Op      string
	Message string
	Cause   error
}

func (e *UpstreamError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("upstream error in %s: %s: %v", e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("upstream error in %s: %s", e.Op, e.Message)
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}
