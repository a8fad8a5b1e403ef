package assistant

import "errors"

var (
	// ErrEmptyResponse is returned when the model produced no usable text.
	ErrEmptyResponse = errors.New("assistant: empty model response")
	// ErrNotConfigured is returned by Ask when no model provider is configured.
	ErrNotConfigured = errors.New("assistant: no model provider configured")
)
