package clinic

import "errors"

// ErrNotConfigured is returned by a provider that has no settings for the clinic.
var ErrNotConfigured = errors.New("clinic: settings not configured")
