package embedding

import "errors"

// ErrNoProvider is returned when no embedding provider is configured; the
// similarity chain treats it as a signal to fall through.
var ErrNoProvider = errors.New("no embedding provider configured")
