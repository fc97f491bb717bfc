package probe

import "errors"

var (
	// ErrEndpointNotConfigured indicates a probe without a target.
	ErrEndpointNotConfigured = errors.New("probe: endpoint not configured")

	// ErrInvalidURL indicates a target that could not be parsed.
	ErrInvalidURL = errors.New("probe: invalid url")

	// ErrAllAttemptsFailed indicates the main URL and every fallback failed.
	ErrAllAttemptsFailed = errors.New("probe: all attempts failed")

	// ErrNotServing indicates a gRPC health response other than SERVING.
	ErrNotServing = errors.New("probe: service not serving")

	// ErrCertificateExpired indicates a missing or expired leaf certificate.
	ErrCertificateExpired = errors.New("probe: certificate invalid or expired")
)
