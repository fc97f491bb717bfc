package setting

import "errors"

var (
	// ErrNotFound indicates the settings document does not exist.
	ErrNotFound = errors.New("setting: document not found")

	// ErrInvalidDocument indicates the document could not be parsed.
	ErrInvalidDocument = errors.New("setting: invalid document")

	// ErrSecret indicates an item whose credentials could not be resolved.
	ErrSecret = errors.New("setting: unresolved secret")
)
