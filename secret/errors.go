package secret

import "errors"

var (
	// ErrMissingEnv indicates a ${VAR} reference to an unset variable.
	ErrMissingEnv = errors.New("secret: missing environment variable")

	// ErrProviderNotRegistered indicates a reference to an unknown provider.
	ErrProviderNotRegistered = errors.New("secret: provider not registered")

	// ErrEmptySecret indicates a provider returned an empty value in strict mode.
	ErrEmptySecret = errors.New("secret: empty value")

	// ErrInvalidRef indicates a malformed or unsafe reference.
	ErrInvalidRef = errors.New("secret: invalid reference")

	// ErrInvalidRegistration indicates a blank provider name or nil factory.
	ErrInvalidRegistration = errors.New("secret: invalid provider registration")
)
