package descriptor

import "errors"

// Rejection reasons reported by Build.
var (
	// ErrUnknownKind indicates the item type did not parse to a known kind.
	ErrUnknownKind = errors.New("descriptor: unknown kind")

	// ErrMissingName indicates the item name is empty or whitespace.
	ErrMissingName = errors.New("descriptor: name is required")

	// ErrMissingValue indicates the url or connection string is empty or whitespace.
	ErrMissingValue = errors.New("descriptor: url or connection string is required")

	// ErrDuplicateName indicates an earlier item already uses the same name.
	ErrDuplicateName = errors.New("descriptor: duplicate name")

	// ErrMissingBucket indicates an S3 item without a bucket name.
	ErrMissingBucket = errors.New("descriptor: s3 bucket name is required")

	// ErrMissingAccessKey indicates an S3 item without an access key.
	ErrMissingAccessKey = errors.New("descriptor: s3 access key is required")

	// ErrMissingSecretKey indicates an S3 item without a secret key.
	ErrMissingSecretKey = errors.New("descriptor: s3 secret key is required")
)
