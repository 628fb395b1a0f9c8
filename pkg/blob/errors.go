package blob

import "errors"

var (
	ErrInvalidConfig       = errors.New("invalid blob storage config")
	ErrFailedToLoadConfig  = errors.New("failed to load AWS config")
	ErrInvalidKey          = errors.New("invalid object key")
	ErrObjectNotFound      = errors.New("object not found")
	ErrBucketNotFound      = errors.New("bucket not found")
	ErrAccessDenied        = errors.New("access denied")
	ErrUnsupportedMIMEType = errors.New("unsupported MIME type")
)
