package errs

// Error is a constant error value shared by the server and the client.
type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrInvalidCredentials = Error("invalid credentials")
	ErrUnauthorized       = Error("unauthorized")
	ErrNotFound           = Error("not found")
	ErrUploadFailure      = Error("upload failed")
	ErrInvalidCursor      = Error("invalid drawing id")
	ErrNetworkFailure     = Error("network failure")
	ErrInvalidUpload      = Error("drawing must be a JPEG or PNG image")
	ErrRateLimited        = Error("rate limit exceeded")
)

// Code returns the machine-readable code used in JSON error bodies.
func Code(err error) string {
	switch err {
	case ErrInvalidCredentials:
		return "invalid_credentials"
	case ErrUnauthorized:
		return "unauthorized"
	case ErrNotFound:
		return "not_found"
	case ErrUploadFailure:
		return "upload_failure"
	case ErrInvalidCursor:
		return "invalid_cursor"
	case ErrNetworkFailure:
		return "network_failure"
	case ErrInvalidUpload:
		return "invalid_upload"
	case ErrRateLimited:
		return "rate_limited"
	}
	return "internal"
}
