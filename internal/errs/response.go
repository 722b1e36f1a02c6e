package errs

import (
	"errors"

	"github.com/gin-gonic/gin"
)

// Detail is one entry of an error response body.
type Detail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Response is the body of every non-2xx API response.
type Response struct {
	Errors []Detail `json:"errors"`
}

// Body builds the response for err. Errors outside the package taxonomy are
// reported with a generic message so internals do not leak to callers.
func Body(err error) Response {
	var e Error
	if errors.As(err, &e) {
		return Response{Errors: []Detail{{Code: Code(e), Message: e.Error()}}}
	}
	return Response{Errors: []Detail{{Code: "internal", Message: "internal server error"}}}
}

// Abort writes the error body with status and stops the handler chain.
func Abort(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, Body(err))
}

// FromCode maps a code from a response body back to its error value.
func FromCode(code string) error {
	for _, e := range []Error{
		ErrInvalidCredentials, ErrUnauthorized, ErrNotFound, ErrUploadFailure,
		ErrInvalidCursor, ErrNetworkFailure, ErrInvalidUpload, ErrRateLimited,
	} {
		if Code(e) == code {
			return e
		}
	}
	return nil
}
