package remote

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/boulin/eventverse/internal/common"
)

var ErrUnavailable = errors.New("server unavailable")

// Error is a failed remote call. StatusCode is the HTTP status, or 0 when
// the request never got a response.
type Error struct {
	Message    string
	StatusCode int
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.StatusCode)
}

// Is lets callers match remote failures against the shared sentinels.
func (e *Error) Is(target error) bool {
	switch e.StatusCode {
	case 0:
		return target == ErrUnavailable
	case http.StatusBadRequest:
		return target == common.ErrorValidation
	case http.StatusUnauthorized:
		return target == common.ErrorUnauthorized
	case http.StatusForbidden:
		return target == common.ErrorForbidden
	case http.StatusNotFound:
		return target == common.ErrorNotFound
	case http.StatusConflict:
		return target == common.ErrorConflict
	default:
		return e.StatusCode >= 500 && target == common.ErrorInternal
	}
}

func transportError(err error) *Error {
	return &Error{Message: err.Error(), StatusCode: 0}
}
