package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	// ErrInvalid is the inner error for missing or malformed input. Converts to a 400.
	ErrInvalid = errors.New("invalid argument")
	// ErrNotFound is the inner error for references that do not resolve. Converts to a 404.
	ErrNotFound = errors.New("not found")
	// ErrNotPermitted is the inner error for configurations that exist but are not available to
	// the requesting user and project. Converts to a 403.
	ErrNotPermitted = errors.New("not permitted")
)

// AsValidationError returns an error that wraps ErrInvalid, so that errors.Is can identify it.
func AsValidationError(msg string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalid, msg, args...)
}

// AsErrNotFound returns an error that wraps ErrNotFound, so that errors.Is can identify it.
func AsErrNotFound(msg string, args ...interface{}) error {
	return errors.Wrapf(ErrNotFound, msg, args...)
}

// AsErrNotPermitted returns an error that wraps ErrNotPermitted, so that errors.Is can identify
// it.
func AsErrNotPermitted(msg string, args ...interface{}) error {
	return errors.Wrapf(ErrNotPermitted, msg, args...)
}

// APIErr2GRPC converts internal api error categories into grpc status.Errors.
func APIErr2GRPC(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInvalid):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, ErrNotPermitted):
		return status.Error(codes.PermissionDenied, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// HTTPStatus returns the HTTP status code for an internal api error category.
func HTTPStatus(err error) int {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		return he.Code
	case errors.Is(err, ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNotPermitted):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// JSONErrorHandler sends a JSON response with a single "message" key containing the error message.
func JSONErrorHandler(err error, c echo.Context) {
	code := HTTPStatus(err)
	var msg interface{} = err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg = he.Message
	}
	if code >= 500 {
		c.Logger().Error(err)
	}
	if c.Response().Committed {
		return
	}
	// For the HEAD method, the server MUST NOT return a message-body in the response.
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, map[string]interface{}{"message": fmt.Sprint(msg)})
	}
	if err != nil {
		c.Logger().Error(err)
	}
}
