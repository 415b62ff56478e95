package errcodes

import (
	"fmt"
	"net/http"
)

type Error struct {
	HTTPCode int
	Message  string
	Code     string
}

func (err *Error) Error() string {
	return err.Message
}

func (err *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return te.HTTPCode == err.HTTPCode &&
		te.Message == err.Message &&
		te.Code == err.Code
}

// NotFound returns a 404 error naming the missing resource, e.g.
// "Audiobook not found".
func NotFound(resource string) error {
	return &Error{
		http.StatusNotFound,
		resource + " not found",
		"not_found",
	}
}

// UnsupportedMediaType is returned when a body arrives that isn't JSON.
func UnsupportedMediaType() error {
	return &Error{
		http.StatusUnsupportedMediaType,
		"Unsupported Media Type",
		"unsupported_media_type",
	}
}

// UnknownParameter names a JSON key or query parameter the payload doesn't declare.
func UnknownParameter(param string) error {
	return &Error{
		http.StatusBadRequest,
		fmt.Sprintf("Unknown Parameter %q", param),
		"unknown_parameter",
	}
}

// ValidationTypeError is returned when a JSON value has the wrong type for its field.
func ValidationTypeError(msg string) error {
	return &Error{
		http.StatusBadRequest,
		msg,
		"validation_type_error",
	}
}

// ValidationError is returned for payloads that decode fine but break a rule,
// like a missing title.
func ValidationError(msg string) error {
	return &Error{
		http.StatusBadRequest,
		msg,
		"validation_error",
	}
}

// MalformedPayload is returned for bodies that aren't valid JSON.
func MalformedPayload() error {
	return &Error{
		http.StatusBadRequest,
		"Malformed Payload",
		"malformed_payload",
	}
}

// EmptyRequestBody is returned when a POST or PUT arrives with no body.
func EmptyRequestBody() error {
	return &Error{
		http.StatusBadRequest,
		"Request body can't be empty.",
		"empty_request_body",
	}
}
