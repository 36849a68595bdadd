/*
Package httperrors defines an error wrapper that carries an HTTP status code,
a stable error ID and a message safe to show to the submitter of a form.
*/
package httperrors

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

type Error struct {
	id         string
	statusCode int
	pubmsg     string
	cause      error
}

func (err *Error) Unwrap() error {
	return err.cause
}

func (err *Error) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "%s [HTTP %d]", err.id, err.statusCode)
	if err.pubmsg != "" {
		buf.WriteString(" pubmsg=")
		buf.WriteString(strconv.Quote(err.pubmsg))
	}
	if err.cause != nil {
		buf.WriteString(" cause: ")
		buf.WriteString(err.cause.Error())
	}
	return buf.String()
}

func (err *Error) HTTPCode() int       { return err.statusCode }
func (err *Error) ErrorID() string     { return err.id }
func (err *Error) PublicError() string { return err.pubmsg }

func (err *Error) Is(target error) bool {
	if e, ok := target.(codeAndID); ok {
		return e.ErrorID() == err.id && e.HTTPCode() == err.statusCode
	}
	return false
}

type codeAndID interface {
	HTTPCode() int
	ErrorID() string
}

// BaseError is a sentinel for a class of errors; match with errors.Is.
type BaseError struct {
	id         string
	statusCode int
}

func Define(statusCode int, id string) BaseError {
	return BaseError{id, statusCode}
}

func (base BaseError) Error() string {
	return fmt.Sprintf("%s [HTTP %d]", base.id, base.statusCode)
}

func (base BaseError) HTTPCode() int       { return base.statusCode }
func (base BaseError) ErrorID() string     { return base.id }
func (base BaseError) PublicError() string { return "" }

func (base BaseError) Is(err error) bool {
	if e, ok := err.(codeAndID); ok {
		return e.ErrorID() == base.id && e.HTTPCode() == base.statusCode
	}
	return false
}

var (
	/*
		Unavailable signals an unexpected failure on our side (HTTP 500),
		e.g. the token store is unreachable or the form definition is broken.
	*/
	Unavailable = Define(http.StatusInternalServerError, "unavail")

	/*
		BadRequest signals a request body that cannot be parsed at all.
		Invalid field values are not bad requests, see Invalid.
	*/
	BadRequest = Define(http.StatusBadRequest, "bad_request")

	NotFound         = Define(http.StatusNotFound, "not_found")
	MethodNotAllowed = Define(http.StatusMethodNotAllowed, "bad_request")

	// Invalid signals a submission that failed validation; the form is
	// rendered back with its errors.
	Invalid = Define(http.StatusUnprocessableEntity, "invalid_form")

	// TooManyRequests signals a client over its submission rate.
	TooManyRequests = Define(http.StatusTooManyRequests, "too_many_requests")
)

func (base BaseError) Msgf(format string, args ...any) *Error {
	return base.Msg(fmt.Sprintf(format, args...))
}

func (base BaseError) Msg(pubmsg string) *Error {
	return &Error{id: base.id, statusCode: base.statusCode, pubmsg: pubmsg}
}

func (base BaseError) Wrap(cause error) error {
	return base.WrapMsg(cause, "")
}

// WrapMsg attaches base's code and ID to cause. Errors that already carry an
// HTTP code are returned as is.
func (base BaseError) WrapMsg(cause error, pubmsg string) error {
	if cause == nil {
		return nil
	}
	var e *Error
	if errors.As(cause, &e) {
		return cause
	}
	var b BaseError
	if errors.As(cause, &b) {
		return &Error{id: b.id, statusCode: b.statusCode, pubmsg: pubmsg, cause: cause}
	}
	return &Error{id: base.id, statusCode: base.statusCode, pubmsg: pubmsg, cause: cause}
}

// HTTPMessage is the text to show to the client: the public message if any,
// otherwise the status text.
func HTTPMessage(err error) string {
	if err == nil {
		return ""
	}
	var e interface{ PublicError() string }
	if errors.As(err, &e) {
		if str := e.PublicError(); str != "" {
			return str
		}
	}
	return http.StatusText(HTTPCode(err))
}

func ErrorID(err error) string {
	var e codeAndID
	if errors.As(err, &e) {
		return e.ErrorID()
	}
	return ""
}

// HTTPCode returns the status code carried by err, 500 for plain errors and 0
// for nil.
func HTTPCode(err error) int {
	if err == nil {
		return 0
	}
	var e interface{ HTTPCode() int }
	if errors.As(err, &e) {
		return e.HTTPCode()
	}
	return http.StatusInternalServerError
}

func Is4xx(err error) bool {
	code := HTTPCode(err)
	return code >= 400 && code <= 499
}

func Is5xx(err error) bool {
	code := HTTPCode(err)
	return code >= 500 && code <= 599
}
