package apperr

import (
  "errors"
  "fmt"
  "net/http"
)

type Kind int

const (
  KindInternal Kind = iota
  KindNotFound
  KindConflict
  KindValidation
  KindUnauthorized
  KindForbidden
)

// Error is the service-level error taxonomy. Services return these and
// handlers map them onto HTTP statuses; unexpected failures stay
// KindInternal and are reported generically.
type Error struct {
  Kind   Kind
  Code   string
  Msg    string
  Fields map[string]string
  Err    error
}

func (e *Error) Error() string {
  if e == nil {
    return ""
  }
  if e.Msg != "" {
    return e.Msg
  }
  if e.Err != nil {
    return e.Err.Error()
  }
  return e.Code
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Status() int {
  switch e.Kind {
  case KindNotFound:
    return http.StatusNotFound
  case KindConflict:
    return http.StatusConflict
  case KindValidation:
    return http.StatusBadRequest
  case KindUnauthorized:
    return http.StatusUnauthorized
  case KindForbidden:
    return http.StatusForbidden
  default:
    return http.StatusInternalServerError
  }
}

func NotFound(code, format string, args ...interface{}) *Error {
  return &Error{Kind: KindNotFound, Code: code, Msg: fmt.Sprintf(format, args...)}
}

func Conflict(code, format string, args ...interface{}) *Error {
  return &Error{Kind: KindConflict, Code: code, Msg: fmt.Sprintf(format, args...)}
}

func Validation(code, msg string, fields map[string]string) *Error {
  return &Error{Kind: KindValidation, Code: code, Msg: msg, Fields: fields}
}

func Unauthorized(code, msg string) *Error {
  return &Error{Kind: KindUnauthorized, Code: code, Msg: msg}
}

func Forbidden(code, msg string) *Error {
  return &Error{Kind: KindForbidden, Code: code, Msg: msg}
}

func Internal(err error) *Error {
  return &Error{Kind: KindInternal, Code: "internal", Msg: "internal server error", Err: err}
}

// As unwraps err into an *Error when possible, else wraps it as internal.
func As(err error) *Error {
  var ae *Error
  if errors.As(err, &ae) {
    return ae
  }
  return Internal(err)
}

func IsKind(err error, kind Kind) bool {
  var ae *Error
  if errors.As(err, &ae) {
    return ae.Kind == kind
  }
  return false
}
