package apperr

import (
  "errors"
  "fmt"
  "net/http"
  "testing"
)

func TestStatusMapping(t *testing.T) {
  cases := []struct {
    name string
    err  *Error
    want int
  }{
    {"not found", NotFound("course_not_found", "course not found"), http.StatusNotFound},
    {"conflict", Conflict("already_enrolled", "already enrolled"), http.StatusConflict},
    {"validation", Validation("invalid_body", "bad input", nil), http.StatusBadRequest},
    {"unauthorized", Unauthorized("invalid_credentials", "bad credentials"), http.StatusUnauthorized},
    {"forbidden", Forbidden("not_owner", "not yours"), http.StatusForbidden},
    {"internal", Internal(errors.New("boom")), http.StatusInternalServerError},
  }
  for _, tc := range cases {
    t.Run(tc.name, func(t *testing.T) {
      if got := tc.err.Status(); got != tc.want {
        t.Errorf("Status() = %d, want %d", got, tc.want)
      }
    })
  }
}

func TestAsUnwrapsThroughWrapping(t *testing.T) {
  orig := NotFound("user_not_found", "user not found")
  wrapped := fmt.Errorf("loading profile: %w", orig)

  ae := As(wrapped)
  if ae.Kind != KindNotFound || ae.Code != "user_not_found" {
    t.Fatalf("As(wrapped) = %+v, want original not-found", ae)
  }
}

func TestAsWrapsUnknownAsInternal(t *testing.T) {
  ae := As(errors.New("disk on fire"))
  if ae.Kind != KindInternal {
    t.Fatalf("kind = %v, want internal", ae.Kind)
  }
  if ae.Msg != "internal server error" {
    t.Errorf("message leaks detail: %q", ae.Msg)
  }
}

func TestIsKind(t *testing.T) {
  err := fmt.Errorf("wrapped: %w", Conflict("attempts_exceeded", "too many attempts"))
  if !IsKind(err, KindConflict) {
    t.Error("IsKind missed wrapped conflict")
  }
  if IsKind(err, KindNotFound) {
    t.Error("IsKind matched wrong kind")
  }
  if IsKind(errors.New("plain"), KindConflict) {
    t.Error("IsKind matched non-app error")
  }
}
