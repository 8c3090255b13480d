package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{Unauthorized("no token"), http.StatusUnauthorized},
		{Forbidden("role denies"), http.StatusForbidden},
		{NotFound("expense not found"), http.StatusNotFound},
		{Validation("amount must be positive"), http.StatusBadRequest},
		{Conflict("budget already exists"), http.StatusConflict},
		{Internal(errors.New("disk full")), http.StatusInternalServerError},
		{errors.New("plain error"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestHTTPStatus_Wrapped(t *testing.T) {
	err := fmt.Errorf("loading budget: %w", NotFound("budget not found"))
	if got := HTTPStatus(err); got != http.StatusNotFound {
		t.Errorf("HTTPStatus(wrapped) = %d, want 404", got)
	}
}

func TestPublicMessage(t *testing.T) {
	if got := PublicMessage(Validation("bad date")); got != "bad date" {
		t.Errorf("PublicMessage = %q, want %q", got, "bad date")
	}
	if got := PublicMessage(Internal(errors.New("sql: locked"))); got != "internal server error" {
		t.Errorf("PublicMessage(internal) = %q, leaked cause", got)
	}
	if got := PublicMessage(errors.New("raw")); got != "internal server error" {
		t.Errorf("PublicMessage(plain) = %q, leaked cause", got)
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("constraint failed")
	err := Wrap(KindConflict, "duplicate member", cause)
	if !errors.Is(err, cause) {
		t.Error("wrapped cause not reachable via errors.Is")
	}
	if err.Error() != "duplicate member: constraint failed" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestIsKind(t *testing.T) {
	err := NotFound("missing")
	if !IsKind(err, KindNotFound) {
		t.Error("IsKind(NotFound, KindNotFound) = false")
	}
	if IsKind(err, KindConflict) {
		t.Error("IsKind(NotFound, KindConflict) = true")
	}
	if IsKind(errors.New("plain"), KindNotFound) {
		t.Error("IsKind(plain, KindNotFound) = true")
	}
}
