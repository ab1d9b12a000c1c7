package service

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindInternal},
		{"plain", errors.New("boom"), KindInternal},
		{"user not found", ErrUserNotFound, KindNotFound},
		{"wrapped article not found", fmt.Errorf("ctx: %w", ErrArticleNotFound), KindNotFound},
		{"email taken", ErrEmailTaken, KindConflict},
		{"credentials", ErrInvalidCredentials, KindUnauthorized},
		{"bad request", badRequest("failed to create user, a@b.c", errors.New("db")), KindBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestError_MessageAndUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("insert failed")
	err := badRequest("failed to create user, a@b.c", cause)

	if err.Error() != "failed to create user, a@b.c" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("cause should be reachable with errors.Is")
	}
	if KindBadRequest.String() != "BAD_REQUEST" || Kind(99).String() != "INTERNAL_ERROR" {
		t.Error("unexpected kind codes")
	}
}
