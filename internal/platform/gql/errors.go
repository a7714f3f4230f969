package gql

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/domain/encounter"
	"github.com/clinic/clinic/internal/domain/identity"
)

const (
	codeConflict       = "CONFLICT"
	codeNotFound       = "NOT_FOUND"
	codeBadCredentials = "INVALID_CREDENTIAL"
	codeInvalidInput   = "INVALID_INPUT"
	codeInternal       = "INTERNAL"
)

// clientError carries a message that is safe to show to API clients.
type clientError struct {
	msg  string
	code string
}

func (e *clientError) Error() string { return e.msg }

// Extensions exposes a machine-readable code next to the message.
func (e *clientError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": e.code}
}

var (
	errDoctorNotFound = &clientError{msg: "Doctor not found.", code: codeNotFound}
	errUnknownUser    = &clientError{msg: "User with the provided full name does not exist", code: codeNotFound}
	errWrongPassword  = &clientError{msg: "Wrong password", code: codeBadCredentials}
	errInternal       = &clientError{msg: "internal error", code: codeInternal}
)

// resolveErr turns a service error into the error returned to the client.
// Anything not recognised is logged and reported as an internal error.
func resolveErr(ctx context.Context, op string, err error) error {
	var ce *identity.ConflictError
	switch {
	case errors.As(err, &ce):
		return &clientError{msg: "A " + ce.Error() + ".", code: codeConflict}
	case errors.Is(err, identity.ErrConflict):
		return &clientError{msg: "A record with these details already exists.", code: codeConflict}
	case errors.Is(err, encounter.ErrDoctorNotFound):
		return errDoctorNotFound
	case errors.Is(err, identity.ErrInvalidCredential):
		return errWrongPassword
	case errors.Is(err, identity.ErrNotFound):
		return errUnknownUser
	case errors.Is(err, identity.ErrInvalidInput):
		return &clientError{msg: upperFirst(err.Error()), code: codeInvalidInput}
	}

	zerolog.Ctx(ctx).Error().Err(err).Str("operation", op).Msg("graphql resolver failed")
	return errInternal
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
