package api

import (
	"errors"
	"log"

	timerservice "legal-case-platform/backend/internal/timer/service"
	tsservice "legal-case-platform/backend/internal/timesheet/service"
)

// CodeFor maps a service error to its envelope code. Unknown errors collapse
// to INTERNAL_ERROR so callers can tell expected failures from bugs.
func CodeFor(err error) string {
	switch {
	case errors.Is(err, tsservice.ErrValidation):
		return CodeValidation
	case errors.Is(err, timerservice.ErrNotFound), errors.Is(err, tsservice.ErrNotFound):
		return CodeNotFound
	case errors.Is(err, timerservice.ErrInvalidState):
		return CodeInvalidState
	case errors.Is(err, tsservice.ErrPersistence):
		return CodePersistence
	default:
		return CodeInternal
	}
}

// Recover converts a panic into an INTERNAL_ERROR envelope. Handlers install
// it with defer on their named return value so panics never cross the port
// boundary.
func Recover[T any](env *Envelope[T]) {
	if r := recover(); r != nil {
		log.Printf("api: recovered panic: %v", r)
		*env = Fail[T](CodeInternal, "internal error")
	}
}

// FailErr returns a failure envelope for err. Internal errors are logged and
// reported with a generic message so implementation detail does not leak.
func FailErr[T any](err error) Envelope[T] {
	code := CodeFor(err)
	if code == CodeInternal {
		log.Printf("api: internal error: %v", err)
		return Fail[T](code, "internal error")
	}
	return Fail[T](code, err.Error())
}
