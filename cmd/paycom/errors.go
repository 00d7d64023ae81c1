package main

import (
	"errors"
	"fmt"

	apperrors "github.com/Mendozape/PayComMobile/internal/errors"
)

var (
	errNotLoggedIn = apperrors.Unauthenticated("Not logged in. Run: paycom login -email <email>")
	errNoProfile   = &apperrors.AppError{Code: apperrors.ErrCodeProfileSync, Message: "Signed in, but the profile is not cached yet. Run: paycom start"}
	errDenied      = errors.New("permission denied")
)

// usageError marks bad arguments; run reports them with exit status 2.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...any) error {
	return usageError{fmt.Errorf(format, args...)}
}

func isUsage(err error) bool {
	var u usageError
	return errors.As(err, &u)
}

// userMessage prefers the AppError message, which omits the cause chain.
func userMessage(err error) string {
	return apperrors.UserMessage(err, err.Error())
}
