package services

import (
	"errors"
	"fmt"
)

var (
	ErrProjectNotFound      = errors.New("project not found")
	ErrTaskNotFound         = errors.New("task not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrNotificationNotFound = errors.New("notification not found")
)

// InputError marks a user-correctable input problem, so handlers can
// answer 400 with the message instead of treating it as an internal
// failure.
type InputError struct {
	Msg string
}

func (e *InputError) Error() string { return e.Msg }

func inputErr(format string, args ...interface{}) error {
	return &InputError{Msg: fmt.Sprintf(format, args...)}
}
