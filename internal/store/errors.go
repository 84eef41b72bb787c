package store

import (
	"errors"
	"fmt"
)

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrInvalidInput       = errors.New("invalid input")
	// ErrChatHasMessages is returned when a chat is deleted before its messages.
	ErrChatHasMessages = errors.New("chat still has messages")
)

func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}
