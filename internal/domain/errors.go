package domain

import (
	"errors"
	"fmt"
)

// Виды ошибок, которые видит клиент. HTTP слой сопоставляет их со статусами.
var (
	ErrValidation      = errors.New("validation error")
	ErrConflict        = errors.New("conflict")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
)

// Error ошибка бизнес-логики с сообщением для клиента.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// NewError создает ошибку заданного вида.
func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Message возвращает клиентское сообщение, если err это *Error.
func Message(err error) (string, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Message, true
	}
	return "", false
}
