package service

import (
	"errors"
	"fmt"

	"condocheck/internal/repository"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidInput)
}

// lookup maps a storage miss to ErrNotFound and wraps other errors with what.
func lookup(err error, what string) error {
	if err == nil {
		return nil
	}
	if repository.IsNotFound(err) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("find %s: %w", what, err)
}
