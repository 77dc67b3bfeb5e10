package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidID        = errors.New("invalid id")
	ErrNameRequired     = errors.New("name is required")
	ErrEmailRequired    = errors.New("email is required")
	ErrInvalidAmount    = errors.New("amount must be a positive number")
	ErrReceiptsDisabled = errors.New("receipt storage is not configured")
)

func notFound(kind string) error {
	return fmt.Errorf("%s %w", kind, ErrNotFound)
}

// validID guards ids backed by a relational sequence or foreign key. Task ids
// are caller-assigned and take any integer.
func validID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: must be a positive integer", ErrInvalidID)
	}
	return nil
}
