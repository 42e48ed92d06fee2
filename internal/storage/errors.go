package storage

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel kinds for store errors. Backends wrap these so callers can
// classify failures with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("record not found")
)

// NotFound returns ErrNotFound annotated with the missing id.
func NotFound(id int64) error {
	return fmt.Errorf("%w: no record with id %d", ErrNotFound, id)
}

// ValidateName rejects names that are empty once surrounding whitespace
// is removed.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name must not be empty", ErrValidation)
	}
	return nil
}

// ValidateAge rejects negative ages.
func ValidateAge(age int) error {
	if age < 0 {
		return fmt.Errorf("%w: age must be >= 0, got %d", ErrValidation, age)
	}
	return nil
}
