// internal/models/errors.go
package models

import (
	"errors"
	"fmt"
)

// Sentinel errors used across layers.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnknownTier       = errors.New("unknown tier")
	ErrUnknownPlan       = errors.New("unknown plan")
	ErrInvalidStep       = errors.New("invalid step transition")
	ErrStepBlocked       = errors.New("step requirements not met")
	ErrSessionNotFound   = errors.New("session not found")
	ErrNotSelected       = errors.New("ingredient not in meal")
	ErrUnknownIngredient = errors.New("ingredient not in cuisine catalog")
)

// FieldError reports a single invalid form field. It matches ErrInvalidInput.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *FieldError) Is(target error) bool {
	return target == ErrInvalidInput
}
