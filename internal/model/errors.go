package model

import (
	"errors"
	"fmt"
)

var (
	// ErrDisposed is returned by operations on a disposed object.
	ErrDisposed = errors.New("object disposed")

	// ErrGameRebind is returned when an object bound to one game is bound to another.
	ErrGameRebind = errors.New("object already bound to another game")

	// ErrUnknownField is returned by field tables for a name they do not hold.
	ErrUnknownField = errors.New("unknown field")

	// ErrNoRoom is returned when a location cannot accept another unit.
	ErrNoRoom = errors.New("no room at location")

	// ErrCarrierCycle is returned when a unit would end up aboard itself.
	ErrCarrierCycle = errors.New("unit would carry itself")

	// ErrInsufficientGoods is returned when removing more goods than stored.
	ErrInsufficientGoods = errors.New("insufficient goods")

	// ErrNoUpgrade is returned when a building type has no upgrade.
	ErrNoUpgrade = errors.New("no upgrade available")
)

// FieldError reports a value that cannot be assigned to a named field.
type FieldError struct {
	Kind  string
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s field %s=%q: %v", e.Kind, e.Field, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
