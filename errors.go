package pertpy

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidUnit is matched by every *InvalidUnitError
	ErrInvalidUnit = errors.New("invalid unit")
	// ErrDegenerateRange is matched by every *DegenerateRangeError
	ErrDegenerateRange = errors.New("degenerate range")
	// ErrKeyNotFound is matched by every *KeyNotFoundError
	ErrKeyNotFound = errors.New("key not found")
	// ErrShape is matched by every *ShapeError
	ErrShape = errors.New("bad shape")
)

// InvalidUnitError reports a unit name missing from the relevant synonym
// table.
type InvalidUnitError struct {
	Name string
}

func (e *InvalidUnitError) Error() string {
	return fmt.Sprintf("invalid unit: %q", e.Name)
}

func (e *InvalidUnitError) Is(target error) bool { return target == ErrInvalidUnit }

// DegenerateRangeError reports an attempt to rescale values that all equal
// Value.
type DegenerateRangeError struct {
	Value float64
}

func (e *DegenerateRangeError) Error() string {
	return fmt.Sprintf("cannot rescale zero-width range at %g", e.Value)
}

func (e *DegenerateRangeError) Is(target error) bool { return target == ErrDegenerateRange }

// KeyNotFoundError reports a lookup or removal of a name that is not
// present.
type KeyNotFoundError struct {
	Key string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("key not found: %q", e.Key)
}

func (e *KeyNotFoundError) Is(target error) bool { return target == ErrKeyNotFound }

// ShapeError reports an array that cannot be read as a list of 3-vectors,
// or one whose length disagrees with its companion arrays.
type ShapeError struct {
	Rows, Cols int
	Want       string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("bad shape %dx%d, want %s", e.Rows, e.Cols, e.Want)
}

func (e *ShapeError) Is(target error) bool { return target == ErrShape }
