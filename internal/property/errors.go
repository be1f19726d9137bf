package property

import "errors"

var (
	// ErrInvalidValue indicates a property value that cannot be parsed
	ErrInvalidValue = errors.New("invalid property value")

	// ErrOutOfRange indicates a property value outside its bounds
	ErrOutOfRange = errors.New("property value out of range")
)
