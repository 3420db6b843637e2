package cli

import "errors"

// Common CLI errors
var (
	ErrUnknownType   = errors.New("unknown type")
	ErrInvalidHeader = errors.New("header must be in the form key:value")
)
