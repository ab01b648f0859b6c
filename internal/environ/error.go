package environ

import "errors"

var (
	// ErrEnvSet is returned when the platform refused to set a variable.
	ErrEnvSet = errors.New("failed to set environment variable")

	// ErrEnvUnset is returned when the platform refused to unset a variable.
	ErrEnvUnset = errors.New("failed to unset environment variable")

	// ErrNotSet is returned when deleting a variable that is not set.
	ErrNotSet = errors.New("environment variable is not set")
)
