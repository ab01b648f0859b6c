package configuration

import "errors"

// ErrInvalidValue is returned when a configuration key holds a value that
// can not be used.
var ErrInvalidValue = errors.New("invalid configuration value")
