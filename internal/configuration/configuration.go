// Package configuration implements reading of the application configuration
// from "KEY=VALUE" configuration files and the process environment.
package configuration

import (
	"strconv"
	"strings"
)

type genericConfigProvider interface {
	Read(filenames ...string) (envMap map[string]string, err error)
}

// Handler is the principal implementation for reading configuration.
type Handler struct {
	GenericHandler genericConfigProvider
}

// NewHandler returns a pointer to a new configuration [Handler].
func NewHandler(genericHandler genericConfigProvider) *Handler {
	return &Handler{
		GenericHandler: genericHandler,
	}
}

// ReadGeneric reads the given configuration files into a map (map[key]value).
func (c *Handler) ReadGeneric(filenames ...string) (map[string]string, error) {
	return c.GenericHandler.Read(filenames...) //nolint:wrapcheck
}

// MapKeyToString returns the value of key, or an empty string.
func (c *Handler) MapKeyToString(envMap map[string]string, key string) string {
	if value, exists := envMap[key]; exists {
		return strings.TrimSpace(value)
	}

	return ""
}

// MapKeyToInt returns the value of key as an int, or -1 if it is missing or
// not a number.
func (c *Handler) MapKeyToInt(envMap map[string]string, key string) int {
	value := c.MapKeyToString(envMap, key)
	if value == "" {
		return -1
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return -1
	}

	return intValue
}

// MapKeyToList returns the comma-separated values of key, without empty ones.
func (c *Handler) MapKeyToList(envMap map[string]string, key string) []string {
	var list []string

	for _, value := range strings.Split(c.MapKeyToString(envMap, key), ",") {
		if value = strings.TrimSpace(value); value != "" {
			list = append(list, value)
		}
	}

	return list
}
