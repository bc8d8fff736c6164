package config

import (
	"errors"
	"fmt"
)

// Errors returned by configuration loading and validation.
var (
	// ErrMissingValue indicates a required setting is empty.
	ErrMissingValue = errors.New("missing value")

	// ErrBadValue indicates a setting outside its valid range.
	ErrBadValue = errors.New("bad value")
)

// ParseError reports an unparseable configuration file.
type ParseError struct {
	Path    string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
