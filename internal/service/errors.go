package service

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrDuplicateEmail is the signup failure reason when the email is taken.
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrInvalidCredentials is reported by callers when Login returns false.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrNoSession is returned by ticket mutations while nobody is logged in.
	ErrNoSession = errors.New("no active session")
	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("validation failed")
)

// ValidationError lists per-field problems with caller input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

type fieldErrors map[string]string

func (f fieldErrors) add(field, msg string) {
	if _, ok := f[field]; !ok {
		f[field] = msg
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}
