package config

import (
	"errors"
	"fmt"

	"github.com/json2vars-setter/json2vars/pkg/jsonschema"
)

// Kind classifies why a matrix file was rejected.
type Kind int

const (
	// KindIO means the file could not be opened or read.
	KindIO Kind = iota + 1
	// KindSyntax means the content is not well-formed JSON.
	KindSyntax
	// KindShape means a required field is missing or has the wrong type.
	KindShape
	// KindStrict means the document breaks a strict-mode rule.
	KindStrict
)

var (
	ErrIO     = errors.New("cannot read config file")
	ErrSyntax = errors.New("invalid JSON")
	ErrShape  = errors.New("invalid matrix shape")
	ErrStrict = errors.New("strict mode violation")
)

// String returns the name used in log fields.
func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindSyntax:
		return "syntax"
	case KindShape:
		return "shape"
	case KindStrict:
		return "strict"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindIO:
		return ErrIO
	case KindSyntax:
		return ErrSyntax
	case KindShape:
		return ErrShape
	case KindStrict:
		return ErrStrict
	default:
		return nil
	}
}

// ParseError reports a rejected matrix file.
type ParseError struct {
	// Path is the file (or source name) that was parsed
	Path string

	// Kind classifies the failure
	Kind Kind

	// Err is the underlying cause
	Err error
}

// Error returns the error message.
func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Kind.sentinel(), e.Err)
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel error of the failure kind.
func (e *ParseError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// Violations returns the individual schema violations of a shape failure.
func (e *ParseError) Violations() []error {
	var errs jsonschema.ValidationErrors
	if errors.As(e.Err, &errs) {
		return errs
	}
	return nil
}

func newParseError(path string, kind Kind, err error) *ParseError {
	return &ParseError{Path: path, Kind: kind, Err: err}
}
