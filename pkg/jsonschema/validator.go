package jsonschema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidationErrors represents a collection of validation errors
type ValidationErrors []error

// Error implements the error interface for ValidationErrors
func (ve ValidationErrors) Error() string {
	msgs := make([]string, 0, len(ve))
	for _, err := range ve {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Violation is a single schema violation at an instance location.
type Violation struct {
	// Location is the JSON pointer of the offending value ("" is the document root)
	Location string

	// Message describes what is wrong with the value
	Message string
}

// Error returns the error message.
func (v Violation) Error() string {
	loc := v.Location
	if loc == "" {
		loc = "/"
	}
	return fmt.Sprintf("validation error at %s: %s", loc, v.Message)
}

// Schema is a compiled JSON Schema. It is safe for concurrent use.
type Schema struct {
	schema *jsonschema.Schema
}

// Compile compiles schemaStr under the given resource name.
func Compile(name, schemaStr string) (*Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	if err := compiler.AddResource(name, strings.NewReader(schemaStr)); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}

	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}

	return &Schema{schema: schema}, nil
}

// ValidateValue validates a decoded JSON value (as produced by
// encoding/json into an interface{}, with or without UseNumber) and
// returns every violation found.
// A nil result means the value is valid.
func (s *Schema) ValidateValue(v interface{}) ValidationErrors {
	err := s.schema.Validate(v)
	if err == nil {
		return nil
	}

	var validationErr *jsonschema.ValidationError
	if errors.As(err, &validationErr) {
		return extractValidationErrors(validationErr)
	}
	return ValidationErrors{err}
}

// extractValidationErrors flattens the cause tree into its leaf violations
func extractValidationErrors(err *jsonschema.ValidationError) ValidationErrors {
	if len(err.Causes) == 0 {
		return ValidationErrors{Violation{Location: err.InstanceLocation, Message: err.Message}}
	}

	var errs ValidationErrors
	for _, cause := range err.Causes {
		errs = append(errs, extractValidationErrors(cause)...)
	}
	return errs
}
