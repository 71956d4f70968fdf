package dto

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"dtokit/src/core/domain"
	"dtokit/src/core/dto/rule"
)

var (
	// ErrInputType is returned when a value cannot be stored in its field.
	ErrInputType = errors.New("input type mismatch")

	// ErrUnknownFields is returned when a strict type receives undeclared keys.
	ErrUnknownFields = errors.New("unknown fields")

	// ErrValidation is returned when one or more field rules fail.
	ErrValidation = errors.New("validation failed")

	// ErrDefinition is returned for malformed DTO declarations.
	ErrDefinition = errors.New("invalid dto definition")
)

// InputTypeError reports a value of the wrong type for a field. It is raised
// eagerly, before any rule runs.
type InputTypeError struct {
	Type  string
	Field string

	// Expected describes the accepted values in client terms ("an integer"),
	// never as a Go type name.
	Expected string
	Got      string
	Err      error
}

func (e *InputTypeError) Error() string {
	msg := fmt.Sprintf("%s: field %q expects %s, got %s", e.Type, e.Field, e.Expected, e.Got)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap supports errors.Is against ErrInputType and domain.ErrInvalidInput.
func (e *InputTypeError) Unwrap() []error {
	errs := []error{ErrInputType, domain.ErrInvalidInput}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// UnknownFieldsError lists every input key a strict type did not declare.
type UnknownFieldsError struct {
	Type   string
	Fields []string
}

func (e *UnknownFieldsError) Error() string {
	return fmt.Sprintf("%s: unknown fields: %s", e.Type, strings.Join(e.Fields, ", "))
}

func (e *UnknownFieldsError) Unwrap() []error {
	return []error{ErrUnknownFields, domain.ErrInvalidInput}
}

// ValidationError aggregates every failing rule of one construction.
type ValidationError struct {
	Type string

	// Instance is the rejected, never returned, record.
	Instance any

	// Fields lists failing external field names in declaration order.
	Fields []string

	// Failures holds the failing results per field, in rule order.
	Failures map[string][]rule.Result
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		for _, r := range e.Failures[f] {
			parts = append(parts, f+" "+r.Message)
		}
	}
	return fmt.Sprintf("%s: validation failed: %s", e.Type, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() []error {
	return []error{ErrValidation, domain.ErrInvalidInput}
}

// Messages returns the failure messages keyed by field.
func (e *ValidationError) Messages() map[string][]string {
	out := make(map[string][]string, len(e.Failures))
	for f, results := range e.Failures {
		msgs := make([]string, len(results))
		for i, r := range results {
			msgs[i] = r.Message
		}
		out[f] = msgs
	}
	return out
}

// DefinitionError reports a malformed declaration such as an unknown rule or
// caster, or a default that does not parse.
type DefinitionError struct {
	Type  string
	Field string
	Err   error
}

func (e *DefinitionError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s.%s: %v", e.Type, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Type, e.Err)
}

func (e *DefinitionError) Unwrap() []error {
	return []error{ErrDefinition, e.Err}
}

// ItemError wraps the failure of one element of a batch.
type ItemError struct {
	Index int
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d: %v", e.Index, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }

// NestedError wraps the failure of a nested DTO with the external name of
// the field holding it.
type NestedError struct {
	Field string
	Err   error
}

func (e *NestedError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *NestedError) Unwrap() error { return e.Err }

// FieldMessages flattens any engine error into per-field messages, for
// callers that render errors. Batch and nested failures prefix keys with the
// item index or the holding field ("1.title", "home.city"). It returns nil
// for errors it does not know.
func FieldMessages(err error) map[string][]string {
	// walk from the outside in so prefixes keep their nesting order
	switch e := err.(type) {
	case nil:
		return nil
	case *ItemError:
		return prefixed(strconv.Itoa(e.Index), FieldMessages(e.Err))
	case *NestedError:
		return prefixed(e.Field, FieldMessages(e.Err))
	case *ValidationError:
		return e.Messages()
	case *UnknownFieldsError:
		out := make(map[string][]string, len(e.Fields))
		for _, f := range e.Fields {
			out[f] = []string{"is not allowed"}
		}
		return out
	case *InputTypeError:
		return map[string][]string{e.Field: {"must be " + e.Expected}}
	}
	return FieldMessages(errors.Unwrap(err))
}

func prefixed(prefix string, inner map[string][]string) map[string][]string {
	if inner == nil {
		return nil
	}
	out := make(map[string][]string, len(inner))
	for k, v := range inner {
		out[prefix+"."+k] = v
	}
	return out
}
