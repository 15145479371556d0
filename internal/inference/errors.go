package inference

import "fmt"

// APICallError represents a failure talking to the model backend.
type APICallError struct {
	Message string
	Cause   error
}

func (e *APICallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("API call failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("API call failed: %s", e.Message)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// ParseError represents a malformed model response.
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// SchemaError represents a model response that parsed but violated the
// expected payload shape.
type SchemaError struct {
	Schema string
	Fields []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("response violates schema %s: %v", e.Schema, e.Fields)
}
