package schema

import "fmt"

// ValidationError represents a single field validation failure.
type ValidationError struct {
	Field   string // Field name or path
	Message string // Human-readable reason for failure
	Value   any    // The value that failed validation
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("field %q: %s", e.Field, e.Message)
}

// Entry renders the failure as the {field, message} object used by
// validate-only output.
func (e *ValidationError) Entry() map[string]any {
	entry := map[string]any{"message": e.Message}
	if e.Field != "" {
		entry["field"] = e.Field
	}
	return entry
}

// AggregateError represents multiple validation failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// ValidationErrors returns all validation errors if err is an
// AggregateError, otherwise nil.
func ValidationErrors(err error) []error {
	if aggr, ok := err.(*AggregateError); ok {
		return aggr.Errors
	}
	return nil
}
