package schemavalidator

import (
	"errors"
	"fmt"
)

// ErrUnknownType is returned when no data model document is registered for a
// data type id.
var ErrUnknownType = errors.New("schemavalidator: unknown data type")

// CompileError reports a data model that failed to compile. It is the only
// fatal failure of the provider; evaluation never errors.
type CompileError struct {
	TypeID   string
	Location string
	Err      error
}

func (e *CompileError) Error() string {
	if e == nil {
		return ""
	}
	if e.Location != "" {
		return fmt.Sprintf("schemavalidator: compile %s (%s): %v", e.TypeID, e.Location, e.Err)
	}
	return fmt.Sprintf("schemavalidator: compile %s: %v", e.TypeID, e.Err)
}

func (e *CompileError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
