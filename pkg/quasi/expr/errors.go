package expr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSyntax indicates the expression could not be parsed.
	ErrSyntax = errors.New("syntax error")

	// ErrUnknownFunction indicates a call to an unregistered function.
	ErrUnknownFunction = errors.New("unknown function")

	// ErrArgs indicates a function was called with the wrong arguments.
	ErrArgs = errors.New("bad arguments")
)

// UndefinedVariableError is returned when MissingError is set and an
// identifier is not found.
type UndefinedVariableError struct {
	// Names is the list of undefined variable names.
	Names []string
}

// Error implements the error interface.
func (e *UndefinedVariableError) Error() string {
	if len(e.Names) == 1 {
		return fmt.Sprintf("undefined variable: %s", e.Names[0])
	}
	return fmt.Sprintf("undefined variables: %s", strings.Join(e.Names, ", "))
}
