package diagnostics

import (
	"fmt"

	"github.com/funvibe/fxfront/internal/region"
)

// ErrorCode identifies a class of diagnostic.
type ErrorCode string

const (
	// Internal compiler errors: a prior phase broke an invariant.
	ErrI001 ErrorCode = "I001" // referenced builtin missing from every builtin table
	ErrI002 ErrorCode = "I002" // imported module has no exposed types (solved out of order)
	ErrI003 ErrorCode = "I003" // exposed types recorded twice for one module
	ErrI004 ErrorCode = "I004" // generated identifier collided with a user identifier
	ErrI005 ErrorCode = "I005" // exported symbol has no stored variable

	// User-facing errors.
	ErrP001 ErrorCode = "P001" // invalid platform header
	ErrS001 ErrorCode = "S001" // solving failed for a module
	ErrS002 ErrorCode = "S002" // import cycle between modules
	ErrS003 ErrorCode = "S003" // import of a module unknown to the session

	// Warnings.
	WarnW001 ErrorCode = "W001" // module imported but never used
)

var codeTitles = map[ErrorCode]string{
	ErrI001:  "Missing Builtin",
	ErrI002:  "Missing Exposed Types",
	ErrI003:  "Duplicate Exposed Types",
	ErrI004:  "Generated Name Collision",
	ErrI005:  "Missing Stored Variable",
	ErrP001:  "Platform",
	ErrS001:  "Type",
	ErrS002:  "Import Cycle",
	ErrS003:  "Unknown Module",
	WarnW001: "Unused Import",
}

// Title is the human readable name of a code.
func (c ErrorCode) Title() string {
	if t, ok := codeTitles[c]; ok {
		return t
	}
	return string(c)
}

// IsWarning reports whether the code is a non-fatal warning.
func (c ErrorCode) IsWarning() bool {
	return len(c) > 0 && c[0] == 'W'
}

// DiagnosticError is a located, user-facing diagnostic.
type DiagnosticError struct {
	Code    ErrorCode
	Module  string
	Region  region.Region
	Message string
}

func (e *DiagnosticError) Error() string {
	if e.Module != "" {
		return fmt.Sprintf("%s [%s] %s:%s: %s", e.Code.Title(), e.Code, e.Module, e.Region, e.Message)
	}
	return fmt.Sprintf("%s [%s] %s", e.Code.Title(), e.Code, e.Message)
}

func NewError(code ErrorCode, module string, r region.Region, format string, args ...any) *DiagnosticError {
	return &DiagnosticError{Code: code, Module: module, Region: r, Message: fmt.Sprintf(format, args...)}
}

// InternalError signals a compiler defect. It is raised with panic and
// aborts the whole compilation session; it is never a user error.
type InternalError struct {
	Code    ErrorCode
	Message string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal compiler error [%s]: %s", e.Code, e.Message)
}

func NewInternalError(code ErrorCode, format string, args ...any) *InternalError {
	return &InternalError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// RecoverInternal converts a panicking *InternalError into *errp. Other
// panics are re-raised. Use as `defer diagnostics.RecoverInternal(&err)`.
func RecoverInternal(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	if ie, ok := r.(*InternalError); ok {
		*errp = ie
		return
	}
	panic(r)
}
