package evaluator

import (
	"fmt"
	"strings"

	"github.com/funvibe/fxfront/internal/ast"
	"github.com/funvibe/fxfront/internal/typesystem"
)

type ObjectType string

const (
	INTEGER_OBJ  = "INTEGER"
	STRING_OBJ   = "STRING"
	UNIT_OBJ     = "UNIT"
	TAG_OBJ      = "TAG"
	FUNCTION_OBJ = "FUNCTION"
	BUILTIN_OBJ  = "BUILTIN"
	ERROR_OBJ    = "ERROR"
)

type Object interface {
	Type() ObjectType
	Inspect() string
}

type Integer struct {
	Value int64
}

func (i *Integer) Type() ObjectType { return INTEGER_OBJ }
func (i *Integer) Inspect() string  { return fmt.Sprintf("%d", i.Value) }

type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return fmt.Sprintf("%q", s.Value) }

// Unit is the empty record `{}`
type Unit struct{}

func (u *Unit) Type() ObjectType { return UNIT_OBJ }
func (u *Unit) Inspect() string  { return "{}" }

var UNIT = &Unit{}

// TagValue is an applied tag. Effects are a tag wrapping a thunk.
type TagValue struct {
	Name typesystem.TagName
	Args []Object
}

func (t *TagValue) Type() ObjectType { return TAG_OBJ }
func (t *TagValue) Inspect() string {
	parts := []string{t.Name.String()}
	for _, a := range t.Args {
		parts = append(parts, a.Inspect())
	}
	return strings.Join(parts, " ")
}

// Function is a closure together with the environment it was created in.
type Function struct {
	Node *ast.Closure
	Env  *Environment
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string {
	return fmt.Sprintf("<closure %s/%d>", f.Node.Name, len(f.Node.Arguments))
}

type BuiltinFunction func(e *Evaluator, args ...Object) Object

type Builtin struct {
	Fn   BuiltinFunction
	Name string
}

func (b *Builtin) Type() ObjectType { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string  { return "<builtin " + b.Name + ">" }

type Error struct {
	Message string
}

func (e *Error) Type() ObjectType { return ERROR_OBJ }
func (e *Error) Inspect() string  { return "ERROR: " + e.Message }

func newError(format string, a ...interface{}) *Error {
	return &Error{Message: fmt.Sprintf(format, a...)}
}

func isError(obj Object) bool {
	return obj != nil && obj.Type() == ERROR_OBJ
}
