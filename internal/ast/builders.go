package ast

import (
	"github.com/funvibe/fxfront/internal/region"
	"github.com/funvibe/fxfront/internal/symbols"
	"github.com/funvibe/fxfront/internal/typesystem"
)

// Node builders for compiler-generated code. Every builder allocates its
// type variables from vs in field order, so the same sequence of calls
// always produces the same numbering. Generated nodes sit at region.Zero().

func NewVar(sym symbols.Symbol) *Var {
	return &Var{Symbol: sym}
}

// NewCall builds `fn arg1 arg2 ...`.
func NewCall(vs *typesystem.VarStore, fn Expr, args ...Expr) *Call {
	call := &Call{
		Fn: CallFn{
			FnVar:      vs.Fresh(),
			Fn:         region.AtZero(fn),
			ClosureVar: vs.Fresh(),
			RetVar:     vs.Fresh(),
		},
		CalledVia: CalledViaSpace,
	}
	call.Args = make([]CallArg, len(args))
	for i, arg := range args {
		call.Args[i] = CallArg{Var: vs.Fresh(), Value: region.AtZero(arg)}
	}
	return call
}

// NewThunkCall builds `thunk {}`.
func NewThunkCall(vs *typesystem.VarStore, thunk symbols.Symbol) *Call {
	return NewCall(vs, NewVar(thunk), &EmptyRecord{})
}

// NewTag builds `@Tag payload`.
func NewTag(vs *typesystem.VarStore, tag typesystem.TagName, payload Expr) *Tag {
	return &Tag{
		VariantVar: vs.Fresh(),
		ExtVar:     vs.Fresh(),
		Name:       tag,
		Arguments:  []TagArg{{Var: vs.Fresh(), Value: region.AtZero(payload)}},
	}
}

// NewLet builds `def` followed by `body`.
func NewLet(vs *typesystem.VarStore, def *Def, body Expr) *LetNonRec {
	return &LetNonRec{Def: def, Body: region.AtZero(body), Var: vs.Fresh()}
}

func NewIdentPattern(sym symbols.Symbol) *Identifier {
	return &Identifier{Symbol: sym}
}

// NewEmptyRecordPattern builds the `{}` pattern.
func NewEmptyRecordPattern(vs *typesystem.VarStore) *RecordDestructure {
	return &RecordDestructure{WholeVar: vs.Fresh(), ExtVar: vs.Fresh()}
}

// NewAppliedTagPattern builds `@Tag sym`.
func NewAppliedTagPattern(vs *typesystem.VarStore, tag typesystem.TagName, sym symbols.Symbol) *AppliedTag {
	return &AppliedTag{
		WholeVar: vs.Fresh(),
		ExtVar:   vs.Fresh(),
		TagName:  tag,
		Arguments: []PatternArg{{
			Var:     vs.Fresh(),
			Pattern: region.AtZero[Pattern](NewIdentPattern(sym)),
		}},
	}
}

// NewArguments pairs each pattern with a fresh variable.
func NewArguments(vs *typesystem.VarStore, patterns ...Pattern) []Argument {
	out := make([]Argument, len(patterns))
	for i, p := range patterns {
		out[i] = Argument{Var: vs.Fresh(), Pattern: region.AtZero(p)}
	}
	return out
}

// ClosureSpec describes a closure to build with NewClosure.
type ClosureSpec struct {
	Name      symbols.Symbol
	Captured  []symbols.Symbol
	Recursive Recursive
	Arguments []Argument
	Body      Expr
	// FunctionType, when non-zero, is used instead of a fresh variable so the
	// closure can share its type with the enclosing def.
	FunctionType typesystem.Variable
}

// NewClosure builds a closure. Captured symbols get fresh variables in the
// given order.
func NewClosure(vs *typesystem.VarStore, spec ClosureSpec) *Closure {
	fnVar := spec.FunctionType
	if fnVar == 0 {
		fnVar = vs.Fresh()
	}
	c := &Closure{
		FunctionType:  fnVar,
		ClosureType:   vs.Fresh(),
		ClosureExtVar: vs.Fresh(),
		ReturnType:    vs.Fresh(),
		Name:          spec.Name,
		Recursive:     spec.Recursive,
		Arguments:     spec.Arguments,
		Body:          region.AtZero(spec.Body),
	}
	c.CapturedSymbols = make([]Captured, len(spec.Captured))
	for i, sym := range spec.Captured {
		c.CapturedSymbols[i] = Captured{Symbol: sym, Var: vs.Fresh()}
	}
	return c
}

// NewThunk builds `\{} -> body`.
func NewThunk(vs *typesystem.VarStore, name symbols.Symbol, captured []symbols.Symbol, body Expr) *Closure {
	return NewClosure(vs, ClosureSpec{
		Name:      name,
		Captured:  captured,
		Recursive: NotRecursive,
		Arguments: NewArguments(vs, NewEmptyRecordPattern(vs)),
		Body:      body,
	})
}

// NewDef binds pattern to expr with a fresh expression variable.
func NewDef(vs *typesystem.VarStore, pattern Pattern, expr Expr) *Def {
	return &Def{
		LocPattern:  region.AtZero(pattern),
		LocExpr:     region.AtZero(expr),
		ExprVar:     vs.Fresh(),
		PatternVars: map[symbols.Symbol]typesystem.Variable{},
	}
}

// NewFunctionDef binds sym to expr under annotation, recording exprVar as
// the variable of sym.
func NewFunctionDef(sym symbols.Symbol, expr Expr, exprVar typesystem.Variable, annotation *Annotation) *Def {
	return &Def{
		LocPattern:  region.AtZero[Pattern](NewIdentPattern(sym)),
		LocExpr:     region.AtZero(expr),
		ExprVar:     exprVar,
		PatternVars: map[symbols.Symbol]typesystem.Variable{sym: exprVar},
		Annotation:  annotation,
	}
}
