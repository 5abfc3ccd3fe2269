// Package evaluator is a reference interpreter for canonical definitions.
// It runs the generated effect module directly: thunks are forced on
// demand, foreign calls dispatch to registered host functions, and a
// recognized forever definition runs as a loop.
package evaluator

import (
	"context"
	"fmt"

	"github.com/funvibe/fxfront/internal/ast"
	"github.com/funvibe/fxfront/internal/effects"
	"github.com/funvibe/fxfront/internal/symbols"
)

// HostFunction implements a foreign symbol.
type HostFunction func(args ...Object) Object

type Evaluator struct {
	// Context for cancellation; checked on every loop iteration
	Context context.Context
	// Host functions by foreign symbol name, e.g. "fx_putLine"
	Host map[string]HostFunction
	// LoopForever runs definitions shaped like forever as a loop instead
	// of evaluating their recursive body
	LoopForever bool
	// Names renders symbols in error messages (optional)
	Names func(symbols.Symbol) string
}

func New() *Evaluator {
	return &Evaluator{
		Context:     context.Background(),
		Host:        make(map[string]HostFunction),
		LoopForever: true,
	}
}

// RegisterHost makes fn available under the foreign symbol name.
func (e *Evaluator) RegisterHost(name string, fn HostFunction) {
	e.Host[name] = fn
}

func (e *Evaluator) name(sym symbols.Symbol) string {
	if e.Names != nil {
		return e.Names(sym)
	}
	return sym.String()
}

// LoadDeclarations binds every declaration into env, in order.
func (e *Evaluator) LoadDeclarations(decls []ast.Declaration, env *Environment) Object {
	for _, decl := range decls {
		for _, def := range decl.Defs() {
			if _, isRec := decl.(*ast.DeclareRec); isRec && e.LoopForever {
				if shape, ok := effects.MatchForever(def); ok {
					env.Set(shape.Forever, e.foreverLoop(shape))
					continue
				}
			}
			if res := e.evalDef(def, env, env); isError(res) {
				return res
			}
		}
	}
	return UNIT
}

// evalDef evaluates def in env and binds its pattern into target.
func (e *Evaluator) evalDef(def *ast.Def, env, target *Environment) Object {
	val := e.Eval(def.LocExpr.Value, env)
	if isError(val) {
		return val
	}
	if !e.bind(def.LocPattern.Value, val, target) {
		return newError("pattern does not match %s", val.Inspect())
	}
	return val
}

func (e *Evaluator) Eval(node ast.Expr, env *Environment) Object {
	switch node := node.(type) {
	case *ast.Var:
		if val, ok := env.Get(node.Symbol); ok {
			return val
		}
		return newError("unbound symbol %s", e.name(node.Symbol))

	case *ast.Int:
		return &Integer{Value: node.Value}

	case *ast.Str:
		return &String{Value: node.Value}

	case *ast.EmptyRecord:
		return UNIT

	case *ast.Closure:
		return &Function{Node: node, Env: env}

	case *ast.Tag:
		args := make([]Object, len(node.Arguments))
		for i, arg := range node.Arguments {
			args[i] = e.Eval(arg.Value.Value, env)
			if isError(args[i]) {
				return args[i]
			}
		}
		return &TagValue{Name: node.Name, Args: args}

	case *ast.Call:
		fn := e.Eval(node.Fn.Fn.Value, env)
		if isError(fn) {
			return fn
		}
		args := make([]Object, len(node.Args))
		for i, arg := range node.Args {
			args[i] = e.Eval(arg.Value.Value, env)
			if isError(args[i]) {
				return args[i]
			}
		}
		return e.Apply(fn, args...)

	case *ast.LetNonRec:
		inner := NewEnclosedEnvironment(env)
		if res := e.evalDef(node.Def, env, inner); isError(res) {
			return res
		}
		return e.Eval(node.Body.Value, inner)

	case *ast.ForeignCall:
		host, ok := e.Host[node.ForeignSymbol]
		if !ok {
			return newError("no host function %s", node.ForeignSymbol)
		}
		args := make([]Object, len(node.Args))
		for i, arg := range node.Args {
			args[i] = e.Eval(arg.Value, env)
			if isError(args[i]) {
				return args[i]
			}
		}
		return host(args...)

	default:
		return newError("cannot evaluate %T", node)
	}
}

// Apply calls a function value.
func (e *Evaluator) Apply(fn Object, args ...Object) Object {
	switch fn := fn.(type) {
	case *Function:
		if len(fn.Node.Arguments) != len(args) {
			return newError("%s expects %d arguments, got %d",
				e.name(fn.Node.Name), len(fn.Node.Arguments), len(args))
		}
		env := NewEnclosedEnvironment(fn.Env)
		for i, arg := range fn.Node.Arguments {
			if !e.bind(arg.Pattern.Value, args[i], env) {
				return newError("argument %d of %s does not match %s", i, e.name(fn.Node.Name), args[i].Inspect())
			}
		}
		return e.Eval(fn.Node.Body.Value, env)
	case *Builtin:
		return fn.Fn(e, args...)
	default:
		return newError("not a function: %s", fn.Inspect())
	}
}

// Force runs an effect: it unwraps the tag and calls the thunk with `{}`.
func (e *Evaluator) Force(effect Object) Object {
	tag, ok := effect.(*TagValue)
	if !ok || len(tag.Args) != 1 {
		return newError("not an effect: %s", effect.Inspect())
	}
	return e.Apply(tag.Args[0], UNIT)
}

func (e *Evaluator) bind(p ast.Pattern, val Object, env *Environment) bool {
	switch p := p.(type) {
	case *ast.Identifier:
		env.Set(p.Symbol, val)
		return true
	case *ast.Underscore:
		return true
	case *ast.AppliedTag:
		tag, ok := val.(*TagValue)
		if !ok || tag.Name != p.TagName || len(tag.Args) != len(p.Arguments) {
			return false
		}
		for i, arg := range p.Arguments {
			if !e.bind(arg.Pattern.Value, tag.Args[i], env) {
				return false
			}
		}
		return true
	case *ast.RecordDestructure:
		_, ok := val.(*Unit)
		return ok && len(p.Destructs) == 0
	default:
		return false
	}
}

// foreverLoop implements a forever definition: the effect it returns
// forces its argument until the argument fails or the context ends.
func (e *Evaluator) foreverLoop(shape effects.ForeverShape) *Builtin {
	return &Builtin{
		Name: e.name(shape.Forever),
		Fn: func(e *Evaluator, args ...Object) Object {
			if len(args) != 1 {
				return newError("forever expects 1 argument, got %d", len(args))
			}
			effect := args[0]
			inner := &Builtin{
				Name: e.name(shape.Inner),
				Fn: func(e *Evaluator, _ ...Object) Object {
					for {
						if err := e.Context.Err(); err != nil {
							return newError("forever: %v", err)
						}
						if res := e.Force(effect); isError(res) {
							return res
						}
					}
				},
			}
			return &TagValue{Name: shape.Tag, Args: []Object{inner}}
		},
	}
}

// Run forces effect and converts a failure into a Go error.
func (e *Evaluator) Run(effect Object) (Object, error) {
	res := e.Force(effect)
	if errObj, ok := res.(*Error); ok {
		return nil, fmt.Errorf("evaluation failed: %s", errObj.Message)
	}
	return res, nil
}
