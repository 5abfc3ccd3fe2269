package prettyprinter

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/funvibe/fxfront/internal/ast"
	"github.com/funvibe/fxfront/internal/config"
	"github.com/funvibe/fxfront/internal/symbols"
	"github.com/funvibe/fxfront/internal/typesystem"
)

// --- Code Printer (Output looks like source code) ---

// Binding strength of printed forms. Operands weaker than their context
// are parenthesised.
const (
	precTop = iota
	precArrow
	precApply
	precAtom
)

type CodePrinter struct {
	buf    bytes.Buffer
	indent int
	column int // current column position

	names          func(symbols.Symbol) string
	showLambdaSets bool

	// Names of type variables in the annotation being printed.
	typeVars  map[typesystem.Variable]string
	wildcards map[typesystem.Variable]bool
	fresh     int
}

// NewCodePrinter creates a printer rendering symbols through names,
// typically Interns.IdentName.
func NewCodePrinter(names func(symbols.Symbol) string) *CodePrinter {
	if names == nil {
		names = func(s symbols.Symbol) string { return s.String() }
	}
	return &CodePrinter{names: names}
}

// SetShowLambdaSets prints the lambda set of every arrow, as in a -[clo]-> b.
func (p *CodePrinter) SetShowLambdaSets(show bool) {
	p.showLambdaSets = show
}

func (p *CodePrinter) String() string {
	return p.buf.String()
}

func (p *CodePrinter) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString("    ")
	}
	p.column = p.indent * 4
}

func (p *CodePrinter) write(s string) {
	p.buf.WriteString(s)
	// Track column position
	if idx := strings.LastIndex(s, "\n"); idx != -1 {
		p.column = len(s) - idx - 1
	} else {
		p.column += len(s)
	}
}

func (p *CodePrinter) writeln() {
	p.buf.WriteString("\n")
	p.column = 0
}

func (p *CodePrinter) newline() {
	p.writeln()
	p.writeIndent()
}

// PrintDeclarations renders a module's declarations, separated by blank lines.
func (p *CodePrinter) PrintDeclarations(decls []ast.Declaration) {
	for i, decl := range decls {
		if i > 0 {
			p.writeln()
		}
		switch d := decl.(type) {
		case *ast.DeclareRec:
			for _, def := range d.Group {
				p.write("# recursive")
				p.writeln()
				p.PrintDef(def)
			}
		default:
			for _, def := range decl.Defs() {
				p.PrintDef(def)
			}
		}
	}
}

// PrintDef renders an optional signature line followed by the definition.
func (p *CodePrinter) PrintDef(def *ast.Def) {
	p.writeIndent()
	if def.Annotation != nil {
		p.printPattern(def.LocPattern.Value, precTop)
		p.write(" : ")
		p.PrintAnnotation(def.Annotation)
		p.newline()
	}
	p.printBinding(def)
	p.writeln()
}

func (p *CodePrinter) printBinding(def *ast.Def) {
	p.printPattern(def.LocPattern.Value, precTop)
	p.write(" = ")
	p.printExpr(def.LocExpr.Value, precTop)
}

// PrintAnnotation renders a signature with the names its author introduced.
func (p *CodePrinter) PrintAnnotation(ann *ast.Annotation) {
	p.typeVars = make(map[typesystem.Variable]string)
	p.wildcards = make(map[typesystem.Variable]bool)
	p.fresh = 0
	for _, nv := range ann.IntroducedVariables.Named {
		p.typeVars[nv.Var] = nv.Name
	}
	for _, w := range ann.IntroducedVariables.Wildcards {
		p.wildcards[w] = true
	}
	p.printType(ann.Signature, precTop)
	p.typeVars = nil
	p.wildcards = nil
}

// PrintType renders a type outside of any annotation.
func (p *CodePrinter) PrintType(t typesystem.Type) {
	p.printType(t, precTop)
}

func (p *CodePrinter) varName(v typesystem.Variable) string {
	if name, ok := p.typeVars[v]; ok {
		return name
	}
	if p.wildcards[v] {
		return "*"
	}
	if !config.IsTestMode {
		return v.String()
	}
	// Test output must not depend on variable numbering.
	if p.typeVars == nil {
		p.typeVars = make(map[typesystem.Variable]string)
	}
	name := "t" + strconv.Itoa(p.fresh)
	p.fresh++
	p.typeVars[v] = name
	return name
}

func (p *CodePrinter) tagName(t typesystem.TagName) string {
	if t.IsPrivate {
		return "@" + p.names(t.Private)
	}
	return t.Global
}

func (p *CodePrinter) printType(t typesystem.Type, prec int) {
	switch tt := t.(type) {
	case nil:
		p.write("<???>")
	case typesystem.TVar:
		p.write(p.varName(tt.Var))
	case typesystem.TFunc:
		if prec > precTop {
			p.write("(")
		}
		for i, arg := range tt.Args {
			if i > 0 {
				p.write(", ")
			}
			p.printType(arg, precArrow)
		}
		if p.showLambdaSets && tt.Closure != nil {
			p.write(" -[")
			p.printType(tt.Closure, precTop)
			p.write("]-> ")
		} else {
			p.write(" -> ")
		}
		p.printType(tt.Ret, precArrow)
		if prec > precTop {
			p.write(")")
		}
	case typesystem.TApp:
		p.printApplied(p.names(tt.Symbol), tt.Args, prec)
	case typesystem.TAlias:
		args := make([]typesystem.Type, len(tt.TypeArguments))
		for i, a := range tt.TypeArguments {
			args[i] = a.Type
		}
		p.printApplied(p.names(tt.Symbol), args, prec)
	case typesystem.TRecord:
		p.write("{ ")
		for i, f := range tt.Fields {
			if i > 0 {
				p.write(", ")
			}
			p.write(f.Name + " : ")
			p.printType(f.Type, precTop)
		}
		p.write(" }")
		p.printExt(tt.Ext)
	case typesystem.TEmptyRecord:
		p.write("{}")
	case typesystem.TTagUnion:
		p.write("[ ")
		for i, tag := range tt.Tags {
			if i > 0 {
				p.write(", ")
			}
			p.write(p.tagName(tag.Name))
			for _, arg := range tag.Args {
				p.write(" ")
				p.printType(arg, precAtom)
			}
		}
		p.write(" ]")
		p.printExt(tt.Ext)
	case typesystem.TEmptyTagUnion:
		p.write("[]")
	case typesystem.TErroneous:
		p.write("<" + tt.Problem.String() + ">")
	default:
		p.write(fmt.Sprintf("<%T>", t))
	}
}

func (p *CodePrinter) printApplied(name string, args []typesystem.Type, prec int) {
	if len(args) == 0 {
		p.write(name)
		return
	}
	if prec >= precAtom {
		p.write("(")
	}
	p.write(name)
	for _, arg := range args {
		p.write(" ")
		p.printType(arg, precAtom)
	}
	if prec >= precAtom {
		p.write(")")
	}
}

func (p *CodePrinter) printExt(ext typesystem.Type) {
	switch ext.(type) {
	case nil, typesystem.TEmptyRecord, typesystem.TEmptyTagUnion:
	default:
		p.printType(ext, precAtom)
	}
}

func (p *CodePrinter) printPattern(pat ast.Pattern, prec int) {
	switch pt := pat.(type) {
	case *ast.Identifier:
		p.write(p.names(pt.Symbol))
	case *ast.Underscore:
		p.write("_")
	case *ast.AppliedTag:
		if len(pt.Arguments) > 0 && prec >= precApply {
			p.write("(")
		}
		p.write(p.tagName(pt.TagName))
		for _, arg := range pt.Arguments {
			p.write(" ")
			p.printPattern(arg.Pattern.Value, precApply)
		}
		if len(pt.Arguments) > 0 && prec >= precApply {
			p.write(")")
		}
	case *ast.RecordDestructure:
		if len(pt.Destructs) == 0 {
			p.write("{}")
			return
		}
		labels := make([]string, len(pt.Destructs))
		for i, d := range pt.Destructs {
			labels[i] = d.Label
		}
		p.write("{ " + strings.Join(labels, ", ") + " }")
	default:
		p.write(fmt.Sprintf("<%T>", pat))
	}
}

func (p *CodePrinter) printExpr(expr ast.Expr, prec int) {
	switch e := expr.(type) {
	case nil:
		p.write("<???>")
	case *ast.Var:
		p.write(p.names(e.Symbol))
	case *ast.Int:
		p.write(strconv.FormatInt(e.Value, 10))
	case *ast.Str:
		p.write(strconv.Quote(e.Value))
	case *ast.EmptyRecord:
		p.write("{}")
	case *ast.Closure:
		if prec > precTop {
			p.write("(")
		}
		p.write("\\")
		for i, arg := range e.Arguments {
			if i > 0 {
				p.write(", ")
			}
			p.printPattern(arg.Pattern.Value, precTop)
		}
		p.write(" ->")
		p.printBody(e.Body.Value)
		if prec > precTop {
			p.write(")")
		}
	case *ast.Tag:
		if len(e.Arguments) > 0 && prec >= precApply {
			p.write("(")
		}
		p.write(p.tagName(e.Name))
		for _, arg := range e.Arguments {
			p.write(" ")
			p.printExpr(arg.Value.Value, precApply)
		}
		if len(e.Arguments) > 0 && prec >= precApply {
			p.write(")")
		}
	case *ast.Call:
		if prec >= precApply {
			p.write("(")
		}
		p.printExpr(e.Fn.Fn.Value, precApply)
		for _, arg := range e.Args {
			p.write(" ")
			p.printExpr(arg.Value.Value, precApply)
		}
		if prec >= precApply {
			p.write(")")
		}
	case *ast.LetNonRec:
		p.printBinding(e.Def)
		p.newline()
		p.printExpr(e.Body.Value, precTop)
	case *ast.ForeignCall:
		// Foreign calls print as #symbol args.
		if len(e.Args) > 0 && prec >= precApply {
			p.write("(")
		}
		p.write("#" + e.ForeignSymbol)
		for _, arg := range e.Args {
			p.write(" ")
			p.printExpr(arg.Value, precApply)
		}
		if len(e.Args) > 0 && prec >= precApply {
			p.write(")")
		}
	default:
		p.write(fmt.Sprintf("<%T>", expr))
	}
}

// printBody puts let chains on their own indented lines and keeps simple
// bodies on the arrow's line.
func (p *CodePrinter) printBody(body ast.Expr) {
	if _, ok := body.(*ast.LetNonRec); ok {
		p.indent++
		p.newline()
		p.printExpr(body, precTop)
		p.indent--
		return
	}
	p.write(" ")
	p.printExpr(body, precTop)
}

// PrintDeclarations is a shortcut rendering decls with names.
func PrintDeclarations(decls []ast.Declaration, names func(symbols.Symbol) string) string {
	p := NewCodePrinter(names)
	p.PrintDeclarations(decls)
	return p.String()
}

// TypeString renders a single type.
func TypeString(t typesystem.Type, names func(symbols.Symbol) string) string {
	p := NewCodePrinter(names)
	p.PrintType(t)
	return p.String()
}
