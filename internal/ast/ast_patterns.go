package ast

import (
	"github.com/funvibe/fxfront/internal/region"
	"github.com/funvibe/fxfront/internal/symbols"
	"github.com/funvibe/fxfront/internal/typesystem"
)

// Identifier binds the matched value to a symbol.
type Identifier struct {
	Symbol symbols.Symbol
}

// PatternArg is one payload pattern of an applied tag.
type PatternArg struct {
	Var     typesystem.Variable
	Pattern region.Loc[Pattern]
}

// AppliedTag destructures a tag and its payloads.
type AppliedTag struct {
	WholeVar  typesystem.Variable
	ExtVar    typesystem.Variable
	TagName   typesystem.TagName
	Arguments []PatternArg
}

// RecordDestruct binds one record field.
type RecordDestruct struct {
	Var    typesystem.Variable
	Label  string
	Symbol symbols.Symbol
}

// RecordDestructure matches a record; with no destructs it matches `{}`.
type RecordDestructure struct {
	WholeVar  typesystem.Variable
	ExtVar    typesystem.Variable
	Destructs []RecordDestruct
}

// Underscore matches anything and binds nothing.
type Underscore struct{}

func (*Identifier) patternNode()        {}
func (*AppliedTag) patternNode()        {}
func (*RecordDestructure) patternNode() {}
func (*Underscore) patternNode()        {}

// BoundSymbols returns the symbols bound by p, in left-to-right order.
func BoundSymbols(p Pattern) []symbols.Symbol {
	switch pt := p.(type) {
	case *Identifier:
		return []symbols.Symbol{pt.Symbol}
	case *AppliedTag:
		var out []symbols.Symbol
		for _, arg := range pt.Arguments {
			out = append(out, BoundSymbols(arg.Pattern.Value)...)
		}
		return out
	case *RecordDestructure:
		out := make([]symbols.Symbol, 0, len(pt.Destructs))
		for _, d := range pt.Destructs {
			out = append(out, d.Symbol)
		}
		return out
	default:
		return nil
	}
}
