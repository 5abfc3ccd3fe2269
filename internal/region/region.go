package region

import "fmt"

// Position is a 1-based line/column pair. The zero value means "unknown".
type Position struct {
	Line   uint32
	Column uint32
}

// Region spans two positions in a source file.
type Region struct {
	Start Position
	End   Position
}

// Zero returns the region used for compiler-generated nodes.
func Zero() Region {
	return Region{}
}

// New builds a region from line/column pairs.
func New(startLine, startCol, endLine, endCol uint32) Region {
	return Region{
		Start: Position{Line: startLine, Column: startCol},
		End:   Position{Line: endLine, Column: endCol},
	}
}

func (r Region) IsZero() bool {
	return r == Region{}
}

func (r Region) String() string {
	if r.IsZero() {
		return "<generated>"
	}
	if r.Start.Line == r.End.Line {
		return fmt.Sprintf("%d:%d-%d", r.Start.Line, r.Start.Column, r.End.Column)
	}
	return fmt.Sprintf("%d:%d-%d:%d", r.Start.Line, r.Start.Column, r.End.Line, r.End.Column)
}

// Loc attaches a region to a value.
type Loc[T any] struct {
	Region Region
	Value  T
}

func At[T any](r Region, v T) Loc[T] {
	return Loc[T]{Region: r, Value: v}
}

// AtZero locates a compiler-generated value.
func AtZero[T any](v T) Loc[T] {
	return Loc[T]{Value: v}
}
