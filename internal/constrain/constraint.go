package constrain

import (
	"fmt"
	"strings"

	"github.com/funvibe/fxfront/internal/region"
	"github.com/funvibe/fxfront/internal/symbols"
	"github.com/funvibe/fxfront/internal/typesystem"
)

// Constraint is an obligation handed to the solver.
type Constraint interface {
	String() string
	constraintNode()
}

// True is always satisfied.
type True struct{}

// Eq requires Type to equal the type of Var.
type Eq struct {
	Var    typesystem.Variable
	Type   typesystem.Type
	Region region.Region
}

// And requires every member.
type And struct {
	Constraints []Constraint
}

// DefType is the local type of an imported symbol.
type DefType struct {
	Symbol symbols.Symbol
	Type   region.Loc[typesystem.Type]
}

// LetImport brings imported symbols into scope for Body. RigidVars must be
// treated as rigid while checking Body: they stand for the exporter's type
// parameters and may not be specialized by the importer.
type LetImport struct {
	RigidVars []typesystem.Variable
	DefTypes  []DefType
	Body      Constraint
}

func (True) constraintNode()       {}
func (*Eq) constraintNode()        {}
func (*And) constraintNode()       {}
func (*LetImport) constraintNode() {}

func (True) String() string { return "True" }

func (c *Eq) String() string {
	return fmt.Sprintf("%s ~ %s", c.Var, c.Type)
}

func (c *And) String() string {
	parts := make([]string, len(c.Constraints))
	for i, sub := range c.Constraints {
		parts[i] = sub.String()
	}
	return "And(" + strings.Join(parts, ", ") + ")"
}

func (c *LetImport) String() string {
	var sb strings.Builder
	sb.WriteString("LetImport [")
	for i, v := range c.RigidVars {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(v.String())
	}
	sb.WriteString("] {")
	for i, dt := range c.DefTypes {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s : %s", dt.Symbol, dt.Type.Value)
	}
	sb.WriteString("} in ")
	sb.WriteString(c.Body.String())
	return sb.String()
}

// AndOf flattens trivially satisfied members away.
func AndOf(cs ...Constraint) Constraint {
	var out []Constraint
	for _, c := range cs {
		if _, ok := c.(True); ok || c == nil {
			continue
		}
		out = append(out, c)
	}
	switch len(out) {
	case 0:
		return True{}
	case 1:
		return out[0]
	default:
		return &And{Constraints: out}
	}
}
