package constrain

import (
	"github.com/funvibe/fxfront/internal/ast"
	"github.com/funvibe/fxfront/internal/symbols"
	"github.com/funvibe/fxfront/internal/typesystem"
)

// DeclConstrainer generates constraints for ordinary declarations.
type DeclConstrainer interface {
	ConstrainDecls(home symbols.ModuleID, decls []ast.Declaration) Constraint
}

// ConstrainModule generates the constraint of a whole module.
func ConstrainModule(decls []ast.Declaration, home symbols.ModuleID, gen DeclConstrainer) Constraint {
	return gen.ConstrainDecls(home, decls)
}

// TrueDeclConstrainer accepts every module.
type TrueDeclConstrainer struct{}

func (TrueDeclConstrainer) ConstrainDecls(symbols.ModuleID, []ast.Declaration) Constraint {
	return True{}
}

// SignatureConstrainer only checks annotated definitions: each annotated
// def's expression variable must equal its signature. Bodies are left to a
// full expression constrainer.
type SignatureConstrainer struct{}

func (SignatureConstrainer) ConstrainDecls(_ symbols.ModuleID, decls []ast.Declaration) Constraint {
	var cs []Constraint
	for _, decl := range decls {
		for _, def := range decl.Defs() {
			if def.Annotation == nil {
				continue
			}
			cs = append(cs, &Eq{
				Var:    def.ExprVar,
				Type:   def.Annotation.Signature,
				Region: def.Annotation.Region,
			})
		}
	}
	return AndOf(cs...)
}

// RigidAnnotationVars lists the variables an annotation introduces, named
// first. The solver must keep them rigid within the def.
func RigidAnnotationVars(ann *ast.Annotation) []typesystem.Variable {
	out := make([]typesystem.Variable, 0, len(ann.IntroducedVariables.Named)+len(ann.IntroducedVariables.Wildcards))
	for _, nv := range ann.IntroducedVariables.Named {
		out = append(out, nv.Var)
	}
	return append(out, ann.IntroducedVariables.Wildcards...)
}
