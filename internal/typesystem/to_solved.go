package typesystem

// Export names the variables of a module's annotation when its type is
// exported. Named variables become rigid parameters, wildcards stay
// anonymous, and every other variable is exported by its id.
type Export struct {
	Named     map[Variable]string
	Wildcards map[Variable]bool
}

// ToSolved converts a local type into its exported form. It is the inverse
// of ToType up to variable renaming.
func (e Export) ToSolved(t Type) SolvedType {
	switch tt := t.(type) {
	case nil:
		return nil
	case TVar:
		if name, ok := e.Named[tt.Var]; ok {
			return SolvedRigid{Name: name}
		}
		if e.Wildcards[tt.Var] {
			return SolvedWildcard{}
		}
		return SolvedFlex{ID: VarID(tt.Var)}
	case TFunc:
		return SolvedFunc{Args: e.list(tt.Args), Closure: e.ToSolved(tt.Closure), Ret: e.ToSolved(tt.Ret)}
	case TApp:
		return SolvedApply{Symbol: tt.Symbol, Args: e.list(tt.Args)}
	case TRecord:
		fields := make([]SolvedField, len(tt.Fields))
		for i, f := range tt.Fields {
			fields[i] = SolvedField{Name: f.Name, Type: e.ToSolved(f.Type)}
		}
		return SolvedRecord{Fields: fields, Ext: e.ToSolved(tt.Ext)}
	case TEmptyRecord:
		return SolvedEmptyRecord{}
	case TTagUnion:
		tags := make([]SolvedTag, len(tt.Tags))
		for i, tag := range tt.Tags {
			tags[i] = SolvedTag{Name: tag.Name, Args: e.list(tag.Args)}
		}
		return SolvedTagUnion{Tags: tags, Ext: e.ToSolved(tt.Ext)}
	case TEmptyTagUnion:
		return SolvedEmptyTagUnion{}
	case TAlias:
		args := make([]SolvedAliasArg, len(tt.TypeArguments))
		for i, a := range tt.TypeArguments {
			args[i] = SolvedAliasArg{Name: a.Name, Type: e.ToSolved(a.Type)}
		}
		lambdas := make([]SolvedType, len(tt.LambdaSetVariables))
		for i, ls := range tt.LambdaSetVariables {
			lambdas[i] = e.ToSolved(ls.Type)
		}
		return SolvedAlias{Symbol: tt.Symbol, Args: args, LambdaSets: lambdas, Actual: e.ToSolved(tt.Actual)}
	case TErroneous:
		return SolvedErroneous{Problem: tt.Problem}
	default:
		return SolvedErroneous{Problem: ProblemCanonicalizationProblem}
	}
}

func (e Export) list(ts []Type) []SolvedType {
	out := make([]SolvedType, len(ts))
	for i, t := range ts {
		out[i] = e.ToSolved(t)
	}
	return out
}
