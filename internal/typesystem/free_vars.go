package typesystem

// NamedVar pairs a user-written type parameter name with its local variable.
type NamedVar struct {
	Name string
	Var  Variable
}

// UnnamedVar pairs an exporter-local variable id with its local variable.
type UnnamedVar struct {
	ID  VarID
	Var Variable
}

// FreeVars records how the free variables of a SolvedType were mapped to
// fresh local variables. Every variable recorded here stands for a type
// parameter fixed by the exporter's signature, so importers must treat all
// of them as rigid. Entries keep first-occurrence order. The zero value is
// ready to use.
type FreeVars struct {
	NamedVars   []NamedVar
	Wildcards   []Variable
	UnnamedVars []UnnamedVar

	named   map[string]Variable
	unnamed map[VarID]Variable
}

func NewFreeVars() *FreeVars {
	return &FreeVars{
		named:   make(map[string]Variable),
		unnamed: make(map[VarID]Variable),
	}
}

func (fv *FreeVars) namedVar(name string, vs *VarStore) Variable {
	if fv.named == nil {
		fv.named = make(map[string]Variable)
	}
	if v, ok := fv.named[name]; ok {
		return v
	}
	v := vs.Fresh()
	fv.named[name] = v
	fv.NamedVars = append(fv.NamedVars, NamedVar{Name: name, Var: v})
	return v
}

func (fv *FreeVars) unnamedVar(id VarID, vs *VarStore) Variable {
	if fv.unnamed == nil {
		fv.unnamed = make(map[VarID]Variable)
	}
	if v, ok := fv.unnamed[id]; ok {
		return v
	}
	v := vs.Fresh()
	fv.unnamed[id] = v
	fv.UnnamedVars = append(fv.UnnamedVars, UnnamedVar{ID: id, Var: v})
	return v
}

func (fv *FreeVars) wildcardVar(vs *VarStore) Variable {
	v := vs.Fresh()
	fv.Wildcards = append(fv.Wildcards, v)
	return v
}

// All returns every recorded variable: named, then wildcards, then unnamed.
func (fv *FreeVars) All() []Variable {
	out := make([]Variable, 0, len(fv.NamedVars)+len(fv.Wildcards)+len(fv.UnnamedVars))
	for _, nv := range fv.NamedVars {
		out = append(out, nv.Var)
	}
	out = append(out, fv.Wildcards...)
	for _, uv := range fv.UnnamedVars {
		out = append(out, uv.Var)
	}
	return out
}

// Len is the total number of recorded variables.
func (fv *FreeVars) Len() int {
	return len(fv.NamedVars) + len(fv.Wildcards) + len(fv.UnnamedVars)
}

// ToType translates a solved type into a local canonical type, allocating a
// fresh variable for every free variable and recording it in fv. The same
// name (or exporter id) maps to the same local variable within one fv.
func ToType(solved SolvedType, fv *FreeVars, vs *VarStore) Type {
	switch st := solved.(type) {
	case nil:
		return TEmptyTagUnion{}
	case SolvedRigid:
		return TVar{Var: fv.namedVar(st.Name, vs)}
	case SolvedFlex:
		return TVar{Var: fv.unnamedVar(st.ID, vs)}
	case SolvedWildcard:
		return TVar{Var: fv.wildcardVar(vs)}
	case SolvedFunc:
		args := toTypes(st.Args, fv, vs)
		var closure Type
		if st.Closure == nil {
			closure = TVar{Var: fv.wildcardVar(vs)}
		} else {
			closure = ToType(st.Closure, fv, vs)
		}
		return TFunc{Args: args, Closure: closure, Ret: ToType(st.Ret, fv, vs)}
	case SolvedApply:
		return TApp{Symbol: st.Symbol, Args: toTypes(st.Args, fv, vs)}
	case SolvedRecord:
		fields := make([]RecordField, len(st.Fields))
		for i, f := range st.Fields {
			fields[i] = RecordField{Name: f.Name, Type: ToType(f.Type, fv, vs)}
		}
		var ext Type = TEmptyRecord{}
		if st.Ext != nil {
			ext = ToType(st.Ext, fv, vs)
		}
		return TRecord{Fields: fields, Ext: ext}
	case SolvedEmptyRecord:
		return TEmptyRecord{}
	case SolvedTagUnion:
		tags := make([]Tag, len(st.Tags))
		for i, tag := range st.Tags {
			tags[i] = Tag{Name: tag.Name, Args: toTypes(tag.Args, fv, vs)}
		}
		var ext Type = TEmptyTagUnion{}
		if st.Ext != nil {
			ext = ToType(st.Ext, fv, vs)
		}
		return TTagUnion{Tags: tags, Ext: ext}
	case SolvedEmptyTagUnion:
		return TEmptyTagUnion{}
	case SolvedAlias:
		args := make([]AliasArg, len(st.Args))
		for i, a := range st.Args {
			args[i] = AliasArg{Name: a.Name, Type: ToType(a.Type, fv, vs)}
		}
		lambdaSets := make([]LambdaSet, len(st.LambdaSets))
		for i, ls := range st.LambdaSets {
			lambdaSets[i] = LambdaSet{Type: ToType(ls, fv, vs)}
		}
		return TAlias{
			Symbol:             st.Symbol,
			TypeArguments:      args,
			LambdaSetVariables: lambdaSets,
			Actual:             ToType(st.Actual, fv, vs),
		}
	case SolvedErroneous:
		return TErroneous{Problem: st.Problem}
	default:
		panic("typesystem: unknown solved type")
	}
}

func toTypes(solved []SolvedType, fv *FreeVars, vs *VarStore) []Type {
	out := make([]Type, len(solved))
	for i, s := range solved {
		out[i] = ToType(s, fv, vs)
	}
	return out
}
