package cache

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/funvibe/fxfront/internal/constrain"
	"github.com/funvibe/fxfront/internal/symbols"
	"github.com/funvibe/fxfront/internal/typesystem"
)

const payloadVersion byte = 1

var payloadMagic = []byte{0x46, 0x58, 0x45, 0x54} // "FXET"

// Symbols are stored by name: ids are only meaningful within one session.
type symbolRef struct {
	Module string
	Ident  string
}

type tagRef struct {
	Global    string
	Private   symbolRef
	IsPrivate bool
}

type tagNode struct {
	Name tagRef
	Args []*node
}

// node is the stored form of both SolvedType and Type. gob cannot encode
// the empty variant structs, so every variant is flattened into one shape.
// gob drops all-zero structs, so a missing node decodes as a nil type.
type node struct {
	Kind    uint8
	Name    string
	ID      uint32
	Symbol  symbolRef
	Problem int
	Args    []*node
	Names   []string
	Tags    []tagNode
	Closure *node
	Ret     *node
	Ext     *node
	Lambdas []*node
}

const (
	kindNil uint8 = iota
	// solved types
	kindRigid
	kindFlex
	kindWildcard
	kindSolvedFunc
	kindSolvedApply
	kindSolvedRecord
	kindSolvedEmptyRecord
	kindSolvedTagUnion
	kindSolvedEmptyTagUnion
	kindSolvedAlias
	kindSolvedErroneous
	// canonical types
	kindVar
	kindFunc
	kindApply
	kindRecord
	kindEmptyRecord
	kindTagUnion
	kindEmptyTagUnion
	kindAlias
	kindErroneous
)

type solvedEntry struct {
	Symbol symbolRef
	Type   *node
}

type aliasVarEntry struct {
	Name string
	Var  uint32
}

type aliasEntry struct {
	Symbol        symbolRef
	TypeVariables []aliasVarEntry
	LambdaSets    []*node
	Typ           *node
}

type storedVarEntry struct {
	Symbol symbolRef
	Var    uint32
}

type storageEntry struct {
	Var  uint32
	Node *node
}

type payload struct {
	Invalid     bool
	SolvedTypes []solvedEntry
	Aliases     []aliasEntry
	StoredVars  []storedVarEntry
	Storage     []storageEntry
}

type encoder struct {
	interns *symbols.Interns
}

func (e *encoder) symbol(sym symbols.Symbol) symbolRef {
	return symbolRef{Module: e.interns.ModuleName(sym.Module), Ident: e.interns.IdentName(sym)}
}

func (e *encoder) tag(t typesystem.TagName) tagRef {
	if t.IsPrivate {
		return tagRef{Private: e.symbol(t.Private), IsPrivate: true}
	}
	return tagRef{Global: t.Global}
}

func (e *encoder) solved(t typesystem.SolvedType) *node {
	switch st := t.(type) {
	case nil:
		return &node{Kind: kindNil}
	case typesystem.SolvedRigid:
		return &node{Kind: kindRigid, Name: st.Name}
	case typesystem.SolvedFlex:
		return &node{Kind: kindFlex, ID: uint32(st.ID)}
	case typesystem.SolvedWildcard:
		return &node{Kind: kindWildcard}
	case typesystem.SolvedFunc:
		return &node{Kind: kindSolvedFunc, Args: e.solvedList(st.Args), Closure: e.solved(st.Closure), Ret: e.solved(st.Ret)}
	case typesystem.SolvedApply:
		return &node{Kind: kindSolvedApply, Symbol: e.symbol(st.Symbol), Args: e.solvedList(st.Args)}
	case typesystem.SolvedRecord:
		n := &node{Kind: kindSolvedRecord, Ext: e.solved(st.Ext)}
		for _, f := range st.Fields {
			n.Names = append(n.Names, f.Name)
			n.Args = append(n.Args, e.solved(f.Type))
		}
		return n
	case typesystem.SolvedEmptyRecord:
		return &node{Kind: kindSolvedEmptyRecord}
	case typesystem.SolvedTagUnion:
		n := &node{Kind: kindSolvedTagUnion, Ext: e.solved(st.Ext)}
		for _, tag := range st.Tags {
			n.Tags = append(n.Tags, tagNode{Name: e.tag(tag.Name), Args: e.solvedList(tag.Args)})
		}
		return n
	case typesystem.SolvedEmptyTagUnion:
		return &node{Kind: kindSolvedEmptyTagUnion}
	case typesystem.SolvedAlias:
		n := &node{Kind: kindSolvedAlias, Symbol: e.symbol(st.Symbol), Lambdas: e.solvedList(st.LambdaSets), Ret: e.solved(st.Actual)}
		for _, a := range st.Args {
			n.Names = append(n.Names, a.Name)
			n.Args = append(n.Args, e.solved(a.Type))
		}
		return n
	case typesystem.SolvedErroneous:
		return &node{Kind: kindSolvedErroneous, Problem: int(st.Problem)}
	default:
		panic(fmt.Sprintf("cache: unknown solved type %T", t))
	}
}

func (e *encoder) solvedList(ts []typesystem.SolvedType) []*node {
	out := make([]*node, len(ts))
	for i, t := range ts {
		out[i] = e.solved(t)
	}
	return out
}

func (e *encoder) typ(t typesystem.Type) *node {
	switch tt := t.(type) {
	case nil:
		return &node{Kind: kindNil}
	case typesystem.TVar:
		return &node{Kind: kindVar, ID: uint32(tt.Var)}
	case typesystem.TFunc:
		return &node{Kind: kindFunc, Args: e.typeList(tt.Args), Closure: e.typ(tt.Closure), Ret: e.typ(tt.Ret)}
	case typesystem.TApp:
		return &node{Kind: kindApply, Symbol: e.symbol(tt.Symbol), Args: e.typeList(tt.Args)}
	case typesystem.TRecord:
		n := &node{Kind: kindRecord, Ext: e.typ(tt.Ext)}
		for _, f := range tt.Fields {
			n.Names = append(n.Names, f.Name)
			n.Args = append(n.Args, e.typ(f.Type))
		}
		return n
	case typesystem.TEmptyRecord:
		return &node{Kind: kindEmptyRecord}
	case typesystem.TTagUnion:
		n := &node{Kind: kindTagUnion, Ext: e.typ(tt.Ext)}
		for _, tag := range tt.Tags {
			n.Tags = append(n.Tags, tagNode{Name: e.tag(tag.Name), Args: e.typeList(tag.Args)})
		}
		return n
	case typesystem.TEmptyTagUnion:
		return &node{Kind: kindEmptyTagUnion}
	case typesystem.TAlias:
		n := &node{Kind: kindAlias, Symbol: e.symbol(tt.Symbol), Ret: e.typ(tt.Actual)}
		for _, a := range tt.TypeArguments {
			n.Names = append(n.Names, a.Name)
			n.Args = append(n.Args, e.typ(a.Type))
		}
		for _, ls := range tt.LambdaSetVariables {
			n.Lambdas = append(n.Lambdas, e.typ(ls.Type))
		}
		return n
	case typesystem.TErroneous:
		return &node{Kind: kindErroneous, Problem: int(tt.Problem)}
	default:
		panic(fmt.Sprintf("cache: unknown type %T", t))
	}
}

func (e *encoder) typeList(ts []typesystem.Type) []*node {
	out := make([]*node, len(ts))
	for i, t := range ts {
		out[i] = e.typ(t)
	}
	return out
}

// Encode serializes exposed types. Symbols are written by name through
// interns, so the result can be decoded in a later session.
func Encode(exposed constrain.ExposedModuleTypes, interns *symbols.Interns) ([]byte, error) {
	e := &encoder{interns: interns}
	var p payload

	switch exp := exposed.(type) {
	case constrain.ExposedInvalid:
		p.Invalid = true
	case *constrain.ExposedValid:
		for _, sym := range symbols.NewSetFromMap(exp.SolvedTypes).Sorted() {
			p.SolvedTypes = append(p.SolvedTypes, solvedEntry{Symbol: e.symbol(sym), Type: e.solved(exp.SolvedTypes[sym])})
		}
		for _, sym := range symbols.NewSetFromMap(exp.Aliases).Sorted() {
			alias := exp.Aliases[sym]
			entry := aliasEntry{Symbol: e.symbol(sym), Typ: e.typ(alias.Typ)}
			for _, tv := range alias.TypeVariables {
				entry.TypeVariables = append(entry.TypeVariables, aliasVarEntry{Name: tv.Name, Var: uint32(tv.Var)})
			}
			for _, ls := range alias.LambdaSetVariables {
				entry.LambdaSets = append(entry.LambdaSets, e.typ(ls.Type))
			}
			p.Aliases = append(p.Aliases, entry)
		}
		for _, sv := range exp.StoredVarsBySymbol {
			p.StoredVars = append(p.StoredVars, storedVarEntry{Symbol: e.symbol(sv.Symbol), Var: uint32(sv.Variable)})
		}
		if exp.StorageSubs != nil {
			for _, v := range exp.StorageSubs.Variables() {
				stored, _ := exp.StorageSubs.Get(v)
				p.Storage = append(p.Storage, storageEntry{Var: uint32(v), Node: e.solved(stored)})
			}
		}
	default:
		return nil, fmt.Errorf("cannot encode exposed types %T", exposed)
	}

	buf := new(bytes.Buffer)
	buf.Write(payloadMagic)
	buf.WriteByte(payloadVersion)
	if err := gob.NewEncoder(buf).Encode(&p); err != nil {
		return nil, fmt.Errorf("exposed types gob encoding failed: %w", err)
	}
	return buf.Bytes(), nil
}

type decoder struct {
	interns *symbols.Interns
}

func (d *decoder) symbol(ref symbolRef) symbols.Symbol {
	return d.interns.Symbol(ref.Module, ref.Ident)
}

func (d *decoder) tag(ref tagRef) typesystem.TagName {
	if ref.IsPrivate {
		return typesystem.PrivateTag(d.symbol(ref.Private))
	}
	return typesystem.GlobalTag(ref.Global)
}

func (d *decoder) solved(n *node) (typesystem.SolvedType, error) {
	if n == nil {
		return nil, nil
	}
	switch n.Kind {
	case kindNil:
		return nil, nil
	case kindRigid:
		return typesystem.SolvedRigid{Name: n.Name}, nil
	case kindFlex:
		return typesystem.SolvedFlex{ID: typesystem.VarID(n.ID)}, nil
	case kindWildcard:
		return typesystem.SolvedWildcard{}, nil
	case kindSolvedFunc:
		args, err := d.solvedList(n.Args)
		if err != nil {
			return nil, err
		}
		closure, err := d.solved(n.Closure)
		if err != nil {
			return nil, err
		}
		ret, err := d.solved(n.Ret)
		if err != nil {
			return nil, err
		}
		return typesystem.SolvedFunc{Args: args, Closure: closure, Ret: ret}, nil
	case kindSolvedApply:
		args, err := d.solvedList(n.Args)
		if err != nil {
			return nil, err
		}
		return typesystem.SolvedApply{Symbol: d.symbol(n.Symbol), Args: args}, nil
	case kindSolvedRecord:
		types, err := d.solvedList(n.Args)
		if err != nil {
			return nil, err
		}
		ext, err := d.solved(n.Ext)
		if err != nil {
			return nil, err
		}
		fields := make([]typesystem.SolvedField, len(types))
		for i := range types {
			fields[i] = typesystem.SolvedField{Name: n.Names[i], Type: types[i]}
		}
		return typesystem.SolvedRecord{Fields: fields, Ext: ext}, nil
	case kindSolvedEmptyRecord:
		return typesystem.SolvedEmptyRecord{}, nil
	case kindSolvedTagUnion:
		ext, err := d.solved(n.Ext)
		if err != nil {
			return nil, err
		}
		tags := make([]typesystem.SolvedTag, len(n.Tags))
		for i, tag := range n.Tags {
			args, err := d.solvedList(tag.Args)
			if err != nil {
				return nil, err
			}
			tags[i] = typesystem.SolvedTag{Name: d.tag(tag.Name), Args: args}
		}
		return typesystem.SolvedTagUnion{Tags: tags, Ext: ext}, nil
	case kindSolvedEmptyTagUnion:
		return typesystem.SolvedEmptyTagUnion{}, nil
	case kindSolvedAlias:
		types, err := d.solvedList(n.Args)
		if err != nil {
			return nil, err
		}
		lambdas, err := d.solvedList(n.Lambdas)
		if err != nil {
			return nil, err
		}
		actual, err := d.solved(n.Ret)
		if err != nil {
			return nil, err
		}
		args := make([]typesystem.SolvedAliasArg, len(types))
		for i := range types {
			args[i] = typesystem.SolvedAliasArg{Name: n.Names[i], Type: types[i]}
		}
		return typesystem.SolvedAlias{Symbol: d.symbol(n.Symbol), Args: args, LambdaSets: lambdas, Actual: actual}, nil
	case kindSolvedErroneous:
		return typesystem.SolvedErroneous{Problem: typesystem.Problem(n.Problem)}, nil
	default:
		return nil, fmt.Errorf("unexpected node kind %d in solved type", n.Kind)
	}
}

func (d *decoder) solvedList(ns []*node) ([]typesystem.SolvedType, error) {
	out := make([]typesystem.SolvedType, len(ns))
	for i, n := range ns {
		t, err := d.solved(n)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

func (d *decoder) typ(n *node) (typesystem.Type, error) {
	if n == nil {
		return nil, nil
	}
	switch n.Kind {
	case kindNil:
		return nil, nil
	case kindVar:
		return typesystem.TVar{Var: typesystem.Variable(n.ID)}, nil
	case kindFunc:
		args, err := d.typeList(n.Args)
		if err != nil {
			return nil, err
		}
		closure, err := d.typ(n.Closure)
		if err != nil {
			return nil, err
		}
		ret, err := d.typ(n.Ret)
		if err != nil {
			return nil, err
		}
		return typesystem.TFunc{Args: args, Closure: closure, Ret: ret}, nil
	case kindApply:
		args, err := d.typeList(n.Args)
		if err != nil {
			return nil, err
		}
		return typesystem.TApp{Symbol: d.symbol(n.Symbol), Args: args}, nil
	case kindRecord:
		types, err := d.typeList(n.Args)
		if err != nil {
			return nil, err
		}
		ext, err := d.typ(n.Ext)
		if err != nil {
			return nil, err
		}
		fields := make([]typesystem.RecordField, len(types))
		for i := range types {
			fields[i] = typesystem.RecordField{Name: n.Names[i], Type: types[i]}
		}
		return typesystem.TRecord{Fields: fields, Ext: ext}, nil
	case kindEmptyRecord:
		return typesystem.TEmptyRecord{}, nil
	case kindTagUnion:
		ext, err := d.typ(n.Ext)
		if err != nil {
			return nil, err
		}
		tags := make([]typesystem.Tag, len(n.Tags))
		for i, tag := range n.Tags {
			args, err := d.typeList(tag.Args)
			if err != nil {
				return nil, err
			}
			tags[i] = typesystem.Tag{Name: d.tag(tag.Name), Args: args}
		}
		return typesystem.TTagUnion{Tags: tags, Ext: ext}, nil
	case kindEmptyTagUnion:
		return typesystem.TEmptyTagUnion{}, nil
	case kindAlias:
		types, err := d.typeList(n.Args)
		if err != nil {
			return nil, err
		}
		lambdas, err := d.typeList(n.Lambdas)
		if err != nil {
			return nil, err
		}
		actual, err := d.typ(n.Ret)
		if err != nil {
			return nil, err
		}
		args := make([]typesystem.AliasArg, len(types))
		for i := range types {
			args[i] = typesystem.AliasArg{Name: n.Names[i], Type: types[i]}
		}
		sets := make([]typesystem.LambdaSet, len(lambdas))
		for i := range lambdas {
			sets[i] = typesystem.LambdaSet{Type: lambdas[i]}
		}
		return typesystem.TAlias{Symbol: d.symbol(n.Symbol), TypeArguments: args, LambdaSetVariables: sets, Actual: actual}, nil
	case kindErroneous:
		return typesystem.TErroneous{Problem: typesystem.Problem(n.Problem)}, nil
	default:
		return nil, fmt.Errorf("unexpected node kind %d in type", n.Kind)
	}
}

func (d *decoder) typeList(ns []*node) ([]typesystem.Type, error) {
	out := make([]typesystem.Type, len(ns))
	for i, n := range ns {
		t, err := d.typ(n)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

// Decode reads exposed types written by Encode, interning every symbol
// name into interns.
func Decode(data []byte, interns *symbols.Interns) (constrain.ExposedModuleTypes, error) {
	if len(data) < len(payloadMagic)+1 {
		return nil, fmt.Errorf("exposed types data too short")
	}
	if !bytes.Equal(data[:len(payloadMagic)], payloadMagic) {
		return nil, fmt.Errorf("invalid magic number, expected FXET")
	}
	if v := data[len(payloadMagic)]; v != payloadVersion {
		return nil, fmt.Errorf("unsupported exposed types version %d", v)
	}

	var p payload
	if err := gob.NewDecoder(bytes.NewReader(data[len(payloadMagic)+1:])).Decode(&p); err != nil {
		return nil, fmt.Errorf("exposed types gob decoding failed: %w", err)
	}
	if p.Invalid {
		return constrain.ExposedInvalid{}, nil
	}

	d := &decoder{interns: interns}
	valid := &constrain.ExposedValid{
		SolvedTypes: make(map[symbols.Symbol]typesystem.SolvedType, len(p.SolvedTypes)),
		Aliases:     make(map[symbols.Symbol]typesystem.Alias, len(p.Aliases)),
		StorageSubs: typesystem.NewStorageSubs(),
	}
	for _, entry := range p.SolvedTypes {
		t, err := d.solved(entry.Type)
		if err != nil {
			return nil, fmt.Errorf("solved type of %s.%s: %w", entry.Symbol.Module, entry.Symbol.Ident, err)
		}
		valid.SolvedTypes[d.symbol(entry.Symbol)] = t
	}
	for _, entry := range p.Aliases {
		typ, err := d.typ(entry.Typ)
		if err != nil {
			return nil, fmt.Errorf("alias %s.%s: %w", entry.Symbol.Module, entry.Symbol.Ident, err)
		}
		lambdas, err := d.typeList(entry.LambdaSets)
		if err != nil {
			return nil, fmt.Errorf("alias %s.%s: %w", entry.Symbol.Module, entry.Symbol.Ident, err)
		}
		sym := d.symbol(entry.Symbol)
		alias := typesystem.Alias{Symbol: sym, Typ: typ}
		for _, tv := range entry.TypeVariables {
			alias.TypeVariables = append(alias.TypeVariables, typesystem.AliasVar{Name: tv.Name, Var: typesystem.Variable(tv.Var)})
		}
		for _, ls := range lambdas {
			alias.LambdaSetVariables = append(alias.LambdaSetVariables, typesystem.LambdaSet{Type: ls})
		}
		valid.Aliases[sym] = alias
	}
	for _, sv := range p.StoredVars {
		valid.StoredVarsBySymbol = append(valid.StoredVarsBySymbol, constrain.StoredVar{
			Symbol:   d.symbol(sv.Symbol),
			Variable: typesystem.Variable(sv.Var),
		})
	}
	for _, entry := range p.Storage {
		t, err := d.solved(entry.Node)
		if err != nil {
			return nil, fmt.Errorf("stored variable %d: %w", entry.Var, err)
		}
		valid.StorageSubs.Insert(typesystem.Variable(entry.Var), t)
	}
	return valid, nil
}
