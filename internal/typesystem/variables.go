package typesystem

import "fmt"

// Variable is a type variable owned by the VarStore of one compilation unit.
// AST and type nodes only refer to it by identity.
type Variable uint32

// FirstUserVariable is the first id handed out by a fresh VarStore; lower ids
// are reserved for variables shared by every module.
const FirstUserVariable Variable = 64

func (v Variable) String() string {
	return fmt.Sprintf("v%d", uint32(v))
}

// VarStore allocates type variables monotonically. One per compilation unit;
// it is threaded explicitly through every builder that needs fresh variables.
type VarStore struct {
	next Variable
}

func NewVarStore() *VarStore {
	return &VarStore{next: FirstUserVariable}
}

// NewVarStoreFrom continues numbering after an existing store, e.g. when a
// module resumes after its header was processed.
func NewVarStoreFrom(next Variable) *VarStore {
	if next < FirstUserVariable {
		next = FirstUserVariable
	}
	return &VarStore{next: next}
}

func (vs *VarStore) Fresh() Variable {
	v := vs.next
	vs.next++
	return v
}

// Peek returns the next variable without allocating it.
func (vs *VarStore) Peek() Variable {
	return vs.next
}
