package symbols

// Builtin module ids. User modules are numbered from FirstUserModule.
const (
	ModuleNum ModuleID = iota
	ModuleStr
	ModuleBool
	ModuleList
	ModuleResult

	FirstUserModule ModuleID = 16
)

type builtinModule struct {
	id     ModuleID
	name   string
	idents []string
}

// Identifier order is the IdentID: keep it in sync with the symbol vars below.
var builtinModules = []builtinModule{
	{ModuleNum, "Num", []string{"Num", "I64", "F64", "add", "sub", "mul", "isZero", "toStr"}},
	{ModuleStr, "Str", []string{"Str", "concat", "isEmpty", "countGraphemes"}},
	{ModuleBool, "Bool", []string{"Bool", "not", "and", "or"}},
	{ModuleList, "List", []string{"List", "len", "map", "append", "single"}},
	{ModuleResult, "Result", []string{"Result", "map", "withDefault"}},
}

var (
	NumNum    = Symbol{ModuleNum, 0}
	NumI64    = Symbol{ModuleNum, 1}
	NumF64    = Symbol{ModuleNum, 2}
	NumAdd    = Symbol{ModuleNum, 3}
	NumSub    = Symbol{ModuleNum, 4}
	NumMul    = Symbol{ModuleNum, 5}
	NumIsZero = Symbol{ModuleNum, 6}
	NumToStr  = Symbol{ModuleNum, 7}

	StrStr            = Symbol{ModuleStr, 0}
	StrConcat         = Symbol{ModuleStr, 1}
	StrIsEmpty        = Symbol{ModuleStr, 2}
	StrCountGraphemes = Symbol{ModuleStr, 3}

	BoolBool = Symbol{ModuleBool, 0}
	BoolNot  = Symbol{ModuleBool, 1}
	BoolAnd  = Symbol{ModuleBool, 2}
	BoolOr   = Symbol{ModuleBool, 3}

	ListList   = Symbol{ModuleList, 0}
	ListLen    = Symbol{ModuleList, 1}
	ListMap    = Symbol{ModuleList, 2}
	ListAppend = Symbol{ModuleList, 3}
	ListSingle = Symbol{ModuleList, 4}

	ResultResult      = Symbol{ModuleResult, 0}
	ResultMap         = Symbol{ModuleResult, 1}
	ResultWithDefault = Symbol{ModuleResult, 2}
)
