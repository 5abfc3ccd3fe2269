package config

// PlatformFileName is the platform header read by the CLI when no path is given.
const PlatformFileName = "platform.yaml"

// PlatformFileExtensions are all recognized platform header extensions
var PlatformFileExtensions = []string{".yaml", ".yml"}

// IsTestMode indicates if the program is running in test mode.
// Printers normalise generated variable numbers when it is set.
var IsTestMode = false

// Naming conventions for host-exposed effect wrappers. The foreign symbol
// name is part of the host ABI: the platform links a function with exactly
// this name for every provided identifier.
const (
	ForeignSymbolPrefix = "fx_"
	ClosureArgPrefix    = "closure_arg_"
	EffectClosurePrefix = "effect_closure_"
)

// Builtin effect combinator names
const (
	EffectAfterName   = "after"
	EffectMapName     = "map"
	EffectAlwaysName  = "always"
	EffectForeverName = "forever"
)

// Identifiers introduced by the combinator builders
const (
	AlwaysValueName   = "effect_always_value"
	AlwaysInnerName   = "effect_always_inner"
	MapThunkName      = "effect_map_thunk"
	MapMapperName     = "effect_map_mapper"
	MapInnerName      = "effect_map_inner"
	AfterThunkName    = "effect_after_thunk"
	AfterToEffectName = "effect_after_toEffect"
	ForeverEffectName = "effect"
	ForeverInnerName  = "forever_inner"
	ForeverThunk1Name = "thunk1"
	ForeverThunk2Name = "thunk2"
)

// Builtin type names accepted in platform signatures
const (
	StrTypeName  = "Str"
	I64TypeName  = "I64"
	F64TypeName  = "F64"
	BoolTypeName = "Bool"
	UnitTypeName = "{}"
)
