// Package platform reads the platform header, platform.yaml.
//
// The header names the platform's effect type and lists the functions the
// host provides:
//
//	module: Effect
//	effect:
//	  name: Task
//	provides:
//	  - ident: putLine
//	    args: [Str]
//	    returns: "{}"
//	  - ident: getLine
//	    returns: Str
//
// From it the compiler synthesizes the effect module: the effect alias, the
// builtin combinators and one wrapper per provided function.
package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/fxfront/internal/builtins"
	"github.com/funvibe/fxfront/internal/config"
	"github.com/funvibe/fxfront/internal/symbols"
	"github.com/funvibe/fxfront/internal/typesystem"
)

// Config represents the top-level platform.yaml configuration.
type Config struct {
	// Module is the name of the generated effect module. Defaults to "Effect".
	Module string `yaml:"module,omitempty"`

	Effect EffectSpec `yaml:"effect"`

	// Provides lists the host functions exposed as effects.
	Provides []Provide `yaml:"provides,omitempty"`
}

// EffectSpec names the effect type. Effect values are the private tag
// @<Name> wrapping a thunk.
type EffectSpec struct {
	// Name is the alias name, e.g. "Task".
	Name string `yaml:"name"`
}

// Provide is one host function.
type Provide struct {
	// Ident is the name in the effect module; the host implements it as
	// fx_<ident>.
	Ident string `yaml:"ident"`

	// Args are the argument type names. Empty means the function is a bare
	// effect value.
	Args []string `yaml:"args,omitempty"`

	// Returns is the type the effect produces. Defaults to "{}".
	Returns string `yaml:"returns,omitempty"`
}

// LoadConfig reads and parses a platform.yaml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading platform %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses platform.yaml content from bytes.
// The path argument is used only for error messages.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.setDefaults()
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FindConfig searches for platform.yaml starting from dir and walking up
// to parent directories. Returns "" with a nil error when none exists.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	base := strings.TrimSuffix(config.PlatformFileName, filepath.Ext(config.PlatformFileName))
	for {
		for _, ext := range config.PlatformFileExtensions {
			candidate := filepath.Join(dir, base+ext)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// setDefaults fills in default values for omitted fields.
func (c *Config) setDefaults() {
	if c.Module == "" {
		c.Module = "Effect"
	}
	for i := range c.Provides {
		if c.Provides[i].Returns == "" {
			c.Provides[i].Returns = config.UnitTypeName
		}
	}
}

// reserved are the names the effect module defines itself. Generated
// names containing "_" cannot collide with a valid ident.
var reserved = map[string]bool{
	config.EffectAfterName:   true,
	config.EffectMapName:     true,
	config.EffectAlwaysName:  true,
	config.EffectForeverName: true,
	config.ForeverEffectName: true,
	config.ForeverThunk1Name: true,
	config.ForeverThunk2Name: true,
}

// validate checks the configuration for semantic errors.
func (c *Config) validate(path string) error {
	if !isUpperIdent(c.Module) {
		return fmt.Errorf("%s: module %q must be a capitalized identifier", path, c.Module)
	}
	if c.Effect.Name == "" {
		return fmt.Errorf("%s: effect.name is required", path)
	}
	if !isUpperIdent(c.Effect.Name) {
		return fmt.Errorf("%s: effect.name %q must be a capitalized identifier", path, c.Effect.Name)
	}

	seen := make(map[string]int)
	for i, p := range c.Provides {
		if p.Ident == "" {
			return fmt.Errorf("%s: provides[%d]: ident is required", path, i)
		}
		if !isLowerIdent(p.Ident) {
			return fmt.Errorf("%s: provides[%d]: ident %q must start with a lowercase letter", path, i, p.Ident)
		}
		if reserved[p.Ident] {
			return fmt.Errorf("%s: provides[%d]: %q is defined by every effect module", path, i, p.Ident)
		}
		if prev, ok := seen[p.Ident]; ok {
			return fmt.Errorf("%s: provides[%d]: %q already provided by provides[%d]", path, i, p.Ident, prev)
		}
		seen[p.Ident] = i

		for j, arg := range p.Args {
			if !IsKnownType(arg) {
				return fmt.Errorf("%s: provides[%d].args[%d] (%s): unknown type %q", path, i, j, p.Ident, arg)
			}
		}
		if !IsKnownType(p.Returns) {
			return fmt.Errorf("%s: provides[%d] (%s): unknown return type %q", path, i, p.Ident, p.Returns)
		}
	}
	return nil
}

func isUpperIdent(s string) bool {
	return isIdent(s) && unicode.IsUpper(rune(s[0]))
}

func isLowerIdent(s string) bool {
	return isIdent(s) && unicode.IsLower(rune(s[0]))
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
		if !unicode.IsLetter(r) && (i == 0 || !unicode.IsDigit(r)) {
			return false
		}
	}
	return true
}

var knownTypes = map[string]func(vs *typesystem.VarStore) typesystem.Type{
	config.UnitTypeName: func(*typesystem.VarStore) typesystem.Type { return typesystem.TEmptyRecord{} },
	config.StrTypeName: func(*typesystem.VarStore) typesystem.Type {
		return typesystem.TApp{Symbol: symbols.StrStr}
	},
	config.I64TypeName:  builtinAlias(symbols.NumI64),
	config.F64TypeName:  builtinAlias(symbols.NumF64),
	config.BoolTypeName: builtinAlias(symbols.BoolBool),
}

func builtinAlias(sym symbols.Symbol) func(vs *typesystem.VarStore) typesystem.Type {
	return func(vs *typesystem.VarStore) typesystem.Type {
		alias := builtins.Aliases()[sym]
		var fv typesystem.FreeVars
		return typesystem.TAlias{Symbol: sym, Actual: typesystem.ToType(alias.Actual, &fv, vs)}
	}
}

// IsKnownType reports whether name can be used in a host signature.
func IsKnownType(name string) bool {
	_, ok := knownTypes[name]
	return ok
}

// ResolveType returns the canonical type for a type name.
func ResolveType(name string, vs *typesystem.VarStore) (typesystem.Type, error) {
	mk, ok := knownTypes[name]
	if !ok {
		return nil, fmt.Errorf("unknown type %q", name)
	}
	return mk(vs), nil
}

// Signature resolves the argument and return types of a provided function.
func (p Provide) Signature(vs *typesystem.VarStore) ([]typesystem.Type, typesystem.Type, error) {
	args := make([]typesystem.Type, len(p.Args))
	for i, name := range p.Args {
		t, err := ResolveType(name, vs)
		if err != nil {
			return nil, nil, fmt.Errorf("%s argument %d: %w", p.Ident, i, err)
		}
		args[i] = t
	}
	ret, err := ResolveType(p.Returns, vs)
	if err != nil {
		return nil, nil, fmt.Errorf("%s result: %w", p.Ident, err)
	}
	return args, ret, nil
}
