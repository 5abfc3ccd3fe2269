package session

import (
	"sort"
	"strings"

	"github.com/funvibe/fxfront/internal/diagnostics"
	"github.com/funvibe/fxfront/internal/region"
	"github.com/funvibe/fxfront/internal/symbols"
)

// orderModules groups modules into waves: every module's imports are in
// earlier waves, so modules of one wave are independent of each other.
// Waves list indices into modules, sorted by module name.
func orderModules(interns *symbols.Interns, modules []Module) ([][]int, error) {
	byName := make(map[string]int, len(modules))
	for i, m := range modules {
		byName[m.Name] = i
	}

	pending := make([]int, len(modules))
	dependents := make([][]int, len(modules))
	for i, m := range modules {
		for _, name := range sortedImports(m.Imports) {
			if id, ok := interns.LookupModule(name); ok && id.IsBuiltin() {
				continue
			}
			dep, ok := byName[name]
			if !ok {
				return nil, diagnostics.NewError(diagnostics.ErrS003, m.Name, m.Imports[name],
					"module %s imports %s, which is not part of this compilation", m.Name, name)
			}
			pending[i]++
			dependents[dep] = append(dependents[dep], i)
		}
	}

	var ready []int
	for i := range modules {
		if pending[i] == 0 {
			ready = append(ready, i)
		}
	}

	var waves [][]int
	done := 0
	for len(ready) > 0 {
		sort.Slice(ready, func(a, b int) bool { return modules[ready[a]].Name < modules[ready[b]].Name })
		waves = append(waves, ready)
		done += len(ready)

		var next []int
		for _, i := range ready {
			for _, d := range dependents[i] {
				pending[d]--
				if pending[d] == 0 {
					next = append(next, d)
				}
			}
		}
		ready = next
	}

	if done != len(modules) {
		var cycle []string
		for i, m := range modules {
			if pending[i] > 0 {
				cycle = append(cycle, m.Name)
			}
		}
		sort.Strings(cycle)
		return nil, diagnostics.NewError(diagnostics.ErrS002, cycle[0], region.Zero(),
			"import cycle between %s", strings.Join(cycle, ", "))
	}
	return waves, nil
}

func sortedImports(imports map[string]region.Region) []string {
	out := make([]string, 0, len(imports))
	for name := range imports {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
