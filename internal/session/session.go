// session - compilation driver: module ordering, the shared exposed-types
// store, per-module pipelines and concurrent solving
//
// Modules are processed in dependency waves. Within a wave, imports are
// resolved one module at a time under the store's lock; constraint
// generation and solving then run concurrently. A wave finishes before
// the next one reads its exposed types.

package session

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/funvibe/fxfront/internal/builtins"
	"github.com/funvibe/fxfront/internal/cache"
	"github.com/funvibe/fxfront/internal/constrain"
	"github.com/funvibe/fxfront/internal/diagnostics"
	"github.com/funvibe/fxfront/internal/pipeline"
	"github.com/funvibe/fxfront/internal/region"
	"github.com/funvibe/fxfront/internal/symbols"
)

// Module is one compilation unit handed to a session.
type Module struct {
	Name string
	// Imports maps imported module names to the region of the import.
	Imports map[string]region.Region
	// Canonicalize fills in declarations, references, exposed symbols and
	// aliases, using the context's env, scope and variable store.
	Canonicalize func(ctx *pipeline.PipelineContext) error
	// Source keys the cache. Modules without it are never cached.
	Source []byte
}

type Options struct {
	Solver      Solver
	Constrainer constrain.DeclConstrainer
	StdLib      *builtins.StdLib
	// Cache is optional; it is not closed by the session.
	Cache *cache.Store
	// LogOutput receives progress lines. Defaults to io.Discard.
	LogOutput io.Writer
}

type Session struct {
	ID      string
	Interns *symbols.Interns
	Exposed *constrain.ExposedByModule

	stdlib      *builtins.StdLib
	solver      Solver
	constrainer constrain.DeclConstrainer
	cache       *cache.Store
	logger      *log.Logger

	fingerprints map[string]string
}

func New(opts Options) *Session {
	s := &Session{
		ID:           uuid.NewString(),
		Interns:      symbols.NewInterns(),
		Exposed:      constrain.NewExposedByModule(),
		stdlib:       opts.StdLib,
		solver:       opts.Solver,
		constrainer:  opts.Constrainer,
		cache:        opts.Cache,
		fingerprints: make(map[string]string),
	}
	if s.stdlib == nil {
		s.stdlib = builtins.Get()
	}
	if s.solver == nil {
		s.solver = AnnotationSolver{}
	}
	if s.constrainer == nil {
		s.constrainer = constrain.SignatureConstrainer{}
	}
	out := opts.LogOutput
	if out == nil {
		out = io.Discard
	}
	s.logger = log.New(out, "["+s.ID[:8]+"] ", 0)
	return s
}

// Result holds every module's context in dependency order.
type Result struct {
	SessionID string
	Modules   []*pipeline.PipelineContext
}

func (r *Result) Module(name string) *pipeline.PipelineContext {
	for _, m := range r.Modules {
		if m.ModuleName == name {
			return m
		}
	}
	return nil
}

// Diagnostics lists errors and warnings of all modules in module order.
func (r *Result) Diagnostics() []*diagnostics.DiagnosticError {
	var out []*diagnostics.DiagnosticError
	for _, m := range r.Modules {
		out = append(out, m.Errors...)
		out = append(out, m.Warnings...)
	}
	return out
}

func (r *Result) HasErrors() bool {
	for _, m := range r.Modules {
		if m.HasErrors() {
			return true
		}
	}
	return false
}

// Compile runs every module through the pipeline. User errors are part of
// the result; the returned error is reserved for import cycles, unknown
// modules, cancellation and internal compiler errors.
func (s *Session) Compile(ctx context.Context, modules []Module) (result *Result, err error) {
	defer diagnostics.RecoverInternal(&err)

	waves, err := orderModules(s.Interns, modules)
	if err != nil {
		return nil, err
	}

	imports := &ImportsProcessor{Exposed: s.Exposed, StdLib: s.stdlib}
	back := pipeline.New(
		&ConstrainProcessor{Constrainer: s.constrainer},
		&SolveProcessor{Solver: s.solver},
	)

	result = &Result{SessionID: s.ID}
	solved := make(map[symbols.ModuleID]string)

	for i, wave := range waves {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		names := make([]string, len(wave))
		for j, idx := range wave {
			names[j] = modules[idx].Name
		}
		s.logger.Printf("wave %d: %s", i, strings.Join(names, ", "))

		contexts := make([]*pipeline.PipelineContext, len(wave))
		for j, idx := range wave {
			m := modules[idx]
			pctx := pipeline.NewPipelineContext(s.Interns, m.Name)
			front := pipeline.New(&CanonicalizeProcessor{Module: m}, imports)
			contexts[j] = front.Run(pctx)
			s.loadCached(ctx, m, pctx)
		}

		g, _ := errgroup.WithContext(ctx)
		for _, pctx := range contexts {
			if pctx.FromCache {
				continue
			}
			pctx := pctx
			g.Go(func() (err error) {
				defer diagnostics.RecoverInternal(&err)
				back.Run(pctx)
				s.Exposed.Insert(pctx.Home, pctx.ExposedTypes)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		for _, pctx := range contexts {
			if fp, ok := s.fingerprints[pctx.ModuleName]; ok && !pctx.FromCache {
				solved[pctx.Home] = fp
			}
			s.logger.Printf("%s: %d declarations, %d imports (%d direct), %d errors, %d warnings",
				pctx.ModuleName, len(pctx.Declarations), len(pctx.Imports.ImportedSymbols),
				directImports(pctx.Imports.HackySymbols), len(pctx.Errors), len(pctx.Warnings))
		}
		result.Modules = append(result.Modules, contexts...)
	}

	s.saveCached(ctx, solved)
	return result, nil
}

// directImports counts the imports whose exporter storage still holds the
// stored variable, so a solver could splice the graph instead of the type.
func directImports(hacky []constrain.HackyImport) int {
	n := 0
	for _, h := range hacky {
		if _, err := h.StorageSubs.Get(h.Variable); err == nil {
			n++
		}
	}
	return n
}

// loadCached computes the module's fingerprint and, on a hit, publishes the
// cached exposed types in place of solving. Cache failures only cost time.
func (s *Session) loadCached(ctx context.Context, m Module, pctx *pipeline.PipelineContext) {
	if s.cache == nil || m.Source == nil {
		return
	}
	deps := make([]string, 0, len(m.Imports))
	for _, name := range sortedImports(m.Imports) {
		if id, ok := s.Interns.LookupModule(name); ok && id.IsBuiltin() {
			continue
		}
		fp, ok := s.fingerprints[name]
		if !ok {
			// a dependency without a key makes this module uncacheable
			return
		}
		deps = append(deps, name+"="+fp)
	}
	fp := cache.Fingerprint(m.Source, deps...)
	s.fingerprints[m.Name] = fp

	if pctx.HasErrors() {
		return
	}
	exposed, ok, err := s.cache.Load(ctx, s.Interns, m.Name, fp)
	if err != nil {
		s.logger.Printf("warning: cache lookup for %s failed: %v", m.Name, err)
		return
	}
	if !ok {
		return
	}
	s.logger.Printf("%s: using cached exposed types", m.Name)
	pctx.ExposedTypes = exposed
	pctx.FromCache = true
	s.Exposed.Insert(pctx.Home, exposed)
}

func (s *Session) saveCached(ctx context.Context, fingerprints map[symbols.ModuleID]string) {
	if s.cache == nil || len(fingerprints) == 0 {
		return
	}
	if err := s.cache.SaveAll(ctx, s.Interns, s.ID, s.Exposed.Snapshot(), fingerprints); err != nil {
		s.logger.Printf("warning: failed to cache exposed types: %v", err)
	}
}

// ModuleName renders a module id of this session.
func (s *Session) ModuleName(id symbols.ModuleID) string {
	return s.Interns.ModuleName(id)
}

func (s *Session) String() string {
	return fmt.Sprintf("session %s (%d modules solved)", s.ID, s.Exposed.Len())
}
