package session

import (
	"fmt"

	"github.com/funvibe/fxfront/internal/diagnostics"
	"github.com/funvibe/fxfront/internal/effects"
	"github.com/funvibe/fxfront/internal/pipeline"
	"github.com/funvibe/fxfront/internal/platform"
	"github.com/funvibe/fxfront/internal/region"
)

// EffectModule is the module a platform header describes: the effect
// alias, the builtin combinators and one host-exposed def per provided
// function. source is the header's content and keys the cache.
func EffectModule(cfg *platform.Config, source []byte) Module {
	return Module{
		Name:   cfg.Module,
		Source: source,
		Canonicalize: func(ctx *pipeline.PipelineContext) error {
			return synthesizeEffectModule(ctx, cfg)
		},
	}
}

func synthesizeEffectModule(ctx *pipeline.PipelineContext, cfg *platform.Config) error {
	effect, err := ctx.Scope.Introduce(cfg.Effect.Name, ctx.Env, region.Zero())
	if err != nil {
		return diagnostics.NewError(diagnostics.ErrP001, ctx.ModuleName, region.Zero(), "effect %s: %v", cfg.Effect.Name, err)
	}
	ctx.Aliases[effect] = effects.EffectAliasDef(effect, ctx.VarStore)
	ctx.Declarations = effects.BuildEffectBuiltins(ctx.Env, ctx.Scope, effect, ctx.VarStore, ctx.Exposed, ctx.Declarations)

	tag := effects.EffectTag(effect)
	for _, p := range cfg.Provides {
		sym, err := ctx.Scope.Introduce(p.Ident, ctx.Env, region.Zero())
		if err != nil {
			return diagnostics.NewError(diagnostics.ErrP001, ctx.ModuleName, region.Zero(), "provided function %s: %v", p.Ident, err)
		}
		args, ret, err := p.Signature(ctx.VarStore)
		if err != nil {
			return fmt.Errorf("resolving signature: %w", err)
		}
		for _, a := range args {
			ctx.ReferenceType(a)
		}
		ctx.ReferenceType(ret)

		ann := effects.HostAnnotation(effect, args, ret, ctx.VarStore)
		ctx.Declare(effects.BuildHostExposedDef(ctx.Env, ctx.Scope, sym, p.Ident, tag, ctx.VarStore, ann))
	}
	return nil
}
