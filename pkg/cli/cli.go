package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/funvibe/fxfront/internal/cache"
	"github.com/funvibe/fxfront/internal/config"
	"github.com/funvibe/fxfront/internal/diagnostics"
	"github.com/funvibe/fxfront/internal/effects"
	"github.com/funvibe/fxfront/internal/evaluator"
	"github.com/funvibe/fxfront/internal/pipeline"
	"github.com/funvibe/fxfront/internal/platform"
	"github.com/funvibe/fxfront/internal/prettyprinter"
	"github.com/funvibe/fxfront/internal/region"
	"github.com/funvibe/fxfront/internal/session"
	"github.com/funvibe/fxfront/internal/typesystem"
)

const usage = `Usage: fxfront [command] [flags] [args]

Commands:
  print [platform.yaml]       synthesize the effect module and print it (default)
  check [platform.yaml]       synthesize and type the effect module, report diagnostics
  run <ident> [args...]       evaluate a provided effect against stub host functions

Flags:
  -config <path>     platform header (default: nearest platform.yaml)
  -cache <path>      SQLite file caching exposed types between runs
  -lambda-sets       print the lambda set of every arrow
  -v                 log session progress to stderr
  -help              show this help
`

type options struct {
	command    string
	configPath string
	cachePath  string
	lambdaSets bool
	verbose    bool
	args       []string
}

func parseArgs(args []string) (*options, error) {
	opts := &options{}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-help", "--help", "help":
			opts.command = "help"
			return opts, nil
		case "-config", "--config", "-cache", "--cache":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("%s requires a path", arg)
			}
			i++
			if strings.HasSuffix(arg, "config") {
				opts.configPath = args[i]
			} else {
				opts.cachePath = args[i]
			}
		case "-lambda-sets", "--lambda-sets":
			opts.lambdaSets = true
		case "-v", "--verbose":
			opts.verbose = true
		default:
			if strings.HasPrefix(arg, "-") {
				return nil, fmt.Errorf("unknown flag %s", arg)
			}
			if opts.command == "" && (arg == "print" || arg == "check" || arg == "run") {
				opts.command = arg
				continue
			}
			opts.args = append(opts.args, arg)
		}
	}
	if opts.command == "" {
		opts.command = "print"
	}

	switch opts.command {
	case "print", "check":
		if len(opts.args) > 1 {
			return nil, fmt.Errorf("%s takes at most one platform header", opts.command)
		}
		if len(opts.args) == 1 {
			if opts.configPath != "" {
				return nil, fmt.Errorf("platform header given twice")
			}
			opts.configPath = opts.args[0]
		}
	case "run":
		if len(opts.args) == 0 {
			return nil, fmt.Errorf("run needs the identifier of a provided effect")
		}
	}
	return opts, nil
}

// Run executes the command line and returns the process exit code.
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) (code int) {
	// Catch panics and show user-friendly error
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(stderr, "Internal error: %v\n", r)
			fmt.Fprintln(stderr, "This is a bug. Please report it.")
			code = 1
		}
	}()

	if os.Getenv("FXFRONT_TEST_MODE") == "1" {
		config.IsTestMode = true
	}

	reporter := diagnostics.NewReporter(stderr)
	opts, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "fxfront: %v\n\n%s", err, usage)
		return 2
	}
	if opts.command == "help" {
		fmt.Fprint(stdout, usage)
		return 0
	}

	cfgPath := opts.configPath
	if cfgPath == "" {
		cfgPath, err = platform.FindConfig(".")
		if err != nil {
			reporter.Report(err)
			return 1
		}
	}
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		reporter.Report(fmt.Errorf("reading platform header: %w", err))
		return 1
	}
	cfg, err := platform.ParseConfig(data, cfgPath)
	if err != nil {
		reporter.Report(diagnostics.NewError(diagnostics.ErrP001, cfgPath, region.Zero(), "%v", err))
		return 1
	}

	ctx := context.Background()
	sessionOpts := session.Options{}
	if opts.verbose {
		sessionOpts.LogOutput = stderr
	}
	if opts.cachePath != "" {
		store, err := cache.Open(ctx, opts.cachePath)
		if err != nil {
			reporter.Report(err)
			return 1
		}
		defer store.Close()
		sessionOpts.Cache = store
	}

	s := session.New(sessionOpts)
	res, err := s.Compile(ctx, []session.Module{session.EffectModule(cfg, data)})
	if err != nil {
		reporter.Report(err)
		return 1
	}
	for _, d := range res.Diagnostics() {
		reporter.Report(d)
	}
	if res.HasErrors() {
		reporter.Summary()
		return 1
	}
	module := res.Module(cfg.Module)

	switch opts.command {
	case "check":
		reporter.Info("ok", fmt.Sprintf("%s: %d definitions, effect %s", module.ModuleName, len(module.Declarations), cfg.Effect.Name))
		reporter.Summary()
	case "print":
		p := prettyprinter.NewCodePrinter(s.Interns.IdentName)
		p.SetShowLambdaSets(opts.lambdaSets)
		p.PrintDeclarations(module.Declarations)
		fmt.Fprint(stdout, p.String())
	case "run":
		if err := runEffect(ctx, cfg, module, opts.args, stdin, stdout); err != nil {
			reporter.Report(err)
			return 1
		}
	}
	return 0
}

// runEffect evaluates a provided effect. Host functions are stubs: they
// trace their call and produce a zero value of their result type, reading
// Str results from stdin.
func runEffect(ctx context.Context, cfg *platform.Config, module *pipeline.PipelineContext, args []string, stdin io.Reader, stdout io.Writer) error {
	ident := args[0]
	var provide *platform.Provide
	for i := range cfg.Provides {
		if cfg.Provides[i].Ident == ident {
			provide = &cfg.Provides[i]
		}
	}
	if provide == nil {
		return fmt.Errorf("%s is not provided by the platform", ident)
	}
	if len(args)-1 != len(provide.Args) {
		return fmt.Errorf("%s takes %d arguments, got %d", ident, len(provide.Args), len(args)-1)
	}

	eval := evaluator.New()
	eval.Context = ctx
	eval.Names = module.Interns.SymbolName
	lines := bufio.NewScanner(stdin)
	for _, p := range cfg.Provides {
		eval.RegisterHost(effects.ForeignSymbolName(p.Ident), stubHost(p, lines, stdout))
	}

	env := evaluator.NewEnvironment()
	if res := eval.LoadDeclarations(module.Declarations, env); res != nil && res.Type() == evaluator.ERROR_OBJ {
		return fmt.Errorf("loading %s: %s", module.ModuleName, res.Inspect())
	}
	sym, ok := module.Lookup(module.ModuleName, ident)
	if !ok {
		return fmt.Errorf("%s is not defined in %s", ident, module.ModuleName)
	}
	effect, _ := env.Get(sym)

	if len(provide.Args) > 0 {
		values := make([]evaluator.Object, len(provide.Args))
		for i, typeName := range provide.Args {
			v, err := parseValue(typeName, args[i+1])
			if err != nil {
				return fmt.Errorf("%s argument %d: %w", ident, i, err)
			}
			values[i] = v
		}
		effect = eval.Apply(effect, values...)
	}

	result, err := eval.Run(effect)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "=> %s\n", result.Inspect())
	return nil
}

func stubHost(p platform.Provide, lines *bufio.Scanner, out io.Writer) evaluator.HostFunction {
	return func(args ...evaluator.Object) evaluator.Object {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = a.Inspect()
		}
		fmt.Fprintf(out, "%s(%s)\n", effects.ForeignSymbolName(p.Ident), strings.Join(parts, ", "))

		switch p.Returns {
		case config.StrTypeName:
			if lines.Scan() {
				return &evaluator.String{Value: lines.Text()}
			}
			return &evaluator.String{}
		case config.I64TypeName, config.F64TypeName:
			return &evaluator.Integer{}
		case config.BoolTypeName:
			return &evaluator.TagValue{Name: typesystem.GlobalTag("False")}
		default:
			return evaluator.UNIT
		}
	}
}

func parseValue(typeName, text string) (evaluator.Object, error) {
	switch typeName {
	case config.StrTypeName:
		return &evaluator.String{Value: text}, nil
	case config.I64TypeName:
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not an I64", text)
		}
		return &evaluator.Integer{Value: n}, nil
	case config.BoolTypeName:
		switch text {
		case "true", "True":
			return &evaluator.TagValue{Name: typesystem.GlobalTag("True")}, nil
		case "false", "False":
			return &evaluator.TagValue{Name: typesystem.GlobalTag("False")}, nil
		}
		return nil, fmt.Errorf("%q is not a Bool", text)
	case config.UnitTypeName:
		return evaluator.UNIT, nil
	default:
		return nil, fmt.Errorf("values of type %s cannot be passed on the command line", typeName)
	}
}
