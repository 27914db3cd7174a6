package ext

import (
	"log/slog"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ardnew/jmes/jmespath"
	"github.com/ardnew/jmes/log"
)

// ExprFunctionName is the default name of the expr-lang bridge function.
const ExprFunctionName = "expr"

// ExprSignature is the signature of the expr-lang bridge function.
var ExprSignature = jmespath.Signature{
	Params:   []jmespath.ArgType{jmespath.TypeString, jmespath.TypeObject | jmespath.TypeNull},
	Optional: 1,
}

// ExprOption configures [RegisterExpr].
type ExprOption func(*exprBridge)

// WithExprName registers the bridge under name instead of
// [ExprFunctionName].
func WithExprName(name string) ExprOption {
	return func(b *exprBridge) { b.name = name }
}

// WithExprOptions passes opts to every expr.Compile call, e.g. to add
// functions or operators to the program language.
func WithExprOptions(opts ...expr.Option) ExprOption {
	return func(b *exprBridge) { b.compile = append(b.compile, opts...) }
}

// WithExprLogger sets the logger receiving program cache trace records.
func WithExprLogger(logger log.Logger) ExprOption {
	return func(b *exprBridge) { b.logger = logger }
}

// exprBridge compiles and runs expr-lang programs for a registry.
type exprBridge struct {
	programs sync.Map // xxhash of source -> *exprProgram
	logger   log.Logger
	name     string
	compile  []expr.Option
}

type exprProgram struct {
	program *vm.Program
	source  string
}

// RegisterExpr installs the expr-lang bridge function into r and returns r.
func RegisterExpr(r *jmespath.Registry, opts ...ExprOption) *jmespath.Registry {
	b := &exprBridge{name: ExprFunctionName}

	for _, opt := range opts {
		opt(b)
	}

	return r.Register(b.name, ExprSignature, b.call)
}

func (b *exprBridge) call(_ *jmespath.Context, args []*jmespath.Value) (*jmespath.Value, error) {
	source := args[0].Str()

	program, err := b.program(source)
	if err != nil {
		return nil, err
	}

	env := map[string]any{}
	if len(args) > 1 && !args[1].IsNull() {
		if m, ok := args[1].Native().(map[string]any); ok {
			env = m
		}
	}

	out, err := vm.Run(program, env)
	if err != nil {
		return nil, jmespath.ErrInvalidValue.Wrap(err).
			With(slog.String("function", b.name), slog.String("source", source))
	}

	result, err := jmespath.ToValue(out)
	if err != nil {
		return nil, jmespath.ErrInvalidValue.Wrap(err).
			With(slog.String("function", b.name), slog.String("source", source))
	}

	return result, nil
}

// program returns the compiled program for source, compiling it on first
// use.
func (b *exprBridge) program(source string) (*vm.Program, error) {
	hash := xxhash.Sum64String(source)

	cached, hit := b.programs.Load(hash)
	if hit {
		if p, _ := cached.(*exprProgram); p.source == source {
			b.trace(hash, true)

			return p.program, nil
		}
	}

	b.trace(hash, false)

	if source == "" {
		return nil, jmespath.ErrInvalidValue.
			With(slog.String("function", b.name), slog.String("issue", "empty program"))
	}

	opts := append([]expr.Option{expr.AllowUndefinedVariables()}, b.compile...)

	program, err := expr.Compile(source, opts...)
	if err != nil {
		return nil, jmespath.ErrInvalidValue.Wrap(err).
			With(slog.String("function", b.name), slog.String("source", source))
	}

	b.programs.Store(hash, &exprProgram{program: program, source: source})

	return program, nil
}

func (b *exprBridge) trace(hash uint64, hit bool) {
	b.logger.Trace(
		"program cache lookup",
		slog.String("source_hash", strconv.FormatUint(hash, 16)),
		slog.Bool("cache_hit", hit),
	)
}
