package routines

import (
	"context"
	"fmt"
	"strings"

	"go.starlark.net/lib/json"
	"go.starlark.net/lib/math"
	"go.starlark.net/lib/time"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

var starlarkModules = starlark.StringDict{
	"json": json.Module,
	"math": math.Module,
	"time": time.Module,
}

var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
	Recursion:       true,
}

const ctxKey = "vague.ctx"

type StarlarkLoader struct{}

var _ Loader = StarlarkLoader{}

func (StarlarkLoader) Load(env *Env, source string, entry string) (Routine, error) {
	if !strings.HasPrefix(strings.TrimLeft(source, " \t\r\n"), "def ") {
		return nil, malformed(entry, "source does not start with a function definition")
	}

	filename := entry + ".star"
	file, err := fileOptions.Parse(filename, source, 0)
	if err != nil {
		return nil, bindFailure(entry, err)
	}
	if len(file.Stmts) != 1 {
		return nil, malformed(entry, "expected exactly one top-level statement, got %d", len(file.Stmts))
	}
	def, ok := file.Stmts[0].(*syntax.DefStmt)
	if !ok {
		return nil, malformed(entry, "top-level statement is not a function definition")
	}
	if def.Name.Name != entry {
		return nil, malformed(entry, "function is named %s", def.Name.Name)
	}

	predeclared, err := starlarkPredeclared(env)
	if err != nil {
		return nil, bindFailure(entry, err)
	}
	_, program, err := starlark.SourceProgramOptions(fileOptions, filename, source, predeclared.Has)
	if err != nil {
		return nil, bindFailure(entry, err)
	}

	thread := &starlark.Thread{
		Name: entry,
	}
	globals, err := program.Init(thread, predeclared)
	if err != nil {
		return nil, bindFailure(entry, err)
	}
	fn, ok := globals[entry].(*starlark.Function)
	if !ok {
		return nil, malformed(entry, "%s is not a function", entry)
	}
	if fn.NumParams() != 1 || fn.HasVarargs() || fn.HasKwargs() {
		return nil, malformed(entry, "function must take exactly one argument")
	}

	return &starlarkRoutine{
		name:    entry,
		program: program,
		env:     env,
	}, nil
}

type starlarkRoutine struct {
	name    string
	program *starlark.Program
	env     *Env
}

var _ Routine = new(starlarkRoutine)

func (s *starlarkRoutine) Name() string {
	return s.name
}

func (s *starlarkRoutine) Invoke(ctx context.Context, mapping Mapping) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	output := s.env.Output()
	thread := &starlark.Thread{
		Name: s.name,
		Print: func(_ *starlark.Thread, msg string) {
			fmt.Fprintln(output, msg)
		},
	}
	thread.SetLocal(ctxKey, ctx)
	if n := s.env.MaxSteps(); n > 0 {
		thread.SetMaxExecutionSteps(n)
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			thread.Cancel(ctx.Err().Error())
		case <-done:
		}
	}()

	// module state is initialized per call so nothing leaks between invocations
	predeclared, err := starlarkPredeclared(s.env)
	if err != nil {
		return nil, err
	}
	globals, err := s.program.Init(thread, predeclared)
	if err != nil {
		return nil, err
	}

	arg, err := toStarlarkValue(copyMapping(mapping))
	if err != nil {
		return nil, err
	}
	result, err := starlark.Call(thread, globals[s.name], starlark.Tuple{arg}, nil)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %v", ctxErr, err)
		}
		return nil, err
	}

	return fromStarlarkValue(result)
}

func starlarkPredeclared(env *Env) (starlark.StringDict, error) {
	globals, routines := env.snapshot()
	ret := make(starlark.StringDict, len(starlarkModules)+len(globals)+len(routines))
	for name, module := range starlarkModules {
		ret[name] = module
	}
	for name, value := range globals {
		v, err := toStarlarkValue(value)
		if err != nil {
			return nil, fmt.Errorf("global %s: %w", name, err)
		}
		ret[name] = v
	}
	for name, routine := range routines {
		ret[name] = routineBuiltin(routine)
	}
	return ret, nil
}

func routineBuiltin(routine Routine) *starlark.Builtin {
	return starlark.NewBuiltin(routine.Name(), func(
		thread *starlark.Thread,
		b *starlark.Builtin,
		args starlark.Tuple,
		kwargs []starlark.Tuple,
	) (starlark.Value, error) {
		var arg starlark.Value = starlark.NewDict(0)
		if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 0, &arg); err != nil {
			return nil, err
		}
		converted, err := fromStarlarkValue(arg)
		if err != nil {
			return nil, err
		}
		mapping, ok := converted.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s: argument must be a dict with string keys", b.Name())
		}
		ctx, ok := thread.Local(ctxKey).(context.Context)
		if !ok {
			ctx = context.Background()
		}
		result, err := routine.Invoke(ctx, mapping)
		if err != nil {
			return nil, err
		}
		return toStarlarkValue(result)
	})
}
