package routines

import (
	"io"
	"os"

	"github.com/reusee/dscope"
	"github.com/reusee/vague/configs"
	"github.com/reusee/vague/logs"
	"github.com/reusee/vague/vars"
)

type Module struct {
	dscope.Module
	Logs logs.Module
}

// Output receives whatever routines print.
type Output io.Writer

func (Module) Output() Output {
	return os.Stdout
}

type MaxExecutionSteps uint64

func (Module) MaxExecutionSteps(
	loader configs.Loader,
) MaxExecutionSteps {
	return MaxExecutionSteps(configs.First[int64](loader, "max_execution_steps"))
}

func (Module) Dialect(
	loader configs.Loader,
) Dialect {
	return vars.FirstNonZero(
		configs.First[Dialect](loader, "dialect"),
		Dialect(os.Getenv("VAGUE_DIALECT")),
		DialectStarlark,
	)
}

func (Module) Env(
	output Output,
	maxSteps MaxExecutionSteps,
) *Env {
	env := NewEnv(output)
	env.SetMaxSteps(uint64(maxSteps))
	return env
}

func (Module) Loaders() Loaders {
	return Loaders{
		DialectStarlark: StarlarkLoader{},
		DialectGo:       GoLoader{},
	}
}
