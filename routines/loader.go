package routines

import "fmt"

type Dialect string

const (
	DialectStarlark Dialect = "starlark"
	DialectGo       Dialect = "go"
)

// Loader validates source text and turns it into a Routine bound to env.
type Loader interface {
	Load(env *Env, source string, entry string) (Routine, error)
}

type Loaders map[Dialect]Loader

func (l Loaders) Load(dialect Dialect, env *Env, source string, entry string) (Routine, error) {
	if dialect == "" {
		dialect = DialectStarlark
	}
	loader, ok := l[dialect]
	if !ok {
		return nil, fmt.Errorf("unknown dialect: %s", dialect)
	}
	return loader.Load(env, source, entry)
}
