package pipelines

import (
	"context"
	"sync"
	"time"

	"github.com/reusee/dscope"
	"github.com/reusee/vague/configs"
	"github.com/reusee/vague/logs"
	"github.com/reusee/vague/oracles"
	"github.com/reusee/vague/routines"
	"github.com/reusee/vague/storages"
	"github.com/reusee/vague/vars"
)

type Module struct {
	dscope.Module
	Logs     logs.Module
	Oracles  oracles.Module
	Routines routines.Module
	Storages storages.Module
}

type MaxAttempts int

func (Module) MaxAttempts(
	loader configs.Loader,
) MaxAttempts {
	return vars.FirstNonZero(
		configs.First[MaxAttempts](loader, "max_attempts"),
		DefaultMaxAttempts,
	)
}

type RetryBackoff time.Duration

func (Module) RetryBackoff(
	loader configs.Loader,
) RetryBackoff {
	return RetryBackoff(vars.DurationOr(
		configs.First[string](loader, "retry_backoff"),
		0,
	))
}

type MaxConcurrentGenerations int

func (Module) MaxConcurrentGenerations(
	loader configs.Loader,
) MaxConcurrentGenerations {
	return vars.FirstNonZero(
		configs.First[MaxConcurrentGenerations](loader, "max_concurrent_generations"),
		4,
	)
}

type GetPipeline func() (*Pipeline, error)

func (Module) GetPipeline(
	getOracle oracles.GetDefaultOracle,
	getStore storages.GetStore,
	loaders routines.Loaders,
	env *routines.Env,
	dialect routines.Dialect,
	maxAttempts MaxAttempts,
	backoff RetryBackoff,
	maxConcurrent MaxConcurrentGenerations,
	logger logs.Logger,
	newSpan logs.NewSpan,
) GetPipeline {
	return sync.OnceValues(func() (*Pipeline, error) {
		oracle, err := getOracle()
		if err != nil {
			return nil, err
		}
		store, err := getStore()
		if err != nil {
			return nil, err
		}
		pipeline, err := New(context.Background(), Options{
			Oracle:                   oracle,
			Loaders:                  loaders,
			Env:                      env,
			Dialect:                  dialect,
			Store:                    store,
			MaxAttempts:              int(maxAttempts),
			RetryBackoff:             time.Duration(backoff),
			MaxConcurrentGenerations: int(maxConcurrent),
			Logger:                   logger,
			NewSpan:                  newSpan,
		})
		if err != nil {
			store.Close()
			return nil, err
		}
		return pipeline, nil
	})
}
