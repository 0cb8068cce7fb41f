package pipelines

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/reusee/vague/identities"
	"github.com/reusee/vague/logs"
	"github.com/reusee/vague/oracles"
	"github.com/reusee/vague/routines"
	"github.com/reusee/vague/storages"
	"github.com/reusee/vague/syncs"
	"golang.org/x/sync/singleflight"
)

const DefaultMaxAttempts = 3

type Options struct {
	Oracle  oracles.Oracle
	Loaders routines.Loaders
	Env     *routines.Env
	Dialect routines.Dialect
	Store   storages.Store

	MaxAttempts              int
	RetryBackoff             time.Duration
	MaxConcurrentGenerations int

	Logger  logs.Logger
	NewSpan logs.NewSpan
}

// Pipeline owns every piece of state shared by calls to Vague.
type Pipeline struct {
	oracle  oracles.Oracle
	loaders routines.Loaders
	env     *routines.Env
	dialect routines.Dialect
	store   storages.Store
	mirror  *storages.Mirror

	mu         sync.Mutex
	cache      map[identities.Key]routines.Routine
	generating map[identities.Key]bool
	flights    map[identities.Key]*flight

	group singleflight.Group
	sem   syncs.Semaphore

	maxAttempts int
	backoff     time.Duration
	logger      logs.Logger
	newSpan     logs.NewSpan
}

// New loads the store once. The pipeline takes ownership of opts.Store.
func New(ctx context.Context, opts Options) (*Pipeline, error) {
	if opts.Oracle == nil {
		return nil, errors.New("no oracle")
	}
	if opts.Store == nil {
		return nil, errors.New("no store")
	}
	if opts.Loaders == nil {
		opts.Loaders = routines.Loaders{
			routines.DialectStarlark: routines.StarlarkLoader{},
			routines.DialectGo:       routines.GoLoader{},
		}
	}
	if opts.Env == nil {
		opts.Env = routines.NewEnv(nil)
	}
	if opts.Dialect == "" {
		opts.Dialect = routines.DialectStarlark
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.MaxConcurrentGenerations <= 0 {
		opts.MaxConcurrentGenerations = 4
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	mirror, err := storages.NewMirror(ctx, opts.Store)
	if err != nil {
		return nil, fmt.Errorf("load code store: %w", err)
	}
	opts.Logger.InfoContext(ctx, "code store loaded",
		"records", mirror.Len(),
	)

	p := &Pipeline{
		oracle:      opts.Oracle,
		loaders:     opts.Loaders,
		env:         opts.Env,
		dialect:     opts.Dialect,
		store:       opts.Store,
		mirror:      mirror,
		cache:       make(map[identities.Key]routines.Routine),
		generating:  make(map[identities.Key]bool),
		flights:     make(map[identities.Key]*flight),
		sem:         syncs.NewSemaphore(opts.MaxConcurrentGenerations),
		maxAttempts: opts.MaxAttempts,
		backoff:     opts.RetryBackoff,
		logger:      opts.Logger,
		newSpan:     opts.NewSpan,
	}
	p.bindStored()

	return p, nil
}

// bindStored makes every stored routine reachable by name before its first call.
// A stored routine is loaded when first invoked, so routines may reference each other in any order.
func (p *Pipeline) bindStored() {
	for _, key := range p.mirror.Keys() {
		record, ok := p.mirror.Get(key)
		if !ok {
			continue
		}
		if _, ok := p.env.Lookup(record.FunctionName); ok {
			continue
		}
		key := identities.Key(key)
		p.env.Bind(routines.NewNative(record.FunctionName, func(ctx context.Context, mapping routines.Mapping) (any, error) {
			routine, err := p.resolve(ctx, key, "", nil)
			if err != nil {
				return nil, err
			}
			return routine.Invoke(ctx, mapping)
		}))
	}
}

func (p *Pipeline) Env() *routines.Env {
	return p.env
}

func (p *Pipeline) Mirror() *storages.Mirror {
	return p.mirror
}

// Close cancels in-flight generations and closes the store.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	for _, f := range p.flights {
		f.cancel()
	}
	p.mu.Unlock()
	return p.store.Close()
}

// Vague returns the result of the routine identified by instructions and params, generating it on first use.
// locals is the only argument the routine sees; it is copied for each call.
func (p *Pipeline) Vague(
	ctx context.Context,
	instructions string,
	locals routines.Mapping,
	params ...identities.Param,
) (ret any, err error) {
	if p.newSpan != nil {
		ctx, _ = p.newSpan(ctx, "", "dialect", p.dialect)
	}
	key := identities.Identity(instructions, params)
	ctx = logs.WithAttrs(ctx, slog.String("key", key.Short()))
	defer func() {
		err = logs.WrapSpan(ctx, err)
	}()

	routine, err := p.resolve(ctx, key, instructions, locals)
	if err != nil {
		return nil, err
	}
	return routine.Invoke(ctx, locals)
}

func (p *Pipeline) State(key identities.Key) RoutineState {
	p.mu.Lock()
	_, cached := p.cache[key]
	generating := p.generating[key]
	p.mu.Unlock()
	if cached {
		return StateReady
	}
	if generating {
		return StateGenerating
	}
	if _, ok := p.mirror.Get(string(key)); ok {
		return StateReady
	}
	return StateUnknown
}

func (p *Pipeline) cached(key identities.Key) (routines.Routine, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	routine, ok := p.cache[key]
	return routine, ok
}

func (p *Pipeline) resolve(ctx context.Context, key identities.Key, instructions string, locals routines.Mapping) (routines.Routine, error) {
	if routine, ok := p.cached(key); ok {
		p.logger.DebugContext(ctx, "cache hit")
		return routine, nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// one loader or generator per key, followers share its result
		f := p.join(ctx, key)
		ch := p.group.DoChan(string(key), func() (any, error) {
			routine, err := p.loadOrGenerate(f.ctx, key, instructions, locals)
			if err != nil && f.ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %w", errAbandoned, err)
			}
			return routine, err
		})

		select {
		case res := <-ch:
			p.leave(key, f)
			if res.Err != nil {
				if ctx.Err() == nil && errors.Is(res.Err, errAbandoned) {
					// joined a flight left by all of its other callers
					continue
				}
				return nil, res.Err
			}
			return res.Val.(routines.Routine), nil
		case <-ctx.Done():
			p.leave(key, f)
			return nil, ctx.Err()
		}
	}
}

func (p *Pipeline) loadOrGenerate(ctx context.Context, key identities.Key, instructions string, locals routines.Mapping) (routines.Routine, error) {
	if routine, ok := p.cached(key); ok {
		return routine, nil
	}
	if record, ok := p.mirror.Get(string(key)); ok {
		return p.loadRecord(ctx, key, record)
	}
	return p.generate(ctx, key, instructions, locals)
}

// flight is the context of the shared work for one key.
// It outlives any single caller and is cancelled when the last caller leaves.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

func (p *Pipeline) join(ctx context.Context, key identities.Key) *flight {
	p.mu.Lock()
	defer p.mu.Unlock()
	f, ok := p.flights[key]
	if !ok {
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{
			ctx:    fctx,
			cancel: cancel,
		}
		p.flights[key] = f
	}
	f.waiters++
	return f
}

func (p *Pipeline) leave(key identities.Key, f *flight) {
	p.mu.Lock()
	defer p.mu.Unlock()
	f.waiters--
	if f.waiters > 0 {
		return
	}
	f.cancel()
	if p.flights[key] == f {
		delete(p.flights, key)
	}
}

func (p *Pipeline) loadRecord(ctx context.Context, key identities.Key, record storages.Record) (routines.Routine, error) {
	routine, err := p.loaders.Load(p.dialect, p.env, record.FunctionCode, record.FunctionName)
	if err != nil {
		p.logger.ErrorContext(ctx, "stored routine does not load",
			"name", record.FunctionName,
			"error", err,
		)
		return nil, err
	}
	p.logger.DebugContext(ctx, "loaded stored routine",
		"name", record.FunctionName,
	)
	p.ready(key, routine)
	return routine, nil
}

func (p *Pipeline) ready(key identities.Key, routine routines.Routine) {
	p.env.Bind(routine)
	p.mu.Lock()
	p.cache[key] = routine
	p.mu.Unlock()
}

func (p *Pipeline) generate(ctx context.Context, key identities.Key, instructions string, locals routines.Mapping) (routines.Routine, error) {
	p.mu.Lock()
	p.generating[key] = true
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		delete(p.generating, key)
		p.mu.Unlock()
	}()

	req := oracles.Request{
		Instructions: instructions,
		Locals:       slices.Sorted(maps.Keys(locals)),
		Globals:      p.env.Names(),
		Dialect:      string(p.dialect),
	}

	var attemptErrors []error
	for attempt := range p.maxAttempts {
		if attempt > 0 && p.backoff > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(p.backoff * time.Duration(1<<(attempt-1))):
			}
		}

		routine, record, err := p.attempt(ctx, req)
		if err == nil {
			return p.commit(ctx, key, routine, record)
		}
		if errors.Is(err, oracles.ErrConfigMissing) {
			return nil, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		p.logger.WarnContext(ctx, "generation attempt failed",
			"attempt", attempt+1,
			"error", err,
		)
		attemptErrors = append(attemptErrors, err)
	}

	return nil, &ExhaustedError{
		Key:      key,
		Attempts: attemptErrors,
	}
}

func (p *Pipeline) attempt(ctx context.Context, req oracles.Request) (routines.Routine, storages.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, storages.Record{}, err
	}
	if err := p.sem.Acquire(ctx); err != nil {
		return nil, storages.Record{}, err
	}
	p.logger.InfoContext(ctx, "generating routine")
	candidate, err := p.oracle.Generate(ctx, req)
	p.sem.Release()
	if err != nil {
		return nil, storages.Record{}, err
	}
	if candidate == nil {
		return nil, storages.Record{}, fmt.Errorf("%w: empty candidate", oracles.ErrMalformedOutput)
	}

	routine, err := p.loaders.Load(p.dialect, p.env, candidate.FunctionCode, candidate.FunctionName)
	if err != nil {
		return nil, storages.Record{}, err
	}
	return routine, storages.Record{
		FunctionCode: candidate.FunctionCode,
		FunctionName: candidate.FunctionName,
	}, nil
}

func (p *Pipeline) commit(ctx context.Context, key identities.Key, routine routines.Routine, record storages.Record) (routines.Routine, error) {
	stored, inserted, err := p.mirror.Put(ctx, string(key), record)
	if err != nil {
		return nil, fmt.Errorf("persist routine: %w", err)
	}
	if !inserted && stored != record {
		// another writer won
		return p.loadRecord(ctx, key, stored)
	}
	p.logger.InfoContext(ctx, "routine stored",
		"name", record.FunctionName,
	)
	p.ready(key, routine)
	return routine, nil
}
