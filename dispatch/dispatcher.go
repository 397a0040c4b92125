package dispatch

import (
	"context"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/barmatch/barmatch/core"
	"github.com/barmatch/barmatch/index"
)

const defaultStrategyTimeout = 3 * time.Second

// Result is the fan-in of one dispatch: per-strategy candidate lists keyed by
// strategy name, plus the names of strategies that timed out, errored, or
// panicked. A failed strategy never fails the dispatch.
type Result struct {
	ByStrategy map[string][]core.Candidate
	Failed     []string
}

// Empty reports whether no strategy produced candidates.
func (r *Result) Empty() bool {
	for _, candidates := range r.ByStrategy {
		if len(candidates) > 0 {
			return false
		}
	}
	return true
}

// Dispatcher selects the strategies applicable to the current fact store and
// runs them concurrently against the candidate index, each with its own
// timeout. Aggregate latency is the slowest strategy, not the sum.
type Dispatcher struct {
	index      index.Index
	strategies []Strategy
	pool       *ants.Pool
	timeout    time.Duration
	logger     *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher) error

// WithPoolSize sets the worker pool size for concurrent strategies.
// Default is runtime.NumCPU() / 2, but never fewer than the number of
// configured strategies.
func WithPoolSize(size int) Option {
	return func(d *Dispatcher) error {
		if size < 1 {
			size = 1
		}

		if d.pool != nil {
			d.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		d.pool = pool
		return nil
	}
}

// WithStrategyTimeout sets the per-strategy timeout.
// Default is 3s.
func WithStrategyTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) error {
		if timeout > 0 {
			d.timeout = timeout
		}
		return nil
	}
}

// WithStrategies replaces the default strategy set.
func WithStrategies(strategies ...Strategy) Option {
	return func(d *Dispatcher) error {
		if len(strategies) == 0 {
			return ErrNoStrategies
		}
		d.strategies = strategies
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		d.logger = logger
		return nil
	}
}

// NewDispatcher creates a dispatcher over the given candidate index.
func NewDispatcher(idx index.Index, opts ...Option) (*Dispatcher, error) {
	if idx == nil {
		return nil, ErrIndexRequired
	}

	d := &Dispatcher{
		index:      idx,
		strategies: DefaultStrategies(),
		timeout:    defaultStrategyTimeout,
		logger:     slog.Default().With("component", "dispatcher"),
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			d.Release()
			return nil, err
		}
	}

	if d.pool == nil {
		// The pool must seat every strategy at once; ants.Submit blocks when
		// saturated, which would serialize the fan-out.
		poolSize := runtime.NumCPU() / 2
		if poolSize < len(d.strategies) {
			poolSize = len(d.strategies)
		}
		pool, err := ants.NewPool(poolSize)
		if err != nil {
			return nil, err
		}
		d.pool = pool
	}
	return d, nil
}

// Dispatch runs every applicable strategy concurrently and fans their hits
// back in. The store is snapshotted once up front so strategies see a
// consistent view even if the caller keeps mutating it.
func (d *Dispatcher) Dispatch(ctx context.Context, store *core.FactStore) (*Result, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}

	snapshot := store.Clone()

	selected := make([]Strategy, 0, len(d.strategies))
	for _, strategy := range d.strategies {
		if strategy.Applicable(snapshot) {
			selected = append(selected, strategy)
		}
	}

	result := &Result{ByStrategy: make(map[string][]core.Candidate, len(selected))}
	if len(selected) == 0 {
		return result, nil
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, strategy := range selected {
		wg.Add(1)
		submitErr := d.pool.Submit(func() {
			defer wg.Done()
			name := strategy.Name()

			hits, err := d.runOne(ctx, strategy, snapshot)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				d.logger.Warn("strategy failed", "strategy", name, "err", err)
				result.Failed = append(result.Failed, name)
				return
			}
			result.ByStrategy[name] = toCandidates(name, hits)
		})
		if submitErr != nil {
			wg.Done()
			d.logger.Warn("strategy submission failed", "strategy", strategy.Name(), "err", submitErr)
			mu.Lock()
			result.Failed = append(result.Failed, strategy.Name())
			mu.Unlock()
		}
	}
	wg.Wait()

	sort.Strings(result.Failed)

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return result, nil
}

// runOne executes a single strategy under its own timeout, converting a
// panic into an error so one bad strategy cannot take down the dispatch.
func (d *Dispatcher) runOne(ctx context.Context, strategy Strategy, store *core.FactStore) (hits []index.Hit, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{strategy: strategy.Name(), value: r}
		}
	}()

	runCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	return strategy.Run(runCtx, store, d.index)
}

// Release releases the worker pool.
// The dispatcher should not be used after calling Release.
func (d *Dispatcher) Release() {
	if d.pool != nil {
		d.pool.Release()
	}
}

// toCandidates converts index hits into strategy-attributed candidates,
// preserving the index's raw-score ordering.
func toCandidates(strategy string, hits []index.Hit) []core.Candidate {
	candidates := make([]core.Candidate, len(hits))
	for i, hit := range hits {
		candidates[i] = core.Candidate{
			ID:            hit.CandidateId,
			Strategy:      strategy,
			RawScore:      hit.RawScore,
			MatchedFields: hit.MatchedFields,
		}
	}
	return candidates
}

type panicError struct {
	strategy string
	value    any
}

func (e *panicError) Error() string {
	return "strategy " + e.strategy + " panicked"
}
