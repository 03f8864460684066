// Package scheduler implements the build engine: it walks the dependency
// graph in topological order and applies the caching decision to each rule.
package scheduler

import (
	"context"
	"runtime"
	"sync"
	"time"

	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports"
	"go.trai.ch/mason/internal/engine/cache"
)

// EngineState is the phase of one build invocation.
type EngineState string

const (
	// StateIdle indicates no build has been requested yet.
	StateIdle EngineState = "Idle"
	// StatePlanning indicates requested targets are being resolved against
	// the dependency graph.
	StatePlanning EngineState = "Planning"
	// StateScheduling indicates the topological order is being restricted
	// to the requested closure.
	StateScheduling EngineState = "Scheduling"
	// StateRunning indicates rules are being evaluated.
	StateRunning EngineState = "Running"
	// StateCompleted indicates every requested target reached a terminal
	// result.
	StateCompleted EngineState = "Completed"
	// StateAborted indicates planning failed or the run was cancelled.
	StateAborted EngineState = "Aborted"
)

// Options configure one engine run.
type Options struct {
	// Jobs bounds the number of rules evaluated in parallel.
	// Zero means runtime.NumCPU().
	Jobs int
	// Strict aborts scheduling on the first failure instead of continuing
	// unrelated branches.
	Strict bool
}

// Report is the aggregate outcome of one run: a terminal result per target
// in the requested closure.
type Report struct {
	Requested []domain.BuildTarget
	Results   map[domain.BuildTarget]*domain.BuildResult
	Elapsed   time.Duration
}

// Failed reports whether any requested target, or a transitive dependency
// of one, missed a built or cached terminal state.
func (r *Report) Failed() bool {
	for _, res := range r.Results {
		if !res.Status.Succeeded() {
			return true
		}
	}
	return false
}

// Engine schedules rule evaluation respecting dependency order, enforces
// at-most-once execution per fingerprint through the caching builder, and
// aggregates failures.
type Engine struct {
	builder *cache.Builder
	hasher  domain.InputHasher
	logger  ports.Logger
	tracer  ports.Tracer

	mu    sync.RWMutex
	state EngineState
}

// NewEngine creates a build engine.
func NewEngine(builder *cache.Builder, hasher domain.InputHasher, logger ports.Logger, tracer ports.Tracer) *Engine {
	return &Engine{
		builder: builder,
		hasher:  hasher,
		logger:  logger,
		tracer:  tracer,
		state:   StateIdle,
	}
}

// State returns the engine's current phase.
func (e *Engine) State() EngineState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

func (e *Engine) setState(s EngineState) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// Run builds the requested targets. Planning errors (unknown target, empty
// request) are returned; rule failures are recorded in the report and never
// abort unrelated branches unless opts.Strict is set.
func (e *Engine) Run(ctx context.Context, graph *domain.DependencyGraph, requested []domain.BuildTarget, ec *domain.ExecutionContext, opts Options) (*Report, error) {
	started := time.Now()

	e.setState(StatePlanning)
	if len(requested) == 0 {
		e.setState(StateAborted)
		return nil, domain.ErrNoTargetsSpecified
	}
	members, err := graph.Closure(requested)
	if err != nil {
		e.setState(StateAborted)
		return nil, err
	}

	e.setState(StateScheduling)
	st := e.newRunState(ctx, graph, members, ec, opts)

	e.setState(StateRunning)
	st.loop()

	report := &Report{
		Requested: requested,
		Results:   st.results,
		Elapsed:   time.Since(started),
	}
	if st.aborted {
		e.setState(StateAborted)
	} else {
		e.setState(StateCompleted)
	}
	return report, nil
}

type runState struct {
	engine   *Engine
	graph    *domain.DependencyGraph
	members  map[domain.BuildTarget]bool
	order    []domain.BuildTarget
	inDegree map[domain.BuildTarget]int
	ready    []domain.BuildTarget
	results  map[domain.BuildTarget]*domain.BuildResult

	bctx      *domain.BuildContext
	ec        *domain.ExecutionContext
	jobs      int
	strict    bool
	active    int
	aborted   bool
	resultsCh chan *domain.BuildResult

	ctx    context.Context
	cancel context.CancelFunc
	// stepCtx is detached from cancellation: rules already executing are
	// allowed to finish and have their result recorded for reuse.
	stepCtx context.Context
}

func (e *Engine) newRunState(ctx context.Context, graph *domain.DependencyGraph, members map[domain.BuildTarget]bool, ec *domain.ExecutionContext, opts Options) *runState {
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	// Restrict the deterministic topological order to the requested closure.
	var order []domain.BuildTarget
	for _, t := range graph.TopologicalOrder() {
		if members[t] {
			order = append(order, t)
		}
	}

	inDegree := make(map[domain.BuildTarget]int, len(order))
	var ready []domain.BuildTarget
	for _, t := range order {
		rule, _ := graph.Rule(t)
		inDegree[t] = len(rule.Dependencies())
		if inDegree[t] == 0 {
			ready = append(ready, t)
		}
	}

	runCtx, cancel := context.WithCancel(ctx)

	return &runState{
		engine:   e,
		graph:    graph,
		members:  members,
		order:    order,
		inDegree: inDegree,
		ready:    ready,
		results:  make(map[domain.BuildTarget]*domain.BuildResult, len(order)),
		bctx: &domain.BuildContext{
			Graph:   graph,
			Hasher:  e.hasher,
			RootDir: ec.RootDir,
		},
		ec:        ec,
		jobs:      jobs,
		strict:    opts.Strict,
		resultsCh: make(chan *domain.BuildResult, jobs),
		ctx:       runCtx,
		cancel:    cancel,
		stepCtx:   context.WithoutCancel(ctx),
	}
}

func (st *runState) loop() {
	defer st.cancel()

	for {
		st.schedule()

		if st.active == 0 {
			break
		}

		select {
		case res := <-st.resultsCh:
			st.handleResult(res)
		case <-st.ctx.Done():
			// Stop scheduling new rules but drain the ones in flight so
			// their results are recorded.
			for st.active > 0 {
				st.handleResult(<-st.resultsCh)
			}
		}
	}

	if st.ctx.Err() != nil {
		st.aborted = true
	}
	st.markUnscheduled()
}

// schedule dispatches ready rules up to the parallelism bound. A rule whose
// dependency failed or was skipped is marked skipped without invoking the
// caching builder; the failure propagates downstream without aborting
// unrelated branches.
func (st *runState) schedule() {
	for len(st.ready) > 0 && st.active < st.jobs && st.ctx.Err() == nil {
		target := st.ready[0]
		st.ready = st.ready[1:]

		if cause, blocked := st.blockedByDependency(target); blocked {
			st.handleResult(&domain.BuildResult{
				Target:    target,
				Status:    domain.StatusSkipped,
				Error:     "dependency " + cause.String() + " did not build",
				Timestamp: time.Now(),
			})
			continue
		}

		rule, _ := st.graph.Rule(target)
		st.active++

		go func(rule domain.BuildRule) {
			ctx, span := st.engine.tracer.Start(st.stepCtx, rule.Target().String())
			res := st.engine.builder.Build(ctx, rule, st.bctx, st.ec)
			switch res.Status {
			case domain.StatusCached:
				span.Cached()
				span.End()
			case domain.StatusFailed:
				span.SetAttribute("error", res.Error)
				span.RecordError(domain.ErrStepFailed)
			default:
				span.End()
			}
			st.resultsCh <- res
		}(rule)
	}
}

func (st *runState) blockedByDependency(target domain.BuildTarget) (domain.BuildTarget, bool) {
	rule, _ := st.graph.Rule(target)
	for _, dep := range rule.Dependencies() {
		res, ok := st.results[dep.Target()]
		if ok && !res.Status.Succeeded() {
			return dep.Target(), true
		}
	}
	return domain.BuildTarget{}, false
}

func (st *runState) handleResult(res *domain.BuildResult) {
	// Skipped results are recorded inline by schedule; everything else
	// arrives through the results channel from a worker.
	if res.Status != domain.StatusSkipped {
		st.active--
	}
	st.results[res.Target] = res
	st.logResult(res)

	if res.Status == domain.StatusFailed && st.strict {
		st.aborted = true
		st.cancel()
	}

	for _, dependent := range st.graph.Dependents(res.Target) {
		if !st.members[dependent] {
			continue
		}
		st.inDegree[dependent]--
		if st.inDegree[dependent] == 0 {
			st.ready = append(st.ready, dependent)
		}
	}
}

// markUnscheduled records a skipped result for every member rule that never
// started, so each requested target has an attributable terminal state.
func (st *runState) markUnscheduled() {
	for _, t := range st.order {
		if st.results[t] == nil {
			st.results[t] = &domain.BuildResult{
				Target:    t,
				Status:    domain.StatusSkipped,
				Error:     "build aborted before rule was scheduled",
				Timestamp: time.Now(),
			}
		}
	}
}

func (st *runState) logResult(res *domain.BuildResult) {
	switch res.Status {
	case domain.StatusBuilt:
		st.engine.logger.Info("built " + res.Target.String())
	case domain.StatusCached:
		st.engine.logger.Debug("cached " + res.Target.String())
	case domain.StatusFailed:
		st.engine.logger.Warn("failed " + res.Target.String() + ": " + res.Error)
	case domain.StatusSkipped:
		st.engine.logger.Warn("skipped " + res.Target.String() + ": " + res.Error)
	}
}
