// Package cache implements the fingerprinting and skip/execute decision
// shared by every rule variant.
package cache

import (
	"context"
	"sync"
	"time"

	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports"
)

// claim is one fingerprint slot in the per-run table. The goroutine that
// inserts the claim executes the rule and closes done after res is set;
// everyone else waits on done and reads res.
type claim struct {
	done chan struct{}
	res  *domain.BuildResult
}

// Builder is the caching wrapper around rule evaluation. For each rule it
// computes the fingerprint, consults the shared result store, and either
// serves the recorded result or executes the rule's steps, at most once per
// fingerprint per run, even under concurrent scheduling. The claim table
// lock is never held across step execution.
type Builder struct {
	store  ports.ResultStore
	runner ports.StepRunner
	logger ports.Logger
	fps    *fingerprinter

	mu     sync.Mutex
	claims map[domain.Fingerprint]*claim
}

// NewBuilder creates a caching Builder on top of a result store and a step
// runner.
func NewBuilder(store ports.ResultStore, runner ports.StepRunner, logger ports.Logger) *Builder {
	return &Builder{
		store:  store,
		runner: runner,
		logger: logger,
		fps:    newFingerprinter(),
		claims: make(map[domain.Fingerprint]*claim),
	}
}

// Fingerprint computes the cache key for rule without building it.
func (b *Builder) Fingerprint(rule domain.BuildRule, bctx *domain.BuildContext) (domain.Fingerprint, error) {
	return b.fps.fingerprint(rule, bctx)
}

// Build returns the terminal result for rule. Failures in input collection,
// step generation and step execution are encoded in the result rather than
// returned, so the scheduler can propagate them to dependents without
// aborting unrelated branches.
func (b *Builder) Build(ctx context.Context, rule domain.BuildRule, bctx *domain.BuildContext, ec *domain.ExecutionContext) *domain.BuildResult {
	target := rule.Target()

	fp, err := b.Fingerprint(rule, bctx)
	if err != nil {
		return failedResult(target, 0, err)
	}

	b.mu.Lock()
	if c, ok := b.claims[fp]; ok {
		// Another rule with an identical fingerprint got here first. Wait
		// for its result instead of building twice.
		b.mu.Unlock()
		<-c.done
		return servedResult(c.res, target, fp)
	}
	c := &claim{done: make(chan struct{})}
	b.claims[fp] = c
	b.mu.Unlock()

	// Holding the claim, consult the store for a result recorded by a
	// previous run. A broken store degrades to a rebuild, but never
	// silently: the user should know caching is not working.
	prev, err := b.store.Lookup(fp)
	if err != nil {
		b.logger.Warn("result store lookup failed for " + target.String() + ": " + err.Error())
	}
	if prev != nil {
		res := servedResult(prev, target, fp)
		b.resolve(c, res)
		return res
	}

	res := b.execute(ctx, rule, bctx, ec, fp)
	b.resolve(c, res)
	return res
}

func (b *Builder) execute(ctx context.Context, rule domain.BuildRule, bctx *domain.BuildContext, ec *domain.ExecutionContext, fp domain.Fingerprint) *domain.BuildResult {
	target := rule.Target()

	steps, err := rule.BuildInternal(bctx)
	if err != nil {
		res := failedResult(target, fp, err)
		b.record(fp, res)
		return res
	}

	descriptions := make([]string, len(steps))
	for i, step := range steps {
		descriptions[i] = step.Description()
	}

	if err := b.runner.RunSteps(ctx, ec, target, steps); err != nil {
		res := failedResult(target, fp, err)
		res.Steps = descriptions
		b.record(fp, res)
		return res
	}

	res := &domain.BuildResult{
		Target:      target,
		Status:      domain.StatusBuilt,
		Fingerprint: fp,
		Steps:       descriptions,
		Timestamp:   time.Now(),
	}
	b.record(fp, res)
	return res
}

// record persists a result. The build outcome stands either way, so a store
// write failure is surfaced as a warning rather than failing the rule.
func (b *Builder) record(fp domain.Fingerprint, res *domain.BuildResult) {
	if err := b.store.Record(fp, *res); err != nil {
		b.logger.Warn("failed to record result for " + res.Target.String() + ": " + err.Error())
	}
}

func (b *Builder) resolve(c *claim, res *domain.BuildResult) {
	c.res = res
	close(c.done)
}

// servedResult adapts a recorded result to the asking target. A successful
// result is served from the cache with no steps executed; a failed result
// keeps its failed status so the failure propagates to dependents.
func servedResult(prev *domain.BuildResult, target domain.BuildTarget, fp domain.Fingerprint) *domain.BuildResult {
	res := &domain.BuildResult{
		Target:      target,
		Status:      domain.StatusCached,
		Fingerprint: fp,
		Timestamp:   time.Now(),
	}
	if prev.Status == domain.StatusFailed {
		res.Status = domain.StatusFailed
		res.Error = prev.Error
	}
	return res
}

func failedResult(target domain.BuildTarget, fp domain.Fingerprint, err error) *domain.BuildResult {
	return &domain.BuildResult{
		Target:      target,
		Status:      domain.StatusFailed,
		Fingerprint: fp,
		Error:       err.Error(),
		Timestamp:   time.Now(),
	}
}
