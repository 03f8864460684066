package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/mason/internal/adapters/telemetry"
	"go.trai.ch/mason/internal/app"
	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports/mocks"
	"go.trai.ch/mason/internal/engine/cache"
	"go.trai.ch/mason/internal/engine/scheduler"
	"go.uber.org/mock/gomock"
)

// stubRule is a minimal always-buildable rule.
type stubRule struct {
	target domain.BuildTarget
	deps   []domain.BuildRule
	fail   bool
}

func (r *stubRule) Target() domain.BuildTarget       { return r.target }
func (r *stubRule) Type() domain.RuleType            { return domain.RuleTypeCommand }
func (r *stubRule) Dependencies() []domain.BuildRule { return r.deps }

func (r *stubRule) InputsToCompareToOutput(*domain.BuildContext) ([]string, error) {
	return []string{"input:" + r.target.String()}, nil
}

func (r *stubRule) BuildInternal(*domain.BuildContext) ([]domain.BuildStep, error) {
	if r.fail {
		return nil, errors.New("cannot generate steps")
	}
	return nil, nil
}

func quietLogger(ctrl *gomock.Controller) *mocks.MockLogger {
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	log.EXPECT().Error(gomock.Any()).AnyTimes()
	return log
}

func newTestApp(t *testing.T, graph *domain.DependencyGraph, loadErr error) *app.App {
	t.Helper()
	ctrl := gomock.NewController(t)

	loader := mocks.NewMockConfigLoader(ctrl)
	loader.EXPECT().Load(gomock.Any()).Return(graph, loadErr).AnyTimes()

	runner := mocks.NewMockStepRunner(ctrl)
	runner.EXPECT().
		RunSteps(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil).
		AnyTimes()

	log := quietLogger(ctrl)
	engine := scheduler.NewEngine(
		cache.NewBuilder(cache.NewMemoryStore(), runner, log),
		nil, log, telemetry.NewNoOpTracer())
	return app.New(loader, engine, log)
}

func simpleGraph(t *testing.T) *domain.DependencyGraph {
	t.Helper()
	dep := &stubRule{target: domain.MustParseBuildTarget("//lib:dep")}
	top := &stubRule{target: domain.MustParseBuildTarget("//app:top"), deps: []domain.BuildRule{dep}}
	g, err := domain.NewDependencyGraph([]domain.BuildRule{dep, top})
	require.NoError(t, err)
	return g
}

func TestApp_Build_Success(t *testing.T) {
	a := newTestApp(t, simpleGraph(t), nil)
	err := a.Build(context.Background(), []string{"//app:top"}, app.RunOptions{})
	require.NoError(t, err)
}

func TestApp_Build_NoTargets(t *testing.T) {
	a := newTestApp(t, simpleGraph(t), nil)
	err := a.Build(context.Background(), nil, app.RunOptions{})
	require.ErrorIs(t, err, domain.ErrNoTargetsSpecified)
}

func TestApp_Build_InvalidTargetName(t *testing.T) {
	a := newTestApp(t, simpleGraph(t), nil)
	err := a.Build(context.Background(), []string{"not-a-target"}, app.RunOptions{})
	require.ErrorIs(t, err, domain.ErrInvalidTarget)
}

func TestApp_Build_UnknownTarget(t *testing.T) {
	a := newTestApp(t, simpleGraph(t), nil)
	err := a.Build(context.Background(), []string{"//app:nope"}, app.RunOptions{})
	require.ErrorIs(t, err, domain.ErrTargetNotFound)
}

func TestApp_Build_LoaderError(t *testing.T) {
	a := newTestApp(t, nil, errors.New("yaml exploded"))
	err := a.Build(context.Background(), []string{"//app:top"}, app.RunOptions{})
	require.ErrorContains(t, err, "failed to load configuration")
}

func TestApp_Build_RuleFailure(t *testing.T) {
	broken := &stubRule{target: domain.MustParseBuildTarget("//app:broken"), fail: true}
	g, err := domain.NewDependencyGraph([]domain.BuildRule{broken})
	require.NoError(t, err)

	a := newTestApp(t, g, nil)
	err = a.Build(context.Background(), []string{"//app:broken"}, app.RunOptions{})
	require.ErrorIs(t, err, domain.ErrBuildFailed)
}

func TestApp_Targets(t *testing.T) {
	a := newTestApp(t, simpleGraph(t), nil)
	names, err := a.Targets("")
	require.NoError(t, err)
	assert.Equal(t, []string{"//lib:dep", "//app:top"}, names)
}
