package cache

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/mason/internal/adapters/cas"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/mason/internal/adapters/logger" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/mason/internal/adapters/shell"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/mason/internal/core/ports"
)

// NodeID is the unique identifier for the caching builder Graft node.
const NodeID graft.ID = "engine.cache_builder"

func init() {
	graft.Register(graft.Node[*Builder]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			cas.NodeID,
			shell.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Builder, error) {
			store, err := graft.Dep[ports.ResultStore](ctx)
			if err != nil {
				return nil, err
			}

			runner, err := graft.Dep[ports.StepRunner](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewBuilder(store, runner, log), nil
		},
	})
}
