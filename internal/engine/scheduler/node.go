package scheduler

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/mason/internal/adapters/fs"        //nolint:depguard // Wired in engine wiring
	"go.trai.ch/mason/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/mason/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports"
	"go.trai.ch/mason/internal/engine/cache"
)

// NodeID is the unique identifier for the engine Graft node.
const NodeID graft.ID = "engine.scheduler"

func init() {
	graft.Register(graft.Node[*Engine]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			cache.NodeID,
			fs.HasherNodeID,
			logger.NodeID,
			telemetry.TracerNodeID,
		},
		Run: func(ctx context.Context) (*Engine, error) {
			builder, err := graft.Dep[*cache.Builder](ctx)
			if err != nil {
				return nil, err
			}

			hasher, err := graft.Dep[domain.InputHasher](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}

			return NewEngine(builder, hasher, log, tracer), nil
		},
	})
}
