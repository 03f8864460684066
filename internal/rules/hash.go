package rules

import (
	"runtime"

	"go.trai.ch/mason/internal/core/domain"
	"golang.org/x/sync/errgroup"
)

// hashInputs computes content descriptors for the given paths concurrently.
// Descriptor order mirrors path order so fingerprints stay deterministic.
func hashInputs(bctx *domain.BuildContext, paths []string) ([]string, error) {
	descriptors := make([]string, len(paths))

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, path := range paths {
		g.Go(func() error {
			d, err := bctx.Hasher.HashInput(bctx.RootDir, path)
			if err != nil {
				return err
			}
			descriptors[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return descriptors, nil
}
