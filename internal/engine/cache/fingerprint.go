package cache

import (
	"encoding/binary"
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/zerr"
)

// fingerprinter computes rule fingerprints and memoizes them per target for
// one engine run. The digest covers the rule type, the rule's declared input
// descriptors in stable order and the fingerprints of all dependencies in
// declared order, so any change to an input or to a transitive dependency
// propagates upward through the graph.
//
// The target name is deliberately not part of the digest: structurally
// identical rules (diamond dependency patterns) share one cache entry.
type fingerprinter struct {
	mu   sync.Mutex
	memo map[domain.BuildTarget]domain.Fingerprint
}

func newFingerprinter() *fingerprinter {
	return &fingerprinter{
		memo: make(map[domain.BuildTarget]domain.Fingerprint),
	}
}

// fingerprint returns the cache key for rule, computing dependency
// fingerprints first. The scheduler evaluates rules in dependency order, so
// recursion normally bottoms out in memo hits.
func (f *fingerprinter) fingerprint(rule domain.BuildRule, bctx *domain.BuildContext) (domain.Fingerprint, error) {
	f.mu.Lock()
	if fp, ok := f.memo[rule.Target()]; ok {
		f.mu.Unlock()
		return fp, nil
	}
	f.mu.Unlock()

	deps := rule.Dependencies()
	depFps := make([]domain.Fingerprint, 0, len(deps))
	for _, dep := range deps {
		depFp, err := f.fingerprint(dep, bctx)
		if err != nil {
			return 0, err
		}
		depFps = append(depFps, depFp)
	}

	inputs, err := rule.InputsToCompareToOutput(bctx)
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to collect rule inputs"), "target", rule.Target().String())
	}

	digest := xxhash.New()

	_, _ = digest.WriteString(string(rule.Type()))
	_, _ = digest.Write([]byte{0})

	for _, input := range inputs {
		_, _ = digest.WriteString(input)
		_, _ = digest.Write([]byte{0})
	}
	_, _ = digest.Write([]byte{0}) // Section separator

	for _, depFp := range depFps {
		if err := binary.Write(digest, binary.LittleEndian, uint64(depFp)); err != nil {
			return 0, zerr.Wrap(err, "failed to write fingerprint to digest")
		}
	}

	fp := domain.Fingerprint(digest.Sum64())

	f.mu.Lock()
	f.memo[rule.Target()] = fp
	f.mu.Unlock()

	return fp, nil
}
