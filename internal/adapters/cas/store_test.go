package cas_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/mason/internal/adapters/cas"
	"go.trai.ch/mason/internal/core/domain"
)

func builtResult(name string, fp domain.Fingerprint) domain.BuildResult {
	return domain.BuildResult{
		Target:      domain.MustParseBuildTarget(name),
		Status:      domain.StatusBuilt,
		Fingerprint: fp,
		Steps:       []string{"cc -c a.c"},
		Timestamp:   time.Now(),
	}
}

func TestStore_RecordAndLookup(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".mason", "cache.json")
	store, err := cas.NewStore(path)
	require.NoError(t, err)

	fp := domain.Fingerprint(0xdeadbeef)
	require.NoError(t, store.Record(fp, builtResult("//pkg:a", fp)))

	res, err := store.Lookup(fp)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, domain.StatusBuilt, res.Status)
	assert.Equal(t, "//pkg:a", res.Target.String())
}

func TestStore_LookupMissReturnsNil(t *testing.T) {
	store, err := cas.NewStore(filepath.Join(t.TempDir(), "cache.json"))
	require.NoError(t, err)

	res, err := store.Lookup(domain.Fingerprint(42))
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestStore_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")

	first, err := cas.NewStore(path)
	require.NoError(t, err)
	fp := domain.Fingerprint(7)
	require.NoError(t, first.Record(fp, builtResult("//pkg:a", fp)))

	second, err := cas.NewStore(path)
	require.NoError(t, err)
	res, err := second.Lookup(fp)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, fp, res.Fingerprint)
}

func TestStore_DropsNonBuiltResults(t *testing.T) {
	store, err := cas.NewStore(filepath.Join(t.TempDir(), "cache.json"))
	require.NoError(t, err)

	fp := domain.Fingerprint(9)
	failed := builtResult("//pkg:a", fp)
	failed.Status = domain.StatusFailed
	failed.Error = "exit status 1"
	require.NoError(t, store.Record(fp, failed))

	// A failure must never be served by a later run.
	res, err := store.Lookup(fp)
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestStore_RejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := cas.NewStore(path)
	require.ErrorContains(t, err, "unmarshal")
}
