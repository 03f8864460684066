package fs_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/mason/internal/adapters/fs"
)

func writeFile(t *testing.T, root, path, content string) {
	t.Helper()
	full := filepath.Join(root, path)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o750))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o600))
}

func newHasher() *fs.Hasher {
	return fs.NewHasher(fs.NewWalker())
}

func TestHasher_HashInput_File(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/a.c", "int main() {}\n")

	h := newHasher()
	first, err := h.HashInput(root, "src/a.c")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first, "src/a.c@"))

	second, err := h.HashInput(root, "src/a.c")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestHasher_HashInput_ContentChangeChangesDescriptor(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/a.c", "int main() {}\n")

	h := newHasher()
	before, err := h.HashInput(root, "src/a.c")
	require.NoError(t, err)

	writeFile(t, root, "src/a.c", "int main() { return 1; }\n")
	after, err := h.HashInput(root, "src/a.c")
	require.NoError(t, err)

	assert.NotEqual(t, before, after)
}

func TestHasher_HashInput_StableAcrossCheckoutLocations(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeFile(t, first, "src/a.c", "int main() {}\n")
	writeFile(t, second, "src/a.c", "int main() {}\n")

	h := newHasher()
	a, err := h.HashInput(first, "src/a.c")
	require.NoError(t, err)
	b, err := h.HashInput(second, "src/a.c")
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestHasher_HashInput_Directory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "res/a.txt", "a")
	writeFile(t, root, "res/sub/b.txt", "b")

	h := newHasher()
	before, err := h.HashInput(root, "res")
	require.NoError(t, err)

	writeFile(t, root, "res/sub/b.txt", "changed")
	after, err := h.HashInput(root, "res")
	require.NoError(t, err)

	assert.NotEqual(t, before, after)
}

func TestHasher_HashInput_Glob(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/a.c", "a")
	writeFile(t, root, "src/b.c", "b")

	h := newHasher()
	d, err := h.HashInput(root, "src/*.c")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(d, "src/*.c@"))
}

func TestHasher_HashInput_Missing(t *testing.T) {
	h := newHasher()
	_, err := h.HashInput(t.TempDir(), "does/not/exist.c")
	require.ErrorContains(t, err, "input not found")
}

func TestHasher_HashInput_MalformedPattern(t *testing.T) {
	h := newHasher()
	_, err := h.HashInput(t.TempDir(), "src/[")
	require.ErrorContains(t, err, "invalid input pattern")
}

func TestHasher_HashInput_UnreadableDirectoryFails(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	root := t.TempDir()
	writeFile(t, root, "res/a.txt", "a")
	writeFile(t, root, "res/locked/b.txt", "b")
	locked := filepath.Join(root, "res", "locked")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o750) })

	h := newHasher()
	_, err := h.HashInput(root, "res")
	require.ErrorContains(t, err, "failed to walk input directory")
}

func TestWalker_SkipsMetadataAndIgnores(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "a")
	writeFile(t, root, ".git/config", "x")
	writeFile(t, root, ".mason/cache.json", "{}")
	writeFile(t, root, "sub/b.log", "b")
	writeFile(t, root, "sub/c.txt", "c")

	var files []string
	for path, err := range fs.NewWalker().WalkFiles(root, []string{"*.log"}) {
		require.NoError(t, err)
		rel, err := filepath.Rel(root, path)
		require.NoError(t, err)
		files = append(files, filepath.ToSlash(rel))
	}

	assert.Equal(t, []string{"a.txt", "sub/c.txt"}, files)
}

func TestWalker_SurfacesWalkErrors(t *testing.T) {
	var walkErr error
	for _, err := range fs.NewWalker().WalkFiles(filepath.Join(t.TempDir(), "missing"), nil) {
		if err != nil {
			walkErr = err
			break
		}
	}
	require.Error(t, walkErr)
}
