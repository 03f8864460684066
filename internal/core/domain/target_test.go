package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/mason/internal/core/domain"
)

func TestParseBuildTarget_Valid(t *testing.T) {
	cases := []string{
		"//src/com/facebook/orca:orca",
		"//:root",
		"//lib:a",
		"//deep/nested/pkg:some_name-1.2",
	}
	for _, name := range cases {
		t.Run(name, func(t *testing.T) {
			target, err := domain.ParseBuildTarget(name)
			require.NoError(t, err)
			assert.Equal(t, name, target.String())
			assert.False(t, target.IsZero())
		})
	}
}

func TestParseBuildTarget_Invalid(t *testing.T) {
	cases := map[string]string{
		"missing prefix":   "src/lib:a",
		"missing colon":    "//src/lib",
		"empty short name": "//src/lib:",
		"double colon":     "//src/lib:a:b",
		"absolute path":    "///src:a",
		"trailing slash":   "//src/:a",
		"empty string":     "",
		"space in name":    "//src:a b",
	}
	for label, name := range cases {
		t.Run(label, func(t *testing.T) {
			_, err := domain.ParseBuildTarget(name)
			require.ErrorIs(t, err, domain.ErrInvalidTarget)
		})
	}
}

func TestBuildTarget_ValueEquality(t *testing.T) {
	a := domain.MustParseBuildTarget("//src/lib:a")
	b := domain.MustParseBuildTarget("//src/lib:a")
	c := domain.MustParseBuildTarget("//src/lib:c")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Zero(t, a.Compare(b))
	assert.Negative(t, a.Compare(c))
	assert.Positive(t, c.Compare(a))
}

func TestBuildTarget_TextRoundTrip(t *testing.T) {
	target := domain.MustParseBuildTarget("//src/lib:a")

	text, err := target.MarshalText()
	require.NoError(t, err)

	var decoded domain.BuildTarget
	require.NoError(t, decoded.UnmarshalText(text))
	assert.Equal(t, target, decoded)

	assert.Error(t, decoded.UnmarshalText([]byte("not-a-target")))
}
