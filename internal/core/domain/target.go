package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// BuildTarget is the globally unique identifier of one buildable unit,
// written as "//path/to/pkg:name". It is a pure value type: never mutated
// after creation, value-equal, and totally ordered by its full name.
type BuildTarget struct {
	name InternedString
}

// ParseBuildTarget parses a namespaced target name.
// It returns ErrInvalidTarget if the syntax is malformed.
func ParseBuildTarget(s string) (BuildTarget, error) {
	rest, ok := strings.CutPrefix(s, "//")
	if !ok {
		return BuildTarget{}, zerr.With(zerr.Wrap(ErrInvalidTarget, "target must start with //"), "target", s)
	}

	path, short, ok := strings.Cut(rest, ":")
	if !ok || short == "" {
		return BuildTarget{}, zerr.With(zerr.Wrap(ErrInvalidTarget, "target must contain :name"), "target", s)
	}
	if strings.Contains(short, ":") {
		return BuildTarget{}, zerr.With(zerr.Wrap(ErrInvalidTarget, "target contains more than one colon"), "target", s)
	}

	if !validTargetPath(path) {
		return BuildTarget{}, zerr.With(zerr.Wrap(ErrInvalidTarget, "invalid package path"), "target", s)
	}
	if !validShortName(short) {
		return BuildTarget{}, zerr.With(zerr.Wrap(ErrInvalidTarget, "invalid target name"), "target", s)
	}

	return BuildTarget{name: NewInternedString(s)}, nil
}

// MustParseBuildTarget parses a target name and panics on failure.
// Intended for tests and compiled-in constants.
func MustParseBuildTarget(s string) BuildTarget {
	t, err := ParseBuildTarget(s)
	if err != nil {
		panic(err)
	}
	return t
}

func validTargetPath(path string) bool {
	if path == "" {
		// "//:name" addresses the repository root.
		return true
	}
	if strings.HasPrefix(path, "/") || strings.HasSuffix(path, "/") || strings.Contains(path, "//") {
		return false
	}
	for _, r := range path {
		if !isTargetChar(r) && r != '/' {
			return false
		}
	}
	return true
}

func validShortName(name string) bool {
	for _, r := range name {
		if !isTargetChar(r) {
			return false
		}
	}
	return true
}

func isTargetChar(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_', r == '-', r == '.':
		return true
	}
	return false
}

// String returns the full namespaced name.
func (t BuildTarget) String() string {
	return t.name.String()
}

// IsZero reports whether the target is the zero value.
func (t BuildTarget) IsZero() bool {
	return t == BuildTarget{}
}

// Compare orders targets by their full name.
func (t BuildTarget) Compare(o BuildTarget) int {
	return strings.Compare(t.String(), o.String())
}

// MarshalText implements encoding.TextMarshaler.
func (t BuildTarget) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. The text must be a
// well-formed target name.
func (t *BuildTarget) UnmarshalText(text []byte) error {
	parsed, err := ParseBuildTarget(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
