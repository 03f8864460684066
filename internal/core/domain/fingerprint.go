package domain

import (
	"fmt"
	"strconv"

	"go.trai.ch/zerr"
)

// Fingerprint is the fixed-size cache key of one rule evaluation: a 64-bit
// digest over the rule type, the rule's declared inputs in stable order and
// the fingerprints of all dependencies in declared order. Identical
// structural input yields an identical fingerprint across process runs.
type Fingerprint uint64

// String renders the fingerprint as 16 lowercase hex digits.
func (f Fingerprint) String() string {
	return fmt.Sprintf("%016x", uint64(f))
}

// IsZero reports whether the fingerprint is unset.
func (f Fingerprint) IsZero() bool {
	return f == 0
}

// ParseFingerprint parses the hex form produced by String.
func ParseFingerprint(s string) (Fingerprint, error) {
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "malformed fingerprint"), "fingerprint", s)
	}
	return Fingerprint(v), nil
}

// MarshalText implements encoding.TextMarshaler.
func (f Fingerprint) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Fingerprint) UnmarshalText(text []byte) error {
	parsed, err := ParseFingerprint(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
