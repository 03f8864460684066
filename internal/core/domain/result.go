package domain

import "time"

// BuildStatus is the terminal state of one rule evaluation.
type BuildStatus string

const (
	// StatusBuilt indicates the rule's steps were executed successfully.
	StatusBuilt BuildStatus = "built"
	// StatusCached indicates the result was served from the cache without
	// executing any step.
	StatusCached BuildStatus = "cached"
	// StatusFailed indicates input collection, step generation or step
	// execution failed.
	StatusFailed BuildStatus = "failed"
	// StatusSkipped indicates the rule was not invoked because a dependency
	// failed, or because the build was aborted before it started.
	StatusSkipped BuildStatus = "skipped"
)

// Succeeded reports whether the status represents a usable output.
func (s BuildStatus) Succeeded() bool {
	return s == StatusBuilt || s == StatusCached
}

// BuildResult is the outcome of attempting to satisfy one rule.
type BuildResult struct {
	Target      BuildTarget `json:"target"`
	Status      BuildStatus `json:"status"`
	Fingerprint Fingerprint `json:"fingerprint,omitzero"`
	// Steps lists the descriptions of executed steps, empty when the result
	// was served from the cache.
	Steps     []string  `json:"steps,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp,omitzero"`
}
