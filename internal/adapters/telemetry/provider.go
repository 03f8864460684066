package telemetry

import (
	"os"

	"go.trai.ch/mason/internal/adapters/telemetry/progrock"
	"go.trai.ch/mason/internal/core/ports"
)

// traceEnvVar toggles the progrock recorder. Progress recording stays off by
// default so plain log output remains the single terminal surface.
const traceEnvVar = "MASON_TRACE"

// New selects the tracer implementation for this process.
func New() ports.Tracer {
	if os.Getenv(traceEnvVar) != "" {
		return progrock.New()
	}
	return NewNoOpTracer()
}
