package progrock

import (
	"fmt"

	"github.com/vito/progrock"
	"go.trai.ch/mason/internal/core/ports"
)

var _ ports.Span = (*Vertex)(nil)

// Vertex implements ports.Span wrapping *progrock.VertexRecorder.
type Vertex struct {
	vertex *progrock.VertexRecorder
}

// End marks the vertex as finished successfully.
func (v *Vertex) End() {
	v.vertex.Done(nil)
}

// RecordError marks the vertex as failed.
func (v *Vertex) RecordError(err error) {
	v.vertex.Done(err)
}

// Cached marks the vertex as a cache hit.
func (v *Vertex) Cached() {
	v.vertex.Cached()
	v.vertex.Done(nil)
}

// SetAttribute records a key-value pair on the vertex output stream.
func (v *Vertex) SetAttribute(key string, value any) {
	_, _ = fmt.Fprintf(v.vertex.Stdout(), "%s=%v\n", key, value)
}
