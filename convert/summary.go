package convert

import (
	"factbatch/glean"
	"factbatch/utils/debug"
)

// summary describes single conversion for debug report. It has to be built
// before facts are written, Output is drained by writing.
func summary(src string, es eventSource, refID string, events int, out *glean.Output, outputName string) []byte {
	tw := debug.NewTreeWriter()

	tw.Field(0, "Source", src)
	tw.Field(1, "format", es.format)
	tw.Field(1, "compression", es.compression)
	tw.Field(0, "Ref ID", refID)
	tw.Field(0, "Output", outputName)
	tw.Field(0, "Events", events)
	tw.Field(0, "Facts", out.Total())
	for _, p := range glean.Predicates() {
		if n := out.Len(p); n > 0 {
			tw.Line(1, "%s: %d in %d chunk(s)", p.Versioned(), n, (n+glean.ChunkSize-1)/glean.ChunkSize)
		}
	}
	return tw.Bytes()
}
