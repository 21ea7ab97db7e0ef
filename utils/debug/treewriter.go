// Package debug formats readable summaries stored in debug reports.
package debug

import (
	"fmt"
	"strconv"
	"strings"
)

// TreeWriter accumulates indented lines, two spaces per level.
type TreeWriter struct {
	b strings.Builder
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{}
}

func (tw *TreeWriter) String() string {
	return tw.b.String()
}

func (tw *TreeWriter) Bytes() []byte {
	return []byte(tw.b.String())
}

func (tw *TreeWriter) indent(depth int) {
	for range depth {
		tw.b.WriteString("  ")
	}
}

// Line writes formatted line at depth.
func (tw *TreeWriter) Line(depth int, format string, args ...any) {
	tw.indent(depth)
	fmt.Fprintf(&tw.b, format, args...)
	tw.b.WriteByte('\n')
}

// Field writes "label: value" line at depth. Strings are quoted, so empty
// and multiline values are visible.
func (tw *TreeWriter) Field(depth int, label string, value any) {
	tw.indent(depth)
	tw.b.WriteString(label)
	tw.b.WriteString(": ")
	switch v := value.(type) {
	case string:
		tw.b.WriteString(strconv.Quote(v))
	case fmt.Stringer:
		tw.b.WriteString(v.String())
	default:
		fmt.Fprint(&tw.b, v)
	}
	tw.b.WriteByte('\n')
}
