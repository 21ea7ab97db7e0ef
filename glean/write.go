package glean

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"slices"
)

// ErrDrained is returned when WriteTo is called on already written Output.
var ErrDrained = errors.New("glean: output has already been written")

var (
	docStart   = []byte("[")
	docEnd     = []byte("]\n")
	groupSep   = []byte(",\n")
	groupStart = []byte(`{"facts":`)
)

// WriteTo writes accumulated facts to w as a single JSON array of predicate
// groups and returns number of bytes written. Output is drained in the
// process and cannot be used afterwards, regardless of the result.
//
// Errors returned by w are passed through as is. Any error means the document
// in w is incomplete and must be discarded.
func (o *Output) WriteTo(w io.Writer) (int64, error) {
	if o.drained {
		return 0, ErrDrained
	}
	facts := o.facts
	o.facts = [predicateCount][]any{}
	o.drained = true

	dw := &docWriter{w: w, first: true}
	if err := dw.write(docStart); err != nil {
		return dw.n, err
	}
	for p := range predicateCount {
		if err := dw.group(p, facts[p]); err != nil {
			return dw.n, err
		}
		facts[p] = nil
	}
	if err := dw.write(docEnd); err != nil {
		return dw.n, err
	}
	return dw.n, nil
}

// docWriter keeps state of the document across all predicate groups.
type docWriter struct {
	w     io.Writer
	n     int64
	first bool
	buf   bytes.Buffer
}

func (dw *docWriter) write(b []byte) error {
	n, err := dw.w.Write(b)
	dw.n += int64(n)
	return err
}

func (dw *docWriter) group(p Predicate, records []any) error {
	for chunk := range legacyChunks(records) {
		if !dw.first {
			if err := dw.write(groupSep); err != nil {
				return err
			}
		}
		dw.first = false

		dw.buf.Reset()
		dw.buf.Write(groupStart)
		if err := encodeFacts(&dw.buf, chunk); err != nil {
			return fmt.Errorf("unable to encode %s facts: %w", p, err)
		}
		fmt.Fprintf(&dw.buf, `,"predicate":"%s"}`, p.Versioned())
		if err := dw.write(dw.buf.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

// legacyChunks reproduces emission order of the previous producer: records
// are written last added first, in groups of at most ChunkSize. The order has
// no meaning for the database, it only keeps documents comparable. Records
// are reversed in place.
func legacyChunks(records []any) iter.Seq[[]any] {
	if len(records) == 0 {
		return func(func([]any) bool) {}
	}
	slices.Reverse(records)
	return slices.Chunk(records, ChunkSize)
}

// encodeFacts appends JSON array of records to buf, strings are escaped the
// same way as by the previous producer.
func encodeFacts(buf *bytes.Buffer, records []any) error {
	start := buf.Len()
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(records); err != nil {
		return err
	}
	// drop newline added by Encode
	buf.Truncate(buf.Len() - 1)

	encoded := buf.Bytes()[start:]
	if bytes.Contains(encoded, []byte(`\u202`)) {
		fixed := rawLineSeparators(encoded)
		buf.Truncate(start)
		buf.Write(fixed)
	}
	return nil
}

// rawLineSeparators replaces \u2028 and \u2029 escapes produced by
// encoding/json with the characters themselves. Escaped backslashes are
// skipped so literal text `\\u2028` is left untouched.
func rawLineSeparators(in []byte) []byte {
	out := make([]byte, 0, len(in))
	for i := 0; i < len(in); i++ {
		if in[i] != '\\' || i+1 >= len(in) {
			out = append(out, in[i])
			continue
		}
		if in[i+1] == 'u' && i+6 <= len(in) {
			switch string(in[i+2 : i+6]) {
			case "2028":
				out = append(out, "\u2028"...)
				i += 5
				continue
			case "2029":
				out = append(out, "\u2029"...)
				i += 5
				continue
			}
		}
		out = append(out, in[i], in[i+1])
		i++
	}
	return out
}
