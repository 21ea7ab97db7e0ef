package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	yaml "gopkg.in/yaml.v3"

	"factbatch/common"
	"factbatch/glean"
)

// Decoder reads events one by one from JSON (one object per line or simply
// concatenated objects) or multi-document YAML stream. Unknown fields are
// rejected in both formats.
type Decoder struct {
	decode    func(any) error
	count     int
	skipEmpty bool
}

// NewDecoder returns decoder reading events in format from r.
func NewDecoder(r io.Reader, format common.EventFormat) (*Decoder, error) {
	switch format {
	case common.EventFormatJson:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		return &Decoder{decode: dec.Decode}, nil
	case common.EventFormatYaml:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		// "---" separators produce empty documents
		return &Decoder{decode: dec.Decode, skipEmpty: true}, nil
	default:
		return nil, fmt.Errorf("unsupported event format %s", format)
	}
}

// Decode reads next event into ev. Empty YAML documents are skipped, empty
// JSON object is returned as is and rejected later for missing kind. It
// returns io.EOF when stream is exhausted.
func (d *Decoder) Decode(ev *Event) error {
	for {
		*ev = Event{}
		if err := d.decode(ev); err != nil {
			if errors.Is(err, io.EOF) {
				return io.EOF
			}
			return fmt.Errorf("unable to decode event %d: %w", d.count+1, err)
		}
		if !d.skipEmpty || *ev != (Event{}) {
			break
		}
	}
	d.count++
	return nil
}

// Count returns number of successfully decoded events.
func (d *Decoder) Count() int {
	return d.count
}

// Load decodes all events from r and applies them to out. It returns number
// of events applied.
func Load(ctx context.Context, r io.Reader, format common.EventFormat, out *glean.Output) (int, error) {
	dec, err := NewDecoder(r, format)
	if err != nil {
		return 0, err
	}

	var ev Event
	for {
		if err := ctx.Err(); err != nil {
			return dec.Count(), err
		}
		if err := dec.Decode(&ev); err != nil {
			if errors.Is(err, io.EOF) {
				return dec.Count(), nil
			}
			return dec.Count(), err
		}
		if err := Apply(out, &ev); err != nil {
			return dec.Count() - 1, fmt.Errorf("event %d: %w", dec.Count(), err)
		}
	}
}
