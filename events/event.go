// Package events decodes streams of fact events produced by an indexer and
// feeds them into glean.Output.
package events

import (
	"fmt"

	"factbatch/glean"
)

// Kind names type of fact carried by an event.
type Kind string

const (
	KindFile                Kind = "file"
	KindFileLanguage        Kind = "fileLanguage"
	KindDocumentation       Kind = "documentation"
	KindSymbolDocumentation Kind = "symbolDocumentation"
	KindFileRange           Kind = "fileRange"
	KindSymbol              Kind = "symbol"
	KindDefinition          Kind = "definition"
	KindReference           Kind = "reference"
	KindLocalName           Kind = "localName"
	KindSymbolName          Kind = "symbolName"
	KindSymbolKind          Kind = "symbolKind"
	KindMetadata            Kind = "metadata"
	KindDisplayName         Kind = "displayName"
	KindDisplayNameSymbol   Kind = "displayNameSymbol"
)

var kindPredicates = map[Kind]glean.Predicate{
	KindFile:                glean.PredicateSrcFile,
	KindFileLanguage:        glean.PredicateFileLanguage,
	KindDocumentation:       glean.PredicateDocumentation,
	KindSymbolDocumentation: glean.PredicateSymbolDocumentation,
	KindFileRange:           glean.PredicateFileRange,
	KindSymbol:              glean.PredicateSymbol,
	KindDefinition:          glean.PredicateDefinition,
	KindReference:           glean.PredicateReference,
	KindLocalName:           glean.PredicateLocalName,
	KindSymbolName:          glean.PredicateSymbolName,
	KindSymbolKind:          glean.PredicateSymbolKind,
	KindMetadata:            glean.PredicateMetadata,
	KindDisplayName:         glean.PredicateDisplayName,
	KindDisplayNameSymbol:   glean.PredicateDisplayNameSymbol,
}

// Predicate returns predicate facts of this kind are written under.
func (k Kind) Predicate() (glean.Predicate, bool) {
	p, ok := kindPredicates[k]
	return p, ok
}

// Event is a single fact reported by the indexer. Only fields relevant to
// the Kind are used, the rest is ignored.
type Event struct {
	Kind Kind `json:"kind" yaml:"kind"`

	ID          glean.ID `json:"id,omitempty" yaml:"id,omitempty"`
	File        glean.ID `json:"file,omitempty" yaml:"file,omitempty"`
	Symbol      glean.ID `json:"symbol,omitempty" yaml:"symbol,omitempty"`
	Location    glean.ID `json:"location,omitempty" yaml:"location,omitempty"`
	Docs        glean.ID `json:"docs,omitempty" yaml:"docs,omitempty"`
	Name        glean.ID `json:"name,omitempty" yaml:"name,omitempty"`
	DisplayName glean.ID `json:"displayName,omitempty" yaml:"displayName,omitempty"`

	// path, symbol string, documentation or name text
	Text string `json:"text,omitempty" yaml:"text,omitempty"`

	Language   glean.LanguageID `json:"language,omitempty" yaml:"language,omitempty"`
	SymbolKind glean.SymbolKind `json:"symbolKind,omitempty" yaml:"symbolKind,omitempty"`
	Range      *glean.Range     `json:"range,omitempty" yaml:"range,omitempty"`

	Version      int32           `json:"version,omitempty" yaml:"version,omitempty"`
	TextEncoding int32           `json:"textEncoding,omitempty" yaml:"textEncoding,omitempty"`
	ToolInfo     *glean.ToolInfo `json:"toolInfo,omitempty" yaml:"toolInfo,omitempty"`
}

// Apply adds fact described by ev to out.
func Apply(out *glean.Output, ev *Event) error {
	switch ev.Kind {
	case KindFile:
		out.SrcFile(ev.ID, ev.Text)
	case KindFileLanguage:
		out.FileLanguage(ev.ID, ev.File, ev.Language)
	case KindDocumentation:
		out.Documentation(ev.ID, ev.Text)
	case KindSymbolDocumentation:
		out.SymbolDocumentation(ev.Symbol, ev.Docs)
	case KindFileRange:
		if ev.Range == nil {
			return fmt.Errorf("%s %d has no range", ev.Kind, ev.ID)
		}
		out.FileRange(ev.ID, ev.File, *ev.Range)
	case KindSymbol:
		out.Symbol(ev.ID, ev.Text)
	case KindDefinition:
		out.Definition(ev.Symbol, ev.Location)
	case KindReference:
		out.Reference(ev.Symbol, ev.Location)
	case KindLocalName:
		out.LocalName(ev.ID, ev.Text)
	case KindSymbolName:
		out.SymbolName(ev.Symbol, ev.Name)
	case KindSymbolKind:
		out.SymbolKind(ev.Symbol, ev.SymbolKind)
	case KindMetadata:
		out.Metadata(ev.Version, ev.TextEncoding, ev.ToolInfo)
	case KindDisplayName:
		out.DisplayName(ev.ID, ev.Text)
	case KindDisplayNameSymbol:
		out.DisplayNameSymbol(ev.Symbol, ev.DisplayName)
	case "":
		return fmt.Errorf("event kind is missing")
	default:
		return fmt.Errorf("unknown event kind %q", ev.Kind)
	}
	return nil
}
