package glean

import "strconv"

// SchemaVersion is appended to every predicate name in the output.
const SchemaVersion = 1

// ChunkSize is the maximum number of facts in a single predicate group.
const ChunkSize = 10000

// Predicate identifies kind of fact. Values are declared in the order
// predicates are written, files first so that facts referring to them are
// ingested later.
type Predicate int

const (
	PredicateSrcFile Predicate = iota
	PredicateSymbol
	PredicateLocalName
	PredicateDocumentation
	PredicateFileLanguage
	PredicateFileRange
	PredicateDefinition
	PredicateReference
	PredicateSymbolDocumentation
	PredicateSymbolName
	PredicateSymbolKind
	PredicateMetadata
	PredicateDisplayName
	PredicateDisplayNameSymbol

	predicateCount
)

// NOTE: must be kept in sync with the constants above, position in this table
// is the position in the output document.
var predicateNames = [predicateCount]string{
	PredicateSrcFile:             "src.File",
	PredicateSymbol:              "scip.Symbol",
	PredicateLocalName:           "scip.LocalName",
	PredicateDocumentation:       "scip.Documentation",
	PredicateFileLanguage:        "scip.FileLanguage",
	PredicateFileRange:           "scip.FileRange",
	PredicateDefinition:          "scip.Definition",
	PredicateReference:           "scip.Reference",
	PredicateSymbolDocumentation: "scip.SymbolDocumentation",
	PredicateSymbolName:          "scip.SymbolName",
	PredicateSymbolKind:          "scip.SymbolKind",
	PredicateMetadata:            "scip.Metadata",
	PredicateDisplayName:         "scip.DisplayName",
	PredicateDisplayNameSymbol:   "scip.DisplayNameSymbol",
}

// Predicates returns all predicates in output order.
func Predicates() []Predicate {
	all := make([]Predicate, 0, predicateCount)
	for p := range predicateCount {
		all = append(all, p)
	}
	return all
}

// IsValid reports whether p is one of the known predicates.
func (p Predicate) IsValid() bool {
	return p >= 0 && p < predicateCount
}

// String returns predicate name without schema version, e.g. "scip.Symbol".
func (p Predicate) String() string {
	if !p.IsValid() {
		return "Predicate(" + strconv.Itoa(int(p)) + ")"
	}
	return predicateNames[p]
}

// Versioned returns predicate name as it appears in the output, e.g.
// "scip.Symbol.1".
func (p Predicate) Versioned() string {
	return p.String() + "." + strconv.Itoa(SchemaVersion)
}
