package glean

import "slices"

// Output accumulates facts in the order they were added, one sequence per
// predicate. Zero value is ready to use. Output is not safe for concurrent
// use and is consumed by WriteTo.
type Output struct {
	facts   [predicateCount][]any
	drained bool
}

// New returns empty Output.
func New() *Output {
	return &Output{}
}

func (o *Output) add(p Predicate, record any) {
	if o.drained {
		panic("glean: fact added to already written output")
	}
	o.facts[p] = append(o.facts[p], record)
}

// Len returns number of facts accumulated for predicate p.
func (o *Output) Len(p Predicate) int {
	if !p.IsValid() {
		return 0
	}
	return len(o.facts[p])
}

// Total returns number of facts accumulated for all predicates.
func (o *Output) Total() int {
	total := 0
	for _, records := range o.facts {
		total += len(records)
	}
	return total
}

// SrcFile adds source file with its path.
func (o *Output) SrcFile(id ID, path string) {
	o.add(PredicateSrcFile, idKey[string]{ID: id, Key: path})
}

// FileLanguage adds language of previously named source file.
func (o *Output) FileLanguage(id, file ID, lang LanguageID) {
	o.add(PredicateFileLanguage, idKey[fileLanguage]{ID: id, Key: fileLanguage{File: file, Language: lang}})
}

// Documentation adds documentation text.
func (o *Output) Documentation(id ID, text string) {
	o.add(PredicateDocumentation, idKey[string]{ID: id, Key: text})
}

// SymbolDocumentation links symbol to documentation. The fact reuses the
// documentation identifier as its own.
func (o *Output) SymbolDocumentation(symbol, docs ID) {
	o.add(PredicateSymbolDocumentation, idKey[symbolDocs]{ID: docs, Key: symbolDocs{Docs: docs, Symbol: symbol}})
}

// FileRange adds span in the source file.
func (o *Output) FileRange(id, file ID, rng Range) {
	o.add(PredicateFileRange, idKey[fileRange]{ID: id, Key: fileRange{File: file, Range: rng}})
}

// Symbol adds symbol with its string form.
func (o *Output) Symbol(id ID, symbol string) {
	o.add(PredicateSymbol, idKey[string]{ID: id, Key: symbol})
}

// Definition records that symbol is defined at location (file range).
func (o *Output) Definition(symbol, location ID) {
	o.add(PredicateDefinition, key[symbolLocation]{Key: symbolLocation{Location: location, Symbol: symbol}})
}

// Reference records that symbol is referenced at location (file range).
func (o *Output) Reference(symbol, location ID) {
	o.add(PredicateReference, key[symbolLocation]{Key: symbolLocation{Location: location, Symbol: symbol}})
}

// LocalName adds name text.
func (o *Output) LocalName(id ID, text string) {
	o.add(PredicateLocalName, idKey[string]{ID: id, Key: text})
}

// SymbolName links symbol to local name.
func (o *Output) SymbolName(symbol, name ID) {
	o.add(PredicateSymbolName, key[symbolName]{Key: symbolName{Name: name, Symbol: symbol}})
}

// SymbolKind records kind of the symbol.
func (o *Output) SymbolKind(symbol ID, kind SymbolKind) {
	o.add(PredicateSymbolKind, key[symbolAndKind]{Key: symbolAndKind{Kind: kind, Symbol: symbol}})
}

// Metadata adds index metadata, info may be nil.
func (o *Output) Metadata(version, textEncoding int32, info *ToolInfo) {
	if info != nil {
		// keep caller's value out of reach and never write null arguments
		c := *info
		if c.Arguments == nil {
			c.Arguments = []string{}
		} else {
			c.Arguments = slices.Clone(c.Arguments)
		}
		info = &c
	}
	o.add(PredicateMetadata, key[metadata]{Key: metadata{TextEncoding: textEncoding, ToolInfo: info, Version: version}})
}

// DisplayName adds display name text.
func (o *Output) DisplayName(id ID, name string) {
	o.add(PredicateDisplayName, idKey[string]{ID: id, Key: name})
}

// DisplayNameSymbol links symbol to display name.
func (o *Output) DisplayNameSymbol(symbol, name ID) {
	o.add(PredicateDisplayNameSymbol, key[displayNameSymbol]{Key: displayNameSymbol{DisplayName: name, Symbol: symbol}})
}
