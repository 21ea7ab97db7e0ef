package glean

// ID is an opaque fact identifier assigned by the indexer. It is relayed to
// the output as is.
type ID uint64

// LanguageID is a language code as understood by the fact database.
type LanguageID uint8

// SymbolKind is a symbol kind code as understood by the fact database.
type SymbolKind uint8

// Range is a source span, lines and columns as provided by the indexer.
type Range struct {
	LineBegin   uint32 `json:"lineBegin" yaml:"lineBegin"`
	ColumnBegin uint32 `json:"columnBegin" yaml:"columnBegin"`
	LineEnd     uint32 `json:"lineEnd" yaml:"lineEnd"`
	ColumnEnd   uint32 `json:"columnEnd" yaml:"columnEnd"`
}

// ToolInfo describes the tool which produced the index.
type ToolInfo struct {
	Name      string   `json:"toolName" yaml:"toolName"`
	Arguments []string `json:"toolArguments" yaml:"toolArguments"`
	Version   string   `json:"version" yaml:"version"`
}

// Records as they are serialized. Field order is part of the output format,
// ingester tooling diffs documents textually.

type idKey[T any] struct {
	ID  ID `json:"id"`
	Key T  `json:"key"`
}

type key[T any] struct {
	Key T `json:"key"`
}

type fileLanguage struct {
	File     ID         `json:"file"`
	Language LanguageID `json:"language"`
}

type fileRange struct {
	File  ID    `json:"file"`
	Range Range `json:"range"`
}

type symbolLocation struct {
	Location ID `json:"location"`
	Symbol   ID `json:"symbol"`
}

type symbolDocs struct {
	Docs   ID `json:"docs"`
	Symbol ID `json:"symbol"`
}

type symbolName struct {
	Name   ID `json:"name"`
	Symbol ID `json:"symbol"`
}

type symbolAndKind struct {
	Kind   SymbolKind `json:"kind"`
	Symbol ID         `json:"symbol"`
}

// toolInfo is always present in the record, absent value is written as null.
type metadata struct {
	TextEncoding int32     `json:"textEncoding"`
	ToolInfo     *ToolInfo `json:"toolInfo"`
	Version      int32     `json:"version"`
}

type displayNameSymbol struct {
	DisplayName ID `json:"displayName"`
	Symbol      ID `json:"symbol"`
}
