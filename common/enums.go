// Enums shared by configuration and conversion, kept apart so that config
// does not depend on conversion code.
package common

//go:generate go tool go-enum --marshal --names --nocase --mustparse

// Compression applied to produced fact documents.
// ENUM(none, gzip, zstd)
type Compression int

// Ext returns file name extension added to compressed documents.
func (c Compression) Ext() string {
	switch c {
	case CompressionGzip:
		return ".gz"
	case CompressionZstd:
		return ".zst"
	default:
		return ""
	}
}

// Format of inbound fact event streams.
// ENUM(json, yaml)
type EventFormat int
