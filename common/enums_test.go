package common

import (
	"errors"
	"testing"
)

func TestParseCompression(t *testing.T) {
	tests := []struct {
		in      string
		want    Compression
		ext     string
		wantErr bool
	}{
		{"none", CompressionNone, "", false},
		{"GZIP", CompressionGzip, ".gz", false},
		{"zstd", CompressionZstd, ".zst", false},
		{"lz4", CompressionNone, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCompression(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCompression(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseCompression(%q) = %v, want %v", tt.in, got, tt.want)
			}
			if got.Ext() != tt.ext {
				t.Errorf("Ext() = %q, want %q", got.Ext(), tt.ext)
			}
		})
	}
}

func TestCompressionText(t *testing.T) {
	var c Compression
	if err := c.UnmarshalText([]byte("zstd")); err != nil {
		t.Fatalf("UnmarshalText() error = %v", err)
	}
	if c != CompressionZstd {
		t.Errorf("UnmarshalText() = %v, want zstd", c)
	}
	data, err := c.MarshalText()
	if err != nil || string(data) != "zstd" {
		t.Errorf("MarshalText() = %q, %v", data, err)
	}
	if err := c.UnmarshalText([]byte("rar")); err == nil {
		t.Error("Expected error for unknown compression")
	}
	if Compression(7).String() != "Compression(7)" {
		t.Errorf("unexpected name for invalid value: %s", Compression(7))
	}
}

func TestParseEventFormat(t *testing.T) {
	if f, err := ParseEventFormat("YAML"); err != nil || f != EventFormatYaml {
		t.Errorf("ParseEventFormat(YAML) = %v, %v", f, err)
	}
	if _, err := ParseEventFormat("xml"); err == nil {
		t.Error("Expected error for unknown format")
	}
	if len(EventFormatNames()) != 2 {
		t.Errorf("EventFormatNames() = %v", EventFormatNames())
	}
}

func TestMustParseCompression(t *testing.T) {
	if got := MustParseCompression("gzip"); got != CompressionGzip {
		t.Errorf("MustParseCompression(gzip) = %v, want gzip", got)
	}

	defer func() {
		if r := recover(); r == nil {
			t.Error("MustParseCompression should have panicked")
		}
	}()
	MustParseCompression("brotli")
}

func TestEnumErrors(t *testing.T) {
	if _, err := ParseCompression("lz4"); !errors.Is(err, ErrInvalidCompression) {
		t.Errorf("ParseCompression(lz4) error = %v, want ErrInvalidCompression", err)
	}
	if _, err := ParseEventFormat("xml"); !errors.Is(err, ErrInvalidEventFormat) {
		t.Errorf("ParseEventFormat(xml) error = %v, want ErrInvalidEventFormat", err)
	}
	if Compression(3).IsValid() || !CompressionZstd.IsValid() {
		t.Error("unexpected IsValid() result for Compression")
	}
	if EventFormat(-1).IsValid() || !EventFormatYaml.IsValid() {
		t.Error("unexpected IsValid() result for EventFormat")
	}
}
