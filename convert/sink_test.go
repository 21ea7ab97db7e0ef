package convert

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"factbatch/common"
	"factbatch/config"
)

func TestNewSink(t *testing.T) {
	tests := []struct {
		name   string
		cfg    config.OutputConfig
		decode func(*testing.T, []byte) string
	}{
		{"none", config.OutputConfig{}, func(_ *testing.T, b []byte) string { return string(b) }},
		{"gzip default", config.OutputConfig{Compression: common.CompressionGzip}, gunzip},
		{"gzip best", config.OutputConfig{Compression: common.CompressionGzip, CompressionLevel: 9}, gunzip},
		{"gzip level too high", config.OutputConfig{Compression: common.CompressionGzip, CompressionLevel: 19}, gunzip},
		{"zstd default", config.OutputConfig{Compression: common.CompressionZstd}, unzstd},
		{"zstd level", config.OutputConfig{Compression: common.CompressionZstd, CompressionLevel: 19}, unzstd},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			s, err := newSink(&buf, &tt.cfg, testLogger(t))
			if err != nil {
				t.Fatalf("newSink() error = %v", err)
			}
			if _, err := s.Write([]byte(sampleDocument)); err != nil {
				t.Fatalf("Write() error = %v", err)
			}
			if err := s.Close(); err != nil {
				t.Fatalf("Close() error = %v", err)
			}
			if got := tt.decode(t, buf.Bytes()); got != sampleDocument {
				t.Errorf("sink produced %q, want %q", got, sampleDocument)
			}
		})
	}

	t.Run("unknown compression", func(t *testing.T) {
		if _, err := newSink(&bytes.Buffer{}, &config.OutputConfig{Compression: common.Compression(7)}, testLogger(t)); err == nil {
			t.Error("Expected error for unknown compression")
		}
	})
}

func TestCreateSink(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.OutputConfig{Compression: common.CompressionGzip}

	t.Run("complete", func(t *testing.T) {
		name := filepath.Join(dir, "done.json.gz")
		s, err := createSink(name, cfg, testLogger(t))
		if err != nil {
			t.Fatalf("createSink() error = %v", err)
		}
		s.Write([]byte(sampleDocument))
		if err := s.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		data, err := os.ReadFile(name)
		if err != nil {
			t.Fatalf("read output: %v", err)
		}
		if got := gunzip(t, data); got != sampleDocument {
			t.Errorf("output = %q", got)
		}
	})

	t.Run("aborted", func(t *testing.T) {
		name := filepath.Join(dir, "partial.json.gz")
		s, err := createSink(name, cfg, testLogger(t))
		if err != nil {
			t.Fatalf("createSink() error = %v", err)
		}
		s.Write([]byte("[{"))
		if err := s.Abort(); err != nil {
			t.Fatalf("Abort() error = %v", err)
		}
		if _, err := os.Stat(name); !os.IsNotExist(err) {
			t.Errorf("incomplete output was not removed: %v", err)
		}
	})

	t.Run("no directory", func(t *testing.T) {
		if _, err := createSink(filepath.Join(dir, "missing", "x.json"), cfg, testLogger(t)); err == nil {
			t.Error("Expected error for missing directory")
		}
	})
}
