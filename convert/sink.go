package convert

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"factbatch/common"
	"factbatch/config"
)

// sink is destination of a single fact document: buffered, optionally
// compressed and optionally backed by file which is removed when document
// could not be completed.
type sink struct {
	bw   *bufio.Writer
	comp io.WriteCloser
	w    io.Writer
	file *os.File
}

// newSink wraps w according to output configuration.
func newSink(w io.Writer, cfg *config.OutputConfig, log *zap.Logger) (*sink, error) {
	s := &sink{bw: bufio.NewWriterSize(w, 64*1024)}
	s.w = s.bw

	level := cfg.CompressionLevel
	switch cfg.Compression {
	case common.CompressionNone:
	case common.CompressionGzip:
		if level == 0 {
			level = gzip.DefaultCompression
		} else if level > gzip.BestCompression {
			log.Warn("Compression level is too high for gzip, using best", zap.Int("level", level))
			level = gzip.BestCompression
		}
		zw, err := gzip.NewWriterLevel(s.bw, level)
		if err != nil {
			return nil, fmt.Errorf("unable to create gzip writer: %w", err)
		}
		s.comp, s.w = zw, zw
	case common.CompressionZstd:
		opts := []zstd.EOption{zstd.WithEncoderConcurrency(1)}
		if level > 0 {
			opts = append(opts, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
		}
		zw, err := zstd.NewWriter(s.bw, opts...)
		if err != nil {
			return nil, fmt.Errorf("unable to create zstd writer: %w", err)
		}
		s.comp, s.w = zw, zw
	default:
		return nil, fmt.Errorf("unsupported compression %s", cfg.Compression)
	}
	return s, nil
}

// createSink creates output file and sink on top of it.
func createSink(name string, cfg *config.OutputConfig, log *zap.Logger) (*sink, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, fmt.Errorf("unable to create output file: %w", err)
	}
	s, err := newSink(f, cfg, log)
	if err != nil {
		f.Close()
		os.Remove(name)
		return nil, err
	}
	s.file = f
	return s, nil
}

func (s *sink) Write(p []byte) (int, error) {
	return s.w.Write(p)
}

// Close completes document: flushes compressor and buffer and closes the
// file if any.
func (s *sink) Close() (err error) {
	if s.comp != nil {
		err = s.comp.Close()
	}
	if err == nil {
		err = s.bw.Flush()
	}
	if s.file != nil {
		err = multierr.Append(err, s.file.Close())
	}
	return err
}

// Abort discards incomplete document.
func (s *sink) Abort() error {
	if s.comp != nil {
		s.comp.Close()
	}
	if s.file == nil {
		return nil
	}
	s.file.Close()
	return os.Remove(s.file.Name())
}
