package convert

import (
	"archive/zip"
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"factbatch/common"
)

// headerSize is how much filetype needs to see to make a decision.
const headerSize = 262

// eventSource describes how event stream should be read.
type eventSource struct {
	format      common.EventFormat
	compression common.Compression
}

var formatExts = map[string]common.EventFormat{
	".jsonl":  common.EventFormatJson,
	".ndjson": common.EventFormatJson,
	".json":   common.EventFormatJson,
	".yaml":   common.EventFormatYaml,
	".yml":    common.EventFormatYaml,
}

// splitEventName separates name into base and recognized extensions:
// format extension optionally followed by compression extension. When format
// extension is not recognized ok is false and base has compression extension
// removed only.
func splitEventName(name string) (base string, src eventSource, ok bool) {
	base = name
	ext := strings.ToLower(filepath.Ext(base))
	for _, c := range []common.Compression{common.CompressionGzip, common.CompressionZstd} {
		if ext == c.Ext() {
			src.compression = c
			base = strings.TrimSuffix(base, filepath.Ext(base))
			ext = strings.ToLower(filepath.Ext(base))
			break
		}
	}
	if format, known := formatExts[ext]; known {
		src.format = format
		return strings.TrimSuffix(base, filepath.Ext(base)), src, true
	}
	return base, src, false
}

// detectCompression looks at the stream header.
func detectCompression(head []byte) common.Compression {
	switch {
	case filetype.Is(head, "gz"):
		return common.CompressionGzip
	case filetype.IsType(head, matchers.TypeZstd):
		return common.CompressionZstd
	default:
		return common.CompressionNone
	}
}

func readHeader(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	head := make([]byte, headerSize)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return head[:n], nil
}

// isArchiveFile checks if file is a zip archive, both name and content must
// agree.
func isArchiveFile(path string) (bool, error) {
	if !strings.EqualFold(filepath.Ext(path), ".zip") {
		return false, nil
	}
	head, err := readHeader(path)
	if err != nil {
		return false, err
	}
	return filetype.Is(head, "zip"), nil
}

// isEventFile checks if file name carries recognized event extensions. When
// content is compressed differently than the name says, content wins.
func isEventFile(path string) (bool, eventSource, error) {
	_, src, ok := splitEventName(filepath.Base(path))
	if !ok {
		return false, src, nil
	}
	head, err := readHeader(path)
	if err != nil {
		return false, src, err
	}
	src.compression = detectCompression(head)
	return true, src, nil
}

// isEventInArchive is isEventFile for archive entries.
func isEventInArchive(f *zip.File) (bool, eventSource, error) {
	_, src, ok := splitEventName(f.FileHeader.Name)
	if !ok {
		return false, src, nil
	}

	r, err := f.Open()
	if err != nil {
		return false, src, err
	}
	defer r.Close()

	head := make([]byte, headerSize)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false, src, err
	}
	src.compression = detectCompression(head[:n])
	return true, src, nil
}

// sniffStream is used when stream has no name to go by (stdin or file with
// unknown extension): compression is detected by content, format comes from
// configuration.
func sniffStream(r io.Reader, format common.EventFormat) (io.Reader, eventSource, error) {
	br := bufio.NewReaderSize(r, 4096)
	head, err := br.Peek(headerSize)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, eventSource{}, err
	}
	return br, eventSource{format: format, compression: detectCompression(head)}, nil
}

type zstdReadCloser struct {
	*zstd.Decoder
}

func (z zstdReadCloser) Close() error {
	z.Decoder.Close()
	return nil
}

// selectReader wraps r with decompressor if necessary. Closing returned
// reader does not close r.
func selectReader(r io.Reader, c common.Compression) (io.ReadCloser, error) {
	switch c {
	case common.CompressionNone:
		return io.NopCloser(r), nil
	case common.CompressionGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("unable to open gzip stream: %w", err)
		}
		return zr, nil
	case common.CompressionZstd:
		zr, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("unable to open zstd stream: %w", err)
		}
		return zstdReadCloser{zr}, nil
	default:
		// this should never happen
		panic(fmt.Sprintf("unsupported compression %s", c))
	}
}
