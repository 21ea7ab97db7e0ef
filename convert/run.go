// Package convert implements "convert" command: it finds event sources,
// accumulates facts from each of them and writes fact documents.
package convert

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime/debug"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"factbatch/archive"
	"factbatch/config"
	"factbatch/events"
	"factbatch/glean"
	"factbatch/state"
)

// stdinSource is SOURCE argument requesting events from standard input.
const stdinSource = "-"

// ErrBrokenPipe is returned when reader of STDOUT goes away early.
var ErrBrokenPipe = errors.New("standard output was closed before document was complete")

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("convert")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}

	env.NoDirs, env.Overwrite, env.ToStdout = cmd.Bool("nodirs"), cmd.Bool("overwrite"), cmd.Bool("to-stdout")

	dst := cmd.Args().Get(1)
	if env.ToStdout {
		config.ReserveStdout()
		if len(dst) > 0 {
			log.Warn("Writing to STDOUT, destination is ignored", zap.String("destination", dst))
		}
	} else {
		if len(dst) == 0 {
			if dst, err = os.Getwd(); err != nil {
				return fmt.Errorf("unable to get working directory: %w", err)
			}
		}
		if dst, err = filepath.Abs(dst); err != nil {
			return err
		}
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	// Since zip "standard" does not define file name encoding we may need to
	// force archaic code page for old archives
	cp := cmd.String("force-zip-cp")
	if len(cp) > 0 {
		env.CodePage, err = ianaindex.IANA.Encoding(cp)
		if err != nil || env.CodePage == nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
			env.CodePage = nil
		} else {
			n, _ := ianaindex.IANA.Name(env.CodePage)
			log.Debug("Forcefully converting all non UTF-8 file names in archives", zap.String("charset", n))
		}
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst), zap.Stringer("run", env.RunID))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	if src == stdinSource {
		return processStdin(ctx, os.Stdin, dst, log)
	}
	if src, err = filepath.Abs(src); err != nil {
		return err
	}
	return process(ctx, src, dst, log)
}

// process handles the core conversion logic independently of CLI framework. It
// determines the input type (directory, archive, or single file) and processes
// accordingly.
func process(ctx context.Context, src, dst string, log *zap.Logger) error {
	env := state.EnvFromContext(ctx)

	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return err
		}

		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exists - probably path in archive
			continue
		}

		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				// directory cannot have tail - it would be simple file
				return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			if env.ToStdout {
				return errors.New("only single source could be written to STDOUT, directory was specified")
			}
			if err := processDir(ctx, head, dst, log); err != nil {
				return fmt.Errorf("unable to process directory: %w", err)
			}
			break
		}

		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		arc, err := isArchiveFile(head)
		if err != nil {
			// checking format - but cannot open target file
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if arc {
			// we need to look inside to see if path makes sense
			tail = strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator))
			if err := processArchive(ctx, head, tail, "", dst, log); err != nil {
				return fmt.Errorf("unable to process archive: %w", err)
			}
			break
		}

		if len(tail) != 0 {
			return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		ok, es, err := isEventFile(head)
		if err != nil {
			// checking format - but cannot open target file
			return fmt.Errorf("unable to check file type: %w", err)
		}
		if !ok {
			// explicitly named file, go by content and configuration
			log.Debug("File extension not recognized, using configured event format",
				zap.String("file", head), zap.Stringer("format", env.Cfg.Input.DefaultFormat))
		}
		return processFile(ctx, head, filepath.Base(head), es, !ok, dst, log)
	}
	if len(head) == 0 {
		return fmt.Errorf("input source was not found (%s)", src)
	}
	return nil
}

// processDir walks directory tree finding event files and archives and
// processes them in natural order of their relative paths. Failures are
// collected and do not stop processing.
func processDir(ctx context.Context, dir, dst string, log *zap.Logger) (err error) {
	var paths []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if d.Type().IsRegular() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return err
	}
	slices.SortStableFunc(paths, naturalCompare)

	count := 0
	for _, path := range paths {
		if cerr := ctx.Err(); cerr != nil {
			return multierr.Append(err, cerr)
		}

		rel := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))

		arc, er := isArchiveFile(path)
		if er != nil {
			// checking format - but cannot open target file
			log.Warn("Skipping file", zap.String("file", path), zap.Error(er))
			continue
		}
		if arc {
			count++
			if er := processArchive(ctx, path, "", filepath.Dir(rel), dst, log); er != nil {
				log.Error("Unable to process archive", zap.String("file", path), zap.Error(er))
				err = multierr.Append(err, fmt.Errorf("%s: %w", rel, er))
			}
			continue
		}

		ok, es, er := isEventFile(path)
		if er != nil {
			log.Warn("Skipping file", zap.String("file", path), zap.Error(er))
			continue
		}
		if !ok {
			log.Debug("Skipping file, not recognized as event file or archive", zap.String("file", path))
			continue
		}

		count++
		if er := processFile(ctx, path, rel, es, false, dst, log); er != nil {
			log.Error("Unable to process file", zap.String("file", path), zap.Error(er))
			err = multierr.Append(err, fmt.Errorf("%s: %w", rel, er))
		}
	}
	if err == nil && count == 0 {
		log.Debug("Nothing to process", zap.String("dir", dir))
	}
	return err
}

func naturalCompare(a, b string) int {
	switch {
	case a == b:
		return 0
	case natural.Less(a, b):
		return -1
	default:
		return 1
	}
}

// processArchive walks all files inside archive, finds event files under
// "pathIn" and processes them.
func processArchive(ctx context.Context, path, pathIn, pathOut, dst string, log *zap.Logger) (err error) {
	env := state.EnvFromContext(ctx)

	pathIn = filepath.ToSlash(pathIn)
	matched := 0
	match := func(name string) bool {
		if !strings.HasPrefix(name, pathIn) {
			return false
		}
		_, _, ok := splitEventName(name)
		if ok {
			matched++
		}
		return ok
	}

	count := 0
	werr := archive.Walk(ctx, path, match, func(arc string, f *zip.File) error {
		// all entries are matched before the first one is visited
		if env.ToStdout && matched > 1 {
			return errors.New("only single source could be written to STDOUT, archive has more")
		}

		ok, es, er := isEventInArchive(f)
		if er != nil {
			log.Warn("Skipping file in archive",
				zap.String("archive", arc), zap.String("path", f.FileHeader.Name), zap.Error(er))
			return nil
		}
		if !ok {
			return nil
		}

		count++

		pathInArchive := f.FileHeader.Name
		if cp := env.CodePage; cp != nil && f.FileHeader.NonUTF8 {
			// forcing zip file name encoding
			if n, er := cp.NewDecoder().String(pathInArchive); er == nil {
				pathInArchive = n
			} else {
				n, _ = ianaindex.IANA.Name(cp)
				log.Warn("Unable to convert archive name from specified encoding",
					zap.String("charset", n), zap.String("path", pathInArchive), zap.Error(er))
			}
		}

		r, er := f.Open()
		if er != nil {
			log.Error("Unable to process file in archive",
				zap.String("archive", arc), zap.String("file", f.FileHeader.Name), zap.Error(er))
			err = multierr.Append(err, fmt.Errorf("%s: %w", f.FileHeader.Name, er))
			return nil
		}
		defer r.Close()

		if er := processSource(ctx, r, filepath.Join(pathOut, filepath.FromSlash(pathInArchive)), es, dst, log); er != nil {
			log.Error("Unable to process file in archive",
				zap.String("archive", arc), zap.String("file", f.FileHeader.Name), zap.Error(er))
			err = multierr.Append(err, fmt.Errorf("%s: %w", f.FileHeader.Name, er))
		}
		return nil
	})
	if werr != nil {
		return multierr.Append(werr, err)
	}
	if err == nil && count == 0 {
		log.Debug("Nothing to process", zap.String("archive", path))
	}
	return err
}

// processFile processes single event file from disk. When sniff is set
// file name says nothing about its content.
func processFile(ctx context.Context, path, src string, es eventSource, sniff bool, dst string, log *zap.Logger) error {
	env := state.EnvFromContext(ctx)

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := env.Rpt.StoreCopy("source/"+filepath.ToSlash(src), path); err != nil {
		log.Warn("Unable to store source in debug report", zap.String("file", path), zap.Error(err))
	}

	var r io.Reader = file
	if sniff {
		if r, es, err = sniffStream(file, env.Cfg.Input.DefaultFormat); err != nil {
			return err
		}
	}
	return processSource(ctx, r, src, es, dst, log)
}

// processStdin reads events from standard input. There is no name to go by,
// so compression is detected by content and format comes from configuration.
func processStdin(ctx context.Context, in io.Reader, dst string, log *zap.Logger) error {
	env := state.EnvFromContext(ctx)

	r, es, err := sniffStream(in, env.Cfg.Input.DefaultFormat)
	if err != nil {
		return fmt.Errorf("unable to read STDIN: %w", err)
	}
	return processSource(ctx, r, "stdin", es, dst, log)
}

func newRefID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// processSource converts single event stream. "src" is part of the source
// path (always including file name) relative to the original path. When
// actual file was specified it will be just base file name without a path.
// When looking inside archive or directory it will be relative path inside
// archive or directory (including base file name). "dst" is the destination
// directory where the fact document should be written.
func processSource(ctx context.Context, r io.Reader, src string, es eventSource, dst string, log *zap.Logger) (rerr error) {
	env := state.EnvFromContext(ctx)

	refID := newRefID()
	var outputName string

	log.Info("Conversion starting", zap.String("from", src), zap.String("ref_id", refID),
		zap.Stringer("format", es.format), zap.Stringer("compression", es.compression))
	defer func(start time.Time) {
		if r := recover(); r != nil {
			log.Error("Conversion ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("conversion panic: %v", r)
		} else if rerr == nil {
			log.Info("Conversion completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.String("ref_id", refID))
		}
	}(time.Now())

	rc, err := selectReader(r, es.compression)
	if err != nil {
		return err
	}
	defer rc.Close()

	out := glean.New()
	n, err := events.Load(ctx, rc, es.format, out)
	if err != nil {
		return fmt.Errorf("unable to load events (%s): %w", src, err)
	}
	logFactCounts(out, n, log)

	if env.ToStdout {
		outputName = "STDOUT"
	} else {
		values := newValues(src, es, refID, n, out.Total(), &env.Cfg.Output)
		outputName = buildOutputPath(values, src, dst, env)
	}
	if env.Rpt != nil {
		env.Rpt.StoreData(fmt.Sprintf("summary/%s.txt", refID), summary(src, es, refID, n, out, outputName))
	}
	if env.ToStdout {
		return writeStdout(os.Stdout, out, &env.Cfg.Output, log)
	}

	if err := prepareDestination(outputName, env.Overwrite, log); err != nil {
		return err
	}

	s, err := createSink(outputName, &env.Cfg.Output, log)
	if err != nil {
		return err
	}
	if _, err := out.WriteTo(s); err != nil {
		if er := s.Abort(); er != nil {
			log.Warn("Unable to remove incomplete output", zap.String("file", outputName), zap.Error(er))
		}
		return fmt.Errorf("unable to write facts: %w", err)
	}
	if err := s.Close(); err != nil {
		os.Remove(outputName)
		return fmt.Errorf("unable to complete output: %w", err)
	}

	// Store conversion result for debugging
	env.Rpt.Store(fmt.Sprintf("result/%s-%s", refID, filepath.Base(outputName)), outputName)
	return nil
}

// prepareDestination makes sure output file could be created.
func prepareDestination(outputName string, overwrite bool, log *zap.Logger) error {
	if _, err := os.Stat(outputName); err == nil {
		if !overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		log.Warn("Overwriting existing file", zap.String("file", outputName))
		return os.Remove(outputName)
	} else if !os.IsNotExist(err) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outputName), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	return nil
}

// writeStdout writes document to w, which is expected to be STDOUT or a
// pipe.
func writeStdout(w io.Writer, out *glean.Output, cfg *config.OutputConfig, log *zap.Logger) error {
	s, err := newSink(w, cfg, log)
	if err != nil {
		return err
	}
	if _, err = out.WriteTo(s); err == nil {
		err = s.Close()
	}
	if errors.Is(err, syscall.EPIPE) {
		return ErrBrokenPipe
	}
	if err != nil {
		return fmt.Errorf("unable to write facts: %w", err)
	}
	return nil
}

func logFactCounts(out *glean.Output, events int, log *zap.Logger) {
	if ce := log.Check(zap.DebugLevel, "Facts accumulated"); ce != nil {
		fields := make([]zap.Field, 0, len(glean.Predicates())+2)
		fields = append(fields, zap.Int("events", events), zap.Int("facts", out.Total()))
		for _, p := range glean.Predicates() {
			if n := out.Len(p); n > 0 {
				fields = append(fields, zap.Int(p.Versioned(), n))
			}
		}
		ce.Write(fields...)
	}
}
