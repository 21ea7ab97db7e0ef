// Package archive walks event files stored in zip archives.
package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/maruel/natural"
)

// WalkFunc is the type of the function called for each file in archive
// visited by Walk. The archive argument contains path to archive passed to
// Walk. The file argument is the zip.File structure for file in archive which
// satisfies match condition. If an error is returned, processing stops.
type WalkFunc func(archive string, file *zip.File) error

// MatchFunc reports whether archive entry should be visited.
type MatchFunc func(name string) bool

// Walk calls walkFn for every regular file in the archive accepted by match.
// Files are visited in natural order of their names, so "part2" comes
// before "part10". Archive with absolute entries or entries containing ".."
// is rejected before anything is visited.
func Walk(ctx context.Context, archive string, match MatchFunc, walkFn WalkFunc) error {

	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	files := make([]*zip.File, 0, len(r.File))
	for _, f := range r.File {
		name := f.FileHeader.Name
		if !isSafePath(name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if f.FileInfo().Mode().IsRegular() && (match == nil || match(name)) {
			files = append(files, f)
		}
	}
	slices.SortStableFunc(files, func(a, b *zip.File) int {
		switch {
		case a.Name == b.Name:
			return 0
		case natural.Less(a.Name, b.Name):
			return -1
		default:
			return 1
		}
	})

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := walkFn(archive, f); err != nil {
			return err
		}
	}
	return nil
}

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, `\`) || (len(name) > 1 && name[1] == ':') {
		return false
	}
	for part := range strings.FieldsFuncSeq(name, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return false
		}
	}
	return true
}
