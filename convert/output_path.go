package convert

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"factbatch/config"
	"factbatch/state"
)

// documentExt is extension of produced fact documents before compression.
const documentExt = ".json"

// buildOutputPath returns constructed output file path/name based on various
// input parameters. It uses either default naming scheme or user-defined
// template and takes into account whether to preserve source directory
// structure on the output. It cleans up path and if requested transliterates
// it.
func buildOutputPath(values Values, src, dst string, env *state.LocalEnv) string {
	outDir := determineOutputDir(src, dst, env)
	defaultFile := buildDefaultFileName(src, env)

	if env.Cfg.Output.NameTemplate == "" {
		return filepath.Join(outDir, defaultFile)
	}

	expandedName := expandOutputNameTemplate(values, env)
	if expandedName == "" {
		// fallback to default name if template expansion failed
		return filepath.Join(outDir, defaultFile)
	}

	return assemblePathWithSubdirs(outDir, expandedName, env)
}

func determineOutputDir(src, dst string, env *state.LocalEnv) string {
	if env.NoDirs {
		return dst
	}
	return filepath.Join(dst, filepath.Dir(src))
}

func getFileExtension(env *state.LocalEnv) string {
	return documentExt + env.Cfg.Output.Compression.Ext()
}

func buildDefaultFileName(src string, env *state.LocalEnv) string {
	baseName, _, _ := splitEventName(filepath.Base(src))
	return cleanPathSegment(baseName, env) + getFileExtension(env)
}

func expandOutputNameTemplate(values Values, env *state.LocalEnv) string {
	expandedName, err := expandTemplate(values, config.OutputNameTemplateFieldName, env.Cfg.Output.NameTemplate)
	if err != nil {
		env.Log.Warn("Unable to prepare output filename", zap.Error(err))
		return ""
	}
	return strings.TrimSpace(filepath.FromSlash(expandedName))
}

// assemblePathWithSubdirs takes an expanded template name (which may contain
// path separators for subdirectories) and assembles it into a full output path,
// cleaning and transliterating segments as needed. Segments trying to climb up
// are dropped.
func assemblePathWithSubdirs(outDir, expandedName string, env *state.LocalEnv) string {
	pathSegments := slices.DeleteFunc(splitAndCleanPath(expandedName), func(s string) bool {
		return s == "." || s == ".."
	})

	if len(pathSegments) == 0 {
		return filepath.Join(outDir, "_bad_file_name_"+getFileExtension(env))
	}

	fileName := cleanPathSegment(pathSegments[len(pathSegments)-1], env) + getFileExtension(env)
	dirParts := make([]string, 0, len(pathSegments)+1)
	dirParts = append(dirParts, outDir)

	for _, segment := range pathSegments[:len(pathSegments)-1] {
		dirParts = append(dirParts, cleanPathSegment(segment, env))
	}

	dirParts = append(dirParts, fileName)
	return filepath.Join(dirParts...)
}

func splitAndCleanPath(path string) []string {
	segments := make([]string, 0, 8)
	for segment := range strings.SplitSeq(path, string(os.PathSeparator)) {
		if segment = strings.TrimSpace(segment); segment != "" {
			segments = append(segments, segment)
		}
	}
	return segments
}

func cleanPathSegment(segment string, env *state.LocalEnv) string {
	if env.Cfg.Output.FileNameTransliterate {
		segment = slug.Make(segment)
	}
	return config.CleanFileName(segment)
}
