package spec

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fulmenhq/rgd/pkg/ignore"
	"github.com/fulmenhq/rgd/pkg/jsonc"
	"github.com/fulmenhq/rgd/pkg/logger"
	"github.com/fulmenhq/rgd/pkg/safeio"
)

// ScanOptions selects the files Scan reads.
type ScanOptions struct {
	Root      string   // project root; record paths are relative to it
	Dir       string   // tree to walk, relative to Root
	Extension string   // e.g. ".jsonc"
	Exclude   []string // doublestar globs matched against paths relative to Dir
	Skip      []string // exact slash paths relative to Dir
	Strict    bool     // parse as plain JSON, without comment stripping
}

// ScanResult holds the ordered records plus the files that were skipped.
type ScanResult struct {
	Records []Record
	Skipped []*ParseError
}

// Scan walks opts.Dir and returns one record per matching file, ordered by
// (weight, id). Files that fail to parse are skipped with a warning and
// reported in Skipped; only a missing or unreadable tree is an error.
func Scan(opts ScanOptions) (*ScanResult, error) {
	dir := filepath.Join(opts.Root, opts.Dir)
	if !safeio.IsDir(dir) {
		return nil, fmt.Errorf("spec directory %s: %w", dir, os.ErrNotExist)
	}
	ext := opts.Extension
	if ext == "" {
		ext = ".jsonc"
	}

	matches, err := doublestar.Glob(os.DirFS(dir), "**/*"+ext, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	sort.Strings(matches)

	ign, err := ignore.NewMatcher(opts.Root)
	if err != nil {
		return nil, err
	}

	result := &ScanResult{}
	for _, rel := range matches {
		if excluded(rel, opts.Exclude) || slices.Contains(opts.Skip, rel) {
			logger.Trace("Excluded generated document", logger.String("file", rel))
			continue
		}
		full := filepath.Join(dir, filepath.FromSlash(rel))
		if ign.IsIgnored(full, false) {
			logger.Debug("Ignored by pattern", logger.String("file", rel))
			continue
		}

		relRoot, err := filepath.Rel(opts.Root, full)
		if err != nil {
			relRoot = filepath.Join(opts.Dir, rel)
		}
		relRoot = filepath.ToSlash(relRoot)

		data, err := safeio.ReadFileContained(dir, full)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", relRoot, err)
		}

		content, perr := parse(relRoot, data, opts.Strict)
		if perr != nil {
			logger.Warn("Skipping unparsable spec file", logger.String("file", relRoot), logger.Err(perr.Err))
			result.Skipped = append(result.Skipped, perr)
			continue
		}
		result.Records = append(result.Records, NewRecord(relRoot, strings.TrimSpace(string(data)), content))
	}

	SortRecords(result.Records)
	logger.Debug("Scanned spec tree",
		logger.String("dir", filepath.ToSlash(dir)),
		logger.Int("records", len(result.Records)),
		logger.Int("skipped", len(result.Skipped)))
	return result, nil
}

func parse(relPath string, data []byte, strict bool) (any, *ParseError) {
	src := data
	if !strict {
		src = []byte(jsonc.Strip(string(data)))
	}
	v, err := jsonc.Decode(src)
	if err != nil {
		return nil, newParseError(relPath, src, err)
	}
	return v, nil
}

func excluded(rel string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}
