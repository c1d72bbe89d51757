// Package spec scans a robot specification tree into ordered records and
// indexes them by domain.
//
// A domain is the first path segment of the form NN_label (for example
// "01_foundation"); its two digits give the ordering weight. Files outside
// any domain folder are kept under the "unknown" domain and sort last.
package spec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const (
	UnknownDomain = "unknown"
	UnknownWeight = 999
)

var domainSegment = regexp.MustCompile(`^(\d{2})_`)

// Record is one scanned spec file. Records are not modified after Scan.
type Record struct {
	Path    string // relative to the project root, slash separated
	ID      string // file stem
	Domain  string
	Weight  int
	Raw     string // source text, surrounding whitespace trimmed
	Content any    // parsed value; numbers are json.Number
}

// DetectDomain returns the domain label and weight for a slash-separated path.
func DetectDomain(relPath string) (string, int) {
	for _, seg := range strings.Split(relPath, "/") {
		m := domainSegment.FindStringSubmatch(seg)
		if m == nil {
			continue
		}
		w, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		return seg, w
	}
	return UnknownDomain, UnknownWeight
}

// NewRecord builds a record for relPath, deriving id and domain.
func NewRecord(relPath, raw string, content any) Record {
	relPath = strings.ReplaceAll(relPath, `\`, "/")
	base := path.Base(relPath)
	domain, weight := DetectDomain(relPath)
	return Record{
		Path:    relPath,
		ID:      strings.TrimSuffix(base, path.Ext(base)),
		Domain:  domain,
		Weight:  weight,
		Raw:     raw,
		Content: content,
	}
}

// SortRecords orders records by (weight, id), keeping input order for ties.
func SortRecords(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Weight != records[j].Weight {
			return records[i].Weight < records[j].Weight
		}
		return records[i].ID < records[j].ID
	})
}

// ParseError reports a spec file that could not be parsed as JSON after
// comment stripping.
type ParseError struct {
	Path string
	Line int // 0 when unknown
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// newParseError locates syntax errors in the stripped text. Stripping keeps
// newlines, so line numbers match the source file.
func newParseError(relPath string, stripped []byte, err error) *ParseError {
	pe := &ParseError{Path: relPath, Err: err}
	var syn *json.SyntaxError
	if errors.As(err, &syn) && syn.Offset > 0 && int(syn.Offset) <= len(stripped) {
		pe.Line = 1 + bytes.Count(stripped[:syn.Offset], []byte("\n"))
	}
	return pe
}
