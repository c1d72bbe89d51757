// Package integrity detects drift between freshly rebuilt unified documents
// and the benchmark snapshots stored by the full pipeline.
package integrity

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fulmenhq/rgd/pkg/jsonc"
	"github.com/fulmenhq/rgd/pkg/safeio"
	"github.com/fulmenhq/rgd/pkg/unified"
	"github.com/pmezard/go-difflib/difflib"
)

// ErrBenchmarkMissing is returned when a snapshot file does not exist.
var ErrBenchmarkMissing = errors.New("benchmark snapshot not found")

// Kind names the document being compared.
type Kind string

const (
	KindHuman   Kind = "JSONC (Human Twin)"
	KindMachine Kind = "JSON (Machine Twin)"
)

// Verdict is the outcome for one document kind.
type Verdict struct {
	Kind      Kind
	Match     bool
	Benchmark string
	Fields    []string // differing field paths, machine twin only
	Diff      string   // unified diff excerpt, human twin only
}

// Report is the overall integrity result.
type Report struct {
	Verdicts []Verdict
}

// OK reports whether every document matched.
func (r *Report) OK() bool {
	for _, v := range r.Verdicts {
		if !v.Match {
			return false
		}
	}
	return len(r.Verdicts) > 0
}

// maxDiffLines bounds the diff excerpt attached to a human mismatch.
const maxDiffLines = 40

// Check rebuilds the human twin from the spec tree and the machine twin from
// the standard mirror, then compares both with the snapshots named base in
// the project's benchmark directory. Nothing is written to disk.
func Check(p *unified.Project, base string) (*Report, error) {
	if err := safeio.ValidateBaseName(base); err != nil {
		return nil, err
	}
	if !safeio.IsDir(p.StandardDir) {
		return nil, fmt.Errorf("standard directory %s: %w", p.StandardDir, os.ErrNotExist)
	}

	benchHuman := filepath.Join(p.BenchmarkDir(), base+".jsonc")
	benchMachine := filepath.Join(p.BenchmarkDir(), base+".json")
	for _, f := range []string{benchHuman, benchMachine} {
		if !safeio.Exists(f) {
			return nil, fmt.Errorf("%w: %s (run compile-spec --def first)", ErrBenchmarkMissing, f)
		}
	}

	scanned, err := p.ScanSpec(base)
	if err != nil {
		return nil, err
	}
	human := p.Builder.Human(scanned.Records)

	std, err := p.ScanStandard(base)
	if err != nil {
		return nil, err
	}
	machine, err := p.Builder.Machine(std.Records, unified.TypeMachineFromStandard, unified.NoteFromStandard).Marshal()
	if err != nil {
		return nil, err
	}

	humanBench, err := safeio.ReadFileContained(p.BenchmarkDir(), benchHuman)
	if err != nil {
		return nil, err
	}
	machineBench, err := safeio.ReadFileContained(p.BenchmarkDir(), benchMachine)
	if err != nil {
		return nil, err
	}

	hv := CompareHuman(human, string(humanBench))
	hv.Benchmark = benchHuman

	mv, err := CompareMachine(machine, machineBench)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", benchMachine, err)
	}
	mv.Benchmark = benchMachine

	return &Report{Verdicts: []Verdict{hv, mv}}, nil
}

// NormalizeHuman drops timestamp lines and trailing whitespace.
func NormalizeHuman(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if strings.Contains(line, unified.GeneratedAtMarker) {
			continue
		}
		out = append(out, strings.TrimRight(line, " \t\r\v\f"))
	}
	return strings.Join(out, "\n")
}

// NormalizeMachine removes meta.generated_at from a decoded machine twin.
// The input is not modified.
func NormalizeMachine(doc any) any {
	m, ok := doc.(map[string]any)
	if !ok {
		return doc
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	if meta, ok := m["meta"].(map[string]any); ok {
		cleaned := make(map[string]any, len(meta))
		for k, v := range meta {
			if k != "generated_at" {
				cleaned[k] = v
			}
		}
		out["meta"] = cleaned
	}
	return out
}

// CompareHuman compares normalized human twins.
func CompareHuman(current, benchmark string) Verdict {
	a, b := NormalizeHuman(benchmark), NormalizeHuman(current)
	v := Verdict{Kind: KindHuman, Match: a == b}
	if !v.Match {
		diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(a),
			B:        difflib.SplitLines(b),
			FromFile: "benchmark",
			ToFile:   "rebuilt",
			Context:  1,
		})
		v.Diff = truncateLines(diff, maxDiffLines)
	}
	return v
}

// CompareMachine decodes and compares machine twins, ignoring generation time.
func CompareMachine(current, benchmark []byte) (Verdict, error) {
	cur, err := jsonc.Decode(current)
	if err != nil {
		return Verdict{}, fmt.Errorf("decode rebuilt machine twin: %w", err)
	}
	bench, err := jsonc.Decode(benchmark)
	if err != nil {
		return Verdict{}, fmt.Errorf("decode benchmark: %w", err)
	}
	cur, bench = NormalizeMachine(cur), NormalizeMachine(bench)

	v := Verdict{Kind: KindMachine, Match: reflect.DeepEqual(cur, bench)}
	if !v.Match {
		v.Fields = DiffFields(bench, cur)
	}
	return v, nil
}

// DiffFields lists the paths at which a and b differ. Files inside a
// unified document are addressed by their id when present.
func DiffFields(a, b any) []string {
	var out []string
	diffValue("", a, b, &out)
	sort.Strings(out)
	return out
}

func diffValue(path string, a, b any, out *[]string) {
	switch av := a.(type) {
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok {
			*out = append(*out, display(path))
			return
		}
		keys := map[string]struct{}{}
		for k := range av {
			keys[k] = struct{}{}
		}
		for k := range bv {
			keys[k] = struct{}{}
		}
		for k := range keys {
			diffValue(join(path, k), av[k], bv[k], out)
		}
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			*out = append(*out, display(path))
			return
		}
		for i := range av {
			diffValue(join(path, elementName(av[i], i)), av[i], bv[i], out)
		}
	default:
		if !reflect.DeepEqual(a, b) {
			*out = append(*out, display(path))
		}
	}
}

func elementName(v any, i int) string {
	if m, ok := v.(map[string]any); ok {
		if id, ok := m["id"].(string); ok && id != "" {
			return fmt.Sprintf("[%s]", id)
		}
	}
	return fmt.Sprintf("[%d]", i)
}

func join(path, key string) string {
	if path == "" || strings.HasPrefix(key, "[") {
		return path + key
	}
	return path + "." + key
}

func display(path string) string {
	if path == "" {
		return "(root)"
	}
	return path
}

func truncateLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) <= n {
		return strings.Join(lines, "\n")
	}
	return strings.Join(lines[:n], "\n") + fmt.Sprintf("\n... (%d more lines)", len(lines)-n)
}

var (
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	mismatchStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

// Label renders OK or MISMATCH, colored when color is set.
func (v Verdict) Label(color bool) string {
	label, style := "OK", okStyle
	if !v.Match {
		label, style = "MISMATCH", mismatchStyle
	}
	if color {
		return style.Render(label)
	}
	return label
}
