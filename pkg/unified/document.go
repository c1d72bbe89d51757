// Package unified assembles scanned spec records into unified documents.
//
// Every build produces a pair of twins: the human twin splices each file's
// original JSONC text (comments included) into one document, and the
// machine twin carries the parsed content as strict JSON. Both come in a
// whole-corpus form and a per-domain bundle form.
package unified

import (
	"fmt"
	"strings"
	"time"

	"github.com/fulmenhq/rgd/pkg/config"
	"github.com/fulmenhq/rgd/pkg/jsonc"
	"github.com/fulmenhq/rgd/pkg/spec"
)

// Document types stamped into meta.type.
const (
	TypeMachine             = "MACHINE_TWIN_CLEAN"
	TypeMachineFromStandard = "MACHINE_TWIN_FROM_STANDARD"
	TypeDomainMachine       = "DOMAIN_MACHINE_TWIN"
	TypeHuman               = "HUMAN_TWIN_WITH_COMMENTS"
	TypeDomainHuman         = "DOMAIN_HUMAN_TWIN_WITH_COMMENTS"
)

const (
	NoteMachine      = "Strict JSON for tooling."
	NoteFromStandard = "Built from /standard JSON mirror."
)

// GeneratedAtMarker prefixes the timestamp line of a human twin.
const GeneratedAtMarker = "Generated at:"

// Meta is the metadata header of a unified document.
type Meta struct {
	Standard    string `json:"standard"`
	Type        string `json:"type"`
	Version     string `json:"version"`
	Domain      string `json:"domain,omitempty"`
	GeneratedAt string `json:"generated_at,omitempty"`
	Note        string `json:"note,omitempty"`
}

// File is one spec module inside a unified document.
type File struct {
	Path    string `json:"path"`
	ID      string `json:"id"`
	Domain  string `json:"domain"`
	Content any    `json:"content"`
}

// Document is a machine twin.
type Document struct {
	Meta  Meta   `json:"meta"`
	Files []File `json:"files"`
}

// Marshal renders the document as 2-space indented JSON.
func (d *Document) Marshal() ([]byte, error) {
	return jsonc.Marshal(d)
}

// Builder produces unified documents. Now is injectable for tests.
type Builder struct {
	Standard string
	Version  string
	Now      func() time.Time
}

// NewBuilder returns a builder stamped with the configured identity.
func NewBuilder(cfg *config.Config) *Builder {
	return &Builder{
		Standard: cfg.Unified.Standard,
		Version:  cfg.Unified.Version,
		Now:      time.Now,
	}
}

func (b *Builder) timestamp() string {
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	return now().Format("2006-01-02T15:04:05.000000")
}

// Machine builds the whole-corpus machine twin from records in their given
// order. typ is TypeMachine or TypeMachineFromStandard.
func (b *Builder) Machine(records []spec.Record, typ, note string) *Document {
	return &Document{
		Meta: Meta{
			Standard:    b.Standard,
			Type:        typ,
			Version:     b.Version,
			GeneratedAt: b.timestamp(),
			Note:        note,
		},
		Files: files(records),
	}
}

// DomainMachine builds the machine bundle for one domain.
func (b *Builder) DomainMachine(domain string, records []spec.Record) *Document {
	return &Document{
		Meta: Meta{
			Standard:    b.Standard,
			Type:        TypeDomainMachine,
			Version:     b.Version,
			Domain:      domain,
			GeneratedAt: b.timestamp(),
		},
		Files: files(records),
	}
}

func files(records []spec.Record) []File {
	out := make([]File, 0, len(records))
	for _, r := range records {
		out = append(out, File{Path: r.Path, ID: r.ID, Domain: r.Domain, Content: r.Content})
	}
	return out
}

const (
	ruleWide   = "// ======================================================================"
	ruleThin   = "// ----------------------------------------------------------------------"
	ruleDomain = "// ====================================================="
	thinDomain = "// -----------------------------------------------------"
)

// Human renders the whole-corpus human twin.
func (b *Builder) Human(records []spec.Record) string {
	var lines []string
	lines = append(lines,
		ruleWide,
		fmt.Sprintf("// %s - UNIFIED SPECIFICATION (HUMAN TWIN)", strings.ToUpper(b.Standard)),
		ruleThin,
		fmt.Sprintf("// %s %s", GeneratedAtMarker, b.timestamp()),
		"// This file contains the raw source code of all modules, comments included.",
		ruleWide,
		"",
		"{",
		`  "meta": {`,
		fmt.Sprintf(`    "standard": %s,`, quote(b.Standard)),
		fmt.Sprintf(`    "type": %s,`, quote(TypeHuman)),
		fmt.Sprintf(`    "version": %s`, quote(b.Version)),
		"  },",
	)
	lines = appendFiles(lines, records)
	return strings.Join(lines, "\n")
}

// DomainHuman renders the human bundle for one domain.
func (b *Builder) DomainHuman(domain string, records []spec.Record) string {
	var lines []string
	lines = append(lines,
		ruleDomain,
		fmt.Sprintf("// %s - DOMAIN SPEC (HUMAN TWIN) - %s", strings.ToUpper(b.Standard), domain),
		thinDomain,
		fmt.Sprintf("// %s %s", GeneratedAtMarker, b.timestamp()),
		ruleDomain,
		"",
		"{",
		`  "meta": {`,
		fmt.Sprintf(`    "standard": %s,`, quote(b.Standard)),
		fmt.Sprintf(`    "type": %s,`, quote(TypeDomainHuman)),
		fmt.Sprintf(`    "domain": %s,`, quote(domain)),
		fmt.Sprintf(`    "version": %s`, quote(b.Version)),
		"  },",
	)
	lines = appendFiles(lines, records)
	return strings.Join(lines, "\n")
}

func appendFiles(lines []string, records []spec.Record) []string {
	lines = append(lines, `  "files": [`)
	for i, r := range records {
		lines = append(lines,
			"    {",
			fmt.Sprintf(`      "path": %s,`, quote(r.Path)),
			fmt.Sprintf(`      "id": %s,`, quote(r.ID)),
			fmt.Sprintf(`      "domain": %s,`, quote(r.Domain)),
			`      "content": `,
			IndentBlock(r.Raw, "      "),
		)
		if i < len(records)-1 {
			lines = append(lines, "    },")
		} else {
			lines = append(lines, "    }")
		}
	}
	return append(lines, "  ]", "}")
}

// IndentBlock prefixes every non-blank line of text with indent. Blank lines
// are kept as they are.
func IndentBlock(text, indent string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		if strings.TrimSpace(l) != "" {
			lines[i] = indent + l
		}
	}
	return strings.Join(lines, "\n")
}

// quote encodes s as a JSON string the way the machine twin does, without
// HTML escaping.
func quote(s string) string {
	b, err := jsonc.Marshal(s)
	if err != nil {
		return `"` + s + `"`
	}
	return string(b)
}
