package spec

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownDomain is returned when a domain selector matches no alias.
var ErrUnknownDomain = errors.New("unknown domain")

// Index groups records by canonical domain label.
type Index struct {
	domains map[string][]Record
	aliases map[string]string
}

// BuildIndex groups records by domain; records in the unknown domain are left
// out. Each domain is reachable by its lower-cased label, its numeric prefix
// and its textual suffix ("01_foundation", "01", "foundation").
func BuildIndex(records []Record) *Index {
	ix := &Index{
		domains: make(map[string][]Record),
		aliases: make(map[string]string),
	}
	for _, r := range records {
		if r.Domain == UnknownDomain {
			continue
		}
		ix.domains[r.Domain] = append(ix.domains[r.Domain], r)
	}
	for _, d := range ix.Names() {
		lower := strings.ToLower(d)
		ix.aliases[lower] = d
		if prefix, label, ok := strings.Cut(lower, "_"); ok {
			ix.aliases[prefix] = d
			if label != "" {
				ix.aliases[label] = d
			}
		}
	}
	return ix
}

// Names returns the canonical domain labels in sorted order.
func (ix *Index) Names() []string {
	names := make([]string, 0, len(ix.domains))
	for d := range ix.domains {
		names = append(names, d)
	}
	sort.Strings(names)
	return names
}

// Records returns a domain's records ordered by id.
func (ix *Index) Records(domain string) []Record {
	src := ix.domains[domain]
	out := make([]Record, len(src))
	copy(out, src)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Aliases returns every alias that resolves to domain, sorted.
func (ix *Index) Aliases(domain string) []string {
	var out []string
	for a, d := range ix.aliases {
		if d == domain {
			out = append(out, a)
		}
	}
	sort.Strings(out)
	return out
}

// Resolve maps a user selector to its canonical domain label.
func (ix *Index) Resolve(selector string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(selector))
	if d, ok := ix.aliases[key]; ok {
		return d, nil
	}
	return "", fmt.Errorf("%w %q (available: %s)", ErrUnknownDomain, selector, strings.Join(ix.Names(), ", "))
}

// Prefix returns the numeric part of a domain label, used to name bundles.
func Prefix(domain string) string {
	p, _, _ := strings.Cut(domain, "_")
	return p
}
