// Package kernel locates a robot kernel, validates it and walks the modules
// it lists.
//
// The kernel (conventionally spec/00_core/kernel.jsonc) names the robot in
// meta_group.id and lists every module in module_loading_order_list. Module
// paths are relative to the project root; a path that does not exist there is
// retried under root/spec.
package kernel

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fulmenhq/rgd/internal/assets"
	"github.com/fulmenhq/rgd/pkg/jsonc"
	"github.com/fulmenhq/rgd/pkg/safeio"
	"github.com/mattn/go-runewidth"
	"github.com/xeipuuv/gojsonschema"
)

// ErrKernelNotFound is returned by Find when no candidate exists.
var ErrKernelNotFound = errors.New("no kernel found")

// ErrInvalidKernel wraps schema violations reported by Validate.
var ErrInvalidKernel = errors.New("kernel validation failed")

// UnknownRobot is the identity used when meta_group.id is absent.
const UnknownRobot = "Unknown"

const coreDir = "00_core"

// Candidates are tried in order, relative to the start directory.
var Candidates = []string{
	filepath.Join("spec", coreDir, "kernel.jsonc"),
	filepath.Join("spec", "kernel.jsonc"),
	"kernel.jsonc",
	filepath.Join(coreDir, "kernel.jsonc"),
}

// Find returns the absolute path of the first kernel candidate under start.
func Find(start string) (string, error) {
	for _, c := range Candidates {
		p := filepath.Join(start, c)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return filepath.Abs(p)
		}
	}
	return "", fmt.Errorf("%w in %s (tried %s)", ErrKernelNotFound, start, strings.Join(Candidates, ", "))
}

// Kernel is a parsed kernel file.
type Kernel struct {
	Path    string
	Root    string
	RobotID string
	Modules []string
	Data    map[string]any
}

// RootFor returns the project root of a kernel: the grandparent when the
// kernel sits in 00_core, else its own directory.
func RootFor(kernelPath string) string {
	dir := filepath.Dir(kernelPath)
	if filepath.Base(dir) == coreDir {
		return filepath.Dir(dir)
	}
	return dir
}

// Load reads and parses the kernel at path. Structural problems are left to
// Validate; Load only requires a JSON object.
func Load(path string) (*Kernel, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	raw, err := safeio.ReadFileContained(filepath.Dir(abs), abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read kernel: %w", err)
	}
	v, err := jsonc.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse kernel %s: %w", filepath.Base(abs), err)
	}
	data, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("kernel %s is not a JSON object", filepath.Base(abs))
	}

	k := &Kernel{Path: abs, Root: RootFor(abs), RobotID: UnknownRobot, Data: data}
	if meta, ok := data["meta_group"].(map[string]any); ok {
		if id, ok := meta["id"].(string); ok && id != "" {
			k.RobotID = id
		}
	}
	if list, ok := data["module_loading_order_list"].([]any); ok {
		for _, item := range list {
			if s, ok := item.(string); ok {
				k.Modules = append(k.Modules, s)
			}
		}
	}
	return k, nil
}

// Validate checks the kernel against the embedded kernel schema.
func (k *Kernel) Validate() error {
	schema, ok := assets.GetSchema(assets.KernelSchema)
	if !ok {
		return fmt.Errorf("embedded schema %s not found", assets.KernelSchema)
	}
	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schema), gojsonschema.NewGoLoader(k.Data))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}
	var msgs []string
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return fmt.Errorf("%w:\n%s", ErrInvalidKernel, strings.Join(msgs, "\n"))
}

// ResolveModule maps a module entry to a file path, trying root first and
// then root/spec. The second result reports whether the file exists.
func (k *Kernel) ResolveModule(mod string) (string, bool) {
	direct := filepath.Join(k.Root, filepath.FromSlash(mod))
	if safeio.Exists(direct) {
		return direct, true
	}
	nested := filepath.Join(k.Root, "spec", filepath.FromSlash(mod))
	if safeio.Exists(nested) {
		return nested, true
	}
	return direct, false
}

// ModuleStatus is one row of a module check.
type ModuleStatus struct {
	Module   string `json:"module"`
	Resolved string `json:"resolved"`
	Present  bool   `json:"present"`
}

// CheckResult lists the presence of every kernel module in load order.
type CheckResult struct {
	RobotID string         `json:"robot_id"`
	Modules []ModuleStatus `json:"modules"`
}

// Check resolves every listed module.
func (k *Kernel) Check() *CheckResult {
	res := &CheckResult{RobotID: k.RobotID}
	for _, mod := range k.Modules {
		path, ok := k.ResolveModule(mod)
		res.Modules = append(res.Modules, ModuleStatus{Module: mod, Resolved: path, Present: ok})
	}
	return res
}

// Missing returns the entries that could not be resolved.
func (r *CheckResult) Missing() []string {
	var out []string
	for _, m := range r.Modules {
		if !m.Present {
			out = append(out, m.Module)
		}
	}
	return out
}

// OK reports whether every module resolved.
func (r *CheckResult) OK() bool { return len(r.Missing()) == 0 }

// Tree renders the check as an identity line followed by one branch per
// module, with the status column aligned on display width.
func (r *CheckResult) Tree() string {
	width := 0
	for _, m := range r.Modules {
		if w := runewidth.StringWidth(m.Module); w > width {
			width = w
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "IDENTITY: %s\n", r.RobotID)
	for i, m := range r.Modules {
		branch := "├── "
		if i == len(r.Modules)-1 {
			branch = "└── "
		}
		mark, status := "✓", "ok"
		if !m.Present {
			mark, status = "✗", "missing"
		}
		fmt.Fprintf(&b, "%s%s %s  %s\n", branch, mark, runewidth.FillRight(m.Module, width), status)
	}
	return b.String()
}
