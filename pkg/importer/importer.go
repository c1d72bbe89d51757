// Package importer converts external robot descriptions (URDF, USD) into a
// robot specification tree.
package importer

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fulmenhq/rgd/pkg/jsonc"
	"github.com/fulmenhq/rgd/pkg/logger"
	"github.com/fulmenhq/rgd/pkg/safeio"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrUnsupportedFormat is returned for a file extension with no importer.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Spec-relative paths of the generated modules.
const (
	KernelPath      = "00_core/kernel.jsonc"
	DescriptionPath = "01_foundation/description.jsonc"
	DynamicsPath    = "01_foundation/actuation_dynamics.jsonc"
	AlignmentPath   = "04_volition/alignment.jsonc"
)

// importTimestamp is stamped into every imported kernel so that repeated
// imports of the same file are byte-identical.
const importTimestamp = "2025-01-01T00:00:00Z"

// Result is an imported specification: file contents keyed by path relative
// to the spec directory.
type Result struct {
	RobotName string
	Files     map[string]string
}

// Paths returns the result's file paths, sorted.
func (r *Result) Paths() []string {
	out := make([]string, 0, len(r.Files))
	for p := range r.Files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Importer parses one external format.
type Importer interface {
	Name() string
	Import(path string) (*Result, error)
}

var registry = map[string]Importer{
	".urdf": URDF{},
	".xml":  URDF{},
	".usda": USD{},
	".usd":  USD{},
}

// SupportedFormats lists the registered extensions, sorted.
func SupportedFormats() []string {
	out := make([]string, 0, len(registry))
	for ext := range registry {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// ForFile selects an importer by the file's extension.
func ForFile(path string) (Importer, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if imp, ok := registry[ext]; ok {
		return imp, nil
	}
	if ext == "" {
		ext = "(none)"
	}
	return nil, fmt.Errorf("%w %s (supported: %s)", ErrUnsupportedFormat, ext, strings.Join(SupportedFormats(), ", "))
}

var lower = cases.Lower(language.Und)

// NormalizeName derives a robot name from a file stem: lower case, with
// spaces and hyphens turned into underscores.
func NormalizeName(stem string) string {
	return strings.NewReplacer(" ", "_", "-", "_").Replace(lower.String(stem))
}

func stemName(path string) string {
	base := filepath.Base(path)
	return NormalizeName(strings.TrimSuffix(base, filepath.Ext(base)))
}

// DefaultRoot is the output root used when none is given.
func DefaultRoot(robotName string) string {
	return "RGD-" + robotName
}

// WriteTree writes the result under root/spec, merging into an existing
// tree. It returns the written paths.
func WriteTree(root string, res *Result) ([]string, error) {
	if safeio.Exists(root) {
		logger.Warn("Target root exists, merging", logger.String("root", root))
	}
	specDir := filepath.Join(root, "spec")
	var written []string
	for _, rel := range res.Paths() {
		path := filepath.Join(specDir, filepath.FromSlash(rel))
		if err := safeio.WriteFile(path, []byte(res.Files[rel])); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	logger.Success("Import complete", logger.String("robot", res.RobotName), logger.String("spec", specDir))
	return written, nil
}

// Shared module shapes. Struct field order fixes the key order of the
// generated JSON.

type kernelMeta struct {
	ID            string `json:"id"`
	SchemaVersion string `json:"schema_version"`
	CreatedAt     string `json:"created_at"`
}

type kernelModule struct {
	MetaGroup       kernelMeta `json:"meta_group"`
	ModuleLoadOrder []string   `json:"module_loading_order_list"`
}

type alignmentModule struct {
	MissionStatement string   `json:"mission_statement"`
	Priorities       []string `json:"priorities"`
}

type jointLimits struct {
	TorqueNm     float64    `json:"torque_nm"`
	VelocityRads *float64   `json:"velocity_rads,omitempty"`
	RangeRad     [2]float64 `json:"range_rad"`
}

type isaacParams struct {
	Stiffness float64 `json:"stiffness"`
	Damping   float64 `json:"damping"`
}

type jointSpec struct {
	Type        string       `json:"type"`
	Limits      jointLimits  `json:"limits"`
	IsaacParams *isaacParams `json:"isaac_params,omitempty"`
}

func module(banner string, v any) (string, error) {
	data, err := jsonc.Marshal(v)
	if err != nil {
		return "", err
	}
	return "/** " + banner + " */\n" + string(data), nil
}

// baseModules renders the kernel and default alignment shared by importers.
func baseModules(robot string) (map[string]string, error) {
	kernel, err := module("IMPORTED KERNEL", kernelModule{
		MetaGroup: kernelMeta{
			ID:            "did:rgd:" + robot,
			SchemaVersion: "0.1.0",
			CreatedAt:     importTimestamp,
		},
		ModuleLoadOrder: []string{DescriptionPath, DynamicsPath, AlignmentPath},
	})
	if err != nil {
		return nil, err
	}
	alignment, err := module("DEFAULT ALIGNMENT", alignmentModule{
		MissionStatement: "Operate safely within imported parameters.",
		Priorities:       []string{"safety", "compliance"},
	})
	if err != nil {
		return nil, err
	}
	return map[string]string{KernelPath: kernel, AlignmentPath: alignment}, nil
}
