// Package export translates a compiled robot specification into the
// configuration formats of other ecosystems.
package export

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/fulmenhq/rgd/pkg/config"
	"github.com/fulmenhq/rgd/pkg/jsonc"
)

// Module ids the exporters read from a machine twin.
const (
	ModuleDynamics = "actuation_dynamics"
	ModuleTopology = "actuation_topology"
	ModuleHAL      = "hal_mapping"
	ModuleKernel   = "kernel"
)

var (
	// ErrUnknownTarget is returned for an export target with no exporter.
	ErrUnknownTarget = errors.New("unknown export target")
	// ErrMissingModule is returned when a required module is absent.
	ErrMissingModule = errors.New("required module missing")
)

// Input is the part of a machine twin an exporter consumes.
type Input struct {
	RobotID string
	Modules map[string]map[string]any // module content by file id
}

// Module returns a module's content, or nil.
func (in *Input) Module(id string) map[string]any {
	return in.Modules[id]
}

// InputFromDocument collects modules from a decoded machine twin. The robot
// id comes from the kernel module's meta_group.id.
func InputFromDocument(doc any) (*Input, error) {
	root, ok := doc.(map[string]any)
	if !ok {
		return nil, errors.New("machine twin is not a JSON object")
	}
	files, _ := root["files"].([]any)

	in := &Input{RobotID: "unknown", Modules: map[string]map[string]any{}}
	for _, f := range files {
		entry, ok := f.(map[string]any)
		if !ok {
			continue
		}
		id, _ := entry["id"].(string)
		content, ok := entry["content"].(map[string]any)
		if id == "" || !ok {
			continue
		}
		in.Modules[id] = content
	}
	if k := in.Modules[ModuleKernel]; k != nil {
		if meta, ok := k["meta_group"].(map[string]any); ok {
			if id, ok := meta["id"].(string); ok && id != "" {
				in.RobotID = id
			}
		}
	}
	return in, nil
}

// LoadInput reads a machine twin from disk.
func LoadInput(path string) (*Input, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- machine twin inside the project tree
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("machine twin %s not found (run compile-spec first): %w", path, err)
		}
		return nil, err
	}
	doc, err := jsonc.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("read machine twin %s: %w", path, err)
	}
	return InputFromDocument(doc)
}

// Exporter writes ecosystem artifacts for one target.
type Exporter interface {
	Name() string
	// Export writes artifacts into outDir and returns their paths.
	Export(in *Input, outDir string) ([]string, error)
}

// Factory builds an exporter from configuration.
type Factory func(cfg *config.Config) Exporter

var registry = map[string]Factory{}

// Register adds an exporter factory under target.
func Register(target string, f Factory) {
	registry[strings.ToLower(target)] = f
}

// Targets returns the registered target names, sorted.
func Targets() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// New returns the exporter registered for target.
func New(target string, cfg *config.Config) (Exporter, error) {
	f, ok := registry[strings.ToLower(strings.TrimSpace(target))]
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownTarget, target, strings.Join(Targets(), ", "))
	}
	if cfg == nil {
		cfg = config.Default()
	}
	return f(cfg), nil
}

func init() {
	Register("ros2", func(cfg *config.Config) Exporter {
		return &ROS2{DefaultPlugin: cfg.Export.DefaultPlugin, UpdateRate: cfg.Export.UpdateRate}
	})
}
