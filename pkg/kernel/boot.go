package kernel

import (
	"encoding/json"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/aymerick/raymond"
	"github.com/fulmenhq/rgd/internal/assets"
	"github.com/fulmenhq/rgd/pkg/export"
	"github.com/fulmenhq/rgd/pkg/jsonc"
	"github.com/fulmenhq/rgd/pkg/logger"
	"github.com/fulmenhq/rgd/pkg/safeio"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by Render.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// Formats lists the supported output formats.
var Formats = []string{FormatText, FormatJSON, FormatYAML, FormatTOML}

const summaryTemplate = "boot/summary.hbs"

// LoadedModule is a module that made it into the memory bank.
type LoadedModule struct {
	Key  string
	Path string
}

// Boot is the result of loading every kernel module. Bank is keyed by the
// module file stem; a later module with the same stem replaces an earlier one.
type Boot struct {
	RobotID string
	Loaded  []LoadedModule
	Failed  []string
	Bank    map[string]any
}

// Boot loads each listed module. Unreadable or unparsable modules are logged
// and recorded in Failed; they never abort the boot.
func (k *Kernel) Boot() *Boot {
	b := &Boot{RobotID: k.RobotID, Bank: map[string]any{}}
	for _, mod := range k.Modules {
		resolved, _ := k.ResolveModule(mod)
		raw, err := safeio.ReadFileContained(k.Root, resolved)
		if err == nil {
			var v any
			if v, err = jsonc.Parse(raw); err == nil {
				key := stem(mod)
				b.Bank[key] = v
				b.Loaded = append(b.Loaded, LoadedModule{Key: key, Path: mod})
				continue
			}
		}
		logger.Warn(fmt.Sprintf("Failed to load %s", mod), logger.Err(err))
		b.Failed = append(b.Failed, mod)
	}
	return b
}

func stem(mod string) string {
	base := path.Base(filepath.ToSlash(mod))
	return strings.TrimSuffix(base, path.Ext(base))
}

// Constraint is a per-joint torque limit shown in the text summary.
type Constraint struct {
	Joint  string
	Torque string
}

// Constraints collects torque limits from the actuation_dynamics module,
// sorted by joint. torque_nm is preferred over effort; a missing or zero
// value shows as N/A.
func (b *Boot) Constraints() []Constraint {
	dyn, ok := b.Bank["actuation_dynamics"].(map[string]any)
	if !ok {
		return nil
	}
	joints := export.PhysicsJoints(dyn)
	names := make([]string, 0, len(joints))
	for name := range joints {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []Constraint
	for _, name := range names {
		props, _ := joints[name].(map[string]any)
		lim, ok := props["limits"].(map[string]any)
		if !ok {
			continue
		}
		torque := "N/A"
		for _, key := range []string{"torque_nm", "effort"} {
			if v, ok := lim[key]; ok && truthy(v) {
				torque = fmt.Sprint(v)
				break
			}
		}
		out = append(out, Constraint{Joint: name, Torque: torque})
	}
	return out
}

// Mission returns alignment.mission_statement, or "" when absent.
func (b *Boot) Mission() string {
	align, ok := b.Bank["alignment"].(map[string]any)
	if !ok {
		return ""
	}
	if s, ok := align["mission_statement"].(string); ok {
		return s
	}
	if v, ok := align["mission_statement"]; ok && v != nil {
		return fmt.Sprint(v)
	}
	return "N/A"
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	}
	return true
}

// Text renders the human summary from the embedded handlebars template.
func (b *Boot) Text() (string, error) {
	tpl, ok := assets.GetTemplate(summaryTemplate)
	if !ok {
		return "", fmt.Errorf("embedded template %s not found", summaryTemplate)
	}

	title := cases.Title(language.English)
	modules := make([]map[string]string, 0, len(b.Loaded))
	for _, m := range b.Loaded {
		modules = append(modules, map[string]string{
			"title": title.String(strings.ReplaceAll(m.Key, "_", " ")),
			"path":  m.Path,
		})
	}
	constraints := make([]map[string]string, 0)
	for _, c := range b.Constraints() {
		constraints = append(constraints, map[string]string{"joint": c.Joint, "torque": c.Torque})
	}

	ctx := map[string]interface{}{
		"robotID":     b.RobotID,
		"modules":     modules,
		"constraints": constraints,
		"mission":     b.Mission(),
	}
	out, err := raymond.Render(string(tpl), ctx)
	if err != nil {
		return "", fmt.Errorf("failed to render summary: %w", err)
	}
	return out, nil
}

// Render writes the boot in the requested format. Structured formats emit
// the memory bank itself.
func (b *Boot) Render(format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", FormatText:
		s, err := b.Text()
		return []byte(s), err
	case FormatJSON:
		out, err := jsonc.Marshal(b.Bank)
		if err != nil {
			return nil, err
		}
		return append(out, '\n'), nil
	case FormatYAML:
		return yaml.Marshal(plain(b.Bank, false))
	case FormatTOML:
		return toml.Marshal(plain(b.Bank, true))
	default:
		return nil, fmt.Errorf("unsupported output format %q (valid: %s)", format, strings.Join(Formats, ", "))
	}
}

// plain converts decoded JSON into native Go values so YAML and TOML encode
// numbers as numbers. TOML has no null, so dropNull removes nil values.
func plain(v any, dropNull bool) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			if item == nil && dropNull {
				continue
			}
			out[k] = plain(item, dropNull)
		}
		return out
	case []any:
		out := make([]any, 0, len(t))
		for _, item := range t {
			if item == nil && dropNull {
				continue
			}
			out = append(out, plain(item, dropNull))
		}
		return out
	case json.Number:
		if i, err := strconv.ParseInt(t.String(), 10, 64); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	default:
		return v
	}
}
