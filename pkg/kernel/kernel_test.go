package kernel

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const kernelDoc = `/** KERNEL */
{
  "meta_group": {"id": "rgd_bot"},
  // load order
  "module_loading_order_list": [
    "00_core/kernel.jsonc",
    "01_hardware/actuation_dynamics.jsonc",
    "04_ethics/alignment.jsonc"
  ]
}`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// writeRobot lays out root/spec/... and returns the project directory.
func writeRobot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	spec := filepath.Join(root, "spec")
	writeFile(t, filepath.Join(spec, "00_core", "kernel.jsonc"), kernelDoc)
	writeFile(t, filepath.Join(spec, "01_hardware", "actuation_dynamics.jsonc"), `{
  "meta_group": {"id": "dyn"},
  "shoulder": {"limits": {"torque_nm": 30, "effort": 12}},
  "elbow": {"limits": {"torque_nm": 0, "effort": 7.5}},
  "wrist": {"limits": {}},
  "gripper": {"type": "fixed"}
}`)
	writeFile(t, filepath.Join(spec, "04_ethics", "alignment.jsonc"), `{"mission_statement": "Do no harm & help"}`)
	return root
}

func TestFind(t *testing.T) {
	root := writeRobot(t)

	got, err := Find(root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "spec", "00_core", "kernel.jsonc"), got)

	// inside 00_core the direct candidate wins
	got, err = Find(filepath.Join(root, "spec", "00_core"))
	require.NoError(t, err)
	assert.Equal(t, "kernel.jsonc", filepath.Base(got))

	_, err = Find(t.TempDir())
	assert.ErrorIs(t, err, ErrKernelNotFound)
}

func TestRootFor(t *testing.T) {
	assert.Equal(t, filepath.FromSlash("/p/spec"), RootFor(filepath.FromSlash("/p/spec/00_core/kernel.jsonc")))
	assert.Equal(t, filepath.FromSlash("/p/spec"), RootFor(filepath.FromSlash("/p/spec/kernel.jsonc")))
}

func TestLoadAndValidate(t *testing.T) {
	root := writeRobot(t)
	k, err := Load(filepath.Join(root, "spec", "00_core", "kernel.jsonc"))
	require.NoError(t, err)

	assert.Equal(t, "rgd_bot", k.RobotID)
	assert.Len(t, k.Modules, 3)
	assert.Equal(t, filepath.Join(root, "spec"), k.Root)
	assert.NoError(t, k.Validate())
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing identity", `{"module_loading_order_list": []}`},
		{"missing load order", `{"meta_group": {"id": "x"}}`},
		{"non jsonc module", `{"meta_group": {"id": "x"}, "module_loading_order_list": ["a.yaml"]}`},
		{"duplicate module", `{"meta_group": {"id": "x"}, "module_loading_order_list": ["a.jsonc", "a.jsonc"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "kernel.jsonc")
			writeFile(t, path, tt.doc)
			k, err := Load(path)
			require.NoError(t, err)
			assert.ErrorIs(t, k.Validate(), ErrInvalidKernel)
		})
	}
}

func TestLoad_NotAnObject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kernel.jsonc")
	writeFile(t, path, `[1, 2]`)
	_, err := Load(path)
	assert.Error(t, err)

	k, err := Load(writeKernelOnly(t, `{}`))
	require.NoError(t, err)
	assert.Equal(t, UnknownRobot, k.RobotID)
}

func writeKernelOnly(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kernel.jsonc")
	writeFile(t, path, doc)
	return path
}

func TestCheck(t *testing.T) {
	root := writeRobot(t)
	k, err := Load(filepath.Join(root, "spec", "00_core", "kernel.jsonc"))
	require.NoError(t, err)

	res := k.Check()
	assert.True(t, res.OK())

	require.NoError(t, os.Remove(filepath.Join(root, "spec", "04_ethics", "alignment.jsonc")))
	res = k.Check()
	assert.False(t, res.OK())
	assert.Equal(t, []string{"04_ethics/alignment.jsonc"}, res.Missing())

	tree := res.Tree()
	assert.True(t, strings.HasPrefix(tree, "IDENTITY: rgd_bot\n"))
	assert.Contains(t, tree, "✗ 04_ethics/alignment.jsonc")
	assert.Contains(t, tree, "missing")
	assert.Contains(t, tree, "└── ")
}

func TestResolveModule_FallsBackToSpec(t *testing.T) {
	project := t.TempDir()
	writeFile(t, filepath.Join(project, "spec", "01_hardware", "actuation_dynamics.jsonc"), `{}`)
	k := &Kernel{Root: project}

	got, ok := k.ResolveModule("01_hardware/actuation_dynamics.jsonc")
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(project, "spec", "01_hardware", "actuation_dynamics.jsonc"), got)

	_, ok = k.ResolveModule("nope.jsonc")
	assert.False(t, ok)
}

func TestBoot(t *testing.T) {
	root := writeRobot(t)
	writeFile(t, filepath.Join(root, "spec", "04_ethics", "alignment.jsonc"), `{"mission_statement": "Do no harm & help"`)
	k, err := Load(filepath.Join(root, "spec", "00_core", "kernel.jsonc"))
	require.NoError(t, err)

	b := k.Boot()
	assert.Equal(t, []string{"04_ethics/alignment.jsonc"}, b.Failed)
	assert.Contains(t, b.Bank, "kernel")
	assert.Contains(t, b.Bank, "actuation_dynamics")
	assert.NotContains(t, b.Bank, "alignment")
}

func TestConstraints(t *testing.T) {
	root := writeRobot(t)
	k, err := Load(filepath.Join(root, "spec", "00_core", "kernel.jsonc"))
	require.NoError(t, err)

	got := k.Boot().Constraints()
	assert.Equal(t, []Constraint{
		{Joint: "elbow", Torque: "7.5"},
		{Joint: "shoulder", Torque: "30"},
		{Joint: "wrist", Torque: "N/A"},
	}, got)
}

func TestText(t *testing.T) {
	root := writeRobot(t)
	k, err := Load(filepath.Join(root, "spec", "00_core", "kernel.jsonc"))
	require.NoError(t, err)

	out, err := k.Boot().Text()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "SYSTEM IDENTITY: rgd_bot\n"))
	assert.Contains(t, out, "- Actuation Dynamics (01_hardware/actuation_dynamics.jsonc)")
	assert.Contains(t, out, "[PHYSICAL CONSTRAINTS]")
	assert.Contains(t, out, "- shoulder: Torque=30Nm")
	assert.Contains(t, out, "Mission: Do no harm & help")
}

func TestRender_Structured(t *testing.T) {
	root := writeRobot(t)
	k, err := Load(filepath.Join(root, "spec", "00_core", "kernel.jsonc"))
	require.NoError(t, err)
	b := k.Boot()

	out, err := b.Render(FormatJSON)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"torque_nm": 30`)

	out, err = b.Render(FormatYAML)
	require.NoError(t, err)
	var fromYAML map[string]any
	require.NoError(t, yaml.Unmarshal(out, &fromYAML))
	shoulder := fromYAML["actuation_dynamics"].(map[string]any)["shoulder"].(map[string]any)
	assert.Equal(t, 30, shoulder["limits"].(map[string]any)["torque_nm"])

	out, err = b.Render(FormatTOML)
	require.NoError(t, err)
	var fromTOML map[string]any
	require.NoError(t, toml.Unmarshal(out, &fromTOML))
	assert.Equal(t, "Do no harm & help", fromTOML["alignment"].(map[string]any)["mission_statement"])

	_, err = b.Render("xml")
	assert.Error(t, err)
}
