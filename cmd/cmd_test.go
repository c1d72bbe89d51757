/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fulmenhq/rgd/internal/ops"
	"github.com/fulmenhq/rgd/pkg/exitcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execRoot runs a fresh command tree so flag values never leak between tests.
func execRoot(t *testing.T, args []string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	reg := ops.NewRegistry()
	root := newRootCommand(reg)
	registerSubcommands(root, reg)

	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	// Reduce log noise to capture clean command output
	root.SetArgs(append([]string{"--log-level", "error", "--no-color"}, args...))
	err := root.Execute()
	return buf.String(), err
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

// robotProject writes a small but complete spec tree and returns its root.
func robotProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"spec/00_core/kernel.jsonc": `/** KERNEL */
{
  "meta_group": {"id": "test_bot"},
  "module_loading_order_list": [
    "00_core/kernel.jsonc",
    "01_hardware/actuation_dynamics.jsonc",
    "02_control/actuation_topology.jsonc",
    "03_hal/hal_mapping.jsonc",
    "04_ethics/alignment.jsonc"
  ]
}`,
		"spec/01_hardware/actuation_dynamics.jsonc": `{
  // physics per joint
  "joint_dynamics_map": {
    "j1": {"limits": {"torque_nm": 40, "velocity_rads": 2.5, "range_rad": [-1.5, 1.5]}},
    "j2": {"limits": {"effort": 12}}
  }
}`,
		"spec/02_control/actuation_topology.jsonc": `{
  "control_profiles_map": {
    "servo": {"stiffness": 50, "damping": 2}
  },
  "joint_actuator_mapping_map": {
    "j1": {"use_profile_ref_str": "servo", "target_joint_ref_str": "shoulder"}
  }
}`,
		"spec/03_hal/hal_mapping.jsonc": `{
  "actuator_drivers_map": {
    "j2": {"driver_plugin_str": "vendor/Driver", "can_id": 7, "bus": "can1"}
  }
}`,
		"spec/04_ethics/alignment.jsonc": `{"mission_statement": "Assist humans safely"}`,
	})
	return root
}

func TestRootHelp_Grouped(t *testing.T) {
	out, err := execRoot(t, []string{"--help"})
	require.NoError(t, err)

	spec := strings.Index(out, "Specification Commands:")
	interop := strings.Index(out, "Interop Commands:")
	support := strings.Index(out, "Support Commands:")
	require.True(t, spec >= 0 && interop > spec && support > interop, out)
	assert.Contains(t, out, "compile-spec")
	assert.Contains(t, out, "import")
}

func TestTaxonomyOfRealTree(t *testing.T) {
	reg := ops.NewRegistry()
	root := newRootCommand(reg)
	registerSubcommands(root, reg)

	errs := ops.Validate(reg, root)
	assert.Empty(t, errs, ops.FormatErrors(errs))
}

func TestVersion_JSON(t *testing.T) {
	out, err := execRoot(t, []string{"version", "--json"})
	require.NoError(t, err)

	var v VersionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	assert.NotEmpty(t, v.Version)
	assert.NotEmpty(t, v.GoVersion)
}

func TestCompileSpec_Default(t *testing.T) {
	root := robotProject(t)

	out, err := execRoot(t, []string{"compile-spec", root})
	require.NoError(t, err)
	assert.Contains(t, out, "openrgd_unified_spec.json")
	assert.FileExists(t, filepath.Join(root, "spec", "openrgd_unified_spec.json"))
	assert.FileExists(t, filepath.Join(root, "spec", "openrgd_unified_spec.jsonc"))
}

func TestCompileSpec_Domain(t *testing.T) {
	root := robotProject(t)

	_, err := execRoot(t, []string{"compile-spec", root, "--domain", "hardware"})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(root, "standard", "01_spec.json"))
	assert.FileExists(t, filepath.Join(root, "spec", "01_spec.jsonc"))
	assert.NoFileExists(t, filepath.Join(root, "spec", "openrgd_unified_spec.json"))
}

func TestCompileSpec_UnknownDomain(t *testing.T) {
	root := robotProject(t)

	_, err := execRoot(t, []string{"compile-spec", root, "--domain", "nope"})
	require.Error(t, err)
	assert.Equal(t, exitcode.UsageError, exitCode(err))
	assert.Contains(t, err.Error(), "01_hardware")
	assert.NoDirExists(t, filepath.Join(root, "standard"))
}

func TestCompileSpec_MissingSpecDir(t *testing.T) {
	_, err := execRoot(t, []string{"compile-spec", t.TempDir()})
	require.Error(t, err)
	assert.Equal(t, exitcode.FileSystemError, exitCode(err))
}

func TestIntegrity_RoundTrip(t *testing.T) {
	root := robotProject(t)

	_, err := execRoot(t, []string{"compile-spec", root, "--def"})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(root, "standard", "benchmarks", "openrgd_unified_spec.json"))
	assert.FileExists(t, filepath.Join(root, "standard", "benchmarks", "openrgd_unified_spec.jsonc"))

	out, err := execRoot(t, []string{"integrity", "check", root})
	require.NoError(t, err, out)
	assert.Contains(t, out, "JSONC (Human Twin) integrity: OK")
	assert.Contains(t, out, "JSON (Machine Twin) integrity: OK")

	// a spec edit that was never mirrored breaks the human twin only
	writeTree(t, root, map[string]string{
		"spec/04_ethics/alignment.jsonc": `{"mission_statement": "Changed"}`,
	})
	out, err = execRoot(t, []string{"integrity", "check", root})
	require.Error(t, err)
	assert.Equal(t, exitcode.IntegrityMismatch, exitCode(err))
	assert.Contains(t, out, "JSONC (Human Twin) integrity: MISMATCH")
	assert.Contains(t, out, "JSON (Machine Twin) integrity: OK")
}

func TestIntegrity_CustomName(t *testing.T) {
	root := robotProject(t)

	for i := 0; i < 2; i++ {
		_, err := execRoot(t, []string{"compile-spec", root, "--def", "--name", "robot"})
		require.NoError(t, err)

		out, err := execRoot(t, []string{"integrity", "check", root, "--name", "robot"})
		require.NoError(t, err, out)
		assert.Contains(t, out, "JSONC (Human Twin) integrity: OK")
		assert.Contains(t, out, "JSON (Machine Twin) integrity: OK")
	}
}

func TestIntegrity_NoBenchmarks(t *testing.T) {
	root := robotProject(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "standard"), 0o755))

	_, err := execRoot(t, []string{"integrity", "check", root})
	require.Error(t, err)
	assert.Equal(t, exitcode.FileSystemError, exitCode(err))
}

func TestBuildStandard(t *testing.T) {
	root := robotProject(t)
	writeTree(t, root, map[string]string{
		"spec/README.md":            "# notes",
		"spec/05_bad/broken.jsonc": `{"a": `,
	})
	dest := filepath.Join(root, "standard")

	out, err := execRoot(t, []string{"build-standard", "--src", filepath.Join(root, "spec"), "--dest", dest})
	require.NoError(t, err)
	assert.Contains(t, out, "5 files transpiled")
	assert.FileExists(t, filepath.Join(dest, "01_hardware", "actuation_dynamics.json"))
	assert.FileExists(t, filepath.Join(dest, "README.md"))
	assert.NoFileExists(t, filepath.Join(dest, "05_bad", "broken.json"))
}

func TestDomains(t *testing.T) {
	root := robotProject(t)

	out, err := execRoot(t, []string{"domains", root})
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "DOMAIN"))
	assert.Contains(t, lines[2], "01_hardware")
	assert.Contains(t, lines[2], "01, 01_hardware, hardware")
}

func TestCheckAndBoot(t *testing.T) {
	root := robotProject(t)
	kernelPath := filepath.Join(root, "spec", "00_core", "kernel.jsonc")

	out, err := execRoot(t, []string{"check", kernelPath})
	require.NoError(t, err)
	assert.Contains(t, out, "IDENTITY: test_bot")

	out, err = execRoot(t, []string{"boot", kernelPath})
	require.NoError(t, err)
	assert.Contains(t, out, "SYSTEM IDENTITY: test_bot")
	assert.Contains(t, out, "Mission: Assist humans safely")

	out, err = execRoot(t, []string{"boot", kernelPath, "-o", "json"})
	require.NoError(t, err)
	var bank map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &bank))
	assert.Contains(t, bank, "hal_mapping")

	_, err = execRoot(t, []string{"boot", kernelPath, "-o", "xml"})
	assert.Equal(t, exitcode.UsageError, exitCode(err))

	require.NoError(t, os.Remove(filepath.Join(root, "spec", "03_hal", "hal_mapping.jsonc")))
	_, err = execRoot(t, []string{"check", kernelPath})
	require.Error(t, err)
	assert.Equal(t, exitcode.ValidationError, exitCode(err))
}

func TestCheck_KernelNotFound(t *testing.T) {
	_, err := execRoot(t, []string{"check", filepath.Join(t.TempDir(), "kernel.jsonc")})
	require.Error(t, err)
}

func TestExport_ROS2(t *testing.T) {
	root := robotProject(t)
	_, err := execRoot(t, []string{"compile-spec", root})
	require.NoError(t, err)

	outDir := filepath.Join(t.TempDir(), "export")
	out, err := execRoot(t, []string{"export", "ros2", "--root", root, "--out", outDir})
	require.NoError(t, err)
	assert.Contains(t, out, "ros2_control.yaml")

	data, err := os.ReadFile(filepath.Join(outDir, "ros2_control.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Robot ID: test_bot")
	assert.Contains(t, string(data), "shoulder")
	assert.FileExists(t, filepath.Join(outDir, "rgd_limits.xacro"))
	assert.FileExists(t, filepath.Join(outDir, "rgd_hardware.xacro"))
}

func TestExport_Errors(t *testing.T) {
	root := robotProject(t)

	_, err := execRoot(t, []string{"export", "isaac", "--root", root})
	require.Error(t, err)
	assert.Equal(t, exitcode.UsageError, exitCode(err))
	assert.Contains(t, err.Error(), "ros2")

	// no machine twin yet
	_, err = execRoot(t, []string{"export", "ros2", "--root", root, "--out", t.TempDir()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compile-spec")
	assert.Equal(t, exitcode.FileSystemError, exitCode(err))
}

func TestImport_URDF(t *testing.T) {
	dir := t.TempDir()
	urdf := filepath.Join(dir, "Arm Bot.urdf")
	writeTree(t, dir, map[string]string{
		"Arm Bot.urdf": `<?xml version="1.0"?>
<robot name="arm">
  <link name="base"/>
  <joint name="elbow" type="revolute">
    <limit effort="30" velocity="2" lower="-1" upper="1"/>
  </joint>
</robot>`,
	})
	out := filepath.Join(dir, "RGD-arm")

	stdout, err := execRoot(t, []string{"import", urdf, "--out", out})
	require.NoError(t, err)
	assert.Contains(t, stdout, "kernel.jsonc")
	assert.FileExists(t, filepath.Join(out, "spec", "00_core", "kernel.jsonc"))

	// the imported tree passes the kernel check
	_, err = execRoot(t, []string{"check", filepath.Join(out, "spec", "00_core", "kernel.jsonc")})
	assert.NoError(t, err)
}

func TestImport_Unsupported(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"robot.step": "solid"})

	_, err := execRoot(t, []string{"import", filepath.Join(dir, "robot.step")})
	require.Error(t, err)
	assert.Equal(t, exitcode.UnsupportedFormat, exitCode(err))
	assert.Contains(t, err.Error(), ".urdf")
}

func TestExitCode_Mapping(t *testing.T) {
	assert.Equal(t, exitcode.GeneralError, exitCode(assert.AnError))
	assert.Equal(t, exitcode.IntegrityMismatch, exitCode(exitcode.WithCode(errIntegrityFailed, exitcode.IntegrityMismatch)))
	assert.Equal(t, exitcode.FileSystemError, exitCode(os.ErrNotExist))
}
