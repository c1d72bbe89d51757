package topology

import (
	"testing"

	"github.com/fulmenhq/rgd/pkg/jsonc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s string) map[string]any {
	t.Helper()
	v, err := jsonc.Parse([]byte(s))
	require.NoError(t, err)
	return v.(map[string]any)
}

func TestResolveInstance_NestedOverride(t *testing.T) {
	profiles := decode(t, `{"P": {"kp": 1, "nested": {"a": 1, "b": 2}}}`)
	instance := decode(t, `{"use_profile_ref_str": "P", "nested": {"b": 9}}`)

	got := ResolveInstance(profiles, instance)
	assert.Equal(t, decode(t, `{"kp": 1, "nested": {"a": 1, "b": 9}}`), got)

	// the profile table is untouched
	assert.Equal(t, decode(t, `{"P": {"kp": 1, "nested": {"a": 1, "b": 2}}}`), profiles)
}

func TestResolveInstance_UnknownProfile(t *testing.T) {
	profiles := decode(t, `{"P": {"kp": 1}}`)
	instance := decode(t, `{"use_profile_ref_str": "missing", "kd": 3, "limits": {"effort": 5}}`)

	assert.Equal(t, decode(t, `{"kd": 3, "limits": {"effort": 5}}`), ResolveInstance(profiles, instance))
}

func TestResolveInstance_OverridesAppliedLast(t *testing.T) {
	profiles := decode(t, `{"P": {"kp": 1, "control_defaults": {"kd": 1, "ki": 0}}}`)
	instance := decode(t, `{
		"use_profile_ref_str": "P",
		"kp": 2,
		"control_defaults": {"kd": 2},
		"overrides": {"kp": 3, "control_defaults": {"ki": 7}}
	}`)

	want := decode(t, `{"kp": 3, "control_defaults": {"kd": 2, "ki": 7}}`)
	assert.Equal(t, want, ResolveInstance(profiles, instance))
}

func TestResolveInstance_NonMapReplacesMap(t *testing.T) {
	profiles := decode(t, `{"P": {"gains": {"p": 1}, "tags": ["a", "b"]}}`)
	instance := decode(t, `{"use_profile_ref_str": "P", "gains": 4, "tags": ["c"]}`)

	assert.Equal(t, decode(t, `{"gains": 4, "tags": ["c"]}`), ResolveInstance(profiles, instance))
}

func TestResolve_IsIdempotent(t *testing.T) {
	module := decode(t, `{
		"control_profiles_map": {"servo": {"stiffness": 50, "damping": 2}},
		"joint_actuator_mapping_map": {
			"j1": {"use_profile_ref_str": "servo", "target_joint_ref_str": "joint_one"},
			"j2": {"kp": 10},
			"bad": 5
		}
	}`)

	first := Resolve(module)
	second := Resolve(module)
	assert.Equal(t, first, second)
	require.Len(t, first, 2)
	assert.Equal(t, decode(t, `{"stiffness": 50, "damping": 2, "target_joint_ref_str": "joint_one"}`), first["j1"])

	// resolving an already resolved instance changes nothing
	again := ResolveInstance(nil, first["j1"])
	assert.Equal(t, first["j1"], again)
}

func TestResolve_Empty(t *testing.T) {
	assert.Empty(t, Resolve(nil))
	assert.Empty(t, Resolve(map[string]any{"control_profiles_map": "oops"}))
}

func TestDeepMerge_CopiesSource(t *testing.T) {
	src := map[string]any{"list": []any{1}, "m": map[string]any{"x": 1}}
	dst := DeepMerge(nil, src)

	dst["list"].([]any)[0] = 2
	dst["m"].(map[string]any)["x"] = 2
	assert.Equal(t, 1, src["list"].([]any)[0])
	assert.Equal(t, 1, src["m"].(map[string]any)["x"])
}
