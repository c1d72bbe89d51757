// Package topology expands actuator profile inheritance.
//
// An actuator topology module holds reusable control profiles and per-joint
// instances. An instance names its profile with use_profile_ref_str; the
// resolved instance is a deep copy of the profile with the instance's own
// fields merged on top, then the legacy overrides block, if any.
package topology

const (
	ProfilesKey  = "control_profiles_map"
	InstancesKey = "joint_actuator_mapping_map"
	ProfileRef   = "use_profile_ref_str"
	OverridesKey = "overrides"
)

// DeepCopy returns a copy of v sharing no maps or slices with it.
func DeepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = DeepCopy(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = DeepCopy(e)
		}
		return out
	default:
		return v
	}
}

// DeepMerge merges src into dst and returns dst. Maps present on both sides
// merge recursively; any other src value replaces the dst value. src values
// are copied, so later changes to dst never reach src.
func DeepMerge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for k, v := range src {
		if sm, ok := v.(map[string]any); ok {
			dm, _ := dst[k].(map[string]any)
			dst[k] = DeepMerge(dm, sm)
			continue
		}
		dst[k] = DeepCopy(v)
	}
	return dst
}

// ResolveInstance expands one instance against the profile table. An unknown
// or absent profile reference yields just the instance's own fields. The
// directive keys use_profile_ref_str and overrides are not carried into the
// result.
func ResolveInstance(profiles map[string]any, instance map[string]any) map[string]any {
	resolved := map[string]any{}
	if ref, ok := instance[ProfileRef].(string); ok && ref != "" {
		if profile, ok := profiles[ref].(map[string]any); ok {
			resolved = DeepCopy(profile).(map[string]any)
		}
	}

	own := make(map[string]any, len(instance))
	for k, v := range instance {
		if k == ProfileRef || k == OverridesKey {
			continue
		}
		own[k] = v
	}
	DeepMerge(resolved, own)

	if overrides, ok := instance[OverridesKey].(map[string]any); ok {
		DeepMerge(resolved, overrides)
	}
	return resolved
}

// Resolve expands every instance of a topology module. Instances that are not
// objects are dropped. A nil or malformed module resolves to an empty map.
func Resolve(module map[string]any) map[string]map[string]any {
	out := map[string]map[string]any{}
	if module == nil {
		return out
	}
	profiles, _ := module[ProfilesKey].(map[string]any)
	instances, _ := module[InstancesKey].(map[string]any)
	for key, raw := range instances {
		inst, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		out[key] = ResolveInstance(profiles, inst)
	}
	return out
}
