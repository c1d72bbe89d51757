package export

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/fulmenhq/rgd/pkg/logger"
	"github.com/fulmenhq/rgd/pkg/topology"
)

// reservedKeys are metadata entries that never name a joint.
var reservedKeys = map[string]bool{"meta_group": true, "__doc__": true}

// subContainers are searched, in order, when a key is not found directly.
var subContainers = []string{
	"limits",
	"application_limits",
	"joint_limits",
	"control_defaults",
	"position_mode_gains",
	"velocity_mode_gains",
	"advanced_impedance_model",
	"transmission_config",
}

// Joint joins the physics, resolved topology and hardware records that
// describe one logical joint.
type Joint struct {
	Name     string
	Key      string // source map key the record was found under
	Physics  map[string]any
	Topology map[string]any
	HAL      map[string]any
}

// ExtractValue looks up the first of keys present in data, then in each
// well-known sub-container of data.
func ExtractValue(data map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := data[k]; ok {
			return v, true
		}
	}
	for _, sub := range subContainers {
		m, ok := data[sub].(map[string]any)
		if !ok {
			continue
		}
		for _, k := range keys {
			if v, ok := m[k]; ok {
				return v, true
			}
		}
	}
	return nil, false
}

// ExtractFloat is ExtractValue for numbers; non-numeric matches yield def.
func ExtractFloat(data map[string]any, def float64, keys ...string) float64 {
	v, ok := ExtractValue(data, keys...)
	if !ok {
		return def
	}
	if f, ok := toFloat(v); ok {
		return f
	}
	return def
}

// ExtractString is ExtractValue for scalars rendered as text.
func ExtractString(data map[string]any, def string, keys ...string) string {
	v, ok := ExtractValue(data, keys...)
	if !ok || v == nil {
		return def
	}
	s := formatScalar(v)
	if s == "" {
		return def
	}
	return s
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatScalar(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		if f, ok := toFloat(v); ok {
			return formatFloat(f)
		}
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// PhysicsJoints finds the joint table of an actuation dynamics module:
// joint_dynamics_map, else actuators, else every object-valued entry.
func PhysicsJoints(module map[string]any) map[string]any {
	if m, ok := module["joint_dynamics_map"].(map[string]any); ok {
		return m
	}
	if m, ok := module["actuators"].(map[string]any); ok {
		return m
	}
	out := map[string]any{}
	for k, v := range module {
		if reservedKeys[k] {
			continue
		}
		if _, ok := v.(map[string]any); ok {
			out[k] = v
		}
	}
	return out
}

// JoinJoints merges the three modules on logical joint name. The name is the
// topology target_joint_ref_str, else the physics target_joint_ref_str, else
// the hardware logical_actuator_ref_str, else the raw key. Joints are
// returned sorted by name; when two keys resolve to the same name the later
// key in sorted order wins.
func JoinJoints(dynamics, topo, hal map[string]any) []Joint {
	phys := PhysicsJoints(dynamics)
	resolved := topology.Resolve(topo)
	drivers, _ := hal["actuator_drivers_map"].(map[string]any)

	keys := map[string]struct{}{}
	for k := range phys {
		keys[k] = struct{}{}
	}
	for k := range resolved {
		keys[k] = struct{}{}
	}
	for k := range drivers {
		keys[k] = struct{}{}
	}
	sorted := make([]string, 0, len(keys))
	for k := range keys {
		if !reservedKeys[k] {
			sorted = append(sorted, k)
		}
	}
	sort.Strings(sorted)

	byName := map[string]Joint{}
	for _, key := range sorted {
		p, _ := phys[key].(map[string]any)
		t := resolved[key]
		h, _ := drivers[key].(map[string]any)
		if p == nil {
			p = map[string]any{}
		}
		if t == nil {
			t = map[string]any{}
		}
		if h == nil {
			h = map[string]any{}
		}

		name := firstString(t["target_joint_ref_str"], p["target_joint_ref_str"], h["logical_actuator_ref_str"])
		if name == "" {
			name = key
		}
		if prev, dup := byName[name]; dup {
			logger.Warn("Joint name mapped twice, keeping the later record",
				logger.String("joint", name), logger.String("dropped", prev.Key), logger.String("kept", key))
		}
		byName[name] = Joint{Name: name, Key: key, Physics: p, Topology: t, HAL: h}
	}

	out := make([]Joint, 0, len(byName))
	for _, j := range byName {
		out = append(out, j)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func firstString(vals ...any) string {
	for _, v := range vals {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// Gains are the PID gains of one joint.
type Gains struct {
	P, I, D float64
}

// IsZero reports whether every gain is zero.
func (g Gains) IsZero() bool { return g.P == 0 && g.I == 0 && g.D == 0 }

// ComputeGains reads PID gains from a resolved topology record. Without
// explicit kp and kd, a positive impedance stiffness becomes p and its
// damping becomes d.
func ComputeGains(topo map[string]any) Gains {
	g := Gains{
		P: ExtractFloat(topo, 0, "kp_position_float", "kp"),
		I: ExtractFloat(topo, 0, "ki_position_float", "ki"),
		D: ExtractFloat(topo, 0, "kd_position_float", "kd"),
	}
	if g.P == 0 && g.D == 0 {
		stiffness := ExtractFloat(topo, 0, "stiffness_nm_rad_float", "stiffness")
		if stiffness > 0 {
			g.P = stiffness
			g.D = ExtractFloat(topo, 0, "damping_nms_rad_float", "damping")
		}
	}
	return g
}

// Limits are the xacro limit properties of one joint.
type Limits struct {
	Effort, Velocity float64
	Lower, Upper     float64
	Damping          float64
	Friction         float64
}

// DefaultRange is the symmetric position range used when none is declared.
const DefaultRange = 3.14

// ComputeLimits prefers topology application limits over physics hardware
// limits for effort and velocity. A zero application limit counts as unset.
func ComputeLimits(j Joint) Limits {
	l := Limits{
		Effort:   firstNonZero(ExtractFloat(j.Topology, 0, "torque_limit_peak_nm_float", "effort"), ExtractFloat(j.Physics, 0, "max_torque_nm_float", "torque_nm", "effort")),
		Velocity: firstNonZero(ExtractFloat(j.Topology, 0, "velocity_limit_rad_s_float", "velocity"), ExtractFloat(j.Physics, 0, "max_velocity_rad_s_float", "velocity_rads", "velocity")),
		Lower:    -DefaultRange,
		Upper:    DefaultRange,
		Damping:  ExtractFloat(j.Physics, 0, "viscous_friction_nm_s_per_rad_float", "damping"),
		Friction: ExtractFloat(j.Physics, 0, "coulomb_friction_nm_float", "friction"),
	}

	if rng, ok := ExtractValue(j.Physics, "soft_position_limits_rad", "range_rad", "range"); ok {
		if list, ok := rng.([]any); ok && len(list) >= 2 {
			lo, okLo := toFloat(list[0])
			hi, okHi := toFloat(list[1])
			if okLo && okHi {
				l.Lower, l.Upper = lo, hi
				return l
			}
		}
	}
	l.Lower = ExtractFloat(j.Physics, -DefaultRange, "soft_min_position_rad_float", "lower")
	l.Upper = ExtractFloat(j.Physics, DefaultRange, "soft_max_position_rad_float", "upper")
	return l
}

func firstNonZero(vals ...float64) float64 {
	for _, v := range vals {
		if v != 0 {
			return v
		}
	}
	return 0
}

// Hardware is the driver binding of one joint.
type Hardware struct {
	Plugin string // empty when the joint declares none
	CANID  string
	Bus    string
}

// ComputeHardware reads the driver binding from a hardware record.
func ComputeHardware(hal map[string]any) Hardware {
	return Hardware{
		Plugin: ExtractString(hal, "", "driver_plugin_str"),
		CANID:  ExtractString(hal, "0", "device_node_id_int", "id", "can_id"),
		Bus:    ExtractString(hal, "can0", "bus_interface_str", "bus"),
	}
}
