package export

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/fulmenhq/rgd/pkg/logger"
	"github.com/fulmenhq/rgd/pkg/safeio"
	"gopkg.in/yaml.v3"
)

// Artifact file names written by the ROS 2 exporter.
const (
	ControlFile  = "ros2_control.yaml"
	LimitsFile   = "rgd_limits.xacro"
	HardwareFile = "rgd_hardware.xacro"
)

const (
	xacroNS       = "http://www.ros.org/wiki/xacro"
	bridgeVersion = "v0.9"
)

// ROS2 exports ros2_control configuration plus limits and hardware xacro.
type ROS2 struct {
	DefaultPlugin string
	UpdateRate    int
}

func (r *ROS2) Name() string { return "ros2" }

// Export joins the actuation modules and writes the three artifacts.
func (r *ROS2) Export(in *Input, outDir string) ([]string, error) {
	dynamics := in.Module(ModuleDynamics)
	if dynamics == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingModule, ModuleDynamics)
	}
	joints := JoinJoints(dynamics, in.Module(ModuleTopology), in.Module(ModuleHAL))
	logger.Info("Mapped joints with resolved inheritance", logger.Int("joints", len(joints)))

	control, err := r.ControlYAML(in.RobotID, joints)
	if err != nil {
		return nil, err
	}
	limits, err := LimitsXacro(joints)
	if err != nil {
		return nil, err
	}
	hardware, err := r.HardwareXacro(joints)
	if err != nil {
		return nil, err
	}

	var written []string
	for _, a := range []struct {
		name string
		data []byte
	}{
		{ControlFile, control},
		{LimitsFile, limits},
		{HardwareFile, hardware},
	} {
		path := filepath.Join(outDir, a.name)
		if err := safeio.WriteFile(path, a.data); err != nil {
			return written, fmt.Errorf("write %s: %w", a.name, err)
		}
		logger.Success("Generated "+a.name, logger.String("path", path))
		written = append(written, path)
	}
	return written, nil
}

func str(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func num(f float64) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: formatFloat(f)}
}

func mapping(style yaml.Style, kv ...*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Style: style, Content: kv}
}

// ControlYAML renders ros2_control.yaml. Gains are listed only for joints
// with at least one nonzero gain.
func (r *ROS2) ControlYAML(robotID string, joints []Joint) ([]byte, error) {
	rate := r.UpdateRate
	if rate <= 0 {
		rate = 100
	}

	names := &yaml.Node{Kind: yaml.SequenceNode}
	gains := mapping(0)
	for _, j := range joints {
		names.Content = append(names.Content, str(j.Name))
		g := ComputeGains(j.Topology)
		if g.IsZero() {
			continue
		}
		gains.Content = append(gains.Content, str(j.Name),
			mapping(yaml.FlowStyle, str("p"), num(g.P), str("i"), num(g.I), str("d"), num(g.D)))
	}
	if len(gains.Content) == 0 {
		gains.Style = yaml.FlowStyle
	}

	root := mapping(0,
		str("controller_manager"), mapping(0,
			str("ros__parameters"), mapping(0,
				str("update_rate"), &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(rate)},
				str("joint_state_broadcaster"), mapping(0,
					str("type"), str("joint_state_broadcaster/JointStateBroadcaster")),
				str("forward_position_controller"), mapping(0,
					str("type"), str("position_controllers/JointGroupPositionController")),
			)),
		str("forward_position_controller"), mapping(0,
			str("ros__parameters"), mapping(0,
				str("joints"), names,
				str("gains"), gains,
			)),
	)
	doc := &yaml.Node{
		Kind:        yaml.DocumentNode,
		HeadComment: fmt.Sprintf("# GENERATED BY OPENRGD BRIDGE %s\n# Robot ID: %s", bridgeVersion, robotID),
		Content:     []*yaml.Node{root},
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode %s: %w", ControlFile, err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func newXacroDocument() (*etree.Document, *etree.Element) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0"`)
	robot := doc.CreateElement("robot")
	robot.CreateAttr("xmlns:xacro", xacroNS)
	return doc, robot
}

func render(doc *etree.Document) ([]byte, error) {
	doc.Indent(2)
	return doc.WriteToBytes()
}

// LimitsXacro renders one set of xacro properties per joint.
func LimitsXacro(joints []Joint) ([]byte, error) {
	doc, robot := newXacroDocument()
	for _, j := range joints {
		l := ComputeLimits(j)
		robot.CreateComment(" " + j.Name + " ")
		for _, p := range []struct {
			suffix string
			value  float64
		}{
			{"effort", l.Effort},
			{"velocity", l.Velocity},
			{"lower", l.Lower},
			{"upper", l.Upper},
			{"damping", l.Damping},
			{"friction", l.Friction},
		} {
			prop := robot.CreateElement("xacro:property")
			prop.CreateAttr("name", j.Name+"_"+p.suffix)
			prop.CreateAttr("value", formatFloat(p.value))
		}
	}
	return render(doc)
}

// selectPlugin picks the hardware plugin: the first declared plugin in joint
// name order, else the default. Every distinct declared plugin is returned.
func (r *ROS2) selectPlugin(joints []Joint) (string, []string) {
	seen := map[string]bool{}
	var declared []string
	chosen := ""
	for _, j := range joints {
		p := ComputeHardware(j.HAL).Plugin
		if p == "" {
			continue
		}
		if chosen == "" {
			chosen = p
		}
		if !seen[p] {
			seen[p] = true
			declared = append(declared, p)
		}
	}
	if chosen == "" {
		chosen = r.DefaultPlugin
		if chosen == "" {
			chosen = "openrgd_ros2_control/GenericSystem"
		}
	}
	sort.Strings(declared)
	return chosen, declared
}

// HardwareXacro renders the ros2_control system block. Joints that declare
// different driver plugins are reported, and each such joint records its own
// plugin as a driver_plugin param.
func (r *ROS2) HardwareXacro(joints []Joint) ([]byte, error) {
	plugin, declared := r.selectPlugin(joints)
	mixed := len(declared) > 1
	if mixed {
		logger.Warn("Joints declare different driver plugins; using the first in joint order",
			logger.String("selected", plugin), logger.String("declared", strings.Join(declared, ", ")))
	}

	doc, robot := newXacroDocument()
	system := robot.CreateElement("ros2_control")
	system.CreateAttr("name", "OpenRGD_System")
	system.CreateAttr("type", "system")
	system.CreateElement("hardware").CreateElement("plugin").SetText(plugin)

	for _, j := range joints {
		hw := ComputeHardware(j.HAL)
		joint := system.CreateElement("joint")
		joint.CreateAttr("name", j.Name)
		param(joint, "can_id", hw.CANID)
		param(joint, "bus", hw.Bus)
		if mixed && hw.Plugin != "" {
			param(joint, "driver_plugin", hw.Plugin)
		}
		joint.CreateElement("command_interface").CreateAttr("name", "position")
		for _, iface := range []string{"position", "velocity", "effort"} {
			joint.CreateElement("state_interface").CreateAttr("name", iface)
		}
	}
	return render(doc)
}

func param(parent *etree.Element, name, value string) {
	p := parent.CreateElement("param")
	p.CreateAttr("name", name)
	p.SetText(value)
}
