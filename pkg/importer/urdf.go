package importer

import (
	"fmt"
	"strconv"

	"github.com/beevik/etree"
	"github.com/fulmenhq/rgd/pkg/logger"
)

// URDF imports ROS robot description XML.
type URDF struct{}

func (URDF) Name() string { return "urdf" }

type urdfDescription struct {
	HardwareID     string   `json:"hardware_id"`
	ImportedFrom   string   `json:"imported_from"`
	KinematicChain []string `json:"kinematic_chain"`
}

// Import reads links and joint limits. Missing or non-numeric limit
// attributes fall back to zero effort and velocity and a ±3.14 range.
func (u URDF) Import(path string) (*Result, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, fmt.Errorf("parse URDF %s: %w", path, err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("parse URDF %s: no root element", path)
	}

	robot := stemName(path)
	if name := root.SelectAttrValue("name", ""); name != "" {
		robot = name
	}

	links := []string{}
	for _, l := range root.SelectElements("link") {
		if name := l.SelectAttrValue("name", ""); name != "" {
			links = append(links, name)
		}
	}

	joints := map[string]jointSpec{}
	for _, j := range root.SelectElements("joint") {
		name := j.SelectAttrValue("name", "")
		if name == "" {
			logger.Warn("Skipping unnamed URDF joint", logger.String("file", path))
			continue
		}
		effort, velocity, lower, upper := 0.0, 0.0, -3.14, 3.14
		if limit := j.SelectElement("limit"); limit != nil {
			effort = attrFloat(limit, "effort", effort)
			velocity = attrFloat(limit, "velocity", velocity)
			lower = attrFloat(limit, "lower", lower)
			upper = attrFloat(limit, "upper", upper)
		}
		v := velocity
		joints[name] = jointSpec{
			Type: j.SelectAttrValue("type", "fixed"),
			Limits: jointLimits{
				TorqueNm:     effort,
				VelocityRads: &v,
				RangeRad:     [2]float64{lower, upper},
			},
		}
	}
	logger.Info("Parsed URDF", logger.Int("links", len(links)), logger.Int("joints", len(joints)))

	files, err := baseModules(robot)
	if err != nil {
		return nil, err
	}
	if files[DescriptionPath], err = module("IMPORTED FROM URDF", urdfDescription{
		HardwareID:     robot,
		ImportedFrom:   path,
		KinematicChain: links,
	}); err != nil {
		return nil, err
	}
	if files[DynamicsPath], err = module("IMPORTED DYNAMICS", joints); err != nil {
		return nil, err
	}
	return &Result{RobotName: robot, Files: files}, nil
}

func attrFloat(e *etree.Element, key string, def float64) float64 {
	s := e.SelectAttrValue(key, "")
	if s == "" {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return f
}
