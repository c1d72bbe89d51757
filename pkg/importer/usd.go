package importer

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/fulmenhq/rgd/pkg/logger"
)

// USD imports ASCII USD stages (.usda). Binary crate files are rejected.
type USD struct{}

func (USD) Name() string { return "usd" }

var (
	usdDefaultPrim = regexp.MustCompile(`defaultPrim\s*=\s*"([^"]+)"`)
	usdJoint       = regexp.MustCompile(`def\s+Physics(Revolute|Prismatic)Joint\s+"([^"]+)"`)
	usdLower       = regexp.MustCompile(`float:physics:lowerLimit\s*=\s*([-0-9.]+)`)
	usdUpper       = regexp.MustCompile(`float:physics:upperLimit\s*=\s*([-0-9.]+)`)
	usdStiffness   = regexp.MustCompile(`float:drive:angular:physics:stiffness\s*=\s*([-0-9.]+)`)
	usdDamping     = regexp.MustCompile(`float:drive:angular:physics:damping\s*=\s*([-0-9.]+)`)
	usdMaxForce    = regexp.MustCompile(`float:drive:angular:physics:maxForce\s*=\s*([-0-9.]+)`)
)

type usdDescription struct {
	HardwareID   string `json:"hardware_id"`
	SourceFormat string `json:"source_format"`
	Notes        string `json:"notes"`
}

// Import extracts physics joints and their angular drives. A joint's block
// runs from its declaration to the next "def ".
func (u USD) Import(path string) (*Result, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-selected import source
	if err != nil {
		return nil, err
	}
	if bytes.HasPrefix(data, []byte("PXR-USDC")) || !utf8.Valid(data) {
		return nil, fmt.Errorf("%s: only ASCII USD (.usda) can be imported; convert binary USD first", path)
	}
	content := string(data)

	robot := stemName(path)
	if m := usdDefaultPrim.FindStringSubmatch(content); m != nil {
		robot = m[1]
	}

	joints := map[string]jointSpec{}
	for _, loc := range usdJoint.FindAllStringSubmatchIndex(content, -1) {
		kind := strings.ToLower(content[loc[2]:loc[3]])
		name := content[loc[4]:loc[5]]

		block := content[loc[1]:]
		if end := strings.Index(block, "def "); end >= 0 {
			block = block[:end]
		}

		joints[name] = jointSpec{
			Type: kind,
			Limits: jointLimits{
				TorqueNm: matchFloat(usdMaxForce, block, 100),
				RangeRad: [2]float64{matchFloat(usdLower, block, -3.14), matchFloat(usdUpper, block, 3.14)},
			},
			IsaacParams: &isaacParams{
				Stiffness: matchFloat(usdStiffness, block, 0),
				Damping:   matchFloat(usdDamping, block, 0),
			},
		}
	}
	logger.Info("Parsed USD stage", logger.Int("joints", len(joints)))

	files, err := baseModules(robot)
	if err != nil {
		return nil, err
	}
	if files[DescriptionPath], err = module("IMPORTED FROM USD", usdDescription{
		HardwareID:   robot,
		SourceFormat: "USD",
		Notes:        "Imported from Isaac Sim context",
	}); err != nil {
		return nil, err
	}
	if files[DynamicsPath], err = module("IMPORTED FROM ISAAC PHYSICS", joints); err != nil {
		return nil, err
	}
	return &Result{RobotName: robot, Files: files}, nil
}

func matchFloat(re *regexp.Regexp, text string, def float64) float64 {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return def
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return def
	}
	return f
}
