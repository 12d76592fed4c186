package InputParameters

import (
	"fmt"

	"github.com/ghodss/yaml"

	"github.com/notargets/gocaricature/caricature"
	"github.com/notargets/gocaricature/curvature"
	"github.com/notargets/gocaricature/operators"
	"github.com/notargets/gocaricature/solver"
)

const DefaultBeta = 0.1

// Parameters obtained from the YAML input file
type CaricatureParameters struct {
	Title               string  `yaml:"Title"`
	Beta                float64 `yaml:"Beta"`
	Solver              string  `yaml:"Solver"`    // ldlt or cg
	Rings               int     `yaml:"Rings"`     // Curvature fit neighbourhood in mesh rings
	Neighbors           int     `yaml:"Neighbors"` // Curvature fit neighbourhood in nearest vertices, overrides Rings
	Tolerance           float64 `yaml:"Tolerance"` // CG relative residual
	DegenerateTolerance float64 `yaml:"DegenerateTolerance"`
	CurvatureFloor      float64 `yaml:"CurvatureFloor"`
	Output              string  `yaml:"Output"` // File name written into the output directory
}

func NewCaricatureParameters() *CaricatureParameters {
	return &CaricatureParameters{
		Beta:                DefaultBeta,
		Solver:              solver.LDLT.String(),
		Rings:               curvature.DefaultRings,
		DegenerateTolerance: operators.DefaultDegenerateTolerance,
		Output:              "output.obj",
	}
}

// Parse overlays the values present in data onto ip
func (ip *CaricatureParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

func (ip *CaricatureParameters) Config() (cfg caricature.Config, err error) {
	cfg = caricature.DefaultConfig()
	if cfg.Method, err = solver.NewMethod(ip.Solver); err != nil {
		return
	}
	if ip.Rings < 0 || ip.Neighbors < 0 {
		err = fmt.Errorf("rings (%d) and neighbors (%d) must not be negative", ip.Rings, ip.Neighbors)
		return
	}
	if ip.DegenerateTolerance < 0 || ip.CurvatureFloor < 0 || ip.Tolerance < 0 {
		err = fmt.Errorf("tolerances and curvature floor must not be negative")
		return
	}
	cfg.Curvature = curvature.Options{Rings: ip.Rings, Neighbors: ip.Neighbors}
	cfg.Tolerance = ip.Tolerance
	cfg.DegenerateTolerance = ip.DegenerateTolerance
	cfg.CurvatureFloor = ip.CurvatureFloor
	return
}

func (ip *CaricatureParameters) Print() {
	if ip.Title != "" {
		fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	}
	fmt.Printf("%8.5f\t\t= Beta\n", ip.Beta)
	fmt.Printf("[%s]\t\t\t= Solver\n", ip.Solver)
	if ip.Neighbors > 0 {
		fmt.Printf("[%d]\t\t\t= Curvature Neighbors\n", ip.Neighbors)
	} else {
		fmt.Printf("[%d]\t\t\t= Curvature Rings\n", ip.Rings)
	}
	fmt.Printf("%8.2e\t\t= Degenerate Tolerance\n", ip.DegenerateTolerance)
	if ip.CurvatureFloor > 0 {
		fmt.Printf("%8.2e\t\t= Curvature Floor\n", ip.CurvatureFloor)
	}
	fmt.Printf("[%s]\t\t= Output\n", ip.Output)
}
