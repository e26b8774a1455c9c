package InputParameters

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/go-playground/validator/v10"

	"github.com/notargets/meshtally/types"
	"github.com/notargets/meshtally/utils"
)

var validate = validator.New()

// Parameters obtained from the YAML scenario file
type InputParameters struct {
	Title    string             `json:"Title"`
	Settings Settings           `json:"Settings"`
	Meshes   []MeshParameters   `json:"Meshes" validate:"dive"`
	Filters  []FilterParameters `json:"Filters" validate:"dive"`
	Tallies  []TallyParameters  `json:"Tallies" validate:"dive"`
}

type Settings struct {
	Batches   int              `json:"Batches" validate:"gte=1"`
	Particles int              `json:"Particles" validate:"gte=1"`
	Workers   int              `json:"Workers" validate:"gte=0"` // 0 = one per CPU
	Seed      uint64           `json:"Seed"`
	Epsilon   float64          `json:"Epsilon" validate:"gt=0,lt=0.001"`
	Source    SourceParameters `json:"Source"`
	Medium    MediumParameters `json:"Medium"`
}

type SourceParameters struct {
	Type       string    `json:"Type" validate:"omitempty,oneof=point box"`
	Origin     []float64 `json:"Origin" validate:"omitempty,len=3"`
	LowerLeft  []float64 `json:"LowerLeft" validate:"omitempty,len=3"`
	UpperRight []float64 `json:"UpperRight" validate:"omitempty,len=3"`
	Energy     float64   `json:"Energy" validate:"gt=0"`
}

// MediumParameters describe the single homogeneous medium of the driver
type MediumParameters struct {
	TotalXS    float64 `json:"TotalXS" validate:"gt=0"`           // 1/cm
	Absorption float64 `json:"Absorption" validate:"gte=0,lte=1"` // probability per collision
	EnergyLoss float64 `json:"EnergyLoss" validate:"gte=0,lt=1"`  // fraction lost per scatter
	Radius     float64 `json:"Radius" validate:"gt=0"`            // vacuum boundary
	Response   float64 `json:"Response" validate:"gte=0"`         // score per unit track length
	Cutoff     float64 `json:"Cutoff" validate:"gte=0"`           // energy cutoff
}

type MeshParameters struct {
	ID         int       `json:"ID" validate:"gt=0"`
	Type       string    `json:"Type"` // regular (default), rectilinear, cylindrical, spherical
	Dimension  []int     `json:"Dimension"`
	LowerLeft  []float64 `json:"LowerLeft"`
	UpperRight []float64 `json:"UpperRight"`
	Width      []float64 `json:"Width"`
	XGrid      []float64 `json:"XGrid"`
	YGrid      []float64 `json:"YGrid"`
	ZGrid      []float64 `json:"ZGrid"`
	RGrid      []float64 `json:"RGrid"`
	PhiGrid    []float64 `json:"PhiGrid"`
	ThetaGrid  []float64 `json:"ThetaGrid"`
	Origin     []float64 `json:"Origin" validate:"omitempty,len=3"`
}

type FilterParameters struct {
	ID    int       `json:"ID" validate:"gt=0"`
	Type  string    `json:"Type" validate:"required"`
	Bins  []int     `json:"Bins"`  // mesh ids for mesh and meshsurface filters
	Edges []float64 `json:"Edges"` // group boundaries for energy filters
}

type TallyParameters struct {
	ID          int      `json:"ID" validate:"gt=0"`
	Filters     []int    `json:"Filters" validate:"required,min=1"`
	Scores      []string `json:"Scores" validate:"required,min=1"`
	Estimator   string   `json:"Estimator"`   // tracklength (default) or collision
	CurrentMode string   `json:"CurrentMode"` // net (default) or unsigned
}

func ReadFile(fileName string) (ip *InputParameters, err error) {
	var data []byte
	if data, err = os.ReadFile(fileName); err != nil {
		return
	}
	ip = &InputParameters{}
	if err = ip.Parse(data); err != nil {
		err = fmt.Errorf("reading %s: %w", fileName, err)
	}
	return
}

func (ip *InputParameters) Parse(data []byte) (err error) {
	if err = yaml.Unmarshal(data, ip); err != nil {
		return
	}
	ip.SetDefaults()
	return
}

// SetDefaults fills settings left at their zero value
func (ip *InputParameters) SetDefaults() {
	var (
		s = &ip.Settings
	)
	if s.Batches == 0 {
		s.Batches = 10
	}
	if s.Particles == 0 {
		s.Particles = 1000
	}
	if s.Epsilon == 0 {
		s.Epsilon = utils.NODETOL
	}
	if s.Source.Type == "" {
		s.Source.Type = "point"
	}
	if s.Source.Energy == 0 {
		s.Source.Energy = 2.e6
	}
	if s.Medium.TotalXS == 0 {
		s.Medium.TotalXS = 0.5
	}
	if s.Medium.Radius == 0 {
		s.Medium.Radius = 50
	}
	if s.Medium.Response == 0 {
		s.Medium.Response = 1
	}
}

// Validate checks field ranges and the references between records. All
// problems found are returned together, each identifying the record at fault.
func (ip *InputParameters) Validate() (err error) {
	var (
		errs    []error
		meshIDs = make(map[int]bool)
		fltIDs  = make(map[int]bool)
		tlyIDs  = make(map[int]bool)
	)
	if vErr := validate.Struct(ip); vErr != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(vErr, &fieldErrs) {
			for _, fe := range fieldErrs {
				errs = append(errs, types.NewConfigError("input", 0,
					"%s fails %s%s (have %v)", strings.TrimPrefix(fe.Namespace(), "InputParameters."),
					fe.Tag(), paramSuffix(fe.Param()), fe.Value()))
			}
		} else {
			errs = append(errs, vErr)
		}
	}
	if ip.Settings.Source.Type == "box" &&
		(len(ip.Settings.Source.LowerLeft) != 3 || len(ip.Settings.Source.UpperRight) != 3) {
		errs = append(errs, types.NewConfigError("settings", 0,
			"box source needs LowerLeft and UpperRight"))
	}
	for _, m := range ip.Meshes {
		if meshIDs[m.ID] {
			errs = append(errs, types.NewConfigError("mesh", m.ID, "duplicate id"))
		}
		meshIDs[m.ID] = true
		if _, tErr := types.NewMeshType(m.Type); tErr != nil {
			errs = append(errs, types.NewConfigError("mesh", m.ID, "%s", tErr.Error()))
		}
	}
	for _, f := range ip.Filters {
		if fltIDs[f.ID] {
			errs = append(errs, types.NewConfigError("filter", f.ID, "duplicate id"))
		}
		fltIDs[f.ID] = true
		ft, tErr := types.NewFilterType(f.Type)
		if tErr != nil {
			errs = append(errs, types.NewConfigError("filter", f.ID, "%s", tErr.Error()))
			continue
		}
		switch ft {
		case types.FilterEnergy:
			if len(f.Edges) < 2 {
				errs = append(errs, types.NewConfigError("filter", f.ID,
					"energy filter needs at least two edges"))
			}
		default:
			if len(f.Bins) == 0 {
				errs = append(errs, types.NewConfigError("filter", f.ID, "no meshes listed in bins"))
			}
			for _, id := range f.Bins {
				if !meshIDs[id] {
					errs = append(errs, types.NewConfigError("filter", f.ID,
						"references nonexistent mesh %d", id))
				}
			}
		}
	}
	for _, t := range ip.Tallies {
		if tlyIDs[t.ID] {
			errs = append(errs, types.NewConfigError("tally", t.ID, "duplicate id"))
		}
		tlyIDs[t.ID] = true
		for _, id := range t.Filters {
			if !fltIDs[id] {
				errs = append(errs, types.NewConfigError("tally", t.ID,
					"references nonexistent filter %d", id))
			}
		}
		for _, name := range t.Scores {
			if _, sErr := types.NewScoreKind(t.ID, name); sErr != nil {
				errs = append(errs, sErr)
			}
		}
	}
	return errors.Join(errs...)
}

func paramSuffix(param string) string {
	if param == "" {
		return ""
	}
	return "=" + param
}

func (ip *InputParameters) Print() {
	var (
		s = ip.Settings
	)
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%d]\t\t\t= Batches\n", s.Batches)
	fmt.Printf("[%d]\t\t\t= Particles per batch\n", s.Particles)
	fmt.Printf("[%d]\t\t\t\t= Workers (0 = NumCPU)\n", s.Workers)
	fmt.Printf("[%d]\t\t\t\t= Seed\n", s.Seed)
	fmt.Printf("%8.2e\t\t= Epsilon\n", s.Epsilon)
	fmt.Printf("[%s] E=%8.3e\t= Source\n", s.Source.Type, s.Source.Energy)
	fmt.Printf("%8.5f\t\t= Total XS\n", s.Medium.TotalXS)
	fmt.Printf("%8.5f\t\t= Absorption probability\n", s.Medium.Absorption)
	fmt.Printf("%8.5f\t\t= Boundary radius\n", s.Medium.Radius)
	meshes := append([]MeshParameters(nil), ip.Meshes...)
	sort.Slice(meshes, func(i, j int) bool { return meshes[i].ID < meshes[j].ID })
	for _, m := range meshes {
		mt, _ := types.NewMeshType(m.Type)
		fmt.Printf("Mesh[%d] = %s\n", m.ID, mt)
	}
	for _, f := range ip.Filters {
		fmt.Printf("Filter[%d] = %s %v%v\n", f.ID, f.Type, f.Bins, f.Edges)
	}
	for _, t := range ip.Tallies {
		fmt.Printf("Tally[%d] = filters %v, scores %v\n", t.ID, t.Filters, t.Scores)
	}
}
