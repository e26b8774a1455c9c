package types

import (
	"fmt"
	"strings"
)

type MeshType uint8

const (
	MeshRegular MeshType = iota
	MeshRectilinear
	MeshCylindrical
	MeshSpherical
)

var MeshNameMap = map[string]MeshType{
	"":            MeshRegular,
	"regular":     MeshRegular,
	"rectilinear": MeshRectilinear,
	"cylindrical": MeshCylindrical,
	"spherical":   MeshSpherical,
}

func (m MeshType) String() string {
	return [...]string{"regular", "rectilinear", "cylindrical", "spherical"}[m]
}

// AxisNames are the coordinate names of each mesh axis, in index order
func (m MeshType) AxisNames() [3]string {
	switch m {
	case MeshCylindrical:
		return [3]string{"r", "phi", "z"}
	case MeshSpherical:
		return [3]string{"r", "theta", "phi"}
	default:
		return [3]string{"x", "y", "z"}
	}
}

type FilterType uint8

const (
	FilterMesh FilterType = iota
	FilterMeshSurface
	FilterEnergy
)

var FilterNameMap = map[string]FilterType{
	"mesh":        FilterMesh,
	"meshsurface": FilterMeshSurface,
	"energy":      FilterEnergy,
}

func (f FilterType) String() string {
	return [...]string{"mesh", "meshsurface", "energy"}[f]
}

// IsSpatial is true for filters whose matches restrict the track interval
func (f FilterType) IsSpatial() bool {
	return f == FilterMesh || f == FilterMeshSurface
}

type ScoreKind uint8

const (
	ScoreTotal ScoreKind = iota
	ScoreCurrent
)

var ScoreNameMap = map[string]ScoreKind{
	"total":   ScoreTotal,
	"current": ScoreCurrent,
}

func (s ScoreKind) String() string {
	return [...]string{"total", "current"}[s]
}

type Estimator uint8

const (
	TrackLength Estimator = iota
	Collision
)

var EstimatorNameMap = map[string]Estimator{
	"":            TrackLength,
	"tracklength": TrackLength,
	"collision":   Collision,
}

func (e Estimator) String() string {
	return [...]string{"tracklength", "collision"}[e]
}

// CurrentMode selects what a current score accumulates: the signed weight,
// giving net current, or its magnitude, giving the crossing rate.
type CurrentMode uint8

const (
	CurrentNet CurrentMode = iota
	CurrentUnsigned
)

var CurrentModeNameMap = map[string]CurrentMode{
	"":         CurrentNet,
	"net":      CurrentNet,
	"unsigned": CurrentUnsigned,
}

func (c CurrentMode) String() string {
	return [...]string{"net", "unsigned"}[c]
}

// SurfaceDirection numbers the 2*N faces of a mesh cell: 2*axis is the face
// on the low side of the axis, 2*axis+1 the face on the high side.
type SurfaceDirection uint8

func NewSurfaceDirection(axis int, plus bool) SurfaceDirection {
	if plus {
		return SurfaceDirection(2*axis + 1)
	}
	return SurfaceDirection(2 * axis)
}

func (sd SurfaceDirection) Axis() int { return int(sd) / 2 }

func (sd SurfaceDirection) Plus() bool { return sd%2 == 1 }

func (sd SurfaceDirection) Label(m MeshType) string {
	var (
		sign = "-"
	)
	if sd.Plus() {
		sign = "+"
	}
	return sign + m.AxisNames()[sd.Axis()]
}

func lookup[T any](kind string, names map[string]T, name string) (val T, err error) {
	var ok bool
	if val, ok = names[strings.ToLower(strings.TrimSpace(name))]; !ok {
		err = fmt.Errorf("unknown %s type %q", kind, name)
	}
	return
}

func NewMeshType(name string) (MeshType, error) { return lookup("mesh", MeshNameMap, name) }

func NewFilterType(name string) (FilterType, error) { return lookup("filter", FilterNameMap, name) }

func NewEstimator(name string) (Estimator, error) { return lookup("estimator", EstimatorNameMap, name) }

func NewCurrentMode(name string) (CurrentMode, error) {
	return lookup("current mode", CurrentModeNameMap, name)
}

// NewScoreKind returns an UnsupportedScore error for names the evaluator does
// not implement.
func NewScoreKind(tallyID int, name string) (sk ScoreKind, err error) {
	var ok bool
	if sk, ok = ScoreNameMap[strings.ToLower(strings.TrimSpace(name))]; !ok {
		err = &ConfigError{Kind: "tally", ID: tallyID, Err: ErrUnsupportedScore,
			Msg: fmt.Sprintf("score %q is not implemented", name)}
	}
	return
}
