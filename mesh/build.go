package mesh

import (
	"github.com/notargets/meshtally/InputParameters"
	"github.com/notargets/meshtally/types"
)

// NewFromParameters builds the mesh described by one scenario record, with
// the run-wide tolerance eps
func NewFromParameters(mp InputParameters.MeshParameters, eps float64) (m Mesh, err error) {
	var (
		mt types.MeshType
	)
	if mt, err = types.NewMeshType(mp.Type); err != nil {
		err = types.NewConfigError("mesh", mp.ID, "%s", err.Error())
		return
	}
	switch mt {
	case types.MeshRegular:
		var rm *RegularMesh
		if rm, err = NewRegularMesh(mp.ID, mp.Dimension, mp.LowerLeft, mp.UpperRight, mp.Width); err == nil {
			rm.SetEpsilon(eps)
			m = rm
		}
	case types.MeshRectilinear:
		var rm *RectilinearMesh
		if rm, err = NewRectilinearMesh(mp.ID, mp.XGrid, mp.YGrid, mp.ZGrid); err == nil {
			rm.SetEpsilon(eps)
			m = rm
		}
	case types.MeshCylindrical:
		var cm *CylindricalMesh
		if cm, err = NewCylindricalMesh(mp.ID, mp.RGrid, mp.PhiGrid, mp.ZGrid, mp.Origin); err == nil {
			cm.SetEpsilon(eps)
			m = cm
		}
	case types.MeshSpherical:
		var sm *SphericalMesh
		if sm, err = NewSphericalMesh(mp.ID, mp.RGrid, mp.ThetaGrid, mp.PhiGrid, mp.Origin); err == nil {
			sm.SetEpsilon(eps)
			m = sm
		}
	}
	return
}
