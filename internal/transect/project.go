package transect

import "math"

// VectorToScalar projects the planar velocity components onto the
// perpendicular of the cross-section and stores the result as the
// v_eff_nofill variable (time x points). The per-point flow direction is
// stored alongside as v_dir for plotting and reporting.
//
// The velocity angle is atan2(v_x, v_y), deliberately matching the section
// angle convention used by ResolveFlowDirection (x first, angles from the
// up direction). Swapping the arguments to the conventional atan2(y, x)
// would silently invert computed flow directions.
//
// Cells where either component is NaN stay NaN; gaps are filled later by
// FillVelocity, never here.
func VectorToScalar(ds *Dataset, mode AngleMode) error {
	vx := ds.Var("v_x")
	vy := ds.Var("v_y")
	if vx == nil || vy == nil {
		return &MissingVariableError{
			Variable: "v_x/v_y",
			Remedy:   "load the velocimetry series with Dataset.SetVelocity first",
		}
	}

	flowDir, err := ResolveFlowDirection(ds.X, ds.Y, mode)
	if err != nil {
		return err
	}

	nT, nP := ds.nTime, ds.NumPoints()
	vEff := newVariable("v_eff_nofill", Attrs{
		StandardName: "velocity",
		LongName:     "velocity in perpendicular direction of cross section, measured by angle in radians, measured from up-direction",
		Units:        "m s-1",
	}, []Dim{DimTime, DimPoints}, []int{nT, nP})
	for t := 0; t < nT; t++ {
		for p := 0; p < nP; p++ {
			u, v := vx.At(t, p), vy.At(t, p)
			if math.IsNaN(u) || math.IsNaN(v) || math.IsNaN(flowDir[p]) {
				vEff.Set(t, p, math.NaN())
				continue
			}
			vAngle := math.Atan2(u, v)
			mag := math.Hypot(u, v)
			vEff.Set(t, p, math.Cos(vAngle-flowDir[p])*mag)
		}
	}
	ds.SetVar(vEff)

	vDir := newVariable("v_dir", Attrs{
		StandardName: "river_flow_angle",
		LongName:     "Angle of river flow in radians from North",
		Units:        "rad",
	}, []Dim{DimPoints}, []int{nP})
	copy(vDir.Data, flowDir)
	ds.SetVar(vDir)
	return nil
}
