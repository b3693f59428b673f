package transect

// DefaultQuantiles are the probability levels reduced over time when the
// caller does not request specific ones.
var DefaultQuantiles = []float64{0.05, 0.25, 0.5, 0.75, 0.95}

// GaugeRefs ties the cross-section elevations to the water level observed at
// acquisition time: Z0 is the datum elevation of the gauge, HRef the gauge
// reading the bed survey was referenced against. Both come from the site's
// camera/observation metadata.
type GaugeRefs struct {
	Z0   float64
	HRef float64
}

// GetQ reduces the time-resolved effective velocity to quantiles and
// produces the depth-integrated velocity variants: q_nofill from the
// observed values only, and q from the profile-filled values. The returned
// dataset is quantile x points; the input dataset is left untouched.
//
// VectorToScalar must have run first so v_eff_nofill exists. Pass a nil
// fitter for the default log-law profile fit.
func GetQ(ds *Dataset, refs GaugeRefs, vCorr float64, quantiles []float64, fitter ProfileFitter) (*Dataset, error) {
	if !ds.Has("v_eff_nofill") {
		return nil, &MissingVariableError{
			Variable: "v_eff_nofill",
			Remedy:   "compute the effective velocity with VectorToScalar first",
		}
	}
	if len(quantiles) == 0 {
		quantiles = DefaultQuantiles
	}

	red, err := Reduce(ds, quantiles)
	if err != nil {
		return nil, err
	}
	if err := FillVelocity(red, refs.Z0, refs.HRef, fitter); err != nil {
		return nil, err
	}
	if err := DepthIntegrate(red, "v_eff_nofill", "q_nofill", refs.Z0, refs.HRef, vCorr); err != nil {
		return nil, err
	}
	if err := DepthIntegrate(red, "v_eff", "q", refs.Z0, refs.HRef, vCorr); err != nil {
		return nil, err
	}
	return red, nil
}

// GetRiverFlow integrates q over the section width into the per-quantile
// discharge, stored as river_flow. Requires GetQ to have run on ds.
func GetRiverFlow(ds *Dataset) error {
	return RiverFlow(ds)
}
