package transect

import (
	"math"

	"gonum.org/v1/gonum/integrate"
)

// RiverFlow integrates the depth-integrated velocity q along the
// along-section distance coordinate and stores the per-quantile discharge
// (m3 s-1) as the river_flow variable. When the q_nofill variant exists it is
// integrated the same way into river_flow_nofill, so the observation-only
// total is always derived with the same integrator. Gap cells contribute zero
// flux: NaN values are replaced by 0 before integrating, on the grounds that
// no observation means no measurable flow at that point, not an aborted
// integral.
//
// A section of fewer than two points has no width to integrate over; the
// discharge is NaN at every quantile rather than an error, matching the
// undefined-angle degrade of such sections upstream.
//
// The q variable must exist; calling RiverFlow before GetQ (or
// DepthIntegrate) is a pipeline ordering violation reported as a
// MissingVariableError.
func RiverFlow(ds *Dataset) error {
	q := ds.Var("q")
	if q == nil {
		return &MissingVariableError{
			Variable: "q",
			Remedy:   "compute the depth-integrated velocity [m2 s-1] with GetQ first",
		}
	}

	ds.SetVar(integrateWidth(ds, q, "river_flow", Attrs{
		StandardName: "river_discharge",
		LongName:     "River Flow",
		Units:        "m3 s-1",
	}))
	if qn := ds.Var("q_nofill"); qn != nil {
		ds.SetVar(integrateWidth(ds, qn, "river_flow_nofill", Attrs{
			StandardName: "river_discharge",
			LongName:     "River Flow without profile fill",
			Units:        "m3 s-1",
		}))
	}
	return nil
}

// integrateWidth runs the zero-filled trapezoidal integral of a
// quantile x points flux variable over the s coordinate.
func integrateWidth(ds *Dataset, q *Variable, name string, attrs Attrs) *Variable {
	nQ, nP := q.Shape[0], q.Shape[1]
	flow := newVariable(name, attrs, []Dim{DimQuantile}, []int{nQ})
	if nP < 2 {
		for qi := range flow.Data {
			flow.Data[qi] = math.NaN()
		}
		return flow
	}
	row := make([]float64, nP)
	for qi := 0; qi < nQ; qi++ {
		for p := 0; p < nP; p++ {
			v := q.At(qi, p)
			if math.IsNaN(v) {
				v = 0
			}
			row[p] = v
		}
		flow.Data[qi] = integrate.Trapezoidal(ds.S, row)
	}
	return flow
}
