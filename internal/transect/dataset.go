// Package transect converts per-point, per-time surface velocity fields
// sampled along a river cross-section into a time-aggregated volumetric
// discharge estimate.
//
// The pipeline runs leaf-to-root: resolve the per-point orientation of the
// section, project vector velocities onto the section perpendicular, reduce
// the time dimension to quantiles, fill gaps with a log-law vertical profile,
// depth-integrate into flux per unit width, and width-integrate into
// discharge. Each stage is a deterministic in-memory transform; missing data
// is carried as IEEE NaN end to end.
package transect

import (
	"fmt"
	"math"
)

// Dim identifies an axis of a dataset variable.
type Dim string

const (
	DimTime     Dim = "time"
	DimPoints   Dim = "points"
	DimQuantile Dim = "quantile"
)

// Attrs carries descriptive metadata for a derived variable, mirroring
// CF-style attributes so downstream reporting can label axes without
// knowing the variable by name.
type Attrs struct {
	StandardName string
	LongName     string
	Units        string
}

// Variable is a dense float64 array over one or two named dimensions,
// row-major in the order of Dims. NaN marks missing cells.
type Variable struct {
	Name  string
	Attrs Attrs
	Dims  []Dim
	Shape []int
	Data  []float64
}

// At returns the value at (i, j) for a two-dimensional variable.
func (v *Variable) At(i, j int) float64 {
	return v.Data[i*v.Shape[1]+j]
}

// Set assigns the value at (i, j) for a two-dimensional variable.
func (v *Variable) Set(i, j int, val float64) {
	v.Data[i*v.Shape[1]+j] = val
}

// HasDim reports whether the variable spans the given dimension.
func (v *Variable) HasDim(d Dim) bool {
	for _, vd := range v.Dims {
		if vd == d {
			return true
		}
	}
	return false
}

func newVariable(name string, attrs Attrs, dims []Dim, shape []int) *Variable {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return &Variable{
		Name:  name,
		Attrs: attrs,
		Dims:  dims,
		Shape: shape,
		Data:  make([]float64, n),
	}
}

// MissingVariableError reports a pipeline ordering violation: a stage was
// asked to run before the stage that produces its required input.
type MissingVariableError struct {
	Variable string
	Remedy   string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("dataset does not contain variable %q; %s", e.Variable, e.Remedy)
}

// Dataset holds the cross-section coordinates and the named variables the
// pipeline stages derive. The point dimension is the ordered left-bank to
// right-bank traversal; the time dimension is replaced by a quantile
// dimension after Reduce.
type Dataset struct {
	// Point coordinates in a planar projected CRS. Z is bed elevation.
	// NaN entries mark points that were not sampled.
	X, Y, Z []float64

	// S is the along-section distance coordinate, monotonically increasing
	// with the traversal order.
	S []float64

	// HA is the water level at acquisition, per time step before Reduce and
	// per quantile after.
	HA []float64

	// Quantiles is nil for a time-resolved dataset and holds the requested
	// probability levels after Reduce.
	Quantiles []float64

	nTime int
	vars  map[string]*Variable
	order []string
}

// New builds a time-resolved dataset for a cross-section of len(x) points
// and nTime time steps. x, y, z must have equal length; s may be nil, in
// which case the along-section distance is derived as cumulative planar
// distance between consecutive points. haConst is broadcast over time.
func New(x, y, z, s []float64, nTime int, haConst float64) (*Dataset, error) {
	if len(x) == 0 {
		return nil, fmt.Errorf("cross-section has no points")
	}
	if len(y) != len(x) || len(z) != len(x) {
		return nil, fmt.Errorf("coordinate length mismatch: x=%d y=%d z=%d", len(x), len(y), len(z))
	}
	if s == nil {
		s = Chainage(x, y)
	} else if len(s) != len(x) {
		return nil, fmt.Errorf("along-section coordinate length %d does not match %d points", len(s), len(x))
	}
	if nTime <= 0 {
		return nil, fmt.Errorf("dataset needs at least one time step, got %d", nTime)
	}
	ha := make([]float64, nTime)
	for i := range ha {
		ha[i] = haConst
	}
	return &Dataset{
		X: x, Y: y, Z: z, S: s,
		HA:    ha,
		nTime: nTime,
		vars:  make(map[string]*Variable),
	}, nil
}

// Chainage derives the along-section distance coordinate as the cumulative
// planar distance along the ordered point sequence. Segments touching a
// non-finite coordinate contribute zero length so the coordinate stays
// monotonic.
func Chainage(x, y []float64) []float64 {
	s := make([]float64, len(x))
	for i := 1; i < len(x); i++ {
		d := math.Hypot(x[i]-x[i-1], y[i]-y[i-1])
		if math.IsNaN(d) {
			d = 0
		}
		s[i] = s[i-1] + d
	}
	return s
}

// NumPoints returns the number of cross-section points.
func (ds *Dataset) NumPoints() int { return len(ds.X) }

// NumTime returns the number of time steps (zero once reduced).
func (ds *Dataset) NumTime() int { return ds.nTime }

// Var returns the named variable, or nil if absent.
func (ds *Dataset) Var(name string) *Variable {
	return ds.vars[name]
}

// Has reports whether the named variable exists.
func (ds *Dataset) Has(name string) bool {
	_, ok := ds.vars[name]
	return ok
}

// VarNames returns the variable names in insertion order.
func (ds *Dataset) VarNames() []string {
	out := make([]string, len(ds.order))
	copy(out, ds.order)
	return out
}

// SetVar stores a variable, replacing any previous one with the same name.
func (ds *Dataset) SetVar(v *Variable) {
	if _, ok := ds.vars[v.Name]; !ok {
		ds.order = append(ds.order, v.Name)
	}
	ds.vars[v.Name] = v
}

// SetVelocity stores the raw planar velocity components as the v_x and v_y
// variables. u and v are indexed [time][point] and must match the dataset
// shape; NaN cells mark samples the velocimetry stage could not estimate.
func (ds *Dataset) SetVelocity(u, v [][]float64) error {
	if len(u) != ds.nTime || len(v) != ds.nTime {
		return fmt.Errorf("velocity series has %d/%d time steps, dataset has %d", len(u), len(v), ds.nTime)
	}
	vx := newVariable("v_x", Attrs{
		StandardName: "sea_water_x_velocity",
		LongName:     "Velocity in x-direction",
		Units:        "m s-1",
	}, []Dim{DimTime, DimPoints}, []int{ds.nTime, ds.NumPoints()})
	vy := newVariable("v_y", Attrs{
		StandardName: "sea_water_y_velocity",
		LongName:     "Velocity in y-direction",
		Units:        "m s-1",
	}, []Dim{DimTime, DimPoints}, []int{ds.nTime, ds.NumPoints()})
	for t := 0; t < ds.nTime; t++ {
		if len(u[t]) != ds.NumPoints() || len(v[t]) != ds.NumPoints() {
			return fmt.Errorf("velocity row %d has %d/%d points, dataset has %d", t, len(u[t]), len(v[t]), ds.NumPoints())
		}
		for p := 0; p < ds.NumPoints(); p++ {
			vx.Set(t, p, u[t][p])
			vy.Set(t, p, v[t][p])
		}
	}
	ds.SetVar(vx)
	ds.SetVar(vy)
	return nil
}
