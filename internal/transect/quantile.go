package transect

import (
	"fmt"
	"math"
	"sort"
)

// Reduce collapses the time dimension of every time-bearing variable into
// per-point quantiles at the requested probability levels, returning a new
// dataset indexed quantile x points. Variables without a time dimension and
// the coordinate arrays are carried over unchanged; the acquisition water
// level is quantile-reduced like any other time series. Metadata is
// preserved per variable.
//
// NaN samples are excluded from each cell's sample; a cell whose samples are
// all NaN reduces to NaN.
func Reduce(ds *Dataset, quantiles []float64) (*Dataset, error) {
	if ds.Quantiles != nil {
		return nil, fmt.Errorf("dataset is already quantile-reduced")
	}
	if len(quantiles) == 0 {
		return nil, fmt.Errorf("no quantiles requested")
	}
	for _, q := range quantiles {
		if q < 0 || q > 1 || math.IsNaN(q) {
			return nil, fmt.Errorf("quantile %v outside [0, 1]", q)
		}
	}

	nQ, nP := len(quantiles), ds.NumPoints()
	out := &Dataset{
		X: ds.X, Y: ds.Y, Z: ds.Z, S: ds.S,
		Quantiles: append([]float64(nil), quantiles...),
		vars:      make(map[string]*Variable),
	}

	out.HA = make([]float64, nQ)
	for qi, q := range quantiles {
		out.HA[qi] = Quantile(q, ds.HA)
	}

	for _, name := range ds.order {
		v := ds.vars[name]
		if !v.HasDim(DimTime) {
			out.SetVar(v)
			continue
		}
		red := newVariable(v.Name, v.Attrs, []Dim{DimQuantile, DimPoints}, []int{nQ, nP})
		sample := make([]float64, 0, ds.nTime)
		for p := 0; p < nP; p++ {
			sample = sample[:0]
			for t := 0; t < ds.nTime; t++ {
				if val := v.At(t, p); !math.IsNaN(val) {
					sample = append(sample, val)
				}
			}
			for qi, q := range quantiles {
				red.Set(qi, p, Quantile(q, sample))
			}
		}
		out.SetVar(red)
	}
	return out, nil
}

// Quantile returns the p-quantile of the finite values in sample using
// linear interpolation between order statistics (the h = (n-1)p convention).
// NaN entries are dropped from the sample; an empty sample yields NaN.
//
// gonum's stat.Quantile offers Empirical and LinInterp cumulants, neither of
// which is the (n-1)p interpolation the upstream aggregation is defined
// against, so the interpolation is done here directly.
func Quantile(p float64, sample []float64) float64 {
	vals := make([]float64, 0, len(sample))
	for _, v := range sample {
		if !math.IsNaN(v) {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return math.NaN()
	}
	sort.Float64s(vals)
	if len(vals) == 1 {
		return vals[0]
	}
	h := float64(len(vals)-1) * p
	lo := int(math.Floor(h))
	hi := int(math.Ceil(h))
	if lo == hi {
		return vals[lo]
	}
	return vals[lo] + (h-float64(lo))*(vals[hi]-vals[lo])
}
