package transect

import (
	"math"
	"testing"
)

func TestQuantile(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name   string
		p      float64
		sample []float64
		want   float64
	}{
		{"median even", 0.5, []float64{1, 2, 3, 4}, 2.5},
		{"median odd", 0.5, []float64{3, 1, 2}, 2},
		{"min", 0, []float64{5, 1, 3}, 1},
		{"max", 1, []float64{5, 1, 3}, 5},
		{"interpolated", 0.25, []float64{1, 2, 3, 4, 5}, 2},
		{"interpolated fractional", 0.1, []float64{0, 10}, 1},
		{"single value", 0.75, []float64{42}, 42},
		{"nan dropped", 0.5, []float64{1, nan, 3, nan}, 2},
		{"all nan", 0.5, []float64{nan, nan}, nan},
		{"empty", 0.5, nil, nan},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Quantile(tt.p, tt.sample)
			if math.IsNaN(tt.want) {
				if !math.IsNaN(got) {
					t.Errorf("Quantile(%v, %v) = %v, want NaN", tt.p, tt.sample, got)
				}
				return
			}
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Quantile(%v, %v) = %v, want %v", tt.p, tt.sample, got, tt.want)
			}
		})
	}
}

func TestQuantileDoesNotMutateSample(t *testing.T) {
	sample := []float64{3, 1, 2}
	Quantile(0.5, sample)
	if sample[0] != 3 || sample[1] != 1 || sample[2] != 2 {
		t.Errorf("sample mutated: %v", sample)
	}
}

func TestReduceConstantSeriesIgnoresNaNs(t *testing.T) {
	// A constant velocity with scattered dropouts still reduces to the
	// constant at every quantile.
	nan := math.NaN()
	u := [][]float64{
		{0, 0},
		{0, nan},
		{nan, 0},
		{0, 0},
	}
	v := [][]float64{
		{1.5, 1.5},
		{1.5, nan},
		{nan, 1.5},
		{1.5, 1.5},
	}
	ds := straightSection(t, u, v)
	if err := VectorToScalar(ds, AngleGlobal); err != nil {
		t.Fatalf("VectorToScalar: %v", err)
	}

	red, err := Reduce(ds, []float64{0.05, 0.5, 0.95})
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	vEff := red.Var("v_eff_nofill")
	for qi := 0; qi < 3; qi++ {
		for p := 0; p < 2; p++ {
			if got := vEff.At(qi, p); math.Abs(got-1.5) > 1e-12 {
				t.Errorf("cell (%d, %d) = %v, want 1.5", qi, p, got)
			}
		}
	}
}

func TestReduceShapesAndMetadata(t *testing.T) {
	u := [][]float64{{0, 0, 0}, {0, 0, 0}}
	v := [][]float64{{1, 2, 3}, {3, 2, 1}}
	ds := straightSection(t, u, v)
	if err := VectorToScalar(ds, AngleGlobal); err != nil {
		t.Fatalf("VectorToScalar: %v", err)
	}

	qs := []float64{0.25, 0.5, 0.75}
	red, err := Reduce(ds, qs)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if red.NumTime() != 0 {
		t.Errorf("reduced dataset NumTime = %d, want 0", red.NumTime())
	}
	if len(red.Quantiles) != len(qs) {
		t.Fatalf("Quantiles = %v, want %v", red.Quantiles, qs)
	}
	vEff := red.Var("v_eff_nofill")
	if vEff == nil {
		t.Fatal("v_eff_nofill dropped by Reduce")
	}
	if len(vEff.Shape) != 2 || vEff.Shape[0] != 3 || vEff.Shape[1] != 3 {
		t.Errorf("shape = %v, want [3 3]", vEff.Shape)
	}
	if vEff.Dims[0] != DimQuantile || vEff.Dims[1] != DimPoints {
		t.Errorf("dims = %v, want [quantile points]", vEff.Dims)
	}
	if vEff.Attrs.Units != "m s-1" {
		t.Errorf("attrs not preserved: %+v", vEff.Attrs)
	}
	// v_dir has no time dimension and is carried over as-is.
	if red.Var("v_dir") != ds.Var("v_dir") {
		t.Error("time-free variable should be carried over unchanged")
	}
	// HA reduces like any time series.
	if len(red.HA) != 3 {
		t.Errorf("reduced HA length = %d, want 3", len(red.HA))
	}
}

func TestReduceAllNaNCell(t *testing.T) {
	nan := math.NaN()
	u := [][]float64{{0, nan}, {0, nan}}
	v := [][]float64{{1, nan}, {2, nan}}
	ds := straightSection(t, u, v)
	if err := VectorToScalar(ds, AngleGlobal); err != nil {
		t.Fatalf("VectorToScalar: %v", err)
	}
	red, err := Reduce(ds, []float64{0.5})
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	vEff := red.Var("v_eff_nofill")
	if got := vEff.At(0, 0); math.Abs(got-1.5) > 1e-12 {
		t.Errorf("sampled point = %v, want 1.5", got)
	}
	if !math.IsNaN(vEff.At(0, 1)) {
		t.Errorf("all-NaN point = %v, want NaN", vEff.At(0, 1))
	}
}

func TestReduceRejectsBadInput(t *testing.T) {
	u := [][]float64{{0, 0}}
	v := [][]float64{{1, 1}}
	ds := straightSection(t, u, v)

	if _, err := Reduce(ds, nil); err == nil {
		t.Error("expected error for no quantiles")
	}
	if _, err := Reduce(ds, []float64{1.5}); err == nil {
		t.Error("expected error for quantile > 1")
	}
	if _, err := Reduce(ds, []float64{-0.1}); err == nil {
		t.Error("expected error for quantile < 0")
	}

	red, err := Reduce(ds, []float64{0.5})
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if _, err := Reduce(red, []float64{0.5}); err == nil {
		t.Error("expected error for double reduction")
	}
}
