package transect

import (
	"math"
	"testing"
)

func TestResolveFlowDirectionGlobal(t *testing.T) {
	// Section running along +x; angle = atan2(dx, dy) = pi/2, flow
	// direction = 0 (the up direction in the section convention).
	x := []float64{0, 1, 2, 3, 4}
	y := []float64{0, 0, 0, 0, 0}

	dirs, err := ResolveFlowDirection(x, y, AngleGlobal)
	if err != nil {
		t.Fatalf("ResolveFlowDirection: %v", err)
	}
	for i, d := range dirs {
		if math.Abs(d) > 1e-12 {
			t.Errorf("dirs[%d] = %v, want 0", i, d)
		}
	}
}

func TestResolveFlowDirectionGlobalSharedAngle(t *testing.T) {
	// Wiggly interior points do not matter in global mode; every point
	// carries the bank-to-bank angle.
	x := []float64{0, 0.2, 1.1, 2}
	y := []float64{0, 0.9, -0.4, 2}

	dirs, err := ResolveFlowDirection(x, y, AngleGlobal)
	if err != nil {
		t.Fatalf("ResolveFlowDirection: %v", err)
	}
	want := normalizeAngle(math.Atan2(2, 2) - 0.5*math.Pi)
	for i, d := range dirs {
		if math.Abs(d-want) > 1e-12 {
			t.Errorf("dirs[%d] = %v, want %v", i, d, want)
		}
	}
}

func TestResolveFlowDirectionLocalMatchesGlobalOnStraightLine(t *testing.T) {
	x := []float64{0, 1}
	y := []float64{0, 0}

	global, err := ResolveFlowDirection(x, y, AngleGlobal)
	if err != nil {
		t.Fatalf("global: %v", err)
	}
	local, err := ResolveFlowDirection(x, y, AngleLocal)
	if err != nil {
		t.Fatalf("local: %v", err)
	}
	for i := range x {
		if math.Abs(global[i]-local[i]) > 1e-12 {
			t.Errorf("point %d: global %v != local %v", i, global[i], local[i])
		}
	}
}

func TestResolveFlowDirectionLocalRange(t *testing.T) {
	// A bent section; all local angles normalise into [-pi, pi].
	x := []float64{0, 1, 2, 2, 1}
	y := []float64{0, 0.5, 1.5, 3, 4}

	dirs, err := ResolveFlowDirection(x, y, AngleLocal)
	if err != nil {
		t.Fatalf("ResolveFlowDirection: %v", err)
	}
	for i, d := range dirs {
		if math.IsNaN(d) {
			t.Errorf("dirs[%d] is NaN on a fully finite section", i)
			continue
		}
		if d < -math.Pi || d > math.Pi {
			t.Errorf("dirs[%d] = %v outside [-pi, pi]", i, d)
		}
	}
}

func TestResolveFlowDirectionLocalSkipsDuplicates(t *testing.T) {
	// The middle point repeats its left neighbour's pixel; the neighbour
	// search must skip it rather than derive an angle between identical
	// coordinates.
	x := []float64{0, 1, 1, 2}
	y := []float64{0, 0, 0, 0}

	dirs, err := ResolveFlowDirection(x, y, AngleLocal)
	if err != nil {
		t.Fatalf("ResolveFlowDirection: %v", err)
	}
	for i, d := range dirs {
		if math.Abs(d) > 1e-12 {
			t.Errorf("dirs[%d] = %v, want 0 on a straight line", i, d)
		}
	}
}

func TestResolveFlowDirectionLocalAllDuplicates(t *testing.T) {
	// Every point in the same pixel: no neighbour angle is computable.
	x := []float64{1, 1, 1}
	y := []float64{2, 2, 2}

	dirs, err := ResolveFlowDirection(x, y, AngleLocal)
	if err != nil {
		t.Fatalf("ResolveFlowDirection: %v", err)
	}
	for i, d := range dirs {
		if !math.IsNaN(d) {
			t.Errorf("dirs[%d] = %v, want NaN", i, d)
		}
	}
}

func TestResolveFlowDirectionGlobalBroadcastsOverGaps(t *testing.T) {
	// The NaN point is excluded from the angle derivation, but the
	// section-wide angle still lands in its slot: a point with unsampled
	// coordinates can carry valid velocity samples.
	x := []float64{0, math.NaN(), 2}
	y := []float64{0, 1, 0}

	dirs, err := ResolveFlowDirection(x, y, AngleGlobal)
	if err != nil {
		t.Fatalf("ResolveFlowDirection: %v", err)
	}
	for i, d := range dirs {
		if math.IsNaN(d) {
			t.Errorf("dirs[%d] is NaN, want the broadcast angle", i)
			continue
		}
		if math.Abs(d) > 1e-12 {
			t.Errorf("dirs[%d] = %v, want 0 for a straight +x section", i, d)
		}
	}
}

func TestResolveFlowDirectionLocalLeavesGapsUndefined(t *testing.T) {
	// Local mode has no section-wide angle to fall back on; the unsampled
	// slot stays NaN while its neighbours get their own angles.
	x := []float64{0, math.NaN(), 2}
	y := []float64{0, 1, 0}

	dirs, err := ResolveFlowDirection(x, y, AngleLocal)
	if err != nil {
		t.Fatalf("ResolveFlowDirection: %v", err)
	}
	if !math.IsNaN(dirs[1]) {
		t.Errorf("dirs[1] = %v, want NaN for unsampled point", dirs[1])
	}
	if math.IsNaN(dirs[0]) || math.IsNaN(dirs[2]) {
		t.Error("finite points should get an angle")
	}
}

func TestResolveFlowDirectionDegenerateInputs(t *testing.T) {
	// Zero usable points is a configuration error.
	if _, err := ResolveFlowDirection([]float64{math.NaN()}, []float64{math.NaN()}, AngleGlobal); err == nil {
		t.Error("expected error for no finite points")
	}
	if _, err := ResolveFlowDirection(nil, nil, AngleGlobal); err == nil {
		t.Error("expected error for empty input")
	}

	// A single usable point degrades to undefined angles.
	dirs, err := ResolveFlowDirection([]float64{1, math.NaN()}, []float64{1, 2}, AngleLocal)
	if err != nil {
		t.Fatalf("single point: %v", err)
	}
	for i, d := range dirs {
		if !math.IsNaN(d) {
			t.Errorf("dirs[%d] = %v, want NaN", i, d)
		}
	}

	// Mismatched coordinate lengths are an error.
	if _, err := ResolveFlowDirection([]float64{0, 1}, []float64{0}, AngleGlobal); err == nil {
		t.Error("expected error for mismatched lengths")
	}
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, -math.Pi},
		{1.5 * math.Pi, -0.5 * math.Pi},
		{-1.5 * math.Pi, 0.5 * math.Pi},
		{4 * math.Pi, 0},
	}
	for _, tt := range tests {
		if got := normalizeAngle(tt.in); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("normalizeAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseAngleMode(t *testing.T) {
	if m, err := ParseAngleMode("global"); err != nil || m != AngleGlobal {
		t.Errorf("global: %v %v", m, err)
	}
	if m, err := ParseAngleMode(""); err != nil || m != AngleGlobal {
		t.Errorf("empty defaults to global: %v %v", m, err)
	}
	if m, err := ParseAngleMode("local"); err != nil || m != AngleLocal {
		t.Errorf("local: %v %v", m, err)
	}
	if _, err := ParseAngleMode("diagonal"); err == nil {
		t.Error("expected error for unknown mode")
	}
}
