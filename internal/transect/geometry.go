package transect

import (
	"fmt"
	"math"
)

// AngleMode selects how the per-point orientation of the cross-section is
// derived.
type AngleMode int

const (
	// AngleGlobal derives one bank-to-bank angle from the first and last
	// finite points and assigns it to every point.
	AngleGlobal AngleMode = iota
	// AngleLocal derives a per-point angle from the nearest
	// distinct-coordinate neighbours on either side.
	AngleLocal
)

// String returns the mode name as used in configuration files and flags.
func (m AngleMode) String() string {
	switch m {
	case AngleGlobal:
		return "global"
	case AngleLocal:
		return "local"
	}
	return fmt.Sprintf("AngleMode(%d)", int(m))
}

// ParseAngleMode converts a configuration string into an AngleMode.
func ParseAngleMode(s string) (AngleMode, error) {
	switch s {
	case "global", "":
		return AngleGlobal, nil
	case "local":
		return AngleLocal, nil
	}
	return 0, fmt.Errorf("unknown angle mode %q (want \"global\" or \"local\")", s)
}

// ResolveFlowDirection computes the per-point flow direction: the angle of
// the perpendicular to the cross-section, in radians, normalised to
// [-pi, pi]. Angles follow the section convention atan2(dx, dy), measured
// from the up (north) direction; the flow direction is the section angle
// minus pi/2.
//
// Points with a non-finite coordinate are excluded from the angle
// computation. In AngleGlobal mode the resulting bank-to-bank angle is still
// broadcast to every slot; in AngleLocal mode the unsampled slots stay NaN.
// Zero usable points is a fatal configuration error; a single usable point
// degrades to an all-NaN result.
//
// In AngleLocal mode each point's angle is the mean of the angles to its
// nearest distinct-coordinate neighbour on the left and on the right.
// Consecutive duplicate coordinates are skipped during the neighbour search;
// a search that runs off either end of the section leaves that side
// undefined, and a point with both sides undefined gets NaN. The scan is
// linear per point, O(n^2) for the whole section in the worst case, which is
// fine for the tens-to-hundreds of points a transect carries.
func ResolveFlowDirection(x, y []float64, mode AngleMode) ([]float64, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("coordinate length mismatch: x=%d y=%d", len(x), len(y))
	}
	// Filter to finite points, remembering original slots.
	idx := make([]int, 0, len(x))
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(x))
	for i := range x {
		if isFinite(x[i]) && isFinite(y[i]) {
			idx = append(idx, i)
			xs = append(xs, x[i])
			ys = append(ys, y[i])
		}
	}
	if len(idx) == 0 {
		return nil, fmt.Errorf("cross-section has no finite points")
	}

	out := make([]float64, len(x))
	for i := range out {
		out[i] = math.NaN()
	}
	if len(idx) < 2 {
		// An angle needs two distinct points; degrade to undefined.
		return out, nil
	}

	switch mode {
	case AngleGlobal:
		// The bank-to-bank angle is a property of the section as a whole, so
		// every slot gets it, including points whose own coordinates were not
		// sampled.
		angle := normalizeAngle(math.Atan2(xs[len(xs)-1]-xs[0], ys[len(ys)-1]-ys[0]) - 0.5*math.Pi)
		for i := range out {
			out[i] = angle
		}
	case AngleLocal:
		for n := range xs {
			angle := localAngle(xs, ys, n)
			if !math.IsNaN(angle) {
				out[idx[n]] = normalizeAngle(angle - 0.5*math.Pi)
			}
		}
	default:
		return nil, fmt.Errorf("unknown angle mode %d", int(mode))
	}
	return out, nil
}

// localAngle returns the section angle at filtered index n: the mean of the
// left- and right-neighbour angles, skipping any undefined side. NaN when
// neither side has a distinct neighbour.
func localAngle(xs, ys []float64, n int) float64 {
	left := math.NaN()
	for m := n - 1; m >= 0; m-- {
		if xs[m] == xs[n] && ys[m] == ys[n] {
			// Same pixel as the current point; keep scanning.
			continue
		}
		left = math.Atan2(xs[n]-xs[m], ys[n]-ys[m])
		break
	}
	right := math.NaN()
	for m := n + 1; m < len(xs); m++ {
		if xs[m] == xs[n] && ys[m] == ys[n] {
			continue
		}
		right = math.Atan2(xs[m]-xs[n], ys[m]-ys[n])
		break
	}
	switch {
	case math.IsNaN(left) && math.IsNaN(right):
		return math.NaN()
	case math.IsNaN(left):
		return right
	case math.IsNaN(right):
		return left
	}
	return (left + right) / 2
}

// normalizeAngle wraps an angle into [-pi, pi].
func normalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
