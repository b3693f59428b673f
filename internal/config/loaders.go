package config

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// CrossSection holds the surveyed section geometry read from CSV: planar
// coordinates, bed elevation and, when present, the along-section distance.
// NaN marks values the survey did not sample.
type CrossSection struct {
	X, Y, Z []float64
	S       []float64 // nil when the file carries no s column
}

// ReadCrossSection reads a cross-section CSV with a header naming at least
// the x, y and z columns (an s column is picked up when present, any other
// columns are ignored). Empty cells and "nan" parse as NaN.
func ReadCrossSection(path string) (*CrossSection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cross-section file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read cross-section header: %w", err)
	}
	cols := map[string]int{}
	for i, name := range header {
		cols[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, required := range []string{"x", "y", "z"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("cross-section file %s is missing column %q", path, required)
		}
	}
	_, hasS := cols["s"]

	cs := &CrossSection{}
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read cross-section line %d: %w", line, err)
		}
		x, err := parseCell(rec, cols["x"])
		if err != nil {
			return nil, fmt.Errorf("cross-section line %d: %w", line, err)
		}
		y, err := parseCell(rec, cols["y"])
		if err != nil {
			return nil, fmt.Errorf("cross-section line %d: %w", line, err)
		}
		z, err := parseCell(rec, cols["z"])
		if err != nil {
			return nil, fmt.Errorf("cross-section line %d: %w", line, err)
		}
		cs.X = append(cs.X, x)
		cs.Y = append(cs.Y, y)
		cs.Z = append(cs.Z, z)
		if hasS {
			s, err := parseCell(rec, cols["s"])
			if err != nil {
				return nil, fmt.Errorf("cross-section line %d: %w", line, err)
			}
			cs.S = append(cs.S, s)
		}
	}
	if len(cs.X) == 0 {
		return nil, fmt.Errorf("cross-section file %s has no data rows", path)
	}
	return cs, nil
}

// VelocitySeries holds per (time, point) planar velocity components indexed
// [time][point]. NaN cells mark samples the velocimetry stage could not
// estimate.
type VelocitySeries struct {
	U, V    [][]float64
	NumTime int
}

// ReadVelocitySeries reads a long-format velocity CSV with header columns
// time, point, v_x, v_y, where time and point are zero-based indices. Rows
// may arrive in any order; cells never mentioned stay NaN. numPoints pins
// the point dimension to the cross-section size so a stray index is an
// error rather than a silent resize.
func ReadVelocitySeries(path string, numPoints int) (*VelocitySeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open velocity file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read velocity header: %w", err)
	}
	cols := map[string]int{}
	for i, name := range header {
		cols[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, required := range []string{"time", "point", "v_x", "v_y"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("velocity file %s is missing column %q", path, required)
		}
	}

	type cell struct {
		t, p int
		u, v float64
	}
	var cells []cell
	maxT := -1
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read velocity line %d: %w", line, err)
		}
		t, err := strconv.Atoi(strings.TrimSpace(rec[cols["time"]]))
		if err != nil {
			return nil, fmt.Errorf("velocity line %d: bad time index: %w", line, err)
		}
		p, err := strconv.Atoi(strings.TrimSpace(rec[cols["point"]]))
		if err != nil {
			return nil, fmt.Errorf("velocity line %d: bad point index: %w", line, err)
		}
		if t < 0 {
			return nil, fmt.Errorf("velocity line %d: negative time index %d", line, t)
		}
		if p < 0 || p >= numPoints {
			return nil, fmt.Errorf("velocity line %d: point index %d outside cross-section of %d points", line, p, numPoints)
		}
		u, err := parseCell(rec, cols["v_x"])
		if err != nil {
			return nil, fmt.Errorf("velocity line %d: %w", line, err)
		}
		v, err := parseCell(rec, cols["v_y"])
		if err != nil {
			return nil, fmt.Errorf("velocity line %d: %w", line, err)
		}
		cells = append(cells, cell{t: t, p: p, u: u, v: v})
		if t > maxT {
			maxT = t
		}
	}
	if maxT < 0 {
		return nil, fmt.Errorf("velocity file %s has no data rows", path)
	}

	vs := &VelocitySeries{NumTime: maxT + 1}
	vs.U = make([][]float64, vs.NumTime)
	vs.V = make([][]float64, vs.NumTime)
	for t := range vs.U {
		vs.U[t] = nanRow(numPoints)
		vs.V[t] = nanRow(numPoints)
	}
	for _, c := range cells {
		vs.U[c.t][c.p] = c.u
		vs.V[c.t][c.p] = c.v
	}
	return vs, nil
}

func nanRow(n int) []float64 {
	row := make([]float64, n)
	for i := range row {
		row[i] = math.NaN()
	}
	return row
}

// parseCell parses a numeric CSV cell; empty cells and "nan" (any case)
// become NaN rather than an error.
func parseCell(rec []string, idx int) (float64, error) {
	if idx >= len(rec) {
		return math.NaN(), nil
	}
	s := strings.TrimSpace(rec[idx])
	if s == "" || strings.EqualFold(s, "nan") {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad numeric value %q: %w", s, err)
	}
	return v, nil
}
