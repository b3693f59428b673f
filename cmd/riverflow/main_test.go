package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/riverbend-data/riverflow/internal/config"
)

func TestParseCSVFloatSlice(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []float64
		wantErr bool
	}{
		{"empty", "", nil, false},
		{"single", "0.5", []float64{0.5}, false},
		{"multiple", "0.05, 0.5 ,0.95", []float64{0.05, 0.5, 0.95}, false},
		{"invalid", "0.5,abc", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCSVFloatSlice(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

// writeInputs lays down a straight 5-point section perpendicular to a
// uniform 1 m/s flow with 2 m of water everywhere.
func writeInputs(t *testing.T) (section, velocity string) {
	t.Helper()
	dir := t.TempDir()

	section = filepath.Join(dir, "section.csv")
	sectionCSV := "x,y,z\n0,0,-2\n1,0,-2\n2,0,-2\n3,0,-2\n4,0,-2\n"
	if err := os.WriteFile(section, []byte(sectionCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	var sb strings.Builder
	sb.WriteString("time,point,v_x,v_y\n")
	for ti := 0; ti < 4; ti++ {
		for p := 0; p < 5; p++ {
			fmt.Fprintf(&sb, "%d,%d,0,1.0\n", ti, p)
		}
	}
	velocity = filepath.Join(dir, "velocity.csv")
	if err := os.WriteFile(velocity, []byte(sb.String()), 0o644); err != nil {
		t.Fatal(err)
	}
	return section, velocity
}

func TestRunEndToEnd(t *testing.T) {
	section, velocity := writeInputs(t)

	cfg := config.DefaultSiteConfig()
	cfg.CrossSectionFile = &section
	cfg.VelocityFile = &velocity
	one := 1.0
	cfg.VCorr = &one
	cfg.Quantiles = []float64{0.5}

	_, red, _, _, err := run(cfg)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	flow := red.Var("river_flow")
	if flow == nil {
		t.Fatal("river_flow missing")
	}
	// q = 1 m/s * 2 m depth over a 4 m wide section -> 8 m3/s
	if math.Abs(flow.Data[0]-8.0) > 1e-9 {
		t.Errorf("Q = %v, want 8.0", flow.Data[0])
	}
	// Nothing was missing, so the observation-only total matches.
	noFill := red.Var("river_flow_nofill")
	if noFill == nil {
		t.Fatal("river_flow_nofill missing")
	}
	if math.Abs(noFill.Data[0]-8.0) > 1e-9 {
		t.Errorf("Q_nofill = %v, want 8.0", noFill.Data[0])
	}
}
