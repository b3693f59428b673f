// Package units provides shared constants, validation and conversion for the
// discharge and velocity units used in reports and CLI output. All internal
// computation is metric; conversion happens only at presentation time.
package units

// Discharge unit constants
const (
	CMS = "cms" // cubic metres per second
	CFS = "cfs" // cubic feet per second
	LPS = "lps" // litres per second
)

// ValidDischargeUnits contains all valid discharge unit values
var ValidDischargeUnits = []string{CMS, CFS, LPS}

// IsValidDischarge checks if the given unit is a known discharge unit
func IsValidDischarge(unit string) bool {
	for _, validUnit := range ValidDischargeUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// DischargeUnitsString returns a comma-separated string of valid discharge
// units for error messages
func DischargeUnitsString() string {
	return "cms, cfs, lps"
}

// ConvertDischarge converts a discharge from cubic metres per second to the
// target units. The pipeline and the results store always carry m3/s.
func ConvertDischarge(flowCMS float64, targetUnits string) float64 {
	switch targetUnits {
	case CFS:
		return flowCMS * 35.314666721489 // m3/s to ft3/s
	case LPS:
		return flowCMS * 1000 // m3/s to l/s
	case CMS:
		return flowCMS
	default:
		return flowCMS // default to m3/s if unknown unit
	}
}

// DischargeLabel returns the axis/table label for a discharge unit
func DischargeLabel(unit string) string {
	switch unit {
	case CFS:
		return "ft³/s"
	case LPS:
		return "l/s"
	default:
		return "m³/s"
	}
}
