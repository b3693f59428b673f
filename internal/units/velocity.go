package units

// Velocity unit constants
const (
	MPS = "mps" // metres per second
	FPS = "fps" // feet per second
)

// ValidVelocityUnits contains all valid velocity unit values
var ValidVelocityUnits = []string{MPS, FPS}

// VelocityUnitsString returns a comma-separated string of valid velocity
// units for error messages
func VelocityUnitsString() string {
	return "mps, fps"
}

// IsValidVelocity checks if the given unit is a known velocity unit
func IsValidVelocity(unit string) bool {
	for _, validUnit := range ValidVelocityUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// ConvertVelocity converts a velocity from metres per second to the target
// units
func ConvertVelocity(vMPS float64, targetUnits string) float64 {
	switch targetUnits {
	case FPS:
		return vMPS * 3.280839895013123 // m/s to ft/s
	case MPS:
		return vMPS
	default:
		return vMPS
	}
}

// VelocityLabel returns the axis/table label for a velocity unit
func VelocityLabel(unit string) string {
	switch unit {
	case FPS:
		return "ft/s"
	default:
		return "m/s"
	}
}
