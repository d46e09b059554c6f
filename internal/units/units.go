// Package units provides the fixed scale factors between the raw values a
// GNSS receiver logs and engineering units.
package units

// Raw scale factors. The receiver reports latitude and longitude as integer
// degrees x 1e7 and altitude in millimetres.
const (
	DegreesE7           = 1e7
	MillimetresPerMetre = 1e3
)

// Decimal places used when writing corrected values.
const (
	CoordinateDecimals = 7
	AltitudeDecimals   = 3
	HeadingDecimals    = 2
)

// DegreesFromE7 converts a raw 1e7-scaled angle to degrees.
func DegreesFromE7(raw float64) float64 {
	return raw / DegreesE7
}

// MetresFromMillimetres converts a raw altitude to metres.
func MetresFromMillimetres(raw float64) float64 {
	return raw / MillimetresPerMetre
}
