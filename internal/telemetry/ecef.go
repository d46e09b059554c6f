package telemetry

import "math"

// WGS84 ellipsoid.
const (
	wgs84A    = 6378137.0
	wgs84E2   = 6.69437999014e-3
	degPerRad = 180 / math.Pi
	radPerDeg = math.Pi / 180
)

// GeodeticFromECEF converts earth-centred earth-fixed metres to latitude,
// longitude (degrees) and ellipsoidal height (metres) using Bowring's
// closed form. Accuracy is sub-millimetre near the surface; the poles
// (x = y = 0) are not supported.
func GeodeticFromECEF(x, y, z float64) (lat, lon, alt float64) {
	b := math.Sqrt(wgs84A * wgs84A * (1 - wgs84E2))
	ep := math.Sqrt((wgs84A*wgs84A - b*b) / (b * b))
	p := math.Hypot(x, y)
	th := math.Atan2(wgs84A*z, b*p)
	sinTh, cosTh := math.Sincos(th)

	lonRad := math.Atan2(y, x)
	latRad := math.Atan2(z+ep*ep*b*sinTh*sinTh*sinTh, p-wgs84E2*wgs84A*cosTh*cosTh*cosTh)
	sinLat := math.Sin(latRad)
	n := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)
	alt = p/math.Cos(latRad) - n

	return latRad * degPerRad, lonRad * degPerRad, alt
}

// ECEFFromGeodetic is the forward conversion, used to build fixtures and to
// check captures that mix both frames.
func ECEFFromGeodetic(lat, lon, alt float64) (x, y, z float64) {
	sinLat, cosLat := math.Sincos(lat * radPerDeg)
	sinLon, cosLon := math.Sincos(lon * radPerDeg)
	n := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)
	x = (n + alt) * cosLat * cosLon
	y = (n + alt) * cosLat * sinLon
	z = (n*(1-wgs84E2) + alt) * sinLat
	return x, y, z
}

// FromECEF returns a copy of t whose lat/lon/alt columns, read as ECEF x/y/z,
// are replaced with geodetic coordinates. Samples without an altitude (z)
// column cannot be converted and are dropped.
func (t *Table) FromECEF() *Table {
	out := &Table{Columns: t.Columns, Dropped: t.Dropped, Samples: make([]Sample, 0, len(t.Samples))}
	for _, s := range t.Samples {
		if !finite(s.Alt) {
			out.Dropped++
			continue
		}
		lat, lon, alt := GeodeticFromECEF(s.Lat, s.Lon, s.Alt)
		out.Samples = append(out.Samples, Sample{RSSI: s.RSSI, Lat: lat, Lon: lon, Alt: alt, Heading: s.Heading})
	}
	return out
}
