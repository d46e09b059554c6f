package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/telemetry"
)

func TestMercator_RoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
	}{
		{"lincoln", 53.268339, -0.529853},
		{"origin", 0, 0},
		{"southern", -33.8688, 151.2093},
		{"high latitude", 80.5, -120.25},
		{"antimeridian", 10, 179.9999},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lat, lon := FromMercator(ToMercator(tt.lat, tt.lon))
			assert.InDelta(t, tt.lat, lat, 1e-6)
			assert.InDelta(t, tt.lon, lon, 1e-6)
		})
	}
}

func TestToMercator_Origin(t *testing.T) {
	p := ToMercator(0, 0)
	assert.InDelta(t, 0, p.X(), 1e-9)
	assert.InDelta(t, 0, p.Y(), 1e-9)

	east := ToMercator(0, 180)
	assert.InDelta(t, 20037508.342789244, east.X(), 1e-3)
}

func TestProjectSamples(t *testing.T) {
	samples := []telemetry.Sample{
		{RSSI: -60, Lat: 53.2680, Lon: -0.5300},
		{RSSI: -70, Lat: 53.2681, Lon: -0.5301},
		{RSSI: -55, Lat: 53.2682, Lon: -0.5299},
	}
	pts, bound, err := ProjectSamples(samples)
	require.NoError(t, err)
	require.Len(t, pts, 3)

	for i, p := range pts {
		assert.Equal(t, samples[i].RSSI, p.Value)
		assert.True(t, bound.Min.X() <= p.X && p.X <= bound.Max.X())
		assert.True(t, bound.Min.Y() <= p.Y && p.Y <= bound.Max.Y())
	}
	assert.Equal(t, pts[1].X, bound.Min.X())
	assert.Equal(t, pts[2].X, bound.Max.X())

	_, _, err = ProjectSamples(nil)
	assert.Error(t, err)
}

func TestProjectSamples_PolarLatitude(t *testing.T) {
	samples := []telemetry.Sample{
		{RSSI: -60, Lat: 53.2680, Lon: -0.5300},
		{RSSI: -70, Lat: 86, Lon: 10},
	}
	_, _, err := ProjectSamples(samples)
	require.ErrorIs(t, err, ErrOutsideMercator)

	_, _, err = ProjectSamples([]telemetry.Sample{{RSSI: -60, Lat: -89, Lon: 0}})
	assert.ErrorIs(t, err, ErrOutsideMercator)
}

func TestInMercatorDomain(t *testing.T) {
	assert.True(t, InMercatorDomain(0))
	assert.True(t, InMercatorDomain(85.05))
	assert.True(t, InMercatorDomain(-85.05))
	assert.False(t, InMercatorDomain(86))
	assert.False(t, InMercatorDomain(-88))

	// Edge of the domain still round-trips.
	lat, _ := FromMercator(ToMercator(85, 10))
	assert.InDelta(t, 85, lat, 1e-6)
}

func TestMedian(t *testing.T) {
	vals := []float64{5, 1, 3}
	assert.Equal(t, 3.0, Median(vals))
	assert.Equal(t, []float64{5, 1, 3}, vals, "input must not be reordered")
	assert.Equal(t, 2.5, Median([]float64{4, 1, 2, 3}))
	assert.True(t, math.IsNaN(Median(nil)))
	assert.Equal(t, 2.0, Mean([]float64{1, 2, 3}))
}

func TestHaversine(t *testing.T) {
	assert.Equal(t, 0.0, Haversine(53.2, -0.5, 53.2, -0.5))

	// One degree of latitude on the mean sphere.
	want := EarthRadiusMeters * math.Pi / 180
	assert.InDelta(t, want, Haversine(10, 20, 11, 20), 1e-6)
	assert.InDelta(t, Haversine(1, 2, 3, 4), Haversine(3, 4, 1, 2), 1e-9)
}

func TestBearing_Cardinal(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
	}{
		{"north", 0, 0, 1, 0, 0},
		{"east", 0, 0, 0, 1, 90},
		{"south", 1, 0, 0, 0, 180},
		{"west", 0, 1, 0, 0, 270},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Bearing(tt.lat1, tt.lon1, tt.lat2, tt.lon2), 1e-9)
		})
	}
}

func TestAngleDiff(t *testing.T) {
	assert.InDelta(t, 0, AngleDiff(10, 10), 1e-12)
	assert.InDelta(t, 20, AngleDiff(350, 10), 1e-12)
	assert.InDelta(t, 20, AngleDiff(10, 350), 1e-12)
	assert.InDelta(t, 180, AngleDiff(0, 180), 1e-12)
	assert.InDelta(t, 5, AngleDiff(-2.5, 2.5), 1e-12)
}
