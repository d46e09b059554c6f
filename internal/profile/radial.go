// Package profile analyses how received signal strength varies with
// distance and bearing from a base station and plots the result.
package profile

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/geo"
	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/telemetry"
)

// MinSlicePoints is the fewest observations a radial slice needs to be
// profiled.
const MinSlicePoints = 3

// Base is the base station location.
type Base struct {
	Lat, Lon float64
}

// Observation is one sample seen from the base station.
type Observation struct {
	Distance float64 // metres
	Bearing  float64 // degrees clockwise from north
	RSSI     float64
}

// Observe computes the great-circle distance and initial bearing from base
// to every sample.
func Observe(samples []telemetry.Sample, base Base) []Observation {
	out := make([]Observation, len(samples))
	for i, s := range samples {
		out[i] = Observation{
			Distance: geo.Haversine(base.Lat, base.Lon, s.Lat, s.Lon),
			Bearing:  geo.Bearing(base.Lat, base.Lon, s.Lat, s.Lon),
			RSSI:     s.RSSI,
		}
	}
	return out
}

// Slice returns the observations whose bearing is within tolerance degrees
// of heading, ordered by distance.
func Slice(obs []Observation, heading, tolerance float64) []Observation {
	var out []Observation
	for _, o := range obs {
		if geo.AngleDiff(o.Bearing, heading) <= tolerance {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out
}

// Profile is the RSSI along one radial slice, ordered by distance.
type Profile struct {
	Heading  float64
	Distance []float64
	RSSI     []float64
	Smoothed []float64
	Mean     float64
}

// Profiles cuts obs into slices every step degrees, each step/2 wide on
// either side, and smooths each slice with method. Slices with fewer than
// MinSlicePoints observations are skipped.
func Profiles(obs []Observation, step float64, method Method) ([]Profile, error) {
	if !(step > 0) || step > 360 {
		return nil, fmt.Errorf("invalid slice step %v", step)
	}
	var out []Profile
	for heading := 0.0; heading < 360; heading += step {
		slice := Slice(obs, heading, step/2)
		if len(slice) < MinSlicePoints {
			continue
		}
		p := Profile{
			Heading:  heading,
			Distance: make([]float64, len(slice)),
			RSSI:     make([]float64, len(slice)),
		}
		for i, o := range slice {
			p.Distance[i] = o.Distance
			p.RSSI[i] = o.RSSI
		}
		smoothed, err := method.Apply(p.RSSI)
		if err != nil {
			return nil, fmt.Errorf("failed to smooth slice at %g°: %w", heading, err)
		}
		p.Smoothed = smoothed
		p.Mean = stat.Mean(p.RSSI, nil)
		out = append(out, p)
	}
	return out, nil
}

// rssiRange returns the minimum and maximum of the smoothed values across
// profiles.
func rssiRange(profiles []Profile) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, p := range profiles {
		for _, v := range p.Smoothed {
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}
	return lo, hi
}
