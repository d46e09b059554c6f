package heatmap

import (
	"fmt"
	"math"

	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/telemetry"
	"github.com/rwlloyd/f9p-adapter-espnow-RSSI/internal/version"
)

const (
	osmTilesURL       = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"
	osmAttribution    = "&copy; OpenStreetMap contributors"
	esriImageryURL    = "https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer/tile/{z}/{y}/{x}"
	esriAttribution   = "Esri"
	defaultMarkerSize = 5
)

// HeatLayer configures the leaflet.heat overlay.
type HeatLayer struct {
	Name       string
	Points     []HeatPoint
	Radius     int
	Blur       int
	MinOpacity float64
	MaxZoom    int
}

// Marker is a circle marker on the point map.
type Marker struct {
	Lat, Lon    float64
	Radius      int
	Color       string
	FillOpacity float64
	Popup       string
}

// MapDocument describes one self-contained map page.
type MapDocument struct {
	Title     string
	Center    [2]float64 // lat, lon
	Zoom      int
	Satellite bool

	Heat        *HeatLayer
	Markers     []Marker
	MarkerLayer string
}

// templateData is the view model handed to the map template. Coordinates
// are flattened to arrays so they serialise compactly into the page.
type templateData struct {
	Title           string
	Generator       string
	Center          [2]float64
	Zoom            int
	OSMTiles        string
	OSMAttribution  string
	SatelliteTiles  string
	SatelliteAttrib string
	Heat            *heatView
	Markers         []Marker
	MarkerLayer     string
}

type heatView struct {
	Name    string
	Points  [][3]float64
	Options map[string]float64
}

func (d *MapDocument) validate() error {
	for _, v := range d.Center {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("map centre %v is not finite", d.Center)
		}
	}
	if d.Zoom < 0 {
		return fmt.Errorf("invalid zoom %d", d.Zoom)
	}
	return nil
}

func (d *MapDocument) view() templateData {
	td := templateData{
		Title:          d.Title,
		Generator:      version.String(),
		Center:         d.Center,
		Zoom:           d.Zoom,
		OSMTiles:       osmTilesURL,
		OSMAttribution: osmAttribution,
		Markers:        d.Markers,
		MarkerLayer:    d.MarkerLayer,
	}
	if td.Title == "" {
		td.Title = "RSSI survey"
	}
	if td.MarkerLayer == "" {
		td.MarkerLayer = "RSSI points"
	}
	if d.Satellite {
		td.SatelliteTiles = esriImageryURL
		td.SatelliteAttrib = esriAttribution
	}
	if d.Heat != nil {
		pts := make([][3]float64, len(d.Heat.Points))
		for i, p := range d.Heat.Points {
			pts[i] = [3]float64{p.Lat, p.Lon, p.Weight}
		}
		name := d.Heat.Name
		if name == "" {
			name = "RSSI heatmap"
		}
		td.Heat = &heatView{
			Name:   name,
			Points: pts,
			Options: map[string]float64{
				"radius":     float64(d.Heat.Radius),
				"blur":       float64(d.Heat.Blur),
				"minOpacity": d.Heat.MinOpacity,
				"maxZoom":    float64(d.Heat.MaxZoom),
			},
		}
	}
	return td
}

// SignalMarkers builds red-to-green circle markers, normalising RSSI over
// the range present in samples. A dataset with a single RSSI value is drawn
// entirely green.
func SignalMarkers(samples []telemetry.Sample) []Marker {
	if len(samples) == 0 {
		return nil
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range samples {
		lo = math.Min(lo, s.RSSI)
		hi = math.Max(hi, s.RSSI)
	}

	out := make([]Marker, len(samples))
	for i, s := range samples {
		norm := 1.0
		if hi > lo {
			norm = (s.RSSI - lo) / (hi - lo)
		}
		out[i] = Marker{
			Lat:         s.Lat,
			Lon:         s.Lon,
			Radius:      defaultMarkerSize,
			Color:       gradientColour(norm),
			FillOpacity: 0.8,
			Popup:       markerPopup(s),
		}
	}
	return out
}

// gradientColour maps 0 to red and 1 to green.
func gradientColour(norm float64) string {
	norm = math.Min(math.Max(norm, 0), 1)
	r := int(255 * (1 - norm))
	g := int(255 * norm)
	return fmt.Sprintf("#%02x%02x00", r, g)
}

func markerPopup(s telemetry.Sample) string {
	popup := fmt.Sprintf("RSSI: %g", s.RSSI)
	if !math.IsNaN(s.Heading) {
		popup += fmt.Sprintf("<br>Heading: %g°", s.Heading)
	}
	if !math.IsNaN(s.Alt) {
		popup += fmt.Sprintf("<br>Alt: %.2f m", s.Alt)
	}
	return popup
}
