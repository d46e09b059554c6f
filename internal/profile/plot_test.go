package profile

import (
	"bytes"
	"image/color"
	"testing"
)

func TestPlot_Modes(t *testing.T) {
	obs := Observe(ring([]float64{0, 45, 180}, 8), base)
	tests := []struct {
		name  string
		opts  Options
		count int
	}{
		{"distance", Options{Mode: ModeDistance}, 24},
		{"slice", Options{Mode: ModeSlice, Heading: 180, Tolerance: 2}, 8},
		{"stacked", Options{Mode: ModeStacked, Step: 5, Smoothing: MovingAverageMethod}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, n, err := Plot(obs, tt.opts)
			if err != nil {
				t.Fatalf("Plot failed: %v", err)
			}
			if n != tt.count {
				t.Errorf("drew %d items, want %d", n, tt.count)
			}
			var buf bytes.Buffer
			if err := WritePNG(&buf, p); err != nil {
				t.Fatalf("WritePNG failed: %v", err)
			}
			if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
				t.Error("output is not a PNG")
			}
		})
	}
}

func TestPlot_EmptySlice(t *testing.T) {
	p, n, err := Plot(nil, Options{Mode: ModeSlice, Heading: 90, Tolerance: 1})
	if err != nil || n != 0 || p == nil {
		t.Fatalf("got (%v, %d, %v)", p, n, err)
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode(""); err != nil || m != ModeDistance {
		t.Errorf("default mode = %v, %v", m, err)
	}
	if _, err := ParseMode("polar"); err == nil {
		t.Error("expected error")
	}
	if _, _, err := Plot(nil, Options{Mode: "polar"}); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestGenerateColors(t *testing.T) {
	for _, n := range []int{0, 1, 5, 72} {
		if got := len(generateColors(n)); got != n {
			t.Errorf("generateColors(%d): got %d colours", n, got)
		}
	}

	seen := make(map[color.RGBA]bool)
	for _, c := range generateColors(6) {
		rgba := c.(color.RGBA)
		if seen[rgba] {
			t.Error("duplicate colour found in generated palette")
		}
		seen[rgba] = true
	}
}

func TestHslToRGB(t *testing.T) {
	tests := []struct {
		h, s, l float64
		r, g, b uint8
	}{
		{0.0, 1.0, 0.5, 255, 0, 0},
		{2.0 / 3.0, 1.0, 0.5, 0, 0, 255},
		{0.0, 0.0, 1.0, 255, 255, 255},
		{0.0, 0.0, 0.5, 127, 127, 127},
	}
	for _, tt := range tests {
		r, g, b := hslToRGB(tt.h, tt.s, tt.l)
		if r != tt.r || g != tt.g || b != tt.b {
			t.Errorf("hslToRGB(%v, %v, %v) = (%d, %d, %d), want (%d, %d, %d)", tt.h, tt.s, tt.l, r, g, b, tt.r, tt.g, tt.b)
		}
	}
}
