package profile

import (
	"math"
	"testing"
)

func cubic(x float64) float64 { return 0.02*x*x*x - 0.5*x*x + 3*x - 70 }

func TestSavitzkyGolay_PreservesCubic(t *testing.T) {
	y := make([]float64, 25)
	for i := range y {
		y[i] = cubic(float64(i))
	}
	for _, window := range []int{5, 7, 11} {
		got, err := SavitzkyGolay(y, window, 3)
		if err != nil {
			t.Fatalf("window %d: %v", window, err)
		}
		for i := range y {
			if math.Abs(got[i]-y[i]) > 1e-8 {
				t.Errorf("window %d: point %d = %v, want %v", window, i, got[i], y[i])
			}
		}
	}
}

func TestSavitzkyGolay_Smooths(t *testing.T) {
	y := []float64{-60, -70, -60, -70, -60, -70, -60, -70, -60, -70, -60, -70}
	got, err := SavitzkyGolay(y, 11, 3)
	if err != nil {
		t.Fatal(err)
	}
	// Interior points lie much closer to the mean than the raw zig-zag.
	for i := 5; i < len(y)-5; i++ {
		if math.Abs(got[i]+65) >= 5 {
			t.Errorf("point %d = %v not smoothed", i, got[i])
		}
	}
}

func TestSavitzkyGolay_Errors(t *testing.T) {
	y := make([]float64, 10)
	tests := []struct {
		name          string
		window, order int
	}{
		{"even window", 4, 2},
		{"order too high", 5, 5},
		{"window exceeds data", 11, 3},
		{"negative order", 5, -1},
	}
	for _, tt := range tests {
		if _, err := SavitzkyGolay(y, tt.window, tt.order); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestMovingAverage_SameMode(t *testing.T) {
	got := MovingAverage([]float64{5, 5, 5, 5, 5, 5}, 5)
	want := []float64{3, 4, 5, 5, 4, 3}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("index %d: got %v, want %v", i, got[i], want[i])
		}
	}
	if got := MovingAverage([]float64{10, 20}, 5); len(got) != 2 || got[0] != 6 {
		t.Errorf("short input: got %v", got)
	}
}

func TestMethod_Apply(t *testing.T) {
	short := []float64{-60, -61, -62, -63}
	got, err := SavitzkyGolayMethod.Apply(short)
	if err != nil {
		t.Fatal(err)
	}
	for i := range short {
		if got[i] != short[i] {
			t.Errorf("short slice should be unsmoothed, got %v", got)
		}
	}

	// Six points use a window of five.
	six := []float64{1, 2, 3, 4, 5, 6}
	got, err = SavitzkyGolayMethod.Apply(six)
	if err != nil {
		t.Fatal(err)
	}
	for i := range six {
		if math.Abs(got[i]-six[i]) > 1e-9 {
			t.Errorf("linear data should be unchanged, got %v", got)
		}
	}

	got, _ = NoSmoothing.Apply(six)
	got[0] = 99
	if six[0] != 1 {
		t.Error("NoSmoothing must copy its input")
	}
}

func TestParseMethod(t *testing.T) {
	for in, want := range map[string]Method{"": SavitzkyGolayMethod, "MOVING": MovingAverageMethod, "none": NoSmoothing} {
		got, err := ParseMethod(in)
		if err != nil || got != want {
			t.Errorf("ParseMethod(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseMethod("lowess"); err == nil {
		t.Error("expected error")
	}
}
