package systems

import (
	"math"
	"testing"
)

func TestDepleteClamps(t *testing.T) {
	tests := []struct {
		name          string
		current, rate float64
		want          float64
	}{
		{"normal", 50, 10, 40},
		{"to zero", 5, 10, 0},
		{"already empty", 0, 3, 0},
		{"negative rate ignored", 40, -5, 40},
		{"zero rate", 70, 0, 70},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Deplete(tt.current, tt.rate); got != tt.want {
				t.Errorf("Deplete(%v, %v) = %v, want %v", tt.current, tt.rate, got, tt.want)
			}
		})
	}
}

func TestReplenishClamps(t *testing.T) {
	tests := []struct {
		current, amount, want float64
	}{
		{50, 12, 62},
		{95, 20, 100},
		{100, 1, 100},
		{30, -4, 30},
	}
	for _, tt := range tests {
		if got := Replenish(tt.current, tt.amount); got != tt.want {
			t.Errorf("Replenish(%v, %v) = %v, want %v", tt.current, tt.amount, got, tt.want)
		}
	}
}

func TestResourceStaysInRange(t *testing.T) {
	v := 50.0
	for i := 0; i < 1000; i++ {
		if i%3 == 0 {
			v = Replenish(v, float64(i%37))
		} else {
			v = Deplete(v, float64(i%23))
		}
		if v < 0 || v > 100 {
			t.Fatalf("step %d: level %v out of [0,100]", i, v)
		}
	}
}

func TestNightWindowWraps(t *testing.T) {
	w := NightWindow{StartHour: 21, EndHour: 4}
	night := map[int]bool{21: true, 22: true, 23: true, 0: true, 1: true, 2: true, 3: true, 4: true}
	for h := 0; h < 24; h++ {
		if got := w.IsNight(h); got != night[h] {
			t.Errorf("IsNight(%d) = %v, want %v", h, got, night[h])
		}
	}

	day := NightWindow{StartHour: 1, EndHour: 3}
	if !day.IsNight(2) || day.IsNight(4) || day.IsNight(0) {
		t.Error("non-wrapping window misclassified")
	}
}

func TestNightFactor(t *testing.T) {
	w := NightWindow{StartHour: 21, EndHour: 4}
	if f := w.NightFactor(22, 0.25); f != 0.25 {
		t.Errorf("NightFactor at 22 = %v, want 0.25", f)
	}
	if f := w.NightFactor(12, 0.25); f != 1 {
		t.Errorf("NightFactor at 12 = %v, want 1", f)
	}
}

func TestHourlyBurn(t *testing.T) {
	// An adult burns 100/16 per hour; a calf eating a third as much burns a third of that.
	adult := HourlyBurn(30, 30, 16)
	if math.Abs(adult-6.25) > 1e-12 {
		t.Errorf("adult burn = %v, want 6.25", adult)
	}
	calf := HourlyBurn(10, 30, 16)
	if math.Abs(calf-adult/3) > 1e-12 {
		t.Errorf("calf burn = %v, want %v", calf, adult/3)
	}
	if got := PerTick(6.25, 1800); got != 3.125 {
		t.Errorf("PerTick(6.25, 1800) = %v, want 3.125", got)
	}
	if HourlyBurn(1, 0, 16) != 0 {
		t.Error("zero adult intake should yield zero burn")
	}
}
