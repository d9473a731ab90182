package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/einp/components"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestBearingTo(t *testing.T) {
	o := components.Position{}
	tests := []struct {
		to   components.Position
		want float64
	}{
		{components.Position{X: 0, Y: 10}, 0},
		{components.Position{X: 10, Y: 0}, 90},
		{components.Position{X: 0, Y: -10}, 180},
		{components.Position{X: -10, Y: 0}, 270},
		{components.Position{X: 10, Y: 10}, 45},
	}
	for _, tt := range tests {
		if got := BearingTo(o, tt.to); !approx(got, tt.want) {
			t.Errorf("BearingTo(%v) = %v, want %v", tt.to, got, tt.want)
		}
	}
}

func TestOffsetRoundTrip(t *testing.T) {
	origin := components.Position{X: 100, Y: 200}
	for _, b := range []float64{0, 33, 90, 181, 359} {
		p := Offset(origin, b, 50)
		if !approx(Distance(origin, p), 50) {
			t.Errorf("bearing %v: distance %v", b, Distance(origin, p))
		}
		if !approx(BearingTo(origin, p), b) {
			t.Errorf("bearing %v: round trip %v", b, BearingTo(origin, p))
		}
	}
}

func TestMoveToward(t *testing.T) {
	a := components.Position{}
	b := components.Position{X: 30, Y: 40}
	if got := MoveToward(a, b, 10); !approx(got.X, 6) || !approx(got.Y, 8) {
		t.Errorf("MoveToward = %v, want (6,8)", got)
	}
	if got := MoveToward(a, b, 100); got != b {
		t.Errorf("MoveToward past target = %v, want %v", got, b)
	}
}

func TestBisect(t *testing.T) {
	tests := []struct {
		name       string
		prev, next float64
		want       float64
	}{
		{"narrow", 10, 50, 30},
		{"across north", 350, 30, 10},
		{"collinear", 0, 180, 90},
		{"reflex arc", 0, 270, 135},
		{"full circle", 40, 40, 220},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Bisect(tt.prev, tt.next, 1); !approx(got, tt.want) {
				t.Errorf("Bisect(%v, %v) = %v, want %v", tt.prev, tt.next, got, tt.want)
			}
		})
	}
}

func TestSlotBearing(t *testing.T) {
	if got := SlotBearing(75, nil, 1); got != 75 {
		t.Errorf("alone: %v, want 75", got)
	}
	if got := SlotBearing(75, []float64{10}, 1); !approx(got, 190) {
		t.Errorf("one mate: %v, want 190", got)
	}
	// Mates at 0 and 180, hunter at 10: clockwise neighbor 180, counter-clockwise 0.
	if got := SlotBearing(10, []float64{0, 180}, 1); !approx(got, 90) {
		t.Errorf("two mates: %v, want 90", got)
	}
	// Mates at 90 and 200, hunter at 300: its arc runs 200 -> 90 across north.
	if got := SlotBearing(300, []float64{90, 200}, 1); !approx(got, 325) {
		t.Errorf("wrapping arc: %v, want 325", got)
	}
}

func TestSlotBearingConverges(t *testing.T) {
	// Three hunters bunched together spread to 120 degrees apart.
	b := []float64{0, 10, 20}
	for iter := 0; iter < 200; iter++ {
		for i := range b {
			others := make([]float64, 0, 2)
			for j := range b {
				if j != i {
					others = append(others, b[j])
				}
			}
			b[i] = SlotBearing(b[i], others, 1)
		}
	}
	for i := range b {
		gap := NormalizeBearing(b[(i+1)%3] - b[i])
		if math.Abs(gap-120) > 1 {
			t.Errorf("gap %d = %v, want ~120 (bearings %v)", i, gap, b)
		}
	}
}
