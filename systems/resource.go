package systems

// Satiety and hydration live on a 0..100 scale.
const (
	MaxSatiety   = 100.0
	MaxHydration = 100.0
)

// Deplete subtracts rate from a resource level, clamping at 0.
// Negative rates are treated as 0.
func Deplete(current, rate float64) float64 {
	if rate < 0 {
		rate = 0
	}
	return clampFloat(current-rate, 0, MaxSatiety)
}

// Replenish adds amount to a resource level, clamping at 100.
func Replenish(current, amount float64) float64 {
	if amount < 0 {
		amount = 0
	}
	return clampFloat(current+amount, 0, MaxSatiety)
}

// NightWindow is an inclusive range of hours that may wrap midnight,
// e.g. 21..4 covers 21:00 through 04:59.
type NightWindow struct {
	StartHour int
	EndHour   int
}

// IsNight reports whether the hour falls inside the window.
func (w NightWindow) IsNight(hour int) bool {
	if w.StartHour <= w.EndHour {
		return hour >= w.StartHour && hour <= w.EndHour
	}
	return hour >= w.StartHour || hour <= w.EndHour
}

// NightFactor scales a burn rate by factor during the night window.
func (w NightWindow) NightFactor(hour int, factor float64) float64 {
	if w.IsNight(hour) {
		return factor
	}
	return 1
}

// HourlyBurn converts a daily intake into a satiety or hydration burn per
// hour. Needs scale relative to the adult intake so a full adult empties its
// 0..100 reserve in activeHours of depletion.
func HourlyBurn(daily, dailyAdult, activeHours float64) float64 {
	if dailyAdult <= 0 || activeHours <= 0 {
		return 0
	}
	return MaxSatiety * daily / activeHours / dailyAdult
}

// PerTick rescales an hourly rate to the tick length.
func PerTick(hourly, tickSeconds float64) float64 {
	return hourly / 3600 * tickSeconds
}
