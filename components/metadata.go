package components

import "strings"

// String returns the config name of a species.
func (s Species) String() string {
	names := SpeciesNames()
	if int(s) < len(names) {
		return names[s]
	}
	return "unknown"
}

// SpeciesNames returns the names of all species in constant order.
func SpeciesNames() []string {
	return []string{"bison", "elk", "moose", "wolf"}
}

// ParseSpecies resolves a config name to a species, ignoring case.
func ParseSpecies(name string) (Species, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range SpeciesNames() {
		if n == name {
			return Species(i), true
		}
	}
	return 0, false
}

// AllSpecies lists every species in constant order.
func AllSpecies() []Species {
	return []Species{SpeciesBison, SpeciesElk, SpeciesMoose, SpeciesWolf}
}

// String returns the display name for a diet.
func (d Diet) String() string {
	if d == DietPredator {
		return "predator"
	}
	return "herbivore"
}

// ParseDiet resolves a config diet name.
func ParseDiet(name string) (Diet, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "herbivore":
		return DietHerbivore, true
	case "predator":
		return DietPredator, true
	}
	return 0, false
}

func (s Sex) String() string {
	switch s {
	case SexFemale:
		return "female"
	case SexMale:
		return "male"
	}
	return "unknown"
}

func (p LifePeriod) String() string {
	switch p {
	case PeriodCalf:
		return "calf"
	case PeriodAdolescent:
		return "adolescent"
	}
	return "adult"
}

// String returns the display name for a cause of death.
func (c CauseOfDeath) String() string {
	names := CauseNames()
	if int(c) < len(names) {
		return names[c]
	}
	return "unknown"
}

// CauseNames returns the display names for all causes in constant order.
func CauseNames() []string {
	return []string{"none", "age", "no_food", "predation"}
}

func (t AnimalType) String() string {
	names := [...]string{
		"bison_calf", "bison_cow", "bison_bull",
		"elk_calf", "elk_cow", "elk_bull",
		"moose_calf", "moose_cow", "moose_bull",
		"wolf_pup", "wolf_yearling", "wolf_female", "wolf_male",
	}
	if int(t) < len(names) {
		return names[t]
	}
	return "unknown"
}
