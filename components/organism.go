package components

// Species returns the species an animal type belongs to.
func (t AnimalType) Species() Species {
	switch t {
	case BisonCalf, BisonCow, BisonBull:
		return SpeciesBison
	case ElkCalf, ElkCow, ElkBull:
		return SpeciesElk
	case MooseCalf, MooseCow, MooseBull:
		return SpeciesMoose
	default:
		return SpeciesWolf
	}
}

// Sex returns the sex implied by the type. Calves, pups and yearlings
// report SexUnknown.
func (t AnimalType) Sex() Sex {
	switch t {
	case BisonCow, ElkCow, MooseCow, WolfFemale:
		return SexFemale
	case BisonBull, ElkBull, MooseBull, WolfMale:
		return SexMale
	default:
		return SexUnknown
	}
}

// Period returns the life period implied by the type.
func (t AnimalType) Period() LifePeriod {
	switch t {
	case BisonCalf, ElkCalf, MooseCalf, WolfPup:
		return PeriodCalf
	case WolfYearling:
		return PeriodAdolescent
	default:
		return PeriodAdult
	}
}

// TypeFor resolves the animal type for a species at a given period.
// Herbivores have no adolescent type and stay calves until adulthood.
// Sex is ignored before adulthood; an adult with SexUnknown is treated as female.
func TypeFor(s Species, p LifePeriod, sex Sex) AnimalType {
	if p != PeriodAdult {
		switch s {
		case SpeciesBison:
			return BisonCalf
		case SpeciesElk:
			return ElkCalf
		case SpeciesMoose:
			return MooseCalf
		}
		if p == PeriodAdolescent {
			return WolfYearling
		}
		return WolfPup
	}

	male := sex == SexMale
	switch s {
	case SpeciesBison:
		if male {
			return BisonBull
		}
		return BisonCow
	case SpeciesElk:
		if male {
			return ElkBull
		}
		return ElkCow
	case SpeciesMoose:
		if male {
			return MooseBull
		}
		return MooseCow
	}
	if male {
		return WolfMale
	}
	return WolfFemale
}
