package animal

import (
	"fmt"

	"github.com/pthm-cable/einp/components"
	"github.com/pthm-cable/einp/config"
)

// Profile binds a species to its parameters and behavior table.
type Profile struct {
	Species components.Species
	Diet    components.Diet
	Params  config.SpeciesConfig
}

// NewProfiles builds one profile per species from the config.
func NewProfiles(cfg *config.Config) (map[components.Species]*Profile, error) {
	profiles := make(map[components.Species]*Profile, 4)
	for _, s := range components.AllSpecies() {
		params, ok := cfg.Species.Lookup(s.String())
		if !ok {
			return nil, fmt.Errorf("species %s: missing config", s)
		}
		diet, ok := components.ParseDiet(params.Diet)
		if !ok {
			return nil, fmt.Errorf("species %s: unknown diet %q", s, params.Diet)
		}
		profiles[s] = &Profile{Species: s, Diet: diet, Params: *params}
	}
	return profiles, nil
}

// PeriodForAge maps an age in years to a life period.
func (p *Profile) PeriodForAge(age int) components.LifePeriod {
	switch {
	case age < p.Params.CalfUntil:
		return components.PeriodCalf
	case age <= p.Params.AdolescentUntil:
		return components.PeriodAdolescent
	default:
		return components.PeriodAdult
	}
}

// behavior is the per-diet part of the lifecycle.
type behavior interface {
	// act runs the activity step after lifecycle bookkeeping.
	act(a *Animal, ctx *Context)
	// onAdulthood runs once when the animal turns adult.
	onAdulthood(a *Animal, ctx *Context)
	// mateAvailable gates a pregnancy roll.
	mateAvailable(a *Animal, ctx *Context) bool
	// adoptLitter places newborns into the parent's social group.
	adoptLitter(a *Animal, ctx *Context, litter []*Animal)
}

var behaviors = map[components.Diet]behavior{
	components.DietHerbivore: herbivore{},
	components.DietPredator:  predator{},
}

func (p *Profile) behavior() behavior {
	return behaviors[p.Diet]
}
