// Package components defines the value types shared by the simulation:
// positions, species and role enums, and the ECS components stored on the
// world roster.
package components

// Species identifies a modelled animal species.
type Species uint8

const (
	SpeciesBison Species = iota
	SpeciesElk
	SpeciesMoose
	SpeciesWolf

	NumSpecies = 4
)

// Diet selects the behavior table for a species.
type Diet uint8

const (
	DietHerbivore Diet = iota
	DietPredator
)

// Sex of an animal. Juveniles start as SexUnknown until they reach adulthood.
type Sex uint8

const (
	SexUnknown Sex = iota
	SexFemale
	SexMale
)

// LifePeriod is the age bracket of an animal.
type LifePeriod uint8

const (
	PeriodCalf LifePeriod = iota
	PeriodAdolescent
	PeriodAdult
)

// CauseOfDeath records why an animal stopped ticking.
type CauseOfDeath uint8

const (
	CauseNone CauseOfDeath = iota
	CauseAge
	CauseNoFood
	CausePredation

	NumCauses = 4
)

// AnimalType is the concrete role of an animal: species combined with
// life period and sex.
type AnimalType uint8

const (
	BisonCalf AnimalType = iota
	BisonCow
	BisonBull
	ElkCalf
	ElkCow
	ElkBull
	MooseCalf
	MooseCow
	MooseBull
	WolfPup
	WolfYearling
	WolfFemale
	WolfMale
)

// Tag is the per-entity ECS component mirroring an animal's species.
// Count queries filter on it without touching the animal itself.
type Tag struct {
	Species Species
}
