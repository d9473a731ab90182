// Package telemetry provides population health tracking, phase timing and
// CSV output for the wildlife simulation.
package telemetry

import "github.com/pthm-cable/einp/components"

// EventType identifies telemetry events.
type EventType uint8

const (
	EventBirth EventType = iota
	EventDeath
	EventPregnancy
	EventHuntStarted
	EventHuntFailed
	EventHuntAbandoned
	EventKill
	EventPackFounded
	EventPairing
)

// Event represents a single telemetry event.
type Event struct {
	Type    EventType
	Tick    int64
	Species components.Species

	// Optional fields depending on event type
	Cause  components.CauseOfDeath // death events
	PackID int                     // hunt, kill and pack events
	Amount float64                 // kg shared on a kill
}

// NewBirthEvent creates a birth event.
func NewBirthEvent(species components.Species) Event {
	return Event{Type: EventBirth, Species: species}
}

// NewDeathEvent creates a death event.
func NewDeathEvent(species components.Species, cause components.CauseOfDeath) Event {
	return Event{Type: EventDeath, Species: species, Cause: cause}
}

// NewKillEvent creates a kill event for the prey species.
func NewKillEvent(prey components.Species, packID int, edible float64) Event {
	return Event{Type: EventKill, Species: prey, PackID: packID, Amount: edible}
}

// NewHuntEvent creates a hunt lifecycle event (started, failed, abandoned).
func NewHuntEvent(t EventType, prey components.Species, packID int) Event {
	return Event{Type: t, Species: prey, PackID: packID}
}

// NewPackEvent creates a pack founding or pairing event.
func NewPackEvent(t EventType, packID int) Event {
	return Event{Type: t, Species: components.SpeciesWolf, PackID: packID}
}

// NewPregnancyEvent creates a pregnancy event.
func NewPregnancyEvent(species components.Species) Event {
	return Event{Type: EventPregnancy, Species: species}
}
