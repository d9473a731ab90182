// Package animal implements the per-animal lifecycle: metabolism, movement,
// ageing and reproduction, and the pack behaviors of predators (hunting,
// encirclement and partner search).
//
// Every animal guards its state with its own lock. Code that needs several
// animals at once goes through lockAll, which acquires them in ascending
// sequence order; pack locks are always taken before animal locks.
package animal

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/pthm-cable/einp/components"
	"github.com/pthm-cable/einp/systems"
	"github.com/pthm-cable/einp/telemetry"
)

type lifeState uint8

const (
	stateUninitialized lifeState = iota
	stateActive
	stateDead
)

// rates are the per-tick constants computed on the first tick.
type rates struct {
	runDistance float64
	walkMin     float64
	walkMax     float64
	food        [3]float64 // satiety burn per tick by life period
	water       [3]float64 // hydration burn per tick by life period
}

// Animal is one simulated individual.
type Animal struct {
	mu sync.RWMutex

	// immutable after New
	id      uuid.UUID
	seq     uint64
	profile *Profile

	// owned by the animal's own tick
	rng   *rand.Rand
	rates rates

	animalType         components.AnimalType
	period             components.LifePeriod
	age                int
	position           components.Position
	lastPosition       components.Position
	satiety            float64
	hydration          float64
	alive              bool
	cause              components.CauseOfDeath
	state              lifeState
	ticksLived         int64
	ticksSinceBirthday int64
	pregnant           bool
	pregnancyTicks     int64
	foodEaten          float64 // kg, lifetime

	packID         int
	leading        bool
	paired         bool
	seekingPartner bool

	huntTarget  *Animal
	onCircle    bool
	preyBearing float64
}

// Params describes a new animal.
type Params struct {
	Type     components.AnimalType
	Position components.Position
	Age      int
	PackID   int
	Leading  bool
	Paired   bool
	Seeking  bool
	// SinceBirthday offsets the yearly routine so a starting population
	// does not age in lockstep.
	SinceBirthday int64
}

// Seeds hands out lock-ordering sequence numbers and per-animal RNGs derived
// from a single simulation seed.
type Seeds struct {
	base int64
	n    atomic.Uint64
}

// NewSeeds creates a seed source.
func NewSeeds(base int64) *Seeds {
	return &Seeds{base: base}
}

func (s *Seeds) next() (uint64, *rand.Rand) {
	seq := s.n.Add(1)
	return seq, rand.New(rand.NewSource(int64(splitmix(uint64(s.base) + seq))))
}

func splitmix(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// New validates the spawn position and creates an animal with full satiety
// and hydration.
func New(area systems.Area, profile *Profile, seeds *Seeds, p Params) (*Animal, error) {
	if p.Type.Species() != profile.Species {
		return nil, fmt.Errorf("type %s does not belong to species %s", p.Type, profile.Species)
	}
	if !area.IsInsidePermittedArea(p.Position) || area.IsInsideWater(p.Position) {
		return nil, fmt.Errorf("%s at (%.1f, %.1f): %w", p.Type, p.Position.X, p.Position.Y, ErrInvalidSpawn)
	}

	// Herbivores have no adolescent type, so the period follows the age
	// until adulthood.
	period := p.Type.Period()
	if period != components.PeriodAdult {
		if byAge := profile.PeriodForAge(p.Age); byAge != components.PeriodAdult {
			period = byAge
		}
	}

	seq, rng := seeds.next()
	id, err := uuid.NewRandomFromReader(rng)
	if err != nil {
		return nil, fmt.Errorf("generating id: %w", err)
	}

	return &Animal{
		id:                 id,
		seq:                seq,
		profile:            profile,
		rng:                rng,
		animalType:         p.Type,
		period:             period,
		age:                p.Age,
		position:           p.Position,
		lastPosition:       p.Position,
		satiety:            systems.MaxSatiety,
		hydration:          systems.MaxHydration,
		alive:              true,
		state:              stateUninitialized,
		ticksSinceBirthday: p.SinceBirthday,
		packID:             p.PackID,
		leading:            p.Leading,
		paired:             p.Paired,
		seekingPartner:     p.Seeking,
	}, nil
}

// ID returns the stable identity.
func (a *Animal) ID() uuid.UUID { return a.id }

// Species returns the species.
func (a *Animal) Species() components.Species { return a.profile.Species }

// Diet returns the species diet.
func (a *Animal) Diet() components.Diet { return a.profile.Diet }

// Type returns the current animal type.
func (a *Animal) Type() components.AnimalType {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.animalType
}

// Sex returns the sex implied by the current type.
func (a *Animal) Sex() components.Sex {
	return a.Type().Sex()
}

// Period returns the current life period.
func (a *Animal) Period() components.LifePeriod {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.period
}

// IsAdult reports whether the animal has reached the adult period.
func (a *Animal) IsAdult() bool {
	return a.Period() == components.PeriodAdult
}

// Age returns the age in years.
func (a *Animal) Age() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.age
}

// Position returns the current position.
func (a *Animal) Position() components.Position {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.position
}

// Heading returns the bearing of the last move, 0 if it has not moved.
func (a *Animal) Heading() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.lastPosition.Equal(a.position) {
		return 0
	}
	return systems.BearingTo(a.lastPosition, a.position)
}

// Satiety returns the food reserve in [0,100].
func (a *Animal) Satiety() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.satiety
}

// Hydration returns the water reserve in [0,100].
func (a *Animal) Hydration() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.hydration
}

// FoodEaten returns the lifetime food intake from kills, in kg.
func (a *Animal) FoodEaten() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.foodEaten
}

// IsAlive reports whether the animal is still ticking.
func (a *Animal) IsAlive() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.alive
}

// Cause returns the cause of death, CauseNone while alive.
func (a *Animal) Cause() components.CauseOfDeath {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cause
}

// PackID returns the pack id for predators or the herd id for herbivores.
func (a *Animal) PackID() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.packID
}

// IsLeading reports whether the animal leads its pack or herd.
func (a *Animal) IsLeading() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.leading
}

// SetLeading changes the leading flag. Called by the pack on promotion.
func (a *Animal) SetLeading(v bool) {
	a.mu.Lock()
	a.leading = v
	a.mu.Unlock()
}

// IsPaired reports whether a leading wolf has a partner.
func (a *Animal) IsPaired() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.paired
}

// SeekingPartner reports whether a female is waiting to be claimed.
func (a *Animal) SeekingPartner() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.seekingPartner
}

// IsPregnant reports whether gestation is running.
func (a *Animal) IsPregnant() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.pregnant
}

// HuntTarget returns the prey this animal is assigned to, or nil.
func (a *Animal) HuntTarget() *Animal {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.huntTarget
}

// OnCircle reports whether the animal holds a slot around its prey.
func (a *Animal) OnCircle() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.onCircle
}

// EdibleValue returns the kg of food the carcass yields.
func (a *Animal) EdibleValue() (float64, error) {
	if a.profile.Diet == components.DietPredator {
		return 0, fmt.Errorf("%s: %w", a.profile.Species, ErrNotEdible)
	}
	return a.profile.Params.EdibleWeight.At(int(a.Period())), nil
}

// Feed converts kg of food into satiety relative to the adult daily intake
// and returns the satiety gained.
func (a *Animal) Feed(kg float64) float64 {
	daily := a.profile.Params.DailyFood.Adult
	if kg <= 0 || daily <= 0 {
		return 0
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.alive {
		return 0
	}
	before := a.satiety
	a.satiety = systems.Replenish(a.satiety, kg/daily*systems.MaxSatiety)
	a.foodEaten += kg
	return a.satiety - before
}

// Die marks the animal dead with cause. Only the first call has any effect
// and returns true; the caller that flips the flag also removes the animal
// from its pack and the world.
func (a *Animal) Die(ctx *Context, cause components.CauseOfDeath) bool {
	a.mu.Lock()
	if !a.markDeadLocked(cause) {
		a.mu.Unlock()
		return false
	}
	a.mu.Unlock()
	a.afterDeath(ctx)
	return true
}

func (a *Animal) markDeadLocked(cause components.CauseOfDeath) bool {
	if !a.alive {
		return false
	}
	a.alive = false
	a.cause = cause
	a.state = stateDead
	a.huntTarget = nil
	a.onCircle = false
	a.seekingPartner = false
	return true
}

// afterDeath runs once, outside any animal lock.
func (a *Animal) afterDeath(ctx *Context) {
	if a.profile.Diet == components.DietPredator {
		a.leavePack(ctx, a.PackID())
	}
	ctx.Env.RemoveEntity(a)
	ctx.record(telemetry.NewDeathEvent(a.profile.Species, a.Cause()))
}

// leavePack removes the animal from a pack and frees the surviving partner
// to pair again. An emptied pack stays registered.
func (a *Animal) leavePack(ctx *Context, id int) {
	p := ctx.Packs.Lookup(id)
	if p == nil {
		return
	}
	if ok, remaining := p.Leave(a); !ok || remaining == 0 {
		return
	}
	if p.Mother() == nil {
		if f, _ := p.Father().(*Animal); f != nil {
			f.setPaired(false)
		}
	}
	if p.Father() == nil {
		if m, _ := p.Mother().(*Animal); m != nil {
			m.setPaired(false)
		}
	}
}

func (a *Animal) setPaired(v bool) {
	a.mu.Lock()
	a.paired = v
	a.mu.Unlock()
}

// moveTo records a move. The destination must already be valid.
func (a *Animal) moveTo(pos components.Position) {
	a.mu.Lock()
	a.moveLocked(pos)
	a.mu.Unlock()
}

func (a *Animal) moveLocked(pos components.Position) {
	a.lastPosition = a.position
	a.position = pos
}

func (a *Animal) planner(ctx *Context) systems.Planner {
	return systems.Planner{Area: ctx.Env, Rand: a.rng}
}

func (a *Animal) needs() (satiety, hydration float64) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.satiety, a.hydration
}

// lockAll write-locks every distinct animal in ascending sequence order and
// returns the matching unlock.
func lockAll(animals ...*Animal) func() {
	set := make([]*Animal, 0, len(animals))
	for _, x := range animals {
		if x != nil {
			set = append(set, x)
		}
	}
	sort.Slice(set, func(i, j int) bool { return set[i].seq < set[j].seq })

	locked := set[:0]
	var prev *Animal
	for _, x := range set {
		if x == prev {
			continue
		}
		x.mu.Lock()
		locked = append(locked, x)
		prev = x
	}
	return func() {
		for i := len(locked) - 1; i >= 0; i-- {
			locked[i].mu.Unlock()
		}
	}
}

func (a *Animal) String() string {
	return fmt.Sprintf("%s(%s)", a.profile.Species, a.id.String()[:8])
}
