// Package pack implements predator packs: membership with a leading
// father and mother, food sharing, and the pack-wide hunt session.
package pack

import (
	"sync"

	"github.com/pthm-cable/einp/components"
)

// Member is a pack member as seen by the pack. Implementations guard their
// own state; the pack may call these while holding its lock, so they must
// never call back into the pack.
type Member interface {
	Sex() components.Sex
	IsAlive() bool
	IsAdult() bool
	IsLeading() bool
	SetLeading(bool)
	// Feed adds kg of food and returns the satiety actually gained.
	Feed(kg float64) float64
}

// Prey is the target of a hunt session.
type Prey interface {
	IsAlive() bool
}

// HuntSession is the pack-wide state of the current hunt.
type HuntSession struct {
	Target      Prey
	StartedTick int64
	Attempts    int // failed kill rolls so far
}

// Pack is a group of predators led by at most one father and one mother.
// Thread-safe: all methods acquire internal mutex.
type Pack struct {
	mu      sync.RWMutex
	id      int
	father  Member
	mother  Member
	members []Member
	hunt    *HuntSession
}

// New creates an empty pack.
func New(id int) *Pack {
	return &Pack{id: id, members: make([]Member, 0, 8)}
}

// ID returns the immutable pack id.
func (p *Pack) ID() int {
	return p.id
}

// Join adds m to the pack. A leading member takes the free father or mother
// slot matching its sex; if that slot is taken it stops leading.
// Joining twice is a no-op.
func (p *Pack) Join(m Member) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, existing := range p.members {
		if existing == m {
			return
		}
	}
	p.members = append(p.members, m)
	p.assignSlotLocked(m)
}

// assignSlotLocked places a leading member into its sex slot.
func (p *Pack) assignSlotLocked(m Member) {
	if !m.IsLeading() {
		return
	}
	switch m.Sex() {
	case components.SexMale:
		if p.father == nil {
			p.father = m
			return
		}
	case components.SexFemale:
		if p.mother == nil {
			p.mother = m
			return
		}
	}
	if p.father != m && p.mother != m {
		m.SetLeading(false)
	}
}

// Leave removes m from the pack. If m held the father or mother slot, the
// first remaining living adult of the same sex is promoted into it.
// Returns whether m was a member and how many members remain.
func (p *Pack) Leave(m Member) (bool, int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx := -1
	for i, existing := range p.members {
		if existing == m {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, len(p.members)
	}
	p.members = append(p.members[:idx], p.members[idx+1:]...)

	switch m {
	case p.father:
		p.father = p.promoteLocked(components.SexMale)
	case p.mother:
		p.mother = p.promoteLocked(components.SexFemale)
	}
	return true, len(p.members)
}

func (p *Pack) promoteLocked(sex components.Sex) Member {
	for _, m := range p.members {
		if m.Sex() == sex && m.IsAlive() && m.IsAdult() {
			m.SetLeading(true)
			return m
		}
	}
	return nil
}

// FindLeader returns the father, else the mother, else nil.
// The answer may be stale as soon as the lock is released.
func (p *Pack) FindLeader() Member {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.father != nil {
		return p.father
	}
	return p.mother
}

// Father returns the leading male, or nil.
func (p *Pack) Father() Member {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.father
}

// Mother returns the leading female, or nil.
func (p *Pack) Mother() Member {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.mother
}

// Members returns a snapshot copy of the membership.
func (p *Pack) Members() []Member {
	p.mu.RLock()
	defer p.mu.RUnlock()
	result := make([]Member, len(p.members))
	copy(result, p.members)
	return result
}

// Size returns the number of members.
func (p *Pack) Size() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.members)
}

// InsertLitter adds newborns in one step.
func (p *Pack) InsertLitter(newborns []Member) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, m := range newborns {
		p.members = append(p.members, m)
	}
}

// ShareFood divides total kg equally between the living members at the time
// of the call and returns the per-member share.
func (p *Pack) ShareFood(total float64) float64 {
	members := p.Members()
	alive := members[:0]
	for _, m := range members {
		if m.IsAlive() {
			alive = append(alive, m)
		}
	}
	if len(alive) == 0 || total <= 0 {
		return 0
	}
	share := total / float64(len(alive))
	for _, m := range alive {
		m.Feed(share)
	}
	return share
}

// Hunt returns a copy of the active hunt session.
func (p *Pack) Hunt() (HuntSession, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.hunt == nil {
		return HuntSession{}, false
	}
	return *p.hunt, true
}

// BeginHunt starts a session unless one with a living target is running.
func (p *Pack) BeginHunt(s HuntSession) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.hunt != nil && p.hunt.Target != nil && p.hunt.Target.IsAlive() {
		return false
	}
	p.hunt = &s
	return true
}

// FailAttempt records a failed kill roll and returns the attempt count.
func (p *Pack) FailAttempt() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.hunt == nil {
		return 0
	}
	p.hunt.Attempts++
	return p.hunt.Attempts
}

// EndHunt clears the session.
func (p *Pack) EndHunt() {
	p.mu.Lock()
	p.hunt = nil
	p.mu.Unlock()
}
