package state

import (
	"fmt"
	"math/rand"
	"slices"

	"github.com/jwebster45206/life-engine/pkg/attr"
	"github.com/jwebster45206/life-engine/pkg/condition"
)

// Default values for a new character.
const (
	DefaultTotal = 20 // points available for initial allocation
	DefaultSPR   = 5
	MaxAllocated = 10 // per-attribute cap, allocation time only
)

// State is the evolving condition of one character during a single run.
// It is mutated in place by talents, events and age advancement.
type State struct {
	age      int
	charm    int
	intel    int
	strength int
	money    int
	spirit   int
	life     int
	times    int

	// Total is the allocation budget for this run.
	Total int

	talents  map[int]struct{}
	events   map[int]struct{}
	achieved map[int]struct{}
}

// Ensure State can be evaluated by compiled conditions
var _ condition.View = (*State)(nil)

// New returns the state of a character that has not been born yet: AGE is
// -1 so the first tick lands on age 0.
func New() *State {
	return &State{
		age:      -1,
		spirit:   DefaultSPR,
		life:     1,
		times:    1,
		Total:    DefaultTotal,
		talents:  make(map[int]struct{}),
		events:   make(map[int]struct{}),
		achieved: make(map[int]struct{}),
	}
}

func (s *State) field(key attr.Key) *int {
	switch key {
	case attr.AGE:
		return &s.age
	case attr.CHR:
		return &s.charm
	case attr.INT:
		return &s.intel
	case attr.STR:
		return &s.strength
	case attr.MNY:
		return &s.money
	case attr.SPR:
		return &s.spirit
	case attr.LIF:
		return &s.life
	case attr.TMS:
		return &s.times
	default:
		return nil
	}
}

func (s *State) set(key attr.Key) map[int]struct{} {
	switch key {
	case attr.TLT:
		return s.talents
	case attr.EVT:
		return s.events
	case attr.AVT:
		return s.achieved
	default:
		return nil
	}
}

// Int returns the value of a numeric attribute. Non-numeric keys read as 0.
func (s *State) Int(key attr.Key) int {
	if p := s.field(key); p != nil {
		return *p
	}
	return 0
}

// Contains reports whether id is a member of a set attribute.
func (s *State) Contains(key attr.Key, id int) bool {
	_, ok := s.set(key)[id]
	return ok
}

// Alive reports whether the life counter is still positive.
func (s *State) Alive() bool {
	return s.life > 0
}

// Grow advances the character by one year.
func (s *State) Grow() {
	s.age++
}

// SetTimes sets the run counter, used when a player is reborn.
func (s *State) SetTimes(n int) {
	s.times = n
}

// Set assigns a numeric attribute directly. It is used for initial
// allocation; simulation changes go through Apply.
func (s *State) Set(key attr.Key, value int) {
	p := s.field(key)
	if p == nil {
		panic(fmt.Sprintf("state: %q is not a numeric attribute", key))
	}
	*p = value
}

// AddTalent records a talent id. Adding a present id is a no-op.
func (s *State) AddTalent(id int) { s.talents[id] = struct{}{} }

// AddEvent records an event triggered this run.
func (s *State) AddEvent(id int) { s.events[id] = struct{}{} }

// Achieve records an event in the ever-triggered set.
func (s *State) Achieve(id int) { s.achieved[id] = struct{}{} }

func (s *State) Talents() []int  { return sorted(s.talents) }
func (s *State) Events() []int   { return sorted(s.events) }
func (s *State) Achieved() []int { return sorted(s.achieved) }

func sorted(set map[int]struct{}) []int {
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Apply adds every delta of effect to the state and returns the changes
// actually made, with random-core deltas resolved to a concrete attribute.
//
// Attributes are unbounded during simulation. The life counter is floored at
// zero; a character whose LIF reaches zero is dead, and callers check Alive
// after every Apply.
//
// Apply panics if a delta targets a key that is not a numeric attribute:
// effects are validated when rules are loaded, so this is a programming error.
func (s *State) Apply(effect Effect, rng *rand.Rand) []Delta {
	applied := make([]Delta, 0, len(effect))
	for _, d := range effect {
		key := d.Key
		if d.RandomCore {
			key = attr.Core[rng.Intn(len(attr.Core))]
		}
		p := s.field(key)
		if p == nil {
			panic(fmt.Sprintf("state: cannot apply delta to %q", key))
		}
		*p += d.Amount
		if key == attr.LIF && *p < 0 {
			*p = 0
		}
		applied = append(applied, Delta{Key: key, Amount: d.Amount})
	}
	return applied
}

// Snapshot is a read-only copy of the numeric attributes at one point in time.
type Snapshot struct {
	Age int `json:"age"`
	CHR int `json:"chr"`
	INT int `json:"int"`
	STR int `json:"str"`
	MNY int `json:"mny"`
	SPR int `json:"spr"`
	LIF int `json:"lif"`
	TMS int `json:"tms"`
}

func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Age: s.age,
		CHR: s.charm,
		INT: s.intel,
		STR: s.strength,
		MNY: s.money,
		SPR: s.spirit,
		LIF: s.life,
		TMS: s.times,
	}
}

func (s Snapshot) String() string {
	return fmt.Sprintf("[Age %d | CHR %d INT %d STR %d MNY %d SPR %d]",
		s.Age, s.CHR, s.INT, s.STR, s.MNY, s.SPR)
}
