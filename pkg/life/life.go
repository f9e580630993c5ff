// Package life drives a single simulated life from talent selection and
// attribute allocation through yearly resolution to the final summary.
package life

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"iter"
	"log/slog"
	"math/rand"
	"slices"

	"github.com/google/uuid"
	"github.com/jwebster45206/life-engine/pkg/attr"
	"github.com/jwebster45206/life-engine/pkg/event"
	"github.com/jwebster45206/life-engine/pkg/grade"
	"github.com/jwebster45206/life-engine/pkg/rules"
	"github.com/jwebster45206/life-engine/pkg/state"
	"github.com/jwebster45206/life-engine/pkg/talent"
)

// Phase is the lifecycle stage of a Life.
type Phase int

const (
	PhaseSetup Phase = iota
	PhaseRunning
	PhaseTerminated
)

func (p Phase) String() string {
	switch p {
	case PhaseSetup:
		return "setup"
	case PhaseRunning:
		return "running"
	case PhaseTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Life is one run of the simulator. It is not safe for concurrent use; the
// RuleSet it reads from is.
type Life struct {
	id     uuid.UUID
	seed   int64
	rng    *rand.Rand
	rules  *rules.RuleSet
	logger *slog.Logger

	maxAge      int
	talentLimit int

	st       *state.State
	talents  *talent.Manager
	resolver *event.Resolver

	phase     Phase
	menu      []*talent.Talent
	selection []talent.Trigger
	selected  bool
	allocated bool
	consumed  bool
}

// NewSeed returns a random non-zero seed from crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	for {
		if _, err := crand.Read(b[:]); err != nil {
			return 0, fmt.Errorf("read random seed: %w", err)
		}
		if seed := int64(binary.LittleEndian.Uint64(b[:])); seed != 0 {
			return seed, nil
		}
	}
}

// New creates a life in the setup phase.
func New(rs *rules.RuleSet, opts ...Option) (*Life, error) {
	o := options{
		maxAge:      DefaultMaxAge,
		talentLimit: DefaultTalentLimit,
		times:       1,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	rng := o.rng
	if rng == nil {
		if o.seed == 0 {
			seed, err := NewSeed()
			if err != nil {
				return nil, err
			}
			o.seed = seed
		}
		rng = rand.New(rand.NewSource(o.seed))
	} else {
		o.seed = 0
	}

	st := state.New()
	st.SetTimes(o.times)
	for _, id := range o.achieved {
		st.Achieve(id)
	}

	id := uuid.New()
	logger := o.logger.With("life_id", id.String())
	l := &Life{
		id:          id,
		seed:        o.seed,
		rng:         rng,
		rules:       rs,
		logger:      logger,
		maxAge:      o.maxAge,
		talentLimit: o.talentLimit,
		st:          st,
		talents:     talent.NewManager(st),
		resolver:    event.NewResolver(rs.EventTable(), st, logger),
		phase:       PhaseSetup,
	}
	logger.Debug("life created", "seed", o.seed, "times", o.times, "achieved", len(o.achieved))
	return l, nil
}

func (l *Life) ID() uuid.UUID { return l.id }
func (l *Life) Seed() int64 { return l.seed }
func (l *Life) Phase() Phase { return l.phase }
func (l *Life) MaxAge() int { return l.maxAge }
func (l *Life) TalentLimit() int { return l.talentLimit }

// Total is the number of attribute points to allocate, including talent
// bonuses once talents are selected.
func (l *Life) Total() int { return l.st.Total }

func (l *Life) Snapshot() state.Snapshot { return l.st.Snapshot() }

// Talents returns the selected talents in selection order.
func (l *Life) Talents() []*talent.Talent { return l.talents.Acquired() }

// SelectionLog returns the effects applied when talents were selected.
func (l *Life) SelectionLog() []talent.Trigger { return slices.Clone(l.selection) }

// Events returns the ids of the events triggered so far.
func (l *Life) Events() []int { return l.st.Events() }

// Achieved returns the ever-triggered event ids, including those carried in
// from the player's profile.
func (l *Life) Achieved() []int { return l.st.Achieved() }

// Times is the run counter of this life.
func (l *Life) Times() int { return l.st.Int(attr.TMS) }

// OfferTalents draws the talent menu. The menu is drawn once; later calls
// return the same menu.
func (l *Life) OfferTalents(n int) []*talent.Talent {
	if l.menu == nil && l.phase == PhaseSetup && !l.selected {
		l.menu = talent.Offer(l.rules.Talents(), n, l.rng)
		l.logger.Debug("talents offered", "count", len(l.menu))
	}
	return slices.Clone(l.menu)
}

// SelectTalents acquires the talents with the given ids. When a menu has been
// offered the ids must come from it.
func (l *Life) SelectTalents(ids []int) error {
	if l.phase != PhaseSetup || l.selected {
		return fmt.Errorf("%w: talents already selected", ErrInvalidSelection)
	}
	if len(ids) > l.talentLimit {
		return fmt.Errorf("%w: %d talents chosen, at most %d allowed", ErrInvalidSelection, len(ids), l.talentLimit)
	}

	chosen := make([]*talent.Talent, 0, len(ids))
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return fmt.Errorf("%w: talent %d chosen twice", ErrInvalidSelection, id)
		}
		seen[id] = true

		t, ok := l.rules.Talent(id)
		if !ok {
			return fmt.Errorf("%w: unknown talent %d", ErrInvalidSelection, id)
		}
		if l.menu != nil && !slices.Contains(l.menu, t) {
			return fmt.Errorf("%w: talent %d was not offered", ErrInvalidSelection, id)
		}
		chosen = append(chosen, t)
	}

	triggers, err := l.talents.Select(chosen, l.rng)
	if err != nil {
		return err
	}
	l.selection = triggers
	l.selected = true
	l.logger.Debug("talents selected", "ids", ids, "total", l.st.Total)
	return nil
}

// RandomTalents selects a conflict-free random pick from the menu, offering
// the default menu first if none was offered.
func (l *Life) RandomTalents() ([]*talent.Talent, error) {
	if l.phase != PhaseSetup || l.selected {
		return nil, fmt.Errorf("%w: talents already selected", ErrInvalidSelection)
	}
	menu := l.OfferTalents(DefaultMenuSize)
	picked, err := talent.RandomPick(menu, l.talentLimit, l.rng)
	if err != nil {
		return nil, err
	}
	ids := make([]int, len(picked))
	for i, t := range picked {
		ids[i] = t.ID
	}
	if err := l.SelectTalents(ids); err != nil {
		return nil, err
	}
	return picked, nil
}

// AllocateAttributes sets CHR, INT, STR and MNY, in that order. Each value
// must be within 0..10 and the values must add up to Total.
func (l *Life) AllocateAttributes(values []int) error {
	if l.phase != PhaseSetup || !l.selected {
		return fmt.Errorf("%w: talents must be selected before allocation", ErrNotReady)
	}
	if l.allocated {
		return &AllocationError{Values: values, Total: l.st.Total, Reason: "attributes already allocated"}
	}
	if err := l.validateAllocation(values); err != nil {
		return err
	}

	// Points add to whatever selected talents already granted.
	allocation := make(state.Effect, len(values))
	for i, key := range attr.Allocatable {
		allocation[i] = state.Fixed(key, values[i])
	}
	l.st.Apply(allocation, l.rng)
	l.allocated = true
	l.logger.Debug("attributes allocated", "values", values)
	return nil
}

func (l *Life) validateAllocation(values []int) error {
	fail := func(format string, args ...any) error {
		return &AllocationError{Values: slices.Clone(values), Total: l.st.Total, Reason: fmt.Sprintf(format, args...)}
	}
	if len(values) != len(attr.Allocatable) {
		return fail("expected %d values, got %d", len(attr.Allocatable), len(values))
	}
	sum := 0
	for i, v := range values {
		if v < 0 || v > state.MaxAllocated {
			return fail("%s=%d is outside 0..%d", attr.Allocatable[i], v, state.MaxAllocated)
		}
		sum += v
	}
	if sum != l.st.Total {
		return fail("values add up to %d", sum)
	}
	return nil
}

// RandomAllocation splits Total into two halves, splits each half again at a
// random point and shuffles the four parts. Split points are drawn from the
// range that keeps both parts of a half within the per-attribute cap.
func (l *Life) RandomAllocation() ([]int, error) {
	if l.phase != PhaseSetup || !l.selected {
		return nil, fmt.Errorf("%w: talents must be selected before allocation", ErrNotReady)
	}
	total := l.st.Total
	if total < 0 || total > state.MaxAllocated*len(attr.Allocatable) {
		return nil, &AllocationError{Total: total, Reason: "no allocation within the per-attribute cap exists"}
	}

	half1 := total / 2
	half2 := total - half1
	n1 := l.splitPoint(half1)
	n2 := l.splitPoint(half2)
	values := []int{n1, n2, half1 - n1, half2 - n2}
	l.rng.Shuffle(len(values), func(i, j int) { values[i], values[j] = values[j], values[i] })
	return values, l.AllocateAttributes(values)
}

// splitPoint draws n in [0, half] such that n and half-n are both at most
// MaxAllocated. half must not exceed 2*MaxAllocated.
func (l *Life) splitPoint(half int) int {
	lo := max(0, half-state.MaxAllocated)
	hi := min(half, state.MaxAllocated)
	return lo + l.rng.Intn(hi-lo+1)
}

// Run returns the sequence of yearly results. Each year the character ages,
// conditional talents are re-evaluated and then one event is drawn for the
// new age. The sequence ends when the character dies or reaches the maximum
// age; stopping the iteration early also ends the life. Run may be called
// once, after talents are selected and attributes allocated.
func (l *Life) Run() (iter.Seq[Result], error) {
	if l.consumed {
		return nil, ErrConsumed
	}
	if !l.selected || !l.allocated {
		return nil, ErrNotReady
	}
	l.consumed = true
	l.phase = PhaseRunning
	l.logger.Debug("life started", "snapshot", l.st.Snapshot().String())

	return func(yield func(Result) bool) {
		if l.phase != PhaseRunning {
			return
		}
		defer l.terminate()
		for l.st.Alive() && l.st.Int(attr.AGE) < l.maxAge {
			if !yield(l.year()) {
				return
			}
		}
	}, nil
}

func (l *Life) year() Result {
	l.st.Grow()
	age := l.st.Int(attr.AGE)

	triggers := l.talents.Tick(l.rng)
	var occurrences []event.Occurrence
	if l.st.Alive() {
		occurrences = l.resolver.Resolve(l.rules.AgeEntries(age), l.rng)
	}
	return Result{
		Age:      age,
		Snapshot: l.st.Snapshot(),
		Talents:  triggers,
		Events:   occurrences,
	}
}

func (l *Life) terminate() {
	if l.phase == PhaseTerminated {
		return
	}
	l.phase = PhaseTerminated
	l.logger.Debug("life terminated",
		"age", l.st.Int(attr.AGE),
		"alive", l.st.Alive(),
		"events", len(l.st.Events()))
}

// Summary grades the finished life.
func (l *Life) Summary() (grade.Summary, error) {
	if l.phase != PhaseTerminated {
		return grade.Summary{}, ErrNotTerminated
	}
	return grade.Summarize(l.st.Snapshot(), l.rules.Grades()), nil
}
