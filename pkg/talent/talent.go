// Package talent offers, validates and applies talents: passive modifiers a
// player chooses before a life starts.
package talent

import (
	"errors"
	"fmt"
	"math/rand"
	"slices"

	"github.com/jwebster45206/life-engine/pkg/condition"
	"github.com/jwebster45206/life-engine/pkg/state"
)

// Talent is a passive modifier. A talent without a condition applies its
// effect once when selected; one with a condition applies it on every tick
// where the condition holds.
type Talent struct {
	ID          int          `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Grade       int          `json:"grade"`            // 0-3, display rarity
	Condition   string       `json:"condition,omitempty"`
	Effect      state.Effect `json:"effect,omitempty"`
	Exclusive   []int        `json:"exclusive,omitempty"`
	Status      int          `json:"status,omitempty"` // extra allocation points

	When condition.Predicate `json:"-"` // compiled Condition, nil when unconditional
}

func (t *Talent) String() string {
	return fmt.Sprintf("%s (%s)", t.Name, t.Description)
}

// Conditional reports whether the talent is re-evaluated every tick.
func (t *Talent) Conditional() bool {
	return t.When != nil
}

// ExclusiveWith reports whether t and other may not be held together.
// The relation is symmetric: either side declaring the other is enough.
func (t *Talent) ExclusiveWith(other *Talent) bool {
	return slices.Contains(t.Exclusive, other.ID) || slices.Contains(other.Exclusive, t.ID)
}

var ErrConflictingTalents = errors.New("conflicting talents")

// ConflictError names the first mutually exclusive pair found.
type ConflictError struct {
	A, B *Talent
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("talents %q and %q cannot be held together", e.A.Name, e.B.Name)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflictingTalents
}

// CheckConflicts checks every pair of chosen talents for exclusivity.
func CheckConflicts(chosen []*Talent) error {
	for i := 0; i < len(chosen); i++ {
		for j := i + 1; j < len(chosen); j++ {
			if chosen[i].ExclusiveWith(chosen[j]) {
				return &ConflictError{A: chosen[i], B: chosen[j]}
			}
		}
	}
	return nil
}

// Offer draws n distinct talents uniformly from pool. When n is at least the
// pool size the whole pool is returned in random order.
func Offer(pool []*Talent, n int, rng *rand.Rand) []*Talent {
	if n <= 0 || len(pool) == 0 {
		return nil
	}
	if n > len(pool) {
		n = len(pool)
	}
	menu := make([]*Talent, n)
	for i, idx := range rng.Perm(len(pool))[:n] {
		menu[i] = pool[idx]
	}
	return menu
}

// maxPickAttempts bounds RandomPick's retries on menus with many conflicts.
const maxPickAttempts = 1000

// RandomPick chooses k conflict-free talents from menu, in menu order. It
// returns ErrConflictingTalents if no conflict-free draw was found.
func RandomPick(menu []*Talent, k int, rng *rand.Rand) ([]*Talent, error) {
	if k <= 0 {
		return nil, nil
	}
	if k > len(menu) {
		k = len(menu)
	}
	for attempt := 0; attempt < maxPickAttempts; attempt++ {
		idx := rng.Perm(len(menu))[:k]
		slices.Sort(idx)
		picked := make([]*Talent, k)
		for i, n := range idx {
			picked[i] = menu[n]
		}
		if CheckConflicts(picked) == nil {
			return picked, nil
		}
	}
	return nil, fmt.Errorf("no conflict-free pick of %d from %d talents: %w", k, len(menu), ErrConflictingTalents)
}
