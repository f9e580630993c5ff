// Package event selects and resolves the weighted yearly events of a life.
package event

import (
	"math/rand"
	"strconv"

	"github.com/jwebster45206/life-engine/pkg/attr"
	"github.com/jwebster45206/life-engine/pkg/condition"
	"github.com/jwebster45206/life-engine/pkg/state"
)

// Branch forces a follow-up event when its condition holds right after the
// parent event has been applied.
type Branch struct {
	Condition string              `json:"condition"`
	Target    int                 `json:"target"`
	When      condition.Predicate `json:"-"`
}

// Event is one entry of the event table.
type Event struct {
	ID       int          `json:"id"`
	Text     string       `json:"text"`
	Include  string       `json:"include,omitempty"`
	Exclude  string       `json:"exclude,omitempty"`
	Effect   state.Effect `json:"effect,omitempty"`
	Once     bool         `json:"once,omitempty"`
	NoRandom bool         `json:"no_random,omitempty"` // only reachable through a branch
	Branches []Branch     `json:"branches,omitempty"`
	PostText string       `json:"post_text,omitempty"`

	IncludeWhen condition.Predicate `json:"-"`
	ExcludeWhen condition.Predicate `json:"-"`
}

// Entry is one weighted event reference in the age table.
type Entry struct {
	EventID int     `json:"event_id"`
	Weight  float64 `json:"weight"`
}

func (e Entry) String() string {
	if e.Weight == 1 {
		return strconv.Itoa(e.EventID)
	}
	return strconv.Itoa(e.EventID) + "*" + strconv.FormatFloat(e.Weight, 'g', -1, 64)
}

// Candidate is an eligible event together with its draw weight.
type Candidate struct {
	Event  *Event
	Weight float64
}

// Eligible filters the age entries down to the events that may be drawn for
// the current state. Entry order is preserved. A once-only event is spent for
// the rest of the run; achievements carried in from earlier lives (AVT) only
// matter through conditions.
func Eligible(entries []Entry, events map[int]*Event, view condition.View) []Candidate {
	var out []Candidate
	for _, entry := range entries {
		ev, ok := events[entry.EventID]
		if !ok || ev.NoRandom || entry.Weight <= 0 {
			continue
		}
		if ev.Once && view.Contains(attr.EVT, ev.ID) {
			continue
		}
		if ev.IncludeWhen != nil && !ev.IncludeWhen(view) {
			continue
		}
		if ev.ExcludeWhen != nil && ev.ExcludeWhen(view) {
			continue
		}
		out = append(out, Candidate{Event: ev, Weight: entry.Weight})
	}
	return out
}

// Select draws one candidate with probability proportional to its weight.
// It reports false when there is nothing to draw.
func Select(candidates []Candidate, rng *rand.Rand) (Candidate, bool) {
	var total float64
	for _, c := range candidates {
		total += c.Weight
	}
	if total <= 0 {
		return Candidate{}, false
	}

	roll := rng.Float64() * total
	var cumulative float64
	for _, c := range candidates {
		cumulative += c.Weight
		if roll < cumulative {
			return c, true
		}
	}
	// Floating point rounding can leave roll at the upper bound.
	return candidates[len(candidates)-1], true
}
