package event

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/jwebster45206/life-engine/pkg/state"
)

// MaxChain is the default bound on branch hops after a drawn event.
const MaxChain = 16

// Occurrence records one event that happened, drawn or forced.
type Occurrence struct {
	EventID int           `json:"event_id"`
	Text    string        `json:"text"`
	Applied []state.Delta `json:"applied,omitempty"`
	Forced  bool          `json:"forced,omitempty"`
	Post    string        `json:"post,omitempty"`
}

// Lines renders the occurrence as life log lines.
func (o Occurrence) Lines() []string {
	line := o.Text
	if len(o.Applied) > 0 {
		line = fmt.Sprintf("%s (%s)", o.Text, state.Effect(o.Applied))
	}
	if o.Post == "" {
		return []string{line}
	}
	return []string{line, o.Post}
}

// Resolver draws and runs events against one run's state.
type Resolver struct {
	Events   map[int]*Event
	State    *state.State
	MaxChain int
	Logger   *slog.Logger
}

func NewResolver(events map[int]*Event, st *state.State, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{Events: events, State: st, MaxChain: MaxChain, Logger: logger}
}

// Resolve draws one event from entries and runs it, following branches.
// It returns nil when no entry is eligible.
func (r *Resolver) Resolve(entries []Entry, rng *rand.Rand) []Occurrence {
	picked, ok := Select(Eligible(entries, r.Events, r.State), rng)
	if !ok {
		return nil
	}

	var out []Occurrence
	ev := picked.Event
	forced := false
	for hop := 0; ev != nil; hop++ {
		occ := r.run(ev, rng)
		occ.Forced = forced

		next := r.branch(ev)
		if next == nil && ev.PostText != "" {
			occ.Post = ev.PostText
		}
		out = append(out, occ)

		if next != nil && hop >= r.MaxChain {
			r.Logger.Warn("event chain truncated", "event_id", ev.ID, "next_id", next.ID, "max_chain", r.MaxChain)
			break
		}
		ev = next
		forced = true
	}
	return out
}

func (r *Resolver) run(ev *Event, rng *rand.Rand) Occurrence {
	r.State.AddEvent(ev.ID)
	r.State.Achieve(ev.ID)
	applied := r.State.Apply(ev.Effect, rng)
	r.Logger.Debug("event occurred", "event_id", ev.ID, "applied", state.Effect(applied).String())
	return Occurrence{EventID: ev.ID, Text: ev.Text, Applied: applied}
}

// branch returns the target of the first branch that holds, or nil. A dead
// character never branches.
func (r *Resolver) branch(ev *Event) *Event {
	if !r.State.Alive() {
		return nil
	}
	for _, b := range ev.Branches {
		if b.When != nil && !b.When(r.State) {
			continue
		}
		target, ok := r.Events[b.Target]
		if !ok {
			r.Logger.Warn("branch target missing", "event_id", ev.ID, "target", b.Target)
			continue
		}
		return target
	}
	return nil
}
