package talent

import (
	"fmt"
	"math/rand"

	"github.com/jwebster45206/life-engine/pkg/state"
)

// Trigger records one talent firing during a tick.
type Trigger struct {
	TalentID int           `json:"talent_id"`
	Name     string        `json:"name"`
	Applied  []state.Delta `json:"applied,omitempty"`
}

// Log renders the trigger as a life log line.
func (tr Trigger) Log() string {
	if len(tr.Applied) == 0 {
		return fmt.Sprintf("Talent [%s] took effect", tr.Name)
	}
	return fmt.Sprintf("Talent [%s] took effect (%s)", tr.Name, state.Effect(tr.Applied))
}

// Manager holds the talents acquired by one run.
type Manager struct {
	st       *state.State
	acquired []*Talent
}

func NewManager(st *state.State) *Manager {
	return &Manager{st: st}
}

// Select validates chosen for conflicts and acquires them. Unconditional
// effects are applied immediately and status bonuses are added to the
// allocation budget. On error the state is left untouched.
func (m *Manager) Select(chosen []*Talent, rng *rand.Rand) ([]Trigger, error) {
	if err := CheckConflicts(chosen); err != nil {
		return nil, err
	}

	var triggers []Trigger
	for _, t := range chosen {
		m.acquired = append(m.acquired, t)
		m.st.AddTalent(t.ID)
		m.st.Total += t.Status
		if t.Conditional() || t.Effect.IsEmpty() {
			continue
		}
		applied := m.st.Apply(t.Effect, rng)
		triggers = append(triggers, Trigger{TalentID: t.ID, Name: t.Name, Applied: applied})
	}
	return triggers, nil
}

// Acquired returns the talents in selection order.
func (m *Manager) Acquired() []*Talent {
	out := make([]*Talent, len(m.acquired))
	copy(out, m.acquired)
	return out
}

// Tick re-evaluates every conditional talent in selection order and applies
// the effect of each one that holds. It stops as soon as the character dies.
func (m *Manager) Tick(rng *rand.Rand) []Trigger {
	var triggers []Trigger
	for _, t := range m.acquired {
		if !m.st.Alive() {
			break
		}
		if !t.Conditional() || !t.When(m.st) {
			continue
		}
		applied := m.st.Apply(t.Effect, rng)
		triggers = append(triggers, Trigger{TalentID: t.ID, Name: t.Name, Applied: applied})
	}
	return triggers
}
