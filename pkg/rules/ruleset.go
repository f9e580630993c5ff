// Package rules loads and validates the event, talent, age and grade tables
// into an immutable RuleSet shared by every life.
package rules

import (
	"maps"
	"slices"

	"github.com/jwebster45206/life-engine/pkg/condition"
	"github.com/jwebster45206/life-engine/pkg/event"
	"github.com/jwebster45206/life-engine/pkg/grade"
	"github.com/jwebster45206/life-engine/pkg/talent"
)

// RuleSet is the validated, read-only form of the rule tables. It is safe
// for concurrent use by any number of lives.
type RuleSet struct {
	events    map[int]*event.Event
	talents   map[int]*talent.Talent
	eventIDs  []int
	talentIDs []int
	ages      map[int][]event.Entry
	grades    grade.Tables
	cache     *condition.Cache
}

func (rs *RuleSet) Event(id int) (*event.Event, bool) {
	ev, ok := rs.events[id]
	return ev, ok
}

func (rs *RuleSet) Talent(id int) (*talent.Talent, bool) {
	t, ok := rs.talents[id]
	return t, ok
}

// EventTable returns the events by id. Callers must not modify it.
func (rs *RuleSet) EventTable() map[int]*event.Event {
	return rs.events
}

// EventIDs returns every event id in ascending order.
func (rs *RuleSet) EventIDs() []int {
	return append([]int(nil), rs.eventIDs...)
}

// Talents returns every talent ordered by id.
func (rs *RuleSet) Talents() []*talent.Talent {
	out := make([]*talent.Talent, len(rs.talentIDs))
	for i, id := range rs.talentIDs {
		out[i] = rs.talents[id]
	}
	return out
}

// Ages returns every age with a row in the age table, ascending.
func (rs *RuleSet) Ages() []int {
	return slices.Sorted(maps.Keys(rs.ages))
}

// AgeEntries returns the weighted events available at age. Ages without a
// row have no events.
func (rs *RuleSet) AgeEntries(age int) []event.Entry {
	return rs.ages[age]
}

func (rs *RuleSet) Grades() grade.Tables {
	return rs.grades
}

// Conditions returns the predicate cache the tables were compiled with.
func (rs *RuleSet) Conditions() *condition.Cache {
	return rs.cache
}

func (rs *RuleSet) NumEvents() int { return len(rs.events) }
func (rs *RuleSet) NumTalents() int { return len(rs.talents) }
func (rs *RuleSet) NumAges() int { return len(rs.ages) }
