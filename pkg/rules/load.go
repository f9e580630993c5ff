package rules

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/jwebster45206/life-engine/pkg/attr"
	"github.com/jwebster45206/life-engine/pkg/condition"
	"github.com/jwebster45206/life-engine/pkg/event"
	"github.com/jwebster45206/life-engine/pkg/grade"
	"github.com/jwebster45206/life-engine/pkg/state"
	"github.com/jwebster45206/life-engine/pkg/talent"
)

// Table names used in LoadError.
const (
	TableEvents  = "events"
	TableTalents = "talents"
	TableAges    = "age"
	TableGrades  = "grades"
)

// Options tune Load. The zero value is ready to use.
type Options struct {
	Logger *slog.Logger
	Cache  *condition.Cache // shared predicate cache; a new one when nil
}

type loader struct {
	rs       *RuleSet
	branches map[int][]string
	errs     []error
}

func (l *loader) fail(table, id string, err error) {
	l.errs = append(l.errs, &LoadError{Table: table, ID: id, Err: err})
}

// Load validates the decoded tables and builds a RuleSet. Every problem
// found is reported: the returned error joins one *LoadError per problem,
// each matching ErrLoad.
func Load(t Tables, opts Options) (*RuleSet, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cache := opts.Cache
	if cache == nil {
		cache = condition.NewCache()
	}

	l := &loader{
		rs: &RuleSet{
			events:  make(map[int]*event.Event, len(t.Events)),
			talents: make(map[int]*talent.Talent, len(t.Talents)),
			ages:    make(map[int][]event.Entry, len(t.Ages)),
			cache:   cache,
		},
		branches: make(map[int][]string),
	}

	// Events first; branches and ages refer to them.
	for _, key := range slices.Sorted(maps.Keys(t.Events)) {
		l.event(key, t.Events[key])
	}
	for _, id := range slices.Sorted(maps.Keys(l.branches)) {
		l.branch(l.rs.events[id], l.branches[id])
	}
	for _, key := range slices.Sorted(maps.Keys(t.Talents)) {
		l.talent(key, t.Talents[key])
	}
	for _, id := range slices.Sorted(maps.Keys(l.rs.talents)) {
		tl := l.rs.talents[id]
		for _, other := range tl.Exclusive {
			if _, ok := l.rs.talents[other]; !ok {
				l.fail(TableTalents, strconv.Itoa(tl.ID), fmt.Errorf("exclusive talent %d does not exist", other))
			}
		}
	}
	for _, key := range slices.Sorted(maps.Keys(t.Ages)) {
		l.age(key, t.Ages[key])
	}

	l.rs.grades = grade.Default().Merge(t.Grades)
	for _, key := range slices.Sorted(maps.Keys(t.Grades)) {
		if !slices.Contains(grade.Keys, key) {
			l.fail(TableGrades, string(key), errors.New("not a graded attribute"))
			continue
		}
		if err := t.Grades[key].Validate(); err != nil {
			l.fail(TableGrades, string(key), err)
		}
	}

	if len(l.errs) > 0 {
		return nil, errors.Join(l.errs...)
	}

	l.rs.eventIDs = slices.Sorted(maps.Keys(l.rs.events))
	l.rs.talentIDs = slices.Sorted(maps.Keys(l.rs.talents))

	logger.Debug("rule tables loaded",
		"events", len(l.rs.events),
		"talents", len(l.rs.talents),
		"ages", len(l.rs.ages),
		"conditions", cache.Len())
	return l.rs, nil
}

// recordID resolves a record's id from its key, checking it against the id
// field when one is present.
func recordID(key string, field int) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(key))
	if err != nil {
		return 0, fmt.Errorf("id %q is not an integer", key)
	}
	if field != 0 && field != id {
		return 0, fmt.Errorf("id field %d does not match key", field)
	}
	return id, nil
}

func (l *loader) compile(table, id, text string) condition.Predicate {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	pred, err := l.rs.cache.Compile(text)
	if err != nil {
		l.fail(table, id, err)
		return nil
	}
	return pred
}

func (l *loader) effect(table, id string, raw map[string]int) state.Effect {
	m := make(map[attr.Key]int, len(raw))
	for _, name := range slices.Sorted(maps.Keys(raw)) {
		amount := raw[name]
		key, kind := attr.Lookup(name)
		switch {
		case kind == attr.KindMarker:
		case kind != attr.KindNumeric:
			l.fail(table, id, fmt.Errorf("effect on %s attribute %q", kind, name))
			continue
		case key == attr.AGE:
			l.fail(table, id, errors.New("effects cannot change AGE"))
			continue
		case key == attr.LIF && amount > 0:
			l.fail(table, id, fmt.Errorf("effect LIF%+d would revive the character", amount))
			continue
		}
		m[key] += amount
	}
	return state.EffectFromMap(m)
}

func (l *loader) event(key string, rec EventRecord) {
	id, err := recordID(key, rec.ID)
	if err != nil {
		l.fail(TableEvents, key, err)
		return
	}
	if _, dup := l.rs.events[id]; dup {
		l.fail(TableEvents, key, fmt.Errorf("duplicate event id %d", id))
		return
	}
	if strings.TrimSpace(rec.Event) == "" {
		l.fail(TableEvents, key, errors.New("event text is empty"))
	}
	if len(rec.Branch) > 0 {
		l.branches[id] = rec.Branch
	}

	l.rs.events[id] = &event.Event{
		ID:          id,
		Text:        rec.Event,
		Include:     rec.Include,
		Exclude:     rec.Exclude,
		Effect:      l.effect(TableEvents, key, rec.Effect),
		Once:        rec.Once,
		NoRandom:    rec.NoRandom,
		PostText:    rec.PostEvent,
		IncludeWhen: l.compile(TableEvents, key, rec.Include),
		ExcludeWhen: l.compile(TableEvents, key, rec.Exclude),
	}
}

// branch parses "CONDITION:target" entries once every event is known. The
// target follows the last colon; an empty condition always holds.
func (l *loader) branch(ev *event.Event, raws []string) {
	id := strconv.Itoa(ev.ID)
	for _, raw := range raws {
		i := strings.LastIndex(raw, ":")
		if i < 0 {
			l.fail(TableEvents, id, fmt.Errorf("branch %q has no target", raw))
			continue
		}
		cond, targetText := raw[:i], strings.TrimSpace(raw[i+1:])
		target, err := strconv.Atoi(targetText)
		if err != nil {
			l.fail(TableEvents, id, fmt.Errorf("branch %q target is not an integer", raw))
			continue
		}
		if _, ok := l.rs.events[target]; !ok {
			l.fail(TableEvents, id, fmt.Errorf("branch target %d does not exist", target))
			continue
		}
		when := l.compile(TableEvents, id, cond)
		if when == nil && strings.TrimSpace(cond) != "" {
			continue
		}
		ev.Branches = append(ev.Branches, event.Branch{Condition: cond, Target: target, When: when})
	}
}

func (l *loader) talent(key string, rec TalentRecord) {
	id, err := recordID(key, rec.ID)
	if err != nil {
		l.fail(TableTalents, key, err)
		return
	}
	if strings.TrimSpace(rec.Name) == "" {
		l.fail(TableTalents, key, errors.New("talent name is empty"))
	}
	if rec.Grade < 0 || rec.Grade > 3 {
		l.fail(TableTalents, key, fmt.Errorf("grade %d out of range 0-3", rec.Grade))
	}
	if _, dup := l.rs.talents[id]; dup {
		l.fail(TableTalents, key, fmt.Errorf("duplicate talent id %d", id))
		return
	}
	if slices.Contains(rec.Exclusive, id) {
		l.fail(TableTalents, key, errors.New("talent is exclusive with itself"))
	}

	l.rs.talents[id] = &talent.Talent{
		ID:          id,
		Name:        rec.Name,
		Description: rec.Description,
		Grade:       rec.Grade,
		Condition:   rec.Condition,
		Effect:      l.effect(TableTalents, key, rec.Effect),
		Exclusive:   slices.Clone(rec.Exclusive),
		Status:      rec.Status,
		When:        l.compile(TableTalents, key, rec.Condition),
	}
}

func (l *loader) age(key string, rec AgeRecord) {
	age, err := recordID(key, rec.Age)
	if err != nil {
		l.fail(TableAges, key, err)
		return
	}
	if _, dup := l.rs.ages[age]; dup {
		l.fail(TableAges, key, fmt.Errorf("duplicate age %d", age))
		return
	}

	entries := make([]event.Entry, 0, len(rec.Event))
	for _, raw := range rec.Event {
		entry, err := ParseEntry(raw)
		if err != nil {
			l.fail(TableAges, key, err)
			continue
		}
		if _, ok := l.rs.events[entry.EventID]; !ok {
			l.fail(TableAges, key, fmt.Errorf("event %d does not exist", entry.EventID))
			continue
		}
		entries = append(entries, entry)
	}
	l.rs.ages[age] = entries
}

// ParseEntry parses an age table entry such as "10001" or "10001*0.5".
func ParseEntry(raw string) (event.Entry, error) {
	idText, weightText, weighted := strings.Cut(strings.TrimSpace(raw), "*")
	id, err := strconv.Atoi(strings.TrimSpace(idText))
	if err != nil {
		return event.Entry{}, fmt.Errorf("entry %q: event id is not an integer", raw)
	}
	weight := 1.0
	if weighted {
		weight, err = strconv.ParseFloat(strings.TrimSpace(weightText), 64)
		if err != nil {
			return event.Entry{}, fmt.Errorf("entry %q: weight is not a number", raw)
		}
		if weight < 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
			return event.Entry{}, fmt.Errorf("entry %q: weight must be a finite non-negative number", raw)
		}
	}
	return event.Entry{EventID: id, Weight: weight}, nil
}
