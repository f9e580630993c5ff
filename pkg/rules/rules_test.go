package rules

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"testing"

	"github.com/jwebster45206/life-engine/pkg/attr"
	"github.com/jwebster45206/life-engine/pkg/condition"
	"github.com/jwebster45206/life-engine/pkg/event"
	"github.com/jwebster45206/life-engine/pkg/grade"
	"github.com/jwebster45206/life-engine/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func validTables() Tables {
	return Tables{
		Events: map[string]EventRecord{
			"10001": {ID: 10001, Event: "You were born.", Once: true},
			"10002": {
				Event:   "You studied hard.",
				Include: "INT>=5",
				Effect:  map[string]int{"INT": 1, "SPR": -1},
				Branch:  []string{"INT>=9:10003"},
			},
			"10003": {Event: "You won a scholarship.", NoRandom: true, Effect: map[string]int{"MNY": 2}},
			"10004": {Event: "You passed away.", Effect: map[string]int{"LIF": -1}, Include: "AGE>=1"},
		},
		Talents: map[string]TalentRecord{
			"1001": {Name: "Bookworm", Description: "Intelligence +2", Grade: 1, Effect: map[string]int{"INT": 2}, Exclusive: []int{1002}},
			"1002": {Name: "Dunce", Description: "Intelligence -2", Effect: map[string]int{"INT": -2}},
			"1003": {Name: "Studious", Description: "Extra study", Grade: 2, Condition: "INT>=5", Effect: map[string]int{"RDM": 1}, Status: 1},
		},
		Ages: map[string]AgeRecord{
			"0": {Event: []string{"10001"}},
			"1": {Age: 1, Event: []string{"10002*2", "10004*0.5", "10003*0"}},
		},
	}
}

func TestLoad(t *testing.T) {
	rs, err := Load(validTables(), Options{Logger: quiet})
	require.NoError(t, err)

	assert.Equal(t, 4, rs.NumEvents())
	assert.Equal(t, 3, rs.NumTalents())
	assert.Equal(t, 2, rs.NumAges())
	assert.Equal(t, []int{10001, 10002, 10003, 10004}, rs.EventIDs())

	ev, ok := rs.Event(10002)
	require.True(t, ok)
	assert.Equal(t, state.Effect{state.Fixed(attr.INT, 1), state.Fixed(attr.SPR, -1)}, ev.Effect)
	require.Len(t, ev.Branches, 1)
	assert.Equal(t, 10003, ev.Branches[0].Target)
	assert.NotNil(t, ev.IncludeWhen)
	assert.Nil(t, ev.ExcludeWhen)

	tl, ok := rs.Talent(1003)
	require.True(t, ok)
	assert.True(t, tl.Conditional())
	assert.Equal(t, state.Effect{state.RandomCoreAttribute(1)}, tl.Effect)
	assert.Equal(t, 1, tl.Status)

	talents := rs.Talents()
	require.Len(t, talents, 3)
	assert.Equal(t, 1001, talents[0].ID)

	assert.Equal(t, []event.Entry{
		{EventID: 10002, Weight: 2},
		{EventID: 10004, Weight: 0.5},
		{EventID: 10003, Weight: 0},
	}, rs.AgeEntries(1))
	assert.Empty(t, rs.AgeEntries(50))

	assert.Equal(t, "Excellent", rs.Grades().Grade(attr.INT, 7).Judge)
}

func TestLoad_SharesConditionCache(t *testing.T) {
	cache := condition.NewCache()
	rs, err := Load(validTables(), Options{Logger: quiet, Cache: cache})
	require.NoError(t, err)

	assert.Same(t, cache, rs.Conditions())
	// INT>=5 appears twice but is compiled once.
	assert.Equal(t, 3, cache.Len())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Tables)
		table  string
		id     string
		reason string
	}{
		{
			name:   "malformed include",
			mutate: func(t *Tables) { t.Events["10001"] = EventRecord{Event: "x", Include: "INT>>5"} },
			table:  TableEvents, id: "10001", reason: "malformed condition",
		},
		{
			name:   "positive LIF effect",
			mutate: func(t *Tables) { t.Events["10001"] = EventRecord{Event: "x", Effect: map[string]int{"LIF": 1}} },
			table:  TableEvents, id: "10001", reason: "revive",
		},
		{
			name:   "effect on a set attribute",
			mutate: func(t *Tables) { t.Events["10001"] = EventRecord{Event: "x", Effect: map[string]int{"EVT": 1}} },
			table:  TableEvents, id: "10001", reason: "set attribute",
		},
		{
			name:   "effect on an unknown attribute",
			mutate: func(t *Tables) { t.Talents["1002"] = TalentRecord{Name: "x", Effect: map[string]int{"LCK": 1}} },
			table:  TableTalents, id: "1002", reason: "unknown attribute",
		},
		{
			name:   "branch target missing",
			mutate: func(t *Tables) { t.Events["10001"] = EventRecord{Event: "x", Branch: []string{"AGE>1:99999"}} },
			table:  TableEvents, id: "10001", reason: "branch target 99999",
		},
		{
			name:   "branch without target",
			mutate: func(t *Tables) { t.Events["10001"] = EventRecord{Event: "x", Branch: []string{"AGE>1"}} },
			table:  TableEvents, id: "10001", reason: "no target",
		},
		{
			name:   "id mismatch",
			mutate: func(t *Tables) { t.Events["10001"] = EventRecord{ID: 7, Event: "x"} },
			table:  TableEvents, id: "10001", reason: "does not match",
		},
		{
			name:   "missing exclusive talent",
			mutate: func(t *Tables) { t.Talents["1002"] = TalentRecord{Name: "x", Exclusive: []int{4242}} },
			table:  TableTalents, id: "1002", reason: "4242",
		},
		{
			name:   "talent grade out of range",
			mutate: func(t *Tables) { t.Talents["1002"] = TalentRecord{Name: "x", Grade: 5} },
			table:  TableTalents, id: "1002", reason: "out of range",
		},
		{
			name:   "unknown age event",
			mutate: func(t *Tables) { t.Ages["2"] = AgeRecord{Event: []string{"55555"}} },
			table:  TableAges, id: "2", reason: "event 55555",
		},
		{
			name:   "negative weight",
			mutate: func(t *Tables) { t.Ages["2"] = AgeRecord{Event: []string{"10001*-1"}} },
			table:  TableAges, id: "2", reason: "non-negative",
		},
		{
			name: "unordered grade table",
			mutate: func(t *Tables) {
				t.Grades = grade.Tables{attr.AGE: {{Min: 5, Judge: "a"}, {Min: 1, Judge: "b"}}}
			},
			table: TableGrades, id: "AGE", reason: "strictly increasing",
		},
		{
			name:   "grade table for an ungraded key",
			mutate: func(t *Tables) { t.Grades = grade.Tables{attr.LIF: {{Min: 0, Judge: "a"}}} },
			table:  TableGrades, id: "LIF", reason: "not a graded attribute",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tables := validTables()
			tt.mutate(&tables)

			rs, err := Load(tables, Options{Logger: quiet})
			require.Error(t, err)
			assert.Nil(t, rs)
			assert.ErrorIs(t, err, ErrLoad)

			var le *LoadError
			require.True(t, errors.As(err, &le))
			assert.Equal(t, tt.table, le.Table)
			assert.Equal(t, tt.id, le.ID)
			assert.Contains(t, err.Error(), tt.reason)
		})
	}
}

func TestLoad_ConditionErrorIsLocated(t *testing.T) {
	tables := validTables()
	tables.Talents["1003"] = TalentRecord{Name: "Broken", Condition: "INT>=5 |"}

	_, err := Load(tables, Options{Logger: quiet})
	require.ErrorIs(t, err, condition.ErrMalformedCondition)

	var ce *condition.Error
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "INT>=5 |", ce.Condition)
}

func TestLoad_ReportsEveryProblem(t *testing.T) {
	tables := validTables()
	tables.Events["10001"] = EventRecord{Event: ""}
	tables.Talents["1002"] = TalentRecord{Name: "x", Condition: "XYZ>1"}
	tables.Ages["3"] = AgeRecord{Event: []string{"abc"}}

	_, err := Load(tables, Options{Logger: quiet})
	require.Error(t, err)

	joined, ok := err.(interface{ Unwrap() []error })
	require.True(t, ok)
	assert.Len(t, joined.Unwrap(), 3)
}

func TestParseEntry(t *testing.T) {
	tests := []struct {
		raw      string
		expected event.Entry
		wantErr  bool
	}{
		{raw: "10001", expected: event.Entry{EventID: 10001, Weight: 1}},
		{raw: " 10001 * 0.25 ", expected: event.Entry{EventID: 10001, Weight: 0.25}},
		{raw: "10001*0", expected: event.Entry{EventID: 10001, Weight: 0}},
		{raw: "10001*2", expected: event.Entry{EventID: 10001, Weight: 2}},
		{raw: "abc", wantErr: true},
		{raw: "10001*x", wantErr: true},
		{raw: "10001*NaN", wantErr: true},
		{raw: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseEntry(tt.raw)
		if tt.wantErr {
			assert.Error(t, err, "ParseEntry(%q)", tt.raw)
			continue
		}
		require.NoError(t, err, "ParseEntry(%q)", tt.raw)
		assert.Equal(t, tt.expected, got)
	}
}

func TestLoadDir_JSON(t *testing.T) {
	rs, err := LoadDir("../../data", quiet)
	require.NoError(t, err)

	assert.Positive(t, rs.NumEvents())
	assert.GreaterOrEqual(t, rs.NumTalents(), 10)
	assert.NotEmpty(t, rs.AgeEntries(0))

	// The last row only holds an unconditional death, so every life ends.
	last := rs.AgeEntries(120)
	require.Len(t, last, 1)
	ev, ok := rs.Event(last[0].EventID)
	require.True(t, ok)
	assert.Nil(t, ev.IncludeWhen)
	assert.Equal(t, state.Effect{state.Fixed(attr.LIF, -1)}, ev.Effect)
}

func TestLoadDir_YAML(t *testing.T) {
	rs, err := LoadDir("testdata/yaml", quiet)
	require.NoError(t, err)

	assert.Equal(t, 4, rs.NumEvents())
	assert.Equal(t, 2, rs.NumTalents())
	assert.Equal(t, []event.Entry{{EventID: 10002, Weight: 3}, {EventID: 10004, Weight: 0.5}}, rs.AgeEntries(1))

	ev, _ := rs.Event(10003)
	assert.True(t, ev.NoRandom)

	short, _ := rs.Talent(1002)
	tall, _ := rs.Talent(1001)
	assert.True(t, tall.ExclusiveWith(short))

	assert.Equal(t, "Ageless", rs.Grades().Grade(attr.AGE, 2).Judge)
	assert.Equal(t, "Excellent", rs.Grades().Grade(attr.CHR, 7).Judge)
}

func TestLoadDir_Missing(t *testing.T) {
	_, err := LoadDir(t.TempDir(), quiet)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLoad)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Contains(t, err.Error(), "events")
	assert.Contains(t, err.Error(), "talents")
}

func TestRuleSet_Unreachable(t *testing.T) {
	rs, err := Load(validTables(), Options{Logger: quiet})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, rs.Ages())
	assert.Empty(t, rs.Unreachable())

	tables := validTables()
	tables.Events["10006"] = EventRecord{Event: "Only an orphan leads here.", NoRandom: true}
	tables.Events["10005"] = EventRecord{Event: "Nobody draws this.", Branch: []string{":10006"}}
	tables.Events["10007"] = EventRecord{Event: "Listed but never drawn."}
	tables.Ages["2"] = AgeRecord{Event: []string{"10007*0"}}

	rs, err = Load(tables, Options{Logger: quiet})
	require.NoError(t, err)
	assert.Equal(t, []int{10005, 10006, 10007}, rs.Unreachable())
}
