package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/jwebster45206/life-engine/pkg/life"
	"github.com/jwebster45206/life-engine/pkg/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func testRules(t *testing.T) *rules.RuleSet {
	t.Helper()
	rs, err := rules.Load(rules.Tables{
		Events: map[string]rules.EventRecord{
			"1": {Event: "You were born."},
			"2": {Event: "You passed away.", Effect: map[string]int{"LIF": -1}},
		},
		Talents: map[string]rules.TalentRecord{
			"101": {Name: "Gifted", Description: "More points", Status: 1},
		},
		Ages: map[string]rules.AgeRecord{
			"0": {Event: []string{"1"}},
			"1": {Event: []string{"2"}},
		},
	}, rules.Options{Logger: quiet})
	require.NoError(t, err)
	return rs
}

func TestValidatePlayer(t *testing.T) {
	tests := []struct {
		player string
		valid  bool
	}{
		{"alice", true},
		{"player_42", true},
		{"", false},
		{"has space", false},
		{"a:b", false},
		{"tab\there", false},
		{string(make([]byte, 65)), false},
	}
	for _, tt := range tests {
		err := ValidatePlayer(tt.player)
		if tt.valid {
			assert.NoError(t, err, tt.player)
		} else {
			assert.ErrorIs(t, err, ErrInvalidPlayer, tt.player)
		}
	}
}

func TestMergeAchieved(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3, 5}, MergeAchieved([]int{3, 1}, []int{5, 2, 3}))
	assert.Equal(t, []int{}, MergeAchieved(nil, nil))
}

func TestNewLifeRecord(t *testing.T) {
	rs := testRules(t)
	l, err := life.New(rs, life.WithSeed(7), life.WithLogger(quiet))
	require.NoError(t, err)
	require.NoError(t, l.SelectTalents([]int{101}))
	require.NoError(t, l.AllocateAttributes([]int{6, 5, 5, 5}))
	initial := l.Snapshot()

	_, err = NewLifeRecord(l, "alice", initial, nil)
	require.ErrorIs(t, err, life.ErrNotTerminated)

	seq, err := l.Run()
	require.NoError(t, err)
	var years []life.Result
	for r := range seq {
		years = append(years, r)
	}

	rec, err := NewLifeRecord(l, "alice", initial, years)
	require.NoError(t, err)
	assert.Equal(t, l.ID(), rec.ID)
	assert.Equal(t, int64(7), rec.Seed)
	assert.Equal(t, 1, rec.Times)
	assert.Len(t, rec.Talents, 1)
	assert.Len(t, rec.Years, 2)
	assert.Equal(t, 6, rec.Initial.CHR)
	assert.False(t, rec.CreatedAt.IsZero())
	assert.NotEmpty(t, rec.Summary.Entries)
}

func TestMockStorage_Lives(t *testing.T) {
	m := NewMockStorage(nil)
	ctx := context.Background()

	rec := &LifeRecord{ID: uuid.New(), Seed: 3}
	require.NoError(t, m.SaveLife(ctx, rec))
	assert.Error(t, m.SaveLife(ctx, nil))

	loaded, err := m.LoadLife(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec, loaded)

	require.NoError(t, m.DeleteLife(ctx, rec.ID))
	loaded, err = m.LoadLife(ctx, rec.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestMockStorage_Profiles(t *testing.T) {
	m := NewMockStorage(nil)
	ctx := context.Background()

	p, err := m.LoadProfile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, p.Times)
	assert.Equal(t, 1, p.NextTimes())
	assert.Empty(t, p.Achieved)

	_, err = m.RecordLife(ctx, "alice", []int{10003, 10001})
	require.NoError(t, err)
	p, err = m.RecordLife(ctx, "alice", []int{10002, 10001})
	require.NoError(t, err)
	assert.Equal(t, 2, p.Times)
	assert.Equal(t, []int{10001, 10002, 10003}, p.Achieved)

	p.Achieved[0] = 0
	again, err := m.LoadProfile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 10001, again.Achieved[0])

	_, err = m.RecordLife(ctx, "bad name", nil)
	assert.ErrorIs(t, err, ErrInvalidPlayer)
}

func TestMockStorage_PingAndRules(t *testing.T) {
	rs := testRules(t)
	m := NewMockStorage(rs)
	ctx := context.Background()

	assert.NoError(t, m.Ping(ctx))
	m.SetPingError(errors.New("down"))
	assert.EqualError(t, m.Ping(ctx), "down")
	m.SetPingSuccess()
	assert.NoError(t, m.Ping(ctx))

	loaded, err := m.LoadRules(ctx)
	require.NoError(t, err)
	assert.Same(t, rs, loaded)

	_, err = NewMockStorage(nil).LoadRules(ctx)
	assert.Error(t, err)
}
