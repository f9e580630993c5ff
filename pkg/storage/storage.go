package storage

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/life-engine/pkg/grade"
	"github.com/jwebster45206/life-engine/pkg/life"
	"github.com/jwebster45206/life-engine/pkg/rules"
	"github.com/jwebster45206/life-engine/pkg/state"
	"github.com/jwebster45206/life-engine/pkg/talent"
)

// Storage defines a unified interface for all storage operations
// This interface combines life archives and player profiles (Redis) with
// rule table loading (filesystem)
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Life archive operations (Redis-backed)
	SaveLife(ctx context.Context, rec *LifeRecord) error
	LoadLife(ctx context.Context, id uuid.UUID) (*LifeRecord, error)
	DeleteLife(ctx context.Context, id uuid.UUID) error

	// Player profile operations (Redis-backed)
	// LoadProfile returns an empty profile for a player with no finished lives
	LoadProfile(ctx context.Context, player string) (*Profile, error)
	// RecordLife counts a finished life and merges its achieved events
	RecordLife(ctx context.Context, player string, achieved []int) (*Profile, error)

	// Rule tables (filesystem-backed)
	LoadRules(ctx context.Context) (*rules.RuleSet, error)
}

var ErrInvalidPlayer = errors.New("invalid player name")

// ValidatePlayer checks a player name for use in storage keys.
func ValidatePlayer(player string) error {
	if player == "" || len(player) > 64 {
		return ErrInvalidPlayer
	}
	if strings.ContainsAny(player, ": \t\r\n") {
		return ErrInvalidPlayer
	}
	return nil
}

// Profile is a player's history across lives.
type Profile struct {
	Player   string `json:"player"`
	Times    int    `json:"times"`    // finished lives
	Achieved []int  `json:"achieved"` // every event ever triggered, sorted
}

// NextTimes is the run counter of the player's next life.
func (p *Profile) NextTimes() int {
	return p.Times + 1
}

// MergeAchieved returns the sorted union of two achieved-event lists.
func MergeAchieved(a, b []int) []int {
	merged := make([]int, 0, len(a)+len(b))
	merged = append(merged, a...)
	merged = append(merged, b...)
	slices.Sort(merged)
	return slices.Compact(merged)
}

// LifeRecord is the archived form of a finished life.
type LifeRecord struct {
	ID        uuid.UUID        `json:"id"`
	Seed      int64            `json:"seed"`
	Player    string           `json:"player,omitempty"`
	Times     int              `json:"times"`
	Talents   []*talent.Talent `json:"talents"`
	Selection []talent.Trigger `json:"selection,omitempty"`
	Initial   state.Snapshot   `json:"initial"`
	Years     []life.Result    `json:"years"`
	Summary   grade.Summary    `json:"summary"`
	CreatedAt time.Time        `json:"created_at"`
}

// NewLifeRecord captures a terminated life. initial is the snapshot taken
// after allocation, before the first year.
func NewLifeRecord(l *life.Life, player string, initial state.Snapshot, years []life.Result) (*LifeRecord, error) {
	summary, err := l.Summary()
	if err != nil {
		return nil, err
	}
	return &LifeRecord{
		ID:        l.ID(),
		Seed:      l.Seed(),
		Player:    player,
		Times:     l.Times(),
		Talents:   l.Talents(),
		Selection: l.SelectionLog(),
		Initial:   initial,
		Years:     years,
		Summary:   summary,
		CreatedAt: time.Now().UTC(),
	}, nil
}
