package storage

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/jwebster45206/life-engine/pkg/rules"
)

// MockStorage is a mock implementation of Storage for testing
type MockStorage struct {
	mu        sync.RWMutex
	lives     map[uuid.UUID]*LifeRecord
	profiles  map[string]*Profile
	rules     *rules.RuleSet
	pingError error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage serving rs from LoadRules
func NewMockStorage(rs *rules.RuleSet) *MockStorage {
	return &MockStorage{
		lives:    make(map[uuid.UUID]*LifeRecord),
		profiles: make(map[string]*Profile),
		rules:    rs,
	}
}

// SetPingSuccess configures the mock to succeed on ping
func (m *MockStorage) SetPingSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = nil
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// Ping mocks storage ping
func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

// Close mocks storage close
func (m *MockStorage) Close() error {
	return nil
}

// SaveLife mocks archiving a life
func (m *MockStorage) SaveLife(ctx context.Context, rec *LifeRecord) error {
	if rec == nil {
		return errors.New("life record cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lives[rec.ID] = rec
	return nil
}

// LoadLife mocks loading an archived life
func (m *MockStorage) LoadLife(ctx context.Context, id uuid.UUID) (*LifeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, exists := m.lives[id]
	if !exists {
		return nil, nil // Return nil for not found
	}
	return rec, nil
}

// DeleteLife mocks deleting an archived life
func (m *MockStorage) DeleteLife(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.lives, id)
	return nil
}

// LoadProfile mocks loading a player profile
func (m *MockStorage) LoadProfile(ctx context.Context, player string) (*Profile, error) {
	if err := ValidatePlayer(player); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, exists := m.profiles[player]
	if !exists {
		return &Profile{Player: player, Achieved: []int{}}, nil
	}
	return clonedProfile(p), nil
}

// RecordLife mocks counting a finished life against a profile
func (m *MockStorage) RecordLife(ctx context.Context, player string, achieved []int) (*Profile, error) {
	if err := ValidatePlayer(player); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, exists := m.profiles[player]
	if !exists {
		p = &Profile{Player: player}
		m.profiles[player] = p
	}
	p.Times++
	p.Achieved = MergeAchieved(p.Achieved, achieved)
	return clonedProfile(p), nil
}

// LoadRules returns the rule set the mock was created with
func (m *MockStorage) LoadRules(ctx context.Context) (*rules.RuleSet, error) {
	if m.rules == nil {
		return nil, errors.New("no rules configured")
	}
	return m.rules, nil
}

func clonedProfile(p *Profile) *Profile {
	return &Profile{Player: p.Player, Times: p.Times, Achieved: slices.Clone(p.Achieved)}
}
