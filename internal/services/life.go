package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jwebster45206/life-engine/internal/config"
	"github.com/jwebster45206/life-engine/internal/logger"
	"github.com/jwebster45206/life-engine/pkg/grade"
	"github.com/jwebster45206/life-engine/pkg/life"
	"github.com/jwebster45206/life-engine/pkg/rules"
	"github.com/jwebster45206/life-engine/pkg/storage"
	"github.com/jwebster45206/life-engine/pkg/talent"
	"golang.org/x/text/language"
)

// ErrSeedRequired is returned when talents are chosen without the seed that
// drew their menu.
var ErrSeedRequired = errors.New("seed is required when choosing talents; fetch a menu first")

// TalentMenu is the menu a seed offers. Playing the same seed and menu size
// replays the draw.
type TalentMenu struct {
	Seed    int64            `json:"seed"`
	Picks   int              `json:"picks"`
	Talents []*talent.Talent `json:"talents"`
}

// PlayRequest describes a life to simulate. A nil Talents list picks at
// random from the menu; nil Attributes allocate at random.
type PlayRequest struct {
	Seed       int64  `json:"seed,omitempty"`
	Player     string `json:"player,omitempty"`
	MenuSize   int    `json:"menu_size,omitempty"`
	Talents    []int  `json:"talents"`
	Attributes []int  `json:"attributes"`
}

// LifeReport is an archived life plus its rendering in one language.
type LifeReport struct {
	*storage.LifeRecord
	Lang   string   `json:"lang"`
	Log    []string `json:"log"`
	Report string   `json:"report"`
}

// LifeService runs lives against one rule set and keeps their archive and
// the players' profiles in storage.
type LifeService struct {
	storage  storage.Storage
	rules    *rules.RuleSet
	maxAge   int
	menuSize int
	picks    int
	logger   *slog.Logger
}

func NewLifeService(store storage.Storage, rs *rules.RuleSet, cfg *config.Config, logger *slog.Logger) *LifeService {
	return &LifeService{
		storage:  store,
		rules:    rs,
		maxAge:   cfg.MaxAge,
		menuSize: cfg.TalentMenuSize,
		picks:    cfg.TalentPicks,
		logger:   logger,
	}
}

// Menu draws the talent menu for seed. A zero seed draws a new one and n of
// zero uses the configured menu size.
func (s *LifeService) Menu(seed int64, n int) (*TalentMenu, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: menu size must not be negative", life.ErrInvalidSelection)
	}
	if n == 0 {
		n = s.menuSize
	}
	l, err := life.New(s.rules, life.WithSeed(seed), life.WithTalentLimit(s.picks), life.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}
	return &TalentMenu{
		Seed:    l.Seed(),
		Picks:   l.TalentLimit(),
		Talents: l.OfferTalents(n),
	}, nil
}

// Play runs a life to the end, archives it and counts it against the
// player's profile.
func (s *LifeService) Play(ctx context.Context, req PlayRequest) (*storage.LifeRecord, error) {
	if req.MenuSize < 0 {
		return nil, fmt.Errorf("%w: menu size must not be negative", life.ErrInvalidSelection)
	}
	if req.Seed == 0 && len(req.Talents) > 0 {
		return nil, ErrSeedRequired
	}

	opts := []life.Option{
		life.WithSeed(req.Seed),
		life.WithMaxAge(s.maxAge),
		life.WithTalentLimit(s.picks),
		life.WithLogger(s.logger),
	}
	if req.Player != "" {
		profile, err := s.storage.LoadProfile(ctx, req.Player)
		if err != nil {
			return nil, err
		}
		opts = append(opts, life.WithProfile(profile.NextTimes(), profile.Achieved))
	}

	l, err := life.New(s.rules, opts...)
	if err != nil {
		return nil, err
	}

	menuSize := req.MenuSize
	if menuSize == 0 {
		menuSize = s.menuSize
	}
	l.OfferTalents(menuSize)
	if req.Talents == nil {
		_, err = l.RandomTalents()
	} else {
		err = l.SelectTalents(req.Talents)
	}
	if err != nil {
		return nil, err
	}

	if req.Attributes == nil {
		_, err = l.RandomAllocation()
	} else {
		err = l.AllocateAttributes(req.Attributes)
	}
	if err != nil {
		return nil, err
	}
	initial := l.Snapshot()

	seq, err := l.Run()
	if err != nil {
		return nil, err
	}
	var years []life.Result
	for result := range seq {
		years = append(years, result)
		if ctx.Err() != nil {
			break
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rec, err := storage.NewLifeRecord(l, req.Player, initial, years)
	if err != nil {
		return nil, err
	}
	if err := s.storage.SaveLife(ctx, rec); err != nil {
		return nil, err
	}
	if req.Player != "" {
		if _, err := s.storage.RecordLife(ctx, req.Player, l.Achieved()); err != nil {
			return nil, fmt.Errorf("life %s archived but profile not updated: %w", rec.ID, err)
		}
	}

	logger.WithLife(s.logger, rec.ID.String()).Info("Life simulated",
		"seed", rec.Seed,
		"player", rec.Player,
		"years", len(rec.Years))
	return rec, nil
}

// Render lays out an archived life in the language of tag.
func Render(rec *storage.LifeRecord, tag language.Tag) *LifeReport {
	tag = grade.Match(tag)
	lines := make([]string, 0, len(rec.Years))
	for _, year := range rec.Years {
		lines = append(lines, year.String())
	}
	return &LifeReport{
		LifeRecord: rec,
		Lang:       tag.String(),
		Log:        lines,
		Report:     rec.Summary.Format(grade.Printer(tag)),
	}
}

// IsClientError reports whether err was caused by the caller's choices
// rather than by the service.
func IsClientError(err error) bool {
	return errors.Is(err, ErrSeedRequired) ||
		errors.Is(err, life.ErrInvalidSelection) ||
		errors.Is(err, life.ErrConflictingTalents) ||
		errors.Is(err, life.ErrInvalidAllocation) ||
		errors.Is(err, storage.ErrInvalidPlayer)
}
