package main

import (
	"context"

	"github.com/jwebster45206/life-engine/internal/services"
	"github.com/jwebster45206/life-engine/pkg/grade"
)

// localBackend plays lives in-process. Archives and profiles live in memory
// for the length of the session.
type localBackend struct {
	service *services.LifeService
	dataDir string
}

func (b *localBackend) Name() string { return "local rules in " + b.dataDir }

func (b *localBackend) Menu(ctx context.Context, seed int64) (*services.TalentMenu, error) {
	return b.service.Menu(seed, 0)
}

func (b *localBackend) Play(ctx context.Context, req services.PlayRequest, lang string) (*services.LifeReport, error) {
	rec, err := b.service.Play(ctx, req)
	if err != nil {
		return nil, err
	}
	return services.Render(rec, grade.ParseTag(lang)), nil
}
