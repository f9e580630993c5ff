package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jwebster45206/life-engine/internal/services"
)

// Backend draws talent menus and plays lives for the console.
type Backend interface {
	Name() string
	Menu(ctx context.Context, seed int64) (*services.TalentMenu, error)
	Play(ctx context.Context, req services.PlayRequest, lang string) (*services.LifeReport, error)
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// apiBackend talks to a running life-engine API.
type apiBackend struct {
	client  *http.Client
	baseURL string
}

func (b *apiBackend) Name() string { return b.baseURL }

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

func (b *apiBackend) Menu(ctx context.Context, seed int64) (*services.TalentMenu, error) {
	target := b.baseURL + "/v1/talents"
	if seed != 0 {
		target += "?seed=" + strconv.FormatInt(seed, 10)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	var menu services.TalentMenu
	if err := b.do(req, http.StatusOK, &menu); err != nil {
		return nil, fmt.Errorf("failed to draw talents: %w", err)
	}
	return &menu, nil
}

func (b *apiBackend) Play(ctx context.Context, playReq services.PlayRequest, lang string) (*services.LifeReport, error) {
	jsonData, err := json.Marshal(playReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	target := b.baseURL + "/v1/lives?lang=" + url.QueryEscape(lang)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var report services.LifeReport
	if err := b.do(req, http.StatusCreated, &report); err != nil {
		return nil, fmt.Errorf("failed to play life: %w", err)
	}
	return &report, nil
}

func (b *apiBackend) do(req *http.Request, want int, into any) error {
	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != want {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil || errorResp.Error == "" {
			return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return fmt.Errorf("%s", errorResp.Error)
	}

	if err := json.Unmarshal(body, into); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
