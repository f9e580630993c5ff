package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jwebster45206/life-engine/internal/config"
	"github.com/jwebster45206/life-engine/internal/services"
	"github.com/jwebster45206/life-engine/pkg/rules"
	"github.com/jwebster45206/life-engine/pkg/state"
	"github.com/jwebster45206/life-engine/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
	Level: slog.LevelError, // Reduce noise in tests
}))

var testConfig = &config.Config{
	MaxAge:         500,
	TalentMenuSize: 10,
	TalentPicks:    3,
	DefaultLang:    "en",
}

func sampleRules(t *testing.T) *rules.RuleSet {
	t.Helper()
	rs, err := rules.LoadDir("../../data", testLogger)
	require.NoError(t, err)
	return rs
}

type testServer struct {
	mux     *http.ServeMux
	storage *storage.MockStorage
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	rs := sampleRules(t)
	store := storage.NewMockStorage(rs)

	mux := http.NewServeMux()
	mux.Handle("/health", NewHealthHandler(store, rs, testLogger))
	service := services.NewLifeService(store, rs, testConfig, testLogger)
	mux.Handle("/v1/talents", NewTalentHandler(service, testLogger))
	lives := NewLifeHandler(store, service, testConfig.DefaultLang, testLogger)
	mux.Handle("/v1/lives", lives)
	mux.Handle("/v1/lives/", lives)
	mux.Handle("/v1/players/", NewPlayerHandler(store, testLogger))
	return &testServer{mux: mux, storage: store}
}

func (s *testServer) do(t *testing.T, method, target string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rr := httptest.NewRecorder()
	s.mux.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v), rr.Body.String())
	return v
}

// allocate spreads total over the four allocatable attributes.
func allocate(total int) []int {
	values := make([]int, 4)
	for i := range values {
		v := min(total, state.MaxAllocated)
		values[i] = v
		total -= v
	}
	return values
}

func TestHealthHandler_ServeHTTP(t *testing.T) {
	rs := sampleRules(t)

	tests := []struct {
		name           string
		pingErr        error
		expectedStatus int
		expectedHealth string
		expectedStore  string
	}{
		{"all healthy", nil, http.StatusOK, "healthy", "healthy"},
		{"unhealthy storage", errors.New("connection failed"), http.StatusServiceUnavailable, "degraded", "unhealthy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMockStorage(rs)
			store.SetPingError(tt.pingErr)
			handler := NewHealthHandler(store, rs, testLogger)

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			response := decode[HealthResponse](t, rr)
			assert.Equal(t, tt.expectedHealth, response.Status)
			assert.Equal(t, "life-engine", response.Service)
			assert.Equal(t, tt.expectedStore, response.Components["storage"])
			assert.WithinDuration(t, time.Now(), response.Timestamp, time.Second)

			ruleInfo, ok := response.Components["rules"].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, "healthy", ruleInfo["status"])
			assert.Positive(t, ruleInfo["events"])
		})
	}
}

func TestTalentHandler(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, http.MethodGet, "/v1/talents?seed=42&n=5", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	menu := decode[services.TalentMenu](t, rr)
	assert.Equal(t, int64(42), menu.Seed)
	assert.Equal(t, 3, menu.Picks)
	assert.Len(t, menu.Talents, 5)

	again := decode[services.TalentMenu](t, s.do(t, http.MethodGet, "/v1/talents?seed=42&n=5", nil))
	for i := range menu.Talents {
		assert.Equal(t, menu.Talents[i].ID, again.Talents[i].ID)
	}

	fresh := decode[services.TalentMenu](t, s.do(t, http.MethodGet, "/v1/talents", nil))
	assert.NotZero(t, fresh.Seed)
	assert.Len(t, fresh.Talents, 10)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/v1/talents?seed=abc", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/v1/talents?n=0", nil).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, s.do(t, http.MethodPost, "/v1/talents", nil).Code)
}

func TestLifeHandler_RandomLife(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, http.MethodPost, "/v1/lives", services.PlayRequest{Seed: 7, Player: "alice"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[services.LifeReport](t, rr)

	require.NotNil(t, created.LifeRecord)
	assert.Equal(t, int64(7), created.Seed)
	assert.Equal(t, "alice", created.Player)
	assert.Equal(t, 1, created.Times)
	assert.Len(t, created.Talents, 3)
	assert.NotEmpty(t, created.Years)
	assert.Len(t, created.Log, len(created.Years))
	assert.Equal(t, "en", created.Lang)
	assert.True(t, strings.HasPrefix(created.Report, "== Life Summary =="), created.Report)

	archived, err := s.storage.LoadLife(t.Context(), created.ID)
	require.NoError(t, err)
	require.NotNil(t, archived)

	profile := decode[storage.Profile](t, s.do(t, http.MethodGet, "/v1/players/alice", nil))
	assert.Equal(t, 1, profile.Times)
	assert.NotEmpty(t, profile.Achieved)

	second := decode[services.LifeReport](t, s.do(t, http.MethodPost, "/v1/lives", services.PlayRequest{Seed: 7, Player: "alice"}))
	assert.Equal(t, 2, second.Times)
}

func TestLifeHandler_Reproducible(t *testing.T) {
	s := newTestServer(t)

	first := decode[services.LifeReport](t, s.do(t, http.MethodPost, "/v1/lives", services.PlayRequest{Seed: 1234}))
	second := decode[services.LifeReport](t, s.do(t, http.MethodPost, "/v1/lives", services.PlayRequest{Seed: 1234}))

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.Log, second.Log)
	assert.Equal(t, first.Summary, second.Summary)
}

func TestLifeHandler_ChosenTalents(t *testing.T) {
	s := newTestServer(t)

	menu := decode[services.TalentMenu](t, s.do(t, http.MethodGet, "/v1/talents?seed=11&n=5", nil))
	chosen := menu.Talents[0]
	total := state.DefaultTotal + chosen.Status

	rr := s.do(t, http.MethodPost, "/v1/lives", services.PlayRequest{
		Seed:       11,
		MenuSize:   5,
		Talents:    []int{chosen.ID},
		Attributes: allocate(total),
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[services.LifeReport](t, rr)
	require.Len(t, created.Talents, 1)
	assert.Equal(t, chosen.ID, created.Talents[0].ID)
}

func TestLifeHandler_BadRequests(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		body   any
		reason string
	}{
		{"invalid json", "{not json", "Invalid JSON"},
		{"unknown talent", services.PlayRequest{Seed: 5, Talents: []int{999}}, "unknown talent 999"},
		{"too many talents", services.PlayRequest{Seed: 5, Talents: []int{1, 2, 3, 4}}, "at most 3"},
		{"talents without seed", services.PlayRequest{Talents: []int{1001}}, "seed is required"},
		{"allocation over total", services.PlayRequest{Seed: 5, Talents: []int{}, Attributes: []int{5, 5, 5, 6}}, "add up to 21"},
		{"allocation above cap", services.PlayRequest{Seed: 5, Talents: []int{}, Attributes: []int{11, 9, 0, 0}}, "CHR=11"},
		{"negative menu", services.PlayRequest{Seed: 5, MenuSize: -1}, "menu size"},
		{"bad player", services.PlayRequest{Seed: 5, Player: "two words"}, "invalid player"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := s.do(t, http.MethodPost, "/v1/lives", tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			response := decode[ErrorResponse](t, rr)
			assert.Contains(t, response.Error, tt.reason)
		})
	}
}

func TestLifeHandler_ReadAndDelete(t *testing.T) {
	s := newTestServer(t)
	created := decode[services.LifeReport](t, s.do(t, http.MethodPost, "/v1/lives", services.PlayRequest{Seed: 3}))
	path := "/v1/lives/" + created.ID.String()

	zh := decode[services.LifeReport](t, s.do(t, http.MethodGet, path+"?lang=zh", nil))
	assert.Equal(t, "zh", zh.Lang)
	assert.True(t, strings.HasPrefix(zh.Report, "==人生总结=="), zh.Report)
	assert.Equal(t, created.Log, zh.Log)

	header := decode[services.LifeReport](t, s.do(t, http.MethodGet, path, nil, "Accept-Language", "zh-CN,zh;q=0.9,en;q=0.5"))
	assert.Equal(t, "zh", header.Lang)

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, path, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, path, nil).Code)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/v1/lives/not-a-uuid", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/v1/lives", nil).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, s.do(t, http.MethodPut, path, nil).Code)
}

func TestPlayerHandler(t *testing.T) {
	s := newTestServer(t)

	fresh := decode[storage.Profile](t, s.do(t, http.MethodGet, "/v1/players/bob", nil))
	assert.Equal(t, "bob", fresh.Player)
	assert.Equal(t, 0, fresh.Times)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/v1/players/", nil).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, s.do(t, http.MethodPost, "/v1/players/bob", nil).Code)
}
