package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jwebster45206/life-engine/internal/config"
	"github.com/jwebster45206/life-engine/internal/logger"
	"github.com/jwebster45206/life-engine/internal/services"
	"github.com/jwebster45206/life-engine/pkg/rules"
	"github.com/jwebster45206/life-engine/pkg/storage"
)

type ConsoleConfig struct {
	APIBaseURL string
	Player     string
	Lang       string
	Seed       int64
	Local      bool
	Timeout    time.Duration
}

func main() {
	cfg := &ConsoleConfig{
		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8080"),
		Player:     getEnv("PLAYER", ""),
		Lang:       getEnv("LANG_TAG", "en"),
		Timeout:    30 * time.Second,
	}
	flag.BoolVar(&cfg.Local, "local", false, "play with the rules in DATA_DIR instead of the API")
	flag.Int64Var(&cfg.Seed, "seed", 0, "seed of the first life (0 draws one)")
	flag.StringVar(&cfg.Player, "player", cfg.Player, "player name for run counting and achievements")
	flag.StringVar(&cfg.Lang, "lang", cfg.Lang, "summary language, e.g. en or zh")
	flag.Parse()

	appCfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Logs would corrupt the alt screen; send them to LOG_FILE when set.
	var logOut io.Writer = io.Discard
	if path := os.Getenv("LOG_FILE"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer func() {
			_ = f.Close()
		}()
		logOut = f
	}
	log := logger.SetupWriter(appCfg, logOut)

	backend, err := chooseBackend(cfg, appCfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	log.Info("Console starting", "backend", backend.Name(), "player", cfg.Player, "lang", cfg.Lang)

	p := tea.NewProgram(NewConsoleUI(cfg, backend),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

// chooseBackend prefers a running API and falls back to local rules.
func chooseBackend(cfg *ConsoleConfig, appCfg *config.Config, log *slog.Logger) (Backend, error) {
	if !cfg.Local {
		client := &http.Client{
			Timeout: cfg.Timeout,
		}
		if testConnection(client, cfg.APIBaseURL) {
			return &apiBackend{client: client, baseURL: cfg.APIBaseURL}, nil
		}
		log.Warn("API unreachable, using local rules", "api", cfg.APIBaseURL)
	}

	rs, err := rules.LoadDir(appCfg.DataDir, log)
	if err != nil {
		return nil, fmt.Errorf("could not reach the API and failed to load rules from %s:\n%w", appCfg.DataDir, err)
	}
	store := storage.NewMockStorage(rs)
	return &localBackend{
		service: services.NewLifeService(store, rs, appCfg, log),
		dataDir: appCfg.DataDir,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
