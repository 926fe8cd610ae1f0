package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jwebster45206/dungeon-engine/internal/config"
)

type ConsoleConfig struct {
	APIBaseURL string        `env:"API_BASE_URL" envDefault:"http://localhost:8080"`
	PlayerName string        `env:"PLAYER_NAME" envDefault:"Adventurer"`
	Timeout    time.Duration `env:"CONSOLE_TIMEOUT" envDefault:"30s"`
}

func main() {
	var cfg ConsoleConfig
	if err := config.ParseEnv(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if len(os.Args) > 1 {
		cfg.PlayerName = os.Args[1]
	}

	api := NewAPIClient(cfg.APIBaseURL, &http.Client{Timeout: cfg.Timeout})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()
	if !api.Health(ctx) {
		fmt.Fprintf(os.Stderr, "Could not connect to API. Please ensure the API is running.\nTry: docker-compose up -d\n")
		os.Exit(1)
	}

	player, err := api.CreatePlayer(ctx, cfg.PlayerName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create player: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(NewConsoleUI(&cfg, api, player),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
