package main

import (
	"flag"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/drbiga/lsuadhd-companion/internal/app"
	"github.com/drbiga/lsuadhd-companion/internal/cache"
	"github.com/drbiga/lsuadhd-companion/internal/client"
	"github.com/drbiga/lsuadhd-companion/internal/config"
	"github.com/drbiga/lsuadhd-companion/internal/logging"
	"github.com/drbiga/lsuadhd-companion/internal/tablock"
)

func main() {
	configPath := flag.String("config", "", "Path to the YAML config file")
	participant := flag.String("participant", "", "Participant name (required)")
	token := flag.String("token", "", "Backend auth token (overrides config)")
	takeover := flag.Bool("takeover", false, "Claim session ownership from any other running instance")
	flag.Parse()

	if *participant == "" {
		fmt.Fprintln(os.Stderr, "Error: -participant is required")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *token != "" {
		cfg.Backend.Token = *token
	}
	if cfg.Backend.WSURL == "" {
		cfg.Backend.WSURL = deriveWSBase(cfg.Backend.BaseURL)
	}

	logging.Init(cfg.Log.File, cfg.Log.MaxMB)

	// The ownership files live next to the snapshot.
	store := cache.NewStore(cfg.Session.StateDir)
	arbiter := tablock.New(filepath.Dir(store.Path()), tablock.NewToken(), *takeover)

	m := app.New(cfg, *participant, app.Deps{
		Backend: client.NewBackend(cfg.Backend.BaseURL, cfg.Backend.Token),
		Feed:    client.NewProgressFeed(cfg.Backend.WSURL, cfg.Backend.Token),
		Agent:   client.NewAgent(cfg.Agent.BaseURL),
		Device:  client.NewFeedbackDevice(cfg.Feedback.BaseURL),
		Survey:  client.NewSurvey(cfg.Survey.APIURL, cfg.Survey.APIToken),
		Store:   store,
		Arbiter: arbiter,
	})
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// deriveWSBase converts http://host:port → ws://host:port
func deriveWSBase(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "ws://localhost:8000"
	}
	scheme := "ws"
	if strings.HasPrefix(u.Scheme, "https") {
		scheme = "wss"
	}
	return fmt.Sprintf("%s://%s", scheme, u.Host)
}
