package main

import (
	"io"
	"log"
	"math/rand"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sportbuddy/app/internal/config"
	"github.com/sportbuddy/app/internal/content"
	"github.com/sportbuddy/app/internal/session"
	"github.com/sportbuddy/app/internal/tui"
)

func main() {
	os.Exit(run())
}

// run returns the exit code so deferred cleanup happens before exiting.
func run() int {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Error loading configuration: %v", err)
		return 1
	}

	// The terminal belongs to the program; logs go to a file or nowhere.
	if path := os.Getenv("SPORTBUDDY_TUI_LOG"); path != "" {
		f, err := tea.LogToFile(path, "sportbuddy")
		if err != nil {
			log.Printf("Error opening log file: %v", err)
			return 1
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	opts := []content.Option{}
	if cfg.Seed != 0 {
		opts = append(opts, content.WithRand(rand.New(rand.NewSource(cfg.Seed))))
	}
	gen, err := content.New(opts...)
	if err != nil {
		log.Printf("Error loading content tables: %v", err)
		return 1
	}

	sess, err := session.New("tui", gen, session.Options{
		ReplyDelayMin: cfg.ReplyDelayMin,
		ReplyDelayMax: cfg.ReplyDelayMax,
	})
	if err != nil {
		log.Printf("Error starting session: %v", err)
		return 1
	}
	defer sess.Close()

	log.Printf("TUI starting (replies after %v-%v)", cfg.ReplyDelayMin, cfg.ReplyDelayMax)
	if _, err := tea.NewProgram(tui.New(sess), tea.WithAltScreen()).Run(); err != nil {
		log.Printf("Error running program: %v", err)
		return 1
	}
	return 0
}
