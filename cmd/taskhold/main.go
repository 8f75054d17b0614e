package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/tgienger/taskhold/internal/session"
	"github.com/tgienger/taskhold/internal/storage"
	"github.com/tgienger/taskhold/internal/tasks"
	"github.com/tgienger/taskhold/internal/ui"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("taskhold %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	dbPath, err := storage.DefaultPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving data directory: %v\n", err)
		os.Exit(1)
	}

	db, err := storage.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing storage: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// The TUI owns stdout, so logs go to a file next to the database.
	logFile, err := os.OpenFile(filepath.Join(filepath.Dir(dbPath), "taskhold.log"),
		os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	log := zerolog.New(logFile).With().Timestamp().Logger()

	sess := session.NewStore(db, db, log)
	store := tasks.NewStore(db, sess, log)

	app := ui.NewApp(sess, store)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running application: %v\n", err)
		os.Exit(1)
	}
}
