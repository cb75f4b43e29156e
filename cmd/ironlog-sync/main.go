package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/claude/ironlog/internal/offline"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "ironlog server URL (e.g. https://ironlog.tail1234.ts.net)")
	apiKey := flag.String("api-key", os.Getenv("IRONLOG_AUTH_API_KEY"), "import API key (defaults to IRONLOG_AUTH_API_KEY)")
	journalDir := flag.String("journal", defaultJournalDir(), "path to the offline journal directory")
	dryRun := flag.Bool("dry-run", false, "list pending sessions but don't send them")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("ironlog-sync", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *serverURL == "" && !*dryRun {
		fmt.Fprintf(os.Stderr, "Usage: ironlog-sync -server <URL> [-api-key KEY] [-journal DIR] [-dry-run]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}
	*serverURL = strings.TrimRight(*serverURL, "/")

	journal, err := offline.Open(*journalDir)
	if err != nil {
		log.Error("failed to open journal", "dir", *journalDir, "error", err)
		os.Exit(1)
	}
	defer journal.Close()

	client := offline.NewClient(*serverURL, *apiKey)
	syncer := offline.NewSyncer(client, journal, *dryRun, log)

	stats, err := syncer.Run()
	if err != nil {
		log.Error("sync failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("pending: %d  uploaded: %d  skipped: %d\n",
		stats.SessionsPending, stats.SessionsUploaded, stats.SessionsSkipped)
}

func defaultJournalDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ironlog"
	}
	return filepath.Join(home, ".ironlog")
}
