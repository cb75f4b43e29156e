package offline

import (
	"log/slog"
	"time"
)

// Stats tracks one sync run.
type Stats struct {
	SessionsPending  int
	SessionsUploaded int
	SessionsSkipped  int
}

// Syncer pushes pending journal entries to the server.
type Syncer struct {
	client  *Client
	journal *Journal
	dryRun  bool
	log     *slog.Logger
}

// NewSyncer creates a Syncer.
func NewSyncer(client *Client, journal *Journal, dryRun bool, log *slog.Logger) *Syncer {
	return &Syncer{client: client, journal: journal, dryRun: dryRun, log: log}
}

// Run uploads all pending sessions, marking each as uploaded on success.
func (s *Syncer) Run() (Stats, error) {
	var stats Stats

	pending, err := s.journal.Pending()
	if err != nil {
		return stats, err
	}
	stats.SessionsPending = len(pending)
	if len(pending) == 0 {
		s.log.Info("nothing to sync")
		return stats, nil
	}

	if s.dryRun {
		for _, sess := range pending {
			s.log.Info("would upload", "session", sess.ID, "started_at", sess.StartedAt)
		}
		return stats, nil
	}

	result, err := s.client.SendSessions(pending)
	if err != nil {
		return stats, err
	}
	stats.SessionsUploaded = result.Imported
	stats.SessionsSkipped = result.Skipped

	now := time.Now()
	for _, sess := range pending {
		if err := s.journal.MarkUploaded(sess.ID, now); err != nil {
			return stats, err
		}
	}

	s.log.Info("sync finished",
		"pending", stats.SessionsPending,
		"uploaded", stats.SessionsUploaded,
		"skipped", stats.SessionsSkipped,
	)
	return stats, nil
}
