package behavior

import (
	"time"

	"github.com/rs/zerolog"
)

// retentionWindow matches the widest derivation window; events older than
// this contribute to no trait.
const retentionWindow = 30 * 24 * time.Hour

// CleanupJob prunes events that have aged out of every derivation window.
// It should be scheduled to run daily.
type CleanupJob struct {
	repo *Repository
	log  zerolog.Logger
}

// NewCleanupJob creates a new event retention job.
func NewCleanupJob(repo *Repository, log zerolog.Logger) *CleanupJob {
	return &CleanupJob{
		repo: repo,
		log:  log.With().Str("job", "event_retention").Logger(),
	}
}

// Run removes events older than the retention window.
func (j *CleanupJob) Run() error {
	cutoff := time.Now().Add(-retentionWindow).UnixMilli()

	deleted, err := j.repo.DeleteOlderThan(cutoff)
	if err != nil {
		j.log.Error().Err(err).Msg("Failed to prune old events")
		return err
	}

	if deleted > 0 {
		j.log.Info().
			Int64("deleted", deleted).
			Msg("Pruned events outside retention window")
	}

	return nil
}

// Name returns the job name for scheduling and logging.
func (j *CleanupJob) Name() string {
	return "event_retention"
}
