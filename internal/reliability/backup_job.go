package reliability

import (
	"context"
	"time"
)

// backupTimeout bounds one full snapshot-compress-upload-rotate cycle.
const backupTimeout = 5 * time.Minute

// BackupJob runs a full backup cycle on a cron schedule.
type BackupJob struct {
	service       *BackupService
	retentionDays int
}

// NewBackupJob creates the scheduled backup job.
func NewBackupJob(service *BackupService, retentionDays int) *BackupJob {
	return &BackupJob{service: service, retentionDays: retentionDays}
}

// Name returns the job identifier for scheduler logging.
func (j *BackupJob) Name() string {
	return "event_log_backup"
}

// Run uploads a fresh backup and rotates old ones.
func (j *BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), backupTimeout)
	defer cancel()

	if err := j.service.CreateAndUpload(ctx); err != nil {
		return err
	}
	return j.service.RotateOldBackups(ctx, j.retentionDays)
}
