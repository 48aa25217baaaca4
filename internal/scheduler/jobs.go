package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/frontier/internal/modules/calculations"
	"github.com/aristath/frontier/internal/modules/universe"
	"github.com/aristath/frontier/internal/reliability"
)

const jobTimeout = 30 * time.Minute

// PriceSyncJob refreshes the universe's daily closes from the provider.
type PriceSyncJob struct {
	sync    *universe.SyncService
	symbols []string
	log     zerolog.Logger
}

// NewPriceSyncJob creates a nightly price sync job for the given symbols.
func NewPriceSyncJob(sync *universe.SyncService, symbols []string, log zerolog.Logger) *PriceSyncJob {
	return &PriceSyncJob{
		sync:    sync,
		symbols: symbols,
		log:     log.With().Str("job", "price_sync").Logger(),
	}
}

func (j *PriceSyncJob) Name() string { return "price_sync" }

func (j *PriceSyncJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	result, err := j.sync.Sync(ctx, j.symbols)
	if err != nil {
		return err
	}
	if len(result.Failed) > 0 {
		j.log.Warn().Strs("failed", result.Failed).Msg("Some symbols failed to sync")
	}
	return nil
}

// CloudBackupJob creates and uploads a backup archive, then rotates old ones.
type CloudBackupJob struct {
	backup        *reliability.CloudBackupService
	retentionDays int
}

// NewCloudBackupJob creates a backup job with the given retention.
func NewCloudBackupJob(backup *reliability.CloudBackupService, retentionDays int) *CloudBackupJob {
	return &CloudBackupJob{backup: backup, retentionDays: retentionDays}
}

func (j *CloudBackupJob) Name() string { return "cloud_backup" }

func (j *CloudBackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := j.backup.CreateAndUploadBackup(ctx); err != nil {
		return err
	}
	return j.backup.RotateOldBackups(ctx, j.retentionDays)
}

// CachePurgeJob removes expired cache entries.
type CachePurgeJob struct {
	cache *calculations.Cache
}

// NewCachePurgeJob creates a cache purge job.
func NewCachePurgeJob(cache *calculations.Cache) *CachePurgeJob {
	return &CachePurgeJob{cache: cache}
}

func (j *CachePurgeJob) Name() string { return "cache_purge" }

func (j *CachePurgeJob) Run() error {
	_, err := j.cache.PurgeExpired()
	return err
}
