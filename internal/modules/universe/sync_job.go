package universe

import (
	"context"
	"time"
)

// SyncJob adapts the candle sync service to the scheduler
type SyncJob struct {
	service *SyncService
}

// NewSyncJob creates a new scheduled candle sync job
func NewSyncJob(service *SyncService) *SyncJob {
	return &SyncJob{service: service}
}

// Name returns the job name
func (j *SyncJob) Name() string {
	return "candle_sync"
}

// Run refreshes the candle cache for the active universe
func (j *SyncJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	return j.service.SyncAll(ctx)
}
