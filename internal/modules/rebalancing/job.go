package rebalancing

import (
	"time"

	"github.com/rs/zerolog"
)

// Job adapts the rebalancing service to the scheduler
type Job struct {
	service *Service
	log     zerolog.Logger
}

// NewJob creates a new scheduled rebalancing job
func NewJob(service *Service, log zerolog.Logger) *Job {
	return &Job{
		service: service,
		log:     log.With().Str("job", "rebalance").Logger(),
	}
}

// Name returns the job name
func (j *Job) Name() string {
	return "rebalance"
}

// Run advances the trading-day counter and rebalances when due
func (j *Job) Run() error {
	result, err := j.service.Tick(time.Now().UTC())
	if err != nil {
		return err
	}

	if result == nil {
		j.log.Debug().Msg("Rebalance not due today")
	}

	return nil
}
