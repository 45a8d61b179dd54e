// Package scheduler drives periodic alert sweeps, by cron expression or
// fixed interval. The HTTP trigger and the schedule share one sweep
// service; the lease inside it keeps overlapping runs out.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"nestwatch/config"
	"nestwatch/services"
)

type Scheduler struct {
	cfg    *config.SweepConfig
	sweep  *services.SweepService
	log    zerolog.Logger
	cron   *cron.Cron
	ticker *time.Ticker
	stopCh chan struct{}
}

func New(cfg *config.SweepConfig, sweep *services.SweepService, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cfg:    cfg,
		sweep:  sweep,
		log:    log,
		cron:   cron.New(),
		stopCh: make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	if s.cfg.Cron != "" {
		s.log.Info().Str("cron", s.cfg.Cron).Msg("starting sweep scheduler")
		_, err := s.cron.AddFunc(s.cfg.Cron, func() {
			s.runSweep(ctx)
		})
		if err != nil {
			return fmt.Errorf("invalid cron expression: %w", err)
		}
		s.cron.Start()
		return nil
	}

	if s.cfg.Interval > 0 {
		s.log.Info().Dur("interval", s.cfg.Interval).Msg("starting sweep scheduler")
		s.ticker = time.NewTicker(s.cfg.Interval)
		go func() {
			for {
				select {
				case <-s.ticker.C:
					s.runSweep(ctx)
				case <-s.stopCh:
					return
				case <-ctx.Done():
					return
				}
			}
		}()
		return nil
	}

	s.log.Info().Msg("no sweep schedule configured, sweeps run on trigger only")
	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.stopCh)
}

// TriggerNow runs one sweep outside the schedule.
func (s *Scheduler) TriggerNow(ctx context.Context) error {
	_, err := s.sweep.Run(ctx)
	return err
}

func (s *Scheduler) runSweep(ctx context.Context) {
	report, err := s.sweep.Run(ctx)
	if errors.Is(err, services.ErrSweepInProgress) {
		s.log.Warn().Msg("scheduled sweep skipped, previous one still running")
		return
	}
	if err != nil {
		s.log.Error().Err(err).Msg("scheduled sweep failed")
		return
	}
	s.log.Info().
		Int("searches", report.ProcessedSearches).
		Int("new_properties", report.NewPropertiesFound).
		Int("notified", report.EmailsSent).
		Msg("scheduled sweep complete")
}
