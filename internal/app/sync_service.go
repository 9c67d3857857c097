package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wakelight/sunrised/internal/config"
	"github.com/wakelight/sunrised/internal/eventbus"
	"github.com/wakelight/sunrised/internal/ledger"
	"github.com/wakelight/sunrised/internal/metrics"
	"github.com/wakelight/sunrised/internal/syncer"
)

// SyncService runs the periodic remote refresh and the run-history
// retention cleanup.
type SyncService struct {
	cfg     *config.Config
	syncer  *syncer.Syncer
	loop    *LoopService
	bus     *eventbus.Bus
	metrics *metrics.Metrics
	ledger  *ledger.Ledger
}

// NewSyncService creates a new SyncService.
func NewSyncService(
	cfg *config.Config,
	s *syncer.Syncer,
	loop *LoopService,
	bus *eventbus.Bus,
	m *metrics.Metrics,
	l *ledger.Ledger,
) *SyncService {
	return &SyncService{
		cfg:     cfg,
		syncer:  s,
		loop:    loop,
		bus:     bus,
		metrics: m,
		ledger:  l,
	}
}

// Start begins the periodic sync and cleanup tasks.
func (s *SyncService) Start(ctx context.Context) {
	if !s.cfg.Sync.Enabled {
		log.Info().Msg("Remote sync is disabled")
	} else {
		go s.run(ctx)
	}

	go s.runLedgerCleanup(ctx)
}

func (s *SyncService) run(ctx context.Context) {
	interval := s.cfg.Sync.Interval.Duration()
	log.Info().Dur("interval", interval).Msg("Sync service started")

	if s.cfg.Sync.SyncOnBoot {
		s.sync(ctx)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Sync service stopping")
			return
		case <-ticker.C:
			s.sync(ctx)
		}
	}
}

// sync performs one refresh cycle and propagates the results.
func (s *SyncService) sync(ctx context.Context) {
	updated, outcome := s.syncer.Sync(ctx)

	s.metrics.ObserveSync("config", outcome.ConfigUpdated)
	s.metrics.ObserveSync("time", outcome.TimeUpdated)

	data := map[string]any{
		"config_updated": outcome.ConfigUpdated,
		"time_updated":   outcome.TimeUpdated,
	}
	if outcome.ConfigErr != nil {
		data["config_error"] = outcome.ConfigErr.Error()
	}
	if outcome.TimeErr != nil {
		data["time_error"] = outcome.TimeErr.Error()
	}
	s.bus.Publish(eventbus.Event{Type: eventbus.EventTypeSync, Data: data})

	if outcome.ConfigUpdated {
		s.loop.SetProfile(updated)
		s.bus.Publish(eventbus.Event{
			Type: eventbus.EventTypeProfile,
			Data: map[string]any{
				"profile":        updated.String(),
				"trigger_hour":   updated.TriggerHour,
				"trigger_minute": updated.TriggerMinute,
				"ramp_minutes":   updated.RampMinutes,
				"hold_minutes":   updated.HoldMinutes,
				"utc_offset":     updated.UTCOffsetHours,
			},
		})
	}

	if outcome.Failed() {
		log.Warn().Msg("Sync cycle failed entirely, retrying on next cycle")
	}
}

// runLedgerCleanup periodically deletes old run history entries.
func (s *SyncService) runLedgerCleanup(ctx context.Context) {
	retention := time.Duration(s.cfg.Ledger.RetentionDays) * 24 * time.Hour
	interval := s.cfg.Ledger.CleanupInterval.Duration()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := s.ledger.DeleteOlderThan(retention)
			if err != nil {
				log.Error().Err(err).Msg("Failed to clean up old run history")
			} else if deleted > 0 {
				log.Info().Int64("deleted", deleted).Dur("retention", retention).Msg("Cleaned up old run history")
			}
		}
	}
}
