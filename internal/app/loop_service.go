package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wakelight/sunrised/internal/config"
	"github.com/wakelight/sunrised/internal/device"
	"github.com/wakelight/sunrised/internal/eventbus"
	"github.com/wakelight/sunrised/internal/metrics"
	"github.com/wakelight/sunrised/internal/profile"
	"github.com/wakelight/sunrised/internal/sunrise"
	"github.com/wakelight/sunrised/internal/trigger"
)

// LoopService is the main control loop: one goroutine that polls the clock,
// evaluates the trigger, advances the ramp engine and applies duty writes.
// All sequence state lives on this single goroutine; the sync service only
// hands over a fresh profile through SetProfile.
type LoopService struct {
	cfg       *config.Config
	clock     device.Clock
	engine    *sunrise.Engine
	applier   *sunrise.Applier
	evaluator *trigger.Evaluator
	bus       *eventbus.Bus
	metrics   *metrics.Metrics

	mu      sync.Mutex
	current profile.Profile
}

// NewLoopService creates the control loop with the boot-time profile.
func NewLoopService(
	cfg *config.Config,
	clock device.Clock,
	engine *sunrise.Engine,
	applier *sunrise.Applier,
	evaluator *trigger.Evaluator,
	bus *eventbus.Bus,
	m *metrics.Metrics,
	active profile.Profile,
) *LoopService {
	return &LoopService{
		cfg:       cfg,
		clock:     clock,
		engine:    engine,
		applier:   applier,
		evaluator: evaluator,
		bus:       bus,
		metrics:   m,
		current:   active,
	}
}

// Profile returns the profile the loop is currently triggering on.
func (s *LoopService) Profile() profile.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// SetProfile hands a freshly synced profile to the loop. It takes effect on
// the next tick; an active sequence keeps the durations it started with.
func (s *LoopService) SetProfile(p profile.Profile) {
	s.mu.Lock()
	s.current = p
	s.mu.Unlock()
	log.Info().Str("profile", p.String()).Msg("Control loop picked up new profile")
}

// Start begins the control loop.
func (s *LoopService) Start(ctx context.Context) {
	go s.run(ctx)
}

func (s *LoopService) run(ctx context.Context) {
	interval := s.cfg.Sunrise.PollInterval.Duration()
	log.Info().Dur("poll_interval", interval).Msg("Control loop started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Control loop stopping")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick performs one iteration: clock read, trigger evaluation, engine step,
// duty application.
func (s *LoopService) tick(ctx context.Context) {
	now, err := s.clock.Now()
	if err != nil {
		log.Error().Err(err).Msg("Clock read failed, skipping tick")
		return
	}

	p := s.Profile()

	if s.engine.State() == sunrise.StateIdle && s.evaluator.Fire(now, p) {
		if s.engine.Start(now, p) {
			s.metrics.SequencesStarted.Inc()
			s.bus.Publish(eventbus.Event{
				Type: eventbus.EventTypeSequence,
				Data: map[string]any{
					"event":        "started",
					"run_id":       s.engine.RunID(),
					"profile":      p.String(),
					"ramp_minutes": p.RampMinutes,
					"hold_minutes": p.HoldMinutes,
				},
			})
		}
	}

	active := s.engine.State() != sunrise.StateIdle
	duties := s.engine.Tick(now)

	applied, err := s.applier.Apply(ctx, duties)
	if err != nil {
		log.Error().Err(err).Msg("Failed to apply duty cycles")
	}
	for _, d := range applied {
		s.metrics.ObserveDuty(d.Channel, d.Value)
	}

	if active && s.engine.State() == sunrise.StateIdle {
		s.metrics.SequencesCompleted.Inc()
		s.bus.Publish(eventbus.Event{
			Type: eventbus.EventTypeSequence,
			Data: map[string]any{
				"event":  "completed",
				"run_id": s.engine.RunID(),
			},
		})
	}
}
