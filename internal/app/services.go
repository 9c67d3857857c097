package app

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wakelight/sunrised/internal/config"
	"github.com/wakelight/sunrised/internal/db"
	"github.com/wakelight/sunrised/internal/device"
	"github.com/wakelight/sunrised/internal/eventbus"
	"github.com/wakelight/sunrised/internal/ledger"
	"github.com/wakelight/sunrised/internal/metrics"
	"github.com/wakelight/sunrised/internal/profile"
	"github.com/wakelight/sunrised/internal/sunrise"
	"github.com/wakelight/sunrised/internal/syncer"
	"github.com/wakelight/sunrised/internal/trigger"
)

// Services is a container for all application services.
// It manages service initialization order and dependencies.
type Services struct {
	cfg *config.Config

	// Core infrastructure
	DB      *db.DB
	Ledger  *ledger.Ledger
	Bus     *eventbus.Bus
	Metrics *metrics.Metrics

	// Hardware collaborators
	Clock  device.Clock
	Memory device.Memory
	PWM    device.PWM

	// Domain
	Store  *profile.Store
	Engine *sunrise.Engine

	// High-level services
	Loop   *LoopService
	Sync   *SyncService
	Health *HealthService
}

// NewServices creates all services with proper dependency injection.
func NewServices(cfg *config.Config) (*Services, error) {
	s := &Services{cfg: cfg}

	// Initialize database and run history
	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	s.DB = database
	s.Ledger = ledger.New(database.DB)

	// Initialize event bus and metrics
	s.Bus = eventbus.NewWithConfig(cfg.EventBus.GetWorkers(), cfg.EventBus.GetQueueSize())
	s.Metrics = metrics.New()

	// Initialize hardware backends. The simulated backends keep the daemon
	// runnable without an RTC or LED board attached.
	s.Clock = device.NewSimClock()
	mem, err := device.NewFileMemory(cfg.Device.NVRAMPath, profile.SlotCount)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Memory = mem
	s.PWM = device.NewLogPWM(cfg.Device.ResolutionBits)

	// Initialize profile store and the session profile
	s.Store = profile.NewStore(s.Memory)
	active, defaulted, err := s.Store.Load()
	if err != nil {
		s.Close()
		return nil, err
	}
	if defaulted || active == (profile.Profile{}) {
		// Corrupt or never-written memory: seed the slots with the default
		// profile so the next boot reads a valid record.
		active = profile.Default()
		if saveErr := s.Store.Save(active); saveErr != nil {
			log.Warn().Err(saveErr).Msg("Failed to seed default profile")
		}
	}
	log.Info().Str("profile", active.String()).Msg("Active sunrise profile")

	// Initialize ramp engine and PWM applier
	channels := make([]sunrise.ChannelConfig, 0, len(cfg.Device.Channels))
	for _, ch := range cfg.Device.Channels {
		channels = append(channels, sunrise.ChannelConfig{
			Index:       ch.Index,
			StartOffset: ch.StartOffset.Duration(),
		})
	}
	s.Engine = sunrise.New(sunrise.Options{
		Channels: channels,
		Exponent: cfg.Sunrise.Exponent,
		MaxDuty:  s.PWM.MaxDuty(),
		StayOn:   cfg.Sunrise.StayOn,
	})
	applier := sunrise.NewApplier(s.PWM, cfg.Sunrise.PWMWriteRPS)

	// Initialize the control loop
	s.Loop = NewLoopService(cfg, s.Clock, s.Engine, applier, trigger.NewEvaluator(), s.Bus, s.Metrics, active)

	// Initialize the sync service
	var link syncer.Netlink = syncer.StaticLink{}
	if cfg.Sync.ProbeAddr != "" {
		link = syncer.ProbeLink{Addr: cfg.Sync.ProbeAddr}
	}
	remote := syncer.New(syncer.Options{
		Link:           link,
		Client:         &http.Client{Timeout: cfg.Sync.HTTPTimeout.Duration()},
		ConfigURL:      cfg.Sync.ConfigURL,
		TimeURL:        cfg.Sync.TimeURL,
		ConnectTimeout: cfg.Sync.ConnectTimeout.Duration(),
	}, s.Store, s.Clock)
	s.Sync = NewSyncService(cfg, remote, s.Loop, s.Bus, s.Metrics, s.Ledger)

	// Initialize health service
	s.Health = NewHealthService(cfg, s.Metrics)

	// Record bus events into the run history
	s.registerRecorders()

	return s, nil
}

// registerRecorders subscribes ledger writers to the event bus.
func (s *Services) registerRecorders() {
	s.Bus.Subscribe(eventbus.EventTypeSequence, func(e eventbus.Event) {
		runID, _ := e.Data["run_id"].(string)
		event := ledger.EventSequenceStarted
		if e.Data["event"] == "completed" {
			event = ledger.EventSequenceCompleted
		}
		if err := s.Ledger.Append(event, runID, e.Data); err != nil {
			log.Error().Err(err).Msg("Failed to record sequence event")
		}
	})

	s.Bus.Subscribe(eventbus.EventTypeSync, func(e eventbus.Event) {
		if err := s.Ledger.Append(ledger.EventSyncCompleted, "", e.Data); err != nil {
			log.Error().Err(err).Msg("Failed to record sync event")
		}
	})

	s.Bus.Subscribe(eventbus.EventTypeProfile, func(e eventbus.Event) {
		if err := s.Ledger.Append(ledger.EventProfileUpdated, "", e.Data); err != nil {
			log.Error().Err(err).Msg("Failed to record profile update")
		}
	})
}

// Start starts all services in the correct order.
func (s *Services) Start(ctx context.Context) error {
	s.Loop.Start(ctx)
	s.Sync.Start(ctx)
	s.Health.Start(ctx)
	return nil
}

// Stop gracefully stops all services.
func (s *Services) Stop() error {
	s.Close()
	return nil
}

// Close releases all resources.
func (s *Services) Close() {
	if s.Bus != nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.busCloseTimeout())
		s.Bus.Close(ctx)
		cancel()
	}
	if s.DB != nil {
		s.DB.Close()
	}
}

func (s *Services) busCloseTimeout() time.Duration {
	if t := s.cfg.GetShutdownTimeout(); t > 0 {
		return t
	}
	return 5 * time.Second
}
