// Package syncer refreshes the sunrise profile and the hardware clock from
// remote HTTP sources. Both refreshes are independent best-effort
// operations: a failure in one never blocks the other, and a failed cycle
// leaves previous state untouched until the next scheduled sync.
package syncer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wakelight/sunrised/internal/device"
	"github.com/wakelight/sunrised/internal/profile"
)

// maxBodySize bounds remote payload reads.
const maxBodySize = 64 * 1024

// Outcome records the independent sub-results of one sync cycle.
type Outcome struct {
	ConfigUpdated bool
	ConfigErr     error
	TimeUpdated   bool
	TimeErr       error
}

// Failed reports whether both sub-operations failed.
func (o Outcome) Failed() bool {
	return !o.ConfigUpdated && !o.TimeUpdated
}

// Options configure a Syncer.
type Options struct {
	Link           Netlink
	Client         *http.Client
	ConfigURL      string
	TimeURL        string
	ConnectTimeout time.Duration
}

// Syncer performs best-effort refresh cycles.
type Syncer struct {
	opts  Options
	store *profile.Store
	clock device.Clock
}

// New creates a Syncer writing through the given store and clock.
func New(opts Options, store *profile.Store, clock device.Clock) *Syncer {
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 10 * time.Second}
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 10 * time.Second
	}
	if opts.Link == nil {
		opts.Link = StaticLink{}
	}
	return &Syncer{opts: opts, store: store, clock: clock}
}

// Sync runs one refresh cycle. Connectivity is acquired with a bounded
// timeout and released on every exit path. The returned profile is only
// meaningful when Outcome.ConfigUpdated is true.
func (s *Syncer) Sync(ctx context.Context) (profile.Profile, Outcome) {
	var outcome Outcome

	acquireCtx, cancel := context.WithTimeout(ctx, s.opts.ConnectTimeout)
	defer cancel()

	if err := s.opts.Link.Acquire(acquireCtx); err != nil {
		err = fmt.Errorf("failed to acquire connectivity: %w", err)
		log.Warn().Err(err).Msg("Sync aborted")
		outcome.ConfigErr = err
		outcome.TimeErr = err
		s.opts.Link.Release()
		return profile.Profile{}, outcome
	}
	defer s.opts.Link.Release()

	updated := s.syncConfig(ctx, &outcome)
	s.syncTime(ctx, &outcome)

	return updated, outcome
}

// syncConfig fetches, decodes and persists the remote profile. Returns the
// applied profile when outcome.ConfigUpdated is set.
func (s *Syncer) syncConfig(ctx context.Context, outcome *Outcome) profile.Profile {
	body, err := s.fetch(ctx, s.opts.ConfigURL)
	if err != nil {
		outcome.ConfigErr = err
		log.Warn().Err(err).Msg("Config fetch failed, keeping persisted profile")
		return profile.Profile{}
	}

	p, err := decodeProfile(body)
	if err != nil {
		outcome.ConfigErr = err
		log.Warn().Err(err).Msg("Config decode failed, keeping persisted profile")
		return profile.Profile{}
	}

	if err := s.store.Save(p); err != nil {
		outcome.ConfigErr = err
		log.Error().Err(err).Msg("Failed to persist synced profile")
		return profile.Profile{}
	}

	outcome.ConfigUpdated = true
	log.Info().Str("profile", p.String()).Msg("Profile updated from remote config")
	return p
}

// syncTime fetches the authoritative time and sets the hardware clock.
func (s *Syncer) syncTime(ctx context.Context, outcome *Outcome) {
	body, err := s.fetch(ctx, s.opts.TimeURL)
	if err != nil {
		outcome.TimeErr = err
		log.Warn().Err(err).Msg("Time fetch failed, keeping clock untouched")
		return
	}

	epoch, err := decodeEpoch(body)
	if err != nil {
		outcome.TimeErr = err
		log.Warn().Err(err).Msg("Time decode failed, keeping clock untouched")
		return
	}

	if err := s.clock.Set(epoch); err != nil {
		outcome.TimeErr = fmt.Errorf("failed to set clock: %w", err)
		log.Error().Err(outcome.TimeErr).Msg("Clock update failed")
		return
	}

	outcome.TimeUpdated = true
	log.Info().Time("time", epoch).Msg("Clock updated from remote time source")
}

// fetch performs one GET and returns the body on HTTP 200.
func (s *Syncer) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := s.opts.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request to %s returned status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", url, err)
	}
	return body, nil
}
