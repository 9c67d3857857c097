package sunrise

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/wakelight/sunrised/internal/profile"
)

// State is the engine's sequence state.
type State int

const (
	StateIdle State = iota
	StateRamping
	StateHolding
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRamping:
		return "ramping"
	case StateHolding:
		return "holding"
	default:
		return "unknown"
	}
}

// ChannelConfig describes one LED output taking part in the sequence.
// StartOffset delays the channel's ramp relative to sequence start; the
// primary channel has offset 0.
type ChannelConfig struct {
	Index       int
	StartOffset time.Duration
}

// Options configure the engine for the lifetime of the process. The trigger
// profile supplies the per-sequence durations.
type Options struct {
	Channels []ChannelConfig
	Exponent float64 // curve shaping constant, > 1
	MaxDuty  uint32  // full-brightness duty value (2^resolution - 1)
	StayOn   bool    // skip the switch-off at the end of the hold
}

// Duty is a desired duty-cycle value for one channel.
type Duty struct {
	Channel int
	Value   uint32
}

// Engine drives the sunrise sequence as a non-blocking state machine.
// Start arms it, Tick advances it; an external loop owns the timing. The
// engine computes desired duties only, it never touches hardware.
type Engine struct {
	opts Options

	state        State
	runID        string
	startedAt    time.Time
	rampDuration time.Duration
	holdDuration time.Duration
	holdStart    time.Time
	activations  []time.Time
}

// New creates an idle engine.
func New(opts Options) *Engine {
	if opts.Exponent <= 1 {
		opts.Exponent = DefaultExponent
	}
	return &Engine{opts: opts, state: StateIdle}
}

// State returns the current sequence state.
func (e *Engine) State() State {
	return e.state
}

// RunID returns the identifier of the current (or most recent) sequence.
func (e *Engine) RunID() string {
	return e.runID
}

// Start arms a new sequence from the given profile. It is idempotent while
// a sequence is active: starting anything but an idle engine is a no-op and
// returns false.
func (e *Engine) Start(now time.Time, p profile.Profile) bool {
	if e.state != StateIdle {
		log.Debug().Str("state", e.state.String()).Msg("Sequence already active, ignoring trigger")
		return false
	}

	e.runID = uuid.NewString()
	e.startedAt = now
	e.rampDuration = time.Duration(p.RampMinutes) * time.Minute
	e.holdDuration = time.Duration(p.HoldMinutes) * time.Minute

	e.activations = e.activations[:0]
	for _, ch := range e.opts.Channels {
		e.activations = append(e.activations, now.Add(ch.StartOffset))
	}

	if e.rampDuration == 0 {
		// Zero-length ramp: jump straight to full brightness and hold.
		e.state = StateHolding
		e.holdStart = now
	} else {
		e.state = StateRamping
	}

	log.Info().
		Str("run_id", e.runID).
		Str("state", e.state.String()).
		Dur("ramp", e.rampDuration).
		Dur("hold", e.holdDuration).
		Int("channels", len(e.opts.Channels)).
		Msg("Sunrise sequence started")
	return true
}

// Tick advances the sequence to the given instant and returns the desired
// duty for every channel. It returns nil when the engine is idle and has
// nothing to drive.
func (e *Engine) Tick(now time.Time) []Duty {
	switch e.state {
	case StateRamping:
		if now.Sub(e.startedAt) >= e.rampDuration {
			e.state = StateHolding
			e.holdStart = e.startedAt.Add(e.rampDuration)
			log.Info().Str("run_id", e.runID).Msg("Ramp complete, holding at full brightness")
			return e.uniform(e.opts.MaxDuty)
		}
		return e.rampDuties(now)

	case StateHolding:
		if now.Sub(e.holdStart) >= e.holdDuration {
			e.state = StateIdle
			if e.opts.StayOn {
				log.Info().Str("run_id", e.runID).Msg("Hold complete, channels stay on")
				return e.uniform(e.opts.MaxDuty)
			}
			log.Info().Str("run_id", e.runID).Msg("Hold complete, switching channels off")
			return e.uniform(0)
		}
		return e.uniform(e.opts.MaxDuty)

	default:
		return nil
	}
}

// rampDuties computes per-channel duties during the ramp phase.
func (e *Engine) rampDuties(now time.Time) []Duty {
	duties := make([]Duty, 0, len(e.opts.Channels))
	for i, ch := range e.opts.Channels {
		duties = append(duties, Duty{Channel: ch.Index, Value: e.channelDuty(now, i, ch)})
	}
	return duties
}

// channelDuty computes one channel's duty at the given instant. A channel
// whose activation has not arrived outputs 0; a channel whose start offset
// is at or past the ramp duration never activates during the ramp and is
// only driven to full at the hold transition.
func (e *Engine) channelDuty(now time.Time, idx int, ch ChannelConfig) uint32 {
	activation := e.activations[idx]
	if now.Before(activation) {
		return 0
	}

	window := e.rampDuration - ch.StartOffset
	if window <= 0 {
		return 0
	}

	p := float64(now.Sub(activation)) / float64(window)
	return DutyFor(Shape(p, e.opts.Exponent), e.opts.MaxDuty)
}

// uniform returns the same duty for every channel.
func (e *Engine) uniform(value uint32) []Duty {
	duties := make([]Duty, 0, len(e.opts.Channels))
	for _, ch := range e.opts.Channels {
		duties = append(duties, Duty{Channel: ch.Index, Value: value})
	}
	return duties
}
