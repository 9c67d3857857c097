package sunrise

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/wakelight/sunrised/internal/device"
)

// Applier writes desired duties to the PWM hardware. It only writes values
// that changed since the last write, and paces writes through a rate
// limiter so a misbehaving tick cadence cannot flood the output driver.
type Applier struct {
	pwm     device.PWM
	limiter *rate.Limiter
	last    map[int]uint32
}

// NewApplier creates an applier with the given write rate limit.
func NewApplier(pwm device.PWM, writesPerSecond float64) *Applier {
	if writesPerSecond <= 0 {
		writesPerSecond = 50.0
	}
	return &Applier{
		pwm:     pwm,
		limiter: rate.NewLimiter(rate.Limit(writesPerSecond), int(writesPerSecond)),
		last:    make(map[int]uint32),
	}
}

// Apply writes every changed duty and returns the writes actually made.
func (a *Applier) Apply(ctx context.Context, duties []Duty) ([]Duty, error) {
	var applied []Duty
	for _, d := range duties {
		if prev, ok := a.last[d.Channel]; ok && prev == d.Value {
			continue
		}
		if err := a.limiter.Wait(ctx); err != nil {
			return applied, err
		}
		if err := a.pwm.SetDuty(d.Channel, d.Value); err != nil {
			return applied, fmt.Errorf("failed to set duty on channel %d: %w", d.Channel, err)
		}
		a.last[d.Channel] = d.Value
		applied = append(applied, d)
	}
	return applied, nil
}
