package syncer

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/wakelight/sunrised/internal/profile"
)

// configPayload is the remote configuration document.
type configPayload struct {
	TriggerHour   *int `json:"trigger_hour"`
	TriggerMinute *int `json:"trigger_minute"`
	RampMinutes   *int `json:"ramp_minutes"`
	HoldMinutes   *int `json:"hold_minutes"`
	UTCOffset     *int `json:"utc_offset"`
}

// decodeProfile parses and validates a remote configuration body. Missing
// fields are a decode failure: the payload must carry the complete record.
func decodeProfile(body []byte) (profile.Profile, error) {
	var payload configPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return profile.Profile{}, fmt.Errorf("failed to decode config payload: %w", err)
	}

	if payload.TriggerHour == nil || payload.TriggerMinute == nil ||
		payload.RampMinutes == nil || payload.HoldMinutes == nil || payload.UTCOffset == nil {
		return profile.Profile{}, fmt.Errorf("config payload missing required fields")
	}

	p := profile.Profile{
		TriggerHour:    *payload.TriggerHour,
		TriggerMinute:  *payload.TriggerMinute,
		RampMinutes:    *payload.RampMinutes,
		HoldMinutes:    *payload.HoldMinutes,
		UTCOffsetHours: *payload.UTCOffset,
	}
	if err := p.Validate(); err != nil {
		return profile.Profile{}, fmt.Errorf("remote config rejected: %w", err)
	}
	return p, nil
}

// timePayload is the remote time document.
type timePayload struct {
	Unixtime *int64 `json:"unixtime"`
}

// decodeEpoch parses a remote time body into a UTC instant.
func decodeEpoch(body []byte) (time.Time, error) {
	var payload timePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return time.Time{}, fmt.Errorf("failed to decode time payload: %w", err)
	}
	if payload.Unixtime == nil {
		return time.Time{}, fmt.Errorf("time payload missing unixtime field")
	}
	if *payload.Unixtime <= 0 {
		return time.Time{}, fmt.Errorf("time payload unixtime %d not positive", *payload.Unixtime)
	}
	return time.Unix(*payload.Unixtime, 0).UTC(), nil
}
