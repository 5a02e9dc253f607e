package control

import (
	"time"

	"github.com/rs/zerolog"

	"plantmobile/internal/track"
)

// BatteryKeepAlive periodically draws current through the motor coils so the
// USB power bank doesn't shut itself off from inactivity.
type BatteryKeepAlive struct {
	platform     Platform
	pingInterval time.Duration
	pingDuration time.Duration
	enabled      func() bool
	lastPing     time.Time
	log          zerolog.Logger
}

func NewBatteryKeepAlive(
	platform Platform,
	pingInterval, pingDuration time.Duration,
	enabled func() bool,
	logger zerolog.Logger,
) *BatteryKeepAlive {
	if pingInterval <= 0 {
		panic("control: keepalive ping interval must be positive")
	}
	if enabled == nil {
		enabled = func() bool { return true }
	}
	return &BatteryKeepAlive{
		platform:     platform,
		pingInterval: pingInterval,
		pingDuration: pingDuration,
		enabled:      enabled,
		log:          logger.With().Str("component", "keepalive").Logger(),
	}
}

func (k *BatteryKeepAlive) PerformAction(status track.Status) (bool, error) {
	if !k.enabled() {
		// Reset the timer so a ping runs as soon as we're re-enabled.
		k.lastPing = time.Time{}
		return false, nil
	}

	if !k.lastPing.IsZero() && time.Since(k.lastPing) <= k.pingInterval {
		return false, nil
	}

	k.log.Info().Dur("interval", k.pingInterval).Dur("duration", k.pingDuration).
		Msg("running keepalive ping")
	k.lastPing = time.Now()
	if err := k.platform.PingMotor(k.pingDuration); err != nil {
		return true, err
	}
	return true, nil
}
