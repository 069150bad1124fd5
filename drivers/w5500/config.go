package w5500

import (
	"errors"
	"log/slog"
)

// Config controls chip initialisation and driver behaviour. All fields are
// optional; zero values are replaced by DefaultConfig.
type Config struct {
	// PHY operation mode. Default PHYAuto.
	PHY PHYMode
	// RetryTime is the retransmission timeout in 100µs units (RTR).
	// Default 2000 (200 ms).
	RetryTime uint16
	// RetryCount is the number of retransmissions before Sn_IR.TIMEOUT (RCR).
	// Default 8.
	RetryCount uint8
	// PollLimit bounds how many times a command or send completion is polled
	// before ErrTimeout. Zero polls without bound.
	PollLimit int
	// Logger receives debug events on state transitions. Nil discards them.
	Logger *slog.Logger
}

// DefaultConfig mirrors the chip's reset values with auto-negotiating PHY.
func DefaultConfig() Config {
	return Config{
		PHY:        PHYAuto,
		RetryTime:  2000,
		RetryCount: 8,
	}
}

// Validate rejects settings the chip cannot represent.
func (c Config) Validate() error {
	if c.PHY > PHYPowerDown {
		return errors.New("w5500: invalid PHY mode")
	}
	if c.PollLimit < 0 {
		return errors.New("w5500: PollLimit must not be negative")
	}
	return nil
}

func resolveConfig(cfgs []Config) Config {
	d := DefaultConfig()
	if len(cfgs) == 0 {
		d.Logger = slog.New(slog.DiscardHandler)
		return d
	}
	c := cfgs[0]
	if c.RetryTime == 0 {
		c.RetryTime = d.RetryTime
	}
	if c.RetryCount == 0 {
		c.RetryCount = d.RetryCount
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	return c
}
