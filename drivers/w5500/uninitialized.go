package w5500

import "log/slog"

// Uninitialized holds an active bus to a chip whose configuration is unknown
// or was cleared by a soft reset. It carries no network configuration.
type Uninitialized struct {
	bus ActiveBus
	cfg Config
}

// NewUninitialized wraps an active bus. It does not touch the chip.
func NewUninitialized(bus ActiveBus, cfg ...Config) *Uninitialized {
	return &Uninitialized{bus: bus, cfg: resolveConfig(cfg)}
}

// Initialize verifies the chip, soft-resets it, applies PHY and retry
// settings and programs network. On success the receiver is consumed and the
// returned controller owns a fresh socket registry. On failure the receiver
// stays usable.
func (u *Uninitialized) Initialize(network Network) (*Active, error) {
	if u.bus == nil {
		return nil, ErrConsumed
	}
	if err := u.cfg.Validate(); err != nil {
		return nil, err
	}
	b := u.bus

	v, err := readU8(b, BlockCommon, regVersion)
	if err != nil {
		return nil, err
	}
	if v != ChipVersion {
		u.cfg.Logger.Debug("w5500 version mismatch", slog.Int("version", int(v)))
		return nil, ErrUnsupportedChip
	}

	if err := writeU8(b, BlockCommon, regMode, ModeReset); err != nil {
		return nil, err
	}
	err = pollUntil(u.cfg.PollLimit, func() (bool, error) {
		mr, err := readU8(b, BlockCommon, regMode)
		return mr&ModeReset == 0, err
	})
	if err != nil {
		return nil, err
	}

	// OPMDC only latches across a PHY reset.
	phy := u.cfg.PHY.bits()
	if err := writeU8(b, BlockCommon, regPHYConfig, phy&^phyReset); err != nil {
		return nil, err
	}
	if err := writeU8(b, BlockCommon, regPHYConfig, phy); err != nil {
		return nil, err
	}
	if err := writeU16(b, BlockCommon, regRetryTime, u.cfg.RetryTime); err != nil {
		return nil, err
	}
	if err := writeU8(b, BlockCommon, regRetryCount, u.cfg.RetryCount); err != nil {
		return nil, err
	}
	if err := network.Refresh(b); err != nil {
		return nil, err
	}

	u.bus = nil
	a := &Active{bus: b, network: network, sockets: NewSockets(), cfg: u.cfg}
	a.cfg.Logger.Debug("w5500 initialized", slog.Any("phy", u.cfg.PHY))
	return a, nil
}

// Release consumes the receiver and returns the bus. It returns nil if the
// receiver was already consumed.
func (u *Uninitialized) Release() ActiveBus {
	b := u.bus
	u.bus = nil
	return b
}
