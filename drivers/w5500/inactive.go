package w5500

import "tinygo.org/x/drivers"

// Inactive is a configured chip whose SPI primitive has been handed back to
// the caller. It keeps the wiring mode, network configuration and registry.
type Inactive struct {
	bus     InactiveBus
	network Network
	sockets *Sockets
	cfg     Config
}

// Network returns the preserved network configuration.
func (i *Inactive) Network() Network { return i.network }

// Activate reattaches an SPI primitive and consumes the receiver. The chip is
// not reprogrammed. It returns nil if the receiver was already consumed.
func (i *Inactive) Activate(spi drivers.SPI) *Active {
	if i.bus == nil {
		return nil
	}
	b, n, s := i.Release()
	i.cfg.Logger.Debug("w5500 activated")
	return &Active{bus: b.Activate(spi), network: n, sockets: s, cfg: i.cfg}
}

// Release consumes the receiver and returns its parts.
func (i *Inactive) Release() (InactiveBus, Network, *Sockets) {
	b, n, s := i.bus, i.network, i.sockets
	i.bus, i.network, i.sockets = nil, nil, nil
	return b, n, s
}
