package w5500

import (
	"log/slog"

	"tinygo.org/x/drivers"
)

// Active is a configured chip on an active bus. It exclusively owns the bus,
// the network configuration and the socket registry.
//
// Transitions consume the receiver: after Reset, Deactivate, OpenUDP or
// Release succeed, further calls on the same value report ErrConsumed (or
// return zero values where the method has no error result).
type Active struct {
	bus     ActiveBus
	network Network
	sockets *Sockets
	cfg     Config
}

// New assembles an Active controller from its parts without touching the
// chip. Use Uninitialized.Initialize to bring up a chip from reset.
func New(bus ActiveBus, network Network, sockets *Sockets, cfg ...Config) *Active {
	return &Active{bus: bus, network: network, sockets: sockets, cfg: resolveConfig(cfg)}
}

func (a *Active) consumed() bool { return a.bus == nil }

func (a *Active) take() (ActiveBus, Network, *Sockets) {
	b, n, s := a.bus, a.network, a.sockets
	a.bus, a.network, a.sockets = nil, nil, nil
	return b, n, s
}

// Network returns the network configuration held by the controller.
func (a *Active) Network() Network { return a.network }

// Sockets returns the eight slot handles in numeric order. Each points at a
// distinct slot and may be used independently of the others.
func (a *Active) Sockets() [NumSockets]*Socket {
	if a.consumed() {
		return [NumSockets]*Socket{}
	}
	return a.sockets.All()
}

// LinkUp reports the PHY link status.
func (a *Active) LinkUp() (bool, error) {
	if a.consumed() {
		return false, ErrConsumed
	}
	v, err := readU8(a.bus, BlockCommon, regPHYConfig)
	return v&phyLinkUp != 0, err
}

// Reset issues a soft reset with a single write of ModeReset to MR. The chip
// is assumed, not verified, to have cleared its configuration. The network
// configuration and socket registry are dropped; on a bus fault the receiver
// stays usable.
func (a *Active) Reset() (*Uninitialized, error) {
	if a.consumed() {
		return nil, ErrConsumed
	}
	if err := writeU8(a.bus, BlockCommon, regMode, ModeReset); err != nil {
		return nil, err
	}
	b, _, _ := a.take()
	a.cfg.Logger.Debug("w5500 reset")
	return &Uninitialized{bus: b, cfg: a.cfg}, nil
}

// Deactivate detaches the SPI primitive. Network configuration and the socket
// registry move to the returned Inactive value. It returns nil values if the
// receiver was already consumed.
func (a *Active) Deactivate() (*Inactive, drivers.SPI) {
	if a.consumed() {
		return nil, nil
	}
	b, n, s := a.take()
	bus, spi := b.Deactivate()
	a.cfg.Logger.Debug("w5500 deactivated")
	return &Inactive{bus: bus, network: n, sockets: s, cfg: a.cfg}, spi
}

// OpenUDP binds the slot behind handle to port in UDP mode.
//
// The handle must come from this controller's registry; otherwise OpenUDP
// fails with OpenForeignHandle before any bus traffic. On success the bus,
// network and registry move into the returned socket and the receiver is
// consumed; Close hands them back. On any failure the receiver stays usable.
func (a *Active) OpenUDP(port uint16, handle *Socket) (*UDPSocket, error) {
	if a.consumed() {
		return nil, ErrConsumed
	}
	if !handle.IsOwnedBy(a.sockets) {
		return nil, &OpenError{Kind: OpenForeignHandle, Err: ErrForeignHandle}
	}
	if handle.open {
		return nil, &OpenError{Kind: OpenSlotInUse, Err: ErrSlotInUse}
	}
	if err := bindUDP(a.bus, handle, port, a.cfg.PollLimit); err != nil {
		return nil, openFault(err)
	}
	handle.open = true
	b, n, s := a.take()
	a.cfg.Logger.Debug("w5500 udp open",
		slog.Int("slot", int(handle.index)), slog.Int("port", int(port)))
	return &UDPSocket{port: port, bus: b, network: n, sockets: s, handle: handle, cfg: a.cfg}, nil
}

// Release consumes the receiver and returns its parts without touching the
// chip.
func (a *Active) Release() (ActiveBus, Network, *Sockets) {
	return a.take()
}
