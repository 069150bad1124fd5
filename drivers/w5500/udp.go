package w5500

import (
	"errors"
	"log/slog"
	"net/netip"
)

// UDPSocket is a slot bound in UDP mode. While it lives it exclusively holds
// the controller's bus, network configuration and registry, and it borrows
// the caller's slot handle. Close returns them as a new Active controller.
type UDPSocket struct {
	port    uint16
	bus     ActiveBus
	network Network
	sockets *Sockets
	handle  *Socket
	cfg     Config
}

// bindUDP programs slot s for UDP on port. Once Sn_MR has been touched, a
// failure closes the slot again so the chip is not left half bound.
func bindUDP(b ActiveBus, s *Socket, port uint16, limit int) (err error) {
	reg, _, _ := s.blocks()
	if err := writeU8(b, reg, sockMode, protoUDP); err != nil {
		return err
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, unbind(b, reg, limit))
		}
	}()
	if err := writeU16(b, reg, sockPort, port); err != nil {
		return err
	}
	if err := command(b, reg, cmdOpen, limit); err != nil {
		return err
	}
	// SEND_OK/TIMEOUT may still be latched from the slot's previous owner.
	return writeU8(b, reg, sockInterrupt, irSendOK|irTimeout)
}

func unbind(b ActiveBus, reg uint8, limit int) error {
	if err := command(b, reg, cmdClose, limit); err != nil {
		return err
	}
	return writeU8(b, reg, sockMode, protoClosed)
}

// Port returns the local port the slot is bound to.
func (u *UDPSocket) Port() uint16 { return u.port }

// Handle returns the borrowed slot handle.
func (u *UDPSocket) Handle() *Socket { return u.handle }

// SendTo queues payload for dst and blocks until the chip reports SEND_OK.
// An ARP or retransmission timeout on the chip yields ErrTimeout.
func (u *UDPSocket) SendTo(dst netip.AddrPort, payload []byte) error {
	if u.bus == nil {
		return ErrConsumed
	}
	if !dst.Addr().Is4() {
		return ErrInvalidAddr
	}
	if len(payload) > txBufferSize {
		return ErrPayloadTooLarge
	}
	b := u.bus
	reg, tx, _ := u.handle.blocks()

	err := pollUntil(u.cfg.PollLimit, func() (bool, error) {
		free, err := readU16(b, reg, sockTxFree)
		return int(free) >= len(payload), err
	})
	if err != nil {
		return err
	}

	ip := dst.Addr().As4()
	if err := b.TransferFrame(reg, sockDestIP, true, ip[:]); err != nil {
		return err
	}
	if err := writeU16(b, reg, sockDestPort, dst.Port()); err != nil {
		return err
	}
	ptr, err := readU16(b, reg, sockTxWrite)
	if err != nil {
		return err
	}
	if len(payload) > 0 {
		// The chip wraps addresses within the socket's TX buffer.
		if err := b.TransferFrame(tx, ptr, true, payload); err != nil {
			return err
		}
	}
	if err := writeU16(b, reg, sockTxWrite, ptr+uint16(len(payload))); err != nil {
		return err
	}
	// A completion from an earlier send that gave up at PollLimit must not
	// be taken for this one.
	if err := writeU8(b, reg, sockInterrupt, irSendOK|irTimeout); err != nil {
		return err
	}
	if err := command(b, reg, cmdSend, u.cfg.PollLimit); err != nil {
		return err
	}

	var ir byte
	err = pollUntil(u.cfg.PollLimit, func() (bool, error) {
		v, err := readU8(b, reg, sockInterrupt)
		ir = v
		return v&(irSendOK|irTimeout) != 0, err
	})
	if err != nil {
		return err
	}
	if err := writeU8(b, reg, sockInterrupt, ir&(irSendOK|irTimeout)); err != nil {
		return err
	}
	if ir&irSendOK == 0 {
		return ErrTimeout
	}
	return nil
}

// ReceiveFrom copies the next pending datagram into buf and returns its
// length and source. Datagrams longer than buf are truncated; the remainder
// is discarded. ErrNoData means nothing is pending.
func (u *UDPSocket) ReceiveFrom(buf []byte) (int, netip.AddrPort, error) {
	if u.bus == nil {
		return 0, netip.AddrPort{}, ErrConsumed
	}
	b := u.bus
	reg, _, rx := u.handle.blocks()

	pending, err := readU16(b, reg, sockRxReceived)
	if err != nil {
		return 0, netip.AddrPort{}, err
	}
	if pending == 0 {
		return 0, netip.AddrPort{}, ErrNoData
	}
	ptr, err := readU16(b, reg, sockRxRead)
	if err != nil {
		return 0, netip.AddrPort{}, err
	}
	var hdr [udpHeaderLen]byte
	if err := b.TransferFrame(rx, ptr, false, hdr[:]); err != nil {
		return 0, netip.AddrPort{}, err
	}
	src := netip.AddrPortFrom(
		netip.AddrFrom4([4]byte{hdr[0], hdr[1], hdr[2], hdr[3]}),
		uint16(hdr[4])<<8|uint16(hdr[5]),
	)
	size := int(uint16(hdr[6])<<8 | uint16(hdr[7]))
	n := min(size, len(buf))
	if n > 0 {
		if err := b.TransferFrame(rx, ptr+udpHeaderLen, false, buf[:n]); err != nil {
			return 0, netip.AddrPort{}, err
		}
	}
	if err := writeU16(b, reg, sockRxRead, ptr+udpHeaderLen+uint16(size)); err != nil {
		return 0, netip.AddrPort{}, err
	}
	if err := command(b, reg, cmdRecv, u.cfg.PollLimit); err != nil {
		return 0, netip.AddrPort{}, err
	}
	return n, src, nil
}

// Close shuts the slot, returns the handle to the caller and hands the bus,
// network configuration and registry back as a new Active controller. On a
// bus fault the socket stays open and usable.
func (u *UDPSocket) Close() (*Active, error) {
	if u.bus == nil {
		return nil, ErrConsumed
	}
	reg, _, _ := u.handle.blocks()
	if err := command(u.bus, reg, cmdClose, u.cfg.PollLimit); err != nil {
		return nil, err
	}
	u.handle.open = false
	a := &Active{bus: u.bus, network: u.network, sockets: u.sockets, cfg: u.cfg}
	u.bus, u.network, u.sockets = nil, nil, nil
	u.cfg.Logger.Debug("w5500 udp closed", slog.Int("slot", int(u.handle.index)))
	return a, nil
}
