package w5500

import (
	"errors"
	"net"
	"net/netip"
)

// Network programs the chip's addressing registers. The controller treats it
// as opaque and only moves it between states.
type Network interface {
	Refresh(bus ActiveBus) error
}

// MAC is a 48-bit hardware address.
type MAC [6]byte

func (m MAC) String() string { return net.HardwareAddr(m[:]).String() }

// ParseMAC parses a colon or dash separated 48-bit address.
func ParseMAC(s string) (MAC, error) {
	hw, err := net.ParseMAC(s)
	if err != nil {
		return MAC{}, err
	}
	if len(hw) != 6 {
		return MAC{}, errors.New("w5500: MAC must be 48 bits")
	}
	var m MAC
	copy(m[:], hw)
	return m, nil
}

// Manual is a static IPv4 configuration.
type Manual struct {
	MAC     MAC
	IP      netip.Addr
	Gateway netip.Addr
	Subnet  netip.Addr
}

// Validate checks that every address is IPv4.
func (n Manual) Validate() error {
	for _, a := range [...]netip.Addr{n.IP, n.Gateway, n.Subnet} {
		if !a.Is4() {
			return errors.New("w5500: manual network needs IPv4 addresses")
		}
	}
	return nil
}

func (n Manual) Refresh(bus ActiveBus) error {
	if err := n.Validate(); err != nil {
		return err
	}
	gw, sn, ip := n.Gateway.As4(), n.Subnet.As4(), n.IP.As4()
	if err := bus.TransferFrame(BlockCommon, regGateway, true, gw[:]); err != nil {
		return err
	}
	if err := bus.TransferFrame(BlockCommon, regSubnet, true, sn[:]); err != nil {
		return err
	}
	mac := n.MAC
	if err := bus.TransferFrame(BlockCommon, regMAC, true, mac[:]); err != nil {
		return err
	}
	return bus.TransferFrame(BlockCommon, regIP, true, ip[:])
}
