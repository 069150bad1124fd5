// internal/config/validate.go
package config

import (
	"fmt"
	"log/slog"
	"net/netip"

	"w5500-go/drivers/w5500"
)

const (
	WiringFourWire  = "four_wire"
	WiringThreeWire = "three_wire"
)

var phyModes = map[string]w5500.PHYMode{
	"auto":          w5500.PHYAuto,
	"10_half":       w5500.PHY10Half,
	"10_full":       w5500.PHY10Full,
	"100_half":      w5500.PHY100Half,
	"100_full":      w5500.PHY100Full,
	"100_half_auto": w5500.PHY100HalfAuto,
	"power_down":    w5500.PHYPowerDown,
}

// Validate checks configuration correctness.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	d := cfg.Device
	switch d.Wiring {
	case WiringFourWire, WiringThreeWire:
	default:
		return fmt.Errorf("device.wiring: unknown mode %q", d.Wiring)
	}
	if _, ok := phyModes[d.PHY]; !ok {
		return fmt.Errorf("device.phy: unknown mode %q", d.PHY)
	}
	if _, err := Network(d); err != nil {
		return err
	}
	if d.PollLimit < 0 {
		return fmt.Errorf("device.poll_limit: must not be negative")
	}

	u := cfg.UDP
	if u.Slot < 0 || u.Slot >= w5500.NumSockets {
		return fmt.Errorf("udp.slot: %d out of range 0..%d", u.Slot, w5500.NumSockets-1)
	}
	if u.Port == 0 {
		return fmt.Errorf("udp.port: must be set")
	}
	peer, err := netip.ParseAddrPort(u.Peer)
	if err != nil {
		return fmt.Errorf("udp.peer: %w", err)
	}
	if !peer.Addr().Is4() {
		return fmt.Errorf("udp.peer: must be IPv4")
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch cfg.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format: unknown format %q", cfg.Log.Format)
	}
	return nil
}

// Network builds the static network configuration from device settings.
func Network(d DeviceConfig) (w5500.Manual, error) {
	var n w5500.Manual
	mac, err := w5500.ParseMAC(d.MAC)
	if err != nil {
		return n, fmt.Errorf("device.mac: %w", err)
	}
	n.MAC = mac
	for _, f := range []struct {
		key string
		val string
		dst *netip.Addr
	}{
		{"device.ip", d.IP, &n.IP},
		{"device.gateway", d.Gateway, &n.Gateway},
		{"device.subnet", d.Subnet, &n.Subnet},
	} {
		a, err := netip.ParseAddr(f.val)
		if err != nil {
			return n, fmt.Errorf("%s: %w", f.key, err)
		}
		*f.dst = a
	}
	if err := n.Validate(); err != nil {
		return n, err
	}
	return n, nil
}

// Driver converts device settings into a driver configuration.
func Driver(d DeviceConfig, logger *slog.Logger) w5500.Config {
	return w5500.Config{
		PHY:        phyModes[d.PHY],
		RetryTime:  d.RetryTime,
		RetryCount: d.RetryCount,
		PollLimit:  d.PollLimit,
		Logger:     logger,
	}
}
