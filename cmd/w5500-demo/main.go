// cmd/w5500-demo/main.go
//
// Drives the full controller lifecycle against the in-memory chip simulator:
// initialise, open a UDP socket, exchange one datagram, close, deactivate,
// reactivate and reset.
package main

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/netip"
	"os"

	console "github.com/phsym/console-slog"

	"w5500-go/drivers/w5500"
	"w5500-go/errcode"
	"w5500-go/internal/chipsim"
	"w5500-go/internal/config"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: w5500-demo <config.yaml>")
	}

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(os.Args[1])
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	config.Normalize(cfg)
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		log.Fatalf("logger setup failed: %v", err)
	}
	if err := run(cfg, chipsim.New(), logger); err != nil {
		logger.Error("demo failed", "err", err, "code", errcode.Of(err))
		os.Exit(1)
	}
}

func newLogger(lc config.LogConfig) (*slog.Logger, error) {
	level := &slog.LevelVar{}
	if err := level.UnmarshalText([]byte(lc.Level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", lc.Level, err)
	}

	var handler slog.Handler
	if lc.Format == "console" {
		handler = console.NewHandler(os.Stdout, &console.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey {
					a.Key = "ts"
				}
				return a
			},
		})
	}
	return slog.New(handler), nil
}

func run(cfg *config.Config, sim *chipsim.Chip, logger *slog.Logger) error {
	network, err := config.Network(cfg.Device)
	if err != nil {
		return err
	}
	peer := netip.MustParseAddrPort(cfg.UDP.Peer)

	var bus w5500.ActiveBus
	if cfg.Device.Wiring == config.WiringThreeWire {
		bus = w5500.ThreeWire{}.Activate(sim)
	} else {
		bus = w5500.NewFourWire(sim.Select).Activate(sim)
	}

	a, err := w5500.NewUninitialized(bus, config.Driver(cfg.Device, logger)).Initialize(network)
	if err != nil {
		return err
	}
	logger.Info("chip initialized", "ip", network.IP, "mac", network.MAC)

	s, err := a.OpenUDP(cfg.UDP.Port, a.Sockets()[cfg.UDP.Slot])
	if err != nil {
		return err
	}
	if err := s.SendTo(peer, []byte(cfg.UDP.Message)); err != nil {
		return err
	}
	logger.Info("datagram sent", "slot", cfg.UDP.Slot, "peer", peer, "bytes", len(cfg.UDP.Message))

	// Loop the payload back as if the peer had echoed it.
	if err := sim.Inject(cfg.UDP.Slot, peer, []byte(cfg.UDP.Message)); err != nil {
		return err
	}
	buf := make([]byte, 1472)
	n, from, err := s.ReceiveFrom(buf)
	if err != nil {
		return err
	}
	logger.Info("datagram received", "from", from, "payload", string(buf[:n]))

	if a, err = s.Close(); err != nil {
		return err
	}

	in, spi := a.Deactivate()
	if in == nil {
		return errors.New("deactivate on consumed controller")
	}
	logger.Info("bus released", "network_kept", in.Network() == w5500.Network(network))
	a = in.Activate(spi)

	if _, err := a.Reset(); err != nil {
		return err
	}
	logger.Info("chip reset", "mode", sim.Common(0))
	return nil
}
