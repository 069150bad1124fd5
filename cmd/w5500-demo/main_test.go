package main

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"w5500-go/drivers/w5500"
	"w5500-go/internal/chipsim"
	"w5500-go/internal/config"
)

func demoConfig(wiring string) *config.Config {
	cfg := &config.Config{
		Device: config.DeviceConfig{
			Wiring:  wiring,
			MAC:     "02:00:00:00:00:01",
			IP:      "192.168.1.50",
			Gateway: "192.168.1.1",
			Subnet:  "255.255.255.0",
		},
		UDP: config.UDPConfig{Slot: 3, Port: 5000, Peer: "192.168.1.10:6000"},
	}
	config.Normalize(cfg)
	return cfg
}

func TestRunLifecycle(t *testing.T) {
	for _, wiring := range []string{config.WiringFourWire, config.WiringThreeWire} {
		t.Run(wiring, func(t *testing.T) {
			require := require.New(t)
			var out bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&out, nil))
			sim := chipsim.New()

			require.NoError(run(demoConfig(wiring), sim, logger))
			require.Len(sim.Sent(), 1)
			require.Equal([]byte("ping"), sim.Sent()[0].Payload)
			require.Contains(out.String(), `"payload":"ping"`)
			require.Contains(out.String(), `"network_kept":true`)
			require.Contains(out.String(), "chip reset")
		})
	}
}

func TestRunReportsBusFault(t *testing.T) {
	sim := chipsim.New()
	boom := errors.New("spi: stuck")
	sim.Fail(boom)

	err := run(demoConfig(config.WiringFourWire), sim, slog.New(slog.DiscardHandler))
	require.ErrorIs(t, err, boom)
	require.True(t, w5500.IsTransport(err))
}

func TestNewLoggerFormats(t *testing.T) {
	require := require.New(t)
	for _, lc := range []config.LogConfig{
		{Level: "debug", Format: "console"},
		{Level: "info", Format: "json"},
	} {
		l, err := newLogger(lc)
		require.NoError(err)
		require.NotNil(l)
	}
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	l, err := newLogger(config.LogConfig{Level: "chatty", Format: "json"})
	require.Error(t, err)
	require.ErrorContains(t, err, "chatty")
	require.Nil(t, l)
}
