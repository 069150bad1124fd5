package w5500

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/require"

	"w5500-go/internal/chipsim"
)

func TestParseMAC(t *testing.T) {
	m, err := ParseMAC("02:00:00:aa:bb:01")
	require.NoError(t, err)
	require.Equal(t, MAC{0x02, 0, 0, 0xaa, 0xbb, 0x01}, m)
	require.Equal(t, "02:00:00:aa:bb:01", m.String())

	_, err = ParseMAC("02:00:00:00:00:00:00:01")
	require.Error(t, err)
	_, err = ParseMAC("nope")
	require.Error(t, err)
}

func TestManualRefreshProgramsChip(t *testing.T) {
	require := require.New(t)
	sim := chipsim.New()
	bus := ThreeWire{}.Activate(sim)
	n := testNetwork()

	require.NoError(n.Refresh(bus))
	for i, b := range n.MAC {
		require.Equal(b, sim.Common(regMAC+uint16(i)))
	}
	for i, b := range n.IP.As4() {
		require.Equal(b, sim.Common(regIP+uint16(i)))
	}
	for i, b := range n.Gateway.As4() {
		require.Equal(b, sim.Common(regGateway+uint16(i)))
	}
	for i, b := range n.Subnet.As4() {
		require.Equal(b, sim.Common(regSubnet+uint16(i)))
	}
}

func TestManualRejectsIPv6(t *testing.T) {
	n := testNetwork()
	n.Gateway = netip.MustParseAddr("fe80::1")
	require.Error(t, n.Validate())

	sim := chipsim.New()
	require.Error(t, n.Refresh(ThreeWire{}.Activate(sim)))
	require.Zero(t, sim.Calls())
}
