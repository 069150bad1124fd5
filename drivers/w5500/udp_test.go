package w5500

import (
	"bytes"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/require"

	"w5500-go/errcode"
	"w5500-go/internal/chipsim"
)

func openUDP(t *testing.T, w wiring, slot int, port uint16) (*UDPSocket, *chipsim.Chip) {
	t.Helper()
	a, sim := newActive(t, w)
	s, err := a.OpenUDP(port, a.Sockets()[slot])
	require.NoError(t, err)
	return s, sim
}

func TestUDPSendTo(t *testing.T) {
	for _, w := range wirings {
		t.Run(w.String(), func(t *testing.T) {
			require := require.New(t)
			s, sim := openUDP(t, w, 2, 5000)
			dst := netip.MustParseAddrPort("192.168.1.10:6000")

			require.NoError(s.SendTo(dst, []byte("hello")))
			require.Len(sim.Sent(), 1)
			require.Equal(chipsim.Datagram{Slot: 2, Dst: dst, Payload: []byte("hello")}, sim.Sent()[0])
			require.Zero(sim.SocketReg(2, sockInterrupt) & irSendOK)
		})
	}
}

func TestUDPSendWrapsTXBuffer(t *testing.T) {
	require := require.New(t)
	s, sim := openUDP(t, fourWire, 0, 5000)
	dst := netip.MustParseAddrPort("10.0.0.2:9")

	for i := 0; i < 5; i++ {
		payload := bytes.Repeat([]byte{byte('a' + i)}, 900)
		require.NoError(s.SendTo(dst, payload))
		require.Equal(payload, sim.Sent()[i].Payload)
	}
}

func TestUDPSendRejects(t *testing.T) {
	require := require.New(t)
	s, _ := openUDP(t, fourWire, 0, 5000)

	err := s.SendTo(netip.MustParseAddrPort("[::1]:9"), []byte("x"))
	require.ErrorIs(err, ErrInvalidAddr)
	require.Equal(errcode.InvalidParams, errcode.Of(err))

	err = s.SendTo(netip.MustParseAddrPort("10.0.0.2:9"), make([]byte, txBufferSize+1))
	require.ErrorIs(err, ErrPayloadTooLarge)
}

func TestUDPSendTimeout(t *testing.T) {
	require := require.New(t)
	s, sim := openUDP(t, threeWire, 1, 5000)
	sim.SetSendTimeout(true)

	err := s.SendTo(netip.MustParseAddrPort("10.0.0.2:9"), []byte("x"))
	require.ErrorIs(err, ErrTimeout)
	require.True(IsTransport(err))
	require.Empty(sim.Sent())
	require.Zero(sim.SocketReg(1, sockInterrupt) & irTimeout)
}

func TestUDPSendIgnoresStaleCompletion(t *testing.T) {
	require := require.New(t)
	s, sim := openUDP(t, fourWire, 1, 5000)
	sim.Latch(1, irSendOK)
	sim.SetSendTimeout(true)

	err := s.SendTo(netip.MustParseAddrPort("10.0.0.2:9"), []byte("x"))
	require.ErrorIs(err, ErrTimeout)
	require.Empty(sim.Sent())
}

func TestUDPReceiveFrom(t *testing.T) {
	for _, w := range wirings {
		t.Run(w.String(), func(t *testing.T) {
			require := require.New(t)
			s, sim := openUDP(t, w, 5, 5000)
			src := netip.MustParseAddrPort("192.168.1.77:4242")
			buf := make([]byte, 64)

			_, _, err := s.ReceiveFrom(buf)
			require.ErrorIs(err, ErrNoData)

			require.NoError(sim.Inject(5, src, []byte("first")))
			require.NoError(sim.Inject(5, src, []byte("second")))

			n, from, err := s.ReceiveFrom(buf)
			require.NoError(err)
			require.Equal(src, from)
			require.Equal("first", string(buf[:n]))

			n, _, err = s.ReceiveFrom(buf)
			require.NoError(err)
			require.Equal("second", string(buf[:n]))

			_, _, err = s.ReceiveFrom(buf)
			require.ErrorIs(err, ErrNoData)
		})
	}
}

func TestUDPReceiveTruncates(t *testing.T) {
	require := require.New(t)
	s, sim := openUDP(t, fourWire, 0, 5000)
	src := netip.MustParseAddrPort("10.0.0.3:1")

	require.NoError(sim.Inject(0, src, []byte("0123456789")))
	require.NoError(sim.Inject(0, src, []byte("next")))

	buf := make([]byte, 4)
	n, _, err := s.ReceiveFrom(buf)
	require.NoError(err)
	require.Equal("0123", string(buf[:n]))

	n, _, err = s.ReceiveFrom(buf)
	require.NoError(err)
	require.Equal("next", string(buf[:n]))
}

func TestUDPCloseReturnsActive(t *testing.T) {
	require := require.New(t)
	s, sim := openUDP(t, fourWire, 3, 5000)
	h := s.Handle()

	a, err := s.Close()
	require.NoError(err)
	require.False(h.IsOpen())
	require.Equal(byte(statusClosed), sim.Status(3))
	require.Equal(testNetwork(), a.Network())

	require.ErrorIs(s.SendTo(netip.MustParseAddrPort("10.0.0.2:9"), nil), ErrConsumed)
	_, _, err = s.ReceiveFrom(nil)
	require.ErrorIs(err, ErrConsumed)
	_, err = s.Close()
	require.ErrorIs(err, ErrConsumed)

	s2, err := a.OpenUDP(5001, h)
	require.NoError(err)
	require.Equal(uint16(5001), s2.Port())
}

func TestUDPCloseBusFaultKeepsSocket(t *testing.T) {
	require := require.New(t)
	s, sim := openUDP(t, fourWire, 3, 5000)

	sim.Fail(errBoom)
	a, err := s.Close()
	require.Nil(a)
	require.ErrorIs(err, errBoom)
	require.True(s.Handle().IsOpen())

	sim.Fail(nil)
	a, err = s.Close()
	require.NoError(err)
	require.NotNil(a)
}
