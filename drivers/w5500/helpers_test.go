package w5500

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/require"
	"tinygo.org/x/drivers"

	"w5500-go/internal/chipsim"
)

type wiring int

const (
	fourWire wiring = iota
	threeWire
)

func (w wiring) String() string {
	if w == threeWire {
		return "three_wire"
	}
	return "four_wire"
}

var wirings = []wiring{fourWire, threeWire}

func testNetwork() Manual {
	return Manual{
		MAC:     MAC{0x02, 0x00, 0x00, 0x00, 0x00, 0x01},
		IP:      netip.MustParseAddr("192.168.1.50"),
		Gateway: netip.MustParseAddr("192.168.1.1"),
		Subnet:  netip.MustParseAddr("255.255.255.0"),
	}
}

func newBus(w wiring, sim *chipsim.Chip) ActiveBus {
	if w == threeWire {
		return ThreeWire{}.Activate(sim)
	}
	return NewFourWire(sim.Select).Activate(sim)
}

// newActive brings a simulated chip up through Initialize.
func newActive(t *testing.T, w wiring) (*Active, *chipsim.Chip) {
	t.Helper()
	sim := chipsim.New()
	a, err := NewUninitialized(newBus(w, sim)).Initialize(testNetwork())
	require.NoError(t, err)
	sim.ClearFrames()
	return a, sim
}

// echoSPI completes every transfer and hands back what it was sent, so all
// reads of freshly zeroed buffers return zero.
type echoSPI struct{}

func (echoSPI) Tx(w, r []byte) error {
	copy(r, w)
	return nil
}

func (echoSPI) Transfer(b byte) (byte, error) { return b, nil }

// stuckSPI completes every transfer but reads back 0xFF, like a chip that
// never finishes a command.
type stuckSPI struct{}

func (stuckSPI) Tx(w, r []byte) error {
	for i := range r {
		r[i] = 0xFF
	}
	return nil
}

func (stuckSPI) Transfer(byte) (byte, error) { return 0xFF, nil }

func busOn(w wiring, spi drivers.SPI) ActiveBus {
	if w == threeWire {
		return ThreeWire{}.Activate(spi)
	}
	return NewFourWire(func(bool) {}).Activate(spi)
}
