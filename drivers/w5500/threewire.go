package w5500

import "tinygo.org/x/drivers"

// ThreeWire is an inactive 3-wire link: chip select is tied low, so every
// frame uses fixed data length mode (1, 2 or 4 bytes).
type ThreeWire struct{}

func (ThreeWire) Activate(spi drivers.SPI) ActiveBus {
	return &ActiveThreeWire{spi: spi}
}

// ActiveThreeWire is a 3-wire link with its SPI primitive attached.
type ActiveThreeWire struct {
	spi drivers.SPI
	w   [7]byte
	r   [7]byte
}

// TransferFrame splits data into 4/2/1 byte frames, each with its own header.
func (b *ActiveThreeWire) TransferFrame(block uint8, addr uint16, write bool, data []byte) error {
	for off := 0; off < len(data); {
		n, om := chunk(len(data) - off)
		a := addr + uint16(off)
		putHeader(b.w[:3], block, a, write, om)
		var err error
		if write {
			copy(b.w[3:], data[off:off+n])
			err = b.spi.Tx(b.w[:3+n], nil)
		} else {
			clear(b.w[3:])
			err = b.spi.Tx(b.w[:3+n], b.r[:3+n])
			copy(data[off:off+n], b.r[3:3+n])
		}
		if err != nil {
			return &BusError{Block: block, Addr: a, Write: write, Err: err}
		}
		off += n
	}
	return nil
}

func (b *ActiveThreeWire) Deactivate() (InactiveBus, drivers.SPI) {
	spi := b.spi
	b.spi = nil
	return ThreeWire{}, spi
}

func chunk(remaining int) (n int, om byte) {
	switch {
	case remaining >= 4:
		return 4, omFixed4
	case remaining >= 2:
		return 2, omFixed2
	default:
		return 1, omFixed1
	}
}
