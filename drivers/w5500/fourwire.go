package w5500

import "tinygo.org/x/drivers"

// FourWire is an inactive 4-wire link: chip select is a dedicated GPIO and
// frames use variable data length mode.
type FourWire struct {
	cs PinOutput
}

// NewFourWire returns the inactive 4-wire marker and parks chip select high.
func NewFourWire(cs PinOutput) FourWire {
	cs(true)
	return FourWire{cs: cs}
}

func (w FourWire) Activate(spi drivers.SPI) ActiveBus {
	return &ActiveFourWire{spi: spi, cs: w.cs}
}

// ActiveFourWire is a 4-wire link with its SPI primitive attached.
type ActiveFourWire struct {
	spi drivers.SPI
	cs  PinOutput
	hdr [3]byte
}

func (b *ActiveFourWire) TransferFrame(block uint8, addr uint16, write bool, data []byte) error {
	putHeader(b.hdr[:], block, addr, write, omVariable)
	b.cs(false)
	err := b.spi.Tx(b.hdr[:], nil)
	if err == nil && len(data) > 0 {
		if write {
			err = b.spi.Tx(data, nil)
		} else {
			err = b.spi.Tx(nil, data)
		}
	}
	b.cs(true)
	if err != nil {
		return &BusError{Block: block, Addr: addr, Write: write, Err: err}
	}
	return nil
}

func (b *ActiveFourWire) Deactivate() (InactiveBus, drivers.SPI) {
	spi := b.spi
	b.spi = nil
	return FourWire{cs: b.cs}, spi
}
