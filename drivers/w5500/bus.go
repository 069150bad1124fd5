package w5500

import "tinygo.org/x/drivers"

// PinOutput drives a GPIO output; false is logic low.
type PinOutput func(level bool)

// ActiveBus is an SPI link to the chip with its transfer primitive attached.
type ActiveBus interface {
	// TransferFrame performs one register read or write addressed by block
	// selector and register address. Reads fill data in place. The call
	// blocks until the SPI primitive completes or fails.
	TransferFrame(block uint8, addr uint16, write bool, data []byte) error

	// Deactivate detaches the SPI primitive and hands it back together with
	// the wiring-mode marker.
	Deactivate() (InactiveBus, drivers.SPI)
}

// InactiveBus is a wiring-mode marker without a transfer primitive.
type InactiveBus interface {
	Activate(spi drivers.SPI) ActiveBus
}

func control(block uint8, write bool, om byte) byte {
	c := block<<3 | om
	if write {
		c |= ctrlWrite
	}
	return c
}

func putHeader(dst []byte, block uint8, addr uint16, write bool, om byte) {
	dst[0] = byte(addr >> 8)
	dst[1] = byte(addr)
	dst[2] = control(block, write, om)
}
