package w5500

// Register helpers. Multi-byte registers are big-endian on the wire.

func readU8(b ActiveBus, block uint8, addr uint16) (byte, error) {
	var v [1]byte
	err := b.TransferFrame(block, addr, false, v[:])
	return v[0], err
}

func writeU8(b ActiveBus, block uint8, addr uint16, val byte) error {
	v := [1]byte{val}
	return b.TransferFrame(block, addr, true, v[:])
}

func readU16(b ActiveBus, block uint8, addr uint16) (uint16, error) {
	var v [2]byte
	if err := b.TransferFrame(block, addr, false, v[:]); err != nil {
		return 0, err
	}
	return uint16(v[0])<<8 | uint16(v[1]), nil
}

func writeU16(b ActiveBus, block uint8, addr uint16, val uint16) error {
	v := [2]byte{byte(val >> 8), byte(val)}
	return b.TransferFrame(block, addr, true, v[:])
}

// pollUntil calls done until it reports true. limit bounds the number of
// attempts; zero means no bound.
func pollUntil(limit int, done func() (bool, error)) error {
	for i := 0; limit <= 0 || i < limit; i++ {
		ok, err := done()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return ErrTimeout
}

// command writes Sn_CR and waits for the chip to accept it.
func command(b ActiveBus, reg uint8, cmd byte, limit int) error {
	if err := writeU8(b, reg, sockCommand, cmd); err != nil {
		return err
	}
	return pollUntil(limit, func() (bool, error) {
		v, err := readU8(b, reg, sockCommand)
		return v == 0, err
	})
}
