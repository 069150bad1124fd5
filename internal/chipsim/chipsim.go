// Package chipsim is an in-memory W5500 that speaks the SPI frame protocol at
// byte level. It implements drivers.SPI, records every frame it decodes and
// emulates enough of the socket engines to exercise UDP open, send, receive
// and close.
//
// Chip select is modelled by Select: 4-wire frames end when it goes high;
// 3-wire (fixed length) frames end after their 1, 2 or 4 data bytes.
package chipsim

import (
	"errors"
	"net/netip"
)

const (
	numSockets = 8
	bufSize    = 2048

	regMode     = 0x0000
	regRTR      = 0x0019
	regRCR      = 0x001B
	regPHYCFGR  = 0x002E
	regVersionR = 0x0039

	snMR     = 0x00
	snCR     = 0x01
	snIR     = 0x02
	snSR     = 0x03
	snDIPR   = 0x0C
	snDPORT  = 0x10
	snRXBUF  = 0x1E
	snTXBUF  = 0x1F
	snTXFSR  = 0x20
	snTXRD   = 0x22
	snTXWR   = 0x24
	snRXRSR  = 0x26
	snRXRD   = 0x28
	snRXWR   = 0x2A
	snRegLen = 0x30

	crOpen  = 0x01
	crClose = 0x10
	crSend  = 0x20
	crRecv  = 0x40

	srClosed = 0x00
	srUDP    = 0x22

	irRecv    = 1 << 2
	irTimeout = 1 << 3
	irSendOK  = 1 << 4
)

// ErrRXFull is returned by Inject when a datagram does not fit.
var ErrRXFull = errors.New("chipsim: rx buffer full")

// Frame is one decoded register transfer.
type Frame struct {
	Block uint8
	Addr  uint16
	Write bool
	Data  []byte
}

// Datagram is a UDP payload the chip was commanded to send.
type Datagram struct {
	Slot    uint8
	Dst     netip.AddrPort
	Payload []byte
}

// Chip is the simulated controller.
type Chip struct {
	common [0x40]byte
	sock   [numSockets][snRegLen]byte
	tx     [numSockets][bufSize]byte
	rx     [numSockets][bufSize]byte

	hdr   [3]byte
	pos   int
	fixed int
	cur   Frame

	frames []Frame
	sent   []Datagram
	calls  int
	fail   error
	failAt int
	atErr  error

	sendTimeout bool
	version     byte
}

// New returns a chip in its power-on state.
func New() *Chip {
	c := &Chip{version: 0x04}
	c.reset()
	return c
}

func (c *Chip) reset() {
	c.common = [0x40]byte{}
	c.sock = [numSockets][snRegLen]byte{}
	c.common[regRTR], c.common[regRTR+1] = 0x07, 0xD0
	c.common[regRCR] = 0x08
	c.common[regPHYCFGR] = 0b1011_1001 // auto-negotiation, link up
	c.common[regVersionR] = c.version
	for n := range c.sock {
		c.sock[n][snRXBUF] = 2
		c.sock[n][snTXBUF] = 2
	}
}

// Select drives chip select; false asserts it.
func (c *Chip) Select(level bool) {
	if level {
		c.endFrame()
		return
	}
	c.pos, c.fixed = 0, 0
}

// Tx implements drivers.SPI.
func (c *Chip) Tx(w, r []byte) error {
	if err := c.call(); err != nil {
		return err
	}
	n := max(len(w), len(r))
	for i := 0; i < n; i++ {
		var in byte
		if i < len(w) {
			in = w[i]
		}
		out := c.clock(in)
		if i < len(r) {
			r[i] = out
		}
	}
	return nil
}

// Transfer implements drivers.SPI.
func (c *Chip) Transfer(b byte) (byte, error) {
	if err := c.call(); err != nil {
		return 0, err
	}
	return c.clock(b), nil
}

func (c *Chip) call() error {
	c.calls++
	if c.fail != nil {
		return c.fail
	}
	if c.calls == c.failAt {
		c.failAt = 0
		return c.atErr
	}
	return nil
}

func (c *Chip) clock(in byte) byte {
	if c.pos < 3 {
		c.hdr[c.pos] = in
		c.pos++
		if c.pos == 3 {
			ctrl := c.hdr[2]
			c.cur = Frame{
				Block: ctrl >> 3,
				Addr:  uint16(c.hdr[0])<<8 | uint16(c.hdr[1]),
				Write: ctrl&(1<<2) != 0,
			}
			switch ctrl & 0b11 {
			case 0b01:
				c.fixed = 1
			case 0b10:
				c.fixed = 2
			case 0b11:
				c.fixed = 4
			default:
				c.fixed = 0
			}
		}
		return 0
	}

	f := &c.cur
	addr := f.Addr + uint16(len(f.Data))
	var out byte
	if f.Write {
		c.store(f.Block, addr, in)
		f.Data = append(f.Data, in)
	} else {
		out = c.load(f.Block, addr)
		f.Data = append(f.Data, out)
	}
	if c.fixed > 0 && len(f.Data) == c.fixed {
		c.endFrame()
	}
	return out
}

func (c *Chip) endFrame() {
	if c.pos == 3 {
		c.frames = append(c.frames, c.cur)
	}
	c.pos, c.fixed = 0, 0
	c.cur = Frame{}
}

// socket decodes a socket block selector into slot and kind
// (0 register, 1 TX buffer, 2 RX buffer).
func socket(block uint8) (n, kind int, ok bool) {
	if block == 0 {
		return 0, 0, false
	}
	n, kind = int(block-1)/4, int(block-1)%4
	return n, kind, n < numSockets && kind < 3
}

func (c *Chip) load(block uint8, addr uint16) byte {
	if block == 0 {
		if int(addr) < len(c.common) {
			return c.common[addr]
		}
		return 0
	}
	n, kind, ok := socket(block)
	if !ok {
		return 0
	}
	switch kind {
	case 1:
		return c.tx[n][addr&(bufSize-1)]
	case 2:
		return c.rx[n][addr&(bufSize-1)]
	}
	switch addr {
	case snTXFSR, snTXFSR + 1:
		free := uint16(bufSize) - (c.u16(n, snTXWR) - c.u16(n, snTXRD))
		if addr == snTXFSR {
			return byte(free >> 8)
		}
		return byte(free)
	}
	if int(addr) < snRegLen {
		return c.sock[n][addr]
	}
	return 0
}

func (c *Chip) store(block uint8, addr uint16, v byte) {
	if block == 0 {
		switch {
		case addr == regMode:
			if v&0x80 != 0 {
				c.reset()
			}
			c.common[regMode] = v &^ 0x80
		case addr == regVersionR:
		case addr == regPHYCFGR:
			c.common[addr] = v&^1 | c.common[addr]&1 // LNK is read-only
		case int(addr) < len(c.common):
			c.common[addr] = v
		}
		return
	}
	n, kind, ok := socket(block)
	if !ok {
		return
	}
	switch kind {
	case 1:
		c.tx[n][addr&(bufSize-1)] = v
		return
	case 2:
		c.rx[n][addr&(bufSize-1)] = v
		return
	}
	switch addr {
	case snCR:
		c.exec(n, v)
	case snIR:
		c.sock[n][snIR] &^= v
	case snSR, snTXFSR, snTXFSR + 1, snRXRSR, snRXRSR + 1:
	default:
		if int(addr) < snRegLen {
			c.sock[n][addr] = v
		}
	}
}

func (c *Chip) u16(n int, addr uint16) uint16 {
	return uint16(c.sock[n][addr])<<8 | uint16(c.sock[n][addr+1])
}

func (c *Chip) put16(n int, addr uint16, v uint16) {
	c.sock[n][addr], c.sock[n][addr+1] = byte(v>>8), byte(v)
}

func (c *Chip) exec(n int, cmd byte) {
	s := &c.sock[n]
	switch cmd {
	case crOpen:
		if s[snMR]&0x0F == 0x02 {
			s[snSR] = srUDP
		}
	case crClose:
		s[snSR] = srClosed
	case crSend:
		if s[snSR] != srUDP {
			return
		}
		if c.sendTimeout {
			s[snIR] |= irTimeout
			return
		}
		rd, wr := c.u16(n, snTXRD), c.u16(n, snTXWR)
		payload := make([]byte, 0, wr-rd)
		for p := rd; p != wr; p++ {
			payload = append(payload, c.tx[n][p&(bufSize-1)])
		}
		dst := netip.AddrPortFrom(
			netip.AddrFrom4([4]byte{s[snDIPR], s[snDIPR+1], s[snDIPR+2], s[snDIPR+3]}),
			c.u16(n, snDPORT),
		)
		c.sent = append(c.sent, Datagram{Slot: uint8(n), Dst: dst, Payload: payload})
		c.put16(n, snTXRD, wr)
		s[snIR] |= irSendOK
	case crRecv:
		c.put16(n, snRXRSR, c.u16(n, snRXWR)-c.u16(n, snRXRD))
	}
	s[snCR] = 0
}

// Inject places a datagram from src into slot's RX buffer as the chip would
// on reception.
func (c *Chip) Inject(slot int, src netip.AddrPort, payload []byte) error {
	wr, rd := c.u16(slot, snRXWR), c.u16(slot, snRXRD)
	used := int(wr - rd)
	if used+8+len(payload) > bufSize {
		return ErrRXFull
	}
	ip := src.Addr().As4()
	hdr := []byte{ip[0], ip[1], ip[2], ip[3],
		byte(src.Port() >> 8), byte(src.Port()),
		byte(len(payload) >> 8), byte(len(payload))}
	for _, b := range append(hdr, payload...) {
		c.rx[slot][wr&(bufSize-1)] = b
		wr++
	}
	c.put16(slot, snRXWR, wr)
	c.put16(slot, snRXRSR, wr-rd)
	c.sock[slot][snIR] |= irRecv
	return nil
}

// Frames returns the frames decoded so far.
func (c *Chip) Frames() []Frame { return c.frames }

// ClearFrames forgets recorded frames and the Tx call count.
func (c *Chip) ClearFrames() {
	c.frames = nil
	c.calls = 0
}

// Calls returns the number of Tx/Transfer calls since the last ClearFrames.
func (c *Chip) Calls() int { return c.calls }

// Sent returns the datagrams sent so far.
func (c *Chip) Sent() []Datagram { return c.sent }

// Fail makes every following Tx/Transfer return err. Nil restores normal
// operation.
func (c *Chip) Fail(err error) { c.fail = err }

// FailAt makes only the n-th Tx/Transfer call counted since the last
// ClearFrames return err. Calls before and after it succeed.
func (c *Chip) FailAt(n int, err error) { c.failAt, c.atErr = n, err }

// Latch sets bits in slot's Sn_IR as if the chip had raised them.
func (c *Chip) Latch(slot int, bits byte) { c.sock[slot][snIR] |= bits }

// SetSendTimeout makes SEND commands end in Sn_IR.TIMEOUT.
func (c *Chip) SetSendTimeout(on bool) { c.sendTimeout = on }

// SetVersion overrides VERSIONR.
func (c *Chip) SetVersion(v byte) {
	c.version = v
	c.common[regVersionR] = v
}

// Common returns a common-block register.
func (c *Chip) Common(addr uint16) byte { return c.common[addr] }

// SocketReg returns a socket register.
func (c *Chip) SocketReg(slot int, addr uint16) byte { return c.sock[slot][addr] }

// Status returns Sn_SR for slot.
func (c *Chip) Status(slot int) byte { return c.sock[slot][snSR] }
