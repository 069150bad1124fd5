// Package w5500 provides constants for block selectors, register addresses and
// bitfields used in the operation of the WIZnet W5500 Ethernet controller.
package w5500

const (
	// Chip identification (VERSIONR).
	ChipVersion = 0x04

	// Number of hardware socket engines.
	NumSockets = 8

	// Default per-socket buffer sizes (2 KiB TX / 2 KiB RX after reset).
	txBufferSize = 2048
	rxBufferSize = 2048

	// --- SPI control byte ---
	// control = BSB[4:0]<<3 | RWB<<2 | OM[1:0]
	ctrlWrite = 1 << 2

	omVariable = 0b00 // VDM, chip select frames the transfer
	omFixed1   = 0b01 // FDM, 1 data byte
	omFixed2   = 0b10 // FDM, 2 data bytes
	omFixed4   = 0b11 // FDM, 4 data bytes

	// --- Block selectors ---
	BlockCommon = 0x00

	// --- Common registers (BlockCommon) ---
	regMode       = 0x0000 // MR
	regGateway    = 0x0001 // GAR, 4 bytes
	regSubnet     = 0x0005 // SUBR, 4 bytes
	regMAC        = 0x0009 // SHAR, 6 bytes
	regIP         = 0x000F // SIPR, 4 bytes
	regRetryTime  = 0x0019 // RTR, 2 bytes, 100µs units
	regRetryCount = 0x001B // RCR
	regPHYConfig  = 0x002E // PHYCFGR
	regVersion    = 0x0039 // VERSIONR, R

	// MR bits.
	ModeReset = 0b1000_0000

	// PHYCFGR bits.
	phyReset     = 1 << 7 // active low
	phyOPMD      = 1 << 6 // configure from OPMDC instead of pins
	phyLinkUp    = 1 << 0
	phyOPMDShift = 3

	// --- Socket registers (socket register block) ---
	sockMode       = 0x0000 // Sn_MR
	sockCommand    = 0x0001 // Sn_CR
	sockInterrupt  = 0x0002 // Sn_IR, write 1 to clear
	sockStatus     = 0x0003 // Sn_SR, R
	sockPort       = 0x0004 // Sn_PORT, 2 bytes
	sockDestIP     = 0x000C // Sn_DIPR, 4 bytes
	sockDestPort   = 0x0010 // Sn_DPORT, 2 bytes
	sockRxBufSize  = 0x001E // Sn_RXBUF_SIZE, KiB
	sockTxBufSize  = 0x001F // Sn_TXBUF_SIZE, KiB
	sockTxFree     = 0x0020 // Sn_TX_FSR, 2 bytes, R
	sockTxWrite    = 0x0024 // Sn_TX_WR, 2 bytes
	sockRxReceived = 0x0026 // Sn_RX_RSR, 2 bytes, R
	sockRxRead     = 0x0028 // Sn_RX_RD, 2 bytes

	// Sn_MR protocol values.
	protoClosed = 0x00
	protoUDP    = 0x02

	// Sn_CR commands. The register reads back 0 once accepted.
	cmdOpen  = 0x01
	cmdClose = 0x10
	cmdSend  = 0x20
	cmdRecv  = 0x40

	// Sn_SR values.
	statusClosed = 0x00
	statusUDP    = 0x22

	// Sn_IR bits.
	irSendOK  = 1 << 4
	irTimeout = 1 << 3
	irRecv    = 1 << 2

	// UDP RX buffer entries start with: IP(4) PORT(2) LEN(2).
	udpHeaderLen = 8
)

// PHYMode selects the PHY operation mode written to PHYCFGR.OPMDC.
// The zero value is full auto-negotiation.
type PHYMode uint8

const (
	PHYAuto PHYMode = iota
	PHY10Half
	PHY10Full
	PHY100Half
	PHY100Full
	PHY100HalfAuto
	PHYPowerDown
)

var phyOPMDC = [...]byte{
	PHYAuto:        0b111,
	PHY10Half:      0b000,
	PHY10Full:      0b001,
	PHY100Half:     0b010,
	PHY100Full:     0b011,
	PHY100HalfAuto: 0b100,
	PHYPowerDown:   0b110,
}

// bits returns PHYCFGR with the reset bit released.
func (m PHYMode) bits() byte {
	return phyReset | phyOPMD | phyOPMDC[m]<<phyOPMDShift
}

// socketBlock returns the register, TX buffer and RX buffer block selectors
// for socket n.
func socketBlock(n uint8) (reg, tx, rx uint8) {
	base := n * 4
	return base + 1, base + 2, base + 3
}
