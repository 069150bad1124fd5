package w5500

import (
	"errors"
	"strconv"

	"w5500-go/errcode"
)

// Errors returned by the driver. Each carries a stable errcode.Code.
var (
	ErrForeignHandle   = sentinel(errcode.ForeignHandle, "socket handle not owned by this controller")
	ErrSlotInUse       = sentinel(errcode.SlotInUse, "socket slot already open")
	ErrConsumed        = sentinel(errcode.Consumed, "state already consumed by a transition")
	ErrUnsupportedChip = sentinel(errcode.Unsupported, "unexpected chip version")
	ErrTimeout         = sentinel(errcode.Timeout, "timeout")
	ErrNoData          = sentinel(errcode.NoData, "no datagram pending")
	ErrPayloadTooLarge = sentinel(errcode.BufferSpace, "payload exceeds TX buffer")
	ErrInvalidAddr     = sentinel(errcode.InvalidParams, "destination must be IPv4")
)

func sentinel(c errcode.Code, msg string) error {
	return &errcode.E{C: c, Op: "w5500", Msg: msg}
}

// BusError is a transport-level fault reported by the SPI primitive while
// transferring one frame. It is never retried by the driver.
type BusError struct {
	Block uint8
	Addr  uint16
	Write bool
	Err   error
}

func (e *BusError) Error() string {
	op := "read"
	if e.Write {
		op = "write"
	}
	return "w5500: " + op + " block " + strconv.Itoa(int(e.Block)) +
		" addr 0x" + strconv.FormatUint(uint64(e.Addr), 16) + ": " + e.Err.Error()
}

func (e *BusError) Unwrap() error      { return e.Err }
func (e *BusError) Code() errcode.Code { return errcode.BusFault }

// OpenErrorKind tells a misuse failure apart from a hardware failure.
type OpenErrorKind uint8

const (
	OpenForeignHandle OpenErrorKind = iota + 1
	OpenSlotInUse
	OpenBusFault
	OpenChipFault
)

func (k OpenErrorKind) String() string {
	switch k {
	case OpenForeignHandle:
		return "foreign_handle"
	case OpenSlotInUse:
		return "slot_in_use"
	case OpenBusFault:
		return "bus_fault"
	case OpenChipFault:
		return "chip_fault"
	default:
		return "unknown"
	}
}

// OpenError is returned by Active.OpenUDP. The Active controller stays usable
// whatever the kind.
type OpenError struct {
	Kind OpenErrorKind
	Err  error
}

func (e *OpenError) Error() string {
	return "w5500: open socket: " + e.Kind.String() + ": " + e.Err.Error()
}

func (e *OpenError) Unwrap() error { return e.Err }

func (e *OpenError) Code() errcode.Code {
	switch e.Kind {
	case OpenForeignHandle:
		return errcode.ForeignHandle
	case OpenSlotInUse:
		return errcode.SlotInUse
	default:
		return errcode.Of(e.Err)
	}
}

// openFault wraps a binding failure: transport faults keep the bus kind,
// anything the chip itself refused is a chip fault.
func openFault(err error) *OpenError {
	var be *BusError
	if errors.As(err, &be) {
		return &OpenError{Kind: OpenBusFault, Err: err}
	}
	return &OpenError{Kind: OpenChipFault, Err: err}
}

// IsTransport reports whether err stems from the bus or the chip rather than
// from caller misuse.
func IsTransport(err error) bool {
	var be *BusError
	return errors.As(err, &be) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrUnsupportedChip)
}

// IsMisuse reports whether err is a local precondition violation.
func IsMisuse(err error) bool {
	return errors.Is(err, ErrForeignHandle) ||
		errors.Is(err, ErrSlotInUse) ||
		errors.Is(err, ErrConsumed)
}
