package errcode

import "errors"

// Code is a stable, caller-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK            Code = "ok"
	InvalidParams Code = "invalid_params"
	Unsupported   Code = "unsupported"
	Timeout       Code = "timeout"

	// Hardware side.
	BusFault    Code = "bus_fault"
	ChipFault   Code = "chip_fault"
	NoData      Code = "no_data"
	BufferSpace Code = "buffer_space"

	// Misuse side.
	ForeignHandle Code = "foreign_handle"
	SlotInUse     Code = "slot_in_use"
	Consumed      Code = "consumed"

	Error Code = "error" // generic fallback
)

// Optional wrapper when we want to keep context and a cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Of extracts a Code from an error chain, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	var c Code
	if errors.As(err, &c) {
		return c
	}
	type coder interface{ Code() Code }
	var x coder
	if errors.As(err, &x) {
		return x.Code()
	}
	return Error
}
