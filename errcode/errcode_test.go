package errcode

import (
	"errors"
	"fmt"
	"testing"
)

func TestCodesAreStableStrings(t *testing.T) {
	cases := map[string]Code{
		"ok":             OK,
		"bus_fault":      BusFault,
		"chip_fault":     ChipFault,
		"foreign_handle": ForeignHandle,
		"slot_in_use":    SlotInUse,
		"consumed":       Consumed,
		"timeout":        Timeout,
	}
	for want, c := range cases {
		if c.Error() != want {
			t.Fatalf("code %q mismatch: got %q", want, c)
		}
	}
}

func TestOfFollowsChain(t *testing.T) {
	base := &E{C: SlotInUse, Op: "w5500", Msg: "socket slot already open"}
	if got := Of(base); got != SlotInUse {
		t.Fatalf("Of(E) = %q", got)
	}
	if got := Of(fmt.Errorf("open: %w", base)); got != SlotInUse {
		t.Fatalf("Of(wrapped E) = %q", got)
	}
	if got := Of(fmt.Errorf("poll: %w", Timeout)); got != Timeout {
		t.Fatalf("Of(wrapped Code) = %q", got)
	}
	if got := Of(errors.New("plain")); got != Error {
		t.Fatalf("Of(plain) = %q", got)
	}
	if got := Of(nil); got != OK {
		t.Fatalf("Of(nil) = %q", got)
	}
	if s := base.Error(); s != "w5500: slot_in_use: socket slot already open" {
		t.Fatalf("Error() = %q", s)
	}
}
