package w5500

// Socket identifies one of the chip's eight socket engines. A Socket is only
// meaningful through a pointer handed out by the Sockets registry that owns
// it; a copied value is not owned by any registry.
type Socket struct {
	index uint8
	open  bool
}

// Index returns the hardware slot number, 0 through 7.
func (s *Socket) Index() uint8 { return s.index }

// IsOpen reports whether the slot is currently bound to an open socket.
func (s *Socket) IsOpen() bool { return s.open }

// IsOwnedBy reports whether s was handed out by r.
func (s *Socket) IsOwnedBy(r *Sockets) bool {
	if s == nil || r == nil || int(s.index) >= NumSockets {
		return false
	}
	return &r.slots[s.index] == s
}

func (s *Socket) blocks() (reg, tx, rx uint8) { return socketBlock(s.index) }

// Sockets is the registry of the eight fixed slots. Slots are never created
// or destroyed; element pointers are disjoint and stable for the registry's
// lifetime.
type Sockets struct {
	slots [NumSockets]Socket
}

// NewSockets allocates a registry with all slots closed.
func NewSockets() *Sockets {
	r := &Sockets{}
	for i := range r.slots {
		r.slots[i].index = uint8(i)
	}
	return r
}

// Slot returns the handle for slot n. It panics if n is out of range.
func (r *Sockets) Slot(n int) *Socket {
	if n < 0 || n >= NumSockets {
		panic("w5500: socket slot out of range")
	}
	return &r.slots[n]
}

// All returns the eight slot handles in numeric order.
func (r *Sockets) All() [NumSockets]*Socket {
	var out [NumSockets]*Socket
	for i := range r.slots {
		out[i] = &r.slots[i]
	}
	return out
}
