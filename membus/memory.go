package membus

import "fmt"

// PhysicalMemory is a named contiguous byte buffer. Bus targets borrow
// slices of it; the buffer itself lives for the machine's lifetime.
type PhysicalMemory struct {
	name string
	buf  []byte
}

// NewPhysicalMemory allocates a zero-filled buffer of the given size.
func NewPhysicalMemory(name string, size int) *PhysicalMemory {
	return &PhysicalMemory{name: name, buf: make([]byte, size)}
}

// Name returns the buffer's configured name.
func (m *PhysicalMemory) Name() string { return m.name }

// Len returns the buffer's size in bytes.
func (m *PhysicalMemory) Len() int { return len(m.buf) }

// Fill sets every byte in the buffer to b.
func (m *PhysicalMemory) Fill(b byte) {
	for i := range m.buf {
		m.buf[i] = b
	}
}

// LoadAt copies data into the buffer starting at offset. It is an error for
// the data to run past the end of the buffer.
func (m *PhysicalMemory) LoadAt(offset int, data []byte) error {
	if offset < 0 || offset+len(data) > len(m.buf) {
		return fmt.Errorf("membus: load at %d (len %d) overruns buffer %q (size %d)", offset, len(data), m.name, len(m.buf))
	}
	copy(m.buf[offset:], data)
	return nil
}

// Bytes returns the whole buffer. Intended for components (the character
// device's ROM and glyph banks, the builder's RAM randomization) that need
// direct byte access rather than a bus-mediated Slice.
func (m *PhysicalMemory) Bytes() []byte { return m.buf }

// Slice returns a lightweight handle over [offset, offset+length) of the
// buffer. It carries a reference to the buffer, not a copy.
func (m *PhysicalMemory) Slice(offset, length int) (Slice, error) {
	if offset < 0 || length < 0 || offset+length > len(m.buf) {
		return Slice{}, fmt.Errorf("membus: slice [%d:%d] out of range for buffer %q (size %d)", offset, offset+length, m.name, len(m.buf))
	}
	return Slice{mem: m, offset: offset, length: length}, nil
}

// Slice is an (owner, offset, length) handle used as the backing store of
// bus targets. It does not own storage.
type Slice struct {
	mem    *PhysicalMemory
	offset int
	length int
}

// Len returns the slice's length in bytes.
func (s Slice) Len() int { return s.length }

// Owner returns the physical memory the slice is backed by.
func (s Slice) Owner() *PhysicalMemory { return s.mem }

func (s Slice) byteAt(off int) (byte, bool) {
	if off < 0 || off >= s.length {
		return 0, false
	}
	return s.mem.buf[s.offset+off], true
}

func (s Slice) setByteAt(off int, v byte) bool {
	if off < 0 || off >= s.length {
		return false
	}
	s.mem.buf[s.offset+off] = v
	return true
}

// Bytes returns the raw bytes of the slice range. Intended for snapshotting
// and tests; callers must not retain the returned slice across a LoadAt.
func (s Slice) Bytes() []byte {
	return s.mem.buf[s.offset : s.offset+s.length]
}
