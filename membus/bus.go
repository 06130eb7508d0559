package membus

import (
	"fmt"

	"github.com/bad-mango-solutions/pocket2e/emuerr"
	"github.com/bad-mango-solutions/pocket2e/logger"
)

// DefaultPageSize is the mapping granularity used unless a profile
// overrides it. Must be a power of two.
const DefaultPageSize = 4096

// BusDefault is returned for reads from unmapped pages, matching real
// hardware's floating-bus behaviour.
const BusDefault byte = 0xFF

// PageTableEntry describes one page's routing: which target serves it, the
// owning device, its region classification, permissions, the target's base
// offset for this page, and the layer that installed it (0 = base).
type PageTableEntry struct {
	Target   Target
	DeviceID int
	Tag      RegionTag
	Perms    Perms
	PhysBase uint32
	LayerID  int
}

func (e PageTableEntry) mapped() bool { return e.Tag != TagUnmapped }

// FaultRecord captures one bus fault for the fault log / debug console.
type FaultRecord struct {
	Address Address
	Kind    emuerr.BusFaultKind
	Write   bool
}

// FaultPolicy controls what happens after a fault is recorded.
type FaultPolicy int

const (
	// FaultLogAndContinue records the fault and returns the bus-default
	// value; emulation proceeds (the default).
	FaultLogAndContinue FaultPolicy = iota
	// FaultHalt additionally requests the machine halt after the fault.
	FaultHalt
)

// Bus is the main address bus: a flat page table over a configurable
// address space, with layered overlays and swap groups that mutate it.
type Bus struct {
	addressSpaceBits uint
	pageSize         uint32
	pageBits         uint
	pageMask         uint32
	pages            []PageTableEntry
	basePages        []PageTableEntry // snapshot for save_base_mapping_range
	haveBase         []bool

	faultPolicy  FaultPolicy
	faultRing    []FaultRecord
	faultRingCap int
	pageFaults   []uint64 // per-page fault counters
	halted       bool
}

// NewBus constructs a bus with the given address space width (bits) and
// page size. pageSize must be a power of two.
func NewBus(addressSpaceBits uint, pageSize uint32) *Bus {
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	pageBits := uint(0)
	for (uint32(1) << pageBits) < pageSize {
		pageBits++
	}
	pageCount := (uint64(1) << addressSpaceBits) / uint64(pageSize)
	b := &Bus{
		addressSpaceBits: addressSpaceBits,
		pageSize:         pageSize,
		pageBits:         pageBits,
		pageMask:         pageSize - 1,
		pages:            make([]PageTableEntry, pageCount),
		basePages:        make([]PageTableEntry, pageCount),
		haveBase:         make([]bool, pageCount),
		faultRingCap:     256,
		pageFaults:       make([]uint64, pageCount),
	}
	return b
}

// PageSize returns the bus's configured page size.
func (b *Bus) PageSize() uint32 { return b.pageSize }

// PageCount returns the number of pages in the address space.
func (b *Bus) PageCount() int { return len(b.pages) }

// SetFaultPolicy configures whether faults merely log or also request a
// halt.
func (b *Bus) SetFaultPolicy(p FaultPolicy) { b.faultPolicy = p }

// Halted reports whether a fault has requested the machine halt.
func (b *Bus) Halted() bool { return b.halted }

// ClearHalted resets the halt-requested flag, called by reset().
func (b *Bus) ClearHalted() { b.halted = false }

func (b *Bus) pageIndex(addr Address) uint32 { return uint32(addr) >> b.pageBits }
func (b *Bus) pageOffset(addr Address) uint32 { return uint32(addr) & b.pageMask }

func (b *Bus) alignedOrPanic(what string, v, size uint32) {
	if v%b.pageSize != 0 {
		panic(fmt.Sprintf("membus: %s %#x is not page-aligned (page size %d)", what, v, b.pageSize))
	}
	_ = size
}

// MapRegion sets every page in [virtualBase, virtualBase+size) to route
// through target, starting at physBase within the target and carrying the
// given device id, region tag and permissions. Used for layer-0 (base)
// mappings: map_region validates alignment and rejects overlap with any
// already-mapped layer-0 page.
func (b *Bus) MapRegion(virtualBase, size uint32, deviceID int, tag RegionTag, perms Perms, target Target, physBase uint32) error {
	if virtualBase%b.pageSize != 0 || size%b.pageSize != 0 {
		return emuerr.Configf("", "region [base=%#x size=%#x] is not page-aligned (page size %d)", virtualBase, size, b.pageSize)
	}
	startPage := virtualBase >> b.pageBits
	count := size >> b.pageBits
	for i := uint32(0); i < count; i++ {
		idx := startPage + i
		if idx >= uint32(len(b.pages)) {
			return emuerr.Configf("", "region page %d out of range (page count %d)", idx, len(b.pages))
		}
		if b.pages[idx].mapped() && b.pages[idx].LayerID == 0 {
			return emuerr.Configf("", "page %d already mapped by layer 0", idx)
		}
	}
	return b.MapPageRange(startPage, count, deviceID, tag, perms, target, physBase)
}

// MapPageRange is MapRegion addressed in page units, without the layer-0
// overlap check (MapRegion calls it after its own check; the auxiliary
// memory controller calls it to replace the base RAM mapping).
func (b *Bus) MapPageRange(startPage, count uint32, deviceID int, tag RegionTag, perms Perms, target Target, physBase uint32) error {
	for i := uint32(0); i < count; i++ {
		idx := startPage + i
		if idx >= uint32(len(b.pages)) {
			return emuerr.Configf("", "page %d out of range (page count %d)", idx, len(b.pages))
		}
		b.pages[idx] = PageTableEntry{
			Target:   target,
			DeviceID: deviceID,
			Tag:      tag,
			Perms:    perms,
			PhysBase: physBase + i*b.pageSize,
			LayerID:  0,
		}
	}
	return nil
}

// setPage installs entry e (already carrying the correct LayerID) at page
// idx. Used by the layer and swap-group managers.
func (b *Bus) setPage(idx uint32, e PageTableEntry) {
	if idx < uint32(len(b.pages)) {
		b.pages[idx] = e
	}
}

func (b *Bus) pageAt(idx uint32) PageTableEntry {
	if idx >= uint32(len(b.pages)) {
		return PageTableEntry{}
	}
	return b.pages[idx]
}

// SaveBaseMappingRange snapshots the current (layer-0) entries for
// [firstPage, firstPage+count) so a later layer deactivation can restore
// them. Required when a layer will sit atop a page whose base mapping was
// established before the layer was created.
func (b *Bus) SaveBaseMappingRange(firstPage, count uint32) {
	for i := uint32(0); i < count; i++ {
		idx := firstPage + i
		if idx >= uint32(len(b.pages)) {
			continue
		}
		b.basePages[idx] = b.pages[idx]
		b.haveBase[idx] = true
	}
}

func (b *Bus) baseEntry(idx uint32) (PageTableEntry, bool) {
	if idx >= uint32(len(b.haveBase)) || !b.haveBase[idx] {
		return PageTableEntry{}, false
	}
	return b.basePages[idx], true
}

func (b *Bus) recordFault(addr Address, kind emuerr.BusFaultKind, write bool) {
	idx := b.pageIndex(addr)
	if int(idx) < len(b.pageFaults) {
		b.pageFaults[idx]++
	}
	rec := FaultRecord{Address: addr, Kind: kind, Write: write}
	b.faultRing = append(b.faultRing, rec)
	if len(b.faultRing) > b.faultRingCap {
		b.faultRing = b.faultRing[len(b.faultRing)-b.faultRingCap:]
	}
	logger.Logf("bus", "fault %s at %#06x (write=%v)", kind, addr, write)
	if b.faultPolicy == FaultHalt {
		b.halted = true
	}
}

// Faults returns a copy of the fault ring, most recent last.
func (b *Bus) Faults() []FaultRecord {
	out := make([]FaultRecord, len(b.faultRing))
	copy(out, b.faultRing)
	return out
}

// PageFaultCount returns the fault counter for the page containing addr.
func (b *Bus) PageFaultCount(addr Address) uint64 {
	idx := b.pageIndex(addr)
	if int(idx) < len(b.pageFaults) {
		return b.pageFaults[idx]
	}
	return 0
}

// Read performs a width-wide read at addr. ctx.SideEffectFree must be
// honoured transitively by I/O targets it reaches.
func (b *Bus) Read(addr Address, width Width, ctx AccessContext) (uint32, error) {
	ctx.Width = width
	ctx.Write = false
	switch width {
	case Width8:
		v, err := b.read8(addr, ctx)
		return uint32(v), err
	case Width16:
		return b.readWide(addr, ctx, 2)
	case Width32:
		return b.readWide(addr, ctx, 4)
	default:
		return 0, emuerr.Busf(emuerr.UnsupportedWidth, "unsupported read width %d", width)
	}
}

// Write performs a width-wide write at addr.
func (b *Bus) Write(addr Address, width Width, value uint32, ctx AccessContext) error {
	ctx.Width = width
	ctx.Write = true
	switch width {
	case Width8:
		return b.write8(addr, byte(value), ctx)
	case Width16:
		return b.writeWide(addr, ctx, 2, value)
	case Width32:
		return b.writeWide(addr, ctx, 4, value)
	default:
		return emuerr.Busf(emuerr.UnsupportedWidth, "unsupported write width %d", width)
	}
}

func (b *Bus) read8(addr Address, ctx AccessContext) (byte, error) {
	idx := b.pageIndex(addr)
	entry := b.pageAt(idx)
	if !entry.mapped() {
		b.recordFault(addr, emuerr.Unmapped, false)
		return BusDefault, emuerr.Busf(emuerr.Unmapped, "read from unmapped address %#06x", addr)
	}
	if entry.Perms&PermRead == 0 {
		b.recordFault(addr, emuerr.Unmapped, false)
		return BusDefault, emuerr.Busf(emuerr.Unmapped, "read from non-readable page at %#06x", addr)
	}
	off := entry.PhysBase + b.pageOffset(addr)
	ctx.DeviceID = entry.DeviceID
	v, err := entry.Target.Read8(off, ctx)
	if err != nil {
		b.recordFault(addr, emuerr.Unmapped, false)
		return BusDefault, err
	}
	return v, nil
}

func (b *Bus) write8(addr Address, value byte, ctx AccessContext) error {
	idx := b.pageIndex(addr)
	entry := b.pageAt(idx)
	if !entry.mapped() {
		b.recordFault(addr, emuerr.Unmapped, true)
		return emuerr.Busf(emuerr.Unmapped, "write to unmapped address %#06x", addr)
	}
	if entry.Perms&PermWrite == 0 {
		b.recordFault(addr, emuerr.WriteProtected, true)
		return emuerr.Busf(emuerr.WriteProtected, "write to read-only page at %#06x", addr)
	}
	off := entry.PhysBase + b.pageOffset(addr)
	ctx.DeviceID = entry.DeviceID
	return entry.Target.Write8(off, value, ctx)
}

// readWide synthesizes an n-byte little-endian read from repeated 8-bit
// accesses unless the underlying target declares atomic wide support.
func (b *Bus) readWide(addr Address, ctx AccessContext, n int) (uint32, error) {
	idx := b.pageIndex(addr)
	entry := b.pageAt(idx)
	if entry.mapped() {
		if wt, ok := entry.Target.(WideTarget); ok {
			off := entry.PhysBase + b.pageOffset(addr)
			ctx.DeviceID = entry.DeviceID
			if n == 2 && entry.Target.Caps().has(CapWide16) {
				v, err := wt.Read16(off, ctx)
				return uint32(v), err
			}
			if n == 4 && entry.Target.Caps().has(CapWide32) {
				return wt.Read32(off, ctx)
			}
		}
	}
	var v uint32
	for i := 0; i < n; i++ {
		b8, err := b.read8(addr+Address(i), ctx)
		if err != nil {
			return v, err
		}
		v |= uint32(b8) << (8 * i)
	}
	return v, nil
}

func (b *Bus) writeWide(addr Address, ctx AccessContext, n int, value uint32) error {
	idx := b.pageIndex(addr)
	entry := b.pageAt(idx)
	if entry.mapped() {
		if wt, ok := entry.Target.(WideTarget); ok {
			off := entry.PhysBase + b.pageOffset(addr)
			ctx.DeviceID = entry.DeviceID
			if n == 2 && entry.Target.Caps().has(CapWide16) {
				return wt.Write16(off, uint16(value), ctx)
			}
			if n == 4 && entry.Target.Caps().has(CapWide32) {
				return wt.Write32(off, value, ctx)
			}
		}
	}
	for i := 0; i < n; i++ {
		if err := b.write8(addr+Address(i), byte(value>>(8*i)), ctx); err != nil {
			return err
		}
	}
	return nil
}

// PageSnapshot is an immutable value copy of one page table entry, safe to
// hand to a debug console or UI thread.
type PageSnapshot struct {
	Page     uint32
	Tag      RegionTag
	Perms    Perms
	DeviceID int
	LayerID  int
}

// Pages returns a snapshot of the entire page table, produced with the
// side-effect-free flag implicit (it reads entry metadata only, never
// touches a target).
func (b *Bus) Pages() []PageSnapshot {
	out := make([]PageSnapshot, len(b.pages))
	for i, e := range b.pages {
		out[i] = PageSnapshot{Page: uint32(i), Tag: e.Tag, Perms: e.Perms, DeviceID: e.DeviceID, LayerID: e.LayerID}
	}
	return out
}
