package membus

import "github.com/bad-mango-solutions/pocket2e/emuerr"

// variant is one named occupant of a swap group's virtual range.
type variant struct {
	name     string
	target   Target
	physBase uint32
	perms    Perms
	size     uint32
	deviceID int
	tag      RegionTag
}

// SwapGroup is a named set of variants occupying one virtual range, with
// exactly one variant selected (or none) at a time.
type SwapGroup struct {
	name        string
	deviceID    int
	virtualBase uint32
	size        uint32
	variants    []variant
	selected    int // index into variants, -1 = none selected
	scopeLayer  *Layer
}

// Name returns the group's name.
func (g *SwapGroup) Name() string { return g.name }

// Selected returns the name of the currently selected variant, or "" if
// none is selected.
func (g *SwapGroup) Selected() string {
	if g.selected < 0 || g.selected >= len(g.variants) {
		return ""
	}
	return g.variants[g.selected].name
}

// SwapGroupManager owns the set of swap groups registered against a bus. It
// may be bound to a LayerManager so scoped groups can participate correctly
// in layer activation bookkeeping; pass nil when no scoping is needed.
type SwapGroupManager struct {
	bus    *Bus
	layers *LayerManager
	groups []*SwapGroup
}

// NewSwapGroupManager constructs a manager bound to bus. layers may be nil
// if no swap group created through this manager will be scoped to a layer.
func NewSwapGroupManager(bus *Bus, layers *LayerManager) *SwapGroupManager {
	return &SwapGroupManager{bus: bus, layers: layers}
}

// CreateSwapGroup registers a new, empty swap group over the given virtual
// range. No variant is selected initially.
func (m *SwapGroupManager) CreateSwapGroup(name string, deviceID int, virtualBase, size uint32) *SwapGroup {
	g := &SwapGroup{name: name, deviceID: deviceID, virtualBase: virtualBase, size: size, selected: -1}
	m.groups = append(m.groups, g)
	return g
}

// ScopeToLayer marks the group as effective only while l is active: the
// first variant added does not auto-select regardless of scoping, and
// SelectVariant only writes to the page table while l.Active() is true.
// Calling it is how the Language Card's ROM/RAM layer coexists with a bank
// group that must not overwrite the base ROM mapping while deactivated.
func (m *SwapGroupManager) ScopeToLayer(g *SwapGroup, l *Layer) {
	g.scopeLayer = l
}

// AddVariant records a variant; size defaults to the group's own size. The
// first variant added does not auto-select, matching the Language Card's
// requirement that a base ROM mapping remain visible until the group's
// owning layer activates.
func (m *SwapGroupManager) AddVariant(g *SwapGroup, name string, deviceID int, tag RegionTag, target Target, physBase uint32, perms Perms, size uint32) {
	if size == 0 {
		size = g.size
	}
	g.variants = append(g.variants, variant{
		name: name, target: target, physBase: physBase, perms: perms, size: size,
		deviceID: deviceID, tag: tag,
	})
}

func (g *SwapGroup) indexOf(name string) int {
	for i, v := range g.variants {
		if v.name == name {
			return i
		}
	}
	return -1
}

// SelectVariant atomically rewrites the group's page range to the named
// variant. Re-selecting the already-active variant is a no-op. If the group
// is scoped to a layer that is not currently active, the selection is
// recorded but the page table is left untouched until Materialize is called
// while that layer is active.
func (m *SwapGroupManager) SelectVariant(g *SwapGroup, name string) error {
	idx := g.indexOf(name)
	if idx < 0 {
		return emuerr.Devicef("swap group %q has no variant %q", g.name, name)
	}
	if idx == g.selected {
		return nil
	}
	g.selected = idx
	if g.scopeLayer != nil && !g.scopeLayer.Active() {
		return nil
	}
	m.writeSelected(g)
	return nil
}

// Materialize writes the group's currently selected variant (if any) into
// the page table. Layers do not call it themselves: the device owning a
// scoped group calls it after activating the group's layer, so the group's
// most recent selection takes effect.
func (m *SwapGroupManager) Materialize(g *SwapGroup) {
	if g.selected < 0 {
		return
	}
	m.writeSelected(g)
}

func (m *SwapGroupManager) writeSelected(g *SwapGroup) {
	v := g.variants[g.selected]
	startPage := g.virtualBase >> m.bus.pageBits
	count := v.size >> m.bus.pageBits
	layerID := 0
	if g.scopeLayer != nil {
		layerID = g.scopeLayer.id
	}
	for i := uint32(0); i < count; i++ {
		p := startPage + i
		entry := PageTableEntry{
			Target:   v.target,
			DeviceID: v.deviceID,
			Tag:      v.tag,
			Perms:    v.perms,
			PhysBase: v.physBase + i*m.bus.pageSize,
			LayerID:  layerID,
		}
		m.bus.setPage(p, entry)
		if m.layers != nil && g.scopeLayer != nil {
			m.layers.pageOwners[p] = layerID
		}
	}
}
