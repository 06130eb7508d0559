package membus

// layerMapping is one page-range contribution recorded by AddMapping; it is
// not written into the page table until the layer activates.
type layerMapping struct {
	virtualBase uint32
	size        uint32
	target      Target
	physBase    uint32
	perms       Perms
	deviceID    int
	tag         RegionTag
}

// Layer is a named, priority-bearing overlay. Activating it writes its
// mapping records into the page table (where no higher-priority active
// layer already covers the page); deactivating it restores whatever was
// covering those pages beneath it.
type Layer struct {
	id       int
	name     string
	priority int
	order    int // insertion order, used for equal-priority tie-break
	active   bool
	mappings []layerMapping
}

// Name returns the layer's name.
func (l *Layer) Name() string { return l.name }

// Priority returns the layer's configured priority.
func (l *Layer) Priority() int { return l.priority }

// Active reports whether the layer is currently activated.
func (l *Layer) Active() bool { return l.active }

// LayerManager owns the set of layers registered against a Bus and
// maintains, per page, which layer (if any) is currently driving it so that
// deactivation can restore the next-highest active layer deterministically.
type LayerManager struct {
	bus        *Bus
	layers     []*Layer
	nextID     int
	nextOrder  int
	pageOwners map[uint32]int // page index -> layer id currently driving it, or 0 for "no layer" (base/unmapped)
}

// NewLayerManager constructs a manager bound to bus.
func NewLayerManager(bus *Bus) *LayerManager {
	return &LayerManager{bus: bus, pageOwners: make(map[uint32]int)}
}

// CreateLayer registers a new, initially inactive, empty layer.
func (m *LayerManager) CreateLayer(name string, priority int) *Layer {
	m.nextID++
	m.nextOrder++
	l := &Layer{id: m.nextID, name: name, priority: priority, order: m.nextOrder}
	m.layers = append(m.layers, l)
	return l
}

// AddMapping records a page-range contribution in the layer. It does not
// touch the page table; only Activate does.
func (m *LayerManager) AddMapping(l *Layer, virtualBase, size uint32, deviceID int, tag RegionTag, perms Perms, target Target, physBase uint32) {
	l.mappings = append(l.mappings, layerMapping{
		virtualBase: virtualBase, size: size, target: target,
		physBase: physBase, perms: perms, deviceID: deviceID, tag: tag,
	})
}

// winningLayerFor returns the active layer (other than excluding) whose
// mappings cover the page and that wins under "higher priority wins, later
// registration wins ties", or nil if no active layer covers it.
func (m *LayerManager) winningLayerFor(page uint32, excluding *Layer) *Layer {
	var best *Layer
	for _, cand := range m.layers {
		if cand == excluding || !cand.active {
			continue
		}
		if !cand.covers(page, m.bus) {
			continue
		}
		if best == nil || better(cand, best) {
			best = cand
		}
	}
	return best
}

// better reports whether a should win over b under "higher priority wins,
// later registration wins ties".
func better(a, b *Layer) bool {
	if a.priority != b.priority {
		return a.priority > b.priority
	}
	return a.order > b.order
}

func (l *Layer) covers(page uint32, bus *Bus) bool {
	for _, mp := range l.mappings {
		startPage := mp.virtualBase >> bus.pageBits
		count := mp.size >> bus.pageBits
		if page >= startPage && page < startPage+count {
			return true
		}
	}
	return false
}

func (l *Layer) entryFor(page uint32, bus *Bus) (PageTableEntry, bool) {
	for _, mp := range l.mappings {
		startPage := mp.virtualBase >> bus.pageBits
		count := mp.size >> bus.pageBits
		if page >= startPage && page < startPage+count {
			offsetPages := page - startPage
			return PageTableEntry{
				Target:   mp.target,
				DeviceID: mp.deviceID,
				Tag:      mp.tag,
				Perms:    mp.perms,
				PhysBase: mp.physBase + offsetPages*bus.pageSize,
				LayerID:  l.id,
			}, true
		}
	}
	return PageTableEntry{}, false
}

// Activate writes the layer's mapping records into the page table wherever
// no higher-priority active layer already covers the page. Idempotent.
func (m *LayerManager) Activate(l *Layer) {
	if l.active {
		return
	}
	l.active = true
	for _, mp := range l.mappings {
		startPage := mp.virtualBase >> m.bus.pageBits
		count := mp.size >> m.bus.pageBits
		for p := startPage; p < startPage+count; p++ {
			winner := m.winningLayerFor(p, nil)
			if winner != nil && winner != l {
				continue // a higher (or equal, later) layer already owns this page
			}
			entry, ok := l.entryFor(p, m.bus)
			if !ok {
				continue
			}
			m.bus.setPage(p, entry)
			m.pageOwners[p] = l.id
		}
	}
}

// Deactivate restores, for every page the layer was driving (tracked via
// pageOwners, so this includes pages a scoped swap group materialized on
// the layer's behalf), the next-highest still-active layer's entry, or the
// saved base mapping, or leaves the page Unmapped if neither exists.
func (m *LayerManager) Deactivate(l *Layer) {
	if !l.active {
		return
	}
	l.active = false
	for p, owner := range m.pageOwners {
		if owner != l.id {
			continue // hidden by a higher layer or driven by another; nothing to restore
		}
		delete(m.pageOwners, p)
		winner := m.winningLayerFor(p, nil)
		if winner != nil {
			entry, _ := winner.entryFor(p, m.bus)
			m.bus.setPage(p, entry)
			m.pageOwners[p] = winner.id
			continue
		}
		if base, ok := m.bus.baseEntry(p); ok {
			m.bus.setPage(p, base)
			continue
		}
		m.bus.setPage(p, PageTableEntry{})
	}
}

// SetPermissions updates permissions on all of the layer's currently-active
// pages atomically. Pages hidden beneath a higher layer are updated in the
// layer's own records so a later activation picks up the new permissions.
// Like Deactivate, and unlike Activate, this walks every page the layer
// currently owns (tracked via pageOwners), not just pages from its own
// AddMapping records,
// so it also reaches pages a scoped swap group materialized on the layer's
// behalf.
func (m *LayerManager) SetPermissions(l *Layer, perms Perms) {
	for i := range l.mappings {
		l.mappings[i].perms = perms
	}
	if !l.active {
		return
	}
	for p, owner := range m.pageOwners {
		if owner != l.id {
			continue
		}
		entry := m.bus.pageAt(p)
		entry.Perms = perms
		m.bus.setPage(p, entry)
	}
}
