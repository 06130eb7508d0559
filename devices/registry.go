package devices

// Metadata is the descriptive record a Registry maps a device id to.
type Metadata struct {
	TypeID      string
	DisplayName string
	Kind        Kind
}

// Registry allocates small integer device ids and maps them to descriptive
// metadata. It does not own device instances; it exists so devices and the
// bus can refer to each other by a stable, compact id instead of a pointer,
// which keeps page table entries small and comparable.
type Registry struct {
	next  int
	byID  map[int]Metadata
	order []int
}

// NewRegistry constructs an empty registry. Device ids start at 1; 0 is
// reserved to mean "no device" on a page table entry.
func NewRegistry() *Registry {
	return &Registry{next: 1, byID: make(map[int]Metadata)}
}

// Allocate reserves the next device id and records its metadata.
func (r *Registry) Allocate(typeID, displayName string, kind Kind) int {
	id := r.next
	r.next++
	r.byID[id] = Metadata{TypeID: typeID, DisplayName: displayName, Kind: kind}
	r.order = append(r.order, id)
	return id
}

// Lookup returns the metadata for id, or false if no device holds it.
func (r *Registry) Lookup(id int) (Metadata, bool) {
	m, ok := r.byID[id]
	return m, ok
}

// IDs returns every allocated device id in allocation order.
func (r *Registry) IDs() []int {
	out := make([]int, len(r.order))
	copy(out, r.order)
	return out
}
