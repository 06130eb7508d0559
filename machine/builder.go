package machine

import (
	"math/rand"

	"github.com/bad-mango-solutions/pocket2e/devices"
	"github.com/bad-mango-solutions/pocket2e/emuerr"
	"github.com/bad-mango-solutions/pocket2e/hardware/cpu"
	"github.com/bad-mango-solutions/pocket2e/iopage"
	"github.com/bad-mango-solutions/pocket2e/logger"
	"github.com/bad-mango-solutions/pocket2e/membus"
	"github.com/bad-mango-solutions/pocket2e/scheduler"
)

// pocket2ePageSize is the bus page granularity pocket2e builds with; see
// the comment in Build's step 1 for why it overrides membus's generic
// default.
const pocket2ePageSize = 256

// Options configures a Builder. Every field has a usable zero value except
// Factories, which defaults to the core's built-in device set.
type Options struct {
	LibraryRoot string
	AppBaseDir  string
	ProfileDir  string // set when the profile was loaded from a file on disk
	Embedded    EmbeddedResource

	// RandomizeRAM fills RAM regions that have no fill byte with random
	// bytes at build time instead of zero, and seeds the CPU's A, X and Y
	// registers from Rand at every reset, matching real hardware's
	// power-on-unknown-state behaviour. Off by default so the documented
	// scenarios stay deterministic.
	RandomizeRAM bool
	Rand         *rand.Rand

	// Factories overrides the device factory registry. Nil uses
	// devices.RegisterDefaultDevices.
	Factories *devices.FactoryRegistry

	// ClickSink receives the speaker's click events, if a speaker device
	// is present. Nil discards them.
	ClickSink devices.ClickSink
}

// Builder materializes a parsed Profile into a live Machine, following
// spec.md §4.9's nine-step build order. Configuration and resource errors
// abort construction atomically: Build never returns a partially-built
// Machine alongside an error.
type Builder struct {
	opts Options
}

// NewBuilder constructs a Builder with the given options.
func NewBuilder(opts Options) *Builder {
	if opts.Factories == nil {
		opts.Factories = devices.NewFactoryRegistry()
		devices.RegisterDefaultDevices(opts.Factories)
	}
	return &Builder{opts: opts}
}

// Build runs the nine-step build order against profile.
func (b *Builder) Build(profile *Profile) (*Machine, error) {
	resolver := &Resolver{
		LibraryRoot: b.opts.LibraryRoot,
		AppBaseDir:  b.opts.AppBaseDir,
		ProfileDir:  b.opts.ProfileDir,
		Embedded:    b.opts.Embedded,
	}

	// Step 1: create bus with the configured address space. Apple IIe slot
	// ROM windows ($Cn00-$CnFF, 256 bytes each) and the $C800-$CFFF shared
	// expansion window are narrower than membus's generic 4096-byte
	// default, so pocket2e profiles always use the classic 6502 256-byte
	// page instead; every region size spec.md's schema describes (4KB/8KB/
	// 16KB banks, 256-byte slot ROMs, 2KB expansion windows) is a multiple
	// of it.
	bus := membus.NewBus(profile.AddressSpace, pocket2ePageSize)

	// Step 2: instantiate physical memories — ROM images (loaded and
	// hash-verified) and any profile-level named buffers.
	roms := make(map[string]*LoadedROM)
	var warnings []string
	for _, spec := range profile.Memory.ROMImages {
		loaded, err := LoadROM(spec, resolver)
		if err != nil {
			return nil, err
		}
		roms[spec.Name] = loaded
		if loaded.FellBack {
			warnings = append(warnings, loaded.FallbackCause)
		}
	}

	named := make(map[string]*membus.PhysicalMemory)
	for _, spec := range profile.Memory.PhysicalMemory {
		named[spec.Name] = membus.NewPhysicalMemory(spec.Name, int(spec.Size))
	}

	registry := devices.NewRegistry()

	// Step 3: map regions, RAM before ROM, then I/O windows.
	ramRegions, err := b.mapRegions(bus, profile, roms, named)
	if err != nil {
		return nil, err
	}
	// The Auxiliary Memory Controller steers the main-bank RAM region
	// starting at $0000 between main and aux; find it so step 5 can hand it
	// over before the controller's own ConfigureMemory runs.
	mainRAM := ramRegions[0]

	// Step 4: configure profile-level swap groups (device-owned swap
	// groups, e.g. the Language Card's bank group, are configured in
	// step 5 instead, scoped to the device's own layer).
	layers := membus.NewLayerManager(bus)
	groups := membus.NewSwapGroupManager(bus, layers)
	if err := b.configureSwapGroups(groups, profile, roms, named); err != nil {
		return nil, err
	}

	dispatcher := iopage.NewDispatcher()

	// Step 5: instantiate and configure_memory motherboard devices. The
	// slot manager, if present, is instantiated here but its own
	// ConfigureMemory is deferred to step 7: it must run only after slot
	// cards have been installed into it, since it fans its ROM windows
	// out over whatever cards Install attached.
	var mobo []devices.Device
	var slotManager *devices.SlotManager
	for _, spec := range profile.Devices.Motherboard {
		if !spec.Enabled {
			continue
		}
		id := registry.Allocate(spec.Type, displayName(spec), devices.Motherboard)
		dev, err := b.opts.Factories.Build(spec.Type, id, displayName(spec), spec.Config)
		if err != nil {
			return nil, err
		}
		if sm, ok := dev.(*devices.SlotManager); ok {
			slotManager = sm
			mobo = append(mobo, dev)
			continue
		}
		if am, ok := dev.(*devices.AuxMemController); ok {
			if mainRAM == nil {
				return nil, emuerr.Configf("", "device %q: no $0000-based ram region to steer between main and aux banks", spec.Type)
			}
			am.SetMainMemory(mainRAM)
		}
		ctx := &devices.BuildContext{Bus: bus, Layers: layers, Groups: groups, Dispatcher: dispatcher}
		if err := dev.ConfigureMemory(ctx); err != nil {
			return nil, err
		}
		mobo = append(mobo, dev)
	}

	// Step 7: install slot cards, then let the slot manager configure its
	// ROM windows against them. Card types are an open set resolved
	// through the same factory registry as motherboard devices.
	var slotCards []devices.Device
	for slotStr, spec := range profile.Devices.Slots {
		if !spec.Enabled {
			continue
		}
		slotNum, err := parseSlotNumber(slotStr)
		if err != nil {
			return nil, err
		}
		id := registry.Allocate(spec.Type, displayName(spec), devices.Card)
		dev, err := b.opts.Factories.Build(spec.Type, id, displayName(spec), spec.Config)
		if err != nil {
			return nil, err
		}
		card, ok := dev.(devices.SlotCard)
		if !ok {
			return nil, emuerr.Configf("", "device type %q installed in a slot does not implement SlotCard", spec.Type)
		}
		if slotManager != nil {
			slotManager.Install(slotNum, card)
		}
		ctx := &devices.BuildContext{Bus: bus, Layers: layers, Groups: groups, Dispatcher: dispatcher, Slot: slotNum}
		if err := dev.ConfigureMemory(ctx); err != nil {
			return nil, err
		}
		slotCards = append(slotCards, dev)
	}
	if slotManager != nil {
		ctx := &devices.BuildContext{Bus: bus, Layers: layers, Groups: groups, Dispatcher: dispatcher}
		if err := slotManager.ConfigureMemory(ctx); err != nil {
			return nil, err
		}
	}

	if err := bus.MapRegion(0xC000, 0x0100, registry.Allocate("iopage", "I/O page", devices.Motherboard),
		membus.TagIO, membus.PermRead|membus.PermWrite, dispatcher.AsTarget(), 0); err != nil {
		// A profile that already mapped an explicit "io" region over
		// $C000-$C0FF will collide here; that's a configuration error the
		// profile author needs to see, not a bug to swallow.
		return nil, err
	}

	b.wireSpeaker(mobo)

	// Step 8: construct the CPU.
	mc := cpu.New(bus)
	if b.opts.RandomizeRAM {
		r := b.opts.Rand
		if r == nil {
			r = rand.New(rand.NewSource(1))
		}
		mc.RandomSource = func() uint8 { return uint8(r.Intn(256)) }
	}

	// Step 9: save the base mapping for every page so that a later layer
	// deactivation (Language Card, auxiliary memory) has something to
	// restore to.
	bus.SaveBaseMappingRange(0, uint32(bus.PageCount()))

	sched := scheduler.New()

	allDevices := append(append([]devices.Device{}, mobo...), slotCards...)
	initCtx := &devices.InitContext{Bus: bus}
	for _, dev := range allDevices {
		if err := dev.Initialize(initCtx); err != nil {
			return nil, err
		}
	}

	for _, w := range warnings {
		logger.Logf("builder", "%s", w)
	}

	m := &Machine{
		Bus:        bus,
		CPU:        mc,
		Scheduler:  sched,
		Dispatcher: dispatcher,
		Registry:   registry,
		devices:    allDevices,
		profile:    profile,
		warnings:   warnings,
	}
	m.Reset()
	return m, nil
}

// mapRegions maps every profile region and returns the *membus.PhysicalMemory
// backing each "ram" region, keyed by its start address, so later build steps
// (the Auxiliary Memory Controller's main-bank steering) can reach the
// buffer a bus read/write actually lands on.
func (b *Builder) mapRegions(bus *membus.Bus, profile *Profile, roms map[string]*LoadedROM, named map[string]*membus.PhysicalMemory) (map[uint32]*membus.PhysicalMemory, error) {
	ramRegions := make(map[uint32]*membus.PhysicalMemory)
	order := []string{"ram", "rom", "io"}
	for _, kind := range order {
		for _, r := range profile.Memory.Regions {
			if r.Type != kind {
				continue
			}
			mem, err := b.mapOneRegion(bus, r, roms, named)
			if err != nil {
				return nil, err
			}
			if mem != nil {
				ramRegions[uint32(r.Start)] = mem
			}
		}
	}
	return ramRegions, nil
}

// mapOneRegion maps a single region and, for "ram" regions, returns the
// membus.PhysicalMemory backing it.
func (b *Builder) mapOneRegion(bus *membus.Bus, r RegionSpec, roms map[string]*LoadedROM, named map[string]*membus.PhysicalMemory) (*membus.PhysicalMemory, error) {
	perms := membus.ParsePerms(r.Permissions)
	switch r.Type {
	case "ram":
		mem := named[r.Source]
		if mem == nil {
			mem = membus.NewPhysicalMemory(r.Name, int(r.Size))
			if r.Fill != 0 {
				mem.Fill(byte(r.Fill))
			} else if b.opts.RandomizeRAM {
				rng := b.opts.Rand
				if rng == nil {
					rng = rand.New(rand.NewSource(1))
				}
				buf := mem.Bytes()
				for i := range buf {
					buf[i] = byte(rng.Intn(256))
				}
			}
		}
		slice, err := mem.Slice(0, int(r.Size))
		if err != nil {
			return nil, emuerr.Configf("", "region %q: %v", r.Name, err)
		}
		target := membus.NewRAMTarget(slice)
		if err := bus.MapRegion(uint32(r.Start), uint32(r.Size), 0, membus.TagRAM, perms, target, 0); err != nil {
			return nil, err
		}
		return mem, nil

	case "rom":
		loaded := roms[r.Source]
		if loaded == nil {
			return nil, emuerr.Configf("", "region %q: no rom image named %q", r.Name, r.Source)
		}
		data := sliceOrPad(loaded.Data, int(r.SourceOffset), int(r.Size))
		mem := membus.NewPhysicalMemory(r.Name, int(r.Size))
		if err := mem.LoadAt(0, data); err != nil {
			return nil, emuerr.Configf("", "region %q: %v", r.Name, err)
		}
		slice, err := mem.Slice(0, int(r.Size))
		if err != nil {
			return nil, emuerr.Configf("", "region %q: %v", r.Name, err)
		}
		target := membus.NewROMTarget(slice)
		if err := bus.MapRegion(uint32(r.Start), uint32(r.Size), 0, membus.TagROM, perms, target, 0); err != nil {
			return nil, err
		}
		return nil, nil

	case "io":
		// A bare "io" region with no backing handlers yet is mapped once
		// the dispatcher exists, right after device configuration; see
		// Build's explicit $C000-$C0FF mapping. Profiles rarely need a
		// second io-typed region, but nothing stops one addressing a
		// device-local I/O window the same way.
		return nil, nil

	default:
		return nil, emuerr.Configf("", "region %q: unknown type %q", r.Name, r.Type)
	}
}

// sliceOrPad returns data[offset:offset+size], zero-extending if data is
// shorter than offset+size.
func sliceOrPad(data []byte, offset, size int) []byte {
	out := make([]byte, size)
	if offset >= len(data) {
		return out
	}
	end := offset + size
	if end > len(data) {
		end = len(data)
	}
	copy(out, data[offset:end])
	return out
}

func (b *Builder) configureSwapGroups(groups *membus.SwapGroupManager, profile *Profile, roms map[string]*LoadedROM, named map[string]*membus.PhysicalMemory) error {
	for _, spec := range profile.Memory.SwapGroups {
		g := groups.CreateSwapGroup(spec.Name, 0, uint32(spec.VirtualBase), uint32(spec.Size))
		for _, v := range spec.Variants {
			perms := membus.ParsePerms(v.Permissions)
			switch {
			case v.PhysicalMemory != "":
				mem := named[v.PhysicalMemory]
				if mem == nil {
					return emuerr.Configf("", "swap group %q: no physical-memory named %q", spec.Name, v.PhysicalMemory)
				}
				slice, err := mem.Slice(0, int(spec.Size))
				if err != nil {
					return emuerr.Configf("", "swap group %q variant %q: %v", spec.Name, v.Name, err)
				}
				groups.AddVariant(g, v.Name, 0, membus.TagRAM, membus.NewRAMTarget(slice), uint32(v.PhysBase), perms, 0)
			case v.ROMImage != "":
				loaded := roms[v.ROMImage]
				if loaded == nil {
					return emuerr.Configf("", "swap group %q: no rom image named %q", spec.Name, v.ROMImage)
				}
				mem := membus.NewPhysicalMemory(spec.Name+"-"+v.Name, int(spec.Size))
				if err := mem.LoadAt(0, sliceOrPad(loaded.Data, 0, int(spec.Size))); err != nil {
					return err
				}
				slice, err := mem.Slice(0, int(spec.Size))
				if err != nil {
					return err
				}
				groups.AddVariant(g, v.Name, 0, membus.TagROM, membus.NewROMTarget(slice), uint32(v.PhysBase), perms, 0)
			default:
				return emuerr.Configf("", "swap group %q variant %q: neither physicalMemory nor romImage given", spec.Name, v.Name)
			}
		}
	}
	return nil
}

func (b *Builder) wireSpeaker(mobo []devices.Device) {
	for _, dev := range mobo {
		if sp, ok := dev.(*devices.Speaker); ok {
			sink := b.opts.ClickSink
			if sink == nil {
				sink = func(uint64) {}
			}
			sp.SetClickSink(sink)
		}
	}
}

func displayName(spec DeviceSpec) string {
	if spec.Name != "" {
		return spec.Name
	}
	return spec.Type
}

func parseSlotNumber(s string) (int, error) {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, emuerr.Configf("", "invalid slot number %q", s)
		}
		n = n*10 + int(c-'0')
	}
	if n < 1 || n > 7 {
		return 0, emuerr.Configf("", "slot number %d out of range 1-7", n)
	}
	return n, nil
}
