// Package machine implements the declarative machine-profile loader and
// builder: JSON profile parsing, ROM path resolution and hash verification,
// and the nine-step build order that turns a parsed profile into a live
// Machine wired from membus, devices, iopage, scheduler and cpu.
package machine

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/bad-mango-solutions/pocket2e/emuerr"
)

// HexValue unmarshals a profile's hex-or-decimal numeric fields. Per the
// wire format, values arrive as JSON strings such as "0x4000" or "4000"
// (both meaning hex), or occasionally as a bare JSON number.
type HexValue uint64

func (h *HexValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		s = strings.TrimSpace(s)
		s = strings.TrimPrefix(s, "0x")
		s = strings.TrimPrefix(s, "0X")
		if s == "" {
			*h = 0
			return nil
		}
		v, err := strconv.ParseUint(s, 16, 64)
		if err != nil {
			return fmt.Errorf("machine: %q is not a valid hex value: %w", s, err)
		}
		*h = HexValue(v)
		return nil
	}
	var n uint64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("machine: hex value must be a JSON string or number, got %s", data)
	}
	*h = HexValue(n)
	return nil
}

// Profile is the top-level machine-profile document (spec.md §6.1).
type Profile struct {
	Name         string       `json:"name"`
	AddressSpace uint         `json:"addressSpace"`
	CPU          CPUSpec      `json:"cpu"`
	Memory       MemorySpec   `json:"memory"`
	Devices      DevicesSpec  `json:"devices"`
	Boot         BootSpec     `json:"boot"`
}

// CPUSpec names the CPU family and a clock-rate hint; only "65C02" is
// implemented.
type CPUSpec struct {
	Type    string `json:"type"`
	ClockHz uint64 `json:"clockHz"`
}

// MemorySpec groups everything the builder needs to populate the bus.
type MemorySpec struct {
	ROMImages      []ROMImageSpec      `json:"rom-images"`
	Regions        []RegionSpec        `json:"regions"`
	SwapGroups     []SwapGroupSpec     `json:"swap-groups"`
	PhysicalMemory []PhysicalMemSpec   `json:"physical-memory"`
}

// ROMImageSpec describes one loadable, optionally hash-verified ROM image.
// Regions of type "rom" reference an image by Name via their own Source
// field.
type ROMImageSpec struct {
	Name               string       `json:"name"`
	Source             string       `json:"source"`
	Size               HexValue     `json:"size"`
	Required           bool         `json:"required"`
	OnVerificationFail string       `json:"on_verification_fail"`
	Hash               ROMHashSpec  `json:"hash"`
}

// ROMHashSpec carries the declared checksum(s) for a ROM image. SHA-256 is
// preferred; MD5 is used only when SHA-256 is absent.
type ROMHashSpec struct {
	SHA256 string `json:"sha256"`
	MD5    string `json:"md5"`
}

// RegionSpec describes one mapped range of the address space.
type RegionSpec struct {
	Name         string   `json:"name"`
	Type         string   `json:"type"` // "ram", "rom", "io"
	Start        HexValue `json:"start"`
	Size         HexValue `json:"size"`
	Permissions  string   `json:"permissions"`
	Source       string   `json:"source"`       // rom-image name (type=rom) or physical-memory name (type=ram)
	SourceOffset HexValue `json:"sourceOffset"`
	Fill         HexValue `json:"fill"`
}

// PhysicalMemSpec names a standalone physical memory buffer, for swap
// groups and regions that aren't owned by a device's own ConfigureMemory.
type PhysicalMemSpec struct {
	Name string   `json:"name"`
	Size HexValue `json:"size"`
}

// SwapGroupSpec describes a profile-level (device-independent) swap group.
type SwapGroupSpec struct {
	Name        string            `json:"name"`
	VirtualBase HexValue          `json:"virtualBase"`
	Size        HexValue          `json:"size"`
	Variants    []SwapVariantSpec `json:"variants"`
}

// SwapVariantSpec names one occupant of a profile-level swap group: either
// a named physical-memory buffer (RAM bank) or a ROM image (read-only
// bank).
type SwapVariantSpec struct {
	Name           string   `json:"name"`
	PhysicalMemory string   `json:"physicalMemory"`
	ROMImage       string   `json:"romImage"`
	PhysBase       HexValue `json:"physBase"`
	Permissions    string   `json:"permissions"`
}

// DevicesSpec lists motherboard devices and slot card descriptors.
type DevicesSpec struct {
	Motherboard []DeviceSpec         `json:"motherboard"`
	Slots       map[string]DeviceSpec `json:"slots"`
}

// DeviceSpec describes one device instance; Enabled defaults to true when
// absent (see UnmarshalJSON).
type DeviceSpec struct {
	Type    string         `json:"type"`
	Name    string         `json:"name"`
	Enabled bool           `json:"enabled"`
	Config  map[string]any `json:"config"`
}

func (d *DeviceSpec) UnmarshalJSON(data []byte) error {
	type alias DeviceSpec
	aux := alias{Enabled: true}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*d = DeviceSpec(aux)
	return nil
}

// BootSpec carries the autostart/startup-slot boot hints.
type BootSpec struct {
	AutoStart   bool `json:"autoStart"`
	StartupSlot int  `json:"startupSlot"`
}

// ParseProfile parses raw JSON into a Profile, without resolving paths or
// touching the filesystem.
func ParseProfile(data []byte) (*Profile, error) {
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, emuerr.Resourcef("", "malformed profile JSON: %v", err)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// validate checks the structural invariants the builder relies on so that
// construction aborts atomically rather than leaving a partially-built
// machine exposed (spec.md §7's propagation policy).
func (p *Profile) validate() error {
	if p.AddressSpace == 0 {
		return emuerr.Configf("/addressSpace", "addressSpace must be non-zero")
	}
	seen := make(map[string]bool)
	for i, r := range p.Memory.Regions {
		loc := fmt.Sprintf("/memory/regions/%d", i)
		if r.Name == "" {
			return emuerr.Configf(loc, "region must have a name")
		}
		if seen[r.Name] {
			return emuerr.Configf(loc, "duplicate region name %q", r.Name)
		}
		seen[r.Name] = true
		switch r.Type {
		case "ram", "rom", "io":
		default:
			return emuerr.Configf(loc, "unknown region type %q", r.Type)
		}
	}
	romNames := make(map[string]bool)
	for i, rom := range p.Memory.ROMImages {
		loc := fmt.Sprintf("/memory/rom-images/%d", i)
		if rom.Name == "" {
			return emuerr.Configf(loc, "rom image must have a name")
		}
		if romNames[rom.Name] {
			return emuerr.Configf(loc, "duplicate rom image name %q", rom.Name)
		}
		romNames[rom.Name] = true
		switch rom.OnVerificationFail {
		case "", "stop", "fallback":
		default:
			return emuerr.Configf(loc, "unknown on_verification_fail %q", rom.OnVerificationFail)
		}
	}
	for _, r := range p.Memory.Regions {
		if r.Type == "rom" && r.Source != "" && !romNames[r.Source] {
			return emuerr.Configf("", "region %q references unknown rom image %q", r.Name, r.Source)
		}
	}
	return nil
}
