package devices

import "github.com/bad-mango-solutions/pocket2e/emuerr"

// Factory constructs a device instance given its allocated id and display
// name. Concrete devices take additional construction arguments through a
// closure registered with their type id (config, if any, is parsed by the
// caller before the factory runs).
type Factory func(id int, displayName string, config map[string]any) (Device, error)

// FactoryRegistry maps a profile's device type id string to a constructor.
// Replaces the attribute-scanning device discovery of languages that
// support it: profiles reference device types by id, and an unknown id is a
// ConfigurationError rather than a silently-skipped device.
type FactoryRegistry struct {
	factories map[string]Factory
}

// NewFactoryRegistry constructs an empty factory registry.
func NewFactoryRegistry() *FactoryRegistry {
	return &FactoryRegistry{factories: make(map[string]Factory)}
}

// Register installs the factory for typeID. Registering the same type id
// twice overwrites the previous factory.
func (f *FactoryRegistry) Register(typeID string, factory Factory) {
	f.factories[typeID] = factory
}

// Build constructs a device of the given type id, or a ConfigurationError if
// no factory is registered for it.
func (f *FactoryRegistry) Build(typeID string, id int, displayName string, config map[string]any) (Device, error) {
	factory, ok := f.factories[typeID]
	if !ok {
		return nil, emuerr.Configf("", "unknown device type %q", typeID)
	}
	return factory(id, displayName, config)
}

// RegisterDefaultDevices installs the factories for every device type that
// ships with the core.
func RegisterDefaultDevices(f *FactoryRegistry) {
	f.Register("languagecard", func(id int, name string, _ map[string]any) (Device, error) {
		return NewLanguageCard(id, name), nil
	})
	f.Register("auxmem", func(id int, name string, _ map[string]any) (Device, error) {
		return NewAuxMemController(id, name), nil
	})
	f.Register("character", func(id int, name string, _ map[string]any) (Device, error) {
		return NewCharacterDevice(id, name), nil
	})
	f.Register("slotmanager", func(id int, name string, _ map[string]any) (Device, error) {
		return NewSlotManager(id, name), nil
	})
	f.Register("keyboard", func(id int, name string, _ map[string]any) (Device, error) {
		return NewKeyboard(id, name), nil
	})
	f.Register("speaker", func(id int, name string, _ map[string]any) (Device, error) {
		return NewSpeaker(id, name), nil
	})
	f.Register("gameio", func(id int, name string, _ map[string]any) (Device, error) {
		return NewGameIO(id, name), nil
	})
}
