package device

import "github.com/nerrad567/smarthome-core/internal/location"

// Names of the states created by the seed.
const (
	StateNameOn  = "Encendido"
	StateNameOff = "Apagado"
)

// DefaultStates are seeded in order, so a fresh store gives Encendido ID 1
// and Apagado ID 2.
var DefaultStates = []string{StateNameOn, StateNameOff}

// DefaultTypes are the device types created by the seed.
var DefaultTypes = []DeviceType{
	{Name: "Luz Inteligente", Characteristics: "Control de encendido y brillo"},
	{Name: "Termostato", Characteristics: "Control de temperatura"},
	{Name: "Cámara de Seguridad", Characteristics: "Vigilancia y grabación"},
	{Name: "Enchufe Inteligente", Characteristics: "Control remoto de corriente"},
}

// State is a named device state.
type State struct {
	ID   int64
	Name string
}

// DeviceType classifies devices.
type DeviceType struct {
	ID              int64
	Name            string
	Characteristics string
}

// Device is a managed appliance. A loaded device has all four relations set.
type Device struct {
	ID       int64
	Name     string
	State    *State
	Type     *DeviceType
	Location *location.Location
	Home     *location.Home
}

// StateName returns the device's state name, or "" when unset.
func (d *Device) StateName() string {
	if d.State == nil {
		return ""
	}
	return d.State.Name
}

// HomeID returns the device's home ID, or 0 when unset.
func (d *Device) HomeID() int64 {
	if d.Home == nil {
		return 0
	}
	return d.Home.ID
}

// refs returns the foreign keys to store for the device.
func (d *Device) refs() (stateID, typeID, locationID, homeID int64) {
	if d.State != nil {
		stateID = d.State.ID
	}
	if d.Type != nil {
		typeID = d.Type.ID
	}
	if d.Location != nil {
		locationID = d.Location.ID
	}
	return stateID, typeID, locationID, d.HomeID()
}

// ConfigurationOptions lists everything a device can reference.
type ConfigurationOptions struct {
	Homes     []location.Home
	Types     []DeviceType
	Locations []location.Location
	States    []State
}
