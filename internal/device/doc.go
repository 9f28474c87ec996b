// Package device provides the device catalogue and device management for
// SmartHome Core.
//
// # Key Types
//
//   - Device: a controllable appliance placed in a Location of a Home
//   - DeviceType: a device classification (smart light, thermostat, ...)
//   - State: a named device state (Encendido, Apagado, ...)
//
// # Architecture
//
//	┌──────────────────────────────────────────────────────────────┐
//	│                          Service                              │
//	│   validation · reference checks · events · state listeners    │
//	└──────────────┬───────────────────────────────┬───────────────┘
//	               │                               │
//	               ▼                               ▼
//	┌──────────────────────────┐     ┌──────────────────────────┐
//	│ Repository (device rows) │────▶│ Resolver (state, type,   │
//	│ TypeRepository           │     │ location, home GetByID)  │
//	│ StateRepository          │     └──────────────────────────┘
//	└──────────────────────────┘
//
// A device row is only loadable when all four references resolve; List
// skips rows that are not, and GetByID reports them as not found.
//
// # Usage
//
//	devices := device.NewRepository(db, device.NewResolver(states, types, locations, homes))
//	svc := device.NewService(db, device.Stores{
//	    Devices: devices, Types: types, States: states,
//	    Locations: locations, Homes: homes,
//	})
//	svc.SetLogger(log)
//	svc.SetEventRecorder(recorder)
//	svc.AddStateListener(publisher)
//
//	out := svc.ChangeState(ctx, deviceID, stateID)
//	fmt.Println(out.Message) // State changed to 'Apagado'
//
// # Thread Safety
//
// Repositories and Service are safe for concurrent use once configured.
// SetLogger, SetEventRecorder and AddStateListener must be called before use.
package device
