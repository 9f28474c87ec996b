// Package event provides the event log for SmartHome Core.
//
// Events record what happened to devices and automations and who did it.
// Both references are optional: an event survives the deletion of its
// device or user with the reference cleared.
//
// Recorder is the write side used by the device and automation services.
// The acting user travels in the context (WithActor); events recorded with
// an actor have source "manual", the rest "system".
//
// Usage:
//
//	rec := event.NewRecorder(repo)
//	rec.AddListener(mqttPublisher)
//
//	ctx = event.WithActor(ctx, "ana@example.com")
//	err := rec.Record(ctx, &deviceID, "Device 'Lamp' changed state to 'Apagado'")
//
//	recent, err := repo.ListRecent(ctx, 20)
//	for _, e := range recent {
//	    fmt.Println(e.LogLine())
//	}
package event
