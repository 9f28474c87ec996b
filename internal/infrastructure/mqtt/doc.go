// Package mqtt publishes SmartHome Core notifications to an MQTT broker.
//
// The broker is an optional, outbound-only channel: Core announces device
// state changes and recorded events so dashboards and other consumers can
// follow the household without polling the database. Nothing is consumed
// from the broker.
//
// Topics (prefix from mqtt.topic_prefix, default "smarthome"):
//
//	smarthome/device/{id}/state   retained JSON, latest state per device
//	smarthome/event               JSON of every recorded event
//	smarthome/system/status       retained online/offline status (LWT)
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.PublishDeviceState(mqtt.DeviceState{DeviceID: 4, State: "Encendido"})
//
// Publish failures are returned to the caller; the services that trigger
// notifications only log them.
package mqtt
