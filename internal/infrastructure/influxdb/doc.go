// Package influxdb records device state changes as InfluxDB time series.
//
// It wraps the official influxdb-client-go v2 library. Every stored state
// change becomes one point:
//
//	device_state,device_id=4,home_id=1,state=Encendido changes=1i <ts>
//
// so state history and switching frequency can be charted per device,
// home or state without touching the relational store.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteDeviceState(4, 1, "Encendido", time.Now())
//
// Writes are non-blocking and batched (batch_size, flush_interval). Write
// failures are delivered asynchronously to the SetOnError callback.
package influxdb
