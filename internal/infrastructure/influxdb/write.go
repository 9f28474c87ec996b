package influxdb

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// MeasurementDeviceState is the measurement state changes are written to.
const MeasurementDeviceState = "device_state"

// WriteDeviceState records that a device switched to state at the given
// time. The write is non-blocking; a zero time means now.
func (c *Client) WriteDeviceState(deviceID, homeID int64, state string, at time.Time) {
	if !c.IsConnected() {
		return
	}
	if at.IsZero() {
		at = time.Now()
	}

	c.writeAPI.WritePoint(deviceStatePoint(deviceID, homeID, state, at))
}

func deviceStatePoint(deviceID, homeID int64, state string, at time.Time) *write.Point {
	return write.NewPoint(
		MeasurementDeviceState,
		map[string]string{
			"device_id": strconv.FormatInt(deviceID, 10),
			"home_id":   strconv.FormatInt(homeID, 10),
			"state":     state,
		},
		map[string]interface{}{
			"changes": 1,
		},
		at,
	)
}
