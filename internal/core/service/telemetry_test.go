package service

import (
	"testing"

	"github.com/phildimond/envoylimiter/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFullPayload(t *testing.T) {
	require := require.New(t)

	payload := []byte(`{
		"importPrice": 0.31,
		"exportPrice": -0.02,
		"batteryLevel": 87.5,
		"powerValues": [
			{"name": "House", "units": "kW", "value": 1.2},
			{"name": "Solar", "units": "kW", "value": 4.5},
			{"name": "Battery", "units": "kW", "value": -2.0},
			{"name": "Grid", "units": "kW", "value": -1.3}
		]
	}`)

	snapshot, err := DecodeTelemetry(payload)
	require.NoError(err)
	assert.InDelta(t, 0.31, snapshot.ImportPrice, 1e-9)
	assert.InDelta(t, -0.02, snapshot.ExportPrice, 1e-9)
	assert.InDelta(t, 87.5, snapshot.BatteryLevel, 1e-9)
	assert.InDelta(t, 1.2, snapshot.HousePowerKW, 1e-9)
	assert.InDelta(t, 4.5, snapshot.SolarPowerKW, 1e-9)
	assert.InDelta(t, -2.0, snapshot.BatteryPowerKW, 1e-9)
	assert.InDelta(t, -1.3, snapshot.GridPowerKW, 1e-9)
}

func TestDecodeWattsEqualsKilowattsDividedBy1000(t *testing.T) {
	require := require.New(t)

	inWatts := []byte(`{"powerValues": [
		{"name": "House", "units": "W", "value": 1200},
		{"name": "Solar", "units": "W", "value": 4500},
		{"name": "Battery", "units": "W", "value": -2000},
		{"name": "Grid", "units": "W", "value": -1300}
	]}`)
	inKilowatts := []byte(`{"powerValues": [
		{"name": "House", "units": "kW", "value": 1.2},
		{"name": "Solar", "units": "kW", "value": 4.5},
		{"name": "Battery", "units": "kW", "value": -2.0},
		{"name": "Grid", "units": "kW", "value": -1.3}
	]}`)

	fromWatts, err := DecodeTelemetry(inWatts)
	require.NoError(err)
	fromKilowatts, err := DecodeTelemetry(inKilowatts)
	require.NoError(err)

	assert.InDelta(t, fromKilowatts.HousePowerKW, fromWatts.HousePowerKW, 1e-9)
	assert.InDelta(t, fromKilowatts.SolarPowerKW, fromWatts.SolarPowerKW, 1e-9)
	assert.InDelta(t, fromKilowatts.BatteryPowerKW, fromWatts.BatteryPowerKW, 1e-9)
	assert.InDelta(t, fromKilowatts.GridPowerKW, fromWatts.GridPowerKW, 1e-9)
}

func TestDecodeAbsentOptionalFieldsDefaultToZero(t *testing.T) {
	snapshot, err := DecodeTelemetry([]byte(`{"powerValues": []}`))
	require.NoError(t, err)
	assert.Zero(t, snapshot.ImportPrice)
	assert.Zero(t, snapshot.ExportPrice)
	assert.Zero(t, snapshot.BatteryLevel)
}

func TestDecodeErrors(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		{"malformed json", `{"powerValues": [`},
		{"missing powerValues", `{"importPrice": 0.3}`},
		{"non-array powerValues", `{"powerValues": {"name": "House"}}`},
		{"unknown telemetry name", `{"powerValues": [{"name": "Pool", "units": "kW", "value": 1}]}`},
		{"lowercase telemetry name", `{"powerValues": [{"name": "house", "units": "kW", "value": 1}]}`},
		{"element missing units", `{"powerValues": [{"name": "House", "value": 1}]}`},
		{"element missing value", `{"powerValues": [{"name": "House", "units": "kW"}]}`},
		{"element missing name", `{"powerValues": [{"units": "kW", "value": 1}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeTelemetry([]byte(tc.payload))
			require.Error(t, err)
			var decodeErr *domain.DecodeError
			assert.ErrorAs(t, err, &decodeErr)
		})
	}
}

func TestDecodeUnknownNameIsAllOrNothing(t *testing.T) {
	// a bad element after valid ones must fail the whole message
	_, err := DecodeTelemetry([]byte(`{"powerValues": [
		{"name": "House", "units": "kW", "value": 1.0},
		{"name": "Windmill", "units": "kW", "value": 2.0}
	]}`))
	require.Error(t, err)
}
