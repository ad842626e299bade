package service

import (
	"encoding/json"
	"fmt"

	"github.com/phildimond/envoylimiter/internal/core/domain"
)

const unitKilowatt = "kW"

type rawPowerValue struct {
	Name  *string  `json:"name"`
	Units *string  `json:"units"`
	Value *float64 `json:"value"`
}

type rawTelemetry struct {
	ImportPrice  *float64        `json:"importPrice"`
	ExportPrice  *float64        `json:"exportPrice"`
	BatteryLevel *float64        `json:"batteryLevel"`
	PowerValues  []rawPowerValue `json:"powerValues"`
}

// DecodeTelemetry parses one power/price payload into a fresh snapshot.
// The decode is all-or-nothing: any unknown telemetry name, missing
// element key or malformed structure fails the whole message and the
// caller keeps its previous snapshot. Absent optional scalar fields
// default to zero.
func DecodeTelemetry(payload []byte) (domain.PowerSnapshot, error) {
	var raw rawTelemetry
	if err := json.Unmarshal(payload, &raw); err != nil {
		return domain.PowerSnapshot{}, &domain.DecodeError{Reason: err.Error()}
	}
	if raw.PowerValues == nil {
		return domain.PowerSnapshot{}, &domain.DecodeError{Reason: "missing powerValues array"}
	}

	var snapshot domain.PowerSnapshot
	if raw.ImportPrice != nil {
		snapshot.ImportPrice = *raw.ImportPrice
	}
	if raw.ExportPrice != nil {
		snapshot.ExportPrice = *raw.ExportPrice
	}
	if raw.BatteryLevel != nil {
		snapshot.BatteryLevel = *raw.BatteryLevel
	}

	for i, pv := range raw.PowerValues {
		if pv.Name == nil || pv.Units == nil || pv.Value == nil {
			return domain.PowerSnapshot{}, &domain.DecodeError{
				Reason: fmt.Sprintf("powerValues[%d]: missing name, units or value", i),
			}
		}
		kw := toKilowatts(*pv.Value, *pv.Units)
		switch *pv.Name {
		case "House":
			snapshot.HousePowerKW = kw
		case "Solar":
			snapshot.SolarPowerKW = kw
		case "Battery":
			snapshot.BatteryPowerKW = kw
		case "Grid":
			snapshot.GridPowerKW = kw
		default:
			return domain.PowerSnapshot{}, &domain.DecodeError{
				Reason: fmt.Sprintf("unknown telemetry name %q", *pv.Name),
			}
		}
	}

	return snapshot, nil
}

// toKilowatts normalizes a raw reading. The feed's contract: values are
// either kilowatts ("kW") or watts (anything else).
func toKilowatts(value float64, units string) float64 {
	if units == unitKilowatt {
		return value
	}
	return value / 1000
}
