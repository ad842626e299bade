package service

import (
	"github.com/phildimond/envoylimiter/internal/core/domain"
	"github.com/phildimond/envoylimiter/internal/core/port"

	"go.uber.org/zap"
)

const (
	// DefaultMaxBatteryChargeKW is the charge power a battery below 100%
	// is assumed to want, on top of house load.
	DefaultMaxBatteryChargeKW = 5.0

	// solarFloorKW substitutes for the estimated maximum solar output when
	// no production is measured. Keeps the desired fraction finite and
	// biases toward minimal curtailment.
	solarFloorKW = 0.100
)

// CurtailmentTable maps a relay level to the fraction of rated output the
// inverter delivers through its power limiting input. Index 0 is full
// production, index 15 the lowest deliverable fraction. The curve steps
// down by 0.06 per level (0.12 between levels 4 and 5), so the final
// entry is 0.04.
var CurtailmentTable = [16]float64{
	1.00, 0.94, 0.88, 0.82, 0.76, 0.64, 0.58, 0.52,
	0.46, 0.40, 0.34, 0.28, 0.22, 0.16, 0.10, 0.04,
}

type DefaultCurtailmentLogic struct {
	MaxChargeKW float64
	Logger      *zap.Logger
}

// Calculate picks the most aggressive curtailment level that still covers
// the required load, preferring under-curtailment: the scan starts at 0
// (full production) and only moves to a higher level while the table
// fraction exceeds the desired production fraction.
func (cfg *DefaultCurtailmentLogic) Calculate(snapshot domain.PowerSnapshot, currentLevel uint8) uint8 {
	currentLevel &= domain.MaxRelayLevel

	// required load
	var loadKW float64
	if snapshot.BatteryLevel < 100.0 {
		// assume the battery wants to charge at max rate in addition
		// to the house
		loadKW = snapshot.HousePowerKW + cfg.MaxChargeKW
	} else if snapshot.BatteryPowerKW <= 0 {
		loadKW = snapshot.HousePowerKW
	} else {
		// battery is unexpectedly exporting: cover it rather than
		// fight it
		loadKW = snapshot.HousePowerKW + snapshot.BatteryPowerKW
	}

	// estimated maximum solar output at full production
	solarMaxKW := solarFloorKW
	if snapshot.SolarPowerKW != 0 && CurtailmentTable[currentLevel] != 0 {
		solarMaxKW = snapshot.SolarPowerKW / CurtailmentTable[currentLevel]
	}

	desiredFraction := loadKW / solarMaxKW

	desiredIndex := 0
	for i := range CurtailmentTable {
		if i > desiredIndex && CurtailmentTable[i] > desiredFraction {
			desiredIndex = i
		}
	}

	if cfg.Logger != nil {
		cfg.Logger.Sugar().Debugf("curtailment: load=%.3fkW solarMax=%.3fkW fraction=%.3f level %d => %d",
			loadKW, solarMaxKW, desiredFraction, currentLevel, desiredIndex)
	}

	return uint8(desiredIndex)
}

func (cfg *DefaultCurtailmentLogic) MaxBatteryChargeKW() float64 {
	return cfg.MaxChargeKW
}

func (cfg *DefaultCurtailmentLogic) SetMaxBatteryChargeKW(kw float64) {
	cfg.MaxChargeKW = kw
}

// RelayOutputs maps a level to the four relay lines, bit i to output i.
func RelayOutputs(level uint8) domain.RelayOutputs {
	var out domain.RelayOutputs
	for i := range out {
		out[i] = level&(1<<i) != 0
	}
	return out
}

// ensure interface compliance
var _ port.CurtailmentLogic = (*DefaultCurtailmentLogic)(nil)
