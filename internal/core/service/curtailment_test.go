package service

import (
	"testing"

	"github.com/phildimond/envoylimiter/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testLogic() *DefaultCurtailmentLogic {
	return &DefaultCurtailmentLogic{
		MaxChargeKW: DefaultMaxBatteryChargeKW,
		Logger:      zap.NewNop(),
	}
}

func TestTableShape(t *testing.T) {
	require := require.New(t)

	require.Len(CurtailmentTable, 16)
	require.EqualValues(1.0, CurtailmentTable[0])
	for i := 1; i < len(CurtailmentTable); i++ {
		require.Less(CurtailmentTable[i], CurtailmentTable[i-1], "table must be strictly decreasing")
		require.Greater(CurtailmentTable[i], 0.0, "no entry may be zero")
	}
}

func TestDemandExceedsCapacityStaysAtFullProduction(t *testing.T) {
	// house 3kW + 5kW battery charge against 6kW of solar: no entry
	// covers the demand, level must stay 0
	logic := testLogic()
	level := logic.Calculate(domain.PowerSnapshot{
		HousePowerKW: 3.0,
		BatteryLevel: 50,
		SolarPowerKW: 6.0,
	}, 0)
	assert.EqualValues(t, 0, level)
}

func TestFullBatteryIdleBatterySelectsDeepCurtailment(t *testing.T) {
	// house 1kW, battery full and slightly charging, solar 8kW:
	// fraction 0.125, deepest level still above it is 13 (0.16)
	logic := testLogic()
	level := logic.Calculate(domain.PowerSnapshot{
		HousePowerKW:   1.0,
		BatteryLevel:   100,
		BatteryPowerKW: -0.5,
		SolarPowerKW:   8.0,
	}, 0)
	assert.EqualValues(t, 13, level)
}

func TestFullBatteryExportingIsCovered(t *testing.T) {
	// battery full and exporting 2kW: load covers house + battery
	logic := testLogic()
	levelIdle := logic.Calculate(domain.PowerSnapshot{
		HousePowerKW: 1.0,
		BatteryLevel: 100,
		SolarPowerKW: 8.0,
	}, 0)
	levelExporting := logic.Calculate(domain.PowerSnapshot{
		HousePowerKW:   1.0,
		BatteryLevel:   100,
		BatteryPowerKW: 2.0,
		SolarPowerKW:   8.0,
	}, 0)
	assert.Less(t, levelExporting, levelIdle, "covering the battery export must curtail less")
}

func TestZeroSolarIsSafeAtEveryLevel(t *testing.T) {
	require := require.New(t)

	logic := testLogic()
	for level := uint8(0); level <= domain.MaxRelayLevel; level++ {
		got := logic.Calculate(domain.PowerSnapshot{
			HousePowerKW: 0.5,
			BatteryLevel: 100,
			SolarPowerKW: 0,
		}, level)
		require.LessOrEqual(got, uint8(domain.MaxRelayLevel))
	}
}

func TestNoLoadWalksToMaximumCurtailment(t *testing.T) {
	logic := testLogic()
	level := logic.Calculate(domain.PowerSnapshot{
		HousePowerKW: 0,
		BatteryLevel: 100,
		SolarPowerKW: 8.0,
	}, 0)
	assert.EqualValues(t, domain.MaxRelayLevel, level)
}

func TestConstantLoadConverges(t *testing.T) {
	require := require.New(t)

	// under constant input the selected level must settle within a few
	// iterations and stop moving
	logic := testLogic()
	snapshot := domain.PowerSnapshot{
		HousePowerKW: 2.0,
		BatteryLevel: 100,
		SolarPowerKW: 6.0,
	}

	level := uint8(0)
	for range 4 {
		level = logic.Calculate(snapshot, level)
	}
	next := logic.Calculate(snapshot, level)
	diff := int(next) - int(level)
	if diff < 0 {
		diff = -diff
	}
	require.LessOrEqual(diff, 1, "level must not oscillate beyond one step under constant load")
}

func TestRelayOutputsBitMapping(t *testing.T) {
	assert.Equal(t, domain.RelayOutputs{false, false, false, false}, RelayOutputs(0))
	assert.Equal(t, domain.RelayOutputs{true, false, false, false}, RelayOutputs(1))
	assert.Equal(t, domain.RelayOutputs{false, true, false, true}, RelayOutputs(0b1010))
	assert.Equal(t, domain.RelayOutputs{true, true, true, true}, RelayOutputs(15))
}
