package service

import (
	"testing"

	"github.com/phildimond/envoylimiter/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testController() *Controller {
	return NewController(testLogic(), zap.NewNop())
}

func TestDisabledForcesFullOutputWithinOneTick(t *testing.T) {
	ctrl := testController()
	ctrl.State.CurrentLevel = 9
	ctrl.State.PreviousLevel = 9
	ctrl.OfferSnapshot(domain.PowerSnapshot{HousePowerKW: 1, SolarPowerKW: 8, BatteryLevel: 100})

	res := ctrl.Tick()
	assert.EqualValues(t, 0, res.Level)
	assert.True(t, res.Changed)
	assert.Equal(t, domain.RelayOutputs{false, false, false, false}, res.Outputs)
}

func TestManualOverrideAppliesCommandedLevelImmediately(t *testing.T) {
	ctrl := testController()
	require.NoError(t, ctrl.CommandLevel(7))
	assert.EqualValues(t, 0, ctrl.State.CurrentLevel, "latched value must not apply while manual is off")

	ctrl.SetManualOverride(true)
	assert.EqualValues(t, 7, ctrl.State.CurrentLevel)

	// snapshots are ignored in manual mode
	ctrl.OfferSnapshot(domain.PowerSnapshot{HousePowerKW: 1, SolarPowerKW: 8, BatteryLevel: 100})
	res := ctrl.Tick()
	assert.EqualValues(t, 7, res.Level)
	assert.Equal(t, domain.RelayOutputs{true, true, true, false}, res.Outputs)
}

func TestCommandWhileManualAppliesImmediately(t *testing.T) {
	ctrl := testController()
	ctrl.SetManualOverride(true)
	require.NoError(t, ctrl.CommandLevel(12))
	assert.EqualValues(t, 12, ctrl.State.CurrentLevel)
}

func TestOutOfRangeCommandIsDroppedNotClamped(t *testing.T) {
	ctrl := testController()
	ctrl.SetManualOverride(true)
	require.NoError(t, ctrl.CommandLevel(5))

	err := ctrl.CommandLevel(16)
	require.Error(t, err)
	var parseErr *domain.CommandParseError
	assert.ErrorAs(t, err, &parseErr)
	assert.EqualValues(t, 5, ctrl.State.CommandedLevel, "rejected command must not touch the latch")
	assert.EqualValues(t, 5, ctrl.State.CurrentLevel)
}

func TestSnapshotConsumedAtMostOnce(t *testing.T) {
	ctrl := testController()
	ctrl.EnableCurtailment(true)
	// full battery, no load: calculator walks to max curtailment
	ctrl.OfferSnapshot(domain.PowerSnapshot{BatteryLevel: 100, SolarPowerKW: 8})

	res := ctrl.Tick()
	assert.EqualValues(t, domain.MaxRelayLevel, res.Level)
	assert.True(t, res.Changed)

	// no fresh snapshot: level must hold, nothing republished
	res = ctrl.Tick()
	assert.EqualValues(t, domain.MaxRelayLevel, res.Level)
	assert.False(t, res.Changed)
}

func TestNewerSnapshotOverwritesPendingOne(t *testing.T) {
	ctrl := testController()
	ctrl.EnableCurtailment(true)
	ctrl.OfferSnapshot(domain.PowerSnapshot{BatteryLevel: 100, SolarPowerKW: 8})
	// demand beyond capacity arrives before the first tick
	ctrl.OfferSnapshot(domain.PowerSnapshot{HousePowerKW: 9, BatteryLevel: 100, SolarPowerKW: 6})

	res := ctrl.Tick()
	assert.EqualValues(t, 0, res.Level, "latest snapshot wins")
}

func TestCurtailingWithoutSnapshotHoldsLevel(t *testing.T) {
	ctrl := testController()
	ctrl.EnableCurtailment(true)
	ctrl.State.CurrentLevel = 6
	ctrl.State.PreviousLevel = 6

	res := ctrl.Tick()
	assert.EqualValues(t, 6, res.Level)
	assert.False(t, res.Changed)
}

func TestManualOffRevertsToAutomaticOnNextTick(t *testing.T) {
	ctrl := testController()
	ctrl.EnableCurtailment(true)
	ctrl.SetManualOverride(true)
	require.NoError(t, ctrl.CommandLevel(3))
	ctrl.Tick()

	ctrl.SetManualOverride(false)
	ctrl.OfferSnapshot(domain.PowerSnapshot{BatteryLevel: 100, SolarPowerKW: 8})
	res := ctrl.Tick()
	assert.EqualValues(t, domain.MaxRelayLevel, res.Level)
}

func TestMode(t *testing.T) {
	ctrl := testController()
	assert.Equal(t, "off", ctrl.Mode())
	ctrl.EnableCurtailment(true)
	assert.Equal(t, "auto", ctrl.Mode())
	ctrl.SetManualOverride(true)
	assert.Equal(t, "manual", ctrl.Mode())
}
