package port

import (
	"github.com/phildimond/envoylimiter/internal/core/domain"
)

type CurtailmentLogic interface {
	Calculate(snapshot domain.PowerSnapshot, currentLevel uint8) uint8
	SetMaxBatteryChargeKW(kw float64)
	MaxBatteryChargeKW() float64
}
