package domain

import (
	"fmt"
	"math"
)

// Fuel cost per kilometre used when configuration does not override it.
const DefaultUnitCostPerKm = 0.15

// EstimateCost returns distanceKm * unitCostPerKm.
// A negative or non-finite distance is a caller bug and panics.
func EstimateCost(distanceKm, unitCostPerKm float64) float64 {
	if distanceKm < 0 || math.IsNaN(distanceKm) || math.IsInf(distanceKm, 0) {
		panic(fmt.Sprintf("estimate cost: invalid distance %v km", distanceKm))
	}
	return distanceKm * unitCostPerKm
}
