package pipeline

import (
	"fmt"
	"math"

	"github.com/rocketwave/relaxbridge/algorithms/common"
)

// RemapFunc is a monotonic map of [0,1] onto [0,1] applied after the linear
// rescale to increase sensitivity in a target midrange. Implementations must
// keep 0 and 1 as fixed points.
type RemapFunc func(float64) float64

// RemapIdentity leaves the rescaled value unchanged.
func RemapIdentity(x float64) float64 {
	return x
}

// RemapMidBoost returns a piecewise remap that amplifies deviation from the
// center of (a, b) by gain k, leaving values outside (a, b) untouched. The
// boost envelope tapers to zero at both edges, so the map is continuous.
// The slope at the band edges is 1-2k, so k is capped at 0.5 to keep the
// map monotonic.
func RemapMidBoost(a, b, k float64) RemapFunc {
	if k > 0.5 {
		k = 0.5
	}
	c := 0.5 * (a + b)
	return func(x float64) float64 {
		if x <= a || x >= b {
			return common.Clamp01(x)
		}
		t := (x - a) / (b - a)
		envelope := 4.0 * t * (1.0 - t)
		return common.Clamp01(x + k*(x-c)*envelope)
	}
}

// RemapLogistic returns a logistic curve with steepness k, recentered on 0.5
// and renormalized so 0 and 1 remain exact fixed points.
func RemapLogistic(k float64) RemapFunc {
	sigmoid := func(z float64) float64 {
		return 1.0 / (1.0 + math.Exp(-z))
	}
	lo := sigmoid(-k / 2)
	hi := sigmoid(k / 2)
	return func(x float64) float64 {
		return common.Clamp01((sigmoid(k*(x-0.5)) - lo) / (hi - lo))
	}
}

// Default curve constants observed to feel right during feedback sessions.
const (
	defaultMidBoostLow  = 0.35
	defaultMidBoostHigh = 0.50
	defaultMidBoostGain = 0.45

	defaultLogisticSteepness = 6.0
)

// RemapByName resolves a remap selector from configuration. Known names are
// "none", "midboost" and "logistic".
func RemapByName(name string) (RemapFunc, error) {
	switch name {
	case "", "none":
		return RemapIdentity, nil
	case "midboost":
		return RemapMidBoost(defaultMidBoostLow, defaultMidBoostHigh, defaultMidBoostGain), nil
	case "logistic":
		return RemapLogistic(defaultLogisticSteepness), nil
	default:
		return nil, fmt.Errorf("unknown remap %q", name)
	}
}
