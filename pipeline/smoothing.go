package pipeline

import (
	"github.com/rocketwave/relaxbridge/algorithms/common"
)

// SmoothingConfig fixes the EMA and rescale behaviour at configuration time.
type SmoothingConfig struct {
	// HopSeconds is the processing hop interval; together with
	// TimeConstant it determines the EMA smoothing factor.
	HopSeconds float64 `json:"hop_seconds"`

	// TimeConstant is the EMA time constant in seconds.
	TimeConstant float64 `json:"time_constant"`

	// AlphaMin and AlphaMax bound the derived smoothing factor.
	AlphaMin float64 `json:"alpha_min"`
	AlphaMax float64 `json:"alpha_max"`

	// MaxStep caps the per-cycle change of the emitted value.
	MaxStep float64 `json:"max_step"`

	// Remap is the optional monotonic midrange remap; nil means identity.
	Remap RemapFunc `json:"-"`
}

// DefaultSmoothingConfig returns the smoothing parameters used for live
// feedback sessions.
func DefaultSmoothingConfig() SmoothingConfig {
	return SmoothingConfig{
		HopSeconds:   0.1,
		TimeConstant: 1.5,
		AlphaMin:     0.01,
		AlphaMax:     0.5,
		MaxStep:      0.05,
		Remap:        RemapIdentity,
	}
}

// Smoother runs the exponential smoothing, rescale and rate-limit stage.
// It owns the only mutable index state in the pipeline: the EMA value and
// the last emitted rescaled value.
//
// The stage is a two-state machine: before the first update the EMA is
// undefined, and the first finite raw index seeds it directly with no
// blending. Every operation is total over finite inputs; non-finite raw
// values repeat the previous state instead of propagating.
type Smoother struct {
	alpha   float64
	maxStep float64
	remap   RemapFunc

	initialized bool
	emaValue    float64
	lastScaled  float64
}

// NewSmoother creates a smoother with the smoothing factor
// clamp(hop/tau, alphaMin, alphaMax) fixed from cfg. The emitted value is
// seeded to the 0.5 midpoint.
func NewSmoother(cfg SmoothingConfig) *Smoother {
	remap := cfg.Remap
	if remap == nil {
		remap = RemapIdentity
	}

	return &Smoother{
		alpha:      common.Clamp(cfg.HopSeconds/cfg.TimeConstant, cfg.AlphaMin, cfg.AlphaMax),
		maxStep:    cfg.MaxStep,
		remap:      remap,
		lastScaled: 0.5,
	}
}

// Alpha returns the fixed smoothing factor.
func (s *Smoother) Alpha() float64 {
	return s.alpha
}

// EMA returns the current smoothed index; valid only after the first update.
func (s *Smoother) EMA() float64 {
	return s.emaValue
}

// LastScaled returns the last emitted rescaled value.
func (s *Smoother) LastScaled() float64 {
	return s.lastScaled
}

// Update feeds one raw index value through the stage and returns the new
// smoothed and rescaled values. A non-finite raw value performs no update
// and returns the previous state with updated=false.
func (s *Smoother) Update(raw float64) (ema, scaled float64, updated bool) {
	if !common.IsFinite(raw) {
		return s.emaValue, s.lastScaled, false
	}

	if !s.initialized {
		s.emaValue = raw
		s.initialized = true
	} else {
		s.emaValue = (1.0-s.alpha)*s.emaValue + s.alpha*raw
	}

	// Map the nominal [-1, 1] index range onto [0, 1] and clamp.
	linear := common.Clamp01(0.5 * (s.emaValue + 1.0))
	desired := common.Clamp01(s.remap(linear))

	// Hard per-cycle step limit against the previously emitted value.
	delta := desired - s.lastScaled
	switch {
	case delta > s.maxStep:
		s.lastScaled += s.maxStep
	case delta < -s.maxStep:
		s.lastScaled -= s.maxStep
	default:
		s.lastScaled = desired
	}

	return s.emaValue, s.lastScaled, true
}
