package anim

import (
	"fmt"
	"math"

	"github.com/fogleman/ease"

	"github.com/matt-g-everett/skytx/util"
)

const (
	// TimeOfDayCycle is the length of the time-of-day domain in hours.
	TimeOfDayCycle = 24.0
	// DegreeCycle is the length of the latitude/longitude domain in degrees.
	DegreeCycle = 360.0

	minStarDensity = 0.1
	maxStarDensity = 5.0

	minTransitionRatio = 0.05
	maxTransitionRatio = 0.5
)

// RenderType selects the projection used to place stars on the sky.
type RenderType int

const (
	RenderFlat RenderType = iota
	RenderSpherical
)

func (r RenderType) String() string {
	switch r {
	case RenderFlat:
		return "flat"
	case RenderSpherical:
		return "spherical"
	default:
		return fmt.Sprintf("RenderType(%d)", int(r))
	}
}

// ParseRenderType converts a config string into a RenderType.
func ParseRenderType(s string) (RenderType, error) {
	switch s {
	case "flat":
		return RenderFlat, nil
	case "spherical":
		return RenderSpherical, nil
	default:
		return RenderFlat, fmt.Errorf("unknown render type %q", s)
	}
}

// TransitionEffect selects the easing curve a keyframe segment applies to
// its interpolation fraction.
type TransitionEffect int

const (
	TransitionLinear TransitionEffect = iota
	TransitionEaseQuad
	TransitionEaseCubic
	TransitionEaseSine
	TransitionEaseExpo
)

func (e TransitionEffect) String() string {
	switch e {
	case TransitionLinear:
		return "linear"
	case TransitionEaseQuad:
		return "quad"
	case TransitionEaseCubic:
		return "cubic"
	case TransitionEaseSine:
		return "sine"
	case TransitionEaseExpo:
		return "expo"
	default:
		return fmt.Sprintf("TransitionEffect(%d)", int(e))
	}
}

// ParseTransitionEffect converts a config string into a TransitionEffect.
func ParseTransitionEffect(s string) (TransitionEffect, error) {
	switch s {
	case "", "linear":
		return TransitionLinear, nil
	case "quad":
		return TransitionEaseQuad, nil
	case "cubic":
		return TransitionEaseCubic, nil
	case "sine":
		return TransitionEaseSine, nil
	case "expo":
		return TransitionEaseExpo, nil
	default:
		return TransitionLinear, fmt.Errorf("unknown transition effect %q", s)
	}
}

// Ease applies the effect's easing curve to a fraction in [0,1].
func (e TransitionEffect) Ease(t float64) float64 {
	switch e {
	case TransitionEaseQuad:
		return ease.InOutQuad(t)
	case TransitionEaseCubic:
		return ease.InOutCubic(t)
	case TransitionEaseSine:
		return ease.InOutSine(t)
	case TransitionEaseExpo:
		return ease.InOutExpo(t)
	default:
		return t
	}
}

// State holds every parameter a single twilight render depends on.
// Values are immutable once captured into a keyframe; mutate via copies.
type State struct {
	TimeOfDay       float64
	Latitude        float64
	Longitude       float64
	StarDensity     float64
	TransitionRatio float64
	Transition      TransitionEffect
	Render          RenderType
	Seed            int64
	Width           int
	Height          int
}

// DefaultState is the edit state used before any keyframes exist.
func DefaultState() State {
	return State{
		TimeOfDay:       0.0,
		Latitude:        0.0,
		Longitude:       0.0,
		StarDensity:     1.0,
		TransitionRatio: 0.2,
		Transition:      TransitionLinear,
		Render:          RenderSpherical,
		Seed:            0,
		Width:           1920,
		Height:          1080,
	}
}

// Normalised returns a copy with cyclic fields wrapped into their domains
// and bounded fields clamped to their valid ranges.
func (s State) Normalised() State {
	s.TimeOfDay = wrap(s.TimeOfDay, TimeOfDayCycle)
	s.Latitude = wrap(s.Latitude, DegreeCycle)
	s.Longitude = wrap(s.Longitude, DegreeCycle)
	s.StarDensity = util.Clamp(s.StarDensity, minStarDensity, maxStarDensity)
	s.TransitionRatio = util.Clamp(s.TransitionRatio, minTransitionRatio, maxTransitionRatio)
	if s.Width < 1 {
		s.Width = 1
	}
	if s.Height < 1 {
		s.Height = 1
	}
	return s
}

// Validate reports the first invalid field, if any.
func (s State) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("resolution must be positive, got %dx%d", s.Width, s.Height)
	}
	if s.StarDensity < 0 {
		return fmt.Errorf("star density must be non-negative, got %v", s.StarDensity)
	}
	if math.IsNaN(s.TimeOfDay) || math.IsInf(s.TimeOfDay, 0) {
		return fmt.Errorf("time of day must be finite, got %v", s.TimeOfDay)
	}
	return nil
}

func wrap(v, cycle float64) float64 {
	v = math.Mod(v, cycle)
	if v < 0 {
		v += cycle
	}
	return v
}
