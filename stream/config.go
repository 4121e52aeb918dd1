package stream

import (
	"fmt"

	"github.com/matt-g-everett/skytx/anim"
)

// KeyframeConfig is one keyframe entry in the YAML config.
type KeyframeConfig struct {
	Time            float64 `yaml:"time"`
	TimeOfDay       float64 `yaml:"timeOfDay"`
	Latitude        float64 `yaml:"latitude"`
	Longitude       float64 `yaml:"longitude"`
	StarDensity     float64 `yaml:"starDensity"`
	TransitionRatio float64 `yaml:"transitionRatio"`
	Transition      string  `yaml:"transition"`
	RenderType      string  `yaml:"renderType"`
	Seed            int64   `yaml:"seed"`
	Width           int     `yaml:"width"`
	Height          int     `yaml:"height"`
}

// State converts the entry into an anim.State.
func (k KeyframeConfig) State() (anim.State, error) {
	s := anim.DefaultState()
	s.TimeOfDay = k.TimeOfDay
	s.Latitude = k.Latitude
	s.Longitude = k.Longitude
	if k.StarDensity != 0 {
		s.StarDensity = k.StarDensity
	}
	if k.TransitionRatio != 0 {
		s.TransitionRatio = k.TransitionRatio
	}
	if k.Width != 0 {
		s.Width = k.Width
	}
	if k.Height != 0 {
		s.Height = k.Height
	}
	s.Seed = k.Seed

	var err error
	if s.Transition, err = anim.ParseTransitionEffect(k.Transition); err != nil {
		return s, err
	}
	if k.RenderType != "" {
		if s.Render, err = anim.ParseRenderType(k.RenderType); err != nil {
			return s, err
		}
	}
	return s.Normalised(), nil
}

type Config struct {
	Mqtt struct {
		URL      string `yaml:"url"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		Topics   struct {
			Stream string `yaml:"stream"`
		} `yaml:"topics"`
	} `yaml:"mqtt"`
	Animation struct {
		FrameRate int     `yaml:"framerate"`
		Boundary  string  `yaml:"boundary"`
		In        float64 `yaml:"in"`
		Out       float64 `yaml:"out"`
	} `yaml:"animation"`
	Keyframes []KeyframeConfig `yaml:"keyframes"`
	API       struct {
		Address string `yaml:"address"`
	} `yaml:"api"`
}

// Track builds the keyframe track declared in the config.
func (c Config) Track() (*anim.Track, error) {
	track := anim.NewTrack(anim.DefaultState())
	for i, kc := range c.Keyframes {
		s, err := kc.State()
		if err != nil {
			return nil, fmt.Errorf("keyframe %d: %w", i, err)
		}
		track.Upsert(kc.Time, s)
	}
	return track, nil
}
