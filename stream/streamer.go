package stream

import (
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/matt-g-everett/skytx/anim"
)

// Streamer publishes rendered twilight frames to display devices over
// MQTT. It is a display sink: it reads whatever frame is newest and never
// slows the render pipeline down.
type Streamer struct {
	config Config
	client mqtt.Client
	frames *anim.Slot[anim.Frame]
}

// NewStreamer creates a Streamer reading frames from the given slot.
func NewStreamer(config Config, client mqtt.Client, frames *anim.Slot[anim.Frame]) *Streamer {
	s := new(Streamer)
	s.config = config
	s.client = client
	s.frames = frames
	return s
}

// SendFrame marshals and publishes a single frame.
func (s *Streamer) SendFrame(f anim.Frame) {
	b, err := MarshalFrame(f)
	if err != nil {
		log.Printf("dropping frame %d: %v", f.Generation, err)
		return
	}
	token := s.client.Publish(s.config.Mqtt.Topics.Stream, 0, false, b)
	token.Wait()
}

// Run publishes frames as they arrive until stop closes. Frames rendered
// faster than they can be published are collapsed to the newest one.
func (s *Streamer) Run(stop <-chan struct{}) {
	for {
		f, ok := s.frames.TakeLatest(stop)
		if !ok {
			return
		}
		s.SendFrame(f)
	}
}
