package anim

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// Mode is the playback state machine position.
type Mode int

const (
	Stopped Mode = iota
	Playing
	Paused
	Scrubbing
)

func (m Mode) String() string {
	switch m {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Scrubbing:
		return "scrubbing"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// BoundaryPolicy decides what happens when playback reaches the out point.
type BoundaryPolicy int

const (
	// HoldAtOut clamps the position to the out point and pauses.
	HoldAtOut BoundaryPolicy = iota
	// LoopToIn wraps the position back to the in point and keeps playing.
	LoopToIn
)

// ParseBoundaryPolicy converts a config string into a BoundaryPolicy.
func ParseBoundaryPolicy(s string) (BoundaryPolicy, error) {
	switch s {
	case "", "hold":
		return HoldAtOut, nil
	case "loop":
		return LoopToIn, nil
	default:
		return HoldAtOut, fmt.Errorf("unknown boundary policy %q", s)
	}
}

const (
	MinFrameRate = 1
	MaxFrameRate = 60
)

// ErrInvalidFrameRate is returned by SetFrameRate for rates outside [1,60].
var ErrInvalidFrameRate = errors.New("frame rate must be between 1 and 60")

// A Player tracks the playback position along a track and advances it with
// wall-clock time. Control calls may arrive from the hosting goroutine
// while the driver ticks Advance; every critical section here is short and
// never blocks.
type Player struct {
	mu        sync.Mutex
	mode      Mode
	position  float64
	rate      float64 // position units per second
	frameRate int
	policy    BoundaryPolicy
	inPoint   float64
	outPoint  float64
	hasRange  bool
	reference time.Time
}

// NewPlayer creates a stopped Player at position 0.
func NewPlayer(frameRate int, policy BoundaryPolicy) (*Player, error) {
	if frameRate < MinFrameRate || frameRate > MaxFrameRate {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidFrameRate, frameRate)
	}
	p := new(Player)
	p.mode = Stopped
	p.rate = 1.0
	p.frameRate = frameRate
	p.policy = policy
	return p, nil
}

// Mode reports the current state machine position.
func (p *Player) Mode() Mode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode
}

// Position reports the current playback position.
func (p *Player) Position() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.position
}

// FrameRate reports the configured frame rate.
func (p *Player) FrameRate() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frameRate
}

// Interval reports the tick interval implied by the frame rate.
func (p *Player) Interval() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return time.Duration(float64(time.Second) / float64(p.frameRate))
}

// SetRange sets the in/out points used by the boundary policy.
func (p *Player) SetRange(in, out float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inPoint = in
	p.outPoint = out
	p.hasRange = out > in
}

// ClearRange removes the in/out points.
func (p *Player) ClearRange() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hasRange = false
}

// Play starts playback from the current position, anchoring it to the
// current wall-clock instant.
func (p *Player) Play(now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mode = Playing
	p.reference = now
}

// Pause freezes the position. Only meaningful while playing or scrubbing.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mode == Playing || p.mode == Scrubbing {
		p.mode = Paused
	}
}

// Stop halts playback and resets the position to the start of the range,
// or zero when no range is set.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mode = Stopped
	if p.hasRange {
		p.position = p.inPoint
	} else {
		p.position = 0
	}
}

// Seek moves the position directly without changing the mode.
func (p *Player) Seek(t float64, now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.position = t
	p.reference = now
}

// Scrub moves the position directly and enters the scrubbing mode.
func (p *Player) Scrub(t float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.position = t
	p.mode = Scrubbing
}

// SetFrameRate changes the tick rate for subsequent ticks. Rates outside
// [1,60] are rejected and the previous rate is retained.
func (p *Player) SetFrameRate(fps int) error {
	if fps < MinFrameRate || fps > MaxFrameRate {
		return fmt.Errorf("%w, got %d", ErrInvalidFrameRate, fps)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frameRate = fps
	return nil
}

// Advance moves the position forward by the wall-clock time elapsed since
// the previous advance, then applies the boundary policy. It returns the
// updated position. Calls in any mode but Playing are no-ops.
func (p *Player) Advance(now time.Time) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.mode != Playing {
		return p.position
	}

	elapsed := now.Sub(p.reference).Seconds()
	if elapsed > 0 {
		p.position += elapsed * p.rate
	}
	p.reference = now

	if p.hasRange && p.position >= p.outPoint {
		switch p.policy {
		case LoopToIn:
			span := p.outPoint - p.inPoint
			for p.position >= p.outPoint {
				p.position -= span
			}
		default:
			p.position = p.outPoint
			p.mode = Paused
		}
	}
	return p.position
}
