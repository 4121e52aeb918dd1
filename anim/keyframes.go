package anim

import (
	"math"
	"sort"
	"sync"

	"github.com/matt-g-everett/skytx/util"
)

// A Keyframe anchors the scene parameters at a point on the timeline.
type Keyframe struct {
	Time  float64
	State State
}

// A Track is an ordered collection of keyframes, kept sorted ascending by
// time with unique time values. All operations are safe to call while the
// animation driver is sampling the track from its own goroutine.
type Track struct {
	mu       sync.Mutex
	frames   []Keyframe
	fallback State
}

// NewTrack creates an empty Track. The fallback state is returned by Sample
// while the track holds no keyframes.
func NewTrack(fallback State) *Track {
	t := new(Track)
	t.fallback = fallback.Normalised()
	return t
}

// SetFallback replaces the state Sample returns for an empty track.
func (t *Track) SetFallback(s State) {
	t.mu.Lock()
	t.fallback = s.Normalised()
	t.mu.Unlock()
}

// Upsert inserts a keyframe, replacing any existing keyframe at exactly the
// same time. Sort order is maintained.
func (t *Track) Upsert(time float64, s State) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s = s.Normalised()
	i := t.search(time)
	if i < len(t.frames) && t.frames[i].Time == time {
		t.frames[i].State = s
		return
	}
	t.frames = append(t.frames, Keyframe{})
	copy(t.frames[i+1:], t.frames[i:])
	t.frames[i] = Keyframe{Time: time, State: s}
}

// Remove deletes the keyframe at exactly the given time. Removing a time
// that has no keyframe is a no-op.
func (t *Track) Remove(time float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.search(time)
	if i < len(t.frames) && t.frames[i].Time == time {
		t.frames = append(t.frames[:i], t.frames[i+1:]...)
	}
}

// Len reports the number of keyframes.
func (t *Track) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.frames)
}

// Keyframes returns a copy of the track contents in time order.
func (t *Track) Keyframes() []Keyframe {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Keyframe, len(t.frames))
	copy(out, t.frames)
	return out
}

// Span returns the first and last keyframe times, or ok=false for an empty
// track.
func (t *Track) Span() (first, last float64, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.frames) == 0 {
		return 0, 0, false
	}
	return t.frames[0].Time, t.frames[len(t.frames)-1].Time, true
}

// Sample produces the interpolated state at the query time. Queries outside
// the keyframe span clamp to the boundary keyframes; queries between two
// keyframes interpolate continuous fields, hold discrete fields at the
// earlier keyframe's value and always take the earlier keyframe's seed.
func (t *Track) Sample(time float64) State {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := len(t.frames)
	switch {
	case n == 0:
		return t.fallback
	case n == 1 || time <= t.frames[0].Time:
		return t.frames[0].State
	case time >= t.frames[n-1].Time:
		return t.frames[n-1].State
	}

	// search returns the first index with Time >= time, so k1 is at i and
	// k0 at i-1; the exact-match case collapses both onto i.
	i := t.search(time)
	k1 := t.frames[i]
	if k1.Time == time {
		return k1.State
	}
	k0 := t.frames[i-1]

	f := (time - k0.Time) / (k1.Time - k0.Time)
	f = util.Clamp(f, 0.0, 1.0)
	return interpolate(k0.State, k1.State, f)
}

// search finds the insertion index for time; the caller must hold mu.
func (t *Track) search(time float64) int {
	return sort.Search(len(t.frames), func(i int) bool {
		return t.frames[i].Time >= time
	})
}

// interpolate blends two states with fraction f in [0,1). The earlier
// state's transition effect shapes the fraction before blending.
func interpolate(a, b State, f float64) State {
	g := a.Transition.Ease(f)

	out := a
	out.TimeOfDay = util.Lerp(a.TimeOfDay, b.TimeOfDay, g)
	out.Latitude = util.Lerp(a.Latitude, b.Latitude, g)
	out.Longitude = util.Slerp(a.Longitude, b.Longitude, g)
	out.StarDensity = util.Lerp(a.StarDensity, b.StarDensity, g)
	out.TransitionRatio = util.Lerp(a.TransitionRatio, b.TransitionRatio, g)
	out.Width = int(math.Round(util.Lerp(float64(a.Width), float64(b.Width), g)))
	out.Height = int(math.Round(util.Lerp(float64(a.Height), float64(b.Height), g)))

	// Discrete fields step at the far keyframe, never mid-segment. Seed
	// stays with the near keyframe so a segment renders reproducibly.
	if f >= 1.0 {
		out.Transition = b.Transition
		out.Render = b.Render
	}
	return out
}
