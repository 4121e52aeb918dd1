package anim

import "time"

// A Snapshot is one tick's worth of interpolated parameters, tagged with a
// generation so stale values can be recognised downstream. The generation
// only ever means "newer than a smaller one".
type Snapshot struct {
	Generation uint64
	State      State
}

// A Driver ticks the player at the configured frame rate, samples the
// track at the resulting position and publishes the snapshot. It never
// blocks on the renderer; publishing overwrites whatever the worker has
// not consumed yet.
type Driver struct {
	player     *Player
	track      *Track
	out        *Slot[Snapshot]
	generation uint64
}

// NewDriver creates a Driver publishing into out.
func NewDriver(player *Player, track *Track, out *Slot[Snapshot]) *Driver {
	d := new(Driver)
	d.player = player
	d.track = track
	d.out = out
	return d
}

// Run executes the tick loop until stop closes. Wake times are scheduled
// absolutely from the previous scheduled wake rather than from "now", so
// jitter in any single tick never accumulates into drift. A tick that
// overruns its interval is skipped, not caught up with a burst.
func (d *Driver) Run(stop <-chan struct{}) {
	interval := d.player.Interval()
	next := time.Now().Add(interval)
	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
		case <-stop:
			return
		}

		now := time.Now()
		position := d.player.Advance(now)
		state := d.track.Sample(position)
		d.generation++
		d.out.Publish(Snapshot{Generation: d.generation, State: state})

		// A frame rate change takes effect from the next tick on.
		interval = d.player.Interval()
		next = next.Add(interval)
		for !next.After(time.Now()) {
			next = next.Add(interval)
		}
		timer.Reset(time.Until(next))
	}
}
