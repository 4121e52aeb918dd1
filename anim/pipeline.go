package anim

import (
	"fmt"
	"sync"
)

// A Pipeline owns the two animation goroutines and the slots between them.
// The hosting goroutine keeps the track and player handles for edits and
// transport control, reads rendered frames from Frames and watches Faults
// for unexpected goroutine death.
type Pipeline struct {
	player   *Player
	track    *Track
	worker   *Worker
	driver   *Driver
	frames   *Slot[Frame]
	faults   chan error
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewPipeline wires a driver and a render worker around the given player,
// track and renderer.
func NewPipeline(player *Player, track *Track, renderer Renderer, report func(error)) *Pipeline {
	p := new(Pipeline)
	p.player = player
	p.track = track
	p.frames = NewSlot[Frame]()
	p.faults = make(chan error, 2)
	p.stop = make(chan struct{})

	snapshots := NewSlot[Snapshot]()
	p.driver = NewDriver(player, track, snapshots)
	p.worker = NewWorker(snapshots, p.frames, renderer, report)
	return p
}

// Player returns the transport controls.
func (p *Pipeline) Player() *Player {
	return p.player
}

// Track returns the keyframe track for edits.
func (p *Pipeline) Track() *Track {
	return p.track
}

// Frames returns the slot the display sink reads rendered frames from.
func (p *Pipeline) Frames() *Slot[Frame] {
	return p.frames
}

// Faults delivers at most one error per goroutine that died unexpectedly.
// A fault is fatal to the pipeline instance; the host must call Stop and
// report it, the pipeline never restarts a dead goroutine itself.
func (p *Pipeline) Faults() <-chan error {
	return p.faults
}

// Start launches the driver and worker goroutines.
func (p *Pipeline) Start() {
	p.wg.Add(2)
	go p.guard("driver", func() { p.driver.Run(p.stop) })
	go p.guard("worker", func() { p.worker.Run(p.stop) })
}

// Stop signals both goroutines and waits for them to exit. The driver
// leaves within one tick interval; the worker finishes any in-flight
// render first. Stop is idempotent.
func (p *Pipeline) Stop() {
	p.signalStop()
	p.wg.Wait()
}

func (p *Pipeline) signalStop() {
	p.stopOnce.Do(func() { close(p.stop) })
}

// guard runs fn and converts a panic into a fault, stopping the sibling
// goroutine so the host never deadlocks on a half-dead pipeline.
func (p *Pipeline) guard(name string, fn func()) {
	defer p.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			select {
			case p.faults <- fmt.Errorf("animation %s goroutine died: %v", name, r):
			default:
			}
			p.signalStop()
		}
	}()
	fn()
}
