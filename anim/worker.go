package anim

import (
	"image"
	"log"
)

// A Renderer synthesises an image from a parameter state. Implementations
// must be deterministic for identical states; they may take arbitrarily
// long, which is exactly what the frame-dropping hand-off absorbs.
type Renderer interface {
	Render(s State) (image.Image, error)
}

// A Frame is a rendered image tagged with the generation of the snapshot
// it was rendered from.
type Frame struct {
	Generation uint64
	Image      image.Image
}

// A Worker consumes the newest published snapshot, renders it and
// publishes the result. At most one render is ever in flight; snapshots
// superseded while a render runs are simply never rendered.
type Worker struct {
	in       *Slot[Snapshot]
	out      *Slot[Frame]
	renderer Renderer
	report   func(error)
}

// NewWorker creates a Worker rendering snapshots from in into out.
// Render failures are passed to report; a nil report logs them.
func NewWorker(in *Slot[Snapshot], out *Slot[Frame], renderer Renderer, report func(error)) *Worker {
	w := new(Worker)
	w.in = in
	w.out = out
	w.renderer = renderer
	if report == nil {
		report = func(err error) { log.Printf("render failed: %v", err) }
	}
	w.report = report
	return w
}

// Run executes the render loop until stop closes. An in-flight render is
// never interrupted; on cancellation it completes, delivers its frame and
// then the loop exits.
func (w *Worker) Run(stop <-chan struct{}) {
	for {
		snap, ok := w.in.TakeLatest(stop)
		if !ok {
			return
		}

		img, err := w.renderer.Render(snap.State)
		if err != nil {
			// Keep the previously delivered frame; the sink just sees a
			// stale but valid image until the next successful render.
			w.report(err)
		} else {
			w.out.Publish(Frame{Generation: snap.Generation, Image: img})
		}

		select {
		case <-stop:
			return
		default:
		}
	}
}
