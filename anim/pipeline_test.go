package anim

import (
	"errors"
	"image"
	"sync/atomic"
	"testing"
	"time"
)

// gatedRenderer blocks every Render call until released, recording how
// many renders ran and how many were ever in flight at once.
type gatedRenderer struct {
	gate        chan struct{}
	started     int64
	inFlight    int64
	maxInFlight int64
	err         error
}

func newGatedRenderer() *gatedRenderer {
	return &gatedRenderer{gate: make(chan struct{})}
}

func (r *gatedRenderer) Render(State) (image.Image, error) {
	atomic.AddInt64(&r.started, 1)
	n := atomic.AddInt64(&r.inFlight, 1)
	for {
		max := atomic.LoadInt64(&r.maxInFlight)
		if n <= max || atomic.CompareAndSwapInt64(&r.maxInFlight, max, n) {
			break
		}
	}
	<-r.gate
	atomic.AddInt64(&r.inFlight, -1)
	if r.err != nil {
		return nil, r.err
	}
	return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
}

func (r *gatedRenderer) release(n int) {
	for i := 0; i < n; i++ {
		r.gate <- struct{}{}
	}
}

func (r *gatedRenderer) releaseAll() {
	close(r.gate)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestWorkerDropsSupersededSnapshots(t *testing.T) {
	in := NewSlot[Snapshot]()
	out := NewSlot[Frame]()
	renderer := newGatedRenderer()
	worker := NewWorker(in, out, renderer, nil)

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		worker.Run(stop)
		close(done)
	}()

	in.Publish(Snapshot{Generation: 1, State: DefaultState()})
	waitFor(t, "first render to start", func() bool {
		return atomic.LoadInt64(&renderer.started) == 1
	})

	// A burst of publishes while the render is in flight must collapse
	// to the newest snapshot.
	for gen := uint64(2); gen <= 30; gen++ {
		in.Publish(Snapshot{Generation: gen, State: DefaultState()})
	}

	renderer.release(1)
	waitFor(t, "second render to start", func() bool {
		return atomic.LoadInt64(&renderer.started) == 2
	})
	renderer.release(1)

	waitFor(t, "newest frame to land", func() bool {
		f, ok := out.Latest()
		return ok && f.Generation == 30
	})

	if got := atomic.LoadInt64(&renderer.started); got != 2 {
		t.Errorf("renders started = %d, want 2 (one per batch, the rest dropped)", got)
	}
	if max := atomic.LoadInt64(&renderer.maxInFlight); max != 1 {
		t.Errorf("max renders in flight = %d, want 1", max)
	}

	close(stop)
	renderer.releaseAll()
	<-done
}

func TestWorkerFinishesInFlightRenderOnStop(t *testing.T) {
	in := NewSlot[Snapshot]()
	out := NewSlot[Frame]()
	renderer := newGatedRenderer()
	worker := NewWorker(in, out, renderer, nil)

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		worker.Run(stop)
		close(done)
	}()

	in.Publish(Snapshot{Generation: 5, State: DefaultState()})
	waitFor(t, "render to start", func() bool {
		return atomic.LoadInt64(&renderer.started) == 1
	})

	// Cancel mid-render, then let the render finish.
	close(stop)
	in.Publish(Snapshot{Generation: 6, State: DefaultState()})
	renderer.release(1)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not exit after finishing the in-flight render")
	}

	f, ok := out.Latest()
	if !ok || f.Generation != 5 {
		t.Errorf("delivered frame = %+v, want the in-flight generation 5", f)
	}
	if got := atomic.LoadInt64(&renderer.started); got != 1 {
		t.Errorf("renders started = %d, want 1 (no new render after stop)", got)
	}
}

func TestWorkerKeepsLastFrameOnRenderFailure(t *testing.T) {
	in := NewSlot[Snapshot]()
	out := NewSlot[Frame]()
	renderer := newGatedRenderer()

	var reported int64
	worker := NewWorker(in, out, renderer, func(error) {
		atomic.AddInt64(&reported, 1)
	})

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		worker.Run(stop)
		close(done)
	}()

	in.Publish(Snapshot{Generation: 1, State: DefaultState()})
	renderer.release(1)
	waitFor(t, "good frame", func() bool {
		f, ok := out.Latest()
		return ok && f.Generation == 1
	})

	renderer.err = errors.New("out of stars")
	in.Publish(Snapshot{Generation: 2, State: DefaultState()})
	renderer.release(1)
	waitFor(t, "failure to be reported", func() bool {
		return atomic.LoadInt64(&reported) == 1
	})

	if f, _ := out.Latest(); f.Generation != 1 {
		t.Errorf("failed render overwrote the last good frame with %d", f.Generation)
	}

	renderer.err = nil
	in.Publish(Snapshot{Generation: 3, State: DefaultState()})
	renderer.release(1)
	waitFor(t, "recovery frame", func() bool {
		f, ok := out.Latest()
		return ok && f.Generation == 3
	})

	close(stop)
	renderer.releaseAll()
	<-done
}

func TestPipelineSlowRendererNeverQueuesFrames(t *testing.T) {
	player := mustPlayer(t, 30, HoldAtOut)
	track := NewTrack(DefaultState())
	track.Upsert(0.0, DefaultState())
	renderer := newGatedRenderer()

	p := NewPipeline(player, track, renderer, nil)
	p.Start()
	p.Player().Play(time.Now())

	// The driver ticks at 30fps for a while; the renderer is stalled the
	// whole time, so exactly one render may be in flight.
	time.Sleep(300 * time.Millisecond)
	if got := atomic.LoadInt64(&renderer.started); got != 1 {
		t.Errorf("renders started while stalled = %d, want 1", got)
	}

	renderer.releaseAll()
	p.Stop()

	if max := atomic.LoadInt64(&renderer.maxInFlight); max != 1 {
		t.Errorf("max renders in flight = %d, want 1", max)
	}
}

func TestPipelineTicksAtFrameRate(t *testing.T) {
	player := mustPlayer(t, 50, HoldAtOut)
	track := NewTrack(DefaultState())
	snapshots := NewSlot[Snapshot]()
	driver := NewDriver(player, track, snapshots)

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		driver.Run(stop)
		close(done)
	}()

	time.Sleep(500 * time.Millisecond)
	close(stop)
	<-done

	snap, ok := snapshots.Latest()
	if !ok {
		t.Fatal("driver published no snapshots")
	}
	// ~25 ticks expected; allow generous scheduling slack but reject a
	// drifting or bursting loop.
	if snap.Generation < 15 || snap.Generation > 30 {
		t.Errorf("ticks in 500ms at 50fps = %d, want roughly 25", snap.Generation)
	}
}

type panicRenderer struct{}

func (panicRenderer) Render(State) (image.Image, error) {
	panic("renderer corrupted itself")
}

func TestPipelineSurfacesWorkerFault(t *testing.T) {
	player := mustPlayer(t, 30, HoldAtOut)
	track := NewTrack(DefaultState())

	p := NewPipeline(player, track, panicRenderer{}, nil)
	p.Start()
	p.Player().Play(time.Now())

	select {
	case err := <-p.Faults():
		if err == nil {
			t.Fatal("nil fault")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("worker panic was not surfaced as a fault")
	}

	// A fault stops the pipeline; Stop must not deadlock.
	p.Stop()
}

func TestPipelineStopIsIdempotent(t *testing.T) {
	player := mustPlayer(t, 30, HoldAtOut)
	track := NewTrack(DefaultState())
	renderer := newGatedRenderer()
	renderer.releaseAll()

	p := NewPipeline(player, track, renderer, nil)
	p.Start()
	p.Stop()
	p.Stop()
}
