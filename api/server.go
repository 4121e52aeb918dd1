package api

import (
	"fmt"
	"image/png"
	"log"
	"net/http"

	"github.com/matt-g-everett/skytx/anim"
)

// Api serves the preview pane: the latest rendered frame over HTTP plus
// the static control surface assets.
type Api struct {
	frames *anim.Slot[anim.Frame]
}

// NewApi creates an Api reading preview frames from the given slot.
func NewApi(frames *anim.Slot[anim.Frame]) *Api {
	a := new(Api)
	a.frames = frames
	return a
}

// handleFrame writes the newest rendered frame as a PNG. Reading the slot
// never consumes the frame, so any number of refreshes see the same image
// until the next render lands.
func (a *Api) handleFrame(w http.ResponseWriter, r *http.Request) {
	f, ok := a.frames.Latest()
	if !ok {
		http.Error(w, "no frame rendered yet", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Frame-Generation", fmt.Sprintf("%d", f.Generation))
	if err := png.Encode(w, f.Image); err != nil {
		log.Printf("preview encode: %v", err)
	}
}

func (a *Api) Serve(addr string) {
	fs := http.FileServer(http.Dir("client/dist"))
	http.Handle("/", fs)
	http.HandleFunc("/frame.png", a.handleFrame)

	log.Println("Listening...")
	http.ListenAndServe(addr, nil)
}
