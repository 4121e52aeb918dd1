package stream

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/matt-g-everett/skytx/anim"
)

func TestMarshalFrame(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Pix[0] = 0xff

	data, err := MarshalFrame(anim.Frame{Generation: 42, Image: img})
	if err != nil {
		t.Fatalf("MarshalFrame: %v", err)
	}

	gen, err := UnmarshalFrameGeneration(data)
	if err != nil {
		t.Fatalf("UnmarshalFrameGeneration: %v", err)
	}
	if gen != 42 {
		t.Errorf("generation = %d, want 42", gen)
	}

	decoded, err := png.Decode(bytes.NewReader(data[8:]))
	if err != nil {
		t.Fatalf("payload is not a PNG: %v", err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Errorf("decoded bounds = %v, want %v", decoded.Bounds(), img.Bounds())
	}
}

func TestUnmarshalFrameGenerationShortPayload(t *testing.T) {
	if _, err := UnmarshalFrameGeneration([]byte{1, 2, 3}); err == nil {
		t.Error("short payload accepted")
	}
}
