package render

import (
	"bytes"
	"image"
	"testing"

	"github.com/matt-g-everett/skytx/anim"
)

func testState() anim.State {
	s := anim.DefaultState()
	s.Width = 320
	s.Height = 180
	s.Seed = 12345
	s.TimeOfDay = 20.0
	s.StarDensity = 3.0
	s.Render = anim.RenderSpherical
	return s
}

func renderRGBA(t *testing.T, g *Generator, s anim.State) *image.RGBA {
	t.Helper()
	img, err := g.Render(s)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	rgba, ok := img.(*image.RGBA)
	if !ok {
		t.Fatalf("Render returned %T, want *image.RGBA", img)
	}
	return rgba
}

func TestRenderIsDeterministic(t *testing.T) {
	s := testState()

	a := renderRGBA(t, NewGenerator(), s)
	b := renderRGBA(t, NewGenerator(), s)
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("identical states rendered different images")
	}

	// The same generator re-used across other states must still
	// reproduce the original image for the original state.
	g := NewGenerator()
	renderRGBA(t, g, func() anim.State { o := s; o.Seed = 999; return o }())
	c := renderRGBA(t, g, s)
	if !bytes.Equal(a.Pix, c.Pix) {
		t.Error("render not reproducible after a seed change and back")
	}
}

func TestRenderSeedChangesStarField(t *testing.T) {
	s := testState()
	a := renderRGBA(t, NewGenerator(), s)

	s.Seed = 54321
	b := renderRGBA(t, NewGenerator(), s)
	if bytes.Equal(a.Pix, b.Pix) {
		t.Error("different seeds rendered identical images")
	}
}

func TestRenderHonoursResolution(t *testing.T) {
	s := testState()
	s.Width = 64
	s.Height = 48
	img := renderRGBA(t, NewGenerator(), s)

	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 48 {
		t.Errorf("bounds = %v, want 64x48", img.Bounds())
	}
}

func TestRenderRejectsInvalidState(t *testing.T) {
	g := NewGenerator()
	s := testState()
	s.Width = 0
	if _, err := g.Render(s); err == nil {
		t.Error("Render accepted a zero-width state")
	}
}

func TestProjectionsDiffer(t *testing.T) {
	s := testState()
	s.Render = anim.RenderFlat
	flat := renderRGBA(t, NewGenerator(), s)

	s.Render = anim.RenderSpherical
	spherical := renderRGBA(t, NewGenerator(), s)

	if bytes.Equal(flat.Pix, spherical.Pix) {
		t.Error("flat and spherical projections rendered identical images")
	}
}

func litPixels(img *image.RGBA) int {
	n := 0
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 || img.Pix[i+1] != 0 || img.Pix[i+2] != 0 {
			n++
		}
	}
	return n
}

func TestStarDensityScalesStarCount(t *testing.T) {
	// Midnight flat render: no gradient overlay, just stars.
	s := testState()
	s.Render = anim.RenderFlat
	s.TimeOfDay = 0.0

	s.StarDensity = 0.1
	sparse := litPixels(renderRGBA(t, NewGenerator(), s))

	s.StarDensity = 5.0
	dense := litPixels(renderRGBA(t, NewGenerator(), s))

	if sparse >= dense {
		t.Errorf("lit pixels sparse=%d dense=%d, want density to add stars", sparse, dense)
	}
}

func TestDaytimeWashesOutGradient(t *testing.T) {
	s := testState()
	s.Render = anim.RenderFlat

	s.TimeOfDay = 0.0 // midnight, gradient fully below the frame
	night := litPixels(renderRGBA(t, NewGenerator(), s))

	s.TimeOfDay = 18.0 // dusk, horizon glow fills the frame
	dusk := litPixels(renderRGBA(t, NewGenerator(), s))

	if dusk <= night {
		t.Errorf("lit pixels night=%d dusk=%d, want the dusk gradient to light the sky", night, dusk)
	}
}
