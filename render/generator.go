package render

import (
	"image"
	"image/color"
	"math"
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matt-g-everett/skytx/anim"
	"github.com/matt-g-everett/skytx/util"
)

const (
	maxDensity     = 5.0
	baseSmallStars = 2500
	baseBigStars   = 200
	fovDegrees     = 30.0
)

type smallStar struct {
	x, y float64
}

type bigStar struct {
	x, y, size float64
}

// A Generator renders twilight sky images from an anim.State. The star
// field is pre-generated from the state's seed so that a given (state,
// seed) pair always produces the same pixels.
type Generator struct {
	horizon    colorful.Color
	zenith     colorful.Color
	starColour colorful.Color

	seed       int64
	width      int
	height     int
	smallStars []smallStar
	bigStars   []bigStar
}

// NewGenerator creates a Generator with the classic twilight palette.
func NewGenerator() *Generator {
	g := new(Generator)
	g.horizon, _ = colorful.Hex("#ff4800") // orange at the horizon line
	g.zenith, _ = colorful.Hex("#006ebd")  // blue above it
	g.starColour, _ = colorful.Hex("#ffffff")
	g.seed = -1
	return g
}

// Render produces the twilight image for the given state.
func (g *Generator) Render(s anim.State) (image.Image, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	s = s.Normalised()

	g.ensureStars(s)

	img := image.NewRGBA(image.Rect(0, 0, s.Width, s.Height))
	fillBlack(img)

	switch s.Render {
	case anim.RenderSpherical:
		g.drawStarsSpherical(img, s)
	default:
		g.drawStarsFlat(img, s)
	}

	g.applyGradient(img, s)
	flipVertical(img)

	return img, nil
}

// ensureStars regenerates the master star lists when the seed or the
// resolution changed since the previous render.
func (g *Generator) ensureStars(s anim.State) {
	if g.seed == s.Seed && g.width == s.Width && g.height == s.Height {
		return
	}
	g.seed = s.Seed
	g.width = s.Width
	g.height = s.Height

	rng := rand.New(rand.NewSource(s.Seed))

	scale := float64(s.Width*s.Height) / (1920.0 * 1080.0)
	totalSmall := int(baseSmallStars * scale * maxDensity)
	totalBig := int(baseBigStars * scale * maxDensity)

	sizeMin := s.Width / 960
	if sizeMin < 1 {
		sizeMin = 1
	}
	sizeMax := s.Width / 480
	if sizeMax < 2 {
		sizeMax = 2
	}

	g.smallStars = make([]smallStar, totalSmall)
	for i := range g.smallStars {
		g.smallStars[i] = smallStar{x: rng.Float64(), y: rng.Float64()}
	}

	g.bigStars = make([]bigStar, totalBig)
	for i := range g.bigStars {
		size := float64(sizeMin+rng.Intn(sizeMax-sizeMin+1)) / float64(s.Width)
		g.bigStars[i] = bigStar{x: rng.Float64(), y: rng.Float64(), size: size}
	}
}

// nightFactor maps the 24h clock onto star brightness; midnight is
// darkest, midday brightest.
func nightFactor(timeOfDay float64) float64 {
	return -math.Cos(timeOfDay/12.0*math.Pi)*0.5 + 0.5
}

// starColour picks the colour for a star at pixel row y. Stars inside the
// horizon transition band blend from orange to blue and dim with the time
// of day; stars above it stay white.
func (g *Generator) starColourAt(y int, s anim.State) color.RGBA {
	ratio := float64(y) / float64(s.Height)
	if ratio >= s.TransitionRatio {
		return toRGBA(g.starColour, 1.0)
	}
	c := g.horizon.BlendRgb(g.zenith, ratio/s.TransitionRatio)
	return toRGBA(c, nightFactor(s.TimeOfDay))
}

func (g *Generator) drawStarsSpherical(img *image.RGBA, s anim.State) {
	aspect := float64(s.Width) / float64(s.Height)
	fovV := 2 * deg(math.Atan(math.Tan(rad(fovDegrees/2))/aspect))

	lonRad := rad(s.Longitude)
	latRad := rad(s.Latitude)

	halfTanH := 2 * math.Tan(rad(fovDegrees/2))
	halfTanV := 2 * math.Tan(rad(fovV/2))

	project := func(nx, ny float64) (int, int, bool) {
		starLon := nx * 2 * math.Pi
		starLat := (ny - 0.5) * math.Pi

		dx := math.Cos(starLat) * math.Sin(starLon-lonRad)
		dy := math.Cos(starLat)*math.Cos(starLon-lonRad)*math.Sin(latRad) -
			math.Sin(starLat)*math.Cos(latRad)
		dz := math.Cos(starLat)*math.Cos(starLon-lonRad)*math.Cos(latRad) +
			math.Sin(starLat)*math.Sin(latRad)

		// Behind the viewer.
		if dz <= 0 {
			return 0, 0, false
		}
		x := int(float64(s.Width) * (0.5 + dx/halfTanH))
		y := int(float64(s.Height) * (0.5 + dy/halfTanV))
		return x, y, true
	}

	nSmall, nBig := g.visibleCounts(s)
	for _, star := range g.smallStars[:nSmall] {
		if x, y, ok := project(star.x, star.y); ok && inBounds(img, x, y) {
			img.SetRGBA(x, y, g.starColourAt(y, s))
		}
	}
	for _, star := range g.bigStars[:nBig] {
		if x, y, ok := project(star.x, star.y); ok && inBounds(img, x, y) {
			size := int(star.size * float64(s.Width))
			fillDiamond(img, x, y, size, g.starColourAt(y, s))
		}
	}
}

func (g *Generator) drawStarsFlat(img *image.RGBA, s anim.State) {
	lonShift := s.Longitude / anim.DegreeCycle * float64(s.Width)
	latShift := s.Latitude / anim.DegreeCycle * float64(s.Height)

	// The flat projection brightens all stars together instead of
	// tinting by row.
	brightness := util.Clamp(-math.Cos(s.TimeOfDay/12.0*math.Pi)*0.5+1, 0, 1)
	c := toRGBA(g.starColour, brightness)

	shift := func(nx, ny float64) (int, int) {
		x := math.Mod(nx*float64(s.Width)+lonShift, float64(s.Width))
		y := math.Mod(ny*float64(s.Height)+latShift, float64(s.Height))
		return int(x), int(y)
	}

	nSmall, nBig := g.visibleCounts(s)
	for _, star := range g.smallStars[:nSmall] {
		x, y := shift(star.x, star.y)
		if inBounds(img, x, y) {
			img.SetRGBA(x, y, c)
		}
	}
	for _, star := range g.bigStars[:nBig] {
		x, y := shift(star.x, star.y)
		if inBounds(img, x, y) {
			fillDiamond(img, x, y, int(star.size*float64(s.Width)), c)
		}
	}
}

// visibleCounts scales the master lists down to the requested density.
func (g *Generator) visibleCounts(s anim.State) (nSmall, nBig int) {
	ratio := s.StarDensity / maxDensity
	return int(float64(len(g.smallStars)) * ratio), int(float64(len(g.bigStars)) * ratio)
}

// applyGradient composites the horizon glow over the star field. The glow
// slides below the frame as the time of day moves into night.
func (g *Generator) applyGradient(img *image.RGBA, s anim.State) {
	timeFactor := math.Sin(s.TimeOfDay / anim.TimeOfDayCycle * 2 * math.Pi)
	offset := int(float64(s.Height) * (1.0 + timeFactor))
	if offset < 0 {
		offset = 0
	}
	if offset > s.Height {
		offset = s.Height
	}

	orangeBand := s.TransitionRatio * 0.75

	for y := 0; y < s.Height; y++ {
		adjusted := y + offset
		if adjusted >= s.Height {
			continue
		}

		ratio := float64(adjusted) / float64(s.Height)
		var c colorful.Color
		var alpha float64
		if ratio < orangeBand {
			c = g.horizon.BlendRgb(g.zenith, ratio/orangeBand)
			alpha = 1.0
		} else {
			t := util.Clamp((ratio-orangeBand)/(1-orangeBand), 0.0, 1.0)
			c = g.zenith.BlendRgb(colorful.Color{}, t)
			alpha = 1.0 - t
		}
		blendRow(img, y, c, alpha)
	}
}

func rad(degrees float64) float64 { return degrees * math.Pi / 180 }
func deg(radians float64) float64 { return radians * 180 / math.Pi }

func toRGBA(c colorful.Color, brightness float64) color.RGBA {
	r, gch, b := c.Clamped().RGB255()
	return color.RGBA{
		R: uint8(float64(r) * brightness),
		G: uint8(float64(gch) * brightness),
		B: uint8(float64(b) * brightness),
		A: 0xff,
	}
}

func inBounds(img *image.RGBA, x, y int) bool {
	return image.Pt(x, y).In(img.Bounds())
}

func fillBlack(img *image.RGBA) {
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
}

// fillDiamond draws a filled diamond of the given half-size centred on
// (cx, cy), clipped to the image.
func fillDiamond(img *image.RGBA, cx, cy, size int, c color.RGBA) {
	if size < 1 {
		img.SetRGBA(cx, cy, c)
		return
	}
	for dy := -size; dy <= size; dy++ {
		half := size - abs(dy)
		for dx := -half; dx <= half; dx++ {
			if inBounds(img, cx+dx, cy+dy) {
				img.SetRGBA(cx+dx, cy+dy, c)
			}
		}
	}
}

// blendRow alpha-blends a solid colour across one scanline.
func blendRow(img *image.RGBA, y int, c colorful.Color, alpha float64) {
	src := toRGBA(c, 1.0)
	w := img.Bounds().Dx()
	for x := 0; x < w; x++ {
		i := img.PixOffset(x, y)
		img.Pix[i] = blend(img.Pix[i], src.R, alpha)
		img.Pix[i+1] = blend(img.Pix[i+1], src.G, alpha)
		img.Pix[i+2] = blend(img.Pix[i+2], src.B, alpha)
	}
}

func blend(dst, src uint8, alpha float64) uint8 {
	return uint8(util.Lerp(float64(dst), float64(src), alpha))
}

func flipVertical(img *image.RGBA) {
	h := img.Bounds().Dy()
	stride := img.Stride
	tmp := make([]uint8, stride)
	for y := 0; y < h/2; y++ {
		top := img.Pix[y*stride : (y+1)*stride]
		bottom := img.Pix[(h-1-y)*stride : (h-y)*stride]
		copy(tmp, top)
		copy(top, bottom)
		copy(bottom, tmp)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
