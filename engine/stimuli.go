package engine

import (
	"math"
	"strings"

	"github.com/Zyko0/go-sdl3/sdl"

	"github.com/sappelhoff/ecomp-experiment/trials"
)

type Point struct {
	X, Y float32
}

// Span is one horizontal line of a filled shape.
type Span struct {
	Y, X1, X2 float32
}

// CircleSpans fills a disc of radius r centered on (cx, cy), one span per
// pixel row.
func CircleSpans(cx, cy, r float32) []Span {
	if r <= 0 {
		return nil
	}
	n := int(math.Ceil(float64(r)))
	spans := make([]Span, 0, 2*n+1)
	for dy := -n; dy <= n; dy++ {
		y := float32(dy)
		if y*y > r*r {
			continue
		}
		half := float32(math.Sqrt(float64(r*r - y*y)))
		spans = append(spans, Span{Y: cy + y, X1: cx - half, X2: cx + half})
	}
	return spans
}

// TriangleSpans fills the triangle abc by scanlines.
func TriangleSpans(a, b, c Point) []Span {
	pts := []Point{a, b, c}
	minY, maxY := a.Y, a.Y
	for _, p := range pts[1:] {
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}

	var spans []Span
	for y := float32(math.Ceil(float64(minY))); y <= maxY; y++ {
		x1, x2 := float32(math.Inf(1)), float32(math.Inf(-1))
		for i := range pts {
			p, q := pts[i], pts[(i+1)%3]
			if p.Y == q.Y {
				if y == p.Y {
					x1, x2 = min(x1, p.X, q.X), max(x2, p.X, q.X)
				}
				continue
			}
			if y < min(p.Y, q.Y) || y > max(p.Y, q.Y) {
				continue
			}
			x := p.X + (y-p.Y)*(q.X-p.X)/(q.Y-p.Y)
			x1, x2 = min(x1, x), max(x2, x)
		}
		if x1 <= x2 {
			spans = append(spans, Span{Y: y, X1: x1, X2: x2})
		}
	}
	return spans
}

// ArrowShape lays out a vertical arrow of the given height centered on
// (cx, cy): a triangular head and a rectangular shaft.
func ArrowShape(cx, cy, height float32, up bool) (head [3]Point, shaft sdl.FRect) {
	headW := height * 0.6
	shaftW := height * 0.2
	dir := float32(1)
	if !up {
		dir = -1
	}
	tip := cy - dir*height/2
	head = [3]Point{
		{X: cx, Y: tip},
		{X: cx - headW/2, Y: cy},
		{X: cx + headW/2, Y: cy},
	}
	shaft = sdl.FRect{X: cx - shaftW/2, Y: cy, W: shaftW, H: height / 2}
	if !up {
		shaft.Y = cy - height/2
	}
	return head, shaft
}

// WrapText breaks text into lines no wider than maxW. Newlines start a new
// paragraph; an empty line is kept for each blank line.
func WrapText(text string, maxW float32, measure func(string) float32) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			candidate := line + " " + w
			if measure(candidate) > maxW {
				lines = append(lines, line)
				line = w
				continue
			}
			line = candidate
		}
		lines = append(lines, line)
	}
	return lines
}

// choiceOffsetDeg is the horizontal distance of each choice arrow from the
// screen center.
const choiceOffsetDeg = 5

func (d *Display) fillSpans(spans []Span, c sdl.Color) {
	d.renderer.SetDrawColor(c.R, c.G, c.B, c.A)
	for _, s := range spans {
		d.renderer.RenderLine(s.X1, s.Y, s.X2, s.Y)
	}
}

func (d *Display) fillRect(r sdl.FRect, c sdl.Color) {
	d.renderer.SetDrawColor(c.R, c.G, c.B, c.A)
	d.renderer.RenderFillRect(&r)
}

// DrawFixation draws the fixation target of Thaler et al. (2013): an outer
// disc, a cross in the background color and an inner disc.
func (d *Display) DrawFixation() {
	cx, cy := float32(d.W)/2, float32(d.H)/2
	long, short := d.DegToPix(0.6), d.DegToPix(0.2)

	d.fillSpans(CircleSpans(cx, cy, long/2), d.cfg.FixationColor)
	d.fillRect(sdl.FRect{X: cx - long/2, Y: cy - short/2, W: long, H: short}, d.cfg.CrossColor)
	d.fillRect(sdl.FRect{X: cx - short/2, Y: cy - long/2, W: short, H: long}, d.cfg.CrossColor)
	d.fillSpans(CircleSpans(cx, cy, short/2), d.cfg.FixationColor)
}

func (d *Display) drawArrow(cx, cy, height float32, up bool, c sdl.Color) {
	head, shaft := ArrowShape(cx, cy, height, up)
	d.fillSpans(TriangleSpans(head[0], head[1], head[2]), c)
	d.fillRect(shaft, c)
}

func (d *Display) choiceArrow(choice trials.Choice) (up bool, c sdl.Color) {
	switch choice {
	case trials.Lower:
		return false, d.cfg.TextColor
	case trials.Red:
		return true, d.cfg.RedColor
	case trials.Blue:
		return true, d.cfg.BlueColor
	}
	return true, d.cfg.TextColor
}

// DrawChoices draws the two response options for state: up and down arrows
// in the single stream, a red and a blue up arrow in the dual stream.
func (d *Display) DrawChoices(state int, stream trials.Stream) error {
	left, right, err := trials.Options(state, stream)
	if err != nil {
		return err
	}
	cx, cy := float32(d.W)/2, float32(d.H)/2
	offset := d.DegToPix(choiceOffsetDeg)
	height := d.DegToPix(d.cfg.ChoiceHeightDeg)

	up, c := d.choiceArrow(left)
	d.drawArrow(cx-offset, cy, height, up, c)
	up, c = d.choiceArrow(right)
	d.drawArrow(cx+offset, cy, height, up, c)
	return nil
}

// digitTexture returns the texture for a sample: negative samples are red,
// positive ones blue.
func (d *Display) digitTexture(sample int) (*TextTexture, error) {
	c := d.cfg.BlueColor
	if sample < 0 {
		c = d.cfg.RedColor
		sample = -sample
	}
	return d.text.Get(string(rune('0'+sample)), d.pixSize(d.cfg.DigitHeightDeg), c)
}

// PreloadDigits renders all digit textures before the first trial.
func (d *Display) PreloadDigits() error {
	for s := trials.MinDigit; s <= trials.MaxDigit; s++ {
		if _, err := d.digitTexture(s); err != nil {
			return err
		}
		if _, err := d.digitTexture(-s); err != nil {
			return err
		}
	}
	return nil
}

func (d *Display) drawCentered(t *TextTexture, cx, cy float32) {
	dst := sdl.FRect{X: cx - t.W/2, Y: cy - t.H/2, W: t.W, H: t.H}
	d.renderer.RenderTexture(t.Texture, nil, &dst)
}

// DrawText draws wrapped text centered on the screen.
func (d *Display) DrawText(text string, c sdl.Color) error {
	size := d.pixSize(d.cfg.TextHeightDeg)
	space := float32(size) * 0.3
	var measureErr error
	// Sum of word widths, so only words end up in the cache.
	measure := func(s string) float32 {
		var w float32
		for i, word := range strings.Fields(s) {
			t, err := d.text.Get(word, size, c)
			if err != nil {
				measureErr = err
				return 0
			}
			if i > 0 {
				w += space
			}
			w += t.W
		}
		return w
	}
	lines := WrapText(text, float32(d.W)*0.8, measure)
	if measureErr != nil {
		return measureErr
	}

	lineH := float32(size) * 1.3
	y := float32(d.H)/2 - lineH*float32(len(lines)-1)/2
	for _, line := range lines {
		if line != "" {
			t, err := d.text.Get(line, size, c)
			if err != nil {
				return err
			}
			d.drawCentered(t, float32(d.W)/2, y)
		}
		y += lineH
	}
	return nil
}
