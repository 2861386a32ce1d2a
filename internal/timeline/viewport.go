package timeline

// DefaultMinSpan is the smallest window span a viewport will hold.
// A zero or negative span would make PixelToTime undefined, so every
// mutation clamps against it.
const DefaultMinSpan = 1.0

// DefaultSpan is the window span a freshly created or reset viewport
// shows.
const DefaultSpan = 100.0

// Window is the visible time range. Center is always the midpoint of
// Start and End, and End - Start is always at least the viewport's
// minimum span.
type Window struct {
	Start  float64
	End    float64
	Center float64
}

// Span returns the window length in story time.
func (w Window) Span() float64 {
	return w.End - w.Start
}

// Contains reports whether t lies inside the window.
func (w Window) Contains(t float64) bool {
	return t >= w.Start && t <= w.End
}

// WindowUpdate is a partial window mutation. Nil fields keep their
// current value. When only Center is set the window translates,
// preserving its span; otherwise the missing edge keeps its current
// value and the result is clamped to the minimum span before the
// center is recomputed.
type WindowUpdate struct {
	Start  *float64
	End    *float64
	Center *float64
}

// ViewportConfig configures a viewport.
type ViewportConfig struct {
	// MinSpan is the smallest allowed window span. Defaults to
	// DefaultMinSpan when <= 0.
	MinSpan float64

	// Start and Span give the initial window. Span defaults to
	// DefaultSpan when <= 0.
	Start float64
	Span  float64

	// AreaX and AreaWidth describe the pixel region the window maps
	// onto. AreaWidth defaults to 1 when <= 0.
	AreaX     float64
	AreaWidth float64
}

// Viewport owns the visible time window and the bidirectional
// time/pixel transform over a fixed pixel area. All mutations compute
// the next window fully and then swap it in, so a renderer reading
// between calls never observes a half-applied update.
type Viewport struct {
	window    Window
	minSpan   float64
	defaults  Window
	areaX     float64
	areaWidth float64
}

// NewViewport creates a viewport with a valid, clamped initial window.
func NewViewport(cfg ViewportConfig) *Viewport {
	minSpan := cfg.MinSpan
	if minSpan <= 0 {
		minSpan = DefaultMinSpan
	}
	span := cfg.Span
	if span <= 0 {
		span = DefaultSpan
	}
	if span < minSpan {
		span = minSpan
	}
	areaWidth := cfg.AreaWidth
	if areaWidth <= 0 {
		areaWidth = 1
	}

	window := makeWindow(cfg.Start, cfg.Start+span)
	return &Viewport{
		window:    window,
		minSpan:   minSpan,
		defaults:  window,
		areaX:     cfg.AreaX,
		areaWidth: areaWidth,
	}
}

// Window returns the current window.
func (v *Viewport) Window() Window {
	return v.window
}

// MinSpan returns the smallest span this viewport will hold.
func (v *Viewport) MinSpan() float64 {
	return v.minSpan
}

// SetArea points the transform at a new pixel region, e.g. after a
// terminal resize. The time window is unchanged.
func (v *Viewport) SetArea(x, width float64) {
	if width <= 0 {
		width = 1
	}
	v.areaX = x
	v.areaWidth = width
}

// Area returns the pixel region the window maps onto.
func (v *Viewport) Area() (x, width float64) {
	return v.areaX, v.areaWidth
}

// TimeToPixel maps a story time to a pixel coordinate under the
// current window.
func (v *Viewport) TimeToPixel(t float64) float64 {
	return v.areaX + (t-v.window.Start)*(v.areaWidth/v.window.Span())
}

// PixelToTime is the algebraic inverse of TimeToPixel.
func (v *Viewport) PixelToTime(p float64) float64 {
	return v.window.Start + (p-v.areaX)*(v.window.Span()/v.areaWidth)
}

// SetWindow applies a partial update, clamped so the span never drops
// below the minimum. Degenerate requests (end <= start) are clamped,
// not rejected.
func (v *Viewport) SetWindow(update WindowUpdate) {
	if update.Start == nil && update.End == nil && update.Center == nil {
		return
	}

	if update.Start == nil && update.End == nil {
		// Pure translation around the requested center.
		half := v.window.Span() / 2
		v.window = makeWindow(*update.Center-half, *update.Center+half)
		return
	}

	start := v.window.Start
	end := v.window.End
	if update.Start != nil {
		start = *update.Start
	}
	if update.End != nil {
		end = *update.End
	}
	if end-start < v.minSpan {
		end = start + v.minSpan
	}
	v.window = makeWindow(start, end)
}

// ZoomAt scales the window span by factor, anchored at the given
// pixel: the story time under that pixel is identical before and
// after the zoom. Factors <= 0 are ignored; the resulting span is
// clamped to the minimum.
func (v *Viewport) ZoomAt(pixel, factor float64) {
	if factor <= 0 {
		return
	}
	anchor := v.PixelToTime(pixel)
	span := v.window.Span()
	newSpan := span * factor
	if newSpan < v.minSpan {
		newSpan = v.minSpan
	}
	// Keep the anchor at the same fractional position in the window.
	frac := (anchor - v.window.Start) / span
	start := anchor - frac*newSpan
	v.window = makeWindow(start, start+newSpan)
}

// PanBy translates the window by a pixel delta converted through the
// current (pre-pan) scale. A positive delta moves the window later in
// story time.
func (v *Viewport) PanBy(pixelDelta float64) {
	if pixelDelta == 0 {
		return
	}
	timeDelta := pixelDelta * (v.window.Span() / v.areaWidth)
	v.window = makeWindow(v.window.Start+timeDelta, v.window.End+timeDelta)
}

// Reset restores the initial window.
func (v *Viewport) Reset() {
	v.window = v.defaults
}

func makeWindow(start, end float64) Window {
	return Window{Start: start, End: end, Center: (start + end) / 2}
}
