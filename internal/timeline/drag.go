package timeline

// Drag margin: while a drag pushes an event past the window edge, the
// viewport recenters so the dragged edge sits this fraction in from
// the edge, keeping the event reachable mid-drag.
const DefaultDragMargin = 0.2

// dragState is the controller's two-state machine.
type dragState int

const (
	dragIdle dragState = iota
	dragActive
)

// DragCandidate is the live, uncommitted position of the dragged
// event, recomputed on every pointer move for visual feedback.
type DragCandidate struct {
	EventID string
	Start   float64
	End     float64
}

// DragResult is the durable outcome of a completed drag.
type DragResult struct {
	EventID  string
	NewStart float64
	NewEnd   float64
}

// DragController orchestrates the drag-to-retime gesture. It owns the
// Idle -> Dragging -> Idle transitions, derives candidate times from
// pointer positions through the viewport, and hands back a DragResult
// on release for the caller to commit to the event log. Spurious
// updates or releases while idle are ignored, never errors.
type DragController struct {
	viewport *Viewport
	margin   float64

	state       dragState
	eventID     string
	originPixel float64
	duration    float64
	candidate   DragCandidate
}

// NewDragController creates a controller bound to a viewport. margin
// is the fractional window offset used for auto-pan; values outside
// (0, 0.5) fall back to DefaultDragMargin.
func NewDragController(viewport *Viewport, margin float64) *DragController {
	if margin <= 0 || margin >= 0.5 {
		margin = DefaultDragMargin
	}
	return &DragController{viewport: viewport, margin: margin}
}

// Dragging reports whether a drag is in progress.
func (c *DragController) Dragging() bool {
	return c.state == dragActive
}

// DraggedEvent returns the ID of the event being dragged, empty when
// idle.
func (c *DragController) DraggedEvent() string {
	if c.state != dragActive {
		return ""
	}
	return c.eventID
}

// Begin enters the Dragging state for the event whose interval is iv,
// grabbed at the given pixel. A drag already in progress is replaced.
func (c *DragController) Begin(iv Interval, pixel float64) {
	c.state = dragActive
	c.eventID = iv.ID
	c.originPixel = pixel
	c.duration = iv.End - iv.Start
	c.candidate = DragCandidate{EventID: iv.ID, Start: iv.Start, End: iv.End}
}

// Update recomputes the candidate position from the pointer pixel.
// The new start is the story time under the pointer, clamped to be
// non-negative; the event's original duration is preserved. When the
// candidate leaves the window, the viewport auto-pans so the dragged
// edge sits at the margin offset. Returns false while idle.
func (c *DragController) Update(pixel float64) (DragCandidate, bool) {
	if c.state != dragActive {
		return DragCandidate{}, false
	}

	start := c.viewport.PixelToTime(pixel)
	if start < 0 {
		start = 0
	}
	c.candidate = DragCandidate{
		EventID: c.eventID,
		Start:   start,
		End:     start + c.duration,
	}
	c.autoPan()
	return c.candidate, true
}

// End leaves the Dragging state and returns the final position for
// the caller to commit. Returns nil when no drag was in progress.
func (c *DragController) End() *DragResult {
	if c.state != dragActive {
		return nil
	}
	result := &DragResult{
		EventID:  c.candidate.EventID,
		NewStart: c.candidate.Start,
		NewEnd:   c.candidate.End,
	}
	c.reset()
	return result
}

// Cancel abandons the current drag without producing a result.
func (c *DragController) Cancel() {
	c.reset()
}

// Candidate returns the live candidate while dragging.
func (c *DragController) Candidate() (DragCandidate, bool) {
	if c.state != dragActive {
		return DragCandidate{}, false
	}
	return c.candidate, true
}

func (c *DragController) reset() {
	c.state = dragIdle
	c.eventID = ""
	c.originPixel = 0
	c.duration = 0
	c.candidate = DragCandidate{}
}

// autoPan recenters the viewport when the candidate crosses a window
// edge, placing the dragged edge at the margin offset from that edge.
func (c *DragController) autoPan() {
	window := c.viewport.Window()
	span := window.Span()
	switch {
	case c.candidate.Start < window.Start:
		// Dragged past the left edge: leading edge at margin.
		center := c.candidate.Start - c.margin*span + span/2
		c.viewport.SetWindow(WindowUpdate{Center: &center})
	case c.candidate.End > window.End:
		// Dragged past the right edge: trailing edge at 1 - margin.
		center := c.candidate.End + c.margin*span - span/2
		c.viewport.SetWindow(WindowUpdate{Center: &center})
	}
}
