package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDragFixture() (*Viewport, *DragController) {
	v := NewViewport(ViewportConfig{Start: 0, Span: 100, AreaX: 0, AreaWidth: 100})
	return v, NewDragController(v, 0.2)
}

func TestDragPreservesDuration(t *testing.T) {
	_, c := newDragFixture()

	c.Begin(Interval{ID: "ev", Start: 10, End: 25}, 10)
	_, ok := c.Update(40)
	require.True(t, ok)

	result := c.End()
	require.NotNil(t, result)
	assert.Equal(t, "ev", result.EventID)
	assert.InDelta(t, 15.0, result.NewEnd-result.NewStart, coordEpsilon)
	assert.InDelta(t, 40.0, result.NewStart, coordEpsilon)
	assert.False(t, c.Dragging())
}

func TestDragClampsStartToZero(t *testing.T) {
	_, c := newDragFixture()

	c.Begin(Interval{ID: "ev", Start: 10, End: 14}, 10)
	candidate, ok := c.Update(-50)
	require.True(t, ok)
	assert.Equal(t, 0.0, candidate.Start)
	assert.Equal(t, 4.0, candidate.End)
}

func TestDragWithoutContextIsNoOp(t *testing.T) {
	_, c := newDragFixture()

	_, ok := c.Update(30)
	assert.False(t, ok)
	assert.Nil(t, c.End())
	assert.NotPanics(t, func() { c.Cancel() })
	assert.Empty(t, c.DraggedEvent())
}

func TestDragEndWithoutMoveKeepsOriginalPosition(t *testing.T) {
	_, c := newDragFixture()

	c.Begin(Interval{ID: "ev", Start: 10, End: 25}, 10)
	result := c.End()
	require.NotNil(t, result)
	assert.Equal(t, 10.0, result.NewStart)
	assert.Equal(t, 25.0, result.NewEnd)
}

func TestDragCancelDiscardsCandidate(t *testing.T) {
	_, c := newDragFixture()

	c.Begin(Interval{ID: "ev", Start: 10, End: 25}, 10)
	c.Update(80)
	c.Cancel()
	assert.False(t, c.Dragging())
	assert.Nil(t, c.End())
}

func TestDragAutoPanKeepsEventReachable(t *testing.T) {
	v, c := newDragFixture()

	c.Begin(Interval{ID: "ev", Start: 50, End: 55}, 50)

	// Push past the right edge; the window must follow so the
	// trailing edge sits at the 80% offset.
	candidate, ok := c.Update(120)
	require.True(t, ok)
	window := v.Window()
	assert.LessOrEqual(t, candidate.End, window.End)
	assert.InDelta(t, window.Start+0.8*window.Span(), candidate.End, coordEpsilon)

	// The window span never changes during auto-pan.
	assert.InDelta(t, 100.0, window.Span(), coordEpsilon)
}

func TestDragAutoPanLeftEdge(t *testing.T) {
	v, c := newDragFixture()
	v.SetWindow(WindowUpdate{Start: f64(100), End: f64(200)})

	c.Begin(Interval{ID: "ev", Start: 150, End: 160}, 50)
	candidate, ok := c.Update(-30)
	require.True(t, ok)

	window := v.Window()
	assert.GreaterOrEqual(t, candidate.Start, window.Start)
	assert.InDelta(t, window.Start+0.2*window.Span(), candidate.Start, coordEpsilon)
}

func TestDragRestartReplacesContext(t *testing.T) {
	_, c := newDragFixture()

	c.Begin(Interval{ID: "first", Start: 10, End: 20}, 10)
	c.Begin(Interval{ID: "second", Start: 30, End: 31}, 30)
	assert.Equal(t, "second", c.DraggedEvent())

	result := c.End()
	require.NotNil(t, result)
	assert.Equal(t, "second", result.EventID)
	assert.InDelta(t, 1.0, result.NewEnd-result.NewStart, coordEpsilon)
}

func f64(v float64) *float64 { return &v }
