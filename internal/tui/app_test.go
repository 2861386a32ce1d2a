package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loreweave/loreweave/internal/models"
)

type retimeCall struct {
	id    string
	start float64
	end   *float64
}

type stubProvider struct {
	spans   []models.TimelineEvent
	objects map[string]*models.Object
	events  map[string][]models.ChangeEvent
	retimed []retimeCall
}

func (s *stubProvider) Spans(context.Context) ([]models.TimelineEvent, error) {
	return append([]models.TimelineEvent(nil), s.spans...), nil
}

func (s *stubProvider) RetimeSpan(_ context.Context, id string, start float64, end *float64) error {
	s.retimed = append(s.retimed, retimeCall{id: id, start: start, end: end})
	for i := range s.spans {
		if s.spans[i].ID == id {
			s.spans[i].Start = start
			s.spans[i].End = end
		}
	}
	return nil
}

func (s *stubProvider) Object(_ context.Context, id string) (*models.Object, error) {
	return s.objects[id], nil
}

func (s *stubProvider) ChangeEvents(_ context.Context, objectID string) ([]models.ChangeEvent, error) {
	return s.events[objectID], nil
}

func f64(v float64) *float64 { return &v }

func newTestModel(t *testing.T, provider *stubProvider) *Model {
	t.Helper()

	model, err := NewModel(Config{
		Theme:       "mono",
		MinSpan:     1,
		DefaultSpan: 100,
		DragMargin:  0.2,
		Provider:    provider,
	})
	require.NoError(t, err)

	model.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	msg := model.Init()()
	model.Update(msg)
	return model
}

func questProvider() *stubProvider {
	return &stubProvider{
		spans: []models.TimelineEvent{
			{ID: "quest", Title: "The Quest", Start: 10, End: f64(20)},
			{ID: "siege", Title: "The Siege", Start: 15, End: f64(30)},
			{ID: "truce", Title: "The Truce", Start: 40, End: f64(55)},
		},
	}
}

func keyMsg(key string) tea.KeyMsg {
	switch key {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
}

func TestModelAssignsTracksOnLoad(t *testing.T) {
	model := newTestModel(t, questProvider())

	// quest and siege overlap; truce reuses the freed first track.
	assert.Equal(t, 2, model.trackCount)
	assert.Equal(t, 0, model.assignment["quest"])
	assert.Equal(t, 1, model.assignment["siege"])
	assert.Equal(t, 0, model.assignment["truce"])
}

func TestViewRendersSpansAndAxis(t *testing.T) {
	model := newTestModel(t, questProvider())

	view := model.View()
	assert.Contains(t, view, "The Quest")
	assert.Contains(t, view, "The Siege")
	assert.Contains(t, view, "┴")
	assert.Contains(t, view, "loreweave timeline")
}

func TestMouseDragCommitsRetime(t *testing.T) {
	provider := questProvider()
	model := newTestModel(t, provider)

	// Window [0, 100] over 100 cells: one cell per time unit. Grab the
	// quest span at x=15 on its track row.
	model.Update(tea.MouseMsg{X: 15, Y: laneTop, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	require.True(t, model.drag.Dragging())

	model.Update(tea.MouseMsg{X: 40, Y: laneTop, Action: tea.MouseActionMotion})

	_, cmd := model.Update(tea.MouseMsg{X: 40, Y: laneTop, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	require.NotNil(t, cmd)
	model.Update(cmd())

	require.Len(t, provider.retimed, 1)
	call := provider.retimed[0]
	assert.Equal(t, "quest", call.id)
	assert.InDelta(t, 40.0, call.start, 1e-9)
	require.NotNil(t, call.end)
	assert.InDelta(t, 50.0, *call.end, 1e-9)
}

func TestDragPreservesInstantaneousSpans(t *testing.T) {
	provider := &stubProvider{
		spans: []models.TimelineEvent{
			{ID: "omen", Title: "The Omen", Start: 30},
		},
	}
	model := newTestModel(t, provider)

	model.Update(tea.MouseMsg{X: 30, Y: laneTop, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	require.True(t, model.drag.Dragging())

	model.Update(tea.MouseMsg{X: 60, Y: laneTop, Action: tea.MouseActionMotion})
	_, cmd := model.Update(tea.MouseMsg{X: 60, Y: laneTop, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	require.NotNil(t, cmd)
	model.Update(cmd())

	require.Len(t, provider.retimed, 1)
	assert.InDelta(t, 60.0, provider.retimed[0].start, 1e-9)
	assert.Nil(t, provider.retimed[0].end)
}

func TestEscCancelsDrag(t *testing.T) {
	provider := questProvider()
	model := newTestModel(t, provider)

	model.Update(tea.MouseMsg{X: 15, Y: laneTop, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	require.True(t, model.drag.Dragging())

	model.Update(keyMsg("esc"))
	assert.False(t, model.drag.Dragging())

	// Release after a cancel commits nothing.
	_, cmd := model.Update(tea.MouseMsg{X: 40, Y: laneTop, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	assert.Nil(t, cmd)
	assert.Empty(t, provider.retimed)
}

func TestWheelZoomKeepsAnchor(t *testing.T) {
	model := newTestModel(t, questProvider())

	anchor := model.viewport.PixelToTime(25)
	model.Update(tea.MouseMsg{X: 25, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})

	assert.InDelta(t, 90.0, model.viewport.Window().Span(), 1e-9)
	assert.InDelta(t, anchor, model.viewport.PixelToTime(25), 1e-9)
}

func TestJumpPromptRecentersWindow(t *testing.T) {
	model := newTestModel(t, questProvider())

	model.Update(keyMsg("g"))
	require.True(t, model.jumping)

	model.Update(keyMsg("512"))
	model.Update(keyMsg("enter"))

	require.False(t, model.jumping)
	window := model.viewport.Window()
	assert.InDelta(t, 512.0, window.Center, 1e-9)
	assert.InDelta(t, 100.0, window.Span(), 1e-9)
}

func TestJumpPromptRejectsGibberish(t *testing.T) {
	model := newTestModel(t, questProvider())
	before := model.viewport.Window()

	model.Update(keyMsg("g"))
	model.Update(keyMsg("soon"))
	model.Update(keyMsg("enter"))

	assert.True(t, model.statusErr)
	assert.Equal(t, before, model.viewport.Window())
}

func TestNudgePreservesDuration(t *testing.T) {
	provider := questProvider()
	model := newTestModel(t, provider)
	model.selected = 0

	_, cmd := model.Update(keyMsg("]"))
	require.NotNil(t, cmd)
	model.Update(cmd())

	require.Len(t, provider.retimed, 1)
	call := provider.retimed[0]
	assert.Equal(t, "quest", call.id)
	assert.InDelta(t, 11.0, call.start, 1e-9)
	require.NotNil(t, call.end)
	assert.InDelta(t, 21.0, *call.end, 1e-9)
}

func TestInspectResolvesParticipants(t *testing.T) {
	provider := questProvider()
	provider.spans[0].Participants = []string{"aldric"}
	provider.objects = map[string]*models.Object{
		"aldric": {
			ID: "aldric", Name: "Aldric", Kind: models.ObjectKindPerson,
			Attributes: []models.Attribute{
				{ID: "rank", Name: "Rank", Type: models.ValueTypeText, Value: models.TextValue("squire")},
			},
		},
	}
	provider.events = map[string][]models.ChangeEvent{
		"aldric": {
			{ID: "ev-1", Timestamp: 5, ObjectID: "aldric", AttributeID: "rank", NewValue: models.TextValue("knight")},
		},
	}
	model := newTestModel(t, provider)
	model.selected = 0

	_, cmd := model.Update(keyMsg("i"))
	require.NotNil(t, cmd)
	model.Update(cmd())

	require.True(t, model.inspecting)
	require.Len(t, model.inspect, 2)
	assert.Contains(t, model.inspect[1], "rank=knight")

	// Any key dismisses the overlay.
	model.Update(keyMsg("x"))
	assert.False(t, model.inspecting)
}

func TestSpanAtMissesEmptyCells(t *testing.T) {
	model := newTestModel(t, questProvider())

	_, ok := model.spanAt(35, laneTop)
	assert.False(t, ok)

	idx, ok := model.spanAt(45, laneTop)
	require.True(t, ok)
	assert.Equal(t, "truce", model.spans[idx].ID)

	_, ok = model.spanAt(15, laneTop+5)
	assert.False(t, ok)
}
