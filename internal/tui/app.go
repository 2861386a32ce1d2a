// Package tui implements the interactive timeline editor.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/loreweave/loreweave/internal/logging"
	"github.com/loreweave/loreweave/internal/models"
	"github.com/loreweave/loreweave/internal/timeline"
)

// Config configures the editor.
type Config struct {
	Theme        string
	MouseEnabled bool

	// MinSpan is the narrowest visible window; DefaultSpan is the
	// window width on startup and reset.
	MinSpan     float64
	DefaultSpan float64

	// DragMargin is the auto-pan edge fraction used while dragging.
	DragMargin float64

	Provider Provider
}

type spansLoadedMsg struct {
	spans []models.TimelineEvent
	err   error
}

type spanRetimedMsg struct {
	id  string
	err error
}

type inspectLoadedMsg struct {
	lines []string
	err   error
}

// Model is the root bubbletea model for the editor.
type Model struct {
	provider Provider
	theme    Theme
	drag     *timeline.DragController
	viewport *timeline.Viewport

	width  int
	height int

	spans      []models.TimelineEvent
	spanByID   map[string]models.TimelineEvent
	assignment map[string]int
	trackCount int

	selected int

	jumping bool
	jump    textinput.Model

	inspecting bool
	inspect    []string

	status    string
	statusErr bool
}

// NewModel builds the editor model from config.
func NewModel(cfg Config) (*Model, error) {
	if cfg.Provider == nil {
		return nil, errors.New("tui: no data provider configured")
	}

	viewport := timeline.NewViewport(timeline.ViewportConfig{
		MinSpan: cfg.MinSpan,
		Span:    cfg.DefaultSpan,
	})

	jump := textinput.New()
	jump.Placeholder = "story time"
	jump.Prompt = "go to t="
	jump.CharLimit = 32

	return &Model{
		provider: cfg.Provider,
		theme:    ThemeByName(cfg.Theme),
		viewport: viewport,
		drag:     timeline.NewDragController(viewport, cfg.DragMargin),
		jump:     jump,
		status:   "loading spans",
	}, nil
}

// Run starts the editor and blocks until it exits.
func Run(cfg Config) error {
	model, err := NewModel(cfg)
	if err != nil {
		return err
	}

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.MouseEnabled {
		opts = append(opts, tea.WithMouseCellMotion())
	}

	tuiLogger := logging.Component("tui")
	tuiLogger.Info().
		Str("theme", model.theme.Name).
		Bool("mouse", cfg.MouseEnabled).
		Msg("starting timeline editor")

	program := tea.NewProgram(model, opts...)
	_, err = program.Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	return m.loadSpans()
}

func (m *Model) loadSpans() tea.Cmd {
	return func() tea.Msg {
		spans, err := m.provider.Spans(context.Background())
		return spansLoadedMsg{spans: spans, err: err}
	}
}

func (m *Model) retimeSpan(id string, start float64, end *float64) tea.Cmd {
	return func() tea.Msg {
		err := m.provider.RetimeSpan(context.Background(), id, start, end)
		return spanRetimedMsg{id: id, err: err}
	}
}

func (m *Model) loadInspect(span models.TimelineEvent) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if len(span.Participants) == 0 {
			return inspectLoadedMsg{lines: []string{fmt.Sprintf("%s has no participants", span.Title)}}
		}

		lines := []string{fmt.Sprintf("%s at t=%s", span.Title, formatTime(span.Start))}
		for _, objectID := range span.Participants {
			obj, err := m.provider.Object(ctx, objectID)
			if err != nil {
				return inspectLoadedMsg{err: err}
			}
			events, err := m.provider.ChangeEvents(ctx, objectID)
			if err != nil {
				return inspectLoadedMsg{err: err}
			}

			resolved := timeline.ResolveAt(obj, events, span.Start)
			parts := make([]string, 0, len(obj.Attributes))
			for _, attr := range obj.Attributes {
				parts = append(parts, fmt.Sprintf("%s=%s", attr.ID, resolved[attr.ID].String()))
			}
			lines = append(lines, fmt.Sprintf("  %s: %s", obj.Name, strings.Join(parts, "  ")))
		}
		return inspectLoadedMsg{lines: lines}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.SetArea(0, float64(msg.Width))
		return m, nil

	case spansLoadedMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.setSpans(msg.spans)
		return m, nil

	case spanRetimedMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, m.loadSpans()
		}
		m.setStatus(fmt.Sprintf("moved %s", msg.id))
		return m, m.loadSpans()

	case inspectLoadedMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.inspecting = true
		m.inspect = msg.lines
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)
	}
	return m, nil
}

func (m *Model) setSpans(spans []models.TimelineEvent) {
	m.spans = spans
	m.spanByID = make(map[string]models.TimelineEvent, len(spans))

	intervals := make([]timeline.Interval, 0, len(spans))
	for _, span := range spans {
		m.spanByID[span.ID] = span
		intervals = append(intervals, timeline.IntervalFromEvent(span))
	}
	m.assignment = timeline.AssignTracks(intervals)
	m.trackCount = timeline.TrackCount(m.assignment)

	if m.selected >= len(spans) {
		m.selected = len(spans) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
	m.setStatus(fmt.Sprintf("%d spans on %d tracks", len(spans), m.trackCount))
}

func (m *Model) selectedSpan() (models.TimelineEvent, bool) {
	if m.selected < 0 || m.selected >= len(m.spans) {
		return models.TimelineEvent{}, false
	}
	return m.spans[m.selected], true
}

func (m *Model) setStatus(text string) {
	m.status = text
	m.statusErr = false
}

func (m *Model) setError(err error) {
	m.status = err.Error()
	m.statusErr = true
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.jumping {
		return m.handleJumpKey(msg)
	}

	if m.inspecting {
		m.inspecting = false
		m.inspect = nil
		return m, nil
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "esc":
		if m.drag.Dragging() {
			m.drag.Cancel()
			m.setStatus("drag cancelled")
		}
		return m, nil

	case "h", "left":
		m.viewport.PanBy(-float64(m.width) / 8)
		return m, nil

	case "l", "right":
		m.viewport.PanBy(float64(m.width) / 8)
		return m, nil

	case "+", "=":
		m.viewport.ZoomAt(m.centerPixel(), 0.8)
		return m, nil

	case "-", "_":
		m.viewport.ZoomAt(m.centerPixel(), 1.25)
		return m, nil

	case "j", "down":
		if m.selected < len(m.spans)-1 {
			m.selected++
		}
		return m, nil

	case "k", "up":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case "c":
		if span, ok := m.selectedSpan(); ok {
			m.centerOn(span)
		}
		return m, nil

	case "[":
		return m, m.nudgeSelected(-m.nudgeStep())

	case "]":
		return m, m.nudgeSelected(m.nudgeStep())

	case "g":
		m.jumping = true
		m.jump.SetValue("")
		m.jump.Focus()
		return m, textinput.Blink

	case "i":
		if span, ok := m.selectedSpan(); ok {
			return m, m.loadInspect(span)
		}
		return m, nil

	case "r":
		m.viewport.Reset()
		m.setStatus("viewport reset")
		return m, nil

	case "R":
		return m, m.loadSpans()
	}
	return m, nil
}

func (m *Model) handleJumpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		raw := strings.TrimSpace(m.jump.Value())
		m.jumping = false
		m.jump.Blur()

		t, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			m.setError(fmt.Errorf("invalid story time %q", raw))
			return m, nil
		}
		m.viewport.SetWindow(timeline.WindowUpdate{Center: &t})
		m.setStatus(fmt.Sprintf("jumped to t=%s", formatTime(t)))
		return m, nil

	case "esc":
		m.jumping = false
		m.jump.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.jump, cmd = m.jump.Update(msg)
	return m, cmd
}

func (m *Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.viewport.ZoomAt(float64(msg.X), 0.9)
		case tea.MouseButtonWheelDown:
			m.viewport.ZoomAt(float64(msg.X), 1.1)
		case tea.MouseButtonLeft:
			if idx, ok := m.spanAt(msg.X, msg.Y); ok {
				m.selected = idx
				span := m.spans[idx]
				m.drag.Begin(timeline.IntervalFromEvent(span), float64(msg.X))
				m.setStatus(fmt.Sprintf("dragging %s", span.Title))
			}
		}
		return m, nil

	case tea.MouseActionMotion:
		if m.drag.Dragging() {
			if candidate, ok := m.drag.Update(float64(msg.X)); ok {
				m.setStatus(fmt.Sprintf("move to [%s, %s]",
					formatTime(candidate.Start), formatTime(candidate.End)))
			}
		}
		return m, nil

	case tea.MouseActionRelease:
		if result := m.drag.End(); result != nil {
			span := m.spanByID[result.EventID]
			// Instantaneous spans stay instantaneous across a drag.
			var end *float64
			if span.End != nil {
				moved := result.NewEnd
				end = &moved
			}
			return m, m.retimeSpan(result.EventID, result.NewStart, end)
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) centerPixel() float64 {
	x, width := m.viewport.Area()
	return x + width/2
}

func (m *Model) centerOn(span models.TimelineEvent) {
	center := (span.Start + span.EndOrStart()) / 2
	m.viewport.SetWindow(timeline.WindowUpdate{Center: &center})
}

// nudgeStep is one hundredth of the visible window, at least the
// viewport's minimum span resolution.
func (m *Model) nudgeStep() float64 {
	step := m.viewport.Window().Span() / 100
	if min := m.viewport.MinSpan() / 10; step < min {
		step = min
	}
	return step
}

func (m *Model) nudgeSelected(delta float64) tea.Cmd {
	span, ok := m.selectedSpan()
	if !ok {
		return nil
	}

	start := span.Start + delta
	if start < 0 {
		start = 0
	}
	var end *float64
	if span.End != nil {
		moved := start + span.Duration()
		end = &moved
	}
	return m.retimeSpan(span.ID, start, end)
}
