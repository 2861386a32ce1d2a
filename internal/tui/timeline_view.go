package tui

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Row layout, top to bottom: header, axis labels, axis ticks, one row
// per track, then status and help.
const laneTop = 3

const helpLine = "q quit  h/l pan  +/- zoom  j/k select  c center  g goto  [/] nudge  i inspect  r reset  R reload"

func (m *Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteByte('\n')
	b.WriteString(m.renderAxis())

	lanes := m.trackCount
	if lanes < 1 {
		lanes = 1
	}
	for track := 0; track < lanes; track++ {
		b.WriteByte('\n')
		b.WriteString(m.renderLane(track))
	}

	if m.inspecting {
		for _, line := range m.inspect {
			b.WriteByte('\n')
			b.WriteString(m.theme.Overlay.Render(truncate(line, m.width)))
		}
	}

	b.WriteByte('\n')
	b.WriteString(m.renderStatus())
	b.WriteByte('\n')
	if m.jumping {
		b.WriteString(m.theme.Prompt.Render(m.jump.View()))
	} else {
		b.WriteString(m.theme.Help.Render(truncate(helpLine, m.width)))
	}
	return b.String()
}

func (m *Model) renderHeader() string {
	window := m.viewport.Window()
	title := "loreweave timeline"
	if span, ok := m.selectedSpan(); ok {
		title = fmt.Sprintf("loreweave timeline · %s", span.Title)
	}
	header := fmt.Sprintf("%s   [%s, %s] span=%s",
		title,
		formatTime(window.Start),
		formatTime(window.End),
		formatTime(window.Span()))
	return m.theme.Header.Render(truncate(header, m.width))
}

// renderAxis draws tick labels over a ruled line. Tick spacing snaps
// to 1/2/5 times a power of ten so labels stay readable at any zoom.
func (m *Model) renderAxis() string {
	window := m.viewport.Window()

	step := niceStep(window.Span() * 16 / math.Max(float64(m.width), 16))
	first := math.Ceil(window.Start/step) * step

	labels := make([]rune, m.width)
	ticks := make([]rune, m.width)
	for i := range labels {
		labels[i] = ' '
		ticks[i] = '─'
	}

	for t := first; t < window.End; t += step {
		px := int(m.viewport.TimeToPixel(t))
		if px < 0 || px >= m.width {
			continue
		}
		ticks[px] = '┴'
		placeLabel(labels, px, formatTime(t))
	}

	return m.theme.Axis.Render(string(labels)) + "\n" + m.theme.Axis.Render(string(ticks))
}

const (
	cellBlank = iota
	cellSpan
	cellSelected
	cellDragging
)

type laneCell struct {
	r     rune
	style int
}

// renderLane draws every span assigned to a track, plus the live drag
// candidate when the dragged span lives on this track. The candidate
// is painted last so it stays visible over committed spans.
func (m *Model) renderLane(track int) string {
	cells := make([]laneCell, m.width)
	for i := range cells {
		cells[i] = laneCell{r: ' ', style: cellBlank}
	}

	paint := func(start, end float64, title string, style int) {
		from, to, visible := m.spanPixels(start, end)
		if !visible {
			return
		}
		bar := []rune(spanBar(title, to-from+1))
		for i, r := range bar {
			if from+i < len(cells) {
				cells[from+i] = laneCell{r: r, style: style}
			}
		}
	}

	candidate, dragging := m.drag.Candidate()

	for idx, span := range m.spans {
		if m.assignment[span.ID] != track {
			continue
		}
		if dragging && span.ID == candidate.EventID {
			continue
		}
		style := cellSpan
		if idx == m.selected {
			style = cellSelected
		}
		paint(span.Start, span.EndOrStart(), span.Title, style)
	}

	if dragging && m.assignment[candidate.EventID] == track {
		paint(candidate.Start, candidate.End, m.spanByID[candidate.EventID].Title, cellDragging)
	}

	// Group runs of equal style so each run is styled once.
	var b strings.Builder
	for i := 0; i < len(cells); {
		j := i
		var run strings.Builder
		for j < len(cells) && cells[j].style == cells[i].style {
			run.WriteRune(cells[j].r)
			j++
		}
		switch cells[i].style {
		case cellSelected:
			b.WriteString(m.theme.SpanSelected.Render(run.String()))
		case cellDragging:
			b.WriteString(m.theme.SpanDragging.Render(run.String()))
		case cellSpan:
			b.WriteString(m.theme.Span.Render(run.String()))
		default:
			b.WriteString(run.String())
		}
		i = j
	}
	return strings.TrimRight(b.String(), " ")
}

func (m *Model) renderStatus() string {
	if m.statusErr {
		return m.theme.StatusError.Render(truncate(m.status, m.width))
	}
	return m.theme.Status.Render(truncate(m.status, m.width))
}

// spanPixels maps a story-time interval to inclusive pixel columns,
// clipped to the visible area. Zero-width intervals occupy one cell.
func (m *Model) spanPixels(start, end float64) (from, to int, visible bool) {
	from = int(math.Floor(m.viewport.TimeToPixel(start)))
	to = int(math.Ceil(m.viewport.TimeToPixel(end))) - 1
	if to < from {
		to = from
	}
	if to < 0 || from >= m.width {
		return 0, 0, false
	}
	if from < 0 {
		from = 0
	}
	if to >= m.width {
		to = m.width - 1
	}
	return from, to, true
}

// spanAt hit-tests a mouse cell against the rendered lanes and returns
// the index of the span under it.
func (m *Model) spanAt(x, y int) (int, bool) {
	track := y - laneTop
	if track < 0 || track >= m.trackCount {
		return 0, false
	}
	for idx, span := range m.spans {
		if m.assignment[span.ID] != track {
			continue
		}
		from, to, visible := m.spanPixels(span.Start, span.EndOrStart())
		if visible && x >= from && x <= to {
			return idx, true
		}
	}
	return 0, false
}

// spanBar renders a span as a bar of the given cell width, with the
// title inlaid when it fits.
func spanBar(title string, width int) string {
	if width <= 1 {
		return "◆"
	}
	if width < 5 {
		return strings.Repeat("█", width)
	}
	inner := runewidth.Truncate(title, width-2, "…")
	padding := width - 2 - runewidth.StringWidth(inner)
	return "▐" + inner + strings.Repeat("▄", padding) + "▌"
}

// placeLabel writes a label into the row at px, shifting left when it
// would run off the end.
func placeLabel(row []rune, px int, label string) {
	runes := []rune(label)
	if px+len(runes) > len(row) {
		px = len(row) - len(runes)
	}
	if px < 0 {
		px = 0
	}
	// Skip labels that would collide with one already placed.
	for i := px; i < px+len(runes) && i < len(row); i++ {
		if row[i] != ' ' {
			return
		}
	}
	for i, r := range runes {
		if px+i < len(row) {
			row[px+i] = r
		}
	}
}

// niceStep rounds a raw step up to 1, 2, or 5 times a power of ten.
func niceStep(raw float64) float64 {
	if raw <= 0 || math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 1
	}
	power := math.Pow(10, math.Floor(math.Log10(raw)))
	normalized := raw / power
	switch {
	case normalized <= 1:
		return power
	case normalized <= 2:
		return 2 * power
	case normalized <= 5:
		return 5 * power
	default:
		return 10 * power
	}
}

func formatTime(t float64) string {
	return strconv.FormatFloat(t, 'g', -1, 64)
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}
