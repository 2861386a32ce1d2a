package timeline

import (
	"fmt"
	"sort"

	"github.com/loreweave/loreweave/internal/models"
)

// Interval is the layout view of a timeline event: an identifier and
// a [Start, End) span in story time. End == Start for instantaneous
// events.
type Interval struct {
	ID    string
	Start float64
	End   float64
}

// NewInterval builds an interval, defaulting a missing end to the
// start (zero width). Inverted spans are rejected here so they can
// never reach track assignment.
func NewInterval(id string, start float64, end *float64) (Interval, error) {
	iv := Interval{ID: id, Start: start, End: start}
	if end != nil {
		if *end < start {
			return Interval{}, fmt.Errorf("interval %s: end %g before start %g", id, *end, start)
		}
		iv.End = *end
	}
	return iv, nil
}

// IntervalFromEvent converts a validated narrative event to its
// layout interval.
func IntervalFromEvent(ev models.TimelineEvent) Interval {
	return Interval{ID: ev.ID, Start: ev.Start, End: ev.EndOrStart()}
}

// Overlaps reports whether two intervals conflict under half-open
// semantics: an interval ending exactly where another begins does not
// conflict.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start < other.End && iv.End > other.Start
}

// trackOccupancy summarizes what already sits on a track. Because
// intervals are placed in ascending start order, a candidate can only
// conflict with occupants in [lastStart, maxEnd), so the pair is
// enough for an exact overlap test. maxEnd is kept separately from
// the last occupant because a zero-width occupant may end before an
// earlier, longer one.
type trackOccupancy struct {
	lastStart float64
	maxEnd    float64
}

func (t trackOccupancy) admits(iv Interval) bool {
	return !iv.Overlaps(Interval{Start: t.lastStart, End: t.maxEnd})
}

// AssignTracks deterministically assigns each interval to a 0-based
// track index such that no two intervals on one track overlap, using
// greedy first-fit over intervals sorted by (start, id). Sorting by
// start makes the greedy assignment use the minimum possible number
// of tracks (the classic interval graph coloring result), and the id
// tie-break makes the result a pure function of the interval set, so
// re-renders over the same events never shuffle lanes.
//
// The input slice is not modified. Duplicate IDs keep the assignment
// of the later sort position.
func AssignTracks(intervals []Interval) map[string]int {
	assignment := make(map[string]int, len(intervals))
	if len(intervals) == 0 {
		return assignment
	}

	sorted := make([]Interval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].ID < sorted[j].ID
	})

	var tracks []trackOccupancy
	for _, iv := range sorted {
		placed := false
		for idx := range tracks {
			if tracks[idx].admits(iv) {
				tracks[idx].lastStart = iv.Start
				if iv.End > tracks[idx].maxEnd {
					tracks[idx].maxEnd = iv.End
				}
				assignment[iv.ID] = idx
				placed = true
				break
			}
		}
		if !placed {
			tracks = append(tracks, trackOccupancy{lastStart: iv.Start, maxEnd: iv.End})
			assignment[iv.ID] = len(tracks) - 1
		}
	}
	return assignment
}

// TrackCount returns the number of tracks an assignment uses.
func TrackCount(assignment map[string]int) int {
	count := 0
	for _, idx := range assignment {
		if idx+1 > count {
			count = idx + 1
		}
	}
	return count
}
