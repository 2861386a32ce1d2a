package timeline

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loreweave/loreweave/internal/models"
)

func span(id string, start, end float64) Interval {
	return Interval{ID: id, Start: start, End: end}
}

func TestNewInterval(t *testing.T) {
	iv, err := NewInterval("a", 5, nil)
	require.NoError(t, err)
	assert.Equal(t, span("a", 5, 5), iv)

	end := 9.0
	iv, err = NewInterval("a", 5, &end)
	require.NoError(t, err)
	assert.Equal(t, span("a", 5, 9), iv)

	bad := 4.0
	_, err = NewInterval("a", 5, &bad)
	require.Error(t, err)
}

func TestOverlapsHalfOpen(t *testing.T) {
	assert.True(t, span("a", 0, 10).Overlaps(span("b", 5, 15)))
	// Touching endpoints do not conflict.
	assert.False(t, span("a", 0, 10).Overlaps(span("b", 10, 20)))
	assert.False(t, span("b", 10, 20).Overlaps(span("a", 0, 10)))
	// A zero-width interval strictly inside a span conflicts with it.
	assert.True(t, span("p", 5, 5).Overlaps(span("a", 0, 10)))
	// A zero-width interval on a boundary does not.
	assert.False(t, span("p", 0, 0).Overlaps(span("a", 0, 10)))
	assert.False(t, span("p", 10, 10).Overlaps(span("a", 0, 10)))
}

func TestAssignTracksMutuallyOverlapping(t *testing.T) {
	assignment := AssignTracks([]Interval{
		span("a", 0, 10),
		span("b", 2, 12),
		span("c", 4, 14),
	})
	require.Len(t, assignment, 3)
	assert.Equal(t, 3, TrackCount(assignment))
	seen := map[int]bool{}
	for _, idx := range assignment {
		assert.False(t, seen[idx], "track %d used twice", idx)
		seen[idx] = true
	}
}

func TestAssignTracksDisjointShareOneTrack(t *testing.T) {
	assignment := AssignTracks([]Interval{
		span("a", 0, 10),
		span("b", 10, 20), // touching is not a conflict
		span("c", 25, 30),
	})
	require.Len(t, assignment, 3)
	assert.Equal(t, 1, TrackCount(assignment))
}

func TestAssignTracksNeverStacksOverlapsOnOneTrack(t *testing.T) {
	intervals := []Interval{
		span("a", 0, 10),
		span("b", 1, 3),
		span("c", 2, 8),
		span("d", 3, 4),
		span("e", 9, 12),
		span("f", 10, 11),
		span("g", 5, 5), // zero-width inside a, c
		span("h", 12, 20),
	}

	rng := rand.New(rand.NewSource(7))
	reference := AssignTracks(intervals)

	for trial := 0; trial < 50; trial++ {
		shuffled := make([]Interval, len(intervals))
		copy(shuffled, intervals)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		assignment := AssignTracks(shuffled)

		// Deterministic: input permutation never changes the result.
		assert.Equal(t, reference, assignment)

		// No two overlapping intervals share a track.
		for i := range intervals {
			for j := i + 1; j < len(intervals); j++ {
				a, b := intervals[i], intervals[j]
				if assignment[a.ID] == assignment[b.ID] {
					assert.False(t, a.Overlaps(b),
						"%s and %s overlap but share track %d", a.ID, b.ID, assignment[a.ID])
				}
			}
		}
	}
}

func TestAssignTracksZeroWidthBetweenOccupants(t *testing.T) {
	// A zero-width event on a boundary slots into track 0; the
	// track's occupied extent must still block later overlaps with
	// the longer occupant.
	assignment := AssignTracks([]Interval{
		span("long", 0, 10),
		span("point", 0, 0),
		span("late", 5, 15),
	})
	assert.Equal(t, assignment["long"], assignment["point"])
	assert.NotEqual(t, assignment["long"], assignment["late"])
}

func TestAssignTracksStableUnderTies(t *testing.T) {
	assignment := AssignTracks([]Interval{
		span("b", 0, 10),
		span("a", 0, 10),
	})
	// Sorted by (start, id): "a" first, so it claims track 0.
	assert.Equal(t, 0, assignment["a"])
	assert.Equal(t, 1, assignment["b"])
}

func TestAssignTracksEmpty(t *testing.T) {
	assignment := AssignTracks(nil)
	require.NotNil(t, assignment)
	assert.Empty(t, assignment)
	assert.Equal(t, 0, TrackCount(assignment))
}

func TestIntervalFromEvent(t *testing.T) {
	end := 14.0
	iv := IntervalFromEvent(models.TimelineEvent{ID: "tl-1", Title: "War", Start: 4, End: &end})
	assert.Equal(t, span("tl-1", 4, 14), iv)

	iv = IntervalFromEvent(models.TimelineEvent{ID: "tl-2", Title: "Birth", Start: 4})
	assert.Equal(t, span("tl-2", 4, 4), iv)
}
