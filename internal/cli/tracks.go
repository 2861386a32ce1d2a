package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/loreweave/loreweave/internal/db"
	"github.com/loreweave/loreweave/internal/models"
	"github.com/loreweave/loreweave/internal/timeline"
)

func init() {
	rootCmd.AddCommand(tracksCmd)

	tracksCmd.Flags().Float64("from", 0, "only spans overlapping at or after this story time")
	tracksCmd.Flags().Float64("to", 0, "only spans overlapping before this story time")
}

var tracksCmd = &cobra.Command{
	Use:   "tracks",
	Short: "Show the track layout of narrative spans",
	Long: `Tracks lays spans out the way the timeline editor draws them:
overlapping spans land on separate tracks, non-overlapping spans reuse
the lowest free one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		database, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer database.Close()

		events, err := db.NewTimelineEventRepository(database).List(ctx)
		if err != nil {
			return err
		}
		events = filterSpans(cmd, events)

		intervals := make([]timeline.Interval, 0, len(events))
		titles := make(map[string]string, len(events))
		for _, ev := range events {
			intervals = append(intervals, timeline.IntervalFromEvent(ev))
			titles[ev.ID] = ev.Title
		}

		assignment := timeline.AssignTracks(intervals)

		rows := make([][]string, 0, len(intervals))
		for _, iv := range intervals {
			rows = append(rows, []string{
				fmt.Sprintf("%d", assignment[iv.ID]),
				iv.ID,
				titles[iv.ID],
				formatStoryTime(iv.Start),
				formatStoryTime(iv.End),
			})
		}
		if err := writeTable(os.Stdout, []string{"TRACK", "ID", "TITLE", "START", "END"}, rows); err != nil {
			return err
		}

		fmt.Printf("\n%d spans on %d tracks\n", len(intervals), timeline.TrackCount(assignment))
		return nil
	},
}

func filterSpans(cmd *cobra.Command, events []models.TimelineEvent) []models.TimelineEvent {
	if !cmd.Flags().Changed("from") && !cmd.Flags().Changed("to") {
		return events
	}

	var filtered []models.TimelineEvent
	for _, ev := range events {
		if cmd.Flags().Changed("from") {
			from, _ := cmd.Flags().GetFloat64("from")
			if ev.EndOrStart() < from {
				continue
			}
		}
		if cmd.Flags().Changed("to") {
			to, _ := cmd.Flags().GetFloat64("to")
			if ev.Start >= to {
				continue
			}
		}
		filtered = append(filtered, ev)
	}
	return filtered
}
