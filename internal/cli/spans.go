package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/loreweave/loreweave/internal/db"
	"github.com/loreweave/loreweave/internal/models"
)

func init() {
	rootCmd.AddCommand(spanCmd)
	spanCmd.AddCommand(spanAddCmd)
	spanCmd.AddCommand(spanListCmd)
	spanCmd.AddCommand(spanRetimeCmd)
	spanCmd.AddCommand(spanRemoveCmd)

	spanAddCmd.Flags().String("id", "", "span ID (defaults to a slug of the title)")
	spanAddCmd.Flags().Float64("start", 0, "story time the span starts")
	spanAddCmd.Flags().Float64("end", 0, "story time the span ends (omit for an instantaneous beat)")
	spanAddCmd.Flags().String("category", "", "free-form category, e.g. war, journey")
	spanAddCmd.Flags().StringSlice("participants", nil, "object IDs involved in the span")
	spanAddCmd.MarkFlagRequired("start")

	spanRetimeCmd.Flags().Float64("start", 0, "new start time")
	spanRetimeCmd.Flags().Float64("end", 0, "new end time (omit to keep the span's duration)")
	spanRetimeCmd.MarkFlagRequired("start")
}

var spanCmd = &cobra.Command{
	Use:   "span",
	Short: "Manage narrative spans",
	Long:  "Narrative spans are the titled intervals of story time that the timeline lays out into tracks.",
}

var spanAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a narrative span",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		id := mustString(cmd, "id")
		if id == "" {
			id = slugify(args[0])
		}

		event := &models.TimelineEvent{
			ID:       id,
			Title:    args[0],
			Category: mustString(cmd, "category"),
		}
		event.Start, _ = cmd.Flags().GetFloat64("start")
		if cmd.Flags().Changed("end") {
			end, _ := cmd.Flags().GetFloat64("end")
			event.End = &end
		}
		event.Participants, _ = cmd.Flags().GetStringSlice("participants")

		database, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer database.Close()

		if err := db.NewTimelineEventRepository(database).Create(ctx, event); err != nil {
			return err
		}
		fmt.Printf("Created span %s [%s, %s]\n", event.ID,
			formatStoryTime(event.Start), formatStoryTime(event.EndOrStart()))
		return nil
	},
}

var spanListCmd = &cobra.Command{
	Use:   "list",
	Short: "List narrative spans in timeline order",
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

		rows := make([][]string, 0, len(events))
		for _, ev := range events {
			end := "-"
			if ev.End != nil {
				end = formatStoryTime(*ev.End)
			}
			rows = append(rows, []string{
				ev.ID,
				ev.Title,
				formatStoryTime(ev.Start),
				end,
				ev.Category,
			})
		}
		return writeTable(os.Stdout, []string{"ID", "TITLE", "START", "END", "CATEGORY"}, rows)
	},
}

var spanRetimeCmd = &cobra.Command{
	Use:   "retime <id>",
	Short: "Move a span to a different story time",
	Long: `Move a span's start time. Without --end the span keeps its duration;
with --end both edges are set explicitly.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		start, _ := cmd.Flags().GetFloat64("start")

		database, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer database.Close()

		repo := db.NewTimelineEventRepository(database)

		var end *float64
		if cmd.Flags().Changed("end") {
			v, _ := cmd.Flags().GetFloat64("end")
			end = &v
		} else {
			// Preserve the span's duration when only the start moves.
			current, err := repo.Get(ctx, args[0])
			if err != nil {
				return err
			}
			if current.End != nil {
				moved := start + current.Duration()
				end = &moved
			}
		}

		if err := repo.Retime(ctx, args[0], start, end); err != nil {
			return err
		}
		fmt.Printf("Moved span %s to start t=%s\n", args[0], formatStoryTime(start))
		return nil
	},
}

var spanRemoveCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"remove"},
	Short:   "Delete a narrative span",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		database, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer database.Close()

		if err := db.NewTimelineEventRepository(database).Delete(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted span %s\n", args[0])
		return nil
	},
}
