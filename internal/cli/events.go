package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/loreweave/loreweave/internal/db"
	"github.com/loreweave/loreweave/internal/logging"
	"github.com/loreweave/loreweave/internal/models"
)

func init() {
	rootCmd.AddCommand(eventCmd)
	eventCmd.AddCommand(eventAddCmd)
	eventCmd.AddCommand(eventListCmd)
	eventCmd.AddCommand(eventRetimeCmd)
	eventCmd.AddCommand(eventRemoveCmd)

	eventAddCmd.Flags().Float64("at", 0, "story time of the change")
	eventAddCmd.Flags().String("value", "", "new attribute value")
	eventAddCmd.MarkFlagRequired("at")
	eventAddCmd.MarkFlagRequired("value")

	eventListCmd.Flags().String("object", "", "filter by object ID")
	eventListCmd.Flags().String("attribute", "", "filter by attribute ID")
	eventListCmd.Flags().Float64("since", 0, "only events at or after this story time")
	eventListCmd.Flags().Float64("until", 0, "only events before this story time")
	eventListCmd.Flags().Int("limit", 50, "max events per page")
	eventListCmd.Flags().String("cursor", "", "pagination cursor from a previous page")

	eventRetimeCmd.Flags().Float64("at", 0, "new story time")
	eventRetimeCmd.MarkFlagRequired("at")
}

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Manage attribute change events",
	Long:  "Record and rework the change events that rewrite object attributes over story time.",
}

var eventAddCmd = &cobra.Command{
	Use:   "add <object> <attribute>",
	Short: "Record an attribute change",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		at, _ := cmd.Flags().GetFloat64("at")
		rawValue, _ := cmd.Flags().GetString("value")

		database, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer database.Close()

		obj, err := db.NewObjectRepository(database).Get(ctx, args[0])
		if err != nil {
			return err
		}
		attr, ok := obj.Attribute(args[1])
		if !ok {
			return fmt.Errorf("object %s has no attribute %q", obj.ID, args[1])
		}

		value, err := models.ParseValue(attr.Type, rawValue)
		if err != nil {
			return err
		}
		if err := attr.CheckValue(value); err != nil {
			return err
		}

		event := &models.ChangeEvent{
			Timestamp:   at,
			ObjectID:    obj.ID,
			AttributeID: attr.ID,
			NewValue:    value,
		}
		if err := db.NewChangeEventRepository(database).Append(ctx, event); err != nil {
			return err
		}

		eventLogger := logging.WithEvent(event.ID)
		eventLogger.Info().
			Str("object_id", obj.ID).
			Str("attribute_id", attr.ID).
			Float64("timestamp", at).
			Msg("change event recorded")
		fmt.Printf("Recorded event %s: %s.%s = %s at t=%s\n",
			event.ID, obj.ID, attr.ID, value.String(), formatStoryTime(at))
		return nil
	},
}

var eventListCmd = &cobra.Command{
	Use:   "list",
	Short: "List change events in timeline order",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		query := db.ChangeEventQuery{Cursor: mustString(cmd, "cursor")}
		query.Limit, _ = cmd.Flags().GetInt("limit")
		if cmd.Flags().Changed("object") {
			v := mustString(cmd, "object")
			query.ObjectID = &v
		}
		if cmd.Flags().Changed("attribute") {
			v := mustString(cmd, "attribute")
			query.AttributeID = &v
		}
		if cmd.Flags().Changed("since") {
			v, _ := cmd.Flags().GetFloat64("since")
			query.Since = &v
		}
		if cmd.Flags().Changed("until") {
			v, _ := cmd.Flags().GetFloat64("until")
			query.Until = &v
		}

		database, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer database.Close()

		page, err := db.NewChangeEventRepository(database).Query(ctx, query)
		if err != nil {
			return err
		}

		rows := make([][]string, 0, len(page.Events))
		for _, ev := range page.Events {
			rows = append(rows, []string{
				formatStoryTime(ev.Timestamp),
				ev.ID,
				ev.ObjectID,
				ev.AttributeID,
				ev.NewValue.String(),
			})
		}
		if err := writeTable(os.Stdout, []string{"TIME", "ID", "OBJECT", "ATTRIBUTE", "VALUE"}, rows); err != nil {
			return err
		}
		if page.NextCursor != "" {
			fmt.Printf("\nMore events available: --cursor %s\n", page.NextCursor)
		}
		return nil
	},
}

var eventRetimeCmd = &cobra.Command{
	Use:   "retime <id>",
	Short: "Move a change event to a different story time",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		at, _ := cmd.Flags().GetFloat64("at")

		database, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer database.Close()

		if err := db.NewChangeEventRepository(database).Retime(ctx, args[0], at); err != nil {
			return err
		}
		fmt.Printf("Moved event %s to t=%s\n", args[0], formatStoryTime(at))
		return nil
	},
}

var eventRemoveCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"remove"},
	Short:   "Delete a change event",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		database, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer database.Close()

		if err := db.NewChangeEventRepository(database).Delete(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted event %s\n", args[0])
		return nil
	},
}

func mustString(cmd *cobra.Command, name string) string {
	value, _ := cmd.Flags().GetString(name)
	return value
}
