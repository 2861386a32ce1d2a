package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/loreweave/loreweave/internal/db"
	"github.com/loreweave/loreweave/internal/models"
	"github.com/loreweave/loreweave/internal/timeline"
)

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().Float64("at", 0, "story time to resolve at")
	resolveCmd.MarkFlagRequired("at")
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <object>",
	Short: "Resolve an object's attribute values at a story time",
	Long: `Resolve answers "what was this object's state at time T": each
attribute starts from its base value and takes the newest change event
at or before T.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		at, _ := cmd.Flags().GetFloat64("at")

		database, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer database.Close()

		obj, err := db.NewObjectRepository(database).Get(ctx, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s at t=%s\n\n", obj.Name, formatStoryTime(at))
		return printResolvedAttributes(ctx, database, obj, at)
	},
}

func printResolvedAttributes(ctx context.Context, database *db.DB, obj *models.Object, at float64) error {
	events, err := db.NewChangeEventRepository(database).ListByObject(ctx, obj.ID)
	if err != nil {
		return err
	}

	resolved := timeline.ResolveAt(obj, events, at)

	rows := make([][]string, 0, len(obj.Attributes))
	for _, attr := range obj.Attributes {
		value := resolved[attr.ID]
		marker := ""
		if !value.Equal(attr.Value) {
			marker = "*"
		}
		rows = append(rows, []string{attr.ID, string(attr.Type), value.String(), marker})
	}
	if err := writeTable(os.Stdout, []string{"ATTRIBUTE", "TYPE", "VALUE", ""}, rows); err != nil {
		return err
	}
	fmt.Println("\n* changed from base value")
	return nil
}
