package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/loreweave/loreweave/internal/snapshot"
)

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)

	exportCmd.Flags().String("out", "", "write the snapshot to this file instead of stdout")
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the world as a YAML snapshot",
	Long:  "Export every object, change event, and narrative span as a single YAML document.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		database, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer database.Close()

		world, err := snapshot.Collect(ctx, database)
		if err != nil {
			return err
		}

		out := os.Stdout
		if path := mustString(cmd, "out"); path != "" {
			file, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", path, err)
			}
			defer file.Close()
			out = file
		}
		return snapshot.Write(out, world)
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a YAML snapshot into the database",
	Long: `Import a snapshot produced by export. Rows that collide with existing
IDs fail the import; importing into a fresh database is the supported path.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		file, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", args[0], err)
		}
		defer file.Close()

		world, err := snapshot.Read(file)
		if err != nil {
			return err
		}

		database, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer database.Close()

		if err := snapshot.Restore(ctx, database, world); err != nil {
			return err
		}

		fmt.Printf("Imported %d objects, %d change events, %d spans\n",
			len(world.Objects), len(world.ChangeEvents), len(world.TimelineEvents))
		return nil
	},
}
