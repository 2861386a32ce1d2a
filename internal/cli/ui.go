package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/loreweave/loreweave/internal/tui"
)

func init() {
	rootCmd.AddCommand(uiCmd)
}

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Launch the timeline editor",
	Long:  "Launch the interactive terminal timeline editor.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !hasTTY() {
			return errors.New("the timeline editor requires an interactive terminal")
		}

		ctx := cmd.Context()
		cfg := GetConfig()

		database, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer database.Close()

		return tui.Run(tui.Config{
			Theme:        cfg.TUI.Theme,
			MouseEnabled: cfg.TUI.MouseEnabled,
			MinSpan:      cfg.Viewport.MinSpan,
			DefaultSpan:  cfg.Viewport.DefaultSpan,
			DragMargin:   cfg.Viewport.DragMargin,
			Provider:     tui.NewDatabaseProvider(database),
		})
	},
}

func hasTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
