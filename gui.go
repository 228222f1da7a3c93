package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fmuoria/resume-reviser/internal/gui"
)

var guiCmd = &cobra.Command{
	Use:   "gui",
	Short: "Open the desktop app",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := gui.NewApp(cfg)
		if err != nil {
			return fmt.Errorf("failed to start desktop app: %w", err)
		}
		app.Run()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(guiCmd)
}
