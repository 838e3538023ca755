package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "savbot",
	Short: "Personal Telegram message-saving bot",
	Long:  "Savbot stores the messages you send it, offers per-message action menus, and runs scheduled cleanups.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
