package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nhle/booking-agent/internal/model"
)

const version = "0.1.0"

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "booking-agent",
		Short:         "Email-driven hotel room booking agent",
		Long:          "booking-agent watches a mailbox for room-booking emails, books the room through the hotel admin site, and replies with a confirmation or failure notice.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(
		&configPath, "config", model.DefaultConfigPath(),
		"path to the YAML configuration file",
	)

	rootCmd.AddCommand(
		newRunCmd(&configPath),
		newCredentialCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "booking-agent %s\n", version)
		},
	}
}
