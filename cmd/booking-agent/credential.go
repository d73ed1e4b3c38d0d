package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/booking-agent/internal/credential"
)

// credentialKeys are the secrets the agent knows how to resolve.
var credentialKeys = []string{
	credential.KeyMailboxPassword,
	credential.KeyAdminPassword,
	credential.KeyAnthropicAPIKey,
}

func validCredentialKey(key string) bool {
	for _, k := range credentialKeys {
		if k == key {
			return true
		}
	}
	return false
}

func newCredentialCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credential",
		Short: "Manage secrets in the OS keyring",
		Long: "Store or remove the agent's secrets in the OS keyring so they " +
			"can be left out of the config file.\n\nKeys: " +
			strings.Join(credentialKeys, ", "),
	}

	cmd.AddCommand(newCredentialSetCmd(), newCredentialDeleteCmd())
	return cmd
}

func newCredentialSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key>",
		Short: "Store a secret, read from stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if !validCredentialKey(key) {
				return fmt.Errorf("unknown credential key %q (want one of: %s)",
					key, strings.Join(credentialKeys, ", "))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Value for %s: ", key)
			scanner := bufio.NewScanner(cmd.InOrStdin())
			if !scanner.Scan() {
				return fmt.Errorf("reading value: %w", scanner.Err())
			}
			value := strings.TrimSpace(scanner.Text())
			if value == "" {
				return fmt.Errorf("empty value")
			}

			if err := credential.Set(key, value); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored %s.\n", key)
			return nil
		},
	}
}

func newCredentialDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <key>",
		Short: "Remove a secret from the keyring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if !validCredentialKey(key) {
				return fmt.Errorf("unknown credential key %q (want one of: %s)",
					key, strings.Join(credentialKeys, ", "))
			}

			if err := credential.Delete(key); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s.\n", key)
			return nil
		},
	}
}
