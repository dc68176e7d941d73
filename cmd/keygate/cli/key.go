package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lilalabs/keygate/internal/service"
	"github.com/lilalabs/keygate/internal/store"
)

func newKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "key",
		Aliases: []string{"apikey"},
		Short:   "Manage API keys",
		Long:    "Issue, list, and revoke the time-limited API keys that gate user registration.",
	}

	cmd.AddCommand(newKeyCreateCmd())
	cmd.AddCommand(newKeyListCmd())
	cmd.AddCommand(newKeyRevokeCmd())

	return cmd
}

// ---------- key create ----------

func newKeyCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Issue a new API key",
		Long:  "Generate a new API key with the configured prefix and validity window.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeyCreate()
		},
	}
}

func runKeyCreate() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(&cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	keySvc := service.NewKeyService(st, cfg.Keys.Prefix, cfg.Keys.TTL)
	key, err := keySvc.Generate(context.Background())
	if err != nil {
		return fmt.Errorf("generate key: %w", err)
	}

	fmt.Printf("Issued API key %d\n", key.ID)
	fmt.Printf("  key:        %s\n", key.Key)
	fmt.Printf("  expires at: %s\n", key.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
	return nil
}

// ---------- key list ----------

func newKeyListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all API keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeyList(jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runKeyList(jsonOutput bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(&cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	keys, err := st.ListAPIKeys(context.Background())
	if err != nil {
		return fmt.Errorf("list keys: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(keys)
	}

	if len(keys) == 0 {
		fmt.Println("No API keys issued.")
		return nil
	}

	fmt.Printf("%-6s %-32s %-10s %-20s\n", "ID", "KEY", "STATUS", "EXPIRES")
	for _, k := range keys {
		fmt.Printf("%-6d %-32s %-10s %-20s\n", k.ID, k.Key, k.Status, k.ExpiresAt.Format("2006-01-02 15:04"))
	}

	return nil
}

// ---------- key revoke ----------

func newKeyRevokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <id>",
		Short: "Revoke an API key",
		Long:  "Mark an API key inactive. Revocation is one-way; there is no reactivation.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid key id %q", args[0])
			}
			return runKeyRevoke(id)
		},
	}
}

func runKeyRevoke(id int64) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(&cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.RevokeAPIKey(context.Background(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("api key %d not found", id)
		}
		return fmt.Errorf("revoke key: %w", err)
	}

	fmt.Printf("Revoked API key %d\n", id)
	return nil
}
