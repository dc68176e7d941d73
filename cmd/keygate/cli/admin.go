package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/lilalabs/keygate/internal/model"
	"github.com/lilalabs/keygate/internal/service"
	"github.com/lilalabs/keygate/internal/store"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage admin accounts",
		Long:  "Create and list the admin accounts that can call the protected admin API.",
	}

	cmd.AddCommand(newAdminCreateCmd())
	cmd.AddCommand(newAdminListCmd())

	return cmd
}

// ---------- admin create ----------

func newAdminCreateCmd() *cobra.Command {
	var (
		email    string
		password string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new admin account",
		Example: `  keygate admin create --email admin@example.com --password secret
  keygate admin create --email admin@example.com  # prompts for password`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdminCreate(email, password)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Admin email address (required)")
	cmd.Flags().StringVar(&password, "password", "", "Admin password (prompted if omitted)")
	cmd.MarkFlagRequired("email")

	return cmd
}

func runAdminCreate(email, password string) error {
	if !strings.Contains(email, "@") {
		return fmt.Errorf("invalid email address: %q", email)
	}

	if password == "" {
		var err error
		password, err = promptPassword()
		if err != nil {
			return err
		}
	}
	if password == "" {
		return errors.New("password must not be empty")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(&cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	hash, err := service.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	admin := &model.Admin{
		Email:        email,
		PasswordHash: hash,
	}
	if err := st.CreateAdmin(context.Background(), admin); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return fmt.Errorf("admin %q already exists", email)
		}
		return fmt.Errorf("create admin: %w", err)
	}

	fmt.Printf("Created admin %q (id %d)\n", email, admin.ID)
	return nil
}

func promptPassword() (string, error) {
	fmt.Print("Password: ")
	pwBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	fmt.Println()

	fmt.Print("Confirm password: ")
	confirmBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", fmt.Errorf("read confirmation: %w", err)
	}
	fmt.Println()

	if string(pwBytes) != string(confirmBytes) {
		return "", errors.New("passwords do not match")
	}
	return string(pwBytes), nil
}

// ---------- admin list ----------

func newAdminListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all admin accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdminList(jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runAdminList(jsonOutput bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(&cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	admins, err := st.ListAdmins(context.Background())
	if err != nil {
		return fmt.Errorf("list admins: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(admins)
	}

	if len(admins) == 0 {
		fmt.Println("No admin accounts. Use 'keygate admin create' to create one.")
		return nil
	}

	fmt.Printf("%-6s %-32s %-24s\n", "ID", "EMAIL", "CREATED")
	for _, a := range admins {
		fmt.Printf("%-6d %-32s %-24s\n", a.ID, a.Email, a.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	return nil
}
