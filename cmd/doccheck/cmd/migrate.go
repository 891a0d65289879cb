package cmd

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/solatis/doccheck/internal/core/config"
	"github.com/solatis/doccheck/internal/core/db"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending archive migrations",
	RunE:  runMigrate,
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show archive migration status",
	RunE:  runMigrateStatus,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
}

func openArchiveConn() (*sqlx.DB, error) {
	url := dbURL
	if url == "" {
		cfg, err := config.LoadConfig(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		url = cfg.DatabaseURL
	}
	return db.Open(url)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	conn, err := openArchiveConn()
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := db.MigrateUp(conn); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
	return nil
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	conn, err := openArchiveConn()
	if err != nil {
		return err
	}
	defer conn.Close()

	statuses, err := db.MigrateStatus(conn)
	if err != nil {
		return err
	}
	for _, s := range statuses {
		state := "pending"
		if s.Applied {
			state = "applied"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-40s %s\n", s.ID, state)
	}
	return nil
}
