package cmd

import (
	"github.com/spf13/cobra"
)

var (
	configFile string
	dbURL      string
	rulesPath  string
)

var rootCmd = &cobra.Command{
	Use:   "doccheck",
	Short: "doccheck document compliance validator",
	Long:  `doccheck validates extracted business documents (invoices, purchase orders, goods receipts) against structured compliance rules and produces audit reports.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db-url", "", "archive connection URL (sqlite://path or postgres://...)")
	rootCmd.PersistentFlags().StringVar(&rulesPath, "rules", "", "compliance rules file path")
}

func Execute() error {
	return rootCmd.Execute()
}
