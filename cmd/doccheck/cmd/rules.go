package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/solatis/doccheck/internal/core/config"
	"github.com/solatis/doccheck/internal/rules"
	"github.com/solatis/doccheck/internal/types"
	"github.com/spf13/cobra"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage compliance rules",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored compliance rules",
	RunE:  runRulesList,
}

var rulesAddCmd = &cobra.Command{
	Use:   "add <rule.json>",
	Short: "Add a compliance rule from a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE:  runRulesAdd,
}

var rulesClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored compliance rules",
	RunE:  runRulesClear,
}

var rulesNextIDCmd = &cobra.Command{
	Use:   "next-id <category>",
	Short: "Show the next rule ID for a category",
	Args:  cobra.ExactArgs(1),
	RunE:  runRulesNextID,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesListCmd, rulesAddCmd, rulesClearCmd, rulesNextIDCmd)
}

func openStore() (*rules.Store, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	path := cfg.RulesPath
	if rulesPath != "" {
		path = rulesPath
	}
	return rules.Open(path), nil
}

func runRulesList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	stored := store.Rules()
	if len(stored) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no rules stored")
		return nil
	}

	for _, r := range stored {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  [%s/%s]  %s  (%s on %v)\n",
			r.RuleID, r.Category, r.Severity, r.Name,
			r.Validation.Type, r.ApplicableDocuments)
	}
	return nil
}

func runRulesAdd(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read rule file: %w", err)
	}

	var rule types.Rule
	if err := json.Unmarshal(data, &rule); err != nil {
		return fmt.Errorf("failed to decode rule: %w", err)
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	assignID := rule.RuleID == ""
	if assignID {
		rule.RuleID = store.NextRuleID(rule.Category)
	}
	if err := store.Append(rule); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "added rule %s\n", rule.RuleID)
	return nil
}

func runRulesNextID(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), store.NextRuleID(args[0]))
	return nil
}

func runRulesClear(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	if err := store.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "rules cleared")
	return nil
}
