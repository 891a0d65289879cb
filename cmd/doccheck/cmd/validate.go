package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/solatis/doccheck/internal/core/config"
	"github.com/solatis/doccheck/internal/core/db"
	"github.com/solatis/doccheck/internal/extract"
	"github.com/solatis/doccheck/internal/group"
	"github.com/solatis/doccheck/internal/report"
	"github.com/solatis/doccheck/internal/rules"
	"github.com/solatis/doccheck/internal/types"
	"github.com/spf13/cobra"
)

const Version = "0.1.0"

var validateCmd = &cobra.Command{
	Use:   "validate [file or directory ...]",
	Short: "Validate extracted documents against compliance rules",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().String("report-dir", "", "directory for generated reports")
	validateCmd.Flags().String("format", "", "report format (html, json)")
	validateCmd.Flags().Bool("archive", false, "store documents, relationships, and the run in the archive")
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if rulesPath != "" {
		cfg.RulesPath = rulesPath
	}
	if cmd.Flags().Changed("report-dir") {
		cfg.ReportDir, _ = cmd.Flags().GetString("report-dir")
	}
	if cmd.Flags().Changed("format") {
		cfg.ReportFormat, _ = cmd.Flags().GetString("format")
	}

	paths, err := extract.CollectPaths(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no document files found under %v", args)
	}
	if len(paths) > cfg.MaxBatchSize {
		return fmt.Errorf("batch of %d documents exceeds max_batch_size %d", len(paths), cfg.MaxBatchSize)
	}

	extractCtx, cancel := context.WithTimeout(ctx, cfg.ExtractionTimeout)
	defer cancel()
	docs, err := extract.LoadBatch(extractCtx, extract.NewFileExtractor(), paths)
	if err != nil {
		return fmt.Errorf("failed to load documents: %w", err)
	}

	store := rules.Open(cfg.RulesPath)
	engine := rules.NewEngine(store)
	result := engine.ValidateBatch(docs)

	log.Printf("doccheck v%s validated %d documents (%d skipped): %d passed, %d failed, %d errors",
		Version, result.TotalDocuments, len(result.Skipped),
		result.Summary.Passed, result.Summary.Failed, result.Summary.Errors)

	reportPath, err := writeReport(result, cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "report written to %s\n", reportPath)

	archive, _ := cmd.Flags().GetBool("archive")
	if archive {
		if err := archiveRun(docs, result, cfg); err != nil {
			return err
		}
	}

	if result.Summary.HighSeverityFailures > 0 {
		return fmt.Errorf("%d high severity failures", result.Summary.HighSeverityFailures)
	}
	return nil
}

func writeReport(result rules.BatchResult, cfg *config.ValidatorConfig) (string, error) {
	if cfg.ReportFormat == "json" {
		data, err := json.MarshalIndent(result, "", "    ")
		if err != nil {
			return "", fmt.Errorf("marshal report: %w", err)
		}
		if err := os.MkdirAll(cfg.ReportDir, 0755); err != nil {
			return "", fmt.Errorf("create report directory: %w", err)
		}
		path := fmt.Sprintf("%s/compliance_report_%s.json",
			cfg.ReportDir, result.GeneratedAt.Format("20060102_150405"))
		if err := os.WriteFile(path, data, 0644); err != nil {
			return "", fmt.Errorf("write report: %w", err)
		}
		return path, nil
	}
	return report.Write(result, cfg.ReportDir)
}

// archiveRun stores the batch documents, the relationships discovered
// between them, and the run result.
func archiveRun(docs []types.Document, result rules.BatchResult, cfg *config.ValidatorConfig) error {
	url := dbURL
	if url == "" {
		url = cfg.DatabaseURL
	}

	conn, err := db.Open(url)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer conn.Close()

	if err := db.MigrateUp(conn); err != nil {
		return err
	}
	archive, err := db.NewArchive(conn)
	if err != nil {
		return err
	}

	records := make([]group.Record, 0, len(docs))
	for _, doc := range docs {
		id, err := archive.SaveDocument(doc)
		if err != nil {
			return err
		}
		records = append(records, group.Record{ID: string(id), Data: doc.ExtractedFields})
	}

	for _, rel := range group.NewGrouper(cfg.SimilarityThreshold).Relate(records) {
		err := archive.SaveRelationship(
			types.DocumentID(rel.Doc1ID), types.DocumentID(rel.Doc2ID),
			rel.Type, rel.Confidence,
		)
		if err != nil {
			return err
		}
	}

	runID, err := archive.SaveRun(result)
	if err != nil {
		return err
	}
	log.Printf("archived run %s (%d documents)", runID, len(docs))
	return nil
}
