package report

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/solatis/doccheck/internal/rules"
	"github.com/solatis/doccheck/internal/types"
)

func sampleResult() rules.BatchResult {
	return rules.BatchResult{
		TotalDocuments: 1,
		Documents: []rules.DocumentResult{
			{
				Index:        1,
				DocumentType: types.DocTypeInvoice,
				Source:       "invoice.pdf",
				Fields: map[string]any{
					"invoice_number": "INV-2024-001",
					"total_amount":   1250.0,
				},
				Outcomes: []rules.Outcome{
					{
						RuleID:   "INV-001",
						Name:     "invoice-total-positive",
						Status:   rules.StatusPassed,
						Field:    "total_amount",
						Severity: types.SeverityHigh,
					},
					{
						RuleID:   "INV-002",
						Name:     "invoice-number-format",
						Status:   rules.StatusFailed,
						Field:    "invoice_number",
						Message:  "Invoice number must match INV-YYYY-NNN",
						Severity: types.SeverityMedium,
					},
				},
				Summary: rules.DocumentSummary{TotalRules: 2, Passed: 1, Failed: 1},
			},
		},
		Skipped: []rules.SkippedDocument{
			{Index: 2, Source: "broken.pdf", Reason: "extraction failed: timeout"},
		},
		Summary: rules.CorpusSummary{
			TotalRulesEvaluated:   2,
			Passed:                1,
			Failed:                1,
			DocumentsWithFailures: 1,
		},
		GeneratedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRender_ContainsSummaryAndOutcomes(t *testing.T) {
	html, err := Render(sampleResult())
	if err != nil {
		t.Fatalf("Render() error = %v, want nil", err)
	}

	for _, want := range []string{
		"Compliance Validation Report",
		"2024-06-01 12:00:00",
		"Document 1: invoice",
		"invoice_number",
		"INV-2024-001",
		"invoice-total-positive",
		"INV-002",
		"Invoice number must match INV-YYYY-NNN",
		`class="rule passed"`,
		`class="rule failed"`,
		"Skipped Documents",
		"extraction failed: timeout",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestRender_DocumentStatusClass(t *testing.T) {
	result := sampleResult()

	// A document with failures renders as failed.
	html, err := Render(result)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(html, `class="status failed">FAILED`) {
		t.Error("document with failures not marked FAILED")
	}

	// Errors only, no failures: error status.
	result.Documents[0].Summary = rules.DocumentSummary{TotalRules: 1, Errors: 1}
	html, err = Render(result)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(html, `class="status error">ERROR`) {
		t.Error("document with errors not marked ERROR")
	}

	// All passed.
	result.Documents[0].Summary = rules.DocumentSummary{TotalRules: 1, Passed: 1}
	html, err = Render(result)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(html, `class="status passed">PASSED`) {
		t.Error("clean document not marked PASSED")
	}
}

func TestRender_EscapesDocumentData(t *testing.T) {
	result := sampleResult()
	result.Documents[0].Outcomes[1].Message = `<script>alert("x")</script>`

	html, err := Render(result)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(html, "<script>alert") {
		t.Error("report contains unescaped script tag")
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Error("message not escaped")
	}
}

func TestRender_NoSkippedSectionWhenEmpty(t *testing.T) {
	result := sampleResult()
	result.Skipped = nil

	html, err := Render(result)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(html, "Skipped Documents") {
		t.Error("skipped section rendered for empty skip list")
	}
}

func TestWrite_CreatesTimestampedFile(t *testing.T) {
	dir := t.TempDir()

	path, err := Write(sampleResult(), dir)
	if err != nil {
		t.Fatalf("Write() error = %v, want nil", err)
	}
	if !strings.HasSuffix(path, "compliance_report_20240601_120000.html") {
		t.Errorf("path = %q, want timestamped report name", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v, want nil", err)
	}
	if !strings.Contains(string(data), "Compliance Validation Report") {
		t.Error("written report missing title")
	}
}
