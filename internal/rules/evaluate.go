// internal/rules/evaluate.go
package rules

import (
	"fmt"
	"log"
	"time"

	"github.com/solatis/doccheck/internal/types"
)

/*
 * Batch validation engine.
 *
 * Runs every applicable rule against every document in a batch, in batch
 * order, and aggregates per-document and corpus-level summaries. Documents
 * are independent except through cross-document consistency rules, which see
 * the resolved fields of every document validated earlier in the same batch.
 *
 * Failure isolation is the core invariant: one rule erroring or one document
 * failing extraction never aborts the batch. Skipped documents are reported
 * alongside results, not silently dropped. Rule selection is purely by
 * applicable_documents; a type no rule targets validates with zero rules.
 */

// DocumentResult is the validation outcome for one document. Index is the
// 1-based position in the submitted batch.
type DocumentResult struct {
	Index        int             `json:"index"`
	DocumentType string          `json:"document_type"`
	Source       string          `json:"source,omitempty"`
	Fields       map[string]any  `json:"resolved_fields"`
	Outcomes     []Outcome       `json:"outcomes"`
	Summary      DocumentSummary `json:"summary"`
}

// DocumentSummary counts rule outcomes for one document.
type DocumentSummary struct {
	TotalRules           int       `json:"total_rules"`
	Passed               int       `json:"passed"`
	Failed               int       `json:"failed"`
	Errors               int       `json:"errors"`
	HighSeverityFailures int       `json:"high_severity_failures"`
	Timestamp            time.Time `json:"timestamp"`
}

// SkippedDocument records a document the batch could not validate. Index is
// the 1-based position in the submitted batch.
type SkippedDocument struct {
	Index  int    `json:"index"`
	Source string `json:"source,omitempty"`
	Reason string `json:"reason"`
}

// CorpusSummary aggregates outcomes across the whole batch.
type CorpusSummary struct {
	TotalRulesEvaluated   int `json:"total_rules_evaluated"`
	Passed                int `json:"passed"`
	Failed                int `json:"failed"`
	Errors                int `json:"errors"`
	HighSeverityFailures  int `json:"high_severity_failures"`
	DocumentsWithFailures int `json:"documents_with_failures"`
}

// BatchResult is the full output of one validation run.
type BatchResult struct {
	TotalDocuments int               `json:"total_documents"`
	Documents      []DocumentResult  `json:"documents"`
	Skipped        []SkippedDocument `json:"skipped,omitempty"`
	Summary        CorpusSummary     `json:"summary"`
	GeneratedAt    time.Time         `json:"generated_at"`
}

// Engine validates document batches against a rule store.
type Engine struct {
	store *Store

	// now is the outcome clock, injectable for deterministic runs.
	now func() time.Time
}

// NewEngine returns an engine over the given store using the wall clock.
func NewEngine(store *Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// WithClock replaces the outcome clock. Used by replayable runs and tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// ValidateBatch validates documents in order. Documents without a document
// type or with a failed extraction are skipped with a reason; a document
// whose type no rule targets validates with zero rules. Validated documents
// feed the prior-document view of later cross-document rules.
func (e *Engine) ValidateBatch(docs []types.Document) BatchResult {
	result := BatchResult{GeneratedAt: e.now()}

	var prior []ProcessedDocument
	for i, doc := range docs {
		index := i + 1
		if reason := skipReason(doc); reason != "" {
			log.Printf("skipping document %d (%s): %s", index, doc.Metadata.Source, reason)
			result.Skipped = append(result.Skipped, SkippedDocument{
				Index:  index,
				Source: doc.Metadata.Source,
				Reason: reason,
			})
			continue
		}

		fields := ResolveFields(doc)
		docResult := DocumentResult{
			Index:        index,
			DocumentType: doc.DocumentType,
			Source:       doc.Metadata.Source,
			Fields:       fields,
		}

		for _, rule := range e.store.ApplicableRules(doc.DocumentType) {
			outcome := EvaluateRule(rule, fields, prior, e.now())
			docResult.Outcomes = append(docResult.Outcomes, outcome)
			tally(&docResult.Summary, outcome)
		}
		docResult.Summary.Timestamp = e.now()

		accumulate(&result.Summary, docResult.Summary)
		result.Documents = append(result.Documents, docResult)
		prior = append(prior, ProcessedDocument{
			DocumentType: doc.DocumentType,
			Fields:       fields,
		})
	}

	result.TotalDocuments = len(result.Documents)
	return result
}

// skipReason returns why a document cannot be validated, or "" when it can.
// success=false alone means failed extraction; the error string only
// sharpens the reason.
func skipReason(doc types.Document) string {
	if !doc.Metadata.Success {
		if doc.Metadata.Error != "" {
			return fmt.Sprintf("extraction failed: %s", doc.Metadata.Error)
		}
		return "extraction failed"
	}
	if doc.DocumentType == "" {
		return "document has no document_type"
	}
	return ""
}

func tally(s *DocumentSummary, o Outcome) {
	s.TotalRules++
	switch o.Status {
	case StatusPassed:
		s.Passed++
	case StatusFailed:
		s.Failed++
		if o.Severity == types.SeverityHigh {
			s.HighSeverityFailures++
		}
	case StatusError:
		s.Errors++
	}
}

func accumulate(c *CorpusSummary, s DocumentSummary) {
	c.TotalRulesEvaluated += s.TotalRules
	c.Passed += s.Passed
	c.Failed += s.Failed
	c.Errors += s.Errors
	c.HighSeverityFailures += s.HighSeverityFailures
	if s.Failed > 0 {
		c.DocumentsWithFailures++
	}
}
