// internal/types/rules.go
package types

/*
 * Domain types for compliance rules.
 *
 * Provides Rule, Validation, Enforcement, and RuleSet structures used by
 * internal/rules for storage and evaluation. These types mirror the persisted
 * JSON rule format; unknown extra keys in stored files are ignored on load.
 *
 * Key types:
 *   - Rule: Complete rule definition with a tagged validation strategy
 *   - Validation: Strategy tag plus free-form parameters
 *   - Enforcement: Action taken when a rule fails
 *   - RuleSet: Persisted container (version, metadata, document types, rules)
 */

// Known document types and the general category.
const (
	DocTypeInvoice       = "invoice"
	DocTypePurchaseOrder = "purchase_order"
	DocTypeGoodsReceipt  = "goods_receipt"
	CategoryGeneral      = "general"
)

// Severity levels accepted on a rule.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// EnforcementActions lists the accepted enforcement actions.
var EnforcementActions = []string{
	"reject",
	"flag_for_review",
	"warning",
	"block",
	"notify",
	"to_be_decided",
}

// Validation is the tagged strategy variant of a rule. Type selects the
// validator; Field names the resolved field most strategies read; Parameters
// carries strategy-specific settings (pattern, min_value, operator, ...).
type Validation struct {
	Type         string         `json:"type"`
	Field        string         `json:"field,omitempty"`
	Parameters   map[string]any `json:"parameters,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
}

// Enforcement describes what happens when a rule fails.
type Enforcement struct {
	Action       string `json:"action"`
	Notification bool   `json:"notification"`
}

// Rule is a single declarative compliance check.
type Rule struct {
	RuleID              string      `json:"rule_id"`
	Name                string      `json:"name"`
	Description         string      `json:"description"`
	Category            string      `json:"category"`
	Severity            string      `json:"severity"`
	ApplicableDocuments []string    `json:"applicable_documents"`
	Validation          Validation  `json:"validation"`
	Enforcement         Enforcement `json:"enforcement"`
}

// AppliesTo reports whether the rule applies to the given document type.
// The wildcard entry "all" applies the rule to every type.
func (r Rule) AppliesTo(docType string) bool {
	for _, t := range r.ApplicableDocuments {
		if t == docType || t == "all" {
			return true
		}
	}
	return false
}

// RuleSetMetadata describes the provenance of a persisted rule set.
type RuleSetMetadata struct {
	LastUpdated string `json:"last_updated"`
	Author      string `json:"author"`
	Description string `json:"description"`
}

// RuleSet is the persisted rule store format.
type RuleSet struct {
	Version       string          `json:"version"`
	Metadata      RuleSetMetadata `json:"metadata"`
	DocumentTypes []string        `json:"document_types"`
	Rules         []Rule          `json:"rules"`
}
