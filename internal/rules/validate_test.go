// internal/rules/validate_test.go
package rules

import (
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/solatis/doccheck/internal/types"
)

var testClock = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func ruleOf(vType, field string, params map[string]any) types.Rule {
	return types.Rule{
		RuleID:              "INV-001",
		Name:                "test-rule",
		Description:         "test rule",
		Category:            types.DocTypeInvoice,
		Severity:            types.SeverityHigh,
		ApplicableDocuments: []string{types.DocTypeInvoice},
		Validation: types.Validation{
			Type:       vType,
			Field:      field,
			Parameters: params,
		},
		Enforcement: types.Enforcement{Action: "reject"},
	}
}

func evalRule(rule types.Rule, fields map[string]any) Outcome {
	return EvaluateRule(rule, fields, nil, testClock)
}

func TestEvaluateRule_UnknownType(t *testing.T) {
	rule := ruleOf("quantum_check", "total_amount", nil)
	out := evalRule(rule, map[string]any{"total_amount": 100.0})

	if out.Status != StatusError {
		t.Fatalf("Status = %v, want error", out.Status)
	}
	if out.Message != "Unknown validation type: quantum_check" {
		t.Errorf("Message = %q, want unknown-type message", out.Message)
	}
}

func TestEvaluateRule_OutcomeShape(t *testing.T) {
	rule := ruleOf("numeric", "total_amount", map[string]any{"min_value": 0.0})
	out := evalRule(rule, map[string]any{"total_amount": 50.0})

	if out.RuleID != "INV-001" {
		t.Errorf("RuleID = %q, want INV-001", out.RuleID)
	}
	if out.Field != "total_amount" {
		t.Errorf("Field = %q, want total_amount", out.Field)
	}
	if out.Severity != types.SeverityHigh {
		t.Errorf("Severity = %q, want high", out.Severity)
	}
	if !out.Timestamp.Equal(testClock) {
		t.Errorf("Timestamp = %v, want %v", out.Timestamp, testClock)
	}
}

func TestValidateNumeric(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]any
		fields map[string]any
		want   Status
	}{
		{
			name:   "within min and max",
			params: map[string]any{"min_value": 0.0, "max_value": 1000.0},
			fields: map[string]any{"total_amount": 500.0},
			want:   StatusPassed,
		},
		{
			name:   "below min",
			params: map[string]any{"min_value": 0.01},
			fields: map[string]any{"total_amount": -5.0},
			want:   StatusFailed,
		},
		{
			name:   "above max",
			params: map[string]any{"max_value": 100.0},
			fields: map[string]any{"total_amount": 100.5},
			want:   StatusFailed,
		},
		{
			name:   "expected value within tolerance",
			params: map[string]any{"expected_value": 100.0},
			fields: map[string]any{"total_amount": 100.009},
			want:   StatusPassed,
		},
		{
			name:   "expected value beyond tolerance",
			params: map[string]any{"expected_value": 100.0},
			fields: map[string]any{"total_amount": 100.02},
			want:   StatusFailed,
		},
		{
			name:   "string value with separators",
			params: map[string]any{"min_value": 1000.0},
			fields: map[string]any{"total_amount": "12,500.00"},
			want:   StatusPassed,
		},
		{
			name:   "missing field fails",
			params: map[string]any{"min_value": 0.0},
			fields: map[string]any{},
			want:   StatusFailed,
		},
		{
			name:   "non-coercible value errors",
			params: map[string]any{"min_value": 0.0},
			fields: map[string]any{"total_amount": "not a number"},
			want:   StatusError,
		},
		{
			name:   "non-coercible parameter errors",
			params: map[string]any{"min_value": "plenty"},
			fields: map[string]any{"total_amount": 10.0},
			want:   StatusError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := evalRule(ruleOf("numeric", "total_amount", tt.params), tt.fields)
			if out.Status != tt.want {
				t.Errorf("Status = %v, want %v (message %q)", out.Status, tt.want, out.Message)
			}
		})
	}
}

func TestValidateNumeric_MissingFieldMessage(t *testing.T) {
	out := evalRule(ruleOf("numeric", "total_amount", nil), map[string]any{})
	if out.Message != "Field 'total_amount' not found in document" {
		t.Errorf("Message = %q, want missing-field message", out.Message)
	}
}

func TestValidateRegex(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]any
		value  any
		want   Status
	}{
		{
			name:   "match from start",
			params: map[string]any{"pattern": `INV-\d{4}`},
			value:  "INV-2024-001",
			want:   StatusPassed,
		},
		{
			name:   "match not at start fails",
			params: map[string]any{"pattern": `\d{4}`},
			value:  "INV-2024",
			want:   StatusFailed,
		},
		{
			name:   "case sensitive by default",
			params: map[string]any{"pattern": `INV-`},
			value:  "inv-2024",
			want:   StatusFailed,
		},
		{
			name:   "case insensitive when disabled",
			params: map[string]any{"pattern": `INV-`, "case_sensitive": false},
			value:  "inv-2024",
			want:   StatusPassed,
		},
		{
			name:   "numeric value rendered to text",
			params: map[string]any{"pattern": `\d+`},
			value:  2024,
			want:   StatusPassed,
		},
		{
			name:   "invalid pattern errors",
			params: map[string]any{"pattern": `[unclosed`},
			value:  "anything",
			want:   StatusError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := evalRule(ruleOf("regex", "invoice_number", tt.params), map[string]any{"invoice_number": tt.value})
			if out.Status != tt.want {
				t.Errorf("Status = %v, want %v (message %q)", out.Status, tt.want, out.Message)
			}
		})
	}
}

func TestValidateDateComparison(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]any
		fields map[string]any
		want   Status
	}{
		{
			name:   "before passes",
			params: map[string]any{"operator": "before", "comparison_date": "2024-12-31"},
			fields: map[string]any{"invoice_date": "2024-03-15"},
			want:   StatusPassed,
		},
		{
			name:   "before fails when after",
			params: map[string]any{"operator": "<", "comparison_date": "2024-01-01"},
			fields: map[string]any{"invoice_date": "2024-03-15"},
			want:   StatusFailed,
		},
		{
			name:   "after passes",
			params: map[string]any{"operator": "after", "comparison_date": "2024-01-01"},
			fields: map[string]any{"invoice_date": "2024-03-15"},
			want:   StatusPassed,
		},
		{
			name:   "equals passes",
			params: map[string]any{"operator": "equals", "comparison_date": "2024-03-15"},
			fields: map[string]any{"invoice_date": "2024-03-15"},
			want:   StatusPassed,
		},
		{
			name:   "between inclusive bounds",
			params: map[string]any{"operator": "between", "start_date": "2024-03-15", "end_date": "2024-04-01"},
			fields: map[string]any{"invoice_date": "2024-03-15"},
			want:   StatusPassed,
		},
		{
			name:   "between outside window",
			params: map[string]any{"operator": "between", "start_date": "2024-01-01", "end_date": "2024-02-01"},
			fields: map[string]any{"invoice_date": "2024-03-15"},
			want:   StatusFailed,
		},
		{
			name:   "compare against another field",
			params: map[string]any{"operator": "<=", "field": "due_date"},
			fields: map[string]any{"invoice_date": "2024-03-15", "due_date": "2024-04-15"},
			want:   StatusPassed,
		},
		{
			name:   "unparseable field value errors",
			params: map[string]any{"operator": "before", "comparison_date": "2024-12-31"},
			fields: map[string]any{"invoice_date": "soon"},
			want:   StatusError,
		},
		{
			name:   "invalid operator errors",
			params: map[string]any{"operator": "around", "comparison_date": "2024-12-31"},
			fields: map[string]any{"invoice_date": "2024-03-15"},
			want:   StatusError,
		},
		{
			name:   "unparseable comparison date errors",
			params: map[string]any{"operator": "before", "comparison_date": "someday"},
			fields: map[string]any{"invoice_date": "2024-03-15"},
			want:   StatusError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := evalRule(ruleOf("date_comparison", "invoice_date", tt.params), tt.fields)
			if out.Status != tt.want {
				t.Errorf("Status = %v, want %v (message %q)", out.Status, tt.want, out.Message)
			}
		})
	}
}

func TestValidateCurrencyConsistency(t *testing.T) {
	params := map[string]any{"allowed_currencies": []any{"USD", "EUR"}}

	tests := []struct {
		name   string
		fields map[string]any
		want   Status
	}{
		{
			name:   "allowed currency",
			fields: map[string]any{"currency": "USD"},
			want:   StatusPassed,
		},
		{
			name:   "allowed currency case insensitive",
			fields: map[string]any{"currency": "usd"},
			want:   StatusPassed,
		},
		{
			name:   "disallowed currency",
			fields: map[string]any{"currency": "GBP"},
			want:   StatusFailed,
		},
		{
			name: "line item currency matches",
			fields: map[string]any{
				"currency": "USD",
				"line_items": []any{
					map[string]any{"currency": "USD"},
					map[string]any{"description": "no currency"},
				},
			},
			want: StatusPassed,
		},
		{
			name: "line item currency differs",
			fields: map[string]any{
				"currency": "USD",
				"line_items": []any{
					map[string]any{"currency": "EUR"},
				},
			},
			want: StatusFailed,
		},
		{
			name:   "empty currency fails",
			fields: map[string]any{"currency": ""},
			want:   StatusFailed,
		},
		{
			name:   "missing currency fails",
			fields: map[string]any{},
			want:   StatusFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := evalRule(ruleOf("currency_consistency", "currency", params), tt.fields)
			if out.Status != tt.want {
				t.Errorf("Status = %v, want %v (message %q)", out.Status, tt.want, out.Message)
			}
		})
	}
}

func TestValidateCurrencyConsistency_EmptyCurrencyMessage(t *testing.T) {
	out := evalRule(ruleOf("currency_consistency", "currency", nil), map[string]any{"currency": ""})
	if out.Status != StatusFailed {
		t.Fatalf("Status = %v, want failed", out.Status)
	}
	if out.Message != "Currency field 'currency' is empty" {
		t.Errorf("Message = %q, want empty-currency message", out.Message)
	}
}

func TestValidateCrossReference(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]any
		fields map[string]any
		want   Status
	}{
		{
			name:   "present reference without format",
			params: map[string]any{"reference_field": "po_number"},
			fields: map[string]any{"po_number": "PO-2024-042"},
			want:   StatusPassed,
		},
		{
			name:   "matching format",
			params: map[string]any{"reference_field": "po_number", "reference_format": `PO-\d{4}-\d+`},
			fields: map[string]any{"po_number": "PO-2024-042"},
			want:   StatusPassed,
		},
		{
			name:   "non-matching format",
			params: map[string]any{"reference_field": "po_number", "reference_format": `PO-\d{4}-\d+`},
			fields: map[string]any{"po_number": "ORDER-42"},
			want:   StatusFailed,
		},
		{
			name:   "empty reference fails",
			params: map[string]any{"reference_field": "po_number"},
			fields: map[string]any{"po_number": ""},
			want:   StatusFailed,
		},
		{
			name:   "missing reference fails",
			params: map[string]any{"reference_field": "po_number"},
			fields: map[string]any{},
			want:   StatusFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := evalRule(ruleOf("cross_reference", "", tt.params), tt.fields)
			if out.Status != tt.want {
				t.Errorf("Status = %v, want %v (message %q)", out.Status, tt.want, out.Message)
			}
		})
	}
}

func TestValidateLineItems(t *testing.T) {
	tests := []struct {
		name        string
		fields      map[string]any
		want        Status
		wantMessage string
	}{
		{
			name: "totals match",
			fields: map[string]any{
				"line_items": []any{
					map[string]any{"quantity": 10.0, "unit_price": 13.0, "total": 130.0},
				},
				"total_amount": 130.0,
			},
			want: StatusPassed,
		},
		{
			name: "item total mismatch cites both amounts",
			fields: map[string]any{
				"line_items": []any{
					map[string]any{"quantity": 10.0, "unit_price": 13.0, "total": 131.0},
				},
			},
			want:        StatusFailed,
			wantMessage: "Line item 1 total 131 does not match quantity x unit_price 130",
		},
		{
			name: "multiple items sum to document total",
			fields: map[string]any{
				"line_items": []any{
					map[string]any{"quantity": 2.0, "unit_price": 50.0, "total": 100.0},
					map[string]any{"quantity": 1.0, "unit_price": 30.0, "total": 30.0},
				},
				"total_amount": 130.0,
			},
			want: StatusPassed,
		},
		{
			name: "document total off by one",
			fields: map[string]any{
				"line_items": []any{
					map[string]any{"quantity": 2.0, "unit_price": 50.0, "total": 100.0},
					map[string]any{"quantity": 1.0, "unit_price": 30.0, "total": 30.0},
				},
				"total_amount": 131.0,
			},
			want:        StatusFailed,
			wantMessage: "Document total 131 does not match line item sum 130",
		},
		{
			name: "item total within tolerance",
			fields: map[string]any{
				"line_items": []any{
					map[string]any{"quantity": 3.0, "unit_price": 33.33, "total": 99.99},
				},
			},
			want: StatusPassed,
		},
		{
			name: "document total mismatch",
			fields: map[string]any{
				"line_items": []any{
					map[string]any{"quantity": 2.0, "unit_price": 50.0},
					map[string]any{"quantity": 1.0, "unit_price": 25.0},
				},
				"total_amount": 200.0,
			},
			want:        StatusFailed,
			wantMessage: "Document total 200 does not match line item sum 125",
		},
		{
			name: "missing quantity fails",
			fields: map[string]any{
				"line_items": []any{
					map[string]any{"unit_price": 50.0},
				},
			},
			want:        StatusFailed,
			wantMessage: "Line item 1 is missing quantity",
		},
		{
			name: "missing unit_price fails",
			fields: map[string]any{
				"line_items": []any{
					map[string]any{"quantity": 2.0},
				},
			},
			want:        StatusFailed,
			wantMessage: "Line item 1 is missing unit_price",
		},
		{
			name: "non-numeric quantity errors",
			fields: map[string]any{
				"line_items": []any{
					map[string]any{"quantity": "a few", "unit_price": 50.0},
				},
			},
			want: StatusError,
		},
		{
			name:   "missing line items fails",
			fields: map[string]any{},
			want:   StatusFailed,
		},
		{
			name:   "non-list line items errors",
			fields: map[string]any{"line_items": "oops"},
			want:   StatusError,
		},
		{
			name: "string amounts coerced",
			fields: map[string]any{
				"line_items": []any{
					map[string]any{"quantity": "10", "unit_price": "12.50", "total": "125.00"},
				},
				"total_amount": "125.00",
			},
			want: StatusPassed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := evalRule(ruleOf("line_item_calculation", "line_items", nil), tt.fields)
			if out.Status != tt.want {
				t.Fatalf("Status = %v, want %v (message %q)", out.Status, tt.want, out.Message)
			}
			if tt.wantMessage != "" && out.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", out.Message, tt.wantMessage)
			}
		})
	}
}

func TestValidateAddress(t *testing.T) {
	params := map[string]any{
		"required_components": []any{"street", "city", "postal_code"},
		"postal_code_format":  `\d{5}`,
	}

	tests := []struct {
		name   string
		fields map[string]any
		want   Status
	}{
		{
			name: "complete address",
			fields: map[string]any{
				"vendor_address": map[string]any{
					"street": "1 Main St", "city": "Springfield", "postal_code": "94105",
				},
			},
			want: StatusPassed,
		},
		{
			name: "missing component",
			fields: map[string]any{
				"vendor_address": map[string]any{
					"street": "1 Main St", "postal_code": "94105",
				},
			},
			want: StatusFailed,
		},
		{
			name: "empty component",
			fields: map[string]any{
				"vendor_address": map[string]any{
					"street": "1 Main St", "city": "", "postal_code": "94105",
				},
			},
			want: StatusFailed,
		},
		{
			name: "bad postal code",
			fields: map[string]any{
				"vendor_address": map[string]any{
					"street": "1 Main St", "city": "Springfield", "postal_code": "ABC",
				},
			},
			want: StatusFailed,
		},
		{
			name:   "non-mapping address",
			fields: map[string]any{"vendor_address": "1 Main St, Springfield"},
			want:   StatusFailed,
		},
		{
			name:   "missing address",
			fields: map[string]any{},
			want:   StatusFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := evalRule(ruleOf("address_validation", "vendor_address", params), tt.fields)
			if out.Status != tt.want {
				t.Errorf("Status = %v, want %v (message %q)", out.Status, tt.want, out.Message)
			}
		})
	}
}

func priorDocs(field string, values ...any) []ProcessedDocument {
	out := make([]ProcessedDocument, 0, len(values))
	for _, v := range values {
		out = append(out, ProcessedDocument{
			DocumentType: types.DocTypeInvoice,
			Fields:       map[string]any{field: v},
		})
	}
	return out
}

func TestValidateCrossDocument_ExactMatch(t *testing.T) {
	rule := ruleOf("cross_document_consistency", "vendor_name", map[string]any{"match_type": "exact_match"})

	tests := []struct {
		name    string
		current any
		prior   []ProcessedDocument
		want    Status
	}{
		{
			name:    "first document passes vacuously",
			current: "Acme Corp",
			prior:   nil,
			want:    StatusPassed,
		},
		{
			name:    "case and whitespace insensitive match",
			current: "Acme Corp",
			prior:   priorDocs("vendor_name", "ACME CORP", "  acme corp  "),
			want:    StatusPassed,
		},
		{
			name:    "different vendor fails",
			current: "Acme Corp",
			prior:   priorDocs("vendor_name", "Acme Inc"),
			want:    StatusFailed,
		},
		{
			name:    "priors without the field are skipped",
			current: "Acme Corp",
			prior:   priorDocs("other_field", "whatever"),
			want:    StatusPassed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := EvaluateRule(rule, map[string]any{"vendor_name": tt.current}, tt.prior, testClock)
			if out.Status != tt.want {
				t.Errorf("Status = %v, want %v (message %q)", out.Status, tt.want, out.Message)
			}
		})
	}
}

func TestValidateCrossDocument_ExactMatchMessage(t *testing.T) {
	rule := ruleOf("cross_document_consistency", "vendor_name", map[string]any{"match_type": "exact_match"})
	out := EvaluateRule(rule, map[string]any{"vendor_name": "Acme Corp"}, priorDocs("vendor_name", "Acme Inc"), testClock)

	if out.Status != StatusFailed {
		t.Fatalf("Status = %v, want failed", out.Status)
	}
	if !strings.Contains(out.Message, "Acme Corp") || !strings.Contains(out.Message, "Acme Inc") {
		t.Errorf("Message = %q, want both vendor names cited", out.Message)
	}
}

func TestValidateCrossDocument_NumericConsistency(t *testing.T) {
	rule := ruleOf("cross_document_consistency", "total_amount", map[string]any{"match_type": "numeric_consistency"})

	tests := []struct {
		name    string
		current any
		prior   []ProcessedDocument
		want    Status
	}{
		{
			name:    "within default tolerance",
			current: 100.009,
			prior:   priorDocs("total_amount", 100.0),
			want:    StatusPassed,
		},
		{
			name:    "beyond default tolerance",
			current: 100.02,
			prior:   priorDocs("total_amount", 100.0),
			want:    StatusFailed,
		},
		{
			name:    "non-numeric prior skipped",
			current: 100.0,
			prior:   priorDocs("total_amount", "n/a"),
			want:    StatusPassed,
		},
		{
			name:    "non-numeric current errors",
			current: "n/a",
			prior:   priorDocs("total_amount", 100.0),
			want:    StatusError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := EvaluateRule(rule, map[string]any{"total_amount": tt.current}, tt.prior, testClock)
			if out.Status != tt.want {
				t.Errorf("Status = %v, want %v (message %q)", out.Status, tt.want, out.Message)
			}
		})
	}
}

func TestValidateCrossDocument_NumericToleranceOverride(t *testing.T) {
	rule := ruleOf("cross_document_consistency", "total_amount", map[string]any{
		"match_type": "numeric_consistency",
		"tolerance":  5.0,
	})
	out := EvaluateRule(rule, map[string]any{"total_amount": 103.0}, priorDocs("total_amount", 100.0), testClock)
	if out.Status != StatusPassed {
		t.Errorf("Status = %v, want passed (message %q)", out.Status, out.Message)
	}
}

func TestValidateCrossDocument_DateConsistency(t *testing.T) {
	rule := ruleOf("cross_document_consistency", "invoice_date", map[string]any{"match_type": "date_consistency"})

	tests := []struct {
		name    string
		current any
		prior   []ProcessedDocument
		want    Status
	}{
		{
			name:    "within one day",
			current: "2024-03-15",
			prior:   priorDocs("invoice_date", "2024-03-16"),
			want:    StatusPassed,
		},
		{
			name:    "beyond one day",
			current: "2024-03-15",
			prior:   priorDocs("invoice_date", "2024-03-18"),
			want:    StatusFailed,
		},
		{
			name:    "unparseable current errors",
			current: "someday",
			prior:   priorDocs("invoice_date", "2024-03-15"),
			want:    StatusError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := EvaluateRule(rule, map[string]any{"invoice_date": tt.current}, tt.prior, testClock)
			if out.Status != tt.want {
				t.Errorf("Status = %v, want %v (message %q)", out.Status, tt.want, out.Message)
			}
		})
	}
}

func TestValidateCrossDocument_AllowedDaysOverride(t *testing.T) {
	rule := ruleOf("cross_document_consistency", "invoice_date", map[string]any{
		"match_type":   "date_consistency",
		"allowed_days": 7.0,
	})
	out := EvaluateRule(rule, map[string]any{"invoice_date": "2024-03-15"}, priorDocs("invoice_date", "2024-03-20"), testClock)
	if out.Status != StatusPassed {
		t.Errorf("Status = %v, want passed (message %q)", out.Status, out.Message)
	}
}

func TestValidateCrossDocument_InvalidMatchType(t *testing.T) {
	rule := ruleOf("cross_document_consistency", "vendor_name", map[string]any{"match_type": "fuzzy"})
	out := EvaluateRule(rule, map[string]any{"vendor_name": "Acme"}, priorDocs("vendor_name", "Acme"), testClock)
	if out.Status != StatusError {
		t.Errorf("Status = %v, want error (message %q)", out.Status, out.Message)
	}
}

func TestFailureMessage_PrefersAuthoredErrorMessage(t *testing.T) {
	rule := ruleOf("numeric", "total_amount", map[string]any{"min_value": 100.0})
	rule.Validation.ErrorMessage = "Total amount must be at least 100"

	out := evalRule(rule, map[string]any{"total_amount": 50.0})
	if out.Status != StatusFailed {
		t.Fatalf("Status = %v, want failed", out.Status)
	}
	if out.Message != "Total amount must be at least 100" {
		t.Errorf("Message = %q, want authored error message", out.Message)
	}
}

// Property: no validator panics, whatever values the document carries.
func TestEvaluateRule_NeverPanics(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	validationTypes := []string{
		"numeric", "regex", "date_comparison", "currency_consistency",
		"cross_reference", "line_item_calculation", "address_validation",
		"cross_document_consistency", "bogus_type",
	}

	properties.Property("evaluation never panics", prop.ForAll(
		func(typeIdx int, fieldValue string, numValue float64, useNum bool) bool {
			rule := ruleOf(validationTypes[typeIdx%len(validationTypes)], "field_under_test", map[string]any{
				"pattern":         fieldValue,
				"min_value":       numValue,
				"operator":        fieldValue,
				"comparison_date": fieldValue,
				"match_type":      fieldValue,
			})

			var v any = fieldValue
			if useNum {
				v = numValue
			}
			fields := map[string]any{
				"field_under_test": v,
				"line_items":       []any{map[string]any{"quantity": v, "unit_price": v}},
			}
			prior := []ProcessedDocument{{Fields: map[string]any{"field_under_test": fieldValue}}}

			defer func() {
				if r := recover(); r != nil {
					t.Errorf("EvaluateRule() panicked: %v", r)
				}
			}()

			out := EvaluateRule(rule, fields, prior, testClock)
			switch out.Status {
			case StatusPassed, StatusFailed, StatusError:
				return true
			}
			return false
		},
		gen.IntRange(0, 8),
		gen.AnyString(),
		gen.Float64(),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
