// internal/rules/validate.go
package rules

import (
	"fmt"
	"math"
	"regexp"
	"time"

	"github.com/solatis/doccheck/internal/types"
)

/*
 * Validator strategies.
 *
 * One evaluation strategy per validation.type, registered once in a strategy
 * table. Each strategy is a pure function of (rule, resolved fields, prior
 * documents) returning pass/fail plus a message, or an error when the rule
 * itself could not be evaluated (bad parameters, non-coercible values).
 *
 * Outcome semantics are tri-state:
 *   - passed: the rule ran and the data satisfies it
 *   - failed: the rule ran and the data violates it
 *   - error:  the rule could not run; isolated to this rule, never propagated
 *
 * Messages: strategies with computed diagnostics (line items, cross-document,
 * currency, address) report the specific mismatch; threshold strategies
 * (numeric, regex, date) leave the message to the rule's error_message, which
 * mirrors how rule authors phrase those checks.
 *
 * Tolerances: numeric equality and arithmetic checks use an absolute 0.01
 * tolerance (currency cents), not a relative one. Cross-document numeric
 * tolerance defaults to 0.01 and date tolerance to one day; both are
 * overridable per rule.
 */

// Status is the tri-state outcome of evaluating one rule.
type Status string

const (
	StatusPassed Status = "passed"
	StatusFailed Status = "failed"
	StatusError  Status = "error"
)

// Tolerance constants for numeric comparisons.
const (
	// amountTolerance is the absolute tolerance for currency amounts.
	amountTolerance = 0.01

	// defaultAllowedDays bounds cross-document date drift.
	defaultAllowedDays = 1
)

// Outcome is the result of evaluating one rule against one document.
type Outcome struct {
	RuleID    string    `json:"rule_id"`
	Name      string    `json:"name"`
	Status    Status    `json:"status"`
	Field     string    `json:"field,omitempty"`
	Message   string    `json:"message,omitempty"`
	Severity  string    `json:"severity"`
	Timestamp time.Time `json:"timestamp"`
}

// ProcessedDocument is a document already validated earlier in the batch,
// as seen by cross-document consistency rules.
type ProcessedDocument struct {
	DocumentType string
	Fields       map[string]any
}

// validatorFunc evaluates one rule. ok=false carries the failure message;
// a non-nil error downgrades to an error-status outcome.
type validatorFunc func(rule types.Rule, fields map[string]any, prior []ProcessedDocument) (ok bool, msg string, err error)

// validators is the strategy table keyed by validation.type.
var validators = map[string]validatorFunc{
	"numeric":                    validateNumeric,
	"regex":                      validateRegex,
	"date_comparison":            validateDateComparison,
	"currency_consistency":       validateCurrencyConsistency,
	"cross_reference":            validateCrossReference,
	"line_item_calculation":      validateLineItems,
	"address_validation":         validateAddress,
	"cross_document_consistency": validateCrossDocument,
}

// EvaluateRule dispatches the rule to its strategy and shapes the outcome.
// Unknown validation types and strategy errors become error-status outcomes;
// nothing escapes as a Go error.
func EvaluateRule(rule types.Rule, fields map[string]any, prior []ProcessedDocument, now time.Time) Outcome {
	out := Outcome{
		RuleID:    rule.RuleID,
		Name:      rule.Name,
		Field:     rule.Validation.Field,
		Severity:  rule.Severity,
		Timestamp: now,
	}

	fn, known := validators[rule.Validation.Type]
	if !known {
		out.Status = StatusError
		out.Message = fmt.Sprintf("Unknown validation type: %s", rule.Validation.Type)
		return out
	}

	ok, msg, err := fn(rule, fields, prior)
	switch {
	case err != nil:
		out.Status = StatusError
		out.Message = fmt.Sprintf("Validation error: %v", err)
	case ok:
		out.Status = StatusPassed
	default:
		out.Status = StatusFailed
		out.Message = failureMessage(rule, msg)
	}
	return out
}

// failureMessage prefers the strategy's computed diagnostic, then the rule
// author's error_message, then a generic fallback.
func failureMessage(rule types.Rule, computed string) string {
	if computed != "" {
		return computed
	}
	if rule.Validation.ErrorMessage != "" {
		return rule.Validation.ErrorMessage
	}
	return "Validation failed"
}

// fieldValue looks up the rule's field, reporting absence as a failure
// message (a missing field is a data violation, not a validator error).
func fieldValue(fields map[string]any, name string) (any, string) {
	v, ok := fields[name]
	if !ok || v == nil {
		return nil, fmt.Sprintf("Field '%s' not found in document", name)
	}
	return v, ""
}

// validateNumeric checks min/max bounds and expected-value equality with an
// absolute 0.01 tolerance. Non-coercible values are validator errors.
func validateNumeric(rule types.Rule, fields map[string]any, _ []ProcessedDocument) (bool, string, error) {
	v, missing := fieldValue(fields, rule.Validation.Field)
	if missing != "" {
		return false, missing, nil
	}

	value, err := toDecimal(v)
	if err != nil {
		return false, "", fmt.Errorf("field %q: %w", rule.Validation.Field, err)
	}

	params := rule.Validation.Parameters
	if min, present, err := paramDecimal(params, "min_value"); err != nil {
		return false, "", err
	} else if present && value < min {
		return false, "", nil
	}
	if max, present, err := paramDecimal(params, "max_value"); err != nil {
		return false, "", err
	} else if present && value > max {
		return false, "", nil
	}
	if expected, present, err := paramDecimal(params, "expected_value"); err != nil {
		return false, "", err
	} else if present {
		return math.Abs(value-expected) < amountTolerance, "", nil
	}
	return true, "", nil
}

// validateRegex matches the pattern from the start of the text rendering of
// the field (prefix match, not full match). Invalid patterns are errors.
func validateRegex(rule types.Rule, fields map[string]any, _ []ProcessedDocument) (bool, string, error) {
	v, missing := fieldValue(fields, rule.Validation.Field)
	if missing != "" {
		return false, missing, nil
	}

	params := rule.Validation.Parameters
	pattern := paramString(params, "pattern", "")
	if !paramBool(params, "case_sensitive", true) {
		pattern = "(?i)" + pattern
	}

	return matchFromStart(pattern, toText(v))
}

// matchFromStart reports whether the pattern matches at offset zero.
func matchFromStart(pattern, s string) (bool, string, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, "", fmt.Errorf("invalid pattern: %w", err)
	}
	loc := re.FindStringIndex(s)
	return loc != nil && loc[0] == 0, "", nil
}

// dateOperators maps the accepted operator spellings to a canonical form.
var dateOperators = map[string]string{
	"equals": "==", "==": "==",
	"before": "<", "<": "<",
	"after": ">", ">": ">",
	"<=": "<=", ">=": ">=",
	"between": "between",
}

// validateDateComparison compares the field's date against a fixed
// comparison_date, another field, or a start/end window. Unparseable dates
// are validator errors, consistent with every other coercion failure.
func validateDateComparison(rule types.Rule, fields map[string]any, _ []ProcessedDocument) (bool, string, error) {
	v, missing := fieldValue(fields, rule.Validation.Field)
	if missing != "" {
		return false, missing, nil
	}

	value, err := toDate(v)
	if err != nil {
		return false, "", fmt.Errorf("field %q is not a valid date", rule.Validation.Field)
	}

	params := rule.Validation.Parameters
	op, known := dateOperators[paramString(params, "operator", "==")]
	if !known {
		return false, "", fmt.Errorf("invalid date operator %q", paramString(params, "operator", ""))
	}

	if op == "between" {
		start, err := toDate(params["start_date"])
		if err != nil {
			return false, "", fmt.Errorf("parameter \"start_date\" is not a valid date")
		}
		end, err := toDate(params["end_date"])
		if err != nil {
			return false, "", fmt.Errorf("parameter \"end_date\" is not a valid date")
		}
		return !value.Before(start) && !value.After(end), "", nil
	}

	var target time.Time
	if other := paramString(params, "field", ""); other != "" {
		ov, missing := fieldValue(fields, other)
		if missing != "" {
			return false, missing, nil
		}
		target, err = toDate(ov)
		if err != nil {
			return false, "", fmt.Errorf("field %q is not a valid date", other)
		}
	} else {
		target, err = toDate(params["comparison_date"])
		if err != nil {
			return false, "", fmt.Errorf("parameter \"comparison_date\" is not a valid date")
		}
	}

	switch op {
	case "==":
		return value.Equal(target), "", nil
	case "<":
		return value.Before(target), "", nil
	case ">":
		return value.After(target), "", nil
	case "<=":
		return !value.After(target), "", nil
	case ">=":
		return !value.Before(target), "", nil
	}
	return false, "", nil
}

// validateCurrencyConsistency checks the document currency against an
// allow-list and every line item's currency against the document currency.
func validateCurrencyConsistency(rule types.Rule, fields map[string]any, _ []ProcessedDocument) (bool, string, error) {
	field := paramString(rule.Validation.Parameters, "currency_field", "")
	if field == "" {
		field = rule.Validation.Field
	}
	if field == "" {
		field = "currency"
	}

	v, missing := fieldValue(fields, field)
	if missing != "" {
		return false, missing, nil
	}
	currency := normalizeText(toText(v))
	if currency == "" {
		return false, fmt.Sprintf("Currency field '%s' is empty", field), nil
	}

	if allowed := paramStrings(rule.Validation.Parameters, "allowed_currencies"); len(allowed) > 0 {
		found := false
		for _, a := range allowed {
			if normalizeText(a) == currency {
				found = true
				break
			}
		}
		if !found {
			return false, fmt.Sprintf("Currency '%s' is not in the allowed list", toText(v)), nil
		}
	}

	items, _ := fields["line_items"].([]any)
	for i, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		ic, present := item["currency"]
		if !present || ic == nil {
			continue
		}
		if normalizeText(toText(ic)) != currency {
			return false, fmt.Sprintf("Line item %d currency '%s' differs from document currency '%s'", i+1, toText(ic), toText(v)), nil
		}
	}
	return true, "", nil
}

// validateCrossReference checks a reference field's presence and, when a
// format pattern is supplied, its shape.
func validateCrossReference(rule types.Rule, fields map[string]any, _ []ProcessedDocument) (bool, string, error) {
	field := paramString(rule.Validation.Parameters, "reference_field", "")
	if field == "" {
		field = rule.Validation.Field
	}

	v, missing := fieldValue(fields, field)
	if missing != "" {
		return false, missing, nil
	}

	ref := toText(v)
	if ref == "" {
		return false, fmt.Sprintf("Reference field '%s' is empty", field), nil
	}

	format := paramString(rule.Validation.Parameters, "reference_format", "")
	if format == "" {
		return true, "", nil
	}
	ok, _, err := matchFromStart(format, ref)
	if err != nil {
		return false, "", err
	}
	if !ok {
		return false, fmt.Sprintf("Reference '%s' does not match the expected format", ref), nil
	}
	return true, "", nil
}

// validateLineItems recomputes every line item total and the document total.
// Each item needs quantity and unit_price; per-item and document-level
// mismatches beyond 0.01 fail with the computed difference.
func validateLineItems(rule types.Rule, fields map[string]any, _ []ProcessedDocument) (bool, string, error) {
	field := rule.Validation.Field
	if field == "" {
		field = "line_items"
	}

	v, missing := fieldValue(fields, field)
	if missing != "" {
		return false, missing, nil
	}
	items, ok := v.([]any)
	if !ok {
		return false, "", fmt.Errorf("field %q is not a list of line items", field)
	}

	sum := 0.0
	for i, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			return false, "", fmt.Errorf("line item %d is not a mapping", i+1)
		}

		qv, present := item["quantity"]
		if !present || qv == nil {
			return false, fmt.Sprintf("Line item %d is missing quantity", i+1), nil
		}
		pv, present := item["unit_price"]
		if !present || pv == nil {
			return false, fmt.Sprintf("Line item %d is missing unit_price", i+1), nil
		}

		quantity, err := toDecimal(qv)
		if err != nil {
			return false, "", fmt.Errorf("line item %d quantity: %w", i+1, err)
		}
		price, err := toDecimal(pv)
		if err != nil {
			return false, "", fmt.Errorf("line item %d unit_price: %w", i+1, err)
		}

		computed := quantity * price
		if tv, present := item["total"]; present && tv != nil {
			total, err := toDecimal(tv)
			if err != nil {
				return false, "", fmt.Errorf("line item %d total: %w", i+1, err)
			}
			if math.Abs(total-computed) > amountTolerance {
				return false, fmt.Sprintf("Line item %d total %s does not match quantity x unit_price %s", i+1, formatAmount(total), formatAmount(computed)), nil
			}
		}
		sum += computed
	}

	if tv, present := fields["total_amount"]; present && tv != nil {
		total, err := toDecimal(tv)
		if err != nil {
			return false, "", fmt.Errorf("field \"total_amount\": %w", err)
		}
		if math.Abs(total-sum) > amountTolerance {
			return false, fmt.Sprintf("Document total %s does not match line item sum %s", formatAmount(total), formatAmount(sum)), nil
		}
	}
	return true, "", nil
}

// formatAmount renders a currency amount without trailing zeros noise.
func formatAmount(f float64) string {
	return toText(f)
}

// validateAddress requires a structured address mapping with every listed
// component present, and optionally a postal_code matching a format pattern.
func validateAddress(rule types.Rule, fields map[string]any, _ []ProcessedDocument) (bool, string, error) {
	field := paramString(rule.Validation.Parameters, "address_field", "")
	if field == "" {
		field = rule.Validation.Field
	}
	if field == "" {
		field = FieldVendorAddress
	}

	v, missing := fieldValue(fields, field)
	if missing != "" {
		return false, missing, nil
	}
	addr, ok := v.(map[string]any)
	if !ok {
		return false, fmt.Sprintf("Field '%s' is not a structured address", field), nil
	}

	for _, component := range paramStrings(rule.Validation.Parameters, "required_components") {
		cv, present := addr[component]
		if !present || cv == nil || toText(cv) == "" {
			return false, fmt.Sprintf("Address is missing required component '%s'", component), nil
		}
	}

	format := paramString(rule.Validation.Parameters, "postal_code_format", "")
	if format == "" {
		return true, "", nil
	}
	postal := toText(addr["postal_code"])
	ok, _, err := matchFromStart(format, postal)
	if err != nil {
		return false, "", err
	}
	if !ok {
		return false, fmt.Sprintf("Postal code '%s' does not match the expected format", postal), nil
	}
	return true, "", nil
}

// validateCrossDocument compares the field's value against the same field in
// every previously processed document. The first document in a batch passes
// vacuously. Prior values that are missing or non-coercible are skipped;
// only the current document's value can error the rule.
func validateCrossDocument(rule types.Rule, fields map[string]any, prior []ProcessedDocument) (bool, string, error) {
	field := rule.Validation.Field
	current, present := fields[field]
	if !present || current == nil {
		return false, fmt.Sprintf("Field '%s' not found in current document", field), nil
	}

	var priorValues []any
	for _, doc := range prior {
		if v, ok := doc.Fields[field]; ok && v != nil {
			priorValues = append(priorValues, v)
		}
	}
	if len(priorValues) == 0 {
		return true, "", nil
	}

	params := rule.Validation.Parameters
	switch matchType := paramString(params, "match_type", "exact_match"); matchType {
	case "exact_match":
		return crossDocExact(field, current, priorValues)
	case "numeric_consistency":
		tolerance, present, err := paramDecimal(params, "tolerance")
		if err != nil {
			return false, "", err
		}
		if !present {
			tolerance = amountTolerance
		}
		return crossDocNumeric(current, priorValues, tolerance)
	case "date_consistency":
		allowed, present, err := paramDecimal(params, "allowed_days")
		if err != nil {
			return false, "", err
		}
		if !present {
			allowed = defaultAllowedDays
		}
		return crossDocDate(current, priorValues, allowed)
	default:
		return false, "", fmt.Errorf("invalid match_type %q", matchType)
	}
}

// crossDocExact compares normalized strings case-insensitively and numbers
// through decimal coercion.
func crossDocExact(field string, current any, prior []any) (bool, string, error) {
	cs, currentIsString := current.(string)
	for _, pv := range prior {
		if ps, ok := pv.(string); ok && currentIsString {
			if normalizeText(cs) != normalizeText(ps) {
				return false, fmt.Sprintf("Value '%s' does not match previous document value '%s' (case-insensitive comparison)", cs, ps), nil
			}
			continue
		}
		if !equalValues(current, pv) {
			return false, fmt.Sprintf("Value '%s' does not match previous document value '%s'", toText(current), toText(pv)), nil
		}
	}
	return true, "", nil
}

// equalValues compares two values, coercing through decimal when both sides
// are numeric so 100 and 100.0 compare equal across JSON encodings.
func equalValues(a, b any) bool {
	fa, erra := toDecimal(a)
	fb, errb := toDecimal(b)
	if erra == nil && errb == nil {
		return fa == fb
	}
	return toText(a) == toText(b)
}

func crossDocNumeric(current any, prior []any, tolerance float64) (bool, string, error) {
	value, err := toDecimal(current)
	if err != nil {
		return false, "", fmt.Errorf("value %q is not a valid number", toText(current))
	}
	for _, pv := range prior {
		pf, err := toDecimal(pv)
		if err != nil {
			continue
		}
		if math.Abs(value-pf) > tolerance {
			return false, fmt.Sprintf("Value '%s' differs from previous document value '%s' by more than %v", toText(current), toText(pv), tolerance), nil
		}
	}
	return true, "", nil
}

func crossDocDate(current any, prior []any, allowedDays float64) (bool, string, error) {
	value, err := toDate(current)
	if err != nil {
		return false, "", fmt.Errorf("value %q is not a valid date", toText(current))
	}
	for _, pv := range prior {
		pd, err := toDate(pv)
		if err != nil {
			continue
		}
		days := math.Abs(value.Sub(pd).Hours() / 24)
		if days > allowedDays {
			return false, fmt.Sprintf("Date '%s' differs from previous document date '%s' by more than %v days", toText(current), toText(pv), allowedDays), nil
		}
	}
	return true, "", nil
}
