// internal/rules/coerce.go
package rules

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/solatis/doccheck/internal/types"
)

/*
 * Safe value coercion for rule evaluation.
 *
 * Extracted document data is schemaless: a "total_amount" may arrive as
 * float64, int, or a string with thousands separators ("12,500.00"). Each
 * validator coerces the values it needs through these helpers and downgrades
 * ErrCoercionFailed to an error outcome instead of propagating.
 *
 * Coercion modes:
 *   - toDecimal: strict numeric - strings accepted after separator stripping
 *   - toText: lenient - every scalar renders to a string
 *   - toDate: ISO-8601 only, tried against a fixed layout list
 *
 * Null/missing is not a coercion failure; validators check presence first.
 */

// dateLayouts are tried in order when parsing document date fields.
// Extraction output uses ISO-8601 date or timestamp forms exclusively.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// toDecimal converts a field value to float64 for numeric comparison.
// Strings are trimmed and stripped of thousands separators before parsing.
// Booleans, nils, and structured values return ErrCoercionFailed.
func toDecimal(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(v), ",", "")
		if s == "" {
			return 0, types.ErrCoercionFailed
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, types.ErrCoercionFailed
		}
		return f, nil
	default:
		return 0, types.ErrCoercionFailed
	}
}

// toText renders any scalar value as a string for pattern matching.
func toText(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		if v {
			return "true"
		}
		return "false"
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// toDate parses a field value as an ISO-8601 date or timestamp.
// Non-string scalars are rendered to text first (extraction sometimes emits
// bare years as numbers). Unparseable values return ErrCoercionFailed.
func toDate(value any) (time.Time, error) {
	s := strings.TrimSpace(toText(value))
	if s == "" {
		return time.Time{}, types.ErrCoercionFailed
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, types.ErrCoercionFailed
}

// normalizeText lowers and trims a string for case/whitespace-insensitive
// cross-document comparison.
func normalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Parameter accessors. Rule parameters arrive as map[string]any from JSON;
// numeric parameters may be float64 or string depending on the author.

// paramString returns the named string parameter or def when absent.
func paramString(params map[string]any, key, def string) string {
	if v, ok := params[key]; ok {
		if s, sok := v.(string); sok {
			return s
		}
	}
	return def
}

// paramBool returns the named boolean parameter or def when absent.
func paramBool(params map[string]any, key string, def bool) bool {
	if v, ok := params[key]; ok {
		if b, bok := v.(bool); bok {
			return b
		}
	}
	return def
}

// paramDecimal returns the named numeric parameter. The second return
// reports presence; a present but non-coercible value returns an error.
func paramDecimal(params map[string]any, key string) (float64, bool, error) {
	v, ok := params[key]
	if !ok || v == nil {
		return 0, false, nil
	}
	f, err := toDecimal(v)
	if err != nil {
		return 0, true, fmt.Errorf("parameter %q: %w", key, err)
	}
	return f, true, nil
}

// paramStrings returns the named string-list parameter. Scalar entries of
// other types are rendered to text so "allowed_currencies": ["USD", 840]
// does not abort a rule.
func paramStrings(params map[string]any, key string) []string {
	v, ok := params[key]
	if !ok {
		return nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, elem := range arr {
		out = append(out, toText(elem))
	}
	return out
}
