// Package group discovers relationships between documents through fuzzy
// identifier matching.
//
// Each document contributes a small set of identifiers (document ID, party
// names, typed dates). Two documents sharing a similar identifier of the
// same type are related; the Jaro-Winkler score of the normalized
// identifiers becomes the relationship confidence.
package group

import (
	"fmt"
	"strings"

	"github.com/xrash/smetrics"
)

// Jaro-Winkler parameters: standard 0.7 boost threshold and 4-char
// prefix cap.
const (
	jaroBoostThreshold = 0.7
	jaroPrefixSize     = 4
)

// Record is one document presented for grouping: an opaque ID plus the
// structured data identifiers are mined from.
type Record struct {
	ID   string
	Data map[string]any
}

// Relationship links two records sharing a similar identifier. Type names
// the identifier that matched (document_id, sender_name, date_invoice, ...).
type Relationship struct {
	Doc1ID     string  `json:"doc1_id"`
	Doc2ID     string  `json:"doc2_id"`
	Type       string  `json:"relationship_type"`
	Confidence float64 `json:"confidence"`
}

// Grouper relates documents whose identifiers score at or above the
// similarity threshold.
type Grouper struct {
	threshold float64
}

// NewGrouper returns a grouper with the given similarity threshold (0-1).
func NewGrouper(threshold float64) *Grouper {
	return &Grouper{threshold: threshold}
}

// Relate compares every record pair and returns the discovered
// relationships. Pairs are compared once; output order follows input order.
func (g *Grouper) Relate(records []Record) []Relationship {
	identifiers := make([]map[string]string, len(records))
	for i, rec := range records {
		identifiers[i] = extractIdentifiers(rec.Data)
	}

	var rels []Relationship
	for i := range records {
		for j := i + 1; j < len(records); j++ {
			for idType, v1 := range identifiers[i] {
				v2, shared := identifiers[j][idType]
				if !shared {
					continue
				}
				score, similar := g.similarity(v1, v2)
				if !similar {
					continue
				}
				rels = append(rels, Relationship{
					Doc1ID:     records[i].ID,
					Doc2ID:     records[j].ID,
					Type:       idType,
					Confidence: score,
				})
			}
		}
	}
	return rels
}

// For filters relationships down to those involving the given record ID.
func For(rels []Relationship, id string) []Relationship {
	var out []Relationship
	for _, rel := range rels {
		if rel.Doc1ID == id || rel.Doc2ID == id {
			out = append(out, rel)
		}
	}
	return out
}

// similarity scores two identifiers after normalization. Empty normalized
// identifiers never match anything.
func (g *Grouper) similarity(id1, id2 string) (float64, bool) {
	n1 := normalizeIdentifier(id1)
	n2 := normalizeIdentifier(id2)
	if n1 == "" || n2 == "" {
		return 0, false
	}

	score := smetrics.JaroWinkler(n1, n2, jaroBoostThreshold, jaroPrefixSize)
	return score, score >= g.threshold
}

// extractIdentifiers mines the groupable identifiers out of structured
// document data: a document_id, party names, and typed dates.
func extractIdentifiers(data map[string]any) map[string]string {
	ids := make(map[string]string)

	if v, ok := data["document_id"]; ok && v != nil {
		if s := asString(v); s != "" {
			ids["document_id"] = s
		}
	}

	if parties, ok := data["parties"].(map[string]any); ok {
		if name := partyName(parties, "sender"); name != "" {
			ids["sender_name"] = name
		}
		if name := partyName(parties, "recipient"); name != "" {
			ids["recipient_name"] = name
		}
	}

	if dates, ok := data["dates"].(map[string]any); ok {
		for dateType, v := range dates {
			if v == nil {
				continue
			}
			if s := asString(v); s != "" {
				ids["date_"+dateType] = s
			}
		}
	}

	return ids
}

func partyName(parties map[string]any, role string) string {
	party, ok := parties[role].(map[string]any)
	if !ok {
		return ""
	}
	return asString(party["name"])
}

// normalizeIdentifier lowercases and strips everything outside [a-z0-9].
func normalizeIdentifier(id string) string {
	var b strings.Builder
	for _, c := range strings.ToLower(id) {
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			b.WriteRune(c)
		}
	}
	return b.String()
}

func asString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
