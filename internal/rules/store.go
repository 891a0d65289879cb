// internal/rules/store.go
package rules

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/solatis/doccheck/internal/types"
)

/*
 * File-backed rule store.
 *
 * Holds the persisted RuleSet and serializes mutation (append, clear) behind
 * a mutex; validation runs read a snapshot and never observe a partial write.
 *
 * Self-healing load: a missing or corrupt rules file degrades to an empty
 * default set with the three known document types instead of failing. Rule
 * loading must never block validation; a healed store simply applies no
 * rules until new ones are accepted.
 *
 * Append is the single acceptance gate for rules from any source (CLI,
 * authoring service): required fields, known category, severity, and
 * enforcement action are checked before the rule is persisted. Schema
 * failures wrap types.ErrSchemaViolation.
 */

// storeAuthor is recorded in healed rule-set metadata.
const storeAuthor = "doccheck"

// rulePrefixes maps a rule category to its ID prefix.
var rulePrefixes = map[string]string{
	types.DocTypeInvoice:       "INV",
	types.DocTypePurchaseOrder: "PO",
	types.DocTypeGoodsReceipt:  "GRN",
}

// Store is a file-backed compliance rule store.
type Store struct {
	path string

	mu  sync.Mutex
	set types.RuleSet
}

// Open loads the rule store at path. Missing or corrupt files heal to an
// empty default set; Open never fails.
func Open(path string) *Store {
	s := &Store{path: path}
	s.set = loadRuleSet(path)
	return s
}

// loadRuleSet reads the persisted rule set, healing to the default on any
// read or decode failure.
func loadRuleSet(path string) types.RuleSet {
	data, err := os.ReadFile(path)
	if err != nil {
		return defaultRuleSet()
	}
	var set types.RuleSet
	if err := json.Unmarshal(data, &set); err != nil {
		return defaultRuleSet()
	}
	if len(set.DocumentTypes) == 0 {
		set.DocumentTypes = knownDocumentTypes()
	}
	return set
}

func defaultRuleSet() types.RuleSet {
	return types.RuleSet{
		Version: "1.0",
		Metadata: types.RuleSetMetadata{
			LastUpdated: time.Now().Format("2006-01-02"),
			Author:      storeAuthor,
			Description: "Structured compliance rules for document validation",
		},
		DocumentTypes: knownDocumentTypes(),
		Rules:         nil,
	}
}

func knownDocumentTypes() []string {
	return []string{
		types.DocTypeInvoice,
		types.DocTypePurchaseOrder,
		types.DocTypeGoodsReceipt,
	}
}

// Rules returns a snapshot of the stored rules in insertion order.
func (s *Store) Rules() []types.Rule {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Rule, len(s.set.Rules))
	copy(out, s.set.Rules)
	return out
}

// DocumentTypes returns the known document types.
func (s *Store) DocumentTypes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.set.DocumentTypes))
	copy(out, s.set.DocumentTypes)
	return out
}

// ApplicableRules returns the rules applying to docType, in store order.
func (s *Store) ApplicableRules(docType string) []types.Rule {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []types.Rule
	for _, r := range s.set.Rules {
		if r.AppliesTo(docType) {
			out = append(out, r)
		}
	}
	return out
}

// Append validates the rule against the schema, assigns a rule ID when the
// proposal carries none, and persists the updated set. Schema failures wrap
// types.ErrSchemaViolation and leave the store unchanged.
func (s *Store) Append(rule types.Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rule.RuleID == "" {
		rule.RuleID = s.nextRuleIDLocked(rule.Category)
	}
	if err := s.validateRuleLocked(rule); err != nil {
		return err
	}

	s.set.Rules = append(s.set.Rules, rule)
	s.set.Metadata.LastUpdated = time.Now().Format("2006-01-02")
	if err := s.persistLocked(); err != nil {
		s.set.Rules = s.set.Rules[:len(s.set.Rules)-1]
		return fmt.Errorf("persist rules: %w", err)
	}
	return nil
}

// Clear replaces the rule sequence with an empty one and persists.
// Idempotent.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.set.Rules = nil
	s.set.Metadata.LastUpdated = time.Now().Format("2006-01-02")
	if err := s.persistLocked(); err != nil {
		return fmt.Errorf("persist rules: %w", err)
	}
	return nil
}

// NextRuleID returns the next unused rule ID for the category's prefix
// (INV, PO, GRN, or GEN), zero-padded to three digits. Sequencing is
// max-based over existing IDs; malformed IDs are ignored.
func (s *Store) NextRuleID(category string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextRuleIDLocked(category)
}

func (s *Store) nextRuleIDLocked(category string) string {
	prefix, ok := rulePrefixes[category]
	if !ok {
		prefix = "GEN"
	}

	maxNum := 0
	for _, r := range s.set.Rules {
		if !strings.HasPrefix(r.RuleID, prefix+"-") {
			continue
		}
		suffix := r.RuleID[strings.Index(r.RuleID, "-")+1:]
		n, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		if n > maxNum {
			maxNum = n
		}
	}

	id := fmt.Sprintf("%s-%03d", prefix, maxNum+1)
	if s.ruleIDExistsLocked(id) {
		// Time-seeded fallback keeps rule creation alive if the store holds
		// IDs the scan could not order.
		return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
	}
	return id
}

func (s *Store) ruleIDExistsLocked(id string) bool {
	for _, r := range s.set.Rules {
		if r.RuleID == id {
			return true
		}
	}
	return false
}

// validateRuleLocked enforces the rule schema at the acceptance boundary.
func (s *Store) validateRuleLocked(rule types.Rule) error {
	switch {
	case rule.RuleID == "":
		return fmt.Errorf("%w: missing rule_id", types.ErrSchemaViolation)
	case rule.Name == "":
		return fmt.Errorf("%w: missing name", types.ErrSchemaViolation)
	case rule.Description == "":
		return fmt.Errorf("%w: missing description", types.ErrSchemaViolation)
	case rule.Category == "":
		return fmt.Errorf("%w: missing category", types.ErrSchemaViolation)
	case rule.Validation.Type == "":
		return fmt.Errorf("%w: missing validation.type", types.ErrSchemaViolation)
	case len(rule.ApplicableDocuments) == 0:
		return fmt.Errorf("%w: applicable_documents is empty", types.ErrSchemaViolation)
	}

	if rule.Category != types.CategoryGeneral && !contains(s.set.DocumentTypes, rule.Category) {
		return fmt.Errorf("%w: category %q: %s", types.ErrSchemaViolation, rule.Category, types.ErrUnknownDocumentType)
	}

	switch rule.Severity {
	case types.SeverityHigh, types.SeverityMedium, types.SeverityLow:
	default:
		return fmt.Errorf("%w: invalid severity %q", types.ErrSchemaViolation, rule.Severity)
	}

	if !contains(types.EnforcementActions, rule.Enforcement.Action) {
		return fmt.Errorf("%w: invalid enforcement action %q", types.ErrSchemaViolation, rule.Enforcement.Action)
	}

	if s.ruleIDExistsLocked(rule.RuleID) {
		return fmt.Errorf("%w: duplicate rule_id %q", types.ErrSchemaViolation, rule.RuleID)
	}

	return nil
}

// persistLocked writes the rule set atomically (temp file + rename) so a
// crash mid-write cannot corrupt the store the next load would heal away.
func (s *Store) persistLocked() error {
	data, err := json.MarshalIndent(s.set, "", "    ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".rules-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, s.path)
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
