package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/solatis/doccheck/internal/rules"
	"github.com/solatis/doccheck/internal/types"
)

/*
 * Document archive.
 *
 * Persists extracted documents, discovered relationships between them, and
 * completed validation runs. Document payloads (extracted fields, vendor
 * info) are stored as JSON so the archive stays schemaless like the
 * documents themselves; only identity, type, and provenance are columns.
 *
 * Timestamps are stored as RFC3339 strings on SQLite and native timestamps
 * on PostgreSQL; both scan back through the same row types.
 */

// Archive stores documents, relationships, and validation runs.
type Archive struct {
	q  *Queries
	db *sqlx.DB

	now func() time.Time
}

// Relationship is a stored link between two archived documents.
type Relationship struct {
	Doc1ID     types.DocumentID `db:"doc1_id" json:"doc1_id"`
	Doc2ID     types.DocumentID `db:"doc2_id" json:"doc2_id"`
	Type       string           `db:"relationship_type" json:"relationship_type"`
	Confidence float64          `db:"confidence" json:"confidence"`
}

// documentRow is the scan target for document queries.
type documentRow struct {
	DocumentID        string `db:"document_id"`
	DocumentType      string `db:"document_type"`
	Source            string `db:"source"`
	ExtractedFields   []byte `db:"extracted_fields"`
	VendorInfo        []byte `db:"vendor_info"`
	ExtractionSuccess bool   `db:"extraction_success"`
	ExtractionError   string `db:"extraction_error"`
	CreatedAt         string `db:"created_at"`
}

// runRow is the scan target for validation run queries.
type runRow struct {
	RunID  string `db:"run_id"`
	Result []byte `db:"result"`
}

// NewArchive wraps an open database connection as a document archive.
func NewArchive(conn *sqlx.DB) (*Archive, error) {
	q, err := LoadQueries(conn)
	if err != nil {
		return nil, err
	}
	return &Archive{q: q, db: conn, now: time.Now}, nil
}

// SaveDocument stores an extracted document and returns its archive ID.
func (a *Archive) SaveDocument(doc types.Document) (types.DocumentID, error) {
	extracted, err := json.Marshal(orEmpty(doc.ExtractedFields))
	if err != nil {
		return "", fmt.Errorf("marshal extracted fields: %w", err)
	}
	vendor, err := json.Marshal(doc.VendorInfo)
	if err != nil {
		return "", fmt.Errorf("marshal vendor info: %w", err)
	}

	id := types.NewDocumentID()
	_, err = a.q.Exec("insert-document",
		string(id), doc.DocumentType, doc.Metadata.Source, extracted, vendor,
		doc.Metadata.Success, doc.Metadata.Error, a.timestamp(),
	)
	if err != nil {
		return "", fmt.Errorf("insert document: %w", err)
	}
	return id, nil
}

// Document loads an archived document by ID. A missing row returns
// types.ErrDocumentNotFound.
func (a *Archive) Document(id types.DocumentID) (types.Document, error) {
	var row documentRow
	if err := a.q.Get("get-document", &row, string(id)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Document{}, fmt.Errorf("document %s: %w", id, types.ErrDocumentNotFound)
		}
		return types.Document{}, fmt.Errorf("get document: %w", err)
	}
	return row.document()
}

// DocumentsByType loads every archived document of the given type in
// insertion order.
func (a *Archive) DocumentsByType(docType string) ([]types.Document, error) {
	var rows []documentRow
	if err := a.q.Select("list-documents-by-type", &rows, docType); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	docs := make([]types.Document, 0, len(rows))
	for _, row := range rows {
		doc, err := row.document()
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// SaveRelationship records a discovered link between two archived documents.
func (a *Archive) SaveRelationship(doc1, doc2 types.DocumentID, relType string, confidence float64) error {
	_, err := a.q.Exec("insert-relationship",
		string(doc1), string(doc2), relType, confidence, a.timestamp(),
	)
	if err != nil {
		return fmt.Errorf("insert relationship: %w", err)
	}
	return nil
}

// Relationships returns every stored relationship involving the document.
func (a *Archive) Relationships(id types.DocumentID) ([]Relationship, error) {
	var rels []Relationship
	if err := a.q.Select("list-relationships", &rels, string(id), string(id)); err != nil {
		return nil, fmt.Errorf("list relationships: %w", err)
	}
	return rels, nil
}

// SaveRun persists a completed validation run and returns its run ID.
func (a *Archive) SaveRun(result rules.BatchResult) (string, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("marshal run result: %w", err)
	}

	runID := string(types.NewDocumentID())
	_, err = a.q.Exec("insert-run",
		runID, result.GeneratedAt.UTC().Format(time.RFC3339),
		result.TotalDocuments, result.Summary.TotalRulesEvaluated,
		result.Summary.Passed, result.Summary.Failed, result.Summary.Errors,
		result.Summary.HighSeverityFailures, payload,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return runID, nil
}

// Run loads a stored validation run by ID.
func (a *Archive) Run(runID string) (rules.BatchResult, error) {
	var row runRow
	if err := a.q.Get("get-run", &row, runID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rules.BatchResult{}, fmt.Errorf("run %s: %w", runID, types.ErrDocumentNotFound)
		}
		return rules.BatchResult{}, fmt.Errorf("get run: %w", err)
	}

	var result rules.BatchResult
	if err := json.Unmarshal(row.Result, &result); err != nil {
		return rules.BatchResult{}, fmt.Errorf("unmarshal run result: %w", err)
	}
	return result, nil
}

func (a *Archive) timestamp() string {
	return a.now().UTC().Format(time.RFC3339)
}

func (r documentRow) document() (types.Document, error) {
	var extracted map[string]any
	if err := json.Unmarshal(r.ExtractedFields, &extracted); err != nil {
		return types.Document{}, fmt.Errorf("unmarshal extracted fields: %w", err)
	}
	var vendor types.VendorInfo
	if err := json.Unmarshal(r.VendorInfo, &vendor); err != nil {
		return types.Document{}, fmt.Errorf("unmarshal vendor info: %w", err)
	}

	return types.Document{
		DocumentType:    r.DocumentType,
		ExtractedFields: extracted,
		VendorInfo:      vendor,
		Metadata: types.ExtractionMetadata{
			Source:  r.Source,
			Success: r.ExtractionSuccess,
			Error:   r.ExtractionError,
		},
	}, nil
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
