// Package extract defines the extraction contract feeding the validator and
// a file-based extractor for pre-extracted documents.
//
// Extraction itself (OCR, layout analysis) happens upstream; this package
// consumes its JSON output. The contract deliberately stays narrow so other
// extractors (HTTP services, queues) can slot in behind the same interface.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/solatis/doccheck/internal/types"
)

// Extractor produces a structured document from a source path.
type Extractor interface {
	Extract(ctx context.Context, path string) (types.Document, error)
}

// FileExtractor reads pre-extracted documents from JSON files. One file
// holds one document in the persisted Document shape.
type FileExtractor struct{}

// NewFileExtractor returns an extractor over local JSON files.
func NewFileExtractor() *FileExtractor {
	return &FileExtractor{}
}

// Extract reads and decodes one document file. The document's source is set
// to the path regardless of what the file carries.
func (e *FileExtractor) Extract(ctx context.Context, path string) (types.Document, error) {
	if err := ctx.Err(); err != nil {
		return types.Document{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return types.Document{}, fmt.Errorf("read document: %w", err)
	}

	var doc types.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return types.Document{}, fmt.Errorf("decode document: %w", err)
	}

	doc.Metadata.Source = path

	// Files without a metadata block count as successful extractions. A
	// metadata block present in the file is preserved as written; an
	// explicit success=false must survive so the validator skips the
	// document.
	var envelope struct {
		Metadata *types.ExtractionMetadata `json:"metadata"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Metadata == nil {
		doc.Metadata.Success = true
	}
	return doc, nil
}

// LoadBatch extracts every path into a document batch. Extraction failures
// become documents with failure metadata instead of aborting the batch; the
// validator reports them as skipped.
func LoadBatch(ctx context.Context, extractor Extractor, paths []string) ([]types.Document, error) {
	docs := make([]types.Document, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		doc, err := extractor.Extract(ctx, path)
		if err != nil {
			docs = append(docs, types.Document{
				Metadata: types.ExtractionMetadata{
					Source:  path,
					Success: false,
					Error:   err.Error(),
				},
			})
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// CollectPaths expands a mixed list of files and directories into a sorted
// list of .json document paths. Directories are scanned one level deep.
func CollectPaths(inputs []string) ([]string, error) {
	var paths []string
	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", input, err)
		}

		if !info.IsDir() {
			paths = append(paths, input)
			continue
		}

		entries, err := os.ReadDir(input)
		if err != nil {
			return nil, fmt.Errorf("read directory %s: %w", input, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
				continue
			}
			paths = append(paths, filepath.Join(input, entry.Name()))
		}
	}

	sort.Strings(paths)
	return paths, nil
}
