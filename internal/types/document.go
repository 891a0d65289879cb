// internal/types/document.go
package types

/*
 * Domain types for extracted documents.
 *
 * A Document is the post-extraction view of one scanned business document.
 * ExtractedFields is deliberately schemaless: values may be strings, numbers,
 * booleans, nulls, nested objects, or arrays of objects (line items), exactly
 * as the extraction service produced them. The rule engine coerces values per
 * validator and downgrades coercion failures to error outcomes; nothing here
 * enforces a shape.
 */

// VendorInfo holds the vendor block lifted out of the extraction result.
// Address and Contact stay as loose mappings (street/city/postal_code, ...).
type VendorInfo struct {
	Name    string         `json:"name"`
	Address map[string]any `json:"address"`
	Contact map[string]any `json:"contact"`
}

// ExtractionMetadata reports how (and whether) extraction succeeded.
// Success=false with a non-empty Error excludes the document from validation.
type ExtractionMetadata struct {
	Source  string `json:"source,omitempty"`
	Pages   int    `json:"pages,omitempty"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Document is one extracted business document awaiting validation.
type Document struct {
	DocumentType    string             `json:"document_type"`
	ExtractedFields map[string]any     `json:"extracted_fields"`
	VendorInfo      VendorInfo         `json:"vendor_info"`
	Metadata        ExtractionMetadata `json:"metadata"`
}
