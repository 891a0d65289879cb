// internal/rules/resolve.go
package rules

import (
	"github.com/solatis/doccheck/internal/types"
)

/*
 * Field resolution for extracted documents.
 *
 * Produces the flat validator-facing view of a document: every extracted
 * field under its own name plus synthetic vendor_name / vendor_address /
 * vendor_contact keys lifted out of the vendor block. No type coercion
 * happens here; validators coerce what they read.
 *
 * Absent vendor parts resolve to nil (name) or an empty mapping (address,
 * contact) so presence checks behave the same as for any missing field.
 */

// Synthetic keys injected into every resolved document.
const (
	FieldVendorName    = "vendor_name"
	FieldVendorAddress = "vendor_address"
	FieldVendorContact = "vendor_contact"
)

// ResolveFields flattens a document into the mapping consumed by validators.
func ResolveFields(doc types.Document) map[string]any {
	fields := make(map[string]any, len(doc.ExtractedFields)+3)
	for k, v := range doc.ExtractedFields {
		fields[k] = v
	}

	if doc.VendorInfo.Name != "" {
		fields[FieldVendorName] = doc.VendorInfo.Name
	} else {
		fields[FieldVendorName] = nil
	}

	fields[FieldVendorAddress] = orEmptyMapping(doc.VendorInfo.Address)
	fields[FieldVendorContact] = orEmptyMapping(doc.VendorInfo.Contact)

	return fields
}

func orEmptyMapping(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
