// Package models defines the core domain records for xplit-pay.
//
// # Parsed records
//
//   - Document: one fully parsed xplit file
//   - Entry: a single expense event with its per-person splits
//   - ExtraPayment: a direct peer settlement outside the entry mechanism
//   - Currency: a currency-table row with its rate to the main currency
//
// All monetary amounts on parsed records are normalized to the document's
// main currency at parse time; the original foreign-currency figures are not
// retained (the raw source text is, see Document.OriginalContent).
//
// # API records
//
//   - User: a registered account in the upload API
//
// # Design principles
//
//  1. Parsed records are plain data: no behavior, no lifecycle beyond the
//     document scope, immutable after the parser returns them.
//  2. Relationships use resolved display names rather than abbreviations, so
//     consumers never need the abbreviation maps to interpret a record.
//  3. Storage identifiers (ID, OwnerID, CreatedAt) live on Document but stay
//     zero-valued until a store persists it.
package models
