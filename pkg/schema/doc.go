// Package schema defines the per-category attribute schemas for refs and
// assembles Schema.org JSON-LD records from a ref's flat attributes.
//
// Each listing category resolves, through the Categories registry, to a
// CategorySchema that lists its form attributes and maps attribute values
// onto Schema.org properties. BuildLinkedData layers the universal listing
// fields (name, description, offer, and so on) on top of that mapping.
//
// Everything here is immutable after package initialization and safe for
// concurrent use. No function in this package returns an error: unknown
// categories resolve to Default and absent values are omitted.
package schema
