// Package types provides shared type definitions for the nihonto-search service.
//
// This package defines the domain types used across the search pipeline:
// listings, dealers, facet counts, and the wire-level search response.
//
// A Listing is a dealer's item for sale, aggregated by an external ingestion
// process. Listings are never deleted; availability moves through a soft
// lifecycle (available -> sold / presumed_sold / withdrawn). A listing either
// carries a numeric price normalized to JPY or is an "ask" item (price on
// request), never both.
package types
