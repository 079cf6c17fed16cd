// Package extractors provides implementations of the PageExtractor
// interface for the document formats the ingestion pipeline accepts.
// Each extractor knows how to split one file format into pages of
// plain text.
//
// Extractors are registered with the Registry at startup; files whose
// extension no extractor claims are rejected before any content is
// touched.
package extractors
