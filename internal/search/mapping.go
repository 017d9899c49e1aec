package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve mapping for version documents.
//
// The mapping is designed with these priorities:
//  1. Fast full-text search on title and body with English stemming
//  2. Exact keyword matching on tags, semver, and category for filters
//  3. Term vectors on title and body for highlighted snippets
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()

	// Use English analyzer as default for text fields
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	// --- Text fields (full-text searchable) ---

	// Title - primary search target, boosted at query time
	titleFieldMapping := bleve.NewTextFieldMapping()
	titleFieldMapping.Analyzer = en.AnalyzerName
	titleFieldMapping.Store = true
	titleFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("title", titleFieldMapping)

	// Body - stored so result snippets can fall back to the raw text
	// when no highlight fragment is available
	bodyFieldMapping := bleve.NewTextFieldMapping()
	bodyFieldMapping.Analyzer = en.AnalyzerName
	bodyFieldMapping.Store = true
	bodyFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("body", bodyFieldMapping)

	// --- Keyword fields (exact match) ---

	// Prompt UUID - stored so hits can link back to their prompt
	promptUUIDFieldMapping := bleve.NewTextFieldMapping()
	promptUUIDFieldMapping.Analyzer = keyword.Name
	promptUUIDFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("prompt_uuid", promptUUIDFieldMapping)

	// Tags - keyword analyzer keeps compound tags intact (e.g., "few-shot")
	tagsFieldMapping := bleve.NewTextFieldMapping()
	tagsFieldMapping.Analyzer = keyword.Name
	tagsFieldMapping.Store = true
	tagsFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("tags", tagsFieldMapping)

	// Semver - exact match and display only
	semverFieldMapping := bleve.NewTextFieldMapping()
	semverFieldMapping.Analyzer = keyword.Name
	semverFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("semver", semverFieldMapping)

	// Category path - for exact category filtering
	categoryFieldMapping := bleve.NewTextFieldMapping()
	categoryFieldMapping.Analyzer = keyword.Name
	categoryFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("category", categoryFieldMapping)

	// --- Numeric fields ---

	// Version creation time - for sorting by recency
	createdAtFieldMapping := bleve.NewNumericFieldMapping()
	createdAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("created_at", createdAtFieldMapping)

	// Register the document mapping
	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
