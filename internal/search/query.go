package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/promptkeepapp/promptkeep-server/internal/errors"
)

// Query limits.
const (
	DefaultLimit   = 20
	MaxLimit       = 100
	MaxQueryLength = 500

	// snippetLength caps the fallback snippet taken from the stored
	// body when no highlight fragment is available.
	snippetLength = 200
)

// Params configures a search query.
type Params struct {
	Query string // User's search query

	// CategoryPath restricts hits to one exact category (no subtree
	// expansion). Empty means all categories.
	CategoryPath string

	// Pagination
	Limit  int
	Offset int
}

// Result represents the search results.
type Result struct {
	Query  string `json:"query"`
	Total  uint64 `json:"total"`
	TookMs int64  `json:"took_ms"`
	Hits   []Hit  `json:"hits"`
}

// Hit represents a single search result.
type Hit struct {
	VersionUUID string  `json:"version_uuid"`
	PromptUUID  string  `json:"prompt_uuid"`
	Title       string  `json:"title"`
	Semver      string  `json:"semver"`
	Score       float64 `json:"score"`
	Snippet     string  `json:"snippet,omitempty"`
}

// Search executes a search query.
//
// An empty (or all-whitespace) query returns an empty result rather
// than matching everything; a query over MaxQueryLength is rejected.
func (s *Index) Search(ctx context.Context, params Params) (*Result, error) {
	if len(params.Query) > MaxQueryLength {
		return nil, errors.InvalidInputf("search query exceeds %d characters", MaxQueryLength)
	}

	q := strings.TrimSpace(params.Query)
	if q == "" {
		return &Result{Query: params.Query, Hits: []Hit{}}, nil
	}

	limit := params.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	searchQuery := buildSearchQuery(q, params.CategoryPath)

	searchRequest := bleve.NewSearchRequestOptions(searchQuery, limit, offset, false)
	searchRequest.SortBy([]string{"-_score"})

	// Highlighting for body snippets (and matched titles)
	searchRequest.Highlight = bleve.NewHighlight()
	searchRequest.Highlight.AddField("body")
	searchRequest.Highlight.AddField("title")

	// Request stored fields
	searchRequest.Fields = []string{"prompt_uuid", "title", "semver", "body", "category"}

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &Result{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		searchHit := Hit{
			VersionUUID: hit.ID,
			Score:       hit.Score,
		}

		if p, ok := hit.Fields["prompt_uuid"].(string); ok {
			searchHit.PromptUUID = p
		}
		if t, ok := hit.Fields["title"].(string); ok {
			searchHit.Title = t
		}
		if sv, ok := hit.Fields["semver"].(string); ok {
			searchHit.Semver = sv
		}

		// Prefer a highlighted body fragment; fall back to the start
		// of the stored body.
		if fragments, ok := hit.Fragments["body"]; ok && len(fragments) > 0 {
			searchHit.Snippet = fragments[0]
		} else if body, ok := hit.Fields["body"].(string); ok {
			searchHit.Snippet = truncateSnippet(body)
		}

		result.Hits = append(result.Hits, searchHit)
	}

	return result, nil
}

// buildSearchQuery constructs the Bleve query for a non-empty term.
//
// Search strategy: match queries on title (boost 3.0), tags (2.0),
// and body (1.0), plus a title prefix query for partial words and a
// fuzzy title query for typo tolerance, combined with OR. A category
// filter, when present, is ANDed on as an exact term.
func buildSearchQuery(term, categoryPath string) query.Query {
	textQueries := []query.Query{}

	titleMatch := bleve.NewMatchQuery(term)
	titleMatch.SetField("title")
	titleMatch.SetBoost(3.0)
	textQueries = append(textQueries, titleMatch)

	tagsMatch := bleve.NewMatchQuery(term)
	tagsMatch.SetField("tags")
	tagsMatch.SetBoost(2.0)
	textQueries = append(textQueries, tagsMatch)

	bodyMatch := bleve.NewMatchQuery(term)
	bodyMatch.SetField("body")
	textQueries = append(textQueries, bodyMatch)

	// Fuzzy matching for typo tolerance on title
	fuzzyQuery := bleve.NewFuzzyQuery(term)
	fuzzyQuery.SetFuzziness(1)
	fuzzyQuery.SetField("title")
	fuzzyQuery.SetBoost(0.8)
	textQueries = append(textQueries, fuzzyQuery)

	// Prefix query for partial words (minimum 2 chars)
	if len(term) >= 2 {
		prefixQuery := bleve.NewPrefixQuery(strings.ToLower(term))
		prefixQuery.SetField("title")
		prefixQuery.SetBoost(0.5)
		textQueries = append(textQueries, prefixQuery)
	}

	text := bleve.NewDisjunctionQuery(textQueries...)

	if categoryPath == "" {
		return text
	}

	categoryFilter := bleve.NewTermQuery(categoryPath)
	categoryFilter.SetField("category")
	return bleve.NewConjunctionQuery(text, categoryFilter)
}

// truncateSnippet cuts the body down to snippet size on a rune
// boundary.
func truncateSnippet(body string) string {
	runes := []rune(body)
	if len(runes) <= snippetLength {
		return body
	}
	return string(runes[:snippetLength])
}
