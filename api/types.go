// Package api - Thin HTTP layer for the spot advisor.
// The API is ONLY responsible for: query parsing, engine orchestration,
// output serialization. The API NEVER performs scoring or filtering logic.
package api

import (
	"spot-advisor/core/recommend"
	"spot-advisor/core/types"
)

// ResponseMetadata accompanies every successful response
type ResponseMetadata struct {
	RequestID string `json:"request_id"`
	Region    string `json:"region"`

	// Count is the number of items in this response
	Count int `json:"count"`

	// Total is the number of matches before paging (listing only)
	Total int `json:"total,omitempty"`

	// Message explains an empty result set
	Message string `json:"message,omitempty"`

	// Warnings records degraded enrichment sources
	Warnings []string `json:"warnings,omitempty"`

	DurationMs int64 `json:"duration_ms"`
}

// ListResponse is the output of GET /v1/spot-skus
type ListResponse struct {
	Items    []types.CandidateSpec `json:"items"`
	Metadata ResponseMetadata      `json:"metadata"`
}

// RecommendationsResponse is the output of GET /v1/spot-recommendations
type RecommendationsResponse struct {
	Recommendations []recommend.ScoredCandidate `json:"recommendations"`
	Metadata        ResponseMetadata            `json:"metadata"`
}
