// Package similarity implements the three embedding searches: past cases, known
// fraud patterns and similar customer profiles.
package similarity

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/Cyclone1070/fraudinv/internal/datastore"
	"github.com/Cyclone1070/fraudinv/internal/tool"
	"github.com/Cyclone1070/fraudinv/internal/vectorindex"
)

const (
	casePreviewChars    = 200
	patternPreviewChars = 300
	profilePreviewChars = 200
	unknown             = "Unknown"
)

// base holds what every similarity tool shares.
type base struct {
	index      searcher
	collection string
	maxResults int
}

func newBase(ctx context.Context, index searcher, collection string, maxResults int) (base, error) {
	if index == nil {
		return base{}, &datastore.DataSourceUnavailableError{Source: "vector index", Cause: errors.New("index not configured")}
	}
	n, err := index.Count(ctx, collection)
	if err != nil {
		return base{}, &datastore.DataSourceUnavailableError{Source: "collection " + collection, Cause: err}
	}
	if n == 0 {
		return base{}, &datastore.DataSourceUnavailableError{Source: "collection " + collection, Cause: errors.New("collection is empty")}
	}
	return base{index: index, collection: collection, maxResults: maxResults}, nil
}

func (b base) search(ctx context.Context, text string, n int, category string) ([]vectorindex.Match, error) {
	if b.maxResults > 0 && n > b.maxResults {
		n = b.maxResults
	}
	matches, err := b.index.Query(ctx, b.collection, text, n, category)
	if err != nil {
		return nil, &SearchError{Collection: b.collection, Cause: err}
	}
	return matches, nil
}

// SimilarCasesTool finds past investigations resembling a description.
type SimilarCasesTool struct {
	base
}

func NewSimilarCasesTool(ctx context.Context, index searcher, maxResults int) (*SimilarCasesTool, error) {
	b, err := newBase(ctx, index, vectorindex.CollectionCases, maxResults)
	if err != nil {
		return nil, err
	}
	return &SimilarCasesTool{base: b}, nil
}

func (t *SimilarCasesTool) Run(ctx context.Context, req *SimilarCasesRequest) (*SimilarCasesResponse, error) {
	matches, err := t.search(ctx, req.Description, req.NResults, req.FraudTypeFilter)
	if err != nil {
		return nil, err
	}
	cases := make([]SimilarCase, 0, len(matches))
	for i, m := range matches {
		cases = append(cases, SimilarCase{
			Rank:            i + 1,
			CaseID:          metaString(m.Metadata, "case_id", m.ID),
			FraudType:       metaString(m.Metadata, "fraud_type", orUnknown(m.Category)),
			Status:          metaString(m.Metadata, "status", unknown),
			SimilarityScore: round3(m.Score),
			Summary:         tool.Preview(m.Content, casePreviewChars),
		})
	}
	return &SimilarCasesResponse{
		Query:        req.Description,
		NumResults:   len(cases),
		SimilarCases: cases,
	}, nil
}

// FraudPatternsTool matches indicators against the known pattern library.
type FraudPatternsTool struct {
	base
}

func NewFraudPatternsTool(ctx context.Context, index searcher, maxResults int) (*FraudPatternsTool, error) {
	b, err := newBase(ctx, index, vectorindex.CollectionPatterns, maxResults)
	if err != nil {
		return nil, err
	}
	return &FraudPatternsTool{base: b}, nil
}

func (t *FraudPatternsTool) Run(ctx context.Context, req *FraudPatternsRequest) (*FraudPatternsResponse, error) {
	matches, err := t.search(ctx, req.Indicators, req.NResults, req.RiskLevelFilter)
	if err != nil {
		return nil, err
	}
	patterns := make([]FraudPattern, 0, len(matches))
	for i, m := range matches {
		patterns = append(patterns, FraudPattern{
			Rank:        i + 1,
			PatternName: metaString(m.Metadata, "name", m.ID),
			RiskLevel:   metaString(m.Metadata, "risk_level", orUnknown(m.Category)),
			MatchScore:  round3(m.Score),
			Description: tool.Preview(m.Content, patternPreviewChars),
		})
	}
	return &FraudPatternsResponse{
		Query:            req.Indicators,
		NumPatterns:      len(patterns),
		MatchingPatterns: patterns,
	}, nil
}

// SimilarProfilesTool finds customers whose KYC summary resembles a description.
type SimilarProfilesTool struct {
	base
}

func NewSimilarProfilesTool(ctx context.Context, index searcher, maxResults int) (*SimilarProfilesTool, error) {
	b, err := newBase(ctx, index, vectorindex.CollectionProfiles, maxResults)
	if err != nil {
		return nil, err
	}
	return &SimilarProfilesTool{base: b}, nil
}

func (t *SimilarProfilesTool) Run(ctx context.Context, req *SimilarProfilesRequest) (*SimilarProfilesResponse, error) {
	matches, err := t.search(ctx, req.Description, req.NResults, req.RiskLevelFilter)
	if err != nil {
		return nil, err
	}
	profiles := make([]SimilarProfile, 0, len(matches))
	for i, m := range matches {
		profiles = append(profiles, SimilarProfile{
			Rank:            i + 1,
			UserID:          metaString(m.Metadata, "user_id", m.ID),
			RiskScore:       metaInt(m.Metadata, "risk_score"),
			RiskLevel:       metaString(m.Metadata, "risk_level", orUnknown(m.Category)),
			Country:         metaString(m.Metadata, "country", unknown),
			SimilarityScore: round3(m.Score),
			ProfileSummary:  tool.Preview(m.Content, profilePreviewChars),
		})
	}
	return &SimilarProfilesResponse{
		Query:           req.Description,
		NumResults:      len(profiles),
		SimilarProfiles: profiles,
	}, nil
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func orUnknown(s string) string {
	if s == "" {
		return unknown
	}
	return s
}

func metaString(meta map[string]any, key, fallback string) string {
	v, ok := meta[key]
	if !ok || v == nil {
		return fallback
	}
	if s, ok := v.(string); ok {
		if s == "" {
			return fallback
		}
		return s
	}
	return fmt.Sprint(v)
}

func metaInt(meta map[string]any, key string) int {
	switch v := meta[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return int(n)
	default:
		return 0
	}
}
