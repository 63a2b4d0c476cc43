package similarity

import "fmt"

// -- Contract Types --

// SimilarCasesRequest is the input of query_similar_cases.
type SimilarCasesRequest struct {
	Description     string `json:"description"`
	NResults        int    `json:"n_results"`
	FraudTypeFilter string `json:"fraud_type_filter,omitempty"`
}

func (r *SimilarCasesRequest) Validate() error {
	return validateCount(r.NResults)
}

// SimilarCase is one ranked past investigation.
type SimilarCase struct {
	Rank            int     `json:"rank"`
	CaseID          string  `json:"case_id"`
	FraudType       string  `json:"fraud_type"`
	Status          string  `json:"status"`
	SimilarityScore float64 `json:"similarity_score"`
	Summary         string  `json:"summary"`
}

type SimilarCasesResponse struct {
	Query        string        `json:"query"`
	NumResults   int           `json:"num_results"`
	SimilarCases []SimilarCase `json:"similar_cases"`
}

// FraudPatternsRequest is the input of search_fraud_patterns.
type FraudPatternsRequest struct {
	Indicators      string `json:"indicators"`
	NResults        int    `json:"n_results"`
	RiskLevelFilter string `json:"risk_level_filter,omitempty"`
}

func (r *FraudPatternsRequest) Validate() error {
	return validateCount(r.NResults)
}

// FraudPattern is one ranked known fraud scheme.
type FraudPattern struct {
	Rank        int     `json:"rank"`
	PatternName string  `json:"pattern_name"`
	RiskLevel   string  `json:"risk_level"`
	MatchScore  float64 `json:"match_score"`
	Description string  `json:"description"`
}

type FraudPatternsResponse struct {
	Query            string         `json:"query"`
	NumPatterns      int            `json:"num_patterns"`
	MatchingPatterns []FraudPattern `json:"matching_patterns"`
}

// SimilarProfilesRequest is the input of search_similar_kyc_profiles.
type SimilarProfilesRequest struct {
	Description     string `json:"description"`
	NResults        int    `json:"n_results"`
	RiskLevelFilter string `json:"risk_level_filter,omitempty"`
}

func (r *SimilarProfilesRequest) Validate() error {
	return validateCount(r.NResults)
}

// SimilarProfile is one ranked customer profile.
type SimilarProfile struct {
	Rank            int     `json:"rank"`
	UserID          string  `json:"user_id"`
	RiskScore       int     `json:"risk_score"`
	RiskLevel       string  `json:"risk_level"`
	Country         string  `json:"country"`
	SimilarityScore float64 `json:"similarity_score"`
	ProfileSummary  string  `json:"profile_summary"`
}

type SimilarProfilesResponse struct {
	Query           string           `json:"query"`
	NumResults      int              `json:"num_results"`
	SimilarProfiles []SimilarProfile `json:"similar_profiles"`
}

func validateCount(n int) error {
	if n < 1 {
		return fmt.Errorf("n_results must be at least 1, got %d", n)
	}
	return nil
}
