package runner

import "github.com/Cyclone1070/fraudinv/internal/investigation"

// UnknownRecommendation buckets records that ended without a verdict.
const UnknownRecommendation = "UNKNOWN"

// Summary is reporting-only batch statistics.
type Summary struct {
	Total            int                          `json:"total"`
	ByRecommendation map[string]int               `json:"by_recommendation"`
	ByStatus         map[investigation.Status]int `json:"by_status"`
	Ambiguous        int                          `json:"ambiguous"`

	// MeanConfidence covers records that produced a verdict; MeanToolCalls covers all.
	MeanConfidence float64 `json:"mean_confidence"`
	MeanToolCalls  float64 `json:"mean_tool_calls"`
}

func Summarize(records []*investigation.Record) Summary {
	s := Summary{
		ByRecommendation: map[string]int{},
		ByStatus:         map[investigation.Status]int{},
	}
	var confSum float64
	var confN, toolSum int
	for _, rec := range records {
		if rec == nil {
			continue
		}
		s.Total++
		s.ByStatus[rec.Status]++
		toolSum += rec.TotalToolCalls
		if rec.Ambiguous {
			s.Ambiguous++
		}
		if rec.Recommendation == "" {
			s.ByRecommendation[UnknownRecommendation]++
			continue
		}
		s.ByRecommendation[string(rec.Recommendation)]++
		confSum += rec.ConfidenceScore
		confN++
	}
	if confN > 0 {
		s.MeanConfidence = confSum / float64(confN)
	}
	if s.Total > 0 {
		s.MeanToolCalls = float64(toolSum) / float64(s.Total)
	}
	return s
}
