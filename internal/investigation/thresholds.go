package investigation

import "github.com/Cyclone1070/fraudinv/internal/config"

// Thresholds are the minimum confidence for each recommendation band.
type Thresholds struct {
	Escalate float64
	Verify   float64
	Monitor  float64
	Dismiss  float64
}

func ThresholdsFromConfig(c config.Thresholds) Thresholds {
	return Thresholds{Escalate: c.Escalate, Verify: c.Verify, Monitor: c.Monitor, Dismiss: c.Dismiss}
}

// Recommend maps a confidence score to its band. Scores below every band are DISMISS.
func (t Thresholds) Recommend(score float64) Recommendation {
	switch {
	case score >= t.Escalate:
		return Escalate
	case score >= t.Verify:
		return Verify
	case score >= t.Monitor:
		return Monitor
	default:
		return Dismiss
	}
}
