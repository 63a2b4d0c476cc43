// Package investigation holds the domain records of a fraud investigation: the alert that
// starts one, the record it produces, and the prompts that frame the conversation.
package investigation

import (
	"encoding/json"
	"strings"
	"time"
)

// Recommendation is the analyst action proposed by an investigation.
type Recommendation string

const (
	Escalate Recommendation = "ESCALATE"
	Verify   Recommendation = "VERIFY"
	Monitor  Recommendation = "MONITOR"
	Dismiss  Recommendation = "DISMISS"
)

// Recommendations lists every value in keyword scan priority order.
var Recommendations = []Recommendation{Escalate, Verify, Monitor, Dismiss}

// ParseRecommendation accepts any letter case.
func ParseRecommendation(s string) (Recommendation, bool) {
	r := Recommendation(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Recommendations {
		if r == known {
			return r, true
		}
	}
	return "", false
}

// Status is the terminal state of an investigation.
type Status string

const (
	StatusComplete   Status = "complete"
	StatusIncomplete Status = "incomplete"
	StatusError      Status = "error"
)

// Alert is the external trigger for one investigation.
type Alert struct {
	TransactionID string  `json:"transaction_id" yaml:"transaction_id"`
	Description   string  `json:"alert_description" yaml:"alert_description"`
	RiskScore     float64 `json:"initial_risk_score" yaml:"initial_risk_score"`
	MaxTurns      int     `json:"max_turns,omitempty" yaml:"max_turns,omitempty"`
}

// LogEntry is one tool call in the investigation log.
type LogEntry struct {
	Turn       int             `json:"turn"`
	Tool       string          `json:"tool"`
	CallID     string          `json:"call_id"`
	Input      map[string]any  `json:"input"`
	Result     json.RawMessage `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
	DurationMs int64           `json:"duration_ms"`
}

// Record is the terminal artifact of one investigation. Every terminal state produces one.
type Record struct {
	CaseID            string         `json:"case_id"`
	InvestigationID   string         `json:"investigation_id"`
	InvestigationDate time.Time      `json:"investigation_date"`
	Recommendation    Recommendation `json:"recommendation,omitempty"`
	ConfidenceScore   float64        `json:"confidence_score"`
	Brief             string         `json:"investigation_brief"`
	ToolsUsed         map[string]int `json:"tools_used"`
	TotalToolCalls    int            `json:"total_tool_calls"`
	Log               []LogEntry     `json:"investigation_log"`
	Status            Status         `json:"status"`
	Error             string         `json:"error,omitempty"`

	// Ambiguous is set when the brief parser fell back to a default.
	Ambiguous bool `json:"ambiguous"`
	// ThresholdRecommendation is the band the confidence score falls into.
	ThresholdRecommendation Recommendation `json:"threshold_recommendation,omitempty"`

	Turns            int     `json:"turns"`
	InitialRiskScore float64 `json:"initial_risk_score"`
	AlertDescription string  `json:"alert_description"`
}

// CountTools aggregates a log by tool name.
func CountTools(log []LogEntry) map[string]int {
	counts := make(map[string]int, len(log))
	for _, e := range log {
		counts[e.Tool]++
	}
	return counts
}
