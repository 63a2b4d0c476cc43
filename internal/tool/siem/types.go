package siem

import "fmt"

// QueryEventsRequest is the input of query_siem_events. Empty filters match everything.
type QueryEventsRequest struct {
	UserID    string `json:"user_id,omitempty"`
	DeviceID  string `json:"device_id,omitempty"`
	EventType string `json:"event_type,omitempty"`
	HoursBack int    `json:"hours_back"`
	Limit     int    `json:"limit"`
}

func (r *QueryEventsRequest) Validate() error {
	if r.HoursBack < 1 {
		return fmt.Errorf("hours_back must be at least 1, got %d", r.HoursBack)
	}
	if r.Limit < 1 {
		return fmt.Errorf("limit must be at least 1, got %d", r.Limit)
	}
	return nil
}

// FiltersApplied echoes the request; unset filters encode as null.
type FiltersApplied struct {
	UserID    *string `json:"user_id"`
	DeviceID  *string `json:"device_id"`
	EventType *string `json:"event_type"`
	HoursBack int     `json:"hours_back"`
}

type Event struct {
	EventID   string `json:"event_id"`
	Timestamp string `json:"timestamp"`
	EventType string `json:"event_type"`
	Severity  string `json:"severity"`
	UserID    string `json:"user_id"`
	DeviceID  string `json:"device_id"`
	IPAddress string `json:"ip_address"`
	Country   string `json:"country"`
	Details   string `json:"details"`
}

// QueryEventsResponse counts cover every matching event; Events is capped by limit.
type QueryEventsResponse struct {
	FiltersApplied   FiltersApplied `json:"filters_applied"`
	TotalEventsFound int            `json:"total_events_found"`
	HighRiskEvents   int            `json:"high_risk_events"`
	SuspiciousEvents int            `json:"suspicious_events"`
	Returned         int            `json:"returned"`
	Events           []Event        `json:"events"`
}
