// Package siem implements the security-event search tool.
package siem

import (
	"context"
	"errors"
	"time"

	"github.com/Cyclone1070/fraudinv/internal/datastore"
	"github.com/Cyclone1070/fraudinv/internal/tool/paginationutil"
)

const noDetails = "No details available"

type eventStore interface {
	Require(tables ...string) error
	FindSIEMEvents(ctx context.Context, f datastore.SIEMFilter) ([]datastore.SIEMEvent, error)
}

// QueryEventsTool searches SIEM events by user, device and type within a recent window.
type QueryEventsTool struct {
	store    eventStore
	now      func() time.Time
	maxLimit int
}

// NewQueryEventsTool fails when the event table is unavailable. now may be nil.
func NewQueryEventsTool(store eventStore, now func() time.Time, maxLimit int) (*QueryEventsTool, error) {
	if store == nil {
		return nil, &datastore.DataSourceUnavailableError{Source: "siem events", Cause: errors.New("store not configured")}
	}
	if err := store.Require(datastore.TableSIEMEvents); err != nil {
		return nil, err
	}
	if now == nil {
		now = time.Now
	}
	return &QueryEventsTool{store: store, now: now, maxLimit: maxLimit}, nil
}

func (t *QueryEventsTool) Run(ctx context.Context, req *QueryEventsRequest) (*QueryEventsResponse, error) {
	since := t.now().Add(-time.Duration(req.HoursBack) * time.Hour)
	events, err := t.store.FindSIEMEvents(ctx, datastore.SIEMFilter{
		UserID:    req.UserID,
		DeviceID:  req.DeviceID,
		EventType: req.EventType,
		Since:     since,
	})
	if err != nil {
		return nil, &StoreReadError{Cause: err}
	}

	resp := &QueryEventsResponse{
		FiltersApplied: FiltersApplied{
			UserID:    optional(req.UserID),
			DeviceID:  optional(req.DeviceID),
			EventType: optional(req.EventType),
			HoursBack: req.HoursBack,
		},
		TotalEventsFound: len(events),
	}
	for _, e := range events {
		if e.IsHighRisk {
			resp.HighRiskEvents++
		}
		if e.IsSuspicious {
			resp.SuspiciousEvents++
		}
	}

	shown, page := paginationutil.Truncate(events, paginationutil.Clamp(req.Limit, t.maxLimit))
	resp.Returned = page.Returned
	resp.Events = make([]Event, 0, len(shown))
	for _, e := range shown {
		details := e.Details
		if details == "" {
			details = noDetails
		}
		resp.Events = append(resp.Events, Event{
			EventID:   e.EventID,
			Timestamp: e.Timestamp().Format(time.RFC3339),
			EventType: e.EventType,
			Severity:  e.Severity,
			UserID:    e.UserID,
			DeviceID:  e.DeviceID,
			IPAddress: e.IPAddress,
			Country:   e.Country,
			Details:   details,
		})
	}
	return resp, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
