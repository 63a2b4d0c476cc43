// Package dataset loads a JSON bundle of transactions, profiles, security events and
// similarity documents into the datastore and vector index.
package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/Cyclone1070/fraudinv/internal/datastore"
	"github.com/Cyclone1070/fraudinv/internal/vectorindex"
)

// Night hours are [NightStartHour, 24) and [0, NightEndHour).
const (
	NightStartHour = 22
	NightEndHour   = 6
)

type Transaction struct {
	TransactionID string    `json:"transaction_id"`
	UserID        string    `json:"user_id"`
	Amount        float64   `json:"amount"`
	Timestamp     time.Time `json:"timestamp"`
	IsFraud       bool      `json:"is_fraud"`
	PCAFeatures   []float64 `json:"pca_features,omitempty"`
}

type KYCProfile struct {
	UserID                 string  `json:"user_id"`
	FullName               string  `json:"full_name"`
	Age                    int     `json:"age"`
	Country                string  `json:"country"`
	Employment             string  `json:"employment"`
	AccountType            string  `json:"account_type"`
	RiskScore              float64 `json:"risk_score"`
	RiskLevel              string  `json:"risk_level"`
	AvgMonthlyTransactions float64 `json:"avg_monthly_transactions"`
	DeviceCount            int     `json:"device_count"`
	AccountAgeDays         int     `json:"account_age_days"`
	ProfileSummary         string  `json:"profile_summary"`
}

type SIEMEvent struct {
	EventID      string    `json:"event_id"`
	Timestamp    time.Time `json:"timestamp"`
	EventType    string    `json:"event_type"`
	Severity     string    `json:"severity"`
	UserID       string    `json:"user_id"`
	DeviceID     string    `json:"device_id"`
	IPAddress    string    `json:"ip_address"`
	Country      string    `json:"country"`
	Details      string    `json:"details"`
	IsHighRisk   bool      `json:"is_high_risk"`
	IsSuspicious bool      `json:"is_suspicious"`
}

type Document struct {
	ID       string         `json:"id"`
	Category string         `json:"category"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Bundle is the on-disk import format. Documents are keyed by collection name.
type Bundle struct {
	Transactions []Transaction         `json:"transactions"`
	KYCProfiles  []KYCProfile          `json:"kyc_profiles"`
	SIEMEvents   []SIEMEvent           `json:"siem_events"`
	Documents    map[string][]Document `json:"documents"`
}

// Stats counts what an import wrote.
type Stats struct {
	Transactions int            `json:"transactions"`
	KYCProfiles  int            `json:"kyc_profiles"`
	SIEMEvents   int            `json:"siem_events"`
	Documents    map[string]int `json:"documents"`
}

func Load(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("invalid dataset %s: %w", path, err)
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dataset %s: %w", path, err)
	}
	return &b, nil
}

// Validate rejects rows without a primary key and documents for unknown collections.
func (b *Bundle) Validate() error {
	for i, t := range b.Transactions {
		if t.TransactionID == "" {
			return fmt.Errorf("transactions[%d]: missing transaction_id", i)
		}
	}
	for i, p := range b.KYCProfiles {
		if p.UserID == "" {
			return fmt.Errorf("kyc_profiles[%d]: missing user_id", i)
		}
	}
	for i, e := range b.SIEMEvents {
		if e.EventID == "" {
			return fmt.Errorf("siem_events[%d]: missing event_id", i)
		}
	}
	for collection, docs := range b.Documents {
		switch collection {
		case vectorindex.CollectionCases, vectorindex.CollectionPatterns, vectorindex.CollectionProfiles:
		default:
			return fmt.Errorf("documents: unknown collection %q", collection)
		}
		for i, d := range docs {
			if d.ID == "" {
				return fmt.Errorf("documents.%s[%d]: missing id", collection, i)
			}
		}
	}
	return nil
}

// Import writes the bundle. Rows are upserted, so importing the same bundle twice is a
// no-op. Profiles with a summary are also indexed into the profiles collection unless
// the bundle supplies a document with the same id.
func Import(ctx context.Context, store *datastore.Store, index *vectorindex.Index, b *Bundle) (Stats, error) {
	stats := Stats{Documents: map[string]int{}}

	txns := DeriveTransactions(b.Transactions)
	if err := store.SaveTransactions(ctx, txns...); err != nil {
		return stats, fmt.Errorf("save transactions: %w", err)
	}
	stats.Transactions = len(txns)

	profiles := make([]datastore.KYCProfile, len(b.KYCProfiles))
	for i, p := range b.KYCProfiles {
		profiles[i] = datastore.KYCProfile(p)
	}
	if err := store.SaveKYCProfiles(ctx, profiles...); err != nil {
		return stats, fmt.Errorf("save kyc profiles: %w", err)
	}
	stats.KYCProfiles = len(profiles)

	events := make([]datastore.SIEMEvent, len(b.SIEMEvents))
	for i, e := range b.SIEMEvents {
		events[i] = datastore.SIEMEvent{
			EventID:       e.EventID,
			TimestampUnix: e.Timestamp.Unix(),
			EventType:     e.EventType,
			Severity:      e.Severity,
			UserID:        e.UserID,
			DeviceID:      e.DeviceID,
			IPAddress:     e.IPAddress,
			Country:       e.Country,
			Details:       e.Details,
			IsHighRisk:    e.IsHighRisk,
			IsSuspicious:  e.IsSuspicious,
		}
	}
	if err := store.SaveSIEMEvents(ctx, events...); err != nil {
		return stats, fmt.Errorf("save siem events: %w", err)
	}
	stats.SIEMEvents = len(events)

	for collection, entries := range documentEntries(b) {
		if err := index.Upsert(ctx, collection, entries...); err != nil {
			return stats, err
		}
		stats.Documents[collection] = len(entries)
	}
	return stats, nil
}

func documentEntries(b *Bundle) map[string][]vectorindex.Entry {
	out := make(map[string][]vectorindex.Entry)
	explicit := make(map[string]bool)
	for collection, docs := range b.Documents {
		for _, d := range docs {
			out[collection] = append(out[collection], vectorindex.Entry{
				ID:       d.ID,
				Category: d.Category,
				Content:  d.Content,
				Metadata: d.Metadata,
			})
			if collection == vectorindex.CollectionProfiles {
				explicit[d.ID] = true
			}
		}
	}
	for _, p := range b.KYCProfiles {
		if p.ProfileSummary == "" || explicit[p.UserID] {
			continue
		}
		out[vectorindex.CollectionProfiles] = append(out[vectorindex.CollectionProfiles], vectorindex.Entry{
			ID:       p.UserID,
			Category: p.RiskLevel,
			Content:  p.ProfileSummary,
			Metadata: map[string]any{
				"user_id":    p.UserID,
				"risk_score": p.RiskScore,
				"risk_level": p.RiskLevel,
				"country":    p.Country,
			},
		})
	}
	return out
}

// DeriveTransactions fills the engineered columns. Times are taken in UTC and the
// z-score is computed over the whole bundle (population standard deviation).
func DeriveTransactions(in []Transaction) []datastore.Transaction {
	var mean, std float64
	if len(in) > 0 {
		for _, t := range in {
			mean += t.Amount
		}
		mean /= float64(len(in))
		for _, t := range in {
			std += (t.Amount - mean) * (t.Amount - mean)
		}
		std = math.Sqrt(std / float64(len(in)))
	}

	out := make([]datastore.Transaction, len(in))
	for i, t := range in {
		ts := t.Timestamp.UTC()
		hour := ts.Hour()
		weekday := int(ts.Weekday()+6) % 7 // Monday = 0
		z := 0.0
		if std > 0 {
			z = (t.Amount - mean) / std
		}
		out[i] = datastore.Transaction{
			TransactionID: t.TransactionID,
			UserID:        t.UserID,
			Amount:        t.Amount,
			TimestampUnix: ts.Unix(),
			Hour:          hour,
			DayOfWeek:     weekday,
			IsWeekend:     weekday >= 5,
			IsNight:       hour >= NightStartHour || hour < NightEndHour,
			AmountLog:     math.Log1p(math.Max(t.Amount, 0)),
			AmountZScore:  z,
			IsFraud:       t.IsFraud,
			PCAFeatures:   t.PCAFeatures,
		}
	}
	return out
}
