// Package transaction implements the transaction lookup and history tools.
package transaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Cyclone1070/fraudinv/internal/datastore"
	"github.com/Cyclone1070/fraudinv/internal/tool/paginationutil"
)

const notFoundMessage = "Transaction not found"

// transactionStore defines the queries the transaction tools need.
type transactionStore interface {
	Require(tables ...string) error
	TransactionByID(ctx context.Context, id string) (*datastore.Transaction, error)
	FindTransactions(ctx context.Context, f datastore.TransactionFilter) ([]datastore.Transaction, error)
}

func requireTransactions(store transactionStore) error {
	if store == nil {
		return &datastore.DataSourceUnavailableError{Source: "transactions", Cause: errors.New("store not configured")}
	}
	return store.Require(datastore.TableTransactions)
}

// DetailsTool returns the full feature record of one transaction.
type DetailsTool struct {
	store transactionStore
}

func NewDetailsTool(store transactionStore) (*DetailsTool, error) {
	if err := requireTransactions(store); err != nil {
		return nil, err
	}
	return &DetailsTool{store: store}, nil
}

func (t *DetailsTool) Run(ctx context.Context, req *DetailsRequest) (*DetailsResponse, error) {
	txn, err := t.store.TransactionByID(ctx, req.TransactionID)
	if errors.Is(err, datastore.ErrNotFound) {
		return &DetailsResponse{Found: false, TransactionID: req.TransactionID, Message: notFoundMessage}, nil
	}
	if err != nil {
		return nil, &StoreReadError{Op: "read transaction " + req.TransactionID, Cause: err}
	}

	features := make(map[string]float64, datastore.PCAFeatureCount)
	for i := 0; i < datastore.PCAFeatureCount; i++ {
		var v float64
		if i < len(txn.PCAFeatures) {
			v = txn.PCAFeatures[i]
		}
		features[fmt.Sprintf("V%d", i+1)] = v
	}

	return &DetailsResponse{
		Found:         true,
		TransactionID: req.TransactionID,
		Details: &Details{
			Amount:       txn.Amount,
			Timestamp:    txn.Timestamp().Format(time.RFC3339),
			Hour:         txn.Hour,
			DayOfWeek:    txn.DayOfWeek,
			IsWeekend:    txn.IsWeekend,
			IsNight:      txn.IsNight,
			AmountLog:    txn.AmountLog,
			AmountZScore: txn.AmountZScore,
			IsFraud:      txn.IsFraud,
			PCAFeatures:  features,
		},
	}, nil
}

// HistoryTool summarises a user's recent transactions.
type HistoryTool struct {
	store    transactionStore
	now      func() time.Time
	maxLimit int
}

// NewHistoryTool builds the history tool. now may be nil, in which case the
// wall clock is used.
func NewHistoryTool(store transactionStore, now func() time.Time, maxLimit int) (*HistoryTool, error) {
	if err := requireTransactions(store); err != nil {
		return nil, err
	}
	if now == nil {
		now = time.Now
	}
	return &HistoryTool{store: store, now: now, maxLimit: maxLimit}, nil
}

func (t *HistoryTool) Run(ctx context.Context, req *HistoryRequest) (*HistoryResponse, error) {
	since := t.now().Add(-time.Duration(req.DaysBack) * 24 * time.Hour)
	txns, err := t.store.FindTransactions(ctx, datastore.TransactionFilter{UserID: req.UserID, Since: since})
	if err != nil {
		return nil, &StoreReadError{Op: "query transaction history", Cause: err}
	}

	stats := summarize(txns)
	sample, page := paginationutil.Truncate(txns, paginationutil.Clamp(req.Limit, t.maxLimit))

	out := make([]SampleTransaction, 0, len(sample))
	for _, txn := range sample {
		out = append(out, SampleTransaction{
			TransactionID: txn.TransactionID,
			Amount:        txn.Amount,
			Timestamp:     txn.Timestamp().Format(time.RFC3339),
			IsFraud:       txn.IsFraud,
		})
	}

	userID := req.UserID
	if userID == "" {
		userID = "N/A"
	}
	return &HistoryResponse{
		UserID:             userID,
		DaysSearched:       req.DaysBack,
		Statistics:         stats,
		Returned:           page.Returned,
		Truncated:          page.Truncated,
		SampleTransactions: out,
	}, nil
}

func summarize(txns []datastore.Transaction) HistoryStats {
	var s HistoryStats
	s.TotalTransactions = len(txns)
	for _, txn := range txns {
		s.TotalAmount += txn.Amount
		if txn.IsFraud {
			s.FraudCount++
		}
		if txn.IsNight {
			s.NightTransactions++
		}
		if txn.IsWeekend {
			s.WeekendTransactions++
		}
	}
	if s.TotalTransactions > 0 {
		s.AvgAmount = s.TotalAmount / float64(s.TotalTransactions)
		s.FraudRate = float64(s.FraudCount) / float64(s.TotalTransactions) * 100
	}
	return s
}
