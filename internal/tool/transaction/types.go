package transaction

import "fmt"

// -- Contract Types --

// DetailsRequest is the input of get_transaction_details.
type DetailsRequest struct {
	TransactionID string `json:"transaction_id"`
}

// DetailsResponse carries the transaction fields when Found, and Message otherwise.
type DetailsResponse struct {
	Found         bool   `json:"found"`
	TransactionID string `json:"transaction_id"`
	Message       string `json:"message,omitempty"`
	*Details
}

type Details struct {
	Amount       float64            `json:"amount"`
	Timestamp    string             `json:"timestamp"`
	Hour         int                `json:"hour"`
	DayOfWeek    int                `json:"day_of_week"`
	IsWeekend    bool               `json:"is_weekend"`
	IsNight      bool               `json:"is_night"`
	AmountLog    float64            `json:"amount_log"`
	AmountZScore float64            `json:"amount_zscore"`
	IsFraud      bool               `json:"is_fraud"`
	PCAFeatures  map[string]float64 `json:"pca_features"`
}

// HistoryRequest is the input of get_transaction_history.
type HistoryRequest struct {
	UserID   string `json:"user_id,omitempty"`
	DaysBack int    `json:"days_back"`
	Limit    int    `json:"limit"`
}

func (r *HistoryRequest) Validate() error {
	if r.DaysBack < 1 {
		return fmt.Errorf("days_back must be at least 1, got %d", r.DaysBack)
	}
	if r.Limit < 1 {
		return fmt.Errorf("limit must be at least 1, got %d", r.Limit)
	}
	return nil
}

// HistoryStats summarise every transaction in the window, not just the sample.
type HistoryStats struct {
	TotalTransactions   int     `json:"total_transactions"`
	TotalAmount         float64 `json:"total_amount"`
	AvgAmount           float64 `json:"avg_amount"`
	FraudCount          int     `json:"fraud_count"`
	FraudRate           float64 `json:"fraud_rate"` // percent
	NightTransactions   int     `json:"night_transactions"`
	WeekendTransactions int     `json:"weekend_transactions"`
}

type SampleTransaction struct {
	TransactionID string  `json:"transaction_id"`
	Amount        float64 `json:"amount"`
	Timestamp     string  `json:"timestamp"`
	IsFraud       bool    `json:"is_fraud"`
}

type HistoryResponse struct {
	UserID             string              `json:"user_id"`
	DaysSearched       int                 `json:"days_searched"`
	Statistics         HistoryStats        `json:"statistics"`
	Returned           int                 `json:"returned"`
	Truncated          bool                `json:"truncated"`
	SampleTransactions []SampleTransaction `json:"sample_transactions"`
}
