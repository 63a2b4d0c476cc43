package datastore

import "time"

// Table names, used when a component checks that its source exists.
const (
	TableTransactions = "transactions"
	TableKYCProfiles  = "kyc_profiles"
	TableSIEMEvents   = "siem_events"
)

// PCAFeatureCount is the number of anonymised V1..V28 features per transaction.
const PCAFeatureCount = 28

type Transaction struct {
	TransactionID string    `gorm:"column:transaction_id;primaryKey"`
	UserID        string    `gorm:"column:user_id;index"`
	Amount        float64   `gorm:"column:amount"`
	TimestampUnix int64     `gorm:"column:timestamp_unix;index"`
	Hour          int       `gorm:"column:hour"`
	DayOfWeek     int       `gorm:"column:day_of_week"`
	IsWeekend     bool      `gorm:"column:is_weekend"`
	IsNight       bool      `gorm:"column:is_night"`
	AmountLog     float64   `gorm:"column:amount_log"`
	AmountZScore  float64   `gorm:"column:amount_zscore"`
	IsFraud       bool      `gorm:"column:is_fraud"`
	PCAFeatures   []float64 `gorm:"column:pca_features;serializer:json"`
}

func (Transaction) TableName() string { return TableTransactions }

// Timestamp returns the transaction time in UTC.
func (t Transaction) Timestamp() time.Time { return time.Unix(t.TimestampUnix, 0).UTC() }

type KYCProfile struct {
	UserID                 string  `gorm:"column:user_id;primaryKey"`
	FullName               string  `gorm:"column:full_name"`
	Age                    int     `gorm:"column:age"`
	Country                string  `gorm:"column:country"`
	Employment             string  `gorm:"column:employment"`
	AccountType            string  `gorm:"column:account_type"`
	RiskScore              float64 `gorm:"column:risk_score"`
	RiskLevel              string  `gorm:"column:risk_level;index"`
	AvgMonthlyTransactions float64 `gorm:"column:avg_monthly_transactions"`
	DeviceCount            int     `gorm:"column:device_count"`
	AccountAgeDays         int     `gorm:"column:account_age_days"`
	ProfileSummary         string  `gorm:"column:profile_summary"`
}

func (KYCProfile) TableName() string { return TableKYCProfiles }

type SIEMEvent struct {
	EventID       string `gorm:"column:event_id;primaryKey"`
	TimestampUnix int64  `gorm:"column:timestamp_unix;index"`
	EventType     string `gorm:"column:event_type;index"`
	Severity      string `gorm:"column:severity"`
	UserID        string `gorm:"column:user_id;index"`
	DeviceID      string `gorm:"column:device_id;index"`
	IPAddress     string `gorm:"column:ip_address"`
	Country       string `gorm:"column:country"`
	Details       string `gorm:"column:details"`
	IsHighRisk    bool   `gorm:"column:is_high_risk"`
	IsSuspicious  bool   `gorm:"column:is_suspicious"`
}

func (SIEMEvent) TableName() string { return TableSIEMEvents }

// Timestamp returns the event time in UTC.
func (e SIEMEvent) Timestamp() time.Time { return time.Unix(e.TimestampUnix, 0).UTC() }

// SIEMFilter selects security events. Empty strings and a zero Since disable that filter.
type SIEMFilter struct {
	UserID    string
	DeviceID  string
	EventType string
	Since     time.Time
}

// TransactionFilter selects transactions. Empty strings and a zero Since disable that filter.
type TransactionFilter struct {
	UserID string
	Since  time.Time
}
