package kyc

// FetchProfileRequest is the input of fetch_kyc_profile.
type FetchProfileRequest struct {
	UserID string `json:"user_id"`
}

// FetchProfileResponse carries the profile fields when Found, and Message otherwise.
type FetchProfileResponse struct {
	Found   bool   `json:"found"`
	UserID  string `json:"user_id"`
	Message string `json:"message,omitempty"`
	*Profile
}

type Profile struct {
	FullName               string `json:"full_name"`
	Age                    int    `json:"age"`
	Country                string `json:"country"`
	Employment             string `json:"employment"`
	AccountType            string `json:"account_type"`
	RiskScore              int    `json:"risk_score"`
	RiskLevel              string `json:"risk_level"`
	AvgMonthlyTransactions int    `json:"avg_monthly_transactions"`
	DeviceCount            int    `json:"device_count"`
	AccountAgeDays         int    `json:"account_age_days"`
	ProfileSummary         string `json:"profile_summary"`
}
