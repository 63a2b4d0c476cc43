package catalog

import (
	"github.com/Cyclone1070/fraudinv/internal/tool"
	"github.com/Cyclone1070/fraudinv/internal/tool/kyc"
	"github.com/Cyclone1070/fraudinv/internal/tool/siem"
	"github.com/Cyclone1070/fraudinv/internal/tool/similarity"
	"github.com/Cyclone1070/fraudinv/internal/tool/transaction"
)

// Tool names as the model sees them.
const (
	QuerySimilarCases        = "query_similar_cases"
	SearchFraudPatterns      = "search_fraud_patterns"
	SearchSimilarKYCProfiles = "search_similar_kyc_profiles"
	FetchKYCProfile          = "fetch_kyc_profile"
	GetTransactionDetails    = "get_transaction_details"
	GetTransactionHistory    = "get_transaction_history"
	QuerySIEMEvents          = "query_siem_events"
)

// NewQuerySimilarCases creates a query_similar_cases adapter
func NewQuerySimilarCases(t *similarity.SimilarCasesTool) *tool.Adapter[similarity.SimilarCasesRequest, similarity.SimilarCasesResponse] {
	return tool.NewAdapter(tool.Declaration{
		Name:        QuerySimilarCases,
		Description: "Search for past investigation cases similar to a given description. Returns cases with fraud types, outcomes, and similarity scores. Use this to learn from how similar fraud was investigated before.",
		Parameters: tool.ObjectSchema(map[string]*tool.Schema{
			"description": {
				Type:        tool.TypeString,
				Description: "Description of the suspicious activity or fraud scenario",
			},
			"n_results": {
				Type:        tool.TypeInteger,
				Description: "Number of similar cases to return (default 5)",
				Default:     5,
			},
			"fraud_type_filter": {
				Type:        tool.TypeString,
				Description: "Optional: filter by specific fraud type",
			},
		}, "description"),
	}, t.Run)
}

// NewSearchFraudPatterns creates a search_fraud_patterns adapter
func NewSearchFraudPatterns(t *similarity.FraudPatternsTool) *tool.Adapter[similarity.FraudPatternsRequest, similarity.FraudPatternsResponse] {
	return tool.NewAdapter(tool.Declaration{
		Name:        SearchFraudPatterns,
		Description: "Match observed indicators to known fraud patterns. Returns pattern names, risk levels, and descriptions. Use this to identify what type of fraud scheme this might be.",
		Parameters: tool.ObjectSchema(map[string]*tool.Schema{
			"indicators": {
				Type:        tool.TypeString,
				Description: "Description of observed red flags or suspicious indicators",
			},
			"n_results": {
				Type:        tool.TypeInteger,
				Description: "Number of patterns to return (default 3)",
				Default:     3,
			},
			"risk_level_filter": {
				Type:        tool.TypeString,
				Description: "Optional: filter by risk level",
				Enum:        []string{"Low", "Medium", "High"},
			},
		}, "indicators"),
	}, t.Run)
}

// NewSearchSimilarKYCProfiles creates a search_similar_kyc_profiles adapter
func NewSearchSimilarKYCProfiles(t *similarity.SimilarProfilesTool) *tool.Adapter[similarity.SimilarProfilesRequest, similarity.SimilarProfilesResponse] {
	return tool.NewAdapter(tool.Declaration{
		Name:        SearchSimilarKYCProfiles,
		Description: "Find customers with profiles similar to a description. Returns user ids, risk scores and profile summaries. Use this to see whether similar customers were involved in fraud.",
		Parameters: tool.ObjectSchema(map[string]*tool.Schema{
			"description": {
				Type:        tool.TypeString,
				Description: "Description of customer characteristics",
			},
			"n_results": {
				Type:        tool.TypeInteger,
				Description: "Number of similar profiles to return (default 5)",
				Default:     5,
			},
			"risk_level_filter": {
				Type:        tool.TypeString,
				Description: "Optional: filter by risk level",
				Enum:        []string{"Low", "Medium", "High"},
			},
		}, "description"),
	}, t.Run)
}

// NewFetchKYCProfile creates a fetch_kyc_profile adapter
func NewFetchKYCProfile(t *kyc.FetchProfileTool) *tool.Adapter[kyc.FetchProfileRequest, kyc.FetchProfileResponse] {
	return tool.NewAdapter(tool.Declaration{
		Name:        FetchKYCProfile,
		Description: "Retrieve customer KYC profile including name, age, country, employment, risk score, and account details. Use this to understand the customer's background and risk profile.",
		Parameters: tool.ObjectSchema(map[string]*tool.Schema{
			"user_id": {
				Type:        tool.TypeString,
				Description: "Customer user ID",
			},
		}, "user_id"),
	}, t.Run)
}

// NewGetTransactionDetails creates a get_transaction_details adapter
func NewGetTransactionDetails(t *transaction.DetailsTool) *tool.Adapter[transaction.DetailsRequest, transaction.DetailsResponse] {
	return tool.NewAdapter(tool.Declaration{
		Name:        GetTransactionDetails,
		Description: "Get detailed information about a specific transaction including amount, timestamp, PCA features, and fraud label. Use this to examine the flagged transaction.",
		Parameters: tool.ObjectSchema(map[string]*tool.Schema{
			"transaction_id": {
				Type:        tool.TypeString,
				Description: "Transaction ID to lookup",
			},
		}, "transaction_id"),
	}, t.Run)
}

// NewGetTransactionHistory creates a get_transaction_history adapter
func NewGetTransactionHistory(t *transaction.HistoryTool) *tool.Adapter[transaction.HistoryRequest, transaction.HistoryResponse] {
	return tool.NewAdapter(tool.Declaration{
		Name:        GetTransactionHistory,
		Description: "Get transaction history and statistics over a time period. Statistics cover the whole window; only a sample of transactions is listed. Use this to analyze transaction patterns and behavior over time.",
		Parameters: tool.ObjectSchema(map[string]*tool.Schema{
			"user_id": {
				Type:        tool.TypeString,
				Description: "User ID (optional)",
			},
			"days_back": {
				Type:        tool.TypeInteger,
				Description: "Number of days of history (default 30)",
				Default:     30,
			},
			"limit": {
				Type:        tool.TypeInteger,
				Description: "Maximum transactions to return (default 50)",
				Default:     50,
			},
		}),
	}, t.Run)
}

// NewQuerySIEMEvents creates a query_siem_events adapter
func NewQuerySIEMEvents(t *siem.QueryEventsTool) *tool.Adapter[siem.QueryEventsRequest, siem.QueryEventsResponse] {
	return tool.NewAdapter(tool.Declaration{
		Name:        QuerySIEMEvents,
		Description: "Search security event logs for user or device activity. Returns login events, password resets, suspicious locations, etc. Use this to check for security red flags.",
		Parameters: tool.ObjectSchema(map[string]*tool.Schema{
			"user_id": {
				Type:        tool.TypeString,
				Description: "Filter by user ID",
			},
			"device_id": {
				Type:        tool.TypeString,
				Description: "Filter by device ID",
			},
			"event_type": {
				Type:        tool.TypeString,
				Description: "Filter by event type (e.g., 'login_failure', 'suspicious_location')",
			},
			"hours_back": {
				Type:        tool.TypeInteger,
				Description: "Hours of history to search (default 24)",
				Default:     24,
			},
			"limit": {
				Type:        tool.TypeInteger,
				Description: "Maximum number of events to return (default 20)",
				Default:     20,
			},
		}),
	}, t.Run)
}
