// Package catalog assembles the investigation tool set over the configured data sources.
package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/Cyclone1070/fraudinv/internal/config"
	"github.com/Cyclone1070/fraudinv/internal/datastore"
	"github.com/Cyclone1070/fraudinv/internal/tool/kyc"
	"github.com/Cyclone1070/fraudinv/internal/tool/siem"
	"github.com/Cyclone1070/fraudinv/internal/tool/similarity"
	"github.com/Cyclone1070/fraudinv/internal/tool/transaction"
	"github.com/Cyclone1070/fraudinv/internal/vectorindex"
	"github.com/Cyclone1070/fraudinv/internal/workflow/toolmanager"
)

// Deps are the data sources behind the tools.
type Deps struct {
	Store  *datastore.Store
	Index  *vectorindex.Index
	Now    func() time.Time
	Limits config.DataConfig
}

// NewRegistry constructs every tool and registers it. Any missing data source fails
// the whole construction with a *datastore.DataSourceUnavailableError.
func NewRegistry(ctx context.Context, deps Deps) (*toolmanager.ToolManager, error) {
	if deps.Index == nil {
		return nil, &datastore.DataSourceUnavailableError{Source: "vector index", Cause: errors.New("index not configured")}
	}

	cases, err := similarity.NewSimilarCasesTool(ctx, deps.Index, deps.Limits.MaxSimilarResults)
	if err != nil {
		return nil, err
	}
	patterns, err := similarity.NewFraudPatternsTool(ctx, deps.Index, deps.Limits.MaxSimilarResults)
	if err != nil {
		return nil, err
	}
	profiles, err := similarity.NewSimilarProfilesTool(ctx, deps.Index, deps.Limits.MaxSimilarResults)
	if err != nil {
		return nil, err
	}
	kycTool, err := kyc.NewFetchProfileTool(deps.Store)
	if err != nil {
		return nil, err
	}
	details, err := transaction.NewDetailsTool(deps.Store)
	if err != nil {
		return nil, err
	}
	history, err := transaction.NewHistoryTool(deps.Store, deps.Now, deps.Limits.MaxHistoryResults)
	if err != nil {
		return nil, err
	}
	events, err := siem.NewQueryEventsTool(deps.Store, deps.Now, deps.Limits.MaxEventResults)
	if err != nil {
		return nil, err
	}

	return toolmanager.NewToolManager(
		NewQuerySimilarCases(cases),
		NewSearchFraudPatterns(patterns),
		NewSearchSimilarKYCProfiles(profiles),
		NewFetchKYCProfile(kycTool),
		NewGetTransactionDetails(details),
		NewGetTransactionHistory(history),
		NewQuerySIEMEvents(events),
	)
}
