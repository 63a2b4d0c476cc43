package kyc

import (
	"context"
	"errors"

	"github.com/Cyclone1070/fraudinv/internal/datastore"
)

const notFoundMessage = "No KYC profile found for this user"

// profileStore defines the lookups the KYC tool needs.
type profileStore interface {
	Require(tables ...string) error
	KYCProfileByUserID(ctx context.Context, userID string) (*datastore.KYCProfile, error)
}

// FetchProfileTool looks up a customer's KYC profile by user id.
type FetchProfileTool struct {
	store profileStore
}

// NewFetchProfileTool fails when the profile table is unavailable.
func NewFetchProfileTool(store profileStore) (*FetchProfileTool, error) {
	if store == nil {
		return nil, &datastore.DataSourceUnavailableError{Source: "kyc profiles", Cause: errors.New("store not configured")}
	}
	if err := store.Require(datastore.TableKYCProfiles); err != nil {
		return nil, err
	}
	return &FetchProfileTool{store: store}, nil
}

// Run returns {found:false} rather than an error for unknown users.
func (t *FetchProfileTool) Run(ctx context.Context, req *FetchProfileRequest) (*FetchProfileResponse, error) {
	p, err := t.store.KYCProfileByUserID(ctx, req.UserID)
	if errors.Is(err, datastore.ErrNotFound) {
		return &FetchProfileResponse{Found: false, UserID: req.UserID, Message: notFoundMessage}, nil
	}
	if err != nil {
		return nil, &StoreReadError{UserID: req.UserID, Cause: err}
	}

	return &FetchProfileResponse{
		Found:  true,
		UserID: req.UserID,
		Profile: &Profile{
			FullName:               p.FullName,
			Age:                    p.Age,
			Country:                p.Country,
			Employment:             p.Employment,
			AccountType:            p.AccountType,
			RiskScore:              int(p.RiskScore),
			RiskLevel:              p.RiskLevel,
			AvgMonthlyTransactions: int(p.AvgMonthlyTransactions),
			DeviceCount:            p.DeviceCount,
			AccountAgeDays:         p.AccountAgeDays,
			ProfileSummary:         p.ProfileSummary,
		},
	}, nil
}
