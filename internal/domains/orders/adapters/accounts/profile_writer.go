package accounts

import (
	"context"
	"errors"

	accountsdomain "github.com/Apurer/freshcart-api/internal/domains/accounts/domain"
	"github.com/Apurer/freshcart-api/internal/domains/orders/ports"
)

// ProfileSyncer is the slice of the accounts service order placement writes through.
type ProfileSyncer interface {
	SyncShippingProfile(ctx context.Context, profile accountsdomain.Profile) error
}

// ProfileWriter stores checkout shipping details on the customer's account profile.
type ProfileWriter struct {
	accounts ProfileSyncer
}

func NewProfileWriter(accounts ProfileSyncer) *ProfileWriter {
	return &ProfileWriter{accounts: accounts}
}

func (w *ProfileWriter) SyncShippingProfile(ctx context.Context, userID string, profile ports.ShippingProfile) error {
	if w == nil || w.accounts == nil {
		return errors.New("profile writer not configured")
	}
	return w.accounts.SyncShippingProfile(ctx, accountsdomain.Profile{
		UserID:   userID,
		FullName: profile.FullName,
		Phone:    profile.Phone,
		Address: accountsdomain.Address{
			Street:  profile.Street,
			City:    profile.City,
			State:   profile.State,
			ZipCode: profile.ZipCode,
		},
	})
}

var _ ports.ProfileWriter = (*ProfileWriter)(nil)
