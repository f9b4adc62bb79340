package accounts

import (
	"context"
	"errors"

	accountsapp "github.com/Apurer/freshcart-api/internal/domains/accounts/application"
	accountsdomain "github.com/Apurer/freshcart-api/internal/domains/accounts/domain"
	"github.com/Apurer/freshcart-api/internal/domains/checkout/ports"
)

// ProfileReader is the slice of the accounts service checkout needs.
type ProfileReader interface {
	GetProfile(ctx context.Context, userID string) (*accountsdomain.Profile, error)
}

// ProfileSource prefills checkout from the accounts profile.
type ProfileSource struct {
	profiles ProfileReader
}

func NewProfileSource(profiles ProfileReader) *ProfileSource {
	return &ProfileSource{profiles: profiles}
}

// ShippingProfile returns an empty profile when the user has none yet.
func (p *ProfileSource) ShippingProfile(ctx context.Context, userID string) (ports.ShippingProfile, error) {
	if p == nil || p.profiles == nil {
		return ports.ShippingProfile{}, errors.New("profile source not configured")
	}
	profile, err := p.profiles.GetProfile(ctx, userID)
	if errors.Is(err, accountsapp.ErrNotFound) {
		return ports.ShippingProfile{}, nil
	}
	if err != nil {
		return ports.ShippingProfile{}, err
	}
	return ports.ShippingProfile{
		FullName: profile.FullName,
		Phone:    profile.Phone,
		Street:   profile.Address.Street,
		City:     profile.Address.City,
		State:    profile.Address.State,
		ZipCode:  profile.Address.ZipCode,
	}, nil
}

var _ ports.ProfileSource = (*ProfileSource)(nil)
