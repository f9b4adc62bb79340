package mapper

import (
	"time"

	"github.com/Apurer/freshcart-api/internal/domains/accounts/domain"
	"github.com/Apurer/freshcart-api/internal/domains/accounts/ports"
)

// User is the transport representation of an account. The password hash never leaves the service.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
}

// Session is returned by register and login.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

// Address is the structured shipping address.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
}

// Profile is the account profile payload.
type Profile struct {
	FullName         string  `json:"fullName"`
	Phone            string  `json:"phone"`
	Address          Address `json:"address"`
	FormattedAddress string  `json:"formattedAddress,omitempty"`
}

func FromDomainUser(user *domain.User) User {
	if user == nil {
		return User{}
	}
	return User{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		IsAdmin:   user.IsAdmin(),
		CreatedAt: user.CreatedAt,
	}
}

func FromAuthResult(result *ports.AuthResult) Session {
	if result == nil {
		return Session{}
	}
	return Session{
		Token:     result.Session.Token,
		ExpiresAt: result.Session.ExpiresAt,
		User:      FromDomainUser(result.User),
	}
}

func FromDomainProfile(profile *domain.Profile) Profile {
	if profile == nil {
		return Profile{}
	}
	return Profile{
		FullName: profile.FullName,
		Phone:    profile.Phone,
		Address: Address{
			Street:  profile.Address.Street,
			City:    profile.Address.City,
			State:   profile.Address.State,
			ZipCode: profile.Address.ZipCode,
		},
		FormattedAddress: profile.FormattedAddress(),
	}
}

// ToDomainProfile maps the payload onto userID's profile.
func ToDomainProfile(userID string, in Profile) domain.Profile {
	return domain.Profile{
		UserID:   userID,
		FullName: in.FullName,
		Phone:    in.Phone,
		Address: domain.Address{
			Street:  in.Address.Street,
			City:    in.Address.City,
			State:   in.Address.State,
			ZipCode: in.Address.ZipCode,
		},
	}
}
