package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	checkoutdomain "github.com/Apurer/freshcart-api/internal/domains/checkout/domain"
)

type normalizedSubmit struct {
	UserID   string             `json:"userId"`
	Shipping normalizedShipping `json:"shipping"`
	Method   string             `json:"method"`
	WalletID string             `json:"walletId,omitempty"`
}

type normalizedShipping struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
}

// FingerprintSubmit hashes the user and draft, excluding the idempotency key.
// Cart lines are left out: a successful submit clears the cart, so a retry
// sees different lines for the same request.
func FingerprintSubmit(userID string, draft checkoutdomain.Draft) (string, error) {
	shipping := draft.Shipping.Trimmed()
	normalized := normalizedSubmit{
		UserID: userID,
		Shipping: normalizedShipping{
			FirstName: shipping.FirstName,
			LastName:  shipping.LastName,
			Email:     shipping.Email,
			Phone:     shipping.Phone,
			Street:    shipping.Street,
			City:      shipping.City,
			State:     shipping.State,
			ZipCode:   shipping.ZipCode,
		},
		Method:   string(draft.Payment.Method),
		WalletID: draft.Payment.Sanitized().WalletID,
	}
	payload, err := json.Marshal(normalized)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
