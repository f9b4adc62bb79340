package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPaymentSelection_Validate(t *testing.T) {
	cases := []struct {
		name      string
		selection PaymentSelection
		fields    []string
	}{
		{name: "cash needs nothing", selection: PaymentSelection{Method: PaymentCash}},
		{name: "paypal needs nothing", selection: PaymentSelection{Method: PaymentPayPal}},
		{name: "wallet needs id", selection: PaymentSelection{Method: PaymentPhonePe}, fields: []string{"upiId"}},
		{name: "wallet with id", selection: PaymentSelection{Method: PaymentGooglePay, WalletID: "ada@okbank"}},
		{name: "card needs all fields", selection: PaymentSelection{Method: PaymentCard, Card: &CardDetails{Number: "4242"}},
			fields: []string{"expiryDate", "cvv", "nameOnCard"}},
		{name: "card complete", selection: PaymentSelection{Method: PaymentCard, Card: &CardDetails{
			Number: "4242424242424242", Expiry: "12/30", CVV: "123", Name: "Ada"}}},
		{name: "unknown method", selection: PaymentSelection{Method: "bitcoin"}, fields: []string{"paymentMethod"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.selection.Validate()
			if len(tc.fields) == 0 {
				require.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			require.Len(t, verr.Fields, len(tc.fields))
			for _, field := range tc.fields {
				require.Contains(t, verr.Fields, field)
			}
		})
	}
}

func TestPaymentSelection_SanitizedDropsCard(t *testing.T) {
	selection := PaymentSelection{Method: PaymentCard, WalletID: "stray", Card: &CardDetails{Number: "4242"}}
	clean := selection.Sanitized()
	require.Nil(t, clean.Card)
	require.Empty(t, clean.WalletID)

	wallet := PaymentSelection{Method: PaymentPaytm, WalletID: " ada@paytm "}.Sanitized()
	require.Equal(t, "ada@paytm", wallet.WalletID)
}

func TestPaymentMethod_Labels(t *testing.T) {
	require.Equal(t, "Cash on Delivery", PaymentCash.Label())
	require.Equal(t, "PhonePe UPI", PaymentPhonePe.Label())
	require.Equal(t, "Bitcoin", PaymentMethod("bitcoin").Label())
	require.True(t, PaymentPaytm.IsWallet())
	require.False(t, PaymentCard.IsWallet())
	require.True(t, PaymentCash.IsCashOnDelivery())
}

func TestParsePaymentMethod(t *testing.T) {
	m, err := ParsePaymentMethod(" GooglePay ")
	require.NoError(t, err)
	require.Equal(t, PaymentGooglePay, m)

	_, err = ParsePaymentMethod("cheque")
	require.ErrorIs(t, err, ErrUnknownPaymentMethod)
}
