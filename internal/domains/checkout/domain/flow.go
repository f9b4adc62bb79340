package domain

import (
	"errors"
	"time"
)

// Step is the current page of the checkout state machine.
type Step string

const (
	StepAddress Step = "address"
	StepPayment Step = "payment"
)

var ErrWrongStep = errors.New("operation not allowed in the current checkout step")

// Draft is the validated, card-free input handed to order placement.
type Draft struct {
	Shipping ShippingDetails
	Payment  PaymentSelection
}

// Flow is the two-step checkout for one user.
type Flow struct {
	UserID    string
	Step      Step
	Shipping  ShippingDetails
	Payment   PaymentSelection
	LastError string
	UpdatedAt time.Time
}

// NewFlow starts at the address step with the seeded details.
func NewFlow(userID string, seed ShippingDetails, now time.Time) *Flow {
	return &Flow{
		UserID:    userID,
		Step:      StepAddress,
		Shipping:  seed,
		Payment:   PaymentSelection{Method: PaymentCard},
		UpdatedAt: now,
	}
}

// SubmitAddress stores the details and advances to payment when they are valid.
// Invalid details are kept so the form can be re-rendered.
func (f *Flow) SubmitAddress(details ShippingDetails, now time.Time) error {
	f.Shipping = details.Trimmed()
	f.UpdatedAt = now
	if err := f.Shipping.Validate(); err != nil {
		return err
	}
	f.Step = StepPayment
	f.LastError = ""
	return nil
}

// Back returns to the address step without touching entered data.
func (f *Flow) Back(now time.Time) {
	f.Step = StepAddress
	f.UpdatedAt = now
}

// SubmitPayment validates the selection and returns the draft to place.
// The flow stays on the payment step until the caller discards it.
func (f *Flow) SubmitPayment(selection PaymentSelection, now time.Time) (Draft, error) {
	if f.Step != StepPayment {
		return Draft{}, ErrWrongStep
	}
	f.UpdatedAt = now
	f.Payment = selection.Sanitized()
	if err := selection.Validate(); err != nil {
		return Draft{}, err
	}
	if err := f.Shipping.Validate(); err != nil {
		f.Step = StepAddress
		return Draft{}, err
	}
	f.LastError = ""
	return Draft{Shipping: f.Shipping, Payment: f.Payment}, nil
}

// RecordFailure keeps the error for display on the payment step.
func (f *Flow) RecordFailure(err error, now time.Time) {
	if err == nil {
		return
	}
	f.LastError = err.Error()
	f.UpdatedAt = now
}

// Clone returns an independent copy.
func (f *Flow) Clone() *Flow {
	if f == nil {
		return nil
	}
	clone := *f
	clone.Payment = f.Payment.Sanitized()
	return &clone
}
