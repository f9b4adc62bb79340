package application

import (
	"errors"
	"fmt"

	checkoutdomain "github.com/Apurer/freshcart-api/internal/domains/checkout/domain"
	"github.com/Apurer/freshcart-api/internal/domains/orders/domain"
	"github.com/Apurer/freshcart-api/internal/domains/orders/ports"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput        = errors.New("invalid order input")
	ErrUnauthenticated     = errors.New("sign in to place an order")
	ErrForbidden           = errors.New("order access denied")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrSubmissionInFlight  = errors.New("an order submission is already in progress")
	ErrIdempotencyConflict = ports.ErrIdempotencyConflict
	ErrOrderCreateFailed   = errors.New("failed to create order")
	ErrOrderLinesFailed    = errors.New("failed to create order items")
	ErrOrderNotFound       = errors.New("order not found")
	ErrEmailSendFailed     = errors.New("failed to send order confirmation")
)

// Step names used in logs, traces and error payloads.
const (
	StepProfileSync = "profile_sync"
	StepOrderCreate = "order_create"
	StepOrderLines  = "order_lines"
	StepEmail       = "confirmation_email"
)

// FailedStep reports which placement step err came from, if any.
func FailedStep(err error) string {
	switch {
	case errors.Is(err, ErrOrderCreateFailed):
		return StepOrderCreate
	case errors.Is(err, ErrOrderLinesFailed):
		return StepOrderLines
	case errors.Is(err, ErrEmailSendFailed):
		return StepEmail
	}
	return ""
}

// Retryable reports whether the customer may simply retry the same action.
func Retryable(err error) bool {
	return errors.Is(err, ErrOrderCreateFailed) ||
		errors.Is(err, ErrOrderLinesFailed) ||
		errors.Is(err, ErrEmailSendFailed)
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ports.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrOrderNotFound, err)
	}
	var verr *checkoutdomain.ValidationError
	if errors.As(err, &verr) ||
		errors.Is(err, checkoutdomain.ErrUnknownPaymentMethod) ||
		errors.Is(err, domain.ErrInvalidStatus) ||
		errors.Is(err, domain.ErrStatusTransition) ||
		errors.Is(err, domain.ErrTotalMismatch) ||
		errors.Is(err, domain.ErrNoLines) ||
		errors.Is(err, domain.ErrInvalidLine) ||
		errors.Is(err, domain.ErrNegativeAmount) ||
		errors.Is(err, domain.ErrMissingID) ||
		errors.Is(err, domain.ErrMissingUser) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
