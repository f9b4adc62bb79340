package domain

import (
	"errors"
	"strings"
)

// Status enumerates order progression.
type Status string

const (
	StatusPending    Status = "pending"
	StatusPendingCOD Status = "pending_cod"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

var (
	ErrInvalidStatus    = errors.New("order status is invalid")
	ErrStatusTransition = errors.New("order status transition not allowed")
)

var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusPendingCOD: {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
}

// InitialStatus is pending_cod for cash on delivery, pending otherwise.
func InitialStatus(cashOnDelivery bool) Status {
	if cashOnDelivery {
		return StatusPendingCOD
	}
	return StatusPending
}

// ParseStatus accepts the wire form of a status.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPendingCOD, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions exist.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Label is the customer-facing status text.
func (s Status) Label() string {
	if s == StatusPendingCOD {
		return "Pending (Cash on Delivery)"
	}
	raw := string(s)
	if raw == "" {
		return ""
	}
	return strings.ToUpper(raw[:1]) + raw[1:]
}
