package domain

import (
	"fmt"
	"sort"
	"strings"
)

// ShippingDetails is the address step of checkout.
type ShippingDetails struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Street    string
	City      string
	State     string
	ZipCode   string
}

// ValidationError lists every offending field with a short reason.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("validation failed: %s", strings.Join(names, ", "))
}

func (e *ValidationError) add(field, reason string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	e.Fields[field] = reason
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Validate requires every field to be non-blank. Formats are not checked.
func (d ShippingDetails) Validate() error {
	verr := &ValidationError{}
	for _, field := range []struct {
		name  string
		value string
	}{
		{"firstName", d.FirstName},
		{"lastName", d.LastName},
		{"email", d.Email},
		{"phone", d.Phone},
		{"address", d.Street},
		{"city", d.City},
		{"state", d.State},
		{"zipCode", d.ZipCode},
	} {
		if strings.TrimSpace(field.value) == "" {
			verr.add(field.name, "required")
		}
	}
	return verr.orNil()
}

// FullName joins first and last name.
func (d ShippingDetails) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(d.FirstName) + " " + strings.TrimSpace(d.LastName))
}

// FormattedAddress renders "street, city, state zip".
func (d ShippingDetails) FormattedAddress() string {
	return fmt.Sprintf("%s, %s, %s %s",
		strings.TrimSpace(d.Street),
		strings.TrimSpace(d.City),
		strings.TrimSpace(d.State),
		strings.TrimSpace(d.ZipCode))
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (d ShippingDetails) Trimmed() ShippingDetails {
	return ShippingDetails{
		FirstName: strings.TrimSpace(d.FirstName),
		LastName:  strings.TrimSpace(d.LastName),
		Email:     strings.TrimSpace(d.Email),
		Phone:     strings.TrimSpace(d.Phone),
		Street:    strings.TrimSpace(d.Street),
		City:      strings.TrimSpace(d.City),
		State:     strings.TrimSpace(d.State),
		ZipCode:   strings.TrimSpace(d.ZipCode),
	}
}

// SplitName splits a display name into first token and the rest.
func SplitName(name string) (first, last string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
