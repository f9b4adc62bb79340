package domain

import (
	"strings"
	"time"
)

// Address is the structured shipping address kept on a profile.
type Address struct {
	Street  string
	City    string
	State   string
	ZipCode string
}

// IsZero reports whether no address field is set.
func (a Address) IsZero() bool {
	return a.Street == "" && a.City == "" && a.State == "" && a.ZipCode == ""
}

// Formatted renders "street, city, state zip".
func (a Address) Formatted() string {
	if a.IsZero() {
		return ""
	}
	return strings.TrimSpace(a.Street + ", " + a.City + ", " + strings.TrimSpace(a.State+" "+a.ZipCode))
}

// ParseLegacyAddress recovers fields from a single "street, city, state zip" string.
// Missing segments are left empty.
func ParseLegacyAddress(raw string) Address {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Address{}
	}
	parts := strings.Split(raw, ", ")
	var addr Address
	addr.Street = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		addr.City = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		tail := strings.Fields(strings.Join(parts[2:], " "))
		if len(tail) > 0 {
			addr.State = tail[0]
		}
		if len(tail) > 1 {
			addr.ZipCode = strings.Join(tail[1:], " ")
		}
	}
	return addr
}

// Profile holds the customer's contact and shipping details.
type Profile struct {
	UserID    string
	FullName  string
	Phone     string
	Address   Address
	UpdatedAt time.Time
}

// FormattedAddress is the address as a single line.
func (p Profile) FormattedAddress() string {
	return p.Address.Formatted()
}

// Trimmed returns the profile with whitespace stripped from every field.
func (p Profile) Trimmed() Profile {
	p.FullName = strings.TrimSpace(p.FullName)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Address = Address{
		Street:  strings.TrimSpace(p.Address.Street),
		City:    strings.TrimSpace(p.Address.City),
		State:   strings.TrimSpace(p.Address.State),
		ZipCode: strings.TrimSpace(p.Address.ZipCode),
	}
	return p
}
