package domain

import (
	"slices"
	"time"
)

// CustomerStatus represents lifecycle states for a customer account.
type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "ACTIVE"
	CustomerStatusInactive CustomerStatus = "INACTIVE"
)

// Customer is a registered buyer or seller. It is also the identity record
// the gateway authenticates against.
type Customer struct {
	ID           int
	Name         string
	Email        string
	PasswordHash string
	Status       CustomerStatus
	Roles        []Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsActive reports whether the account may authenticate.
func (c *Customer) IsActive() bool {
	return c.Status == CustomerStatusActive
}

// HasRole reports whether the customer holds role.
func (c *Customer) HasRole(role Role) bool {
	return slices.Contains(c.Roles, role)
}
