package taco

import (
	"context"
	"errors"

	"github.com/calzona/tacostore/keys"
	"github.com/calzona/tacostore/store"
)

// Customers manages customer profiles. Profiles are created once and never
// updated by this layer.
type Customers struct {
	store *store.Store
}

// NewCustomers creates a Customers service backed by s.
func NewCustomers(s *store.Store) *Customers {
	return &Customers{store: s}
}

// Create stores a new customer profile. The create-only condition is the
// store's native compare-and-set: a concurrent duplicate email loses with
// store.ErrAlreadyExists and the winning profile is left unchanged.
func (c *Customers) Create(ctx context.Context, customer Customer) error {
	if customer.Email == "" {
		return errors.New("taco: customer requires an email")
	}
	return c.store.PutIfAbsent(ctx, marshalCustomer(customer))
}

// Get retrieves a customer profile by email, or store.ErrNotFound.
func (c *Customers) Get(ctx context.Context, email string) (Customer, error) {
	pk, sk := keys.Customer(email)
	item, err := c.store.Get(ctx, pk, sk)
	if err != nil {
		return Customer{}, err
	}
	return unmarshalCustomer(item)
}
