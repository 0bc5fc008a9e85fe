package taco

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/calzona/tacostore/keys"
)

// PartialWriteError reports an order whose header was persisted but whose
// child items were not all written. No compensating rollback is attempted;
// the header exists with an incomplete child set until a repair pass
// reconciles it.
type PartialWriteError struct {
	OrderID string
	Written int // child items persisted before the failure
	Err     error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("taco: order %s partially written (%d child items persisted): %v",
		e.OrderID, e.Written, e.Err)
}

func (e *PartialWriteError) Unwrap() error { return e.Err }

// Create persists a new order and returns its identifier. Identifiers absent
// from the submitted order are generated here, once, and are immutable
// thereafter. The total price is computed before writing and frozen on the
// header.
//
// The write sequence is header first, then each taco, its toppings, and the
// side items. The steps share no transaction: a failure after the header
// succeeds surfaces as *PartialWriteError and leaves the partial state in
// the store.
func (o *Orders) Create(ctx context.Context, order Order) (string, error) {
	if order.CustomerID == "" {
		return "", errors.New("taco: order requires a customer id")
	}

	if order.ID == "" {
		order.ID = o.newID()
	}
	for i := range order.Tacos {
		if order.Tacos[i].ID == "" {
			order.Tacos[i].ID = o.newID()
		}
		for j := range order.Tacos[i].Toppings {
			if order.Tacos[i].Toppings[j].ID == "" {
				order.Tacos[i].Toppings[j].ID = o.newID()
			}
		}
	}
	for i := range order.SideItems {
		if order.SideItems[i].ID == "" {
			order.SideItems[i].ID = o.newID()
		}
	}

	order.OrderDate = o.tick()
	if order.Status == "" {
		order.Status = StatusPlaced
	}
	order.TotalPrice = TotalPrice(order)

	header, err := marshalOrderHeader(order)
	if err != nil {
		return "", err
	}
	if err := o.store.Put(ctx, header); err != nil {
		return "", fmt.Errorf("write order header: %w", err)
	}

	written := 0
	writeChild := func(item map[string]types.AttributeValue) error {
		if err := o.store.Put(ctx, item); err != nil {
			return &PartialWriteError{OrderID: order.ID, Written: written, Err: err}
		}
		written++
		return nil
	}

	for _, t := range order.Tacos {
		item, err := marshalTacoItem(order.ID, t)
		if err != nil {
			return "", &PartialWriteError{OrderID: order.ID, Written: written, Err: err}
		}
		if err := writeChild(item); err != nil {
			return "", err
		}
		for _, topping := range t.Toppings {
			if err := writeChild(marshalToppingItem(t.ID, topping)); err != nil {
				return "", err
			}
		}
	}
	for _, s := range order.SideItems {
		if err := writeChild(marshalSideItem(order.ID, s)); err != nil {
			return "", err
		}
	}

	return order.ID, nil
}

// UpdateStatus transitions the status of an existing order. The existence
// precondition lives at the store, so a missing order surfaces as
// store.ErrNotFound without a read-then-write race.
func (o *Orders) UpdateStatus(ctx context.Context, email, orderID string, status OrderStatus) error {
	if !status.Valid() {
		return fmt.Errorf("taco: invalid order status %q", status)
	}
	pk, sk := keys.Order(email, orderID)
	return o.store.UpdateField(ctx, pk, sk, attrStatus,
		&types.AttributeValueMemberS{Value: string(status)})
}
