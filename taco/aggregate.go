package taco

import (
	"context"
	"fmt"

	"github.com/calzona/tacostore/keys"
	"github.com/calzona/tacostore/store"
)

// headerRow pairs an order shell with the denormalized child id lists read
// off its header item.
type headerRow struct {
	order       Order
	tacoIDs     []string
	sideItemIDs []string
}

// ListByCustomer returns every order belonging to the customer with the full
// taco, topping, and side item graph attached, in sort-key ascending header
// order. A customer with no orders yields an empty slice.
func (o *Orders) ListByCustomer(ctx context.Context, email string) ([]Order, error) {
	pk, _ := keys.Customer(email)
	items, err := o.store.QueryPrefix(ctx, pk, keys.PrefixOrder)
	if err != nil {
		return nil, fmt.Errorf("query order headers: %w", err)
	}

	rows := make([]headerRow, 0, len(items))
	for _, item := range items {
		order, tacoIDs, sideItemIDs, err := unmarshalOrderHeader(item)
		if err != nil {
			return nil, err
		}
		rows = append(rows, headerRow{order: order, tacoIDs: tacoIDs, sideItemIDs: sideItemIDs})
	}

	return o.assemble(ctx, rows)
}

// Get returns a single order with its full child graph, or store.ErrNotFound
// if no header exists for the key.
func (o *Orders) Get(ctx context.Context, email, orderID string) (Order, error) {
	pk, sk := keys.Order(email, orderID)
	item, err := o.store.Get(ctx, pk, sk)
	if err != nil {
		return Order{}, err
	}

	order, tacoIDs, sideItemIDs, err := unmarshalOrderHeader(item)
	if err != nil {
		return Order{}, err
	}

	orders, err := o.assemble(ctx, []headerRow{{order: order, tacoIDs: tacoIDs, sideItemIDs: sideItemIDs}})
	if err != nil {
		return Order{}, err
	}
	return orders[0], nil
}

// assemble performs the fan-out read and in-memory join: one batch get for
// every order's taco and side items, a second for the toppings discovered on
// those tacos, then attachment by identifiers parsed back out of each child's
// key pair. A child id with no stored item is indistinguishable from an
// order that never had the child; the result is best effort.
func (o *Orders) assemble(ctx context.Context, rows []headerRow) ([]Order, error) {
	var childKeys []store.Key
	for _, r := range rows {
		for _, id := range r.tacoIDs {
			pk, sk := keys.Taco(r.order.ID, id)
			childKeys = append(childKeys, store.Key{PK: pk, SK: sk})
		}
		for _, id := range r.sideItemIDs {
			pk, sk := keys.SideItem(r.order.ID, id)
			childKeys = append(childKeys, store.Key{PK: pk, SK: sk})
		}
	}

	childItems, err := o.store.BatchGet(ctx, childKeys)
	if err != nil {
		return nil, fmt.Errorf("batch get order children: %w", err)
	}

	tacos := make(map[keys.Key]Taco)
	sides := make(map[keys.Key]SideItem)
	toppingIDsByTaco := make(map[string][]string)
	var toppingKeys []store.Key

	for k, item := range childItems {
		key, err := keys.Parse(k.PK, k.SK)
		if err != nil {
			return nil, err
		}
		switch key.Kind {
		case keys.KindTaco:
			_, t, toppingIDs, err := unmarshalTacoItem(item)
			if err != nil {
				return nil, err
			}
			tacos[key] = t
			toppingIDsByTaco[t.ID] = toppingIDs
			for _, id := range toppingIDs {
				pk, sk := keys.Topping(t.ID, id)
				toppingKeys = append(toppingKeys, store.Key{PK: pk, SK: sk})
			}
		case keys.KindSideItem:
			_, s, err := unmarshalSideItem(item)
			if err != nil {
				return nil, err
			}
			sides[key] = s
		default:
			return nil, fmt.Errorf("%w: unexpected %s item in order child set", keys.ErrMalformedKey, key.Kind)
		}
	}

	toppingItems, err := o.store.BatchGet(ctx, toppingKeys)
	if err != nil {
		return nil, fmt.Errorf("batch get toppings: %w", err)
	}

	toppings := make(map[keys.Key]Topping)
	for k, item := range toppingItems {
		key, err := keys.Parse(k.PK, k.SK)
		if err != nil {
			return nil, err
		}
		if key.Kind != keys.KindTopping {
			return nil, fmt.Errorf("%w: unexpected %s item in topping set", keys.ErrMalformedKey, key.Kind)
		}
		_, tp, err := unmarshalToppingItem(item)
		if err != nil {
			return nil, err
		}
		toppings[key] = tp
	}

	// Attach children in id-list order so the written sequence survives the
	// round trip.
	orders := make([]Order, 0, len(rows))
	for _, r := range rows {
		order := r.order
		for _, id := range r.tacoIDs {
			t, ok := tacos[keys.Key{Kind: keys.KindTaco, Parent: order.ID, ID: id}]
			if !ok {
				continue
			}
			for _, toppingID := range toppingIDsByTaco[t.ID] {
				if tp, ok := toppings[keys.Key{Kind: keys.KindTopping, Parent: t.ID, ID: toppingID}]; ok {
					t.Toppings = append(t.Toppings, tp)
				}
			}
			order.Tacos = append(order.Tacos, t)
		}
		for _, id := range r.sideItemIDs {
			if s, ok := sides[keys.Key{Kind: keys.KindSideItem, Parent: order.ID, ID: id}]; ok {
				order.SideItems = append(order.SideItems, s)
			}
		}
		orders = append(orders, order)
	}

	return orders, nil
}
