package taco

import "github.com/shopspring/decimal"

// TotalPrice computes the authoritative total for an order: the sum of every
// taco price, every topping price on every taco, and every side item price.
// Absent child slices contribute zero. Decimal arithmetic keeps repeated
// recomputation exact.
func TotalPrice(o Order) decimal.Decimal {
	total := decimal.Zero
	for _, t := range o.Tacos {
		total = total.Add(t.Price)
		for _, topping := range t.Toppings {
			total = total.Add(topping.Price)
		}
	}
	for _, s := range o.SideItems {
		total = total.Add(s.Price)
	}
	return total
}
