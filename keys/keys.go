// Package keys encodes and decodes the composite partition/sort keys that
// address every item in the table. Each entity kind owns a type prefix; the
// partition key groups an item collection and the sort key disambiguates its
// members. The package is pure string manipulation with no I/O.
package keys

import (
	"errors"
	"fmt"
	"strings"
)

// Type prefixes for raw identifiers.
const (
	PrefixCustomer = "customer:"
	PrefixOrder    = "order:"
	PrefixTaco     = "taco:"
	PrefixTopping  = "topping:"
	PrefixSideItem = "sideitem:"
	PrefixMenu     = "menu:"
)

const (
	// ProfileSK is the fixed sort key marker for a customer profile item.
	ProfileSK = "profile"

	// MenuPK is the fixed partition key grouping the menu catalog.
	MenuPK = "menu"
)

// ErrMalformedKey is returned when a stored key does not carry the expected
// prefix for its position. It signals data corruption and is never retried.
var ErrMalformedKey = errors.New("keys: malformed key")

// Kind identifies the entity type encoded in a key pair.
type Kind int

const (
	KindCustomer Kind = iota
	KindOrder
	KindTaco
	KindTopping
	KindSideItem
	KindMenuItem
)

func (k Kind) String() string {
	switch k {
	case KindCustomer:
		return "customer"
	case KindOrder:
		return "order"
	case KindTaco:
		return "taco"
	case KindTopping:
		return "topping"
	case KindSideItem:
		return "sideitem"
	case KindMenuItem:
		return "menuitem"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Key is the decoded form of a partition/sort key pair.
type Key struct {
	Kind   Kind
	Parent string // owning identifier parsed from the partition key
	ID     string // local identifier parsed from the sort key
}

// Customer returns the key pair for a customer profile item.
func Customer(email string) (pk, sk string) {
	return PrefixCustomer + email, ProfileSK
}

// Order returns the key pair for an order header item. Headers live in the
// owning customer's partition so one prefix query lists every order.
func Order(email, orderID string) (pk, sk string) {
	return PrefixCustomer + email, PrefixOrder + orderID
}

// Taco returns the key pair for a taco child item within an order.
func Taco(orderID, tacoID string) (pk, sk string) {
	return PrefixOrder + orderID, PrefixTaco + tacoID
}

// Topping returns the key pair for a topping child item within a taco.
func Topping(tacoID, toppingID string) (pk, sk string) {
	return PrefixTaco + tacoID, PrefixTopping + toppingID
}

// SideItem returns the key pair for a side item within an order.
func SideItem(orderID, sideItemID string) (pk, sk string) {
	return PrefixOrder + orderID, PrefixSideItem + sideItemID
}

// MenuItem returns the key pair for a menu catalog item.
func MenuItem(id string) (pk, sk string) {
	return MenuPK, PrefixMenu + id
}

// Parse decodes a partition/sort key pair into a typed Key. The decode is
// total: every stored key pair maps to exactly one Kind or ErrMalformedKey.
func Parse(pk, sk string) (Key, error) {
	switch {
	case pk == MenuPK:
		id, ok := cut(sk, PrefixMenu)
		if !ok {
			return Key{}, malformed(pk, sk)
		}
		return Key{Kind: KindMenuItem, ID: id}, nil

	case strings.HasPrefix(pk, PrefixCustomer):
		email, ok := cut(pk, PrefixCustomer)
		if !ok {
			return Key{}, malformed(pk, sk)
		}
		if sk == ProfileSK {
			return Key{Kind: KindCustomer, ID: email}, nil
		}
		if orderID, ok := cut(sk, PrefixOrder); ok {
			return Key{Kind: KindOrder, Parent: email, ID: orderID}, nil
		}
		return Key{}, malformed(pk, sk)

	case strings.HasPrefix(pk, PrefixOrder):
		orderID, ok := cut(pk, PrefixOrder)
		if !ok {
			return Key{}, malformed(pk, sk)
		}
		if tacoID, ok := cut(sk, PrefixTaco); ok {
			return Key{Kind: KindTaco, Parent: orderID, ID: tacoID}, nil
		}
		if sideItemID, ok := cut(sk, PrefixSideItem); ok {
			return Key{Kind: KindSideItem, Parent: orderID, ID: sideItemID}, nil
		}
		return Key{}, malformed(pk, sk)

	case strings.HasPrefix(pk, PrefixTaco):
		tacoID, ok := cut(pk, PrefixTaco)
		if !ok {
			return Key{}, malformed(pk, sk)
		}
		toppingID, ok := cut(sk, PrefixTopping)
		if !ok {
			return Key{}, malformed(pk, sk)
		}
		return Key{Kind: KindTopping, Parent: tacoID, ID: toppingID}, nil

	default:
		return Key{}, malformed(pk, sk)
	}
}

// cut strips prefix from s and reports whether the remainder is a non-empty
// identifier. Identifiers are never empty; a bare prefix is malformed.
func cut(s, prefix string) (string, bool) {
	rest, found := strings.CutPrefix(s, prefix)
	if !found || rest == "" {
		return "", false
	}
	return rest, true
}

func malformed(pk, sk string) error {
	return fmt.Errorf("%w: pk=%q sk=%q", ErrMalformedKey, pk, sk)
}
