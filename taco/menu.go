package taco

import (
	"context"
	"errors"
	"fmt"

	"github.com/calzona/tacostore/keys"
	"github.com/calzona/tacostore/store"
)

// Menu reads the catalog partition. Catalog entries are normally seeded out
// of band; Put exists for seeding and tests.
type Menu struct {
	store *store.Store
}

// NewMenu creates a Menu service backed by s.
func NewMenu(s *store.Store) *Menu {
	return &Menu{store: s}
}

// List returns every item in the menu catalog.
func (m *Menu) List(ctx context.Context) ([]MenuItem, error) {
	items, err := m.store.QueryPrefix(ctx, keys.MenuPK, keys.PrefixMenu)
	if err != nil {
		return nil, fmt.Errorf("query menu: %w", err)
	}
	menu := make([]MenuItem, 0, len(items))
	for _, item := range items {
		mi, err := unmarshalMenuItem(item)
		if err != nil {
			return nil, err
		}
		menu = append(menu, mi)
	}
	return menu, nil
}

// Put upserts a catalog entry.
func (m *Menu) Put(ctx context.Context, item MenuItem) error {
	if item.ID == "" {
		return errors.New("taco: menu item requires an id")
	}
	return m.store.Put(ctx, marshalMenuItem(item))
}
