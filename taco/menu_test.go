package taco

import (
	"context"
	"testing"

	"github.com/calzona/tacostore/dynamock"
	"github.com/calzona/tacostore/store"
)

func TestMenu_ListAndPut(t *testing.T) {
	fake := dynamock.NewFake()
	s, err := store.New(fake, store.Config{TableName: "tacos-test"})
	if err != nil {
		t.Fatalf("store.New failed: %v", err)
	}
	m := NewMenu(s)
	ctx := context.Background()

	empty, err := m.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty menu, got %d items", len(empty))
	}

	seed := []MenuItem{
		{ID: "M1", Name: "Al Pastor", Price: dec("5.00"), Description: "Spit-roasted pork", FoodItemType: FoodTypeTaco},
		{ID: "M10", Name: "Guacamole", Price: dec("1.00"), FoodItemType: FoodTypeTopping},
		{ID: "M20", Name: "Elote", Price: dec("2.50"), FoodItemType: FoodTypeSide},
	}
	for _, item := range seed {
		if err := m.Put(ctx, item); err != nil {
			t.Fatalf("put %s failed: %v", item.ID, err)
		}
	}

	got, err := m.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(got) != len(seed) {
		t.Fatalf("expected %d items, got %d", len(seed), len(got))
	}
	byID := map[string]MenuItem{}
	for _, item := range got {
		byID[item.ID] = item
	}
	for _, want := range seed {
		item, ok := byID[want.ID]
		if !ok {
			t.Errorf("menu item %s missing", want.ID)
			continue
		}
		if item.Name != want.Name || !item.Price.Equal(want.Price) || item.FoodItemType != want.FoodItemType || item.Description != want.Description {
			t.Errorf("menu item %s mismatch: got %+v, want %+v", want.ID, item, want)
		}
	}

	// Put is an upsert.
	if err := m.Put(ctx, MenuItem{ID: "M1", Name: "Al Pastor", Price: dec("5.50"), FoodItemType: FoodTypeTaco}); err != nil {
		t.Fatalf("re-put failed: %v", err)
	}
	got, err = m.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(got) != len(seed) {
		t.Fatalf("upsert changed item count: %d", len(got))
	}
}

func TestMenu_PutRequiresID(t *testing.T) {
	fake := dynamock.NewFake()
	s, err := store.New(fake, store.Config{TableName: "tacos-test"})
	if err != nil {
		t.Fatalf("store.New failed: %v", err)
	}
	if err := NewMenu(s).Put(context.Background(), MenuItem{Name: "Mystery"}); err == nil {
		t.Error("expected error for menu item without id")
	}
}
