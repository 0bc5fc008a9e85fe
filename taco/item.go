package taco

import (
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"

	"github.com/calzona/tacostore/keys"
	"github.com/calzona/tacostore/store"
)

// Persisted attribute names. These are the wire shape of existing data and
// must not change.
const (
	attrFirstName   = "FirstName"
	attrLastName    = "LastName"
	attrEmail       = "Email"
	attrPhoneNumber = "PhoneNumber"

	attrOrderDate  = "OrderDate"
	attrStatus     = "Status"
	attrTotalPrice = "TotalPrice"

	attrName        = "Name"
	attrPrice       = "Price"
	attrDescription = "Description"
	attrFoodType    = "FoodItemType"

	attrTacoID     = "TacoId"
	attrToppingID  = "ToppingId"
	attrSideItemID = "SideItemId"
	attrMenuItemID = "MenuItemId"

	// Denormalized child-id collections, kept consistent by the write path
	// so the read path can batch-get children by exact key.
	attrTacoIDs     = "TacoIds"
	attrSideItemIDs = "SideItemIds"
	attrToppingIDs  = "ToppingIds"
)

func stringAttr(v string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: v}
}

func numberAttr(v decimal.Decimal) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: v.String()}
}

func stringListAttr(ids []string) (types.AttributeValue, error) {
	list, err := attributevalue.MarshalList(ids)
	if err != nil {
		return nil, fmt.Errorf("marshal id list: %w", err)
	}
	return &types.AttributeValueMemberL{Value: list}, nil
}

func getString(item store.Item, name string) (string, error) {
	v, ok := item[name].(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("taco: attribute %s missing or not a string", name)
	}
	return v.Value, nil
}

func optString(item store.Item, name string) string {
	if v, ok := item[name].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func getDecimal(item store.Item, name string) (decimal.Decimal, error) {
	v, ok := item[name].(*types.AttributeValueMemberN)
	if !ok {
		return decimal.Zero, fmt.Errorf("taco: attribute %s missing or not a number", name)
	}
	d, err := decimal.NewFromString(v.Value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("taco: attribute %s: %w", name, err)
	}
	return d, nil
}

func getStringList(item store.Item, name string) ([]string, error) {
	av, ok := item[name]
	if !ok {
		return nil, nil
	}
	var out []string
	if err := attributevalue.Unmarshal(av, &out); err != nil {
		return nil, fmt.Errorf("taco: attribute %s: %w", name, err)
	}
	return out, nil
}

// parseAs decodes the item's key pair and requires the given kind.
func parseAs(item store.Item, kind keys.Kind) (keys.Key, error) {
	pk, err := getString(item, store.AttrPK)
	if err != nil {
		return keys.Key{}, err
	}
	sk, err := getString(item, store.AttrSK)
	if err != nil {
		return keys.Key{}, err
	}
	key, err := keys.Parse(pk, sk)
	if err != nil {
		return keys.Key{}, err
	}
	if key.Kind != kind {
		return keys.Key{}, fmt.Errorf("%w: expected %s item at pk=%q sk=%q, got %s",
			keys.ErrMalformedKey, kind, pk, sk, key.Kind)
	}
	return key, nil
}

// --- Customer ---

func marshalCustomer(c Customer) store.Item {
	pk, sk := keys.Customer(c.Email)
	item := store.KeyAttrs(pk, sk)
	item[attrFirstName] = stringAttr(c.FirstName)
	item[attrLastName] = stringAttr(c.LastName)
	item[attrEmail] = stringAttr(c.Email)
	item[attrPhoneNumber] = stringAttr(c.PhoneNumber)
	return item
}

func unmarshalCustomer(item store.Item) (Customer, error) {
	key, err := parseAs(item, keys.KindCustomer)
	if err != nil {
		return Customer{}, err
	}
	return Customer{
		Email:       key.ID,
		FirstName:   optString(item, attrFirstName),
		LastName:    optString(item, attrLastName),
		PhoneNumber: optString(item, attrPhoneNumber),
	}, nil
}

// --- Order header ---

func marshalOrderHeader(o Order) (store.Item, error) {
	pk, sk := keys.Order(o.CustomerID, o.ID)
	item := store.KeyAttrs(pk, sk)
	item[attrOrderDate] = stringAttr(o.OrderDate.UTC().Format(time.RFC3339Nano))
	item[attrStatus] = stringAttr(string(o.Status))
	item[attrTotalPrice] = numberAttr(o.TotalPrice)

	tacoIDs := make([]string, 0, len(o.Tacos))
	for _, t := range o.Tacos {
		tacoIDs = append(tacoIDs, t.ID)
	}
	sideItemIDs := make([]string, 0, len(o.SideItems))
	for _, s := range o.SideItems {
		sideItemIDs = append(sideItemIDs, s.ID)
	}

	var err error
	if item[attrTacoIDs], err = stringListAttr(tacoIDs); err != nil {
		return nil, err
	}
	if item[attrSideItemIDs], err = stringListAttr(sideItemIDs); err != nil {
		return nil, err
	}
	return item, nil
}

// unmarshalOrderHeader decodes an order shell plus the denormalized child id
// lists the read path needs for its batch gets. Child slices start empty,
// never nil.
func unmarshalOrderHeader(item store.Item) (Order, []string, []string, error) {
	key, err := parseAs(item, keys.KindOrder)
	if err != nil {
		return Order{}, nil, nil, err
	}

	dateStr, err := getString(item, attrOrderDate)
	if err != nil {
		return Order{}, nil, nil, err
	}
	orderDate, err := time.Parse(time.RFC3339Nano, dateStr)
	if err != nil {
		return Order{}, nil, nil, fmt.Errorf("taco: order %s: parse %s: %w", key.ID, attrOrderDate, err)
	}

	total, err := getDecimal(item, attrTotalPrice)
	if err != nil {
		return Order{}, nil, nil, err
	}
	tacoIDs, err := getStringList(item, attrTacoIDs)
	if err != nil {
		return Order{}, nil, nil, err
	}
	sideItemIDs, err := getStringList(item, attrSideItemIDs)
	if err != nil {
		return Order{}, nil, nil, err
	}

	order := Order{
		ID:         key.ID,
		CustomerID: key.Parent,
		OrderDate:  orderDate,
		TotalPrice: total,
		Status:     OrderStatus(optString(item, attrStatus)),
		Tacos:      make([]Taco, 0, len(tacoIDs)),
		SideItems:  make([]SideItem, 0, len(sideItemIDs)),
	}
	return order, tacoIDs, sideItemIDs, nil
}

// --- Taco child item ---

func marshalTacoItem(orderID string, t Taco) (store.Item, error) {
	pk, sk := keys.Taco(orderID, t.ID)
	item := store.KeyAttrs(pk, sk)
	item[attrTacoID] = stringAttr(t.ID)
	item[attrMenuItemID] = stringAttr(t.MenuItemID)
	item[attrName] = stringAttr(t.Name)
	item[attrPrice] = numberAttr(t.Price)

	toppingIDs := make([]string, 0, len(t.Toppings))
	for _, topping := range t.Toppings {
		toppingIDs = append(toppingIDs, topping.ID)
	}
	var err error
	if item[attrToppingIDs], err = stringListAttr(toppingIDs); err != nil {
		return nil, err
	}
	return item, nil
}

func unmarshalTacoItem(item store.Item) (orderID string, t Taco, toppingIDs []string, err error) {
	key, err := parseAs(item, keys.KindTaco)
	if err != nil {
		return "", Taco{}, nil, err
	}
	price, err := getDecimal(item, attrPrice)
	if err != nil {
		return "", Taco{}, nil, err
	}
	toppingIDs, err = getStringList(item, attrToppingIDs)
	if err != nil {
		return "", Taco{}, nil, err
	}

	t = Taco{
		ID:         key.ID,
		MenuItemID: optString(item, attrMenuItemID),
		Name:       optString(item, attrName),
		Price:      price,
		Toppings:   make([]Topping, 0, len(toppingIDs)),
	}
	return key.Parent, t, toppingIDs, nil
}

// --- Topping child item ---

func marshalToppingItem(tacoID string, tp Topping) store.Item {
	pk, sk := keys.Topping(tacoID, tp.ID)
	item := store.KeyAttrs(pk, sk)
	item[attrToppingID] = stringAttr(tp.ID)
	item[attrMenuItemID] = stringAttr(tp.MenuItemID)
	item[attrName] = stringAttr(tp.Name)
	item[attrPrice] = numberAttr(tp.Price)
	return item
}

func unmarshalToppingItem(item store.Item) (tacoID string, tp Topping, err error) {
	key, err := parseAs(item, keys.KindTopping)
	if err != nil {
		return "", Topping{}, err
	}
	price, err := getDecimal(item, attrPrice)
	if err != nil {
		return "", Topping{}, err
	}
	tp = Topping{
		ID:         key.ID,
		MenuItemID: optString(item, attrMenuItemID),
		Name:       optString(item, attrName),
		Price:      price,
	}
	return key.Parent, tp, nil
}

// --- Side item ---

func marshalSideItem(orderID string, s SideItem) store.Item {
	pk, sk := keys.SideItem(orderID, s.ID)
	item := store.KeyAttrs(pk, sk)
	item[attrSideItemID] = stringAttr(s.ID)
	item[attrMenuItemID] = stringAttr(s.MenuItemID)
	item[attrName] = stringAttr(s.Name)
	item[attrPrice] = numberAttr(s.Price)
	return item
}

func unmarshalSideItem(item store.Item) (orderID string, s SideItem, err error) {
	key, err := parseAs(item, keys.KindSideItem)
	if err != nil {
		return "", SideItem{}, err
	}
	price, err := getDecimal(item, attrPrice)
	if err != nil {
		return "", SideItem{}, err
	}
	s = SideItem{
		ID:         key.ID,
		MenuItemID: optString(item, attrMenuItemID),
		Name:       optString(item, attrName),
		Price:      price,
	}
	return key.Parent, s, nil
}

// --- Menu item ---

func marshalMenuItem(m MenuItem) store.Item {
	pk, sk := keys.MenuItem(m.ID)
	item := store.KeyAttrs(pk, sk)
	item[attrMenuItemID] = stringAttr(m.ID)
	item[attrName] = stringAttr(m.Name)
	item[attrPrice] = numberAttr(m.Price)
	item[attrFoodType] = stringAttr(string(m.FoodItemType))
	if m.Description != "" {
		item[attrDescription] = stringAttr(m.Description)
	}
	return item
}

func unmarshalMenuItem(item store.Item) (MenuItem, error) {
	key, err := parseAs(item, keys.KindMenuItem)
	if err != nil {
		return MenuItem{}, err
	}
	price, err := getDecimal(item, attrPrice)
	if err != nil {
		return MenuItem{}, err
	}
	return MenuItem{
		ID:           key.ID,
		Name:         optString(item, attrName),
		Price:        price,
		Description:  optString(item, attrDescription),
		FoodItemType: FoodItemType(optString(item, attrFoodType)),
	}, nil
}
