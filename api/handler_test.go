package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"

	"github.com/calzona/tacostore/api"
	"github.com/calzona/tacostore/dynamock"
	"github.com/calzona/tacostore/store"
	"github.com/calzona/tacostore/taco"
)

func newTestHandler(t *testing.T) *api.Handler {
	t.Helper()
	fake := dynamock.NewFake()
	s, err := store.New(fake, store.Config{TableName: "tacos-test"})
	if err != nil {
		t.Fatalf("store.New failed: %v", err)
	}
	return api.NewHandler(
		taco.NewCustomers(s),
		taco.NewOrders(s),
		taco.NewMenu(s),
		nil,
	)
}

func bodyRequest(body string) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{Body: body}
}

func queryRequest(params map[string]string) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{QueryStringParameters: params}
}

func checkCORS(t *testing.T, resp events.APIGatewayProxyResponse) {
	t.Helper()
	for _, header := range []string{
		"Access-Control-Allow-Headers",
		"Access-Control-Allow-Origin",
		"Access-Control-Allow-Methods",
	} {
		if resp.Headers[header] != "*" {
			t.Errorf("missing CORS header %s", header)
		}
	}
}

func TestNewHandler(t *testing.T) {
	if api.NewHandler(nil, nil, nil, nil) == nil {
		t.Fatal("expected non-nil Handler")
	}
}

func TestCreateCustomer(t *testing.T) {
	h := newTestHandler(t)
	ctx := context.Background()

	body := `{"email":"ana@example.com","firstName":"Ana","lastName":"Reyes","phoneNumber":"555-0100"}`
	resp, err := h.CreateCustomer(ctx, bodyRequest(body))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, resp.Body)
	}
	if !strings.Contains(resp.Body, "ana@example.com") {
		t.Errorf("expected email in body, got %q", resp.Body)
	}
	checkCORS(t, resp)

	// Duplicate registration conflicts.
	resp, err = h.CreateCustomer(ctx, bodyRequest(body))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for duplicate email, got %d", resp.StatusCode)
	}
}

func TestCreateCustomer_BadRequest(t *testing.T) {
	h := newTestHandler(t)
	ctx := context.Background()

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{not json`},
		{"missing email", `{"firstName":"Ana"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := h.CreateCustomer(ctx, bodyRequest(tt.body))
			if err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", resp.StatusCode)
			}
		})
	}
}

func TestCreateAndGetOrder(t *testing.T) {
	h := newTestHandler(t)
	ctx := context.Background()

	body := `{
		"customerId": "ana@example.com",
		"tacos": [
			{"menuItemId":"M1","name":"Al Pastor","price":"5.00","toppings":[
				{"menuItemId":"M10","name":"Guacamole","price":"1.00"},
				{"menuItemId":"M11","name":"Queso","price":"0.75"}
			]},
			{"menuItemId":"M2","name":"Barbacoa","price":"6.50"}
		],
		"sideItems": [{"menuItemId":"M20","name":"Elote","price":"2.50"}]
	}`
	resp, err := h.CreateOrder(ctx, bodyRequest(body))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, resp.Body)
	}
	checkCORS(t, resp)

	// Body is "Order with ID <id> created successfully."
	fields := strings.Fields(resp.Body)
	if len(fields) < 4 {
		t.Fatalf("unexpected create body %q", resp.Body)
	}
	orderID := fields[3]

	resp, err = h.GetOrder(ctx, queryRequest(map[string]string{
		"email":   "ana@example.com",
		"orderId": orderID,
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, resp.Body)
	}

	var order taco.Order
	if err := json.Unmarshal([]byte(resp.Body), &order); err != nil {
		t.Fatalf("response body is not an order: %v", err)
	}
	if order.ID != orderID {
		t.Errorf("expected order id %s, got %s", orderID, order.ID)
	}
	if order.TotalPrice.String() != "15.75" {
		t.Errorf("expected total 15.75, got %s", order.TotalPrice)
	}
	if len(order.Tacos) != 2 || len(order.SideItems) != 1 {
		t.Errorf("child graph lost: %d tacos, %d sides", len(order.Tacos), len(order.SideItems))
	}
}

func TestGetOrder_Errors(t *testing.T) {
	h := newTestHandler(t)
	ctx := context.Background()

	resp, err := h.GetOrder(ctx, queryRequest(map[string]string{"email": "ana@example.com"}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for missing orderId, got %d", resp.StatusCode)
	}

	resp, err = h.GetOrder(ctx, queryRequest(map[string]string{
		"email":   "ana@example.com",
		"orderId": "missing",
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for missing order, got %d", resp.StatusCode)
	}
}

func TestGetAllOrders(t *testing.T) {
	h := newTestHandler(t)
	ctx := context.Background()

	resp, err := h.GetAllOrders(ctx, queryRequest(map[string]string{"email": "ana@example.com"}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Body != "[]" {
		t.Errorf("expected empty JSON array for customer with no orders, got %q", resp.Body)
	}

	for i := 0; i < 2; i++ {
		if _, err := h.CreateOrder(ctx, bodyRequest(`{"customerId":"ana@example.com"}`)); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	resp, err = h.GetAllOrders(ctx, queryRequest(map[string]string{"email": "ana@example.com"}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	var orders []taco.Order
	if err := json.Unmarshal([]byte(resp.Body), &orders); err != nil {
		t.Fatalf("response body is not an order list: %v", err)
	}
	if len(orders) != 2 {
		t.Errorf("expected 2 orders, got %d", len(orders))
	}

	resp, err = h.GetAllOrders(ctx, queryRequest(nil))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for missing email, got %d", resp.StatusCode)
	}
}

func TestUpdateOrder(t *testing.T) {
	h := newTestHandler(t)
	ctx := context.Background()

	resp, err := h.CreateOrder(ctx, bodyRequest(`{"customerId":"ana@example.com"}`))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	orderID := strings.Fields(resp.Body)[3]

	update := `{"email":"ana@example.com","orderId":"` + orderID + `","status":"IN_PROGRESS"}`
	resp, err = h.UpdateOrder(ctx, bodyRequest(update))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, resp.Body)
	}

	resp, err = h.GetOrder(ctx, queryRequest(map[string]string{
		"email":   "ana@example.com",
		"orderId": orderID,
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	var order taco.Order
	if err := json.Unmarshal([]byte(resp.Body), &order); err != nil {
		t.Fatalf("response body is not an order: %v", err)
	}
	if order.Status != taco.StatusInProgress {
		t.Errorf("status update not visible: %s", order.Status)
	}
}

func TestUpdateOrder_Errors(t *testing.T) {
	h := newTestHandler(t)
	ctx := context.Background()

	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{`, http.StatusBadRequest},
		{"missing fields", `{"email":"ana@example.com"}`, http.StatusBadRequest},
		{"unknown status", `{"email":"a@b.c","orderId":"O1","status":"EATEN"}`, http.StatusBadRequest},
		{"missing order", `{"email":"a@b.c","orderId":"missing","status":"COMPLETED"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := h.UpdateOrder(ctx, bodyRequest(tt.body))
			if err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if resp.StatusCode != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, resp.StatusCode, resp.Body)
			}
		})
	}
}

func TestMenu(t *testing.T) {
	h := newTestHandler(t)
	ctx := context.Background()

	resp, err := h.Menu(ctx, events.APIGatewayProxyRequest{})
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Body != "[]" {
		t.Errorf("expected empty JSON array, got %q", resp.Body)
	}
	checkCORS(t, resp)
}
