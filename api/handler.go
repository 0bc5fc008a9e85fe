// Package api exposes the ordering services as API Gateway proxy handlers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/calzona/tacostore/store"
	"github.com/calzona/tacostore/taco"
)

// Handler routes API Gateway proxy requests to the ordering services. Each
// exported method is shaped to be registered directly with lambda.Start.
type Handler struct {
	customers *taco.Customers
	orders    *taco.Orders
	menu      *taco.Menu
	logger    *slog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(customers *taco.Customers, orders *taco.Orders, menu *taco.Menu, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		customers: customers,
		orders:    orders,
		menu:      menu,
		logger:    logger,
	}
}

// UpdateOrderRequest is the body accepted by UpdateOrder.
type UpdateOrderRequest struct {
	Email   string           `json:"email"`
	OrderID string           `json:"orderId"`
	Status  taco.OrderStatus `json:"status"`
}

// CreateCustomer registers a new customer profile. A duplicate email is a
// conflict, not a server fault.
func (h *Handler) CreateCustomer(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var customer taco.Customer
	if err := json.Unmarshal([]byte(req.Body), &customer); err != nil {
		return respondText(http.StatusBadRequest, "Invalid customer payload"), nil
	}
	if customer.Email == "" {
		return respondText(http.StatusBadRequest, "Missing email"), nil
	}

	if err := h.customers.Create(ctx, customer); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return respondText(http.StatusConflict, fmt.Sprintf("Customer with email %s already exists.", customer.Email)), nil
		}
		h.logger.Error("failed to create customer", "email", customer.Email, "error", err)
		return respondText(http.StatusInternalServerError, "Error creating customer"), nil
	}

	return respondText(http.StatusCreated, fmt.Sprintf("Customer with email %s created successfully.", customer.Email)), nil
}

// CreateOrder persists a submitted order and its line items.
func (h *Handler) CreateOrder(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var order taco.Order
	if err := json.Unmarshal([]byte(req.Body), &order); err != nil {
		return respondText(http.StatusBadRequest, "Invalid order payload"), nil
	}
	if order.CustomerID == "" {
		return respondText(http.StatusBadRequest, "Missing customerId"), nil
	}

	orderID, err := h.orders.Create(ctx, order)
	if err != nil {
		var partial *taco.PartialWriteError
		if errors.As(err, &partial) {
			h.logger.Error("order written partially",
				"orderID", partial.OrderID,
				"written", partial.Written,
				"error", err,
			)
		} else {
			h.logger.Error("failed to create order", "customerID", order.CustomerID, "error", err)
		}
		return respondText(http.StatusInternalServerError, "Error creating order"), nil
	}

	return respondText(http.StatusCreated, fmt.Sprintf("Order with ID %s created successfully.", orderID)), nil
}

// GetOrder returns one fully assembled order.
func (h *Handler) GetOrder(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	email := req.QueryStringParameters["email"]
	orderID := req.QueryStringParameters["orderId"]
	if email == "" || orderID == "" {
		return respondText(http.StatusBadRequest, "Missing email or orderId"), nil
	}

	order, err := h.orders.Get(ctx, email, orderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return respondText(http.StatusNotFound, "Order not found"), nil
		}
		h.logger.Error("failed to retrieve order", "email", email, "orderID", orderID, "error", err)
		return respondText(http.StatusInternalServerError, "Error retrieving order"), nil
	}

	return respondJSON(http.StatusOK, order)
}

// GetAllOrders returns every order placed by a customer.
func (h *Handler) GetAllOrders(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	email := req.QueryStringParameters["email"]
	if email == "" {
		return respondText(http.StatusBadRequest, "Missing email"), nil
	}

	orders, err := h.orders.ListByCustomer(ctx, email)
	if err != nil {
		h.logger.Error("failed to retrieve orders", "email", email, "error", err)
		return respondText(http.StatusInternalServerError, "Error retrieving orders"), nil
	}

	return respondJSON(http.StatusOK, orders)
}

// UpdateOrder transitions an order's status.
func (h *Handler) UpdateOrder(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var update UpdateOrderRequest
	if err := json.Unmarshal([]byte(req.Body), &update); err != nil {
		return respondText(http.StatusBadRequest, "Invalid update payload"), nil
	}
	if update.Email == "" || update.OrderID == "" || update.Status == "" {
		return respondText(http.StatusBadRequest, "Missing required fields: email, orderId, or status"), nil
	}
	if !update.Status.Valid() {
		return respondText(http.StatusBadRequest, fmt.Sprintf("Unknown status %q", update.Status)), nil
	}

	if err := h.orders.UpdateStatus(ctx, update.Email, update.OrderID, update.Status); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return respondText(http.StatusNotFound, "Order not found"), nil
		}
		h.logger.Error("failed to update order", "email", update.Email, "orderID", update.OrderID, "error", err)
		return respondText(http.StatusInternalServerError, "Error updating order"), nil
	}

	return respondJSON(http.StatusOK, "success")
}

// Menu returns the full menu catalog.
func (h *Handler) Menu(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	items, err := h.menu.List(ctx)
	if err != nil {
		h.logger.Error("failed to retrieve menu", "error", err)
		return respondText(http.StatusInternalServerError, "Error retrieving menu"), nil
	}
	return respondJSON(http.StatusOK, items)
}

func corsHeaders() map[string]string {
	return map[string]string{
		"Access-Control-Allow-Headers": "*",
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Methods": "*",
	}
}

func respondText(status int, body string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    corsHeaders(),
		Body:       body,
	}
}

func respondJSON(status int, v any) (events.APIGatewayProxyResponse, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Headers:    corsHeaders(),
			Body:       "Error encoding response",
		}, nil
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    corsHeaders(),
		Body:       string(body),
	}, nil
}
