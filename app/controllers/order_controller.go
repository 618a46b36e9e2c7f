package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/karigar/app/models"
	"github.com/shashiranjanraj/karigar/app/repositories"
	"github.com/shashiranjanraj/karigar/pkg/bind"
	"github.com/shashiranjanraj/karigar/pkg/identity"
	"github.com/shashiranjanraj/karigar/pkg/logger"
	"github.com/shashiranjanraj/karigar/pkg/response"
)

// OrderStore is the store surface the order handlers need.
type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id string) (models.Order, error)
	List(ctx context.Context, email string) ([]models.OrderWithService, error)
	SetStatus(ctx context.Context, id string, status models.OrderStatus) (models.Order, error)
}

type OrderController struct {
	store OrderStore
	dir   UserDirectory
}

func NewOrderController(store OrderStore, dir UserDirectory) *OrderController {
	return &OrderController{store: store, dir: dir}
}

// List returns orders scoped by the requester's role: an admin sees every
// order, anyone else only their own. A requester with no directory record
// yet is scoped like a regular user.
func (c *OrderController) List(w http.ResponseWriter, r *http.Request) {
	id, ok := identity.FromCtx(r.Context())
	if !ok {
		response.Unauthorized(w)
		return
	}

	scope := id.Email
	user, err := c.dir.FindByEmail(r.Context(), id.Email)
	if err == nil && user.Role == models.RoleAdmin {
		scope = ""
	} else if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		logger.WithCtx(r.Context()).Error("order scope lookup failed", "email", id.Email, "error", err)
		response.Internal(w)
		return
	}

	orders, err := c.store.List(r.Context(), scope)
	if err != nil {
		logger.WithCtx(r.Context()).Error("order list failed", "error", err)
		response.Internal(w)
		return
	}

	response.Success(w, orders)
}

type createOrderRequest struct {
	Order struct {
		ServiceID string `json:"service_id" validate:"required"`
		Note      string `json:"note"`
	} `json:"order" validate:"required"`
}

// Create inserts a new pending order stamped with the customer's verified
// email. The status in the request body, if any, is ignored.
func (c *OrderController) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := identity.FromCtx(r.Context())
	if !ok {
		response.Unauthorized(w)
		return
	}

	var req createOrderRequest
	if err := bind.JSON(r, &req); err != nil {
		response.Unprocessable(w, "an order with a service reference is required")
		return
	}

	serviceID, err := primitive.ObjectIDFromHex(req.Order.ServiceID)
	if err != nil {
		response.Unprocessable(w, "invalid service reference")
		return
	}

	order := models.Order{
		ServiceID: serviceID,
		Email:     id.Email,
		Note:      req.Order.Note,
	}
	if err := c.store.Create(r.Context(), &order); err != nil {
		logger.WithCtx(r.Context()).Error("order create failed", "error", err)
		response.Internal(w)
		return
	}

	response.Created(w, order)
}

type updateOrderRequest struct {
	Order struct {
		Status string `json:"status" validate:"required"`
	} `json:"order" validate:"required"`
}

// UpdateStatus moves an order through its lifecycle. The requested status
// must be a legal transition from the order's current status.
func (c *OrderController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateOrderRequest
	if err := bind.JSON(r, &req); err != nil {
		response.Unprocessable(w, "an order status is required")
		return
	}

	orderID := chi.URLParam(r, "id")
	order, err := c.store.FindByID(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			response.NotFound(w, "order not found")
			return
		}
		logger.WithCtx(r.Context()).Error("order lookup failed", "error", err)
		response.Internal(w)
		return
	}

	next := models.OrderStatus(req.Order.Status)
	if err := order.Status.Transition(next); err != nil {
		response.Unprocessable(w, "invalid status transition")
		return
	}

	updated, err := c.store.SetStatus(r.Context(), orderID, next)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			response.NotFound(w, "order not found")
			return
		}
		logger.WithCtx(r.Context()).Error("order update failed", "error", err)
		response.Internal(w)
		return
	}

	response.Success(w, updated)
}
