package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/karigar/app/models"
	"github.com/shashiranjanraj/karigar/app/repositories"
	"github.com/shashiranjanraj/karigar/pkg/bind"
	"github.com/shashiranjanraj/karigar/pkg/cache"
	"github.com/shashiranjanraj/karigar/pkg/identity"
	"github.com/shashiranjanraj/karigar/pkg/logger"
	"github.com/shashiranjanraj/karigar/pkg/metrics"
	"github.com/shashiranjanraj/karigar/pkg/response"
)

const (
	servicesCacheKey = "list:services"
	listCacheTTL     = 30 * time.Second
)

// ServiceStore is the store surface the service handlers need.
type ServiceStore interface {
	Create(ctx context.Context, service *models.Service) error
	All(ctx context.Context) ([]models.Service, error)
	FindByID(ctx context.Context, id string) (models.Service, error)
	Delete(ctx context.Context, id string) (models.Service, error)
}

type ServiceController struct {
	store ServiceStore
	cache *cache.Cache
}

func NewServiceController(store ServiceStore, c *cache.Cache) *ServiceController {
	return &ServiceController{store: store, cache: c}
}

// List returns every service. Public route; the list is briefly cached.
func (c *ServiceController) List(w http.ResponseWriter, r *http.Request) {
	var services []models.Service
	if c.cache.Get(r.Context(), servicesCacheKey, &services) {
		metrics.CacheHits.WithLabelValues("list").Inc()
		response.Success(w, services)
		return
	}
	metrics.CacheMisses.WithLabelValues("list").Inc()

	services, err := c.store.All(r.Context())
	if err != nil {
		logger.WithCtx(r.Context()).Error("service list failed", "error", err)
		response.Internal(w)
		return
	}

	_ = c.cache.Set(r.Context(), servicesCacheKey, services, listCacheTTL)
	response.Success(w, services)
}

type createServiceRequest struct {
	Service struct {
		Title       string  `json:"title" validate:"required"`
		Description string  `json:"description"`
		Price       float64 `json:"price" validate:"gte=0"`
	} `json:"service" validate:"required"`
}

// Create inserts a new service stamped with the creating admin's email.
// Any email in the request body is ignored.
func (c *ServiceController) Create(w http.ResponseWriter, r *http.Request) {
	id, _ := identity.FromCtx(r.Context())

	var req createServiceRequest
	if err := bind.JSON(r, &req); err != nil {
		response.Unprocessable(w, "a service with a title is required")
		return
	}

	service := models.Service{
		Title:       req.Service.Title,
		Description: req.Service.Description,
		Price:       req.Service.Price,
		Email:       id.Email,
	}
	if err := c.store.Create(r.Context(), &service); err != nil {
		logger.WithCtx(r.Context()).Error("service create failed", "error", err)
		response.Internal(w)
		return
	}

	_ = c.cache.Del(r.Context(), servicesCacheKey)
	response.Created(w, service)
}

// Get returns one service by id.
func (c *ServiceController) Get(w http.ResponseWriter, r *http.Request) {
	service, err := c.store.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			response.NotFound(w, "service not found")
			return
		}
		logger.WithCtx(r.Context()).Error("service lookup failed", "error", err)
		response.Internal(w)
		return
	}

	response.Success(w, service)
}

// Delete removes one service by id and returns the removed record.
func (c *ServiceController) Delete(w http.ResponseWriter, r *http.Request) {
	service, err := c.store.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			response.NotFound(w, "service not found")
			return
		}
		logger.WithCtx(r.Context()).Error("service delete failed", "error", err)
		response.Internal(w)
		return
	}

	_ = c.cache.Del(r.Context(), servicesCacheKey)
	response.Success(w, service)
}
