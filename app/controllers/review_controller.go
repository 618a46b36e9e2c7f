package controllers

import (
	"context"
	"net/http"

	"github.com/shashiranjanraj/karigar/app/models"
	"github.com/shashiranjanraj/karigar/pkg/bind"
	"github.com/shashiranjanraj/karigar/pkg/cache"
	"github.com/shashiranjanraj/karigar/pkg/identity"
	"github.com/shashiranjanraj/karigar/pkg/logger"
	"github.com/shashiranjanraj/karigar/pkg/metrics"
	"github.com/shashiranjanraj/karigar/pkg/response"
)

const reviewsCacheKey = "list:reviews"

// ReviewStore is the store surface the review handlers need.
// Reviews are append-only; there is no update or delete.
type ReviewStore interface {
	Create(ctx context.Context, review *models.Review) error
	All(ctx context.Context) ([]models.Review, error)
}

type ReviewController struct {
	store ReviewStore
	cache *cache.Cache
}

func NewReviewController(store ReviewStore, c *cache.Cache) *ReviewController {
	return &ReviewController{store: store, cache: c}
}

// List returns every review. Public route; the list is briefly cached.
func (c *ReviewController) List(w http.ResponseWriter, r *http.Request) {
	var reviews []models.Review
	if c.cache.Get(r.Context(), reviewsCacheKey, &reviews) {
		metrics.CacheHits.WithLabelValues("list").Inc()
		response.Success(w, reviews)
		return
	}
	metrics.CacheMisses.WithLabelValues("list").Inc()

	reviews, err := c.store.All(r.Context())
	if err != nil {
		logger.WithCtx(r.Context()).Error("review list failed", "error", err)
		response.Internal(w)
		return
	}

	_ = c.cache.Set(r.Context(), reviewsCacheKey, reviews, listCacheTTL)
	response.Success(w, reviews)
}

type createReviewRequest struct {
	Review struct {
		Name    string `json:"name"`
		Comment string `json:"comment" validate:"required"`
		Rating  int    `json:"rating" validate:"gte=0,lte=5"`
	} `json:"review" validate:"required"`
}

// Create inserts a new review stamped with the author's verified email.
func (c *ReviewController) Create(w http.ResponseWriter, r *http.Request) {
	id, _ := identity.FromCtx(r.Context())

	var req createReviewRequest
	if err := bind.JSON(r, &req); err != nil {
		response.Unprocessable(w, "a review with a comment is required")
		return
	}

	review := models.Review{
		Name:    req.Review.Name,
		Comment: req.Review.Comment,
		Rating:  req.Review.Rating,
		Email:   id.Email,
	}
	if err := c.store.Create(r.Context(), &review); err != nil {
		logger.WithCtx(r.Context()).Error("review create failed", "error", err)
		response.Internal(w)
		return
	}

	_ = c.cache.Del(r.Context(), reviewsCacheKey)
	response.Created(w, review)
}
