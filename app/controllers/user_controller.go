// Package controllers holds the HTTP handlers. Each controller depends on
// small consumer-side interfaces over the repositories so handlers can be
// exercised against in-memory fakes.
package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/shashiranjanraj/karigar/app/models"
	"github.com/shashiranjanraj/karigar/app/repositories"
	"github.com/shashiranjanraj/karigar/pkg/bind"
	"github.com/shashiranjanraj/karigar/pkg/identity"
	"github.com/shashiranjanraj/karigar/pkg/logger"
	"github.com/shashiranjanraj/karigar/pkg/response"
)

// UserDirectory is the user-directory surface the user handlers need.
type UserDirectory interface {
	Upsert(ctx context.Context, email, name string) (models.User, bool, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	Promote(ctx context.Context, email string) (models.User, error)
}

// RoleInvalidator drops a cached role after it changes.
type RoleInvalidator interface {
	Forget(ctx context.Context, email string)
}

type noopInvalidator struct{}

func (noopInvalidator) Forget(context.Context, string) {}

type UserController struct {
	dir   UserDirectory
	roles RoleInvalidator
}

func NewUserController(dir UserDirectory, roles RoleInvalidator) *UserController {
	if roles == nil {
		roles = noopInvalidator{}
	}
	return &UserController{dir: dir, roles: roles}
}

// CreateOrUpdate upserts the directory record for the verified identity.
// 201 when the record was created, 200 when it already existed.
func (c *UserController) CreateOrUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := identity.FromCtx(r.Context())
	if !ok {
		response.Unauthorized(w)
		return
	}

	user, created, err := c.dir.Upsert(r.Context(), id.Email, id.Name)
	if err != nil {
		logger.WithCtx(r.Context()).Error("user upsert failed", "email", id.Email, "error", err)
		response.Internal(w)
		return
	}

	if created {
		response.Created(w, user)
		return
	}
	response.Success(w, user)
}

// Current returns the directory record for the verified identity.
func (c *UserController) Current(w http.ResponseWriter, r *http.Request) {
	id, ok := identity.FromCtx(r.Context())
	if !ok {
		response.Unauthorized(w)
		return
	}

	user, err := c.dir.FindByEmail(r.Context(), id.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			response.NotFound(w, "user not found")
			return
		}
		logger.WithCtx(r.Context()).Error("user lookup failed", "email", id.Email, "error", err)
		response.Internal(w)
		return
	}

	response.Success(w, user)
}

type makeAdminRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// MakeAdmin grants the admin role to the email in the request body.
func (c *UserController) MakeAdmin(w http.ResponseWriter, r *http.Request) {
	var req makeAdminRequest
	if err := bind.JSON(r, &req); err != nil {
		response.Unprocessable(w, "a valid email is required")
		return
	}

	user, err := c.dir.Promote(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			response.NotFound(w, "user not found")
			return
		}
		logger.WithCtx(r.Context()).Error("promote failed", "email", req.Email, "error", err)
		response.Internal(w)
		return
	}

	c.roles.Forget(r.Context(), user.Email)
	response.Success(w, user)
}
