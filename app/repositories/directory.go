package repositories

import (
	"context"
	"time"

	"github.com/shashiranjanraj/karigar/pkg/cache"
	"github.com/shashiranjanraj/karigar/pkg/metrics"
)

const roleCacheTTL = 30 * time.Second

// Directory answers role lookups for the admin guard, with a short Redis
// cache in front of the users collection. The TTL is the staleness bound on
// demotions; promotions invalidate eagerly via Forget.
type Directory struct {
	users *UserRepository
	cache *cache.Cache
}

func NewDirectory(users *UserRepository, c *cache.Cache) *Directory {
	return &Directory{users: users, cache: c}
}

func roleKey(email string) string { return "role:" + email }

// RoleByEmail resolves the directory role for a verified email.
// A missing record is an error; the guard fails closed on it.
func (d *Directory) RoleByEmail(ctx context.Context, email string) (string, error) {
	var role string
	if d.cache.Get(ctx, roleKey(email), &role) {
		metrics.CacheHits.WithLabelValues("role").Inc()
		return role, nil
	}
	metrics.CacheMisses.WithLabelValues("role").Inc()

	user, err := d.users.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	_ = d.cache.Set(ctx, roleKey(email), user.Role, roleCacheTTL)
	return user.Role, nil
}

// Forget drops the cached role for email. Called after role changes so a
// fresh promotion is visible immediately.
func (d *Directory) Forget(ctx context.Context, email string) {
	_ = d.cache.Del(ctx, roleKey(email))
}
