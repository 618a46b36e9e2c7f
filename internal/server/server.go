// Package server wires configuration, the document store, the cache, and
// the route table into a running HTTP server. Every handle is passed down
// explicitly; there is no package-level state to reach for.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/shashiranjanraj/karigar/app/controllers"
	"github.com/shashiranjanraj/karigar/app/repositories"
	"github.com/shashiranjanraj/karigar/app/routes"
	"github.com/shashiranjanraj/karigar/config"
	"github.com/shashiranjanraj/karigar/pkg/cache"
	"github.com/shashiranjanraj/karigar/pkg/database"
	"github.com/shashiranjanraj/karigar/pkg/identity"
	"github.com/shashiranjanraj/karigar/pkg/logger"
	"github.com/shashiranjanraj/karigar/pkg/metrics"
	"github.com/shashiranjanraj/karigar/pkg/middleware"
	"github.com/shashiranjanraj/karigar/pkg/reqid"
	"github.com/shashiranjanraj/karigar/pkg/router"
)

const shutdownGrace = 10 * time.Second

// Run boots the server and blocks until SIGINT/SIGTERM, then drains
// in-flight requests and disconnects the store and cache.
func Run() error {
	if err := config.Load(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := database.Connect(ctx, config.MongoURI())
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}()

	db := client.Database(config.MongoDatabase())

	// Redis is an accelerator, not a dependency: a failed connect logs a
	// warning and every cache call degrades to a miss.
	var c *cache.Cache
	if c, err = cache.Connect(ctx, config.RedisAddr(), config.RedisPassword()); err != nil {
		logger.Warn("cache unavailable, continuing without it", "error", err)
		c = nil
	} else {
		defer c.Close()
	}

	if config.LogToMongo() {
		mh, err := logger.NewMongoHandler(db.Collection(repositories.ColLogs), slog.LevelInfo)
		if err != nil {
			logger.Warn("mongo log sink unavailable", "error", err)
		} else {
			logger.SetHandler(logger.NewMultiHandler(logger.L.Handler(), mh))
			defer mh.Close()
		}
	}

	handler, err := buildHandler(ctx, db, c)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildHandler assembles repositories, controllers, middleware, and routes.
func buildHandler(ctx context.Context, db *mongo.Database, c *cache.Cache) (http.Handler, error) {
	users := repositories.NewUserRepository(db.Collection(repositories.ColUsers))
	if err := users.EnsureIndexes(ctx); err != nil {
		return nil, err
	}

	services := repositories.NewServiceRepository(db.Collection(repositories.ColServices))
	reviews := repositories.NewReviewRepository(db.Collection(repositories.ColReviews))
	orders := repositories.NewOrderRepository(db.Collection(repositories.ColOrders))
	directory := repositories.NewDirectory(users, c)

	r := router.New()
	r.Use(
		metrics.Middleware(),
		reqid.Middleware(),
		middleware.Recovery,
		middleware.Logger,
		middleware.CORS(middleware.DefaultCORSOptions()),
		middleware.RateLimit(300, time.Minute),
	)

	routes.RegisterAPI(r, routes.Deps{
		Verifier: identity.NewJWTVerifier(config.IdentitySecret()),
		Roles:    directory,
		Users:    controllers.NewUserController(users, directory),
		Services: controllers.NewServiceController(services, c),
		Reviews:  controllers.NewReviewController(reviews, c),
		Orders:   controllers.NewOrderController(orders, users),
		Health:   healthHandler(db),
	})

	return r.Handler(), nil
}

// healthHandler reports liveness plus a store ping.
func healthHandler(db *mongo.Database) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		body := `{"status":"ok"}`
		if err := db.Client().Ping(ctx, readpref.Primary()); err != nil {
			status = http.StatusServiceUnavailable
			body = `{"status":"degraded","err":"store unreachable"}`
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body)) //nolint:errcheck
	}
}
