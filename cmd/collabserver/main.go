// collabserver runs the real-time collaborative editing core: Redis
// for document snapshots and event fan-out, optional Postgres for the
// durable operation archive, and an HTTP+WebSocket surface for thin
// clients.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang/glog"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/Vib3Cod3r/saleshub-sub000/internal/collab"
	"github.com/Vib3Cod3r/saleshub-sub000/internal/gateway"
	"github.com/Vib3Cod3r/saleshub-sub000/internal/httpapi"
	"github.com/Vib3Cod3r/saleshub-sub000/internal/store"
)

const (
	sweepInterval       = time.Minute
	inactivityThreshold = 30 * time.Minute
)

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	flag.Parse()
	ctx := context.Background()

	// --- Redis: snapshot store and pub/sub transport ---
	rdb := redis.NewClient(&redis.Options{Addr: getenv("REDIS_ADDR", "localhost:6379")})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("Could not connect to Redis: %v", err)
	}
	glog.Info("connected to Redis")

	// --- Postgres: operation archive, optional ---
	var archive collab.OperationArchive
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		pool, err := pgxpool.New(ctx, dbURL)
		if err != nil {
			log.Fatalf("Unable to connect to database: %v", err)
		}
		defer pool.Close()
		opArchive := store.NewOperationArchive(pool)
		if err := opArchive.Init(ctx); err != nil {
			log.Fatalf("Unable to initialize operation archive: %v", err)
		}
		archive = opArchive
		glog.Info("connected to PostgreSQL, operation archive enabled")
	} else {
		glog.Warning("DATABASE_URL unset, operation archive disabled")
	}

	registry := collab.NewRegistry()
	coord := collab.NewCoordinator(store.NewRedisStore(rdb), gateway.NewRedisGateway(rdb), registry, archive)

	sweeper := collab.NewSweeper(coord, sweepInterval, inactivityThreshold)
	sweeper.Start()
	defer sweeper.Stop()

	router := httpapi.NewRouter(coord, gateway.NewHub(rdb))

	addr := getenv("LISTEN_ADDR", ":8081")
	srv := &http.Server{Addr: addr, Handler: router}
	go func() {
		glog.Infof("collaboration server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	glog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		glog.Errorf("shutdown: %v", err)
	}
}
