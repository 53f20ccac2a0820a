package main // Entry point package

import (
	"log"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Avinashkumar1307/project-grap/internal/config"
	"github.com/Avinashkumar1307/project-grap/internal/database"
	"github.com/Avinashkumar1307/project-grap/internal/handler"
	"github.com/Avinashkumar1307/project-grap/internal/middleware"
	"github.com/Avinashkumar1307/project-grap/internal/payment"
	"github.com/Avinashkumar1307/project-grap/internal/queue"
	"github.com/Avinashkumar1307/project-grap/internal/repository"
	"github.com/Avinashkumar1307/project-grap/internal/router"
	"github.com/Avinashkumar1307/project-grap/internal/storage"
	"github.com/Avinashkumar1307/project-grap/internal/worker"
)

func main() {
	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	if err := database.Migrate(db, "migrations"); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	// Redis backs the response cache and rate limiter; both turn into
	// no-ops when the client is nil.
	rdb := config.NewRedisClient()

	users := repository.NewUserRepo(db)
	projects := repository.NewProjectRepo(db)
	requests := repository.NewCustomRequestRepo(db)
	txns := repository.NewTransactionRepo(db)
	purchases := repository.NewPurchaseRepo(db)
	events := repository.NewWebhookEventRepo(db)

	var gateway *payment.Gateway
	if cfg.RazorpayKeyID != "" && cfg.RazorpayKeySecret != "" {
		gateway = payment.NewGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.RazorpayWebhookSecret)
	} else {
		log.Println("razorpay credentials missing; payment endpoints disabled")
	}

	var store *storage.Store
	if cfg.S3Endpoint != "" {
		store, err = storage.New(cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3Region, cfg.S3UseSSL)
		if err != nil {
			log.Printf("object storage unavailable: %v; upload endpoints disabled", err)
		}
	}

	authH := handler.NewAuthHandler(cfg, users)
	projectH := handler.NewProjectHandler(projects, store)
	requestH := handler.NewCustomRequestHandler(requests)
	txnH := handler.NewTransactionHandler(txns, projects, requests, purchases, events, gateway)
	purchaseH := handler.NewPurchaseHandler(purchases)

	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	limiterMW := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret, limiterMW)
	router.RegisterProjects(e, projectH, cfg.JWTSecret, cacheMW)
	router.RegisterCustomRequests(e, requestH, cfg.JWTSecret)
	router.RegisterTransactions(e, txnH, cfg.JWTSecret, limiterMW)
	router.RegisterPurchases(e, purchaseH, cfg.JWTSecret)

	// Payment events land on the broker; the consumer writes the audit log.
	go func() {
		if err := queue.StartPaymentConsumer(); err != nil {
			log.Printf("payment consumer stopped: %v", err)
		}
	}()

	reconciler := worker.NewReconciler(txns,
		time.Duration(cfg.PendingTxnTTLMin)*time.Minute, cfg.ReconcileSpec)
	if err := reconciler.Start(); err != nil {
		log.Fatalf("reconciler: %v", err)
	}
	defer reconciler.Stop()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
