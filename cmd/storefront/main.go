package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/nijercart/storefront/internal/backendfn"
	cartcache "github.com/nijercart/storefront/internal/cart/cache"
	cartconsumer "github.com/nijercart/storefront/internal/cart/consumer"
	cartrepo "github.com/nijercart/storefront/internal/cart/repository"
	cartservice "github.com/nijercart/storefront/internal/cart/service"
	catalogrepo "github.com/nijercart/storefront/internal/catalog/repository"
	"github.com/nijercart/storefront/internal/checkout"
	"github.com/nijercart/storefront/internal/config"
	"github.com/nijercart/storefront/internal/events"
	"github.com/nijercart/storefront/internal/httpapi"
	ordersrepo "github.com/nijercart/storefront/internal/orders/repository"
	pricingrepo "github.com/nijercart/storefront/internal/pricing/repository"
	wishlistrepo "github.com/nijercart/storefront/internal/wishlist/repository"
	wishlistservice "github.com/nijercart/storefront/internal/wishlist/service"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Postgres holds the catalog, promo codes, orders and the outbox.
	// One pool serves all three repositories so order creation can touch
	// promo_codes in the same transaction.
	cred := &ordersrepo.Credentials{
		Host:              cfg.Postgres.Host,
		Port:              cfg.Postgres.Port,
		User:              cfg.Postgres.User,
		Password:          cfg.Postgres.Password,
		DBName:            cfg.Postgres.DBName,
		MigrationsDirPath: cfg.Postgres.MigrationsDirPath,
	}
	orderRepo, err := ordersrepo.NewRepository(cred)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to postgres")
	}
	defer orderRepo.Close()

	if err := orderRepo.RunMigrations(cred); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}
	log.WithField("host", cfg.Postgres.Host).Info("connected to postgres")

	bookRepo := catalogrepo.NewRepository(orderRepo.DB())
	promoRepo := pricingrepo.NewRepository(orderRepo.DB())

	// MongoDB holds carts and wishlist entries.
	mongoDB, err := cartrepo.ConnectMongoDB(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to mongodb")
	}
	defer mongoDB.Client().Disconnect(context.Background())

	if err := cartrepo.CreateIndexes(ctx, mongoDB); err != nil {
		log.WithError(err).Fatal("failed to create cart indexes")
	}
	if err := wishlistrepo.CreateIndexes(ctx, mongoDB); err != nil {
		log.WithError(err).Fatal("failed to create wishlist indexes")
	}
	log.WithField("uri", cfg.Mongo.URI).Info("connected to mongodb")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.WithError(err).Fatal("redis connection failed")
	}
	log.Info("redis ping succeeded")

	cartRepository := cartrepo.NewMongoRepository(mongoDB)
	cache := cartcache.NewRedisCache(redisClient)
	cartSvc := cartservice.NewCartService(cartRepository, cache, bookRepo, log)

	wishlistSvc := wishlistservice.NewWishlistService(wishlistrepo.NewMongoRepository(mongoDB), log)

	checkoutSvc := checkout.NewCheckoutService(orderRepo, cartSvc, bookRepo, promoRepo, log)

	// Outbox poller publishes committed order events; the consumer clears
	// the buyer's cart when an order lands.
	poller := events.NewOutboxPoller(orderRepo, log, cfg.Kafka.Brokers...)
	go poller.Run(ctx)
	defer poller.Close()

	consumer := cartconsumer.NewConsumer(cartRepository, cache, log, cfg.Kafka.Brokers...)
	go consumer.Run(ctx)
	defer consumer.Close()

	backendClient := backendfn.NewClient(cfg.Backend.BaseURL, cfg.Backend.APIKey, log)

	handlers := httpapi.Handlers{
		Catalog:    httpapi.NewCatalogHandler(bookRepo, cfg.RequestTimeout),
		Cart:       httpapi.NewCartHandler(cartSvc, cfg.RequestTimeout),
		Wishlist:   httpapi.NewWishlistHandler(wishlistSvc, bookRepo, cfg.RequestTimeout),
		Promo:      httpapi.NewPromoHandler(checkoutSvc, cartSvc, cfg.RequestTimeout),
		Checkout:   httpapi.NewCheckoutHandler(checkoutSvc, cfg.RequestTimeout),
		Orders:     httpapi.NewOrdersHandler(orderRepo, cfg.RequestTimeout),
		Newsletter: httpapi.NewNewsletterHandler(backendClient, cfg.RequestTimeout),
	}

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: httpapi.NewRouter(handlers, cfg.RequestTimeout),
	}

	go func() {
		log.WithField("port", cfg.HTTPPort).Info("storefront listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down storefront...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}

	log.Info("storefront stopped")
}
