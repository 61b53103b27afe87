/**
 * @description
 * This is the main entry point for the savings-service. It is responsible for
 * initializing all components of the service: configuration, the seeded
 * in-memory catalog repository, the tag-based cache (Redis when configured,
 * in-process otherwise), the bot-verification client, the revalidation
 * notifier, the optional event producer, the core application service, and the
 * HTTP server. It wires everything together and starts the service.
 *
 * @dependencies
 * - log, net/http: Standard Go libraries for logging and HTTP server functionality.
 * - github.com/joho/godotenv: To load .env files for local development.
 * - github.com/redis/go-redis/v9: Optional cache backend.
 * - internal/api, internal/app, internal/cache, internal/config, internal/store:
 *   Internal packages for the service.
 * - pkg/catalogclient, pkg/rabbitmq, pkg/recaptcha, pkg/revalidate: Collaborator clients.
 */

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/cajadigital/savings-service/internal/api"
	"github.com/cajadigital/savings-service/internal/app"
	"github.com/cajadigital/savings-service/internal/cache"
	"github.com/cajadigital/savings-service/internal/config"
	"github.com/cajadigital/savings-service/internal/store"
	"github.com/cajadigital/savings-service/pkg/catalogclient"
	"github.com/cajadigital/savings-service/pkg/rabbitmq"
	"github.com/cajadigital/savings-service/pkg/recaptcha"
	"github.com/cajadigital/savings-service/pkg/revalidate"
)

func main() {
	// Load .env for local development; absence is fine in deployed environments.
	if err := godotenv.Load(); err != nil {
		log.Println("level=info component=bootstrap msg=\"no .env file found; using environment\"")
	}

	// Load application configuration from environment variables.
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"config load failed\" err=%v", err)
	}

	log.Printf("level=info component=bootstrap msg=\"starting savings-service\" port=%s bot_verification=%t revalidation=%t",
		cfg.ServerPort, cfg.BotVerificationEnabled, cfg.RevalidationEnabled)

	// Seed the in-memory catalog from the embedded dataset. The repository is
	// the single owner of the collections for the life of the process.
	repository, err := store.NewSeededRepository()
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"catalog seed failed\" err=%v", err)
	}
	log.Println("level=info component=bootstrap msg=\"catalog seeded\"")

	// Pick the cache backend: Redis when a URL is configured and reachable,
	// otherwise the in-process cache. A failed probe degrades, never aborts.
	var tagCache cache.TagCache = cache.NewMemory()
	if cfg.RedisURL != "" {
		redisOptions, parseErr := redis.ParseURL(cfg.RedisURL)
		if parseErr != nil {
			log.Printf("level=warn component=bootstrap msg=\"redis url parse failed; using in-process cache\" err=%v", parseErr)
		} else {
			redisClient := redis.NewClient(redisOptions)
			pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
			if pingErr := redisClient.Ping(pingCtx).Err(); pingErr != nil {
				log.Printf("level=warn component=bootstrap msg=\"redis ping failed; using in-process cache\" err=%v", pingErr)
				redisClient.Close()
			} else {
				defer redisClient.Close()
				tagCache = cache.NewRedis(redisClient, cfg.CachePrefix)
				log.Println("level=info component=bootstrap msg=\"redis cache connected\"")
			}
			cancelPing()
		}
	}

	// Initialize the optional RabbitMQ producer for catalog-change events.
	// This service only publishes, so a missing broker is not fatal.
	var eventProducer *rabbitmq.EventProducer
	if cfg.RabbitMQURL != "" {
		eventProducer, err = rabbitmq.NewEventProducer(cfg.RabbitMQURL)
		if err != nil {
			log.Printf("level=warn component=bootstrap msg=\"rabbitmq producer unavailable; catalog events disabled\" err=%v", err)
			eventProducer = nil
		} else {
			defer eventProducer.Close()
			log.Println("level=info component=bootstrap msg=\"rabbitmq producer connected\"")
		}
	}

	// Outbound revalidation webhook toward the frontend cache.
	var notifier revalidate.Notifier = revalidate.Noop{}
	if cfg.RevalidationEnabled {
		notifier = revalidate.NewWebhook(cfg.FrontendURL, cfg.RevalidationSecret)
	} else {
		log.Println("level=info component=bootstrap msg=\"frontend revalidation not configured; writes will not notify\"")
	}

	// Bot verification: real scoring service when a secret is configured,
	// simulated sentinel mode otherwise.
	verifier := recaptcha.NewClient(cfg.RecaptchaSecretKey, cfg.RecaptchaMinScore)
	var tokens recaptcha.TokenSource = recaptcha.SimulatedSource{}
	if cfg.BotVerificationEnabled {
		log.Println("level=info component=bootstrap msg=\"recaptcha verification enabled\"")
	} else {
		log.Println("level=info component=bootstrap msg=\"recaptcha running in simulated mode\"")
	}

	// Initialize the core application service with its dependencies.
	catalogService := app.NewService(repository, notifier, eventProducer)

	// The site flows read the catalog through the read facade when an external
	// catalog API is configured; otherwise they read the owned repository.
	var productSource api.ProductSource = api.ProductSourceFunc(catalogService.Products)
	if cfg.CatalogAPIURL != "" {
		facade := catalogclient.NewClient(cfg.CatalogAPIURL, tagCache, time.Duration(cfg.CatalogCacheTTLSeconds)*time.Second)
		productSource = facade
		log.Printf("level=info component=bootstrap msg=\"catalog facade enabled\" url=%s ttl_seconds=%d", cfg.CatalogAPIURL, cfg.CatalogCacheTTLSeconds)
	}

	// Initialize the API handlers and router.
	handlers := api.NewHandlers(catalogService, productSource, tokens, verifier, tagCache, cfg.RevalidationSecret)
	router := api.Routes(handlers, cfg.AllowedOrigins)

	// Start the HTTP server.
	serverAddr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("level=info component=http msg=\"server listening\" addr=%s", serverAddr)

	server := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("level=fatal component=http msg=\"server stopped unexpectedly\" err=%v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Println("level=info component=http msg=\"shutdown started\"")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("level=error component=http msg=\"shutdown failed\" err=%v", err)
	}

	log.Println("level=info component=http msg=\"shutdown complete\"")
}
