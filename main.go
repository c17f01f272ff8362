package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"ymurakami/suumowatcher/config"
	"ymurakami/suumowatcher/internal/scraper"
	"ymurakami/suumowatcher/logger"
	"ymurakami/suumowatcher/services/api"
	"ymurakami/suumowatcher/services/cache"
	"ymurakami/suumowatcher/services/notifier"
	"ymurakami/suumowatcher/services/store"
	"ymurakami/suumowatcher/services/worker"
)

func main() {
	once := flag.Bool("once", false, "run one watch cycle and exit")
	flag.Parse()

	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	criteria, err := config.LoadCriteria(cfg.CriteriaFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load criteria")
	}
	if len(criteria) == 0 {
		log.Fatal().Str("file", cfg.CriteriaFile).Msg("No search criteria configured")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Int("criteria", len(criteria)).
		Int("interval_hours", cfg.IntervalHours).
		Msg("Starting listing watcher")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize services
	services, err := initializeServices(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer services.Cleanup()

	suumo, err := scraper.NewSuumoScraper(scraper.SuumoConfig{
		SearchURL: cfg.SearchURL,
		PageDelay: cfg.PageDelay,
	}, services.Cache)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create scraper")
	}

	watcher := worker.NewWatcher(suumo, services.Store, services.Notifier, criteria)

	if *once {
		watcher.Run(ctx)
		return
	}

	// Optional read API
	if cfg.APIAddr != "" {
		server := api.NewServer(cfg.APIAddr, services.Store, criteria)
		go func() {
			if err := server.Start(); err != nil {
				log.Error().Err(err).Msg("API server exited with error")
			}
		}()
		defer server.Shutdown(context.Background())
	}

	scheduler := worker.NewScheduler(watcher, cfg.IntervalHours)
	if err := scheduler.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}
	defer scheduler.Stop()

	// Wait for shutdown signal
	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	cancel()

	log.Info().Msg("Shutting down gracefully...")
}

// Services holds all the initialized services
type Services struct {
	Cache    cache.CacheService
	Store    store.ListingStore
	Notifier notifier.Notifier
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Notifier != nil {
		s.Notifier.Close()
	}
	if s.Store != nil {
		s.Store.Close()
	}
}

// initializeServices initializes all required services
func initializeServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	services := &Services{}

	// Fetch block cache
	if cfg.MemcacheAddr != "" {
		services.Cache = cache.NewMemcacheService(cfg.MemcacheAddr)
		logger.Info("Using memcache block cache at %s", cfg.MemcacheAddr)
	} else {
		services.Cache = cache.NewMemoryCache()
	}

	// Listing store
	switch cfg.StoreBackend {
	case "postgres":
		st, err := store.NewPostgresStore(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres store: %w", err)
		}
		services.Store = st
		logger.Info("Connected to Postgres listing store")
	default:
		st, err := store.NewFileStore(cfg.DataStorePath)
		if err != nil {
			return nil, fmt.Errorf("failed to create file store: %w", err)
		}
		services.Store = st
		logger.Info("Using file listing store at %s", cfg.DataStorePath)
	}

	// Notifier
	switch cfg.NotifierBackend {
	case "redis":
		services.Notifier = notifier.NewRedisNotifier(ctx, cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream, cfg.RedisStreamMaxLen)
		logger.Info("Publishing new listings to Redis at %s (stream: %s)", cfg.RedisAddr, cfg.RedisStream)
	default:
		services.Notifier = notifier.NewLineNotifier(cfg.LineChannelToken, cfg.LineUserID)
		logger.Info("Notifying new listings via LINE")
	}

	return services, nil
}
