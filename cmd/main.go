package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"github.com/sbilibin2017/user-registry/docs"
	"github.com/sbilibin2017/user-registry/internal/handlers"
	"github.com/sbilibin2017/user-registry/internal/logger"
	"github.com/sbilibin2017/user-registry/internal/middlewares"
	"github.com/sbilibin2017/user-registry/internal/migrations"
	"github.com/sbilibin2017/user-registry/internal/repositories"
	"github.com/sbilibin2017/user-registry/internal/services"

	_ "github.com/jackc/pgx/v5/stdlib"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

const (
	storageDriverPostgres = "postgres"
	storageDriverMemory   = "memory"
)

// config holds every setting read from the environment.
type config struct {
	AppHost  string
	AppPort  string
	LogLevel string

	StorageDriver string

	DatabaseURL             string
	PGHost                  string
	PGPort                  int
	PGUser                  string
	PGPassword              string
	PGDB                    string
	PGSSLMode               string
	PGMaxOpenConns          int
	PGMaxIdleConns          int
	PGConnMaxLifetimeSecond int

	RedisHost         string // empty disables the cache
	RedisPort         int
	RedisDB           int
	RedisPassword     string
	RedisPoolSize     int
	RedisMinIdleConns int
	RedisExpSecond    int

	KafkaBrokers        []string // empty disables event publishing
	KafkaTopic          string
	KafkaBatchTimeoutMS int

	HealthTimeoutSecond int
	UsersMaxLimit       int
}

// postgresDSN returns DATABASE_URL when set, otherwise builds one from the POSTGRES_* keys.
func (c *config) postgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.PGUser, c.PGPassword),
		Host:     fmt.Sprintf("%s:%d", c.PGHost, c.PGPort),
		Path:     "/" + c.PGDB,
		RawQuery: "sslmode=" + url.QueryEscape(c.PGSSLMode),
	}
	return u.String()
}

// @title user-registry API
// @version 1.0.0
// @description Webhook-driven user registry with soft delete and paginated listing
// @host localhost:8080
// @BasePath /
// @schemes http
func main() {
	printBuildInfo()
	configPath := parseFlags()

	cfg, err := parseConfig(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(), cfg); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Version: %s, Commit: %s, Build: %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// parseConfig loads environment variables from a file and returns
// the application, storage, cache, messaging and logging configuration.
func parseConfig(path string) (*config, error) {
	_ = godotenv.Load(path)

	getEnv := func(key, defaultValue string) string {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val
		}
		return defaultValue
	}

	var err error
	getInt := func(key, defaultValue string) int {
		if err != nil {
			return 0
		}
		var n int
		if n, err = strconv.Atoi(getEnv(key, defaultValue)); err != nil {
			err = fmt.Errorf("%s: %w", key, err)
		}
		return n
	}

	cfg := &config{
		// Application config
		AppHost:  getEnv("APP_HOST", "localhost"),
		AppPort:  getEnv("APP_PORT", "8080"),
		LogLevel: getEnv("APP_LOG_LEVEL", "info"),

		StorageDriver: getEnv("STORAGE_DRIVER", storageDriverPostgres),

		// PostgreSQL config
		DatabaseURL:             getEnv("DATABASE_URL", ""),
		PGHost:                  getEnv("POSTGRES_HOST", "localhost"),
		PGPort:                  getInt("POSTGRES_PORT", "5432"),
		PGUser:                  getEnv("POSTGRES_USER", "user"),
		PGPassword:              getEnv("POSTGRES_PASSWORD", "password"),
		PGDB:                    getEnv("POSTGRES_DB", "database"),
		PGSSLMode:               getEnv("POSTGRES_SSLMODE", "disable"),
		PGMaxOpenConns:          getInt("POSTGRES_MAX_OPEN_CONNS", "16"),
		PGMaxIdleConns:          getInt("POSTGRES_MAX_IDLE_CONNS", "8"),
		PGConnMaxLifetimeSecond: getInt("POSTGRES_CONN_MAX_LIFETIME_SECOND", "300"),

		// Redis config
		RedisHost:         getEnv("REDIS_HOST", ""),
		RedisPort:         getInt("REDIS_PORT", "6379"),
		RedisDB:           getInt("REDIS_DB", "0"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisPoolSize:     getInt("REDIS_POOL_SIZE", "10"),
		RedisMinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", "2"),
		RedisExpSecond:    getInt("REDIS_EXP_SECOND", "60"),

		// Kafka config
		KafkaTopic:          getEnv("KAFKA_TOPIC", "user-events"),
		KafkaBatchTimeoutMS: getInt("KAFKA_BATCH_TIMEOUT_MS", "10"),

		HealthTimeoutSecond: getInt("HEALTH_TIMEOUT_SECOND", "2"),
		UsersMaxLimit:       getInt("USERS_MAX_LIMIT", strconv.Itoa(services.MaxLimit)),
	}
	if err != nil {
		return nil, err
	}

	for _, broker := range strings.Split(getEnv("KAFKA_BROKERS", ""), ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			cfg.KafkaBrokers = append(cfg.KafkaBrokers, broker)
		}
	}

	switch cfg.StorageDriver {
	case storageDriverPostgres, storageDriverMemory:
	default:
		return nil, fmt.Errorf("STORAGE_DRIVER: unsupported driver %q", cfg.StorageDriver)
	}

	return cfg, nil
}

// userStore is what the services need from a storage backend.
type userStore interface {
	services.UserReader
	services.UserWriter
	services.StorePinger
}

// openStore builds the configured storage backend. The returned cleanup must be called.
func openStore(ctx context.Context, cfg *config) (userStore, func(), error) {
	if cfg.StorageDriver == storageDriverMemory {
		logger.Log.Warn("Using in-memory storage, data is lost on restart")
		return repositories.NewUserMemoryRepository(), func() {}, nil
	}

	logger.Log.Infow("Connecting to PostgreSQL", "host", cfg.PGHost, "port", cfg.PGPort, "db", cfg.PGDB)

	db, err := sqlx.ConnectContext(ctx, "pgx", cfg.postgresDSN())
	if err != nil {
		return nil, nil, fmt.Errorf("PostgreSQL connection error: %w", err)
	}
	db.SetMaxOpenConns(cfg.PGMaxOpenConns)
	db.SetMaxIdleConns(cfg.PGMaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.PGConnMaxLifetimeSecond) * time.Second)

	if err := migrations.Up(ctx, db.DB); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	store := struct {
		*repositories.UserReadRepository
		*repositories.UserWriteRepository
	}{
		repositories.NewUserReadRepository(db),
		repositories.NewUserWriteRepository(db),
	}
	return store, func() { db.Close() }, nil
}

// newRouter wires the handlers onto a chi router.
func newRouter(userService *services.UserService, healthService *services.HealthService) http.Handler {
	createUserHandler := handlers.NewCreateUserHandler(userService)
	updateUserHandler := handlers.NewUpdateUserHandler(userService)

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware)

	r.Get("/", handlers.NewRootHandler())
	r.Get("/health", handlers.NewHealthHandler(healthService))

	r.Post("/webhook/new-user", createUserHandler)
	r.Post("/new-user", createUserHandler)

	r.Route("/users", func(r chi.Router) {
		r.Get("/", handlers.NewListUsersHandler(userService))
		r.Get("/{id}", handlers.NewGetUserHandler(userService))
		r.Put("/{id}", updateUserHandler)
		r.Patch("/{id}", updateUserHandler)
		r.Delete("/{id}", handlers.NewDeleteUserHandler(userService))
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return r
}

// newKafkaWriter builds the event producer. Events are written one per request,
// so the batch timeout is kept short to avoid holding every mutation for the
// library's one second default.
func newKafkaWriter(cfg *config) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           time.Duration(cfg.KafkaBatchTimeoutMS) * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
}

// run initializes the logger, storage, Redis, Kafka and the HTTP server.
// It sets up routes, applies middleware, and handles graceful shutdown.
func run(ctx context.Context, cfg *config) error {
	// Initialize logger
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Sync()
	logger.Log.Infof("Logger initialized with level %s", cfg.LogLevel)

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	// Redis is optional: a broken cache degrades to store reads.
	var (
		userCache   services.UserCache
		cachePinger services.CachePinger
	)
	if cfg.RedisHost != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:         fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			PoolSize:     cfg.RedisPoolSize,
			MinIdleConns: cfg.RedisMinIdleConns,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Log.Warnw("Redis is not reachable, continuing without a warm cache", "error", err)
		}

		cacheRepo := repositories.NewUserCacheRepository(rdb, time.Duration(cfg.RedisExpSecond)*time.Second)
		userCache = cacheRepo
		cachePinger = cacheRepo
	}

	var kafkaWriter services.KafkaWriter
	if len(cfg.KafkaBrokers) > 0 {
		w := newKafkaWriter(cfg)
		defer w.Close()
		kafkaWriter = w
		logger.Log.Infow("Publishing user events to Kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	// Initialize services
	userService := services.NewUserService(store, store, userCache, kafkaWriter, cfg.UsersMaxLimit)
	healthService := services.NewHealthService(
		store, cachePinger, cfg.StorageDriver,
		time.Duration(cfg.HealthTimeoutSecond)*time.Second,
	)

	docs.SwaggerInfo.Host = fmt.Sprintf("%s:%s", cfg.AppHost, cfg.AppPort)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.AppHost, cfg.AppPort),
		Handler:           newRouter(userService, healthService),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	errChan := make(chan error, 1)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go func() {
		logger.Log.Infof("HTTP server listening on %s:%s", cfg.AppHost, cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}

	logger.Log.Info("HTTP server stopped gracefully")
	return nil
}
