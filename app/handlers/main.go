package main

import (
	"time"

	"github.com/apavering/user-directory/app/cache"
	cfg "github.com/apavering/user-directory/app/config"
	"github.com/apavering/user-directory/app/logger"
	"github.com/apavering/user-directory/app/services"
	"github.com/apavering/user-directory/app/store"
)

func main() {
	logger.Init()
	cfg.Load()

	appCfg := config{
		addr: cfg.GetString("ADDR", ":8080"),
		db: dbConfig{
			dsn:          cfg.PostgresDSN(),
			maxOpenConns: cfg.GetInt("DB_MAX_OPEN_CONNS", 30),
			maxIdleConns: cfg.GetInt("DB_MAX_IDLE_CONNS", 30),
			maxIdleTime:  cfg.GetString("DB_MAX_IDLE_TIME", "15m"),
		},
	}

	db, err := cfg.NewDB(appCfg.db.dsn, appCfg.db.maxOpenConns, appCfg.db.maxIdleConns, appCfg.db.maxIdleTime)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer db.Close()
	logger.Logger.Info().Msg("postgres connection pool established")

	storage := store.NewStorage(db)

	// Redis is optional: without it lookups just skip the cache.
	var userCache *cache.UserCache
	redisClient, err := cfg.NewRedisClient()
	if err != nil {
		logger.Logger.Warn().Err(err).Msg("redis unavailable, user cache disabled")
		redisClient = nil
	} else {
		defer redisClient.Close()
		ttl := time.Duration(cfg.GetInt("USER_CACHE_TTL_SECONDS", 300)) * time.Second
		userCache = cache.New(redisClient, ttl)
		logger.Logger.Info().Msg("redis connection established")
	}

	// RabbitMQ is optional: without it lifecycle events are dropped.
	var publisher services.EventPublisher = services.NoopPublisher{}
	rabbitConn, rabbitCh, err := cfg.NewRabbitMQConnection()
	if err != nil {
		logger.Logger.Warn().Err(err).Msg("rabbitmq unavailable, event publishing disabled")
	} else {
		defer rabbitConn.Close()
		defer rabbitCh.Close()
		publisher = services.NewRabbitMQPublisher(rabbitCh)
		logger.Logger.Info().Msg("rabbitmq connection established")
	}

	hasher := services.NewBcryptHasher(cfg.GetInt("BCRYPT_COST", 10))
	directory := services.NewUserDirectory(storage, hasher, publisher, userCache)

	app := &application{
		config:      appCfg,
		store:       storage,
		directory:   directory,
		db:          db,
		redisClient: redisClient,
		rabbitConn:  rabbitConn,
	}

	if err := app.run(app.mount()); err != nil {
		logger.Logger.Fatal().Err(err).Msg("server error")
	}
}
