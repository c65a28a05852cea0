package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	s3blob "github.com/galinborisov10-art/Crypto-signal-bot-sub007/internal/blob/s3"
	"github.com/galinborisov10-art/Crypto-signal-bot-sub007/internal/cache/redis"
	"github.com/galinborisov10-art/Crypto-signal-bot-sub007/internal/config"
	"github.com/galinborisov10-art/Crypto-signal-bot-sub007/internal/domain"
	"github.com/galinborisov10-art/Crypto-signal-bot-sub007/internal/notify"
	"github.com/galinborisov10-art/Crypto-signal-bot-sub007/internal/store/postgres"
)

// Dependencies bundles every domain-level dependency that the application
// modes need to operate. It is constructed by Wire and torn down by the
// returned cleanup function.
type Dependencies struct {
	// Stores
	PositionStore domain.PositionStore
	TimelineStore domain.TimelineStore
	DecisionStore domain.DecisionStore
	AuditStore    domain.AuditStore

	// Caches
	PriceCache       domain.PriceCache
	SnapshotCache    domain.SnapshotCache
	MarketStateCache domain.MarketStateCache
	RateLimiter      domain.RateLimiter
	LockManager      domain.LockManager
	SignalBus        domain.SignalBus

	// Blob storage
	BlobWriter domain.BlobWriter
	BlobReader domain.BlobReader
	Archiver   domain.Archiver

	// Notifications
	Notifier *notify.Notifier
}

// needsBlob returns true for modes that touch object storage at all: the
// archiving modes write exports, and the API server reads them back.
func needsBlob(cfg *config.Config) bool {
	if !cfg.Archive.Enabled {
		return false
	}
	switch strings.ToLower(cfg.Mode) {
	case "evaluate", "server", "full":
		return true
	default:
		return false
	}
}

// runsArchiver returns true for modes that export terminated timelines.
func runsArchiver(cfg *config.Config) bool {
	if !cfg.Archive.Enabled {
		return false
	}
	switch strings.ToLower(cfg.Mode) {
	case "evaluate", "full":
		return true
	default:
		return false
	}
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- PostgreSQL ---
	pgClient, err := postgres.New(ctx, postgres.ClientConfig{
		DSN:      cfg.Postgres.DSN,
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		Database: cfg.Postgres.Database,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		SSLMode:  cfg.Postgres.SSLMode,
		MaxConns: cfg.Postgres.PoolMaxConns,
		MinConns: cfg.Postgres.PoolMinConns,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: postgres: %w", err)
	}
	closers = append(closers, pgClient.Close)

	if cfg.Postgres.RunMigrations {
		if err := pgClient.RunMigrations(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
		}
	}

	pool := pgClient.Pool()
	deps.PositionStore = postgres.NewPositionStore(pool)
	deps.TimelineStore = postgres.NewTimelineStore(pool)
	deps.DecisionStore = postgres.NewDecisionStore(pool)
	deps.AuditStore = postgres.NewAuditStore(pool)

	// --- Redis ---
	redisClient, err := redis.New(ctx, redis.ClientConfig{
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		PoolSize:   cfg.Redis.PoolSize,
		MaxRetries: cfg.Redis.MaxRetries,
		TLSEnabled: cfg.Redis.TLSEnabled,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: redis: %w", err)
	}
	closers = append(closers, func() { _ = redisClient.Close() })

	deps.PriceCache = redis.NewPriceCache(redisClient)
	deps.SnapshotCache = redis.NewSnapshotCache(redisClient)
	deps.MarketStateCache = redis.NewMarketStateCache(redisClient)
	deps.RateLimiter = redis.NewRateLimiter(redisClient)
	deps.LockManager = redis.NewLockManager(redisClient)
	deps.SignalBus = redis.NewSignalBus(redisClient)

	// --- S3 blob storage (only for modes that archive or serve archives) ---
	if needsBlob(cfg) {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		closers = append(closers, func() { _ = s3Client.Close() })

		deps.BlobReader = s3blob.NewReader(s3Client)

		if runsArchiver(cfg) {
			deps.BlobWriter = s3blob.NewWriter(s3Client)
			deps.Archiver = s3blob.NewArchiver(
				deps.BlobWriter,
				postgres.NewPositionStore(pool),
				postgres.NewTimelineStore(pool),
				deps.AuditStore,
			)
		}
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, deps.RateLimiter, logger)

	return deps, cleanup, nil
}
