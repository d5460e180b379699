package app

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/godilite/ticket-qc/internal/config"
	"github.com/godilite/ticket-qc/internal/export"
	handler "github.com/godilite/ticket-qc/internal/grpc"
	"github.com/godilite/ticket-qc/internal/ingest"
	"github.com/godilite/ticket-qc/internal/kafka"
	"github.com/godilite/ticket-qc/internal/qc"
	"github.com/godilite/ticket-qc/internal/repository"
	"github.com/godilite/ticket-qc/internal/service"
	"github.com/godilite/ticket-qc/pkg/cache"
	grpcsrv "github.com/godilite/ticket-qc/pkg/grpc/server"

	"go.uber.org/zap"
	"google.golang.org/grpc"
)

const (
	shutdownTimeout = 10 * time.Second
	publishTimeout  = 30 * time.Second
)

type App struct {
	logger     *zap.Logger
	cache      *cache.Cache
	grpcServer *grpcsrv.Server
	scoring    *service.ScoringService
}

type Option func(*options)

type options struct {
	listener net.Listener
}

// WithListener serves gRPC on lis instead of cfg.GRPCPort.
func WithListener(lis net.Listener) Option {
	return func(o *options) {
		o.listener = lis
	}
}

// NewApp scores the configured export and prepares the report server.
func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	rules, err := qc.LoadRuleSet(cfg.RulesPath)
	if err != nil {
		return nil, fmt.Errorf("rule set init failed: %w", err)
	}
	scorer, err := qc.NewScorer(rules)
	if err != nil {
		return nil, fmt.Errorf("scorer init failed: %w", err)
	}

	table, err := ingest.ReadFile(cfg.TicketsPath)
	if err != nil {
		return nil, fmt.Errorf("ticket ingest failed: %w", err)
	}
	logger.Info("Tickets loaded", zap.String("path", cfg.TicketsPath), zap.Int("rows", len(table.Tickets)))

	scoredRepo := repository.NewScoredTicketRepository()
	scoringService := service.NewScoringService(scoredRepo, scorer, logger, service.WithWorkers(cfg.ScoringWorkers))

	batch, err := scoringService.ScoreBatch(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("scoring failed: %w", err)
	}

	if len(cfg.KafkaBrokers) > 0 {
		publishScores(ctx, cfg, logger, batch, rules.Thresholds.PassPercent)
	}

	// A nil *cache.Cache must not reach the handlers as a non-nil Cacher.
	var (
		cacheClient *cache.Cache
		cacher      handler.Cacher
	)
	if cfg.RedisAddr != "" {
		cacheClient, err = cache.New(ctx,
			cache.WithAddress(cfg.RedisAddr),
			cache.WithPassword(cfg.RedisPassword),
			cache.WithDB(cfg.RedisDB),
			cache.WithKeyPrefix("qc:"),
		)
		if err != nil {
			return nil, fmt.Errorf("cache init failed: %w", err)
		}
		cacher = cacheClient
		logger.Info("Cache client initialized", zap.String("addr", cfg.RedisAddr))
	}

	grpcHandlers := handler.NewGRPCHandlers(scoringService, cacher, logger, cfg.CacheTTL)

	serverOpts := []grpcsrv.Option{
		grpcsrv.WithPort(cfg.GRPCPort),
		grpcsrv.WithLogger(logger),
		grpcsrv.WithReflection(cfg.GRPCReflectionEnabled),
		grpcsrv.WithLogging(cfg.GRPCLoggingEnabled),
		grpcsrv.WithRecovery(true),
	}
	if o.listener != nil {
		serverOpts = append(serverOpts, grpcsrv.WithListener(o.listener))
	}
	grpcServer, err := grpcsrv.New(serverOpts...)
	if err != nil {
		if cacheClient != nil {
			_ = cacheClient.Close()
		}
		return nil, fmt.Errorf("failed to create gRPC server: %w", err)
	}

	grpcServer.RegisterServiceWithHealth(handler.ServiceName, func(s *grpc.Server) {
		handler.RegisterQualityReportServer(s, grpcHandlers)
	})

	return &App{
		logger:     logger,
		cache:      cacheClient,
		grpcServer: grpcServer,
		scoring:    scoringService,
	}, nil
}

// publishScores sends the run to Kafka. Failures are logged; the report
// server still starts.
func publishScores(ctx context.Context, cfg *config.Config, logger *zap.Logger, batch *service.Batch, passPercent float64) {
	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
	defer func() {
		if err := producer.Close(); err != nil {
			logger.Warn("kafka producer close error", zap.Error(err))
		}
	}()

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	records := export.Records(batch.RunID, batch.Tickets, passPercent)
	if err := producer.PublishScores(pubCtx, batch.RunID, records); err != nil {
		logger.Warn("score publication failed", zap.String("topic", cfg.KafkaTopic), zap.Error(err))
	}
}

// Addr returns the gRPC listening address.
func (a *App) Addr() net.Addr {
	return a.grpcServer.Addr()
}

// RunID returns the id of the scored batch being served.
func (a *App) RunID() string {
	return a.scoring.CurrentRunID()
}

// Run starts the application and blocks until ctx is canceled.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("application starting", zap.String("run_id", a.RunID()))

	a.grpcServer.Start()

	<-ctx.Done()

	a.logger.Info("application shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.grpcServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("shutdown completed but deadline exceeded", zap.Error(err))
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("cache shutdown error", zap.Error(err))
		}
	}

	a.logger.Info("graceful shutdown completed")
	_ = a.logger.Sync()
	return nil
}
