package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"beacon/internal/channel"
	"beacon/internal/config"
	"beacon/internal/constants"
	"beacon/internal/dedup"
	"beacon/internal/dispatch"
	"beacon/internal/logger"
	"beacon/internal/quota"
	"beacon/internal/suppress"
	"beacon/pkg/bootstrap"
	"beacon/pkg/health"
	"beacon/pkg/middleware"
	"beacon/pkg/ratelimit"
	"beacon/pkg/retry"
)

type App struct {
	*bootstrap.Base
	redisClient *redis.Client
	service     *dispatch.Service
	server      *http.Server
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	if sugaredLogger, ok := log.(*logger.SugaredLogger); ok {
		sugaredLogger.SetServiceName("dispatch-service")
	}
	return &App{
		Base: bootstrap.NewBase(cfg, log),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	if err := a.InitBroker("dispatch-service"); err != nil {
		return fmt.Errorf("failed to initialize broker: %w", err)
	}

	if a.Config.Dispatch.Store == constants.StoreRedis {
		if err := a.initRedis(ctx); err != nil {
			return fmt.Errorf("failed to initialize redis: %w", err)
		}
	}

	if err := a.initService(ctx); err != nil {
		return fmt.Errorf("failed to initialize service: %w", err)
	}

	if err := a.initHTTPServer(ctx); err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	return nil
}

func (a *App) initRedis(ctx context.Context) error {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", a.Config.Redis.Host, a.Config.Redis.Port),
		Password: a.Config.Redis.Password,
		DB:       a.Config.Redis.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}

	a.redisClient = client
	return nil
}

func (a *App) initService(ctx context.Context) error {
	cfg := a.Config.Dispatch

	var ledger dedup.Ledger
	var limiter quota.Limiter
	if a.redisClient != nil {
		ledger = dedup.NewRedisLedger(a.redisClient, cfg.DedupWindow)
		limiter = quota.NewRedisLimiter(a.redisClient, cfg.TenantQuota, cfg.QuotaWindow)
	} else {
		ledger = dedup.NewMemoryLedger(cfg.DedupWindow, cfg.DedupMaxEntries)
		limiter = quota.NewMemoryLimiter(cfg.TenantQuota, cfg.QuotaWindow)
	}

	suppressor, err := suppress.NewEvaluator(cfg.SuppressionRules)
	if err != nil {
		return fmt.Errorf("failed to compile suppression rules: %w", err)
	}

	paging := channel.NewWebhookChannel(constants.ChannelPaging, a.Config.Channels.Paging.URL, a.Config.Channels.Paging.Timeout)
	chat := channel.NewWebhookChannel(constants.ChannelChat, a.Config.Channels.Chat.URL, a.Config.Channels.Chat.Timeout)
	email := channel.NewEmailQueueChannel(a.Producer, a.Config.Channels.Email.Topic)

	router := dispatch.NewRouter(paging, chat, email, retry.Policy{
		MaxAttempts: cfg.MaxAttempts,
		Interval:    cfg.RetryInterval,
	}, a.Logger)

	a.service = dispatch.NewService(ledger, limiter, suppressor, router, cfg, a.Logger)
	return nil
}

func (a *App) initHTTPServer(ctx context.Context) error {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(a.Logger))
	router.Use(middleware.RecoveryMiddleware(a.Logger))
	router.Use(ratelimit.Middleware(ratelimit.Config{
		RPS:             a.Config.RateLimit.RPS,
		Burst:           a.Config.RateLimit.Burst,
		CleanupInterval: ratelimit.DefaultConfig().CleanupInterval,
		MaxAge:          ratelimit.DefaultConfig().MaxAge,
	}))

	handler := dispatch.NewHandler(a.service, a.Logger)
	handler.RegisterRoutes(router)

	healthRegistry := health.NewCheckerRegistry()
	if a.redisClient != nil {
		healthRegistry.Register(health.NewRedisChecker(a.redisClient))
	}
	healthRegistry.Register(health.NewWebhookChecker(constants.ChannelPaging, a.Config.Channels.Paging.URL))
	healthRegistry.Register(health.NewWebhookChecker(constants.ChannelChat, a.Config.Channels.Chat.URL))

	router.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/health/ready", func(c *gin.Context) {
		h := healthRegistry.Check(c.Request.Context())
		statusCode := http.StatusOK
		if h.Status == health.StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, h)
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
	}

	return nil
}

func (a *App) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	if a.server != nil {
		g.Go(func() error {
			a.Logger.InfowCtx(ctx, "HTTP server starting", "port", a.Config.Server.Port)
			if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("HTTP server error: %w", err)
			}
			return nil
		})

		g.Go(func() error {
			<-gCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()
			return a.server.Shutdown(shutdownCtx)
		})
	}

	if a.Consumer != nil {
		inputTopic := a.Config.Broker.Kafka.InputTopic
		g.Go(func() error {
			a.Logger.InfowCtx(gCtx, "Starting alert consumer", "topic", inputTopic)
			return a.Consumer.Consume(gCtx, inputTopic, a.service.Dispatch)
		})
	}

	return g.Wait()
}

func (a *App) Shutdown(ctx context.Context) error {
	return a.Base.Shutdown(ctx, func(ctx context.Context) []error {
		var errs []error
		if a.redisClient != nil {
			if err := a.redisClient.Close(); err != nil {
				errs = append(errs, fmt.Errorf("redis close error: %w", err))
			}
		}
		return errs
	})
}
