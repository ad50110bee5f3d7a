// Package adpilot собирает основное HTTP-приложение: хранилище, кеш,
// брокер сообщений, бизнес-сервисы и маршруты.
package adpilot

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/adpilot/internal/cache"
	"github.com/magabrotheeeer/adpilot/internal/config"
	"github.com/magabrotheeeer/adpilot/internal/lib/jwt"
	"github.com/magabrotheeeer/adpilot/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/adpilot/internal/migrations"
	"github.com/magabrotheeeer/adpilot/internal/openai"
	"github.com/magabrotheeeer/adpilot/internal/paymentprovider"
	aicache "github.com/magabrotheeeer/adpilot/internal/services/aicache"
	analysis "github.com/magabrotheeeer/adpilot/internal/services/analysis"
	auth "github.com/magabrotheeeer/adpilot/internal/services/auth"
	billing "github.com/magabrotheeeer/adpilot/internal/services/billing"
	campaign "github.com/magabrotheeeer/adpilot/internal/services/campaign"
	credits "github.com/magabrotheeeer/adpilot/internal/services/credits"
	generation "github.com/magabrotheeeer/adpilot/internal/services/generation"
	integrations "github.com/magabrotheeeer/adpilot/internal/services/integrations"
	team "github.com/magabrotheeeer/adpilot/internal/services/team"
	templates "github.com/magabrotheeeer/adpilot/internal/services/templates"
	"github.com/magabrotheeeer/adpilot/internal/storage/repository"
)

// websiteCacheTTL время жизни кеша анализа сайтов.
const websiteCacheTTL = 30 * 24 * time.Hour

// App хранит собранный HTTP-сервер и ресурсы, которые нужно закрыть при остановке.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	amqp   *amqp.Connection
}

// New собирает приложение из конфигурации: применяет миграции,
// подключается к Redis и RabbitMQ, создает сервисы и маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	redisCache, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	var channel *amqp.Channel
	conn, err := rabbitmq.Connect(cfg.RabbitConnectionString, cfg.RabbitMaxRetries, cfg.RabbitRetryDelay)
	if err != nil {
		// Без брокера приложение работает, уведомления не отправляются.
		logger.Warn("rabbitmq is unavailable, notifications are disabled", slog.Any("err", err))
	} else {
		channel, err = rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
		if err != nil {
			conn.Close()
			return nil, err
		}
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	openaiClient := openai.New(cfg.OpenAI)
	checkoutClient := paymentprovider.NewClient(cfg.Payments.SecretKey)

	authService := auth.NewAuthService(db, jwtMaker, redisCache,
		cfg.LoginGuard.MaxAttempts, cfg.LoginGuard.LockoutDuration)
	creditsService := credits.NewCreditsService(db, cfg.Credits.FreeCredits)
	cacheService := aicache.NewAICacheService(db,
		time.Duration(cfg.OpenAI.CacheTTLDays)*24*time.Hour)
	generationService := generation.NewGenerationService(logger, openaiClient, openaiClient,
		creditsService, cacheService, db, cfg.Credits.CostPerPlatform)
	analysisService := analysis.NewAnalysisService(logger, db, openaiClient, websiteCacheTTL)
	integrationsService := integrations.NewIntegrationsService(db, redisCache, cfg.OAuth)
	billingService := billing.NewBillingService(logger, db, checkoutClient, channel,
		cfg.Payments.SuccessURL, cfg.Payments.CancelURL)
	campaignService := campaign.NewCampaignService(db)
	teamService := team.NewTeamService(logger, db, channel)
	templatesService := templates.NewTemplatesService(db)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, &Services{
		Auth:         authService,
		Credits:      creditsService,
		Generation:   generationService,
		Analysis:     analysisService,
		Integrations: integrationsService,
		Billing:      billingService,
		Campaign:     campaignService,
		Team:         teamService,
		Templates:    templatesService,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		amqp:   conn,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.db.DB.Close()
		if a.amqp != nil {
			a.amqp.Close()
		}
		return err
	}
}
