package adpilot

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/adpilot/internal/config"
	adsgenerate "github.com/magabrotheeeer/adpilot/internal/http/handlers/ads/generate"
	adsimage "github.com/magabrotheeeer/adpilot/internal/http/handlers/ads/image"
	"github.com/magabrotheeeer/adpilot/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/adpilot/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/adpilot/internal/http/handlers/billing/checkout"
	"github.com/magabrotheeeer/adpilot/internal/http/handlers/billing/webhook"
	campaignback "github.com/magabrotheeeer/adpilot/internal/http/handlers/campaign/back"
	campaigndiscard "github.com/magabrotheeeer/adpilot/internal/http/handlers/campaign/discard"
	campaignget "github.com/magabrotheeeer/adpilot/internal/http/handlers/campaign/get"
	campaignnext "github.com/magabrotheeeer/adpilot/internal/http/handlers/campaign/next"
	campaignstart "github.com/magabrotheeeer/adpilot/internal/http/handlers/campaign/start"
	"github.com/magabrotheeeer/adpilot/internal/http/handlers/credits/balance"
	"github.com/magabrotheeeer/adpilot/internal/http/handlers/credits/claimfree"
	"github.com/magabrotheeeer/adpilot/internal/http/handlers/credits/history"
	"github.com/magabrotheeeer/adpilot/internal/http/handlers/health"
	"github.com/magabrotheeeer/adpilot/internal/http/handlers/integrations/callback"
	"github.com/magabrotheeeer/adpilot/internal/http/handlers/integrations/connect"
	"github.com/magabrotheeeer/adpilot/internal/http/handlers/integrations/disconnect"
	integrationslist "github.com/magabrotheeeer/adpilot/internal/http/handlers/integrations/list"
	teamaccept "github.com/magabrotheeeer/adpilot/internal/http/handlers/team/accept"
	teaminvite "github.com/magabrotheeeer/adpilot/internal/http/handlers/team/invite"
	teammembers "github.com/magabrotheeeer/adpilot/internal/http/handlers/team/members"
	teamremove "github.com/magabrotheeeer/adpilot/internal/http/handlers/team/remove"
	templatescreate "github.com/magabrotheeeer/adpilot/internal/http/handlers/templates/create"
	templateslist "github.com/magabrotheeeer/adpilot/internal/http/handlers/templates/list"
	templatesremove "github.com/magabrotheeeer/adpilot/internal/http/handlers/templates/remove"
	"github.com/magabrotheeeer/adpilot/internal/http/handlers/website/analyze"
	"github.com/magabrotheeeer/adpilot/internal/http/middlewarectx"
	analysis "github.com/magabrotheeeer/adpilot/internal/services/analysis"
	auth "github.com/magabrotheeeer/adpilot/internal/services/auth"
	billing "github.com/magabrotheeeer/adpilot/internal/services/billing"
	campaign "github.com/magabrotheeeer/adpilot/internal/services/campaign"
	credits "github.com/magabrotheeeer/adpilot/internal/services/credits"
	generation "github.com/magabrotheeeer/adpilot/internal/services/generation"
	integrations "github.com/magabrotheeeer/adpilot/internal/services/integrations"
	team "github.com/magabrotheeeer/adpilot/internal/services/team"
	templates "github.com/magabrotheeeer/adpilot/internal/services/templates"
)

// Services группирует бизнес-сервисы, которые нужны маршрутам.
type Services struct {
	Auth         *auth.AuthService
	Credits      *credits.CreditsService
	Generation   *generation.GenerationService
	Analysis     *analysis.AnalysisService
	Integrations *integrations.IntegrationsService
	Billing      *billing.BillingService
	Campaign     *campaign.CampaignService
	Team         *team.TeamService
	Templates    *templates.TemplatesService
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, svc *Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		middlewarectx.CORSMiddleware,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, svc.Auth).ServeHTTP)
		r.Post("/login", login.New(logger, svc.Auth).ServeHTTP)
		r.Get("/integrations/callback", callback.New(logger, svc.Integrations).ServeHTTP)

		// Webhook endpoint (без аутентификации, защищен подписью)
		r.Post("/billing/webhook", webhook.New(logger, svc.Billing, cfg.Payments.WebhookSecret).ServeHTTP)
		r.Get("/health", health.New(logger).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(svc.Auth, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger, cfg.RateLimitRPS, cfg.RateLimitBurst))

			r.Get("/credits", balance.New(logger, svc.Credits).ServeHTTP)
			r.Get("/credits/history", history.New(logger, svc.Credits).ServeHTTP)
			r.Post("/credits/claim-free", claimfree.New(logger, svc.Credits).ServeHTTP)

			r.Post("/ads/generate", adsgenerate.New(logger, svc.Generation).ServeHTTP)
			r.Post("/ads/image", adsimage.New(logger, svc.Generation).ServeHTTP)
			r.Post("/website/analyze", analyze.New(logger, svc.Analysis).ServeHTTP)

			r.Get("/templates", templateslist.New(logger, svc.Templates).ServeHTTP)
			r.Post("/templates", templatescreate.New(logger, svc.Templates).ServeHTTP)
			r.Delete("/templates/{id}", templatesremove.New(logger, svc.Templates).ServeHTTP)

			r.Get("/integrations", integrationslist.New(logger, svc.Integrations).ServeHTTP)
			r.Post("/integrations/{platform}/connect", connect.New(logger, svc.Integrations).ServeHTTP)
			r.Delete("/integrations/{platform}", disconnect.New(logger, svc.Integrations).ServeHTTP)

			r.Post("/billing/checkout", checkout.New(logger, svc.Billing).ServeHTTP)

			r.Post("/campaign", campaignstart.New(logger, svc.Campaign).ServeHTTP)
			r.Get("/campaign", campaignget.New(logger, svc.Campaign).ServeHTTP)
			r.Post("/campaign/next", campaignnext.New(logger, svc.Campaign).ServeHTTP)
			r.Post("/campaign/back", campaignback.New(logger, svc.Campaign).ServeHTTP)
			r.Delete("/campaign", campaigndiscard.New(logger, svc.Campaign).ServeHTTP)

			r.Post("/team/invite", teaminvite.New(logger, svc.Team).ServeHTTP)
			r.Post("/team/accept", teamaccept.New(logger, svc.Team).ServeHTTP)
			r.Get("/team/members", teammembers.New(logger, svc.Team).ServeHTTP)
			r.Delete("/team/members/{member_uid}", teamremove.New(logger, svc.Team).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
