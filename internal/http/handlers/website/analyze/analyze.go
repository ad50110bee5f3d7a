// Package analyze реализует HTTP-обработчик анализа сайта.
package analyze

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/adpilot/internal/http/middlewarectx"
	"github.com/magabrotheeeer/adpilot/internal/http/response"
	"github.com/magabrotheeeer/adpilot/internal/lib/sl"
	analysis "github.com/magabrotheeeer/adpilot/internal/services/analysis"
)

// Request — структура входных данных для анализа сайта.
type Request struct {
	URL string `json:"url" validate:"required"`
}

// Service описывает интерфейс бизнес-логики анализа сайта.
type Service interface {
	Analyze(ctx context.Context, rawURL string) (*analysis.AnalyzeResult, error)
}

// Handler обрабатывает HTTP-запросы анализа сайта.
type Handler struct {
	log      *slog.Logger
	analyzer Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, analyzer Service) *Handler {
	return &Handler{
		log:      log,
		analyzer: analyzer,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Анализ сайта
// @Description Загружает сайт и извлекает сведения о продукте. Результат кэшируется по нормализованному URL.
// @Tags Website
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Адрес сайта"
// @Success 200 {object} response.Response "Результат анализа"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или URL"
// @Failure 401 {object} response.ErrorResponse "Нет авторизации"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 502 {object} response.ErrorResponse "Сайт или модель недоступны"
// @Router /website/analyze [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.website.analyze"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if _, ok := middlewarectx.UserUIDFromContext(r.Context()); !ok {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("user identification missing"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	result, err := h.analyzer.Analyze(r.Context(), req.URL)
	if err != nil {
		log.Error("website analysis failed", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error("failed to analyze website"))
		return
	}

	log.Info("website analyzed",
		slog.String("url", result.URL),
		slog.Bool("from_cache", result.FromCache))
	render.JSON(w, r, response.OKWithData(result))
}
