// Package generate реализует HTTP-обработчик генерации рекламных объявлений.
package generate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/adpilot/internal/http/middlewarectx"
	"github.com/magabrotheeeer/adpilot/internal/http/response"
	"github.com/magabrotheeeer/adpilot/internal/lib/sl"
	"github.com/magabrotheeeer/adpilot/internal/models"
	generation "github.com/magabrotheeeer/adpilot/internal/services/generation"
	"github.com/magabrotheeeer/adpilot/internal/storage/repository"
)

// Service описывает интерфейс бизнес-логики генерации объявлений.
type Service interface {
	Generate(ctx context.Context, userUID string, req models.GenerateAdsRequest) (*models.GenerateAdsResult, error)
}

// Handler обрабатывает HTTP-запросы генерации объявлений.
type Handler struct {
	log      *slog.Logger
	ads      Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, ads Service) *Handler {
	return &Handler{
		log:      log,
		ads:      ads,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Генерация объявлений
// @Description Списывает кредиты и генерирует объявления для выбранных платформ.
// @Tags Ads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.GenerateAdsRequest true "Параметры генерации"
// @Success 200 {object} response.Response "Сгенерированные объявления"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или платформа"
// @Failure 401 {object} response.ErrorResponse "Нет авторизации"
// @Failure 402 {object} response.ErrorResponse "Недостаточно кредитов"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /ads/generate [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ads.generate"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := middlewarectx.UserUIDFromContext(r.Context())
	if !ok {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("user identification missing"))
		return
	}

	var req models.GenerateAdsRequest
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

	result, err := h.ads.Generate(r.Context(), userUID, req)
	switch {
	case errors.Is(err, repository.ErrInsufficientCredits):
		log.Info("generation rejected, insufficient credits")
		w.WriteHeader(http.StatusPaymentRequired)
		render.JSON(w, r, response.Error("insufficient credits"))
		return
	case errors.Is(err, generation.ErrUnknownPlatform):
		log.Error("unknown platform requested", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("unknown platform"))
		return
	case err != nil:
		log.Error("generation failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to generate ads"))
		return
	}

	log.Info("ads generated",
		slog.Int("count", len(result.Ads)),
		slog.Bool("from_cache", result.FromCache))
	render.JSON(w, r, response.OKWithData(result))
}
