// Package image реализует HTTP-обработчик генерации изображения для объявления.
package image

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
	"github.com/magabrotheeeer/adpilot/internal/storage/repository"
)

// Request запрос генерации изображения.
type Request struct {
	Prompt string `json:"prompt" validate:"required,min=3"`
}

// ResponseData URL сгенерированного изображения.
type ResponseData struct {
	ImageURL string `json:"image_url"`
}

// Service описывает интерфейс бизнес-логики генерации изображений.
type Service interface {
	RenderImage(ctx context.Context, userUID, prompt string) (string, error)
}

// Handler обрабатывает HTTP-запросы генерации изображений.
type Handler struct {
	log      *slog.Logger
	images   Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, images Service) *Handler {
	return &Handler{
		log:      log,
		images:   images,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Генерация изображения
// @Description Списывает кредит и генерирует изображение по текстовому описанию.
// @Tags Ads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Описание изображения"
// @Success 200 {object} response.Response "URL изображения"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Нет авторизации"
// @Failure 402 {object} response.ErrorResponse "Недостаточно кредитов"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 502 {object} response.ErrorResponse "Модель изображений недоступна"
// @Router /ads/image [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ads.image"

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

	url, err := h.images.RenderImage(r.Context(), userUID, req.Prompt)
	switch {
	case errors.Is(err, repository.ErrInsufficientCredits):
		log.Info("image generation rejected, insufficient credits")
		w.WriteHeader(http.StatusPaymentRequired)
		render.JSON(w, r, response.Error("insufficient credits"))
		return
	case err != nil:
		log.Error("image generation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error("failed to generate image"))
		return
	}

	log.Info("image generated")
	render.JSON(w, r, response.OKWithData(ResponseData{ImageURL: url}))
}
