package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/central-university-dev/go-remu/internal/bot/engine"
	"github.com/central-university-dev/go-remu/internal/bot/inbound"
)

const (
	InboundPath = "/api/v1/inbound"
	HealthPath  = "/health"

	maxBodySize = 64 << 10
)

type messageSender interface {
	Send(ctx context.Context, msg engine.Message) error
}

type ApiErrorResponse struct {
	Description string `json:"description"`
}

// BotHandler accepts the JSON control messages that the Kafka topic carries.
type BotHandler struct {
	sender        messageSender
	defaultOffset int
	logger        *slog.Logger
}

func NewBotHandler(sender messageSender, defaultOffset int, logger *slog.Logger) *BotHandler {
	return &BotHandler{
		sender:        sender,
		defaultOffset: defaultOffset,
		logger:        logger,
	}
}

// NewRouter mounts the inbound endpoint behind the given middlewares together
// with the health endpoint. Metrics are served by metrics.Server.
func NewRouter(h *BotHandler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	var inboundHandler http.Handler = http.HandlerFunc(h.InboundPost)
	for i := len(middlewares) - 1; i >= 0; i-- {
		inboundHandler = middlewares[i](inboundHandler)
	}

	mux := http.NewServeMux()
	mux.Handle(InboundPath, inboundHandler)
	mux.HandleFunc(HealthPath, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return mux
}

func (h *BotHandler) InboundPost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		h.writeError(w, http.StatusMethodNotAllowed, "Метод не поддерживается")

		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Не удалось прочитать тело запроса")
		return
	}

	msg, err := inbound.Decode(body, h.defaultOffset)
	if err != nil {
		h.logger.Warn("Некорректное входящее сообщение", "error", err)
		h.writeError(w, http.StatusBadRequest, err.Error())

		return
	}

	if err := h.sender.Send(r.Context(), msg); err != nil {
		h.logger.Error("Не удалось передать входящее сообщение", "error", err)

		if errors.Is(err, engine.ErrActorStopped) {
			h.writeError(w, http.StatusServiceUnavailable, "Сервис останавливается")
			return
		}

		h.writeError(w, http.StatusInternalServerError, "Ошибка при обработке сообщения")

		return
	}

	w.WriteHeader(http.StatusAccepted)
}

func (h *BotHandler) writeError(w http.ResponseWriter, status int, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(ApiErrorResponse{Description: description}); err != nil {
		h.logger.Error("Ошибка при записи ответа", "error", err)
	}
}
