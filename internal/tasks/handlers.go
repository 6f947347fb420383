package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/sanadchat/sanad/internal/auth"
)

type Handler struct {
	mailer auth.Notifier
	logger *slog.Logger
}

func NewHandler(mailer auth.Notifier, logger *slog.Logger) *Handler {
	return &Handler{
		mailer: mailer,
		logger: logger,
	}
}

func (h *Handler) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeEmailDelivery, h.HandleEmailDelivery)
}

func (h *Handler) HandleEmailDelivery(ctx context.Context, t *asynq.Task) error {
	var payload EmailDeliveryPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	h.logger.Info("delivering email",
		"to", payload.ToAddress,
		"subject", payload.Subject,
	)

	if err := h.mailer.Send(ctx, payload.ToAddress, payload.ToName, payload.Subject, payload.HTMLBody); err != nil {
		h.logger.Error("email delivery failed", "to", payload.ToAddress, "error", err)
		return err
	}

	return nil
}
