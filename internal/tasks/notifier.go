package tasks

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
)

// QueueNotifier hands outbound email to the worker instead of sending it
// inline. Enqueueing is cheap, and asynq retries failed deliveries.
type QueueNotifier struct {
	client *asynq.Client
}

func NewQueueNotifier(client *asynq.Client) *QueueNotifier {
	return &QueueNotifier{client: client}
}

func (n *QueueNotifier) Send(ctx context.Context, toAddress, toName, subject, htmlBody string) error {
	task, err := NewEmailDeliveryTask(EmailDeliveryPayload{
		ToAddress: toAddress,
		ToName:    toName,
		Subject:   subject,
		HTMLBody:  htmlBody,
	})
	if err != nil {
		return fmt.Errorf("building email task: %w", err)
	}

	if _, err := n.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("enqueueing email task: %w", err)
	}

	return nil
}
