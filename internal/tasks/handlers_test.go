package tasks_test

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/sanadchat/sanad/internal/tasks"
	"github.com/sanadchat/sanad/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleEmailDelivery(t *testing.T) {
	notifier := &testutil.FakeNotifier{}
	handler := tasks.NewHandler(notifier, testutil.NewTestLogger())

	task, err := tasks.NewEmailDeliveryTask(tasks.EmailDeliveryPayload{
		ToAddress: "alice@example.com",
		ToName:    "Alice",
		Subject:   "Verify your email",
		HTMLBody:  "<p>hello</p>",
	})
	require.NoError(t, err)

	require.NoError(t, handler.HandleEmailDelivery(context.Background(), task))

	calls := notifier.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "alice@example.com", calls[0].ToAddress)
	assert.Equal(t, "Alice", calls[0].ToName)
	assert.Equal(t, "Verify your email", calls[0].Subject)
	assert.Equal(t, "<p>hello</p>", calls[0].HTMLBody)
}

func TestHandleEmailDelivery_SendFailure(t *testing.T) {
	notifier := &testutil.FakeNotifier{Err: errors.New("smtp down")}
	handler := tasks.NewHandler(notifier, testutil.NewTestLogger())

	task, err := tasks.NewEmailDeliveryTask(tasks.EmailDeliveryPayload{
		ToAddress: "alice@example.com",
	})
	require.NoError(t, err)

	// The error propagates so asynq will retry the delivery.
	assert.Error(t, handler.HandleEmailDelivery(context.Background(), task))
}

func TestHandleEmailDelivery_BadPayload(t *testing.T) {
	handler := tasks.NewHandler(&testutil.FakeNotifier{}, testutil.NewTestLogger())

	task := asynq.NewTask(tasks.TypeEmailDelivery, []byte("not json"))

	assert.Error(t, handler.HandleEmailDelivery(context.Background(), task))
}
