package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// Task type names
const (
	TypeEmailDelivery = "email:deliver"
)

// EmailDeliveryPayload contains the data for an outbound email task.
type EmailDeliveryPayload struct {
	ToAddress string `json:"to_address"`
	ToName    string `json:"to_name"`
	Subject   string `json:"subject"`
	HTMLBody  string `json:"html_body"`
}

func NewEmailDeliveryTask(payload EmailDeliveryPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeEmailDelivery, data, asynq.MaxRetry(5)), nil
}
