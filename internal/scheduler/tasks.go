package scheduler

import (
	"encoding/json"
	"fmt"

	"leadconnect_backend/internal/conversations/service"

	"github.com/hibiken/asynq"
)

const (
	TaskWhatsAppInbound = "conversations.whatsapp.inbound"
)

type WhatsAppInboundPayload = service.WhatsAppMessage

func NewWhatsAppInboundTask(payload WhatsAppInboundPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskWhatsAppInbound, data), nil
}

func ParseWhatsAppInboundPayload(task *asynq.Task) (WhatsAppInboundPayload, error) {
	var payload WhatsAppInboundPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return WhatsAppInboundPayload{}, fmt.Errorf("%w: decode %s payload: %w", asynq.SkipRetry, task.Type(), err)
	}
	return payload, nil
}
