// Package notify доставляет события контрактов во внешние каналы.
package notify

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/timebank-backend/internal/domain/event"
	"github.com/ignatzorin/timebank-backend/internal/logger"
)

// LogPublisher пишет каждое событие в журнал приложения.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, e event.ContractTransition) {
	logger.Log.WithFields(logrus.Fields{
		"event":       e.Type,
		"contract_id": e.ContractID,
		"from":        e.FromState,
		"to":          e.ToState,
		"actor_id":    e.ActorID,
	}).Debug("contract event")
}

// Broadcaster - получатель рассылки по пользователю, например ws.Hub.
type Broadcaster interface {
	BroadcastToUser(userID uuid.UUID, event string, data any) error
}

// HubPublisher отправляет событие обоим участникам контракта.
type HubPublisher struct {
	hub Broadcaster
}

func NewHubPublisher(hub Broadcaster) *HubPublisher {
	return &HubPublisher{hub: hub}
}

func (p *HubPublisher) Publish(_ context.Context, e event.ContractTransition) {
	for _, userID := range e.Recipients() {
		if err := p.hub.BroadcastToUser(userID, string(e.Type), e); err != nil {
			logger.Log.WithError(err).WithField("contract_id", e.ContractID).Warn("notify: рассылка не удалась")
		}
	}
}

// Multi раздаёт событие всем издателям по порядку.
type Multi []event.Publisher

func (m Multi) Publish(ctx context.Context, e event.ContractTransition) {
	for _, p := range m {
		p.Publish(ctx, e)
	}
}
