package notify_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/timebank-backend/internal/domain/event"
	"github.com/ignatzorin/timebank-backend/internal/domain/valueobject"
	"github.com/ignatzorin/timebank-backend/internal/infrastructure/notify"
)

type mockBroadcaster struct {
	mock.Mock
}

func (m *mockBroadcaster) BroadcastToUser(userID uuid.UUID, evt string, data any) error {
	args := m.Called(userID, evt, data)
	return args.Error(0)
}

func TestHubPublisher_SendsToBothParties(t *testing.T) {
	e := event.ContractTransition{
		Type:        event.ContractDelivered,
		ContractID:  uuid.New(),
		RequesterID: uuid.New(),
		ProviderID:  uuid.New(),
		FromState:   valueobject.ContractStateActive,
		ToState:     valueobject.ContractStateDelivered,
	}

	hub := new(mockBroadcaster)
	hub.On("BroadcastToUser", e.RequesterID, "contract.delivered", e).Return(nil).Once()
	hub.On("BroadcastToUser", e.ProviderID, "contract.delivered", e).Return(nil).Once()

	notify.Multi{notify.LogPublisher{}, notify.NewHubPublisher(hub)}.Publish(context.Background(), e)

	hub.AssertExpectations(t)
}

func TestMulti_CallsEveryPublisher(t *testing.T) {
	var calls []string
	rec := func(name string) event.Publisher {
		return event.PublisherFunc(func(context.Context, event.ContractTransition) { calls = append(calls, name) })
	}

	notify.Multi{rec("a"), rec("b")}.Publish(context.Background(), event.ContractTransition{})
	assert.Equal(t, []string{"a", "b"}, calls)
}
