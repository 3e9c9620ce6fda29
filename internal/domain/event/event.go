package event

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/timebank-backend/internal/domain/valueobject"
)

type Type string

const (
	ContractCreated   Type = "contract.created"
	ContractEscrowed  Type = "contract.escrowed"
	ContractDelivered Type = "contract.delivered"
	ContractReleased  Type = "contract.released"
	ContractDisputed  Type = "contract.disputed"
	ContractCancelled Type = "contract.cancelled"
)

var operationTypes = map[valueobject.ContractOperation]Type{
	valueobject.ContractOpEscrow:  ContractEscrowed,
	valueobject.ContractOpDeliver: ContractDelivered,
	valueobject.ContractOpRelease: ContractReleased,
	valueobject.ContractOpDispute: ContractDisputed,
	valueobject.ContractOpCancel:  ContractCancelled,
}

// TypeFor возвращает тип события для операции над контрактом.
func TypeFor(op valueobject.ContractOperation) Type {
	return operationTypes[op]
}

// ContractTransition описывает один зафиксированный переход контракта.
type ContractTransition struct {
	Type        Type                      `json:"type"`
	ContractID  uuid.UUID                 `json:"contractId"`
	TaskID      uuid.UUID                 `json:"taskId"`
	RequesterID uuid.UUID                 `json:"requesterId"`
	ProviderID  uuid.UUID                 `json:"providerId"`
	FromState   valueobject.ContractState `json:"fromState"`
	ToState     valueobject.ContractState `json:"toState"`
	ActorID     uuid.UUID                 `json:"actorId"`
	Timestamp   time.Time                 `json:"timestamp"`
}

// Recipients - участники контракта, которым адресовано событие.
func (e ContractTransition) Recipients() []uuid.UUID {
	return []uuid.UUID{e.RequesterID, e.ProviderID}
}

// Publisher получает события только после фиксации транзакции.
// Ошибка публикации не откатывает переход.
type Publisher interface {
	Publish(ctx context.Context, e ContractTransition)
}

type PublisherFunc func(ctx context.Context, e ContractTransition)

func (f PublisherFunc) Publish(ctx context.Context, e ContractTransition) {
	f(ctx, e)
}

// Nop отбрасывает события.
var Nop Publisher = PublisherFunc(func(context.Context, ContractTransition) {})
