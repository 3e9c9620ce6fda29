package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/timebank-backend/internal/domain/entity"
	"github.com/ignatzorin/timebank-backend/internal/domain/repository"
	"github.com/ignatzorin/timebank-backend/internal/domain/valueobject"
	"github.com/ignatzorin/timebank-backend/internal/pkg/apperror"
)

// Контракт и платёж лежат в разных таблицах, но читаются и пишутся вместе.
const contractSelect = `
	SELECT c.id, c.task_id, c.proposal_id, c.requester_id, c.provider_id, c.agreed_amount, c.agreed_minutes,
		c.status, c.deadline, c.cancel_reason, c.dispute_reason, c.activated_at, c.delivered_at,
		c.completed_at, c.cancelled_at, c.disputed_at, c.created_at, c.updated_at,
		p.id AS payment_id, p.amount AS payment_amount, p.phase AS payment_phase,
		p.escrowed_at, p.released_at, p.refunded_at
	FROM contracts c
	JOIN contract_payments p ON p.contract_id = c.id
`

type ContractRepository struct {
	db *sqlx.DB
}

func NewContractRepository(db *sqlx.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

func (r *ContractRepository) Create(ctx context.Context, c *entity.Contract) error {
	q := conn(ctx, r.db)
	_, err := q.ExecContext(ctx, `
		INSERT INTO contracts (id, task_id, proposal_id, requester_id, provider_id, agreed_amount, agreed_minutes,
			status, deadline, cancel_reason, dispute_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, c.ID, c.TaskID, c.ProposalID, c.RequesterID, c.ProviderID, c.AgreedAmount, c.AgreedMinutes,
		c.Status(), c.Deadline, c.CancelReason, c.DisputeReason, c.CreatedAt, c.UpdatedAt,
	)
	if _, dup := uniqueConstraint(err); dup {
		return apperror.New(apperror.ErrCodeConflict, "по этому предложению уже заключён контракт")
	}
	if err != nil {
		return dbError(err, "не удалось создать контракт")
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO contract_payments (id, contract_id, amount, phase, escrowed_at, released_at, refunded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, c.Payment.ID, c.ID, c.Payment.Amount, c.Phase(), c.Payment.EscrowedAt, c.Payment.ReleasedAt, c.Payment.RefundedAt)
	if err != nil {
		return dbError(err, "не удалось создать платёж контракта")
	}
	return nil
}

func (r *ContractRepository) Update(ctx context.Context, c *entity.Contract) error {
	q := conn(ctx, r.db)
	res, err := q.ExecContext(ctx, `
		UPDATE contracts SET
			status = $2, cancel_reason = $3, dispute_reason = $4, activated_at = $5, delivered_at = $6,
			completed_at = $7, cancelled_at = $8, disputed_at = $9, updated_at = $10
		WHERE id = $1
	`, c.ID, c.Status(), c.CancelReason, c.DisputeReason, c.ActivatedAt, c.DeliveredAt,
		c.CompletedAt, c.CancelledAt, c.DisputedAt, c.UpdatedAt,
	)
	if err != nil {
		return dbError(err, "не удалось обновить контракт")
	}
	if err := expectRow(res, apperror.ErrContractNotFound); err != nil {
		return err
	}

	res, err = q.ExecContext(ctx, `
		UPDATE contract_payments SET phase = $2, escrowed_at = $3, released_at = $4, refunded_at = $5
		WHERE contract_id = $1
	`, c.ID, c.Phase(), c.Payment.EscrowedAt, c.Payment.ReleasedAt, c.Payment.RefundedAt)
	if err != nil {
		return dbError(err, "не удалось обновить платёж контракта")
	}
	return expectRow(res, apperror.ErrContractNotFound)
}

func (r *ContractRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Contract, error) {
	return r.get(ctx, contractSelect+` WHERE c.id = $1`, id)
}

// LockForUpdate блокирует обе строки агрегата.
func (r *ContractRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*entity.Contract, error) {
	return r.get(ctx, contractSelect+` WHERE c.id = $1 FOR UPDATE OF c, p`, id)
}

func (r *ContractRepository) get(ctx context.Context, query string, id uuid.UUID) (*entity.Contract, error) {
	var row contractRow
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), &row, query, id); err != nil {
		return nil, notFound(err, apperror.ErrContractNotFound, "не удалось получить контракт")
	}
	return row.toEntity()
}

func (r *ContractRepository) List(ctx context.Context, filter repository.ContractFilter) ([]*entity.Contract, int, error) {
	args := []any{filter.UserID}
	var where []string
	switch filter.Role {
	case entity.RoleRequester:
		where = append(where, "c.requester_id = $1")
	case entity.RoleProvider:
		where = append(where, "c.provider_id = $1")
	default:
		where = append(where, "(c.requester_id = $1 OR c.provider_id = $1)")
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("c.status = $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), &total, `SELECT COUNT(*) FROM contracts c WHERE `+cond, args...); err != nil {
		return nil, 0, dbError(err, "не удалось посчитать контракты")
	}

	page := filter.Page.Normalize()
	args = append(args, page.Limit, page.Offset)
	query := fmt.Sprintf(`%s WHERE %s ORDER BY c.created_at DESC LIMIT $%d OFFSET $%d`,
		contractSelect, cond, len(args)-1, len(args))

	var rows []contractRow
	if err := sqlx.SelectContext(ctx, conn(ctx, r.db), &rows, query, args...); err != nil {
		return nil, 0, dbError(err, "не удалось получить контракты")
	}

	result := make([]*entity.Contract, len(rows))
	for i := range rows {
		c, err := rows[i].toEntity()
		if err != nil {
			return nil, 0, err
		}
		result[i] = c
	}
	return result, total, nil
}

type contractRow struct {
	ID            uuid.UUID       `db:"id"`
	TaskID        uuid.UUID       `db:"task_id"`
	ProposalID    uuid.UUID       `db:"proposal_id"`
	RequesterID   uuid.UUID       `db:"requester_id"`
	ProviderID    uuid.UUID       `db:"provider_id"`
	AgreedAmount  decimal.Decimal `db:"agreed_amount"`
	AgreedMinutes int             `db:"agreed_minutes"`
	Status        string          `db:"status"`
	Deadline      time.Time       `db:"deadline"`
	CancelReason  string          `db:"cancel_reason"`
	DisputeReason string          `db:"dispute_reason"`
	ActivatedAt   *time.Time      `db:"activated_at"`
	DeliveredAt   *time.Time      `db:"delivered_at"`
	CompletedAt   *time.Time      `db:"completed_at"`
	CancelledAt   *time.Time      `db:"cancelled_at"`
	DisputedAt    *time.Time      `db:"disputed_at"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`

	PaymentID     uuid.UUID       `db:"payment_id"`
	PaymentAmount decimal.Decimal `db:"payment_amount"`
	PaymentPhase  string          `db:"payment_phase"`
	EscrowedAt    *time.Time      `db:"escrowed_at"`
	ReleasedAt    *time.Time      `db:"released_at"`
	RefundedAt    *time.Time      `db:"refunded_at"`
}

// toEntity отвергает пару статус/фаза, которой нет в таблице состояний.
func (c *contractRow) toEntity() (*entity.Contract, error) {
	state, err := valueobject.JoinContractState(
		valueobject.ContractStatus(c.Status),
		valueobject.PaymentPhase(c.PaymentPhase),
	)
	if err != nil {
		return nil, err
	}

	return &entity.Contract{
		ID:            c.ID,
		TaskID:        c.TaskID,
		ProposalID:    c.ProposalID,
		RequesterID:   c.RequesterID,
		ProviderID:    c.ProviderID,
		AgreedAmount:  c.AgreedAmount,
		AgreedMinutes: c.AgreedMinutes,
		State:         state,
		Deadline:      c.Deadline,
		Payment: entity.Payment{
			ID:         c.PaymentID,
			Amount:     c.PaymentAmount,
			EscrowedAt: c.EscrowedAt,
			ReleasedAt: c.ReleasedAt,
			RefundedAt: c.RefundedAt,
		},
		CancelReason:  entity.CancelReason(c.CancelReason),
		DisputeReason: c.DisputeReason,
		ActivatedAt:   c.ActivatedAt,
		DeliveredAt:   c.DeliveredAt,
		CompletedAt:   c.CompletedAt,
		CancelledAt:   c.CancelledAt,
		DisputedAt:    c.DisputedAt,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}, nil
}
