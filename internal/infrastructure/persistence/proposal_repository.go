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

const proposalColumns = `id, task_id, provider_id, estimated_hours, bid_amount, message, status, reject_reason, created_at, updated_at`

// активные предложения: submitted и shortlisted
const activeProposal = `status IN ('submitted', 'shortlisted')`

type ProposalRepository struct {
	db *sqlx.DB
}

func NewProposalRepository(db *sqlx.DB) *ProposalRepository {
	return &ProposalRepository{db: db}
}

func (r *ProposalRepository) Create(ctx context.Context, p *entity.Proposal) error {
	query := `
		INSERT INTO proposals (` + proposalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		p.ID, p.TaskID, p.ProviderID, p.EstimatedHours, p.BidAmount, p.Message,
		p.Status, p.RejectReason, p.CreatedAt, p.UpdatedAt,
	)
	if name, dup := uniqueConstraint(err); dup && name == "proposals_active_provider_idx" {
		return apperror.ErrDuplicateProposal
	}
	if err != nil {
		return dbError(err, "не удалось создать предложение")
	}
	return nil
}

func (r *ProposalRepository) Update(ctx context.Context, p *entity.Proposal) error {
	query := `UPDATE proposals SET status = $2, reject_reason = $3, updated_at = $4 WHERE id = $1`
	res, err := conn(ctx, r.db).ExecContext(ctx, query, p.ID, p.Status, p.RejectReason, p.UpdatedAt)
	if err != nil {
		return dbError(err, "не удалось обновить предложение")
	}
	return expectRow(res, apperror.ErrProposalNotFound)
}

func (r *ProposalRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Proposal, error) {
	return r.get(ctx, `SELECT `+proposalColumns+` FROM proposals WHERE id = $1`, id)
}

func (r *ProposalRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*entity.Proposal, error) {
	return r.get(ctx, `SELECT `+proposalColumns+` FROM proposals WHERE id = $1 FOR UPDATE`, id)
}

func (r *ProposalRepository) get(ctx context.Context, query string, id uuid.UUID) (*entity.Proposal, error) {
	var row proposalRow
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), &row, query, id); err != nil {
		return nil, notFound(err, apperror.ErrProposalNotFound, "не удалось получить предложение")
	}
	return row.toEntity(), nil
}

func (r *ProposalRepository) LockActiveByTask(ctx context.Context, taskID uuid.UUID) ([]*entity.Proposal, error) {
	var rows []proposalRow
	query := `SELECT ` + proposalColumns + ` FROM proposals WHERE task_id = $1 AND ` + activeProposal + ` ORDER BY id FOR UPDATE`
	if err := sqlx.SelectContext(ctx, conn(ctx, r.db), &rows, query, taskID); err != nil {
		return nil, dbError(err, "не удалось заблокировать предложения задачи")
	}
	return toProposalEntities(rows), nil
}

func (r *ProposalRepository) HasActive(ctx context.Context, taskID, providerID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM proposals WHERE task_id = $1 AND provider_id = $2 AND ` + activeProposal + `)`
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), &exists, query, taskID, providerID); err != nil {
		return false, dbError(err, "не удалось проверить предложения")
	}
	return exists, nil
}

func (r *ProposalRepository) List(ctx context.Context, filter repository.ProposalFilter) ([]*entity.Proposal, int, error) {
	var where []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if filter.TaskID != nil {
		add("p.task_id = $%d", *filter.TaskID)
	}
	if filter.ProviderID != nil {
		add("p.provider_id = $%d", *filter.ProviderID)
	}
	if filter.RequesterID != nil {
		add("t.requester_id = $%d", *filter.RequesterID)
	}
	if filter.Status != "" {
		add("p.status = $%d", filter.Status)
	}
	cond := "TRUE"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}
	from := `FROM proposals p JOIN tasks t ON t.id = p.task_id WHERE ` + cond

	var total int
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), &total, `SELECT COUNT(*) `+from, args...); err != nil {
		return nil, 0, dbError(err, "не удалось посчитать предложения")
	}

	page := filter.Page.Normalize()
	args = append(args, page.Limit, page.Offset)
	query := fmt.Sprintf(`SELECT p.id, p.task_id, p.provider_id, p.estimated_hours, p.bid_amount, p.message,
		p.status, p.reject_reason, p.created_at, p.updated_at %s ORDER BY p.created_at DESC LIMIT $%d OFFSET $%d`,
		from, len(args)-1, len(args))

	var rows []proposalRow
	if err := sqlx.SelectContext(ctx, conn(ctx, r.db), &rows, query, args...); err != nil {
		return nil, 0, dbError(err, "не удалось получить предложения")
	}
	return toProposalEntities(rows), total, nil
}

func (r *ProposalRepository) FindStaleActive(ctx context.Context, before time.Time, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	query := `SELECT id FROM proposals WHERE ` + activeProposal + ` AND created_at < $1 ORDER BY created_at LIMIT $2`
	if err := sqlx.SelectContext(ctx, conn(ctx, r.db), &ids, query, before, limit); err != nil {
		return nil, dbError(err, "не удалось найти устаревшие предложения")
	}
	return ids, nil
}

type proposalRow struct {
	ID             uuid.UUID       `db:"id"`
	TaskID         uuid.UUID       `db:"task_id"`
	ProviderID     uuid.UUID       `db:"provider_id"`
	EstimatedHours int             `db:"estimated_hours"`
	BidAmount      decimal.Decimal `db:"bid_amount"`
	Message        string          `db:"message"`
	Status         string          `db:"status"`
	RejectReason   string          `db:"reject_reason"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

func (p *proposalRow) toEntity() *entity.Proposal {
	status, _ := valueobject.NewProposalStatus(p.Status)
	return &entity.Proposal{
		ID:             p.ID,
		TaskID:         p.TaskID,
		ProviderID:     p.ProviderID,
		EstimatedHours: p.EstimatedHours,
		BidAmount:      p.BidAmount,
		Message:        p.Message,
		Status:         status,
		RejectReason:   valueobject.RejectReason(p.RejectReason),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func toProposalEntities(rows []proposalRow) []*entity.Proposal {
	result := make([]*entity.Proposal, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result
}
