package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/timebank-backend/internal/domain/entity"
	"github.com/ignatzorin/timebank-backend/internal/domain/repository"
	"github.com/ignatzorin/timebank-backend/internal/domain/valueobject"
	"github.com/ignatzorin/timebank-backend/internal/pkg/apperror"
)

const taskColumns = `id, requester_id, title, description, budget, deadline, required_skills, category,
	complexity, urgency, status, proposal_count, published_at, closed_at, created_at, updated_at`

type TaskRepository struct {
	db *sqlx.DB
}

func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *entity.Task) error {
	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		task.ID, task.RequesterID, task.Title, task.Description, task.Budget, task.Deadline,
		pq.StringArray(task.RequiredSkills), task.Category, task.Complexity, task.Urgency,
		task.Status, task.ProposalCount, task.PublishedAt, task.ClosedAt, task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return dbError(err, "не удалось создать задачу")
	}
	return nil
}

func (r *TaskRepository) Update(ctx context.Context, task *entity.Task) error {
	query := `
		UPDATE tasks SET
			title = $2, description = $3, budget = $4, deadline = $5, required_skills = $6,
			category = $7, complexity = $8, urgency = $9, status = $10, proposal_count = $11,
			published_at = $12, closed_at = $13, updated_at = $14
		WHERE id = $1
	`
	res, err := conn(ctx, r.db).ExecContext(ctx, query,
		task.ID, task.Title, task.Description, task.Budget, task.Deadline,
		pq.StringArray(task.RequiredSkills), task.Category, task.Complexity, task.Urgency,
		task.Status, task.ProposalCount, task.PublishedAt, task.ClosedAt, task.UpdatedAt,
	)
	if err != nil {
		return dbError(err, "не удалось обновить задачу")
	}
	return expectRow(res, apperror.ErrTaskNotFound)
}

func (r *TaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Task, error) {
	return r.get(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
}

func (r *TaskRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*entity.Task, error) {
	return r.get(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1 FOR UPDATE`, id)
}

func (r *TaskRepository) get(ctx context.Context, query string, id uuid.UUID) (*entity.Task, error) {
	var row taskRow
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), &row, query, id); err != nil {
		return nil, notFound(err, apperror.ErrTaskNotFound, "не удалось получить задачу")
	}
	return row.toEntity(), nil
}

func (r *TaskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]*entity.Task, int, error) {
	var where []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if filter.RequesterID != nil {
		add("requester_id = $%d", *filter.RequesterID)
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.Category != "" {
		add("category = $%d", filter.Category)
	}
	cond := "TRUE"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), &total, `SELECT COUNT(*) FROM tasks WHERE `+cond, args...); err != nil {
		return nil, 0, dbError(err, "не удалось посчитать задачи")
	}

	page := filter.Page.Normalize()
	args = append(args, page.Limit, page.Offset)
	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		taskColumns, cond, len(args)-1, len(args))

	var rows []taskRow
	if err := sqlx.SelectContext(ctx, conn(ctx, r.db), &rows, query, args...); err != nil {
		return nil, 0, dbError(err, "не удалось получить задачи")
	}
	return toTaskEntities(rows), total, nil
}

func (r *TaskRepository) FindOverdueOpen(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	query := `SELECT id FROM tasks WHERE status = $1 AND deadline < $2 ORDER BY deadline LIMIT $3`
	if err := sqlx.SelectContext(ctx, conn(ctx, r.db), &ids, query, valueobject.TaskStatusOpen, now, limit); err != nil {
		return nil, dbError(err, "не удалось найти просроченные задачи")
	}
	return ids, nil
}

type taskRow struct {
	ID             uuid.UUID       `db:"id"`
	RequesterID    uuid.UUID       `db:"requester_id"`
	Title          string          `db:"title"`
	Description    string          `db:"description"`
	Budget         decimal.Decimal `db:"budget"`
	Deadline       time.Time       `db:"deadline"`
	RequiredSkills pq.StringArray  `db:"required_skills"`
	Category       string          `db:"category"`
	Complexity     string          `db:"complexity"`
	Urgency        string          `db:"urgency"`
	Status         string          `db:"status"`
	ProposalCount  int             `db:"proposal_count"`
	PublishedAt    *time.Time      `db:"published_at"`
	ClosedAt       *time.Time      `db:"closed_at"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

func (t *taskRow) toEntity() *entity.Task {
	status, _ := valueobject.NewTaskStatus(t.Status)
	return &entity.Task{
		ID:             t.ID,
		RequesterID:    t.RequesterID,
		Title:          t.Title,
		Description:    t.Description,
		Budget:         t.Budget,
		Deadline:       t.Deadline,
		RequiredSkills: []string(t.RequiredSkills),
		Category:       valueobject.Category(t.Category),
		Complexity:     valueobject.Complexity(t.Complexity),
		Urgency:        valueobject.Urgency(t.Urgency),
		Status:         status,
		ProposalCount:  t.ProposalCount,
		PublishedAt:    t.PublishedAt,
		ClosedAt:       t.ClosedAt,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

func toTaskEntities(rows []taskRow) []*entity.Task {
	result := make([]*entity.Task, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result
}
