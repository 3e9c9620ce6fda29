package entity

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/timebank-backend/internal/domain/valueobject"
	"github.com/ignatzorin/timebank-backend/internal/pkg/apperror"
)

const (
	MinTaskTitleLength       = 5
	MaxTaskTitleLength       = 100
	MinTaskDescriptionLength = 20
	MaxTaskDescriptionLength = 2000
	MaxSkillsPerTask         = 10
)

type Task struct {
	ID             uuid.UUID
	RequesterID    uuid.UUID
	Title          string
	Description    string
	Budget         decimal.Decimal
	Deadline       time.Time
	RequiredSkills []string
	Category       valueobject.Category
	Complexity     valueobject.Complexity
	Urgency        valueobject.Urgency
	Status         valueobject.TaskStatus
	ProposalCount  int
	PublishedAt    *time.Time
	ClosedAt       *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TaskParams - редактируемые поля задачи.
type TaskParams struct {
	Title          string
	Description    string
	Budget         decimal.Decimal
	Deadline       time.Time
	RequiredSkills []string
	Category       string
	Complexity     string
	Urgency        string
}

type taskFields struct {
	title       string
	description string
	budget      decimal.Decimal
	deadline    time.Time
	skills      []string
	category    valueobject.Category
	complexity  valueobject.Complexity
	urgency     valueobject.Urgency
}

func validateTaskParams(p TaskParams, now time.Time) (taskFields, error) {
	var f taskFields

	f.title = strings.TrimSpace(p.Title)
	if n := utf8.RuneCountInString(f.title); n < MinTaskTitleLength || n > MaxTaskTitleLength {
		return f, apperror.Validation("title", "название должно быть от 5 до 100 символов")
	}
	f.description = strings.TrimSpace(p.Description)
	if n := utf8.RuneCountInString(f.description); n < MinTaskDescriptionLength || n > MaxTaskDescriptionLength {
		return f, apperror.Validation("description", "описание должно быть от 20 до 2000 символов")
	}

	budget, err := valueobject.NewCoinsInRange("budget", p.Budget, valueobject.MinTaskBudget, valueobject.MaxTaskBudget)
	if err != nil {
		return f, err
	}
	f.budget = budget

	if !p.Deadline.After(now) {
		return f, apperror.Validation("deadline", "дедлайн должен быть в будущем")
	}
	f.deadline = p.Deadline

	f.skills = normalizeSkills(p.RequiredSkills)
	if len(f.skills) == 0 || len(f.skills) > MaxSkillsPerTask {
		return f, apperror.Validation("requiredSkills", "укажите от 1 до 10 навыков")
	}

	if f.category, err = valueobject.NewCategory(p.Category); err != nil {
		return f, err
	}
	if f.complexity, err = valueobject.NewComplexity(p.Complexity); err != nil {
		return f, err
	}
	if f.urgency, err = valueobject.NewUrgency(p.Urgency); err != nil {
		return f, err
	}
	return f, nil
}

// normalizeSkills убирает пустые и повторяющиеся навыки, сохраняя порядок.
func normalizeSkills(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	result := make([]string, 0, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, s)
	}
	return result
}

func NewTask(requesterID uuid.UUID, p TaskParams, now time.Time) (*Task, error) {
	f, err := validateTaskParams(p, now)
	if err != nil {
		return nil, err
	}

	return &Task{
		ID:             uuid.New(),
		RequesterID:    requesterID,
		Title:          f.title,
		Description:    f.description,
		Budget:         f.budget,
		Deadline:       f.deadline,
		RequiredSkills: f.skills,
		Category:       f.category,
		Complexity:     f.complexity,
		Urgency:        f.urgency,
		Status:         valueobject.TaskStatusDraft,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Update доступен только для черновика.
func (t *Task) Update(p TaskParams, now time.Time) error {
	if t.Status != valueobject.TaskStatusDraft {
		return apperror.InvalidState("task", string(t.Status), "update")
	}
	f, err := validateTaskParams(p, now)
	if err != nil {
		return err
	}

	t.Title = f.title
	t.Description = f.description
	t.Budget = f.budget
	t.Deadline = f.deadline
	t.RequiredSkills = f.skills
	t.Category = f.category
	t.Complexity = f.complexity
	t.Urgency = f.urgency
	t.UpdatedAt = now
	return nil
}

// Publish открывает задачу для предложений. floor == nil отключает проверку минимальной цены.
func (t *Task) Publish(floor *decimal.Decimal, now time.Time) error {
	if !t.Status.CanTransitionTo(valueobject.TaskStatusOpen) {
		return apperror.InvalidState("task", string(t.Status), "publish")
	}
	if !t.Deadline.After(now) {
		return apperror.Validation("deadline", "дедлайн задачи уже прошёл")
	}
	if floor != nil && t.Budget.LessThan(*floor) {
		return apperror.New(apperror.ErrCodeBelowFloorPrice, "бюджет ниже минимальной цены для этой категории").
			WithDetail("budget", t.Budget.String()).
			WithDetail("floor", floor.String())
	}
	t.Status = valueobject.TaskStatusOpen
	t.PublishedAt = &now
	t.UpdatedAt = now
	return nil
}

func (t *Task) AcceptsProposals() bool {
	return t.Status == valueobject.TaskStatusOpen
}

// EnsureOpen возвращает TASK_NOT_OPEN, если задача не принимает предложения.
func (t *Task) EnsureOpen() error {
	if !t.AcceptsProposals() {
		return apperror.ErrTaskNotOpen.WithDetail("status", string(t.Status))
	}
	return nil
}

func (t *Task) IncrementProposals(now time.Time) {
	t.ProposalCount++
	t.UpdatedAt = now
}

func (t *Task) MarkContracted(now time.Time) error {
	if !t.Status.CanTransitionTo(valueobject.TaskStatusContracted) {
		return apperror.InvalidState("task", string(t.Status), "contract")
	}
	t.Status = valueobject.TaskStatusContracted
	t.UpdatedAt = now
	return nil
}

func (t *Task) Complete(now time.Time) error {
	if t.Status != valueobject.TaskStatusContracted {
		return apperror.InvalidState("task", string(t.Status), "complete")
	}
	t.Status = valueobject.TaskStatusCompleted
	t.ClosedAt = &now
	t.UpdatedAt = now
	return nil
}

// Cancel - отмена заказчиком до заключения контракта.
func (t *Task) Cancel(now time.Time) error {
	if t.Status != valueobject.TaskStatusDraft && t.Status != valueobject.TaskStatusOpen {
		return apperror.InvalidState("task", string(t.Status), "cancel")
	}
	t.Status = valueobject.TaskStatusCancelled
	t.ClosedAt = &now
	t.UpdatedAt = now
	return nil
}

// CloseAfterContractCancelled закрывает задачу, чей контракт отменён.
func (t *Task) CloseAfterContractCancelled(now time.Time) error {
	if t.Status != valueobject.TaskStatusContracted {
		return apperror.InvalidState("task", string(t.Status), "cancel")
	}
	t.Status = valueobject.TaskStatusCancelled
	t.ClosedAt = &now
	t.UpdatedAt = now
	return nil
}

func (t *Task) IsOverdue(now time.Time) bool {
	return now.After(t.Deadline)
}

// Expire переводит открытую просроченную задачу в expired. Возвращает false, если переход не нужен.
func (t *Task) Expire(now time.Time) bool {
	if t.Status != valueobject.TaskStatusOpen || !t.IsOverdue(now) {
		return false
	}
	t.Status = valueobject.TaskStatusExpired
	t.ClosedAt = &now
	t.UpdatedAt = now
	return true
}

func (t *Task) IsOwnedBy(userID uuid.UUID) bool {
	return t.RequesterID == userID
}

func (t *Task) Clone() *Task {
	cp := *t
	cp.RequiredSkills = append([]string(nil), t.RequiredSkills...)
	cp.PublishedAt = cloneTime(t.PublishedAt)
	cp.ClosedAt = cloneTime(t.ClosedAt)
	return &cp
}
