package repository

import "context"

// Transactor выполняет fn в одной транзакции хранилища. Транзакция передаётся через ctx,
// вложенный вызов присоединяется к внешней. Ошибка fn откатывает всё.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type Page struct {
	Limit  int
	Offset int
}

// Normalize подставляет размер страницы по умолчанию и ограничивает максимум.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
