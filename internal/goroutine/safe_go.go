package goroutine

import (
	"context"
	"runtime/debug"

	"github.com/ignatzorin/timebank-backend/internal/logger"
)

// Logger - то, что нужно для записи паники. *logrus.Logger подходит.
type Logger interface {
	Errorf(format string, args ...interface{})
}

// RecoveryHandler обрабатывает panic в горутинах
type RecoveryHandler struct {
	logger Logger
}

func NewRecoveryHandler(logger Logger) *RecoveryHandler {
	return &RecoveryHandler{logger: logger}
}

// SafeGo запускает горутину с обработкой panic
func (rh *RecoveryHandler) SafeGo(fn func()) {
	go func() {
		defer rh.recover("goroutine")
		fn()
	}()
}

// SafeGoWithContext запускает горутину с контекстом и обработкой panic
func (rh *RecoveryHandler) SafeGoWithContext(ctx context.Context, fn func(context.Context)) {
	go func() {
		defer rh.recover("goroutine (with context)")
		fn(ctx)
	}()
}

func (rh *RecoveryHandler) recover(where string) {
	if r := recover(); r != nil {
		rh.logger.Errorf("panic in %s: %v\nstack trace:\n%s", where, r, debug.Stack())
	}
}

// SafeGo запускает горутину, паника пишется в общий логгер.
func SafeGo(fn func()) {
	NewRecoveryHandler(logger.Log).SafeGo(fn)
}

func SafeGoWithContext(ctx context.Context, fn func(context.Context)) {
	NewRecoveryHandler(logger.Log).SafeGoWithContext(ctx, fn)
}
