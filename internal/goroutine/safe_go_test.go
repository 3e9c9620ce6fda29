package goroutine

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type chanLogger chan string

func (c chanLogger) Errorf(format string, args ...interface{}) {
	c <- fmt.Sprintf(format, args...)
}

func TestSafeGo_RecoversPanic(t *testing.T) {
	logs := make(chanLogger, 1)
	NewRecoveryHandler(logs).SafeGo(func() { panic("boom") })

	select {
	case msg := <-logs:
		assert.Contains(t, msg, "boom")
	case <-time.After(time.Second):
		t.Fatal("panic was not logged")
	}
}

func TestSafeGoWithContext_PassesContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "v")
	got := make(chan any, 1)

	NewRecoveryHandler(make(chanLogger, 1)).SafeGoWithContext(ctx, func(ctx context.Context) {
		got <- ctx.Value(key{})
	})

	select {
	case v := <-got:
		assert.Equal(t, "v", v)
	case <-time.After(time.Second):
		t.Fatal("goroutine did not run")
	}
}
