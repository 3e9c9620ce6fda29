package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/timebank-backend/internal/domain/valueobject"
	"github.com/ignatzorin/timebank-backend/internal/logger"
	"github.com/ignatzorin/timebank-backend/internal/pricing"
)

func init() {
	logger.Silence()
}

type chatFunc func(ctx context.Context, messages []Message) (string, error)

func (f chatFunc) ChatCompletion(ctx context.Context, messages []Message, _ int, _ float64) (string, error) {
	return f(ctx, messages)
}

var programming = pricing.Input{
	Category:   valueobject.CategoryProgramming,
	Skills:     []string{"Go"},
	Complexity: valueobject.ComplexityMedium,
	Urgency:    valueobject.UrgencyNormal,
}

func TestPricingOracle_UsesModelQuantiles(t *testing.T) {
	o := NewPricingOracle(chatFunc(func(_ context.Context, messages []Message) (string, error) {
		require.Len(t, messages, 2)
		assert.Contains(t, messages[1].Content, "Programming")
		return "Вот оценка:\n```json\n{\"p25\": 95.4, \"p50\": 70, \"p75\": 120}\n```", nil
	}), pricing.NewTableOracle())

	rec, err := o.Recommend(context.Background(), programming)
	require.NoError(t, err)

	assert.True(t, rec.P25.Equal(decimal.NewFromInt(70)), rec.P25.String())
	assert.True(t, rec.P50.Equal(decimal.NewFromInt(95)), rec.P50.String())
	assert.True(t, rec.P75.Equal(decimal.NewFromInt(120)), rec.P75.String())
	assert.True(t, rec.Floor.Equal(decimal.NewFromInt(30)))
}

func TestPricingOracle_NeverBelowFloor(t *testing.T) {
	o := NewPricingOracle(chatFunc(func(context.Context, []Message) (string, error) {
		return `{"p25": 5, "p50": 10, "p75": 50}`, nil
	}), pricing.NewTableOracle())

	rec, err := o.Recommend(context.Background(), programming)
	require.NoError(t, err)
	assert.True(t, rec.P25.Equal(rec.Floor))
	assert.True(t, rec.P50.Equal(rec.Floor))
	assert.True(t, rec.P75.Equal(decimal.NewFromInt(50)))
}

func TestPricingOracle_FallsBackToTable(t *testing.T) {
	table := pricing.NewTableOracle()
	want, err := table.Recommend(context.Background(), programming)
	require.NoError(t, err)

	for name, reply := range map[string]chatFunc{
		"error":   func(context.Context, []Message) (string, error) { return "", errors.New("timeout") },
		"no json": func(context.Context, []Message) (string, error) { return "не знаю", nil },
		"zeros":   func(context.Context, []Message) (string, error) { return `{"p25":0,"p50":0,"p75":0}`, nil },
	} {
		t.Run(name, func(t *testing.T) {
			got, err := NewPricingOracle(reply, table).Recommend(context.Background(), programming)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestClient_ChatCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		var body struct {
			Model    string    `json:"model"`
			Messages []Message `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "test-model", body.Model)
		assert.Len(t, body.Messages, 1)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/v1", "test-model", "key", time.Second)
	out, err := c.ChatCompletion(context.Background(), []Message{{Role: "user", Content: "hi"}}, 16, 0)
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}

func TestClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "", "", time.Second).ChatCompletion(context.Background(), nil, 16, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")

	_, err = NewClient("", "", "", time.Second).ChatCompletion(context.Background(), nil, 16, 0)
	assert.Error(t, err)
}
