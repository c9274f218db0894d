package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aguerraochoa/Speakance-sub000/internal/common"
	"github.com/aguerraochoa/Speakance-sub000/internal/logging"
)

func newClientAgainst(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, 5*time.Second, logging.NewSlogLogger(slog.Default()))
}

func TestParseSendsTokenAndDecodes(t *testing.T) {
	var gotAuth string
	c := newClientAgainst(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.Equal(t, "/api/v1/parse", r.URL.Path)

		var req ParseRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "cap-1", req.ClientExpenseID)

		json.NewEncoder(w).Encode(ParseResponse{
			Status: StatusSaved,
			Parse:  &ParseInfo{Confidence: 0.95},
		})
	}))
	c.SetToken("tok-1")

	resp, err := c.Parse(context.Background(), &ParseRequest{ClientExpenseID: "cap-1", Source: "text"})
	require.NoError(t, err)
	require.Equal(t, StatusSaved, resp.Status)
	require.Equal(t, "Bearer tok-1", gotAuth)
}

func TestErrorMapping(t *testing.T) {
	status := http.StatusUnauthorized
	c := newClientAgainst(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{"error": "nope"})
	}))

	_, err := c.Parse(context.Background(), &ParseRequest{})
	require.ErrorIs(t, err, common.ErrUnauthorized)

	status = http.StatusBadRequest
	_, err = c.Parse(context.Background(), &ParseRequest{})
	require.ErrorIs(t, err, common.ErrValidation)

	status = http.StatusNotFound
	err = c.DeleteExpense(context.Background(), "missing")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestExpensePayloadDateConversion(t *testing.T) {
	captured := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

	p := &ExpensePayload{ID: "e1", ExpenseDate: "2026-08-25", CapturedAtDevice: captured}
	require.Equal(t, time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC), p.ToRecord().ExpenseDate)

	// Unparseable dates fall back to the capture moment.
	p = &ExpensePayload{ID: "e1", ExpenseDate: "soon", CapturedAtDevice: captured}
	require.True(t, p.ToRecord().ExpenseDate.Equal(captured))
}

func TestListExpenses(t *testing.T) {
	c := newClientAgainst(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"expenses": []ExpensePayload{
				{ID: "e1", ClientExpenseID: "c1", ExpenseDate: "2026-08-25"},
				{ID: "e2", ClientExpenseID: "c2", ExpenseDate: "2026-08-24"},
			},
		})
	}))

	records, err := c.ListExpenses(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "c1", records[0].ClientExpenseID)
}
