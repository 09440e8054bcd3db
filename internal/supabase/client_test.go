package supabase_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"rental-inspection-backend/internal/models"
	"rental-inspection-backend/internal/reports"
	"rental-inspection-backend/internal/supabase"
)

func newRestClient(t *testing.T, handler http.HandlerFunc) *supabase.RestClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := supabase.NewRestClient(server.URL, "anon-key")
	require.NoError(t, err)
	return client
}

func TestRestClient_FindReport(t *testing.T) {
	client := newRestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/return_reports"), r.URL.Path)
		assert.Equal(t, "eq.ORDER-1", r.URL.Query().Get("order_id"))
		assert.Equal(t, "eq.m1", r.URL.Query().Get("merchant_id"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]any{{
			"id":                42,
			"order_id":          "ORDER-1",
			"merchant_id":       "m1",
			"status":            "damage_found",
			"description":       "Bremsen: quietschen",
			"submission_id":     "ORDER-1_m1_1700000000000",
			"created_at_vienna": "2023-11-14 23:13:20",
			"created_at":        "2023-11-14T22:13:20.123+00:00",
		}})
	})

	report, err := client.FindReport(context.Background(), "ORDER-1", "m1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDamageFound, report.Status)
	assert.Equal(t, "ORDER-1_m1_1700000000000", report.SubmissionID)
	assert.Equal(t, "Bremsen: quietschen", report.Description)
}

func TestRestClient_FindReportMissing(t *testing.T) {
	client := newRestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("[]"))
	})

	_, err := client.FindReport(context.Background(), "ORDER-404", "m1")
	assert.ErrorIs(t, err, reports.ErrNotFound)
}

func TestRestClient_InsertReportConflict(t *testing.T) {
	client := newRestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"code":"23505","details":"Key (order_id, merchant_id)=(ORDER-1, m1) already exists.","hint":null,"message":"duplicate key value violates unique constraint \"return_reports_order_merchant_key\""}`))
	})

	_, err := client.InsertReport(context.Background(), &models.Report{
		OrderID:      "ORDER-1",
		MerchantID:   "m1",
		Status:       models.StatusNoDamage,
		SubmissionID: "ORDER-1_m1_1",
	})
	assert.ErrorIs(t, err, reports.ErrUniqueViolation)
}
