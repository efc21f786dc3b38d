package estimator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jengaest/estimation-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewClient(&config.EstimatorConfig{
		BaseURL: srv.URL,
		Model:   "gemini-pro",
		APIKey:  "test-key",
		Timeout: 5,
	}, zap.NewNop())
}

func modelReply(text string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
		},
	}
}

func TestEstimateParsesModelReply(t *testing.T) {
	reply := "Here is the analysis:\n```json\n" +
		`{"cost_analysis":{"base_cost_per_sqm":180.0},"breakdown":{"equipment":{"total":5000.0}},` +
		`"recommendations":["phase the build"],"risk_factors":["material price volatility"]}` +
		"\n```"

	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-pro:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		_ = json.NewEncoder(w).Encode(modelReply(reply))
	})

	suggestion, err := client.Estimate(context.Background(), ProjectDetails{
		BuildingType: "warehouse",
		TotalArea:    "300",
		LocationName: "Nairobi Central",
	})
	require.NoError(t, err)
	assert.Equal(t, 180.0, suggestion.CostAnalysis["base_cost_per_sqm"])
	assert.Equal(t, []string{"phase the build"}, suggestion.Recommendations)
	assert.Equal(t, []string{"material price volatility"}, suggestion.RiskFactors)
}

func TestEstimateRejectsNonJSONReply(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(modelReply("I cannot help with that."))
	})

	_, err := client.Estimate(context.Background(), ProjectDetails{BuildingType: "warehouse"})
	assert.ErrorIs(t, err, ErrBadResponse)
}

func TestEstimateAPIError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": 403, "message": "key expired"},
		})
	})

	_, err := client.Estimate(context.Background(), ProjectDetails{BuildingType: "warehouse"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key expired")
}

func TestEstimateWithoutKey(t *testing.T) {
	client := NewClient(&config.EstimatorConfig{BaseURL: "http://localhost:0"}, zap.NewNop())
	_, err := client.Estimate(context.Background(), ProjectDetails{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}
