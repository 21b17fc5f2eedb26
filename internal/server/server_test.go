package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iwvelando/rental-valuation/internal/cache"
	"github.com/iwvelando/rental-valuation/internal/config"
	"github.com/iwvelando/rental-valuation/internal/storage"
	"github.com/iwvelando/rental-valuation/internal/valuation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestHandler(t *testing.T, opts Options) http.Handler {
	t.Helper()

	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return NewHandler(opts)
}

func newTestStore(t *testing.T) storage.Store {
	t.Helper()

	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "server.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func singleFamilyInput() map[string]interface{} {
	return map[string]interface{}{
		"propertyType":   "single",
		"purchasePrice":  "450,000",
		"unitRents":      []interface{}{"2800"},
		"loanTermYears":  30,
		"vacancyRate":    10,
		"managementRate": 10,
	}
}

func TestHandleVersion(t *testing.T) {
	h := newTestHandler(t, Options{Version: "1.2.3"})

	rr := doJSON(t, h, http.MethodGet, "/api/version", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "1.2.3", resp["version"])

	rr = doJSON(t, newTestHandler(t, Options{}), http.MethodGet, "/api/version", nil)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "dev", resp["version"])
}

func TestHandlePolicy(t *testing.T) {
	h := newTestHandler(t, Options{Policy: config.PolicyConfig{Preset: valuation.PresetSingleFamilyFHA}})

	rr := doJSON(t, h, http.MethodGet, "/api/policy", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp policyResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, valuation.PresetSingleFamilyFHA, resp.Preset)
	assert.Equal(t, valuation.MaintenanceFlat, resp.Policy.MaintenanceMode)
	assert.Equal(t, valuation.PresetNames(), resp.Presets)
}

func TestHandleEvaluate(t *testing.T) {
	h := newTestHandler(t, Options{})

	rr := doJSON(t, h, http.MethodPost, "/api/evaluate", map[string]interface{}{"input": singleFamilyInput()})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Empty(t, rr.Header().Get("X-Cache"))

	var resp evaluateResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotNil(t, resp.Metrics)
	assert.InDelta(t, 90000.0, resp.Metrics.DownPayment, 1e-6)
	assert.InDelta(t, 360000.0, resp.Metrics.LoanAmount, 1e-6)
	assert.InDelta(t, 2358.9, resp.Metrics.PrincipalAndInterest, 1.0)
	assert.Equal(t, 450000.0, resp.Input.PurchasePrice)
	assert.Empty(t, resp.Warnings)
}

func TestHandleEvaluatePolicyOverride(t *testing.T) {
	h := newTestHandler(t, Options{})

	input := singleFamilyInput()
	input["fha"] = true

	rr := doJSON(t, h, http.MethodPost, "/api/evaluate", map[string]interface{}{
		"input":  input,
		"policy": map[string]interface{}{"preset": valuation.PresetSingleFamilyFHA},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp evaluateResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotNil(t, resp.Metrics)
	assert.True(t, resp.Metrics.FHA)
	assert.InDelta(t, 15750.0, resp.Metrics.DownPayment, 1e-6)
}

func TestHandleEvaluateMissingPrice(t *testing.T) {
	h := newTestHandler(t, Options{})

	rr := doJSON(t, h, http.MethodPost, "/api/evaluate", map[string]interface{}{
		"input": map[string]interface{}{"propertyType": "multi", "units": "3", "purchasePrice": ""},
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Nil(t, resp["metrics"])

	warnings, ok := resp["warnings"].([]interface{})
	require.True(t, ok)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "no purchase price")
}

func TestHandleEvaluateErrors(t *testing.T) {
	h := newTestHandler(t, Options{MaxBodySize: 256})

	tests := []struct {
		name   string
		body   interface{}
		status int
		errMsg string
	}{
		{
			name:   "Malformed JSON",
			body:   `{"input": `,
			status: http.StatusBadRequest,
			errMsg: "invalid request body",
		},
		{
			name:   "Unknown preset",
			body:   map[string]interface{}{"input": singleFamilyInput(), "policy": map[string]interface{}{"preset": "commercial"}},
			status: http.StatusBadRequest,
			errMsg: "unknown policy preset",
		},
		{
			name: "Invalid override",
			body: map[string]interface{}{
				"input":  singleFamilyInput(),
				"policy": map[string]interface{}{"overrides": map[string]interface{}{"maintenanceMode": "weekly"}},
			},
			status: http.StatusBadRequest,
			errMsg: "invalid valuation policy",
		},
		{
			name:   "Body too large",
			body:   `{"input": {"propertyType": "` + strings.Repeat("x", 512) + `"}}`,
			status: http.StatusRequestEntityTooLarge,
			errMsg: "request body exceeds 256 bytes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doJSON(t, h, http.MethodPost, "/api/evaluate", tt.body)
			require.Equal(t, tt.status, rr.Code, rr.Body.String())

			var resp map[string]string
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Contains(t, resp["error"], tt.errMsg)
		})
	}
}

func TestHandleEvaluateCache(t *testing.T) {
	memory := cache.NewMemoryCache(time.Minute)
	h := newTestHandler(t, Options{Cache: memory})
	body := map[string]interface{}{"input": singleFamilyInput()}

	first := doJSON(t, h, http.MethodPost, "/api/evaluate", body)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Equal(t, 1, memory.Len())

	second := doJSON(t, h, http.MethodPost, "/api/evaluate", body)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())

	other := singleFamilyInput()
	other["purchasePrice"] = 460000
	third := doJSON(t, h, http.MethodPost, "/api/evaluate", map[string]interface{}{"input": other})
	assert.Equal(t, "MISS", third.Header().Get("X-Cache"))
	assert.Equal(t, 2, memory.Len())
}

func TestAnalysesRoundTrip(t *testing.T) {
	h := newTestHandler(t, Options{Store: newTestStore(t)})

	created := doJSON(t, h, http.MethodPost, "/api/analyses", map[string]interface{}{
		"name":   "oak avenue fourplex",
		"preset": valuation.PresetMultiFamilyFHA,
		"input": map[string]interface{}{
			"propertyType":  "multi",
			"units":         4,
			"purchasePrice": 600000,
			"unitRents":     map[string]interface{}{"1": 1500, "2": 1500, "3": 1500, "4": 1500},
			"loanTermYears": 30,
			"fha":           "true",
		},
	})
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())

	var saved analysisResponse
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &saved))
	require.NotEmpty(t, saved.ID)
	require.NotNil(t, saved.Metrics)
	assert.True(t, saved.Metrics.FHA)
	assert.InDelta(t, 21000.0, saved.Metrics.DownPayment, 1e-6)
	assert.Equal(t, []float64{1500, 1500, 1500, 1500}, saved.Input.UnitRents)

	list := doJSON(t, h, http.MethodGet, "/api/analyses", nil)
	require.Equal(t, http.StatusOK, list.Code)
	var all []analysisResponse
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &all))
	require.Len(t, all, 1)
	assert.Equal(t, saved.ID, all[0].ID)
	assert.Equal(t, saved.Metrics, all[0].Metrics)

	got := doJSON(t, h, http.MethodGet, "/api/analyses/"+saved.ID, nil)
	require.Equal(t, http.StatusOK, got.Code)
	var one analysisResponse
	require.NoError(t, json.Unmarshal(got.Body.Bytes(), &one))
	assert.Equal(t, "oak avenue fourplex", one.Name)

	deleted := doJSON(t, h, http.MethodDelete, "/api/analyses/"+saved.ID, nil)
	assert.Equal(t, http.StatusNoContent, deleted.Code)

	missing := doJSON(t, h, http.MethodGet, "/api/analyses/"+saved.ID, nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.Contains(t, missing.Body.String(), "not found")

	again := doJSON(t, h, http.MethodDelete, "/api/analyses/"+saved.ID, nil)
	assert.Equal(t, http.StatusNotFound, again.Code)
}

func TestSaveAnalysisValidation(t *testing.T) {
	h := newTestHandler(t, Options{Store: newTestStore(t)})

	noName := doJSON(t, h, http.MethodPost, "/api/analyses", map[string]interface{}{
		"name":  "   ",
		"input": singleFamilyInput(),
	})
	assert.Equal(t, http.StatusBadRequest, noName.Code)
	assert.Contains(t, noName.Body.String(), "name is required")

	badPreset := doJSON(t, h, http.MethodPost, "/api/analyses", map[string]interface{}{
		"name":   "house",
		"preset": "commercial",
		"input":  singleFamilyInput(),
	})
	assert.Equal(t, http.StatusBadRequest, badPreset.Code)
}

func TestAnalysesRoutesRequireStore(t *testing.T) {
	h := newTestHandler(t, Options{})

	rr := doJSON(t, h, http.MethodGet, "/api/analyses", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCORSPreflight(t *testing.T) {
	h := newTestHandler(t, Options{})

	req := httptest.NewRequest(http.MethodOptions, "/api/evaluate", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}
