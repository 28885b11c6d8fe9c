package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeService(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/predict", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		var req predictRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if req.Input.Cement < 150 && !req.Clamp {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(errorResponse{Error: "cement out of range"})
			return
		}

		json.NewEncoder(w).Encode(PredictResult{
			Record: PredictionRecord{
				ID:            "01J0000000000000000000TEST",
				Timestamp:     time.Now(),
				Input:         req.Input,
				StrengthKgCm2: 312.5,
				Band:          "High Strength",
			},
			BandDescription: "Demanding structures",
		})
	})
	mux.HandleFunc("/model/info", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ModelInfo{Type: "RandomForestRegressor", Version: "1.0", Features: 8})
	})
	mux.HandleFunc("/model/importance", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]ImportanceEntry{
			{Feature: "cement", Name: "Cement", Importance: 0.31},
			{Feature: "age_days", Name: "Curing Age", Importance: 0.28},
		})
	})
	mux.HandleFunc("/presets", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]Preset{{Name: "C20 - General Use"}})
	})
	mux.HandleFunc("/history", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode([]PredictionRecord{{ID: "a"}, {ID: "b"}})
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	})
	mux.HandleFunc("/history/export", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ExportResult{Path: "exports/prediction_history_20250101_120000.csv", Records: 2})
	})

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func validInput() MixInput {
	return MixInput{
		Cement: 300, Water: 180, Superplasticizer: 5,
		CoarseAggregate: 1000, FineAggregate: 750, AgeDays: 28,
	}
}

func TestClient_Predict(t *testing.T) {
	ts := newFakeService(t)
	c := New(ts.URL, 2*time.Second)

	result, err := c.Predict(validInput())
	require.NoError(t, err)

	assert.Equal(t, 312.5, result.Record.StrengthKgCm2)
	assert.Equal(t, "High Strength", result.Record.Band)
	assert.Equal(t, "Demanding structures", result.BandDescription)
}

func TestClient_PredictError(t *testing.T) {
	ts := newFakeService(t)
	c := New(ts.URL, 2*time.Second)

	in := validInput()
	in.Cement = 10
	_, err := c.Predict(in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cement out of range")
}

func TestClient_PredictClamped(t *testing.T) {
	ts := newFakeService(t)
	c := New(ts.URL, 2*time.Second)

	in := validInput()
	in.Cement = 10 // would be rejected without clamping
	result, err := c.PredictClamped(in)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Record.ID)
}

func TestClient_ModelInfo(t *testing.T) {
	ts := newFakeService(t)
	c := New(ts.URL, 2*time.Second)

	info, err := c.ModelInfo()
	require.NoError(t, err)
	assert.Equal(t, "RandomForestRegressor", info.Type)
	assert.Equal(t, 8, info.Features)
}

func TestClient_FeatureImportance(t *testing.T) {
	ts := newFakeService(t)
	c := New(ts.URL, 2*time.Second)

	entries, err := c.FeatureImportance()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Cement", entries[0].Name)
}

func TestClient_HistoryRoundTrip(t *testing.T) {
	ts := newFakeService(t)
	c := New(ts.URL, 2*time.Second)

	records, err := c.History()
	require.NoError(t, err)
	assert.Len(t, records, 2)

	result, err := c.ExportHistory()
	require.NoError(t, err)
	assert.Equal(t, 2, result.Records)
	assert.Contains(t, result.Path, "prediction_history_")

	assert.NoError(t, c.ClearHistory())
}

func TestClient_ServiceDown(t *testing.T) {
	c := New("http://127.0.0.1:1", 500*time.Millisecond)

	_, err := c.ModelInfo()
	assert.Error(t, err)
}
