package client

import "time"

// MixInput mirrors the service's mix parameters. All material doses are
// kg/m³; AgeDays is the curing age in days.
type MixInput struct {
	Cement           float64 `json:"cement_kg_m3"`
	Slag             float64 `json:"slag_kg_m3"`
	FlyAsh           float64 `json:"fly_ash_kg_m3"`
	Water            float64 `json:"water_kg_m3"`
	Superplasticizer float64 `json:"superplasticizer_kg_m3"`
	CoarseAggregate  float64 `json:"coarse_aggregate_kg_m3"`
	FineAggregate    float64 `json:"fine_aggregate_kg_m3"`
	AgeDays          float64 `json:"age_days"`
}

// PredictionRecord is one prediction result as returned by the service.
type PredictionRecord struct {
	ID                string    `json:"id"`
	Timestamp         time.Time `json:"timestamp"`
	Input             MixInput  `json:"input"`
	StrengthKgCm2     float64   `json:"strength_kg_cm2"`
	Band              string    `json:"band"`
	BandColor         string    `json:"band_color"`
	WaterCementRatio  float64   `json:"water_cement_ratio"`
	TotalCementitious float64   `json:"total_cementitious_kg_m3"`
	Confidence        float64   `json:"confidence"`
}

// PredictResult wraps the record with display details.
type PredictResult struct {
	Record          PredictionRecord `json:"record"`
	BandDescription string           `json:"band_description"`
	LatencyMs       float64          `json:"latency_ms"`
}

// ModelInfo summarizes the loaded model.
type ModelInfo struct {
	Type        string  `json:"type"`
	Version     string  `json:"version"`
	TrainedAt   string  `json:"trained_at"`
	Output      string  `json:"output"`
	R2Score     float64 `json:"r2_score"`
	MAEKgCm2    float64 `json:"mae_kg_cm2"`
	CVScoreMean float64 `json:"cv_score_mean"`
	CVStability float64 `json:"cv_stability"`
	Features    int     `json:"features"`
}

// ImportanceEntry is one feature's weight in the trained model.
type ImportanceEntry struct {
	Feature    string  `json:"feature"`
	Name       string  `json:"name"`
	Importance float64 `json:"importance"`
}

// Preset is a named mix design offered by the service.
type Preset struct {
	Name  string   `json:"name"`
	Input MixInput `json:"input"`
}

// ExportResult reports where the service wrote the CSV export.
type ExportResult struct {
	Path    string `json:"path"`
	Records int    `json:"records"`
}

type predictRequest struct {
	Input MixInput `json:"input"`
	Clamp bool     `json:"clamp,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}
