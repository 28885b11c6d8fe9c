package model

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"concrete-predictor/internal/mix"
)

// Metadata is the static document shipped alongside the model artifact.
// It is loaded once at startup and never mutated.
type Metadata struct {
	ModelInfo struct {
		Type          string   `json:"type"`
		Version       string   `json:"version"`
		TrainedAt     string   `json:"trained_at"`
		InputFeatures []string `json:"input_features"`
		Output        string   `json:"output"`
	} `json:"model_info"`

	Metrics struct {
		R2Score     float64 `json:"r2_score"`
		MAEKgCm2    float64 `json:"mae_kg_cm2"`
		CVScoreMean float64 `json:"cv_score_mean"`
		CVStability float64 `json:"cv_stability"`
	} `json:"metrics"`

	FeatureImportance map[string]float64 `json:"feature_importance"`
}

// Info is the summary exposed to API consumers.
type Info struct {
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

// LoadMetadata reads and validates the metadata document.
func LoadMetadata(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read metadata %s: %w", path, err)
	}

	var md Metadata
	if err := json.Unmarshal(data, &md); err != nil {
		return nil, fmt.Errorf("parse metadata %s: %w", path, err)
	}

	if err := md.validate(); err != nil {
		return nil, fmt.Errorf("invalid metadata %s: %w", path, err)
	}

	return &md, nil
}

func (md *Metadata) validate() error {
	if md.ModelInfo.Type == "" || md.ModelInfo.Version == "" {
		return fmt.Errorf("model_info is missing required fields")
	}
	if len(md.ModelInfo.InputFeatures) != mix.NumFeatures {
		return fmt.Errorf("expected %d input features, metadata lists %d",
			mix.NumFeatures, len(md.ModelInfo.InputFeatures))
	}
	if md.Metrics.R2Score == 0 && md.Metrics.MAEKgCm2 == 0 {
		return fmt.Errorf("metrics section is missing or empty")
	}
	return nil
}

// Summary returns the read-only model summary.
func (md *Metadata) Summary() Info {
	return Info{
		Type:        md.ModelInfo.Type,
		Version:     md.ModelInfo.Version,
		TrainedAt:   md.ModelInfo.TrainedAt,
		Output:      md.ModelInfo.Output,
		R2Score:     md.Metrics.R2Score,
		MAEKgCm2:    md.Metrics.MAEKgCm2,
		CVScoreMean: md.Metrics.CVScoreMean,
		CVStability: md.Metrics.CVStability,
		Features:    len(md.ModelInfo.InputFeatures),
	}
}

// Importance returns per-feature weights sorted by descending
// importance, with display names resolved.
func (md *Metadata) Importance() []ImportanceEntry {
	entries := make([]ImportanceEntry, 0, len(md.FeatureImportance))
	for feature, weight := range md.FeatureImportance {
		name := feature
		if friendly, ok := mix.FriendlyNames[feature]; ok {
			name = friendly
		}
		entries = append(entries, ImportanceEntry{
			Feature:    feature,
			Name:       name,
			Importance: weight,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Importance != entries[j].Importance {
			return entries[i].Importance > entries[j].Importance
		}
		return entries[i].Feature < entries[j].Feature
	})

	return entries
}

// Confidence derives a display reliability score from cross-validation
// stability, clamped to [0.6, 0.95].
func (md *Metadata) Confidence() float64 {
	c := 1 - md.Metrics.CVStability*10
	if c < 0.6 {
		c = 0.6
	}
	if c > 0.95 {
		c = 0.95
	}
	return c
}
