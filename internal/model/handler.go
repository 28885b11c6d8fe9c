// Package model loads the pretrained compressive-strength regressor and
// its metadata document, and exposes a single synchronous prediction
// call. The artifact is treated as a black box: inference is delegated
// to an ONNX runtime subprocess speaking JSON over stdin/stdout.
package model

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"concrete-predictor/internal/mix"

	"github.com/rs/zerolog/log"
)

// ErrModelUnavailable is returned by Predict when the backing artifact
// is not loaded. The constructor fails fast on missing files, so this
// is normally unreachable in a running process.
var ErrModelUnavailable = errors.New("model artifact unavailable")

// Predictions outside this interval are suspicious for any realistic
// mix; they are logged but still returned.
const (
	saneMinStrength = 5
	saneMaxStrength = 1000
)

// MetricsInterface defines the metrics hooks needed by the handler.
type MetricsInterface interface {
	PredictionsInc()
	FailuresInc()
	LatencyObserve(float64)
	StrengthObserve(float64)
	ModelAgeSet(float64)
}

// Handler owns the loaded model and metadata and serializes access to
// the inference subprocess.
type Handler struct {
	modelPath  string
	pythonPath string
	scriptPath string
	metadata   *Metadata
	timeout    time.Duration
	metrics    MetricsInterface

	mu       sync.Mutex
	loaded   bool
	lastUsed time.Time
}

type inferenceRequest struct {
	Features []float64 `json:"features"`
}

type inferenceResponse struct {
	Prediction float64 `json:"prediction"`
	Error      string  `json:"error,omitempty"`
}

// New loads the model artifact and metadata document. Both files are
// required; a missing or unreadable file is a fatal startup condition
// and New returns an error rather than a degraded handler.
func New(modelPath, metadataPath string) (*Handler, error) {
	return NewWithMetrics(modelPath, metadataPath, nil, 5*time.Second)
}

// NewWithMetrics is New with metrics hooks and an inference timeout.
func NewWithMetrics(modelPath, metadataPath string, metrics MetricsInterface, timeout time.Duration) (*Handler, error) {
	info, err := os.Stat(modelPath)
	if err != nil {
		return nil, fmt.Errorf("model artifact %s: %w", modelPath, err)
	}

	metadata, err := LoadMetadata(metadataPath)
	if err != nil {
		return nil, err
	}

	pythonPath, err := findPython()
	if err != nil {
		return nil, fmt.Errorf("inference runtime: %w", err)
	}

	scriptPath, err := ensureInferenceScript(modelPath)
	if err != nil {
		return nil, fmt.Errorf("inference script: %w", err)
	}

	h := &Handler{
		modelPath:  modelPath,
		pythonPath: pythonPath,
		scriptPath: scriptPath,
		metadata:   metadata,
		timeout:    timeout,
		metrics:    metrics,
		loaded:     true,
	}

	if metrics != nil {
		metrics.ModelAgeSet(time.Since(info.ModTime()).Seconds())
	}

	log.Info().
		Str("model_path", modelPath).
		Str("model_type", metadata.ModelInfo.Type).
		Str("model_version", metadata.ModelInfo.Version).
		Float64("r2_score", metadata.Metrics.R2Score).
		Msg("model loaded")

	return h, nil
}

// Metadata returns the read-only metadata document.
func (h *Handler) Metadata() *Metadata {
	return h.metadata
}

// Predict maps a mix input to a predicted compressive strength in
// kg/cm². Range validation is the caller's responsibility; the handler
// only rejects inputs the model itself cannot consume (NaN, Inf,
// negative values).
func (h *Handler) Predict(in mix.Input) (float64, error) {
	if h == nil {
		return 0, ErrModelUnavailable
	}

	start := time.Now()
	h.mu.Lock()
	defer func() {
		h.mu.Unlock()
		if h.metrics != nil {
			h.metrics.LatencyObserve(time.Since(start).Seconds())
		}
	}()

	if !h.loaded {
		if h.metrics != nil {
			h.metrics.FailuresInc()
		}
		return 0, ErrModelUnavailable
	}

	features := in.Vector()
	for i, f := range features {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("feature %d (%s) is not finite", i, mix.FeatureNames[i])
		}
		if f < 0 {
			return 0, fmt.Errorf("feature %d (%s) is negative: %g", i, mix.FeatureNames[i], f)
		}
	}

	prediction, err := h.infer(features)
	if err != nil {
		if h.metrics != nil {
			h.metrics.FailuresInc()
		}
		return 0, err
	}

	if h.metrics != nil {
		h.metrics.PredictionsInc()
		h.metrics.StrengthObserve(prediction)
	}
	h.lastUsed = time.Now()

	if prediction < saneMinStrength || prediction > saneMaxStrength {
		log.Warn().
			Float64("prediction", prediction).
			Msg("prediction outside normal strength range")
	}

	log.Debug().
		Floats64("features", features).
		Float64("prediction", prediction).
		Msg("prediction successful")

	return prediction, nil
}

func (h *Handler) infer(features []float64) (float64, error) {
	req := inferenceRequest{Features: features}
	reqJSON, err := json.Marshal(req)
	if err != nil {
		return 0, fmt.Errorf("marshal inference request: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, h.pythonPath, h.scriptPath, h.modelPath)
	cmd.Stdin = bytes.NewReader(reqJSON)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		log.Error().
			Err(err).
			Str("script_path", h.scriptPath).
			Str("model_path", h.modelPath).
			Str("stderr", stderr.String()).
			Msg("inference subprocess failed")

		if ctx.Err() == context.DeadlineExceeded {
			return 0, fmt.Errorf("prediction timeout after %v", h.timeout)
		}
		if strings.Contains(stderr.String(), "onnxruntime not installed") {
			return 0, fmt.Errorf("onnx runtime dependency missing: %w", err)
		}
		return 0, fmt.Errorf("inference failed: %w, stderr: %s", err, stderr.String())
	}

	var resp inferenceResponse
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return 0, fmt.Errorf("parse inference response: %w, stdout: %s", err, stdout.String())
	}
	if resp.Error != "" {
		return 0, fmt.Errorf("inference error: %s", resp.Error)
	}

	if math.IsNaN(resp.Prediction) || math.IsInf(resp.Prediction, 0) {
		return 0, fmt.Errorf("model returned non-finite prediction")
	}

	return resp.Prediction, nil
}
