// Package client is a Go client for the concrete strength prediction
// service's HTTP API.
package client

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client talks to a running prediction service.
type Client struct {
	base string
	rest *resty.Client
}

// New creates a client for the service at base (e.g.
// "http://localhost:8080").
func New(base string, timeout time.Duration) *Client {
	r := resty.New()
	if timeout > 0 {
		r.SetTimeout(timeout)
	} else {
		r.SetTimeout(5 * time.Second) // default fallback
	}
	return &Client{base: base, rest: r}
}

// Predict requests a strength prediction for the given mix. Out-of-range
// parameters are rejected by the service.
func (c *Client) Predict(in MixInput) (*PredictResult, error) {
	return c.predict(in, false)
}

// PredictClamped requests a prediction with out-of-range parameters
// clamped to their valid ranges.
func (c *Client) PredictClamped(in MixInput) (*PredictResult, error) {
	return c.predict(in, true)
}

func (c *Client) predict(in MixInput, clamp bool) (*PredictResult, error) {
	result := &PredictResult{}
	apiErr := &errorResponse{}

	resp, err := c.rest.R().
		SetBody(predictRequest{Input: in, Clamp: clamp}).
		SetResult(result).
		SetError(apiErr).
		Post(c.base + "/predict")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("predict: %s (%s)", apiErr.Error, resp.Status())
	}
	return result, nil
}

// ModelInfo fetches the loaded model's summary.
func (c *Client) ModelInfo() (*ModelInfo, error) {
	info := &ModelInfo{}
	if err := c.get("/model/info", info); err != nil {
		return nil, err
	}
	return info, nil
}

// FeatureImportance fetches per-feature weights, sorted descending.
func (c *Client) FeatureImportance() ([]ImportanceEntry, error) {
	var entries []ImportanceEntry
	if err := c.get("/model/importance", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Presets fetches the service's built-in mix designs.
func (c *Client) Presets() ([]Preset, error) {
	var presets []Preset
	if err := c.get("/presets", &presets); err != nil {
		return nil, err
	}
	return presets, nil
}

// History fetches all prediction records in chronological order.
func (c *Client) History() ([]PredictionRecord, error) {
	var records []PredictionRecord
	if err := c.get("/history", &records); err != nil {
		return nil, err
	}
	return records, nil
}

// ExportHistory asks the service to write its history to a CSV file.
func (c *Client) ExportHistory() (*ExportResult, error) {
	result := &ExportResult{}
	apiErr := &errorResponse{}

	resp, err := c.rest.R().
		SetResult(result).
		SetError(apiErr).
		Post(c.base + "/history/export")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("export: %s (%s)", apiErr.Error, resp.Status())
	}
	return result, nil
}

// ClearHistory removes all prediction records.
func (c *Client) ClearHistory() error {
	resp, err := c.rest.R().Delete(c.base + "/history")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("clear history: %s", resp.Status())
	}
	return nil
}

func (c *Client) get(path string, result any) error {
	apiErr := &errorResponse{}

	resp, err := c.rest.R().
		SetResult(result).
		SetError(apiErr).
		Get(c.base + path)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("GET %s: %s (%s)", path, apiErr.Error, resp.Status())
	}
	return nil
}
