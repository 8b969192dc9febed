package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/housing-predictor/internal/datasource"
)

const maxErrorBody = 512

// PredictionClient calls a running prediction API over HTTP.
type PredictionClient struct {
	http *datasource.RateLimitedHTTPClient
	url  string
}

// NewPredictionClient creates a client for the /predict endpoint at url.
func NewPredictionClient(url string, cfg datasource.HTTPClientConfig, logger *logrus.Logger) *PredictionClient {
	return &PredictionClient{
		http: datasource.NewRateLimitedHTTPClient(cfg, logger),
		url:  url,
	}
}

// Predict posts payload as JSON and returns the prediction field of the response.
func (c *PredictionClient) Predict(ctx context.Context, payload map[string]any) (float64, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal payload: %w", err)
	}

	resp, err := c.http.Post(ctx, c.url, "application/json", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		text := strings.TrimSpace(string(data))
		if len(text) > maxErrorBody {
			text = text[:maxErrorBody]
		}
		return 0, &StatusError{StatusCode: resp.StatusCode, Body: text}
	}

	return decodePrediction(data)
}

func decodePrediction(data []byte) (float64, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	raw, ok := fields["prediction"]
	if !ok || string(raw) == "null" {
		return 0, ErrMissingPrediction
	}
	var value float64
	if err := json.Unmarshal(raw, &value); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMissingPrediction, err)
	}
	return value, nil
}

// Close releases idle connections.
func (c *PredictionClient) Close() error {
	return c.http.Close()
}
