// Package prediction is the client for the external prediction backend. The
// backend is opaque: possibly slow, possibly failing, no retry built in.
// Callers bound each call with a context deadline.
package prediction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	apperrors "github.com/lorrc/logistics-ops-backend/internal/core/errors"
	"github.com/lorrc/logistics-ops-backend/internal/core/ports"
)

// HTTPPredictor calls a remote prediction endpoint over HTTP.
type HTTPPredictor struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

var _ ports.Predictor = (*HTTPPredictor)(nil)

// NewHTTPPredictor creates a predictor client. timeout is a hard ceiling on
// any single call, on top of whatever deadline the caller's context carries.
func NewHTTPPredictor(endpoint string, timeout time.Duration, logger *slog.Logger) *HTTPPredictor {
	return &HTTPPredictor{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		logger:   logger.With("component", "predictor"),
	}
}

type predictRequest struct {
	Model    string             `json:"model"`
	Features map[string]float64 `json:"features"`
}

type predictResponse struct {
	Success    bool    `json:"success"`
	Prediction float64 `json:"prediction"`
	Confidence float64 `json:"confidence"`
	Error      string  `json:"error"`
}

// Predict runs one model against the backend.
func (p *HTTPPredictor) Predict(ctx context.Context, model string, features map[string]float64) (ports.Prediction, error) {
	body, err := json.Marshal(predictRequest{Model: model, Features: features})
	if err != nil {
		return ports.Prediction{}, fmt.Errorf("encode prediction request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return ports.Prediction{}, fmt.Errorf("build prediction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return ports.Prediction{}, fmt.Errorf("%w: %v", apperrors.ErrPredictionFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return ports.Prediction{}, fmt.Errorf("%w: status %d", apperrors.ErrPredictionFailed, resp.StatusCode)
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return ports.Prediction{}, fmt.Errorf("decode prediction response: %w", err)
	}

	if !out.Success {
		return ports.Prediction{}, fmt.Errorf("%w: %s", apperrors.ErrPredictionFailed, out.Error)
	}

	p.logger.Debug("prediction complete", "model", model, "value", out.Prediction)
	return ports.Prediction{Value: out.Prediction, Confidence: out.Confidence}, nil
}
