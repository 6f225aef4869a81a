package tax

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const defaultTimeout = 2 * time.Second

// HTTPClient calls the tax service over HTTP. The per-call timeout keeps the
// collaborator off the payroll hot path's critical time budget, and the rate
// limiter protects the shared service during large batch runs.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

func NewHTTPClient(baseURL string, timeout time.Duration, rps float64, logger *zap.Logger) *HTTPClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if rps <= 0 {
		rps = 50
	}
	if logger == nil {
		logger = zap.L()
	}
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), int(rps)),
		logger:  logger.Named("tax.client"),
	}
}

func (c *HTTPClient) Calculate(ctx context.Context, in Input) (Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Result{}, err
	}

	body, err := json.Marshal(in)
	if err != nil {
		return Result{}, err
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/v1/withholding/calculate",
		bytes.NewReader(body),
	)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("tax service returned status %d", resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Result{}, err
	}

	if !isFinite(result.Monthly) || !isFinite(result.Annual) {
		c.logger.Warn("tax service returned non-finite amount",
			zap.String("employee_id", in.Profile.EmployeeID),
		)
		return Result{}, fmt.Errorf("tax service returned non-finite amount")
	}

	return result, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
