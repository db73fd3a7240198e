package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"paypalmcp/internal/domain"
	"paypalmcp/internal/infra/telemetry"
)

// Client is the authenticated request gateway. Every call carries a valid
// bearer credential; a single authorization rejection triggers one forced
// re-acquisition and one replay of the same call. Nothing else is retried.
type Client struct {
	http    *http.Client
	baseURL string
	tokens  *TokenSource
	logger  *zap.Logger
	metrics *telemetry.Metrics
}

func NewClient(cfg domain.Config, tokens *TokenSource, logger *zap.Logger, metrics *telemetry.Metrics) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http:    &http.Client{Timeout: cfg.RequestTimeout},
		baseURL: cfg.BaseURL,
		tokens:  tokens,
		logger:  logger.Named("gateway"),
		metrics: metrics,
	}
}

// Do sends one authenticated request and returns the response body. body is
// JSON-encoded when non-nil. Non-2xx responses surface as domain errors with
// transport detail confined to Meta and the log line.
func (c *Client) Do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	const op = "gateway.do"

	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, domain.E(domain.CodeInternal, op, "encode request body", err)
		}
		payload = encoded
	}

	requestID := uuid.NewString()
	replayed := false

	for {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, domain.E(domain.CodeInternal, op, "build request", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")

		start := time.Now()
		resp, err := c.http.Do(req)
		if err != nil {
			c.metrics.ObserveRequest(method, "error", time.Since(start))
			c.logger.Error("request failed",
				zap.String("request_id", requestID),
				zap.String("method", method),
				zap.String("path", path),
				zap.String("payload", telemetry.RedactJSON(payload)),
				zap.Error(err),
			)
			return nil, domain.E(domain.CodeRemoteCall, op, "", err)
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		status := resp.StatusCode
		c.metrics.ObserveRequest(method, strconv.Itoa(status), time.Since(start))

		if status == http.StatusUnauthorized && !replayed {
			replayed = true
			c.metrics.ObserveAuthReplay()
			c.logger.Warn("authorization rejected, refreshing credential",
				zap.String("request_id", requestID),
				zap.String("method", method),
				zap.String("path", path),
			)
			c.tokens.Invalidate()
			continue
		}

		if readErr != nil {
			return nil, domain.E(domain.CodeRemoteCall, op, "read response body", readErr)
		}

		if status < 200 || status > 299 {
			c.logger.Error("request rejected",
				zap.String("request_id", requestID),
				zap.Int("status", status),
				zap.String("method", method),
				zap.String("path", path),
				zap.String("payload", telemetry.RedactJSON(payload)),
				zap.String("response", telemetry.RedactJSON(respBody)),
			)
			code := domain.CodeRemoteCall
			if status == http.StatusUnauthorized {
				code = domain.CodeUnauthenticated
			}
			e := domain.E(code, op, "remote call rejected", nil)
			e.Meta = map[string]string{
				"status": strconv.Itoa(status),
				"method": method,
				"path":   path,
			}
			return nil, e
		}

		return json.RawMessage(respBody), nil
	}
}
