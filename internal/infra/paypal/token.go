// Package paypal owns the OAuth2 credential lifecycle and the authenticated
// request pipeline against the PayPal REST API.
package paypal

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"paypalmcp/internal/domain"
	"paypalmcp/internal/infra/telemetry"
)

const tokenPath = "/v1/oauth2/token"

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// TokenSource holds the single cached bearer credential for the configured
// client identity. The slot is guarded by a mutex so overlapping expirations
// trigger one acquisition, not a thundering herd.
type TokenSource struct {
	client       *http.Client
	baseURL      string
	clientID     string
	clientSecret string
	safetyMargin time.Duration
	logger       *zap.Logger
	metrics      *telemetry.Metrics
	now          func() time.Time

	mu        sync.Mutex
	token     string
	tokenType string
	expiry    time.Time
}

func NewTokenSource(cfg domain.Config, client *http.Client, logger *zap.Logger, metrics *telemetry.Metrics) *TokenSource {
	if client == nil {
		client = &http.Client{Timeout: cfg.RequestTimeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenSource{
		client:       client,
		baseURL:      cfg.BaseURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		safetyMargin: cfg.TokenSafetyMargin,
		logger:       logger.Named("token_source"),
		metrics:      metrics,
		now:          time.Now,
	}
}

// Token returns a credential valid at the time of the call, acquiring a fresh
// one if the cached credential is absent or past its safety-adjusted expiry.
// Callers must not cache the returned string beyond the call they attach it to.
func (s *TokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && s.now().Before(s.expiry) {
		return s.token, nil
	}
	if err := s.acquireLocked(ctx); err != nil {
		return "", err
	}
	return s.token, nil
}

// Invalidate drops the cached credential so the next Token call re-acquires.
// Used by the gateway after a server-side authorization rejection.
func (s *TokenSource) Invalidate() {
	s.mu.Lock()
	s.token = ""
	s.tokenType = ""
	s.expiry = time.Time{}
	s.mu.Unlock()
}

// Verify performs a best-effort acquisition to confirm the configured
// credentials are usable. Failures are reported as false, never propagated.
func (s *TokenSource) Verify(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.acquireLocked(ctx); err != nil {
		s.logger.Warn("credential verification failed", zap.Error(err))
		return false
	}
	return true
}

// acquireLocked exchanges the client identity for a fresh credential. The
// token endpoint itself is never bearer-authenticated. Callers hold s.mu.
func (s *TokenSource) acquireLocked(ctx context.Context) (err error) {
	const op = "auth.acquire"
	defer func() { s.metrics.ObserveTokenAcquisition(err) }()

	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return domain.E(domain.CodeUnauthenticated, op, "failed to authenticate", err)
	}
	req.SetBasicAuth(s.clientID, s.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error("token exchange failed",
			zap.String("method", http.MethodPost),
			zap.String("path", tokenPath),
			zap.Error(err),
		)
		return domain.E(domain.CodeUnauthenticated, op, "failed to authenticate", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.E(domain.CodeUnauthenticated, op, "failed to authenticate", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.logger.Error("token exchange rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("method", http.MethodPost),
			zap.String("path", tokenPath),
			zap.String("body", telemetry.RedactJSON(body)),
		)
		e := domain.E(domain.CodeUnauthenticated, op, "failed to authenticate", nil)
		e.Meta = map[string]string{"status": strconv.Itoa(resp.StatusCode)}
		return e
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return domain.E(domain.CodeUnauthenticated, op, "failed to authenticate", err)
	}
	if tok.AccessToken == "" || tok.ExpiresIn <= 0 {
		return domain.E(domain.CodeUnauthenticated, op, "failed to authenticate", nil)
	}

	s.token = tok.AccessToken
	s.tokenType = tok.TokenType
	s.expiry = s.now().Add(time.Duration(tok.ExpiresIn)*time.Second - s.safetyMargin)
	s.logger.Debug("credential acquired", zap.Time("expiry", s.expiry))
	return nil
}
