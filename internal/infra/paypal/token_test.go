package paypal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paypalmcp/internal/domain"
)

func testConfig(baseURL string) domain.Config {
	return domain.Config{
		ClientID:          "client-id",
		ClientSecret:      "client-secret",
		Environment:       domain.EnvironmentSandbox,
		BaseURL:           baseURL,
		TokenSafetyMargin: 60 * time.Second,
		RequestTimeout:    5 * time.Second,
	}
}

func newTokenServer(t *testing.T, hits *atomic.Int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, tokenPath, r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok, "token exchange must use basic auth")
		require.Equal(t, "client-id", user)
		require.Equal(t, "client-secret", pass)
		require.NotContains(t, r.Header.Get("Authorization"), "Bearer")

		require.NoError(t, r.ParseForm())
		require.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))

		n := hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": fmt.Sprintf("token-%d", n),
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
}

func TestTokenSource_CachesUntilExpiry(t *testing.T) {
	var hits atomic.Int64
	srv := newTokenServer(t, &hits)
	defer srv.Close()

	source := NewTokenSource(testConfig(srv.URL), nil, nil, nil)
	now := time.Unix(1000000, 0)
	source.now = func() time.Time { return now }

	tok, err := source.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-1", tok)
	assert.Equal(t, int64(1), hits.Load())

	// Still inside the safety-adjusted lifetime.
	now = now.Add(3539 * time.Second)
	tok, err = source.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-1", tok)
	assert.Equal(t, int64(1), hits.Load())

	// expiry = acquire time + 3600s - 60s margin.
	now = now.Add(2 * time.Second)
	tok, err = source.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-2", tok)
	assert.Equal(t, int64(2), hits.Load())
}

func TestTokenSource_ExpiredCredentialTriggersOneAcquisition(t *testing.T) {
	var hits atomic.Int64
	srv := newTokenServer(t, &hits)
	defer srv.Close()

	source := NewTokenSource(testConfig(srv.URL), nil, nil, nil)
	now := time.Unix(1000000, 0)
	source.now = func() time.Time { return now }

	source.token = "stale"
	source.expiry = now.Add(-time.Minute)

	tok, err := source.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-1", tok)
	assert.Equal(t, int64(1), hits.Load())
}

func TestTokenSource_ConcurrentCallsAcquireOnce(t *testing.T) {
	var hits atomic.Int64
	srv := newTokenServer(t, &hits)
	defer srv.Close()

	source := NewTokenSource(testConfig(srv.URL), nil, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, err := source.Token(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, "token-1", tok)
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(1), hits.Load())
}

func TestTokenSource_AcquireFailureLeavesSlotEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid_client"}`))
	}))
	defer srv.Close()

	source := NewTokenSource(testConfig(srv.URL), nil, nil, nil)

	_, err := source.Token(context.Background())
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.CodeUnauthenticated))
	assert.Contains(t, err.Error(), "failed to authenticate")
	assert.NotContains(t, err.Error(), "client-secret")

	source.mu.Lock()
	defer source.mu.Unlock()
	assert.Empty(t, source.token)
	assert.True(t, source.expiry.IsZero())
}

func TestTokenSource_AcquireFailureOnMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	source := NewTokenSource(testConfig(srv.URL), nil, nil, nil)

	_, err := source.Token(context.Background())
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.CodeUnauthenticated))
}

func TestTokenSource_VerifySwallowsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	source := NewTokenSource(testConfig(srv.URL), nil, nil, nil)
	assert.False(t, source.Verify(context.Background()))

	var hits atomic.Int64
	good := newTokenServer(t, &hits)
	defer good.Close()

	source = NewTokenSource(testConfig(good.URL), nil, nil, nil)
	assert.True(t, source.Verify(context.Background()))
}

func TestTokenSource_InvalidateForcesReacquire(t *testing.T) {
	var hits atomic.Int64
	srv := newTokenServer(t, &hits)
	defer srv.Close()

	source := NewTokenSource(testConfig(srv.URL), nil, nil, nil)

	_, err := source.Token(context.Background())
	require.NoError(t, err)
	source.Invalidate()

	tok, err := source.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-2", tok)
	assert.Equal(t, int64(2), hits.Load())
}
