package paypal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paypalmcp/internal/domain"
)

// apiFixture stands in for the remote API: a token endpoint plus a scripted
// resource endpoint.
type apiFixture struct {
	srv          *httptest.Server
	tokenHits    atomic.Int64
	resourceHits atomic.Int64
	resource     func(hit int64, r *http.Request, w http.ResponseWriter)
}

func newAPIFixture(t *testing.T, resource func(hit int64, r *http.Request, w http.ResponseWriter)) *apiFixture {
	t.Helper()
	f := &apiFixture{resource: resource}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == tokenPath {
			n := f.tokenHits.Add(1)
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token": fmt.Sprintf("token-%d", n),
				"token_type":   "Bearer",
				"expires_in":   3600,
			})
			return
		}
		f.resource(f.resourceHits.Add(1), r, w)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func newTestClient(f *apiFixture) *Client {
	cfg := testConfig(f.srv.URL)
	tokens := NewTokenSource(cfg, nil, nil, nil)
	return NewClient(cfg, tokens, nil, nil)
}

func TestClient_AttachesBearerCredential(t *testing.T) {
	f := newAPIFixture(t, func(_ int64, r *http.Request, w http.ResponseWriter) {
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"id":"ORDER-1"}`))
	})
	client := newTestClient(f)

	body, err := client.Do(context.Background(), http.MethodPost, "/v2/checkout/orders", map[string]any{"intent": "CAPTURE"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"ORDER-1"}`, string(body))
	assert.Equal(t, int64(1), f.tokenHits.Load())
	assert.Equal(t, int64(1), f.resourceHits.Load())
}

func TestClient_ReplaysOnceAfterAuthorizationRejection(t *testing.T) {
	var bodies []string
	f := newAPIFixture(t, func(hit int64, r *http.Request, w http.ResponseWriter) {
		raw, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(raw))
		if hit == 1 {
			assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "Bearer token-2", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"status":"COMPLETED"}`))
	})
	client := newTestClient(f)

	body, err := client.Do(context.Background(), http.MethodPost, "/v2/checkout/orders", map[string]any{"intent": "CAPTURE"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"COMPLETED"}`, string(body))

	assert.Equal(t, int64(2), f.resourceHits.Load())
	assert.Equal(t, int64(2), f.tokenHits.Load())
	require.Len(t, bodies, 2)
	assert.Equal(t, bodies[0], bodies[1], "replay must carry the identical payload")
}

func TestClient_SecondRejectionIsTerminal(t *testing.T) {
	f := newAPIFixture(t, func(_ int64, _ *http.Request, w http.ResponseWriter) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid_token"}`))
	})
	client := newTestClient(f)

	_, err := client.Do(context.Background(), http.MethodGet, "/v2/checkout/orders/1", nil)
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.CodeUnauthenticated))

	// Original call plus exactly one replay, never a third attempt.
	assert.Equal(t, int64(2), f.resourceHits.Load())
}

func TestClient_NonAuthFailuresAreNotRetried(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusNotFound, http.StatusUnprocessableEntity, http.StatusInternalServerError} {
		t.Run(fmt.Sprintf("status_%d", status), func(t *testing.T) {
			f := newAPIFixture(t, func(_ int64, _ *http.Request, w http.ResponseWriter) {
				w.WriteHeader(status)
				_, _ = w.Write([]byte(`{"name":"SOME_ERROR"}`))
			})
			client := newTestClient(f)

			_, err := client.Do(context.Background(), http.MethodPost, "/v1/catalogs/products", map[string]any{"name": "x"})
			require.Error(t, err)
			assert.True(t, domain.HasCode(err, domain.CodeRemoteCall))
			assert.Equal(t, int64(1), f.resourceHits.Load())

			var domainErr *domain.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, fmt.Sprintf("%d", status), domainErr.Meta["status"])
		})
	}
}

func TestClient_NetworkFailureSurfacesAsRemoteCall(t *testing.T) {
	f := newAPIFixture(t, func(_ int64, _ *http.Request, w http.ResponseWriter) {
		w.WriteHeader(http.StatusOK)
	})
	cfg := testConfig(f.srv.URL)
	tokens := NewTokenSource(cfg, nil, nil, nil)

	// Token acquisition succeeds, then the resource host is unreachable.
	cfg.BaseURL = "http://127.0.0.1:1"
	client := NewClient(cfg, tokens, nil, nil)
	client.http.Timeout = 500 * time.Millisecond

	_, err := client.Do(context.Background(), http.MethodGet, "/v2/checkout/orders/1", nil)
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.CodeRemoteCall))
}

func TestClient_SurfacedErrorHidesTransportDetail(t *testing.T) {
	f := newAPIFixture(t, func(_ int64, _ *http.Request, w http.ResponseWriter) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"name":"UNPROCESSABLE_ENTITY","details":[{"issue":"CURRENCY_NOT_SUPPORTED"}]}`))
	})
	client := newTestClient(f)

	_, err := client.Do(context.Background(), http.MethodPost, "/v2/checkout/orders", nil)
	require.Error(t, err)
	assert.False(t, strings.Contains(err.Error(), "CURRENCY_NOT_SUPPORTED"))
}
