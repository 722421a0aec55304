package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"banklink/internal/audit"
	"banklink/internal/audit/store/memory"
	"banklink/internal/logging"
	"banklink/internal/platform/config"
)

type staticToken struct {
	token string
	err   error
}

func (s staticToken) Authenticate(ctx context.Context) (string, error) {
	return s.token, s.err
}

type GatewaySuite struct {
	suite.Suite

	store    *memory.Store
	recorder *audit.Recorder
	logs     *logging.Gateway
}

func TestGatewaySuite(t *testing.T) {
	suite.Run(t, new(GatewaySuite))
}

func (s *GatewaySuite) SetupTest() {
	s.store = memory.NewStore()
	recorder, err := audit.NewRecorder(s.store, true)
	s.Require().NoError(err)
	s.recorder = recorder
	s.logs = logging.New(zap.NewNop())
}

func (s *GatewaySuite) newGateway(baseURL string, opts ...Option) *Gateway {
	cfg := config.Bank{BaseURL: baseURL, Timeout: 5 * time.Second}
	g, err := New(cfg, staticToken{token: "tok-abc"}, s.logs, s.recorder, opts...)
	s.Require().NoError(err)
	return g
}

// ==========================================================================
// Request construction
// ==========================================================================

func (s *GatewaySuite) TestInjectsBearerToken() {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	g := s.newGateway(srv.URL)
	resp, err := g.Get(context.Background(), "/status", nil)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal("Bearer tok-abc", gotAuth)
}

func (s *GatewaySuite) TestPerCallHeadersWinOverDefaults() {
	var gotChannel, gotTenant string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotChannel = r.Header.Get("X-Channel")
		gotTenant = r.Header.Get("X-Tenant")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	g := s.newGateway(srv.URL, WithDefaultHeaders(map[string]string{
		"X-Channel": "default",
		"X-Tenant":  "acme",
	}))
	resp, err := g.Post(context.Background(), "/submit", map[string]string{"k": "v"},
		map[string]string{"X-Channel": "override"})
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal("override", gotChannel)
	s.Equal("acme", gotTenant)
}

func (s *GatewaySuite) TestPostMarshalsPayload() {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &got)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	g := s.newGateway(srv.URL)
	resp, err := g.Post(context.Background(), "/submit", map[string]any{"name": "test"}, nil)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal("test", got["name"])
}

// ==========================================================================
// Response handling
// ==========================================================================

func (s *GatewaySuite) TestBodyReadableAfterLogging() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	g := s.newGateway(srv.URL)
	resp, err := g.Get(context.Background(), "/status", nil)
	s.Require().NoError(err)
	defer resp.Body.Close()

	// The gateway consumed the body for logging but must hand it back intact.
	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	s.JSONEq(`{"status":"ok"}`, string(body))
}

func (s *GatewaySuite) TestNon2xxStatusIsNotAnError() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":"upstream"}`))
	}))
	defer srv.Close()

	g := s.newGateway(srv.URL)
	resp, err := g.Get(context.Background(), "/status", nil)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusBadGateway, resp.StatusCode)
}

// ==========================================================================
// Audit trail
// ==========================================================================

func (s *GatewaySuite) TestEmitsOneAuditEntryPerCall() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	g := s.newGateway(srv.URL)
	resp, err := g.Put(context.Background(), "/update", map[string]string{"k": "v"}, nil)
	s.Require().NoError(err)
	resp.Body.Close()

	entries := s.store.All()
	s.Require().Len(entries, 1)
	s.Equal("api_request", entries[0].Action)
	s.Equal(audit.ModuleGateway, entries[0].Module)
	s.Equal(http.MethodPut, entries[0].Payload["method"])
	s.Equal(srv.URL+"/update", entries[0].Payload["endpoint"])
	s.Equal(http.StatusOK, entries[0].Payload["status_code"])
}

func (s *GatewaySuite) TestTransportFailureSkipsAudit() {
	g := s.newGateway("http://127.0.0.1:1")
	_, err := g.Get(context.Background(), "/status", nil)
	s.Require().Error(err)
	s.Empty(s.store.All())
}

func (s *GatewaySuite) TestTokenFailurePropagates() {
	cfg := config.Bank{BaseURL: "http://example.invalid", Timeout: time.Second}
	g, err := New(cfg, staticToken{err: context.DeadlineExceeded}, s.logs, s.recorder)
	s.Require().NoError(err)

	_, err = g.Get(context.Background(), "/status", nil)
	s.Require().Error(err)
	s.Empty(s.store.All())
}

// ==========================================================================
// Construction
// ==========================================================================

func (s *GatewaySuite) TestNewRejectsNilDependencies() {
	cfg := config.Bank{BaseURL: "http://example.invalid"}

	_, err := New(cfg, nil, s.logs, s.recorder)
	s.Error(err)

	_, err = New(cfg, staticToken{}, nil, s.recorder)
	s.Error(err)

	_, err = New(cfg, staticToken{}, s.logs, nil)
	s.Error(err)
}
