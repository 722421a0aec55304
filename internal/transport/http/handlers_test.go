package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"banklink/internal/accounts"
	"banklink/internal/audit"
	"banklink/internal/onboarding"
	dErrors "banklink/pkg/domain-errors"
)

type stubOnboarding struct {
	initiateResp *onboarding.InitiateResponse
	initiateErr  error
	statusResp   *onboarding.StatusResponse
	statusErr    error
	gotReference string
}

func (s *stubOnboarding) Initiate(_ context.Context, _ onboarding.InitiateRequest) (*onboarding.InitiateResponse, error) {
	return s.initiateResp, s.initiateErr
}

func (s *stubOnboarding) Verify(_ context.Context, _ onboarding.VerifyRequest) (*onboarding.VerifyResponse, error) {
	return &onboarding.VerifyResponse{Success: true}, nil
}

func (s *stubOnboarding) GetStatus(_ context.Context, referenceID string) (*onboarding.StatusResponse, error) {
	s.gotReference = referenceID
	return s.statusResp, s.statusErr
}

func (s *stubOnboarding) Complete(_ context.Context, _ onboarding.CompleteRequest) (*onboarding.CompleteResponse, error) {
	return &onboarding.CompleteResponse{Success: true}, nil
}

type stubAccounts struct {
	verifyResp *accounts.VerifyAccountResponse
	verifyErr  error
}

func (s *stubAccounts) VerifyAccount(_ context.Context, _ accounts.VerifyAccountRequest) (*accounts.VerifyAccountResponse, error) {
	return s.verifyResp, s.verifyErr
}

func (s *stubAccounts) LinkAccount(_ context.Context, _ accounts.LinkAccountRequest) (*accounts.LinkAccountResponse, error) {
	return &accounts.LinkAccountResponse{Success: true}, nil
}

type stubAudit struct {
	entries    []audit.Entry
	gotFilters audit.Filters
}

func (s *stubAudit) GetLogs(_ context.Context, filters audit.Filters, _, _ int) ([]audit.Entry, error) {
	s.gotFilters = filters
	return s.entries, nil
}

func newTestServer(onb *stubOnboarding, acc *stubAccounts, aud *stubAudit) *httptest.Server {
	return httptest.NewServer(NewRouter(Deps{
		Onboarding: onb,
		Accounts:   acc,
		Audit:      aud,
		Log:        zap.NewNop(),
	}))
}

func postJSON(t *testing.T, url string, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewReader([]byte(body)))
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var m map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&m))
	return m
}

func TestOnboardingInitiateEndpoint(t *testing.T) {
	onb := &stubOnboarding{initiateResp: &onboarding.InitiateResponse{Success: true, ReferenceID: "REF-1"}}
	srv := newTestServer(onb, &stubAccounts{}, &stubAudit{})
	defer srv.Close()

	t.Run("happy path", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/onboarding/initiate", `{"cnic":"1234567890123","full_name":"John Doe","mobile_no":"03001234567","email":"j@example.com"}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := decode(t, resp)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "REF-1", body["reference_id"])
	})

	t.Run("malformed body is 400", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/onboarding/initiate", `{not json`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decode(t, resp)
		assert.Equal(t, false, body["success"])
	})
}

func TestOnboardingValidationErrorMapsTo400(t *testing.T) {
	onb := &stubOnboarding{initiateErr: dErrors.New(dErrors.CodeInvalidInput, "cnic must be 13 digits")}
	srv := newTestServer(onb, &stubAccounts{}, &stubAudit{})
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/onboarding/initiate", `{"cnic":"123"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["message"], "cnic")
}

func TestOnboardingStatusEndpoint(t *testing.T) {
	onb := &stubOnboarding{statusResp: &onboarding.StatusResponse{
		Success: true, ReferenceID: "REF-9", Status: onboarding.StatusVerified,
	}}
	srv := newTestServer(onb, &stubAccounts{}, &stubAudit{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/onboarding/status/REF-9")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, "verified", body["status"])
	assert.Equal(t, "REF-9", onb.gotReference)
}

func TestOnboardingStatusNotFoundMapsTo404(t *testing.T) {
	onb := &stubOnboarding{statusErr: dErrors.New(dErrors.CodeNotFound, "onboarding record not found")}
	srv := newTestServer(onb, &stubAccounts{}, &stubAudit{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/onboarding/status/REF-missing")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAccountsVerifyEndpoint(t *testing.T) {
	acc := &stubAccounts{verifyResp: &accounts.VerifyAccountResponse{
		Success: true, ResponseCode: "00", AccountTitle: "JOHN DOE",
	}}
	srv := newTestServer(&stubOnboarding{}, acc, &stubAudit{})
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/accounts/verify", `{"cnic":"1234567890123","mobile_no":"03001234567","merchant_type":"0088","trace_no":"123456"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, "00", body["response_code"])
	assert.Equal(t, "JOHN DOE", body["account_title"])
}

func TestAuditLogsEndpoint(t *testing.T) {
	aud := &stubAudit{entries: []audit.Entry{{
		ID:        uuid.New(),
		Action:    "api_request",
		Module:    "gateway",
		CreatedAt: time.Now(),
	}}}
	srv := newTestServer(&stubOnboarding{}, &stubAccounts{}, aud)
	defer srv.Close()

	t.Run("filters are parsed", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/audit/logs?module=gateway&action=api_request&date_from=2026-01-01")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := decode(t, resp)
		assert.Equal(t, true, body["success"])
		assert.Len(t, body["entries"], 1)

		assert.Equal(t, "gateway", aud.gotFilters.Module)
		assert.Equal(t, "api_request", aud.gotFilters.Action)
		require.NotNil(t, aud.gotFilters.DateFrom)
	})

	t.Run("date-only date_to covers the whole day", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/audit/logs?date_to=2026-01-02")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		require.NotNil(t, aud.gotFilters.DateTo)
		endOfDay := time.Date(2026, 1, 2, 23, 59, 59, 999999999, time.UTC)
		assert.True(t, aud.gotFilters.DateTo.Equal(endOfDay))
	})

	t.Run("RFC3339 date_to is taken as-is", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/audit/logs?date_to=2026-01-02T12:30:00Z")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		require.NotNil(t, aud.gotFilters.DateTo)
		assert.True(t, aud.gotFilters.DateTo.Equal(time.Date(2026, 1, 2, 12, 30, 0, 0, time.UTC)))
	})

	t.Run("bad date filter is 400", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/audit/logs?date_from=yesterday")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(&stubOnboarding{}, &stubAccounts{}, &stubAudit{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
