package accounts_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"banklink/internal/accounts"
	"banklink/internal/accounts/mocks"
	"banklink/internal/accounts/store/memory"
	"banklink/internal/events"
	"banklink/internal/logging"
	"banklink/internal/platform/config"
	dErrors "banklink/pkg/domain-errors"
)

type ServiceSuite struct {
	suite.Suite

	ctrl    *gomock.Controller
	caller  *mocks.MockBankCaller
	auditor *mocks.MockAuditor
	store   *memory.Store
	sink    *events.MemorySink
	svc     *accounts.Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.caller = mocks.NewMockBankCaller(s.ctrl)
	s.auditor = mocks.NewMockAuditor(s.ctrl)
	s.store = memory.NewStore()
	s.sink = events.NewMemorySink()

	cfg := config.Bank{MerchantType: "0088", CompanyName: "NOVA"}
	svc, err := accounts.New(cfg, s.caller, s.store, s.auditor, s.sink, logging.New(zap.NewNop()))
	s.Require().NoError(err)
	s.svc = svc
}

func validVerifyRequest() accounts.VerifyAccountRequest {
	return accounts.VerifyAccountRequest{
		CNIC:         "1234567890123",
		MobileNo:     "03001234567",
		MerchantType: "0088",
		TraceNo:      "123456",
	}
}

func validLinkRequest() accounts.LinkAccountRequest {
	return accounts.LinkAccountRequest{
		CNIC:         "1234567890123",
		MobileNo:     "03001234567",
		MerchantType: "0088",
		TraceNo:      "654321",
		OTPPin:       "9876",
	}
}

// ==========================================================================
// Account verification
// ==========================================================================

func (s *ServiceSuite) TestVerifyAccountSuccess() {
	s.caller.EXPECT().
		Post(gomock.Any(), "/api/v2/verifyacclinkacc-blb", gomock.Any()).
		Return([]byte(`{"success":true,"responseCode":"00","accountTitle":"JOHN DOE","accountStatus":"ACTIVE","accountType":"L1","pinSet":true}`), 200, nil)
	s.auditor.EXPECT().
		Log(gomock.Any(), "account_verified", "accounts", gomock.Any(), "", "123456").
		Return(nil)

	resp, err := s.svc.VerifyAccount(context.Background(), validVerifyRequest())
	s.Require().NoError(err)

	s.True(resp.Success)
	s.Equal("00", resp.ResponseCode)
	s.Equal("JOHN DOE", resp.AccountTitle)
	s.True(resp.PinSet)

	recs := s.store.Verifications()
	s.Require().Len(recs, 1)
	s.Equal("123456", recs[0].TraceNo)
	s.Equal("1234567890123", recs[0].CNIC)
	s.Equal("00", recs[0].ResponseCode)
	s.Equal("JOHN DOE", recs[0].AccountTitle)
	s.True(recs[0].Success)

	evts := s.sink.Events()
	s.Require().Len(evts, 1)
	s.Equal(events.TypeAccountVerified, evts[0].Type)
	s.Equal("123456", evts[0].TraceNo)
}

func (s *ServiceSuite) TestVerifyAccountInvalidCNICFailsBeforeNetwork() {
	req := validVerifyRequest()
	req.CNIC = "123456789012" // 12 digits

	_, err := s.svc.VerifyAccount(context.Background(), req)
	s.Require().Error(err)
	s.True(dErrors.IsCode(err, dErrors.CodeInvalidInput))
	s.Empty(s.store.Verifications())
	s.Empty(s.sink.Events())
}

func (s *ServiceSuite) TestVerifyAccountInvalidMobileRejected() {
	req := validVerifyRequest()
	req.MobileNo = "3001234567" // no leading 0

	_, err := s.svc.VerifyAccount(context.Background(), req)
	s.Require().Error(err)
	s.True(dErrors.IsCode(err, dErrors.CodeInvalidInput))
}

func (s *ServiceSuite) TestVerifyAccountTransportFailureHasNoSideEffects() {
	s.caller.EXPECT().
		Post(gomock.Any(), "/api/v2/verifyacclinkacc-blb", gomock.Any()).
		Return(nil, 0, errors.New("connection refused"))

	resp, err := s.svc.VerifyAccount(context.Background(), validVerifyRequest())
	s.Require().NoError(err)

	s.False(resp.Success)
	s.Contains(resp.Message, "connection refused")
	s.Empty(s.store.Verifications())
	s.Empty(s.sink.Events())
}

func (s *ServiceSuite) TestVerifyAccountDeclinedResponseStillPersisted() {
	s.caller.EXPECT().
		Post(gomock.Any(), "/api/v2/verifyacclinkacc-blb", gomock.Any()).
		Return([]byte(`{"success":false,"responseCode":"14","message":"no account found"}`), 200, nil)
	s.auditor.EXPECT().
		Log(gomock.Any(), "account_verified", "accounts", gomock.Any(), "", "123456").
		Return(nil)

	resp, err := s.svc.VerifyAccount(context.Background(), validVerifyRequest())
	s.Require().NoError(err)

	// success mirrors the bank's answer; the attempt is still recorded.
	s.False(resp.Success)
	s.Equal("14", resp.ResponseCode)
	recs := s.store.Verifications()
	s.Require().Len(recs, 1)
	s.False(recs[0].Success)
}

func (s *ServiceSuite) TestVerifyAccountNonObjectBodyIsGenericFailure() {
	s.caller.EXPECT().
		Post(gomock.Any(), "/api/v2/verifyacclinkacc-blb", gomock.Any()).
		Return([]byte(`["unexpected"]`), 200, nil)

	resp, err := s.svc.VerifyAccount(context.Background(), validVerifyRequest())
	s.Require().NoError(err)

	s.False(resp.Success)
	s.Empty(s.store.Verifications())
}

func (s *ServiceSuite) TestVerifyAccountDefaultsMerchantType() {
	var sent map[string]any
	s.caller.EXPECT().
		Post(gomock.Any(), "/api/v2/verifyacclinkacc-blb", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, payload any) ([]byte, int, error) {
			b, _ := json.Marshal(payload)
			json.Unmarshal(b, &sent)
			return []byte(`{"success":true}`), 200, nil
		})
	s.auditor.EXPECT().
		Log(gomock.Any(), "account_verified", "accounts", gomock.Any(), "", "123456").
		Return(nil)

	req := validVerifyRequest()
	req.MerchantType = ""
	_, err := s.svc.VerifyAccount(context.Background(), req)
	s.Require().NoError(err)

	s.Equal("0088", sent["merchant_type"])
	s.Equal("NOVA", sent["company_name"])
	s.Len(sent["date_time"], 14)
}

// ==========================================================================
// Account linking
// ==========================================================================

func (s *ServiceSuite) TestLinkAccountSuccess() {
	s.caller.EXPECT().
		Post(gomock.Any(), "/api/v2/linkacc-blb", gomock.Any()).
		Return([]byte(`{"success":true,"responseCode":"00","accountTitle":"JOHN DOE","accountType":"L1"}`), 200, nil)
	s.auditor.EXPECT().
		Log(gomock.Any(), "account_linked", "accounts", gomock.Any(), "", "654321").
		Return(nil)

	resp, err := s.svc.LinkAccount(context.Background(), validLinkRequest())
	s.Require().NoError(err)

	s.True(resp.Success)
	s.Equal("00", resp.ResponseCode)

	recs := s.store.Linkings()
	s.Require().Len(recs, 1)
	s.Equal("654321", recs[0].TraceNo)
	s.Equal("9876", recs[0].OTPPin)
	s.True(recs[0].Success)

	evts := s.sink.Events()
	s.Require().Len(evts, 1)
	s.Equal(events.TypeAccountLinked, evts[0].Type)
}

func (s *ServiceSuite) TestLinkAccountRequiresOTPPin() {
	req := validLinkRequest()
	req.OTPPin = ""

	_, err := s.svc.LinkAccount(context.Background(), req)
	s.Require().Error(err)
	s.True(dErrors.IsCode(err, dErrors.CodeInvalidInput))
}

func (s *ServiceSuite) TestLinkAccountNonObjectBodyIsGracefulFailure() {
	s.caller.EXPECT().
		Post(gomock.Any(), "/api/v2/linkacc-blb", gomock.Any()).
		Return([]byte(`["not","an","object"]`), 200, nil)

	resp, err := s.svc.LinkAccount(context.Background(), validLinkRequest())
	s.Require().NoError(err)

	s.False(resp.Success)
	s.Contains(resp.Message, "unexpected response format")
	s.Empty(s.store.Linkings())
	s.Empty(s.sink.Events())
}

func (s *ServiceSuite) TestLinkAccountSendsPin() {
	var sent map[string]any
	s.caller.EXPECT().
		Post(gomock.Any(), "/api/v2/linkacc-blb", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, payload any) ([]byte, int, error) {
			b, _ := json.Marshal(payload)
			json.Unmarshal(b, &sent)
			return []byte(`{"success":true}`), 200, nil
		})
	s.auditor.EXPECT().
		Log(gomock.Any(), "account_linked", "accounts", gomock.Any(), "", "654321").
		Return(nil)

	_, err := s.svc.LinkAccount(context.Background(), validLinkRequest())
	s.Require().NoError(err)

	s.Equal("9876", sent["pin"])
}

// ==========================================================================
// Lookup
// ==========================================================================

func (s *ServiceSuite) TestGetVerificationNotFound() {
	_, err := s.svc.GetVerification(context.Background(), "000000")
	s.Require().Error(err)
	s.True(dErrors.IsCode(err, dErrors.CodeNotFound))
}
