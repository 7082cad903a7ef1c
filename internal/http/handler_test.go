package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/gigpay/internal/http/middleware"
	"github.com/nurpe/gigpay/internal/model"
	"github.com/nurpe/gigpay/internal/service"
)

type stubContractService struct {
	contract *model.Contract
	list     []model.Contract
	err      error
}

func (s *stubContractService) GetContract(ctx context.Context, id uuid.UUID, p model.Principal) (*model.Contract, error) {
	return s.contract, s.err
}

func (s *stubContractService) ListContracts(ctx context.Context, p model.Principal) ([]model.Contract, error) {
	return s.list, s.err
}

type stubPaymentService struct {
	job     *model.Job
	jobs    []model.Job
	profile *model.Profile
	receipt *service.ReceiptResult
	err     error

	paidJobID uuid.UUID
	deposited decimal.Decimal
}

func (s *stubPaymentService) ListUnpaidJobs(ctx context.Context, p model.Principal) ([]model.Job, error) {
	return s.jobs, s.err
}

func (s *stubPaymentService) PayJob(ctx context.Context, jobID uuid.UUID, p model.Principal) (*model.Job, error) {
	s.paidJobID = jobID
	return s.job, s.err
}

func (s *stubPaymentService) Deposit(ctx context.Context, p model.Principal, targetID uuid.UUID, amount decimal.Decimal) (*model.Profile, error) {
	s.deposited = amount
	return s.profile, s.err
}

func (s *stubPaymentService) Receipt(ctx context.Context, jobID uuid.UUID, p model.Principal) (*service.ReceiptResult, error) {
	return s.receipt, s.err
}

type stubReportService struct {
	profession *model.ProfessionEarnings
	clients    []model.ClientEarnings
	export     *service.ExportResult
	err        error

	window service.ReportWindow
}

func (s *stubReportService) BestProfession(ctx context.Context, window service.ReportWindow) (*model.ProfessionEarnings, error) {
	s.window = window
	return s.profession, s.err
}

func (s *stubReportService) BestClients(ctx context.Context, window service.ReportWindow) ([]model.ClientEarnings, error) {
	s.window = window
	return s.clients, s.err
}

func (s *stubReportService) ExportBestClients(ctx context.Context, window service.ReportWindow) (*service.ExportResult, error) {
	s.window = window
	return s.export, s.err
}

func newTestRouter(contracts ContractService, payments PaymentService, reports ReportService, principal model.Principal) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewHandler(contracts, payments, reports, zerolog.Nop())
	router := gin.New()
	router.GET("/healthz", handler.health)
	handler.Register(router, func(c *gin.Context) {
		middleware.SetPrincipal(c, principal)
		c.Next()
	})
	return router
}

func doRequest(router *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body
}

func TestGetContract_NotFoundResponse(t *testing.T) {
	principal := model.Principal{ID: uuid.New(), Type: model.ProfileTypeClient}
	router := newTestRouter(&stubContractService{err: service.ErrNotFound}, &stubPaymentService{}, &stubReportService{}, principal)

	recorder := doRequest(router, http.MethodGet, "/contracts/"+uuid.New().String(), nil)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, "Contract not found", decodeBody(t, recorder)["message"])
}

func TestGetContract_InvalidID(t *testing.T) {
	principal := model.Principal{ID: uuid.New(), Type: model.ProfileTypeClient}
	router := newTestRouter(&stubContractService{}, &stubPaymentService{}, &stubReportService{}, principal)

	recorder := doRequest(router, http.MethodGet, "/contracts/not-a-uuid", nil)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestPayJob_SuccessResponse(t *testing.T) {
	principal := model.Principal{ID: uuid.New(), Type: model.ProfileTypeClient}
	jobID := uuid.New()
	paidFlag := true
	now := time.Now().UTC()
	payments := &stubPaymentService{job: &model.Job{
		ID:          jobID,
		Price:       decimal.NewFromInt(40),
		Paid:        &paidFlag,
		PaymentDate: &now,
	}}
	router := newTestRouter(&stubContractService{}, payments, &stubReportService{}, principal)

	recorder := doRequest(router, http.MethodPost, "/jobs/"+jobID.String()+"/pay", nil)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, jobID, payments.paidJobID)
	body := decodeBody(t, recorder)
	assert.Equal(t, "Job payment successful", body["message"])
}

func TestPayJob_AlreadyPaidResponse(t *testing.T) {
	principal := model.Principal{ID: uuid.New(), Type: model.ProfileTypeClient}
	payments := &stubPaymentService{err: service.ErrAlreadyPaid}
	router := newTestRouter(&stubContractService{}, payments, &stubReportService{}, principal)

	recorder := doRequest(router, http.MethodPost, "/jobs/"+uuid.New().String()+"/pay", nil)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "Job already paid for", decodeBody(t, recorder)["message"])
}

func TestPayJob_InsufficientBalanceResponse(t *testing.T) {
	principal := model.Principal{ID: uuid.New(), Type: model.ProfileTypeClient}
	payments := &stubPaymentService{err: service.ErrInsufficientBalance}
	router := newTestRouter(&stubContractService{}, payments, &stubReportService{}, principal)

	recorder := doRequest(router, http.MethodPost, "/jobs/"+uuid.New().String()+"/pay", nil)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "Insufficient balance", decodeBody(t, recorder)["message"])
}

func TestDeposit_Success(t *testing.T) {
	principal := model.Principal{ID: uuid.New(), Type: model.ProfileTypeClient}
	payments := &stubPaymentService{profile: &model.Profile{ID: principal.ID, Balance: decimal.NewFromInt(150)}}
	router := newTestRouter(&stubContractService{}, payments, &stubReportService{}, principal)

	recorder := doRequest(router, http.MethodPost, "/balances/deposit/"+principal.ID.String(), []byte(`{"amount": 50}`))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.True(t, payments.deposited.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, "Deposit successful", decodeBody(t, recorder)["message"])
}

func TestDeposit_ForbiddenIsBadRequest(t *testing.T) {
	principal := model.Principal{ID: uuid.New(), Type: model.ProfileTypeContractor}
	payments := &stubPaymentService{err: service.ErrForbidden}
	router := newTestRouter(&stubContractService{}, payments, &stubReportService{}, principal)

	recorder := doRequest(router, http.MethodPost, "/balances/deposit/"+uuid.New().String(), []byte(`{"amount": 50}`))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestDeposit_LimitExceededResponse(t *testing.T) {
	principal := model.Principal{ID: uuid.New(), Type: model.ProfileTypeClient}
	payments := &stubPaymentService{err: service.ErrDepositLimitExceeded}
	router := newTestRouter(&stubContractService{}, payments, &stubReportService{}, principal)

	recorder := doRequest(router, http.MethodPost, "/balances/deposit/"+principal.ID.String(), []byte(`{"amount": 5000}`))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "Amount is greater than total allowable amount", decodeBody(t, recorder)["message"])
}

func TestBestClients_ParsesWindowAndLimit(t *testing.T) {
	principal := model.Principal{ID: uuid.New(), Type: model.ProfileTypeClient}
	reports := &stubReportService{clients: []model.ClientEarnings{}}
	router := newTestRouter(&stubContractService{}, &stubPaymentService{}, reports, principal)

	recorder := doRequest(router, http.MethodGet, "/admin/best-clients?from=2020-08-01&to=2020-09-01&limit=5", nil)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, 5, reports.window.Limit)
	assert.Equal(t, time.Date(2020, 8, 1, 0, 0, 0, 0, time.UTC), reports.window.From)
	assert.Equal(t, time.Date(2020, 9, 1, 0, 0, 0, 0, time.UTC), reports.window.To)
}

func TestBestClients_InvalidLimit(t *testing.T) {
	principal := model.Principal{ID: uuid.New(), Type: model.ProfileTypeClient}
	router := newTestRouter(&stubContractService{}, &stubPaymentService{}, &stubReportService{}, principal)

	recorder := doRequest(router, http.MethodGet, "/admin/best-clients?limit=0", nil)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestExportBestClients_SendsAttachment(t *testing.T) {
	principal := model.Principal{ID: uuid.New(), Type: model.ProfileTypeClient}
	reports := &stubReportService{export: &service.ExportResult{FileName: "best-clients-x.xlsx", Content: []byte("xlsx")}}
	router := newTestRouter(&stubContractService{}, &stubPaymentService{}, reports, principal)

	recorder := doRequest(router, http.MethodGet, "/admin/best-clients/export", nil)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Header().Get("Content-Disposition"), "best-clients-x.xlsx")
}

func TestHealthz(t *testing.T) {
	principal := model.Principal{ID: uuid.New(), Type: model.ProfileTypeClient}
	router := newTestRouter(&stubContractService{}, &stubPaymentService{}, &stubReportService{}, principal)

	recorder := doRequest(router, http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusOK, recorder.Code)
}
