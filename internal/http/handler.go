package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/nurpe/gigpay/internal/http/middleware"
	"github.com/nurpe/gigpay/internal/model"
	"github.com/nurpe/gigpay/internal/service"
)

type ContractService interface {
	GetContract(ctx context.Context, id uuid.UUID, p model.Principal) (*model.Contract, error)
	ListContracts(ctx context.Context, p model.Principal) ([]model.Contract, error)
}

type PaymentService interface {
	ListUnpaidJobs(ctx context.Context, p model.Principal) ([]model.Job, error)
	PayJob(ctx context.Context, jobID uuid.UUID, p model.Principal) (*model.Job, error)
	Deposit(ctx context.Context, p model.Principal, targetID uuid.UUID, amount decimal.Decimal) (*model.Profile, error)
	Receipt(ctx context.Context, jobID uuid.UUID, p model.Principal) (*service.ReceiptResult, error)
}

type ReportService interface {
	BestProfession(ctx context.Context, window service.ReportWindow) (*model.ProfessionEarnings, error)
	BestClients(ctx context.Context, window service.ReportWindow) ([]model.ClientEarnings, error)
	ExportBestClients(ctx context.Context, window service.ReportWindow) (*service.ExportResult, error)
}

type Handler struct {
	contracts ContractService
	payments  PaymentService
	reports   ReportService
	log       zerolog.Logger
}

func NewHandler(contracts ContractService, payments PaymentService, reports ReportService, log zerolog.Logger) *Handler {
	return &Handler{contracts: contracts, payments: payments, reports: reports, log: log}
}

func (h *Handler) Register(router *gin.Engine, profileMiddleware gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(profileMiddleware)
	protected.GET("/contracts/:id", h.getContract)
	protected.GET("/contracts", h.listContracts)
	protected.GET("/jobs/unpaid", h.listUnpaidJobs)
	protected.POST("/jobs/:job_id/pay", h.payJob)
	protected.GET("/jobs/:job_id/receipt", h.jobReceipt)
	protected.POST("/balances/deposit/:userId", h.deposit)
	protected.GET("/admin/best-profession", h.bestProfession)
	protected.GET("/admin/best-clients", h.bestClients)
	protected.GET("/admin/best-clients/export", h.exportBestClients)
}

func (h *Handler) getContract(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "missing principal"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid contract id"})
		return
	}

	contract, err := h.contracts.GetContract(c.Request.Context(), id, principal)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Contract not found"})
			return
		}
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Contract retrieved",
		"data":    gin.H{"contract": contract},
	})
}

func (h *Handler) listContracts(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "missing principal"})
		return
	}

	contracts, err := h.contracts.ListContracts(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Contracts retrieved",
		"data":    gin.H{"contracts": contracts},
	})
}

func (h *Handler) listUnpaidJobs(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "missing principal"})
		return
	}

	jobs, err := h.payments.ListUnpaidJobs(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Jobs retrieved",
		"data":    gin.H{"jobs": jobs},
	})
}

func (h *Handler) payJob(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "missing principal"})
		return
	}

	jobID, err := uuid.Parse(c.Param("job_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid job id"})
		return
	}

	job, err := h.payments.PayJob(c.Request.Context(), jobID, principal)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "Job not found"})
		case errors.Is(err, service.ErrAlreadyPaid):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Job already paid for"})
		case errors.Is(err, service.ErrInsufficientBalance):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Insufficient balance"})
		default:
			h.handleError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Job payment successful",
		"data":    gin.H{"job": job},
	})
}

func (h *Handler) jobReceipt(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "missing principal"})
		return
	}

	jobID, err := uuid.Parse(c.Param("job_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid job id"})
		return
	}

	result, err := h.payments.Receipt(c.Request.Context(), jobID, principal)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Job not found"})
			return
		}
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/pdf", result.Content)
}

type depositRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h *Handler) deposit(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "missing principal"})
		return
	}

	targetID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid user id"})
		return
	}

	var req depositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid amount"})
		return
	}

	client, err := h.payments.Deposit(c.Request.Context(), principal, targetID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid amount"})
		case errors.Is(err, service.ErrDepositLimitExceeded):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Amount is greater than total allowable amount"})
		default:
			h.handleError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Deposit successful",
		"data":    gin.H{"client": client},
	})
}

func (h *Handler) bestProfession(c *gin.Context) {
	window, err := parseWindow(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	profession, err := h.reports.BestProfession(c.Request.Context(), window)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Best Profession fetched successfully",
		"data":    gin.H{"profession": profession},
	})
}

func (h *Handler) bestClients(c *gin.Context) {
	window, err := parseWindow(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	clients, err := h.reports.BestClients(c.Request.Context(), window)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Best Clients fetched successfully",
		"data":    gin.H{"clients": clients},
	})
}

func (h *Handler) exportBestClients(c *gin.Context) {
	window, err := parseWindow(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	result, err := h.reports.ExportBestClients(c.Request.Context(), window)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", result.Content)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, service.ErrJobNotPaid):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	default:
		h.log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "An error occured", "error": "internal error"})
	}
}

func parseWindow(c *gin.Context) (service.ReportWindow, error) {
	window := service.ReportWindow{}

	if raw := strings.TrimSpace(c.Query("from")); raw != "" {
		from, err := parseDate(raw)
		if err != nil {
			return service.ReportWindow{}, errors.New("invalid from date")
		}
		window.From = from
	}
	if raw := strings.TrimSpace(c.Query("to")); raw != "" {
		to, err := parseDate(raw)
		if err != nil {
			return service.ReportWindow{}, errors.New("invalid to date")
		}
		window.To = to
	}
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return service.ReportWindow{}, errors.New("invalid limit")
		}
		window.Limit = limit
	}
	return window, nil
}

func parseDate(raw string) (time.Time, error) {
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, errors.New("unrecognized date format")
}
