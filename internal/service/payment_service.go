package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/gigpay/internal/config"
	"github.com/nurpe/gigpay/internal/model"
	"github.com/nurpe/gigpay/internal/repository"
)

type JobRepository interface {
	ListUnpaid(ctx context.Context, p model.Principal) ([]model.Job, error)
	PayJob(ctx context.Context, jobID uuid.UUID, p model.Principal) (*model.Job, error)
	GetReceipt(ctx context.Context, jobID uuid.UUID, p model.Principal) (*model.ReceiptDocument, error)
}

type ProfileRepository interface {
	Deposit(ctx context.Context, clientID uuid.UUID, amount, maxRatio decimal.Decimal) (*model.Profile, error)
}

type ReceiptGenerator interface {
	Generate(doc model.ReceiptDocument) ([]byte, error)
}

// PaymentService owns the money-moving operations: job payment, balance
// deposit and the receipt export for already-paid jobs.
type PaymentService struct {
	jobs         JobRepository
	profiles     ProfileRepository
	receipts     ReceiptGenerator
	depositRatio decimal.Decimal
}

type ReceiptResult struct {
	FileName string
	Content  []byte
}

func NewPaymentService(jobs JobRepository, profiles ProfileRepository, receipts ReceiptGenerator, cfg *config.Config) *PaymentService {
	return &PaymentService{
		jobs:         jobs,
		profiles:     profiles,
		receipts:     receipts,
		depositRatio: decimal.NewFromFloat(cfg.Payments.DepositLimitRatio),
	}
}

func (s *PaymentService) ListUnpaidJobs(ctx context.Context, p model.Principal) ([]model.Job, error) {
	jobs, err := s.jobs.ListUnpaid(ctx, p)
	if err != nil {
		return nil, mapAccessErr(err)
	}
	return jobs, nil
}

// PayJob moves the job's price from the client balance to the contractor
// balance and marks the job paid, all inside the repository transaction.
// Exactly one of any set of concurrent attempts on the same job succeeds.
func (s *PaymentService) PayJob(ctx context.Context, jobID uuid.UUID, p model.Principal) (*model.Job, error) {
	if jobID == uuid.Nil {
		return nil, fmt.Errorf("%w: job id is required", ErrInvalidInput)
	}

	job, err := s.jobs.PayJob(ctx, jobID, p)
	switch {
	case err == nil:
		return job, nil
	case errors.Is(err, repository.ErrJobAlreadyPaid):
		return nil, ErrAlreadyPaid
	case errors.Is(err, repository.ErrInsufficientBalance):
		return nil, ErrInsufficientBalance
	default:
		return nil, mapAccessErr(err)
	}
}

// Deposit credits the caller's own client account. The amount must be
// positive and may not exceed the configured fraction of the caller's
// outstanding unpaid job total.
func (s *PaymentService) Deposit(ctx context.Context, p model.Principal, targetID uuid.UUID, amount decimal.Decimal) (*model.Profile, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	if !p.IsClient() {
		return nil, fmt.Errorf("%w: only clients can deposit", ErrForbidden)
	}
	if p.ID != targetID {
		return nil, fmt.Errorf("%w: clients can only deposit into their own account", ErrForbidden)
	}

	profile, err := s.profiles.Deposit(ctx, p.ID, amount, s.depositRatio)
	switch {
	case err == nil:
		return profile, nil
	case errors.Is(err, repository.ErrDepositOverLimit):
		return nil, ErrDepositLimitExceeded
	default:
		return nil, mapAccessErr(err)
	}
}

// Receipt renders a PDF receipt for a paid job visible to the caller.
func (s *PaymentService) Receipt(ctx context.Context, jobID uuid.UUID, p model.Principal) (*ReceiptResult, error) {
	if jobID == uuid.Nil {
		return nil, fmt.Errorf("%w: job id is required", ErrInvalidInput)
	}

	doc, err := s.jobs.GetReceipt(ctx, jobID, p)
	if err != nil {
		return nil, mapAccessErr(err)
	}
	if !doc.Job.IsPaid() {
		return nil, ErrJobNotPaid
	}

	content, err := s.receipts.Generate(*doc)
	if err != nil {
		return nil, err
	}
	return &ReceiptResult{
		FileName: fmt.Sprintf("receipt-%s.pdf", doc.Job.ID),
		Content:  content,
	}, nil
}
