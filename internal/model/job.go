package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Job is a billable unit of work under a contract. A NULL paid column means
// the job has never been paid; it transitions to paid exactly once.
type Job struct {
	ID          uuid.UUID       `json:"id"`
	ContractID  uuid.UUID       `json:"contractId"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Paid        *bool           `json:"paid"`
	PaymentDate *time.Time      `json:"paymentDate"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func (j Job) IsPaid() bool {
	return j.Paid != nil && *j.Paid
}
