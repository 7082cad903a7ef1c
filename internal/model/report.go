package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProfessionEarnings is one row of the best-profession report: the summed
// price of paid jobs grouped by the contractor's profession.
type ProfessionEarnings struct {
	Profession string          `json:"profession"`
	Total      decimal.Decimal `json:"total"`
}

// ClientEarnings is one row of the best-clients report.
type ClientEarnings struct {
	ID       uuid.UUID       `json:"id"`
	FullName string          `json:"fullName"`
	Paid     decimal.Decimal `json:"paid"`
}

type BestClientsReport struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	Clients     []ClientEarnings
}

// ReceiptDocument carries everything the PDF receipt needs about a paid job.
type ReceiptDocument struct {
	Job        Job
	Contract   Contract
	Client     Profile
	Contractor Profile
}
