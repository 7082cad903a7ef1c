package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProfileType string

const (
	ProfileTypeClient     ProfileType = "client"
	ProfileTypeContractor ProfileType = "contractor"
)

// Profile is an account on the marketplace. Balance never goes below zero;
// the payment and deposit operations enforce that inside their transactions.
type Profile struct {
	ID         uuid.UUID       `json:"id"`
	FirstName  string          `json:"firstName"`
	LastName   string          `json:"lastName"`
	Profession string          `json:"profession"`
	Balance    decimal.Decimal `json:"balance"`
	Type       ProfileType     `json:"type"`
	CreatedAt  time.Time       `json:"createdAt"`
}

func (p Profile) FullName() string {
	return p.FirstName + " " + p.LastName
}

// Principal is the authenticated caller's identity as resolved by the
// profile middleware.
type Principal struct {
	ID   uuid.UUID
	Type ProfileType
}

func (p Principal) IsClient() bool {
	return p.Type == ProfileTypeClient
}

func (p Principal) IsContractor() bool {
	return p.Type == ProfileTypeContractor
}
