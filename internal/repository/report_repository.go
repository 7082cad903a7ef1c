package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/gigpay/internal/model"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// BestProfession returns the profession whose paid jobs summed to the most
// inside the window, or nil when nothing was paid in it. The window applies
// to the payment date; grouping and ordering are explicit.
func (r *ReportRepository) BestProfession(ctx context.Context, from, to time.Time) (*model.ProfessionEarnings, error) {
	var row struct {
		Profession string
		Total      decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Raw(`
		SELECT p.profession, SUM(j.price) AS total
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		JOIN profiles p ON p.id = c.contractor_id
		WHERE j.paid = TRUE AND j.payment_date >= ? AND j.payment_date < ?
		GROUP BY p.profession
		ORDER BY total DESC, p.profession ASC
		LIMIT 1
	`, from, to).Scan(&row).Error; err != nil {
		return nil, err
	}
	if row.Profession == "" {
		return nil, nil
	}
	return &model.ProfessionEarnings{Profession: row.Profession, Total: row.Total}, nil
}

func (r *ReportRepository) BestClients(ctx context.Context, from, to time.Time, limit int) ([]model.ClientEarnings, error) {
	var rows []struct {
		ID       uuid.UUID
		FullName string
		Paid     decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Raw(`
		SELECT
			p.id,
			p.first_name || ' ' || p.last_name AS full_name,
			SUM(j.price) AS paid
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		JOIN profiles p ON p.id = c.client_id
		WHERE j.paid = TRUE AND j.payment_date >= ? AND j.payment_date < ?
		GROUP BY p.id, p.first_name, p.last_name
		ORDER BY paid DESC, full_name ASC
		LIMIT ?
	`, from, to, limit).Scan(&rows).Error; err != nil {
		return nil, err
	}

	clients := make([]model.ClientEarnings, 0, len(rows))
	for _, row := range rows {
		clients = append(clients, model.ClientEarnings{
			ID:       row.ID,
			FullName: row.FullName,
			Paid:     row.Paid,
		})
	}
	return clients, nil
}
