package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/gigpay/internal/model"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) GetProfile(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	var profile model.Profile
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, first_name, last_name, profession, balance, type, created_at
		FROM profiles
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&profile).Error; err != nil {
		return nil, err
	}
	if profile.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &profile, nil
}

// Deposit credits a client's balance inside one transaction. The profile row
// is locked before the outstanding unpaid total is read so a concurrent
// payment cannot slip between the limit check and the credit. maxRatio caps
// the deposit at that fraction of the outstanding total; with no unpaid jobs
// every positive deposit is over the limit.
func (r *ProfileRepository) Deposit(ctx context.Context, clientID uuid.UUID, amount, maxRatio decimal.Decimal) (*model.Profile, error) {
	var updated model.Profile
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var profile model.Profile
		if err := tx.Raw(`
			SELECT id, first_name, last_name, profession, balance, type, created_at
			FROM profiles
			WHERE id = ? AND type = 'client'
			FOR UPDATE
		`, clientID).Scan(&profile).Error; err != nil {
			return err
		}
		if profile.ID == uuid.Nil {
			return gorm.ErrRecordNotFound
		}

		var row struct {
			Total decimal.Decimal
		}
		if err := tx.Raw(`
			SELECT COALESCE(SUM(j.price), 0) AS total
			FROM jobs j
			JOIN contracts c ON c.id = j.contract_id
			WHERE c.client_id = ? AND (j.paid = FALSE OR j.paid IS NULL)
		`, clientID).Scan(&row).Error; err != nil {
			return err
		}

		maxDeposit := row.Total.Mul(maxRatio)
		if amount.GreaterThan(maxDeposit) {
			return ErrDepositOverLimit
		}

		if err := tx.Exec(`
			UPDATE profiles SET balance = balance + ? WHERE id = ?
		`, amount, clientID).Error; err != nil {
			return err
		}

		updated = profile
		updated.Balance = profile.Balance.Add(amount)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
