package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/gigpay/internal/model"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) ListUnpaid(ctx context.Context, p model.Principal) ([]model.Job, error) {
	filter, arg, err := contractFilter(p)
	if err != nil {
		return nil, err
	}

	var jobs []model.Job
	if err := r.db.WithContext(ctx).Raw(`
		SELECT j.id, j.contract_id, j.description, j.price, j.paid, j.payment_date, j.created_at
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		WHERE (j.paid = FALSE OR j.paid IS NULL) AND `+filter+`
		ORDER BY j.created_at ASC
	`, arg).Scan(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// PayJob executes the payment transfer as one transaction. The job row is
// locked first, then both profile rows in ascending id order, and only then
// is the balance checked, so concurrent attempts on the same job or the same
// profiles serialize instead of losing updates. Validation order: not found,
// already paid, insufficient balance.
func (r *JobRepository) PayJob(ctx context.Context, jobID uuid.UUID, p model.Principal) (*model.Job, error) {
	filter, arg, err := contractFilter(p)
	if err != nil {
		return nil, err
	}

	var paid model.Job
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row struct {
			ID           uuid.UUID
			ContractID   uuid.UUID
			Description  string
			Price        decimal.Decimal
			Paid         *bool
			PaymentDate  *time.Time
			CreatedAt    time.Time
			ClientID     uuid.UUID
			ContractorID uuid.UUID
		}
		if err := tx.Raw(`
			SELECT
				j.id,
				j.contract_id,
				j.description,
				j.price,
				j.paid,
				j.payment_date,
				j.created_at,
				c.client_id,
				c.contractor_id
			FROM jobs j
			JOIN contracts c ON c.id = j.contract_id
			WHERE j.id = ? AND `+filter+`
			FOR UPDATE OF j
		`, jobID, arg).Scan(&row).Error; err != nil {
			return err
		}
		if row.ID == uuid.Nil {
			return gorm.ErrRecordNotFound
		}
		if row.Paid != nil && *row.Paid {
			return ErrJobAlreadyPaid
		}

		var balances []struct {
			ID      uuid.UUID
			Balance decimal.Decimal
		}
		if err := tx.Raw(`
			SELECT id, balance
			FROM profiles
			WHERE id IN (?, ?)
			ORDER BY id ASC
			FOR UPDATE
		`, row.ClientID, row.ContractorID).Scan(&balances).Error; err != nil {
			return err
		}
		if len(balances) != 2 {
			return gorm.ErrRecordNotFound
		}

		clientBalance := balances[0].Balance
		if balances[1].ID == row.ClientID {
			clientBalance = balances[1].Balance
		}
		if clientBalance.LessThan(row.Price) {
			return ErrInsufficientBalance
		}

		now := time.Now().UTC()
		if err := tx.Exec(`
			UPDATE jobs SET paid = TRUE, payment_date = ? WHERE id = ?
		`, now, row.ID).Error; err != nil {
			return err
		}
		if err := tx.Exec(`
			UPDATE profiles SET balance = balance - ? WHERE id = ?
		`, row.Price, row.ClientID).Error; err != nil {
			return err
		}
		if err := tx.Exec(`
			UPDATE profiles SET balance = balance + ? WHERE id = ?
		`, row.Price, row.ContractorID).Error; err != nil {
			return err
		}

		paidFlag := true
		paid = model.Job{
			ID:          row.ID,
			ContractID:  row.ContractID,
			Description: row.Description,
			Price:       row.Price,
			Paid:        &paidFlag,
			PaymentDate: &now,
			CreatedAt:   row.CreatedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &paid, nil
}

// GetReceipt loads a job together with its contract and both parties, still
// subject to the caller's visibility restriction.
func (r *JobRepository) GetReceipt(ctx context.Context, jobID uuid.UUID, p model.Principal) (*model.ReceiptDocument, error) {
	filter, arg, err := contractFilter(p)
	if err != nil {
		return nil, err
	}

	var row struct {
		ID                   uuid.UUID
		ContractID           uuid.UUID
		Description          string
		Price                decimal.Decimal
		Paid                 *bool
		PaymentDate          *time.Time
		CreatedAt            time.Time
		Terms                string
		Status               model.ContractStatus
		ClientID             uuid.UUID
		ClientFirstName      string
		ClientLastName       string
		ClientProfession     string
		ContractorID         uuid.UUID
		ContractorFirstName  string
		ContractorLastName   string
		ContractorProfession string
	}
	if err := r.db.WithContext(ctx).Raw(`
		SELECT
			j.id,
			j.contract_id,
			j.description,
			j.price,
			j.paid,
			j.payment_date,
			j.created_at,
			c.terms,
			c.status,
			c.client_id,
			client.first_name AS client_first_name,
			client.last_name AS client_last_name,
			client.profession AS client_profession,
			c.contractor_id,
			contractor.first_name AS contractor_first_name,
			contractor.last_name AS contractor_last_name,
			contractor.profession AS contractor_profession
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		JOIN profiles client ON client.id = c.client_id
		JOIN profiles contractor ON contractor.id = c.contractor_id
		WHERE j.id = ? AND `+filter+`
		LIMIT 1
	`, jobID, arg).Scan(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}

	return &model.ReceiptDocument{
		Job: model.Job{
			ID:          row.ID,
			ContractID:  row.ContractID,
			Description: row.Description,
			Price:       row.Price,
			Paid:        row.Paid,
			PaymentDate: row.PaymentDate,
			CreatedAt:   row.CreatedAt,
		},
		Contract: model.Contract{
			ID:           row.ContractID,
			Terms:        row.Terms,
			Status:       row.Status,
			ClientID:     row.ClientID,
			ContractorID: row.ContractorID,
		},
		Client: model.Profile{
			ID:         row.ClientID,
			FirstName:  row.ClientFirstName,
			LastName:   row.ClientLastName,
			Profession: row.ClientProfession,
			Type:       model.ProfileTypeClient,
		},
		Contractor: model.Profile{
			ID:         row.ContractorID,
			FirstName:  row.ContractorFirstName,
			LastName:   row.ContractorLastName,
			Profession: row.ContractorProfession,
			Type:       model.ProfileTypeContractor,
		},
	}, nil
}
