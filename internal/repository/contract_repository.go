package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/gigpay/internal/model"
)

type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

func (r *ContractRepository) GetContract(ctx context.Context, id uuid.UUID, p model.Principal) (*model.Contract, error) {
	filter, arg, err := contractFilter(p)
	if err != nil {
		return nil, err
	}

	var contract model.Contract
	if err := r.db.WithContext(ctx).Raw(`
		SELECT c.id, c.terms, c.status, c.client_id, c.contractor_id, c.created_at
		FROM contracts c
		WHERE c.id = ? AND `+filter+`
		LIMIT 1
	`, id, arg).Scan(&contract).Error; err != nil {
		return nil, err
	}
	if contract.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &contract, nil
}

func (r *ContractRepository) ListContracts(ctx context.Context, p model.Principal) ([]model.Contract, error) {
	filter, arg, err := contractFilter(p)
	if err != nil {
		return nil, err
	}

	var contracts []model.Contract
	if err := r.db.WithContext(ctx).Raw(`
		SELECT c.id, c.terms, c.status, c.client_id, c.contractor_id, c.created_at
		FROM contracts c
		WHERE `+filter+`
		ORDER BY c.created_at ASC
	`, arg).Scan(&contracts).Error; err != nil {
		return nil, err
	}
	return contracts, nil
}
