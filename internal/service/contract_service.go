package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/gigpay/internal/model"
	"github.com/nurpe/gigpay/internal/repository"
)

type ContractRepository interface {
	GetContract(ctx context.Context, id uuid.UUID, p model.Principal) (*model.Contract, error)
	ListContracts(ctx context.Context, p model.Principal) ([]model.Contract, error)
}

type ContractService struct {
	contracts ContractRepository
}

func NewContractService(contracts ContractRepository) *ContractService {
	return &ContractService{contracts: contracts}
}

func (s *ContractService) GetContract(ctx context.Context, id uuid.UUID, p model.Principal) (*model.Contract, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: contract id is required", ErrInvalidInput)
	}

	contract, err := s.contracts.GetContract(ctx, id, p)
	if err != nil {
		return nil, mapAccessErr(err)
	}
	return contract, nil
}

func (s *ContractService) ListContracts(ctx context.Context, p model.Principal) ([]model.Contract, error) {
	contracts, err := s.contracts.ListContracts(ctx, p)
	if err != nil {
		return nil, mapAccessErr(err)
	}
	return contracts, nil
}

// mapAccessErr converts repository-level outcomes into the service taxonomy.
func mapAccessErr(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrAccessDenied):
		return ErrForbidden
	default:
		return err
	}
}
