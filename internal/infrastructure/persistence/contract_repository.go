package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/zarnegar/backend/internal/domain/installment"
	"github.com/zarnegar/backend/internal/domain/shared"
	"github.com/zarnegar/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormContractRepository implements ContractRepository using GORM
type GormContractRepository struct {
	db *gorm.DB
}

// NewGormContractRepository creates a new GormContractRepository
func NewGormContractRepository(db *gorm.DB) *GormContractRepository {
	return &GormContractRepository{db: db}
}

// FindByID finds a contract by its ID
func (r *GormContractRepository) FindByID(ctx context.Context, id uuid.UUID) (*installment.Contract, error) {
	var model models.ContractModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds a contract by ID within a tenant
func (r *GormContractRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*installment.Contract, error) {
	var model models.ContractModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByContractNumber finds a contract by its number within a tenant
func (r *GormContractRepository) FindByContractNumber(ctx context.Context, tenantID uuid.UUID, contractNumber string) (*installment.Contract, error) {
	var model models.ContractModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND contract_number = ?", tenantID, contractNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds all contracts for a tenant matching the filter
func (r *GormContractRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter installment.ContractFilter) ([]installment.Contract, error) {
	var contractModels []models.ContractModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.ContractModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&contractModels).Error; err != nil {
		return nil, err
	}

	contracts := make([]installment.Contract, len(contractModels))
	for i, model := range contractModels {
		contracts[i] = *model.ToDomain()
	}
	return contracts, nil
}

// FindActive finds all active contracts across tenants (scheduled jobs)
func (r *GormContractRepository) FindActive(ctx context.Context) ([]installment.Contract, error) {
	var contractModels []models.ContractModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", installment.ContractStatusActive).
		Order("created_at ASC").
		Find(&contractModels).Error; err != nil {
		return nil, err
	}

	contracts := make([]installment.Contract, len(contractModels))
	for i, model := range contractModels {
		contracts[i] = *model.ToDomain()
	}
	return contracts, nil
}

// Save creates or updates a contract
func (r *GormContractRepository) Save(ctx context.Context, contract *installment.Contract) error {
	model := models.ContractModelFromDomain(contract)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves a contract with optimistic locking (version check)
// Returns error if the version has changed (concurrent modification)
func (r *GormContractRepository) SaveWithLock(ctx context.Context, contract *installment.Contract) error {
	model := models.ContractModelFromDomain(contract)
	result := r.db.WithContext(ctx).
		Model(model).
		Select("*").
		Where("id = ? AND version = ?", contract.ID, contract.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The contract has been modified by another transaction")
	}
	return nil
}

// RecordPayment persists the payment record and the mutated contract balance
// in one transaction. The contract row is locked FOR UPDATE and the version is
// checked, so at most one payment mutation per contract is in flight and a
// stale aggregate cannot overwrite a newer balance.
func (r *GormContractRepository) RecordPayment(ctx context.Context, contract *installment.Contract, payment *installment.Payment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.lockContractRow(tx, contract); err != nil {
			return err
		}

		paymentModel := models.PaymentModelFromDomain(payment)
		if err := tx.Create(paymentModel).Error; err != nil {
			return err
		}

		return r.updateLockedContract(tx, contract)
	})
}

// RecordAdjustment persists the adjustment record and the mutated contract
// balance in one transaction with the contract row locked.
func (r *GormContractRepository) RecordAdjustment(ctx context.Context, contract *installment.Contract, adjustment *installment.WeightAdjustment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.lockContractRow(tx, contract); err != nil {
			return err
		}

		adjustmentModel := models.WeightAdjustmentModelFromDomain(adjustment)
		if err := tx.Create(adjustmentModel).Error; err != nil {
			return err
		}

		return r.updateLockedContract(tx, contract)
	})
}

// PaymentsByContract returns a contract's payments in chronological order
func (r *GormContractRepository) PaymentsByContract(ctx context.Context, contractID uuid.UUID) ([]installment.Payment, error) {
	var paymentModels []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("payment_date ASC").
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}

	payments := make([]installment.Payment, len(paymentModels))
	for i, model := range paymentModels {
		payments[i] = *model.ToDomain()
	}
	return payments, nil
}

// AdjustmentsByContract returns a contract's adjustments in chronological order
func (r *GormContractRepository) AdjustmentsByContract(ctx context.Context, contractID uuid.UUID) ([]installment.WeightAdjustment, error) {
	var adjustmentModels []models.WeightAdjustmentModel
	if err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("adjustment_date ASC").
		Find(&adjustmentModels).Error; err != nil {
		return nil, err
	}

	adjustments := make([]installment.WeightAdjustment, len(adjustmentModels))
	for i, model := range adjustmentModels {
		adjustments[i] = *model.ToDomain()
	}
	return adjustments, nil
}

// lockContractRow acquires a FOR UPDATE lock on the contract row and verifies
// the aggregate was loaded at the current version.
func (r *GormContractRepository) lockContractRow(tx *gorm.DB, contract *installment.Contract) error {
	var current models.ContractModel
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&current, "id = ?", contract.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.ErrNotFound
		}
		return err
	}
	if current.Version != contract.Version-1 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The contract has been modified by another transaction")
	}
	return nil
}

// updateLockedContract writes the mutated aggregate state inside an open
// transaction that already holds the row lock.
func (r *GormContractRepository) updateLockedContract(tx *gorm.DB, contract *installment.Contract) error {
	model := models.ContractModelFromDomain(contract)
	result := tx.Model(model).
		Select("*").
		Where("id = ?", contract.ID).
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilter applies contract filter options to the query
func (r *GormContractRepository) applyFilter(query *gorm.DB, filter installment.ContractFilter) *gorm.DB {
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.GoldKarat != nil {
		query = query.Where("gold_karat = ?", *filter.GoldKarat)
	}
	if filter.HasProtection != nil {
		if *filter.HasProtection {
			query = query.Where("protection_ceiling IS NOT NULL OR protection_floor IS NOT NULL")
		} else {
			query = query.Where("protection_ceiling IS NULL AND protection_floor IS NULL")
		}
	}
	if filter.OverdueAsOf != nil {
		query = query.Where("status = ? AND next_due_date IS NOT NULL AND next_due_date < ?",
			installment.ContractStatusActive, *filter.OverdueAsOf)
	}
	if filter.FromDate != nil {
		query = query.Where("created_at >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("created_at <= ?", *filter.ToDate)
	}

	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("contract_number ILIKE ? OR customer_name ILIKE ?",
			searchPattern, searchPattern)
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, ContractSortFields, "created_at")
	orderDir := "DESC"
	if filter.OrderBy != "" {
		orderDir = ValidateSortOrder(filter.OrderDir)
	}
	query = query.Order(orderBy + " " + orderDir)

	return query
}

// Ensure GormContractRepository implements ContractRepository
var _ installment.ContractRepository = (*GormContractRepository)(nil)
