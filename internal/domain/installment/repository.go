package installment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/zarnegar/backend/internal/domain/shared"
)

// ContractFilter defines filtering options for contract queries
type ContractFilter struct {
	shared.Filter
	CustomerID    *uuid.UUID      // filter by customer
	Status        *ContractStatus // filter by status
	GoldKarat     *int            // filter by purity
	HasProtection *bool           // filter by protection configured
	OverdueAsOf   *time.Time      // only contracts overdue at this instant
	FromDate      *time.Time      // creation date range start
	ToDate        *time.Time      // creation date range end
}

// ContractRepository defines persistence for the contract aggregate and its
// immutable child records.
//
// RecordPayment and RecordAdjustment are the atomic write paths: the child
// record and the mutated contract balance succeed or fail together, and the
// contract row is locked for the duration so at most one payment mutation is
// in flight per contract.
type ContractRepository interface {
	// FindByID finds a contract by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Contract, error)

	// FindByIDForTenant finds a contract by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Contract, error)

	// FindByContractNumber finds by contract number for a tenant
	FindByContractNumber(ctx context.Context, tenantID uuid.UUID, contractNumber string) (*Contract, error)

	// FindAllForTenant finds all contracts for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ContractFilter) ([]Contract, error)

	// FindActive finds all active contracts across tenants (scheduled jobs)
	FindActive(ctx context.Context) ([]Contract, error)

	// Save creates or updates a contract
	Save(ctx context.Context, contract *Contract) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, contract *Contract) error

	// RecordPayment persists the payment and the mutated contract in one
	// transaction with the contract row locked
	RecordPayment(ctx context.Context, contract *Contract, payment *Payment) error

	// RecordAdjustment persists the adjustment and the mutated contract in
	// one transaction with the contract row locked
	RecordAdjustment(ctx context.Context, contract *Contract, adjustment *WeightAdjustment) error

	// PaymentsByContract returns a contract's payments in chronological order
	PaymentsByContract(ctx context.Context, contractID uuid.UUID) ([]Payment, error)

	// AdjustmentsByContract returns a contract's adjustments in chronological order
	AdjustmentsByContract(ctx context.Context, contractID uuid.UUID) ([]WeightAdjustment, error)
}

// ReminderSender delivers overdue-installment reminders. Delivery is
// fire-and-forget from the engine's perspective; failures are reported per
// contract and never abort a sweep.
type ReminderSender interface {
	SendReminder(ctx context.Context, contract *Contract) error
}
