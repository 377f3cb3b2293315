package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zarnegar/backend/internal/domain/installment"
	"github.com/zarnegar/backend/internal/domain/shared"
	"github.com/zarnegar/backend/internal/domain/shared/valueobject"
)

// ContractModel is the persistence model for the gold installment Contract aggregate.
// Price protection bounds are stored as nullable columns; both NULL means no
// protection is configured.
type ContractModel struct {
	TenantAggregateModel
	ContractNumber string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_contract_tenant_number,priority:2"`
	CustomerID     uuid.UUID `gorm:"type:uuid;not null;index"`
	CustomerName   string    `gorm:"type:varchar(200);not null"`
	CustomerPhone  string    `gorm:"type:varchar(50)"`

	InitialGoldWeight       decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	GoldKarat               int             `gorm:"not null"`
	Schedule                string          `gorm:"type:varchar(20);not null"`
	EarlyPaymentDiscountPct decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`

	RemainingGoldWeight decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	TotalGoldWeightPaid decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	BalanceType         string          `gorm:"type:varchar(10);not null;default:'DEBT'"`

	ProtectionCeiling *decimal.Decimal `gorm:"type:decimal(18,2)"`
	ProtectionFloor   *decimal.Decimal `gorm:"type:decimal(18,2)"`

	Status         string     `gorm:"type:varchar(20);not null;index"`
	NextDueDate    *time.Time `gorm:"index"`
	CompletionDate *time.Time
}

// TableName returns the table name for GORM
func (ContractModel) TableName() string {
	return "installment_contracts"
}

// ToDomain converts the persistence model to a domain Contract aggregate.
func (m *ContractModel) ToDomain() *installment.Contract {
	c := &installment.Contract{
		ContractNumber:          m.ContractNumber,
		CustomerID:              m.CustomerID,
		CustomerName:            m.CustomerName,
		CustomerPhone:           m.CustomerPhone,
		InitialGoldWeight:       valueobject.NewGoldWeight(m.InitialGoldWeight),
		GoldKarat:               m.GoldKarat,
		Schedule:                installment.PaymentSchedule(m.Schedule),
		EarlyPaymentDiscountPct: m.EarlyPaymentDiscountPct,
		RemainingGoldWeight:     valueobject.NewGoldWeight(m.RemainingGoldWeight),
		TotalGoldWeightPaid:     valueobject.NewGoldWeight(m.TotalGoldWeightPaid),
		BalanceType:             installment.BalanceType(m.BalanceType),
		Status:                  installment.ContractStatus(m.Status),
		NextDueDate:             m.NextDueDate,
		CompletionDate:          m.CompletionDate,
	}
	m.PopulateTenantAggregateRoot(&c.TenantAggregateRoot)

	if m.ProtectionCeiling != nil || m.ProtectionFloor != nil {
		protection := &installment.PriceProtection{}
		if m.ProtectionCeiling != nil {
			ceiling := valueobject.NewMoneyIRT(*m.ProtectionCeiling)
			protection.CeilingPerGram = &ceiling
		}
		if m.ProtectionFloor != nil {
			floor := valueobject.NewMoneyIRT(*m.ProtectionFloor)
			protection.FloorPerGram = &floor
		}
		c.Protection = protection
	}

	return c
}

// FromDomain populates the persistence model from a domain Contract aggregate.
func (m *ContractModel) FromDomain(c *installment.Contract) {
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	m.ContractNumber = c.ContractNumber
	m.CustomerID = c.CustomerID
	m.CustomerName = c.CustomerName
	m.CustomerPhone = c.CustomerPhone
	m.InitialGoldWeight = c.InitialGoldWeight.Grams()
	m.GoldKarat = c.GoldKarat
	m.Schedule = string(c.Schedule)
	m.EarlyPaymentDiscountPct = c.EarlyPaymentDiscountPct
	m.RemainingGoldWeight = c.RemainingGoldWeight.Grams()
	m.TotalGoldWeightPaid = c.TotalGoldWeightPaid.Grams()
	m.BalanceType = string(c.BalanceType)
	m.Status = string(c.Status)
	m.NextDueDate = c.NextDueDate
	m.CompletionDate = c.CompletionDate

	m.ProtectionCeiling = nil
	m.ProtectionFloor = nil
	if c.Protection != nil {
		if c.Protection.CeilingPerGram != nil {
			ceiling := c.Protection.CeilingPerGram.Amount()
			m.ProtectionCeiling = &ceiling
		}
		if c.Protection.FloorPerGram != nil {
			floor := c.Protection.FloorPerGram.Amount()
			m.ProtectionFloor = &floor
		}
	}
}

// ContractModelFromDomain creates a new persistence model from a domain Contract aggregate.
func ContractModelFromDomain(c *installment.Contract) *ContractModel {
	m := &ContractModel{}
	m.FromDomain(c)
	return m
}

// PaymentModel is the persistence model for the immutable Payment record.
type PaymentModel struct {
	BaseModel
	TenantID   uuid.UUID `gorm:"type:uuid;not null;index"`
	ContractID uuid.UUID `gorm:"type:uuid;not null;index:idx_payment_contract_date,priority:1"`

	PaymentDate    time.Time       `gorm:"not null;index:idx_payment_contract_date,priority:2"`
	AmountToman    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	MarketPrice    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	EffectivePrice decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	GoldWeight     decimal.Decimal `gorm:"type:decimal(12,3);not null"`

	Method string `gorm:"type:varchar(20);not null"`
	Type   string `gorm:"type:varchar(20);not null;default:'REGULAR'"`

	ProtectionApplied bool            `gorm:"not null;default:false"`
	DiscountApplied   bool            `gorm:"not null;default:false"`
	DiscountPct       decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	DiscountAmount    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`

	Notes string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "installment_payments"
}

// ToDomain converts the persistence model to a domain Payment record.
func (m *PaymentModel) ToDomain() *installment.Payment {
	return &installment.Payment{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		TenantID:          m.TenantID,
		ContractID:        m.ContractID,
		PaymentDate:       m.PaymentDate,
		AmountToman:       valueobject.NewMoneyIRT(m.AmountToman),
		MarketPrice:       valueobject.NewMoneyIRT(m.MarketPrice),
		EffectivePrice:    valueobject.NewMoneyIRT(m.EffectivePrice),
		GoldWeight:        valueobject.NewGoldWeight(m.GoldWeight),
		Method:            installment.PaymentMethod(m.Method),
		Type:              installment.PaymentType(m.Type),
		ProtectionApplied: m.ProtectionApplied,
		DiscountApplied:   m.DiscountApplied,
		DiscountPct:       m.DiscountPct,
		DiscountAmount:    valueobject.NewMoneyIRT(m.DiscountAmount),
		Notes:             m.Notes,
	}
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment record.
func PaymentModelFromDomain(p *installment.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomainBaseEntity(p.BaseEntity)
	m.TenantID = p.TenantID
	m.ContractID = p.ContractID
	m.PaymentDate = p.PaymentDate
	m.AmountToman = p.AmountToman.Amount()
	m.MarketPrice = p.MarketPrice.Amount()
	m.EffectivePrice = p.EffectivePrice.Amount()
	m.GoldWeight = p.GoldWeight.Grams()
	m.Method = string(p.Method)
	m.Type = string(p.Type)
	m.ProtectionApplied = p.ProtectionApplied
	m.DiscountApplied = p.DiscountApplied
	m.DiscountPct = p.DiscountPct
	m.DiscountAmount = p.DiscountAmount.Amount()
	m.Notes = p.Notes
	return m
}

// WeightAdjustmentModel is the persistence model for the immutable WeightAdjustment record.
type WeightAdjustmentModel struct {
	BaseModel
	TenantID   uuid.UUID `gorm:"type:uuid;not null;index"`
	ContractID uuid.UUID `gorm:"type:uuid;not null;index:idx_adjustment_contract_date,priority:1"`

	AdjustmentDate time.Time       `gorm:"not null;index:idx_adjustment_contract_date,priority:2"`
	WeightBefore   decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	SignedAmount   decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	Type           string          `gorm:"type:varchar(10);not null"`

	Reason       string    `gorm:"type:varchar(200);not null"`
	Description  string    `gorm:"type:text"`
	AuthorizedBy uuid.UUID `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (WeightAdjustmentModel) TableName() string {
	return "installment_weight_adjustments"
}

// ToDomain converts the persistence model to a domain WeightAdjustment record.
func (m *WeightAdjustmentModel) ToDomain() *installment.WeightAdjustment {
	return &installment.WeightAdjustment{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		TenantID:       m.TenantID,
		ContractID:     m.ContractID,
		AdjustmentDate: m.AdjustmentDate,
		WeightBefore:   valueobject.NewGoldWeight(m.WeightBefore),
		SignedAmount:   valueobject.NewGoldWeight(m.SignedAmount),
		Type:           installment.AdjustmentType(m.Type),
		Reason:         m.Reason,
		Description:    m.Description,
		AuthorizedBy:   m.AuthorizedBy,
	}
}

// WeightAdjustmentModelFromDomain creates a new persistence model from a domain WeightAdjustment record.
func WeightAdjustmentModelFromDomain(a *installment.WeightAdjustment) *WeightAdjustmentModel {
	m := &WeightAdjustmentModel{}
	m.FromDomainBaseEntity(a.BaseEntity)
	m.TenantID = a.TenantID
	m.ContractID = a.ContractID
	m.AdjustmentDate = a.AdjustmentDate
	m.WeightBefore = a.WeightBefore.Grams()
	m.SignedAmount = a.SignedAmount.Grams()
	m.Type = string(a.Type)
	m.Reason = a.Reason
	m.Description = a.Description
	m.AuthorizedBy = a.AuthorizedBy
	return m
}
