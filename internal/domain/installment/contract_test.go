package installment

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zarnegar/backend/internal/domain/shared/valueobject"
)

func createTestContract(t *testing.T) *Contract {
	t.Helper()
	c, err := NewContract(
		uuid.New(),
		"GC-1404-0001",
		uuid.New(),
		"Maryam Hosseini",
		valueobject.NewGoldWeightFromFloat(10),
		18,
		ScheduleMonthly,
		decimal.NewFromInt(5),
	)
	require.NoError(t, err)
	return c
}

func TestNewContract(t *testing.T) {
	t.Run("creates active debt contract with full remaining weight", func(t *testing.T) {
		c := createTestContract(t)

		assert.Equal(t, ContractStatusActive, c.Status)
		assert.Equal(t, BalanceTypeDebt, c.BalanceType)
		assert.Equal(t, "10.000", c.RemainingGoldWeight.StringFixed())
		assert.True(t, c.TotalGoldWeightPaid.IsZero())
		assert.Nil(t, c.CompletionDate)
		assert.False(t, c.HasPriceProtection())
		assert.Len(t, c.GetDomainEvents(), 1)
	})

	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func() (*Contract, error)
		}{
			{"empty contract number", func() (*Contract, error) {
				return NewContract(uuid.New(), "", uuid.New(), "x", valueobject.NewGoldWeightFromFloat(1), 18, ScheduleMonthly, decimal.Zero)
			}},
			{"nil customer", func() (*Contract, error) {
				return NewContract(uuid.New(), "GC-1", uuid.Nil, "x", valueobject.NewGoldWeightFromFloat(1), 18, ScheduleMonthly, decimal.Zero)
			}},
			{"zero weight", func() (*Contract, error) {
				return NewContract(uuid.New(), "GC-1", uuid.New(), "x", valueobject.ZeroWeight(), 18, ScheduleMonthly, decimal.Zero)
			}},
			{"non-positive karat", func() (*Contract, error) {
				return NewContract(uuid.New(), "GC-1", uuid.New(), "x", valueobject.NewGoldWeightFromFloat(1), 0, ScheduleMonthly, decimal.Zero)
			}},
			{"invalid schedule", func() (*Contract, error) {
				return NewContract(uuid.New(), "GC-1", uuid.New(), "x", valueobject.NewGoldWeightFromFloat(1), 18, PaymentSchedule("YEARLY"), decimal.Zero)
			}},
			{"discount above 100", func() (*Contract, error) {
				return NewContract(uuid.New(), "GC-1", uuid.New(), "x", valueobject.NewGoldWeightFromFloat(1), 18, ScheduleMonthly, decimal.NewFromInt(101))
			}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := tt.mutate()
				assert.Error(t, err)
			})
		}
	})
}

func TestConfigureProtection(t *testing.T) {
	ceiling := valueobject.NewMoneyIRTFromInt(3000000)
	floor := valueobject.NewMoneyIRTFromInt(2000000)

	t.Run("ceiling only", func(t *testing.T) {
		c := createTestContract(t)
		require.NoError(t, c.ConfigureProtection(&ceiling, nil))
		assert.True(t, c.HasPriceProtection())
		assert.True(t, c.Protection.HasCeiling())
		assert.False(t, c.Protection.HasFloor())
	})

	t.Run("floor only", func(t *testing.T) {
		c := createTestContract(t)
		require.NoError(t, c.ConfigureProtection(nil, &floor))
		assert.True(t, c.Protection.HasFloor())
	})

	t.Run("both bounds with ceiling above floor", func(t *testing.T) {
		c := createTestContract(t)
		require.NoError(t, c.ConfigureProtection(&ceiling, &floor))
	})

	t.Run("rejects neither bound", func(t *testing.T) {
		c := createTestContract(t)
		err := c.ConfigureProtection(nil, nil)
		assert.ErrorIs(t, err, ErrPriceProtectionConfig)
		assert.False(t, c.HasPriceProtection())
	})

	t.Run("rejects floor at or above ceiling", func(t *testing.T) {
		c := createTestContract(t)
		err := c.ConfigureProtection(&floor, &ceiling)
		assert.ErrorIs(t, err, ErrPriceProtectionConfig)

		equal := valueobject.NewMoneyIRTFromInt(3000000)
		err = c.ConfigureProtection(&equal, &ceiling)
		assert.ErrorIs(t, err, ErrPriceProtectionConfig)
	})

	t.Run("remove protection", func(t *testing.T) {
		c := createTestContract(t)
		require.NoError(t, c.ConfigureProtection(&ceiling, nil))
		c.RemoveProtection()
		assert.False(t, c.HasPriceProtection())
	})
}

func TestRecordPayment(t *testing.T) {
	now := time.Date(2025, 8, 25, 10, 0, 0, 0, time.UTC)

	t.Run("partial payment burns weight and advances due date", func(t *testing.T) {
		c := createTestContract(t)
		completed, err := c.RecordPayment(valueobject.NewGoldWeightFromFloat(2), now)
		require.NoError(t, err)
		assert.False(t, completed)
		assert.Equal(t, "8.000", c.RemainingGoldWeight.StringFixed())
		assert.Equal(t, "2.000", c.TotalGoldWeightPaid.StringFixed())
		assert.Equal(t, ContractStatusActive, c.Status)
		require.NotNil(t, c.NextDueDate)
	})

	t.Run("exact payoff completes and stamps completion date once", func(t *testing.T) {
		c := createTestContract(t)
		completed, err := c.RecordPayment(valueobject.NewGoldWeightFromFloat(10), now)
		require.NoError(t, err)
		assert.True(t, completed)
		assert.Equal(t, ContractStatusCompleted, c.Status)
		assert.Equal(t, "0.000", c.RemainingGoldWeight.StringFixed())
		require.NotNil(t, c.CompletionDate)
		assert.Equal(t, now, *c.CompletionDate)
		assert.Nil(t, c.NextDueDate)
	})

	t.Run("overshoot clamps remaining to exactly zero", func(t *testing.T) {
		c := createTestContract(t)
		completed, err := c.RecordPayment(valueobject.NewGoldWeightFromFloat(10.5), now)
		require.NoError(t, err)
		assert.True(t, completed)
		assert.Equal(t, "0.000", c.RemainingGoldWeight.StringFixed())
		assert.Equal(t, "10.500", c.TotalGoldWeightPaid.StringFixed())
	})

	t.Run("residual at epsilon completes", func(t *testing.T) {
		c := createTestContract(t)
		completed, err := c.RecordPayment(valueobject.NewGoldWeightFromFloat(9.999), now)
		require.NoError(t, err)
		assert.True(t, completed)
		assert.Equal(t, "0.000", c.RemainingGoldWeight.StringFixed())
	})

	t.Run("residual just above epsilon stays active", func(t *testing.T) {
		c := createTestContract(t)
		completed, err := c.RecordPayment(valueobject.NewGoldWeightFromFloat(9.998), now)
		require.NoError(t, err)
		assert.False(t, completed)
		assert.Equal(t, "0.002", c.RemainingGoldWeight.StringFixed())
	})

	t.Run("suspended contract still accepts payments", func(t *testing.T) {
		c := createTestContract(t)
		require.NoError(t, c.Suspend())
		_, err := c.RecordPayment(valueobject.NewGoldWeightFromFloat(1), now)
		require.NoError(t, err)
	})

	t.Run("completed contract rejects payments", func(t *testing.T) {
		c := createTestContract(t)
		_, err := c.RecordPayment(valueobject.NewGoldWeightFromFloat(10), now)
		require.NoError(t, err)
		_, err = c.RecordPayment(valueobject.NewGoldWeightFromFloat(1), now)
		assert.ErrorIs(t, err, ErrInvalidContractState)
	})

	t.Run("non-positive weight rejected", func(t *testing.T) {
		c := createTestContract(t)
		_, err := c.RecordPayment(valueobject.ZeroWeight(), now)
		assert.Error(t, err)
	})
}

func TestApplyAdjustment(t *testing.T) {
	setRemaining := func(c *Contract, grams float64) {
		c.RemainingGoldWeight = valueobject.NewGoldWeightFromFloat(grams)
	}

	t.Run("debt on debt side adds weight", func(t *testing.T) {
		c := createTestContract(t)
		flipped, err := c.ApplyAdjustment(TransactionTypeDebt, valueobject.NewGoldWeightFromFloat(2))
		require.NoError(t, err)
		assert.False(t, flipped)
		assert.Equal(t, "12.000", c.RemainingGoldWeight.StringFixed())
		assert.Equal(t, BalanceTypeDebt, c.BalanceType)
	})

	t.Run("small credit subtracts without flipping", func(t *testing.T) {
		c := createTestContract(t)
		flipped, err := c.ApplyAdjustment(TransactionTypeCredit, valueobject.NewGoldWeightFromFloat(4))
		require.NoError(t, err)
		assert.False(t, flipped)
		assert.Equal(t, "6.000", c.RemainingGoldWeight.StringFixed())
		assert.Equal(t, BalanceTypeDebt, c.BalanceType)
	})

	t.Run("credit crossing zero flips to credit with overshoot", func(t *testing.T) {
		c := createTestContract(t)
		setRemaining(c, 3)
		flipped, err := c.ApplyAdjustment(TransactionTypeCredit, valueobject.NewGoldWeightFromFloat(5))
		require.NoError(t, err)
		assert.True(t, flipped)
		assert.Equal(t, BalanceTypeCredit, c.BalanceType)
		assert.Equal(t, "2.000", c.RemainingGoldWeight.StringFixed())
	})

	t.Run("credit equal to remaining flips with zero balance", func(t *testing.T) {
		c := createTestContract(t)
		setRemaining(c, 3)
		flipped, err := c.ApplyAdjustment(TransactionTypeCredit, valueobject.NewGoldWeightFromFloat(3))
		require.NoError(t, err)
		assert.True(t, flipped)
		assert.Equal(t, BalanceTypeCredit, c.BalanceType)
		assert.Equal(t, "0.000", c.RemainingGoldWeight.StringFixed())
	})

	t.Run("debt while in credit flips back symmetrically", func(t *testing.T) {
		c := createTestContract(t)
		setRemaining(c, 3)
		_, err := c.ApplyAdjustment(TransactionTypeCredit, valueobject.NewGoldWeightFromFloat(5))
		require.NoError(t, err)
		// now credit 2.000g
		flipped, err := c.ApplyAdjustment(TransactionTypeDebt, valueobject.NewGoldWeightFromFloat(6))
		require.NoError(t, err)
		assert.True(t, flipped)
		assert.Equal(t, BalanceTypeDebt, c.BalanceType)
		assert.Equal(t, "4.000", c.RemainingGoldWeight.StringFixed())
	})

	t.Run("credit on credit side accumulates", func(t *testing.T) {
		c := createTestContract(t)
		setRemaining(c, 1)
		_, err := c.ApplyAdjustment(TransactionTypeCredit, valueobject.NewGoldWeightFromFloat(2))
		require.NoError(t, err)
		// credit 1.000g
		flipped, err := c.ApplyAdjustment(TransactionTypeCredit, valueobject.NewGoldWeightFromFloat(2))
		require.NoError(t, err)
		assert.False(t, flipped)
		assert.Equal(t, BalanceTypeCredit, c.BalanceType)
		assert.Equal(t, "3.000", c.RemainingGoldWeight.StringFixed())
	})

	t.Run("invalid type rejected before mutation", func(t *testing.T) {
		c := createTestContract(t)
		before := c.RemainingGoldWeight
		_, err := c.ApplyAdjustment(TransactionType("REFUND"), valueobject.NewGoldWeightFromFloat(1))
		assert.ErrorIs(t, err, ErrInvalidTransactionType)
		assert.True(t, before.Equals(c.RemainingGoldWeight))
	})

	t.Run("terminal contract rejected", func(t *testing.T) {
		c := createTestContract(t)
		require.NoError(t, c.MarkDefaulted())
		_, err := c.ApplyAdjustment(TransactionTypeDebt, valueobject.NewGoldWeightFromFloat(1))
		assert.ErrorIs(t, err, ErrInvalidContractState)
	})
}

func TestLifecycleTransitions(t *testing.T) {
	c := createTestContract(t)

	require.NoError(t, c.Suspend())
	assert.Equal(t, ContractStatusSuspended, c.Status)
	assert.Error(t, c.Suspend())

	require.NoError(t, c.Resume())
	assert.Equal(t, ContractStatusActive, c.Status)

	require.NoError(t, c.MarkDefaulted())
	assert.Error(t, c.Resume())
	assert.Error(t, c.MarkDefaulted())
}

func TestOverdueAndNearCompletion(t *testing.T) {
	now := time.Date(2025, 8, 25, 12, 0, 0, 0, time.UTC)

	t.Run("overdue requires active status and past due date", func(t *testing.T) {
		c := createTestContract(t)
		assert.False(t, c.IsOverdue(now))

		c.ScheduleNextDue(now.Add(-48 * time.Hour))
		assert.True(t, c.IsOverdue(now))

		require.NoError(t, c.Suspend())
		assert.False(t, c.IsOverdue(now))
	})

	t.Run("near completion at ninety percent paid", func(t *testing.T) {
		c := createTestContract(t)
		assert.False(t, c.IsNearCompletion())

		_, err := c.RecordPayment(valueobject.NewGoldWeightFromFloat(9), now)
		require.NoError(t, err)
		assert.True(t, c.IsNearCompletion())
	})
}

func TestNewWeightAdjustmentRecord(t *testing.T) {
	contractID := uuid.New()
	actor := uuid.New()
	now := time.Now()

	t.Run("debt stores positive signed amount", func(t *testing.T) {
		adj, err := NewWeightAdjustment(uuid.New(), contractID, now,
			valueobject.NewGoldWeightFromFloat(10), TransactionTypeDebt,
			valueobject.NewGoldWeightFromFloat(2), "lost item", "", actor)
		require.NoError(t, err)
		assert.Equal(t, AdjustmentTypeIncrease, adj.Type)
		assert.Equal(t, "2.000", adj.SignedAmount.StringFixed())
	})

	t.Run("credit stores negative signed amount", func(t *testing.T) {
		adj, err := NewWeightAdjustment(uuid.New(), contractID, now,
			valueobject.NewGoldWeightFromFloat(10), TransactionTypeCredit,
			valueobject.NewGoldWeightFromFloat(2), "returned item", "", actor)
		require.NoError(t, err)
		assert.Equal(t, AdjustmentTypeDecrease, adj.Type)
		assert.Equal(t, "-2.000", adj.SignedAmount.StringFixed())
	})

	t.Run("validation", func(t *testing.T) {
		_, err := NewWeightAdjustment(uuid.New(), uuid.Nil, now,
			valueobject.ZeroWeight(), TransactionTypeDebt,
			valueobject.NewGoldWeightFromFloat(1), "r", "", actor)
		assert.Error(t, err)

		_, err = NewWeightAdjustment(uuid.New(), contractID, now,
			valueobject.ZeroWeight(), TransactionType("GIFT"),
			valueobject.NewGoldWeightFromFloat(1), "r", "", actor)
		assert.ErrorIs(t, err, ErrInvalidTransactionType)

		_, err = NewWeightAdjustment(uuid.New(), contractID, now,
			valueobject.ZeroWeight(), TransactionTypeDebt,
			valueobject.NewGoldWeightFromFloat(1), "", "", actor)
		assert.Error(t, err)

		_, err = NewWeightAdjustment(uuid.New(), contractID, now,
			valueobject.ZeroWeight(), TransactionTypeDebt,
			valueobject.NewGoldWeightFromFloat(1), "r", "", uuid.Nil)
		assert.Error(t, err)
	})
}
