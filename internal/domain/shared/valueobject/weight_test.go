package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGoldWeight(t *testing.T) {
	t.Run("rounds to three decimals half-up", func(t *testing.T) {
		w := NewGoldWeight(decimal.NewFromFloat(2.0005))
		assert.Equal(t, "2.001", w.StringFixed())

		w = NewGoldWeight(decimal.NewFromFloat(2.0004))
		assert.Equal(t, "2.000", w.StringFixed())
	})

	t.Run("from string", func(t *testing.T) {
		w, err := NewGoldWeightFromString("10.000")
		require.NoError(t, err)
		assert.Equal(t, "10.000", w.StringFixed())

		_, err = NewGoldWeightFromString("heavy")
		assert.Error(t, err)
	})
}

func TestGoldWeightArithmetic(t *testing.T) {
	a := NewGoldWeightFromFloat(10)
	b := NewGoldWeightFromFloat(2)

	assert.Equal(t, "12.000", a.Add(b).StringFixed())
	assert.Equal(t, "8.000", a.Subtract(b).StringFixed())
	assert.Equal(t, "-2.000", b.Negate().StringFixed())
	assert.Equal(t, "2.000", b.Negate().Abs().StringFixed())
}

func TestWeightFromAmount(t *testing.T) {
	price := NewMoneyIRTFromInt(3500000)

	t.Run("exact division", func(t *testing.T) {
		w, err := WeightFromAmount(NewMoneyIRTFromInt(7000000), price)
		require.NoError(t, err)
		assert.Equal(t, "2.000", w.StringFixed())
	})

	t.Run("rounds half-up to three decimals", func(t *testing.T) {
		// 10,000,000 / 3,500,000 = 2.857142... -> 2.857
		w, err := WeightFromAmount(NewMoneyIRTFromInt(10000000), price)
		require.NoError(t, err)
		assert.Equal(t, "2.857", w.StringFixed())
	})

	t.Run("zero price rejected", func(t *testing.T) {
		_, err := WeightFromAmount(NewMoneyIRTFromInt(1000), ZeroIRT())
		assert.Error(t, err)
	})
}

func TestGoldWeightValueAt(t *testing.T) {
	w := NewGoldWeightFromFloat(4)
	price := NewMoneyIRTFromInt(3500000)
	assert.Equal(t, int64(14000000), w.ValueAt(price).Amount().IntPart())
}

func TestGoldWeightComparisons(t *testing.T) {
	a := NewGoldWeightFromFloat(3)
	b := NewGoldWeightFromFloat(5)

	assert.True(t, a.LessThan(b))
	assert.True(t, b.GreaterThan(a))
	assert.True(t, a.LessThanOrEqual(a))
	assert.True(t, b.GreaterThanOrEqual(b))
	assert.True(t, a.Equals(NewGoldWeightFromFloat(3)))
}

func TestGoldWeightJSON(t *testing.T) {
	w := NewGoldWeightFromFloat(3.8)
	data, err := json.Marshal(w)
	require.NoError(t, err)
	assert.Equal(t, `"3.800"`, string(data))

	var decoded GoldWeight
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, w.Equals(decoded))
}

func TestGoldWeightScan(t *testing.T) {
	var w GoldWeight
	require.NoError(t, w.Scan("8.000"))
	assert.Equal(t, "8.000", w.StringFixed())

	require.NoError(t, w.Scan(nil))
	assert.True(t, w.IsZero())

	assert.Error(t, w.Scan(3.14))
}
