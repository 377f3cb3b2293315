package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// WeightScale is the number of decimal places carried by gold weights.
// All weight arithmetic rounds half-up to this scale.
const WeightScale int32 = 3

// GoldWeight is a value object representing a gold weight in grams.
// It is immutable - all operations return new GoldWeight instances.
// Weights are always kept at 3 decimal places, rounded half-up.
type GoldWeight struct {
	grams decimal.Decimal
}

// NewGoldWeight creates a GoldWeight from a decimal gram value
func NewGoldWeight(grams decimal.Decimal) GoldWeight {
	return GoldWeight{grams: grams.Round(WeightScale)}
}

// NewGoldWeightFromString creates a GoldWeight from a string gram value
func NewGoldWeightFromString(grams string) (GoldWeight, error) {
	d, err := decimal.NewFromString(grams)
	if err != nil {
		return GoldWeight{}, fmt.Errorf("invalid weight string: %w", err)
	}
	return NewGoldWeight(d), nil
}

// NewGoldWeightFromFloat creates a GoldWeight from a float64 gram value
func NewGoldWeightFromFloat(grams float64) GoldWeight {
	return NewGoldWeight(decimal.NewFromFloat(grams))
}

// ZeroWeight returns a zero GoldWeight
func ZeroWeight() GoldWeight {
	return GoldWeight{grams: decimal.Zero}
}

// Grams returns the decimal gram value
func (w GoldWeight) Grams() decimal.Decimal {
	return w.grams
}

// IsZero returns true if the weight is zero
func (w GoldWeight) IsZero() bool {
	return w.grams.IsZero()
}

// IsPositive returns true if the weight is positive
func (w GoldWeight) IsPositive() bool {
	return w.grams.IsPositive()
}

// IsNegative returns true if the weight is negative
func (w GoldWeight) IsNegative() bool {
	return w.grams.IsNegative()
}

// Add returns a new GoldWeight with the sum of both weights
func (w GoldWeight) Add(other GoldWeight) GoldWeight {
	return GoldWeight{grams: w.grams.Add(other.grams).Round(WeightScale)}
}

// Subtract returns a new GoldWeight with the difference
func (w GoldWeight) Subtract(other GoldWeight) GoldWeight {
	return GoldWeight{grams: w.grams.Sub(other.grams).Round(WeightScale)}
}

// Negate returns a new GoldWeight with the sign reversed
func (w GoldWeight) Negate() GoldWeight {
	return GoldWeight{grams: w.grams.Neg()}
}

// Abs returns a new GoldWeight with the absolute value
func (w GoldWeight) Abs() GoldWeight {
	return GoldWeight{grams: w.grams.Abs()}
}

// ValueAt returns the monetary value of this weight at the given per-gram price
func (w GoldWeight) ValueAt(pricePerGram Money) Money {
	return pricePerGram.Multiply(w.grams)
}

// WeightFromAmount converts a monetary amount into its gold weight equivalent
// at the given per-gram price, rounded half-up to 3 decimals.
// Returns error if the price is zero.
func WeightFromAmount(amount Money, pricePerGram Money) (GoldWeight, error) {
	if pricePerGram.Amount().IsZero() {
		return GoldWeight{}, errors.New("price per gram cannot be zero")
	}
	return NewGoldWeight(amount.Amount().Div(pricePerGram.Amount())), nil
}

// Equals returns true if both weights are equal
func (w GoldWeight) Equals(other GoldWeight) bool {
	return w.grams.Equal(other.grams)
}

// LessThan returns true if this weight is less than the other
func (w GoldWeight) LessThan(other GoldWeight) bool {
	return w.grams.LessThan(other.grams)
}

// LessThanOrEqual returns true if this weight is at most the other
func (w GoldWeight) LessThanOrEqual(other GoldWeight) bool {
	return w.grams.LessThanOrEqual(other.grams)
}

// GreaterThan returns true if this weight is greater than the other
func (w GoldWeight) GreaterThan(other GoldWeight) bool {
	return w.grams.GreaterThan(other.grams)
}

// GreaterThanOrEqual returns true if this weight is at least the other
func (w GoldWeight) GreaterThanOrEqual(other GoldWeight) bool {
	return w.grams.GreaterThanOrEqual(other.grams)
}

// String returns the weight formatted with 3 decimal places and a gram suffix
func (w GoldWeight) String() string {
	return w.grams.StringFixed(WeightScale) + "g"
}

// StringFixed returns the gram value with 3 fixed decimal places
func (w GoldWeight) StringFixed() string {
	return w.grams.StringFixed(WeightScale)
}

// Float64 returns the gram value as a float64 (may lose precision)
func (w GoldWeight) Float64() float64 {
	f, _ := w.grams.Float64()
	return f
}

// MarshalJSON implements json.Marshaler
func (w GoldWeight) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.grams.StringFixed(WeightScale))
}

// UnmarshalJSON implements json.Unmarshaler
func (w *GoldWeight) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid weight: %w", err)
	}
	w.grams = d.Round(WeightScale)
	return nil
}

// Value implements driver.Valuer for database storage
func (w GoldWeight) Value() (driver.Value, error) {
	return w.grams.String(), nil
}

// Scan implements sql.Scanner for database retrieval
func (w *GoldWeight) Scan(value any) error {
	if value == nil {
		w.grams = decimal.Zero
		return nil
	}

	var strVal string
	switch v := value.(type) {
	case string:
		strVal = v
	case []byte:
		strVal = string(v)
	default:
		return fmt.Errorf("cannot scan %T into GoldWeight", value)
	}

	grams, err := decimal.NewFromString(strVal)
	if err != nil {
		return fmt.Errorf("invalid decimal value: %w", err)
	}
	w.grams = grams
	return nil
}
