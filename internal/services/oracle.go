package services

import (
	"math"
	"strings"

	"github.com/themizzi/cartverify/internal/models"
)

// AmountTolerance is the largest currency difference still considered equal
const AmountTolerance = 0.01

// Oracle compares expected cart state with what the UI shows. Each check
// reports only its first mismatch.
type Oracle struct {
	tolerance float64
}

// NewOracle creates an oracle using AmountTolerance
func NewOracle() *Oracle {
	return &Oracle{tolerance: AmountTolerance}
}

// CheckLine verifies quantity, color (when one was requested) and line amount
func (o *Oracle) CheckLine(p models.ExpectedProduct, item models.CartLineItem) error {
	if item.Quantity != p.Quantity {
		return &MismatchError{Field: "quantity", Product: p.Name, Expected: p.Quantity, Actual: item.Quantity}
	}

	if p.HasColor() {
		want := strings.ToUpper(strings.TrimSpace(p.Color))
		got := strings.ToUpper(strings.TrimSpace(item.Color))
		if want != got {
			return &MismatchError{Field: "color", Product: p.Name, Expected: want, Actual: got}
		}
	}

	if want := p.LineTotal(); !o.amountsEqual(want, item.Amount) {
		return &MismatchError{Field: "amount", Product: p.Name, Expected: want, Actual: item.Amount}
	}
	return nil
}

// CheckTotalQuantity verifies the cart-wide item count
func (o *Oracle) CheckTotalQuantity(products []models.ExpectedProduct, summary models.CartSummary) error {
	if want := models.TotalQuantity(products); summary.TotalQuantity != want {
		return &MismatchError{Field: "cart total quantity", Expected: want, Actual: summary.TotalQuantity}
	}
	return nil
}

// CheckTotalAmount verifies the cart-wide amount
func (o *Oracle) CheckTotalAmount(products []models.ExpectedProduct, summary models.CartSummary) error {
	if want := models.TotalAmount(products); !o.amountsEqual(want, summary.TotalAmount) {
		return &MismatchError{Field: "cart total amount", Expected: want, Actual: summary.TotalAmount}
	}
	return nil
}

// amountsEqual allows for the float error of summing rendered cents
func (o *Oracle) amountsEqual(want, got float64) bool {
	return math.Abs(want-got) <= o.tolerance+1e-9
}
