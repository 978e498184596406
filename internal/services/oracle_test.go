package services

import (
	"errors"
	"testing"

	"github.com/themizzi/cartverify/internal/models"
)

func TestOracle_CheckLine(t *testing.T) {
	tests := []struct {
		name      string
		product   models.ExpectedProduct
		item      models.CartLineItem
		wantField string
	}{
		{
			name:    "exact match",
			product: mouse,
			item:    models.CartLineItem{Name: mouse.Name, Quantity: 2, Color: "BLACK", Amount: 101.98},
		},
		{
			name:    "amount within tolerance",
			product: mouse,
			item:    models.CartLineItem{Quantity: 2, Color: "BLACK", Amount: 101.99},
		},
		{
			name:    "color compared case-insensitively",
			product: models.ExpectedProduct{Name: mouse.Name, Quantity: 2, Price: 50.99, Color: "black"},
			item:    models.CartLineItem{Quantity: 2, Color: "BLACK", Amount: 101.98},
		},
		{
			name:    "color ignored when not requested",
			product: elite,
			item:    models.CartLineItem{Quantity: 1, Color: "GRAY", Amount: 1279.00},
		},
		{
			name:      "quantity mismatch",
			product:   mouse,
			item:      models.CartLineItem{Quantity: 1, Color: "BLACK", Amount: 50.99},
			wantField: "quantity",
		},
		{
			name:      "color mismatch",
			product:   mouse,
			item:      models.CartLineItem{Quantity: 2, Color: "RED", Amount: 101.98},
			wantField: "color",
		},
		{
			name:      "amount outside tolerance",
			product:   mouse,
			item:      models.CartLineItem{Quantity: 2, Color: "BLACK", Amount: 102.00},
			wantField: "amount",
		},
		{
			name:      "quantity is reported before amount",
			product:   mouse,
			item:      models.CartLineItem{Quantity: 3, Color: "RED", Amount: 0},
			wantField: "quantity",
		},
	}

	oracle := NewOracle()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := oracle.CheckLine(tt.product, tt.item)

			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				return
			}

			var mismatch *MismatchError
			if !errors.As(err, &mismatch) {
				t.Fatalf("Expected MismatchError, got %v", err)
			}
			if mismatch.Field != tt.wantField {
				t.Errorf("Expected field %s, got %s", tt.wantField, mismatch.Field)
			}
			if mismatch.Product != tt.product.Name {
				t.Errorf("Expected product %s, got %s", tt.product.Name, mismatch.Product)
			}
			if !errors.Is(err, ErrMismatch) {
				t.Error("Expected error to match ErrMismatch")
			}
		})
	}
}

func TestOracle_CheckTotals(t *testing.T) {
	products := []models.ExpectedProduct{zbook, mouse, elite}
	oracle := NewOracle()

	// GIVEN the cart shows the expected totals
	summary := models.CartSummary{TotalQuantity: 4, TotalAmount: 3179.98}

	// THEN both checks pass
	if err := oracle.CheckTotalQuantity(products, summary); err != nil {
		t.Errorf("Expected quantity check to pass, got %v", err)
	}
	if err := oracle.CheckTotalAmount(products, summary); err != nil {
		t.Errorf("Expected amount check to pass, got %v", err)
	}

	// GIVEN one unit too few
	short := models.CartSummary{TotalQuantity: 3, TotalAmount: 3129.00}

	// THEN each check reports its own field
	err := oracle.CheckTotalQuantity(products, short)
	want := "cart total quantity mismatch, expected: 4, actual: 3"
	if err == nil || err.Error() != want {
		t.Errorf("Expected %q, got %v", want, err)
	}
	err = oracle.CheckTotalAmount(products, short)
	want = "cart total amount mismatch, expected: 3179.98, actual: 3129.00"
	if err == nil || err.Error() != want {
		t.Errorf("Expected %q, got %v", want, err)
	}
}

func TestMismatchError_Message(t *testing.T) {
	err := NewOracle().CheckLine(mouse, models.CartLineItem{Quantity: 2, Color: "WHITE", Amount: 101.98})

	want := `product HP Z8000 Bluetooth Mouse color mismatch, expected: "BLACK", actual: "WHITE"`
	if err == nil || err.Error() != want {
		t.Errorf("Expected %q, got %v", want, err)
	}
}
