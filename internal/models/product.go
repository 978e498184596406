package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ExpectedProduct describes a product the verifier adds to the cart and the
// state the cart line should show afterwards.
type ExpectedProduct struct {
	// Category is the storefront category entry key (e.g. "miceImg"). When
	// empty the key is resolved from the catalog by product name.
	Category string  `toml:"category" validate:"omitempty,max=64"`
	Name     string  `toml:"name" validate:"required"`
	Quantity int     `toml:"quantity" validate:"gte=1"`
	Price    float64 `toml:"price" validate:"gte=0"`
	Color    string  `toml:"color"`
}

// Product validation errors
var (
	ErrInvalidProductName = errors.New("product name cannot be empty")
	ErrInvalidQuantity    = errors.New("product quantity must be at least 1")
	ErrInvalidPrice       = errors.New("product price cannot be negative")
)

var validate = validator.New()

// Validate checks the product against its field constraints
func (p ExpectedProduct) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("invalid product %q: %w", p.Name, err)
	}

	switch fieldErrs[0].Field() {
	case "Name":
		return ErrInvalidProductName
	case "Quantity":
		return fmt.Errorf("%w: %q has %d", ErrInvalidQuantity, p.Name, p.Quantity)
	case "Price":
		return fmt.Errorf("%w: %q has %.2f", ErrInvalidPrice, p.Name, p.Price)
	default:
		return fmt.Errorf("invalid product %q: %w", p.Name, err)
	}
}

// HasColor reports whether a color selection was requested
func (p ExpectedProduct) HasColor() bool {
	return strings.TrimSpace(p.Color) != ""
}

// LineTotal returns the amount the cart line for this product should show
func (p ExpectedProduct) LineTotal() float64 {
	return p.Price * float64(p.Quantity)
}

func (p ExpectedProduct) String() string {
	if p.HasColor() {
		return fmt.Sprintf("%s (%s) x%d", p.Name, strings.ToUpper(p.Color), p.Quantity)
	}
	return fmt.Sprintf("%s x%d", p.Name, p.Quantity)
}

// TotalQuantity sums the desired quantities of products
func TotalQuantity(products []ExpectedProduct) int {
	total := 0
	for _, p := range products {
		total += p.Quantity
	}
	return total
}

// TotalAmount sums the expected line totals of products
func TotalAmount(products []ExpectedProduct) float64 {
	total := 0.0
	for _, p := range products {
		total += p.LineTotal()
	}
	return total
}
