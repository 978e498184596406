package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/phuslu/log"

	"github.com/themizzi/cartverify/internal/models"
	"github.com/themizzi/cartverify/internal/ui"
)

// AddProduct adds p to the cart: category, product, optional color, quantity,
// commit, and back to the home page. A product without a category mapping
// fails before anything is clicked.
func (s *CartService) AddProduct(ctx context.Context, p models.ExpectedProduct) error {
	if err := p.Validate(); err != nil {
		return &PreconditionError{Product: p.Name, Err: err}
	}
	category, err := s.catalog.Resolve(p)
	if err != nil {
		return &PreconditionError{Product: p.Name, Err: err}
	}

	log.Info().Str("product", p.Name).Str("category", category).Int("quantity", p.Quantity).Msg("adding product to cart")

	if err := s.waiter.Click(ctx, ui.Category(category)); err != nil {
		return &StepError{Step: "open category " + category, Product: p.Name, Err: err}
	}
	if err := s.waiter.Click(ctx, ui.ProductLink(p.Name)); err != nil {
		return &StepError{Step: "open product page", Product: p.Name, Err: err}
	}
	if p.HasColor() {
		if err := s.waiter.Click(ctx, ui.ColorSelector(p.Color)); err != nil {
			return &StepError{Step: "select color " + p.Color, Product: p.Name, Err: err}
		}
	}

	if _, err := s.setQuantity(ctx, p); err != nil {
		return err
	}

	before, err := s.badgeCount(ctx)
	if err != nil {
		return &StepError{Step: "read cart badge", Product: p.Name, Err: err}
	}
	if err := s.waiter.Click(ctx, ui.SaveToCart()); err != nil {
		return &StepError{Step: "add to cart", Product: p.Name, Err: err}
	}
	updated := func(ctx context.Context) (bool, error) {
		n, err := s.probeBadge(ctx)
		if err != nil {
			return false, err
		}
		return n != before, nil
	}
	if err := s.waiter.Until(ctx, "cart badge to change from "+strconv.Itoa(before), updated); err != nil {
		return &StepError{Step: "wait for cart update", Product: p.Name, Err: err}
	}

	if err := s.waiter.Click(ctx, ui.HomeLink()); err != nil {
		return &StepError{Step: "return home", Product: p.Name, Err: err}
	}
	if err := s.waiter.Visible(ctx, ui.ProductsLandmark()); err != nil {
		return &StepError{Step: "wait for home page", Product: p.Name, Err: err}
	}
	return nil
}

// setQuantity raises the quantity input to p.Quantity one increment at a time,
// waiting for each increment to show before the next. A value already at or
// above the target is left alone. It returns the final value.
func (s *CartService) setQuantity(ctx context.Context, p models.ExpectedProduct) (int, error) {
	input := ui.QuantityInput()
	if err := s.waiter.Visible(ctx, input); err != nil {
		return 0, &StepError{Step: "find quantity input", Product: p.Name, Err: err}
	}

	raw, err := s.readValue(ctx, input)
	if err != nil {
		return 0, &StepError{Step: "read quantity", Product: p.Name, Err: err}
	}
	current, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ParseError{Field: "quantity input", Product: p.Name, Raw: raw, Err: err}
	}

	for current < p.Quantity {
		next := current + 1
		if err := s.waiter.Click(ctx, ui.Increment()); err != nil {
			return current, &StepError{Step: fmt.Sprintf("increment quantity to %d", next), Product: p.Name, Err: err}
		}
		shows := ui.ValueEquals(s.driver, input, strconv.Itoa(next))
		if err := s.waiter.Until(ctx, fmt.Sprintf("quantity input to show %d", next), shows); err != nil {
			return current, &StepError{Step: fmt.Sprintf("increment quantity to %d", next), Product: p.Name, Err: err}
		}
		current = next
	}

	log.Debug().Str("product", p.Name).Int("quantity", current).Msg("quantity set")
	return current, nil
}
