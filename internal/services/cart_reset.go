package services

import (
	"context"
	"fmt"

	"github.com/phuslu/log"

	"github.com/themizzi/cartverify/internal/ui"
)

// RemoveResult is the outcome of one remove attempt during a reset
type RemoveResult int

const (
	// RemoveResultEmpty means there was nothing left to remove
	RemoveResultEmpty RemoveResult = iota
	// RemoveResultRemoved means one cart line was deleted
	RemoveResultRemoved
)

// ResetResult summarizes a cart reset
type ResetResult struct {
	Removed int
}

// Reset empties the cart. It opens the cart view, waits until either the cart
// container or the empty-cart marker shows, then deletes lines one at a time
// until no remove control is left. The whole reset is bounded by the
// service's reset deadline.
func (s *CartService) Reset(ctx context.Context) (ResetResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.resetDeadline)
	defer cancel()

	var result ResetResult

	if err := s.waiter.Click(ctx, ui.CartIcon()); err != nil {
		return result, &StepError{Step: "open cart", Err: err}
	}

	settled := ui.AnyOf(
		ui.Present(s.driver, ui.CartContainer()),
		ui.PageHasText(s.driver, ui.EmptyCartText),
	)
	if err := s.waiter.Until(ctx, "cart contents or empty cart marker", settled); err != nil {
		return result, &StepError{Step: "wait for cart", Err: err}
	}

	for {
		removed, err := s.removeOne(ctx)
		if err != nil {
			return result, &StepError{Step: fmt.Sprintf("remove cart line %d", result.Removed+1), Err: err}
		}
		if removed == RemoveResultEmpty {
			break
		}
		result.Removed++
	}

	log.Info().Int("removed", result.Removed).Msg("cart reset")
	return result, nil
}

// removeOne deletes a single cart line and waits for it to disappear
func (s *CartService) removeOne(ctx context.Context) (RemoveResult, error) {
	remove := ui.RemoveButton()

	before, err := s.readCount(ctx, remove)
	if err != nil {
		return RemoveResultEmpty, err
	}
	if before == 0 {
		return RemoveResultEmpty, nil
	}

	if err := s.waiter.Click(ctx, remove); err != nil {
		return RemoveResultEmpty, err
	}

	fewer := func(ctx context.Context) (bool, error) {
		n, err := s.driver.Count(ctx, remove)
		if err != nil {
			return false, err
		}
		return n < before, nil
	}
	if err := s.waiter.Until(ctx, fmt.Sprintf("fewer than %d remove controls", before), fewer); err != nil {
		return RemoveResultEmpty, err
	}

	log.Debug().Int("remaining", before-1).Msg("removed cart line")
	return RemoveResultRemoved, nil
}
