package services

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/phuslu/log"

	"github.com/themizzi/cartverify/internal/models"
	"github.com/themizzi/cartverify/internal/ui"
)

// quantityLabelPrefix precedes the quantity in a cart row
const quantityLabelPrefix = "QTY:"

// ReadLine opens the cart and extracts the first row whose name matches p.
// Rows with an empty name are render artifacts and are skipped.
func (s *CartService) ReadLine(ctx context.Context, p models.ExpectedProduct) (models.CartLineItem, error) {
	var item models.CartLineItem

	if err := s.waiter.Click(ctx, ui.CartIcon()); err != nil {
		return item, &StepError{Step: "open cart", Product: p.Name, Err: err}
	}
	if err := s.waiter.Until(ctx, "at least one cart row", ui.Present(s.driver, ui.CartRows())); err != nil {
		return item, &StepError{Step: "wait for cart rows", Product: p.Name, Err: err}
	}

	rows, err := s.readCount(ctx, ui.CartRows())
	if err != nil {
		return item, &StepError{Step: "count cart rows", Product: p.Name, Err: err}
	}
	log.Debug().Str("product", p.Name).Int("rows", rows).Msg("scanning cart rows")

	for row := 1; row <= rows; row++ {
		name, err := s.readText(ctx, ui.RowName(row))
		if err != nil {
			return item, &StepError{Step: "read cart row name", Product: p.Name, Err: err}
		}
		if name == "" || !models.MatchesName(name, p.Name) {
			continue
		}
		return s.readRow(ctx, row, name, p.Name)
	}

	return item, &NotFoundInCartError{Product: p.Name, Rows: rows}
}

func (s *CartService) readRow(ctx context.Context, row int, name, product string) (models.CartLineItem, error) {
	item := models.CartLineItem{Name: name}

	qtyText, err := s.readText(ctx, ui.RowQuantity(row))
	if err != nil {
		return item, &StepError{Step: "read cart row quantity", Product: product, Err: err}
	}
	item.Quantity, err = parseQuantityLabel(qtyText)
	if err != nil {
		return item, &ParseError{Field: "cart quantity", Product: product, Raw: qtyText, Err: err}
	}

	color, err := s.readText(ctx, ui.RowColor(row))
	if err != nil {
		return item, &StepError{Step: "read cart row color", Product: product, Err: err}
	}
	item.Color = strings.ToUpper(color)

	priceText, err := s.readText(ctx, ui.RowPrice(row))
	if err != nil {
		return item, &StepError{Step: "read cart row price", Product: product, Err: err}
	}
	item.Amount, err = models.ParseAmount(priceText)
	if err != nil {
		return item, &ParseError{Field: "cart line amount", Product: product, Raw: priceText, Err: err}
	}

	return item, nil
}

// ReadSummary opens the cart and reads the cart-wide quantity and total
func (s *CartService) ReadSummary(ctx context.Context) (models.CartSummary, error) {
	var summary models.CartSummary

	if err := s.waiter.Click(ctx, ui.CartIcon()); err != nil {
		return summary, &StepError{Step: "open cart", Err: err}
	}

	if err := s.waiter.Visible(ctx, ui.CartBadge()); err != nil {
		return summary, &StepError{Step: "find cart quantity badge", Err: err}
	}
	badge, err := s.readText(ctx, ui.CartBadge())
	if err != nil {
		return summary, &StepError{Step: "read cart quantity badge", Err: err}
	}
	digits := digitsOnly(badge)
	if digits == "" {
		return summary, &ParseError{Field: "cart total quantity", Raw: badge, Err: errors.New("no digits")}
	}
	summary.TotalQuantity, err = strconv.Atoi(digits)
	if err != nil {
		return summary, &ParseError{Field: "cart total quantity", Raw: badge, Err: err}
	}

	if err := s.waiter.Visible(ctx, ui.CartTotal()); err != nil {
		return summary, &StepError{Step: "find cart total", Err: err}
	}
	total, err := s.readText(ctx, ui.CartTotal())
	if err != nil {
		return summary, &StepError{Step: "read cart total", Err: err}
	}
	summary.TotalAmount, err = models.ParseAmount(total)
	if err != nil {
		return summary, &ParseError{Field: "cart total amount", Raw: total, Err: err}
	}

	return summary, nil
}

func parseQuantityLabel(text string) (int, error) {
	raw := strings.TrimSpace(strings.Replace(text, quantityLabelPrefix, "", 1))
	return strconv.Atoi(raw)
}
