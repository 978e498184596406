package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/themizzi/cartverify/internal/catalog"
	"github.com/themizzi/cartverify/internal/ui"
)

// DefaultResetDeadline bounds a whole cart reset
const DefaultResetDeadline = 2 * time.Minute

// CartOptions configures a CartService
type CartOptions struct {
	// BaseURL is the storefront home page opened by Open
	BaseURL string
	// ResetDeadline caps the total time Reset may take
	ResetDeadline time.Duration
}

// CartService drives the storefront cart through a ui.Driver
type CartService struct {
	driver        ui.Driver
	waiter        *ui.Waiter
	catalog       *catalog.Catalog
	baseURL       string
	resetDeadline time.Duration
}

// NewCartService creates a cart service polling through waiter
func NewCartService(waiter *ui.Waiter, cat *catalog.Catalog, opts CartOptions) *CartService {
	if opts.ResetDeadline <= 0 {
		opts.ResetDeadline = DefaultResetDeadline
	}
	return &CartService{
		driver:        waiter.Driver(),
		waiter:        waiter,
		catalog:       cat,
		baseURL:       opts.BaseURL,
		resetDeadline: opts.ResetDeadline,
	}
}

// Open loads the storefront home page and waits for it to be ready
func (s *CartService) Open(ctx context.Context) error {
	if err := s.driver.Navigate(ctx, s.baseURL); err != nil {
		return &StepError{Step: "open " + s.baseURL, Err: err}
	}
	if err := s.waiter.Visible(ctx, ui.ProductsLandmark()); err != nil {
		return &StepError{Step: "wait for home page", Err: err}
	}
	return nil
}

// GoHome clicks HOME and waits for the home page landmark
func (s *CartService) GoHome(ctx context.Context) error {
	if err := s.waiter.Click(ctx, ui.HomeLink()); err != nil {
		return &StepError{Step: "go home", Err: err}
	}
	if err := s.waiter.Visible(ctx, ui.ProductsLandmark()); err != nil {
		return &StepError{Step: "wait for home page", Err: err}
	}
	return nil
}

// readText reads the text at loc, retrying while the element is not ready
func (s *CartService) readText(ctx context.Context, loc ui.Locator) (string, error) {
	var text string
	err := s.waiter.Until(ctx, loc.String()+" to be readable", func(ctx context.Context) (bool, error) {
		t, err := s.driver.Text(ctx, loc)
		if err != nil {
			return false, err
		}
		text = strings.TrimSpace(t)
		return true, nil
	})
	return text, err
}

// readValue reads the value of the input at loc
func (s *CartService) readValue(ctx context.Context, loc ui.Locator) (string, error) {
	var value string
	err := s.waiter.Until(ctx, loc.String()+" value to be readable", func(ctx context.Context) (bool, error) {
		v, err := s.driver.Value(ctx, loc)
		if err != nil {
			return false, err
		}
		value = strings.TrimSpace(v)
		return true, nil
	})
	return value, err
}

// readCount counts matches of loc, retrying transient failures
func (s *CartService) readCount(ctx context.Context, loc ui.Locator) (int, error) {
	var count int
	err := s.waiter.Until(ctx, loc.String()+" to be counted", func(ctx context.Context) (bool, error) {
		n, err := s.driver.Count(ctx, loc)
		if err != nil {
			return false, err
		}
		count = n
		return true, nil
	})
	return count, err
}

// badgeCount reads the cart badge, retrying while it is not ready
func (s *CartService) badgeCount(ctx context.Context) (int, error) {
	var count int
	err := s.waiter.Until(ctx, "cart badge to be readable", func(ctx context.Context) (bool, error) {
		n, err := s.probeBadge(ctx)
		if err != nil {
			return false, err
		}
		count = n
		return true, nil
	})
	return count, err
}

// probeBadge reads the cart badge once. A missing or empty badge is zero.
func (s *CartService) probeBadge(ctx context.Context) (int, error) {
	n, err := s.driver.Count(ctx, ui.CartBadge())
	if err != nil || n == 0 {
		return 0, err
	}

	text, err := s.driver.Text(ctx, ui.CartBadge())
	if err != nil {
		return 0, err
	}
	digits := digitsOnly(text)
	if digits == "" {
		return 0, nil
	}
	return strconv.Atoi(digits)
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
