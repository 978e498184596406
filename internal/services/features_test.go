package services_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/cucumber/godog"

	"github.com/themizzi/cartverify/internal/catalog"
	"github.com/themizzi/cartverify/internal/models"
	"github.com/themizzi/cartverify/internal/services"
	"github.com/themizzi/cartverify/internal/ui"
	"github.com/themizzi/cartverify/internal/ui/uitest"
)

type cartTestContext struct {
	opts    uitest.Options
	seed    []uitest.Line
	store   *uitest.Storefront
	cart    *services.CartService
	added   []models.ExpectedProduct
	reset   services.ResetResult
	addErr  error
	callsAt int
}

func (c *cartTestContext) clear() {
	*c = cartTestContext{}
}

// service builds the storefront on first use so Given steps can tune it
func (c *cartTestContext) service() *services.CartService {
	if c.cart == nil {
		c.store = uitest.NewStorefront(uitest.DemoProducts(), c.opts)
		c.store.SeedCart(c.seed...)
		waiter := ui.NewWaiter(c.store, time.Second, time.Millisecond)
		c.cart = services.NewCartService(waiter, catalog.Default(), services.CartOptions{BaseURL: "http://storefront.test/"})
	}
	return c.cart
}

func (c *cartTestContext) aStorefrontSellingTheDemoProducts() error {
	c.opts = uitest.Options{IncrementLag: 2, CommitLag: 2, RemoveLag: 2, RowsLag: 2}
	return nil
}

func (c *cartTestContext) theQuantityInputStartsAt(n int) error {
	c.opts.InitialQuantity = n
	return nil
}

func (c *cartTestContext) theStorefrontTruncatesCartNamesAfter(n int) error {
	c.opts.TruncateNamesAt = n
	return nil
}

func (c *cartTestContext) theCartAlreadyHolds(qty int, name, color string) error {
	for _, p := range uitest.DemoProducts() {
		if p.Name == name {
			c.seed = append(c.seed, uitest.Line{Name: name, Color: color, Quantity: qty, UnitPrice: p.Price})
			return nil
		}
	}
	return fmt.Errorf("unknown demo product %q", name)
}

func (c *cartTestContext) iResetTheCart(ctx context.Context) error {
	cart := c.service()
	if err := cart.Open(ctx); err != nil {
		return err
	}
	res, err := cart.Reset(ctx)
	if err != nil {
		return err
	}
	c.reset = res
	return nil
}

func (c *cartTestContext) add(ctx context.Context, p models.ExpectedProduct) error {
	cart := c.service()
	c.callsAt = c.store.Calls()
	c.addErr = cart.AddProduct(ctx, p)
	if c.addErr == nil {
		c.added = append(c.added, p)
	}
	return nil
}

func (c *cartTestContext) iAddInColorAt(ctx context.Context, qty int, name, color string, price float64) error {
	return c.add(ctx, models.ExpectedProduct{Name: name, Quantity: qty, Price: price, Color: color})
}

func (c *cartTestContext) iAddAt(ctx context.Context, qty int, name string, price float64) error {
	return c.add(ctx, models.ExpectedProduct{Name: name, Quantity: qty, Price: price})
}

func (c *cartTestContext) linesWereRemoved(n int) error {
	if c.reset.Removed != n {
		return fmt.Errorf("expected %d lines removed, got %d", n, c.reset.Removed)
	}
	return nil
}

func (c *cartTestContext) theCartIsEmpty() error {
	if lines := c.store.Lines(); len(lines) != 0 {
		return fmt.Errorf("expected empty cart, got %v", lines)
	}
	return nil
}

func (c *cartTestContext) theIncrementControlWasClicked(n int) error {
	if err := c.addErr; err != nil {
		return fmt.Errorf("add failed: %w", err)
	}
	if got := c.store.Clicks(ui.KindIncrement); got != n {
		return fmt.Errorf("expected %d increments, got %d", n, got)
	}
	return nil
}

func (c *cartTestContext) expected(name string) (models.ExpectedProduct, error) {
	for _, p := range c.added {
		if p.Name == name {
			return p, nil
		}
	}
	return models.ExpectedProduct{}, fmt.Errorf("%q was not added", name)
}

func (c *cartTestContext) theCartLineShows(ctx context.Context, name string, qty int, color string, amount float64) error {
	if c.addErr != nil {
		return fmt.Errorf("add failed: %w", c.addErr)
	}
	p, err := c.expected(name)
	if err != nil {
		return err
	}
	item, err := c.cart.ReadLine(ctx, p)
	if err != nil {
		return err
	}
	if item.Quantity != qty || item.Color != color || math.Abs(item.Amount-amount) > services.AmountTolerance+1e-9 {
		return fmt.Errorf("expected %d %s %.2f, got %+v", qty, color, amount, item)
	}
	return services.NewOracle().CheckLine(p, item)
}

func (c *cartTestContext) theCartTotalQuantityIs(ctx context.Context, n int) error {
	summary, err := c.cart.ReadSummary(ctx)
	if err != nil {
		return err
	}
	if summary.TotalQuantity != n {
		return fmt.Errorf("expected total quantity %d, got %d", n, summary.TotalQuantity)
	}
	return services.NewOracle().CheckTotalQuantity(c.added, summary)
}

func (c *cartTestContext) theCartTotalAmountIs(ctx context.Context, amount float64) error {
	summary, err := c.cart.ReadSummary(ctx)
	if err != nil {
		return err
	}
	if math.Abs(summary.TotalAmount-amount) > services.AmountTolerance+1e-9 {
		return fmt.Errorf("expected total amount %.2f, got %.2f", amount, summary.TotalAmount)
	}
	return services.NewOracle().CheckTotalAmount(c.added, summary)
}

func (c *cartTestContext) isNotFoundInTheCart(ctx context.Context, name string) error {
	_, err := c.cart.ReadLine(ctx, models.ExpectedProduct{Name: name, Quantity: 1})
	var notFound *services.NotFoundInCartError
	if !errors.As(err, &notFound) {
		return fmt.Errorf("expected not found in cart, got %v", err)
	}
	return nil
}

func (c *cartTestContext) addingFailedWithAMissingCategoryMapping() error {
	var pre *services.PreconditionError
	if !errors.As(c.addErr, &pre) || !errors.Is(c.addErr, catalog.ErrCategoryNotFound) {
		return fmt.Errorf("expected missing category precondition, got %v", c.addErr)
	}
	return nil
}

func (c *cartTestContext) noUIInteractionHappened() error {
	if got := c.store.Calls(); got != c.callsAt {
		return fmt.Errorf("expected no driver calls, got %d", got-c.callsAt)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &cartTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.clear()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^a storefront selling the demo products$`, tc.aStorefrontSellingTheDemoProducts)
	ctx.Step(`^the quantity input starts at (\d+)$`, tc.theQuantityInputStartsAt)
	ctx.Step(`^the storefront truncates cart names after (\d+) characters$`, tc.theStorefrontTruncatesCartNamesAfter)
	ctx.Step(`^the cart already holds (\d+) "([^"]*)" in "([^"]*)"$`, tc.theCartAlreadyHolds)

	// When steps
	ctx.Step(`^I reset the cart$`, tc.iResetTheCart)
	ctx.Step(`^I add (\d+) "([^"]*)" in "([^"]*)" at (\d+\.\d+)$`, tc.iAddInColorAt)
	ctx.Step(`^I add (\d+) "([^"]*)" at (\d+\.\d+)$`, tc.iAddAt)

	// Then steps
	ctx.Step(`^(\d+) lines were removed$`, tc.linesWereRemoved)
	ctx.Step(`^the cart is empty$`, tc.theCartIsEmpty)
	ctx.Step(`^the increment control was clicked (\d+) times$`, tc.theIncrementControlWasClicked)
	ctx.Step(`^the cart line for "([^"]*)" shows quantity (\d+), color "([^"]*)" and amount (\d+\.\d+)$`, tc.theCartLineShows)
	ctx.Step(`^the cart total quantity is (\d+)$`, tc.theCartTotalQuantityIs)
	ctx.Step(`^the cart total amount is (\d+\.\d+)$`, tc.theCartTotalAmountIs)
	ctx.Step(`^"([^"]*)" is not found in the cart$`, tc.isNotFoundInTheCart)
	ctx.Step(`^adding failed with a missing category mapping$`, tc.addingFailedWithAMissingCategoryMapping)
	ctx.Step(`^no UI interaction happened$`, tc.noUIInteractionHappened)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"../../features/cart_verification.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
