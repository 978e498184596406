// Package pwdriver implements ui.Session on top of playwright-go.
package pwdriver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/themizzi/cartverify/internal/ui"
)

// Options configures a Playwright session. ActionTimeout caps a single click
// or read.
type Options struct {
	Headless      bool
	SlowMo        time.Duration
	Width         int
	Height        int
	ActionTimeout time.Duration
}

// Driver is a Chromium page driven by Playwright
type Driver struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
	timeout time.Duration
}

// Launch starts Playwright, a Chromium browser and a single page
func Launch(opts Options) (*Driver, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		SlowMo:   playwright.Float(float64(opts.SlowMo.Milliseconds())),
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("could not launch browser: %w", err)
	}

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  opts.Width,
			Height: opts.Height,
		},
	})
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("could not create context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		bctx.Close()
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("could not create page: %w", err)
	}

	timeout := opts.ActionTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	page.SetDefaultTimeout(float64(timeout.Milliseconds()))

	return &Driver{pw: pw, browser: browser, context: bctx, page: page, timeout: timeout}, nil
}

// Close releases the page, browser and Playwright driver
func (d *Driver) Close() error {
	var errs []error
	if err := d.page.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := d.context.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := d.browser.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := d.pw.Stop(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Navigate implements ui.Driver
func (d *Driver) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := d.page.Goto(url, playwright.PageGotoOptions{
		Timeout:   d.budget(ctx),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	if err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nil
}

// Count implements ui.Driver
func (d *Driver) Count(ctx context.Context, loc ui.Locator) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n, err := d.locate(loc).Count()
	return n, translate(err)
}

// Visible implements ui.Driver
func (d *Driver) Visible(ctx context.Context, loc ui.Locator) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	ok, err := d.locate(loc).First().IsVisible()
	return ok, translate(err)
}

// Clickable implements ui.Driver
func (d *Driver) Clickable(ctx context.Context, loc ui.Locator) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	first := d.locate(loc).First()
	n, err := d.locate(loc).Count()
	if err != nil || n == 0 {
		return false, translate(err)
	}
	visible, err := first.IsVisible()
	if err != nil || !visible {
		return false, translate(err)
	}
	enabled, err := first.IsEnabled(playwright.LocatorIsEnabledOptions{Timeout: d.budget(ctx)})
	return enabled, translate(err)
}

// Text implements ui.Driver
func (d *Driver) Text(ctx context.Context, loc ui.Locator) (string, error) {
	if err := d.present(ctx, loc); err != nil {
		return "", err
	}
	text, err := d.locate(loc).First().InnerText(playwright.LocatorInnerTextOptions{Timeout: d.budget(ctx)})
	return text, translate(err)
}

// Value implements ui.Driver
func (d *Driver) Value(ctx context.Context, loc ui.Locator) (string, error) {
	if err := d.present(ctx, loc); err != nil {
		return "", err
	}
	value, err := d.locate(loc).First().InputValue(playwright.LocatorInputValueOptions{Timeout: d.budget(ctx)})
	return value, translate(err)
}

// Click implements ui.Driver
func (d *Driver) Click(ctx context.Context, loc ui.Locator) error {
	if err := d.present(ctx, loc); err != nil {
		return err
	}
	err := d.locate(loc).First().Click(playwright.LocatorClickOptions{Timeout: d.budget(ctx)})
	return translate(err)
}

// PageContains implements ui.Driver
func (d *Driver) PageContains(ctx context.Context, text string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	html, err := d.page.Content()
	if err != nil {
		return false, translate(err)
	}
	return strings.Contains(html, text), nil
}

func (d *Driver) locate(loc ui.Locator) playwright.Locator {
	return d.page.Locator("xpath=" + loc.XPath)
}

func (d *Driver) present(ctx context.Context, loc ui.Locator) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n, err := d.locate(loc).Count()
	if err != nil {
		return translate(err)
	}
	if n == 0 {
		return ui.ErrNotFound
	}
	return nil
}

// budget returns the action timeout in milliseconds, shortened to what is
// left of ctx
func (d *Driver) budget(ctx context.Context) *float64 {
	timeout := d.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout < time.Millisecond {
		timeout = time.Millisecond
	}
	return playwright.Float(float64(timeout.Milliseconds()))
}

// translate maps Playwright failures that mean "not ready yet" onto the
// transient ui errors
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, playwright.ErrTimeout):
		return fmt.Errorf("%w: %v", ui.ErrNotInteractable, err)
	case strings.Contains(err.Error(), "Element is not attached to the DOM"),
		strings.Contains(err.Error(), "Execution context was destroyed"):
		return fmt.Errorf("%w: %v", ui.ErrStale, err)
	default:
		return err
	}
}

var _ ui.Session = (*Driver)(nil)
