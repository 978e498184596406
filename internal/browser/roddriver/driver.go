// Package roddriver implements ui.Session on top of go-rod, optionally
// hiding automation fingerprints with go-rod/stealth.
package roddriver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/themizzi/cartverify/internal/ui"
)

// Options configures a rod session. Bin overrides the Chromium binary rod
// downloads or finds; ActionTimeout caps a single click or read.
type Options struct {
	Headless      bool
	SlowMo        time.Duration
	Stealth       bool
	Width         int
	Height        int
	Bin           string
	ActionTimeout time.Duration
}

// Driver is a Chromium page driven by rod
type Driver struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	timeout  time.Duration
}

// Launch starts Chromium and opens a single page
func Launch(ctx context.Context, opts Options) (*Driver, error) {
	l := launcher.New().
		Context(ctx).
		Set("no-sandbox").
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Headless(opts.Headless)
	if opts.Bin != "" {
		l = l.Bin(opts.Bin)
	}

	debugURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch chromium: %w", err)
	}

	browser := rod.New().ControlURL(debugURL)
	if opts.SlowMo > 0 {
		browser = browser.SlowMotion(opts.SlowMo)
	}
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	var page *rod.Page
	if opts.Stealth {
		page, err = stealth.Page(browser)
	} else {
		page, err = browser.Page(proto.TargetCreateTarget{})
	}
	if err != nil {
		browser.Close()
		l.Kill()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	err = proto.EmulationSetDeviceMetricsOverride{
		Width:             opts.Width,
		Height:            opts.Height,
		DeviceScaleFactor: 1,
	}.Call(page)
	if err != nil {
		browser.Close()
		l.Kill()
		return nil, fmt.Errorf("failed to set viewport: %w", err)
	}

	timeout := opts.ActionTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Driver{launcher: l, browser: browser, page: page, timeout: timeout}, nil
}

// Close shuts the browser down
func (d *Driver) Close() error {
	err := d.browser.Close()
	d.launcher.Kill()
	return err
}

// Navigate implements ui.Driver
func (d *Driver) Navigate(ctx context.Context, url string) error {
	page := d.page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("wait for %s to load: %w", url, err)
	}
	return nil
}

// Count implements ui.Driver
func (d *Driver) Count(ctx context.Context, loc ui.Locator) (int, error) {
	els, err := d.page.Context(ctx).ElementsX(loc.XPath)
	if err != nil {
		return 0, translate(err)
	}
	return len(els), nil
}

// Visible implements ui.Driver
func (d *Driver) Visible(ctx context.Context, loc ui.Locator) (bool, error) {
	el, err := d.first(ctx, loc)
	if errors.Is(err, ui.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	ok, err := el.Visible()
	return ok, translate(err)
}

// Clickable implements ui.Driver
func (d *Driver) Clickable(ctx context.Context, loc ui.Locator) (bool, error) {
	el, err := d.first(ctx, loc)
	if errors.Is(err, ui.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	visible, err := el.Visible()
	if err != nil || !visible {
		return false, translate(err)
	}
	disabled, err := el.Disabled()
	if err != nil {
		return false, translate(err)
	}
	return !disabled, nil
}

// Text implements ui.Driver
func (d *Driver) Text(ctx context.Context, loc ui.Locator) (string, error) {
	el, err := d.first(ctx, loc)
	if err != nil {
		return "", err
	}
	text, err := el.Text()
	return text, translate(err)
}

// Value implements ui.Driver
func (d *Driver) Value(ctx context.Context, loc ui.Locator) (string, error) {
	el, err := d.first(ctx, loc)
	if err != nil {
		return "", err
	}
	value, err := el.Property("value")
	if err != nil {
		return "", translate(err)
	}
	return value.Str(), nil
}

// Click implements ui.Driver
func (d *Driver) Click(ctx context.Context, loc ui.Locator) error {
	actx, cancel := d.actionContext(ctx)
	defer cancel()

	el, err := d.first(actx, loc)
	if err != nil {
		return err
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %v", ui.ErrNotInteractable, err)
		}
		return translate(err)
	}
	return nil
}

// PageContains implements ui.Driver
func (d *Driver) PageContains(ctx context.Context, text string) (bool, error) {
	html, err := d.page.Context(ctx).HTML()
	if err != nil {
		return false, translate(err)
	}
	return strings.Contains(html, text), nil
}

// first returns the first match of loc without waiting for it
func (d *Driver) first(ctx context.Context, loc ui.Locator) (*rod.Element, error) {
	els, err := d.page.Context(ctx).ElementsX(loc.XPath)
	if err != nil {
		return nil, translate(err)
	}
	if len(els) == 0 {
		return nil, ui.ErrNotFound
	}
	return els.First(), nil
}

func (d *Driver) actionContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d.timeout)
}

// translate maps rod failures that mean "not ready yet" onto the transient
// ui errors
func translate(err error) error {
	if err == nil {
		return nil
	}

	var (
		notInteractable *rod.NotInteractableError
		invisible       *rod.InvisibleShapeError
		covered         *rod.CoveredError
		noPointer       *rod.NoPointerEventsError
		objectGone      *rod.ObjectNotFoundError
	)
	switch {
	case errors.As(err, &notInteractable), errors.As(err, &invisible),
		errors.As(err, &covered), errors.As(err, &noPointer):
		return fmt.Errorf("%w: %v", ui.ErrNotInteractable, err)
	case errors.As(err, &objectGone):
		return fmt.Errorf("%w: %v", ui.ErrStale, err)
	default:
		return err
	}
}

var _ ui.Session = (*Driver)(nil)
