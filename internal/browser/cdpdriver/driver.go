// Package cdpdriver implements ui.Session on top of chromedp. Probes run as
// XPath queries inside the page so they never block waiting for a node.
package cdpdriver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"

	"github.com/themizzi/cartverify/internal/ui"
)

// Options configures a chromedp session. Bin overrides the Chromium binary
// chromedp looks up; ActionTimeout caps a single click or read.
type Options struct {
	Headless      bool
	Bin           string
	Width         int
	Height        int
	ActionTimeout time.Duration
}

// Driver is a Chromium tab driven by chromedp
type Driver struct {
	browserCtx    context.Context
	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc
	timeout       time.Duration
}

// probe is what the in-page XPath query reports about the first match
type probe struct {
	Count   int    `json:"count"`
	Visible bool   `json:"visible"`
	Enabled bool   `json:"enabled"`
	Text    string `json:"text"`
	Value   string `json:"value"`
}

const probeScript = `(() => {
	const r = document.evaluate(%s, document, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null);
	const out = {count: r.snapshotLength, visible: false, enabled: false, text: "", value: ""};
	const n = r.snapshotItem(0);
	if (!n) return out;
	const style = n.nodeType === 1 ? window.getComputedStyle(n) : null;
	out.visible = !!style && style.visibility !== "hidden" && style.display !== "none" &&
		!!(n.offsetWidth || n.offsetHeight || n.getClientRects().length);
	out.enabled = !n.disabled;
	out.text = n.innerText || n.textContent || "";
	out.value = n.value === undefined || n.value === null ? "" : String(n.value);
	return out;
})()`

// Launch starts Chromium and opens a tab
func Launch(opts Options) (*Driver, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.WindowSize(opts.Width, opts.Height),
	)
	if opts.Bin != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.Bin))
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// the first Run starts the browser
	viewport := emulation.SetDeviceMetricsOverride(int64(opts.Width), int64(opts.Height), 1, false)
	if err := chromedp.Run(browserCtx, viewport); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("failed to start chromium: %w", err)
	}

	timeout := opts.ActionTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Driver{
		browserCtx:    browserCtx,
		cancelBrowser: cancelBrowser,
		cancelAlloc:   cancelAlloc,
		timeout:       timeout,
	}, nil
}

// Close shuts the tab and browser down
func (d *Driver) Close() error {
	err := chromedp.Cancel(d.browserCtx)
	d.cancelBrowser()
	d.cancelAlloc()
	return err
}

// Navigate implements ui.Driver
func (d *Driver) Navigate(ctx context.Context, url string) error {
	if err := d.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nil
}

// Count implements ui.Driver
func (d *Driver) Count(ctx context.Context, loc ui.Locator) (int, error) {
	p, err := d.probe(ctx, loc)
	return p.Count, err
}

// Visible implements ui.Driver
func (d *Driver) Visible(ctx context.Context, loc ui.Locator) (bool, error) {
	p, err := d.probe(ctx, loc)
	return p.Visible, err
}

// Clickable implements ui.Driver
func (d *Driver) Clickable(ctx context.Context, loc ui.Locator) (bool, error) {
	p, err := d.probe(ctx, loc)
	return p.Visible && p.Enabled, err
}

// Text implements ui.Driver
func (d *Driver) Text(ctx context.Context, loc ui.Locator) (string, error) {
	p, err := d.probe(ctx, loc)
	if err != nil {
		return "", err
	}
	if p.Count == 0 {
		return "", ui.ErrNotFound
	}
	return p.Text, nil
}

// Value implements ui.Driver
func (d *Driver) Value(ctx context.Context, loc ui.Locator) (string, error) {
	p, err := d.probe(ctx, loc)
	if err != nil {
		return "", err
	}
	if p.Count == 0 {
		return "", ui.ErrNotFound
	}
	return p.Value, nil
}

// Click implements ui.Driver
func (d *Driver) Click(ctx context.Context, loc ui.Locator) error {
	p, err := d.probe(ctx, loc)
	if err != nil {
		return err
	}
	if p.Count == 0 {
		return ui.ErrNotFound
	}
	return d.run(ctx, chromedp.Click(loc.XPath, chromedp.BySearch, chromedp.NodeVisible))
}

// PageContains implements ui.Driver
func (d *Driver) PageContains(ctx context.Context, text string) (bool, error) {
	var html string
	if err := d.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return false, err
	}
	return strings.Contains(html, text), nil
}

func (d *Driver) probe(ctx context.Context, loc ui.Locator) (probe, error) {
	var p probe
	expr, err := probeExpression(loc.XPath)
	if err != nil {
		return p, err
	}
	err = d.run(ctx, chromedp.Evaluate(expr, &p))
	return p, err
}

// probeExpression embeds xpath in the probe script as a JS string literal
func probeExpression(xpath string) (string, error) {
	literal, err := json.Marshal(xpath)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(probeScript, literal), nil
}

// run executes actions in the browser tab, bounded by the action timeout and
// cancelled along with ctx. A run cut short by the action timeout while ctx
// is still live means the page was not ready.
func (d *Driver) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	runCtx, cancel := context.WithTimeout(d.browserCtx, d.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ui.ErrNotInteractable, err)
	}
	return err
}

var _ ui.Session = (*Driver)(nil)
