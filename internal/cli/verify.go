// Package cli holds the command implementations behind cmd/cartverify.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/phuslu/log"

	"github.com/themizzi/cartverify/internal/catalog"
	"github.com/themizzi/cartverify/internal/config"
	"github.com/themizzi/cartverify/internal/dataset"
	"github.com/themizzi/cartverify/internal/models"
	"github.com/themizzi/cartverify/internal/services"
	"github.com/themizzi/cartverify/internal/ui"
)

// ErrChecksFailed is returned when a run finished with at least one failed check
var ErrChecksFailed = errors.New("verification checks failed")

// SessionOpener starts a browsing session for cfg
type SessionOpener func(ctx context.Context, cfg *config.BrowserConfig) (ui.Session, error)

// VerifyDependencies holds everything a verification run needs
type VerifyDependencies struct {
	Browser  *config.BrowserConfig
	Catalog  *catalog.Catalog
	Products []models.ExpectedProduct
	// Recorder stores run history. Nil disables it.
	Recorder services.RunRecorder
	Open     SessionOpener
	Out      io.Writer
}

// RunVerify opens one browsing session, runs every check against the
// storefront and prints the report. The session is closed on every path.
func RunVerify(ctx context.Context, deps VerifyDependencies) (*services.Report, error) {
	session, err := deps.Open(ctx, deps.Browser)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close browser session")
		}
	}()

	waiter := ui.NewWaiter(session, deps.Browser.Timeout, deps.Browser.PollInterval)
	cart := services.NewCartService(waiter, deps.Catalog, services.CartOptions{
		BaseURL:       deps.Browser.BaseURL,
		ResetDeadline: deps.Browser.ResetDeadline,
	})
	verifier := services.NewVerificationService(cart, services.NewOracle(), deps.Recorder, string(deps.Browser.Engine), deps.Browser.BaseURL)

	report, err := verifier.Run(ctx, deps.Products)
	if report != nil {
		PrintReport(deps.Out, report)
	}
	if err != nil {
		return report, fmt.Errorf("verification aborted: %w", err)
	}
	if !report.Passed() {
		return report, ErrChecksFailed
	}
	return report, nil
}

// ResolveProfile picks the product list for a run. A CSV data file replaces
// the products of the profile, and without a profile the demo products apply.
func ResolveProfile(profilePath, dataPath string) (*config.Profile, error) {
	profile := config.DefaultProfile()
	if profilePath != "" {
		loaded, err := config.LoadProfile(profilePath)
		if err != nil {
			return nil, err
		}
		profile = loaded
	}

	if dataPath != "" {
		products, err := dataset.Load(dataPath)
		if err != nil {
			return nil, err
		}
		if len(products) == 0 {
			return nil, fmt.Errorf("data file %s: %w", dataPath, config.ErrNoProducts)
		}
		profile.Products = products
	}
	return profile, nil
}
