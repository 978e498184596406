// Package browser opens a browsing session on the configured engine.
package browser

import (
	"context"
	"fmt"

	"github.com/phuslu/log"

	"github.com/themizzi/cartverify/internal/browser/cdpdriver"
	"github.com/themizzi/cartverify/internal/browser/pwdriver"
	"github.com/themizzi/cartverify/internal/browser/roddriver"
	"github.com/themizzi/cartverify/internal/config"
	"github.com/themizzi/cartverify/internal/ui"
)

// Open launches a browser for cfg.Engine. The caller owns the session and
// must Close it.
func Open(ctx context.Context, cfg *config.BrowserConfig) (ui.Session, error) {
	log.Info().Str("engine", string(cfg.Engine)).Bool("headless", cfg.Headless).Msg("launching browser")

	if cfg.Stealth && cfg.Engine != config.EngineRod {
		log.Warn().Str("engine", string(cfg.Engine)).Msg("CARTVERIFY_STEALTH only applies to the rod engine")
	}

	var (
		session ui.Session
		err     error
	)
	switch cfg.Engine {
	case config.EnginePlaywright:
		session, err = launchPlaywright(cfg)
	case config.EngineRod:
		session, err = launchRod(ctx, cfg)
	case config.EngineChromedp:
		session, err = launchChromedp(cfg)
	default:
		return nil, fmt.Errorf("unknown engine %q", cfg.Engine)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s session: %w", cfg.Engine, err)
	}
	return session, nil
}

func launchPlaywright(cfg *config.BrowserConfig) (ui.Session, error) {
	d, err := pwdriver.Launch(pwdriver.Options{
		Headless:      cfg.Headless,
		SlowMo:        cfg.SlowMo,
		Width:         config.ViewportWidth,
		Height:        config.ViewportHeight,
		ActionTimeout: cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

func launchRod(ctx context.Context, cfg *config.BrowserConfig) (ui.Session, error) {
	d, err := roddriver.Launch(ctx, roddriver.Options{
		Headless:      cfg.Headless,
		SlowMo:        cfg.SlowMo,
		Stealth:       cfg.Stealth,
		Bin:           cfg.ChromeBin,
		Width:         config.ViewportWidth,
		Height:        config.ViewportHeight,
		ActionTimeout: cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

func launchChromedp(cfg *config.BrowserConfig) (ui.Session, error) {
	if cfg.SlowMo > 0 {
		log.Warn().Msg("SLOW_MO is not supported by the chromedp engine")
	}
	d, err := cdpdriver.Launch(cdpdriver.Options{
		Headless:      cfg.Headless,
		Bin:           cfg.ChromeBin,
		Width:         config.ViewportWidth,
		Height:        config.ViewportHeight,
		ActionTimeout: cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}
