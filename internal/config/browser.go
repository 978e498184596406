package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Engine names a browser automation backend
type Engine string

// Supported engines. All of them drive Chromium.
const (
	EnginePlaywright Engine = "playwright"
	EngineRod        Engine = "rod"
	EngineChromedp   Engine = "chromedp"
)

// Browser defaults
const (
	DefaultBaseURL       = "https://www.advantageonlineshopping.com/"
	DefaultTimeout       = 30 * time.Second
	DefaultPollInterval  = 100 * time.Millisecond
	DefaultResetDeadline = 2 * time.Minute
	ViewportWidth        = 1280
	ViewportHeight       = 720
)

// BrowserConfig holds configuration for the browsing session
type BrowserConfig struct {
	Engine        Engine
	BaseURL       string
	Headless      bool
	SlowMo        time.Duration
	Stealth       bool
	ChromeBin     string
	Timeout       time.Duration
	PollInterval  time.Duration
	ResetDeadline time.Duration
}

// LoadBrowserConfig loads browser configuration from environment variables
func LoadBrowserConfig(getenv func(string) string) (*BrowserConfig, error) {
	config := &BrowserConfig{
		Engine:        EnginePlaywright,
		BaseURL:       DefaultBaseURL,
		Headless:      true,
		Timeout:       DefaultTimeout,
		PollInterval:  DefaultPollInterval,
		ResetDeadline: DefaultResetDeadline,
	}

	if v := getenv("CARTVERIFY_ENGINE"); v != "" {
		engine, err := ParseEngine(v)
		if err != nil {
			return nil, err
		}
		config.Engine = engine
	}

	if v := getenv("CARTVERIFY_BASE_URL"); v != "" {
		config.BaseURL = v
	}
	if err := validateBaseURL(config.BaseURL); err != nil {
		return nil, err
	}

	config.ChromeBin = getenv("CARTVERIFY_CHROME_BIN")

	var err error
	if config.Headless, err = boolEnv(getenv, "HEADLESS", config.Headless); err != nil {
		return nil, err
	}
	if config.Stealth, err = boolEnv(getenv, "CARTVERIFY_STEALTH", false); err != nil {
		return nil, err
	}

	if v := getenv("SLOW_MO"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms < 0 {
			return nil, fmt.Errorf("SLOW_MO must be a non-negative number of milliseconds, got %q", v)
		}
		config.SlowMo = time.Duration(ms) * time.Millisecond
	}

	if config.Timeout, err = durationEnv(getenv, "CARTVERIFY_TIMEOUT", config.Timeout); err != nil {
		return nil, err
	}
	if config.PollInterval, err = durationEnv(getenv, "CARTVERIFY_POLL_INTERVAL", config.PollInterval); err != nil {
		return nil, err
	}
	if config.ResetDeadline, err = durationEnv(getenv, "CARTVERIFY_RESET_DEADLINE", config.ResetDeadline); err != nil {
		return nil, err
	}
	if config.PollInterval > config.Timeout {
		return nil, fmt.Errorf("CARTVERIFY_POLL_INTERVAL (%s) cannot exceed CARTVERIFY_TIMEOUT (%s)", config.PollInterval, config.Timeout)
	}

	return config, nil
}

// Override applies non-empty command line overrides for engine and base URL
func (c *BrowserConfig) Override(engine, baseURL string) error {
	if engine != "" {
		e, err := ParseEngine(engine)
		if err != nil {
			return err
		}
		c.Engine = e
	}
	if baseURL != "" {
		if err := validateBaseURL(baseURL); err != nil {
			return err
		}
		c.BaseURL = baseURL
	}
	return nil
}

// ParseEngine validates an engine name
func ParseEngine(name string) (Engine, error) {
	switch e := Engine(strings.ToLower(strings.TrimSpace(name))); e {
	case EnginePlaywright, EngineRod, EngineChromedp:
		return e, nil
	default:
		return "", fmt.Errorf("unknown engine %q (want playwright, rod or chromedp)", name)
	}
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("CARTVERIFY_BASE_URL is invalid: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("CARTVERIFY_BASE_URL must be an absolute http(s) URL, got %q", raw)
	}
	return nil
}

func boolEnv(getenv func(string) string, key string, def bool) (bool, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("%s must be a boolean, got %q", key, v)
	}
	return b, nil
}

func durationEnv(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def, fmt.Errorf("%s must be a positive duration, got %q", key, v)
	}
	return d, nil
}
