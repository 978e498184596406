package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/themizzi/cartverify/internal/catalog"
	"github.com/themizzi/cartverify/internal/models"
)

// ErrNoProducts is returned for a profile without any [[products]]
var ErrNoProducts = errors.New("profile lists no products")

// Profile is a TOML run profile: where to verify and what to expect. It is
// the single list both the per-product and the cart total checks use.
type Profile struct {
	BaseURL  string                   `toml:"base_url"`
	Engine   string                   `toml:"engine"`
	Catalog  []catalog.Entry          `toml:"catalog"`
	Products []models.ExpectedProduct `toml:"products"`
}

// DefaultProfile checks the three demo products against the configured
// storefront
func DefaultProfile() *Profile {
	return &Profile{
		Products: []models.ExpectedProduct{
			{Name: "HP ZBook 17 G2 Mobile Workstation", Quantity: 1, Price: 1799.00},
			{Name: "HP Z8000 Bluetooth Mouse", Quantity: 2, Price: 50.99, Color: "BLACK"},
			{Name: "HP Elite x2 1011 G1 Tablet", Quantity: 1, Price: 1279.00},
		},
	}
}

// LoadProfile reads and validates the profile at path
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	profile, err := ParseProfile(data)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}
	return profile, nil
}

// ParseProfile decodes a TOML profile. Unknown keys are rejected.
func ParseProfile(data []byte) (*Profile, error) {
	var profile Profile
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&profile); err != nil {
		return nil, fmt.Errorf("invalid TOML: %w", err)
	}

	if len(profile.Products) == 0 {
		return nil, ErrNoProducts
	}
	for i, p := range profile.Products {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("products[%d]: %w", i, err)
		}
	}
	if profile.Engine != "" {
		if _, err := ParseEngine(profile.Engine); err != nil {
			return nil, err
		}
	}
	if profile.BaseURL != "" {
		if err := validateBaseURL(profile.BaseURL); err != nil {
			return nil, err
		}
	}
	if _, err := profile.BuildCatalog(); err != nil {
		return nil, err
	}

	return &profile, nil
}

// BuildCatalog returns the demo catalog extended with the profile's entries
func (p *Profile) BuildCatalog() (*catalog.Catalog, error) {
	entries := append(catalog.Default().Entries(), p.Catalog...)
	cat, err := catalog.New(entries)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return cat, nil
}

// Apply overrides browser settings the profile sets
func (p *Profile) Apply(cfg *BrowserConfig) {
	if p.BaseURL != "" {
		cfg.BaseURL = p.BaseURL
	}
	if p.Engine != "" {
		// validated by ParseProfile
		cfg.Engine, _ = ParseEngine(p.Engine)
	}
}
