package config

// StorefrontConfig holds configuration for the fixture storefront server
type StorefrontConfig struct {
	Port string
}

// LoadStorefrontConfig loads storefront configuration from environment variables
func LoadStorefrontConfig(getenv func(string) string) StorefrontConfig {
	port := getenv("PORT")
	if port == "" {
		port = "8080" // Default to port 8080
	}

	return StorefrontConfig{
		Port: port,
	}
}
