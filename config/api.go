package config

// APIConfig defines the HTTP listener for the solve and run-history API.
type APIConfig struct {
	Addr string `json:"addr"`
	// AuthToken guards the API when non-empty: requests must carry
	// "Bearer <token>".
	AuthToken string `json:"auth_token"`
}

// SetDefaults applies the standard listen address.
func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}
