package domain

// TransportConfig is the read-only snapshot consumed by each send.
// It is replaced wholesale by SetConfig and never mutated in place.
type TransportConfig struct {
	DisableXhr              bool `toml:"disable_xhr" json:"disableXhr"`
	DisableBeacon           bool `toml:"disable_beacon" json:"disableBeacon"`
	DisableBeaconSync       bool `toml:"disable_beacon_sync" json:"disableBeaconSync"`
	DisableFetchKeepAlive   bool `toml:"disable_fetch_keepalive" json:"disableFetchKeepAlive"`
	DisableCredentials      bool `toml:"disable_credentials" json:"disableCredentials"`
	EnableCompletionPromise bool `toml:"enable_completion_promise" json:"enableCompletionPromise"`
	IsManagedEndpoint       bool `toml:"is_managed_endpoint" json:"isManagedEndpoint"`
}

// SendCredentials reports whether requests should carry host credentials.
func (c TransportConfig) SendCredentials() bool {
	return c.IsManagedEndpoint && !c.DisableCredentials
}
