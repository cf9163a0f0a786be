package telsend

import "context"

// Plugin extends a Client with background behavior.
type Plugin interface {
	// Name returns the plugin identifier used in logs.
	Name() string

	// Initialize is called by Start, in registration order.
	Initialize(ctx context.Context, cfg PluginConfig) error

	// Shutdown is called by Close, in reverse registration order.
	Shutdown(ctx context.Context) error
}

// Configurer reads and replaces the active transport config.
type Configurer interface {
	Config() TransportConfig
	SetConfig(cfg TransportConfig)
}

// PluginConfig is handed to plugins at Start.
type PluginConfig struct {
	Transport  Configurer
	Logger     Logger
	ConfigPath string
}
