// internal/config/normalize.go
package config

// Normalize fills defaults for optional fields.
// It MUST be called before Validate.
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}
	if cfg.Device.Wiring == "" {
		cfg.Device.Wiring = WiringFourWire
	}
	if cfg.Device.PHY == "" {
		cfg.Device.PHY = "auto"
	}
	if cfg.UDP.Message == "" {
		cfg.UDP.Message = "ping"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
}
