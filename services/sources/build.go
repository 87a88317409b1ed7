package sources

import (
	"fmt"
	"log"

	"subhub/config"
)

// New constructs the source registered under cfg.Name.
func New(cfg config.SourceConfig, userAgent string) (Source, error) {
	opts := Options{
		BaseURL:   cfg.BaseURL,
		Timeout:   cfg.Timeout(),
		UserAgent: userAgent,
		Offline:   cfg.Offline,
	}
	switch cfg.Name {
	case "baiscope":
		return NewBaiscopeSource(opts), nil
	case "cineru":
		return NewCineruSource(opts), nil
	case "piratelk":
		return NewPirateLKSource(opts), nil
	case "zoom":
		return NewZoomSource(opts), nil
	default:
		return nil, fmt.Errorf("unknown source %q", cfg.Name)
	}
}

// RegistryFromSettings builds a registry holding every enabled source in settings.
func RegistryFromSettings(settings config.Settings) *Registry {
	registry := NewRegistry()
	for _, cfg := range settings.Sources {
		if !cfg.Enabled {
			log.Printf("[sources] Skipping disabled source %s", cfg.Name)
			continue
		}
		src, err := New(cfg, settings.HTTP.UserAgent)
		if err != nil {
			log.Printf("[sources] %v", err)
			continue
		}
		log.Printf("[sources] Registered %s (timeout %s, offline %v)", src.Name(), cfg.Timeout(), cfg.Offline)
		registry.Register(src)
	}
	return registry
}
