package provider

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Settings holds per-provider configuration loaded from the optional
// providers file. A missing file yields defaults for both providers.
type Settings struct {
	Arxiv ProviderSettings `yaml:"arxiv"`
	SSRN  ProviderSettings `yaml:"ssrn"`
}

type ProviderSettings struct {
	Enabled    *bool  `yaml:"enabled"`
	APIURL     string `yaml:"api_url"`
	FaviconURL string `yaml:"favicon_url"`
	Timeout    int    `yaml:"timeout"` // seconds
}

func (s ProviderSettings) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

func LoadSettings(path string) (*Settings, error) {
	settings := &Settings{}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		slog.Debug("Provider settings file not found, using defaults", "path", path)
		setDefaults(settings)
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read provider settings: %w", err)
	}

	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse provider settings: %w", err)
	}

	setDefaults(settings)

	if err := validate(settings); err != nil {
		return nil, fmt.Errorf("invalid provider settings: %w", err)
	}

	return settings, nil
}

func setDefaults(settings *Settings) {
	if settings.Arxiv.APIURL == "" {
		settings.Arxiv.APIURL = "http://export.arxiv.org/api/query"
	}
	if settings.Arxiv.FaviconURL == "" {
		settings.Arxiv.FaviconURL = "https://arxiv.org/favicon.ico"
	}
	if settings.Arxiv.Timeout == 0 {
		settings.Arxiv.Timeout = 30 // seconds
	}

	if settings.SSRN.APIURL == "" {
		settings.SSRN.APIURL = "https://papers.ssrn.com/sol3/papers.cfm"
	}
	if settings.SSRN.FaviconURL == "" {
		settings.SSRN.FaviconURL = "https://ssrn.com/favicon.ico"
	}
	if settings.SSRN.Timeout == 0 {
		settings.SSRN.Timeout = 30 // seconds
	}
}

func validate(settings *Settings) error {
	if settings.Arxiv.Timeout < 0 {
		return fmt.Errorf("arxiv timeout must be non-negative")
	}
	if settings.SSRN.Timeout < 0 {
		return fmt.Errorf("ssrn timeout must be non-negative")
	}
	return nil
}
