package cfg

import (
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	if Version == "" {
		return "unknown"
	}
	return Version
}

type rawCfg struct {
	// Slack credentials
	SigningSecret     string `long:"signing-secret" env:"SIGNING_SECRET" description:"Slack app signing secret (Basic Information page)"`
	VerificationToken string `long:"verification-token" env:"VERIFICATION_TOKEN" description:"Deprecated Slack verification token, used only when no signing secret is set"`
	OAuthToken        string `long:"oauth-token" env:"OAUTH_TOKEN" description:"Slack OAuth access token (required)" required:"true"`

	// Application configuration
	Port          string `long:"port" env:"PORT" default:"8081" description:"HTTP server port"`
	ProvidersFile string `long:"providers-file" env:"PROVIDERS_FILE" default:"./providers.yml" description:"Path to the provider settings file"`
	HTTPTimeout   int    `long:"http-timeout" env:"HTTP_TIMEOUT" default:"30" description:"Outbound HTTP request timeout in seconds"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"paperbot/1.0" description:"User agent string for HTTP requests"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		SigningSecret:     raw.SigningSecret,
		VerificationToken: raw.VerificationToken,
		OAuthToken:        raw.OAuthToken,
		Port:              raw.Port,
		ProvidersFile:     raw.ProvidersFile,
		HTTPTimeout:       raw.HTTPTimeout,
		UserAgent:         raw.UserAgent,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}
