package cfg

type Cfg struct {
	// Slack credentials
	SigningSecret     string
	VerificationToken string
	OAuthToken        string

	// Application configuration
	Port          string
	ProvidersFile string
	HTTPTimeout   int

	// Application metadata
	UserAgent string
	Debug     bool
	Version   string
}
