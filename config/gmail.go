package config

import "strings"

// GmailConfig holds the OAuth2 credentials used to send unsubscribe emails
// through the Gmail REST API. Sending is disabled unless a refresh token is present.
type GmailConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RefreshToken string `env:"REFRESH_TOKEN"`
	TokenURL     string `env:"TOKEN_URL"     envDefault:"https://oauth2.googleapis.com/token"`
	APIBaseURL   string `env:"API_BASE_URL"  envDefault:"https://gmail.googleapis.com"`
	From         string `env:"FROM"          envDefault:"me"`
}

// Sanitize trims credential values and removes trailing slashes from the API base URL.
func (g *GmailConfig) Sanitize() {
	g.ClientID = strings.TrimSpace(g.ClientID)
	g.ClientSecret = strings.TrimSpace(g.ClientSecret)
	g.RefreshToken = strings.TrimSpace(g.RefreshToken)
	g.APIBaseURL = strings.TrimRight(strings.TrimSpace(g.APIBaseURL), "/")
	if g.From == "" {
		g.From = "me"
	}
}

// IsEnabled reports whether enough credentials are configured to send mail.
func (g *GmailConfig) IsEnabled() bool {
	return g.ClientID != "" && g.RefreshToken != "" && g.TokenURL != ""
}
