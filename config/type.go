package config

import (
	"errors"

	"github.com/tutortime/tutortime/mailer"
)

// AppConfig is the root configuration tree.
type AppConfig struct {
	Server ServerConfig   `koanf:"server"`
	Db     DatabaseConfig `koanf:"database"`
	Auth   AuthConfig     `koanf:"auth"`
	Smtp   mailer.Config  `koanf:"smtp"`
}

type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
}

type DatabaseConfig struct {
	// Path of the sqlite database file, ":memory:" for ephemeral runs.
	Path string `koanf:"path"`
}

// AuthConfig implements tutortime.Config. Session tokens and password
// reset tokens are signed with different secrets.
type AuthConfig struct {
	SigningKey         string   `koanf:"signing_key"`
	ResetSigningKey    string   `koanf:"reset_signing_key"`
	SigningMethod      string   `koanf:"signing_method"`
	ContextKey         string   `koanf:"context_key"`
	TokenExpiration    int      `koanf:"token_expiration"`
	ResetTokenDuration int      `koanf:"reset_token_duration"`
	TokenLookup        string   `koanf:"token_lookup"`
	AuthScheme         string   `koanf:"auth_scheme"`
	Issuer             string   `koanf:"issuer"`
	Audience           []string `koanf:"audience"`
}

// NewAppConfig returns a config tree with working defaults for everything
// except the signing secrets, which have no default on purpose.
func NewAppConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 9876,
		},
		Db: DatabaseConfig{
			Path: "tutortime.db",
		},
		Auth: AuthConfig{
			SigningMethod:      "HS256",
			ContextKey:         "user",
			TokenExpiration:    168,
			ResetTokenDuration: 10,
			TokenLookup:        "header:Authorization",
			AuthScheme:         "Bearer",
			Issuer:             "tutortime",
			Audience:           []string{},
		},
		Smtp: mailer.Config{
			Port: 587,
		},
	}
}

// Validate fails fast on secrets we refuse to default.
func (c *AppConfig) Validate() error {
	if c.Auth.SigningKey == "" {
		return errors.New("auth.signing_key is required")
	}

	if c.Auth.ResetSigningKey == "" {
		return errors.New("auth.reset_signing_key is required")
	}

	if c.Auth.SigningKey == c.Auth.ResetSigningKey {
		return errors.New("auth.reset_signing_key must differ from auth.signing_key")
	}

	return nil
}

func (c *AppConfig) GetAuth() *AuthConfig { return &c.Auth }

func (a *AuthConfig) GetSigningKey() string      { return a.SigningKey }
func (a *AuthConfig) GetResetSigningKey() string { return a.ResetSigningKey }
func (a *AuthConfig) GetSigningMethod() string   { return a.SigningMethod }
func (a *AuthConfig) GetContextKey() string      { return a.ContextKey }

// GetTokenExpiration is the session token lifetime in hours.
func (a *AuthConfig) GetTokenExpiration() int { return a.TokenExpiration }

// GetResetTokenDuration is the reset token lifetime in minutes.
func (a *AuthConfig) GetResetTokenDuration() int { return a.ResetTokenDuration }

func (a *AuthConfig) GetTokenLookup() string { return a.TokenLookup }
func (a *AuthConfig) GetAuthScheme() string  { return a.AuthScheme }
func (a *AuthConfig) GetIssuer() string      { return a.Issuer }
func (a *AuthConfig) GetAudience() []string  { return a.Audience }
