package app

import "github.com/romyseb/wedding/internal/auth"

// TokenCodecConfig converts AuthConfig into the parameters expected by the token codec.
// Zero durations fall back to the codec defaults.
func (c AuthConfig) TokenCodecConfig() auth.TokenConfig {
	return auth.TokenConfig{
		Secret:          c.Token.Secret,
		Issuer:          c.Token.Issuer,
		Audience:        c.Token.Audience,
		SessionAudience: c.Token.SessionAudience,
		TTL:             c.Token.TTL,
		SessionTTL:      c.Token.SessionTTL,
		ClockSkew:       c.Token.ClockSkew,
	}
}
