package accounts

import "time"

// Reference durations. Challenges are deliberately short-lived; bearer
// tokens far outlive them; the idle window sits in between and is the only
// mechanism that ends a session early.
const (
	DefaultChallengeTTL = 4 * time.Minute
	DefaultTokenTTL     = 30 * 24 * time.Hour
	DefaultIdleLimit    = 10 * time.Minute
	DefaultBcryptCost   = 12
)

// Config holds the tunables for the lifecycle core.
type Config struct {
	SigningKey   []byte
	Issuer       string
	Audience     []string
	ChallengeTTL time.Duration
	TokenTTL     time.Duration
	IdleLimit    time.Duration
	BcryptCost   int
}

func (c Config) withDefaults() Config {
	if c.ChallengeTTL <= 0 {
		c.ChallengeTTL = DefaultChallengeTTL
	}
	if c.TokenTTL <= 0 {
		c.TokenTTL = DefaultTokenTTL
	}
	if c.IdleLimit <= 0 {
		c.IdleLimit = DefaultIdleLimit
	}
	if c.BcryptCost <= 0 {
		c.BcryptCost = DefaultBcryptCost
	}
	return c
}
