package accounts

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"math/big"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// ChallengePurpose binds a challenge to exactly one flow.
type ChallengePurpose string

const (
	// PurposeVerifyEmail is the 6-digit code mailed on registration.
	PurposeVerifyEmail ChallengePurpose = "verify-email"
	// PurposeResetPassword is the emailed reset link token.
	PurposeResetPassword ChallengePurpose = "reset-password"
)

// Challenge is a short-lived secret bound to one user and one purpose. For
// reset challenges Secret holds the one-way hash, never the plaintext.
type Challenge struct {
	Purpose   ChallengePurpose
	Secret    string
	ExpiresAt time.Time
}

// ChallengeIssuer generates and validates verification and reset
// challenges. Verification codes are stored as issued; reset tokens are
// stored only as a SHA-256 hash since a leaked reset secret unlocks full
// account takeover, while a verification code is useless without control of
// the registered mailbox.
type ChallengeIssuer struct {
	ttl time.Duration
	now func() time.Time
}

// ChallengeIssuerOption customizes issuer construction.
type ChallengeIssuerOption func(*ChallengeIssuer)

// WithChallengeClock injects a custom clock (useful for tests).
func WithChallengeClock(clock func() time.Time) ChallengeIssuerOption {
	return func(ci *ChallengeIssuer) {
		if clock != nil {
			ci.now = clock
		}
	}
}

// NewChallengeIssuer returns an issuer with the given challenge lifetime.
func NewChallengeIssuer(ttl time.Duration, opts ...ChallengeIssuerOption) *ChallengeIssuer {
	if ttl <= 0 {
		ttl = DefaultChallengeTTL
	}
	ci := &ChallengeIssuer{
		ttl: ttl,
		now: time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(ci)
		}
	}
	return ci
}

// TTL exposes the configured challenge lifetime for email copy.
func (ci *ChallengeIssuer) TTL() time.Duration {
	return ci.ttl
}

// IssueVerification generates a fresh 6-digit numeric code. Attaching it to
// a user overwrites any prior verification challenge.
func (ci *ChallengeIssuer) IssueVerification() (Challenge, error) {
	code, err := numericCode(6)
	if err != nil {
		return Challenge{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate verification code")
	}

	return Challenge{
		Purpose:   PurposeVerifyEmail,
		Secret:    code,
		ExpiresAt: ci.now().Add(ci.ttl),
	}, nil
}

// IssueReset generates a high-entropy reset token. The returned plaintext
// is transmitted once via email and never persisted; the Challenge carries
// its hash.
func (ci *ChallengeIssuer) IssueReset() (plaintext string, c Challenge, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", Challenge{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate reset token")
	}

	plaintext = hex.EncodeToString(buf)
	return plaintext, Challenge{
		Purpose:   PurposeResetPassword,
		Secret:    HashResetToken(plaintext),
		ExpiresAt: ci.now().Add(ci.ttl),
	}, nil
}

// Validate compares the presented secret against the challenge attached to
// the user for the given purpose. Expired challenges are treated as absent.
// On success the caller is responsible for clearing the challenge.
func (ci *ChallengeIssuer) Validate(user *User, purpose ChallengePurpose, presented string) bool {
	if user == nil || presented == "" {
		return false
	}

	now := ci.now()
	switch purpose {
	case PurposeVerifyEmail:
		if !user.HasLiveVerification(now) {
			return false
		}
		return subtle.ConstantTimeCompare([]byte(user.VerificationCode), []byte(presented)) == 1
	case PurposeResetPassword:
		if !user.HasLiveReset(now) {
			return false
		}
		return subtle.ConstantTimeCompare([]byte(user.ResetTokenHash), []byte(HashResetToken(presented))) == 1
	default:
		return false
	}
}

// HashResetToken is the one-way transform applied to reset tokens before
// storage and lookup.
func HashResetToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

func numericCode(digits int) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < digits; i++ {
		max.Mul(max, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}

	code := n.String()
	for len(code) < digits {
		code = "0" + code
	}
	return code, nil
}
