package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// Manager is the account state machine. It orchestrates registration,
// verification, login, password reset, and password change against the
// credential store and challenge issuer, and mints bearer tokens on
// successful transitions.
//
// Every operation is request/response and runs to completion; email sends
// happen in the background and never gate a result.
type Manager struct {
	store      CredentialStore
	challenges *ChallengeIssuer
	tokens     *TokenService
	mailer     Mailer
	logger     Logger
	cfg        Config
	now        func() time.Time
}

// ManagerOption customizes manager construction.
type ManagerOption func(*Manager)

// WithMailer sets the email dispatch collaborator.
func WithMailer(m Mailer) ManagerOption {
	return func(mgr *Manager) {
		mgr.mailer = normalizeMailer(m)
	}
}

// WithLogger sets the manager logger.
func WithLogger(l Logger) ManagerOption {
	return func(mgr *Manager) {
		mgr.logger = normalizeLogger(l)
	}
}

// WithClock injects a custom clock, shared with the challenge issuer and
// token service (useful for tests).
func WithClock(clock func() time.Time) ManagerOption {
	return func(mgr *Manager) {
		if clock != nil {
			mgr.now = clock
		}
	}
}

// NewManager wires the lifecycle core around a credential store.
func NewManager(store CredentialStore, cfg Config, opts ...ManagerOption) *Manager {
	cfg = cfg.withDefaults()

	mgr := &Manager{
		store:  store,
		mailer: noopMailer{},
		logger: defLogger{},
		cfg:    cfg,
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(mgr)
		}
	}

	mgr.challenges = NewChallengeIssuer(cfg.ChallengeTTL, WithChallengeClock(mgr.now))
	mgr.tokens = NewTokenService(cfg.SigningKey, cfg.TokenTTL, cfg.Issuer, cfg.Audience,
		WithTokenClock(mgr.now), WithTokenLogger(mgr.logger))

	return mgr
}

// TokenService exposes the token issuer used by this manager.
func (m *Manager) TokenService() *TokenService {
	return m.tokens
}

// IdleLimit exposes the configured inactivity window for session wiring.
func (m *Manager) IdleLimit() time.Duration {
	return m.cfg.IdleLimit
}

// RegisterResult reports a successful registration. No session is granted
// before the email is verified.
type RegisterResult struct {
	PendingVerification bool `json:"pending_verification"`
}

// AuthResult carries a minted bearer token plus the user profile.
type AuthResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// ForgotPasswordResult is deliberately identical for known and unknown
// emails so the endpoint cannot be used to probe for accounts.
type ForgotPasswordResult struct {
	Sent bool `json:"sent"`
}

// ResetPasswordResult carries the fresh token minted after a reset.
type ResetPasswordResult struct {
	Token string `json:"token"`
}

// ChangePasswordResult confirms an authenticated password change.
type ChangePasswordResult struct {
	Confirmed bool `json:"confirmed"`
}

// Register creates (or, for an abandoned unverified signup, overwrites) a
// pending account, attaches a fresh verification challenge, and emails the
// code. Registering an email held by a verified account fails with
// AccountExists regardless of password correctness.
func (m *Manager) Register(ctx context.Context, name, email, password string) (*RegisterResult, error) {
	in := registerInput{Name: name, Email: email, Password: password}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	hash, err := HashPassword(password, m.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	challenge, err := m.challenges.IssueVerification()
	if err != nil {
		return nil, err
	}

	user := &User{
		Role:         RoleUser,
		DisplayName:  name,
		Email:        email,
		PasswordHash: hash,
	}
	if id, err := hashid.NewUUID(emailKey(email)); err == nil {
		user.ID = id
	}
	user.AttachVerification(challenge)

	created, err := m.store.Create(ctx, user)
	if err != nil {
		return nil, m.normalizeStoreErr(err)
	}

	subject, body := verificationEmail(created.DisplayName, challenge.Secret, m.challenges.TTL())
	dispatchEmail(m.mailer, m.logger, created.Email, subject, body)

	m.logger.Info("registration pending verification", "user_id", created.ID.String())
	return &RegisterResult{PendingVerification: true}, nil
}

// VerifyEmail consumes the verification challenge. On success the account
// becomes active, the challenge is cleared so the code cannot be replayed,
// and a bearer token is minted.
func (m *Manager) VerifyEmail(ctx context.Context, email, code string) (*AuthResult, error) {
	user, err := m.store.FindByEmail(ctx, email)
	if err != nil {
		if IsUserNotFound(err) {
			return nil, ErrInvalidOrExpiredCode
		}
		return nil, m.normalizeStoreErr(err)
	}

	if !m.challenges.Validate(user, PurposeVerifyEmail, code) {
		return nil, ErrInvalidOrExpiredCode
	}

	if err := guardTransition(user.Status(), StatusActive); err != nil {
		return nil, err
	}

	user.IsVerified = true
	user.ClearVerification()
	now := m.now()
	user.LoggedInAt = &now

	updated, err := m.store.Update(ctx, user)
	if err != nil {
		return nil, m.normalizeStoreErr(err)
	}

	token, err := m.tokens.Mint(updated)
	if err != nil {
		return nil, err
	}

	m.logger.Info("email verified", "user_id", updated.ID.String())
	return &AuthResult{Token: token, User: updated}, nil
}

// Login authenticates an email/password pair. A login attempt against an
// unverified account issues a brand-new verification challenge (replacing
// any prior one), emails it, and fails EmailNotVerified — callers must not
// loop on that result without backoff.
func (m *Manager) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := m.store.FindByEmail(ctx, email)
	if err != nil {
		if IsUserNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, m.normalizeStoreErr(err)
	}

	if !user.IsVerified {
		if err := m.resendVerification(ctx, user); err != nil {
			return nil, err
		}
		return nil, ErrEmailNotVerified
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		return nil, ErrWrongPassword
	}

	now := m.now()
	user.LoggedInAt = &now
	updated, err := m.store.Update(ctx, user)
	if err != nil {
		// the credentials already checked out; a failed bookkeeping write
		// should not block the login
		m.logger.Warn("failed to record login time", "user_id", user.ID.String(), "error", err)
		updated = user
	}

	token, err := m.tokens.Mint(updated)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Token: token, User: updated}, nil
}

// resendVerification replaces the pending challenge and emails the new
// code. Transiently, a re-issuance may overlap the old challenge; the
// store write makes the new code the only live one.
func (m *Manager) resendVerification(ctx context.Context, user *User) error {
	challenge, err := m.challenges.IssueVerification()
	if err != nil {
		return err
	}

	user.AttachVerification(challenge)
	updated, err := m.store.Update(ctx, user)
	if err != nil {
		return m.normalizeStoreErr(err)
	}

	subject, body := verificationEmail(updated.DisplayName, challenge.Secret, m.challenges.TTL())
	dispatchEmail(m.mailer, m.logger, updated.Email, subject, body)
	return nil
}

// ForgotPassword issues a reset challenge and emails a reset link. An
// unknown email reports the same success shape with no email sent, so the
// flow does not leak account existence.
func (m *Manager) ForgotPassword(ctx context.Context, email string) (*ForgotPasswordResult, error) {
	user, err := m.store.FindByEmail(ctx, email)
	if err != nil {
		if IsUserNotFound(err) {
			return &ForgotPasswordResult{Sent: true}, nil
		}
		return nil, m.normalizeStoreErr(err)
	}

	plaintext, challenge, err := m.challenges.IssueReset()
	if err != nil {
		return nil, err
	}

	user.AttachReset(challenge)
	updated, err := m.store.Update(ctx, user)
	if err != nil {
		return nil, m.normalizeStoreErr(err)
	}

	subject, body := resetEmail(updated.DisplayName, plaintext, m.challenges.TTL())
	dispatchEmail(m.mailer, m.logger, updated.Email, subject, body)

	return &ForgotPasswordResult{Sent: true}, nil
}

// ResetPassword consumes a reset challenge located by the one-way hash of
// the presented token. On success the password is replaced, the challenge
// cleared, a fresh token minted, and a notification emailed best-effort.
func (m *Manager) ResetPassword(ctx context.Context, plaintextToken, newPassword string) (*ResetPasswordResult, error) {
	if err := validateNewPassword(newPassword); err != nil {
		return nil, err
	}

	user, err := m.store.FindByResetTokenHash(ctx, HashResetToken(plaintextToken))
	if err != nil {
		if IsUserNotFound(err) {
			return nil, ErrInvalidOrExpiredToken
		}
		return nil, m.normalizeStoreErr(err)
	}

	if !m.challenges.Validate(user, PurposeResetPassword, plaintextToken) {
		return nil, ErrInvalidOrExpiredToken
	}

	hash, err := HashPassword(newPassword, m.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = hash
	user.ClearReset()
	// completing a reset proves control of the mailbox
	user.IsVerified = true

	updated, err := m.store.Update(ctx, user)
	if err != nil {
		return nil, m.normalizeStoreErr(err)
	}

	token, err := m.tokens.Mint(updated)
	if err != nil {
		return nil, err
	}

	subject, body := passwordChangedEmail(updated.DisplayName)
	dispatchEmail(m.mailer, m.logger, updated.Email, subject, body)

	m.logger.Info("password reset completed", "user_id", updated.ID.String())
	return &ResetPasswordResult{Token: token}, nil
}

// ChangePassword replaces the password for an authenticated, active
// caller after re-proving possession of the current one.
func (m *Manager) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) (*ChangePasswordResult, error) {
	user, err := m.store.FindByID(ctx, userID)
	if err != nil {
		if IsUserNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, m.normalizeStoreErr(err)
	}

	if err := ComparePasswordAndHash(currentPassword, user.PasswordHash); err != nil {
		return nil, ErrWrongCurrentPassword
	}

	if err := validateNewPassword(newPassword); err != nil {
		return nil, err
	}

	hash, err := HashPassword(newPassword, m.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = hash
	updated, err := m.store.Update(ctx, user)
	if err != nil {
		return nil, m.normalizeStoreErr(err)
	}

	subject, body := passwordChangedEmail(updated.DisplayName)
	dispatchEmail(m.mailer, m.logger, updated.Email, subject, body)

	return &ChangePasswordResult{Confirmed: true}, nil
}

// CurrentUser resolves a bearer token to its user profile.
func (m *Manager) CurrentUser(ctx context.Context, token string) (*User, error) {
	claims, err := m.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(claims.UserID())
	if err != nil {
		return nil, ErrTokenInvalid
	}

	user, err := m.store.FindByID(ctx, id)
	if err != nil {
		if IsUserNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, m.normalizeStoreErr(err)
	}

	return user, nil
}

// UpdateProfile applies mutable profile fields. Phone numbers are
// normalized to E.164 before storage.
func (m *Manager) UpdateProfile(ctx context.Context, userID uuid.UUID, patch ProfilePatch) (*User, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	user, err := m.store.FindByID(ctx, userID)
	if err != nil {
		if IsUserNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, m.normalizeStoreErr(err)
	}

	if patch.DisplayName != "" {
		user.DisplayName = patch.DisplayName
	}
	if patch.Phone != "" {
		normalized, err := patch.normalizedPhone()
		if err != nil {
			return nil, ValidationFailed("phone", "not a valid phone number")
		}
		user.Phone = normalized
	}
	if patch.Address != "" {
		user.Address = patch.Address
	}

	updated, err := m.store.Update(ctx, user)
	if err != nil {
		return nil, m.normalizeStoreErr(err)
	}
	return updated, nil
}

// normalizeStoreErr keeps taxonomy kinds intact and converts anything else
// coming out of the store into StoreUnavailable.
func (m *Manager) normalizeStoreErr(err error) error {
	if err == nil {
		return nil
	}
	if TextCode(err) != "" {
		var rich *goerrors.Error
		if goerrors.As(err, &rich) {
			return rich
		}
	}
	m.logger.Error("credential store fault", "error", err)
	return storeFault(err)
}
