package accounts

import (
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// EndReason distinguishes a user-initiated logout from a watchdog-forced
// one. The forced variant is a normal state transition, not an error, but
// the UI layer must present the two differently.
type EndReason string

const (
	// EndReasonLogout is a deliberate logout by the user.
	EndReasonLogout EndReason = "logout"
	// EndReasonIdleTimeout means the watchdog fired with no intervening
	// activity.
	EndReasonIdleTimeout EndReason = "idle_timeout"
)

// SessionState is the client-resident record for one session: the bearer
// token, the cached profile, and the last activity timestamp. All three
// are cleared together on logout.
type SessionState struct {
	Token          string    `json:"token"`
	User           *User     `json:"user"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

// SessionVault persists SessionState between page loads / process
// restarts. Clear must remove token, profile, and timestamp atomically.
type SessionVault interface {
	Save(state SessionState) error
	Load() (SessionState, bool, error)
	Clear() error
}

// MemoryVault is the in-process SessionVault.
type MemoryVault struct {
	mu    sync.Mutex
	state SessionState
	ok    bool
}

var _ SessionVault = (*MemoryVault)(nil)

// NewMemoryVault builds an empty vault.
func NewMemoryVault() *MemoryVault {
	return &MemoryVault{}
}

func (v *MemoryVault) Save(state SessionState) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state = state
	v.ok = true
	return nil
}

func (v *MemoryVault) Load() (SessionState, bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state, v.ok, nil
}

func (v *MemoryVault) Clear() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state = SessionState{}
	v.ok = false
	return nil
}

// ErrNoSession is returned when an operation needs a live session and none
// exists.
var ErrNoSession = goerrors.New("no active session", goerrors.CategoryAuth).
	WithTextCode("NO_SESSION").
	WithCode(goerrors.CodeUnauthorized)

// ClientSession is the explicit session object: the sole holder of
// "current user" state, passed to whatever needs it instead of living in
// ambient globals. It couples the vault with an inactivity watchdog.
type ClientSession struct {
	vault     SessionVault
	idleLimit time.Duration
	logger    Logger
	now       func() time.Time

	mu       sync.Mutex
	watchdog *Watchdog
	status   AccountStatus
	epoch    uint64
	hooks    []func(EndReason)
}

// ClientSessionOption customizes session construction.
type ClientSessionOption func(*ClientSession)

// WithSessionLogger sets the session logger.
func WithSessionLogger(l Logger) ClientSessionOption {
	return func(s *ClientSession) {
		s.logger = normalizeLogger(l)
	}
}

// WithSessionClock injects a custom clock (useful for tests).
func WithSessionClock(clock func() time.Time) ClientSessionOption {
	return func(s *ClientSession) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewClientSession builds a session around a vault. No session is active
// until Begin or a successful Resume.
func NewClientSession(vault SessionVault, idleLimit time.Duration, opts ...ClientSessionOption) *ClientSession {
	if idleLimit <= 0 {
		idleLimit = DefaultIdleLimit
	}
	s := &ClientSession{
		vault:     vault,
		idleLimit: idleLimit,
		logger:    defLogger{},
		now:       time.Now,
		status:    StatusUnregistered,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// OnSessionEnded registers a hook run whenever the session ends, manually
// or by watchdog. Collaborating subsystems (the cart clears its own
// storage) subscribe here.
func (s *ClientSession) OnSessionEnded(fn func(reason EndReason)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, fn)
}

// Begin starts a session for a freshly minted token. The state is stored
// in the vault before the watchdog is armed, so a timer can never fire
// against a session that was about to be written.
func (s *ClientSession) Begin(token string, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watchdog != nil {
		s.watchdog.Stop()
	}
	// a fire from the previous watchdog may have committed but not yet run
	// its callback; bumping the epoch makes it a no-op
	s.epoch++

	state := SessionState{
		Token:          token,
		User:           user,
		LastActivityAt: s.now(),
	}
	if err := s.vault.Save(state); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist session state")
	}

	s.status = StatusActive
	epoch := s.epoch
	s.watchdog = NewWatchdog(s.idleLimit, func() { s.expire(epoch) }, WithWatchdogClock(s.now))
	s.watchdog.Arm()
	return nil
}

// Activity consumes a user-presence event: pointer movement, key press,
// scroll, tap, click. It refreshes the persisted timestamp and re-arms
// the watchdog. Without a live session it is a no-op.
func (s *ClientSession) Activity() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusActive || s.watchdog == nil {
		return
	}

	s.watchdog.Touch()

	state, ok, err := s.vault.Load()
	if err != nil || !ok {
		return
	}
	state.LastActivityAt = s.watchdog.LastActivity()
	if err := s.vault.Save(state); err != nil {
		s.logger.Warn("failed to persist activity timestamp", "error", err)
	}
}

// Resume rebuilds the session after a page load or process restart from
// the persisted state. A timestamp already staler than the idle limit
// forces an immediate expiry instead of granting a fresh window.
func (s *ClientSession) Resume() (AccountStatus, error) {
	s.mu.Lock()

	state, ok, err := s.vault.Load()
	if err != nil {
		s.mu.Unlock()
		return s.status, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load session state")
	}
	if !ok || state.Token == "" {
		s.mu.Unlock()
		return StatusUnregistered, ErrNoSession
	}

	if s.watchdog != nil {
		s.watchdog.Stop()
	}
	s.epoch++
	epoch := s.epoch
	wd := NewWatchdog(s.idleLimit, func() { s.expire(epoch) }, WithWatchdogClock(s.now))
	if !wd.ArmRemaining(state.LastActivityAt) {
		// the persisted state represented a real session; expire it
		// rather than silently granting a fresh idle window
		s.status = StatusActive
		s.mu.Unlock()
		s.expire(epoch)
		return StatusSessionExpired, nil
	}

	s.watchdog = wd
	s.status = StatusActive
	s.mu.Unlock()
	return StatusActive, nil
}

// Logout ends the session deliberately.
func (s *ClientSession) Logout() {
	s.mu.Lock()
	s.endLocked(EndReasonLogout)
}

// Current returns the live session state.
func (s *ClientSession) Current() (SessionState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusActive {
		return SessionState{}, false
	}
	state, ok, err := s.vault.Load()
	if err != nil || !ok {
		return SessionState{}, false
	}
	return state, true
}

// Status reports the session-local lifecycle state.
func (s *ClientSession) Status() AccountStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// expire is the watchdog callback: discard the bearer token even though it
// would still validate, and surface SessionExpired to the UI layer. The
// epoch pins the call to the session generation the timer was armed for; a
// fire that raced a Begin or Resume is discarded here.
func (s *ClientSession) expire(epoch uint64) {
	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		return
	}
	s.endLocked(EndReasonIdleTimeout)
}

// endLocked finishes the session. Callers hold s.mu; it is released here so
// the hooks run outside the lock.
func (s *ClientSession) endLocked(reason EndReason) {
	if s.status != StatusActive && s.watchdog == nil {
		// nothing to end; keep hooks from double-firing
		s.mu.Unlock()
		return
	}

	s.epoch++
	if s.watchdog != nil {
		s.watchdog.Stop()
		s.watchdog = nil
	}

	switch reason {
	case EndReasonIdleTimeout:
		s.status = StatusSessionExpired
	default:
		s.status = StatusUnregistered
	}

	// token, cached profile, and timestamp go together
	if err := s.vault.Clear(); err != nil {
		s.logger.Error("failed to clear session state", "error", err)
	}

	hooks := make([]func(EndReason), len(s.hooks))
	copy(hooks, s.hooks)
	s.mu.Unlock()

	s.logger.Info("session ended", "reason", string(reason))
	for _, hook := range hooks {
		hook(reason)
	}
}
