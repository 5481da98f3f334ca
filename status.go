package accounts

import (
	goerrors "github.com/goliatone/go-errors"
)

// AccountStatus is a lifecycle state in the account state machine.
type AccountStatus string

const (
	// StatusUnregistered means no record exists for the email.
	StatusUnregistered AccountStatus = "unregistered"
	// StatusPendingVerification means a record exists but the email has not
	// been proven yet. No session is granted in this state.
	StatusPendingVerification AccountStatus = "pending_verification"
	// StatusActive means the email is verified; sessions may be issued.
	StatusActive AccountStatus = "active"
	// StatusSessionExpired is session-scoped: the watchdog ended an active
	// session after the idle limit. The account itself stays active.
	StatusSessionExpired AccountStatus = "session_expired"
)

// ErrInvalidTransition is returned when a requested lifecycle change is not
// in the transition table.
var ErrInvalidTransition = goerrors.New("invalid account state transition", goerrors.CategoryValidation).
	WithTextCode("INVALID_ACCOUNT_STATE_TRANSITION").
	WithCode(goerrors.CodeBadRequest)

// transitions is the closed lifecycle graph. There is no suspended or
// banned state in this core.
var transitions = map[AccountStatus]map[AccountStatus]struct{}{
	StatusUnregistered: {
		StatusPendingVerification: {},
	},
	StatusPendingVerification: {
		// re-registration overwrites in place, state unchanged
		StatusPendingVerification: {},
		StatusActive:              {},
	},
	StatusActive: {
		StatusSessionExpired: {},
	},
	StatusSessionExpired: {
		// a fresh login re-enters active
		StatusActive: {},
	},
}

// CanTransition reports whether from → to is an allowed lifecycle change.
func CanTransition(from, to AccountStatus) bool {
	allowed, ok := transitions[from]
	if !ok {
		return false
	}
	_, ok = allowed[to]
	return ok
}

func guardTransition(from, to AccountStatus) error {
	if from == to && from != StatusPendingVerification {
		return nil
	}
	if !CanTransition(from, to) {
		return ErrInvalidTransition.WithMetadata(map[string]any{
			"from": from,
			"to":   to,
		})
	}
	return nil
}
