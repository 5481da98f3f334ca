package accounts_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	accounts "github.com/shopkit/go-accounts"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to accounts.AccountStatus }{
		{accounts.StatusUnregistered, accounts.StatusPendingVerification},
		{accounts.StatusPendingVerification, accounts.StatusPendingVerification},
		{accounts.StatusPendingVerification, accounts.StatusActive},
		{accounts.StatusActive, accounts.StatusSessionExpired},
		{accounts.StatusSessionExpired, accounts.StatusActive},
	}
	for _, tr := range allowed {
		assert.True(t, accounts.CanTransition(tr.from, tr.to), "%s -> %s", tr.from, tr.to)
	}

	denied := []struct{ from, to accounts.AccountStatus }{
		{accounts.StatusUnregistered, accounts.StatusActive},
		{accounts.StatusUnregistered, accounts.StatusSessionExpired},
		{accounts.StatusPendingVerification, accounts.StatusSessionExpired},
		{accounts.StatusActive, accounts.StatusPendingVerification},
		{accounts.StatusActive, accounts.StatusUnregistered},
		{accounts.StatusSessionExpired, accounts.StatusPendingVerification},
	}
	for _, tr := range denied {
		assert.False(t, accounts.CanTransition(tr.from, tr.to), "%s -> %s", tr.from, tr.to)
	}
}

func TestUserStatus(t *testing.T) {
	var nilUser *accounts.User
	assert.Equal(t, accounts.StatusUnregistered, nilUser.Status())

	user := &accounts.User{}
	assert.Equal(t, accounts.StatusPendingVerification, user.Status())

	user.IsVerified = true
	assert.Equal(t, accounts.StatusActive, user.Status())
}
