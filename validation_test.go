package accounts_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accounts "github.com/shopkit/go-accounts"
)

func TestProfilePatchValidate(t *testing.T) {
	tests := []struct {
		name    string
		patch   accounts.ProfilePatch
		wantErr bool
	}{
		{name: "empty patch", patch: accounts.ProfilePatch{}},
		{name: "display name", patch: accounts.ProfilePatch{DisplayName: "Alice"}},
		{name: "overlong display name", patch: accounts.ProfilePatch{DisplayName: strings.Repeat("a", 121)}, wantErr: true},
		{name: "overlong address", patch: accounts.ProfilePatch{Address: strings.Repeat("a", 501)}, wantErr: true},
		{name: "valid us phone", patch: accounts.ProfilePatch{Phone: "(212) 555-0123"}},
		{name: "valid e164 phone", patch: accounts.ProfilePatch{Phone: "+442071838750", DefaultRegion: "GB"}},
		{name: "garbage phone", patch: accounts.ProfilePatch{Phone: "not-a-phone"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.patch.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, accounts.IsValidationFailed(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestUpdateProfileNormalizesPhone(t *testing.T) {
	manager, store, _, _ := newTestManager(t)
	ctx := context.Background()

	auth := registerAndVerify(t, manager, store, "alice@x.com", "secret-one")

	updated, err := manager.UpdateProfile(ctx, auth.User.ID, accounts.ProfilePatch{
		Phone: "(212) 555-0123",
	})
	require.NoError(t, err)
	assert.Equal(t, "+12125550123", updated.Phone)

	updated, err = manager.UpdateProfile(ctx, auth.User.ID, accounts.ProfilePatch{
		DisplayName: "Alice B",
		Address:     "1 Main St",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice B", updated.DisplayName)
	assert.Equal(t, "1 Main St", updated.Address)
	assert.Equal(t, "+12125550123", updated.Phone, "untouched fields survive a partial patch")
}

func TestValidationFailedCarriesField(t *testing.T) {
	manager, _, _, _ := newTestManager(t)

	_, err := manager.Register(context.Background(), "Alice", "not-an-email", "secret-one")
	require.Error(t, err)
	assert.True(t, accounts.IsValidationFailed(err))
	assert.Equal(t, accounts.TextCodeValidationFailed, accounts.TextCode(err))
}
