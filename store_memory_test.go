package accounts_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accounts "github.com/shopkit/go-accounts"
)

func seedUser(email string, verified bool) *accounts.User {
	return &accounts.User{
		Role:         accounts.RoleUser,
		DisplayName:  "Seed User",
		Email:        email,
		PasswordHash: "$2a$04$notarealhash",
		IsVerified:   verified,
	}
}

func TestMemoryStoreCreateAndFind(t *testing.T) {
	store := accounts.NewMemoryStore()
	ctx := context.Background()

	created, err := store.Create(ctx, seedUser("alice@x.com", false))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID, "store assigns an id when none is set")
	require.NotNil(t, created.CreatedAt)

	byEmail, err := store.FindByEmail(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	byID, err := store.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", byID.Email)
}

func TestMemoryStoreEmailLookupIsCaseInsensitive(t *testing.T) {
	store := accounts.NewMemoryStore()
	ctx := context.Background()

	_, err := store.Create(ctx, seedUser("Alice@X.com", false))
	require.NoError(t, err)

	found, err := store.FindByEmail(ctx, "  alice@x.COM ")
	require.NoError(t, err)
	assert.Equal(t, "Alice@X.com", found.Email)

	// same mailbox, different casing: still one record
	_, err = store.Create(ctx, seedUser("ALICE@x.com", false))
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStoreCreatePolicy(t *testing.T) {
	t.Run("verified account blocks re-create", func(t *testing.T) {
		store := accounts.NewMemoryStore()
		ctx := context.Background()

		_, err := store.Create(ctx, seedUser("alice@x.com", true))
		require.NoError(t, err)

		_, err = store.Create(ctx, seedUser("alice@x.com", false))
		assert.True(t, accounts.IsAccountExists(err))
	})

	t.Run("unverified account is overwritten in place", func(t *testing.T) {
		store := accounts.NewMemoryStore()
		ctx := context.Background()

		first, err := store.Create(ctx, seedUser("alice@x.com", false))
		require.NoError(t, err)

		replacement := seedUser("alice@x.com", false)
		replacement.DisplayName = "Replacement"
		second, err := store.Create(ctx, replacement)
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID, "overwrite keeps the original id")
		assert.Equal(t, first.CreatedAt, second.CreatedAt)
		assert.Equal(t, 1, store.Len())

		found, err := store.FindByEmail(ctx, "alice@x.com")
		require.NoError(t, err)
		assert.Equal(t, "Replacement", found.DisplayName)
	})
}

func TestMemoryStoreUpdate(t *testing.T) {
	store := accounts.NewMemoryStore()
	ctx := context.Background()

	created, err := store.Create(ctx, seedUser("alice@x.com", false))
	require.NoError(t, err)

	created.IsVerified = true
	updated, err := store.Update(ctx, created)
	require.NoError(t, err)
	assert.True(t, updated.IsVerified)

	ghost := seedUser("ghost@x.com", false)
	ghost.ID = uuid.New()
	_, err = store.Update(ctx, ghost)
	assert.True(t, accounts.IsUserNotFound(err))
}

func TestMemoryStoreFindByResetTokenHash(t *testing.T) {
	store := accounts.NewMemoryStore()
	ctx := context.Background()

	user := seedUser("alice@x.com", true)
	user.ResetTokenHash = accounts.HashResetToken("some-token")
	_, err := store.Create(ctx, user)
	require.NoError(t, err)

	found, err := store.FindByResetTokenHash(ctx, accounts.HashResetToken("some-token"))
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", found.Email)

	_, err = store.FindByResetTokenHash(ctx, accounts.HashResetToken("other-token"))
	assert.True(t, accounts.IsUserNotFound(err))

	// records without a hash must not match the empty string
	_, err = store.FindByResetTokenHash(ctx, "")
	assert.True(t, accounts.IsUserNotFound(err))
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	store := accounts.NewMemoryStore()
	ctx := context.Background()

	created, err := store.Create(ctx, seedUser("alice@x.com", false))
	require.NoError(t, err)

	created.DisplayName = "Mutated Outside"

	found, err := store.FindByEmail(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Seed User", found.DisplayName, "callers must not share pointers with the store")
}

func TestMemoryStoreCreateDoesNotMutateArgument(t *testing.T) {
	store := accounts.NewMemoryStore()
	ctx := context.Background()

	input := seedUser("alice@x.com", false)
	created, err := store.Create(ctx, input)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, uuid.Nil, input.ID, "the caller's record stays untouched")
	assert.Nil(t, input.CreatedAt)

	// overwrite path keeps the original id on the stored record only
	replacement := seedUser("alice@x.com", false)
	second, err := store.Create(ctx, replacement)
	require.NoError(t, err)
	assert.Equal(t, created.ID, second.ID)
	assert.Equal(t, uuid.Nil, replacement.ID)
}

func TestMemoryStoreUnknownLookups(t *testing.T) {
	store := accounts.NewMemoryStore()
	ctx := context.Background()

	_, err := store.FindByEmail(ctx, "ghost@x.com")
	assert.True(t, accounts.IsUserNotFound(err))

	_, err = store.FindByID(ctx, uuid.New())
	assert.True(t, accounts.IsUserNotFound(err))
}
