package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nabhonil04/stockpredict/internal/database/models"
	"github.com/Nabhonil04/stockpredict/internal/database/service"
)

func TestUserService_Create(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.users.Create(ctx, "Alice", "alice@x.com", "pw1")
	require.NoError(t, err)

	assert.NotZero(t, user.ID)
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, "alice@x.com", user.Email)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "pw1", user.HashedPassword)

	ok, err := env.hasher.Verify("pw1", user.HashedPassword)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUserService_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		userName string
		email    string
		password string
	}{
		{name: "empty name", userName: "  ", email: "a@x.com", password: "pw"},
		{name: "bad email", userName: "A", email: "not-an-email", password: "pw"},
		{name: "empty password", userName: "A", email: "a@x.com", password: ""},
		{name: "password too long", userName: "A", email: "a@x.com", password: string(make([]byte, 73))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.users.Create(ctx, tt.userName, tt.email, tt.password)
			assert.ErrorIs(t, err, service.ErrValidation)
		})
	}

	var count int64
	require.NoError(t, env.db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUserService_CreateDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.users.Create(ctx, "Alice", "alice@x.com", "pw1")
	require.NoError(t, err)

	_, err = env.users.Create(ctx, "Other Alice", "alice@x.com", "pw2")
	assert.ErrorIs(t, err, service.ErrEmailAlreadyExists)

	var count int64
	require.NoError(t, env.db.Model(&models.User{}).Where("email = ?", "alice@x.com").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUserService_ConcurrentCreateSameEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.users.Create(ctx, "Racer", "race@x.com", "pw")

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case assert.ErrorIs(t, err, service.ErrEmailAlreadyExists):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)

	var count int64
	require.NoError(t, env.db.Model(&models.User{}).Where("email = ?", "race@x.com").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUserService_UpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice, err := env.users.Create(ctx, "Alice", "alice@x.com", "pw1")
	require.NoError(t, err)
	bob, err := env.users.Create(ctx, "Bob", "bob@x.com", "pw2")
	require.NoError(t, err)

	t.Run("rename keeping email", func(t *testing.T) {
		updated, err := env.users.UpdateProfile(ctx, alice.ID, "Alice Liddell", "alice@x.com")
		require.NoError(t, err)
		assert.Equal(t, "Alice Liddell", updated.Name)
		assert.Equal(t, "alice@x.com", updated.Email)
	})

	t.Run("change to free email", func(t *testing.T) {
		updated, err := env.users.UpdateProfile(ctx, alice.ID, "Alice", "alice@new.com")
		require.NoError(t, err)
		assert.Equal(t, "alice@new.com", updated.Email)

		found, err := env.users.FindByEmail(ctx, "alice@new.com")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, found.ID)

		_, err = env.users.FindByEmail(ctx, "alice@x.com")
		assert.ErrorIs(t, err, service.ErrUserNotFound)
	})

	t.Run("change to taken email", func(t *testing.T) {
		_, err := env.users.UpdateProfile(ctx, bob.ID, "Bob", "alice@new.com")
		assert.ErrorIs(t, err, service.ErrEmailAlreadyExists)

		found, err := env.users.GetUser(ctx, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, "bob@x.com", found.Email)
	})

	t.Run("invalid email", func(t *testing.T) {
		_, err := env.users.UpdateProfile(ctx, bob.ID, "Bob", "nope")
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := env.users.UpdateProfile(ctx, 9999, "Ghost", "ghost@x.com")
		assert.ErrorIs(t, err, service.ErrUserNotFound)
	})
}

func TestUserService_EnsureDemoUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.users.EnsureDemoUser(ctx)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = env.users.EnsureDemoUser(ctx)
	require.NoError(t, err)
	assert.False(t, created)

	_, token, err := env.auth.Login(ctx, service.DemoUserEmail, service.DemoUserPassword)
	require.NoError(t, err)
	assert.NotEmpty(t, token.AccessToken)
}
