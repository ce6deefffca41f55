package auth

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athenareader/athena/internal/config"
	"github.com/athenareader/athena/internal/database"
)

func setupService(t *testing.T, cfg config.Auth) (*Service, *database.Database) {
	t.Helper()

	dbPath := "./test_auth_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
		os.Remove(dbPath)
	})

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 4
	}
	service, err := NewService(db, cfg)
	require.NoError(t, err)
	t.Cleanup(service.Close)
	return service, db
}

const testPassword = "correct-horse-battery"

func TestRegister(t *testing.T) {
	service, _ := setupService(t, config.Auth{TokenSecret: "secret"})

	t.Run("creates user with hashed password", func(t *testing.T) {
		user, err := service.Register("alice", "alice@example.com", testPassword)
		require.NoError(t, err)
		assert.NotZero(t, user.ID)
		assert.NotEqual(t, testPassword, user.PasswordHash)
		assert.NotEmpty(t, user.PasswordHash)
	})

	t.Run("rejects duplicate username", func(t *testing.T) {
		_, err := service.Register("alice", "alice2@example.com", testPassword)
		assert.ErrorIs(t, err, ErrUserExists)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		_, err := service.Register("alice2", "alice@example.com", testPassword)
		assert.ErrorIs(t, err, ErrUserExists)
	})

	t.Run("validates input", func(t *testing.T) {
		cases := []struct {
			name     string
			username string
			email    string
			password string
			want     error
		}{
			{"empty username", "", "a@example.com", testPassword, ErrUsernameRequired},
			{"empty email", "bob", "", testPassword, ErrEmailRequired},
			{"empty password", "bob", "a@example.com", "", ErrPasswordRequired},
			{"bad username", "a b!", "a@example.com", testPassword, ErrUsernameInvalid},
			{"short username", "ab", "a@example.com", testPassword, ErrUsernameInvalid},
			{"bad email", "bob", "not-an-email", testPassword, ErrEmailInvalid},
			{"short password", "bob", "a@example.com", "short", ErrPasswordTooShort},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := service.Register(tc.username, tc.email, tc.password)
				assert.ErrorIs(t, err, tc.want)
			})
		}
	})
}

func TestAuthenticate(t *testing.T) {
	service, _ := setupService(t, config.Auth{TokenSecret: "secret"})

	_, err := service.Register("alice", "alice@example.com", testPassword)
	require.NoError(t, err)

	t.Run("accepts username", func(t *testing.T) {
		user, err := service.Authenticate("127.0.0.1", "alice", testPassword)
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("accepts email as identifier", func(t *testing.T) {
		user, err := service.Authenticate("127.0.0.1", "alice@example.com", testPassword)
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		_, err := service.Authenticate("127.0.0.1", "alice", "wrong-password-long")
		assert.ErrorIs(t, err, ErrInvalidPassword)
	})

	t.Run("unknown user looks like wrong password", func(t *testing.T) {
		_, err := service.Authenticate("127.0.0.1", "nobody", testPassword)
		assert.ErrorIs(t, err, ErrInvalidPassword)
	})
}

func TestAuthenticateLockout(t *testing.T) {
	service, _ := setupService(t, config.Auth{
		TokenSecret:      "secret",
		MaxLoginAttempts: 3,
		RateLimitWindow:  time.Minute,
		LockoutDuration:  time.Minute,
	})

	_, err := service.Register("alice", "alice@example.com", testPassword)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := service.Authenticate("10.0.0.1", "alice", "wrong-password-long")
		assert.ErrorIs(t, err, ErrInvalidPassword)
	}

	_, err = service.Authenticate("10.0.0.1", "alice", testPassword)
	var locked *LockedOutError
	require.ErrorAs(t, err, &locked)
	assert.Greater(t, locked.RetryAfter, time.Duration(0))

	// Different IP is unaffected.
	_, err = service.Authenticate("10.0.0.2", "alice", testPassword)
	assert.NoError(t, err)
}

func TestTokens(t *testing.T) {
	service, _ := setupService(t, config.Auth{TokenSecret: "secret", TokenExpiry: time.Hour})

	user, err := service.Register("alice", "alice@example.com", testPassword)
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		token, err := service.IssueToken(user)
		require.NoError(t, err)

		id, err := service.VerifyToken(token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, id)
	})

	t.Run("garbage rejected", func(t *testing.T) {
		_, err := service.VerifyToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		otherService, _ := setupService(t, config.Auth{TokenSecret: "other-secret"})
		token, err := otherService.IssueToken(user)
		require.NoError(t, err)

		_, err = service.VerifyToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired rejected", func(t *testing.T) {
		shortService, _ := setupService(t, config.Auth{TokenSecret: "secret", TokenExpiry: time.Millisecond})
		token, err := shortService.IssueToken(user)
		require.NoError(t, err)

		// exp claims have second precision, so wait past the boundary.
		time.Sleep(1500 * time.Millisecond)
		_, err = shortService.VerifyToken(token)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})
}

func TestPasswordHashing(t *testing.T) {
	t.Run("hash and check", func(t *testing.T) {
		hash, err := HashPassword(testPassword, 4)
		require.NoError(t, err)
		assert.NoError(t, CheckPassword(testPassword, hash))
		assert.ErrorIs(t, CheckPassword("different-password", hash), ErrInvalidPassword)
	})

	t.Run("length limits", func(t *testing.T) {
		_, err := HashPassword("short", 4)
		assert.ErrorIs(t, err, ErrPasswordTooShort)

		long := make([]byte, 80)
		for i := range long {
			long[i] = 'a'
		}
		_, err = HashPassword(string(long), 4)
		assert.ErrorIs(t, err, ErrPasswordTooLong)
	})
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{
		MaxAttempts:     2,
		WindowDuration:  time.Minute,
		LockoutDuration: time.Minute,
	})
	defer rl.Stop()

	allowed, _ := rl.Allow("ip", "user")
	assert.True(t, allowed)

	rl.RecordFailure("ip", "user")
	allowed, _ = rl.Allow("ip", "user")
	assert.True(t, allowed)

	locked, retryAfter := rl.RecordFailure("ip", "user")
	assert.True(t, locked)
	assert.Equal(t, time.Minute, retryAfter)

	allowed, retryAfter = rl.Allow("ip", "user")
	assert.False(t, allowed)
	assert.Greater(t, retryAfter, time.Duration(0))

	// Success clears the record.
	rl.RecordSuccess("ip", "user")
	allowed, _ = rl.Allow("ip", "user")
	assert.True(t, allowed)
}
