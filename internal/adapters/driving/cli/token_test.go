package cli

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/fanslysync/internal/core/domain"
)

func storedToken(t *testing.T, env *testEnv) string {
	t.Helper()
	cfg, err := env.config.Load(context.Background())
	require.NoError(t, err)
	return cfg.FanslyToken
}

func TestTokenSet_FromArgument(t *testing.T) {
	env := setupCLI(t)

	out, err := runCLI(t, "token", "set", "abcdefghijklmnop")

	require.NoError(t, err)
	assert.Contains(t, out, "Token stored (abcd...mnop).")
	assert.Equal(t, "abcdefghijklmnop", storedToken(t, env))
	assert.Empty(t, env.api.lastCred)
}

func TestTokenSet_Prompt(t *testing.T) {
	env := setupCLI(t)
	rootCmd.SetIn(strings.NewReader("  prompted-token-123 \n"))

	out, err := runCLI(t, "token", "set")

	require.NoError(t, err)
	assert.Contains(t, out, "Fansly token:")
	assert.Equal(t, "prompted-token-123", storedToken(t, env))
}

func TestTokenSet_Empty(t *testing.T) {
	env := setupCLI(t)
	rootCmd.SetIn(strings.NewReader("\n"))

	_, err := runCLI(t, "token", "set")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, storedToken(t, env))
}

func TestTokenSet_Verify(t *testing.T) {
	env := setupCLI(t)
	env.api.me = &domain.Me{Account: domain.AccountInfo{ID: "1", Username: "creator"}}

	out, err := runCLI(t, "token", "set", "--verify", "good-token")

	require.NoError(t, err)
	assert.Contains(t, out, "Token accepted for @creator.")
	assert.Equal(t, "good-token", env.api.lastCred)
	assert.Equal(t, "good-token", storedToken(t, env))
}

func TestTokenSet_VerifyRejected(t *testing.T) {
	env := setupCLI(t)
	env.api.err = &domain.AuthError{Op: "get profile", StatusCode: 401}

	_, err := runCLI(t, "token", "set", "--verify", "bad-token")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "token was rejected")
	assert.Empty(t, storedToken(t, env))
}

func TestTokenClear(t *testing.T) {
	env := setupCLI(t)
	_, err := runCLI(t, "token", "set", "abcdefghijklmnop")
	require.NoError(t, err)

	out, err := runCLI(t, "token", "clear")

	require.NoError(t, err)
	assert.Contains(t, out, "Token removed.")
	assert.Empty(t, storedToken(t, env))
}

func TestTokenCheck_Valid(t *testing.T) {
	env := setupCLI(t)
	_, err := runCLI(t, "token", "set", "stored-token")
	require.NoError(t, err)
	env.api.me = &domain.Me{Account: domain.AccountInfo{
		ID:                "281038385793998848",
		Username:          "creator",
		FollowCount:       12,
		SubscriberCount:   3,
		SubscriptionTiers: []domain.SubscriptionTier{{Name: "Gold", Plans: []domain.Plan{{ID: "p1"}}}},
	}}

	out, err := runCLI(t, "token", "check")

	require.NoError(t, err)
	assert.Equal(t, "stored-token", env.api.lastCred)
	assert.Contains(t, out, "Token is valid for @creator (281038385793998848).")
	assert.Contains(t, out, "Followers:   12")
	assert.Contains(t, out, "Gold (1 plans)")
}

func TestTokenCheck_Missing(t *testing.T) {
	setupCLI(t)

	_, err := runCLI(t, "token", "check")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMissingCredential)
}

func TestTokenCheck_Rejected(t *testing.T) {
	env := setupCLI(t)
	_, err := runCLI(t, "token", "set", "stored-token")
	require.NoError(t, err)
	env.api.err = &domain.AuthError{Op: "get profile", StatusCode: 403}

	_, err = runCLI(t, "token", "check")

	require.Error(t, err)
	assert.True(t, domain.IsAuth(err))
}

func TestTokenCheck_APIPanic(t *testing.T) {
	env := setupCLI(t)
	_, err := runCLI(t, "token", "set", "stored-token")
	require.NoError(t, err)
	accountAPI = panickingAPI{env.api}

	_, err = runCLI(t, "token", "check")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPanic)
}

type panickingAPI struct{ *mockAccountAPI }

func (panickingAPI) Me(context.Context, string) (*domain.Me, error) {
	panic("unexpected")
}

func TestReadPassword_NonTerminal(t *testing.T) {
	assert.Equal(t, "value", readPassword(strings.NewReader("value\nrest")))
}
