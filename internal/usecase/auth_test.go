package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenantly/tenantly-api/internal/model"
)

func TestSignUp_CreatesAllEntitiesAndSendsConfirmation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	err := f.auth.SignUp(ctx, SignUpParams{
		Email:     "a@x.com",
		Password:  "pw123456",
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	require.NoError(t, err)

	account, err := f.accounts.GetAccountByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Nil(t, account.ConfirmedAt)
	assert.NotEmpty(t, account.PasswordHash)
	assert.NotEqual(t, "pw123456", account.PasswordHash)

	organization, err := f.orgs.GetOrganization(ctx, account.OrganizationID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", organization.Name)

	assignments, err := f.roles.ListAccountRoles(ctx, account.ID)
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, f.store.roles[model.RoleAdmin].ID, assignments[0].RoleID)

	projects, err := f.projects.ListProjectsByAccountID(ctx, account.ID)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, model.DefaultProjectName, projects[0].Name)

	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, []string{"a@x.com"}, f.mailer.sent[0].to)
}

func TestSignUp_ExplicitOrganizationName(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	err := f.auth.SignUp(ctx, SignUpParams{
		Email:            "a@x.com",
		Password:         "pw123456",
		FirstName:        "Ada",
		LastName:         "Lovelace",
		OrganizationName: "Analytical Engines Ltd",
	})
	require.NoError(t, err)

	account, err := f.accounts.GetAccountByEmail(ctx, "a@x.com")
	require.NoError(t, err)

	organization, err := f.orgs.GetOrganization(ctx, account.OrganizationID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Analytical Engines Ltd", organization.Name)
}

func TestSignUp_ExistingEmailSilentlySucceeds(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.signUp(ctx, "a@x.com", "pw123456")
	require.NoError(t, err)

	// Second signup with the same email must not reveal the account exists.
	err = f.auth.SignUp(ctx, SignUpParams{
		Email:     "a@x.com",
		Password:  "different",
		FirstName: "Mallory",
		LastName:  "Intruder",
	})
	require.NoError(t, err)

	count, err := f.accounts.CountAccounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Len(t, f.mailer.sent, 1)
}

func TestSignUp_FailureRollsBackEverything(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.projects.createErr = errors.New("insert failed")

	err := f.auth.SignUp(ctx, SignUpParams{
		Email:     "a@x.com",
		Password:  "pw123456",
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	assert.ErrorIs(t, err, ErrSignup)

	count, err := f.accounts.CountAccounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
	assert.Empty(t, f.store.organizations)
	assert.Empty(t, f.store.accountRoles)
}

func TestSignUp_EmailFailureRollsBack(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.mailer.sendErr = errors.New("smtp down")

	err := f.auth.SignUp(ctx, SignUpParams{
		Email:     "a@x.com",
		Password:  "pw123456",
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	assert.ErrorIs(t, err, ErrSignup)

	count, err := f.accounts.CountAccounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestConfirmEmail_SetsConfirmedAtOnce(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	account, err := f.signUp(ctx, "a@x.com", "pw123456")
	require.NoError(t, err)
	require.Nil(t, account.ConfirmedAt)

	token := f.mailer.lastEmailToken()
	require.NoError(t, f.auth.ConfirmEmail(ctx, token))

	account, err = f.accounts.GetAccountByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, account.ConfirmedAt)
	confirmedAt := *account.ConfirmedAt

	// Confirming again is a no-op, not an error.
	require.NoError(t, f.auth.ConfirmEmail(ctx, token))
	account, err = f.accounts.GetAccountByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, confirmedAt, *account.ConfirmedAt)
}

func TestConfirmEmail_UnknownAccountIsNoOp(t *testing.T) {
	f := newFixture()

	token, err := f.tokens.IssueConfirmationToken("64b5fc68a4e3bd2f9c914d10", 30*time.Minute)
	require.NoError(t, err)

	assert.NoError(t, f.auth.ConfirmEmail(context.Background(), token))
}

func TestConfirmEmail_ExpiredTokenIsDistinct(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	account, err := f.signUp(ctx, "a@x.com", "pw123456")
	require.NoError(t, err)

	expired, err := f.tokens.IssueConfirmationToken(account.ID.Hex(), -time.Minute)
	require.NoError(t, err)

	err = f.auth.ConfirmEmail(ctx, expired)
	assert.ErrorIs(t, err, ErrConfirmationTokenExpired)
}

func TestConfirmEmail_ForgedTokenForbidden(t *testing.T) {
	f := newFixture()

	err := f.auth.ConfirmEmail(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestSignIn_UnconfirmedAccountForbidden(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.signUp(ctx, "a@x.com", "pw123456")
	require.NoError(t, err)

	// Correct password, but the account has not confirmed its email.
	_, err = f.auth.SignIn(ctx, SignInParams{Email: "a@x.com", Password: "pw123456"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestSignIn_UnknownEmailAndWrongPasswordIndistinguishable(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.signUpConfirmed(ctx, "a@x.com", "pw123456")
	require.NoError(t, err)

	_, unknownErr := f.auth.SignIn(ctx, SignInParams{Email: "b@x.com", Password: "pw123456"})
	_, wrongErr := f.auth.SignIn(ctx, SignInParams{Email: "a@x.com", Password: "wrong-password"})

	assert.ErrorIs(t, unknownErr, ErrForbidden)
	assert.ErrorIs(t, wrongErr, ErrForbidden)
	assert.Equal(t, unknownErr, wrongErr)
}

func TestSignIn_DefaultRefreshTTL(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.signUpConfirmed(ctx, "a@x.com", "pw123456")
	require.NoError(t, err)

	result, err := f.auth.SignIn(ctx, SignInParams{Email: "a@x.com", Password: "pw123456"})
	require.NoError(t, err)

	assert.False(t, result.RememberMe)
	assert.Equal(t, int64(1800000), result.AccessTokenExpiresIn)
	assert.Equal(t, int64(86400000), result.RefreshTokenExpiresIn)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.NotEqual(t, result.AccessToken, result.RefreshToken)
}

func TestSignIn_RememberMeExtendsRefreshTTL(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.signUpConfirmed(ctx, "a@x.com", "pw123456")
	require.NoError(t, err)

	result, err := f.auth.SignIn(ctx, SignInParams{Email: "a@x.com", Password: "pw123456", RememberMe: true})
	require.NoError(t, err)

	assert.True(t, result.RememberMe)
	assert.Equal(t, int64(2678400000), result.RefreshTokenExpiresIn)
}

func TestRefreshToken_MintsFreshPairCarryingRememberMe(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.signUpConfirmed(ctx, "a@x.com", "pw123456")
	require.NoError(t, err)

	signedIn, err := f.auth.SignIn(ctx, SignInParams{Email: "a@x.com", Password: "pw123456", RememberMe: true})
	require.NoError(t, err)

	refreshed, err := f.auth.RefreshToken(ctx, signedIn.RefreshToken)
	require.NoError(t, err)

	assert.True(t, refreshed.RememberMe)
	assert.Equal(t, int64(2678400000), refreshed.RefreshTokenExpiresIn)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.NotEmpty(t, refreshed.RefreshToken)
}

func TestRefreshToken_ForgedTokenUnauthorized(t *testing.T) {
	f := newFixture()

	_, err := f.auth.RefreshToken(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRefreshToken_UnknownAccountUnauthorized(t *testing.T) {
	f := newFixture()

	token, err := f.tokens.IssueRefreshToken("64b5fc68a4e3bd2f9c914d10", time.Hour, false)
	require.NoError(t, err)

	_, err = f.auth.RefreshToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRefreshToken_UnconfirmedAccountForbidden(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	account, err := f.signUp(ctx, "a@x.com", "pw123456")
	require.NoError(t, err)

	token, err := f.tokens.IssueRefreshToken(account.ID.Hex(), time.Hour, false)
	require.NoError(t, err)

	_, err = f.auth.RefreshToken(ctx, token)
	assert.ErrorIs(t, err, ErrForbidden)
}
