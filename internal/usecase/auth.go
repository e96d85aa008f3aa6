// Package usecase implements the authentication and credential lifecycle
// flows on top of the repository, token and mailer layers.
package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/tenantly/tenantly-api/internal/config"
	"github.com/tenantly/tenantly-api/internal/model"
	"github.com/tenantly/tenantly-api/internal/repository"
	"github.com/tenantly/tenantly-api/pkg/auth"
	"github.com/tenantly/tenantly-api/pkg/security"
)

// rememberMeRefreshExpiresIn is the extended refresh token lifetime granted
// when the client asks to be remembered.
const rememberMeRefreshExpiresIn = "31d"

var (
	// ErrSignup wraps any failure inside the signup transaction. The message
	// is deliberately generic and never echoes internal detail.
	ErrSignup = errors.New("an error occurred while creating the user")

	// ErrForbidden is the opaque outcome for every "not authenticated enough
	// to proceed" case. Unknown email, wrong password and unconfirmed account
	// are indistinguishable through it.
	ErrForbidden = errors.New("forbidden")

	// ErrUnauthorized is returned when a bearer token fails verification or
	// its subject account no longer exists.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrConfirmationTokenExpired is raised when a confirmation token is
	// well signed but past its expiry. The user has to sign up again.
	ErrConfirmationTokenExpired = errors.New("the account verification hash has expired")
)

// EmailSender is the slice of the mailer the usecases need.
type EmailSender interface {
	SendSimple(to []string, subject, body string) error
}

// AuthUsecase defines the signup, confirmation and session flows.
type AuthUsecase interface {
	SignUp(ctx context.Context, params SignUpParams) error
	ConfirmEmail(ctx context.Context, token string) error
	SignIn(ctx context.Context, params SignInParams) (*SignInResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*SignInResult, error)
}

// SignUpParams defines the parameters for account signup.
type SignUpParams struct {
	Email            string
	Password         string
	FirstName        string
	LastName         string
	OrganizationName string
}

// SignInParams defines the parameters for signing in.
type SignInParams struct {
	Email      string
	Password   string
	RememberMe bool
}

// SignInResult is returned by SignIn and RefreshToken. Expiry fields are in
// milliseconds for client-side countdowns.
type SignInResult struct {
	AccessToken           string
	RefreshToken          string
	RememberMe            bool
	AccessTokenExpiresIn  int64
	RefreshTokenExpiresIn int64
}

type authUsecase struct {
	accountRepo      repository.AccountRepository
	organizationRepo repository.OrganizationRepository
	roleRepo         repository.RoleRepository
	projectRepo      repository.ProjectRepository
	txn              repository.TxnManager
	tokens           *auth.TokenIssuer
	mailer           EmailSender
	cfg              *config.Config
	logger           *zerolog.Logger
}

// NewAuthUsecase creates a new instance of AuthUsecase.
func NewAuthUsecase(
	accountRepo repository.AccountRepository,
	organizationRepo repository.OrganizationRepository,
	roleRepo repository.RoleRepository,
	projectRepo repository.ProjectRepository,
	txn repository.TxnManager,
	tokens *auth.TokenIssuer,
	mailer EmailSender,
	cfg *config.Config,
	logger *zerolog.Logger,
) AuthUsecase {
	return &authUsecase{
		accountRepo:      accountRepo,
		organizationRepo: organizationRepo,
		roleRepo:         roleRepo,
		projectRepo:      projectRepo,
		txn:              txn,
		tokens:           tokens,
		mailer:           mailer,
		cfg:              cfg,
		logger:           logger,
	}
}

// SignUp creates the organization, account, admin role assignment and
// default project in one transaction, and sends the confirmation email. A
// signup against an existing email succeeds without creating anything so
// that callers cannot probe which addresses are registered.
func (u *authUsecase) SignUp(ctx context.Context, params SignUpParams) error {
	_, err := u.accountRepo.GetAccountByEmail(ctx, params.Email)
	if err == nil {
		u.logger.Error().Str("email", params.Email).Msg("signup attempt with existing email")
		return nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}

	err = u.txn.WithTransaction(ctx, func(ctx context.Context) error {
		organizationName := params.OrganizationName
		if organizationName == "" {
			organizationName = fmt.Sprintf("%s %s", params.FirstName, params.LastName)
		}

		organization, err := u.organizationRepo.CreateOrganization(ctx, &model.Organization{
			Name: organizationName,
		})
		if err != nil {
			return err
		}

		account, err := u.accountRepo.CreateAccount(ctx, &model.Account{
			Email:          params.Email,
			PasswordHash:   u.hashPassword(params.Password),
			FirstName:      params.FirstName,
			LastName:       params.LastName,
			OrganizationID: organization.ID,
		})
		if err != nil {
			return err
		}

		role, err := u.roleRepo.GetRoleByName(ctx, model.RoleAdmin)
		if err != nil {
			return err
		}
		if err := u.roleRepo.AssignRole(ctx, account.ID, role.ID); err != nil {
			return err
		}

		if err := u.sendConfirmationEmail(account); err != nil {
			return err
		}

		_, err = u.projectRepo.CreateProject(ctx, &model.Project{
			AccountID: account.ID,
			Name:      model.DefaultProjectName,
		})
		return err
	})
	if err != nil {
		u.logger.Error().Err(err).Msg("error occurred while creating the user")
		return ErrSignup
	}

	return nil
}

// ConfirmEmail resolves the confirmation token and stamps confirmed_at.
// Unknown and already-confirmed accounts are a no-op, so the operation is
// idempotent from the caller's perspective.
func (u *authUsecase) ConfirmEmail(ctx context.Context, token string) error {
	accountID, err := u.tokens.VerifyConfirmationToken(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return ErrConfirmationTokenExpired
		}
		return ErrForbidden
	}

	account, err := u.accountRepo.GetAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			u.logger.Info().Str("account_id", accountID).Msg("account not found, nothing to confirm")
			return nil
		}
		return err
	}

	if account.Confirmed() {
		u.logger.Info().Str("account_id", accountID).Msg("account already confirmed")
		return nil
	}

	return u.accountRepo.ConfirmAccount(ctx, accountID)
}

// SignIn authenticates an account by email and password. Unknown email,
// unconfirmed account and wrong password all surface as the same ErrForbidden.
func (u *authUsecase) SignIn(ctx context.Context, params SignInParams) (*SignInResult, error) {
	account, err := u.accountRepo.GetAccountByEmail(ctx, params.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrForbidden
		}
		return nil, err
	}

	if !account.Confirmed() {
		return nil, ErrForbidden
	}

	if !security.HashEquals(u.hashPassword(params.Password), account.PasswordHash) {
		return nil, ErrForbidden
	}

	return u.mintSession(account.ID.Hex(), params.RememberMe)
}

// RefreshToken verifies a refresh token and mints a fresh access/refresh
// pair carrying forward the remember-me choice. The previous refresh token
// stays valid until its own expiry; there is no revocation list.
func (u *authUsecase) RefreshToken(ctx context.Context, refreshToken string) (*SignInResult, error) {
	claims, err := u.tokens.VerifyToken(refreshToken)
	if err != nil {
		return nil, ErrUnauthorized
	}

	account, err := u.accountRepo.GetAccount(ctx, claims.AccountID)
	if err != nil {
		return nil, ErrUnauthorized
	}

	if !account.Confirmed() {
		return nil, ErrForbidden
	}

	return u.mintSession(account.ID.Hex(), claims.RememberMe)
}

func (u *authUsecase) mintSession(accountID string, rememberMe bool) (*SignInResult, error) {
	accessExpiresIn := u.cfg.Token.AccessTokenExpiresIn

	refreshExpiresIn := u.cfg.Token.RefreshTokenExpiresIn
	if rememberMe {
		refreshExpiresIn = rememberMeRefreshExpiresIn
	}

	accessToken, err := u.tokens.IssueAccessToken(accountID, auth.ParseDuration(accessExpiresIn), rememberMe)
	if err != nil {
		return nil, err
	}

	refreshToken, err := u.tokens.IssueRefreshToken(accountID, auth.ParseDuration(refreshExpiresIn), rememberMe)
	if err != nil {
		return nil, err
	}

	return &SignInResult{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		RememberMe:            rememberMe,
		AccessTokenExpiresIn:  auth.DurationToMillis(accessExpiresIn),
		RefreshTokenExpiresIn: auth.DurationToMillis(refreshExpiresIn),
	}, nil
}

func (u *authUsecase) hashPassword(password string) string {
	return security.HashSecret(password, u.cfg.Password.Salt, u.cfg.Password.Iterations)
}

func (u *authUsecase) sendConfirmationEmail(account *model.Account) error {
	token, err := u.tokens.IssueConfirmationToken(
		account.ID.Hex(),
		auth.ParseDuration(u.cfg.Token.ConfirmationExpiresIn),
	)
	if err != nil {
		return err
	}

	body := fmt.Sprintf(
		"Please click the following link to confirm your account:\n%s/confirm-email/%s",
		u.cfg.WebAppURL, token,
	)

	return u.mailer.SendSimple([]string{account.Email}, "Confirm your account", body)
}
