package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/tenantly/tenantly-api/internal/config"
	"github.com/tenantly/tenantly-api/internal/model"
	"github.com/tenantly/tenantly-api/internal/repository"
	"github.com/tenantly/tenantly-api/pkg/auth"
	"github.com/tenantly/tenantly-api/pkg/security"
)

var (
	// ErrOldPasswordIncorrect is returned by UpdatePassword. The caller has
	// already proven they hold the account, so a specific message is safe.
	ErrOldPasswordIncorrect = errors.New("old password is incorrect")

	// ErrSamePassword is returned by UpdatePassword when the new password
	// equals the old one, compared as supplied plaintext.
	ErrSamePassword = errors.New("new password cannot be the same as the old password")
)

// PasswordUsecase defines the forgot-password and password change flows.
type PasswordUsecase interface {
	// HandleForgotPasswordRequest starts the reset flow. It always reports
	// success so that callers cannot probe which emails are registered.
	HandleForgotPasswordRequest(ctx context.Context, email string) error

	// IsResetRequestValid reports whether the hash identifies a reset
	// request that is still usable. Unknown, used and expired hashes all
	// collapse to false.
	IsResetRequestValid(ctx context.Context, hash string) (bool, error)

	// SetNewPassword finishes the reset flow, consuming the hash.
	SetNewPassword(ctx context.Context, hash, newPassword string) error

	// UpdatePassword changes the password of an already-authenticated account.
	UpdatePassword(ctx context.Context, account *model.Account, oldPassword, newPassword string) error
}

type passwordUsecase struct {
	accountRepo repository.AccountRepository
	resetRepo   repository.PasswordResetRepository
	txn         repository.TxnManager
	tokens      *auth.TokenIssuer
	mailer      EmailSender
	cfg         *config.Config
	logger      *zerolog.Logger
}

// NewPasswordUsecase creates a new instance of PasswordUsecase.
func NewPasswordUsecase(
	accountRepo repository.AccountRepository,
	resetRepo repository.PasswordResetRepository,
	txn repository.TxnManager,
	tokens *auth.TokenIssuer,
	mailer EmailSender,
	cfg *config.Config,
	logger *zerolog.Logger,
) PasswordUsecase {
	return &passwordUsecase{
		accountRepo: accountRepo,
		resetRepo:   resetRepo,
		txn:         txn,
		tokens:      tokens,
		mailer:      mailer,
		cfg:         cfg,
		logger:      logger,
	}
}

// HandleForgotPasswordRequest invalidates the current password and records a
// reset request, atomically. The password is overwritten with the hash of a
// fresh random secret before the user completes the reset, so leaked
// credentials stop working the moment the reset is requested.
func (u *passwordUsecase) HandleForgotPasswordRequest(ctx context.Context, email string) error {
	account, err := u.accountRepo.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Do not reveal that the email does not exist.
			return nil
		}
		return err
	}

	if !account.Confirmed() {
		return nil
	}

	return u.txn.WithTransaction(ctx, func(ctx context.Context) error {
		if err := u.accountRepo.SetPasswordHash(ctx, account.ID.Hex(), u.hashPassword(uuid.NewString())); err != nil {
			return err
		}

		hash, err := u.tokens.IssueConfirmationToken(
			account.ID.Hex(),
			auth.ParseDuration(u.cfg.Token.ConfirmationExpiresIn),
		)
		if err != nil {
			return err
		}

		if _, err := u.resetRepo.CreateRequest(ctx, &model.PasswordResetRequest{
			AccountID: account.ID,
			Hash:      hash,
		}); err != nil {
			return err
		}

		return u.sendForgotPasswordEmail(account, hash)
	})
}

// IsResetRequestValid checks existence, the one-way is_valid flag and the
// 30-minute validity window.
func (u *passwordUsecase) IsResetRequestValid(ctx context.Context, hash string) (bool, error) {
	request, err := u.resetRepo.GetRequestByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, err
	}

	return request.Usable(time.Now()), nil
}

// SetNewPassword writes the new password hash and only then invalidates the
// reset request, making the hash permanently unusable.
func (u *passwordUsecase) SetNewPassword(ctx context.Context, hash, newPassword string) error {
	valid, err := u.IsResetRequestValid(ctx, hash)
	if err != nil {
		return err
	}
	if !valid {
		return ErrForbidden
	}

	request, err := u.resetRepo.GetRequestByHash(ctx, hash)
	if err != nil {
		return err
	}

	account, err := u.accountRepo.GetAccount(ctx, request.AccountID.Hex())
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrForbidden
		}
		return err
	}

	if err := u.accountRepo.SetPasswordHash(ctx, account.ID.Hex(), u.hashPassword(newPassword)); err != nil {
		return err
	}

	return u.resetRepo.InvalidateRequestByHash(ctx, hash)
}

// UpdatePassword changes the password after re-checking the old one.
func (u *passwordUsecase) UpdatePassword(
	ctx context.Context,
	account *model.Account,
	oldPassword, newPassword string,
) error {
	if !security.HashEquals(u.hashPassword(oldPassword), account.PasswordHash) {
		return ErrOldPasswordIncorrect
	}

	if oldPassword == newPassword {
		return ErrSamePassword
	}

	return u.accountRepo.SetPasswordHash(ctx, account.ID.Hex(), u.hashPassword(newPassword))
}

func (u *passwordUsecase) hashPassword(password string) string {
	return security.HashSecret(password, u.cfg.Password.Salt, u.cfg.Password.Iterations)
}

func (u *passwordUsecase) sendForgotPasswordEmail(account *model.Account, hash string) error {
	body := fmt.Sprintf(
		"Please click the following link to set a new password for your account:\n%s/set-new-password/%s",
		u.cfg.WebAppURL, hash,
	)

	return u.mailer.SendSimple([]string{account.Email}, "Reset your password", body)
}
