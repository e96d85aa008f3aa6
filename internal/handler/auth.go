// Package handler exposes the authentication flows over HTTP.
package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/rs/zerolog"

	"github.com/tenantly/tenantly-api/internal/middleware"
	"github.com/tenantly/tenantly-api/internal/usecase"
)

// Cookie names set on sign-in and cleared on sign-out.
const (
	cookieAccessToken  = "jwt_token"
	cookieRefreshToken = "refresh_token"
	cookieRememberMe   = "remember_me"
)

// AuthHandler serves the /auth routes.
type AuthHandler struct {
	authUsecase     usecase.AuthUsecase
	passwordUsecase usecase.PasswordUsecase
	validate        *validator.Validate
	trans           ut.Translator
	logger          *zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(
	authUsecase usecase.AuthUsecase,
	passwordUsecase usecase.PasswordUsecase,
	logger *zerolog.Logger,
) *AuthHandler {
	validate := validator.New(validator.WithRequiredStructEnabled())

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := entranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		logger.Fatal().Err(err).Msg("failed to register validator translations")
	}

	return &AuthHandler{
		authUsecase:     authUsecase,
		passwordUsecase: passwordUsecase,
		validate:        validate,
		trans:           trans,
		logger:          logger,
	}
}

// RegisterRoutes mounts the auth routes with their guard and audit middleware.
func (h *AuthHandler) RegisterRoutes(
	r chi.Router,
	guard func(http.Handler) http.Handler,
	audit *middleware.AuditLogger,
) {
	r.Route("/auth", func(r chi.Router) {
		r.With(audit.Record(middleware.ActionSignUp)).Post("/signup", h.SignUp)
		r.With(audit.Record(middleware.ActionConfirmEmail)).Get("/confirm-email/{hash}", h.ConfirmEmail)
		r.With(audit.Record(middleware.ActionSignIn, "email")).Post("/signin", h.SignIn)
		r.Post("/refresh-token", h.RefreshToken)
		r.With(audit.Record(middleware.ActionForgotPassword, "email")).Post("/forgot-password", h.ForgotPassword)
		r.With(audit.Record(middleware.ActionValidateForgotPasswordHash)).
			Get("/forgot-password/{hash}", h.ValidateForgotPasswordHash)
		r.With(audit.Record(middleware.ActionSetNewPassword)).Post("/set-new-password", h.SetNewPassword)
		r.With(guard, audit.Record(middleware.ActionUpdatePassword)).Post("/password", h.UpdatePassword)
		r.With(guard).Post("/signout", h.SignOut)
	})
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var payload SignUpRequest
	if !decodeAndValidate(w, r, h.validate, h.trans, &payload) {
		return
	}

	err := h.authUsecase.SignUp(r.Context(), usecase.SignUpParams{
		Email:            payload.Email,
		Password:         payload.Password,
		FirstName:        payload.FirstName,
		LastName:         payload.LastName,
		OrganizationName: payload.OrganizationName,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to sign up")
		respondError(w, http.StatusInternalServerError, usecase.ErrSignup.Error())
		return
	}

	respondJSON(w, http.StatusOK, struct{}{})
}

func (h *AuthHandler) ConfirmEmail(w http.ResponseWriter, r *http.Request) {
	hash := chi.URLParam(r, "hash")

	err := h.authUsecase.ConfirmEmail(r.Context(), hash)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrConfirmationTokenExpired):
			respondError(w, http.StatusForbidden, "account verification hash expired")
		case errors.Is(err, usecase.ErrForbidden):
			respondError(w, http.StatusForbidden, "forbidden")
		default:
			h.logger.Error().Err(err).Msg("failed to confirm email")
			respondError(w, http.StatusInternalServerError, "something went wrong")
		}
		return
	}

	respondJSON(w, http.StatusOK, struct{}{})
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var payload SignInRequest
	if !decodeAndValidate(w, r, h.validate, h.trans, &payload) {
		return
	}

	result, err := h.authUsecase.SignIn(r.Context(), usecase.SignInParams{
		Email:      payload.Email,
		Password:   payload.Password,
		RememberMe: payload.RememberMe,
	})
	if err != nil {
		if errors.Is(err, usecase.ErrForbidden) {
			respondError(w, http.StatusForbidden, "forbidden")
			return
		}
		h.logger.Error().Err(err).Msg("failed to sign in")
		respondError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	h.setSessionCookies(w, result)
	respondJSON(w, http.StatusOK, signedInResponse(result))
}

func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var payload RefreshTokenRequest
	if !decodeAndValidate(w, r, h.validate, h.trans, &payload) {
		return
	}

	result, err := h.authUsecase.RefreshToken(r.Context(), payload.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrUnauthorized):
			respondError(w, http.StatusUnauthorized, "unauthorized")
		case errors.Is(err, usecase.ErrForbidden):
			respondError(w, http.StatusForbidden, "forbidden")
		default:
			h.logger.Error().Err(err).Msg("failed to refresh token")
			respondError(w, http.StatusInternalServerError, "something went wrong")
		}
		return
	}

	h.setSessionCookies(w, result)
	respondJSON(w, http.StatusOK, signedInResponse(result))
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var payload ForgotPasswordRequest
	if !decodeAndValidate(w, r, h.validate, h.trans, &payload) {
		return
	}

	if err := h.passwordUsecase.HandleForgotPasswordRequest(r.Context(), payload.Email); err != nil {
		h.logger.Error().Err(err).Msg("failed to handle forgot password request")
		respondError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	respondJSON(w, http.StatusOK, struct{}{})
}

func (h *AuthHandler) ValidateForgotPasswordHash(w http.ResponseWriter, r *http.Request) {
	hash := chi.URLParam(r, "hash")

	valid, err := h.passwordUsecase.IsResetRequestValid(r.Context(), hash)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to validate forgot password hash")
		respondError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	respondJSON(w, http.StatusOK, ResetRequestValidResponse{IsValid: valid})
}

func (h *AuthHandler) SetNewPassword(w http.ResponseWriter, r *http.Request) {
	var payload SetNewPasswordRequest
	if !decodeAndValidate(w, r, h.validate, h.trans, &payload) {
		return
	}

	err := h.passwordUsecase.SetNewPassword(r.Context(), payload.ForgotPasswordHash, payload.Password)
	if err != nil {
		if errors.Is(err, usecase.ErrForbidden) {
			respondError(w, http.StatusForbidden, "forbidden")
			return
		}
		h.logger.Error().Err(err).Msg("failed to set new password")
		respondError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	respondJSON(w, http.StatusOK, struct{}{})
}

func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.AccountFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var payload UpdatePasswordRequest
	if !decodeAndValidate(w, r, h.validate, h.trans, &payload) {
		return
	}

	err := h.passwordUsecase.UpdatePassword(r.Context(), account, payload.OldPassword, payload.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrOldPasswordIncorrect), errors.Is(err, usecase.ErrSamePassword):
			respondError(w, http.StatusForbidden, err.Error())
		default:
			h.logger.Error().Err(err).Msg("failed to update password")
			respondError(w, http.StatusInternalServerError, "something went wrong")
		}
		return
	}

	respondJSON(w, http.StatusOK, struct{}{})
}

// SignOut holds no server-side session state; it only tells the client to
// drop its cookies.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	h.clearSessionCookies(w)
	respondJSON(w, http.StatusOK, struct{}{})
}

func signedInResponse(result *usecase.SignInResult) SignedInResponse {
	return SignedInResponse{
		AccessToken:           result.AccessToken,
		RefreshToken:          result.RefreshToken,
		RememberMe:            result.RememberMe,
		AccessTokenExpiresIn:  result.AccessTokenExpiresIn,
		RefreshTokenExpiresIn: result.RefreshTokenExpiresIn,
	}
}

func (h *AuthHandler) setSessionCookies(w http.ResponseWriter, result *usecase.SignInResult) {
	setCookie(w, cookieAccessToken, result.AccessToken, int(result.AccessTokenExpiresIn/1000))
	setCookie(w, cookieRefreshToken, result.RefreshToken, int(result.RefreshTokenExpiresIn/1000))

	rememberMe := "false"
	if result.RememberMe {
		rememberMe = "true"
	}
	setCookie(w, cookieRememberMe, rememberMe, int(result.RefreshTokenExpiresIn/1000))
}

func (h *AuthHandler) clearSessionCookies(w http.ResponseWriter) {
	setCookie(w, cookieAccessToken, "", -1)
	setCookie(w, cookieRefreshToken, "", -1)
	setCookie(w, cookieRememberMe, "", -1)
}

func setCookie(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}
