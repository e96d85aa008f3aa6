package handler

// SignUpRequest is the payload for POST /auth/signup.
type SignUpRequest struct {
	Email            string `json:"email"             validate:"required,email"`
	Password         string `json:"password"          validate:"required,min=8"`
	FirstName        string `json:"first_name"        validate:"required"`
	LastName         string `json:"last_name"         validate:"required"`
	OrganizationName string `json:"organization_name"`
}

// SignInRequest is the payload for POST /auth/signin.
type SignInRequest struct {
	Email      string `json:"email"       validate:"required,email"`
	Password   string `json:"password"    validate:"required"`
	RememberMe bool   `json:"remember_me"`
}

// RefreshTokenRequest is the payload for POST /auth/refresh-token.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// ForgotPasswordRequest is the payload for POST /auth/forgot-password.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// SetNewPasswordRequest is the payload for POST /auth/set-new-password.
type SetNewPasswordRequest struct {
	ForgotPasswordHash string `json:"forgot_password_hash" validate:"required"`
	Password           string `json:"password"             validate:"required,min=8"`
}

// UpdatePasswordRequest is the payload for POST /auth/password.
type UpdatePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// SignedInResponse is returned by sign-in and refresh-token. Expiry fields
// are milliseconds.
type SignedInResponse struct {
	AccessToken           string `json:"access_token"`
	RefreshToken          string `json:"refresh_token"`
	RememberMe            bool   `json:"remember_me"`
	AccessTokenExpiresIn  int64  `json:"access_token_expires_in_ms"`
	RefreshTokenExpiresIn int64  `json:"refresh_token_expires_in_ms"`
}

// ResetRequestValidResponse is returned by GET /auth/forgot-password/{hash}.
type ResetRequestValidResponse struct {
	IsValid bool `json:"is_valid"`
}
