package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/tenantly/tenantly-api/internal/model"
	"github.com/tenantly/tenantly-api/internal/repository"
)

// Audit action names.
const (
	ActionSignUp                    = "SIGN_UP"
	ActionConfirmEmail              = "CONFIRM_EMAIL"
	ActionSignIn                    = "SIGN_IN"
	ActionForgotPassword            = "FORGOT_PASSWORD"
	ActionValidateForgotPasswordHash = "VALIDATE_FORGOT_PASSWORD_HASH"
	ActionSetNewPassword            = "SET_NEW_PASSWORD"
	ActionUpdatePassword            = "UPDATE_PASSWORD"
)

// AuditLogger persists one audit entry per handled request.
type AuditLogger struct {
	repo   repository.AuditLogRepository
	logger *zerolog.Logger
}

// NewAuditLogger creates an AuditLogger writing to the given repository.
func NewAuditLogger(repo repository.AuditLogRepository, logger *zerolog.Logger) *AuditLogger {
	return &AuditLogger{repo: repo, logger: logger}
}

// Record returns middleware that saves an audit entry after the wrapped
// handler runs: the action name, response status, client IP, authenticated
// account id if any, and the tracked request parameters pulled from the
// JSON body. Persistence failures are logged, never surfaced to the client.
func (a *AuditLogger) Record(action string, trackedParams ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			parameters := a.extractParams(r, trackedParams)

			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			entry := &model.AuditLog{
				Action:     action,
				StatusCode: ww.Status(),
				IP:         r.RemoteAddr,
				Parameters: parameters,
			}
			if account, ok := AccountFromContext(r.Context()); ok {
				entry.AccountID = account.ID.Hex()
			}
			if ww.Status() >= http.StatusBadRequest {
				entry.Error = http.StatusText(ww.Status())
			}

			if err := a.repo.SaveAuditLog(r.Context(), entry); err != nil {
				a.logger.Error().Err(err).Str("action", action).Msg("failed to save audit log")
			}
		})
	}
}

// extractParams reads the tracked parameters from URL params and the JSON
// body. The body is restored so the handler can read it again.
func (a *AuditLogger) extractParams(r *http.Request, trackedParams []string) map[string]any {
	if len(trackedParams) == 0 {
		return nil
	}

	var body map[string]any
	if r.Body != nil {
		raw, err := io.ReadAll(r.Body)
		if err == nil {
			r.Body = io.NopCloser(bytes.NewReader(raw))
			_ = json.Unmarshal(raw, &body)
		}
	}

	parameters := make(map[string]any, len(trackedParams))
	for _, param := range trackedParams {
		if value := r.URL.Query().Get(param); value != "" {
			parameters[param] = value
			continue
		}
		if value, ok := body[param]; ok {
			parameters[param] = value
		}
	}

	return parameters
}
