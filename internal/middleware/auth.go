// Package middleware provides the HTTP cross-cutting concerns: the
// authentication guard, audit logging and request logging.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/tenantly/tenantly-api/internal/model"
	"github.com/tenantly/tenantly-api/internal/repository"
	"github.com/tenantly/tenantly-api/pkg/auth"
)

type contextKey struct{ name string }

var accountKey = contextKey{"account"}

// AccountFromContext returns the authenticated account stored by AuthGuard.
func AccountFromContext(ctx context.Context) (*model.Account, bool) {
	account, ok := ctx.Value(accountKey).(*model.Account)
	return account, ok
}

// NewAuthGuard returns middleware that requires a valid bearer access token
// and loads the matching account into the request context. Missing, forged
// and expired tokens are all rejected with the same 401.
func NewAuthGuard(tokens *auth.TokenIssuer, accountRepo repository.AccountRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := tokens.VerifyToken(parts[1])
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			account, err := accountRepo.GetAccount(r.Context(), claims.AccountID)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), accountKey, account)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
