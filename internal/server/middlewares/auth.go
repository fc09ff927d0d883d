package middlewares

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mintgate/mediavault/internal/server/auth"
	"github.com/mintgate/mediavault/internal/server/handlers/api"
)

const (
	bearerPrefix     = "Bearer "
	authHeader       = "Authorization"
	walletContextKey = "wallet"
)

// SessionAuth validates the wallet session token on every request of the
// group and stores the wallet identity in the gin context.
func SessionAuth(authService *auth.AuthService) gin.HandlerFunc {
	if !authService.IsEnabled() {
		slog.Info("session auth disabled")
		return func(ctx *gin.Context) {
			ctx.Next()
		}
	}

	slog.Info("session auth enabled")
	return func(ctx *gin.Context) {
		headerValue := ctx.GetHeader(authHeader)
		if headerValue == "" {
			api.AbortWithError(ctx, http.StatusUnauthorized, api.CodeAuthInvalidCredentials,
				fmt.Errorf("authorization header is missing"))
			return
		}

		if !strings.HasPrefix(headerValue, bearerPrefix) {
			api.AbortWithError(ctx, http.StatusUnauthorized, api.CodeAuthInvalidCredentials,
				fmt.Errorf("authorization header format must be Bearer {token}"))
			return
		}

		token := strings.TrimPrefix(headerValue, bearerPrefix)
		wallet, err := authService.VerifyToken(ctx, token)
		if err != nil {
			api.AbortWithError(ctx, http.StatusUnauthorized, api.CodeAuthInvalidCredentials, err)
			return
		}

		ctx.Set(walletContextKey, wallet)
		ctx.Next()
	}
}

// Wallet returns the authenticated wallet identity set by SessionAuth.
func Wallet(ctx *gin.Context) string {
	return ctx.GetString(walletContextKey)
}
