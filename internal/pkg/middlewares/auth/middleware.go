// Package auth проверяет HMAC-подписанный JWT и кладёт subject токена в контекст запроса.
// Роль из токена не берётся: её всегда подтверждает identity-сервис.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"gathr/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
)

// queryTokenParam нужен для WebSocket: браузер не умеет ставить заголовки при апгрейде.
const queryTokenParam = "access_token"

type ctxKey struct{}

var ErrMissingToken = errors.New("missing bearer token")

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserID возвращает пустую строку для неаутентифицированного запроса,
// сервисы отвечают на неё authz.ErrUnauthorized.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func Middleware(log handlerLogger, secret []byte) func(http.Handler) http.Handler {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg(), jwt.SigningMethodHS384.Alg(), jwt.SigningMethodHS512.Alg()}),
		jwt.WithExpirationRequired(),
	)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := authenticate(parser, secret, r)
			if err != nil {
				log.With(
					logger.NewField("error", err),
					logger.NewField("path", r.URL.Path),
					logger.NewField("remote_addr", r.RemoteAddr),
				).Warn("authentication failed")

				w.Header().Set("WWW-Authenticate", "Bearer")
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

func authenticate(parser *jwt.Parser, secret []byte, r *http.Request) (string, error) {
	tokenStr := bearerToken(r)
	if tokenStr == "" {
		return "", ErrMissingToken
	}

	claims := &jwt.RegisteredClaims{}
	_, err := parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		return "", err
	}

	subject, err := claims.GetSubject()
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(subject) == "" {
		return "", errors.New("token has no subject")
	}
	return subject, nil
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return r.URL.Query().Get(queryTokenParam)
	}

	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
